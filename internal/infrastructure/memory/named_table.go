package memory

import (
	"sort"

	"github.com/oksasatya/go-recipe-api/internal/domain/repository"
)

// namedRow is the stored shape shared by tags and ingredients. It converts
// directly to entity.Tag and entity.Ingredient.
type namedRow struct {
	ID     int64
	UserID int64
	Name   string
}

// namedTable holds owner-scoped named rows and the recipe link list that
// points at them. Callers hold Store.mu.
type namedTable struct {
	s     *Store
	rows  map[int64]namedRow
	links func(*recipeRow) *[]int64
}

func newNamedTable(s *Store, links func(*recipeRow) *[]int64) *namedTable {
	return &namedTable{s: s, rows: make(map[int64]namedRow), links: links}
}

// list returns the owner's rows by name descending.
func (t *namedTable) list(userID int64, assignedOnly bool) []namedRow {
	out := make([]namedRow, 0)
	for _, n := range t.rows {
		if n.UserID != userID {
			continue
		}
		if assignedOnly && !t.assigned(userID, n.ID) {
			continue
		}
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return lessByName(out[j], out[i]) })
	return out
}

// assigned reports whether any recipe of userID links id.
func (t *namedTable) assigned(userID, id int64) bool {
	for _, row := range t.s.recipes {
		if row.UserID == userID && containsID(*t.links(row), id) {
			return true
		}
	}
	return false
}

func (t *namedTable) get(userID, id int64) (namedRow, error) {
	n, ok := t.rows[id]
	if !ok || n.UserID != userID {
		return namedRow{}, repository.ErrNotFound
	}
	return n, nil
}

func (t *namedTable) getOrCreate(userID int64, name string) namedRow {
	for _, n := range t.rows {
		if n.UserID == userID && n.Name == name {
			return n
		}
	}
	n := namedRow{ID: t.s.id(), UserID: userID, Name: name}
	t.rows[n.ID] = n
	return n
}

func (t *namedTable) update(n namedRow) error {
	if _, err := t.get(n.UserID, n.ID); err != nil {
		return err
	}
	for id, other := range t.rows {
		if id != n.ID && other.UserID == n.UserID && other.Name == n.Name {
			return repository.ErrConflict
		}
	}
	t.rows[n.ID] = n
	return nil
}

// delete removes the row and its link entries; recipes are kept.
func (t *namedTable) delete(userID, id int64) error {
	if _, err := t.get(userID, id); err != nil {
		return err
	}
	delete(t.rows, id)
	for _, row := range t.s.recipes {
		ids := t.links(row)
		*ids = removeID(*ids, id)
	}
	return nil
}

// attached returns the rows behind ids ordered by name.
func (t *namedTable) attached(ids []int64) []namedRow {
	out := make([]namedRow, 0, len(ids))
	for _, id := range ids {
		if n, ok := t.rows[id]; ok {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return lessByName(out[i], out[j]) })
	return out
}

// resolve returns the id of each named row, creating rows that carry no id yet.
func (t *namedTable) resolve(userID int64, rows []namedRow) []int64 {
	ids := make([]int64, 0, len(rows))
	for _, n := range rows {
		if n.ID == 0 {
			n = t.getOrCreate(userID, n.Name)
		}
		if !containsID(ids, n.ID) {
			ids = append(ids, n.ID)
		}
	}
	return ids
}

func lessByName(a, b namedRow) bool {
	if a.Name != b.Name {
		return a.Name < b.Name
	}
	return a.ID < b.ID
}
