// Package memory implements the repository interfaces over process memory.
// It backs STORE_DRIVER=memory and the HTTP tests.
package memory

import (
	"strings"
	"sync"
	"time"

	"github.com/oksasatya/go-recipe-api/internal/domain/entity"
	"github.com/oksasatya/go-recipe-api/internal/domain/repository"
)

type recipeRow struct {
	entity.Recipe
	tagIDs        []int64
	ingredientIDs []int64
}

// Store is the shared state behind every memory repository.
type Store struct {
	mu sync.RWMutex

	nextID int64

	users       map[int64]entity.User
	recipes     map[int64]*recipeRow
	tags        *namedTable
	ingredients *namedTable
}

func NewStore() *Store {
	s := &Store{
		users:   make(map[int64]entity.User),
		recipes: make(map[int64]*recipeRow),
	}
	s.tags = newNamedTable(s, func(row *recipeRow) *[]int64 { return &row.tagIDs })
	s.ingredients = newNamedTable(s, func(row *recipeRow) *[]int64 { return &row.ingredientIDs })
	return s
}

// Repositories bundles repositories sharing one Store.
type Repositories struct {
	Users       *UserRepository
	Recipes     *RecipeRepository
	Tags        *TagRepository
	Ingredients *IngredientRepository
}

func NewRepositories() Repositories {
	s := NewStore()
	return Repositories{
		Users:       &UserRepository{s: s},
		Recipes:     &RecipeRepository{s: s},
		Tags:        &TagRepository{s: s},
		Ingredients: &IngredientRepository{s: s},
	}
}

// id allocates a store-wide id; callers hold mu.
func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

func now() time.Time { return time.Now().UTC() }

// recipe materializes a row with its relations; callers hold mu.
func (s *Store) recipe(row *recipeRow) entity.Recipe {
	rec := row.Recipe
	rec.Tags = toTags(s.tags.attached(row.tagIDs))
	rec.Ingredients = toIngredients(s.ingredients.attached(row.ingredientIDs))
	return rec
}

// link resolves the recipe's relation sets selected by rel, creating missing
// tags and ingredients under the same lock as the recipe write.
func (s *Store) link(row *recipeRow, rec *entity.Recipe, rel repository.RelationUpdate) {
	if rel.Tags {
		rows := make([]namedRow, 0, len(rec.Tags))
		for _, t := range rec.Tags {
			rows = append(rows, namedRow(t))
		}
		row.tagIDs = s.tags.resolve(rec.UserID, rows)
		rec.Tags = toTags(s.tags.attached(row.tagIDs))
	}
	if rel.Ingredients {
		rows := make([]namedRow, 0, len(rec.Ingredients))
		for _, i := range rec.Ingredients {
			rows = append(rows, namedRow(i))
		}
		row.ingredientIDs = s.ingredients.resolve(rec.UserID, rows)
		rec.Ingredients = toIngredients(s.ingredients.attached(row.ingredientIDs))
	}
}

func toTags(rows []namedRow) []entity.Tag {
	out := make([]entity.Tag, 0, len(rows))
	for _, n := range rows {
		out = append(out, entity.Tag(n))
	}
	return out
}

func toIngredients(rows []namedRow) []entity.Ingredient {
	out := make([]entity.Ingredient, 0, len(rows))
	for _, n := range rows {
		out = append(out, entity.Ingredient(n))
	}
	return out
}

func containsID(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func containsAny(ids, want []int64) bool {
	for _, w := range want {
		if containsID(ids, w) {
			return true
		}
	}
	return false
}

func removeID(ids []int64, id int64) []int64 {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

func matches(rec entity.Recipe, q string) bool {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(rec.Title), q) || strings.Contains(strings.ToLower(rec.Description), q)
}
