package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/oksasatya/go-recipe-api/internal/domain/repository"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type namedRow struct {
	ID     int64
	UserID int64
	Name   string
}

// nameTable holds the SQL shared by tags and ingredients, which differ only in
// table and link-table names. Names come from constants, never from input.
type nameTable struct {
	table   string
	link    string
	linkCol string
}

var (
	tagsTable        = nameTable{table: "tags", link: "recipe_tags", linkCol: "tag_id"}
	ingredientsTable = nameTable{table: "ingredients", link: "recipe_ingredients", linkCol: "ingredient_id"}
)

func collectNamed(rows pgx.Rows) ([]namedRow, error) {
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (namedRow, error) {
		var n namedRow
		err := row.Scan(&n.ID, &n.UserID, &n.Name)
		return n, err
	})
}

func (t nameTable) list(ctx context.Context, q querier, userID int64, assignedOnly bool) ([]namedRow, error) {
	sql := `SELECT n.id, n.user_id, n.name FROM ` + t.table + ` n WHERE n.user_id = $1`
	if assignedOnly {
		// EXISTS keeps each row once no matter how many recipes reference it.
		sql += ` AND EXISTS (
			SELECT 1 FROM ` + t.link + ` l JOIN recipes r ON r.id = l.recipe_id
			WHERE l.` + t.linkCol + ` = n.id AND r.user_id = $1)`
	}
	sql += ` ORDER BY n.name DESC, n.id DESC`

	rows, err := q.Query(ctx, sql, userID)
	if err != nil {
		return nil, err
	}
	return collectNamed(rows)
}

func (t nameTable) getByID(ctx context.Context, q querier, userID, id int64) (namedRow, error) {
	var n namedRow
	err := q.QueryRow(ctx, `SELECT id, user_id, name FROM `+t.table+` WHERE id = $1 AND user_id = $2`, id, userID).
		Scan(&n.ID, &n.UserID, &n.Name)
	return n, mapErr(err)
}

// getOrCreate relies on the (user_id, name) unique constraint so concurrent
// callers racing on the same new name all receive the same row.
func (t nameTable) getOrCreate(ctx context.Context, q querier, userID int64, name string) (namedRow, error) {
	var n namedRow
	err := q.QueryRow(ctx, `
		INSERT INTO `+t.table+` (user_id, name) VALUES ($1, $2)
		ON CONFLICT (user_id, name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id, user_id, name
	`, userID, name).Scan(&n.ID, &n.UserID, &n.Name)
	return n, mapErr(err)
}

func (t nameTable) update(ctx context.Context, q querier, n namedRow) error {
	res, err := q.Exec(ctx, `UPDATE `+t.table+` SET name = $1 WHERE id = $2 AND user_id = $3`, n.Name, n.ID, n.UserID)
	if err != nil {
		return mapErr(err)
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (t nameTable) delete(ctx context.Context, q querier, userID, id int64) error {
	res, err := q.Exec(ctx, `DELETE FROM `+t.table+` WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// resolve fills in the id of every row that has none by get-or-create, and
// returns the distinct ids in order.
func (t nameTable) resolve(ctx context.Context, q querier, userID int64, rows []namedRow) ([]namedRow, error) {
	out := make([]namedRow, 0, len(rows))
	seen := make(map[int64]struct{}, len(rows))
	for _, n := range rows {
		if n.ID == 0 {
			var err error
			if n, err = t.getOrCreate(ctx, q, userID, n.Name); err != nil {
				return nil, err
			}
		}
		if _, ok := seen[n.ID]; ok {
			continue
		}
		seen[n.ID] = struct{}{}
		out = append(out, n)
	}
	return out, nil
}

func rowIDs(rows []namedRow) []int64 {
	ids := make([]int64, 0, len(rows))
	for _, n := range rows {
		ids = append(ids, n.ID)
	}
	return ids
}

// replaceLinks swaps the recipe's link rows for exactly ids.
func (t nameTable) replaceLinks(ctx context.Context, q querier, recipeID int64, ids []int64) error {
	if _, err := q.Exec(ctx, `DELETE FROM `+t.link+` WHERE recipe_id = $1`, recipeID); err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}
	_, err := q.Exec(ctx, `
		INSERT INTO `+t.link+` (recipe_id, `+t.linkCol+`)
		SELECT $1, unnest($2::bigint[])
		ON CONFLICT DO NOTHING
	`, recipeID, ids)
	return err
}

// linked returns the named rows attached to each recipe id, ordered by name.
func (t nameTable) linked(ctx context.Context, q querier, recipeIDs []int64) (map[int64][]namedRow, error) {
	out := make(map[int64][]namedRow, len(recipeIDs))
	if len(recipeIDs) == 0 {
		return out, nil
	}
	rows, err := q.Query(ctx, `
		SELECT l.recipe_id, n.id, n.user_id, n.name
		FROM `+t.link+` l JOIN `+t.table+` n ON n.id = l.`+t.linkCol+`
		WHERE l.recipe_id = ANY($1)
		ORDER BY n.name, n.id
	`, recipeIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var recipeID int64
		var n namedRow
		if err := rows.Scan(&recipeID, &n.ID, &n.UserID, &n.Name); err != nil {
			return nil, err
		}
		out[recipeID] = append(out[recipeID], n)
	}
	return out, rows.Err()
}
