package postgres

import (
	"context"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/oksasatya/go-recipe-api/internal/domain/entity"
	"github.com/oksasatya/go-recipe-api/internal/domain/repository"
)

type RecipeRepository struct {
	pool *pgxpool.Pool
}

func NewRecipeRepository(pool *pgxpool.Pool) *RecipeRepository {
	return &RecipeRepository{pool: pool}
}

// price is read back as text so it never passes through a float.
const recipeColumns = `r.id, r.user_id, r.title, r.time_minutes, r.price::text, r.description, r.link, r.image, r.created_at, r.updated_at`

func scanRecipe(row pgx.Row) (entity.Recipe, error) {
	var (
		rec   entity.Recipe
		price string
	)
	if err := row.Scan(&rec.ID, &rec.UserID, &rec.Title, &rec.TimeMinutes, &price,
		&rec.Description, &rec.Link, &rec.Image, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		return rec, err
	}
	p, err := decimal.NewFromString(price)
	if err != nil {
		return rec, err
	}
	rec.Price = p
	return rec, nil
}

func (r *RecipeRepository) Create(ctx context.Context, rec *entity.Recipe) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO recipes (user_id, title, time_minutes, price, description, link, image)
			VALUES ($1, $2, $3, $4::numeric, $5, $6, $7)
			RETURNING id, created_at, updated_at
		`, rec.UserID, rec.Title, rec.TimeMinutes, rec.Price.StringFixed(2), rec.Description, rec.Link, rec.Image).
			Scan(&rec.ID, &rec.CreatedAt, &rec.UpdatedAt)
		if err != nil {
			return mapErr(err)
		}
		return linkRelations(ctx, tx, rec, repository.RelationUpdate{Tags: true, Ingredients: true})
	})
}

// linkRelations resolves the selected relation sets by name and replaces the
// recipe's link rows, all inside tx.
func linkRelations(ctx context.Context, tx pgx.Tx, rec *entity.Recipe, rel repository.RelationUpdate) error {
	if rel.Tags {
		rows := make([]namedRow, 0, len(rec.Tags))
		for _, t := range rec.Tags {
			rows = append(rows, namedRow{ID: t.ID, UserID: rec.UserID, Name: t.Name})
		}
		resolved, err := tagsTable.resolve(ctx, tx, rec.UserID, rows)
		if err != nil {
			return err
		}
		if err := tagsTable.replaceLinks(ctx, tx, rec.ID, rowIDs(resolved)); err != nil {
			return err
		}
		rec.Tags = make([]entity.Tag, 0, len(resolved))
		for _, n := range resolved {
			rec.Tags = append(rec.Tags, toTag(n))
		}
	}
	if rel.Ingredients {
		rows := make([]namedRow, 0, len(rec.Ingredients))
		for _, i := range rec.Ingredients {
			rows = append(rows, namedRow{ID: i.ID, UserID: rec.UserID, Name: i.Name})
		}
		resolved, err := ingredientsTable.resolve(ctx, tx, rec.UserID, rows)
		if err != nil {
			return err
		}
		if err := ingredientsTable.replaceLinks(ctx, tx, rec.ID, rowIDs(resolved)); err != nil {
			return err
		}
		rec.Ingredients = make([]entity.Ingredient, 0, len(resolved))
		for _, n := range resolved {
			rec.Ingredients = append(rec.Ingredients, toIngredient(n))
		}
	}
	return nil
}

func (r *RecipeRepository) GetByID(ctx context.Context, userID, id int64) (*entity.Recipe, error) {
	rec, err := scanRecipe(r.pool.QueryRow(ctx,
		`SELECT `+recipeColumns+` FROM recipes r WHERE r.id = $1 AND r.user_id = $2`, id, userID))
	if err != nil {
		return nil, mapErr(err)
	}
	recipes := []entity.Recipe{rec}
	if err := r.attachRelations(ctx, recipes); err != nil {
		return nil, err
	}
	return &recipes[0], nil
}

func (r *RecipeRepository) List(ctx context.Context, userID int64, f repository.RecipeFilter) ([]entity.Recipe, error) {
	var sb strings.Builder
	args := []any{userID}
	sb.WriteString(`SELECT ` + recipeColumns + ` FROM recipes r WHERE r.user_id = $1`)

	if len(f.TagIDs) > 0 {
		args = append(args, f.TagIDs)
		sb.WriteString(` AND EXISTS (SELECT 1 FROM recipe_tags rt WHERE rt.recipe_id = r.id AND rt.tag_id = ANY($` + strconv.Itoa(len(args)) + `))`)
	}
	if len(f.IngredientIDs) > 0 {
		args = append(args, f.IngredientIDs)
		sb.WriteString(` AND EXISTS (SELECT 1 FROM recipe_ingredients ri WHERE ri.recipe_id = r.id AND ri.ingredient_id = ANY($` + strconv.Itoa(len(args)) + `))`)
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		args = append(args, likePattern(q))
		n := strconv.Itoa(len(args))
		sb.WriteString(` AND (r.title ILIKE $` + n + ` OR r.description ILIKE $` + n + `)`)
	}
	sb.WriteString(` ORDER BY r.id DESC`)
	if f.Limit > 0 {
		args = append(args, f.Limit)
		sb.WriteString(` LIMIT $` + strconv.Itoa(len(args)))
	}

	rows, err := r.pool.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	recipes, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (entity.Recipe, error) {
		return scanRecipe(row)
	})
	if err != nil {
		return nil, err
	}
	if err := r.attachRelations(ctx, recipes); err != nil {
		return nil, err
	}
	return recipes, nil
}

func (r *RecipeRepository) Update(ctx context.Context, rec *entity.Recipe, rel repository.RelationUpdate) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			UPDATE recipes
			SET title = $1, time_minutes = $2, price = $3::numeric, description = $4, link = $5, updated_at = now()
			WHERE id = $6 AND user_id = $7
			RETURNING updated_at
		`, rec.Title, rec.TimeMinutes, rec.Price.StringFixed(2), rec.Description, rec.Link, rec.ID, rec.UserID).
			Scan(&rec.UpdatedAt)
		if err != nil {
			return mapErr(err)
		}
		return linkRelations(ctx, tx, rec, rel)
	})
}

func (r *RecipeRepository) SetImage(ctx context.Context, userID, id int64, image string) error {
	res, err := r.pool.Exec(ctx, `UPDATE recipes SET image = $1, updated_at = now() WHERE id = $2 AND user_id = $3`, image, id, userID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *RecipeRepository) Delete(ctx context.Context, userID, id int64) error {
	res, err := r.pool.Exec(ctx, `DELETE FROM recipes WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *RecipeRepository) attachRelations(ctx context.Context, recipes []entity.Recipe) error {
	ids := make([]int64, 0, len(recipes))
	for _, rec := range recipes {
		ids = append(ids, rec.ID)
	}
	tags, err := tagsTable.linked(ctx, r.pool, ids)
	if err != nil {
		return err
	}
	ingredients, err := ingredientsTable.linked(ctx, r.pool, ids)
	if err != nil {
		return err
	}
	for i := range recipes {
		recipes[i].Tags = make([]entity.Tag, 0, len(tags[recipes[i].ID]))
		for _, n := range tags[recipes[i].ID] {
			recipes[i].Tags = append(recipes[i].Tags, toTag(n))
		}
		recipes[i].Ingredients = make([]entity.Ingredient, 0, len(ingredients[recipes[i].ID]))
		for _, n := range ingredients[recipes[i].ID] {
			recipes[i].Ingredients = append(recipes[i].Ingredients, toIngredient(n))
		}
	}
	return nil
}

func likePattern(q string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(q) + "%"
}

var _ repository.RecipeRepository = (*RecipeRepository)(nil)
