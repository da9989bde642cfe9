package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/go-recipe-api/internal/domain/entity"
	"github.com/oksasatya/go-recipe-api/internal/domain/repository"
)

type IngredientRepository struct {
	pool *pgxpool.Pool
}

func NewIngredientRepository(pool *pgxpool.Pool) *IngredientRepository {
	return &IngredientRepository{pool: pool}
}

func toIngredient(n namedRow) entity.Ingredient {
	return entity.Ingredient{ID: n.ID, UserID: n.UserID, Name: n.Name}
}

func (r *IngredientRepository) List(ctx context.Context, userID int64, assignedOnly bool) ([]entity.Ingredient, error) {
	rows, err := ingredientsTable.list(ctx, r.pool, userID, assignedOnly)
	if err != nil {
		return nil, err
	}
	out := make([]entity.Ingredient, 0, len(rows))
	for _, n := range rows {
		out = append(out, toIngredient(n))
	}
	return out, nil
}

func (r *IngredientRepository) GetByID(ctx context.Context, userID, id int64) (*entity.Ingredient, error) {
	n, err := ingredientsTable.getByID(ctx, r.pool, userID, id)
	if err != nil {
		return nil, err
	}
	i := toIngredient(n)
	return &i, nil
}

func (r *IngredientRepository) GetOrCreate(ctx context.Context, userID int64, name string) (*entity.Ingredient, error) {
	n, err := ingredientsTable.getOrCreate(ctx, r.pool, userID, name)
	if err != nil {
		return nil, err
	}
	i := toIngredient(n)
	return &i, nil
}

func (r *IngredientRepository) Update(ctx context.Context, i *entity.Ingredient) error {
	return ingredientsTable.update(ctx, r.pool, namedRow{ID: i.ID, UserID: i.UserID, Name: i.Name})
}

func (r *IngredientRepository) Delete(ctx context.Context, userID, id int64) error {
	return ingredientsTable.delete(ctx, r.pool, userID, id)
}

var _ repository.IngredientRepository = (*IngredientRepository)(nil)
