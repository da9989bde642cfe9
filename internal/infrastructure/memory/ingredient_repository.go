package memory

import (
	"context"

	"github.com/oksasatya/go-recipe-api/internal/domain/entity"
	"github.com/oksasatya/go-recipe-api/internal/domain/repository"
)

type IngredientRepository struct {
	s *Store
}

func (r *IngredientRepository) List(_ context.Context, userID int64, assignedOnly bool) ([]entity.Ingredient, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return toIngredients(r.s.ingredients.list(userID, assignedOnly)), nil
}

func (r *IngredientRepository) GetByID(_ context.Context, userID, id int64) (*entity.Ingredient, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	n, err := r.s.ingredients.get(userID, id)
	if err != nil {
		return nil, err
	}
	i := entity.Ingredient(n)
	return &i, nil
}

func (r *IngredientRepository) GetOrCreate(_ context.Context, userID int64, name string) (*entity.Ingredient, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	i := entity.Ingredient(r.s.ingredients.getOrCreate(userID, name))
	return &i, nil
}

func (r *IngredientRepository) Update(_ context.Context, in *entity.Ingredient) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.ingredients.update(namedRow(*in))
}

func (r *IngredientRepository) Delete(_ context.Context, userID, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.ingredients.delete(userID, id)
}

var _ repository.IngredientRepository = (*IngredientRepository)(nil)
