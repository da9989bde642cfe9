package memory

import (
	"context"
	"sort"

	"github.com/oksasatya/go-recipe-api/internal/domain/entity"
	"github.com/oksasatya/go-recipe-api/internal/domain/repository"
)

type RecipeRepository struct {
	s *Store
}

func (r *RecipeRepository) Create(_ context.Context, rec *entity.Recipe) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rec.ID = r.s.id()
	rec.CreatedAt = now()
	rec.UpdatedAt = rec.CreatedAt
	row := &recipeRow{Recipe: *rec}
	r.s.link(row, rec, repository.RelationUpdate{Tags: true, Ingredients: true})
	row.Tags, row.Ingredients = nil, nil
	r.s.recipes[rec.ID] = row
	return nil
}

func (r *RecipeRepository) GetByID(_ context.Context, userID, id int64) (*entity.Recipe, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	row, ok := r.s.recipes[id]
	if !ok || row.UserID != userID {
		return nil, repository.ErrNotFound
	}
	rec := r.s.recipe(row)
	return &rec, nil
}

func (r *RecipeRepository) List(_ context.Context, userID int64, f repository.RecipeFilter) ([]entity.Recipe, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]entity.Recipe, 0)
	for _, row := range r.s.recipes {
		if row.UserID != userID {
			continue
		}
		if len(f.TagIDs) > 0 && !containsAny(row.tagIDs, f.TagIDs) {
			continue
		}
		if len(f.IngredientIDs) > 0 && !containsAny(row.ingredientIDs, f.IngredientIDs) {
			continue
		}
		if !matches(row.Recipe, f.Query) {
			continue
		}
		out = append(out, r.s.recipe(row))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (r *RecipeRepository) Update(_ context.Context, rec *entity.Recipe, rel repository.RelationUpdate) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	row, ok := r.s.recipes[rec.ID]
	if !ok || row.UserID != rec.UserID {
		return repository.ErrNotFound
	}
	row.Title = rec.Title
	row.TimeMinutes = rec.TimeMinutes
	row.Price = rec.Price
	row.Description = rec.Description
	row.Link = rec.Link
	row.UpdatedAt = now()
	rec.UpdatedAt = row.UpdatedAt
	r.s.link(row, rec, rel)
	return nil
}

func (r *RecipeRepository) SetImage(_ context.Context, userID, id int64, image string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	row, ok := r.s.recipes[id]
	if !ok || row.UserID != userID {
		return repository.ErrNotFound
	}
	row.Image = image
	row.UpdatedAt = now()
	return nil
}

func (r *RecipeRepository) Delete(_ context.Context, userID, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	row, ok := r.s.recipes[id]
	if !ok || row.UserID != userID {
		return repository.ErrNotFound
	}
	delete(r.s.recipes, id)
	return nil
}

var _ repository.RecipeRepository = (*RecipeRepository)(nil)
