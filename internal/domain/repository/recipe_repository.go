package repository

import (
	"context"

	"github.com/oksasatya/go-recipe-api/internal/domain/entity"
)

// RecipeFilter narrows a recipe listing. Empty fields do not filter.
type RecipeFilter struct {
	TagIDs        []int64 // recipes linked to any of these tags
	IngredientIDs []int64 // recipes linked to any of these ingredients
	Query         string  // case-insensitive match on title or description
	Limit         int
}

// RelationUpdate selects which relation sets an Update replaces.
type RelationUpdate struct {
	Tags        bool
	Ingredients bool
}

// RecipeRepository stores recipes and their tag/ingredient links.
// Every read and write is scoped by the owning user id.
type RecipeRepository interface {
	// Create inserts the recipe and links r.Tags and r.Ingredients. Entries
	// without an id are resolved by name against the owner's rows and created
	// when absent, in the same transaction as the recipe row.
	Create(ctx context.Context, r *entity.Recipe) error
	GetByID(ctx context.Context, userID, id int64) (*entity.Recipe, error)
	// List returns the owner's recipes, newest first.
	List(ctx context.Context, userID int64, f RecipeFilter) ([]entity.Recipe, error)
	// Update writes scalar fields and replaces the relation sets selected by rel,
	// resolving names the way Create does.
	Update(ctx context.Context, r *entity.Recipe, rel RelationUpdate) error
	SetImage(ctx context.Context, userID, id int64, image string) error
	Delete(ctx context.Context, userID, id int64) error
}

// TagRepository stores owner-scoped tags.
type TagRepository interface {
	// List returns tags ordered by name descending. With assignedOnly only tags
	// linked to at least one of the owner's recipes are returned, once each.
	List(ctx context.Context, userID int64, assignedOnly bool) ([]entity.Tag, error)
	GetByID(ctx context.Context, userID, id int64) (*entity.Tag, error)
	// GetOrCreate returns the owner's tag with this name, creating it if absent.
	GetOrCreate(ctx context.Context, userID int64, name string) (*entity.Tag, error)
	Update(ctx context.Context, t *entity.Tag) error
	Delete(ctx context.Context, userID, id int64) error
}

// IngredientRepository stores owner-scoped ingredients.
type IngredientRepository interface {
	List(ctx context.Context, userID int64, assignedOnly bool) ([]entity.Ingredient, error)
	GetByID(ctx context.Context, userID, id int64) (*entity.Ingredient, error)
	GetOrCreate(ctx context.Context, userID int64, name string) (*entity.Ingredient, error)
	Update(ctx context.Context, i *entity.Ingredient) error
	Delete(ctx context.Context, userID, id int64) error
}
