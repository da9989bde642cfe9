package memory

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-recipe-api/internal/domain/entity"
	"github.com/oksasatya/go-recipe-api/internal/domain/repository"
)

func newRecipe(userID int64, title string) *entity.Recipe {
	return &entity.Recipe{UserID: userID, Title: title, TimeMinutes: 10, Price: decimal.RequireFromString("2.50")}
}

func TestRecipeRepository_CreateResolvesNames(t *testing.T) {
	repos := NewRepositories()
	ctx := context.Background()

	existing, err := repos.Tags.GetOrCreate(ctx, 1, "Vegan")
	require.NoError(t, err)

	rec := newRecipe(1, "Curry")
	rec.Tags = []entity.Tag{{UserID: 1, Name: "Vegan"}, {UserID: 1, Name: "Spicy"}, {UserID: 1, Name: "Spicy"}}
	rec.Ingredients = []entity.Ingredient{{UserID: 1, Name: "Rice"}}
	require.NoError(t, repos.Recipes.Create(ctx, rec))

	require.Len(t, rec.Tags, 2)
	assert.Equal(t, "Spicy", rec.Tags[0].Name)
	assert.Equal(t, existing.ID, rec.Tags[1].ID)
	require.Len(t, rec.Ingredients, 1)
	assert.NotZero(t, rec.Ingredients[0].ID)

	all, err := repos.Tags.List(ctx, 1, false)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	got, err := repos.Recipes.GetByID(ctx, 1, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.Tags, got.Tags)
}

func TestRecipeRepository_UpdateKeepsUntouchedRelation(t *testing.T) {
	repos := NewRepositories()
	ctx := context.Background()

	rec := newRecipe(1, "Soup")
	rec.Tags = []entity.Tag{{UserID: 1, Name: "Dinner"}}
	rec.Ingredients = []entity.Ingredient{{UserID: 1, Name: "Leek"}}
	require.NoError(t, repos.Recipes.Create(ctx, rec))

	rec.Tags = nil
	rec.Ingredients = nil
	require.NoError(t, repos.Recipes.Update(ctx, rec, repository.RelationUpdate{Tags: true}))

	got, err := repos.Recipes.GetByID(ctx, 1, rec.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Tags)
	require.Len(t, got.Ingredients, 1)
	assert.Equal(t, "Leek", got.Ingredients[0].Name)
}

func TestNamedRepositories_ShareListAndDeleteRules(t *testing.T) {
	repos := NewRepositories()
	ctx := context.Background()

	rec := newRecipe(1, "Salad")
	rec.Tags = []entity.Tag{{UserID: 1, Name: "Lunch"}}
	rec.Ingredients = []entity.Ingredient{{UserID: 1, Name: "Lettuce"}}
	require.NoError(t, repos.Recipes.Create(ctx, rec))
	_, err := repos.Tags.GetOrCreate(ctx, 1, "Brunch")
	require.NoError(t, err)
	_, err = repos.Ingredients.GetOrCreate(ctx, 1, "Anchovy")
	require.NoError(t, err)
	_, err = repos.Tags.GetOrCreate(ctx, 2, "Zebra")
	require.NoError(t, err)

	tags, err := repos.Tags.List(ctx, 1, false)
	require.NoError(t, err)
	require.Len(t, tags, 2)
	assert.Equal(t, "Lunch", tags[0].Name)
	assert.Equal(t, "Brunch", tags[1].Name)

	assignedTags, err := repos.Tags.List(ctx, 1, true)
	require.NoError(t, err)
	assert.Len(t, assignedTags, 1)
	assignedIngredients, err := repos.Ingredients.List(ctx, 1, true)
	require.NoError(t, err)
	require.Len(t, assignedIngredients, 1)
	assert.Equal(t, "Lettuce", assignedIngredients[0].Name)

	lettuce := assignedIngredients[0]
	assert.ErrorIs(t, repos.Ingredients.Delete(ctx, 2, lettuce.ID), repository.ErrNotFound)
	require.NoError(t, repos.Ingredients.Delete(ctx, 1, lettuce.ID))
	got, err := repos.Recipes.GetByID(ctx, 1, rec.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Ingredients)
	assert.Len(t, got.Tags, 1)
}

func TestNamedRepositories_UpdateConflicts(t *testing.T) {
	repos := NewRepositories()
	ctx := context.Background()

	a, err := repos.Ingredients.GetOrCreate(ctx, 1, "Salt")
	require.NoError(t, err)
	_, err = repos.Ingredients.GetOrCreate(ctx, 1, "Pepper")
	require.NoError(t, err)

	a.Name = "Pepper"
	assert.ErrorIs(t, repos.Ingredients.Update(ctx, a), repository.ErrConflict)

	a.Name = "Sea salt"
	require.NoError(t, repos.Ingredients.Update(ctx, a))
	got, err := repos.Ingredients.GetByID(ctx, 1, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "Sea salt", got.Name)

	foreign := &entity.Tag{ID: a.ID, UserID: 2, Name: "x"}
	assert.ErrorIs(t, repos.Tags.Update(ctx, foreign), repository.ErrNotFound)
}
