package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-recipe-api/internal/infrastructure/memory"
)

func TestTagService_Rename(t *testing.T) {
	repos := memory.NewRepositories()
	svc := NewTagService(repos.Tags, repos.Recipes, nil, nil)
	ctx := context.Background()

	a, err := repos.Tags.GetOrCreate(ctx, 1, "Dinner")
	require.NoError(t, err)
	_, err = repos.Tags.GetOrCreate(ctx, 1, "Lunch")
	require.NoError(t, err)

	got, err := svc.Rename(ctx, 1, a.ID, ptr("  Supper "))
	require.NoError(t, err)
	assert.Equal(t, "Supper", got.Name)

	_, err = svc.Rename(ctx, 1, a.ID, ptr("Lunch"))
	assert.ErrorIs(t, err, ErrDuplicateName)

	_, err = svc.Rename(ctx, 1, a.ID, ptr(" "))
	var ve *ValidationError
	assert.ErrorAs(t, err, &ve)

	_, err = svc.Rename(ctx, 2, a.ID, ptr("Stolen"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTagService_DeleteScopedToOwner(t *testing.T) {
	repos := memory.NewRepositories()
	svc := NewTagService(repos.Tags, repos.Recipes, nil, nil)
	ctx := context.Background()

	tag, err := repos.Tags.GetOrCreate(ctx, 1, "Dinner")
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Delete(ctx, 2, tag.ID), ErrNotFound)
	require.NoError(t, svc.Delete(ctx, 1, tag.ID))
	_, err = svc.Get(ctx, 1, tag.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestIngredientService_AssignedOnly(t *testing.T) {
	repos := memory.NewRepositories()
	recipes := NewRecipeService(repos.Recipes, nil, nil, nil)
	svc := NewIngredientService(repos.Ingredients, repos.Recipes, nil, nil)
	ctx := context.Background()

	for _, title := range []string{"Eggs Benedict", "Herb Eggs"} {
		in := sampleInput(title)
		in.Ingredients = ptr([]string{"Eggs"})
		_, err := recipes.Create(ctx, 1, in)
		require.NoError(t, err)
	}
	_, err := repos.Ingredients.GetOrCreate(ctx, 1, "Cheese")
	require.NoError(t, err)

	all, err := svc.List(ctx, 1, false)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Eggs", all[0].Name)
	assert.Equal(t, "Cheese", all[1].Name)

	assigned, err := svc.List(ctx, 1, true)
	require.NoError(t, err)
	require.Len(t, assigned, 1)
	assert.Equal(t, "Eggs", assigned[0].Name)
}
