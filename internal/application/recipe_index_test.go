package application

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-recipe-api/internal/infrastructure/memory"
)

// fakeES records indexed documents and index creation requests.
type fakeES struct {
	mu      sync.Mutex
	docs    map[string]map[string]any
	created string
	exists  bool
}

func (f *fakeES) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	w.Header().Set("Content-Type", "application/json")
	f.mu.Lock()
	defer f.mu.Unlock()

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	switch {
	case r.Method == http.MethodHead && len(parts) == 1:
		if !f.exists {
			w.WriteHeader(http.StatusNotFound)
		}
	case r.Method == http.MethodPut && len(parts) == 1:
		b, _ := io.ReadAll(r.Body)
		f.created = string(b)
		f.exists = true
		_, _ = w.Write([]byte(`{"acknowledged":true}`))
	case r.Method == http.MethodPut && len(parts) == 3 && parts[1] == "_doc":
		var doc map[string]any
		_ = json.NewDecoder(r.Body).Decode(&doc)
		f.docs[parts[2]] = doc
		_, _ = w.Write([]byte(`{"result":"updated"}`))
	case r.Method == http.MethodDelete && len(parts) == 3:
		delete(f.docs, parts[2])
		_, _ = w.Write([]byte(`{"result":"deleted"}`))
	default:
		w.WriteHeader(http.StatusBadRequest)
	}
}

func (f *fakeES) doc(id string) map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.docs[id]
}

func newFakeIndex(t *testing.T) (*fakeES, *RecipeIndex) {
	t.Helper()
	f := &fakeES{docs: map[string]map[string]any{}}
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)

	es, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}, DisableRetry: true})
	require.NoError(t, err)
	return f, NewRecipeIndex(es, "recipes", time.Second, nil)
}

func TestRecipeIndex_EnsureIndexCreatesOnce(t *testing.T) {
	f, index := newFakeIndex(t)
	ctx := context.Background()

	require.NoError(t, index.EnsureIndex(ctx))
	assert.Contains(t, f.created, `"time_minutes"`)

	f.created = ""
	require.NoError(t, index.EnsureIndex(ctx))
	assert.Empty(t, f.created)

	var none *RecipeIndex
	assert.NoError(t, none.EnsureIndex(ctx))
}

func TestTagService_RenameAndDeleteReindexRecipes(t *testing.T) {
	f, index := newFakeIndex(t)
	repos := memory.NewRepositories()
	recipes := NewRecipeService(repos.Recipes, nil, index, nil)
	tags := NewTagService(repos.Tags, repos.Recipes, index, nil)
	ctx := context.Background()

	in := sampleInput("Curry")
	in.Tags = ptr([]string{"Spicy"})
	r, err := recipes.Create(ctx, 1, in)
	require.NoError(t, err)
	id := r.Tags[0].ID
	docID := strconv.FormatInt(r.ID, 10)
	assert.Equal(t, []any{"Spicy"}, f.doc(docID)["tags"])

	_, err = tags.Rename(ctx, 1, id, ptr("Hot"))
	require.NoError(t, err)
	assert.Equal(t, []any{"Hot"}, f.doc(docID)["tags"])

	require.NoError(t, tags.Delete(ctx, 1, id))
	assert.Empty(t, f.doc(docID)["tags"])
}

func TestIngredientService_RenameAndDeleteReindexRecipes(t *testing.T) {
	f, index := newFakeIndex(t)
	repos := memory.NewRepositories()
	recipes := NewRecipeService(repos.Recipes, nil, index, nil)
	ingredients := NewIngredientService(repos.Ingredients, repos.Recipes, index, nil)
	ctx := context.Background()

	in := sampleInput("Omelette")
	in.Ingredients = ptr([]string{"Eggs", "Salt"})
	r, err := recipes.Create(ctx, 1, in)
	require.NoError(t, err)
	other, err := recipes.Create(ctx, 1, sampleInput("Toast"))
	require.NoError(t, err)

	var eggs int64
	for _, i := range r.Ingredients {
		if i.Name == "Eggs" {
			eggs = i.ID
		}
	}
	require.NotZero(t, eggs)

	_, err = ingredients.Rename(ctx, 1, eggs, ptr("Duck eggs"))
	require.NoError(t, err)
	assert.ElementsMatch(t, []any{"Duck eggs", "Salt"}, f.doc(strconv.FormatInt(r.ID, 10))["ingredients"])

	require.NoError(t, ingredients.Delete(ctx, 1, eggs))
	assert.Equal(t, []any{"Salt"}, f.doc(strconv.FormatInt(r.ID, 10))["ingredients"])
	assert.Empty(t, f.doc(strconv.FormatInt(other.ID, 10))["ingredients"])

	assert.ErrorIs(t, ingredients.Delete(ctx, 2, eggs), ErrNotFound)
}
