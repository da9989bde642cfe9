package application

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-recipe-api/internal/domain/entity"
	repo "github.com/oksasatya/go-recipe-api/internal/domain/repository"
)

// recipeReindexer refreshes the search documents of recipes whose tag or
// ingredient names changed underneath them.
type recipeReindexer struct {
	Recipes repo.RecipeRepository
	Index   *RecipeIndex
	Logger  *logrus.Logger
}

// affected lists the ids of the owner's recipes matching f.
func (x recipeReindexer) affected(ctx context.Context, userID int64, f repo.RecipeFilter) []int64 {
	if x.Index == nil || x.Recipes == nil {
		return nil
	}
	recipes, err := x.Recipes.List(ctx, userID, f)
	if err != nil {
		x.log().WithError(err).WithField("user_id", userID).Warn("reindex lookup failed")
		return nil
	}
	ids := make([]int64, 0, len(recipes))
	for _, r := range recipes {
		ids = append(ids, r.ID)
	}
	return ids
}

func (x recipeReindexer) refresh(ctx context.Context, userID int64, ids []int64) {
	for _, id := range ids {
		r, err := x.Recipes.GetByID(ctx, userID, id)
		if err != nil {
			x.log().WithError(err).WithField("recipe_id", id).Warn("reindex load failed")
			continue
		}
		if err := x.Index.Put(ctx, r); err != nil {
			x.log().WithError(err).WithField("recipe_id", id).Warn("search index put failed")
		}
	}
}

func (x recipeReindexer) log() *logrus.Logger {
	if x.Logger != nil {
		return x.Logger
	}
	return logrus.StandardLogger()
}

type TagService struct {
	Repo    repo.TagRepository
	reindex recipeReindexer
}

// NewTagService builds the tag service. recipes and index may be nil when
// there is no search index to keep current.
func NewTagService(r repo.TagRepository, recipes repo.RecipeRepository, index *RecipeIndex, logger *logrus.Logger) *TagService {
	return &TagService{Repo: r, reindex: recipeReindexer{Recipes: recipes, Index: index, Logger: logger}}
}

func (s *TagService) List(ctx context.Context, userID int64, assignedOnly bool) ([]entity.Tag, error) {
	return s.Repo.List(ctx, userID, assignedOnly)
}

func (s *TagService) Get(ctx context.Context, userID, id int64) (*entity.Tag, error) {
	t, err := s.Repo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	return t, nil
}

// Rename changes the tag's name. A nil name leaves the tag as is.
func (s *TagService) Rename(ctx context.Context, userID, id int64, name *string) (*entity.Tag, error) {
	t, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if name == nil {
		return t, nil
	}
	n, err := cleanName(*name)
	if err != nil {
		return nil, err
	}
	if n == t.Name {
		return t, nil
	}
	t.Name = n
	if err := s.Repo.Update(ctx, t); err != nil {
		return nil, mapRepoErr(err)
	}
	s.reindex.refresh(ctx, userID, s.reindex.affected(ctx, userID, repo.RecipeFilter{TagIDs: []int64{id}}))
	return t, nil
}

// Delete removes the tag and detaches it from the owner's recipes.
func (s *TagService) Delete(ctx context.Context, userID, id int64) error {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return err
	}
	ids := s.reindex.affected(ctx, userID, repo.RecipeFilter{TagIDs: []int64{id}})
	if err := s.Repo.Delete(ctx, userID, id); err != nil {
		return mapRepoErr(err)
	}
	s.reindex.refresh(ctx, userID, ids)
	return nil
}

type IngredientService struct {
	Repo    repo.IngredientRepository
	reindex recipeReindexer
}

func NewIngredientService(r repo.IngredientRepository, recipes repo.RecipeRepository, index *RecipeIndex, logger *logrus.Logger) *IngredientService {
	return &IngredientService{Repo: r, reindex: recipeReindexer{Recipes: recipes, Index: index, Logger: logger}}
}

func (s *IngredientService) List(ctx context.Context, userID int64, assignedOnly bool) ([]entity.Ingredient, error) {
	return s.Repo.List(ctx, userID, assignedOnly)
}

func (s *IngredientService) Get(ctx context.Context, userID, id int64) (*entity.Ingredient, error) {
	i, err := s.Repo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	return i, nil
}

func (s *IngredientService) Rename(ctx context.Context, userID, id int64, name *string) (*entity.Ingredient, error) {
	i, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if name == nil {
		return i, nil
	}
	n, err := cleanName(*name)
	if err != nil {
		return nil, err
	}
	if n == i.Name {
		return i, nil
	}
	i.Name = n
	if err := s.Repo.Update(ctx, i); err != nil {
		return nil, mapRepoErr(err)
	}
	s.reindex.refresh(ctx, userID, s.reindex.affected(ctx, userID, repo.RecipeFilter{IngredientIDs: []int64{id}}))
	return i, nil
}

func (s *IngredientService) Delete(ctx context.Context, userID, id int64) error {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return err
	}
	ids := s.reindex.affected(ctx, userID, repo.RecipeFilter{IngredientIDs: []int64{id}})
	if err := s.Repo.Delete(ctx, userID, id); err != nil {
		return mapRepoErr(err)
	}
	s.reindex.refresh(ctx, userID, ids)
	return nil
}

func cleanName(name string) (string, error) {
	n := strings.TrimSpace(name)
	if n == "" {
		return "", fieldError("name", "This field may not be blank.")
	}
	if len([]rune(n)) > maxTitleLen {
		return "", fieldError("name", "Ensure this field has no more than 255 characters.")
	}
	return n, nil
}
