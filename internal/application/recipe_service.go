package application

import (
	"bytes"
	"context"
	"errors"
	"math"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-recipe-api/internal/domain/entity"
	repo "github.com/oksasatya/go-recipe-api/internal/domain/repository"
	"github.com/oksasatya/go-recipe-api/pkg/helpers"
)

const (
	maxTitleLen   = 255
	maxLinkLen    = 255
	maxMinutes    = math.MaxInt32
	maxSearchSize = 100
)

var maxPrice = decimal.NewFromInt(100000)

type RecipeService struct {
	Recipes repo.RecipeRepository
	Images  repo.ImageStore
	Index   *RecipeIndex
	Logger  *logrus.Logger
}

func NewRecipeService(recipes repo.RecipeRepository, images repo.ImageStore, index *RecipeIndex, logger *logrus.Logger) *RecipeService {
	return &RecipeService{
		Recipes: recipes,
		Images:  images,
		Index:   index,
		Logger:  logger,
	}
}

// RecipeInput is a create or update payload. Nil fields are not supplied.
// A nil Tags or Ingredients leaves the relation unchanged; an empty slice clears it.
type RecipeInput struct {
	Title       *string
	TimeMinutes *int
	Price       *decimal.Decimal
	Description *string
	Link        *string
	Tags        *[]string
	Ingredients *[]string
}

func (s *RecipeService) Create(ctx context.Context, userID int64, in RecipeInput) (*entity.Recipe, error) {
	if err := requireFields(in); err != nil {
		return nil, err
	}
	r := &entity.Recipe{UserID: userID}
	if err := applyScalars(r, in); err != nil {
		return nil, err
	}
	if err := resolveRelations(r, in); err != nil {
		return nil, err
	}
	if err := s.Recipes.Create(ctx, r); err != nil {
		return nil, err
	}
	s.log().WithFields(logrus.Fields{"user_id": userID, "recipe_id": r.ID}).Info("recipe created")
	return s.reload(ctx, userID, r.ID)
}

func (s *RecipeService) Get(ctx context.Context, userID, id int64) (*entity.Recipe, error) {
	r, err := s.Recipes.GetByID(ctx, userID, id)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	return r, nil
}

func (s *RecipeService) List(ctx context.Context, userID int64, tagIDs, ingredientIDs []int64) ([]entity.Recipe, error) {
	return s.Recipes.List(ctx, userID, repo.RecipeFilter{TagIDs: tagIDs, IngredientIDs: ingredientIDs})
}

// Update applies in to the owner's recipe. With full set, title, time_minutes
// and price are required as for Create.
func (s *RecipeService) Update(ctx context.Context, userID, id int64, in RecipeInput, full bool) (*entity.Recipe, error) {
	if full {
		if err := requireFields(in); err != nil {
			return nil, err
		}
	}
	r, err := s.Recipes.GetByID(ctx, userID, id)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	if err := applyScalars(r, in); err != nil {
		return nil, err
	}
	if err := resolveRelations(r, in); err != nil {
		return nil, err
	}
	rel := repo.RelationUpdate{Tags: in.Tags != nil, Ingredients: in.Ingredients != nil}
	if err := s.Recipes.Update(ctx, r, rel); err != nil {
		return nil, mapRepoErr(err)
	}
	return s.reload(ctx, userID, id)
}

func (s *RecipeService) Delete(ctx context.Context, userID, id int64) error {
	r, err := s.Recipes.GetByID(ctx, userID, id)
	if err != nil {
		return mapRepoErr(err)
	}
	if err := s.Recipes.Delete(ctx, userID, id); err != nil {
		return mapRepoErr(err)
	}
	s.deleteImage(ctx, r.Image)
	if err := s.Index.Remove(ctx, id); err != nil {
		s.log().WithError(err).WithField("recipe_id", id).Warn("search index remove failed")
	}
	s.log().WithFields(logrus.Fields{"user_id": userID, "recipe_id": id}).Info("recipe deleted")
	return nil
}

// UploadImage validates data as an image and attaches it to the recipe.
// The previous image is removed only after the recipe points at the new one.
func (s *RecipeService) UploadImage(ctx context.Context, userID, id int64, data []byte) (*entity.Recipe, error) {
	r, err := s.Recipes.GetByID(ctx, userID, id)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	info, err := helpers.DetectImage(data)
	if err != nil {
		return nil, ErrInvalidImage
	}
	key := "uploads/recipe/" + uuid.NewString() + info.Ext
	ref, err := s.Images.Save(ctx, key, info.ContentType, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if err := s.Recipes.SetImage(ctx, userID, id, ref); err != nil {
		s.deleteImage(ctx, ref)
		return nil, mapRepoErr(err)
	}
	s.deleteImage(ctx, r.Image)
	return s.reload(ctx, userID, id)
}

// Search matches the owner's recipes by text. Elasticsearch is used when
// configured; otherwise, or when it fails, the repository filter is used.
func (s *RecipeService) Search(ctx context.Context, userID int64, q string, size int) ([]entity.Recipe, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, fieldError("q", "This field is required.")
	}
	if size <= 0 || size > maxSearchSize {
		size = 20
	}
	if s.Index != nil {
		ids, err := s.Index.Search(ctx, userID, q, size)
		if err == nil {
			out := make([]entity.Recipe, 0, len(ids))
			for _, id := range ids {
				r, gErr := s.Recipes.GetByID(ctx, userID, id)
				if gErr != nil {
					continue
				}
				out = append(out, *r)
			}
			return out, nil
		}
		s.log().WithError(err).Warn("es search failed, falling back to database")
	}
	return s.Recipes.List(ctx, userID, repo.RecipeFilter{Query: q, Limit: size})
}

// reload reads the stored recipe back and refreshes the search index.
func (s *RecipeService) reload(ctx context.Context, userID, id int64) (*entity.Recipe, error) {
	r, err := s.Recipes.GetByID(ctx, userID, id)
	if err != nil {
		return nil, mapRepoErr(err)
	}
	if err := s.Index.Put(ctx, r); err != nil {
		s.log().WithError(err).WithField("recipe_id", id).Warn("search index put failed")
	}
	return r, nil
}

func (s *RecipeService) deleteImage(ctx context.Context, ref string) {
	if ref == "" || s.Images == nil {
		return
	}
	if err := s.Images.Delete(ctx, ref); err != nil {
		s.log().WithError(err).WithField("image", ref).Warn("image delete failed")
	}
}

// resolveRelations turns the payload names into owner-scoped rows. Rows are
// looked up or created by the repository inside the recipe write.
func resolveRelations(r *entity.Recipe, in RecipeInput) error {
	if in.Tags != nil {
		names, err := cleanNames("tags", *in.Tags)
		if err != nil {
			return err
		}
		r.Tags = make([]entity.Tag, 0, len(names))
		for _, n := range names {
			r.Tags = append(r.Tags, entity.Tag{UserID: r.UserID, Name: n})
		}
	}
	if in.Ingredients != nil {
		names, err := cleanNames("ingredients", *in.Ingredients)
		if err != nil {
			return err
		}
		r.Ingredients = make([]entity.Ingredient, 0, len(names))
		for _, n := range names {
			r.Ingredients = append(r.Ingredients, entity.Ingredient{UserID: r.UserID, Name: n})
		}
	}
	return nil
}

func (s *RecipeService) log() *logrus.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return logrus.StandardLogger()
}

func requireFields(in RecipeInput) error {
	ve := &ValidationError{Fields: map[string]string{}}
	if in.Title == nil {
		ve.Fields["title"] = "This field is required."
	}
	if in.TimeMinutes == nil {
		ve.Fields["time_minutes"] = "This field is required."
	}
	if in.Price == nil {
		ve.Fields["price"] = "This field is required."
	}
	if len(ve.Fields) > 0 {
		return ve
	}
	return nil
}

func applyScalars(r *entity.Recipe, in RecipeInput) error {
	ve := &ValidationError{Fields: map[string]string{}}
	if in.Title != nil {
		t := strings.TrimSpace(*in.Title)
		switch {
		case t == "":
			ve.Fields["title"] = "This field may not be blank."
		case len([]rune(t)) > maxTitleLen:
			ve.Fields["title"] = "Ensure this field has no more than 255 characters."
		default:
			r.Title = t
		}
	}
	if in.TimeMinutes != nil {
		switch m := *in.TimeMinutes; {
		case m < 0:
			ve.Fields["time_minutes"] = "Ensure this value is greater than or equal to 0."
		case m > maxMinutes:
			ve.Fields["time_minutes"] = "Ensure this value is less than or equal to 2147483647."
		default:
			r.TimeMinutes = m
		}
	}
	if in.Price != nil {
		p := *in.Price
		switch {
		case p.IsNegative():
			ve.Fields["price"] = "Ensure this value is greater than or equal to 0."
		case !p.Equal(p.Round(2)):
			ve.Fields["price"] = "Ensure that there are no more than 2 decimal places."
		case p.GreaterThanOrEqual(maxPrice):
			ve.Fields["price"] = "Ensure that there are no more than 7 digits in total."
		default:
			r.Price = p
		}
	}
	if in.Description != nil {
		r.Description = *in.Description
	}
	if in.Link != nil {
		l := strings.TrimSpace(*in.Link)
		switch {
		case len(l) > maxLinkLen:
			ve.Fields["link"] = "Ensure this field has no more than 255 characters."
		case l != "" && !validURL(l):
			ve.Fields["link"] = "Enter a valid URL."
		default:
			r.Link = l
		}
	}
	if len(ve.Fields) > 0 {
		return ve
	}
	return nil
}

func validURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// cleanNames trims names and drops duplicates, keeping first-seen order.
func cleanNames(field string, names []string) ([]string, error) {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			return nil, fieldError(field, "name: This field may not be blank.")
		}
		if len([]rune(n)) > maxTitleLen {
			return nil, fieldError(field, "name: Ensure this field has no more than 255 characters.")
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out, nil
}

func mapRepoErr(err error) error {
	switch {
	case errors.Is(err, repo.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, repo.ErrConflict):
		return ErrDuplicateName
	}
	return err
}
