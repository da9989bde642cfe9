package handlers

import (
	"time"

	"github.com/oksasatya/go-recipe-api/internal/domain/entity"
)

type userResponse struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

type namedResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type recipeResponse struct {
	ID          int64           `json:"id"`
	Title       string          `json:"title"`
	TimeMinutes int             `json:"time_minutes"`
	Price       string          `json:"price"`
	Link        string          `json:"link"`
	Tags        []namedResponse `json:"tags"`
	Ingredients []namedResponse `json:"ingredients"`
}

type recipeDetailResponse struct {
	recipeResponse
	Description string    `json:"description"`
	Image       *string   `json:"image"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type recipeImageResponse struct {
	ID    int64  `json:"id"`
	Image string `json:"image"`
}

func toUserResponse(u *entity.User) userResponse {
	return userResponse{ID: u.ID, Email: u.Email, Name: u.Name}
}

func toTagResponse(t entity.Tag) namedResponse {
	return namedResponse{ID: t.ID, Name: t.Name}
}

func toIngredientResponse(i entity.Ingredient) namedResponse {
	return namedResponse{ID: i.ID, Name: i.Name}
}

func toRecipeResponse(r *entity.Recipe) recipeResponse {
	tags := make([]namedResponse, 0, len(r.Tags))
	for _, t := range r.Tags {
		tags = append(tags, toTagResponse(t))
	}
	ingredients := make([]namedResponse, 0, len(r.Ingredients))
	for _, i := range r.Ingredients {
		ingredients = append(ingredients, toIngredientResponse(i))
	}
	return recipeResponse{
		ID:          r.ID,
		Title:       r.Title,
		TimeMinutes: r.TimeMinutes,
		Price:       r.Price.StringFixed(2),
		Link:        r.Link,
		Tags:        tags,
		Ingredients: ingredients,
	}
}

func toRecipeDetailResponse(r *entity.Recipe) recipeDetailResponse {
	d := recipeDetailResponse{
		recipeResponse: toRecipeResponse(r),
		Description:    r.Description,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
	if r.Image != "" {
		img := r.Image
		d.Image = &img
	}
	return d
}

func toRecipeList(rs []entity.Recipe) []recipeResponse {
	out := make([]recipeResponse, 0, len(rs))
	for i := range rs {
		out = append(out, toRecipeResponse(&rs[i]))
	}
	return out
}
