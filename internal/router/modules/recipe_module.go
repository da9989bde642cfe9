package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-recipe-api/internal/container"
	handlers "github.com/oksasatya/go-recipe-api/internal/interface/http"
	"github.com/oksasatya/go-recipe-api/internal/interface/middleware"
	"github.com/oksasatya/go-recipe-api/pkg/helpers"
)

// RecipeModule wires the catalog under /recipe. Every route requires authentication.
type RecipeModule struct {
	Recipes     *handlers.RecipeHandler
	Tags        *handlers.TagHandler
	Ingredients *handlers.IngredientHandler
	JWT         *helpers.JWTManager
}

func NewRecipeModule(recipes *handlers.RecipeHandler, tags *handlers.TagHandler, ingredients *handlers.IngredientHandler, jwt *helpers.JWTManager) *RecipeModule {
	return &RecipeModule{Recipes: recipes, Tags: tags, Ingredients: ingredients, JWT: jwt}
}

func (m *RecipeModule) Register(rg *gin.RouterGroup) {
	rdb := container.GetRedis()

	g := rg.Group("/recipe")
	g.Use(middleware.Auth(rdb, m.JWT))
	g.Use(middleware.RateLimit(rdb, 300, time.Minute, middleware.KeyByUserID(), nil))

	g.GET("/recipes", m.Recipes.List)
	g.POST("/recipes", m.Recipes.Create)
	g.GET("/recipes/:id", m.Recipes.Get)
	g.PUT("/recipes/:id", m.Recipes.Update)
	g.PATCH("/recipes/:id", m.Recipes.Update)
	g.DELETE("/recipes/:id", m.Recipes.Delete)
	g.POST("/recipes/:id/upload-image",
		middleware.RateLimit(rdb, 30, time.Minute, middleware.KeyByUserID(), nil),
		m.Recipes.UploadImage,
	)
	g.GET("/search", m.Recipes.Search)

	g.GET("/tags", m.Tags.List)
	g.GET("/tags/:id", m.Tags.Get)
	g.PUT("/tags/:id", m.Tags.Update)
	g.PATCH("/tags/:id", m.Tags.Update)
	g.DELETE("/tags/:id", m.Tags.Delete)

	g.GET("/ingredients", m.Ingredients.List)
	g.GET("/ingredients/:id", m.Ingredients.Get)
	g.PUT("/ingredients/:id", m.Ingredients.Update)
	g.PATCH("/ingredients/:id", m.Ingredients.Update)
	g.DELETE("/ingredients/:id", m.Ingredients.Delete)
}
