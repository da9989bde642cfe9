package router

import (
	app "github.com/oksasatya/go-recipe-api/internal/application"
	"github.com/oksasatya/go-recipe-api/internal/container"
	"github.com/oksasatya/go-recipe-api/internal/infrastructure/storage"
	handlers "github.com/oksasatya/go-recipe-api/internal/interface/http"
	"github.com/oksasatya/go-recipe-api/internal/router/modules"
	"github.com/oksasatya/go-recipe-api/pkg/helpers"
)

type UserModuleDeps struct {
	Service *app.UserService
	Handler *handlers.UserHandler
}

type RecipeModuleDeps struct {
	Recipes     *handlers.RecipeHandler
	Tags        *handlers.TagHandler
	Ingredients *handlers.IngredientHandler
}

func buildUserDeps() UserModuleDeps {
	cfg := container.GetConfig()

	// a nil *RabbitPublisher must not become a non-nil interface
	var mail app.EmailPublisher
	if pub := container.GetRabbitPub(); pub != nil {
		mail = pub
	}

	service := app.NewUserService(
		container.GetRepositories().Users,
		container.GetJWT(),
		container.GetRedis(),
		container.GetLogger(),
		mail,
	)
	service.Passwords = helpers.NewPasswordHasher(cfg.BcryptCost)

	handler := handlers.NewUserHandler(
		service,
		container.GetLogger(),
		helpers.NewCookieManager(cfg.CookieDomain, cfg.CookieSecure, helpers.ParseSameSite(cfg.CookieSameSite)),
	)

	return UserModuleDeps{
		Service: service,
		Handler: handler,
	}
}

func buildRecipeDeps() RecipeModuleDeps {
	cfg := container.GetConfig()
	repos := container.GetRepositories()
	logger := container.GetLogger()

	index := app.NewRecipeIndex(container.GetES(), cfg.ESRecipesIndex, cfg.ESTimeout, logger)
	recipes := app.NewRecipeService(repos.Recipes, container.GetImageStore(), index, logger)

	return RecipeModuleDeps{
		Recipes:     handlers.NewRecipeHandler(recipes, logger, cfg.MaxUploadBytes),
		Tags:        handlers.NewTagHandler(app.NewTagService(repos.Tags, repos.Recipes, index, logger), logger),
		Ingredients: handlers.NewIngredientHandler(app.NewIngredientService(repos.Ingredients, repos.Recipes, index, logger), logger),
	}
}

// InitModules initializes all application modules and registers them with the router registry
// This function should be called once during application startup to wire up all modules
func InitModules(r *Registry) {
	cfg := container.GetConfig()

	userDeps := buildUserDeps()
	r.Add(modules.NewUserModule(userDeps.Handler, container.GetJWT()))

	recipeDeps := buildRecipeDeps()
	r.Add(modules.NewRecipeModule(recipeDeps.Recipes, recipeDeps.Tags, recipeDeps.Ingredients, container.GetJWT()))

	if cfg.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule())
	}

	// images written to local disk are served straight from the media root
	if local, ok := container.GetImageStore().(*storage.LocalStore); ok {
		r.Engine.Static(cfg.MediaURL, local.Root())
	}
}
