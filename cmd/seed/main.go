package main

import (
	"context"
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/oksasatya/go-recipe-api/config"
	"github.com/oksasatya/go-recipe-api/internal/domain/entity"
	"github.com/oksasatya/go-recipe-api/internal/domain/repository"
	pginfra "github.com/oksasatya/go-recipe-api/internal/infrastructure/postgres"
	"github.com/oksasatya/go-recipe-api/pkg/helpers"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env, cfg.LogLevel)
	ctx := context.Background()

	pool, err := pginfra.NewPool(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	if err := pginfra.RunMigrations(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil {
		log.Fatalf("migration failed: %v", err)
	}

	email := "demo@example.com"
	password := "password123"
	name := "Demo Chef"
	hash, err := helpers.NewPasswordHasher(cfg.BcryptCost).Hash(password)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	var id int64
	err = pool.QueryRow(ctx, `
		INSERT INTO users (email, password, name)
		VALUES ($1, $2, $3)
		ON CONFLICT (email) DO UPDATE SET name=EXCLUDED.name
		RETURNING id
	`, email, hash, name).Scan(&id)
	if err != nil {
		log.Fatalf("failed to seed user: %v", err)
	}
	fmt.Printf("seeded user: id=%d email=%s name=%s password=%s\n", id, email, name, password)

	tags := pginfra.NewTagRepository(pool)
	ingredients := pginfra.NewIngredientRepository(pool)
	recipes := pginfra.NewRecipeRepository(pool)

	r := &entity.Recipe{
		UserID:      id,
		Title:       "Weeknight tomato pasta",
		TimeMinutes: 25,
		Price:       decimal.RequireFromString("6.50"),
		Description: "Garlic, tinned tomatoes and basil.",
	}
	for _, n := range []string{"Dinner", "Vegetarian", "Quick"} {
		t, err := tags.GetOrCreate(ctx, id, n)
		if err != nil {
			log.Fatalf("failed to seed tag %q: %v", n, err)
		}
		r.Tags = append(r.Tags, *t)
	}
	for _, n := range []string{"Pasta", "Tomatoes", "Garlic", "Basil"} {
		i, err := ingredients.GetOrCreate(ctx, id, n)
		if err != nil {
			log.Fatalf("failed to seed ingredient %q: %v", n, err)
		}
		r.Ingredients = append(r.Ingredients, *i)
	}
	fmt.Printf("ensured %d tags and %d ingredients\n", len(r.Tags), len(r.Ingredients))

	existing, err := recipes.List(ctx, id, repository.RecipeFilter{Query: r.Title, Limit: 1})
	if err != nil {
		log.Fatalf("failed to list recipes: %v", err)
	}
	if len(existing) > 0 {
		fmt.Printf("demo recipe already present: id=%d\n", existing[0].ID)
		return
	}
	if err := recipes.Create(ctx, r); err != nil {
		log.Fatalf("failed to seed recipe: %v", err)
	}
	fmt.Printf("seeded recipe: id=%d title=%s\n", r.ID, r.Title)
}
