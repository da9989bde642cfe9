package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Recipe is owned by exactly one user. Tags and Ingredients always belong to
// the same owner as the recipe.
type Recipe struct {
	ID          int64
	UserID      int64
	Title       string
	TimeMinutes int
	Price       decimal.Decimal
	Description string
	Link        string
	Image       string
	Tags        []Tag
	Ingredients []Ingredient
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
