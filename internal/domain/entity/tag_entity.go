package entity

// Tag labels recipes of a single owner. Name is unique per owner.
type Tag struct {
	ID     int64
	UserID int64
	Name   string
}

// Ingredient is an owner-scoped ingredient referenced by recipes.
type Ingredient struct {
	ID     int64
	UserID int64
	Name   string
}
