package domain

import "time"

// Ingredient is a dictionary entry shared across recipes; names are unique.
type Ingredient struct {
	ID   int64
	Name string
	Unit string
}

// RecipeIngredient links an ingredient into a recipe with its amount.
// Quantity stays a string so source values like "0.5" survive untouched.
type RecipeIngredient struct {
	Ingredient Ingredient
	Quantity   string
}

// Recipe is the core stored entity.
type Recipe struct {
	ID           int64
	Title        string
	Description  string
	Instructions string
	AuthorID     int64
	CookingTime  int
	Servings     int
	SourceURL    string
	Ingredients  []RecipeIngredient
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ParsedIngredient is one decomposed ingredient line from an external page.
type ParsedIngredient struct {
	Name     string
	Quantity string
	Unit     string
}

// ParsedRecipe is the transient result of importing a page; the caller
// decides whether it becomes a stored Recipe.
type ParsedRecipe struct {
	Title        string
	Description  string
	Instructions string
	Ingredients  []ParsedIngredient
	CookingTime  int
	Servings     int
}

// ShoppingItem is one aggregated row of a user's shopping list.
type ShoppingItem struct {
	Name     string
	Unit     string
	Quantity string
}

// RecipeStats aggregates collection-wide numbers.
type RecipeStats struct {
	TotalRecipes   int
	AvgCookingTime float64
	MaxCookingTime int
	MinCookingTime int
	AvgServings    float64
}

// UserStats aggregates per-author numbers.
type UserStats struct {
	TotalRecipes   int
	AvgCookingTime float64
	RecentRecipes  int
}

// IngredientUsage ranks an ingredient by how many recipes reference it.
type IngredientUsage struct {
	Ingredient Ingredient
	UsageCount int
}

// SimilarRecipe scores another recipe against a reference one.
type SimilarRecipe struct {
	Recipe            Recipe
	SharedIngredients int
	Score             float64
}
