package ports

import (
	"context"

	"RecipeKeeper/internal/domain"
)

// RecipeImporter turns an external page URL into a parsed recipe draft.
type RecipeImporter interface {
	Import(ctx context.Context, pageURL string) (domain.ParsedRecipe, error)
}

// ListFilter narrows recipe listings.
type ListFilter struct {
	AuthorID       int64
	MaxCookingTime int
	Limit          int
}

// RecipeRepository persists recipes together with their ingredient links.
type RecipeRepository interface {
	Create(ctx context.Context, recipe domain.Recipe) (domain.Recipe, error)
	Get(ctx context.Context, id int64) (domain.Recipe, error)
	List(ctx context.Context, filter ListFilter) ([]domain.Recipe, error)
	Update(ctx context.Context, recipe domain.Recipe) error
	Delete(ctx context.Context, id int64) error
	Search(ctx context.Context, term string) ([]domain.Recipe, error)
	AddIngredient(ctx context.Context, recipeID int64, link domain.RecipeIngredient) (domain.RecipeIngredient, error)
	RemoveIngredient(ctx context.Context, recipeID, ingredientID int64) error
	SharedIngredientCounts(ctx context.Context, recipeID int64) (map[int64]int, error)
}

// ShoppingListRepository manages per-user recipe shopping lists.
type ShoppingListRepository interface {
	Add(ctx context.Context, userID, recipeID int64) error
	Remove(ctx context.Context, userID, recipeID int64) error
	Clear(ctx context.Context, userID int64) error
	Summary(ctx context.Context, userID int64) ([]domain.ShoppingItem, error)
}

// StatsRepository answers aggregate questions over stored recipes.
type StatsRepository interface {
	RecipeStats(ctx context.Context) (domain.RecipeStats, error)
	TopIngredients(ctx context.Context, limit int) ([]domain.IngredientUsage, error)
	UserStats(ctx context.Context, userID int64) (domain.UserStats, error)
}
