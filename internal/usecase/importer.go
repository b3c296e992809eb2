package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"RecipeKeeper/internal/domain"
	"RecipeKeeper/internal/ports"
)

// ImporterDeps wires the driven adapters into the import workflow.
type ImporterDeps struct {
	Parser  ports.RecipeImporter
	Recipes ports.RecipeRepository
	Logger  *slog.Logger
}

// Importer turns an external page into a stored recipe: parse, then persist
// the draft with get-or-create ingredient resolution. A failed parse writes
// nothing.
type Importer struct {
	parser  ports.RecipeImporter
	recipes ports.RecipeRepository
	logger  *slog.Logger
}

// NewImporter constructs the import use case.
func NewImporter(deps ImporterDeps) *Importer {
	return &Importer{
		parser:  deps.Parser,
		recipes: deps.Recipes,
		logger:  deps.Logger,
	}
}

// ImportFromURL parses the page and persists the result for the author.
// The stored record is a best-effort draft the caller is expected to review.
func (i *Importer) ImportFromURL(ctx context.Context, pageURL string, authorID int64) (domain.Recipe, error) {
	parsed, err := i.parser.Import(ctx, pageURL)
	if err != nil {
		return domain.Recipe{}, fmt.Errorf("import %s: %w", pageURL, err)
	}

	recipe := domain.Recipe{
		Title:        parsed.Title,
		Description:  parsed.Description,
		Instructions: parsed.Instructions,
		AuthorID:     authorID,
		CookingTime:  parsed.CookingTime,
		Servings:     parsed.Servings,
		SourceURL:    pageURL,
		Ingredients:  toIngredientLinks(parsed.Ingredients),
	}

	stored, err := i.recipes.Create(ctx, recipe)
	if err != nil {
		return domain.Recipe{}, fmt.Errorf("store imported recipe: %w", err)
	}

	i.debug("recipe imported", "url", pageURL, "recipe_id", stored.ID, "title", stored.Title)
	return stored, nil
}

func toIngredientLinks(parsed []domain.ParsedIngredient) []domain.RecipeIngredient {
	links := make([]domain.RecipeIngredient, 0, len(parsed))
	for _, item := range parsed {
		links = append(links, domain.RecipeIngredient{
			Ingredient: domain.Ingredient{Name: item.Name, Unit: item.Unit},
			Quantity:   item.Quantity,
		})
	}
	return links
}

func (i *Importer) debug(msg string, args ...any) {
	if i.logger != nil {
		i.logger.Debug(msg, args...)
	}
}
