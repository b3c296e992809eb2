package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"RecipeKeeper/internal/domain"
	"RecipeKeeper/internal/ports"
)

// ErrNotFound reports a missing recipe.
var ErrNotFound = errors.New("recipe not found")

const defaultListLimit = 50

// PostgresRepository persists recipes, ingredients and shopping lists.
type PostgresRepository struct {
	db      *sql.DB
	builder sq.StatementBuilderType
}

var _ ports.RecipeRepository = (*PostgresRepository)(nil)
var _ ports.ShoppingListRepository = (*PostgresRepository)(nil)
var _ ports.StatsRepository = (*PostgresRepository)(nil)

// NewPostgresRepository wires a sql.DB implementation.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// Create inserts the recipe and links its ingredients in one transaction.
// Ingredients are resolved by name with get-or-create semantics; an
// ingredient that already exists keeps its stored unit.
func (r *PostgresRepository) Create(ctx context.Context, recipe domain.Recipe) (domain.Recipe, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Recipe{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	query, args, err := r.builder.Insert("recipes").
		Columns("title", "description", "instructions", "author_id", "cooking_time", "servings", "source_url").
		Values(recipe.Title, recipe.Description, recipe.Instructions, recipe.AuthorID, recipe.CookingTime, recipe.Servings, recipe.SourceURL).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return domain.Recipe{}, fmt.Errorf("build insert: %w", err)
	}

	if err := tx.QueryRowContext(ctx, query, args...).Scan(&recipe.ID, &recipe.CreatedAt, &recipe.UpdatedAt); err != nil {
		return domain.Recipe{}, fmt.Errorf("insert recipe: %w", err)
	}

	for i, link := range recipe.Ingredients {
		ingredient, err := getOrCreateIngredient(ctx, tx, link.Ingredient.Name, link.Ingredient.Unit)
		if err != nil {
			return domain.Recipe{}, fmt.Errorf("ingredient %q: %w", link.Ingredient.Name, err)
		}
		recipe.Ingredients[i].Ingredient = ingredient

		linkQuery, linkArgs, err := r.builder.Insert("recipe_ingredients").
			Columns("recipe_id", "ingredient_id", "quantity").
			Values(recipe.ID, ingredient.ID, link.Quantity).
			ToSql()
		if err != nil {
			return domain.Recipe{}, fmt.Errorf("build link insert: %w", err)
		}
		if _, err := tx.ExecContext(ctx, linkQuery, linkArgs...); err != nil {
			return domain.Recipe{}, fmt.Errorf("link ingredient %q: %w", ingredient.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return domain.Recipe{}, fmt.Errorf("commit: %w", err)
	}

	return recipe, nil
}

func getOrCreateIngredient(ctx context.Context, tx *sql.Tx, name, unit string) (domain.Ingredient, error) {
	// The no-op update makes RETURNING yield the existing row on conflict.
	query := `INSERT INTO ingredients (name, unit) VALUES ($1, $2)
              ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
              RETURNING id, name, unit`

	var ingredient domain.Ingredient
	if err := tx.QueryRowContext(ctx, query, name, unit).Scan(&ingredient.ID, &ingredient.Name, &ingredient.Unit); err != nil {
		return domain.Ingredient{}, fmt.Errorf("upsert ingredient: %w", err)
	}
	return ingredient, nil
}

// Get loads a recipe with its ingredient links.
func (r *PostgresRepository) Get(ctx context.Context, id int64) (domain.Recipe, error) {
	query, args, err := r.recipeSelect().Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return domain.Recipe{}, fmt.Errorf("build select: %w", err)
	}

	recipe, err := scanRecipe(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Recipe{}, ErrNotFound
	}
	if err != nil {
		return domain.Recipe{}, fmt.Errorf("select recipe: %w", err)
	}

	recipe.Ingredients, err = r.recipeIngredients(ctx, id)
	if err != nil {
		return domain.Recipe{}, err
	}

	return recipe, nil
}

func (r *PostgresRepository) recipeIngredients(ctx context.Context, recipeID int64) ([]domain.RecipeIngredient, error) {
	query, args, err := r.builder.
		Select("i.id", "i.name", "i.unit", "ri.quantity").
		From("recipe_ingredients ri").
		Join("ingredients i ON i.id = ri.ingredient_id").
		Where(sq.Eq{"ri.recipe_id": recipeID}).
		OrderBy("i.name").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build ingredients select: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select ingredients: %w", err)
	}
	defer rows.Close()

	var links []domain.RecipeIngredient
	for rows.Next() {
		var link domain.RecipeIngredient
		if err := rows.Scan(&link.Ingredient.ID, &link.Ingredient.Name, &link.Ingredient.Unit, &link.Quantity); err != nil {
			return nil, fmt.Errorf("scan ingredient: %w", err)
		}
		links = append(links, link)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return links, nil
}

// List returns recipe summaries (no ingredient links) newest first.
func (r *PostgresRepository) List(ctx context.Context, filter ports.ListFilter) ([]domain.Recipe, error) {
	builder := r.recipeSelect().OrderBy("created_at DESC")

	if filter.AuthorID > 0 {
		builder = builder.Where(sq.Eq{"author_id": filter.AuthorID})
	}
	if filter.MaxCookingTime > 0 {
		builder = builder.Where(sq.LtOrEq{"cooking_time": filter.MaxCookingTime})
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	builder = builder.Limit(uint64(limit))

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list: %w", err)
	}

	return r.queryRecipes(ctx, query, args...)
}

// Update rewrites the recipe's scalar fields; ingredient links are managed
// through AddIngredient and RemoveIngredient.
func (r *PostgresRepository) Update(ctx context.Context, recipe domain.Recipe) error {
	query, args, err := r.builder.Update("recipes").
		Set("title", recipe.Title).
		Set("description", recipe.Description).
		Set("instructions", recipe.Instructions).
		Set("cooking_time", recipe.CookingTime).
		Set("servings", recipe.Servings).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": recipe.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update recipe: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return ErrNotFound
	}

	return nil
}

// Delete removes the recipe together with its links and shopping entries.
func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"shopping_lists", "recipe_ingredients"} {
		query, args, err := r.builder.Delete(table).Where(sq.Eq{"recipe_id": id}).ToSql()
		if err != nil {
			return fmt.Errorf("build delete %s: %w", table, err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("delete %s: %w", table, err)
		}
	}

	query, args, err := r.builder.Delete("recipes").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}
	result, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete recipe: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return ErrNotFound
	}

	return tx.Commit()
}

// AddIngredient attaches an ingredient to an existing recipe, resolving it
// by name with get-or-create semantics. Re-adding an already linked
// ingredient rewrites its quantity.
func (r *PostgresRepository) AddIngredient(ctx context.Context, recipeID int64, link domain.RecipeIngredient) (domain.RecipeIngredient, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.RecipeIngredient{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	ingredient, err := getOrCreateIngredient(ctx, tx, link.Ingredient.Name, link.Ingredient.Unit)
	if err != nil {
		return domain.RecipeIngredient{}, fmt.Errorf("ingredient %q: %w", link.Ingredient.Name, err)
	}

	query := `INSERT INTO recipe_ingredients (recipe_id, ingredient_id, quantity) VALUES ($1, $2, $3)
              ON CONFLICT (recipe_id, ingredient_id) DO UPDATE SET quantity = EXCLUDED.quantity`
	if _, err := tx.ExecContext(ctx, query, recipeID, ingredient.ID, link.Quantity); err != nil {
		return domain.RecipeIngredient{}, fmt.Errorf("link ingredient %q: %w", ingredient.Name, err)
	}

	if err := tx.Commit(); err != nil {
		return domain.RecipeIngredient{}, fmt.Errorf("commit: %w", err)
	}

	return domain.RecipeIngredient{Ingredient: ingredient, Quantity: link.Quantity}, nil
}

// RemoveIngredient detaches an ingredient link from a recipe; the
// ingredient dictionary entry itself stays.
func (r *PostgresRepository) RemoveIngredient(ctx context.Context, recipeID, ingredientID int64) error {
	query, args, err := r.builder.Delete("recipe_ingredients").
		Where(sq.Eq{"recipe_id": recipeID, "ingredient_id": ingredientID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build unlink: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("unlink ingredient: %w", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return ErrNotFound
	}

	return nil
}

// Search matches the term case-insensitively against title, description
// and instructions.
func (r *PostgresRepository) Search(ctx context.Context, term string) ([]domain.Recipe, error) {
	pattern := "%" + term + "%"

	query, args, err := r.recipeSelect().
		Where(sq.Or{
			sq.ILike{"title": pattern},
			sq.ILike{"description": pattern},
			sq.ILike{"instructions": pattern},
		}).
		OrderBy("created_at DESC").
		Limit(defaultListLimit).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build search: %w", err)
	}

	return r.queryRecipes(ctx, query, args...)
}

// SharedIngredientCounts maps other recipe IDs to how many ingredients
// they share with the given recipe.
func (r *PostgresRepository) SharedIngredientCounts(ctx context.Context, recipeID int64) (map[int64]int, error) {
	query := `SELECT other.recipe_id, COUNT(*)
              FROM recipe_ingredients own
              JOIN recipe_ingredients other
                ON other.ingredient_id = own.ingredient_id
               AND other.recipe_id <> own.recipe_id
              WHERE own.recipe_id = $1
              GROUP BY other.recipe_id`

	rows, err := r.db.QueryContext(ctx, query, recipeID)
	if err != nil {
		return nil, fmt.Errorf("query shared ingredients: %w", err)
	}
	defer rows.Close()

	counts := make(map[int64]int)
	for rows.Next() {
		var id int64
		var count int
		if err := rows.Scan(&id, &count); err != nil {
			return nil, fmt.Errorf("scan shared count: %w", err)
		}
		counts[id] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return counts, nil
}

func (r *PostgresRepository) recipeSelect() sq.SelectBuilder {
	return r.builder.
		Select("id", "title", "description", "instructions", "author_id", "cooking_time", "servings", "COALESCE(source_url, '')", "created_at", "updated_at").
		From("recipes")
}

func (r *PostgresRepository) queryRecipes(ctx context.Context, query string, args ...any) ([]domain.Recipe, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select recipes: %w", err)
	}
	defer rows.Close()

	var recipes []domain.Recipe
	for rows.Next() {
		recipe, err := scanRecipe(rows)
		if err != nil {
			return nil, fmt.Errorf("scan recipe: %w", err)
		}
		recipes = append(recipes, recipe)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return recipes, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecipe(row rowScanner) (domain.Recipe, error) {
	var recipe domain.Recipe
	err := row.Scan(
		&recipe.ID,
		&recipe.Title,
		&recipe.Description,
		&recipe.Instructions,
		&recipe.AuthorID,
		&recipe.CookingTime,
		&recipe.Servings,
		&recipe.SourceURL,
		&recipe.CreatedAt,
		&recipe.UpdatedAt,
	)
	return recipe, err
}
