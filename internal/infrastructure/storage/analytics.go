package storage

import (
	"context"
	"fmt"

	"RecipeKeeper/internal/domain"
)

// Aggregate queries stay raw SQL: they are read-only reporting statements
// with no dynamic shape for a builder to earn its keep on.

// Add puts a recipe on the user's shopping list; re-adding is a no-op.
func (r *PostgresRepository) Add(ctx context.Context, userID, recipeID int64) error {
	query := `INSERT INTO shopping_lists (user_id, recipe_id) VALUES ($1, $2)
              ON CONFLICT (user_id, recipe_id) DO NOTHING`

	if _, err := r.db.ExecContext(ctx, query, userID, recipeID); err != nil {
		return fmt.Errorf("add to shopping list: %w", err)
	}
	return nil
}

// Remove takes a recipe off the user's shopping list.
func (r *PostgresRepository) Remove(ctx context.Context, userID, recipeID int64) error {
	query := `DELETE FROM shopping_lists WHERE user_id = $1 AND recipe_id = $2`

	if _, err := r.db.ExecContext(ctx, query, userID, recipeID); err != nil {
		return fmt.Errorf("remove from shopping list: %w", err)
	}
	return nil
}

// Clear empties the user's shopping list in one statement.
func (r *PostgresRepository) Clear(ctx context.Context, userID int64) error {
	query := `DELETE FROM shopping_lists WHERE user_id = $1`

	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("clear shopping list: %w", err)
	}
	return nil
}

// Summary sums ingredient quantities across every recipe on the user's
// list; summation happens in SQL so text quantities never round-trip
// through floats.
func (r *PostgresRepository) Summary(ctx context.Context, userID int64) ([]domain.ShoppingItem, error) {
	query := `SELECT i.name, i.unit, SUM(ri.quantity)::text
              FROM shopping_lists sl
              JOIN recipe_ingredients ri ON ri.recipe_id = sl.recipe_id
              JOIN ingredients i ON i.id = ri.ingredient_id
              WHERE sl.user_id = $1
              GROUP BY i.name, i.unit
              ORDER BY i.name`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query shopping summary: %w", err)
	}
	defer rows.Close()

	var items []domain.ShoppingItem
	for rows.Next() {
		var item domain.ShoppingItem
		if err := rows.Scan(&item.Name, &item.Unit, &item.Quantity); err != nil {
			return nil, fmt.Errorf("scan shopping item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return items, nil
}

// RecipeStats reports collection-wide aggregates.
func (r *PostgresRepository) RecipeStats(ctx context.Context) (domain.RecipeStats, error) {
	query := `SELECT COUNT(*),
                     COALESCE(AVG(cooking_time), 0),
                     COALESCE(MAX(cooking_time), 0),
                     COALESCE(MIN(cooking_time), 0),
                     COALESCE(AVG(servings), 0)
              FROM recipes`

	var stats domain.RecipeStats
	err := r.db.QueryRowContext(ctx, query).Scan(
		&stats.TotalRecipes,
		&stats.AvgCookingTime,
		&stats.MaxCookingTime,
		&stats.MinCookingTime,
		&stats.AvgServings,
	)
	if err != nil {
		return domain.RecipeStats{}, fmt.Errorf("query recipe stats: %w", err)
	}

	return stats, nil
}

// TopIngredients ranks ingredients by how many recipes use them.
func (r *PostgresRepository) TopIngredients(ctx context.Context, limit int) ([]domain.IngredientUsage, error) {
	query := `SELECT i.id, i.name, i.unit, COUNT(ri.recipe_id)
              FROM ingredients i
              LEFT JOIN recipe_ingredients ri ON i.id = ri.ingredient_id
              GROUP BY i.id, i.name, i.unit
              ORDER BY COUNT(ri.recipe_id) DESC, i.name
              LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query top ingredients: %w", err)
	}
	defer rows.Close()

	var usages []domain.IngredientUsage
	for rows.Next() {
		var usage domain.IngredientUsage
		if err := rows.Scan(&usage.Ingredient.ID, &usage.Ingredient.Name, &usage.Ingredient.Unit, &usage.UsageCount); err != nil {
			return nil, fmt.Errorf("scan ingredient usage: %w", err)
		}
		usages = append(usages, usage)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return usages, nil
}

// UserStats reports per-author aggregates including a seven-day recent count.
func (r *PostgresRepository) UserStats(ctx context.Context, userID int64) (domain.UserStats, error) {
	query := `SELECT COUNT(*),
                     COALESCE(AVG(cooking_time), 0),
                     COALESCE(SUM(CASE WHEN created_at >= NOW() - INTERVAL '7 days' THEN 1 ELSE 0 END), 0)
              FROM recipes
              WHERE author_id = $1`

	var stats domain.UserStats
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&stats.TotalRecipes,
		&stats.AvgCookingTime,
		&stats.RecentRecipes,
	)
	if err != nil {
		return domain.UserStats{}, fmt.Errorf("query user stats: %w", err)
	}

	return stats, nil
}
