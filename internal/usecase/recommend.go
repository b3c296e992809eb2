package usecase

import (
	"context"
	"fmt"
	"math"
	"sort"

	"RecipeKeeper/internal/domain"
	"RecipeKeeper/internal/ports"
)

const timeProximityScale = 30.0

// Recommender ranks stored recipes against a reference one. The score is
// the number of shared ingredients plus a cooking-time proximity bonus in
// (0, 1], so ingredient overlap always dominates.
type Recommender struct {
	recipes ports.RecipeRepository
}

// NewRecommender constructs the recommendation use case.
func NewRecommender(recipes ports.RecipeRepository) *Recommender {
	return &Recommender{recipes: recipes}
}

// Similar returns up to topN recipes sharing ingredients with recipeID,
// best score first.
func (r *Recommender) Similar(ctx context.Context, recipeID int64, topN int) ([]domain.SimilarRecipe, error) {
	base, err := r.recipes.Get(ctx, recipeID)
	if err != nil {
		return nil, fmt.Errorf("load recipe %d: %w", recipeID, err)
	}

	counts, err := r.recipes.SharedIngredientCounts(ctx, recipeID)
	if err != nil {
		return nil, fmt.Errorf("shared ingredients for %d: %w", recipeID, err)
	}

	similar := make([]domain.SimilarRecipe, 0, len(counts))
	for id, shared := range counts {
		candidate, err := r.recipes.Get(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("load candidate %d: %w", id, err)
		}

		delta := math.Abs(float64(candidate.CookingTime - base.CookingTime))
		similar = append(similar, domain.SimilarRecipe{
			Recipe:            candidate,
			SharedIngredients: shared,
			Score:             float64(shared) + 1/(1+delta/timeProximityScale),
		})
	}

	sort.Slice(similar, func(i, j int) bool {
		if similar[i].Score != similar[j].Score {
			return similar[i].Score > similar[j].Score
		}
		return similar[i].Recipe.ID < similar[j].Recipe.ID
	})

	if topN > 0 && len(similar) > topN {
		similar = similar[:topN]
	}

	return similar, nil
}

// QuickPicks lists recipes that fit within maxTime minutes.
func (r *Recommender) QuickPicks(ctx context.Context, maxTime, topN int) ([]domain.Recipe, error) {
	return r.recipes.List(ctx, ports.ListFilter{MaxCookingTime: maxTime, Limit: topN})
}
