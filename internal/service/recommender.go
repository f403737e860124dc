package service

import (
	"context"

	"github.com/pageza/alchemorsel-planner/backend/internal/planner"
)

// Recommender receives every finished plan. It runs after the response has
// been produced and nothing it returns changes the plan.
type Recommender interface {
	Recommend(ctx context.Context, userID string, plan *planner.PlanResult, catalog []planner.Dish, preferences map[string]any) error
}

// NoopRecommender discards plans.
type NoopRecommender struct{}

// Recommend implements Recommender
func (NoopRecommender) Recommend(context.Context, string, *planner.PlanResult, []planner.Dish, map[string]any) error {
	return nil
}
