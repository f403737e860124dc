package types

import (
	"time"

	"github.com/google/uuid"

	"github.com/pageza/alchemorsel-planner/backend/internal/model"
	"github.com/pageza/alchemorsel-planner/backend/internal/planner"
)

// CreatePlanRequest represents the request body for building a meal plan.
// The catalog is either given inline as Dishes or referenced by DishIDs.
// Leaving out budget_week or dietary_restrictions uses the stored preferences.
type CreatePlanRequest struct {
	Days                int            `json:"days" binding:"min=1"`
	DailyCalories       float64        `json:"daily_calories" binding:"gt=0"`
	BudgetWeek          *float64       `json:"budget_week" binding:"omitempty,gte=0"`
	Dishes              []planner.Dish `json:"dishes" binding:"max=200"`
	DishIDs             []uuid.UUID    `json:"dish_ids" binding:"max=200"`
	DietaryRestrictions []string       `json:"dietary_restrictions" binding:"omitempty,max=20,dive,max=64"`
	Preferences         map[string]any `json:"preferences"`
}

// DishRequest represents the request body for creating or replacing a dish
type DishRequest struct {
	Name          string   `json:"name" binding:"required,max=255"`
	Cuisine       string   `json:"cuisine" binding:"max=50"`
	PrepMinutes   int      `json:"prep_minutes" binding:"gte=0"`
	Calories      int      `json:"calories" binding:"required,gt=0"`
	Ingredients   []string `json:"ingredients" binding:"required,min=1,dive,required"`
	Cost          float64  `json:"cost" binding:"gte=0"`
	ShelfLifeDays int      `json:"shelf_life_days" binding:"gte=0"`
	Tags          []string `json:"tags"`
	Nutrition     string   `json:"nutrition"`
}

// ToModel converts the body into a dish row.
func (r *DishRequest) ToModel() *model.Dish {
	return &model.Dish{
		Name:          r.Name,
		Cuisine:       r.Cuisine,
		PrepMinutes:   r.PrepMinutes,
		Calories:      r.Calories,
		Ingredients:   model.JSONBStringArray(r.Ingredients),
		Cost:          r.Cost,
		ShelfLifeDays: r.ShelfLifeDays,
		Tags:          model.JSONBStringArray(r.Tags),
		Nutrition:     r.Nutrition,
	}
}

// PlanSummary is one entry of a plan listing.
type PlanSummary struct {
	ID               uuid.UUID `json:"id"`
	CreatedAt        time.Time `json:"created_at"`
	Days             int       `json:"days"`
	DailyCalories    float64   `json:"daily_calories"`
	BudgetWeek       float64   `json:"budget_week"`
	Status           string    `json:"status"`
	TotalCost        float64   `json:"total_cost"`
	EstimatedSavings float64   `json:"estimated_savings"`
}

// NewPlanSummary summarizes a stored plan.
func NewPlanSummary(p *model.MealPlan) PlanSummary {
	return PlanSummary{
		ID:               p.ID,
		CreatedAt:        p.CreatedAt,
		Days:             p.Days,
		DailyCalories:    p.DailyCalories,
		BudgetWeek:       p.BudgetWeek,
		Status:           p.Status,
		TotalCost:        p.TotalCost,
		EstimatedSavings: p.EstimatedSavings,
	}
}

// PreferenceRequest replaces a user's stored preferences.
type PreferenceRequest struct {
	Cuisines   []string `json:"cuisines" binding:"omitempty,max=20,dive,max=50"`
	Allergies  []string `json:"allergies" binding:"omitempty,max=20,dive,max=64"`
	BudgetWeek *float64 `json:"budget_week" binding:"omitempty,gte=0"`
	Spicy      bool     `json:"spicy"`
}

// ToModel converts the body into a preference row.
func (r *PreferenceRequest) ToModel() *model.Preference {
	return &model.Preference{
		Cuisines:   model.JSONBStringArray(r.Cuisines),
		Allergies:  model.JSONBStringArray(r.Allergies),
		BudgetWeek: r.BudgetWeek,
		Spicy:      r.Spicy,
	}
}

// FeedbackEntry is one dish the user cooked or skipped.
type FeedbackEntry struct {
	DishID          uuid.UUID `json:"dish_id" binding:"required"`
	Rating          int       `json:"rating" binding:"min=0,max=5"`
	Skipped         bool      `json:"skipped"`
	SubstitutedWith string    `json:"substituted_with" binding:"max=255"`
	Comment         string    `json:"comment" binding:"max=1000"`
	CookedAt        time.Time `json:"cooked_at" binding:"required"`
}

// FeedbackBatchRequest represents the request body for submitting feedback
type FeedbackBatchRequest struct {
	Entries []FeedbackEntry `json:"entries" binding:"required,min=1,max=100,dive"`
}

// ToModels converts the batch into feedback rows. The user id is filled in
// by the service.
func (r *FeedbackBatchRequest) ToModels() []model.Feedback {
	rows := make([]model.Feedback, len(r.Entries))
	for i, e := range r.Entries {
		rows[i] = model.Feedback{
			DishID:          e.DishID,
			Rating:          e.Rating,
			Skipped:         e.Skipped,
			SubstitutedWith: e.SubstitutedWith,
			Comment:         e.Comment,
			CookedAt:        e.CookedAt,
		}
	}
	return rows
}
