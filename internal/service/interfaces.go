package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/pageza/alchemorsel-planner/backend/config"
	"github.com/pageza/alchemorsel-planner/backend/internal/model"
	"github.com/pageza/alchemorsel-planner/backend/internal/planner"
)

// IDishService defines the interface for dish catalog operations
type IDishService interface {
	CreateDish(ctx context.Context, dish *model.Dish) (*model.Dish, error)
	GetDish(ctx context.Context, id uuid.UUID) (*model.Dish, error)
	UpdateDish(ctx context.Context, id uuid.UUID, dish *model.Dish) (*model.Dish, error)
	DeleteDish(ctx context.Context, id uuid.UUID) error
	SearchDishes(ctx context.Context, filter DishFilter) ([]*model.Dish, error)
	GetDishesByIDs(ctx context.Context, ids []uuid.UUID) ([]*model.Dish, error)
}

// IPlanService defines the interface for meal plan operations
type IPlanService interface {
	CreatePlan(ctx context.Context, userID uuid.UUID, in PlanInput) (*PlanOutcome, error)
	GetPlan(ctx context.Context, userID, id uuid.UUID) (*model.MealPlan, error)
	ListPlans(ctx context.Context, userID uuid.UUID, limit int) ([]*model.MealPlan, error)
	DeletePlan(ctx context.Context, userID, id uuid.UUID) error
	ShoppingList(ctx context.Context, userID, id uuid.UUID) ([]string, error)
	ArchiveURL(ctx context.Context, userID, id uuid.UUID) (string, error)
}

// PreferenceReader looks up a user's stored preferences.
type PreferenceReader interface {
	GetPreference(ctx context.Context, userID uuid.UUID) (*model.Preference, error)
}

// IPreferenceService defines the interface for stored preference operations
type IPreferenceService interface {
	PreferenceReader
	UpsertPreference(ctx context.Context, userID uuid.UUID, pref *model.Preference) (*model.Preference, error)
	DeletePreference(ctx context.Context, userID uuid.UUID) error
}

// IFeedbackService defines the interface for dish feedback operations
type IFeedbackService interface {
	SubmitFeedback(ctx context.Context, userID uuid.UUID, entries []model.Feedback) error
	ListFeedback(ctx context.Context, userID uuid.UUID, filter FeedbackFilter) ([]*model.Feedback, error)
	DishSummary(ctx context.Context, dishID uuid.UUID) (*DishFeedbackSummary, error)
}

// PlanRepository stores finished plans.
type PlanRepository interface {
	Save(ctx context.Context, plan *model.MealPlan) error
	SetArchiveKey(ctx context.Context, id uuid.UUID, key string) error
	Get(ctx context.Context, userID, id uuid.UUID) (*model.MealPlan, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*model.MealPlan, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

// PlanCache holds recently built plans keyed by RequestKey.
type PlanCache interface {
	Get(ctx context.Context, key string) (*planner.PlanResult, bool, error)
	Set(ctx context.Context, key string, res *planner.PlanResult, ttl time.Duration) error
}

// PlanArchive keeps a durable copy of every plan outside the database.
type PlanArchive interface {
	Put(ctx context.Context, userID, planID uuid.UUID, res *planner.PlanResult) (string, error)
	URL(ctx context.Context, key string) (string, error)
}

var (
	_ IDishService       = (*DishService)(nil)
	_ IPlanService       = (*PlanService)(nil)
	_ IPreferenceService = (*PreferenceService)(nil)
	_ IFeedbackService   = (*FeedbackService)(nil)
	_ PlanRepository     = (*PlanStore)(nil)
	_ PlanCache          = (*RedisPlanCache)(nil)
	_ PlanArchive        = (*S3Archive)(nil)
	_ URLPresigner       = (*config.S3Config)(nil)
)
