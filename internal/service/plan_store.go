package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pageza/alchemorsel-planner/backend/internal/model"
)

// ErrPlanNotFound is returned when a plan does not exist or belongs to
// another user.
var ErrPlanNotFound = errors.New("meal plan not found")

// DefaultListLimit is the number of plans returned when the caller gives no limit.
const DefaultListLimit = 20

// PlanStore persists finished plans.
type PlanStore struct {
	db *gorm.DB
}

// NewPlanStore creates a PlanStore
func NewPlanStore(db *gorm.DB) *PlanStore {
	return &PlanStore{db: db}
}

// Save inserts a plan. The plan id is assigned before the insert.
func (s *PlanStore) Save(ctx context.Context, plan *model.MealPlan) error {
	return s.db.WithContext(ctx).Create(plan).Error
}

// SetArchiveKey records where the plan was archived.
func (s *PlanStore) SetArchiveKey(ctx context.Context, id uuid.UUID, key string) error {
	return s.db.WithContext(ctx).Model(&model.MealPlan{}).Where("id = ?", id).Update("archive_key", key).Error
}

// Get loads a plan owned by userID.
func (s *PlanStore) Get(ctx context.Context, userID, id uuid.UUID) (*model.MealPlan, error) {
	var plan model.MealPlan
	err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&plan).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	return &plan, nil
}

// ListByUser returns the user's plans, newest first.
func (s *PlanStore) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*model.MealPlan, error) {
	if limit <= 0 || limit > DefaultSearchLimit {
		limit = DefaultListLimit
	}
	var plans []*model.MealPlan
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&plans).Error
	if err != nil {
		return nil, err
	}
	return plans, nil
}

// Delete removes a plan owned by userID.
func (s *PlanStore) Delete(ctx context.Context, userID, id uuid.UUID) error {
	res := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&model.MealPlan{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrPlanNotFound
	}
	return nil
}
