package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/alchemorsel-planner/backend/internal/model"
)

// ErrPreferenceNotFound is returned for users without stored preferences.
var ErrPreferenceNotFound = errors.New("preferences not found")

// PreferenceService stores per-user planning defaults.
type PreferenceService struct {
	db *gorm.DB
}

func NewPreferenceService(db *gorm.DB) *PreferenceService {
	return &PreferenceService{db: db}
}

// GetPreference returns the stored preferences of userID.
func (s *PreferenceService) GetPreference(ctx context.Context, userID uuid.UUID) (*model.Preference, error) {
	var pref model.Preference
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&pref).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPreferenceNotFound
		}
		return nil, fmt.Errorf("failed to get preferences: %w", err)
	}
	return &pref, nil
}

// UpsertPreference replaces the preferences of userID, creating them on
// first use.
func (s *PreferenceService) UpsertPreference(ctx context.Context, userID uuid.UUID, pref *model.Preference) (*model.Preference, error) {
	row := *pref
	row.ID = uuid.Nil
	row.UserID = userID
	if row.Cuisines == nil {
		row.Cuisines = model.JSONBStringArray{}
	}
	if row.Allergies == nil {
		row.Allergies = model.JSONBStringArray{}
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"cuisines", "allergies", "budget_week", "spicy", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return nil, fmt.Errorf("failed to save preferences: %w", err)
	}
	return s.GetPreference(ctx, userID)
}

// DeletePreference removes the stored preferences of userID.
func (s *PreferenceService) DeletePreference(ctx context.Context, userID uuid.UUID) error {
	result := s.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&model.Preference{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete preferences: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrPreferenceNotFound
	}
	return nil
}
