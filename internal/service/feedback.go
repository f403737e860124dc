package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/alchemorsel-planner/backend/internal/model"
	"github.com/pageza/alchemorsel-planner/backend/internal/planner"
)

// MaxFeedbackBatch is the largest number of entries accepted at once.
const MaxFeedbackBatch = 100

// FeedbackFilter narrows a feedback listing. A nil DishID lists every dish.
type FeedbackFilter struct {
	DishID *uuid.UUID
	Limit  int
}

// DishFeedbackSummary aggregates every user's feedback on one dish.
type DishFeedbackSummary struct {
	DishID        uuid.UUID `json:"dish_id"`
	Entries       int64     `json:"entries"`
	Rated         int64     `json:"rated"`
	AverageRating float64   `json:"average_rating"`
	Skipped       int64     `json:"skipped"`
	Substituted   int64     `json:"substituted"`
}

// FeedbackService records how planned dishes turned out.
type FeedbackService struct {
	db *gorm.DB
}

func NewFeedbackService(db *gorm.DB) *FeedbackService {
	return &FeedbackService{db: db}
}

// SubmitFeedback stores a batch for userID in one transaction. An entry for
// a dish and cooking time the user already reported replaces the old one.
// Every referenced dish must exist.
func (s *FeedbackService) SubmitFeedback(ctx context.Context, userID uuid.UUID, entries []model.Feedback) error {
	if len(entries) == 0 {
		return &planner.ValidationError{Field: "entries", Message: "at least one entry is required"}
	}
	if len(entries) > MaxFeedbackBatch {
		return &planner.ValidationError{Field: "entries", Message: fmt.Sprintf("at most %d entries per batch", MaxFeedbackBatch)}
	}

	type entryKey struct {
		dish     uuid.UUID
		cookedAt time.Time
	}
	rows := make([]model.Feedback, 0, len(entries))
	seen := make(map[entryKey]int, len(entries))
	dishIDs := make(map[uuid.UUID]struct{}, len(entries))
	for _, e := range entries {
		if e.Rating < 0 || e.Rating > 5 {
			return &planner.ValidationError{Field: "rating", Message: "must be between 0 and 5"}
		}
		if e.CookedAt.IsZero() {
			return &planner.ValidationError{Field: "cooked_at", Message: "is required"}
		}
		e.ID = uuid.Nil
		e.UserID = userID
		// Second precision in UTC so a resubmitted entry hits the same key on
		// every driver.
		e.CookedAt = e.CookedAt.UTC().Truncate(time.Second)
		dishIDs[e.DishID] = struct{}{}
		// A repeated entry in one batch keeps the last copy; one statement
		// cannot upsert the same row twice.
		key := entryKey{dish: e.DishID, cookedAt: e.CookedAt}
		if i, ok := seen[key]; ok {
			rows[i] = e
			continue
		}
		seen[key] = len(rows)
		rows = append(rows, e)
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ids := make([]uuid.UUID, 0, len(dishIDs))
		for id := range dishIDs {
			ids = append(ids, id)
		}
		var found int64
		if err := tx.Model(&model.Dish{}).Where("id IN ?", ids).Count(&found).Error; err != nil {
			return fmt.Errorf("failed to check dishes: %w", err)
		}
		if found != int64(len(ids)) {
			return &planner.ValidationError{Field: "dish_id", Message: "references an unknown dish"}
		}

		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "dish_id"}, {Name: "cooked_at"}},
			DoUpdates: clause.AssignmentColumns([]string{"rating", "skipped", "substituted_with", "comment", "updated_at"}),
		}).Create(&rows).Error
		if err != nil {
			return fmt.Errorf("failed to save feedback: %w", err)
		}
		return nil
	})
}

// ListFeedback returns userID's entries, most recently cooked first.
func (s *FeedbackService) ListFeedback(ctx context.Context, userID uuid.UUID, filter FeedbackFilter) ([]*model.Feedback, error) {
	limit := filter.Limit
	switch {
	case limit <= 0:
		limit = DefaultListLimit
	case limit > DefaultSearchLimit:
		limit = DefaultSearchLimit
	}
	query := s.db.WithContext(ctx).Where("user_id = ?", userID)
	if filter.DishID != nil {
		query = query.Where("dish_id = ?", *filter.DishID)
	}

	var entries []*model.Feedback
	if err := query.Order("cooked_at DESC").Order("id ASC").Limit(limit).Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to list feedback: %w", err)
	}
	return entries, nil
}

// DishSummary aggregates the feedback on dishID. Unrated entries (rating 0)
// do not count towards the average.
func (s *FeedbackService) DishSummary(ctx context.Context, dishID uuid.UUID) (*DishFeedbackSummary, error) {
	var row struct {
		Entries     int64
		Rated       int64
		RatingSum   int64
		Skipped     int64
		Substituted int64
	}
	err := s.db.WithContext(ctx).Model(&model.Feedback{}).
		Select(`COUNT(*) AS entries,
			COALESCE(SUM(CASE WHEN rating > 0 THEN 1 ELSE 0 END), 0) AS rated,
			COALESCE(SUM(rating), 0) AS rating_sum,
			COALESCE(SUM(CASE WHEN skipped THEN 1 ELSE 0 END), 0) AS skipped,
			COALESCE(SUM(CASE WHEN substituted_with <> '' THEN 1 ELSE 0 END), 0) AS substituted`).
		Where("dish_id = ?", dishID).
		Scan(&row).Error
	if err != nil {
		return nil, fmt.Errorf("failed to summarize feedback: %w", err)
	}

	summary := &DishFeedbackSummary{
		DishID:      dishID,
		Entries:     row.Entries,
		Rated:       row.Rated,
		Skipped:     row.Skipped,
		Substituted: row.Substituted,
	}
	if row.Rated > 0 {
		summary.AverageRating = float64(row.RatingSum) / float64(row.Rated)
	}
	return summary, nil
}
