package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Feedback records how one cooked (or skipped) dish went. A user has one
// entry per dish and cooking time; resubmitting replaces it.
type Feedback struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	UserID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_feedback_entry" json:"user_id"`
	DishID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_feedback_entry;index" json:"dish_id"`
	CookedAt time.Time `gorm:"not null;uniqueIndex:idx_feedback_entry" json:"cooked_at"`

	Rating          int    `gorm:"not null;default:0" json:"rating"`
	Skipped         bool   `gorm:"not null;default:false" json:"skipped"`
	SubstitutedWith string `gorm:"size:255" json:"substituted_with,omitempty"`
	Comment         string `gorm:"type:text" json:"comment,omitempty"`
}

func (Feedback) TableName() string {
	return "feedback"
}

func (f *Feedback) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}
