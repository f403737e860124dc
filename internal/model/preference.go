package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Preference is a user's stored planning defaults. There is at most one row
// per user.
type Preference struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`

	Cuisines  JSONBStringArray `gorm:"type:jsonb;not null;default:'[]'" json:"cuisines"`
	Allergies JSONBStringArray `gorm:"type:jsonb;not null;default:'[]'" json:"allergies"`
	// BudgetWeek is nil when the user has not set a default budget.
	BudgetWeek *float64 `gorm:"type:float" json:"budget_week"`
	Spicy      bool     `gorm:"not null;default:false" json:"spicy"`
}

func (Preference) TableName() string {
	return "preferences"
}

func (p *Preference) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
