package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pageza/alchemorsel-planner/backend/internal/planner"
)

// PlanDocument stores a finished plan as a JSON column.
type PlanDocument planner.PlanResult

// Value implements the driver.Valuer interface
func (p PlanDocument) Value() (driver.Value, error) {
	b, err := json.Marshal(planner.PlanResult(p))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements the sql.Scanner interface
func (p *PlanDocument) Scan(value interface{}) error {
	var bytes []byte
	switch v := value.(type) {
	case nil:
		*p = PlanDocument{}
		return nil
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into PlanDocument", value)
	}
	var res planner.PlanResult
	if err := json.Unmarshal(bytes, &res); err != nil {
		return err
	}
	*p = PlanDocument(res)
	return nil
}

// MealPlan is a plan built for a user. The request inputs are kept next to
// the result so a plan can be rebuilt or audited later.
type MealPlan struct {
	ID                  uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt           time.Time        `json:"created_at"`
	UpdatedAt           time.Time        `json:"updated_at"`
	DeletedAt           gorm.DeletedAt   `gorm:"index" json:"-"`
	UserID              uuid.UUID        `gorm:"type:uuid;not null;index" json:"user_id"`
	RequestHash         string           `gorm:"size:64;index" json:"request_hash"`
	Days                int              `gorm:"not null" json:"days"`
	DailyCalories       float64          `gorm:"type:float;not null" json:"daily_calories"`
	BudgetWeek          float64          `gorm:"type:float;not null" json:"budget_week"`
	DietaryRestrictions JSONBStringArray `gorm:"type:jsonb;not null;default:'[]'" json:"dietary_restrictions"`
	Status              string           `gorm:"size:32;not null" json:"status"`
	Objective           int64            `json:"objective"`
	TotalCost           float64          `gorm:"type:float" json:"total_cost"`
	EstimatedSavings    float64          `gorm:"type:float" json:"estimated_savings"`
	Result              PlanDocument     `gorm:"type:jsonb;not null" json:"result"`
	ArchiveKey          string           `gorm:"size:512" json:"archive_key,omitempty"`
}

// BeforeCreate assigns an id when the caller did not.
func (p *MealPlan) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// NewMealPlan records result as a plan owned by userID.
func NewMealPlan(userID uuid.UUID, requestHash string, req planner.PlanRequest, res *planner.PlanResult) *MealPlan {
	return &MealPlan{
		UserID:              userID,
		RequestHash:         requestHash,
		Days:                req.Days,
		DailyCalories:       req.DailyCalories,
		BudgetWeek:          req.BudgetWeek,
		DietaryRestrictions: JSONBStringArray(req.DietaryRestrictions),
		Status:              res.Solve.Status,
		Objective:           res.Solve.Objective,
		TotalCost:           res.Nutrition.TotalCost,
		EstimatedSavings:    res.EstimatedSavings,
		Result:              PlanDocument(*res),
	}
}

// Plan returns the stored result.
func (p *MealPlan) Plan() *planner.PlanResult {
	res := planner.PlanResult(p.Result)
	return &res
}
