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

// JSONBStringArray is a custom type for handling string arrays in JSONB
type JSONBStringArray []string

// Value implements the driver.Valuer interface
func (a JSONBStringArray) Value() (driver.Value, error) {
	if len(a) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements the sql.Scanner interface
func (a *JSONBStringArray) Scan(value interface{}) error {
	if value == nil {
		*a = JSONBStringArray{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into JSONBStringArray", value)
	}

	return json.Unmarshal(bytes, a)
}

// Dish is a persisted catalog entry.
type Dish struct {
	ID            uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
	DeletedAt     gorm.DeletedAt   `gorm:"index" json:"-"`
	Name          string           `gorm:"size:255;not null" json:"name"`
	Cuisine       string           `gorm:"size:50;index" json:"cuisine"`
	PrepMinutes   int              `gorm:"not null;default:0" json:"prep_minutes"`
	Calories      int              `gorm:"not null" json:"calories"`
	Ingredients   JSONBStringArray `gorm:"type:jsonb;not null;default:'[]'" json:"ingredients"`
	Cost          float64          `gorm:"type:float;not null;default:0" json:"cost"`
	ShelfLifeDays int              `gorm:"not null;default:0" json:"shelf_life_days"`
	Tags          JSONBStringArray `gorm:"type:jsonb;not null;default:'[]'" json:"tags"`
	Nutrition     string           `gorm:"type:text" json:"nutrition"`
	UserID        uuid.UUID        `gorm:"type:uuid;index" json:"user_id"`
}

// BeforeCreate assigns an id when the caller did not.
func (d *Dish) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

// ToPlanner converts the row into the planner's catalog entry.
func (d *Dish) ToPlanner() planner.Dish {
	return planner.Dish{
		ID:            d.ID.String(),
		Name:          d.Name,
		Cuisine:       d.Cuisine,
		PrepMinutes:   d.PrepMinutes,
		Calories:      d.Calories,
		Ingredients:   append([]string(nil), d.Ingredients...),
		Cost:          d.Cost,
		ShelfLifeDays: d.ShelfLifeDays,
		Tags:          append([]string(nil), d.Tags...),
		Nutrition:     d.Nutrition,
	}
}

// DishFromPlanner builds a row from a catalog entry. A non-uuid id is
// replaced on insert.
func DishFromPlanner(p planner.Dish) Dish {
	id, err := uuid.Parse(p.ID)
	if err != nil {
		id = uuid.Nil
	}
	return Dish{
		ID:            id,
		Name:          p.Name,
		Cuisine:       p.Cuisine,
		PrepMinutes:   p.PrepMinutes,
		Calories:      p.Calories,
		Ingredients:   JSONBStringArray(p.Ingredients),
		Cost:          p.Cost,
		ShelfLifeDays: p.ShelfLifeDays,
		Tags:          JSONBStringArray(p.Tags),
		Nutrition:     p.Nutrition,
	}
}
