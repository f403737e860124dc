// Package planner turns a dish catalog and daily targets into a meal plan.
//
// A plan is produced by filtering the catalog against dietary restrictions,
// building a constraint model over (dish, day) servings, solving it within a
// time limit and then reading the assignment back into days, a shopping list
// and a nutrition summary. Every aggregate is recomputed from servings and the
// catalog, never taken from the solver.
package planner

import (
	"fmt"
	"strings"
)

// Dish is a catalog entry. It is read-only for the duration of a planning run.
type Dish struct {
	ID            string   `json:"id" validate:"required"`
	Name          string   `json:"name" validate:"required"`
	Cuisine       string   `json:"cuisine"`
	PrepMinutes   int      `json:"prep_minutes" validate:"gte=0"`
	Calories      int      `json:"calories" validate:"gt=0"`
	Ingredients   []string `json:"ingredients"`
	Cost          float64  `json:"cost" validate:"gte=0,finite"`
	ShelfLifeDays int      `json:"shelf_life_days" validate:"gte=0"`
	Tags          []string `json:"tags,omitempty"`
	Nutrition     string   `json:"nutrition,omitempty"`
}

// PlanRequest holds everything one planning run needs.
// Preferences are passed through to collaborators and never inspected here.
type PlanRequest struct {
	UserID              string         `json:"user_id"`
	Days                int            `json:"days" validate:"gte=1"`
	Dishes              []Dish         `json:"dishes" validate:"required,min=1,dive"`
	DailyCalories       float64        `json:"daily_calories" validate:"gt=0,finite"`
	BudgetWeek          float64        `json:"budget_week" validate:"gte=0,finite"`
	DietaryRestrictions []string       `json:"dietary_restrictions,omitempty"`
	Preferences         map[string]any `json:"preferences,omitempty"`
}

// DishServing is one dish cooked on a day.
type DishServing struct {
	DishID   string `json:"dish_id"`
	Name     string `json:"name"`
	Servings int    `json:"servings"`
}

// Day is the schedule for a single day. Dishes follow catalog order.
type Day struct {
	DayIndex      int           `json:"day_index"`
	Dishes        []DishServing `json:"dishes"`
	TotalCalories int           `json:"total_calories"`
	TotalCost     float64       `json:"total_cost"`
}

// ShoppingItem is the aggregated demand for one ingredient.
type ShoppingItem struct {
	Ingredient string `json:"ingredient"`
	Quantity   int    `json:"quantity"`
}

// String formats the item as "name" for a single unit and "name (xN)" otherwise.
func (s ShoppingItem) String() string {
	if s.Quantity == 1 {
		return s.Ingredient
	}
	return fmt.Sprintf("%s (x%d)", s.Ingredient, s.Quantity)
}

// ShoppingList keeps ingredients in the order they were first needed.
type ShoppingList []ShoppingItem

// Lines returns the formatted items.
func (l ShoppingList) Lines() []string {
	lines := make([]string, len(l))
	for i, item := range l {
		lines[i] = item.String()
	}
	return lines
}

func (l ShoppingList) String() string {
	return strings.Join(l.Lines(), "\n")
}

// NutritionSummary holds plan-wide totals and per-day averages.
type NutritionSummary struct {
	TotalCalories       int     `json:"total_calories"`
	AvgDailyCalories    float64 `json:"avg_daily_calories"`
	TargetDailyCalories float64 `json:"target_daily_calories"`
	TotalCost           float64 `json:"total_cost"`
	AvgDailyCost        float64 `json:"avg_daily_cost"`
	Budget              float64 `json:"budget"`
	CookSessions        int     `json:"cook_sessions"`
	TotalPrepMinutes    int     `json:"total_prep_minutes"`
}

// SolveInfo describes how the schedule was obtained. It is the only part of a
// PlanResult that can differ between two runs over the same input.
type SolveInfo struct {
	Status     string `json:"status"`
	Objective  int64  `json:"objective"`
	WallTimeMS int64  `json:"wall_time_ms"`
	Branches   int64  `json:"branches"`
}

// PlanResult is the finished plan.
type PlanResult struct {
	Days             []Day            `json:"days"`
	CookDays         []int            `json:"cook_days"`
	ShoppingList     ShoppingList     `json:"shopping_list"`
	Nutrition        NutritionSummary `json:"nutrition_summary"`
	EstimatedSavings float64          `json:"estimated_savings"`
	Solve            SolveInfo        `json:"solve"`

	// Dishes is the filtered catalog the plan was built from.
	Dishes []Dish `json:"-"`
}

// Catalog indexes a dish list by id while keeping its order.
type Catalog struct {
	dishes []Dish
	index  map[string]int
}

// NewCatalog builds a catalog. Duplicate ids are rejected.
func NewCatalog(dishes []Dish) (*Catalog, error) {
	c := &Catalog{
		dishes: dishes,
		index:  make(map[string]int, len(dishes)),
	}
	for i, d := range dishes {
		if _, dup := c.index[d.ID]; dup {
			return nil, &ValidationError{Field: "dishes", Message: fmt.Sprintf("duplicate dish id %q", d.ID)}
		}
		c.index[d.ID] = i
	}
	return c, nil
}

// Dishes returns the dishes in catalog order.
func (c *Catalog) Dishes() []Dish { return c.dishes }

// Len returns the number of dishes.
func (c *Catalog) Len() int { return len(c.dishes) }

// Lookup finds a dish by id.
func (c *Catalog) Lookup(id string) (Dish, bool) {
	i, ok := c.index[id]
	if !ok {
		return Dish{}, false
	}
	return c.dishes[i], true
}
