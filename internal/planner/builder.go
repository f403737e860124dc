package planner

import (
	"fmt"
	"math"

	"github.com/pageza/alchemorsel-planner/backend/internal/solver"
)

// VarTable holds the decision variables, indexed [dish][day] in catalog order.
type VarTable struct {
	Servings [][]solver.VarID
	Cook     [][]solver.VarID
}

func newVarTable(m *solver.Model, dishes []Dish, days, maxServings int) VarTable {
	vt := VarTable{
		Servings: make([][]solver.VarID, len(dishes)),
		Cook:     make([][]solver.VarID, len(dishes)),
	}
	for i, d := range dishes {
		vt.Servings[i] = make([]solver.VarID, days)
		vt.Cook[i] = make([]solver.VarID, days)
		for t := 0; t < days; t++ {
			vt.Servings[i][t] = m.NewIntVar(0, int64(maxServings), fmt.Sprintf("servings[%s,%d]", d.ID, t))
			vt.Cook[i][t] = m.NewBoolVar(fmt.Sprintf("cook[%s,%d]", d.ID, t))
		}
	}
	return vt
}

// PlanModel is a built constraint model together with the data needed to read
// its solution back.
type PlanModel struct {
	Model *solver.Model
	Vars  VarTable

	Dishes []Dish
	Days   int

	// CalorieLow and CalorieHigh bound each day's calories, inclusive.
	CalorieLow  int64
	CalorieHigh int64
	BudgetCents int64
	Weights     Weights

	costCents []int64
}

// CostCents returns the cost of one serving of dish i in cents.
func (pm *PlanModel) CostCents(i int) int64 { return pm.costCents[i] }

// CookCoefficient is the objective cost of cooking dish i on one day.
func (pm *PlanModel) CookCoefficient(i int) int64 {
	return pm.Weights.CookSession + pm.Weights.PrepMinute*int64(pm.Dishes[i].PrepMinutes)
}

// BuildModel formulates the plan for already filtered dishes.
func BuildModel(dishes []Dish, days int, dailyCalories, budget float64, opts Options) (*PlanModel, error) {
	opts = opts.withDefaults()
	if len(dishes) == 0 {
		return nil, &ValidationError{Field: "dishes", Message: "catalog is empty"}
	}
	if days < 1 {
		return nil, &ValidationError{Field: "days", Message: "must be at least 1"}
	}
	if !(dailyCalories > 0) || math.IsInf(dailyCalories, 0) {
		return nil, &ValidationError{Field: "daily_calories", Message: "must be a positive number"}
	}
	if !(budget >= 0) || math.IsInf(budget, 0) {
		return nil, &ValidationError{Field: "budget_week", Message: "must not be negative"}
	}

	m := solver.NewModel()
	pm := &PlanModel{
		Model:       m,
		Vars:        newVarTable(m, dishes, days, opts.MaxServings),
		Dishes:      dishes,
		Days:        days,
		BudgetCents: toCents(budget),
		Weights:     *opts.Weights,
		costCents:   make([]int64, len(dishes)),
	}
	pm.CalorieLow, pm.CalorieHigh = calorieBand(dailyCalories, opts.CalorieBandPercent)
	for i, d := range dishes {
		pm.costCents[i] = toCents(d.Cost)
	}

	for i := range dishes {
		for t := 0; t < days; t++ {
			var s solver.LinearExpr
			s.Add(pm.Vars.Servings[i][t], 1)
			cook := pm.Vars.Cook[i][t]
			m.AddGreaterOrEqual(s, 1, fmt.Sprintf("cook_needs_servings[%d,%d]", i, t)).OnlyEnforceIf(cook.Lit())
			m.AddLessOrEqual(s, 0, fmt.Sprintf("servings_need_cook[%d,%d]", i, t)).OnlyEnforceIf(cook.Not())
		}
	}

	for t := 0; t < days; t++ {
		var cal solver.LinearExpr
		for i, d := range dishes {
			cal.Add(pm.Vars.Servings[i][t], int64(d.Calories))
		}
		m.AddLinear(cal, pm.CalorieLow, pm.CalorieHigh, fmt.Sprintf("calorie_band[%d]", t))
	}

	var spend solver.LinearExpr
	for i := range dishes {
		for t := 0; t < days; t++ {
			spend.Add(pm.Vars.Servings[i][t], pm.costCents[i])
		}
	}
	m.AddLessOrEqual(spend, pm.BudgetCents, "budget")

	var effort solver.LinearExpr
	for i := range dishes {
		coef := pm.CookCoefficient(i)
		for t := 0; t < days; t++ {
			effort.Add(pm.Vars.Cook[i][t], coef)
		}
	}
	m.Minimize(effort)

	return pm, nil
}

// calorieBand returns the inclusive integer calorie range within pct percent
// of target. The target is taken to a tenth of a calorie so the bounds are exact.
func calorieBand(target float64, pct int) (lo, hi int64) {
	t10 := int64(math.Round(target * 10))
	lo = ((100-int64(pct))*t10 + 999) / 1000
	hi = (100 + int64(pct)) * t10 / 1000
	return lo, hi
}

func toCents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

func fromCents(cents int64) float64 {
	return float64(cents) / 100
}
