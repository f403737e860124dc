package planner

import (
	"github.com/pageza/alchemorsel-planner/backend/internal/solver"
)

// Schedule is a solved assignment read back into days.
type Schedule struct {
	Days      []Day
	CookDays  []int
	Objective int64
}

// Extract reads a solver response into a schedule. Dishes are emitted in
// catalog order and every total is recomputed from servings, then checked
// against the model's bounds and the solver's objective.
func Extract(pm *PlanModel, resp *solver.Response) (*Schedule, error) {
	if resp == nil || !resp.Status.HasSolution() {
		return nil, inconsistent("no assignment to extract")
	}
	if len(resp.Values) != pm.Model.NumVars() {
		return nil, inconsistent("assignment has %d values for %d variables", len(resp.Values), pm.Model.NumVars())
	}

	sched := &Schedule{
		Days:     make([]Day, pm.Days),
		CookDays: []int{},
	}
	var spent int64
	for t := 0; t < pm.Days; t++ {
		day := Day{DayIndex: t, Dishes: []DishServing{}}
		var calories, cents int64
		for i, d := range pm.Dishes {
			servings := resp.Value(pm.Vars.Servings[i][t])
			cook := resp.BoolValue(pm.Vars.Cook[i][t])
			if cook != (servings > 0) {
				return nil, inconsistent("dish %q day %d: cook=%t with %d servings", d.ID, t, cook, servings)
			}
			if servings == 0 {
				continue
			}
			day.Dishes = append(day.Dishes, DishServing{DishID: d.ID, Name: d.Name, Servings: int(servings)})
			calories += int64(d.Calories) * servings
			cents += pm.CostCents(i) * servings
			sched.Objective += pm.CookCoefficient(i)
		}
		if calories < pm.CalorieLow || calories > pm.CalorieHigh {
			return nil, inconsistent("day %d has %d calories outside [%d, %d]", t, calories, pm.CalorieLow, pm.CalorieHigh)
		}
		if len(day.Dishes) > 0 {
			sched.CookDays = append(sched.CookDays, t)
		}
		day.TotalCalories = int(calories)
		day.TotalCost = fromCents(cents)
		sched.Days[t] = day
		spent += cents
	}

	if spent > pm.BudgetCents {
		return nil, inconsistent("plan costs %d cents over a budget of %d", spent, pm.BudgetCents)
	}
	if sched.Objective != resp.ObjectiveValue {
		return nil, inconsistent("recomputed objective %d differs from solver objective %d", sched.Objective, resp.ObjectiveValue)
	}
	return sched, nil
}
