package planner

// Summary is the nutrition summary plus the savings estimate.
type Summary struct {
	Nutrition        NutritionSummary
	EstimatedSavings float64
}

// Summarize totals the schedule. Savings compare the plan cost against buying
// flatMealCost worth of food every day.
func Summarize(days []Day, catalog *Catalog, dailyTarget, budget, flatMealCost float64) (Summary, error) {
	if len(days) == 0 {
		return Summary{}, &ValidationError{Field: "days", Message: "must be at least 1"}
	}

	var n NutritionSummary
	var cents int64
	for _, day := range days {
		n.TotalCalories += day.TotalCalories
		cents += toCents(day.TotalCost)
		for _, ds := range day.Dishes {
			dish, ok := catalog.Lookup(ds.DishID)
			if !ok {
				return Summary{}, inconsistent("day %d references unknown dish %q", day.DayIndex, ds.DishID)
			}
			n.CookSessions++
			n.TotalPrepMinutes += dish.PrepMinutes
		}
	}

	count := float64(len(days))
	n.AvgDailyCalories = float64(n.TotalCalories) / count
	n.TargetDailyCalories = dailyTarget
	n.TotalCost = fromCents(cents)
	n.AvgDailyCost = n.TotalCost / count
	n.Budget = budget

	savings := int64(len(days))*toCents(flatMealCost) - cents
	return Summary{Nutrition: n, EstimatedSavings: fromCents(savings)}, nil
}
