package planner

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scenarioADishes() []Dish {
	return []Dish{
		{ID: "a", Name: "Dish A", Calories: 500, Cost: 5, PrepMinutes: 20, Ingredients: []string{"pasta", "tomato"}},
		{ID: "b", Name: "Dish B", Calories: 300, Cost: 3, PrepMinutes: 10, Ingredients: []string{"rice", " tomato ", ""}},
	}
}

func TestCalorieBand(t *testing.T) {
	lo, hi := calorieBand(800, 10)
	assert.Equal(t, int64(720), lo)
	assert.Equal(t, int64(880), hi)

	// 0.9 * 1234.5 = 1111.05 and 1.1 * 1234.5 = 1357.95
	lo, hi = calorieBand(1234.5, 10)
	assert.Equal(t, int64(1112), lo)
	assert.Equal(t, int64(1357), hi)

	lo, hi = calorieBand(2000, 20)
	assert.Equal(t, int64(1600), lo)
	assert.Equal(t, int64(2400), hi)
}

func TestToCentsRounds(t *testing.T) {
	assert.Equal(t, int64(30), toCents(0.1+0.2))
	assert.Equal(t, int64(1999), toCents(19.99))
	assert.Equal(t, int64(0), toCents(0))
	assert.InDelta(t, 19.99, fromCents(1999), 1e-9)
}

func TestBuildModelShape(t *testing.T) {
	pm, err := BuildModel(scenarioADishes(), 3, 800, 20, DefaultOptions())
	require.NoError(t, err)

	// servings and cook per (dish, day)
	assert.Equal(t, 2*2*3, pm.Model.NumVars())
	// two link constraints per (dish, day), one band per day, one budget
	assert.Equal(t, 2*2*3+3+1, pm.Model.NumConstraints())
	assert.Equal(t, int64(2000), pm.BudgetCents)
	assert.Equal(t, int64(720), pm.CalorieLow)
	assert.Equal(t, int64(880), pm.CalorieHigh)
	assert.Equal(t, int64(21), pm.CookCoefficient(0))
	assert.Equal(t, int64(11), pm.CookCoefficient(1))
	assert.Equal(t, int64(500), pm.CostCents(0))

	require.Len(t, pm.Vars.Servings, 2)
	require.Len(t, pm.Vars.Servings[0], 3)
	v := pm.Model.Variable(pm.Vars.Servings[1][2])
	assert.Equal(t, int64(0), v.Min)
	assert.Equal(t, int64(DefaultMaxServings), v.Max)
	assert.True(t, pm.Model.Variable(pm.Vars.Cook[1][2]).Bool)
}

func TestBuildModelLinksCookBothWays(t *testing.T) {
	dishes := []Dish{{ID: "x", Name: "X", Calories: 800, Cost: 1}}
	pm, err := BuildModel(dishes, 1, 800, 10, DefaultOptions())
	require.NoError(t, err)

	s, c := pm.Vars.Servings[0][0], pm.Vars.Cook[0][0]
	assign := func(servings, cook int64) []int64 {
		values := make([]int64, pm.Model.NumVars())
		values[s] = servings
		values[c] = cook
		return values
	}

	assert.True(t, pm.Model.Satisfied(assign(1, 1)))
	assert.False(t, pm.Model.Satisfied(assign(1, 0)), "servings without a cook session")

	// A target this small rounds to a [0, 0] band, so only the links decide.
	pm, err = BuildModel(dishes, 1, 0.01, 10, DefaultOptions())
	require.NoError(t, err)
	s, c = pm.Vars.Servings[0][0], pm.Vars.Cook[0][0]
	assert.True(t, pm.Model.Satisfied(assign(0, 0)))
	assert.False(t, pm.Model.Satisfied(assign(0, 1)), "cook session without servings")
}

func TestBuildModelRejectsBadInput(t *testing.T) {
	dishes := scenarioADishes()
	tests := []struct {
		name   string
		dishes []Dish
		days   int
		cal    float64
		budget float64
		field  string
	}{
		{"empty catalog", nil, 1, 800, 10, "dishes"},
		{"zero days", dishes, 0, 800, 10, "days"},
		{"zero calories", dishes, 1, 0, 10, "daily_calories"},
		{"nan calories", dishes, 1, math.NaN(), 10, "daily_calories"},
		{"negative budget", dishes, 1, 800, -1, "budget_week"},
		{"infinite budget", dishes, 1, 800, math.Inf(1), "budget_week"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildModel(tt.dishes, tt.days, tt.cal, tt.budget, DefaultOptions())
			require.ErrorIs(t, err, ErrValidation)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestOptionsWithDefaults(t *testing.T) {
	o := Options{}.withDefaults()
	assert.Equal(t, DefaultMaxServings, o.MaxServings)
	assert.Equal(t, DefaultCalorieBandPercent, o.CalorieBandPercent)
	assert.Equal(t, DefaultFlatMealCost, o.FlatMealCost)
	assert.Equal(t, DefaultTimeLimit, o.TimeLimit)
	assert.Equal(t, DefaultWeights(), *o.Weights)
	assert.Contains(t, o.AllergenGroups, "shellfish")
	assert.Equal(t, DefaultMaxModelCells, o.MaxModelCells)

	custom := Options{MaxServings: 2, Weights: &Weights{CookSession: 10}}.withDefaults()
	assert.Equal(t, 2, custom.MaxServings)
	assert.Equal(t, Weights{CookSession: 10}, *custom.Weights)

	zero := Options{Weights: &Weights{}}.withDefaults()
	assert.Equal(t, Weights{}, *zero.Weights)
}
