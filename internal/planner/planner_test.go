package planner

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/alchemorsel-planner/backend/internal/solver"
)

type stubSolver struct {
	resp   *solver.Response
	err    error
	params solver.Parameters
}

func (s *stubSolver) Solve(m *solver.Model, p solver.Parameters) (*solver.Response, error) {
	s.params = p
	return s.resp, s.err
}

// unprovenSolver reports every optimal answer as merely feasible.
type unprovenSolver struct {
	inner solver.Solver
}

func (s unprovenSolver) Solve(m *solver.Model, p solver.Parameters) (*solver.Response, error) {
	resp, err := s.inner.Solve(m, p)
	if err == nil && resp.Status == solver.StatusOptimal {
		resp.Status = solver.StatusFeasible
	}
	return resp, err
}

func scenarioARequest() PlanRequest {
	return PlanRequest{
		UserID:        "user-1",
		Days:          2,
		Dishes:        scenarioADishes(),
		DailyCalories: 800,
		BudgetWeek:    20,
	}
}

func newTestEngine(s solver.Solver) *Engine {
	opts := DefaultOptions()
	opts.TimeLimit = 5 * time.Second
	return NewEngine(s, opts, nil)
}

func TestBuildPlanScenarioA(t *testing.T) {
	res, err := newTestEngine(nil).BuildPlan(scenarioARequest())
	require.NoError(t, err)

	require.Len(t, res.Days, 2)
	var total float64
	for _, day := range res.Days {
		assert.GreaterOrEqual(t, day.TotalCalories, 720)
		assert.LessOrEqual(t, day.TotalCalories, 880)
		total += day.TotalCost
	}
	assert.LessOrEqual(t, total, 20.0)
	assert.LessOrEqual(t, len(res.CookDays), 2)

	// A + B is the only combination inside the band.
	for _, day := range res.Days {
		assert.Equal(t, []DishServing{
			{DishID: "a", Name: "Dish A", Servings: 1},
			{DishID: "b", Name: "Dish B", Servings: 1},
		}, day.Dishes)
	}
	assert.Equal(t, []int{0, 1}, res.CookDays)
	assert.Equal(t, []string{"pasta (x2)", "tomato (x4)", "rice (x2)"}, res.ShoppingList.Lines())
	assert.Equal(t, 1600, res.Nutrition.TotalCalories)
	assert.Equal(t, 800.0, res.Nutrition.AvgDailyCalories)
	assert.Equal(t, 16.0, res.Nutrition.TotalCost)
	assert.Equal(t, 4, res.Nutrition.CookSessions)
	assert.Equal(t, 60, res.Nutrition.TotalPrepMinutes)
	assert.Equal(t, 14.0, res.EstimatedSavings)
	assert.Equal(t, "OPTIMAL", res.Solve.Status)
	assert.Equal(t, int64(64), res.Solve.Objective)
	assert.Len(t, res.Dishes, 2)
}

func TestBuildPlanScenarioB(t *testing.T) {
	req := scenarioARequest()
	req.Dishes = []Dish{{ID: "scampi", Name: "Garlic Scampi", Calories: 800, Cost: 9, Ingredients: []string{"shrimp", "garlic"}}}
	req.DietaryRestrictions = []string{"shellfish"}

	res, err := newTestEngine(nil).BuildPlan(req)
	assert.Nil(t, res)
	require.ErrorIs(t, err, ErrValidation)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "dishes", verr.Field)
}

func TestBuildPlanScenarioC(t *testing.T) {
	req := scenarioARequest()
	req.BudgetWeek = 0

	res, err := newTestEngine(nil).BuildPlan(req)
	assert.Nil(t, res)
	require.ErrorIs(t, err, ErrInfeasible)
	var ierr *InfeasibleModelError
	require.ErrorAs(t, err, &ierr)
	assert.Equal(t, 2, ierr.Days)
}

func TestBuildPlanValidation(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(r *PlanRequest)
		field string
	}{
		{"zero days", func(r *PlanRequest) { r.Days = 0 }, "days"},
		{"zero calories", func(r *PlanRequest) { r.DailyCalories = 0 }, "daily_calories"},
		{"infinite calories", func(r *PlanRequest) { r.DailyCalories = math.Inf(1) }, "daily_calories"},
		{"negative budget", func(r *PlanRequest) { r.BudgetWeek = -5 }, "budget_week"},
		{"no dishes", func(r *PlanRequest) { r.Dishes = nil }, "dishes"},
		{"empty dishes", func(r *PlanRequest) { r.Dishes = []Dish{} }, "dishes"},
		{"dish without calories", func(r *PlanRequest) { r.Dishes[1].Calories = 0 }, "dishes[1].calories"},
		{"dish with negative prep", func(r *PlanRequest) { r.Dishes[0].PrepMinutes = -1 }, "dishes[0].prep_minutes"},
		{"duplicate ids", func(r *PlanRequest) { r.Dishes[1].ID = "a" }, "dishes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &stubSolver{}
			req := scenarioARequest()
			tt.edit(&req)

			_, err := newTestEngine(s).BuildPlan(req)
			require.ErrorIs(t, err, ErrValidation)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
			assert.Zero(t, s.params.MaxTime, "solver must not run for invalid input")
		})
	}
}

func TestBuildPlanSolverOutcomes(t *testing.T) {
	boom := errors.New("boom")
	tests := []struct {
		name   string
		solver *stubSolver
		want   error
	}{
		{"infeasible", &stubSolver{resp: &solver.Response{Status: solver.StatusInfeasible}}, ErrInfeasible},
		{"timeout", &stubSolver{resp: &solver.Response{Status: solver.StatusNoSolutionFound}}, ErrSolverTimeout},
		{"model invalid", &stubSolver{resp: &solver.Response{Status: solver.StatusModelInvalid}}, ErrInternalConsistency},
		{"unknown status", &stubSolver{resp: &solver.Response{Status: solver.StatusUnknown}}, ErrInternalConsistency},
		{"rejected model", &stubSolver{err: solver.ErrInvalidModel}, ErrInternalConsistency},
		{"solver failure", &stubSolver{err: boom}, boom},
		{"bogus assignment", &stubSolver{resp: &solver.Response{Status: solver.StatusOptimal, Values: []int64{1}}}, ErrInternalConsistency},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := newTestEngine(tt.solver).BuildPlan(scenarioARequest())
			assert.Nil(t, res)
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, 5*time.Second, tt.solver.params.MaxTime)
		})
	}
}

func TestBuildPlanTimeoutError(t *testing.T) {
	s := &stubSolver{resp: &solver.Response{Status: solver.StatusNoSolutionFound}}
	_, err := newTestEngine(s).BuildPlan(scenarioARequest())

	var terr *SolverTimeoutError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, 5*time.Second, terr.Limit)
	assert.False(t, errors.Is(err, ErrInfeasible))
}

func TestBuildPlanFeasibleIsSuccess(t *testing.T) {
	res, err := newTestEngine(unprovenSolver{inner: solver.NewBacktrackingSolver()}).BuildPlan(scenarioARequest())
	require.NoError(t, err)
	assert.Equal(t, "FEASIBLE", res.Solve.Status)
	assert.Len(t, res.Days, 2)
}

func TestBuildPlanCustomWeights(t *testing.T) {
	// Dish "slow" covers the day in one session but takes long to prepare;
	// "quick" needs two servings but almost no prep.
	req := PlanRequest{
		Days: 1,
		Dishes: []Dish{
			{ID: "slow", Name: "Slow Roast", Calories: 800, Cost: 4, PrepMinutes: 90, Ingredients: []string{"beef"}},
			{ID: "quick", Name: "Quick Wrap", Calories: 400, Cost: 2, PrepMinutes: 5, Ingredients: []string{"tortilla"}},
		},
		DailyCalories: 800,
		BudgetWeek:    50,
	}

	res, err := newTestEngine(nil).BuildPlan(req)
	require.NoError(t, err)
	assert.Equal(t, "quick", res.Days[0].Dishes[0].DishID)
	assert.Equal(t, 2, res.Days[0].Dishes[0].Servings)

	opts := DefaultOptions()
	opts.Weights = &Weights{CookSession: 1000, PrepMinute: 1}
	opts.MaxServings = 1
	req.Dishes = append(req.Dishes, Dish{ID: "quick2", Name: "Quick Salad", Calories: 400, Cost: 2, PrepMinutes: 5})
	res, err = NewEngine(nil, opts, nil).BuildPlan(req)
	require.NoError(t, err)
	require.Len(t, res.Days[0].Dishes, 1)
	assert.Equal(t, "slow", res.Days[0].Dishes[0].DishID)
}

func TestBuildPlanZeroWeights(t *testing.T) {
	opts := DefaultOptions()
	opts.Weights = &Weights{}

	res, err := NewEngine(nil, opts, nil).BuildPlan(scenarioARequest())
	require.NoError(t, err)
	assert.Equal(t, "OPTIMAL", res.Solve.Status)
	assert.Equal(t, int64(0), res.Solve.Objective)
	for _, day := range res.Days {
		assert.InDelta(t, 800, day.TotalCalories, 80)
	}
}

func TestBuildPlanRejectsOversizedModel(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxModelCells = 4

	// Two dishes over two days fit; the filter runs before the size check.
	req := scenarioARequest()
	_, err := NewEngine(nil, opts, nil).BuildPlan(req)
	require.NoError(t, err)

	req.Dishes = append(req.Dishes, Dish{ID: "soup", Name: "Soup", Calories: 200, Cost: 2, Ingredients: []string{"leek"}})
	_, err = NewEngine(nil, opts, nil).BuildPlan(req)
	require.ErrorIs(t, err, ErrValidation)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "dishes", verr.Field)

	req.DietaryRestrictions = []string{"leek"}
	_, err = NewEngine(nil, opts, nil).BuildPlan(req)
	assert.NoError(t, err)
}

func TestBuildPlanLargestModelAllocation(t *testing.T) {
	f := gofakeit.New(11)
	dishes := make([]Dish, 200)
	for i := range dishes {
		dishes[i] = Dish{
			ID:          fmt.Sprintf("dish-%d", i),
			Name:        f.Dinner(),
			PrepMinutes: f.Number(5, 90),
			Calories:    f.Number(150, 900),
			Cost:        float64(f.Number(100, 1200)) / 100,
			Ingredients: []string{f.Vegetable(), f.Fruit()},
		}
	}
	req := PlanRequest{Days: DefaultMaxModelCells / len(dishes), Dishes: dishes, DailyCalories: 2000, BudgetWeek: 1000}

	opts := DefaultOptions()
	opts.MaxBranches = 2000
	var before, after runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&before)
	_, err := NewEngine(nil, opts, nil).BuildPlan(req)
	runtime.ReadMemStats(&after)

	if err != nil {
		require.ErrorIs(t, err, ErrSolverTimeout)
	}
	assert.Less(t, after.TotalAlloc-before.TotalAlloc, uint64(64<<20))
}

func TestBuildPlanDeterministic(t *testing.T) {
	engine := newTestEngine(nil)
	req := fakeRequest(gofakeit.New(7))

	render := func() []byte {
		res, err := engine.BuildPlan(req)
		require.NoError(t, err)
		res.Solve.WallTimeMS = 0
		b, err := json.Marshal(res)
		require.NoError(t, err)
		return b
	}

	first := render()
	assert.Equal(t, first, render())
}

func TestBuildPlanConcurrentUse(t *testing.T) {
	engine := newTestEngine(nil)
	want, err := engine.BuildPlan(scenarioARequest())
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]*PlanResult, 8)
	errs := make([]error, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = engine.BuildPlan(scenarioARequest())
		}(i)
	}
	wg.Wait()

	for i := range results {
		require.NoError(t, errs[i])
		assert.Equal(t, want.Days, results[i].Days)
		assert.Equal(t, want.ShoppingList, results[i].ShoppingList)
	}
}

// fakeRequest builds a small random request that is always solvable: two
// servings of the first dish hit the target exactly and the budget is loose.
func fakeRequest(f *gofakeit.Faker) PlanRequest {
	n := f.Number(2, 4)
	dishes := make([]Dish, n)
	for i := range dishes {
		ings := make([]string, f.Number(1, 4))
		for j := range ings {
			ings[j] = f.Vegetable()
		}
		dishes[i] = Dish{
			ID:          f.UUID(),
			Name:        f.Dinner(),
			Cuisine:     f.RandomString([]string{"italian", "thai", "mexican"}),
			PrepMinutes: f.Number(0, 60),
			Calories:    f.Number(150, 900),
			Ingredients: ings,
			Cost:        float64(f.Number(100, 1200)) / 100,
		}
	}
	return PlanRequest{
		UserID:        f.UUID(),
		Days:          f.Number(1, 3),
		Dishes:        dishes,
		DailyCalories: float64(2 * dishes[0].Calories),
		BudgetWeek:    500,
	}
}

func TestBuildPlanProperties(t *testing.T) {
	engine := newTestEngine(nil)
	f := gofakeit.New(42)

	for run := 0; run < 15; run++ {
		req := fakeRequest(f)
		res, err := engine.BuildPlan(req)
		require.NoError(t, err, "run %d", run)
		catalog, err := NewCatalog(req.Dishes)
		require.NoError(t, err)

		require.Len(t, res.Days, req.Days)
		demand := map[string]int{}
		var spent float64
		var cookDays []int
		for d, day := range res.Days {
			assert.Equal(t, d, day.DayIndex)
			calories := 0
			var cost float64
			for _, ds := range day.Dishes {
				dish, ok := catalog.Lookup(ds.DishID)
				require.True(t, ok)
				assert.GreaterOrEqual(t, ds.Servings, 1)
				assert.LessOrEqual(t, ds.Servings, DefaultMaxServings)
				calories += dish.Calories * ds.Servings
				cost += dish.Cost * float64(ds.Servings)
				for _, ing := range dish.Ingredients {
					demand[ing] += ds.Servings
				}
			}
			assert.Equal(t, calories, day.TotalCalories)
			assert.InDelta(t, cost, day.TotalCost, 0.01*float64(len(day.Dishes)+1))
			assert.GreaterOrEqual(t, float64(day.TotalCalories), 0.9*req.DailyCalories)
			assert.LessOrEqual(t, float64(day.TotalCalories), 1.1*req.DailyCalories)
			if len(day.Dishes) > 0 {
				cookDays = append(cookDays, d)
			}
			spent += day.TotalCost
		}
		assert.LessOrEqual(t, spent, req.BudgetWeek+0.01)
		assert.Equal(t, cookDays, res.CookDays)

		require.Len(t, res.ShoppingList, len(demand))
		for _, item := range res.ShoppingList {
			assert.Equal(t, demand[item.Ingredient], item.Quantity, item.Ingredient)
		}
	}
}
