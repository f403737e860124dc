package api

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/pageza/alchemorsel-planner/backend/internal/mocks"
	"github.com/pageza/alchemorsel-planner/backend/internal/model"
	"github.com/pageza/alchemorsel-planner/backend/internal/planner"
	"github.com/pageza/alchemorsel-planner/backend/internal/service"
)

func setupPlanRouter(plans *mocks.MockPlanService, userID uuid.UUID) *gin.Engine {
	h := NewPlanHandler(plans, 28, nil)
	r := gin.New()
	g := r.Group("/plans", withUser(userID))
	g.POST("", h.CreatePlan)
	g.GET("", h.ListPlans)
	g.GET("/:id", h.GetPlan)
	g.DELETE("/:id", h.DeletePlan)
	g.GET("/:id/shopping-list", h.GetShoppingList)
	g.GET("/:id/archive", h.GetArchiveURL)
	return r
}

func TestCreatePlanHandler(t *testing.T) {
	userID := uuid.New()
	dishIDs := []uuid.UUID{uuid.New(), uuid.New()}
	plans := &mocks.MockPlanService{}
	r := setupPlanRouter(plans, userID)

	result := &planner.PlanResult{
		Days:     []planner.Day{{DayIndex: 0, Dishes: []planner.DishServing{}}},
		CookDays: []int{},
		Solve:    planner.SolveInfo{Status: "OPTIMAL"},
	}
	planID := uuid.New()
	plans.On("CreatePlan", mock.Anything, userID, mock.MatchedBy(func(in service.PlanInput) bool {
		return in.Days == 1 && in.DailyCalories == 800 && in.BudgetWeek == 0 && !in.BudgetMissing &&
			len(in.DietaryRestrictions) == 1 && in.DietaryRestrictions[0] == "nuts" &&
			assert.ObjectsAreEqual(dishIDs, in.DishIDs)
	})).Return(&service.PlanOutcome{ID: planID, CreatedAt: time.Now(), Result: result}, nil).Once()

	w := doJSON(t, r, http.MethodPost, "/plans", map[string]any{
		"days":                 1,
		"daily_calories":       800,
		"budget_week":          0,
		"dish_ids":             dishIDs,
		"dietary_restrictions": []string{"nuts"},
	})
	assert.Equal(t, http.StatusCreated, w.Code)
	body := decode(t, w)
	assert.Equal(t, planID.String(), body["plan_id"])
	assert.Equal(t, "OPTIMAL", body["plan"].(map[string]any)["solve"].(map[string]any)["status"])
	plans.AssertExpectations(t)
}

func TestCreatePlanHandlerBindingErrors(t *testing.T) {
	plans := &mocks.MockPlanService{}
	r := setupPlanRouter(plans, uuid.New())

	tests := []struct {
		name string
		body map[string]any
	}{
		{"zero days", map[string]any{"days": 0, "daily_calories": 800, "budget_week": 10}},
		{"negative budget", map[string]any{"days": 2, "daily_calories": 800, "budget_week": -1}},
		{"over max days", map[string]any{"days": 29, "daily_calories": 800, "budget_week": 10}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, r, http.MethodPost, "/plans", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
	plans.AssertNotCalled(t, "CreatePlan", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreatePlanHandlerLeavesDefaultsToPreferences(t *testing.T) {
	userID := uuid.New()
	plans := &mocks.MockPlanService{}
	r := setupPlanRouter(plans, userID)

	result := &planner.PlanResult{Solve: planner.SolveInfo{Status: "OPTIMAL"}}
	plans.On("CreatePlan", mock.Anything, userID, mock.MatchedBy(func(in service.PlanInput) bool {
		return in.BudgetMissing && in.BudgetWeek == 0 && in.DietaryRestrictions == nil
	})).Return(&service.PlanOutcome{ID: uuid.New(), Result: result}, nil).Once()
	plans.On("CreatePlan", mock.Anything, userID, mock.MatchedBy(func(in service.PlanInput) bool {
		return !in.BudgetMissing && in.BudgetWeek == 12.5 &&
			in.DietaryRestrictions != nil && len(in.DietaryRestrictions) == 0
	})).Return(&service.PlanOutcome{ID: uuid.New(), Result: result}, nil).Once()

	w := doJSON(t, r, http.MethodPost, "/plans", map[string]any{
		"days": 2, "daily_calories": 800, "dish_ids": []uuid.UUID{uuid.New()},
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, r, http.MethodPost, "/plans", map[string]any{
		"days": 2, "daily_calories": 800, "budget_week": 12.5,
		"dish_ids": []uuid.UUID{uuid.New()}, "dietary_restrictions": []string{},
	})
	assert.Equal(t, http.StatusCreated, w.Code)
	plans.AssertExpectations(t)
}

func TestCreatePlanHandlerErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		field  string
	}{
		{"validation", &planner.ValidationError{Field: "dishes", Message: "no dishes left after applying dietary restrictions"}, http.StatusBadRequest, "dishes"},
		{"infeasible", &planner.InfeasibleModelError{Days: 2, Dishes: 2}, http.StatusUnprocessableEntity, ""},
		{"timeout", &planner.SolverTimeoutError{Limit: time.Second}, http.StatusGatewayTimeout, ""},
		{"inconsistent", &planner.InternalConsistencyError{Reason: "objective mismatch"}, http.StatusInternalServerError, ""},
		{"storage", errors.New("connection reset"), http.StatusInternalServerError, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plans := &mocks.MockPlanService{}
			plans.On("CreatePlan", mock.Anything, mock.Anything, mock.Anything).Return(nil, tt.err)
			r := setupPlanRouter(plans, uuid.New())

			w := doJSON(t, r, http.MethodPost, "/plans", map[string]any{
				"days": 2, "daily_calories": 800, "budget_week": 20,
				"dishes": []map[string]any{{"id": "a", "name": "A", "calories": 500, "cost": 5}},
			})
			assert.Equal(t, tt.status, w.Code)
			body := decode(t, w)
			if tt.field != "" {
				assert.Equal(t, tt.field, body["field"])
			}
			if tt.status == http.StatusInternalServerError {
				assert.Equal(t, "internal server error", body["error"])
			}
		})
	}
}

func TestPlanReadHandlers(t *testing.T) {
	userID, planID := uuid.New(), uuid.New()
	plans := &mocks.MockPlanService{}
	r := setupPlanRouter(plans, userID)

	stored := &model.MealPlan{ID: planID, UserID: userID, Days: 2, Status: "OPTIMAL"}
	plans.On("GetPlan", mock.Anything, userID, planID).Return(stored, nil)
	plans.On("ListPlans", mock.Anything, userID, 5).Return([]*model.MealPlan{stored}, nil)
	plans.On("ShoppingList", mock.Anything, userID, planID).Return([]string{"pasta (x2)", "rice"}, nil)
	plans.On("ArchiveURL", mock.Anything, userID, planID).Return("", service.ErrNotArchived)
	plans.On("DeletePlan", mock.Anything, userID, planID).Return(nil)

	w := doJSON(t, r, http.MethodGet, "/plans/"+planID.String(), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, planID.String(), decode(t, w)["id"])

	w = doJSON(t, r, http.MethodGet, "/plans?limit=5", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w)["plans"], 1)

	w = doJSON(t, r, http.MethodGet, "/plans?limit=abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, r, http.MethodGet, "/plans/"+planID.String()+"/shopping-list", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []any{"pasta (x2)", "rice"}, decode(t, w)["shopping_list"])

	w = doJSON(t, r, http.MethodGet, "/plans/"+planID.String()+"/archive", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, r, http.MethodDelete, "/plans/"+planID.String(), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, r, http.MethodGet, "/plans/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPlanHandlerNotFound(t *testing.T) {
	userID := uuid.New()
	plans := &mocks.MockPlanService{}
	plans.On("GetPlan", mock.Anything, userID, mock.Anything).Return(nil, service.ErrPlanNotFound)
	r := setupPlanRouter(plans, userID)

	w := doJSON(t, r, http.MethodGet, "/plans/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPlanHandlerRequiresUser(t *testing.T) {
	h := NewPlanHandler(&mocks.MockPlanService{}, 0, nil)
	r := gin.New()
	r.POST("/plans", h.CreatePlan)

	w := doJSON(t, r, http.MethodPost, "/plans", map[string]any{"days": 1})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
