package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pageza/alchemorsel-planner/backend/internal/middleware"
	"github.com/pageza/alchemorsel-planner/backend/internal/planner"
	"github.com/pageza/alchemorsel-planner/backend/internal/service"
	"github.com/pageza/alchemorsel-planner/backend/internal/types"
)

// PlanHandler serves the meal plan endpoints. Every route requires an
// authenticated user.
type PlanHandler struct {
	plans   service.IPlanService
	maxDays int
	logger  *zap.Logger
}

// NewPlanHandler creates a PlanHandler. maxDays caps the horizon a client may
// ask for; zero disables the cap.
func NewPlanHandler(plans service.IPlanService, maxDays int, logger *zap.Logger) *PlanHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PlanHandler{plans: plans, maxDays: maxDays, logger: logger}
}

// CreatePlan builds and stores a new plan.
func (h *PlanHandler) CreatePlan(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	var body types.CreatePlanRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if h.maxDays > 0 && body.Days > h.maxDays {
		c.JSON(http.StatusBadRequest, gin.H{"error": "days must be at most " + strconv.Itoa(h.maxDays), "field": "days"})
		return
	}

	out, err := h.plans.CreatePlan(c.Request.Context(), userID, planInput(&body))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, out)
}

func planInput(body *types.CreatePlanRequest) service.PlanInput {
	in := service.PlanInput{
		PlanRequest: planner.PlanRequest{
			Days:                body.Days,
			Dishes:              body.Dishes,
			DailyCalories:       body.DailyCalories,
			DietaryRestrictions: body.DietaryRestrictions,
			Preferences:         body.Preferences,
		},
		DishIDs:       body.DishIDs,
		BudgetMissing: body.BudgetWeek == nil,
	}
	if body.BudgetWeek != nil {
		in.BudgetWeek = *body.BudgetWeek
	}
	return in
}

// GetPlan returns a stored plan.
func (h *PlanHandler) GetPlan(c *gin.Context) {
	userID, id, ok := h.planParams(c)
	if !ok {
		return
	}
	plan, err := h.plans.GetPlan(c.Request.Context(), userID, id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

// ListPlans returns the caller's recent plans.
func (h *PlanHandler) ListPlans(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = n
	}

	plans, err := h.plans.ListPlans(c.Request.Context(), userID, limit)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	summaries := make([]types.PlanSummary, len(plans))
	for i, p := range plans {
		summaries[i] = types.NewPlanSummary(p)
	}
	c.JSON(http.StatusOK, gin.H{"plans": summaries})
}

// DeletePlan removes a stored plan.
func (h *PlanHandler) DeletePlan(c *gin.Context) {
	userID, id, ok := h.planParams(c)
	if !ok {
		return
	}
	if err := h.plans.DeletePlan(c.Request.Context(), userID, id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetShoppingList returns the formatted shopping list of a stored plan.
func (h *PlanHandler) GetShoppingList(c *gin.Context) {
	userID, id, ok := h.planParams(c)
	if !ok {
		return
	}
	lines, err := h.plans.ShoppingList(c.Request.Context(), userID, id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"plan_id": id, "shopping_list": lines})
}

// GetArchiveURL returns a temporary download link for the archived plan.
func (h *PlanHandler) GetArchiveURL(c *gin.Context) {
	userID, id, ok := h.planParams(c)
	if !ok {
		return
	}
	url, err := h.plans.ArchiveURL(c.Request.Context(), userID, id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"plan_id": id, "url": url})
}

func (h *PlanHandler) planParams(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return uuid.Nil, uuid.Nil, false
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid plan id"})
		return uuid.Nil, uuid.Nil, false
	}
	return userID, id, true
}
