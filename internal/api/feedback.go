package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pageza/alchemorsel-planner/backend/internal/middleware"
	"github.com/pageza/alchemorsel-planner/backend/internal/service"
	"github.com/pageza/alchemorsel-planner/backend/internal/types"
)

// FeedbackHandler serves dish feedback.
type FeedbackHandler struct {
	feedback service.IFeedbackService
	dishes   service.IDishService
	logger   *zap.Logger
}

func NewFeedbackHandler(feedback service.IFeedbackService, dishes service.IDishService, logger *zap.Logger) *FeedbackHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FeedbackHandler{feedback: feedback, dishes: dishes, logger: logger}
}

// SubmitFeedback stores a batch of entries for the caller.
func (h *FeedbackHandler) SubmitFeedback(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}
	var body types.FeedbackBatchRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.feedback.SubmitFeedback(c.Request.Context(), userID, body.ToModels()); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListFeedback lists the caller's entries, optionally for one dish.
func (h *FeedbackHandler) ListFeedback(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	var filter service.FeedbackFilter
	if raw := c.Query("dish_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid dish_id"})
			return
		}
		filter.DishID = &id
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		filter.Limit = limit
	}

	entries, err := h.feedback.ListFeedback(c.Request.Context(), userID, filter)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"feedback": entries})
}

// GetDishSummary aggregates all feedback on a dish.
func (h *FeedbackHandler) GetDishSummary(c *gin.Context) {
	id, ok := dishID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	if _, err := h.dishes.GetDish(ctx, id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	summary, err := h.feedback.DishSummary(ctx, id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}
