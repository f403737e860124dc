package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pageza/alchemorsel-planner/backend/internal/middleware"
	"github.com/pageza/alchemorsel-planner/backend/internal/service"
	"github.com/pageza/alchemorsel-planner/backend/internal/types"
)

// DishHandler serves the dish catalog.
type DishHandler struct {
	dishes service.IDishService
	logger *zap.Logger
}

// NewDishHandler creates a DishHandler
func NewDishHandler(dishes service.IDishService, logger *zap.Logger) *DishHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DishHandler{dishes: dishes, logger: logger}
}

// ListDishes searches the catalog. q matches name or ingredients, cuisine is
// an exact match and exclude is a comma-separated list of keywords to drop.
func (h *DishHandler) ListDishes(c *gin.Context) {
	filter := service.DishFilter{
		Query:   c.Query("q"),
		Cuisine: c.Query("cuisine"),
	}
	if ex := c.Query("exclude"); ex != "" {
		filter.Exclude = strings.Split(ex, ",")
	}
	for name, dst := range map[string]*int{"limit": &filter.Limit, "offset": &filter.Offset} {
		raw := c.Query(name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": name + " must be a non-negative integer"})
			return
		}
		*dst = n
	}

	dishes, err := h.dishes.SearchDishes(c.Request.Context(), filter)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"dishes": dishes})
}

// GetDish returns one dish.
func (h *DishHandler) GetDish(c *gin.Context) {
	id, ok := dishID(c)
	if !ok {
		return
	}
	dish, err := h.dishes.GetDish(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, dish)
}

// CreateDish adds a dish owned by the caller.
func (h *DishHandler) CreateDish(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}
	var body types.DishRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	dish := body.ToModel()
	dish.UserID = userID
	created, err := h.dishes.CreateDish(c.Request.Context(), dish)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// UpdateDish replaces a dish.
func (h *DishHandler) UpdateDish(c *gin.Context) {
	id, ok := dishID(c)
	if !ok {
		return
	}
	var body types.DishRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	updated, err := h.dishes.UpdateDish(c.Request.Context(), id, body.ToModel())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// DeleteDish removes a dish.
func (h *DishHandler) DeleteDish(c *gin.Context) {
	id, ok := dishID(c)
	if !ok {
		return
	}
	if err := h.dishes.DeleteDish(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func dishID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid dish id"})
		return uuid.Nil, false
	}
	return id, true
}
