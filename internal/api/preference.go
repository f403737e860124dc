package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/alchemorsel-planner/backend/internal/middleware"
	"github.com/pageza/alchemorsel-planner/backend/internal/service"
	"github.com/pageza/alchemorsel-planner/backend/internal/types"
)

// PreferenceHandler serves the caller's stored planning defaults.
type PreferenceHandler struct {
	preferences service.IPreferenceService
	logger      *zap.Logger
}

func NewPreferenceHandler(preferences service.IPreferenceService, logger *zap.Logger) *PreferenceHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PreferenceHandler{preferences: preferences, logger: logger}
}

// GetPreferences returns the caller's preferences.
func (h *PreferenceHandler) GetPreferences(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}
	pref, err := h.preferences.GetPreference(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, pref)
}

// UpdatePreferences replaces the caller's preferences.
func (h *PreferenceHandler) UpdatePreferences(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}
	var body types.PreferenceRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	pref, err := h.preferences.UpsertPreference(c.Request.Context(), userID, body.ToModel())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, pref)
}

// DeletePreferences removes the caller's preferences.
func (h *PreferenceHandler) DeletePreferences(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}
	if err := h.preferences.DeletePreference(c.Request.Context(), userID); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
