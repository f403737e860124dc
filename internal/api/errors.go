package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/alchemorsel-planner/backend/internal/planner"
	"github.com/pageza/alchemorsel-planner/backend/internal/service"
)

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, planner.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, planner.ErrInfeasible):
		return http.StatusUnprocessableEntity
	case errors.Is(err, planner.ErrSolverTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, service.ErrPlanNotFound),
		errors.Is(err, service.ErrDishNotFound),
		errors.Is(err, service.ErrNotArchived),
		errors.Is(err, service.ErrPreferenceNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrArchiveDisabled):
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err as a JSON error body. Server-side failures are
// logged and their details withheld from the client.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError && status != http.StatusGatewayTimeout && status != http.StatusNotImplemented {
		logger.Error("Request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		c.JSON(status, gin.H{"error": "internal server error"})
		return
	}

	body := gin.H{"error": err.Error()}
	var verr *planner.ValidationError
	if errors.As(err, &verr) && verr.Field != "" {
		body["field"] = verr.Field
	}
	c.JSON(status, body)
}
