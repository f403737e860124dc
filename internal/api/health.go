package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/pageza/alchemorsel-planner/backend/internal/database"
)

// HealthHandler reports whether the service and its backing stores respond.
type HealthHandler struct {
	db      *gorm.DB
	redis   *redis.Client
	version string
}

// NewHealthHandler creates a HealthHandler. redis may be nil.
func NewHealthHandler(db *gorm.DB, redisClient *redis.Client, version string) *HealthHandler {
	return &HealthHandler{db: db, redis: redisClient, version: version}
}

// Check returns 200 when every configured dependency answers, 503 otherwise.
func (h *HealthHandler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	checks := gin.H{}
	healthy := true

	if h.db != nil {
		if err := database.HealthCheck(ctx, h.db); err != nil {
			checks["database"] = err.Error()
			healthy = false
		} else {
			checks["database"] = "ok"
		}
	}
	if h.redis != nil {
		if err := h.redis.Ping(ctx).Err(); err != nil {
			checks["redis"] = err.Error()
			healthy = false
		} else {
			checks["redis"] = "ok"
		}
	}

	status, code := "healthy", http.StatusOK
	if !healthy {
		status, code = "unhealthy", http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{
		"status":  status,
		"version": h.version,
		"checks":  checks,
	})
}
