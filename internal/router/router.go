package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/alchemorsel-planner/backend/internal/api"
	"github.com/pageza/alchemorsel-planner/backend/internal/metrics"
	"github.com/pageza/alchemorsel-planner/backend/internal/middleware"
)

// Dependencies holds everything the routes are wired to. Metrics,
// PlanLimiter and the preference and feedback handlers are optional.
type Dependencies struct {
	PlanHandler       *api.PlanHandler
	DishHandler       *api.DishHandler
	HealthHandler     *api.HealthHandler
	PreferenceHandler *api.PreferenceHandler
	FeedbackHandler   *api.FeedbackHandler
	Tokens            middleware.TokenValidator
	PlanLimiter       middleware.Limiter
	Metrics           *metrics.Collector
	Logger            *zap.Logger
	AllowedOrigins    []string
}

// SetupRouter configures the application routes
func SetupRouter(d Dependencies) *gin.Engine {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()
	router.Use(middleware.ErrorHandler(logger))
	router.Use(middleware.RequestLogger(logger))
	router.Use(d.Metrics.HTTPMiddleware())
	router.Use(middleware.CORS(d.AllowedOrigins))

	router.GET("/health", d.HealthHandler.Check)
	router.GET("/api/health", d.HealthHandler.Check)
	if d.Metrics != nil {
		router.GET("/metrics", gin.WrapH(d.Metrics.Handler()))
	}

	v1 := router.Group("/api/v1")
	auth := middleware.AuthMiddleware(d.Tokens)

	dishes := v1.Group("/dishes")
	{
		dishes.GET("", d.DishHandler.ListDishes)
		dishes.GET("/:id", d.DishHandler.GetDish)
		dishes.POST("", auth, d.DishHandler.CreateDish)
		dishes.PUT("/:id", auth, d.DishHandler.UpdateDish)
		dishes.DELETE("/:id", auth, d.DishHandler.DeleteDish)
		if d.FeedbackHandler != nil {
			dishes.GET("/:id/feedback", d.FeedbackHandler.GetDishSummary)
		}
	}

	create := []gin.HandlerFunc{d.PlanHandler.CreatePlan}
	if d.PlanLimiter != nil {
		create = append([]gin.HandlerFunc{middleware.RateLimitMiddleware(d.PlanLimiter, logger)}, create...)
	}

	plans := v1.Group("/plans", auth)
	{
		plans.POST("", create...)
		plans.GET("", d.PlanHandler.ListPlans)
		plans.GET("/:id", d.PlanHandler.GetPlan)
		plans.DELETE("/:id", d.PlanHandler.DeletePlan)
		plans.GET("/:id/shopping-list", d.PlanHandler.GetShoppingList)
		plans.GET("/:id/archive", d.PlanHandler.GetArchiveURL)
	}

	if d.PreferenceHandler != nil {
		prefs := v1.Group("/preferences", auth)
		prefs.GET("", d.PreferenceHandler.GetPreferences)
		prefs.PUT("", d.PreferenceHandler.UpdatePreferences)
		prefs.DELETE("", d.PreferenceHandler.DeletePreferences)
	}

	if d.FeedbackHandler != nil {
		feedback := v1.Group("/feedback", auth)
		feedback.POST("", d.FeedbackHandler.SubmitFeedback)
		feedback.GET("", d.FeedbackHandler.ListFeedback)
	}

	return router
}
