package api

import (
	v1 "github.com/Wizard254-ux/example-driver-portal-sub000/internal/api/v1"
	"github.com/Wizard254-ux/example-driver-portal-sub000/internal/config"
	"github.com/Wizard254-ux/example-driver-portal-sub000/internal/logger"
	"github.com/Wizard254-ux/example-driver-portal-sub000/internal/rest/middleware"
	"github.com/Wizard254-ux/example-driver-portal-sub000/internal/sentry"
	"github.com/Wizard254-ux/example-driver-portal-sub000/internal/types"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Handlers struct {
	Health     *v1.HealthHandler
	Proration  *v1.ProrationHandler
	PlanChange *v1.PlanChangeHandler
}

func NewRouter(handlers Handlers, cfg *config.Configuration, logger *logger.Logger, reporter *sentry.Service) *gin.Engine {
	if cfg.Logging.Level != types.LogLevelDebug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(
		gin.LoggerWithWriter(logger.GetGinLogger(), "/health", "/metrics"),
		gin.Recovery(),
		middleware.SentryMiddleware(cfg),
		middleware.RequestIDMiddleware,
		middleware.CORSMiddleware,
		middleware.ErrorHandler(logger, reporter),
	)

	router.GET("/health", handlers.Health.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// v1 routes
	v1Group := router.Group("/v1")
	registerV1Routes(v1Group, handlers)

	return router
}

func registerV1Routes(router *gin.RouterGroup, handlers Handlers) {
	// Stateless calculator, no Billing API access
	router.POST("/proration/calculate", handlers.Proration.Calculate)

	// Organization scoped routes forward the caller's token to the Billing API
	organizations := router.Group("/organizations/:org_id")
	organizations.Use(middleware.BearerPassthroughMiddleware, middleware.OrganizationMiddleware)
	{
		organizations.POST("/plan-change/preview", handlers.PlanChange.Preview)
		organizations.POST("/plan-change", handlers.PlanChange.Apply)
		organizations.GET("/downgrade-eligibility", handlers.PlanChange.DowngradeEligibility)
		organizations.GET("/change-limits", handlers.PlanChange.ChangeLimits)
	}
}
