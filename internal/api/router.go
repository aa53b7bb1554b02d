package api

import (
	v1 "github.com/flexprice/plancatalog/internal/api/v1"
	"github.com/flexprice/plancatalog/internal/config"
	"github.com/flexprice/plancatalog/internal/logger"
	"github.com/flexprice/plancatalog/internal/metrics"
	"github.com/flexprice/plancatalog/internal/rest/middleware"
	"github.com/flexprice/plancatalog/internal/sentry"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Handlers struct {
	Health       *v1.HealthHandler
	Plan         *v1.PlanHandler
	PlanVersion  *v1.PlanVersionHandler
	Product      *v1.ProductHandler
	Subscription *v1.SubscriptionHandler
}

func NewRouter(
	handlers Handlers,
	cfg *config.Configuration,
	logger *logger.Logger,
	sentryService *sentry.Service,
	registry *prometheus.Registry,
	m *metrics.Metrics,
) *gin.Engine {
	router := gin.New()

	router.Use(
		gin.Recovery(),
		middleware.RequestIDMiddleware,
		middleware.CORSMiddleware,
		middleware.SentryMiddleware(cfg),
		middleware.MetricsMiddleware(m),
		middleware.ErrorHandler(logger, sentryService),
	)

	// Public routes
	router.GET("/health", handlers.Health.Health)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	private := router.Group("/v1")
	private.Use(middleware.AuthenticateMiddleware(cfg, logger))
	registerV1Routes(private, handlers)

	return router
}

func registerV1Routes(router *gin.RouterGroup, handlers Handlers) {
	plans := router.Group("/plans")
	{
		plans.POST("", handlers.Plan.CreatePlan)
		plans.GET("", handlers.Plan.GetPlans)
		plans.GET("/:id", handlers.Plan.GetPlan)
		plans.PATCH("/:id", handlers.Plan.UpdatePlan)
	}

	planVersions := router.Group("/plan_versions")
	{
		planVersions.POST("", handlers.PlanVersion.CreatePlanVersion)
		planVersions.GET("", handlers.PlanVersion.GetPlanVersions)
		planVersions.GET("/:id", handlers.PlanVersion.GetPlanVersion)
		planVersions.PATCH("/:id", handlers.PlanVersion.UpdatePlanVersion)
	}

	products := router.Group("/products")
	{
		products.POST("", handlers.Product.CreateProduct)
		products.GET("/:id", handlers.Product.GetProduct)
	}

	subscriptions := router.Group("/subscriptions")
	{
		subscriptions.POST("", handlers.Subscription.CreateSubscription)
		subscriptions.GET("", handlers.Subscription.GetSubscriptions)
		subscriptions.GET("/:id", handlers.Subscription.GetSubscription)
	}
}
