package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/flexprice/plancatalog/internal/api"
	v1 "github.com/flexprice/plancatalog/internal/api/v1"
	"github.com/flexprice/plancatalog/internal/cache"
	"github.com/flexprice/plancatalog/internal/config"
	"github.com/flexprice/plancatalog/internal/httpclient"
	"github.com/flexprice/plancatalog/internal/logger"
	"github.com/flexprice/plancatalog/internal/metrics"
	"github.com/flexprice/plancatalog/internal/postgres"
	pubsubRouter "github.com/flexprice/plancatalog/internal/pubsub/router"
	"github.com/flexprice/plancatalog/internal/repository"
	"github.com/flexprice/plancatalog/internal/sentry"
	"github.com/flexprice/plancatalog/internal/service"
	"github.com/flexprice/plancatalog/internal/types"
	"github.com/flexprice/plancatalog/internal/validator"
	"github.com/flexprice/plancatalog/internal/webhook"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
)

// The annotations below and on the v1 handlers are read by the swag CLI,
// which writes the OpenAPI document to api/ outside the build.
//
//go:generate swag init -g cmd/server/main.go -d ../../ -o ../../api --outputTypes json,yaml

// @title Plan Catalog API
// @version 1.0
// @description Plans, plan versions and their subscriptions
// @BasePath /v1
// @schemes http https
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name x-api-key

func init() {
	// Set UTC timezone for the entire application
	time.Local = time.UTC
}

func main() {
	var opts []fx.Option

	// Core dependencies
	opts = append(opts,
		fx.Provide(
			// Validator
			validator.NewValidator,

			// Config
			config.NewConfig,

			// Logger
			logger.NewLogger,

			// Cache
			cache.NewInMemoryCache,

			// HTTP Client
			httpclient.NewDefaultClient,

			// PubSub
			pubsubRouter.NewRouter,

			// Repositories
			repository.NewPlanRepository,
			repository.NewPlanTagRepository,
			repository.NewPlanVersionRepository,
			repository.NewProductRepository,
			repository.NewSubscriptionRepository,
		),
		sentry.Module(),
		metrics.Module(),
		postgres.Module(),
	)

	// Webhook module (must be initialised before services)
	opts = append(opts, webhook.Module)

	// Service layer
	opts = append(opts,
		fx.Provide(
			service.NewServiceParams,
			service.NewPlanService,
			service.NewPlanVersionService,
			service.NewProductService,
			service.NewSubscriptionService,
		),
	)

	// API
	opts = append(opts,
		fx.Provide(
			provideHandlers,
			provideRouter,
		),
		fx.Invoke(
			runMigrations,
			startServer,
		),
	)

	app := fx.New(opts...)
	app.Run()
}

func provideHandlers(
	logger *logger.Logger,
	db *postgres.DB,
	planService service.PlanService,
	planVersionService service.PlanVersionService,
	productService service.ProductService,
	subscriptionService service.SubscriptionService,
) api.Handlers {
	return api.Handlers{
		Health:       v1.NewHealthHandler(db, logger),
		Plan:         v1.NewPlanHandler(planService, logger),
		PlanVersion:  v1.NewPlanVersionHandler(planVersionService, logger),
		Product:      v1.NewProductHandler(productService, logger),
		Subscription: v1.NewSubscriptionHandler(subscriptionService, logger),
	}
}

func provideRouter(
	handlers api.Handlers,
	cfg *config.Configuration,
	logger *logger.Logger,
	sentryService *sentry.Service,
	registry *prometheus.Registry,
	m *metrics.Metrics,
) *gin.Engine {
	if cfg.Deployment.Mode != types.ModeLocal {
		gin.SetMode(gin.ReleaseMode)
	}
	return api.NewRouter(handlers, cfg, logger, sentryService, registry, m)
}

// runMigrations applies pending migrations before the server accepts traffic
// when auto_migrate is set or the service runs locally
func runMigrations(lc fx.Lifecycle, cfg *config.Configuration, db *postgres.DB, log *logger.Logger) {
	if !cfg.Postgres.AutoMigrate && cfg.Deployment.Mode != types.ModeLocal {
		return
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("Running database migrations...")
			if err := postgres.Migrate(ctx, db.DB.DB, "up"); err != nil {
				log.Errorw("failed to run migrations", "error", err)
				return err
			}
			return nil
		},
	})
}

func startServer(
	lc fx.Lifecycle,
	cfg *config.Configuration,
	r *gin.Engine,
	db *postgres.DB,
	webhookService *webhook.WebhookService,
	router *pubsubRouter.Router,
	log *logger.Logger,
) {
	mode := cfg.Deployment.Mode
	if mode == "" {
		mode = types.ModeLocal
	}

	switch mode {
	case types.ModeLocal, types.ModeAPI:
		startAPIServer(lc, r, cfg, db, log)
		startMessageRouter(lc, router, webhookService, log)
	default:
		log.Fatalf("Unknown deployment mode: %s", mode)
	}
}

func startAPIServer(
	lc fx.Lifecycle,
	r *gin.Engine,
	cfg *config.Configuration,
	db *postgres.DB,
	log *logger.Logger,
) {
	srv := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: r,
	}

	log.Info("Registering API server start hook")
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("Starting API server...", "address", cfg.Server.Address)
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatalf("Failed to start server: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down server...")
			if err := srv.Shutdown(ctx); err != nil {
				return err
			}
			db.Close()
			return nil
		},
	})
}

func startMessageRouter(
	lc fx.Lifecycle,
	router *pubsubRouter.Router,
	webhookService *webhook.WebhookService,
	logger *logger.Logger,
) {
	// Register handlers before starting the router
	webhookService.RegisterHandler(router)

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := router.Run(context.Background()); err != nil {
					logger.Errorw("message router failed", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("stopping message router")
			if err := router.Close(); err != nil {
				return err
			}
			return webhookService.Stop()
		},
	})
}
