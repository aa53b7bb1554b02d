package internal

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/flexprice/plancatalog/internal/api/dto"
	"github.com/flexprice/plancatalog/internal/cache"
	"github.com/flexprice/plancatalog/internal/config"
	"github.com/flexprice/plancatalog/internal/logger"
	"github.com/flexprice/plancatalog/internal/metrics"
	"github.com/flexprice/plancatalog/internal/postgres"
	"github.com/flexprice/plancatalog/internal/pubsub/memory"
	"github.com/flexprice/plancatalog/internal/repository"
	"github.com/flexprice/plancatalog/internal/sentry"
	"github.com/flexprice/plancatalog/internal/service"
	"github.com/flexprice/plancatalog/internal/types"
	"github.com/flexprice/plancatalog/internal/webhook/publisher"
)

// planImportFile is the layout of PLANS_FILE
type planImportFile struct {
	Products []struct {
		Name        string                  `json:"name"`
		Description string                  `json:"description"`
		Plans       []dto.CreatePlanRequest `json:"plans"`
	} `json:"products"`
}

// ImportPlans creates the products and plans listed in PLANS_FILE for TENANT_ID
// in ENVIRONMENT_ID. Each plan goes through the plan service so it gets its
// first version and tags exactly like an API request would.
func ImportPlans() error {
	path := os.Getenv("PLANS_FILE")
	if path == "" {
		return fmt.Errorf("PLANS_FILE is required")
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read plans file: %w", err)
	}

	var file planImportFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return fmt.Errorf("decode plans file: %w", err)
	}

	cfg, err := config.NewConfig()
	if err != nil {
		return err
	}
	// events of a bulk import are not delivered
	cfg.Webhook.Enabled = false

	log, err := logger.NewLogger(cfg)
	if err != nil {
		return err
	}

	db, err := postgres.NewDB(cfg, log)
	if err != nil {
		return err
	}
	defer db.Close()

	params := service.NewServiceParams(
		log,
		cfg,
		postgres.NewClient(db, cfg, sentry.NewSentryService(cfg, log), log),
		repository.NewPlanRepository(db, log),
		repository.NewPlanTagRepository(db, log),
		repository.NewPlanVersionRepository(db, log),
		repository.NewProductRepository(db, log),
		repository.NewSubscriptionRepository(db, log),
		cache.NewInMemoryCache(cfg, log),
		publisher.NewPublisher(memory.NewPubSub(cfg, log), cfg, log),
		metrics.NewMetrics(nil),
	)
	productService := service.NewProductService(params)
	planService := service.NewPlanService(params)

	ctx := context.Background()
	ctx = types.SetTenantID(ctx, envOr("TENANT_ID", types.DefaultTenantID))
	ctx = types.SetUserID(ctx, envOr("USER_ID", types.DefaultUserID))
	ctx = types.SetEnvironmentID(ctx, os.Getenv("ENVIRONMENT_ID"))

	var created, failed int
	for _, p := range file.Products {
		product, err := productService.CreateProduct(ctx, dto.CreateProductRequest{
			Name:        p.Name,
			Description: p.Description,
		})
		if err != nil {
			log.Errorw("failed to create product", "name", p.Name, "error", err)
			failed += len(p.Plans)
			continue
		}

		for _, req := range p.Plans {
			req.ProductID = product.ID
			plan, err := planService.CreatePlan(ctx, req)
			if err != nil {
				log.Errorw("failed to create plan", "product", p.Name, "plan", req.Name, "error", err)
				failed++
				continue
			}
			log.Infow("created plan", "plan_id", plan.ID, "name", plan.Name, "product_id", product.ID)
			created++
		}
	}

	log.Infow("plan import finished", "created", created, "failed", failed)
	if failed > 0 {
		return fmt.Errorf("%d plans failed to import", failed)
	}
	return nil
}
