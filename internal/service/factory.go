package service

import (
	"context"
	"sync"

	"github.com/flexprice/plancatalog/internal/cache"
	"github.com/flexprice/plancatalog/internal/config"
	"github.com/flexprice/plancatalog/internal/domain/plan"
	"github.com/flexprice/plancatalog/internal/domain/planversion"
	"github.com/flexprice/plancatalog/internal/domain/product"
	"github.com/flexprice/plancatalog/internal/domain/subscription"
	"github.com/flexprice/plancatalog/internal/logger"
	"github.com/flexprice/plancatalog/internal/metrics"
	"github.com/flexprice/plancatalog/internal/postgres"
	"github.com/flexprice/plancatalog/internal/types"
	webhookPublisher "github.com/flexprice/plancatalog/internal/webhook/publisher"
)

// ServiceParams holds common dependencies for services
type ServiceParams struct {
	Logger *logger.Logger
	Config *config.Configuration
	DB     postgres.IClient

	// Repositories
	PlanRepo        plan.Repository
	PlanTagRepo     plan.TagRepository
	PlanVersionRepo planversion.Repository
	ProductRepo     product.Repository
	SubRepo         subscription.Repository

	Cache cache.Cache
	// shared by every service built from these params
	planCacheGen *cacheGenerations

	// Publishers
	WebhookPublisher webhookPublisher.WebhookPublisher

	Metrics *metrics.Metrics
}

// Common service params
func NewServiceParams(
	logger *logger.Logger,
	config *config.Configuration,
	db postgres.IClient,
	planRepo plan.Repository,
	planTagRepo plan.TagRepository,
	planVersionRepo planversion.Repository,
	productRepo product.Repository,
	subRepo subscription.Repository,
	cache cache.Cache,
	webhookPublisher webhookPublisher.WebhookPublisher,
	metrics *metrics.Metrics,
) ServiceParams {
	return ServiceParams{
		Logger:           logger,
		Config:           config,
		DB:               db,
		PlanRepo:         planRepo,
		PlanTagRepo:      planTagRepo,
		PlanVersionRepo:  planVersionRepo,
		ProductRepo:      productRepo,
		SubRepo:          subRepo,
		Cache:            cache,
		planCacheGen:     newCacheGenerations(),
		WebhookPublisher: webhookPublisher,
		Metrics:          metrics,
	}
}

// publishWebhookEvent is called after commit, failures never reach the caller
func (p ServiceParams) publishWebhookEvent(ctx context.Context, eventName string, payload interface{}) {
	if p.WebhookPublisher == nil {
		p.Logger.Warnw("webhook publisher not initialized", "event", eventName)
		return
	}

	if err := p.WebhookPublisher.PublishEvent(ctx, eventName, payload); err != nil {
		p.Logger.Errorw("failed to publish webhook event",
			"error", err,
			"event", eventName,
		)
	}
}

func (p ServiceParams) invalidatePlanCache(ctx context.Context, planID string) {
	if p.Cache == nil {
		return
	}
	key := planCacheKey(ctx, planID)
	p.planCacheGen.bump(key, func() {
		p.Cache.Delete(ctx, key)
	})
}

// storePlanCache caches resp unless the key was invalidated after gen was read
func (p ServiceParams) storePlanCache(ctx context.Context, key string, gen uint64, resp interface{}) bool {
	return p.planCacheGen.storeIf(key, gen, func() {
		p.Cache.Set(ctx, key, resp, 0)
	})
}

// cacheGenerations counts invalidations per cache key. A read takes the
// generation before loading and stores only while it is unchanged.
type cacheGenerations struct {
	mu  sync.Mutex
	gen map[string]uint64
}

func newCacheGenerations() *cacheGenerations {
	return &cacheGenerations{gen: make(map[string]uint64)}
}

func (g *cacheGenerations) current(key string) uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.gen[key]
}

func (g *cacheGenerations) bump(key string, drop func()) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.gen[key]++
	drop()
}

func (g *cacheGenerations) storeIf(key string, gen uint64, store func()) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.gen[key] != gen {
		return false
	}
	store()
	return true
}

func planCacheKey(ctx context.Context, planID string) string {
	return cache.GenerateKey(cache.PrefixPlan, types.GetTenantID(ctx), types.GetEnvironmentID(ctx), planID)
}
