package testutil

import (
	"context"
	"time"

	"github.com/flexprice/plancatalog/internal/cache"
	"github.com/flexprice/plancatalog/internal/config"
	"github.com/flexprice/plancatalog/internal/domain/product"
	"github.com/flexprice/plancatalog/internal/logger"
	"github.com/flexprice/plancatalog/internal/metrics"
	"github.com/flexprice/plancatalog/internal/postgres"
	"github.com/flexprice/plancatalog/internal/types"
	"github.com/flexprice/plancatalog/internal/validator"
	webhookPublisher "github.com/flexprice/plancatalog/internal/webhook/publisher"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"
)

// Stores holds all the repository interfaces for testing
type Stores struct {
	PlanRepo        *InMemoryPlanStore
	PlanTagRepo     *InMemoryPlanTagStore
	PlanVersionRepo *InMemoryPlanVersionStore
	ProductRepo     *InMemoryProductStore
	SubRepo         *InMemorySubscriptionStore
}

// BaseServiceTestSuite provides common functionality for all service test suites
type BaseServiceTestSuite struct {
	suite.Suite
	ctx              context.Context
	stores           Stores
	pubSub           *InMemoryPubSub
	webhookPublisher webhookPublisher.WebhookPublisher
	db               postgres.IClient
	cache            cache.Cache
	registry         *prometheus.Registry
	metrics          *metrics.Metrics
	logger           *logger.Logger
	config           *config.Configuration
	now              time.Time
}

// SetupSuite is called once before running the tests in the suite
func (s *BaseServiceTestSuite) SetupSuite() {
	validator.NewValidator()

	cfg := config.GetDefaultConfig()
	cfg.Logging.Level = types.LogLevelInfo
	s.config = cfg
	s.logger = logger.NewNopLogger()
}

// SetupTest is called before each test
func (s *BaseServiceTestSuite) SetupTest() {
	s.ctx = SetupContext()
	s.now = time.Now().UTC()
	s.setupStores()
}

// TearDownTest is called after each test
func (s *BaseServiceTestSuite) TearDownTest() {
	s.clearStores()
}

func (s *BaseServiceTestSuite) setupStores() {
	s.stores = Stores{
		PlanRepo:        NewInMemoryPlanStore(),
		PlanTagRepo:     NewInMemoryPlanTagStore(),
		PlanVersionRepo: NewInMemoryPlanVersionStore(),
		ProductRepo:     NewInMemoryProductStore(),
		SubRepo:         NewInMemorySubscriptionStore(),
	}

	s.db = NewMockPostgresClient(s.logger)
	s.cache = cache.NewInMemoryCache(s.config, s.logger)
	s.registry = prometheus.NewRegistry()
	s.metrics = metrics.NewMetrics(s.registry)
	s.pubSub = NewInMemoryPubSub()
	s.webhookPublisher = webhookPublisher.NewPublisher(s.pubSub, s.config, s.logger)
}

func (s *BaseServiceTestSuite) clearStores() {
	s.stores.PlanRepo.Clear()
	s.stores.PlanTagRepo.Clear()
	s.stores.PlanVersionRepo.Clear()
	s.stores.ProductRepo.Clear()
	s.stores.SubRepo.Clear()
	s.pubSub.ClearMessages()
	s.cache.Flush(s.ctx)
}

// CreateTestProduct stores a product in the test environment
func (s *BaseServiceTestSuite) CreateTestProduct(name string) *product.Product {
	p := &product.Product{
		ID:            types.GenerateUUIDWithPrefix(types.UUID_PREFIX_PRODUCT),
		Name:          name,
		EnvironmentID: types.GetEnvironmentID(s.ctx),
		BaseModel:     types.GetDefaultBaseModel(s.ctx),
	}
	s.Require().NoError(s.stores.ProductRepo.Create(s.ctx, p))
	return p
}

// GetContext returns the test context
func (s *BaseServiceTestSuite) GetContext() context.Context {
	return s.ctx
}

// GetConfig returns the test configuration
func (s *BaseServiceTestSuite) GetConfig() *config.Configuration {
	return s.config
}

// GetStores returns all test repositories
func (s *BaseServiceTestSuite) GetStores() Stores {
	return s.stores
}

// GetPubSub returns the pubsub the webhook publisher writes to
func (s *BaseServiceTestSuite) GetPubSub() *InMemoryPubSub {
	return s.pubSub
}

// GetWebhookPublisher returns the test webhook publisher
func (s *BaseServiceTestSuite) GetWebhookPublisher() webhookPublisher.WebhookPublisher {
	return s.webhookPublisher
}

// GetDB returns the test database client
func (s *BaseServiceTestSuite) GetDB() postgres.IClient {
	return s.db
}

func (s *BaseServiceTestSuite) GetCache() cache.Cache {
	return s.cache
}

func (s *BaseServiceTestSuite) GetMetrics() *metrics.Metrics {
	return s.metrics
}

// GetRegistry returns the registry the test metrics are registered on
func (s *BaseServiceTestSuite) GetRegistry() *prometheus.Registry {
	return s.registry
}

// GetLogger returns the test logger
func (s *BaseServiceTestSuite) GetLogger() *logger.Logger {
	return s.logger
}

// GetNow returns the time captured when the test started
func (s *BaseServiceTestSuite) GetNow() time.Time {
	return s.now
}
