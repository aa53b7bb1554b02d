package testutil

import (
	"context"
	"sync"

	"github.com/flexprice/plancatalog/internal/logger"
	"github.com/flexprice/plancatalog/internal/postgres"
	"github.com/flexprice/plancatalog/internal/types"
)

var _ postgres.IClient = (*MockPostgresClient)(nil) // Ensure MockPostgresClient implements IClient

type txMarker struct{}

// MockPostgresClient runs transactions one at a time so that the in-memory
// stores observe the same serialization a row lock gives in postgres.
// Nothing is rolled back on error.
type MockPostgresClient struct {
	mu     sync.Mutex
	logger *logger.Logger
}

// NewMockPostgresClient creates a new mock postgres client
func NewMockPostgresClient(logger *logger.Logger) *MockPostgresClient {
	return &MockPostgresClient{
		logger: logger,
	}
}

// WithTx executes the given function within a transaction
func (c *MockPostgresClient) WithTx(ctx context.Context, fn func(context.Context) error) error {
	// If we're already in a transaction, reuse it
	if c.inTx(ctx) {
		return fn(ctx)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	return fn(context.WithValue(ctx, types.CtxDBTransaction, txMarker{}))
}

func (c *MockPostgresClient) inTx(ctx context.Context) bool {
	_, ok := ctx.Value(types.CtxDBTransaction).(txMarker)
	return ok
}
