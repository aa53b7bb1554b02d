package postgres

import (
	"context"

	"github.com/flexprice/plancatalog/internal/logger"
	sentryService "github.com/flexprice/plancatalog/internal/sentry"
	"github.com/flexprice/plancatalog/internal/types"
)

// SentryClient wraps an IClient and records every transaction as a sentry span
type SentryClient struct {
	client IClient
	sentry *sentryService.Service
	logger *logger.Logger
}

func NewSentryClient(client IClient, sentry *sentryService.Service, logger *logger.Logger) IClient {
	return &SentryClient{
		client: client,
		sentry: sentry,
		logger: logger,
	}
}

func (c *SentryClient) WithTx(ctx context.Context, fn func(context.Context) error) error {
	span, spanCtx := c.sentry.StartDBSpan(ctx, "postgres.transaction", map[string]interface{}{
		"operation": "transaction",
		"tenant_id": types.GetTenantID(ctx),
	})
	if span != nil {
		defer span.Finish()
	}
	return c.client.WithTx(spanCtx, fn)
}
