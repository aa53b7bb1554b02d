package postgres

import (
	"context"

	"github.com/flexprice/plancatalog/internal/config"
	"github.com/flexprice/plancatalog/internal/logger"
	sentryService "github.com/flexprice/plancatalog/internal/sentry"
	"go.uber.org/fx"
)

// IClient is the transaction boundary used by services. Repositories pick the
// transaction up from the context passed to fn.
type IClient interface {
	// WithTx wraps the given function in a transaction, joining the outer one
	// through a savepoint when ctx already carries a transaction
	WithTx(ctx context.Context, fn func(context.Context) error) error
}

var _ IClient = (*DB)(nil)

// Module provides the sqlx database and the transaction client
func Module() fx.Option {
	return fx.Options(
		fx.Provide(
			NewDB,
			NewClient,
		),
	)
}

// NewClient returns the transaction client, instrumented with sentry spans when enabled
func NewClient(db *DB, cfg *config.Configuration, sentry *sentryService.Service, logger *logger.Logger) IClient {
	if cfg.Sentry.Enabled {
		return NewSentryClient(db, sentry, logger)
	}
	return db
}
