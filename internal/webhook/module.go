package webhook

import (
	"github.com/flexprice/plancatalog/internal/config"
	"github.com/flexprice/plancatalog/internal/logger"
	"github.com/flexprice/plancatalog/internal/pubsub"
	"github.com/flexprice/plancatalog/internal/pubsub/memory"
	"github.com/flexprice/plancatalog/internal/webhook/handler"
	"github.com/flexprice/plancatalog/internal/webhook/publisher"
	"go.uber.org/fx"
)

// Module provides all webhook-related dependencies
var Module = fx.Options(
	fx.Provide(
		// PubSub for sending webhook events
		providePubSub,
	),

	fx.Provide(
		publisher.NewPublisher,
		handler.NewHandler,
		NewWebhookService,
	),
)

func providePubSub(cfg *config.Configuration, logger *logger.Logger) pubsub.PubSub {
	return memory.NewPubSub(cfg, logger)
}
