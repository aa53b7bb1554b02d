package webhook

import (
	"github.com/flexprice/plancatalog/internal/config"
	"github.com/flexprice/plancatalog/internal/logger"
	pubsubRouter "github.com/flexprice/plancatalog/internal/pubsub/router"
	"github.com/flexprice/plancatalog/internal/webhook/handler"
	"github.com/flexprice/plancatalog/internal/webhook/publisher"
)

// WebhookService owns delivery of published webhook events
type WebhookService struct {
	config    *config.Configuration
	publisher publisher.WebhookPublisher
	handler   handler.Handler
	logger    *logger.Logger
}

// NewWebhookService creates a new webhook service
func NewWebhookService(
	cfg *config.Configuration,
	publisher publisher.WebhookPublisher,
	h handler.Handler,
	l *logger.Logger,
) *WebhookService {
	return &WebhookService{
		config:    cfg,
		publisher: publisher,
		handler:   h,
		logger:    l,
	}
}

// RegisterHandler attaches the delivery handler to the router. Nothing is
// consumed while webhooks are disabled.
func (s *WebhookService) RegisterHandler(router *pubsubRouter.Router) {
	if !s.config.Webhook.Enabled {
		s.logger.Info("webhook service disabled")
		return
	}
	s.handler.RegisterHandler(router)
}

// Stop closes the publisher and with it the underlying pubsub
func (s *WebhookService) Stop() error {
	if err := s.publisher.Close(); err != nil {
		s.logger.Errorw("failed to close webhook publisher", "error", err)
		return err
	}
	s.logger.Info("webhook service stopped")
	return nil
}
