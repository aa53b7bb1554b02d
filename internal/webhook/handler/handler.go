package handler

import (
	"encoding/json"
	"net/http"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/flexprice/plancatalog/internal/config"
	"github.com/flexprice/plancatalog/internal/httpclient"
	"github.com/flexprice/plancatalog/internal/logger"
	"github.com/flexprice/plancatalog/internal/pubsub"
	pubsubRouter "github.com/flexprice/plancatalog/internal/pubsub/router"
	"github.com/flexprice/plancatalog/internal/types"
	"github.com/samber/lo"
)

// Handler interface for processing webhook events
type Handler interface {
	RegisterHandler(router *pubsubRouter.Router)
}

// handler delivers webhook events to the endpoint configured for their tenant
type handler struct {
	pubSub pubsub.PubSub
	config *config.Webhook
	client httpclient.Client
	logger *logger.Logger
}

// NewHandler creates a webhook delivery handler
func NewHandler(
	pubSub pubsub.PubSub,
	cfg *config.Configuration,
	client httpclient.Client,
	logger *logger.Logger,
) Handler {
	return &handler{
		pubSub: pubSub,
		config: &cfg.Webhook,
		client: client,
		logger: logger,
	}
}

func (h *handler) RegisterHandler(router *pubsubRouter.Router) {
	router.AddNoPublishHandler(
		"webhook_handler",
		h.config.Topic,
		h.pubSub,
		h.processMessage,
	)
}

// deliveryBody is what the tenant endpoint receives
type deliveryBody struct {
	ID        string          `json:"id"`
	EventName string          `json:"event_name"`
	Timestamp string          `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// processMessage returns an error only for failures worth retrying
func (h *handler) processMessage(msg *message.Message) error {
	ctx := msg.Context()

	var event types.WebhookEvent
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		h.logger.Errorw("failed to unmarshal webhook event",
			"error", err,
			"message_uuid", msg.UUID,
		)
		return nil
	}

	ctx = types.SetTenantID(ctx, event.TenantID)
	ctx = types.SetEnvironmentID(ctx, event.EnvironmentID)
	ctx = types.SetUserID(ctx, event.UserID)

	log := h.logger.With(
		"message_uuid", msg.UUID,
		"tenant_id", event.TenantID,
		"event", event.EventName,
	)

	tenantCfg, ok := h.config.Tenants[event.TenantID]
	if !ok || !tenantCfg.Enabled || tenantCfg.Endpoint == "" {
		log.Debug("no webhook endpoint for tenant")
		return nil
	}

	if lo.Contains(tenantCfg.ExcludedEvents, event.EventName) {
		log.Debug("event excluded for tenant")
		return nil
	}

	body, err := json.Marshal(deliveryBody{
		ID:        event.ID,
		EventName: event.EventName,
		Timestamp: event.Timestamp.UTC().Format("2006-01-02T15:04:05.000Z"),
		Data:      event.Payload,
	})
	if err != nil {
		log.Errorw("failed to encode webhook body", "error", err)
		return nil
	}

	resp, err := h.client.Send(ctx, &httpclient.Request{
		Method:  http.MethodPost,
		URL:     tenantCfg.Endpoint,
		Headers: tenantCfg.Headers,
		Body:    body,
	})
	if err != nil {
		// 4xx answers will not improve on retry
		if httpErr, ok := httpclient.IsHTTPError(err); ok && httpErr.StatusCode < http.StatusInternalServerError {
			log.Warnw("webhook rejected by endpoint", "status_code", httpErr.StatusCode)
			return nil
		}
		log.Errorw("failed to send webhook", "error", err)
		return err
	}

	log.Infow("webhook sent successfully", "status_code", resp.StatusCode)
	return nil
}
