package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/flexprice/plancatalog/internal/config"
	"github.com/flexprice/plancatalog/internal/httpclient"
	"github.com/flexprice/plancatalog/internal/logger"
	"github.com/flexprice/plancatalog/internal/pubsub/memory"
	"github.com/flexprice/plancatalog/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMessage(t *testing.T, event types.WebhookEvent) *message.Message {
	payload, err := json.Marshal(event)
	require.NoError(t, err)
	msg := message.NewMessage(event.ID, payload)
	msg.SetContext(context.Background())
	return msg
}

func newHandler(cfg *config.Configuration) *handler {
	log := logger.NewNopLogger()
	return NewHandler(memory.NewPubSub(cfg, log), cfg, httpclient.NewDefaultClient(), log).(*handler)
}

func TestProcessMessageDelivers(t *testing.T) {
	var received deliveryBody
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &received)
		auth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	cfg := config.GetDefaultConfig()
	cfg.Webhook.Tenants = map[string]config.TenantWebhookConfig{
		"tenant_1": {Endpoint: srv.URL, Enabled: true, Headers: map[string]string{"Authorization": "Bearer whsec"}},
	}

	err := newHandler(cfg).processMessage(newMessage(t, types.WebhookEvent{
		ID:        "evt_1",
		EventName: types.WebhookEventPlanCreated,
		TenantID:  "tenant_1",
		Timestamp: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
		Payload:   json.RawMessage(`{"plan_id":"plan_1"}`),
	}))
	require.NoError(t, err)

	assert.Equal(t, "evt_1", received.ID)
	assert.Equal(t, types.WebhookEventPlanCreated, received.EventName)
	assert.Equal(t, "2025-01-02T03:04:05.000Z", received.Timestamp)
	assert.JSONEq(t, `{"plan_id":"plan_1"}`, string(received.Data))
	assert.Equal(t, "Bearer whsec", auth)
}

func TestProcessMessageSkips(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	cfg := config.GetDefaultConfig()
	cfg.Webhook.Tenants = map[string]config.TenantWebhookConfig{
		"disabled": {Endpoint: srv.URL, Enabled: false},
		"excluding": {
			Endpoint:       srv.URL,
			Enabled:        true,
			ExcludedEvents: []string{types.WebhookEventPlanUpdated},
		},
	}
	h := newHandler(cfg)

	for _, tenantID := range []string{"unknown", "disabled", "excluding"} {
		err := h.processMessage(newMessage(t, types.WebhookEvent{
			ID:        "evt_" + tenantID,
			EventName: types.WebhookEventPlanUpdated,
			TenantID:  tenantID,
			Payload:   json.RawMessage(`{}`),
		}))
		assert.NoError(t, err, tenantID)
	}

	bad := message.NewMessage("evt_bad", []byte("not json"))
	bad.SetContext(context.Background())
	assert.NoError(t, h.processMessage(bad))

	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
}

func TestProcessMessageRetriesServerErrors(t *testing.T) {
	var status atomic.Int32
	status.Store(http.StatusBadGateway)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(int(status.Load()))
	}))
	defer srv.Close()

	cfg := config.GetDefaultConfig()
	cfg.Webhook.Tenants = map[string]config.TenantWebhookConfig{
		"tenant_1": {Endpoint: srv.URL, Enabled: true},
	}
	h := newHandler(cfg)
	event := types.WebhookEvent{ID: "evt_1", EventName: types.WebhookEventPlanCreated, TenantID: "tenant_1", Payload: json.RawMessage(`{}`)}

	assert.Error(t, h.processMessage(newMessage(t, event)))

	status.Store(http.StatusGone)
	assert.NoError(t, h.processMessage(newMessage(t, event)))
}
