package webhook

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/flexprice/plancatalog/internal/config"
	"github.com/flexprice/plancatalog/internal/httpclient"
	"github.com/flexprice/plancatalog/internal/logger"
	pubsubRouter "github.com/flexprice/plancatalog/internal/pubsub/router"
	"github.com/flexprice/plancatalog/internal/types"
	"github.com/flexprice/plancatalog/internal/webhook/handler"
	"github.com/flexprice/plancatalog/internal/webhook/publisher"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishedEventsReachTenantEndpoint(t *testing.T) {
	delivered := make(chan map[string]any, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var decoded map[string]any
		_ = json.Unmarshal(body, &decoded)
		delivered <- decoded
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	cfg := config.GetDefaultConfig()
	cfg.Webhook.Tenants = map[string]config.TenantWebhookConfig{
		"tenant_1": {Endpoint: srv.URL, Enabled: true},
	}
	log := logger.NewNopLogger()

	ps := providePubSub(cfg, log)
	pub := publisher.NewPublisher(ps, cfg, log)
	svc := NewWebhookService(cfg, pub, handler.NewHandler(ps, cfg, httpclient.NewDefaultClient(), log), log)

	router, err := pubsubRouter.NewRouter(cfg, log, nil)
	require.NoError(t, err)
	svc.RegisterHandler(router)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	go func() { _ = router.Run(ctx) }()

	select {
	case <-router.Running():
	case <-ctx.Done():
		t.Fatal("router did not start")
	}

	eventCtx := types.SetTenantID(context.Background(), "tenant_1")
	require.NoError(t, pub.PublishEvent(eventCtx, types.WebhookEventPlanArchived, types.PlanWebhookPayload{
		PlanID: "plan_1",
		Status: types.PlanStatusArchived,
	}))

	select {
	case body := <-delivered:
		assert.Equal(t, types.WebhookEventPlanArchived, body["event_name"])
		data, ok := body["data"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "plan_1", data["plan_id"])
	case <-ctx.Done():
		t.Fatal("webhook was not delivered")
	}

	require.NoError(t, router.Close())
	require.NoError(t, svc.Stop())
}
