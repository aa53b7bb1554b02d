package types

import (
	"encoding/json"
	"time"
)

// WebhookEvent represents a webhook event to be delivered
type WebhookEvent struct {
	ID            string          `json:"id"`
	EventName     string          `json:"event_name"`
	TenantID      string          `json:"tenant_id"`
	EnvironmentID string          `json:"environment_id"`
	UserID        string          `json:"user_id"`
	Timestamp     time.Time       `json:"timestamp"`
	Payload       json.RawMessage `json:"payload"`
}

// plan event names
const (
	WebhookEventPlanCreated  = "plan.created"
	WebhookEventPlanUpdated  = "plan.updated"
	WebhookEventPlanArchived = "plan.archived"
)

// plan version event names
const (
	WebhookEventPlanVersionCreated = "plan_version.created"
	WebhookEventPlanVersionUpdated = "plan_version.updated"
)

// PlanWebhookPayload is the payload of plan.* events
type PlanWebhookPayload struct {
	PlanID           string     `json:"plan_id"`
	Status           PlanStatus `json:"status"`
	DisplayVersionID *string    `json:"display_version_id,omitempty"`
}

// PlanVersionWebhookPayload is the payload of plan_version.* events
type PlanVersionWebhookPayload struct {
	PlanID        string            `json:"plan_id"`
	PlanVersionID string            `json:"plan_version_id"`
	Version       int               `json:"version"`
	Status        PlanVersionStatus `json:"status"`
	// ActivationPolicy is set on plan_version.created
	ActivationPolicy string `json:"activation_policy,omitempty"`
}
