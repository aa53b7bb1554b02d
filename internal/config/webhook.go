package config

import "time"

// Webhook represents the configuration for the webhook system
type Webhook struct {
	Enabled bool   `mapstructure:"enabled"`
	Topic   string `mapstructure:"topic" default:"webhooks"`
	// ExcludedEvents are dropped before they reach the pubsub
	ExcludedEvents []string `mapstructure:"excluded_events"`

	MaxRetries      int           `mapstructure:"max_retries" default:"3"`
	InitialInterval time.Duration `mapstructure:"initial_interval" default:"1s"`
	MaxInterval     time.Duration `mapstructure:"max_interval" default:"10s"`
	Multiplier      float64       `mapstructure:"multiplier" default:"2.0"`
	MaxElapsedTime  time.Duration `mapstructure:"max_elapsed_time" default:"2m"`

	// Tenants maps a tenant id to the endpoint its events are delivered to
	Tenants map[string]TenantWebhookConfig `mapstructure:"tenants"`
}

// TenantWebhookConfig represents webhook configuration for a specific tenant
type TenantWebhookConfig struct {
	Endpoint       string            `mapstructure:"endpoint"`
	Headers        map[string]string `mapstructure:"headers"`
	Enabled        bool              `mapstructure:"enabled"`
	ExcludedEvents []string          `mapstructure:"excluded_events"`
}
