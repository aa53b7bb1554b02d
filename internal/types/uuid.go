package types

import (
	"fmt"

	"github.com/oklog/ulid/v2"
)

// GenerateUUID returns a k-sortable unique identifier
func GenerateUUID() string {
	return ulid.Make().String()
}

// GenerateUUIDWithPrefix returns a k-sortable unique identifier
// with a prefix ex plan_01HZX3J5R8Q2W6A9KD4M7N1B0C
func GenerateUUIDWithPrefix(prefix string) string {
	if prefix == "" {
		return GenerateUUID()
	}
	return fmt.Sprintf("%s_%s", prefix, GenerateUUID())
}

const (
	// Prefixes for all domains and entities

	UUID_PREFIX_PLAN         = "plan"
	UUID_PREFIX_PLAN_VERSION = "pver"
	UUID_PREFIX_PLAN_TAG     = "tag"
	UUID_PREFIX_PRODUCT      = "prod"
	UUID_PREFIX_SUBSCRIPTION = "subs"
	UUID_PREFIX_CUSTOMER     = "cust"

	UUID_PREFIX_WEBHOOK_EVENT = "webhook"
)
