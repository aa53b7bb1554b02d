package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/flexprice/plancatalog/internal/config"
)

// Principal is the owner of a validated API key
type Principal struct {
	TenantID string
	UserID   string
	KeyName  string
}

// HashAPIKey creates a SHA-256 hash of the API key
func HashAPIKey(key string) string {
	hasher := sha256.New()
	hasher.Write([]byte(strings.TrimSpace(key)))
	return hex.EncodeToString(hasher.Sum(nil))
}

// GenerateAPIKey returns a raw key, only its hash belongs in config
func GenerateAPIKey() (string, error) {
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return "", err
	}
	return "sk_" + hex.EncodeToString(key), nil
}

// ValidateAPIKey looks the key up in the configured key set.
// Inactive keys and keys without an owner are rejected.
func ValidateAPIKey(cfg *config.Configuration, key string) (*Principal, bool) {
	if cfg == nil || key == "" {
		return nil, false
	}
	details, exists := cfg.Auth.APIKey.Keys[HashAPIKey(key)]
	if !exists || !details.IsActive || details.TenantID == "" || details.UserID == "" {
		return nil, false
	}
	return &Principal{
		TenantID: details.TenantID,
		UserID:   details.UserID,
		KeyName:  details.Name,
	}, true
}
