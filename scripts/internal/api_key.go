package internal

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/flexprice/plancatalog/internal/auth"
	"github.com/flexprice/plancatalog/internal/config"
	"github.com/flexprice/plancatalog/internal/types"
)

// GenerateNewAPIKey generates a new API key and prints both the raw key and its configuration
func GenerateNewAPIKey() error {
	rawKey, err := auth.GenerateAPIKey()
	if err != nil {
		return err
	}
	hashedKey := auth.HashAPIKey(rawKey)

	details := config.APIKeyDetails{
		TenantID: envOr("TENANT_ID", types.DefaultTenantID),
		UserID:   envOr("USER_ID", types.DefaultUserID),
		Name:     "Dev API Keys",
		IsActive: true,
	}

	jsonBytes, err := json.Marshal(map[string]config.APIKeyDetails{hashedKey: details})
	if err != nil {
		return err
	}

	fmt.Printf("\nNew API Key Generated:\n")
	fmt.Printf("Raw Key (give this to your customer): %s\n", rawKey)
	fmt.Printf("\nConfiguration:\n")
	fmt.Printf("Add this to your config.yaml under auth.api_key.keys:\n")
	fmt.Printf("%s:\n", hashedKey)
	fmt.Printf("  tenant_id: %s\n", details.TenantID)
	fmt.Printf("  user_id: %s\n", details.UserID)
	fmt.Printf("  name: %s\n", details.Name)
	fmt.Printf("  is_active: %v\n", details.IsActive)
	fmt.Printf("\nOr set this environment variable:\n")
	fmt.Printf("PLANCATALOG_AUTH_API_KEY_KEYS='%s'\n", string(jsonBytes))
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
