package auth

import (
	"strings"
	"testing"

	"github.com/flexprice/plancatalog/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateAPIKey(t *testing.T) {
	raw, err := GenerateAPIKey()
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(raw, "sk_"))

	cfg := config.GetDefaultConfig()
	cfg.Auth.APIKey.Keys = map[string]config.APIKeyDetails{
		HashAPIKey(raw):       {TenantID: "tenant_1", UserID: "user_1", Name: "ci", IsActive: true},
		HashAPIKey("revoked"): {TenantID: "tenant_1", UserID: "user_2", IsActive: false},
	}

	tests := []struct {
		name   string
		key    string
		wantOK bool
	}{
		{name: "active key", key: raw, wantOK: true},
		{name: "surrounding whitespace", key: " " + raw + " ", wantOK: true},
		{name: "revoked key", key: "revoked", wantOK: false},
		{name: "unknown key", key: "nope", wantOK: false},
		{name: "empty key", key: "", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, ok := ValidateAPIKey(cfg, tt.key)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, "tenant_1", p.TenantID)
				assert.Equal(t, "user_1", p.UserID)
				assert.Equal(t, "ci", p.KeyName)
			}
		})
	}
}
