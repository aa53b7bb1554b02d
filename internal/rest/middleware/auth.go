package middleware

import (
	"net/http"

	"github.com/flexprice/plancatalog/internal/auth"
	"github.com/flexprice/plancatalog/internal/config"
	"github.com/flexprice/plancatalog/internal/logger"
	"github.com/flexprice/plancatalog/internal/types"
	"github.com/gin-gonic/gin"
)

// GuestAuthenticateMiddleware is a middleware that allows requests without authentication
// It sets the default tenant ID and user ID in the request context
func GuestAuthenticateMiddleware(c *gin.Context) {
	ctx := c.Request.Context()
	ctx = types.SetTenantID(ctx, types.DefaultTenantID)
	ctx = types.SetUserID(ctx, types.DefaultUserID)
	ctx = types.SetEnvironmentID(ctx, c.GetHeader(types.HeaderEnvironment))
	c.Request = c.Request.WithContext(ctx)
	c.Next()
}

// AuthenticateMiddleware authenticates requests with the API key found in the
// configured header and scopes the request context to the key's tenant.
// With auth disabled every request runs as the guest tenant.
func AuthenticateMiddleware(cfg *config.Configuration, logger *logger.Logger) gin.HandlerFunc {
	if !cfg.Auth.Enabled {
		return GuestAuthenticateMiddleware
	}

	return func(c *gin.Context) {
		apiKey := c.GetHeader(cfg.Auth.APIKey.Header)
		if apiKey == "" {
			c.JSON(http.StatusUnauthorized, ErrorResponse{
				Success: false,
				Error:   ErrorDetail{Display: "Unauthorized"},
			})
			c.Abort()
			return
		}

		principal, valid := auth.ValidateAPIKey(cfg, apiKey)
		if !valid {
			logger.Debugw("invalid api key", "path", c.Request.URL.Path)
			c.JSON(http.StatusUnauthorized, ErrorResponse{
				Success: false,
				Error:   ErrorDetail{Display: "Invalid API key"},
			})
			c.Abort()
			return
		}

		ctx := c.Request.Context()
		ctx = types.SetTenantID(ctx, principal.TenantID)
		ctx = types.SetUserID(ctx, principal.UserID)
		ctx = types.SetEnvironmentID(ctx, c.GetHeader(types.HeaderEnvironment))
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
