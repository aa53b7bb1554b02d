package testutil

import (
	"context"

	"github.com/flexprice/plancatalog/internal/types"
)

const DefaultEnvironmentID = "env_sandbox"

func SetupContext() context.Context {
	ctx := context.Background()
	ctx = context.WithValue(ctx, types.CtxTenantID, types.DefaultTenantID)
	ctx = context.WithValue(ctx, types.CtxUserID, types.DefaultUserID)
	ctx = context.WithValue(ctx, types.CtxRequestID, types.GenerateUUID())
	ctx = context.WithValue(ctx, types.CtxEnvironmentID, DefaultEnvironmentID)
	return ctx
}
