package testutil

import (
	"context"

	"github.com/mkrhub/controlhub/internal/types"
)

const (
	DefaultOwnerID = "00000000-0000-0000-0000-000000000001"
	DefaultEmail   = "owner@example.com"
	OtherOwnerID   = "00000000-0000-0000-0000-000000000002"
	OtherEmail     = "someone-else@example.com"
)

// SetupContext returns a request context signed in as the default owner
func SetupContext() context.Context {
	return ContextForOwner(DefaultOwnerID, DefaultEmail)
}

// ContextForOwner returns a request context signed in as ownerID
func ContextForOwner(ownerID, email string) context.Context {
	ctx := context.Background()
	ctx = types.SetPrincipal(ctx, ownerID, email)
	ctx = context.WithValue(ctx, types.CtxRequestID, types.GenerateUUID())
	return ctx
}
