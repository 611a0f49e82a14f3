package types

import (
	"context"

	ierr "github.com/mkrhub/controlhub/internal/errors"
)

// ContextKey is a type for the keys of values stored in the context
type ContextKey string

const (
	CtxRequestID     ContextKey = "ctx_request_id"
	CtxOwnerID       ContextKey = "ctx_owner_id"
	CtxEmail         ContextKey = "ctx_email"
	CtxJWT           ContextKey = "ctx_jwt"
	CtxDBTransaction ContextKey = "ctx_db_transaction"
)

func GetOwnerID(ctx context.Context) string {
	if ownerID, ok := ctx.Value(CtxOwnerID).(string); ok {
		return ownerID
	}
	return ""
}

func GetEmail(ctx context.Context) string {
	if email, ok := ctx.Value(CtxEmail).(string); ok {
		return email
	}
	return ""
}

func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(CtxRequestID).(string); ok {
		return requestID
	}
	return ""
}

func GetJWT(ctx context.Context) string {
	if jwt, ok := ctx.Value(CtxJWT).(string); ok {
		return jwt
	}
	return ""
}

// SetOwnerID sets the owner ID in the context
func SetOwnerID(ctx context.Context, ownerID string) context.Context {
	return context.WithValue(ctx, CtxOwnerID, ownerID)
}

// SetPrincipal stores the authenticated principal in the context
func SetPrincipal(ctx context.Context, ownerID, email string) context.Context {
	ctx = context.WithValue(ctx, CtxOwnerID, ownerID)
	return context.WithValue(ctx, CtxEmail, email)
}

// SetJWT keeps the raw access token of the request, needed to sign out
func SetJWT(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, CtxJWT, token)
}

// RequireOwnerID returns the owner of the current request. Every repository
// read and write goes through here so that no query runs without the owner
// filter.
func RequireOwnerID(ctx context.Context) (string, error) {
	if ctx == nil {
		return "", ierr.NewError("context is nil").
			WithHint("Please sign in to continue").
			Mark(ierr.ErrUnauthenticated)
	}

	ownerID := GetOwnerID(ctx)
	if ownerID == "" {
		return "", ierr.NewError("no owner in context").
			WithHint("Please sign in to continue").
			Mark(ierr.ErrUnauthenticated)
	}
	return ownerID, nil
}
