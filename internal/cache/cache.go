package cache

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Cache is a process local key value store. Values must be treated as
// immutable once stored; callers get back the same pointer they put in.
type Cache interface {
	Get(ctx context.Context, key string) (interface{}, bool)
	// Set stores value for expiration, 0 meaning the cache default
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration)
	Delete(ctx context.Context, key string)
	// DeleteByPrefix drops every key under prefix, e.g. all principals
	DeleteByPrefix(ctx context.Context, prefix string)
	Flush(ctx context.Context)
}

const (
	// PrefixPrincipal caches the principal resolved from a hashed access token
	PrefixPrincipal = "principal:v1:"
)

// GenerateKey joins prefix and params with colons
func GenerateKey(prefix string, params ...interface{}) string {
	parts := make([]string, 0, len(params)+1)
	parts = append(parts, prefix)
	for _, param := range params {
		parts = append(parts, fmt.Sprint(param))
	}
	return strings.Join(parts, ":")
}
