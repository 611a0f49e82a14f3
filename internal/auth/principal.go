package auth

import (
	"context"
	"time"

	"github.com/mkrhub/controlhub/internal/cache"
	"github.com/mkrhub/controlhub/internal/config"
	"github.com/mkrhub/controlhub/internal/domain/auth"
	ierr "github.com/mkrhub/controlhub/internal/errors"
	"github.com/mkrhub/controlhub/internal/logger"
)

// PrincipalResolver turns access tokens into principals, remembering recent
// answers so that a page full of requests validates its token once.
type PrincipalResolver struct {
	provider Provider
	cache    cache.Cache
	ttl      time.Duration
	logger   *logger.Logger
	now      func() time.Time
}

func NewPrincipalResolver(provider Provider, c cache.Cache, cfg *config.Configuration, logger *logger.Logger) *PrincipalResolver {
	return &PrincipalResolver{
		provider: provider,
		cache:    c,
		ttl:      cfg.Auth.TokenCacheTTL,
		logger:   logger,
		now:      time.Now,
	}
}

// Provider exposes the underlying provider for sign in and sign out
func (r *PrincipalResolver) Provider() Provider {
	return r.provider
}

// Resolve validates token and returns its principal
func (r *PrincipalResolver) Resolve(ctx context.Context, token string) (*auth.Claims, error) {
	if token == "" {
		return nil, ierr.NewError("missing access token").
			WithHint("Please sign in to continue").
			Mark(ierr.ErrUnauthenticated)
	}

	key := cache.GenerateKey(cache.PrefixPrincipal, HashToken(token))
	if v, ok := r.cache.Get(ctx, key); ok {
		if claims, ok := v.(*auth.Claims); ok && !claims.IsExpired(r.now()) {
			return claims, nil
		}
		r.cache.Delete(ctx, key)
	}

	claims, err := r.provider.ValidateToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if claims.IsExpired(r.now()) {
		return nil, ierr.NewError("access token expired").
			WithHint("Your session has expired, please sign in again").
			Mark(ierr.ErrUnauthenticated)
	}

	if ttl := r.cacheTTL(claims); ttl > 0 {
		r.cache.Set(ctx, key, claims, ttl)
	}
	return claims, nil
}

// Forget drops a cached principal, used on sign out
func (r *PrincipalResolver) Forget(ctx context.Context, token string) {
	if token == "" {
		return
	}
	r.cache.Delete(ctx, cache.GenerateKey(cache.PrefixPrincipal, HashToken(token)))
}

// cacheTTL never lets a cached principal outlive its token
func (r *PrincipalResolver) cacheTTL(claims *auth.Claims) time.Duration {
	ttl := r.ttl
	if !claims.ExpiresAt.IsZero() {
		if left := claims.ExpiresAt.Sub(r.now()); left < ttl {
			ttl = left
		}
	}
	return ttl
}
