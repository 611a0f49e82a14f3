package auth

import (
	"context"

	"github.com/mkrhub/controlhub/internal/config"
	"github.com/mkrhub/controlhub/internal/domain/auth"
	"github.com/mkrhub/controlhub/internal/logger"
	"github.com/mkrhub/controlhub/internal/types"
)

type AuthRequest struct {
	Email    string
	Password string
}

// Provider is the authenticated-principal provider
type Provider interface {
	GetProvider() types.AuthProvider
	// SignIn exchanges email and password for a session
	SignIn(ctx context.Context, req AuthRequest) (*auth.Session, error)
	// SignOut revokes the session behind token
	SignOut(ctx context.Context, token string) error
	// ValidateToken resolves the principal of an access token
	ValidateToken(ctx context.Context, token string) (*auth.Claims, error)
}

func NewProvider(cfg *config.Configuration, logger *logger.Logger) Provider {
	switch cfg.Auth.Provider {
	case types.AuthProviderSupabase:
		return NewSupabaseAuth(cfg, logger)
	default:
		return NewJWTAuth(cfg)
	}
}
