package auth

import (
	"context"
	"time"

	"github.com/mkrhub/controlhub/internal/config"
	"github.com/mkrhub/controlhub/internal/domain/auth"
	ierr "github.com/mkrhub/controlhub/internal/errors"
	"github.com/mkrhub/controlhub/internal/logger"
	"github.com/mkrhub/controlhub/internal/types"
	"github.com/nedpals/supabase-go"
)

type supabaseAuth struct {
	AuthConfig config.AuthConfig
	client     *supabase.Client
	logger     *logger.Logger
}

func NewSupabaseAuth(cfg *config.Configuration, logger *logger.Logger) Provider {
	client := supabase.CreateClient(cfg.Auth.Supabase.BaseURL, cfg.Auth.Supabase.ServiceKey)
	if client == nil {
		logger.Fatalf("failed to create Supabase client")
	}

	return &supabaseAuth{
		AuthConfig: cfg.Auth,
		client:     client,
		logger:     logger,
	}
}

func (s *supabaseAuth) GetProvider() types.AuthProvider {
	return types.AuthProviderSupabase
}

func (s *supabaseAuth) SignIn(ctx context.Context, req AuthRequest) (*auth.Session, error) {
	details, err := s.client.Auth.SignIn(ctx, supabase.UserCredentials{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		s.logger.Debugw("supabase sign in failed", "error", err)
		return nil, ierr.WithError(err).
			WithHint("Invalid email or password").
			Mark(ierr.ErrUnauthenticated)
	}

	return &auth.Session{
		AccessToken:  details.AccessToken,
		RefreshToken: details.RefreshToken,
		TokenType:    details.TokenType,
		ExpiresIn:    details.ExpiresIn,
		OwnerID:      details.User.ID,
		Email:        details.User.Email,
	}, nil
}

func (s *supabaseAuth) SignOut(ctx context.Context, token string) error {
	if err := s.client.Auth.SignOut(ctx, token); err != nil {
		return ierr.WithError(err).
			WithHint("Failed to sign out").
			Mark(ierr.ErrSystem)
	}
	return nil
}

// ValidateToken verifies HS256 tokens locally with the project JWT secret.
// Tokens signed with any other algorithm are checked with Supabase itself.
func (s *supabaseAuth) ValidateToken(ctx context.Context, token string) (*auth.Claims, error) {
	claims, err := parseHMACToken(s.AuthConfig.Secret, token)
	if err == nil {
		return claims, nil
	}
	if !ierr.Is(err, errUnsupportedAlg) {
		return nil, err
	}

	user, err := s.client.Auth.User(ctx, token)
	if err != nil || user == nil || user.ID == "" {
		return nil, ierr.NewError("supabase rejected token").
			WithHint("Invalid session, please sign in again").
			Mark(ierr.ErrUnauthenticated)
	}

	return &auth.Claims{
		OwnerID:   user.ID,
		Email:     user.Email,
		ExpiresAt: time.Now().Add(s.AuthConfig.TokenCacheTTL).UTC(),
	}, nil
}
