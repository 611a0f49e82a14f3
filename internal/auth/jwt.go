package auth

import (
	"context"

	"github.com/mkrhub/controlhub/internal/config"
	"github.com/mkrhub/controlhub/internal/domain/auth"
	ierr "github.com/mkrhub/controlhub/internal/errors"
	"github.com/mkrhub/controlhub/internal/types"
)

// jwtAuth only validates tokens issued elsewhere with the shared secret. It
// has no user store so it cannot sign anyone in.
type jwtAuth struct {
	AuthConfig config.AuthConfig
}

func NewJWTAuth(cfg *config.Configuration) Provider {
	return &jwtAuth{
		AuthConfig: cfg.Auth,
	}
}

func (j *jwtAuth) GetProvider() types.AuthProvider {
	return types.AuthProviderJWT
}

func (j *jwtAuth) SignIn(ctx context.Context, req AuthRequest) (*auth.Session, error) {
	return nil, ierr.NewError("sign in is not supported by the jwt provider").
		WithHint("Password sign in is not available, use a token issued by your identity provider").
		Mark(ierr.ErrInvalidOperation)
}

// SignOut is a no-op: stateless tokens expire on their own
func (j *jwtAuth) SignOut(ctx context.Context, token string) error {
	return nil
}

func (j *jwtAuth) ValidateToken(ctx context.Context, token string) (*auth.Claims, error) {
	return parseHMACToken(j.AuthConfig.Secret, token)
}
