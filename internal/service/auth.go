package service

import (
	"context"

	"github.com/mkrhub/controlhub/internal/api/dto"
	"github.com/mkrhub/controlhub/internal/auth"
	"github.com/mkrhub/controlhub/internal/types"
)

// AuthService signs principals in and out
type AuthService interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error)
	Logout(ctx context.Context, token string) error
	Me(ctx context.Context) (*dto.MeResponse, error)
}

type authService struct {
	ServiceParams
}

func NewAuthService(params ServiceParams) AuthService {
	return &authService{
		ServiceParams: params,
	}
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	session, err := s.Principals.Provider().SignIn(ctx, auth.AuthRequest{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		s.Logger.WithContext(ctx).Infow("sign in failed", "email", req.Email)
		return nil, err
	}

	s.Logger.WithContext(ctx).Infow("signed in",
		"owner_id", session.OwnerID,
		"provider", s.Principals.Provider().GetProvider(),
	)

	return &dto.LoginResponse{
		AccessToken: session.AccessToken,
		TokenType:   session.TokenType,
		ExpiresIn:   session.ExpiresIn,
		OwnerID:     session.OwnerID,
		Email:       session.Email,
		RedirectTo:  req.RedirectTo(),
	}, nil
}

// Logout revokes token with the provider and forgets the cached principal.
// A provider failure is logged; the client session is cleared regardless.
func (s *authService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	defer s.Principals.Forget(ctx, token)

	if err := s.Principals.Provider().SignOut(ctx, token); err != nil {
		s.Logger.WithContext(ctx).Warnw("provider sign out failed", "error", err)
	}
	return nil
}

func (s *authService) Me(ctx context.Context) (*dto.MeResponse, error) {
	ownerID, err := types.RequireOwnerID(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.MeResponse{
		OwnerID: ownerID,
		Email:   types.GetEmail(ctx),
	}, nil
}
