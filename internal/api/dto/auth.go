package dto

import (
	"strings"

	"github.com/mkrhub/controlhub/internal/validator"
)

// LoginRequest represents the sign in form
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	// Next is where the client wants to go after signing in
	Next string `json:"next,omitempty"`
}

func (r *LoginRequest) Validate() error {
	r.Email = strings.TrimSpace(r.Email)
	return validator.ValidateRequest(r)
}

// RedirectTo returns Next when it is a path on this site and "/" otherwise
func (r *LoginRequest) RedirectTo() string {
	return SafeRedirect(r.Next)
}

// SafeRedirect only allows site relative paths. Protocol relative URLs such
// as //evil.example are rejected.
func SafeRedirect(next string) string {
	next = strings.TrimSpace(next)
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	return next
}

// LoginResponse represents a successful sign in
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
	OwnerID     string `json:"owner_id"`
	Email       string `json:"email"`
	RedirectTo  string `json:"redirect_to"`
}

// MeResponse is the signed in principal
type MeResponse struct {
	OwnerID string `json:"owner_id"`
	Email   string `json:"email"`
}
