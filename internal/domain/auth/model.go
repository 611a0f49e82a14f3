package auth

import (
	"time"
)

// Claims is the authenticated principal extracted from an access token.
// OwnerID scopes every invoice and payment the principal can see.
type Claims struct {
	OwnerID   string    `json:"owner_id"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expires_at"`
}

// IsExpired reports whether the token behind the claims has expired
func (c *Claims) IsExpired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && !now.Before(c.ExpiresAt)
}

// Session is the result of a successful sign in
type Session struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	OwnerID      string `json:"owner_id"`
	Email        string `json:"email"`
}
