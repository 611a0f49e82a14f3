package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/mkrhub/controlhub/internal/domain/auth"
	ierr "github.com/mkrhub/controlhub/internal/errors"
)

// HashToken returns the SHA-256 of a token. Tokens are never used as cache
// keys or logged in the clear.
func HashToken(token string) string {
	hasher := sha256.New()
	hasher.Write([]byte(token))
	return hex.EncodeToString(hasher.Sum(nil))
}

// errUnsupportedAlg signals a token that is not HMAC signed
var errUnsupportedAlg = ierr.NewError("unexpected signing method").
	WithHint("Invalid session, please sign in again").
	Mark(ierr.ErrUnauthenticated)

// parseHMACToken validates an HS256 token signed with secret and extracts the
// principal from its sub and email claims
func parseHMACToken(secret, token string) (*auth.Claims, error) {
	parsedToken, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errUnsupportedAlg
		}
		return []byte(secret), nil
	})
	if err != nil {
		if ierr.IsUnauthenticated(err) {
			return nil, err
		}
		return nil, ierr.WithError(err).
			WithHint("Invalid session, please sign in again").
			Mark(ierr.ErrUnauthenticated)
	}

	claims, ok := parsedToken.Claims.(jwt.MapClaims)
	if !ok || !parsedToken.Valid {
		return nil, ierr.NewError("invalid token claims").
			WithHint("Invalid session, please sign in again").
			Mark(ierr.ErrUnauthenticated)
	}

	ownerID, _ := claims["sub"].(string)
	if ownerID == "" {
		return nil, ierr.NewError("token missing subject").
			WithHint("Invalid session, please sign in again").
			Mark(ierr.ErrUnauthenticated)
	}
	email, _ := claims["email"].(string)

	var expiresAt time.Time
	if exp, ok := claims["exp"].(float64); ok {
		expiresAt = time.Unix(int64(exp), 0).UTC()
	}

	return &auth.Claims{
		OwnerID:   ownerID,
		Email:     email,
		ExpiresAt: expiresAt,
	}, nil
}

// GenerateToken signs an HS256 access token for ownerID
func GenerateToken(secret, ownerID, email string, ttl time.Duration) (string, time.Time, error) {
	expiresAt := time.Now().Add(ttl).UTC()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   ownerID,
		"email": email,
		"exp":   expiresAt.Unix(),
		"iat":   time.Now().Unix(),
		"role":  "authenticated",
	})
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", time.Time{}, ierr.WithError(err).
			WithHint("Failed to generate token").
			Mark(ierr.ErrSystem)
	}
	return signed, expiresAt, nil
}
