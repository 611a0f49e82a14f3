package middleware

import (
	"strings"

	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"github.com/mkrhub/controlhub/internal/auth"
	"github.com/mkrhub/controlhub/internal/config"
	ierr "github.com/mkrhub/controlhub/internal/errors"
	"github.com/mkrhub/controlhub/internal/logger"
	"github.com/mkrhub/controlhub/internal/types"
)

// AuthenticateMiddleware resolves the principal of the request from either:
// 1. an access token in the Authorization header as a Bearer token
// 2. the session cookie set on login
// It stores the owner id and email in the request context. Requests without
// a valid principal are rejected before any handler touches data.
func AuthenticateMiddleware(cfg *config.Configuration, principals *auth.PrincipalResolver, logger *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := ExtractToken(c, cfg.Auth.CookieName)
		if token == "" {
			c.Error(ierr.NewError("missing access token").
				WithHint("Please sign in to continue").
				Mark(ierr.ErrUnauthenticated))
			c.Abort()
			return
		}

		claims, err := principals.Resolve(c.Request.Context(), token)
		if err != nil {
			logger.Debugw("rejected access token", "error", err)
			c.Error(err)
			c.Abort()
			return
		}

		if claims == nil || claims.OwnerID == "" {
			c.Error(ierr.NewError("token has no subject").
				WithHint("Please sign in to continue").
				Mark(ierr.ErrUnauthenticated))
			c.Abort()
			return
		}

		ctx := types.SetPrincipal(c.Request.Context(), claims.OwnerID, claims.Email)
		ctx = types.SetJWT(ctx, token)
		c.Request = c.Request.WithContext(ctx)

		if hub := sentrygin.GetHubFromContext(c); hub != nil {
			hub.Scope().SetUser(sentry.User{ID: claims.OwnerID, Email: claims.Email})
		}

		c.Next()
	}
}

// ExtractToken returns the bearer token of the request, falling back to the
// session cookie
func ExtractToken(c *gin.Context, cookieName string) string {
	if header := c.GetHeader(types.HeaderAuthorization); header != "" {
		if token, ok := strings.CutPrefix(header, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
		return ""
	}

	if cookieName == "" {
		return ""
	}
	token, err := c.Cookie(cookieName)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(token)
}
