package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mkrhub/controlhub/internal/api/dto"
	"github.com/mkrhub/controlhub/internal/config"
	ierr "github.com/mkrhub/controlhub/internal/errors"
	"github.com/mkrhub/controlhub/internal/logger"
	"github.com/mkrhub/controlhub/internal/rest/middleware"
	"github.com/mkrhub/controlhub/internal/service"
)

type AuthHandler struct {
	cfg         *config.Configuration
	authService service.AuthService
	logger      *logger.Logger
}

func NewAuthHandler(cfg *config.Configuration, authService service.AuthService, logger *logger.Logger) *AuthHandler {
	return &AuthHandler{
		cfg:         cfg,
		authService: authService,
		logger:      logger,
	}
}

// @Summary Login
// @Description Sign in with email and password. The access token is returned and also set as the session cookie.
// @Tags Auth
// @Accept json
// @Produce json
// @Param login body dto.LoginRequest true "Login request"
// @Success 200 {object} dto.LoginResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 401 {object} ierr.ErrorResponse
// @Failure 429 {object} ierr.ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}

	h.setSessionCookie(c, resp.AccessToken, resp.ExpiresIn)
	c.JSON(http.StatusOK, resp)
}

// @Summary Logout
// @Description Revoke the current session and clear the session cookie
// @Tags Auth
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} dto.SuccessResponse
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	token := middleware.ExtractToken(c, h.cfg.Auth.CookieName)

	if err := h.authService.Logout(c.Request.Context(), token); err != nil {
		c.Error(err)
		return
	}

	h.setSessionCookie(c, "", -1)
	c.JSON(http.StatusOK, dto.SuccessResponse{Message: "signed out"})
}

// @Summary Current principal
// @Description Get the owner id and email of the signed in user
// @Tags Auth
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} dto.MeResponse
// @Failure 401 {object} ierr.ErrorResponse
// @Router /me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	resp, err := h.authService.Me(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// setSessionCookie writes the session cookie, a negative maxAge deletes it
func (h *AuthHandler) setSessionCookie(c *gin.Context, token string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cfg.Auth.CookieName, token, maxAge, "/", "", h.cfg.Auth.CookieSecure, true)
}
