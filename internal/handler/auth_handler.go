package handler

import (
	"fmt"
	"time"

	"hiraya/internal/dto"
	"hiraya/internal/logger"
	"hiraya/internal/middleware"
	"hiraya/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const oauthStateCookieName = "oauthstate"

// AuthHandler serves the OAuth login flows and the current-user endpoint.
type AuthHandler struct {
	authService service.AuthService
	frontendURL string
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService service.AuthService, frontendURL string) *AuthHandler {
	return &AuthHandler{authService: authService, frontendURL: frontendURL}
}

func (h *AuthHandler) errorRedirect(c *fiber.Ctx, provider string) error {
	return c.Redirect(fmt.Sprintf("%s/auth?error=%s_auth_failed", h.frontendURL, provider), fiber.StatusFound)
}

// setStateCookie binds the OAuth state to the initiating browser so a state
// minted elsewhere cannot complete the callback here.
func (h *AuthHandler) setStateCookie(c *fiber.Ctx, state string) {
	c.Cookie(&fiber.Cookie{
		Name:     oauthStateCookieName,
		Value:    state,
		Expires:  time.Now().Add(10 * time.Minute),
		HTTPOnly: true,
		Secure:   c.Secure(),
		SameSite: "Lax",
		Path:     "/",
	})
}

// popStateCookie reads the bound state and expires the cookie in one step.
func (h *AuthHandler) popStateCookie(c *fiber.Ctx) string {
	state := c.Cookies(oauthStateCookieName)
	c.Cookie(&fiber.Cookie{
		Name:     oauthStateCookieName,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		Secure:   c.Secure(),
		SameSite: "Lax",
		Path:     "/",
	})
	return state
}

// GitHubLogin begins the GitHub OAuth flow.
func (h *AuthHandler) GitHubLogin(c *fiber.Ctx) error {
	url, state, err := h.authService.BeginGitHubLogin(c.Context())
	if err != nil {
		logger.Get().Error("Failed to begin GitHub login", zap.Error(err))
		return h.errorRedirect(c, "github")
	}
	h.setStateCookie(c, state)
	return c.Redirect(url, fiber.StatusFound)
}

// GitHubCallback completes the GitHub OAuth flow and redirects the browser
// back to the frontend with the session token. Failures redirect with an
// error marker rather than surfacing a JSON error mid-flow.
func (h *AuthHandler) GitHubCallback(c *fiber.Ctx) error {
	expectedState := h.popStateCookie(c)
	token, err := h.authService.HandleGitHubCallback(c.Context(), c.Query("code"), c.Query("state"), expectedState)
	if err != nil {
		logger.Get().Error("GitHub callback failed", zap.Error(err))
		return h.errorRedirect(c, "github")
	}
	return c.Redirect(fmt.Sprintf("%s?token=%s", h.frontendURL, token), fiber.StatusFound)
}

// GoogleLogin begins the Google OAuth flow.
func (h *AuthHandler) GoogleLogin(c *fiber.Ctx) error {
	url, state, err := h.authService.BeginGoogleLogin(c.Context())
	if err != nil {
		logger.Get().Error("Failed to begin Google login", zap.Error(err))
		return h.errorRedirect(c, "google")
	}
	h.setStateCookie(c, state)
	return c.Redirect(url, fiber.StatusFound)
}

// GoogleCallback completes the Google OAuth flow.
func (h *AuthHandler) GoogleCallback(c *fiber.Ctx) error {
	expectedState := h.popStateCookie(c)
	token, err := h.authService.HandleGoogleCallback(c.Context(), c.Query("code"), c.Query("state"), expectedState)
	if err != nil {
		logger.Get().Error("Google callback failed", zap.Error(err))
		return h.errorRedirect(c, "google")
	}
	return c.Redirect(fmt.Sprintf("%s?token=%s", h.frontendURL, token), fiber.StatusFound)
}

// Me returns the authenticated user's profile.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	userID := middleware.UserID(c)

	user, err := h.authService.GetUserProfile(c.Context(), userID)
	if err != nil {
		return err
	}

	return c.JSON(dto.UserProfileResponse{
		ID:        user.ID,
		Username:  user.Username,
		Name:      user.Name,
		Email:     user.Email,
		AvatarURL: user.AvatarURL,
	})
}
