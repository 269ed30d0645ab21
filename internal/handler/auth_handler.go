package handler

import (
	"net/http"
	"time"

	"github.com/Bronny721/nadu-website/internal/dto"
	"github.com/Bronny721/nadu-website/internal/middleware"
	"github.com/Bronny721/nadu-website/internal/service"
	"github.com/Bronny721/nadu-website/pkg/response"
	"github.com/gin-gonic/gin"
)

// AuthHandler handles authentication HTTP requests
type AuthHandler struct {
	authService   service.AuthService
	secureCookies bool
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService service.AuthService, secureCookies bool) *AuthHandler {
	return &AuthHandler{
		authService:   authService,
		secureCookies: secureCookies,
	}
}

// Register handles user registration
// POST /auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.authService.Register(c.Request.Context(), &req)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Created(c, gin.H{"user": dto.NewUserResponse(user)})
}

// Login handles user login and sets the session cookie
// POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		handleError(c, err)
		return
	}

	maxAge := int(time.Until(result.ExpiresAt).Seconds())
	h.setTokenCookie(c, result.Token, maxAge)
	response.Success(c, result)
}

// Logout clears the session cookie
// POST /auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	h.setTokenCookie(c, "", -1)
	response.Success(c, gin.H{"message": "Logged out successfully"})
}

// Me returns the authenticated user
// GET /auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		response.Unauthorized(c, "MISSING_TOKEN", "Authentication required")
		return
	}

	user, err := h.authService.GetUser(c.Request.Context(), identity.UserID)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, gin.H{"user": dto.NewUserResponse(user)})
}

// UpdateMe changes the authenticated user's name or phone
// PUT /auth/me
func (h *AuthHandler) UpdateMe(c *gin.Context) {
	identity, ok := middleware.GetIdentity(c)
	if !ok {
		response.Unauthorized(c, "MISSING_TOKEN", "Authentication required")
		return
	}

	var req dto.UpdateProfileRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.authService.UpdateProfile(c.Request.Context(), identity.UserID, &req)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, gin.H{"user": dto.NewUserResponse(user)})
}

func (h *AuthHandler) setTokenCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.TokenCookieName, value, maxAge, "/", "", h.secureCookies, true)
}
