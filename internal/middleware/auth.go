package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/Bronny721/nadu-website/internal/domain"
	"github.com/Bronny721/nadu-website/internal/service"
	"github.com/Bronny721/nadu-website/pkg/response"
	"github.com/gin-gonic/gin"
)

const (
	// TokenCookieName is the cookie carrying the session token for browser clients
	TokenCookieName = "token"
	// UserIDKey is the context key for the authenticated user ID (int64)
	UserIDKey = "user_id"
	// RoleKey is the context key for the authenticated role (string)
	RoleKey = "role"

	bearerPrefix = "Bearer "
)

// TokenVerifier verifies session tokens
type TokenVerifier interface {
	Verify(ctx context.Context, token string) service.VerifyResult
}

// SessionStatus is the outcome of resolving a request's credentials
type SessionStatus int

const (
	SessionAuthenticated SessionStatus = iota
	SessionNoCredential
	SessionInvalidCredential
)

// Decision is the outcome of an authorization check
type Decision int

const (
	Allow Decision = iota
	DenyUnauthenticated
	DenyForbidden
)

// ResolveSession reads the Bearer header, falling back to the token cookie,
// and verifies whichever credential it finds.
func ResolveSession(r *http.Request, verifier TokenVerifier) (*domain.Identity, SessionStatus) {
	var token string
	if header := r.Header.Get("Authorization"); header != "" {
		if !strings.HasPrefix(header, bearerPrefix) {
			return nil, SessionInvalidCredential
		}
		token = strings.TrimSpace(header[len(bearerPrefix):])
		if token == "" {
			return nil, SessionInvalidCredential
		}
	} else if cookie, err := r.Cookie(TokenCookieName); err == nil && cookie.Value != "" {
		token = cookie.Value
	} else {
		return nil, SessionNoCredential
	}

	result := verifier.Verify(r.Context(), token)
	if !result.Valid || result.Claims == nil {
		return nil, SessionInvalidCredential
	}
	identity := result.Claims.Identity()
	return &identity, SessionAuthenticated
}

// Authenticate rejects requests without a valid session and stores the identity on the context
func Authenticate(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, status := ResolveSession(c.Request, verifier)
		switch status {
		case SessionNoCredential:
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				response.ErrorBody("MISSING_TOKEN", "Authentication required"))
			return
		case SessionInvalidCredential:
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				response.ErrorBody("INVALID_TOKEN", "Invalid or expired token"))
			return
		}

		c.Set(UserIDKey, identity.UserID)
		c.Set(RoleKey, identity.Role.String())
		c.Next()
	}
}

// Authorize decides whether identity may proceed; no roles means any authenticated user
func Authorize(identity *domain.Identity, roles ...domain.Role) Decision {
	if identity == nil || identity.UserID == 0 {
		return DenyUnauthenticated
	}
	if len(roles) == 0 {
		return Allow
	}
	for _, r := range roles {
		if identity.Role == r {
			return Allow
		}
	}
	return DenyForbidden
}

// RequireRole restricts a route to the given roles; it must run after Authenticate
func RequireRole(roles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, _ := GetIdentity(c)
		switch Authorize(identity, roles...) {
		case DenyUnauthenticated:
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				response.ErrorBody("MISSING_TOKEN", "Authentication required"))
			return
		case DenyForbidden:
			c.AbortWithStatusJSON(http.StatusForbidden,
				response.ErrorBody("FORBIDDEN", "Insufficient permissions"))
			return
		}
		c.Next()
	}
}

// GetIdentity returns the identity stored by Authenticate
func GetIdentity(c *gin.Context) (*domain.Identity, bool) {
	userID := c.GetInt64(UserIDKey)
	if userID == 0 {
		return nil, false
	}
	return &domain.Identity{
		UserID: userID,
		Role:   domain.Role(c.GetString(RoleKey)),
	}, true
}
