package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Bronny721/nadu-website/internal/domain"
	"github.com/Bronny721/nadu-website/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// stubVerifier accepts the tokens it knows
type stubVerifier map[string]domain.Identity

func (s stubVerifier) Verify(ctx context.Context, token string) service.VerifyResult {
	id, ok := s[token]
	if !ok {
		return service.VerifyResult{}
	}
	return service.VerifyResult{Valid: true, Claims: &service.Claims{UserID: id.UserID, Role: id.Role}}
}

var testVerifier = stubVerifier{
	"customer-token": {UserID: 1, Role: domain.RoleCustomer},
	"merchant-token": {UserID: 2, Role: domain.RoleMerchant},
}

func TestResolveSession(t *testing.T) {
	tests := []struct {
		name   string
		header string
		cookie string
		want   SessionStatus
		userID int64
	}{
		{"bearer header", "Bearer customer-token", "", SessionAuthenticated, 1},
		{"cookie fallback", "", "merchant-token", SessionAuthenticated, 2},
		{"header wins over cookie", "Bearer customer-token", "merchant-token", SessionAuthenticated, 1},
		{"no credential", "", "", SessionNoCredential, 0},
		{"unknown token", "Bearer forged", "", SessionInvalidCredential, 0},
		{"not a bearer header", "Basic dXNlcjpwYXNz", "merchant-token", SessionInvalidCredential, 0},
		{"empty bearer", "Bearer ", "", SessionInvalidCredential, 0},
		{"invalid cookie", "", "forged", SessionInvalidCredential, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: TokenCookieName, Value: tt.cookie})
			}

			identity, status := ResolveSession(req, testVerifier)
			assert.Equal(t, tt.want, status)
			if tt.userID != 0 {
				require.NotNil(t, identity)
				assert.Equal(t, tt.userID, identity.UserID)
			} else {
				assert.Nil(t, identity)
			}
		})
	}
}

func TestAuthorize(t *testing.T) {
	customer := &domain.Identity{UserID: 1, Role: domain.RoleCustomer}
	merchant := &domain.Identity{UserID: 2, Role: domain.RoleMerchant}

	tests := []struct {
		name     string
		identity *domain.Identity
		roles    []domain.Role
		want     Decision
	}{
		{"anonymous", nil, nil, DenyUnauthenticated},
		{"any authenticated", customer, nil, Allow},
		{"customer on merchant route", customer, []domain.Role{domain.RoleMerchant}, DenyForbidden},
		{"merchant on merchant route", merchant, []domain.Role{domain.RoleMerchant}, Allow},
		{"merchant on customer route", merchant, []domain.Role{domain.RoleCustomer, domain.RoleMerchant}, Allow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Authorize(tt.identity, tt.roles...))
		})
	}
}

func newAuthRouter() *gin.Engine {
	r := gin.New()
	r.GET("/me", Authenticate(testVerifier), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": c.GetInt64(UserIDKey), "role": c.GetString(RoleKey)})
	})
	r.GET("/admin", Authenticate(testVerifier), RequireRole(domain.RoleMerchant), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	r.GET("/unguarded-admin", RequireRole(domain.RoleMerchant), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func TestAuthenticate_StatusCodes(t *testing.T) {
	r := newAuthRouter()

	tests := []struct {
		name   string
		path   string
		header string
		status int
		code   string
	}{
		{"missing token", "/me", "", http.StatusUnauthorized, "MISSING_TOKEN"},
		{"invalid token", "/me", "Bearer forged", http.StatusUnauthorized, "INVALID_TOKEN"},
		{"customer", "/me", "Bearer customer-token", http.StatusOK, ""},
		{"customer on admin", "/admin", "Bearer customer-token", http.StatusForbidden, "FORBIDDEN"},
		{"merchant on admin", "/admin", "Bearer merchant-token", http.StatusOK, ""},
		{"anonymous on admin", "/admin", "", http.StatusUnauthorized, "MISSING_TOKEN"},
		{"role check without session", "/unguarded-admin", "", http.StatusUnauthorized, "MISSING_TOKEN"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			if tt.code != "" {
				assert.Contains(t, w.Body.String(), tt.code)
			}
		})
	}
}

func TestAuthenticate_SetsIdentity(t *testing.T) {
	r := newAuthRouter()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: TokenCookieName, Value: "merchant-token"})
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_id":2,"role":"merchant"}`, w.Body.String())
}

func TestRequestID_GeneratesNew(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/test", func(c *gin.Context) {
		c.String(http.StatusOK, GetRequestID(c))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

	headerID := w.Header().Get(RequestIDHeader)
	assert.NotEmpty(t, headerID)
	assert.Equal(t, headerID, w.Body.String())
}

func TestRequestID_UsesExisting(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/test", func(c *gin.Context) {
		c.String(http.StatusOK, GetRequestID(c))
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set(RequestIDHeader, "existing-request-id-123")
	r.ServeHTTP(w, req)

	assert.Equal(t, "existing-request-id-123", w.Body.String())
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS(DefaultCORSConfig([]string{"https://shop.example.com"})))
	r.GET("/test", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	t.Run("allowed origin", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("Origin", "https://shop.example.com")
		r.ServeHTTP(w, req)

		assert.Equal(t, "https://shop.example.com", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
		assert.Equal(t, "86400", w.Header().Get("Access-Control-Max-Age"))
	})

	t.Run("other origin", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("Origin", "https://evil.example.com")
		r.ServeHTTP(w, req)

		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("preflight", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodOptions, "/test", nil)
		req.Header.Set("Origin", "https://shop.example.com")
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "X-Idempotency-Key")
	})
}
