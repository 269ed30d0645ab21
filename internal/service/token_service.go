package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/Bronny721/nadu-website/internal/domain"
	"github.com/Bronny721/nadu-website/internal/repository"
	"github.com/Bronny721/nadu-website/pkg/logger"
	"github.com/Bronny721/nadu-website/pkg/telemetry"
	"github.com/golang-jwt/jwt/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

const (
	// DefaultTokenTTL is the lifetime of a session token
	DefaultTokenTTL = 7 * 24 * time.Hour
	// DefaultKeyVersion is written to the kid header when none is configured
	DefaultKeyVersion = "v1"
)

// ErrMissingSigningSecret is returned when the token service is built without a secret
var ErrMissingSigningSecret = errors.New("jwt signing secret is not configured")

// Claims are the signed contents of a session token
type Claims struct {
	UserID int64       `json:"user_id"`
	Role   domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// Identity returns the request identity carried by the claims
func (c *Claims) Identity() domain.Identity {
	return domain.Identity{UserID: c.UserID, Role: c.Role}
}

// VerifyResult is the outcome of verifying a session token
type VerifyResult struct {
	Valid  bool
	Claims *Claims
}

// TokenConfig holds configuration for TokenService
type TokenConfig struct {
	Secret     string
	TTL        time.Duration
	Issuer     string
	KeyVersion string
	// Now overrides the wall clock; nil means time.Now
	Now func() time.Time
}

// TokenService issues and verifies HS256 session tokens
type TokenService struct {
	secret     []byte
	ttl        time.Duration
	issuer     string
	keyVersion string
	now        func() time.Time
	users      repository.UserRepository
	log        *logger.Logger
}

// NewTokenService creates a TokenService; an empty secret is an error
func NewTokenService(cfg TokenConfig, users repository.UserRepository, log *logger.Logger) (*TokenService, error) {
	if cfg.Secret == "" {
		return nil, ErrMissingSigningSecret
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTokenTTL
	}
	if cfg.KeyVersion == "" {
		cfg.KeyVersion = DefaultKeyVersion
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if log == nil {
		log = logger.Get()
	}
	return &TokenService{
		secret:     []byte(cfg.Secret),
		ttl:        cfg.TTL,
		issuer:     cfg.Issuer,
		keyVersion: cfg.KeyVersion,
		now:        cfg.Now,
		users:      users,
		log:        log,
	}, nil
}

// TTL returns the token lifetime
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

// Issue signs a token for userID with role and returns it with its expiry
func (s *TokenService) Issue(userID int64, role domain.Role) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.ttl)

	claims := &Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	token.Header["kid"] = s.keyVersion

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, claims.ExpiresAt.Time, nil
}

// Verify checks signature, algorithm, key version and expiry, then confirms the user still exists.
// Every failure, including a credential store error, yields Valid false.
func (s *TokenService) Verify(ctx context.Context, tokenString string) VerifyResult {
	ctx, span := telemetry.StartSpan(ctx, "service.token.verify")
	defer span.End()

	if tokenString == "" {
		span.SetStatus(codes.Error, "empty token")
		return VerifyResult{}
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, s.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !token.Valid {
		span.SetStatus(codes.Error, "invalid token")
		return VerifyResult{}
	}

	span.SetAttributes(attribute.Int64("user_id", claims.UserID))

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			span.RecordError(err)
			s.log.WithContext(ctx).Error("Token liveness check failed",
				zap.Int64("user_id", claims.UserID),
				zap.Error(err),
			)
		}
		span.SetStatus(codes.Error, "user unavailable")
		return VerifyResult{}
	}

	// role comes from the stored user, not the token
	claims.Role = user.Role

	span.SetStatus(codes.Ok, "")
	return VerifyResult{Valid: true, Claims: claims}
}

func (s *TokenService) keyFunc(token *jwt.Token) (interface{}, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, domain.ErrInvalidToken
	}
	if kid, _ := token.Header["kid"].(string); kid != s.keyVersion {
		return nil, domain.ErrInvalidToken
	}
	return s.secret, nil
}
