package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Bronny721/nadu-website/internal/domain"
	"github.com/Bronny721/nadu-website/internal/dto"
	"github.com/Bronny721/nadu-website/internal/repository"
	"github.com/Bronny721/nadu-website/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// AuthService defines the interface for account and session operations
type AuthService interface {
	// Register creates a customer account
	Register(ctx context.Context, req *dto.RegisterRequest) (*domain.User, error)
	// Login checks credentials and issues a session token
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error)
	// GetUser retrieves user by ID
	GetUser(ctx context.Context, id int64) (*domain.User, error)
	// UpdateProfile changes name and phone
	UpdateProfile(ctx context.Context, userID int64, req *dto.UpdateProfileRequest) (*domain.User, error)
	// PromoteMerchants grants the merchant role to existing accounts with the given emails
	PromoteMerchants(ctx context.Context, emails []string) (int64, error)
}

// authService implements AuthService
type authService struct {
	userRepo repository.UserRepository
	hasher   *PasswordHasher
	tokens   *TokenService
}

// NewAuthService creates a new AuthService
func NewAuthService(userRepo repository.UserRepository, hasher *PasswordHasher, tokens *TokenService) AuthService {
	if hasher == nil {
		hasher = NewPasswordHasher()
	}
	return &authService{
		userRepo: userRepo,
		hasher:   hasher,
		tokens:   tokens,
	}
}

// Register registers a new customer
func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) (*domain.User, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.auth.register")
	defer span.End()

	if err := req.Validate(); err != nil {
		span.SetStatus(codes.Error, "validation failed")
		return nil, err
	}

	exists, err := s.userRepo.ExistsByEmail(ctx, req.Email)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if exists {
		span.SetStatus(codes.Error, "email taken")
		return nil, domain.ErrEmailTaken
	}

	digest, err := s.hasher.Hash(req.Password)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	now := time.Now()
	user := &domain.User{
		Email:        req.Email,
		PasswordHash: digest,
		Name:         strings.TrimSpace(req.Name),
		Phone:        req.Phone,
		Role:         domain.RoleCustomer,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// Create returns ErrEmailTaken on a unique violation
	if err := s.userRepo.Create(ctx, user); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int64("user_id", user.ID))
	span.SetStatus(codes.Ok, "")
	return user, nil
}

// Login authenticates a user
func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.auth.login")
	defer span.End()

	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			span.SetStatus(codes.Error, "invalid credentials")
			return nil, domain.ErrInvalidCredentials
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if !s.hasher.Verify(req.Password, user.PasswordHash) {
		span.SetStatus(codes.Error, "invalid credentials")
		return nil, domain.ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int64("user_id", user.ID))
	span.SetStatus(codes.Ok, "")
	return &dto.LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      dto.NewUserResponse(user),
	}, nil
}

// GetUser retrieves user by ID
func (s *authService) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.auth.get_user")
	defer span.End()

	span.SetAttributes(attribute.Int64("user_id", id))

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return user, nil
}

// UpdateProfile updates user profile
func (s *authService) UpdateProfile(ctx context.Context, userID int64, req *dto.UpdateProfileRequest) (*domain.User, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.auth.update_profile")
	defer span.End()

	span.SetAttributes(attribute.Int64("user_id", userID))

	if err := req.Validate(); err != nil {
		span.SetStatus(codes.Error, "validation failed")
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if req.Name != nil {
		user.Name = strings.TrimSpace(*req.Name)
	}
	if req.Phone != nil {
		user.Phone = *req.Phone
	}
	user.UpdatedAt = time.Now()

	if err := s.userRepo.UpdateProfile(ctx, user); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return user, nil
}

// PromoteMerchants sets the merchant role on the listed accounts
func (s *authService) PromoteMerchants(ctx context.Context, emails []string) (int64, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.auth.promote_merchants")
	defer span.End()

	if len(emails) == 0 {
		return 0, nil
	}

	n, err := s.userRepo.SetRoleByEmails(ctx, emails, domain.RoleMerchant)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return 0, err
	}

	span.SetAttributes(attribute.Int64("promoted", n))
	span.SetStatus(codes.Ok, "")
	return n, nil
}
