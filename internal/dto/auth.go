package dto

import (
	"errors"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Bronny721/nadu-website/internal/domain"
)

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	phoneRegex = regexp.MustCompile(`^09\d{8}$`)
)

const (
	MinPasswordLength = 8
	MaxNameLength     = 8
)

// FieldError ties a validation failure to the request field that caused it
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Err.Error()
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// ValidateEmail checks the email pattern
func ValidateEmail(email string) error {
	if !emailRegex.MatchString(email) {
		return &FieldError{Field: "email", Err: domain.ErrInvalidEmail}
	}
	return nil
}

// ValidatePhone checks the local mobile format
func ValidatePhone(phone string) error {
	if !phoneRegex.MatchString(phone) {
		return &FieldError{Field: "phone", Err: domain.ErrInvalidPhone}
	}
	return nil
}

// ValidatePassword checks the minimum password length
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return &FieldError{Field: "password", Err: domain.ErrPasswordTooShort}
	}
	return nil
}

// ValidateName checks the display name is 1 to 8 characters
func ValidateName(name string) error {
	n := utf8.RuneCountInString(strings.TrimSpace(name))
	if n == 0 || n > MaxNameLength {
		return &FieldError{Field: "name", Err: domain.ErrInvalidName}
	}
	return nil
}

// RegisterRequest represents registration request
type RegisterRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required,max=72"`
	Name     string `json:"name" binding:"required"`
	Phone    string `json:"phone" binding:"required"`
}

// Validate applies the registration field rules
func (r *RegisterRequest) Validate() error {
	return errors.Join(
		ValidateEmail(r.Email),
		ValidatePassword(r.Password),
		ValidateName(r.Name),
		ValidatePhone(r.Phone),
	)
}

// LoginRequest represents login request
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UpdateProfileRequest represents a profile update; omitted fields are left unchanged
type UpdateProfileRequest struct {
	Name  *string `json:"name"`
	Phone *string `json:"phone"`
}

// Validate validates the fields that are present
func (r *UpdateProfileRequest) Validate() error {
	var errs []error
	if r.Name != nil {
		errs = append(errs, ValidateName(*r.Name))
	}
	if r.Phone != nil {
		errs = append(errs, ValidatePhone(*r.Phone))
	}
	return errors.Join(errs...)
}

// UserResponse represents user data in response
type UserResponse struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	Role      string `json:"role"`
	CreatedAt string `json:"created_at"`
}

// NewUserResponse converts a user for the wire
func NewUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		Name:      user.Name,
		Phone:     user.Phone,
		Role:      user.Role.String(),
		CreatedAt: user.CreatedAt.Format(time.RFC3339),
	}
}

// LoginResponse represents a successful login
type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}
