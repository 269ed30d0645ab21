package domain

import (
	"strings"
	"time"
)

// Role represents a user role
type Role string

const (
	RoleCustomer Role = "customer"
	RoleMerchant Role = "merchant"
)

// NormalizeRole maps stored role values onto the two roles the store knows about
func NormalizeRole(raw string) Role {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "admin", "store_owner", "merchant":
		return RoleMerchant
	default:
		return RoleCustomer
	}
}

// String returns the string representation of Role
func (r Role) String() string {
	return string(r)
}

// User represents a registered account
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never serialize password
	Name         string    `json:"name"`
	Phone        string    `json:"phone"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IsMerchant reports whether the user may use the back office
func (u *User) IsMerchant() bool {
	return u.Role == RoleMerchant
}

// Identity is the authenticated caller of a request
type Identity struct {
	UserID int64
	Role   Role
}

// Customer is a user listed in the back office together with their order count
type Customer struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone"`
	OrderCount int       `json:"order_count"`
	CreatedAt  time.Time `json:"created_at"`
}
