package repository

import (
	"context"

	"github.com/Bronny721/nadu-website/internal/domain"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create inserts a user and assigns its ID; returns domain.ErrEmailTaken on a duplicate email
	Create(ctx context.Context, user *domain.User) error
	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	// GetByEmail retrieves a user by exact email
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	// ExistsByEmail checks if a user exists with the given email
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	// UpdateProfile persists name and phone
	UpdateProfile(ctx context.Context, user *domain.User) error
	// SetRoleByEmails assigns role to every user whose email is listed
	SetRoleByEmails(ctx context.Context, emails []string, role domain.Role) (int64, error)
	// ListCustomers lists users with their order counts, newest registration first
	ListCustomers(ctx context.Context) ([]*domain.Customer, error)
}

// OrderRepository defines the interface for order data access
type OrderRepository interface {
	// Create inserts a Pending order and its order.created event
	Create(ctx context.Context, order *domain.Order) error
	// GetByID retrieves an order by ID
	GetByID(ctx context.Context, id int64) (*domain.Order, error)
	// List returns orders matching filter, newest first
	List(ctx context.Context, filter domain.OrderFilter) ([]*domain.Order, error)
	// UpdateStatus applies change only if the order is still in change.From.
	// Returns domain.ErrStatusConflict when another writer moved it first.
	UpdateStatus(ctx context.Context, change *domain.StatusChange) (*domain.Order, error)
	// Stats aggregates order counts and revenue for the dashboard
	Stats(ctx context.Context) (*OrderStats, error)
}

// OrderStats is the order part of the dashboard
type OrderStats struct {
	Count    int
	Revenue  float64
	ByStatus map[domain.OrderStatus]int
}

// ProductRepository defines the interface for product data access
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	CreateBatch(ctx context.Context, products []*domain.Product) error
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
	List(ctx context.Context, filter domain.ProductFilter) ([]*domain.Product, error)
	Update(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int, error)
}

// OutboxRepository defines the interface for outbox data access
type OutboxRepository interface {
	// GetPendingMessages gets pending messages to be published
	GetPendingMessages(ctx context.Context, limit int) ([]*domain.OutboxMessage, error)
	// GetFailedMessages gets failed messages that can be retried
	GetFailedMessages(ctx context.Context, limit int) ([]*domain.OutboxMessage, error)
	// MarkAsPublished marks a message as successfully published
	MarkAsPublished(ctx context.Context, id string) error
	// MarkAsFailed marks a message as failed
	MarkAsFailed(ctx context.Context, id string, err string) error
	// MarkAsDead parks a message that exhausted its retries
	MarkAsDead(ctx context.Context, id string, err string) error
	// DeletePublished deletes old published messages for cleanup
	DeletePublished(ctx context.Context, olderThanDays int) (int64, error)
}
