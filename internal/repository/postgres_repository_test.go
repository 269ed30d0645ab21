package repository

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/Bronny721/nadu-website/internal/domain"
	"github.com/Bronny721/nadu-website/pkg/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func skipIfNoIntegration(t *testing.T) {
	if os.Getenv("INTEGRATION_TEST") != "true" {
		t.Skip("Skipping integration test. Set INTEGRATION_TEST=true to run.")
	}
}

func setupTestDB(t *testing.T) *database.PostgresDB {
	ctx := context.Background()

	cfg := &database.PostgresConfig{
		Host:            getEnv("POSTGRES_HOST", "localhost"),
		Port:            5432,
		User:            getEnv("POSTGRES_USER", "postgres"),
		Password:        getEnv("POSTGRES_PASSWORD", ""),
		Database:        getEnv("POSTGRES_DB", "nadu_test"),
		SSLMode:         "disable",
		MaxConns:        5,
		MinConns:        1,
		MaxConnLifetime: 5 * time.Minute,
		MaxConnIdleTime: 1 * time.Minute,
		ConnectTimeout:  5 * time.Second,
		MaxRetries:      3,
		RetryInterval:   1 * time.Second,
	}

	db, err := database.NewPostgres(ctx, cfg)
	if err != nil {
		t.Fatalf("Failed to connect to database: %v", err)
	}
	if _, err := db.Migrate(ctx); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}
	t.Cleanup(db.Close)
	return db
}

func cleanupTestData(t *testing.T, db *database.PostgresDB, emailPattern string) {
	ctx := context.Background()
	_, err := db.Pool().Exec(ctx, `
		DELETE FROM orders WHERE user_id IN (SELECT id FROM users WHERE email LIKE $1)
	`, emailPattern)
	if err != nil {
		t.Logf("Warning: failed to cleanup orders: %v", err)
	}
	if _, err := db.Pool().Exec(ctx, "DELETE FROM users WHERE email LIKE $1", emailPattern); err != nil {
		t.Logf("Warning: failed to cleanup users: %v", err)
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func createTestUser(t *testing.T, repo *PostgresUserRepository, email string) *domain.User {
	t.Helper()
	u := &domain.User{Email: email, PasswordHash: "hash", Name: "Amy", Phone: "0912345678", Role: domain.RoleCustomer}
	require.NoError(t, repo.Create(context.Background(), u))
	return u
}

func TestPostgresUserRepository_Integration(t *testing.T) {
	skipIfNoIntegration(t)
	db := setupTestDB(t)
	defer cleanupTestData(t, db, "it-user-%")

	ctx := context.Background()
	repo := NewPostgresUserRepository(db.Pool())
	email := fmt.Sprintf("it-user-%d@x.com", time.Now().UnixNano())

	u := createTestUser(t, repo, email)
	assert.NotZero(t, u.ID)

	t.Run("DuplicateEmail", func(t *testing.T) {
		err := repo.Create(ctx, &domain.User{Email: email, PasswordHash: "hash", Name: "Bob"})
		assert.ErrorIs(t, err, domain.ErrEmailTaken)
	})

	t.Run("ExistsByEmail", func(t *testing.T) {
		exists, err := repo.ExistsByEmail(ctx, email)
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = repo.ExistsByEmail(ctx, "it-user-missing@x.com")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("PromoteByEmail", func(t *testing.T) {
		n, err := repo.SetRoleByEmails(ctx, []string{email}, domain.RoleMerchant)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		got, err := repo.GetByID(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.RoleMerchant, got.Role)
	})

	t.Run("NotFound", func(t *testing.T) {
		_, err := repo.GetByID(ctx, -1)
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})
}

func TestPostgresOrderRepository_Integration(t *testing.T) {
	skipIfNoIntegration(t)
	db := setupTestDB(t)
	defer cleanupTestData(t, db, "it-order-%")

	ctx := context.Background()
	users := NewPostgresUserRepository(db.Pool())
	orders := NewPostgresOrderRepository(db.Pool(), domain.DefaultOrderTopic)
	u := createTestUser(t, users, fmt.Sprintf("it-order-%d@x.com", time.Now().UnixNano()))

	t.Run("StoresTotalVerbatim", func(t *testing.T) {
		o := newTestOrder(t, u.ID, 948)
		require.NoError(t, orders.Create(ctx, o))

		got, err := orders.GetByID(ctx, o.ID)
		require.NoError(t, err)
		assert.Equal(t, 948.0, got.Total)
		assert.Equal(t, domain.OrderStatusPending, got.Status)
		assert.Len(t, got.Items, 1)
		assert.Equal(t, "Taipei", got.ShippingInfo.City)
	})

	t.Run("ConcurrentTransitionsOneWins", func(t *testing.T) {
		o := newTestOrder(t, u.ID, 549)
		require.NoError(t, orders.Create(ctx, o))

		targets := []domain.OrderStatus{domain.OrderStatusShipped, domain.OrderStatusCancelled}
		errs := make([]error, len(targets))
		var wg sync.WaitGroup
		for i, to := range targets {
			wg.Add(1)
			go func(i int, to domain.OrderStatus) {
				defer wg.Done()
				change := &domain.StatusChange{OrderID: o.ID, From: domain.OrderStatusPending, To: to}
				if to == domain.OrderStatusShipped {
					change.TrackingNumber = "TW999"
				}
				_, errs[i] = orders.UpdateStatus(ctx, change)
			}(i, to)
		}
		wg.Wait()

		wins := 0
		for _, err := range errs {
			if err == nil {
				wins++
				continue
			}
			assert.ErrorIs(t, err, domain.ErrStatusConflict)
		}
		assert.Equal(t, 1, wins)
	})

	t.Run("ListForUserNewestFirst", func(t *testing.T) {
		uid := u.ID
		list, err := orders.List(ctx, domain.OrderFilter{UserID: &uid})
		require.NoError(t, err)
		require.GreaterOrEqual(t, len(list), 2)
		for i := 1; i < len(list); i++ {
			assert.False(t, list[i].CreatedAt.After(list[i-1].CreatedAt))
		}
	})
}
