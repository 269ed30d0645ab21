package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Bronny721/nadu-website/internal/domain"
	"github.com/Bronny721/nadu-website/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresOrderRepository implements OrderRepository using PostgreSQL.
// Every write also records an order event in the outbox within the same transaction.
type PostgresOrderRepository struct {
	pool       *pgxpool.Pool
	outboxRepo *PostgresOutboxRepository
	topic      string
}

// NewPostgresOrderRepository creates a new PostgresOrderRepository
func NewPostgresOrderRepository(pool *pgxpool.Pool, topic string) *PostgresOrderRepository {
	if topic == "" {
		topic = domain.DefaultOrderTopic
	}
	return &PostgresOrderRepository{
		pool:       pool,
		outboxRepo: NewPostgresOutboxRepository(pool),
		topic:      topic,
	}
}

const orderColumns = `id, user_id, items, shipping_info, total, status, tracking_number, created_at, updated_at`

// Create creates an order and its order.created outbox message in a single transaction
func (r *PostgresOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	items, err := json.Marshal(order.Items)
	if err != nil {
		return fmt.Errorf("failed to encode items: %w", err)
	}
	shipping, err := json.Marshal(order.ShippingInfo)
	if err != nil {
		return fmt.Errorf("failed to encode shipping info: %w", err)
	}

	return database.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		query := `
			INSERT INTO orders (user_id, items, shipping_info, total, status, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id
		`
		if err := tx.QueryRow(ctx, query,
			order.UserID,
			items,
			shipping,
			order.Total,
			order.Status.String(),
			order.CreatedAt,
			order.UpdatedAt,
		).Scan(&order.ID); err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		msg, err := domain.OrderOutboxEvent(order, "", r.topic)
		if err != nil {
			return fmt.Errorf("failed to create outbox event: %w", err)
		}
		return r.outboxRepo.CreateTx(ctx, tx, msg)
	})
}

// GetByID retrieves an order by ID
func (r *PostgresOrderRepository) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	order, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return order, nil
}

// List returns orders newest first
func (r *PostgresOrderRepository) List(ctx context.Context, filter domain.OrderFilter) ([]*domain.Order, error) {
	var (
		conds []string
		args  []any
	)
	if filter.UserID != nil {
		args = append(args, *filter.UserID)
		conds = append(conds, fmt.Sprintf("user_id = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status.String())
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}

	query := `SELECT ` + orderColumns + ` FROM orders`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	orders := []*domain.Order{}
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}
	return orders, nil
}

// UpdateStatus performs the conditional status write and records the matching event
func (r *PostgresOrderRepository) UpdateStatus(ctx context.Context, change *domain.StatusChange) (*domain.Order, error) {
	var updated *domain.Order

	err := database.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		query := `
			UPDATE orders SET
				status = $3,
				tracking_number = NULLIF($4, ''),
				updated_at = $5
			WHERE id = $1 AND status = $2
			RETURNING ` + orderColumns

		row := tx.QueryRow(ctx, query,
			change.OrderID,
			change.From.String(),
			change.To.String(),
			change.TrackingNumber,
			time.Now(),
		)
		order, err := scanOrder(row)
		if err != nil {
			if !errors.Is(err, pgx.ErrNoRows) {
				return fmt.Errorf("failed to update order status: %w", err)
			}
			var exists bool
			if err := tx.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM orders WHERE id = $1)", change.OrderID).Scan(&exists); err != nil {
				return fmt.Errorf("failed to check order existence: %w", err)
			}
			if !exists {
				return domain.ErrOrderNotFound
			}
			return domain.ErrStatusConflict
		}

		// a tracking number correction on a shipped order is not a lifecycle event
		if change.From != change.To {
			msg, err := domain.OrderOutboxEvent(order, change.From, r.topic)
			if err != nil {
				return fmt.Errorf("failed to create outbox event: %w", err)
			}
			if err := r.outboxRepo.CreateTx(ctx, tx, msg); err != nil {
				return err
			}
		}
		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Stats aggregates order counts and revenue of non-cancelled orders
func (r *PostgresOrderRepository) Stats(ctx context.Context) (*OrderStats, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT status, COUNT(*), COALESCE(SUM(total), 0)::float8
		FROM orders
		GROUP BY status
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query order stats: %w", err)
	}
	defer rows.Close()

	stats := &OrderStats{ByStatus: make(map[domain.OrderStatus]int)}
	for _, s := range domain.OrderStatuses {
		stats.ByStatus[s] = 0
	}
	for rows.Next() {
		var (
			status string
			count  int
			sum    float64
		)
		if err := rows.Scan(&status, &count, &sum); err != nil {
			return nil, fmt.Errorf("failed to scan order stats: %w", err)
		}
		stats.ByStatus[domain.OrderStatus(status)] = count
		stats.Count += count
		if domain.OrderStatus(status) != domain.OrderStatusCancelled {
			stats.Revenue += sum
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating order stats: %w", err)
	}
	return stats, nil
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	order := &domain.Order{}
	var (
		items, shipping []byte
		status          string
		tracking        *string
	)
	if err := row.Scan(
		&order.ID,
		&order.UserID,
		&items,
		&shipping,
		&order.Total,
		&status,
		&tracking,
		&order.CreatedAt,
		&order.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(items, &order.Items); err != nil {
		return nil, fmt.Errorf("failed to decode items of order %d: %w", order.ID, err)
	}
	if err := json.Unmarshal(shipping, &order.ShippingInfo); err != nil {
		return nil, fmt.Errorf("failed to decode shipping info of order %d: %w", order.ID, err)
	}
	order.Status = domain.OrderStatus(status)
	if tracking != nil {
		order.TrackingNumber = *tracking
	}
	return order, nil
}

// Ensure PostgresOrderRepository implements OrderRepository
var _ OrderRepository = (*PostgresOrderRepository)(nil)
