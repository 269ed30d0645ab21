package service

import (
	"context"
	"errors"

	"github.com/Bronny721/nadu-website/internal/domain"
	"github.com/Bronny721/nadu-website/internal/dto"
	"github.com/Bronny721/nadu-website/internal/repository"
	"github.com/Bronny721/nadu-website/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// OrderService defines the interface for order operations
type OrderService interface {
	// CreateOrder places a Pending order for userID
	CreateOrder(ctx context.Context, userID int64, req *dto.CreateOrderRequest) (*domain.Order, error)
	// ListForUser returns the caller's orders, newest first
	ListForUser(ctx context.Context, userID int64) ([]*domain.Order, error)
	// GetForUser returns an order only if userID owns it
	GetForUser(ctx context.Context, userID, orderID int64) (*domain.Order, error)
	// ListAll returns every order, optionally filtered by status, newest first
	ListAll(ctx context.Context, status domain.OrderStatus) ([]*domain.Order, error)
	// GetByID returns any order
	GetByID(ctx context.Context, orderID int64) (*domain.Order, error)
	// UpdateStatus moves an order through the workflow
	UpdateStatus(ctx context.Context, orderID int64, req *dto.UpdateOrderStatusRequest) (*domain.Order, error)
}

// orderService implements OrderService
type orderService struct {
	orderRepo repository.OrderRepository
}

// NewOrderService creates a new OrderService
func NewOrderService(orderRepo repository.OrderRepository) OrderService {
	return &orderService{orderRepo: orderRepo}
}

// CreateOrder stores the submitted total verbatim
func (s *orderService) CreateOrder(ctx context.Context, userID int64, req *dto.CreateOrderRequest) (*domain.Order, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.order.create")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("user_id", userID),
		attribute.Int("item_count", len(req.Items)),
	)

	if err := req.Validate(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	order, err := domain.NewOrder(userID, req.ToItems(), req.ToShippingInfo(), *req.Total)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if err := s.orderRepo.Create(ctx, order); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int64("order_id", order.ID))
	span.SetStatus(codes.Ok, "")
	return order, nil
}

// ListForUser lists the caller's orders
func (s *orderService) ListForUser(ctx context.Context, userID int64) ([]*domain.Order, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.order.list_for_user")
	defer span.End()

	span.SetAttributes(attribute.Int64("user_id", userID))

	orders, err := s.orderRepo.List(ctx, domain.OrderFilter{UserID: &userID})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return orders, nil
}

// GetForUser hides other users' orders behind ErrOrderNotFound
func (s *orderService) GetForUser(ctx context.Context, userID, orderID int64) (*domain.Order, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.order.get_for_user")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("user_id", userID),
		attribute.Int64("order_id", orderID),
	)

	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if !order.IsOwnedBy(userID) {
		span.SetStatus(codes.Error, "not owner")
		return nil, domain.ErrOrderNotFound
	}

	span.SetStatus(codes.Ok, "")
	return order, nil
}

// ListAll lists all orders
func (s *orderService) ListAll(ctx context.Context, status domain.OrderStatus) ([]*domain.Order, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.order.list_all")
	defer span.End()

	if status != "" {
		if !status.IsValid() {
			span.SetStatus(codes.Error, "invalid status")
			return nil, domain.ErrInvalidOrderStatus
		}
		span.SetAttributes(attribute.String("status", status.String()))
	}

	orders, err := s.orderRepo.List(ctx, domain.OrderFilter{Status: status})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return orders, nil
}

// GetByID retrieves an order by ID
func (s *orderService) GetByID(ctx context.Context, orderID int64) (*domain.Order, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.order.get")
	defer span.End()

	span.SetAttributes(attribute.Int64("order_id", orderID))

	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return order, nil
}

// UpdateStatus validates the transition against the current state and
// persists it with a conditional write
func (s *orderService) UpdateStatus(ctx context.Context, orderID int64, req *dto.UpdateOrderStatusRequest) (*domain.Order, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.order.update_status")
	defer span.End()

	span.SetAttributes(
		attribute.Int64("order_id", orderID),
		attribute.String("status", req.Status),
	)

	next, err := dto.ParseOrderStatus(req.Status)
	if err != nil {
		span.SetStatus(codes.Error, "invalid status")
		return nil, err
	}

	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	change, err := order.Transition(next, req.TrackingNumber)
	if err != nil {
		span.SetAttributes(attribute.String("from", order.Status.String()))
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	updated, err := s.orderRepo.UpdateStatus(ctx, change)
	if err != nil {
		if !errors.Is(err, domain.ErrStatusConflict) {
			span.RecordError(err)
		}
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return updated, nil
}
