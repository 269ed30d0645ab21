package service

import (
	"context"
	"io"

	"github.com/Bronny721/nadu-website/internal/domain"
	"github.com/Bronny721/nadu-website/internal/repository"
	"github.com/Bronny721/nadu-website/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// AdminService defines the back office read models
type AdminService interface {
	// ListCustomers lists registered users with their order counts
	ListCustomers(ctx context.Context) ([]*domain.Customer, error)
	// Dashboard summarizes catalog, orders and revenue
	Dashboard(ctx context.Context) (*domain.DashboardStats, error)
	// ExportOrders writes every order as an xlsx workbook
	ExportOrders(ctx context.Context, w io.Writer) error
}

type adminService struct {
	userRepo    repository.UserRepository
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
}

// NewAdminService creates a new AdminService
func NewAdminService(
	userRepo repository.UserRepository,
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
) AdminService {
	return &adminService{
		userRepo:    userRepo,
		orderRepo:   orderRepo,
		productRepo: productRepo,
	}
}

func (s *adminService) ListCustomers(ctx context.Context) ([]*domain.Customer, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.admin.list_customers")
	defer span.End()

	customers, err := s.userRepo.ListCustomers(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("count", len(customers)))
	span.SetStatus(codes.Ok, "")
	return customers, nil
}

func (s *adminService) Dashboard(ctx context.Context) (*domain.DashboardStats, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.admin.dashboard")
	defer span.End()

	productCount, err := s.productRepo.Count(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	orderStats, err := s.orderRepo.Stats(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	customers, err := s.userRepo.ListCustomers(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return &domain.DashboardStats{
		ProductCount:   productCount,
		OrderCount:     orderStats.Count,
		CustomerCount:  len(customers),
		Revenue:        orderStats.Revenue,
		OrdersByStatus: orderStats.ByStatus,
	}, nil
}

func (s *adminService) ExportOrders(ctx context.Context, w io.Writer) error {
	ctx, span := telemetry.StartSpan(ctx, "service.admin.export_orders")
	defer span.End()

	orders, err := s.orderRepo.List(ctx, domain.OrderFilter{})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	if err := WriteOrderSheet(w, orders); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	span.SetAttributes(attribute.Int("count", len(orders)))
	span.SetStatus(codes.Ok, "")
	return nil
}
