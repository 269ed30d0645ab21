package service

import (
	"context"
	"io"

	"github.com/Bronny721/nadu-website/internal/domain"
	"github.com/Bronny721/nadu-website/internal/dto"
	"github.com/Bronny721/nadu-website/internal/repository"
	"github.com/Bronny721/nadu-website/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// ProductService defines the interface for catalog operations
type ProductService interface {
	Create(ctx context.Context, req *dto.ProductRequest) (*domain.Product, error)
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
	List(ctx context.Context, filter domain.ProductFilter) ([]*domain.Product, error)
	Update(ctx context.Context, id int64, req *dto.ProductRequest) (*domain.Product, error)
	Delete(ctx context.Context, id int64) error
	// Import creates products from an xlsx workbook in one batch
	Import(ctx context.Context, r io.Reader) (*domain.ImportResult, error)
}

// productService implements ProductService
type productService struct {
	productRepo repository.ProductRepository
}

// NewProductService creates a new ProductService
func NewProductService(productRepo repository.ProductRepository) ProductService {
	return &productService{productRepo: productRepo}
}

func (s *productService) Create(ctx context.Context, req *dto.ProductRequest) (*domain.Product, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.product.create")
	defer span.End()

	product := req.ToDomain()
	if err := product.Validate(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int64("product_id", product.ID))
	span.SetStatus(codes.Ok, "")
	return product, nil
}

func (s *productService) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.product.get")
	defer span.End()

	span.SetAttributes(attribute.Int64("product_id", id))

	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return product, nil
}

func (s *productService) List(ctx context.Context, filter domain.ProductFilter) ([]*domain.Product, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.product.list")
	defer span.End()

	span.SetAttributes(attribute.String("category", filter.Category))

	products, err := s.productRepo.List(ctx, filter)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return products, nil
}

// Update replaces every editable field of the product
func (s *productService) Update(ctx context.Context, id int64, req *dto.ProductRequest) (*domain.Product, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.product.update")
	defer span.End()

	span.SetAttributes(attribute.Int64("product_id", id))

	product := req.ToDomain()
	product.ID = id
	if err := product.Validate(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return product, nil
}

func (s *productService) Delete(ctx context.Context, id int64) error {
	ctx, span := telemetry.StartSpan(ctx, "service.product.delete")
	defer span.End()

	span.SetAttributes(attribute.Int64("product_id", id))

	if err := s.productRepo.Delete(ctx, id); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

func (s *productService) Import(ctx context.Context, r io.Reader) (*domain.ImportResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.product.import")
	defer span.End()

	products, result, err := ParseProductSheet(r)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	if len(products) > 0 {
		if err := s.productRepo.CreateBatch(ctx, products); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
	}
	result.Imported = len(products)

	span.SetAttributes(
		attribute.Int("imported", result.Imported),
		attribute.Int("skipped", result.Skipped),
	)
	span.SetStatus(codes.Ok, "")
	return result, nil
}
