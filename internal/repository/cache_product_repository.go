package repository

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/Bronny721/nadu-website/internal/domain"
	"github.com/Bronny721/nadu-website/pkg/redis"
)

const (
	// Cache key prefixes
	productDetailKeyPrefix = "product:detail:"
	productListKeyPrefix   = "product:list:"
	productVersionKey      = "product:version"

	// Default TTL for product caches
	productCacheTTL = 5 * time.Minute
)

// CachedProductRepository wraps ProductRepository with Redis caching.
// List entries are keyed by a version counter that every write bumps.
type CachedProductRepository struct {
	ProductRepository
	cache *redis.Client
}

// NewCachedProductRepository creates a new CachedProductRepository
func NewCachedProductRepository(repo ProductRepository, cache *redis.Client) *CachedProductRepository {
	return &CachedProductRepository{
		ProductRepository: repo,
		cache:             cache,
	}
}

// Create creates a product and invalidates list caches
func (r *CachedProductRepository) Create(ctx context.Context, product *domain.Product) error {
	if err := r.ProductRepository.Create(ctx, product); err != nil {
		return err
	}
	r.bumpVersion(ctx)
	return nil
}

// CreateBatch creates products and invalidates list caches
func (r *CachedProductRepository) CreateBatch(ctx context.Context, products []*domain.Product) error {
	if err := r.ProductRepository.CreateBatch(ctx, products); err != nil {
		return err
	}
	r.bumpVersion(ctx)
	return nil
}

// GetByID retrieves a product with caching
func (r *CachedProductRepository) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	key := productDetailKeyPrefix + strconv.FormatInt(id, 10)
	if cached, err := r.cache.Get(ctx, key).Result(); err == nil && cached != "" {
		var p domain.Product
		if err := json.Unmarshal([]byte(cached), &p); err == nil {
			return &p, nil
		}
	}

	p, err := r.ProductRepository.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	r.store(ctx, key, p)
	return p, nil
}

// List lists products with caching per category
func (r *CachedProductRepository) List(ctx context.Context, filter domain.ProductFilter) ([]*domain.Product, error) {
	version, err := r.cache.Get(ctx, productVersionKey).Result()
	if err != nil {
		version = "0"
	}
	key := productListKeyPrefix + version + ":" + filter.Category

	if cached, err := r.cache.Get(ctx, key).Result(); err == nil && cached != "" {
		var products []*domain.Product
		if err := json.Unmarshal([]byte(cached), &products); err == nil {
			return products, nil
		}
	}

	products, err := r.ProductRepository.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	r.store(ctx, key, products)
	return products, nil
}

// Update updates a product and invalidates its caches
func (r *CachedProductRepository) Update(ctx context.Context, product *domain.Product) error {
	if err := r.ProductRepository.Update(ctx, product); err != nil {
		return err
	}
	r.invalidate(ctx, product.ID)
	return nil
}

// Delete deletes a product and invalidates its caches
func (r *CachedProductRepository) Delete(ctx context.Context, id int64) error {
	if err := r.ProductRepository.Delete(ctx, id); err != nil {
		return err
	}
	r.invalidate(ctx, id)
	return nil
}

func (r *CachedProductRepository) store(ctx context.Context, key string, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	_ = r.cache.Set(ctx, key, string(data), productCacheTTL).Err()
}

func (r *CachedProductRepository) invalidate(ctx context.Context, id int64) {
	_ = r.cache.Del(ctx, productDetailKeyPrefix+strconv.FormatInt(id, 10)).Err()
	r.bumpVersion(ctx)
}

func (r *CachedProductRepository) bumpVersion(ctx context.Context) {
	_ = r.cache.Incr(ctx, productVersionKey).Err()
}

// Ensure CachedProductRepository implements ProductRepository
var _ ProductRepository = (*CachedProductRepository)(nil)
