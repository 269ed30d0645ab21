package di

import (
	"fmt"

	"github.com/Bronny721/nadu-website/internal/handler"
	"github.com/Bronny721/nadu-website/internal/repository"
	"github.com/Bronny721/nadu-website/internal/service"
	"github.com/Bronny721/nadu-website/internal/worker"
	"github.com/Bronny721/nadu-website/pkg/config"
	"github.com/Bronny721/nadu-website/pkg/database"
	"github.com/Bronny721/nadu-website/pkg/kafka"
	"github.com/Bronny721/nadu-website/pkg/logger"
	"github.com/Bronny721/nadu-website/pkg/middleware"
	"github.com/Bronny721/nadu-website/pkg/redis"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Container holds all dependencies for the storefront
type Container struct {
	// Infrastructure
	DB            *database.PostgresDB
	Redis         *redis.Client
	KafkaProducer *kafka.Producer

	// Repositories
	UserRepo    repository.UserRepository
	OrderRepo   repository.OrderRepository
	ProductRepo repository.ProductRepository
	OutboxRepo  repository.OutboxRepository

	// Services
	Tokens         *service.TokenService
	AuthService    service.AuthService
	OrderService   service.OrderService
	ProductService service.ProductService
	AdminService   service.AdminService

	// Handlers
	HealthHandler  *handler.HealthHandler
	AuthHandler    *handler.AuthHandler
	OrderHandler   *handler.OrderHandler
	AdminHandler   *handler.AdminHandler
	ProductHandler *handler.ProductHandler
	StoreHandler   *handler.StoreHandler

	// Workers; nil when Kafka is disabled
	OutboxWorker *worker.OutboxWorker

	config *config.Config
	log    *logger.Logger
}

// ContainerConfig contains configuration for building the container
type ContainerConfig struct {
	Config        *config.Config
	DB            *database.PostgresDB
	Redis         *redis.Client
	KafkaProducer *kafka.Producer
	Logger        *logger.Logger
}

// NewContainer wires repositories, services and handlers on top of the connected infrastructure
func NewContainer(cfg *ContainerConfig) (*Container, error) {
	if cfg.Config == nil || cfg.DB == nil {
		return nil, fmt.Errorf("config and database are required")
	}
	log := cfg.Logger
	if log == nil {
		log = logger.Get()
	}

	c := &Container{
		DB:            cfg.DB,
		Redis:         cfg.Redis,
		KafkaProducer: cfg.KafkaProducer,
		config:        cfg.Config,
		log:           log,
	}

	pool := c.DB.Pool()
	c.OrderRepo = repository.NewPostgresOrderRepository(pool, cfg.Config.Kafka.OrderTopic)
	c.UserRepo = repository.NewPostgresUserRepository(pool)
	c.OutboxRepo = repository.NewPostgresOutboxRepository(pool)
	c.ProductRepo = repository.NewPostgresProductRepository(pool)
	if c.Redis != nil {
		c.ProductRepo = repository.NewCachedProductRepository(c.ProductRepo, c.Redis)
		log.Info("Product catalog cached in Redis")
	}

	jwtCfg := cfg.Config.JWT
	tokens, err := service.NewTokenService(service.TokenConfig{
		Secret:     jwtCfg.Secret,
		TTL:        jwtCfg.TTL,
		Issuer:     jwtCfg.Issuer,
		KeyVersion: jwtCfg.KeyVersion,
	}, c.UserRepo, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create token service: %w", err)
	}
	c.Tokens = tokens

	c.AuthService = service.NewAuthService(c.UserRepo, service.NewPasswordHasher(), c.Tokens)
	c.OrderService = service.NewOrderService(c.OrderRepo)
	c.ProductService = service.NewProductService(c.ProductRepo)
	c.AdminService = service.NewAdminService(c.UserRepo, c.OrderRepo, c.ProductRepo)

	var redisCheck handler.HealthChecker
	if c.Redis != nil {
		redisCheck = c.Redis
	}
	c.HealthHandler = handler.NewHealthHandler(c.DB, redisCheck, log)
	c.AuthHandler = handler.NewAuthHandler(c.AuthService, cfg.Config.Server.SecureCookies)
	c.OrderHandler = handler.NewOrderHandler(c.OrderService)
	c.AdminHandler = handler.NewAdminHandler(c.OrderService, c.AdminService)
	c.ProductHandler = handler.NewProductHandler(c.ProductService)
	c.StoreHandler = handler.NewStoreHandler(cfg.Config.Store.ShippingFee, cfg.Config.Store.Currency)

	if c.KafkaProducer != nil {
		c.OutboxWorker = worker.NewOutboxWorker(c.OutboxRepo, c.KafkaProducer, nil, log)
	}

	return c, nil
}

// Router builds the HTTP surface from the container's handlers
func (c *Container) Router() *gin.Engine {
	var idempotency *middleware.IdempotencyConfig
	if c.Redis != nil {
		idempotency = middleware.DefaultIdempotencyConfig(c.Redis)
		idempotency.OnError = func(ctx *gin.Context, err error) {
			c.log.Warn("Idempotency store unavailable, processing request normally", zap.Error(err))
		}
	}

	return handler.NewRouter(&handler.RouterConfig{
		Auth:           c.AuthHandler,
		Orders:         c.OrderHandler,
		Admin:          c.AdminHandler,
		Products:       c.ProductHandler,
		Store:          c.StoreHandler,
		Health:         c.HealthHandler,
		Verifier:       c.Tokens,
		Logger:         c.log,
		AllowedOrigins: c.config.Server.AllowedOrigins,
		Idempotency:    idempotency,
		Tracing:        c.config.OTel.Enabled,
	})
}
