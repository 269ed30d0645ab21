package handler

import (
	"github.com/Bronny721/nadu-website/internal/domain"
	"github.com/Bronny721/nadu-website/internal/middleware"
	"github.com/Bronny721/nadu-website/pkg/logger"
	pkgmiddleware "github.com/Bronny721/nadu-website/pkg/middleware"
	"github.com/Bronny721/nadu-website/pkg/telemetry"
	"github.com/gin-gonic/gin"
)

// RouterConfig carries everything the HTTP surface is built from
type RouterConfig struct {
	Auth     *AuthHandler
	Orders   *OrderHandler
	Admin    *AdminHandler
	Products *ProductHandler
	Store    *StoreHandler
	Health   *HealthHandler

	Verifier       middleware.TokenVerifier
	Logger         *logger.Logger
	AllowedOrigins []string
	// Idempotency guards POST /orders; nil disables it
	Idempotency *pkgmiddleware.IdempotencyConfig
	Tracing     bool
}

// NewRouter builds the gin engine with all routes registered
func NewRouter(cfg *RouterConfig) *gin.Engine {
	if cfg.Logger == nil {
		cfg.Logger = logger.NewNop()
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	if cfg.Tracing {
		router.Use(telemetry.TracingMiddleware())
	}
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig(cfg.AllowedOrigins)))

	router.GET("/health", cfg.Health.Health)
	router.GET("/ready", cfg.Health.Ready)

	authenticated := middleware.Authenticate(cfg.Verifier)

	auth := router.Group("/auth")
	{
		auth.POST("/register", cfg.Auth.Register)
		auth.POST("/login", cfg.Auth.Login)
		auth.POST("/logout", authenticated, cfg.Auth.Logout)
		auth.GET("/me", authenticated, cfg.Auth.Me)
		auth.PUT("/me", authenticated, cfg.Auth.UpdateMe)
	}

	router.GET("/store/config", cfg.Store.Config)

	products := router.Group("/products")
	{
		products.GET("", cfg.Products.ListProducts)
		products.GET("/:id", cfg.Products.GetProduct)
	}

	orders := router.Group("/orders", authenticated)
	{
		create := []gin.HandlerFunc{}
		if cfg.Idempotency != nil {
			create = append(create, pkgmiddleware.Idempotency(cfg.Idempotency))
		}
		create = append(create, cfg.Orders.CreateOrder)
		orders.POST("", create...)
		orders.GET("", cfg.Orders.ListOrders)
		orders.GET("/:id", cfg.Orders.GetOrder)
	}

	admin := router.Group("/admin", authenticated, middleware.RequireRole(domain.RoleMerchant))
	{
		admin.GET("/orders", cfg.Admin.ListOrders)
		admin.GET("/orders/export", cfg.Admin.ExportOrders)
		admin.GET("/orders/:id", cfg.Admin.GetOrder)
		admin.PUT("/orders/:id", cfg.Admin.UpdateOrderStatus)

		admin.GET("/products", cfg.Products.ListProducts)
		admin.POST("/products", cfg.Products.CreateProduct)
		admin.POST("/products/import", cfg.Products.ImportProducts)
		admin.GET("/products/:id", cfg.Products.GetProduct)
		admin.PUT("/products/:id", cfg.Products.UpdateProduct)
		admin.DELETE("/products/:id", cfg.Products.DeleteProduct)

		admin.GET("/customers", cfg.Admin.ListCustomers)
		admin.GET("/dashboard", cfg.Admin.Dashboard)
	}

	return router
}
