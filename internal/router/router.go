// internal/router/router.go
package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"github.com/kisanexport/storefront/internal/config"
	"github.com/kisanexport/storefront/internal/handlers"
	"github.com/kisanexport/storefront/internal/middleware"
	"github.com/kisanexport/storefront/internal/repository"
	"github.com/kisanexport/storefront/internal/services"
)

// Repositories is everything the HTTP layer persists through.
type Repositories struct {
	Categories     repository.CategoryRepository
	Products       repository.ProductRepository
	Orders         repository.OrderRepository
	Users          repository.UserRepository
	ImportProducts repository.ImportProductRepository
	AuditLogs      repository.AuditLogRepository
}

func NewRepositories(db *gorm.DB) Repositories {
	return Repositories{
		Categories:     repository.NewCategoryRepository(db),
		Products:       repository.NewProductRepository(db),
		Orders:         repository.NewOrderRepository(db),
		Users:          repository.NewUserRepository(db),
		ImportProducts: repository.NewImportProductRepository(db),
		AuditLogs:      repository.NewAuditLogRepository(db),
	}
}

// Initialize builds the engine over the postgres repositories and the
// Stripe gateway when a secret key is configured.
func Initialize(ctx context.Context, db *gorm.DB, cfg *config.Config) (*gin.Engine, error) {
	var gateway services.PaymentGateway
	if cfg.Payment.StripeSecretKey != "" {
		gateway = services.NewStripeGateway(cfg.Payment.StripeSecretKey)
	}
	return Setup(ctx, NewRepositories(db), cfg, gateway)
}

// Setup wires services and handlers. Background work started here stops
// when ctx is cancelled.
func Setup(ctx context.Context, repos Repositories, cfg *config.Config, gateway services.PaymentGateway) (*gin.Engine, error) {
	// Initialize services
	notificationService := services.NewNotificationService(repos.Users, cfg)
	storageService, err := services.NewStorageService(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "failed to initialize storage")
	}
	paymentService := services.NewPaymentService(gateway, cfg.Payment)

	authService := services.NewAuthService(repos.Users, cfg, notificationService)
	userService := services.NewUserService(repos.Users)
	categoryService := services.NewCategoryService(repos.Categories, repos.Products)
	productService := services.NewProductService(repos.Products, repos.Categories)
	cartService := services.NewCartService(repos.Products, time.Duration(cfg.Session.CartTTL)*time.Hour)
	orderService := services.NewOrderService(repos.Orders, paymentService, notificationService)
	adminService := services.NewAdminService(repos.Orders, repos.Users, repos.Categories, repos.ImportProducts)

	// Initialize handlers
	secure := cfg.IsProduction()
	cartCookie := handlers.NewCartCookie(cartService, cfg.Session.CartCookieName, secure)

	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService)
	categoryHandler := handlers.NewCategoryHandler(categoryService, storageService)
	productHandler := handlers.NewProductHandler(productService, storageService)
	cartHandler := handlers.NewCartHandler(cartService, cartCookie)
	checkoutHandler := handlers.NewCheckoutHandler(paymentService, cartCookie)
	orderHandler := handlers.NewOrderHandler(orderService, cartCookie)
	adminHandler := handlers.NewAdminHandler(adminService, authService, storageService, cfg.Session.AdminCookieName, secure)

	generalLimit, authLimit, uploadLimit := rateLimits(ctx, cfg.RateLimit)

	cookie := cfg.Session.AdminCookieName
	authRequired := middleware.AuthRequired(cookie)
	optionalAuth := middleware.OptionalAuth(cookie)
	adminOnly := []gin.HandlerFunc{authRequired, middleware.AdminRequired()}

	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS(cfg.CORS.AllowedOrigins))
	r.Use(middleware.I18nMiddleware(cfg.I18n.DefaultLocale))
	r.Use(generalLimit)
	r.Use(middleware.AuditLogMiddleware(repos.AuditLogs))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	r.Static(cfg.Storage.PublicPath, cfg.Storage.UploadDir)

	v1 := r.Group("/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/register", authLimit, authHandler.Register)
			auth.POST("/login", authLimit, authHandler.Login)
			auth.GET("/me", authRequired, authHandler.GetProfile)
		}

		categories := v1.Group("/categories")
		{
			categories.GET("", categoryHandler.GetCategories)
			categories.GET("/:id", optionalAuth, categoryHandler.GetCategory)

			protected := categories.Group("", adminOnly...)
			{
				protected.POST("", uploadLimit, categoryHandler.CreateCategory)
				protected.PUT("/:id", uploadLimit, categoryHandler.UpdateCategory)
				protected.DELETE("/:id", categoryHandler.DeleteCategory)
			}
		}

		products := v1.Group("/products")
		{
			products.GET("", optionalAuth, productHandler.GetProducts)
			products.GET("/featured", productHandler.GetFeaturedProducts)
			products.GET("/slug/:slug", optionalAuth, productHandler.GetProductBySlug)
			products.GET("/:id", optionalAuth, productHandler.GetProduct)

			protected := products.Group("", adminOnly...)
			{
				protected.POST("", uploadLimit, productHandler.CreateProduct)
				protected.PUT("/:id", uploadLimit, productHandler.UpdateProduct)
				protected.DELETE("/:id", productHandler.DeleteProduct)
			}
		}

		cart := v1.Group("/cart")
		{
			cart.GET("", cartHandler.GetCart)
			cart.DELETE("", cartHandler.ClearCart)
			cart.POST("/items", cartHandler.AddItem)
			cart.PUT("/items/:variantId", cartHandler.UpdateItem)
			cart.DELETE("/items/:variantId", cartHandler.RemoveItem)
		}

		v1.POST("/checkout/session", authRequired, checkoutHandler.StartCheckout)

		orders := v1.Group("/orders", authRequired)
		{
			orders.POST("", orderHandler.CreateOrder)
			orders.GET("", middleware.AdminRequired(), orderHandler.GetOrders)
			orders.GET("/user/:userId", orderHandler.GetUserOrders)
			orders.GET("/:id", orderHandler.GetOrder)
			orders.PUT("/:id", middleware.AdminRequired(), orderHandler.UpdateOrderStatus)
		}

		users := v1.Group("/users", adminOnly...)
		{
			users.GET("", userHandler.GetUsers)
			users.GET("/:id", userHandler.GetUser)
			users.DELETE("/:id", userHandler.DeleteUser)
		}

		admin := v1.Group("/admin")
		{
			admin.POST("/login", authLimit, adminHandler.Login)
			admin.POST("/logout", adminHandler.Logout)
			admin.GET("/check", optionalAuth, adminHandler.CheckSession)

			protected := admin.Group("", adminOnly...)
			{
				protected.GET("/dashboard/stats", adminHandler.GetDashboardStats)
				protected.GET("/categories", categoryHandler.GetAllCategories)

				imports := protected.Group("/import-products")
				{
					imports.GET("", adminHandler.GetImportProducts)
					imports.POST("", uploadLimit, adminHandler.CreateImportProduct)
					imports.PUT("/:id", uploadLimit, adminHandler.UpdateImportProduct)
					imports.DELETE("/:id", adminHandler.DeleteImportProduct)
				}
			}
		}
	}

	return r, nil
}

func rateLimits(ctx context.Context, cfg config.RateLimitConfig) (general, auth, upload gin.HandlerFunc) {
	if !cfg.Enabled {
		return middleware.Noop(), middleware.Noop(), middleware.Noop()
	}

	limiters := []*middleware.RateLimiter{
		middleware.NewRateLimiter("general", rate.Limit(cfg.GeneralPerSec), cfg.GeneralPerSec),
		middleware.PerMinute("auth", cfg.AuthPerMinute),
		middleware.PerMinute("upload", cfg.UploadPerMinute),
	}
	for _, l := range limiters {
		go l.Run(ctx)
	}
	return limiters[0].Middleware(), limiters[1].Middleware(), limiters[2].Middleware()
}
