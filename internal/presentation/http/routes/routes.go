package routes

import (
	"time"

	"github.com/bumisubur/pos-gateway/internal/application/service"
	"github.com/bumisubur/pos-gateway/internal/config"
	"github.com/bumisubur/pos-gateway/internal/domain/enum"
	domainRepo "github.com/bumisubur/pos-gateway/internal/domain/repository"
	"github.com/bumisubur/pos-gateway/internal/infrastructure/metrics"
	"github.com/bumisubur/pos-gateway/internal/presentation/http/handler"
	"github.com/bumisubur/pos-gateway/internal/presentation/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Auth      *handler.AuthHandler
	Session   *handler.SessionHandler
	Checkout  *handler.CheckoutHandler
	Receipt   *handler.ReceiptHandler
	Directory *handler.DirectoryHandler
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	Cfg             *config.Config
	Log             *logrus.Logger
	AuthService     *service.AuthService
	Directory       *service.DirectoryService
	Cookie          handler.SessionCookie
	IdempotencyRepo domainRepo.IdempotencyRepository
	Metrics         *metrics.Metrics
	RateLimiter     *middleware.SessionRateLimiter
}

// NewRateLimiter builds the limiter from RATE_LIMIT_REQUESTS per
// RATE_LIMIT_DURATION seconds.
func NewRateLimiter(cfg config.RateLimitConfig) *middleware.SessionRateLimiter {
	rlCfg := middleware.DefaultRateLimiterConfig()
	if cfg.Requests > 0 && cfg.Duration > 0 {
		rlCfg.RequestsPerSecond = float64(cfg.Requests) / float64(cfg.Duration)
		rlCfg.BurstSize = cfg.Requests
	}
	rlCfg.CleanupInterval = 5 * time.Minute
	rlCfg.EntryTTL = 10 * time.Minute
	return middleware.NewSessionRateLimiter(rlCfg)
}

// Setup creates the Gin router and registers all routes.
func Setup(h *Handlers, deps *Deps) *gin.Engine {
	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(middleware.LoggerMiddleware(deps.Log))
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))
	if deps.Metrics != nil {
		router.Use(middleware.MetricsMiddleware(deps.Metrics))
	}
	router.Use(middleware.TokenMiddleware(deps.Cookie))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": deps.Cfg.App.Name,
		})
	})
	if deps.Metrics != nil && deps.Cfg.Metrics.Enabled {
		router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	// The mobile print app fetches receipt rows with the token in the query.
	router.GET("/api/print/", h.Receipt.Rows)
	router.GET("/api/print/:id", h.Receipt.Rows)

	v1 := router.Group("/api/v1")
	if deps.RateLimiter != nil {
		v1.Use(deps.RateLimiter.Middleware())
	}
	{
		// Public routes (no session required)
		v1.POST("/auth/login", h.Auth.Login)
		v1.GET("/guard", h.Session.Guard)

		// Session routes answer 401 themselves and clear the cookie
		v1.GET("/session", h.Session.Get)
		v1.POST("/session/revalidate", h.Session.Revalidate)

		protected := v1.Group("")
		protected.Use(middleware.SessionMiddleware(deps.AuthService, deps.Cookie))
		protected.Use(middleware.Idempotency(middleware.IdempotencyConfig{
			Repo: deps.IdempotencyRepo,
			Log:  deps.Log,
		}))

		registerProtectedRoutes(protected, h, deps)
	}

	return router
}

func registerProtectedRoutes(protected *gin.RouterGroup, h *Handlers, deps *Deps) {
	protected.POST("/auth/logout", h.Auth.Logout)
	protected.POST("/session/sidenav", h.Session.ToggleSidenav)

	registerCheckoutRoutes(protected, h)
	registerReceiptRoutes(protected, h)
	registerDirectoryRoutes(protected, h, deps.Directory)
}

func registerCheckoutRoutes(protected *gin.RouterGroup, h *Handlers) {
	checkout := protected.Group("/checkout")
	checkout.Use(middleware.RequireRouteRole(enum.RouteKasir))
	{
		checkout.GET("", h.Checkout.View)
		checkout.DELETE("", h.Checkout.Clear)
		checkout.GET("/catalog", h.Checkout.Catalog)
		checkout.POST("/items", h.Checkout.AddProduct)
		checkout.DELETE("/items/:index", h.Checkout.RemoveItem)
		checkout.PATCH("/items/:index/quantity", h.Checkout.SetQuantity)
		checkout.PATCH("/items/:index/size", h.Checkout.SetSize)
		checkout.PATCH("/items/:index/color", h.Checkout.SetColor)
		checkout.POST("/items/:index/variants", h.Checkout.AddSubItem)
		checkout.PUT("/discount", h.Checkout.SetDiscount)
		checkout.PUT("/payment-method", h.Checkout.SetPaymentMethod)
		checkout.POST("/submit", h.Checkout.Submit)
		checkout.POST("/retry-print", h.Checkout.RetryPrint)
	}
}

func registerReceiptRoutes(protected *gin.RouterGroup, h *Handlers) {
	receipts := protected.Group("/receipts")
	{
		receipts.GET("/printer", middleware.RequireRouteRole(enum.RouteKasir), h.Receipt.Status)
		receipts.POST("/:id/print", middleware.RequireRouteRole(enum.RouteKasir), h.Receipt.Print)
		receipts.GET("/:id/jobs", middleware.RequireRouteRole(enum.RouteKasir), h.Receipt.History)
		receipts.GET("/jobs", middleware.RequireRouteRole(enum.RouteAdmin), h.Receipt.Journal)
	}
}

// registerDirectoryRoutes registers the operations each collection supports,
// guarded by the role class of the matching page.
func registerDirectoryRoutes(protected *gin.RouterGroup, h *Handlers, dir *service.DirectoryService) {
	directory := protected.Group("/directory")

	for _, col := range dir.Collections() {
		name := col.Name()
		group := directory.Group("/" + name)

		if col.Supports(service.OpList) {
			group.GET("", middleware.RequireRouteRole(col.Role(service.OpList)), h.Directory.List(name))
		}
		if col.Supports(service.OpGet) {
			group.GET("/:id", middleware.RequireRouteRole(col.Role(service.OpGet)), h.Directory.Get(name))
		}
		if col.Supports(service.OpCreate) {
			group.POST("", middleware.RequireRouteRole(col.Role(service.OpCreate)), h.Directory.Create(name))
		}
		if col.Supports(service.OpUpdate) {
			group.PUT("/:id", middleware.RequireRouteRole(col.Role(service.OpUpdate)), h.Directory.Update(name))
		}
		if col.Supports(service.OpDelete) {
			group.DELETE("/:id", middleware.RequireRouteRole(col.Role(service.OpDelete)), h.Directory.Delete(name))
		}
	}

	directory.POST("/pending-stok/:id/approve", middleware.RequireRouteRole(enum.RouteAdmin), h.Directory.ApprovePendingStock)
	directory.POST("/return-customer", middleware.RequireRouteRole(enum.RouteKasirStok), h.Directory.CreateCustomerReturn)
}
