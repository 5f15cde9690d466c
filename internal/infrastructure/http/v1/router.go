// Package v1 provides HTTP API version 1.
package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"orderbell/internal/app"
	"orderbell/internal/infrastructure/http/v1/handlers"
	"orderbell/internal/infrastructure/http/v1/middleware"
	"orderbell/pkg/logger"
)

// MetricsProvider observes requests and exposes the scrape endpoint.
type MetricsProvider interface {
	middleware.HTTPObserver
	Handler() http.Handler
}

// RouterConfig holds router configuration.
type RouterConfig struct {
	// State holds the stores and the order coordinator
	State *app.State

	// Logger for request logging
	Logger *logger.Logger

	// Authorizer resolves the caller from the Authorization header
	Authorizer middleware.Authorizer

	// Metrics is optional; nil disables /metrics
	Metrics MetricsProvider

	// CORSOrigins lists allowed origins; empty means any
	CORSOrigins []string

	// RateLimitRPS and RateLimitBurst throttle the public subscription routes.
	// A non-positive RPS disables throttling.
	RateLimitRPS   float64
	RateLimitBurst int
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	log := cfg.Logger
	if log == nil {
		log = logger.Default()
	}

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(log))
	if cfg.Metrics != nil {
		router.Use(middleware.Metrics(cfg.Metrics))
	}
	router.Use(middleware.CORS(cfg.CORSOrigins))
	router.Use(middleware.ErrorHandler())

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"code": "ROUTE_NOT_FOUND", "message": "route not found"})
	})

	healthHandler := handlers.NewHealthHandler(cfg.State)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	if cfg.Metrics != nil {
		router.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	base := handlers.NewBaseHandler()
	orderHandler := handlers.NewOrderHandler(base, cfg.State.Coordinator)
	menuHandler := handlers.NewMenuHandler(base, cfg.State.Menu)

	registerPublicRoutes(router, orderHandler, menuHandler, cfg)
	registerAdminRoutes(router, orderHandler, menuHandler, cfg.Authorizer)

	return router
}

// registerPublicRoutes registers endpoints open to anyone.
func registerPublicRoutes(r gin.IRouter, orders *handlers.OrderHandler, menu *handlers.MenuHandler, cfg RouterConfig) {
	r.GET("/orders", orders.List)
	r.GET("/history", orders.History)
	r.GET("/menu", menu.List)

	var limiter *middleware.RateLimiter
	if cfg.RateLimitRPS > 0 {
		limiter = middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	}

	subs := r.Group("/order")
	subs.Use(limiter.Handler())
	{
		subs.POST("/subscribe", orders.Subscribe)
		subs.PUT("/subscribe", orders.Subscribe)
		subs.POST("/unsubscribe", orders.Unsubscribe)
	}
}

// registerAdminRoutes registers endpoints that require a privileged role.
// Only these routes consult the identity provider, so public reads keep
// answering while it is unreachable.
func registerAdminRoutes(r gin.IRouter, orders *handlers.OrderHandler, menu *handlers.MenuHandler, authorizer middleware.Authorizer) {
	admin := r.Group("")
	admin.Use(middleware.Identify(authorizer), middleware.RequireAdmin())
	{
		admin.POST("/menuItem", menu.Add)
		admin.DELETE("/menuItem", menu.Remove)

		admin.POST("/order", orders.Create)
		admin.PUT("/order", orders.Complete)
		admin.PUT("/order/done", orders.Complete)
		admin.DELETE("/order", orders.Delete)
	}
}
