package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vendaflow/backend/internal/infrastructure/auth"
	"github.com/vendaflow/backend/internal/interfaces/http/handler"
	"github.com/vendaflow/backend/internal/interfaces/http/middleware"
)

// Handlers groups every handler the router mounts
type Handlers struct {
	Auth      *handler.AuthHandler
	Account   *handler.AccountHandler
	Sync      *handler.SyncHandler
	Sales     *handler.SalesHandler
	Dashboard *handler.DashboardHandler
	Coupon    *handler.CouponHandler
	System    *handler.SystemHandler
}

// Router wires middleware and routes onto a gin engine
type Router struct {
	engine      *gin.Engine
	sessions    *auth.SessionService
	handlers    Handlers
	logger      *zap.Logger
	apiVersion  string
	cors        []string
	tracingName string
}

// Option configures the router
type Option func(*Router)

// WithAPIVersion sets the API version prefix
func WithAPIVersion(version string) Option {
	return func(r *Router) { r.apiVersion = version }
}

// WithCORSOrigins sets the allowed CORS origins
func WithCORSOrigins(origins []string) Option {
	return func(r *Router) { r.cors = origins }
}

// WithTracing enables the OpenTelemetry request middleware under the given
// service name
func WithTracing(serviceName string) Option {
	return func(r *Router) { r.tracingName = serviceName }
}

// New creates a router around a gin engine
func New(engine *gin.Engine, sessions *auth.SessionService, handlers Handlers, logger *zap.Logger, opts ...Option) *Router {
	r := &Router{
		engine:     engine,
		sessions:   sessions,
		handlers:   handlers,
		logger:     logger,
		apiVersion: "v1",
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Setup registers all middleware and routes
func (r *Router) Setup() {
	r.engine.Use(middleware.RequestID())
	if r.tracingName != "" {
		r.engine.Use(middleware.Tracing(r.tracingName))
		r.engine.Use(middleware.TraceRequestID())
	}
	r.engine.Use(middleware.RequestLogger(r.logger))
	r.engine.Use(middleware.Recovery(r.logger))
	if len(r.cors) > 0 {
		r.engine.Use(middleware.CORS(r.cors))
	}

	r.engine.GET("/health", r.handlers.System.HealthCheck)

	api := r.engine.Group("/api/" + r.apiVersion)

	api.GET("/system/info", r.handlers.System.GetSystemInfo)

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", r.handlers.Auth.Register)
		authGroup.POST("/login", r.handlers.Auth.Login)
		authGroup.POST("/logout", middleware.RequireSession(r.sessions), r.handlers.Auth.Logout)
		authGroup.GET("/me", middleware.RequireSession(r.sessions), r.handlers.Auth.Me)
	}

	protected := api.Group("")
	protected.Use(middleware.RequireSession(r.sessions))
	{
		accounts := protected.Group("/accounts")
		{
			accounts.GET("", r.handlers.Account.List)
			accounts.POST("", r.handlers.Account.Connect)
			accounts.DELETE("/:id", r.handlers.Account.Delete)
			accounts.POST("/:id/refresh-token", r.handlers.Account.RefreshToken)
		}

		syncGroup := protected.Group("/sync")
		{
			syncGroup.POST("", r.handlers.Sync.Launch)
			// EventSource clients authenticate via ?token=
			syncGroup.GET("/events", r.handlers.Sync.Stream)
		}

		protected.GET("/sales", r.handlers.Sales.List)

		dashboard := protected.Group("/dashboard")
		{
			dashboard.GET("/overview", r.handlers.Dashboard.Overview)
			dashboard.GET("/channels", r.handlers.Dashboard.Channels)
			dashboard.GET("/modalities", r.handlers.Dashboard.Modalities)
			dashboard.GET("/dre", r.handlers.Dashboard.DRE)
		}

		coupons := protected.Group("/coupons")
		{
			coupons.POST("", r.handlers.Coupon.Create)
			coupons.GET("", r.handlers.Coupon.List)
			coupons.PATCH("/:id/deactivate", r.handlers.Coupon.Deactivate)
			coupons.DELETE("/:id", r.handlers.Coupon.Delete)
		}
	}
}
