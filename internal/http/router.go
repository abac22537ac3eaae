package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/returnaddress/returnaddress-backend/internal/http/handlers"
	httpMW "github.com/returnaddress/returnaddress-backend/internal/http/middleware"
	"github.com/returnaddress/returnaddress-backend/internal/observability"
	"github.com/returnaddress/returnaddress-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log     *logger.Logger
	Metrics *observability.Metrics

	AuthMiddleware *httpMW.AuthMiddleware

	HealthHandler      *httpH.HealthHandler
	AuthHandler        *httpH.AuthHandler
	UserHandler        *httpH.UserHandler
	MarketplaceHandler *httpH.MarketplaceHandler
	InvokeHandler      *httpH.InvokeHandler
	CreatorHandler     *httpH.CreatorHandler
	BillingHandler     *httpH.BillingHandler
	AdminHandler       *httpH.AdminHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware("returnaddress-backend"))
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.CORS())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))

	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	{
		if cfg.HealthHandler != nil {
			api.GET("/health/db", cfg.HealthHandler.DBHealth)
		}

		if cfg.AuthHandler != nil {
			api.POST("/register", cfg.AuthHandler.Register)
			api.POST("/login", cfg.AuthHandler.Login)
			api.POST("/refresh", cfg.AuthHandler.Refresh)
			api.POST("/logout", cfg.AuthHandler.Logout)
		}

		if cfg.BillingHandler != nil {
			api.POST("/stripe/webhook", cfg.BillingHandler.Webhook)
		}

		// Marketplace is public; invoke takes an optional bearer token so
		// subscribers get credited.
		if cfg.MarketplaceHandler != nil {
			api.GET("/agents", cfg.MarketplaceHandler.List)
			api.GET("/agents/:slug", cfg.MarketplaceHandler.PublicProfile)
		}
		if cfg.InvokeHandler != nil && cfg.AuthMiddleware != nil {
			api.POST("/agents/:slug/invoke", cfg.AuthMiddleware.OptionalAuth(), cfg.InvokeHandler.Invoke)
		}
	}

	if cfg.AuthMiddleware == nil {
		return r
	}

	protected := api.Group("/")
	protected.Use(cfg.AuthMiddleware.RequireAuth())
	{
		if cfg.UserHandler != nil {
			protected.GET("/me", cfg.UserHandler.GetMe)
		}
		if cfg.BillingHandler != nil {
			protected.POST("/agents/:slug/subscribe", cfg.BillingHandler.Subscribe)
		}
		if cfg.UserHandler != nil {
			protected.POST("/creator/onboard", cfg.UserHandler.OnboardCreator)
		}

		creator := protected.Group("/creator")
		creator.Use(cfg.AuthMiddleware.RequireCreator())
		{
			if cfg.CreatorHandler != nil {
				creator.POST("/stripe/connect", cfg.CreatorHandler.StripeConnect)
				creator.POST("/agents", cfg.CreatorHandler.CreateAgent)
				creator.GET("/agents", cfg.CreatorHandler.ListAgents)
				creator.GET("/agents/:id", cfg.CreatorHandler.GetAgent)
				creator.PUT("/agents/:id", cfg.CreatorHandler.UpdateAgent)
				creator.GET("/agents/:id/analytics", cfg.CreatorHandler.Analytics)
				creator.POST("/agents/:id/publish", cfg.CreatorHandler.Publish)
				creator.POST("/agents/:id/unpublish", cfg.CreatorHandler.Unpublish)
			}
		}

		admin := protected.Group("/admin")
		admin.Use(cfg.AuthMiddleware.RequireAdmin())
		{
			if cfg.AdminHandler != nil {
				admin.POST("/agents/:id/suspend", cfg.AdminHandler.SuspendAgent)
			}
		}
	}

	return r
}
