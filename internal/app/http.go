package app

import (
	"github.com/returnaddress/returnaddress-backend/internal/data/db"
	apphttp "github.com/returnaddress/returnaddress-backend/internal/http"
	httpH "github.com/returnaddress/returnaddress-backend/internal/http/handlers"
	httpMW "github.com/returnaddress/returnaddress-backend/internal/http/middleware"
	"github.com/returnaddress/returnaddress-backend/internal/observability"
	"github.com/returnaddress/returnaddress-backend/internal/platform/logger"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

type Handlers struct {
	Health      *httpH.HealthHandler
	Auth        *httpH.AuthHandler
	User        *httpH.UserHandler
	Marketplace *httpH.MarketplaceHandler
	Invoke      *httpH.InvokeHandler
	Creator     *httpH.CreatorHandler
	Billing     *httpH.BillingHandler
	Admin       *httpH.AdminHandler
}

func wireHandlers(log *logger.Logger, cfg Config, services Services, pg *db.PostgresService, metrics *observability.Metrics) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:      httpH.NewHealthHandler(pg),
		Auth:        httpH.NewAuthHandler(services.Auth),
		User:        httpH.NewUserHandler(services.User),
		Marketplace: httpH.NewMarketplaceHandler(services.Agent),
		Invoke:      httpH.NewInvokeHandler(log, services.Invoke, services.Identity, metrics, cfg.IsProduction()),
		Creator:     httpH.NewCreatorHandler(services.Agent, services.Billing),
		Billing:     httpH.NewBillingHandler(log, services.Billing, metrics),
		Admin:       httpH.NewAdminHandler(services.Agent),
	}
}

func wireMiddleware(log *logger.Logger, cfg Config, services Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, services.Auth, services.User, cfg.AdminEmails),
	}
}

func wireRouter(log *logger.Logger, metrics *observability.Metrics, handlers Handlers, middleware Middleware) *apphttp.Server {
	return apphttp.NewServer(apphttp.RouterConfig{
		Log:     log,
		Metrics: metrics,

		AuthMiddleware: middleware.Auth,

		HealthHandler:      handlers.Health,
		AuthHandler:        handlers.Auth,
		UserHandler:        handlers.User,
		MarketplaceHandler: handlers.Marketplace,
		InvokeHandler:      handlers.Invoke,
		CreatorHandler:     handlers.Creator,
		BillingHandler:     handlers.Billing,
		AdminHandler:       handlers.Admin,
	})
}
