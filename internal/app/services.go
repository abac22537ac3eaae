package app

import (
	"gorm.io/gorm"

	"github.com/returnaddress/returnaddress-backend/internal/observability"
	"github.com/returnaddress/returnaddress-backend/internal/platform/logger"
	"github.com/returnaddress/returnaddress-backend/internal/services"
)

type Services struct {
	Auth      services.AuthService
	Identity  services.IdentityService
	User      services.UserService
	Agent     services.AgentService
	Access    services.AccessService
	Retrieval services.RetrievalService
	LLM       services.LLMRouter
	Invoke    services.InvokeService
	Billing   services.BillingService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, r Repos, clients Clients, metrics *observability.Metrics) Services {
	log.Info("Wiring services...")

	auth := services.NewAuthService(db, log, r.User, r.UserToken, cfg.JWTSecret, cfg.AccessTTL, cfg.RefreshTTL)
	identity := services.NewIdentityService(log, r.User, cfg.AnonIDSecret)
	user := services.NewUserService(log, r.User)
	agent := services.NewAgentService(db, log, r.User, r.Agent, r.Spec, r.Subscription, r.Message, r.UsageLog)
	access := services.NewAccessService(log, r.Subscription, r.Message, r.UsageLog, metrics)
	retrieval := services.NewRetrievalService(log, r.Knowledge)
	llm := services.NewLLMRouter(log, clients.OpenAI, metrics)
	invoke := services.NewInvokeService(log, r.User, r.Agent, r.Spec, r.Message, r.UsageLog, access, retrieval, llm)
	billing := services.NewBillingService(log, services.BillingConfig{
		AppBaseURL:     cfg.AppBaseURL,
		PlatformFeeBps: cfg.PlatformFeeBps,
	}, clients.Stripe, r.User, r.Agent, r.Spec, r.Subscription)

	return Services{
		Auth:      auth,
		Identity:  identity,
		User:      user,
		Agent:     agent,
		Access:    access,
		Retrieval: retrieval,
		LLM:       llm,
		Invoke:    invoke,
		Billing:   billing,
	}
}
