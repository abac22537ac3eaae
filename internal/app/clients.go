package app

import (
	"fmt"

	"github.com/returnaddress/returnaddress-backend/internal/clients/openai"
	"github.com/returnaddress/returnaddress-backend/internal/clients/stripepay"
	"github.com/returnaddress/returnaddress-backend/internal/platform/logger"
)

type Clients struct {
	OpenAI openai.Client
	Stripe stripepay.Client
}

func wireClients(log *logger.Logger) (Clients, error) {
	log.Info("Wiring clients...")
	openaiClient, err := openai.NewClient(log)
	if err != nil {
		return Clients{}, fmt.Errorf("init openai client: %w", err)
	}
	stripeClient, err := stripepay.NewClient(log)
	if err != nil {
		return Clients{}, fmt.Errorf("init stripe client: %w", err)
	}
	return Clients{
		OpenAI: openaiClient,
		Stripe: stripeClient,
	}, nil
}
