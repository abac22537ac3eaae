package services

import (
	"context"
	"fmt"
	"time"

	"github.com/returnaddress/returnaddress-backend/internal/agentspec"
	"github.com/returnaddress/returnaddress-backend/internal/clients/openai"
	"github.com/returnaddress/returnaddress-backend/internal/observability"
	"github.com/returnaddress/returnaddress-backend/internal/platform/logger"
)

// LLMRouter dispatches a completion to the provider named in the agent
// spec. Only OpenAI is wired; anything else fails fast with no fallback.
type LLMRouter interface {
	Complete(ctx context.Context, model agentspec.Model, system, user string) (*openai.Completion, error)
}

type llmRouter struct {
	log     *logger.Logger
	openai  openai.Client
	metrics *observability.Metrics
}

func NewLLMRouter(log *logger.Logger, openaiClient openai.Client, metrics *observability.Metrics) LLMRouter {
	serviceLog := log.With("service", "LLMRouter")
	return &llmRouter{
		log:     serviceLog,
		openai:  openaiClient,
		metrics: metrics,
	}
}

func (lr *llmRouter) Complete(ctx context.Context, model agentspec.Model, system, user string) (*openai.Completion, error) {
	switch model.Provider {
	case agentspec.ProviderOpenAI:
		start := time.Now()
		completion, err := lr.openai.Complete(ctx, openai.CompletionParams{
			ModelID:     model.ModelID,
			Temperature: model.Temperature,
			MaxTokens:   model.MaxTokens,
			System:      system,
			User:        user,
		})
		if err != nil {
			lr.metrics.ObserveLLMRequest(model.ModelID, "error", time.Since(start), 0)
			return nil, err
		}
		lr.metrics.ObserveLLMRequest(model.ModelID, "ok", time.Since(start), completion.TokensUsed)
		return completion, nil
	default:
		return nil, fmt.Errorf("unsupported provider %q", model.Provider)
	}
}
