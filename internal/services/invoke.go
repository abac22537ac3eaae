package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/returnaddress/returnaddress-backend/internal/agentspec"
	"github.com/returnaddress/returnaddress-backend/internal/data/repos"
	types "github.com/returnaddress/returnaddress-backend/internal/domain"
	"github.com/returnaddress/returnaddress-backend/internal/platform/apierr"
	"github.com/returnaddress/returnaddress-backend/internal/platform/logger"
	"github.com/returnaddress/returnaddress-backend/internal/prompt"
)

// InvokeService runs the full invocation pipeline: load the published
// agent, gate the caller, retrieve context, assemble the prompt, call the
// model, and record the exchange.
type InvokeService interface {
	Invoke(ctx context.Context, slug, userMessage, callerID string, userID *uuid.UUID) (string, error)
}

type invokeService struct {
	log       *logger.Logger
	userRepo  repos.UserRepo
	agentRepo repos.AgentRepo
	specRepo  repos.SpecRepo
	msgRepo   repos.MessageRepo
	usageRepo repos.UsageLogRepo
	access    AccessService
	retrieval RetrievalService
	llm       LLMRouter
}

func NewInvokeService(
	log *logger.Logger,
	userRepo repos.UserRepo,
	agentRepo repos.AgentRepo,
	specRepo repos.SpecRepo,
	msgRepo repos.MessageRepo,
	usageRepo repos.UsageLogRepo,
	access AccessService,
	retrieval RetrievalService,
	llm LLMRouter,
) InvokeService {
	serviceLog := log.With("service", "InvokeService")
	return &invokeService{
		log:       serviceLog,
		userRepo:  userRepo,
		agentRepo: agentRepo,
		specRepo:  specRepo,
		msgRepo:   msgRepo,
		usageRepo: usageRepo,
		access:    access,
		retrieval: retrieval,
		llm:       llm,
	}
}

func (is *invokeService) Invoke(ctx context.Context, slug, userMessage, callerID string, userID *uuid.UUID) (string, error) {
	agent, err := is.agentRepo.GetPublishedBySlug(ctx, nil, slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", apierr.New(http.StatusNotFound, "agent_not_found", fmt.Errorf("no published agent %q", slug))
		}
		return "", fmt.Errorf("load agent: %w", err)
	}

	specRow, err := is.specRepo.GetActive(ctx, nil, agent.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", apierr.New(http.StatusInternalServerError, "agent_config_error",
				fmt.Errorf("published agent %s has no active spec", agent.ID))
		}
		return "", fmt.Errorf("load active spec: %w", err)
	}
	spec, err := agentspec.Parse(specRow.Payload)
	if err != nil {
		return "", apierr.New(http.StatusInternalServerError, "agent_config_error", err)
	}

	decision, err := is.access.Check(ctx, agent.ID, callerID, userID, spec)
	if err != nil {
		return "", err
	}

	var snippets []string
	if spec.Knowledge.Enabled {
		snippets = is.retrieval.Relevant(ctx, agent.ID, userMessage, spec.Knowledge.TopK)
	}

	assembled := prompt.Assemble(prompt.Input{
		Spec:        spec,
		CreatorName: is.creatorName(ctx, agent.OwnerID),
		Snippets:    snippets,
		UserMessage: userMessage,
	})

	completion, err := is.llm.Complete(ctx, spec.Model, assembled.System, assembled.User)
	if err != nil {
		return "", fmt.Errorf("model call: %w", err)
	}

	is.record(ctx, agent.ID, callerID, userID, userMessage, completion.Content, completion.TokensUsed, decision.IsTrial)

	return completion.Content, nil
}

func (is *invokeService) creatorName(ctx context.Context, ownerID uuid.UUID) string {
	owner, err := is.userRepo.GetByID(ctx, nil, ownerID)
	if err != nil {
		is.log.Warn("could not load agent owner for disclosure", "owner_id", ownerID.String(), "error", err)
		return ""
	}
	if owner.Handle != nil && *owner.Handle != "" {
		return *owner.Handle
	}
	return owner.Name
}

// record persists the exchange and its usage row. Failures are logged and
// swallowed: once the model has answered, the caller gets the reply.
func (is *invokeService) record(ctx context.Context, agentID uuid.UUID, callerID string, userID *uuid.UUID, userMessage, reply string, tokens int, isTrial bool) {
	if _, err := is.msgRepo.Create(ctx, nil, &types.Message{
		AgentID:  agentID,
		CallerID: callerID,
		UserID:   userID,
		Role:     types.RoleUser,
		Content:  userMessage,
	}); err != nil {
		is.log.Error("failed to record user message", "agent_id", agentID.String(), "error", err)
	}

	if _, err := is.msgRepo.Create(ctx, nil, &types.Message{
		AgentID:  agentID,
		CallerID: callerID,
		UserID:   userID,
		Role:     types.RoleAssistant,
		Content:  reply,
	}); err != nil {
		is.log.Error("failed to record assistant message", "agent_id", agentID.String(), "error", err)
	}

	var tokensUsed *int
	if tokens > 0 {
		tokensUsed = &tokens
	}
	if _, err := is.usageRepo.Create(ctx, nil, &types.UsageLog{
		AgentID:    agentID,
		CallerID:   callerID,
		UserID:     userID,
		TokensUsed: tokensUsed,
		IsTrial:    isTrial,
	}); err != nil {
		is.log.Error("failed to record usage log", "agent_id", agentID.String(), "error", err)
	}
}
