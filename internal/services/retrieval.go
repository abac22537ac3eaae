package services

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/returnaddress/returnaddress-backend/internal/data/repos"
	"github.com/returnaddress/returnaddress-backend/internal/platform/logger"
)

// RetrievalService pulls knowledge snippets for an invocation. Retrieval is
// best effort: storage errors degrade to an empty result and never fail the
// request.
type RetrievalService interface {
	Relevant(ctx context.Context, agentID uuid.UUID, query string, topK int) []string
}

type retrievalService struct {
	log           *logger.Logger
	knowledgeRepo repos.KnowledgeRepo
}

func NewRetrievalService(log *logger.Logger, knowledgeRepo repos.KnowledgeRepo) RetrievalService {
	serviceLog := log.With("service", "RetrievalService")
	return &retrievalService{
		log:           serviceLog,
		knowledgeRepo: knowledgeRepo,
	}
}

func (rs *retrievalService) Relevant(ctx context.Context, agentID uuid.UUID, query string, topK int) []string {
	query = strings.TrimSpace(query)
	if query == "" || topK <= 0 {
		return nil
	}

	chunks, err := rs.knowledgeRepo.SearchSubstring(ctx, nil, agentID, query, topK)
	if err != nil {
		rs.log.Warn("knowledge retrieval failed, continuing without context",
			"agent_id", agentID.String(), "error", err)
		return nil
	}

	out := make([]string, 0, len(chunks))
	for _, c := range chunks {
		out = append(out, c.Content)
	}
	return out
}
