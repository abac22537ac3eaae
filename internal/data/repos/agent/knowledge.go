package agent

import (
	"context"
	"strings"

	"github.com/google/uuid"
	types "github.com/returnaddress/returnaddress-backend/internal/domain"
	"github.com/returnaddress/returnaddress-backend/internal/platform/logger"
	"gorm.io/gorm"
)

type KnowledgeRepo interface {
	Create(ctx context.Context, tx *gorm.DB, chunks []*types.KnowledgeChunk) ([]*types.KnowledgeChunk, error)
	SearchSubstring(ctx context.Context, tx *gorm.DB, agentID uuid.UUID, query string, limit int) ([]*types.KnowledgeChunk, error)
	DeleteByFileID(ctx context.Context, tx *gorm.DB, agentID uuid.UUID, fileID string) error
}

type knowledgeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewKnowledgeRepo(db *gorm.DB, baseLog *logger.Logger) KnowledgeRepo {
	repoLog := baseLog.With("repo", "KnowledgeRepo")
	return &knowledgeRepo{db: db, log: repoLog}
}

func (kr *knowledgeRepo) Create(ctx context.Context, tx *gorm.DB, chunks []*types.KnowledgeChunk) ([]*types.KnowledgeChunk, error) {
	transaction := tx
	if transaction == nil {
		transaction = kr.db
	}

	if len(chunks) == 0 {
		return []*types.KnowledgeChunk{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&chunks).Error; err != nil {
		return nil, err
	}
	return chunks, nil
}

// likeEscaper makes LIKE wildcards in user text match literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// SearchSubstring does a case-insensitive containment match over chunk
// content, newest first.
func (kr *knowledgeRepo) SearchSubstring(ctx context.Context, tx *gorm.DB, agentID uuid.UUID, query string, limit int) ([]*types.KnowledgeChunk, error) {
	transaction := tx
	if transaction == nil {
		transaction = kr.db
	}

	pattern := "%" + likeEscaper.Replace(strings.ToLower(query)) + "%"

	var results []*types.KnowledgeChunk
	if err := transaction.WithContext(ctx).
		Where("agent_id = ? AND LOWER(content) LIKE ? ESCAPE '\\'", agentID, pattern).
		Order("created_at DESC").
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (kr *knowledgeRepo) DeleteByFileID(ctx context.Context, tx *gorm.DB, agentID uuid.UUID, fileID string) error {
	transaction := tx
	if transaction == nil {
		transaction = kr.db
	}
	return transaction.WithContext(ctx).
		Where("agent_id = ? AND file_id = ?", agentID, fileID).
		Delete(&types.KnowledgeChunk{}).Error
}
