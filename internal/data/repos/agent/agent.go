package agent

import (
	"context"

	"github.com/google/uuid"
	types "github.com/returnaddress/returnaddress-backend/internal/domain"
	"github.com/returnaddress/returnaddress-backend/internal/platform/logger"
	"gorm.io/gorm"
)

type AgentRepo interface {
	Create(ctx context.Context, tx *gorm.DB, a *types.Agent) (*types.Agent, error)
	GetByID(ctx context.Context, tx *gorm.DB, agentID uuid.UUID) (*types.Agent, error)
	GetBySlug(ctx context.Context, tx *gorm.DB, slug string) (*types.Agent, error)
	GetPublishedBySlug(ctx context.Context, tx *gorm.DB, slug string) (*types.Agent, error)
	ListByOwner(ctx context.Context, tx *gorm.DB, ownerID uuid.UUID) ([]*types.Agent, error)
	ListPublished(ctx context.Context, tx *gorm.DB) ([]*types.Agent, error)
	SlugExists(ctx context.Context, tx *gorm.DB, slug string) (bool, error)
	UpdateStatus(ctx context.Context, tx *gorm.DB, agentID uuid.UUID, status string) error
}

type agentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAgentRepo(db *gorm.DB, baseLog *logger.Logger) AgentRepo {
	repoLog := baseLog.With("repo", "AgentRepo")
	return &agentRepo{db: db, log: repoLog}
}

func (ar *agentRepo) Create(ctx context.Context, tx *gorm.DB, a *types.Agent) (*types.Agent, error) {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}

	if err := transaction.WithContext(ctx).Create(a).Error; err != nil {
		return nil, err
	}
	return a, nil
}

func (ar *agentRepo) GetByID(ctx context.Context, tx *gorm.DB, agentID uuid.UUID) (*types.Agent, error) {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}

	var result types.Agent
	if err := transaction.WithContext(ctx).
		Where("id = ?", agentID).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (ar *agentRepo) GetBySlug(ctx context.Context, tx *gorm.DB, slug string) (*types.Agent, error) {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}

	var result types.Agent
	if err := transaction.WithContext(ctx).
		Where("slug = ?", slug).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

// GetPublishedBySlug excludes drafts and suspended agents. Callers treat
// ErrRecordNotFound as "agent does not exist".
func (ar *agentRepo) GetPublishedBySlug(ctx context.Context, tx *gorm.DB, slug string) (*types.Agent, error) {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}

	var result types.Agent
	if err := transaction.WithContext(ctx).
		Where("slug = ? AND status = ?", slug, types.AgentStatusPublished).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (ar *agentRepo) ListByOwner(ctx context.Context, tx *gorm.DB, ownerID uuid.UUID) ([]*types.Agent, error) {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}

	var results []*types.Agent
	if err := transaction.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (ar *agentRepo) ListPublished(ctx context.Context, tx *gorm.DB) ([]*types.Agent, error) {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}

	var results []*types.Agent
	if err := transaction.WithContext(ctx).
		Where("status = ?", types.AgentStatusPublished).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (ar *agentRepo) SlugExists(ctx context.Context, tx *gorm.DB, slug string) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}

	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.Agent{}).
		Where("slug = ?", slug).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (ar *agentRepo) UpdateStatus(ctx context.Context, tx *gorm.DB, agentID uuid.UUID, status string) error {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}
	return transaction.WithContext(ctx).
		Model(&types.Agent{}).
		Where("id = ?", agentID).
		Update("status", status).Error
}
