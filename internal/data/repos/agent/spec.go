package agent

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	types "github.com/returnaddress/returnaddress-backend/internal/domain"
	"github.com/returnaddress/returnaddress-backend/internal/platform/logger"
	"gorm.io/gorm"
)

type SpecRepo interface {
	Create(ctx context.Context, tx *gorm.DB, spec *types.AgentSpec) (*types.AgentSpec, error)
	GetActive(ctx context.Context, tx *gorm.DB, agentID uuid.UUID) (*types.AgentSpec, error)
	MaxVersion(ctx context.Context, tx *gorm.DB, agentID uuid.UUID) (int, error)
	DeactivateAll(ctx context.Context, tx *gorm.DB, agentID uuid.UUID) error
	ListByAgent(ctx context.Context, tx *gorm.DB, agentID uuid.UUID) ([]*types.AgentSpec, error)
}

type specRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSpecRepo(db *gorm.DB, baseLog *logger.Logger) SpecRepo {
	repoLog := baseLog.With("repo", "SpecRepo")
	return &specRepo{db: db, log: repoLog}
}

func (sr *specRepo) Create(ctx context.Context, tx *gorm.DB, spec *types.AgentSpec) (*types.AgentSpec, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	if err := transaction.WithContext(ctx).Create(spec).Error; err != nil {
		return nil, err
	}
	return spec, nil
}

func (sr *specRepo) GetActive(ctx context.Context, tx *gorm.DB, agentID uuid.UUID) (*types.AgentSpec, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	var result types.AgentSpec
	if err := transaction.WithContext(ctx).
		Where("agent_id = ? AND is_active = ?", agentID, true).
		Order("version DESC").
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (sr *specRepo) MaxVersion(ctx context.Context, tx *gorm.DB, agentID uuid.UUID) (int, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	var max sql.NullInt64
	if err := transaction.WithContext(ctx).
		Model(&types.AgentSpec{}).
		Where("agent_id = ?", agentID).
		Select("MAX(version)").
		Scan(&max).Error; err != nil {
		return 0, err
	}
	if !max.Valid {
		return 0, nil
	}
	return int(max.Int64), nil
}

func (sr *specRepo) DeactivateAll(ctx context.Context, tx *gorm.DB, agentID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	return transaction.WithContext(ctx).
		Model(&types.AgentSpec{}).
		Where("agent_id = ? AND is_active = ?", agentID, true).
		Update("is_active", false).Error
}

func (sr *specRepo) ListByAgent(ctx context.Context, tx *gorm.DB, agentID uuid.UUID) ([]*types.AgentSpec, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	var results []*types.AgentSpec
	if err := transaction.WithContext(ctx).
		Where("agent_id = ?", agentID).
		Order("version ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
