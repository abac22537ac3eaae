package convo

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	types "github.com/returnaddress/returnaddress-backend/internal/domain"
	"github.com/returnaddress/returnaddress-backend/internal/platform/logger"
	"gorm.io/gorm"
)

type UsageLogRepo interface {
	Create(ctx context.Context, tx *gorm.DB, u *types.UsageLog) (*types.UsageLog, error)
	CountByCallerSince(ctx context.Context, tx *gorm.DB, agentID uuid.UUID, callerID string, since time.Time) (int64, error)
	SumTokensByAgentSince(ctx context.Context, tx *gorm.DB, agentID uuid.UUID, since time.Time) (int64, error)
}

type usageLogRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUsageLogRepo(db *gorm.DB, baseLog *logger.Logger) UsageLogRepo {
	repoLog := baseLog.With("repo", "UsageLogRepo")
	return &usageLogRepo{db: db, log: repoLog}
}

func (ur *usageLogRepo) Create(ctx context.Context, tx *gorm.DB, u *types.UsageLog) (*types.UsageLog, error) {
	transaction := tx
	if transaction == nil {
		transaction = ur.db
	}

	if err := transaction.WithContext(ctx).Create(u).Error; err != nil {
		return nil, err
	}
	return u, nil
}

// CountByCallerSince backs the burst limiter window.
func (ur *usageLogRepo) CountByCallerSince(ctx context.Context, tx *gorm.DB, agentID uuid.UUID, callerID string, since time.Time) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = ur.db
	}

	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.UsageLog{}).
		Where("agent_id = ? AND caller_id = ? AND created_at >= ?", agentID, callerID, since).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (ur *usageLogRepo) SumTokensByAgentSince(ctx context.Context, tx *gorm.DB, agentID uuid.UUID, since time.Time) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = ur.db
	}

	var sum sql.NullInt64
	if err := transaction.WithContext(ctx).
		Model(&types.UsageLog{}).
		Where("agent_id = ? AND created_at >= ?", agentID, since).
		Select("SUM(tokens_used)").
		Scan(&sum).Error; err != nil {
		return 0, err
	}
	if !sum.Valid {
		return 0, nil
	}
	return sum.Int64, nil
}
