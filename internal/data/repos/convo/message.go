package convo

import (
	"context"
	"time"

	"github.com/google/uuid"
	types "github.com/returnaddress/returnaddress-backend/internal/domain"
	"github.com/returnaddress/returnaddress-backend/internal/platform/logger"
	"gorm.io/gorm"
)

type MessageRepo interface {
	Create(ctx context.Context, tx *gorm.DB, m *types.Message) (*types.Message, error)
	CountUserMessages(ctx context.Context, tx *gorm.DB, agentID uuid.UUID, callerID string) (int64, error)
	CountUserMessagesSince(ctx context.Context, tx *gorm.DB, agentID uuid.UUID, callerID string, since time.Time) (int64, error)
	CountByAgentSince(ctx context.Context, tx *gorm.DB, agentID uuid.UUID, since time.Time) (int64, error)
}

type messageRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMessageRepo(db *gorm.DB, baseLog *logger.Logger) MessageRepo {
	repoLog := baseLog.With("repo", "MessageRepo")
	return &messageRepo{db: db, log: repoLog}
}

func (mr *messageRepo) Create(ctx context.Context, tx *gorm.DB, m *types.Message) (*types.Message, error) {
	transaction := tx
	if transaction == nil {
		transaction = mr.db
	}

	if err := transaction.WithContext(ctx).Create(m).Error; err != nil {
		return nil, err
	}
	return m, nil
}

// CountUserMessages is the lifetime trial counter. Only role=user rows
// count; assistant replies are free.
func (mr *messageRepo) CountUserMessages(ctx context.Context, tx *gorm.DB, agentID uuid.UUID, callerID string) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = mr.db
	}

	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.Message{}).
		Where("agent_id = ? AND caller_id = ? AND role = ?", agentID, callerID, types.RoleUser).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (mr *messageRepo) CountUserMessagesSince(ctx context.Context, tx *gorm.DB, agentID uuid.UUID, callerID string, since time.Time) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = mr.db
	}

	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.Message{}).
		Where("agent_id = ? AND caller_id = ? AND role = ? AND created_at >= ?",
			agentID, callerID, types.RoleUser, since).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (mr *messageRepo) CountByAgentSince(ctx context.Context, tx *gorm.DB, agentID uuid.UUID, since time.Time) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = mr.db
	}

	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.Message{}).
		Where("agent_id = ? AND created_at >= ?", agentID, since).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

