package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	types "github.com/returnaddress/returnaddress-backend/internal/domain"
	"github.com/returnaddress/returnaddress-backend/internal/platform/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SubscriptionRepo interface {
	GetActiveForUserAgent(ctx context.Context, tx *gorm.DB, userID, agentID uuid.UUID) (*types.Subscription, error)
	GetByStripeID(ctx context.Context, tx *gorm.DB, stripeSubscriptionID string) (*types.Subscription, error)
	UpsertByStripeID(ctx context.Context, tx *gorm.DB, sub *types.Subscription) (*types.Subscription, error)
	UpdateStatusByStripeID(ctx context.Context, tx *gorm.DB, stripeSubscriptionID, status string, currentPeriodEnd *time.Time) error
	CountActiveByAgent(ctx context.Context, tx *gorm.DB, agentID uuid.UUID) (int64, error)
}

type subscriptionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSubscriptionRepo(db *gorm.DB, baseLog *logger.Logger) SubscriptionRepo {
	repoLog := baseLog.With("repo", "SubscriptionRepo")
	return &subscriptionRepo{db: db, log: repoLog}
}

// GetActiveForUserAgent returns the active or trialing subscription for the
// pair, or ErrRecordNotFound.
func (sr *subscriptionRepo) GetActiveForUserAgent(ctx context.Context, tx *gorm.DB, userID, agentID uuid.UUID) (*types.Subscription, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	var result types.Subscription
	if err := transaction.WithContext(ctx).
		Where("user_id = ? AND agent_id = ? AND status IN ?",
			userID, agentID, []string{types.SubscriptionActive, types.SubscriptionTrialing}).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (sr *subscriptionRepo) GetByStripeID(ctx context.Context, tx *gorm.DB, stripeSubscriptionID string) (*types.Subscription, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	var result types.Subscription
	if err := transaction.WithContext(ctx).
		Where("stripe_subscription_id = ?", stripeSubscriptionID).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

// UpsertByStripeID inserts the row or, when the stripe subscription id is
// already present, refreshes status and period end. Replayed webhook
// deliveries therefore converge on the same row.
func (sr *subscriptionRepo) UpsertByStripeID(ctx context.Context, tx *gorm.DB, sub *types.Subscription) (*types.Subscription, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	if err := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "stripe_subscription_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"status", "current_period_end", "updated_at",
			}),
		}).
		Create(sub).Error; err != nil {
		return nil, err
	}

	return sr.GetByStripeID(ctx, transaction, sub.StripeSubscriptionID)
}

func (sr *subscriptionRepo) UpdateStatusByStripeID(ctx context.Context, tx *gorm.DB, stripeSubscriptionID, status string, currentPeriodEnd *time.Time) error {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	updates := map[string]any{"status": status}
	if currentPeriodEnd != nil {
		updates["current_period_end"] = *currentPeriodEnd
	}

	return transaction.WithContext(ctx).
		Model(&types.Subscription{}).
		Where("stripe_subscription_id = ?", stripeSubscriptionID).
		Updates(updates).Error
}

func (sr *subscriptionRepo) CountActiveByAgent(ctx context.Context, tx *gorm.DB, agentID uuid.UUID) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.Subscription{}).
		Where("agent_id = ? AND status IN ?",
			agentID, []string{types.SubscriptionActive, types.SubscriptionTrialing}).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
