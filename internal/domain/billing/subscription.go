package billing

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	StatusActive   = "active"
	StatusTrialing = "trialing"
	StatusPastDue  = "past_due"
	StatusCanceled = "canceled"
)

// Subscription links a user to an agent. Rows are upserted from payment
// webhook events keyed by the processor's subscription id, which makes
// duplicate and out-of-order deliveries idempotent.
type Subscription struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID  uuid.UUID `gorm:"type:uuid;not null;index:idx_sub_user_agent,priority:1" json:"user_id"`
	AgentID uuid.UUID `gorm:"type:uuid;not null;index:idx_sub_user_agent,priority:2" json:"agent_id"`

	StripeSubscriptionID string `gorm:"uniqueIndex;not null" json:"-"`
	StripeCustomerID     string `gorm:"not null" json:"-"`

	Status           string     `gorm:"type:text;not null;index" json:"status"`
	CurrentPeriodEnd *time.Time `gorm:"column:current_period_end" json:"current_period_end,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Subscription) TableName() string { return "subscription" }

func (s *Subscription) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
