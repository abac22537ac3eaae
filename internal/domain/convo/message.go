package convo

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn of an exchange. Append-only; trial and daily-limit
// accounting counts role=user rows per (agent, caller).
type Message struct {
	ID       uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	AgentID  uuid.UUID  `gorm:"type:uuid;not null;index:idx_msg_agent_caller,priority:1" json:"agent_id"`
	CallerID string     `gorm:"type:text;not null;index:idx_msg_agent_caller,priority:2" json:"caller_id"`
	UserID   *uuid.UUID `gorm:"type:uuid;index" json:"user_id,omitempty"`
	Role     string     `gorm:"type:text;not null" json:"role"`
	Content  string     `gorm:"type:text;not null" json:"content"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}

func (Message) TableName() string { return "message" }

func (m *Message) BeforeCreate(*gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// UsageLog is one row per invocation, the basis for burst rate limiting
// and creator analytics.
type UsageLog struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	AgentID    uuid.UUID  `gorm:"type:uuid;not null;index:idx_usage_agent_caller,priority:1" json:"agent_id"`
	CallerID   string     `gorm:"type:text;not null;index:idx_usage_agent_caller,priority:2" json:"caller_id"`
	UserID     *uuid.UUID `gorm:"type:uuid;index" json:"user_id,omitempty"`
	TokensUsed *int       `gorm:"column:tokens_used" json:"tokens_used,omitempty"`
	IsTrial    bool       `gorm:"not null;default:false" json:"is_trial"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}

func (UsageLog) TableName() string { return "usage_log" }

func (u *UsageLog) BeforeCreate(*gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
