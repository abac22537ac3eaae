package agent

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	StatusDraft     = "draft"
	StatusPublished = "published"
	StatusSuspended = "suspended"
)

type Agent struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerID uuid.UUID `gorm:"type:uuid;not null;index" json:"owner_id"`
	Slug    string    `gorm:"uniqueIndex;not null" json:"slug"`
	Status  string    `gorm:"type:text;not null;default:'draft';index" json:"status"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Agent) TableName() string { return "agent" }

func (a *Agent) BeforeCreate(*gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// SpecVersion is one immutable configuration snapshot of an agent. Versions
// are appended, never rewritten; at most one row per agent carries
// is_active=true.
type SpecVersion struct {
	ID       uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	AgentID  uuid.UUID      `gorm:"type:uuid;not null;index:idx_agent_spec_version,unique,priority:1" json:"agent_id"`
	Version  int            `gorm:"not null;index:idx_agent_spec_version,unique,priority:2" json:"version"`
	Payload  datatypes.JSON `gorm:"type:jsonb;not null" json:"payload"`
	IsActive bool           `gorm:"not null;default:false;index" json:"is_active"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

func (SpecVersion) TableName() string { return "agent_spec" }

func (v *SpecVersion) BeforeCreate(*gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}

// KnowledgeChunk is a retrieval fragment attached to an agent.
type KnowledgeChunk struct {
	ID       uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	AgentID  uuid.UUID      `gorm:"type:uuid;not null;index" json:"agent_id"`
	FileID   string         `gorm:"type:text;not null;index" json:"file_id"`
	Content  string         `gorm:"type:text;not null" json:"content"`
	Metadata datatypes.JSON `gorm:"type:jsonb;not null;default:'{}'" json:"metadata"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}

func (KnowledgeChunk) TableName() string { return "agent_knowledge_chunk" }

func (c *KnowledgeChunk) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
