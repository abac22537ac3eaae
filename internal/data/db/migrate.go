package db

import (
	"fmt"

	types "github.com/returnaddress/returnaddress-backend/internal/domain"
	"gorm.io/gorm"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(

		// Identity + auth
		&types.User{},
		&types.UserToken{},

		// Marketplace
		&types.Agent{},
		&types.AgentSpec{},
		&types.KnowledgeChunk{},

		// Billing
		&types.Subscription{},

		// Conversations + accounting
		&types.Message{},
		&types.UsageLog{},
	)
}

// EnsureAccountingIndexes covers the hot gating queries: lifetime and 24h
// message counts per (agent, caller) and the 10 minute usage window.
func EnsureAccountingIndexes(db *gorm.DB) error {
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_message_gating
		ON message (agent_id, caller_id, role, created_at DESC);
	`).Error; err != nil {
		return fmt.Errorf("create idx_message_gating: %w", err)
	}
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_usage_log_window
		ON usage_log (agent_id, caller_id, created_at DESC);
	`).Error; err != nil {
		return fmt.Errorf("create idx_usage_log_window: %w", err)
	}
	return nil
}

func (s *PostgresService) AutoMigrateAll() error {
	s.log.Info("Auto migrating postgres tables...")
	if err := AutoMigrateAll(s.db); err != nil {
		s.log.Error("Auto migration failed", "error", err)
		return err
	}
	if err := EnsureAccountingIndexes(s.db); err != nil {
		s.log.Error("Accounting index migration failed", "error", err)
		return err
	}
	return nil
}
