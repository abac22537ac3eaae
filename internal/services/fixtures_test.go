package services

import (
	"testing"

	"gorm.io/gorm"

	"github.com/returnaddress/returnaddress-backend/internal/data/repos"
	"github.com/returnaddress/returnaddress-backend/internal/data/repos/testutil"
	"github.com/returnaddress/returnaddress-backend/internal/platform/logger"
)

// testFixture wires real repos over a per-test transaction. Everything a
// test writes rolls back in cleanup.
type testFixture struct {
	tx        *gorm.DB
	log       *logger.Logger
	userRepo  repos.UserRepo
	tokenRepo repos.UserTokenRepo
	agentRepo repos.AgentRepo
	specRepo  repos.SpecRepo
	knowRepo  repos.KnowledgeRepo
	subRepo   repos.SubscriptionRepo
	msgRepo   repos.MessageRepo
	usageRepo repos.UsageLogRepo
}

func newTestFixture(t *testing.T) *testFixture {
	t.Helper()
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	log := testutil.Logger(t)

	return &testFixture{
		tx:        tx,
		log:       log,
		userRepo:  repos.NewUserRepo(tx, log),
		tokenRepo: repos.NewUserTokenRepo(tx, log),
		agentRepo: repos.NewAgentRepo(tx, log),
		specRepo:  repos.NewSpecRepo(tx, log),
		knowRepo:  repos.NewKnowledgeRepo(tx, log),
		subRepo:   repos.NewSubscriptionRepo(tx, log),
		msgRepo:   repos.NewMessageRepo(tx, log),
		usageRepo: repos.NewUsageLogRepo(tx, log),
	}
}
