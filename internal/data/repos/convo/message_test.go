package convo_test

import (
	"context"
	"testing"
	"time"

	convorepo "github.com/returnaddress/returnaddress-backend/internal/data/repos/convo"
	"github.com/returnaddress/returnaddress-backend/internal/data/repos/testutil"
	types "github.com/returnaddress/returnaddress-backend/internal/domain"
)

func TestCountUserMessagesIgnoresAssistantRows(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	repo := convorepo.NewMessageRepo(db, testutil.Logger(t))
	ctx := context.Background()

	owner := testutil.SeedCreator(t, ctx, tx, "msg1@example.com", "msg-1")
	a := testutil.SeedAgent(t, ctx, tx, owner.ID, "msg-agent-1", types.AgentStatusPublished)
	caller := "caller-1"

	now := time.Now().UTC()
	testutil.SeedMessage(t, ctx, tx, a.ID, caller, types.RoleUser, now.Add(-time.Minute))
	testutil.SeedMessage(t, ctx, tx, a.ID, caller, types.RoleAssistant, now.Add(-time.Minute))
	testutil.SeedMessage(t, ctx, tx, a.ID, caller, types.RoleUser, now)
	testutil.SeedMessage(t, ctx, tx, a.ID, "someone-else", types.RoleUser, now)

	count, err := repo.CountUserMessages(ctx, tx, a.ID, caller)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 user messages for caller, got %d", count)
	}
}

func TestCountUserMessagesSinceSlidingWindow(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	repo := convorepo.NewMessageRepo(db, testutil.Logger(t))
	ctx := context.Background()

	owner := testutil.SeedCreator(t, ctx, tx, "msg2@example.com", "msg-2")
	a := testutil.SeedAgent(t, ctx, tx, owner.ID, "msg-agent-2", types.AgentStatusPublished)
	caller := "caller-2"

	now := time.Now().UTC()
	// Older than 24h: must fall out of the window.
	testutil.SeedMessage(t, ctx, tx, a.ID, caller, types.RoleUser, now.Add(-25*time.Hour))
	testutil.SeedMessage(t, ctx, tx, a.ID, caller, types.RoleUser, now.Add(-23*time.Hour))
	testutil.SeedMessage(t, ctx, tx, a.ID, caller, types.RoleUser, now.Add(-time.Hour))

	count, err := repo.CountUserMessagesSince(ctx, tx, a.ID, caller, now.Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("count since: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 messages inside 24h window, got %d", count)
	}
}

func TestUsageCountByCallerSince(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	repo := convorepo.NewUsageLogRepo(db, testutil.Logger(t))
	ctx := context.Background()

	owner := testutil.SeedCreator(t, ctx, tx, "msg3@example.com", "msg-3")
	a := testutil.SeedAgent(t, ctx, tx, owner.ID, "msg-agent-3", types.AgentStatusPublished)
	caller := "caller-3"

	now := time.Now().UTC()
	testutil.SeedUsage(t, ctx, tx, a.ID, caller, now.Add(-11*time.Minute))
	testutil.SeedUsage(t, ctx, tx, a.ID, caller, now.Add(-9*time.Minute))
	testutil.SeedUsage(t, ctx, tx, a.ID, caller, now.Add(-time.Minute))
	testutil.SeedUsage(t, ctx, tx, a.ID, "someone-else", now)

	count, err := repo.CountByCallerSince(ctx, tx, a.ID, caller, now.Add(-10*time.Minute))
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 usage rows in window, got %d", count)
	}
}
