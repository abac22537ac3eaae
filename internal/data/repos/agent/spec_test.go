package agent_test

import (
	"context"
	"testing"

	agentrepo "github.com/returnaddress/returnaddress-backend/internal/data/repos/agent"
	"github.com/returnaddress/returnaddress-backend/internal/data/repos/testutil"
	types "github.com/returnaddress/returnaddress-backend/internal/domain"
)

func TestMaxVersionStartsAtZero(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	repo := agentrepo.NewSpecRepo(db, testutil.Logger(t))
	ctx := context.Background()

	owner := testutil.SeedCreator(t, ctx, tx, "spec1@example.com", "spec-1")
	a := testutil.SeedAgent(t, ctx, tx, owner.ID, "spec-agent-1", types.AgentStatusDraft)

	max, err := repo.MaxVersion(ctx, tx, a.ID)
	if err != nil {
		t.Fatalf("max version: %v", err)
	}
	if max != 0 {
		t.Fatalf("expected 0 for agent with no specs, got %d", max)
	}
}

func TestVersionAppendKeepsSingleActive(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	repo := agentrepo.NewSpecRepo(db, testutil.Logger(t))
	ctx := context.Background()

	owner := testutil.SeedCreator(t, ctx, tx, "spec2@example.com", "spec-2")
	a := testutil.SeedAgent(t, ctx, tx, owner.ID, "spec-agent-2", types.AgentStatusDraft)

	testutil.SeedSpec(t, ctx, tx, a.ID, 1, true, nil)

	// Append v2 the way the service does: deactivate, then create active.
	if err := repo.DeactivateAll(ctx, tx, a.ID); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	max, err := repo.MaxVersion(ctx, tx, a.ID)
	if err != nil {
		t.Fatalf("max version: %v", err)
	}
	testutil.SeedSpec(t, ctx, tx, a.ID, max+1, true, nil)

	active, err := repo.GetActive(ctx, tx, a.ID)
	if err != nil {
		t.Fatalf("get active: %v", err)
	}
	if active.Version != 2 {
		t.Fatalf("expected active version 2, got %d", active.Version)
	}

	all, err := repo.ListByAgent(ctx, tx, a.ID)
	if err != nil {
		t.Fatalf("list by agent: %v", err)
	}
	activeCount := 0
	for _, s := range all {
		if s.IsActive {
			activeCount++
		}
	}
	if activeCount != 1 {
		t.Fatalf("expected exactly one active spec, got %d", activeCount)
	}
	if len(all) != 2 {
		t.Fatalf("expected both versions retained, got %d", len(all))
	}
}
