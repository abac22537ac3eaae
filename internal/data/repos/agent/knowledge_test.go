package agent_test

import (
	"context"
	"testing"
	"time"

	agentrepo "github.com/returnaddress/returnaddress-backend/internal/data/repos/agent"
	"github.com/returnaddress/returnaddress-backend/internal/data/repos/testutil"
	types "github.com/returnaddress/returnaddress-backend/internal/domain"
)

func TestSearchSubstringCaseInsensitiveNewestFirst(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	repo := agentrepo.NewKnowledgeRepo(db, testutil.Logger(t))
	ctx := context.Background()

	owner := testutil.SeedCreator(t, ctx, tx, "know1@example.com", "know-1")
	a := testutil.SeedAgent(t, ctx, tx, owner.ID, "know-agent-1", types.AgentStatusPublished)

	now := time.Now().UTC()
	testutil.SeedChunk(t, ctx, tx, a.ID, "Standard DEDUCTION rules for 2024", now.Add(-2*time.Hour))
	newest := testutil.SeedChunk(t, ctx, tx, a.ID, "deduction limits for home offices", now.Add(-time.Hour))
	testutil.SeedChunk(t, ctx, tx, a.ID, "filing deadlines", now)

	got, err := repo.SearchSubstring(ctx, tx, a.ID, "Deduction", 5)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(got))
	}
	if got[0].ID != newest.ID {
		t.Fatalf("expected newest match first")
	}
}

func TestSearchSubstringTreatsWildcardsAsLiterals(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	repo := agentrepo.NewKnowledgeRepo(db, testutil.Logger(t))
	ctx := context.Background()

	owner := testutil.SeedCreator(t, ctx, tx, "know3@example.com", "know-3")
	a := testutil.SeedAgent(t, ctx, tx, owner.ID, "know-agent-4", types.AgentStatusPublished)

	now := time.Now().UTC()
	percent := testutil.SeedChunk(t, ctx, tx, a.ID, "Returns accepted on 100% cotton items", now.Add(-2*time.Minute))
	underscore := testutil.SeedChunk(t, ctx, tx, a.ID, "internal code order_id explained", now.Add(-time.Minute))
	testutil.SeedChunk(t, ctx, tx, a.ID, "plain chunk with no wildcards", now)

	// A lone % must not match every chunk.
	got, err := repo.SearchSubstring(ctx, tx, a.ID, "100%", 5)
	if err != nil {
		t.Fatalf("search percent: %v", err)
	}
	if len(got) != 1 || got[0].ID != percent.ID {
		t.Fatalf("expected only the literal %% chunk, got %d results", len(got))
	}

	// _ matches a literal underscore, not any single character.
	got, err = repo.SearchSubstring(ctx, tx, a.ID, "order_id", 5)
	if err != nil {
		t.Fatalf("search underscore: %v", err)
	}
	if len(got) != 1 || got[0].ID != underscore.ID {
		t.Fatalf("expected only the literal _ chunk, got %d results", len(got))
	}

	got, err = repo.SearchSubstring(ctx, tx, a.ID, "%", 5)
	if err != nil {
		t.Fatalf("search lone percent: %v", err)
	}
	if len(got) != 1 || got[0].ID != percent.ID {
		t.Fatalf("lone %% acted as a wildcard: got %d results", len(got))
	}
}

func TestSearchSubstringHonorsLimitAndAgentScope(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	repo := agentrepo.NewKnowledgeRepo(db, testutil.Logger(t))
	ctx := context.Background()

	owner := testutil.SeedCreator(t, ctx, tx, "know2@example.com", "know-2")
	a := testutil.SeedAgent(t, ctx, tx, owner.ID, "know-agent-2", types.AgentStatusPublished)
	b := testutil.SeedAgent(t, ctx, tx, owner.ID, "know-agent-3", types.AgentStatusPublished)

	now := time.Now().UTC()
	for i := 0; i < 4; i++ {
		testutil.SeedChunk(t, ctx, tx, a.ID, "protein intake guidance", now.Add(time.Duration(-i)*time.Minute))
	}
	testutil.SeedChunk(t, ctx, tx, b.ID, "protein intake guidance", now)

	got, err := repo.SearchSubstring(ctx, tx, a.ID, "protein", 3)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected limit of 3, got %d", len(got))
	}
	for _, c := range got {
		if c.AgentID != a.ID {
			t.Fatalf("result leaked from another agent")
		}
	}
}
