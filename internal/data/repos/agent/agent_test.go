package agent_test

import (
	"context"
	"errors"
	"testing"
	"time"

	agentrepo "github.com/returnaddress/returnaddress-backend/internal/data/repos/agent"
	"github.com/returnaddress/returnaddress-backend/internal/data/repos/testutil"
	types "github.com/returnaddress/returnaddress-backend/internal/domain"
	"gorm.io/gorm"
)

func TestGetPublishedBySlugFiltersStatus(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	repo := agentrepo.NewAgentRepo(db, testutil.Logger(t))
	ctx := context.Background()

	owner := testutil.SeedCreator(t, ctx, tx, "owner@example.com", "owner-1")
	testutil.SeedAgent(t, ctx, tx, owner.ID, "draft-agent", types.AgentStatusDraft)
	testutil.SeedAgent(t, ctx, tx, owner.ID, "live-agent", types.AgentStatusPublished)
	testutil.SeedAgent(t, ctx, tx, owner.ID, "banned-agent", types.AgentStatusSuspended)

	if _, err := repo.GetPublishedBySlug(ctx, tx, "live-agent"); err != nil {
		t.Fatalf("published agent should resolve: %v", err)
	}

	for _, slug := range []string{"draft-agent", "banned-agent", "missing-agent"} {
		_, err := repo.GetPublishedBySlug(ctx, tx, slug)
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			t.Fatalf("slug %q: expected ErrRecordNotFound, got %v", slug, err)
		}
	}
}

func TestSlugExists(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	repo := agentrepo.NewAgentRepo(db, testutil.Logger(t))
	ctx := context.Background()

	owner := testutil.SeedCreator(t, ctx, tx, "owner2@example.com", "owner-2")
	testutil.SeedAgent(t, ctx, tx, owner.ID, "taken-slug", types.AgentStatusDraft)

	exists, err := repo.SlugExists(ctx, tx, "taken-slug")
	if err != nil {
		t.Fatalf("slug exists: %v", err)
	}
	if !exists {
		t.Fatalf("expected taken-slug to exist")
	}

	exists, err = repo.SlugExists(ctx, tx, "free-slug")
	if err != nil {
		t.Fatalf("slug exists: %v", err)
	}
	if exists {
		t.Fatalf("expected free-slug to be free")
	}
}

func TestUpdateStatus(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	repo := agentrepo.NewAgentRepo(db, testutil.Logger(t))
	ctx := context.Background()

	owner := testutil.SeedCreator(t, ctx, tx, "owner3@example.com", "owner-3")
	a := testutil.SeedAgent(t, ctx, tx, owner.ID, "status-agent", types.AgentStatusDraft)

	if err := repo.UpdateStatus(ctx, tx, a.ID, types.AgentStatusPublished); err != nil {
		t.Fatalf("update status: %v", err)
	}

	got, err := repo.GetByID(ctx, tx, a.ID)
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if got.Status != types.AgentStatusPublished {
		t.Fatalf("expected published, got %s", got.Status)
	}
}

func TestListByOwnerNewestFirst(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	repo := agentrepo.NewAgentRepo(db, testutil.Logger(t))
	ctx := context.Background()

	owner := testutil.SeedCreator(t, ctx, tx, "owner4@example.com", "owner-4")
	other := testutil.SeedCreator(t, ctx, tx, "other@example.com", "other-1")

	old := testutil.SeedAgent(t, ctx, tx, owner.ID, "older-agent", types.AgentStatusDraft)
	old.CreatedAt = time.Now().Add(-time.Hour)
	if err := tx.Save(old).Error; err != nil {
		t.Fatalf("backdate agent: %v", err)
	}
	newer := testutil.SeedAgent(t, ctx, tx, owner.ID, "newer-agent", types.AgentStatusDraft)
	testutil.SeedAgent(t, ctx, tx, other.ID, "unrelated-agent", types.AgentStatusDraft)

	got, err := repo.ListByOwner(ctx, tx, owner.ID)
	if err != nil {
		t.Fatalf("list by owner: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 agents, got %d", len(got))
	}
	if got[0].ID != newer.ID {
		t.Fatalf("expected newest first")
	}
}
