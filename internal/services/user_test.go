package services

import (
	"context"
	"testing"

	"github.com/returnaddress/returnaddress-backend/internal/data/repos/testutil"
)

func userFixture(t *testing.T) (UserService, *testFixture) {
	t.Helper()
	f := newTestFixture(t)
	svc := NewUserService(f.log, f.userRepo)
	return svc, f
}

func TestOnboardCreatorSetsProfile(t *testing.T) {
	svc, f := userFixture(t)
	ctx := context.Background()

	u := testutil.SeedUser(t, ctx, f.tx, "newcreator@example.com")
	if err := svc.OnboardCreator(ctx, u.ID, "  New Creator  ", "New-Creator", "I write agents."); err != nil {
		t.Fatalf("onboard: %v", err)
	}

	got, err := svc.Me(ctx, u.ID)
	if err != nil {
		t.Fatalf("me: %v", err)
	}
	if !got.IsCreator {
		t.Fatalf("expected creator flag after onboarding")
	}
	if got.Name != "New Creator" {
		t.Fatalf("name not trimmed: got=%q", got.Name)
	}
	if got.Handle == nil || *got.Handle != "new-creator" {
		t.Fatalf("handle not lowercased: got=%v", got.Handle)
	}
	if got.ShortBio != "I write agents." {
		t.Fatalf("unexpected bio: got=%q", got.ShortBio)
	}
}

func TestOnboardCreatorRejectsTakenHandle(t *testing.T) {
	svc, f := userFixture(t)
	ctx := context.Background()

	testutil.SeedCreator(t, ctx, f.tx, "first@example.com", "claimed")
	u := testutil.SeedUser(t, ctx, f.tx, "second@example.com")

	err := svc.OnboardCreator(ctx, u.ID, "Second", "claimed", "")
	requireAPIError(t, err, 409, "handle_taken")
}

func TestOnboardCreatorAllowsKeepingOwnHandle(t *testing.T) {
	svc, f := userFixture(t)
	ctx := context.Background()

	u := testutil.SeedCreator(t, ctx, f.tx, "stable@example.com", "stable-handle")
	if err := svc.OnboardCreator(ctx, u.ID, "Renamed", "stable-handle", "updated bio"); err != nil {
		t.Fatalf("re-onboard with own handle: %v", err)
	}

	got, err := svc.Me(ctx, u.ID)
	if err != nil {
		t.Fatalf("me: %v", err)
	}
	if got.Name != "Renamed" || got.ShortBio != "updated bio" {
		t.Fatalf("profile not updated: name=%q bio=%q", got.Name, got.ShortBio)
	}
}

func TestOnboardCreatorValidatesInput(t *testing.T) {
	svc, f := userFixture(t)
	ctx := context.Background()

	u := testutil.SeedUser(t, ctx, f.tx, "invalid@example.com")

	err := svc.OnboardCreator(ctx, u.ID, "   ", "ok-handle", "")
	requireAPIError(t, err, 400, "name_required")

	err = svc.OnboardCreator(ctx, u.ID, "Name", "Bad Handle!", "")
	requireAPIError(t, err, 400, "invalid_handle")

	err = svc.OnboardCreator(ctx, u.ID, "Name", "", "")
	requireAPIError(t, err, 400, "invalid_handle")
}
