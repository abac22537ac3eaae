package user_test

import (
	"context"
	"testing"

	"github.com/returnaddress/returnaddress-backend/internal/data/repos/testutil"
	userrepo "github.com/returnaddress/returnaddress-backend/internal/data/repos/user"
	types "github.com/returnaddress/returnaddress-backend/internal/domain"
)

func TestGetOrCreateByEmailIsIdempotent(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	repo := userrepo.NewUserRepo(db, testutil.Logger(t))
	ctx := context.Background()

	anon := &types.User{
		Email:        "anon_abc@anon.returnaddress.local",
		Name:         "Anonymous",
		AuthProvider: types.AuthProviderAnonymous,
		AuthID:       "anon_abc",
	}
	first, err := repo.GetOrCreateByEmail(ctx, tx, anon)
	if err != nil {
		t.Fatalf("first get-or-create: %v", err)
	}

	again := &types.User{
		Email:        "anon_abc@anon.returnaddress.local",
		Name:         "Anonymous",
		AuthProvider: types.AuthProviderAnonymous,
		AuthID:       "anon_abc",
	}
	second, err := repo.GetOrCreateByEmail(ctx, tx, again)
	if err != nil {
		t.Fatalf("second get-or-create: %v", err)
	}

	if first.ID != second.ID {
		t.Fatalf("expected same row, got %s and %s", first.ID, second.ID)
	}
}

func TestEmailAndHandleExists(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	repo := userrepo.NewUserRepo(db, testutil.Logger(t))
	ctx := context.Background()

	testutil.SeedCreator(t, ctx, tx, "creator@example.com", "coach-carla")

	cases := []struct {
		name  string
		check func() (bool, error)
		want  bool
	}{
		{"existing email", func() (bool, error) { return repo.EmailExists(ctx, tx, "creator@example.com") }, true},
		{"missing email", func() (bool, error) { return repo.EmailExists(ctx, tx, "nobody@example.com") }, false},
		{"existing handle", func() (bool, error) { return repo.HandleExists(ctx, tx, "coach-carla") }, true},
		{"missing handle", func() (bool, error) { return repo.HandleExists(ctx, tx, "coach-bob") }, false},
	}
	for _, tc := range cases {
		got, err := tc.check()
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if got != tc.want {
			t.Fatalf("%s: got %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestUpdateCreatorProfile(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	repo := userrepo.NewUserRepo(db, testutil.Logger(t))
	ctx := context.Background()

	u := testutil.SeedUser(t, ctx, tx, "newcreator@example.com")
	if u.IsCreator {
		t.Fatalf("seed user should not be a creator yet")
	}

	if err := repo.UpdateCreatorProfile(ctx, tx, u.ID, "Carla", "coach-carla", "I coach."); err != nil {
		t.Fatalf("update creator profile: %v", err)
	}

	got, err := repo.GetByID(ctx, tx, u.ID)
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if !got.IsCreator {
		t.Fatalf("expected is_creator=true after onboarding")
	}
	if got.Handle == nil || *got.Handle != "coach-carla" {
		t.Fatalf("expected handle coach-carla, got %v", got.Handle)
	}
}

func TestSetStripeIDs(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	repo := userrepo.NewUserRepo(db, testutil.Logger(t))
	ctx := context.Background()

	u := testutil.SeedUser(t, ctx, tx, "payer@example.com")

	if err := repo.SetStripeCustomerID(ctx, tx, u.ID, "cus_123"); err != nil {
		t.Fatalf("set customer id: %v", err)
	}
	if err := repo.SetStripeAccountID(ctx, tx, u.ID, "acct_123"); err != nil {
		t.Fatalf("set account id: %v", err)
	}

	got, err := repo.GetByID(ctx, tx, u.ID)
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if got.StripeCustomerID != "cus_123" || got.StripeAccountID != "acct_123" {
		t.Fatalf("stripe ids not persisted: %+v", got)
	}
}
