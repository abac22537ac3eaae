package services

import (
	"context"
	"strings"
	"testing"
)

func TestAnonIDRoundTrip(t *testing.T) {
	f := newTestFixture(t)
	svc := NewIdentityService(f.log, f.userRepo, "test-secret")

	value := svc.MintAnonID()
	if !strings.HasPrefix(value, "anon_") {
		t.Fatalf("minted id missing anon_ prefix: %q", value)
	}

	id, ok := svc.VerifyAnonID(value)
	if !ok {
		t.Fatalf("freshly minted id failed verification")
	}
	if !strings.HasPrefix(id, "anon_") || strings.Contains(id, ".") {
		t.Fatalf("unexpected verified id %q", id)
	}
}

func TestAnonIDRejectsTampering(t *testing.T) {
	f := newTestFixture(t)
	svc := NewIdentityService(f.log, f.userRepo, "test-secret")

	value := svc.MintAnonID()
	id, sig, _ := strings.Cut(value, ".")

	cases := []struct {
		name  string
		value string
	}{
		{"swapped id", "anon_ffffffff-ffff-ffff-ffff-ffffffffffff." + sig},
		{"swapped signature", id + "." + strings.Repeat("0", len(sig))},
		{"no signature", id},
		{"wrong prefix", "user_abc." + sig},
		{"empty", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, ok := svc.VerifyAnonID(tc.value); ok {
				t.Fatalf("tampered value %q verified", tc.value)
			}
		})
	}
}

func TestAnonIDSecretScopesSignature(t *testing.T) {
	f := newTestFixture(t)
	a := NewIdentityService(f.log, f.userRepo, "secret-a")
	b := NewIdentityService(f.log, f.userRepo, "secret-b")

	value := a.MintAnonID()
	if _, ok := b.VerifyAnonID(value); ok {
		t.Fatalf("id signed with one secret verified with another")
	}
}

func TestEnsureAnonUserIsStable(t *testing.T) {
	f := newTestFixture(t)
	svc := NewIdentityService(f.log, f.userRepo, "test-secret")
	ctx := context.Background()

	first, err := svc.EnsureAnonUser(ctx, "anon_stable")
	if err != nil {
		t.Fatalf("first ensure: %v", err)
	}
	second, err := svc.EnsureAnonUser(ctx, "anon_stable")
	if err != nil {
		t.Fatalf("second ensure: %v", err)
	}

	if first.ID != second.ID {
		t.Fatalf("anonymous identity not stable across requests")
	}
	if first.Email != "anon_stable@anon.returnaddress.local" {
		t.Fatalf("unexpected synthetic email %q", first.Email)
	}
	if first.AuthProvider != "anonymous" {
		t.Fatalf("unexpected auth provider %q", first.AuthProvider)
	}
}
