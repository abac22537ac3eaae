package testutil

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/returnaddress/returnaddress-backend/internal/agentspec"
	types "github.com/returnaddress/returnaddress-backend/internal/domain"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, email string) *types.User {
	tb.Helper()
	u := &types.User{
		ID:           uuid.New(),
		Email:        email,
		Password:     "pw",
		Name:         "Test User",
		AuthProvider: types.AuthProviderPassword,
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedCreator(tb testing.TB, ctx context.Context, tx *gorm.DB, email, handle string) *types.User {
	tb.Helper()
	u := &types.User{
		ID:              uuid.New(),
		Email:           email,
		Password:        "pw",
		Name:            "Test Creator",
		Handle:          &handle,
		AuthProvider:    types.AuthProviderPassword,
		IsCreator:       true,
		StripeAccountID: "acct_test",
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed creator: %v", err)
	}
	return u
}

func SeedAgent(tb testing.TB, ctx context.Context, tx *gorm.DB, ownerID uuid.UUID, slug, status string) *types.Agent {
	tb.Helper()
	a := &types.Agent{
		ID:      uuid.New(),
		OwnerID: ownerID,
		Slug:    slug,
		Status:  status,
	}
	if err := tx.WithContext(ctx).Create(a).Error; err != nil {
		tb.Fatalf("seed agent: %v", err)
	}
	return a
}

// SeedSpec stores a valid default-based spec as the given version. Callers
// mutate the returned document through the mutate hook before it is stored.
func SeedSpec(tb testing.TB, ctx context.Context, tx *gorm.DB, agentID uuid.UUID, version int, active bool, mutate func(*agentspec.Spec)) *types.AgentSpec {
	tb.Helper()
	s := agentspec.Default()
	s.Profile.Name = "Seeded Agent"
	s.Profile.Description = "Seeded for tests"
	if mutate != nil {
		mutate(&s)
	}
	raw, err := json.Marshal(s)
	if err != nil {
		tb.Fatalf("marshal seed spec: %v", err)
	}
	row := &types.AgentSpec{
		ID:       uuid.New(),
		AgentID:  agentID,
		Version:  version,
		Payload:  datatypes.JSON(raw),
		IsActive: active,
	}
	if err := tx.WithContext(ctx).Create(row).Error; err != nil {
		tb.Fatalf("seed agent spec: %v", err)
	}
	return row
}

func SeedMessage(tb testing.TB, ctx context.Context, tx *gorm.DB, agentID uuid.UUID, callerID, role string, createdAt time.Time) *types.Message {
	tb.Helper()
	m := &types.Message{
		ID:        uuid.New(),
		AgentID:   agentID,
		CallerID:  callerID,
		Role:      role,
		Content:   "hello",
		CreatedAt: createdAt,
	}
	if err := tx.WithContext(ctx).Create(m).Error; err != nil {
		tb.Fatalf("seed message: %v", err)
	}
	return m
}

func SeedSubscription(tb testing.TB, ctx context.Context, tx *gorm.DB, userID, agentID uuid.UUID, stripeID, status string) *types.Subscription {
	tb.Helper()
	s := &types.Subscription{
		ID:                   uuid.New(),
		UserID:               userID,
		AgentID:              agentID,
		StripeSubscriptionID: stripeID,
		StripeCustomerID:     "cus_test",
		Status:               status,
	}
	if err := tx.WithContext(ctx).Create(s).Error; err != nil {
		tb.Fatalf("seed subscription: %v", err)
	}
	return s
}

func SeedUsage(tb testing.TB, ctx context.Context, tx *gorm.DB, agentID uuid.UUID, callerID string, createdAt time.Time) *types.UsageLog {
	tb.Helper()
	u := &types.UsageLog{
		ID:        uuid.New(),
		AgentID:   agentID,
		CallerID:  callerID,
		CreatedAt: createdAt,
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed usage log: %v", err)
	}
	return u
}

func SeedChunk(tb testing.TB, ctx context.Context, tx *gorm.DB, agentID uuid.UUID, content string, createdAt time.Time) *types.KnowledgeChunk {
	tb.Helper()
	c := &types.KnowledgeChunk{
		ID:        uuid.New(),
		AgentID:   agentID,
		FileID:    "file_test",
		Content:   content,
		Metadata:  datatypes.JSON([]byte("{}")),
		CreatedAt: createdAt,
	}
	if err := tx.WithContext(ctx).Create(c).Error; err != nil {
		tb.Fatalf("seed knowledge chunk: %v", err)
	}
	return c
}

func PtrUUID(v uuid.UUID) *uuid.UUID { return &v }

func PtrTime(v time.Time) *time.Time { return &v }
