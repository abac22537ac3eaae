package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/returnaddress/returnaddress-backend/internal/data/repos"
	types "github.com/returnaddress/returnaddress-backend/internal/domain"
	"github.com/returnaddress/returnaddress-backend/internal/platform/logger"
)

const anonEmailDomain = "anon.returnaddress.local"

// IdentityService mints and verifies signed anonymous caller ids and
// materializes the placeholder user row behind them. Cookie plumbing lives
// in the HTTP layer; this service only deals in values.
type IdentityService interface {
	MintAnonID() string
	VerifyAnonID(value string) (string, bool)
	EnsureAnonUser(ctx context.Context, anonID string) (*types.User, error)
}

type identityService struct {
	log      *logger.Logger
	userRepo repos.UserRepo
	secret   []byte
}

func NewIdentityService(log *logger.Logger, userRepo repos.UserRepo, secret string) IdentityService {
	serviceLog := log.With("service", "IdentityService")
	return &identityService{
		log:      serviceLog,
		userRepo: userRepo,
		secret:   []byte(secret),
	}
}

// MintAnonID returns "anon_<uuid>.<hmac hex>". The signature stops callers
// from forging fresh ids to reset their trial counter by editing the cookie.
func (is *identityService) MintAnonID() string {
	id := "anon_" + uuid.NewString()
	return id + "." + is.sign(id)
}

func (is *identityService) VerifyAnonID(value string) (string, bool) {
	id, sig, ok := strings.Cut(value, ".")
	if !ok || !strings.HasPrefix(id, "anon_") {
		return "", false
	}
	want := is.sign(id)
	if subtle.ConstantTimeCompare([]byte(sig), []byte(want)) != 1 {
		return "", false
	}
	return id, true
}

// EnsureAnonUser get-or-creates the placeholder row keyed by the synthetic
// anonymous email.
func (is *identityService) EnsureAnonUser(ctx context.Context, anonID string) (*types.User, error) {
	u := &types.User{
		ID:           uuid.New(),
		Email:        fmt.Sprintf("%s@%s", anonID, anonEmailDomain),
		Name:         "Anonymous",
		AuthProvider: types.AuthProviderAnonymous,
		AuthID:       anonID,
	}
	got, err := is.userRepo.GetOrCreateByEmail(ctx, nil, u)
	if err != nil {
		return nil, fmt.Errorf("ensure anonymous user: %w", err)
	}
	return got, nil
}

func (is *identityService) sign(id string) string {
	mac := hmac.New(sha256.New, is.secret)
	mac.Write([]byte(id))
	return hex.EncodeToString(mac.Sum(nil))
}
