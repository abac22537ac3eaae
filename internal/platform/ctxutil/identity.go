package ctxutil

import (
	"context"

	"github.com/google/uuid"
)

type identityKey struct{}

// Identity is the resolved caller for a request. UserID is set only for
// authenticated callers; CallerID is always set once the identity resolver
// has run (user id for authenticated callers, anon id otherwise).
type Identity struct {
	UserID    uuid.UUID
	CallerID  string
	Email     string
	IsCreator bool
}

func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

func GetIdentity(ctx context.Context) *Identity {
	if ctx == nil {
		return nil
	}
	id, _ := ctx.Value(identityKey{}).(*Identity)
	return id
}

func (i *Identity) Authenticated() bool {
	return i != nil && i.UserID != uuid.Nil
}
