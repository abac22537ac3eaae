package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	types "github.com/returnaddress/returnaddress-backend/internal/domain"
	"github.com/returnaddress/returnaddress-backend/internal/platform/apierr"
	"github.com/returnaddress/returnaddress-backend/internal/platform/ctxutil"
	"github.com/returnaddress/returnaddress-backend/internal/platform/logger"
)

type fakeInvoke struct {
	lastSlug     string
	lastMessage  string
	lastCallerID string
	lastUserID   *uuid.UUID
	reply        string
	err          error
}

func (f *fakeInvoke) Invoke(_ context.Context, slug, userMessage, callerID string, userID *uuid.UUID) (string, error) {
	f.lastSlug = slug
	f.lastMessage = userMessage
	f.lastCallerID = callerID
	f.lastUserID = userID
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

type fakeIdentity struct {
	minted  int
	ensured []string
}

func (f *fakeIdentity) MintAnonID() string {
	f.minted++
	return "anon_minted.sig"
}

func (f *fakeIdentity) VerifyAnonID(value string) (string, bool) {
	id, sig, ok := strings.Cut(value, ".")
	if !ok || sig != "sig" || !strings.HasPrefix(id, "anon_") {
		return "", false
	}
	return id, true
}

func (f *fakeIdentity) EnsureAnonUser(_ context.Context, anonID string) (*types.User, error) {
	f.ensured = append(f.ensured, anonID)
	return &types.User{ID: uuid.New()}, nil
}

func invokeRouter(t *testing.T, inv *fakeInvoke, ident *fakeIdentity, identity *ctxutil.Identity) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log, err := logger.New("development")
	require.NoError(t, err)

	h := NewInvokeHandler(log, inv, ident, nil, false)
	r := gin.New()
	r.POST("/api/agents/:slug/invoke", func(c *gin.Context) {
		if identity != nil {
			c.Request = c.Request.WithContext(ctxutil.WithIdentity(c.Request.Context(), identity))
		}
		h.Invoke(c)
	})
	return r
}

func TestInvokeMintsAnonCookieForNewCallers(t *testing.T) {
	inv := &fakeInvoke{reply: "hello"}
	ident := &fakeIdentity{}
	r := invokeRouter(t, inv, ident, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/agents/tax-helper/invoke",
		strings.NewReader(`{"message":"hi"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"message":"hello"}`, rec.Body.String())
	require.Equal(t, 1, ident.minted)
	require.Equal(t, "anon_minted", inv.lastCallerID)
	require.Nil(t, inv.lastUserID)

	var cookie *http.Cookie
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == "ra_anon_id" {
			cookie = ck
		}
	}
	require.NotNil(t, cookie, "anon cookie not set")
	require.True(t, cookie.HttpOnly)
	require.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
}

func TestInvokeReusesValidAnonCookie(t *testing.T) {
	inv := &fakeInvoke{reply: "hello"}
	ident := &fakeIdentity{}
	r := invokeRouter(t, inv, ident, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/agents/tax-helper/invoke",
		strings.NewReader(`{"message":"hi"}`))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(&http.Cookie{Name: "ra_anon_id", Value: "anon_existing.sig"})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Zero(t, ident.minted, "valid cookie should not be replaced")
	require.Equal(t, "anon_existing", inv.lastCallerID)
}

func TestInvokeReplacesForgedCookie(t *testing.T) {
	inv := &fakeInvoke{reply: "hello"}
	ident := &fakeIdentity{}
	r := invokeRouter(t, inv, ident, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/agents/tax-helper/invoke",
		strings.NewReader(`{"message":"hi"}`))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(&http.Cookie{Name: "ra_anon_id", Value: "anon_forged.badsig"})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 1, ident.minted)
	require.Equal(t, "anon_minted", inv.lastCallerID)
}

func TestInvokePrefersAuthenticatedIdentity(t *testing.T) {
	inv := &fakeInvoke{reply: "hello"}
	ident := &fakeIdentity{}
	userID := uuid.New()
	r := invokeRouter(t, inv, ident, &ctxutil.Identity{UserID: userID, CallerID: userID.String()})

	req := httptest.NewRequest(http.MethodPost, "/api/agents/tax-helper/invoke",
		strings.NewReader(`{"message":"hi"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Zero(t, ident.minted)
	require.Empty(t, ident.ensured)
	require.Equal(t, userID.String(), inv.lastCallerID)
	require.NotNil(t, inv.lastUserID)
	require.Equal(t, userID, *inv.lastUserID)
}

func TestInvokeMapsServiceErrorsToFlatBody(t *testing.T) {
	inv := &fakeInvoke{err: apierr.New(http.StatusPaymentRequired, "subscription_required", nil)}
	ident := &fakeIdentity{}
	r := invokeRouter(t, inv, ident, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/agents/tax-helper/invoke",
		strings.NewReader(`{"message":"hi"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusPaymentRequired, rec.Code)
	require.JSONEq(t, `{"error":"subscription_required"}`, rec.Body.String())
}

func TestInvokeRejectsEmptyMessage(t *testing.T) {
	inv := &fakeInvoke{reply: "hello"}
	ident := &fakeIdentity{}
	r := invokeRouter(t, inv, ident, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/agents/tax-helper/invoke",
		strings.NewReader(`{"message":"   "}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.JSONEq(t, `{"error":"message_required"}`, rec.Body.String())
}
