package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/returnaddress/returnaddress-backend/internal/http/response"
	"github.com/returnaddress/returnaddress-backend/internal/observability"
	"github.com/returnaddress/returnaddress-backend/internal/platform/apierr"
	"github.com/returnaddress/returnaddress-backend/internal/platform/ctxutil"
	"github.com/returnaddress/returnaddress-backend/internal/platform/logger"
	"github.com/returnaddress/returnaddress-backend/internal/services"
)

const (
	anonCookieName   = "ra_anon_id"
	anonCookieMaxAge = 365 * 24 * 60 * 60
)

type InvokeHandler struct {
	log          *logger.Logger
	invoke       services.InvokeService
	identity     services.IdentityService
	metrics      *observability.Metrics
	secureCookie bool
}

func NewInvokeHandler(
	log *logger.Logger,
	invoke services.InvokeService,
	identity services.IdentityService,
	metrics *observability.Metrics,
	secureCookie bool,
) *InvokeHandler {
	return &InvokeHandler{
		log:          log.With("handler", "InvokeHandler"),
		invoke:       invoke,
		identity:     identity,
		metrics:      metrics,
		secureCookie: secureCookie,
	}
}

// Invoke resolves the caller (authenticated user or signed anonymous
// cookie), then runs the invocation pipeline.
func (ih *InvokeHandler) Invoke(c *gin.Context) {
	var req struct {
		Message string `json:"message"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Message) == "" {
		response.RespondErrorCode(c, http.StatusBadRequest, "message_required")
		return
	}

	callerID, userID, err := ih.resolveCaller(c)
	if err != nil {
		response.RespondError(c, err, "identity_failed")
		return
	}

	reply, err := ih.invoke.Invoke(c.Request.Context(), c.Param("slug"), req.Message, callerID, userID)
	if err != nil {
		ih.metrics.IncInvocation(invokeOutcome(err))
		response.RespondError(c, err, "invoke_failed")
		return
	}
	ih.metrics.IncInvocation("ok")
	response.RespondOK(c, gin.H{"message": reply})
}

// resolveCaller prefers the authenticated identity. Anonymous callers get
// a signed cookie; a missing or forged cookie is replaced with a fresh id
// rather than rejected.
func (ih *InvokeHandler) resolveCaller(c *gin.Context) (string, *uuid.UUID, error) {
	if id := ctxutil.GetIdentity(c.Request.Context()); id.Authenticated() {
		uid := id.UserID
		return uid.String(), &uid, nil
	}

	anonID := ""
	if raw, err := c.Cookie(anonCookieName); err == nil {
		if verified, ok := ih.identity.VerifyAnonID(raw); ok {
			anonID = verified
		}
	}
	if anonID == "" {
		minted := ih.identity.MintAnonID()
		ih.setAnonCookie(c, minted)
		anonID, _ = ih.identity.VerifyAnonID(minted)
	}

	if _, err := ih.identity.EnsureAnonUser(c.Request.Context(), anonID); err != nil {
		return "", nil, err
	}
	return anonID, nil, nil
}

func (ih *InvokeHandler) setAnonCookie(c *gin.Context, value string) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     anonCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   anonCookieMaxAge,
		HttpOnly: true,
		Secure:   ih.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

func invokeOutcome(err error) string {
	var apiErr *apierr.Error
	if errors.As(err, &apiErr) && apiErr.Code != "" {
		return apiErr.Code
	}
	return "error"
}
