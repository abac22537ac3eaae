package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/returnaddress/returnaddress-backend/internal/http/response"
	"github.com/returnaddress/returnaddress-backend/internal/platform/ctxutil"
	"github.com/returnaddress/returnaddress-backend/internal/platform/logger"
	"github.com/returnaddress/returnaddress-backend/internal/services"
)

type AuthMiddleware struct {
	log         *logger.Logger
	authService services.AuthService
	userService services.UserService
	adminEmails map[string]struct{}
}

func NewAuthMiddleware(log *logger.Logger, authService services.AuthService, userService services.UserService, adminEmails []string) *AuthMiddleware {
	middlewareLog := log.With("middleware", "AuthMiddleware")
	admins := make(map[string]struct{}, len(adminEmails))
	for _, e := range adminEmails {
		e = strings.ToLower(strings.TrimSpace(e))
		if e != "" {
			admins[e] = struct{}{}
		}
	}
	return &AuthMiddleware{
		log:         middlewareLog,
		authService: authService,
		userService: userService,
		adminEmails: admins,
	}
}

// RequireAuth rejects requests without a valid bearer token and attaches
// the resolved identity to the request context.
func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractBearerToken(c)
		if tokenString == "" {
			response.RespondErrorCode(c, http.StatusUnauthorized, "unauthorized")
			c.Abort()
			return
		}
		if !am.attachIdentity(c, tokenString) {
			return
		}
		c.Next()
	}
}

// OptionalAuth attaches an identity when a valid bearer token is present
// and lets anonymous requests through untouched. A token that is present
// but invalid is still a 401: silently downgrading it to anonymous would
// hide expiry from the client.
func (am *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractBearerToken(c)
		if tokenString == "" {
			c.Next()
			return
		}
		if !am.attachIdentity(c, tokenString) {
			return
		}
		c.Next()
	}
}

// RequireCreator assumes RequireAuth already ran.
func (am *AuthMiddleware) RequireCreator() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := ctxutil.GetIdentity(c.Request.Context())
		if !id.Authenticated() {
			response.RespondErrorCode(c, http.StatusUnauthorized, "unauthorized")
			c.Abort()
			return
		}
		if !id.IsCreator {
			response.RespondErrorCode(c, http.StatusForbidden, "creator_required")
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAdmin gates on the configured admin allowlist.
func (am *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := ctxutil.GetIdentity(c.Request.Context())
		if !id.Authenticated() {
			response.RespondErrorCode(c, http.StatusUnauthorized, "unauthorized")
			c.Abort()
			return
		}
		if _, ok := am.adminEmails[strings.ToLower(id.Email)]; !ok {
			am.log.Warn("admin route denied", "user_id", id.UserID.String())
			response.RespondErrorCode(c, http.StatusForbidden, "forbidden")
			c.Abort()
			return
		}
		c.Next()
	}
}

func (am *AuthMiddleware) attachIdentity(c *gin.Context, tokenString string) bool {
	userID, err := am.authService.ParseAccessToken(tokenString)
	if err != nil {
		response.RespondErrorCode(c, http.StatusUnauthorized, "invalid_token")
		c.Abort()
		return false
	}
	u, err := am.userService.Me(c.Request.Context(), userID)
	if err != nil {
		response.RespondErrorCode(c, http.StatusUnauthorized, "unauthorized")
		c.Abort()
		return false
	}
	ctx := ctxutil.WithIdentity(c.Request.Context(), &ctxutil.Identity{
		UserID:    u.ID,
		CallerID:  u.ID.String(),
		Email:     u.Email,
		IsCreator: u.IsCreator,
	})
	c.Request = c.Request.WithContext(ctx)
	return true
}

func extractBearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return ""
}
