package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/returnaddress/returnaddress-backend/internal/http/response"
	"github.com/returnaddress/returnaddress-backend/internal/platform/ctxutil"
	"github.com/returnaddress/returnaddress-backend/internal/services"
)

type UserHandler struct {
	userService services.UserService
}

func NewUserHandler(userService services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

func (uh *UserHandler) GetMe(c *gin.Context) {
	id := ctxutil.GetIdentity(c.Request.Context())
	if !id.Authenticated() {
		response.RespondErrorCode(c, http.StatusUnauthorized, "unauthorized")
		return
	}
	u, err := uh.userService.Me(c.Request.Context(), id.UserID)
	if err != nil {
		response.RespondError(c, err, "user_load_failed")
		return
	}
	handle := ""
	if u.Handle != nil {
		handle = *u.Handle
	}
	response.RespondOK(c, gin.H{
		"id":         u.ID.String(),
		"email":      u.Email,
		"name":       u.Name,
		"handle":     handle,
		"short_bio":  u.ShortBio,
		"is_creator": u.IsCreator,
	})
}

func (uh *UserHandler) OnboardCreator(c *gin.Context) {
	id := ctxutil.GetIdentity(c.Request.Context())
	if !id.Authenticated() {
		response.RespondErrorCode(c, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req struct {
		Name     string `json:"name"`
		Handle   string `json:"handle"`
		ShortBio string `json:"short_bio"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondErrorCode(c, http.StatusBadRequest, "invalid_request")
		return
	}
	if err := uh.userService.OnboardCreator(c.Request.Context(), id.UserID, req.Name, req.Handle, req.ShortBio); err != nil {
		response.RespondError(c, err, "onboarding_failed")
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}
