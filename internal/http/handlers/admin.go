package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/returnaddress/returnaddress-backend/internal/http/response"
	"github.com/returnaddress/returnaddress-backend/internal/services"
)

type AdminHandler struct {
	agentService services.AgentService
}

func NewAdminHandler(agentService services.AgentService) *AdminHandler {
	return &AdminHandler{agentService: agentService}
}

func (ah *AdminHandler) SuspendAgent(c *gin.Context) {
	agentID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	if err := ah.agentService.Suspend(c.Request.Context(), agentID); err != nil {
		response.RespondError(c, err, "suspend_failed")
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}
