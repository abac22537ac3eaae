package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/returnaddress/returnaddress-backend/internal/http/response"
	"github.com/returnaddress/returnaddress-backend/internal/services"
)

type MarketplaceHandler struct {
	agentService services.AgentService
}

func NewMarketplaceHandler(agentService services.AgentService) *MarketplaceHandler {
	return &MarketplaceHandler{agentService: agentService}
}

func (mh *MarketplaceHandler) List(c *gin.Context) {
	entries, err := mh.agentService.Marketplace(c.Request.Context())
	if err != nil {
		response.RespondError(c, err, "marketplace_failed")
		return
	}
	response.RespondOK(c, gin.H{"agents": entries})
}

func (mh *MarketplaceHandler) PublicProfile(c *gin.Context) {
	entry, err := mh.agentService.PublicProfile(c.Request.Context(), c.Param("slug"))
	if err != nil {
		response.RespondError(c, err, "agent_load_failed")
		return
	}
	response.RespondOK(c, entry)
}
