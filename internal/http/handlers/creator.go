package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/returnaddress/returnaddress-backend/internal/agentspec"
	"github.com/returnaddress/returnaddress-backend/internal/http/response"
	"github.com/returnaddress/returnaddress-backend/internal/platform/ctxutil"
	"github.com/returnaddress/returnaddress-backend/internal/services"
)

type CreatorHandler struct {
	agentService   services.AgentService
	billingService services.BillingService
}

func NewCreatorHandler(agentService services.AgentService, billingService services.BillingService) *CreatorHandler {
	return &CreatorHandler{agentService: agentService, billingService: billingService}
}

func (ch *CreatorHandler) CreateAgent(c *gin.Context) {
	id := ctxutil.GetIdentity(c.Request.Context())
	var spec agentspec.Spec
	if err := c.ShouldBindJSON(&spec); err != nil {
		response.RespondErrorCode(c, http.StatusBadRequest, "invalid_request")
		return
	}
	agent, violations, err := ch.agentService.Create(c.Request.Context(), id.UserID, spec)
	if err != nil {
		response.RespondError(c, err, "agent_create_failed")
		return
	}
	if len(violations) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_spec", "violations": violations})
		return
	}
	response.RespondCreated(c, gin.H{"agentId": agent.ID.String(), "slug": agent.Slug})
}

func (ch *CreatorHandler) UpdateAgent(c *gin.Context) {
	id := ctxutil.GetIdentity(c.Request.Context())
	agentID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	var spec agentspec.Spec
	if err := c.ShouldBindJSON(&spec); err != nil {
		response.RespondErrorCode(c, http.StatusBadRequest, "invalid_request")
		return
	}
	violations, err := ch.agentService.Update(c.Request.Context(), id.UserID, agentID, spec)
	if err != nil {
		response.RespondError(c, err, "agent_update_failed")
		return
	}
	if len(violations) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_spec", "violations": violations})
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

func (ch *CreatorHandler) GetAgent(c *gin.Context) {
	id := ctxutil.GetIdentity(c.Request.Context())
	agentID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	detail, err := ch.agentService.Get(c.Request.Context(), id.UserID, agentID)
	if err != nil {
		response.RespondError(c, err, "agent_load_failed")
		return
	}
	response.RespondOK(c, detail)
}

func (ch *CreatorHandler) ListAgents(c *gin.Context) {
	id := ctxutil.GetIdentity(c.Request.Context())
	details, err := ch.agentService.ListByOwner(c.Request.Context(), id.UserID)
	if err != nil {
		response.RespondError(c, err, "agent_list_failed")
		return
	}
	response.RespondOK(c, gin.H{"agents": details})
}

func (ch *CreatorHandler) Analytics(c *gin.Context) {
	id := ctxutil.GetIdentity(c.Request.Context())
	agentID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	analytics, err := ch.agentService.Analytics(c.Request.Context(), id.UserID, agentID)
	if err != nil {
		response.RespondError(c, err, "analytics_failed")
		return
	}
	response.RespondOK(c, analytics)
}

func (ch *CreatorHandler) Publish(c *gin.Context) {
	id := ctxutil.GetIdentity(c.Request.Context())
	agentID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	if err := ch.agentService.Publish(c.Request.Context(), id.UserID, agentID); err != nil {
		response.RespondError(c, err, "publish_failed")
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

func (ch *CreatorHandler) Unpublish(c *gin.Context) {
	id := ctxutil.GetIdentity(c.Request.Context())
	agentID, ok := pathUUID(c, "id")
	if !ok {
		return
	}
	if err := ch.agentService.Unpublish(c.Request.Context(), id.UserID, agentID); err != nil {
		response.RespondError(c, err, "unpublish_failed")
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

func (ch *CreatorHandler) StripeConnect(c *gin.Context) {
	id := ctxutil.GetIdentity(c.Request.Context())
	url, err := ch.billingService.ConnectOnboard(c.Request.Context(), id.UserID)
	if err != nil {
		response.RespondError(c, err, "connect_failed")
		return
	}
	response.RespondOK(c, gin.H{"url": url})
}

func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.RespondErrorCode(c, http.StatusBadRequest, "invalid_id")
		return uuid.Nil, false
	}
	return id, true
}
