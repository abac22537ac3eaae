package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/returnaddress/returnaddress-backend/internal/data/db"
	"github.com/returnaddress/returnaddress-backend/internal/http/response"
)

type HealthHandler struct {
	pg *db.PostgresService
}

func NewHealthHandler(pg *db.PostgresService) *HealthHandler {
	return &HealthHandler{pg: pg}
}

func (h *HealthHandler) HealthCheck(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

func (h *HealthHandler) DBHealth(c *gin.Context) {
	if h.pg == nil {
		response.RespondErrorCode(c, http.StatusServiceUnavailable, "db_unavailable")
		return
	}
	if err := h.pg.Ping(); err != nil {
		response.RespondErrorCode(c, http.StatusServiceUnavailable, "db_unavailable")
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}
