package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/returnaddress/returnaddress-backend/internal/http/response"
	"github.com/returnaddress/returnaddress-backend/internal/observability"
	"github.com/returnaddress/returnaddress-backend/internal/platform/ctxutil"
	"github.com/returnaddress/returnaddress-backend/internal/platform/logger"
	"github.com/returnaddress/returnaddress-backend/internal/services"
)

// Stripe caps event payloads well below this; larger bodies are noise.
const webhookBodyLimit = 1 << 16

type BillingHandler struct {
	log            *logger.Logger
	billingService services.BillingService
	metrics        *observability.Metrics
}

func NewBillingHandler(log *logger.Logger, billingService services.BillingService, metrics *observability.Metrics) *BillingHandler {
	return &BillingHandler{
		log:            log.With("handler", "BillingHandler"),
		billingService: billingService,
		metrics:        metrics,
	}
}

func (bh *BillingHandler) Subscribe(c *gin.Context) {
	id := ctxutil.GetIdentity(c.Request.Context())
	if !id.Authenticated() {
		response.RespondErrorCode(c, http.StatusUnauthorized, "unauthorized")
		return
	}
	url, err := bh.billingService.Subscribe(c.Request.Context(), id.UserID, c.Param("slug"))
	if err != nil {
		response.RespondError(c, err, "subscribe_failed")
		return
	}
	response.RespondOK(c, gin.H{"url": url})
}

func (bh *BillingHandler) Webhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, webhookBodyLimit))
	if err != nil {
		response.RespondErrorCode(c, http.StatusBadRequest, "invalid_payload")
		return
	}
	sig := c.GetHeader("Stripe-Signature")

	if err := bh.billingService.HandleWebhook(c.Request.Context(), payload, sig); err != nil {
		bh.metrics.IncWebhookEvent(eventTypeOf(payload), "error")
		bh.log.Warn("stripe webhook rejected", "error", err)
		response.RespondError(c, err, "webhook_failed")
		return
	}
	bh.metrics.IncWebhookEvent(eventTypeOf(payload), "ok")
	response.RespondOK(c, gin.H{"received": true})
}

func eventTypeOf(payload []byte) string {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(payload, &probe); err != nil || probe.Type == "" {
		return "unknown"
	}
	return probe.Type
}
