// Package handlers – webhook endpoint
//
// POST /webhook/whatsapp receives message events from the WhatsApp gateway
// and feeds them through the pipeline. Events the pipeline declines to act
// on are acknowledged with 200 so the gateway does not treat filtering as a
// failure; only malformed payloads and pipeline failures surface as errors.

package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cuneytkuscu/whatsapp-rag-bot/internal/http/middleware"
	"github.com/cuneytkuscu/whatsapp-rag-bot/internal/services"
)

// WebhookProcessor runs one gateway event through the pipeline.
type WebhookProcessor interface {
	Process(ctx context.Context, p *services.WebhookPayload) services.Result
}

// WebhookHandler exposes the gateway webhook.
type WebhookHandler struct {
	Pipeline WebhookProcessor
}

// webhookAccepted is the acknowledgement body for processed events.
type webhookAccepted struct {
	Status  string `json:"status"`
	Outcome string `json:"outcome"`
}

// Receive handles POST /webhook/whatsapp.
func (h *WebhookHandler) Receive(c *gin.Context) {
	var payload services.WebhookPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "malformed payload")
		return
	}

	res := h.Pipeline.Process(c.Request.Context(), &payload)
	middleware.ObserveOutcome(res.Outcome.String())

	switch res.Outcome {
	case services.OutcomeSent:
		ok(c, http.StatusOK, webhookAccepted{Status: "sent", Outcome: res.Outcome.String()})
	case services.OutcomeAnswerFailed:
		fail(c, http.StatusBadGateway, ErrCodeAnswerFailed, "failed to generate an answer")
	case services.OutcomeDeliveryFailed:
		fail(c, http.StatusBadGateway, ErrCodeDeliveryFailed, "failed to deliver the answer")
	default:
		// Filtered events are a normal disposition, not an error.
		ok(c, http.StatusOK, webhookAccepted{Status: "ignored", Outcome: res.Outcome.String()})
	}
}
