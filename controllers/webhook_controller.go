package controllers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yashrajoria/stripe-bridge/common/logger"
	"github.com/yashrajoria/stripe-bridge/webhook"
)

// DefaultMaxBodyBytes caps webhook payloads. Stripe events are well under
// this.
const DefaultMaxBodyBytes int64 = 1 << 20

// RequestHandler is satisfied by *webhook.Receiver.
type RequestHandler interface {
	HandleRequest(ctx context.Context, payload []byte, signatureHeader string) webhook.Outcome
}

type WebhookController struct {
	receiver     RequestHandler
	maxBodyBytes int64
	logger       *zap.Logger
}

func NewWebhookController(receiver RequestHandler, maxBodyBytes int64, log *zap.Logger) *WebhookController {
	if maxBodyBytes <= 0 {
		maxBodyBytes = DefaultMaxBodyBytes
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &WebhookController{receiver: receiver, maxBodyBytes: maxBodyBytes, logger: log}
}

// Receive reads the raw body, since the signature covers the exact bytes
// Stripe sent, and hands it to the receiver.
func (wc *WebhookController) Receive(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, wc.maxBodyBytes))
	if err != nil {
		log := logger.WithRequestID(c.Request.Context(), wc.logger)
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			log.Warn("Webhook payload too large", zap.Int64("limit", tooLarge.Limit))
			c.JSON(http.StatusBadRequest, gin.H{"error": "Payload too large"})
			return
		}
		log.Warn("Failed to read webhook body", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unable to read request body"})
		return
	}

	outcome := wc.receiver.HandleRequest(c.Request.Context(), body, c.GetHeader(webhook.SignatureHeader))
	c.JSON(outcome.Status, outcome.Body())
}
