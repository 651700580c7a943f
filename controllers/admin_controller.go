package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v80"
	"go.uber.org/zap"

	"github.com/yashrajoria/stripe-bridge/common/auth"
	apperrors "github.com/yashrajoria/stripe-bridge/common/errors"
	"github.com/yashrajoria/stripe-bridge/common/logger"
	"github.com/yashrajoria/stripe-bridge/models"
	"github.com/yashrajoria/stripe-bridge/webhook"
)

// EventFetcher is satisfied by *services.EventService.
type EventFetcher interface {
	Get(ctx context.Context, id string) (*stripe.Event, error)
}

// ReplayAdmin is the part of *webhook.Receiver the admin endpoints drive.
type ReplayAdmin interface {
	IsReplay(ctx context.Context, eventID string) (bool, error)
	ClearProcessed(ctx context.Context, eventID string) error
	Reprocess(ctx context.Context, evt *stripe.Event) webhook.Outcome
}

// AdminController exposes replay-marker maintenance. Errors are pushed onto
// the gin context and rendered by apperrors.ErrorMiddleware.
type AdminController struct {
	events   EventFetcher
	receiver ReplayAdmin
	logger   *zap.Logger
}

func NewAdminController(events EventFetcher, receiver ReplayAdmin, log *zap.Logger) *AdminController {
	if log == nil {
		log = zap.NewNop()
	}
	return &AdminController{events: events, receiver: receiver, logger: log}
}

// Reprocess fetches the event from Stripe and runs it through the handlers
// again, even if it was already processed.
func (ac *AdminController) Reprocess(c *gin.Context) {
	id := c.Param("id")
	evt, err := ac.events.Get(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}

	logger.WithRequestID(c.Request.Context(), ac.logger).Info("Admin reprocess requested",
		zap.String("event_id", id),
		zap.String("subject", c.GetString(auth.SubjectKey)),
	)

	outcome := ac.receiver.Reprocess(c.Request.Context(), evt)
	resp := models.ReprocessResponse{EventID: evt.ID, Type: string(evt.Type), Status: outcome.Status}
	if outcome.Err != nil {
		if msg, ok := outcome.Body()["error"].(string); ok {
			resp.Error = msg
		}
	}
	c.JSON(outcome.Status, resp)
}

func (ac *AdminController) Status(c *gin.Context) {
	id := c.Param("id")
	processed, err := ac.receiver.IsReplay(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(apperrors.New(http.StatusInternalServerError, "Replay store unavailable", err))
		return
	}
	c.JSON(http.StatusOK, models.EventStatusResponse{EventID: id, Processed: processed})
}

// Clear forgets the processed marker so the next delivery is dispatched.
func (ac *AdminController) Clear(c *gin.Context) {
	id := c.Param("id")
	if err := ac.receiver.ClearProcessed(c.Request.Context(), id); err != nil {
		_ = c.Error(apperrors.New(http.StatusInternalServerError, "Replay store unavailable", err))
		return
	}
	logger.WithRequestID(c.Request.Context(), ac.logger).Info("Processed marker cleared",
		zap.String("event_id", id),
		zap.String("subject", c.GetString(auth.SubjectKey)),
	)
	c.Status(http.StatusNoContent)
}
