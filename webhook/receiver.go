package webhook

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/stripe/stripe-go/v80"
	"go.uber.org/zap"

	apperrors "github.com/yashrajoria/stripe-bridge/common/errors"
	"github.com/yashrajoria/stripe-bridge/common/logger"
	awspkg "github.com/yashrajoria/stripe-bridge/pkg/aws"
	"github.com/yashrajoria/stripe-bridge/repository"
)

// DefaultReplayTTL is how long a processed marker is kept.
const DefaultReplayTTL = 24 * time.Hour

// HandlerError reports the handler that aborted a dispatch.
type HandlerError struct {
	EventType string
	EventID   string
	Index     int
	Err       error
}

func (e *HandlerError) Error() string {
	return fmt.Sprintf("handler %d for %s (%s) failed: %v", e.Index+1, e.EventType, e.EventID, e.Err)
}

func (e *HandlerError) Unwrap() error {
	return e.Err
}

// Outcome is the result of one delivery, ready to be written as an HTTP
// response.
type Outcome struct {
	Status    int
	Event     *stripe.Event
	Duplicate bool
	Err       error
}

// Body is {"received": true} on success, {"error": msg} otherwise.
func (o Outcome) Body() map[string]interface{} {
	if o.Err == nil {
		return map[string]interface{}{"received": true}
	}
	if appErr, ok := apperrors.As(o.Err); ok {
		return map[string]interface{}{"error": appErr.Message}
	}
	return map[string]interface{}{"error": o.Err.Error()}
}

// ReceiverConfig wires a Receiver. Only Store and Verifier are required.
type ReceiverConfig struct {
	Registry *Registry
	Verifier *Verifier
	Store    repository.ReplayStore
	TTL      time.Duration
	Metrics  awspkg.MetricsRecorder
	Logger   *zap.Logger
}

// Receiver authenticates deliveries, drops replays and dispatches to the
// registry. A marker is written before handlers run and is kept when they
// fail, so each event id is processed at most once per TTL window.
type Receiver struct {
	registry *Registry
	verifier *Verifier
	store    repository.ReplayStore
	ttl      time.Duration
	metrics  awspkg.MetricsRecorder
	logger   *zap.Logger
}

func NewReceiver(cfg ReceiverConfig) *Receiver {
	r := &Receiver{
		registry: cfg.Registry,
		verifier: cfg.Verifier,
		store:    cfg.Store,
		ttl:      cfg.TTL,
		metrics:  cfg.Metrics,
		logger:   cfg.Logger,
	}
	if r.registry == nil {
		r.registry = NewRegistry()
	}
	if r.ttl <= 0 {
		r.ttl = DefaultReplayTTL
	}
	if r.logger == nil {
		r.logger = zap.NewNop()
	}
	return r
}

func (r *Receiver) Registry() *Registry { return r.registry }

func (r *Receiver) On(eventType string, h Handler) { r.registry.On(eventType, h) }

func (r *Receiver) Off(eventType string) { r.registry.Off(eventType) }

func (r *Receiver) Subscribe(s Subscriber) { r.registry.Subscribe(s) }

func (r *Receiver) VerifySignature(ctx context.Context, payload []byte, header string) (*stripe.Event, error) {
	if r.verifier == nil {
		return nil, apperrors.NewAuthenticationError(ReasonMissingSecret, "Webhook secret is not configured", nil)
	}
	return r.verifier.Verify(ctx, payload, header)
}

func (r *Receiver) IsReplay(ctx context.Context, eventID string) (bool, error) {
	return r.store.Exists(ctx, eventID)
}

func (r *Receiver) MarkProcessed(ctx context.Context, eventID string) error {
	return r.store.SetWithTTL(ctx, eventID, r.ttl)
}

func (r *Receiver) ClearProcessed(ctx context.Context, eventID string) error {
	return r.store.Delete(ctx, eventID)
}

// Dispatch runs the handlers for evt.Type in registration order, stopping at
// the first failure. A panicking handler counts as a failure. When every
// handler succeeds the broadcast subscribers are notified; their errors are
// logged and never returned.
func (r *Receiver) Dispatch(ctx context.Context, evt *stripe.Event) error {
	if evt == nil {
		return apperrors.NewValidationError("event", "event is required")
	}
	eventType := string(evt.Type)

	for i, h := range r.registry.Handlers(eventType) {
		if err := invoke(ctx, h, evt); err != nil {
			return &HandlerError{EventType: eventType, EventID: evt.ID, Index: i, Err: err}
		}
	}

	r.broadcast(ctx, evt)
	return nil
}

func invoke(ctx context.Context, h Handler, evt *stripe.Event) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
	}()
	return h(ctx, evt)
}

func (r *Receiver) broadcast(ctx context.Context, evt *stripe.Event) {
	for _, s := range r.registry.Subscribers() {
		err := func() (err error) {
			defer func() {
				if p := recover(); p != nil {
					err = fmt.Errorf("panic: %v", p)
				}
			}()
			return s.Notify(ctx, evt)
		}()
		if err != nil {
			r.log(ctx).Error("Event subscriber failed",
				zap.String("event_id", evt.ID),
				zap.String("event_type", string(evt.Type)),
				zap.Error(err),
			)
			r.count(awspkg.MetricWebhookBroadcastError, evt)
		}
	}
}

// HandleRequest runs a raw delivery through verification, replay protection
// and dispatch, and maps the result to a status: 400 when the delivery is
// rejected, 200 for duplicates and successful dispatch, 500 otherwise.
func (r *Receiver) HandleRequest(ctx context.Context, payload []byte, signatureHeader string) Outcome {
	start := time.Now()
	r.count(awspkg.MetricWebhookReceived, nil)

	evt, err := r.VerifySignature(ctx, payload, signatureHeader)
	if err != nil {
		status := http.StatusBadRequest
		if !apperrors.IsKind(err, apperrors.KindAuthentication) {
			status = http.StatusInternalServerError
		}
		r.log(ctx).Warn("Rejected webhook delivery", zap.Int("status", status), zap.Error(err))
		r.count(awspkg.MetricWebhookRejected, nil)
		return Outcome{Status: status, Err: err}
	}

	out := r.process(ctx, evt)
	r.latency(evt, time.Since(start))
	return out
}

// Process handles an event that arrived already authenticated, such as one
// read from an event destination queue.
func (r *Receiver) Process(ctx context.Context, evt *stripe.Event) Outcome {
	r.count(awspkg.MetricWebhookReceived, evt)
	return r.process(ctx, evt)
}

// Reprocess clears the marker for evt and processes it again.
func (r *Receiver) Reprocess(ctx context.Context, evt *stripe.Event) Outcome {
	if evt == nil || evt.ID == "" {
		return Outcome{Status: http.StatusBadRequest, Err: apperrors.NewValidationError("event", "event id is required")}
	}
	if err := r.ClearProcessed(ctx, evt.ID); err != nil {
		return r.storeFailure(ctx, evt, err)
	}
	r.log(ctx).Info("Reprocessing event", zap.String("event_id", evt.ID), zap.String("event_type", string(evt.Type)))
	return r.process(ctx, evt)
}

func (r *Receiver) process(ctx context.Context, evt *stripe.Event) Outcome {
	if evt == nil || evt.ID == "" {
		return Outcome{Status: http.StatusBadRequest, Err: apperrors.NewValidationError("event", "event id is required")}
	}
	log := r.log(ctx).With(
		zap.String("event_id", evt.ID),
		zap.String("event_type", string(evt.Type)),
	)

	claimed, err := r.claim(ctx, evt.ID)
	if err != nil {
		return r.storeFailure(ctx, evt, err)
	}
	if !claimed {
		log.Info("Skipping duplicate webhook event")
		r.count(awspkg.MetricWebhookDuplicate, evt)
		return Outcome{Status: http.StatusOK, Event: evt, Duplicate: true}
	}

	log.Info("Processing Stripe webhook")
	if err := r.Dispatch(ctx, evt); err != nil {
		log.Error("Webhook handler failed", zap.Error(err))
		r.count(awspkg.MetricWebhookHandlerFailed, evt)
		return Outcome{Status: http.StatusInternalServerError, Event: evt, Err: err}
	}

	r.count(awspkg.MetricWebhookDispatched, evt)
	return Outcome{Status: http.StatusOK, Event: evt}
}

// claim marks id as processed, reporting false when it already was. Stores
// that can set-if-absent do so in one step; others check then mark.
func (r *Receiver) claim(ctx context.Context, id string) (bool, error) {
	if cs, ok := r.store.(repository.ClaimStore); ok {
		return cs.SetIfAbsent(ctx, id, r.ttl)
	}

	seen, err := r.IsReplay(ctx, id)
	if err != nil {
		return false, err
	}
	if seen {
		return false, nil
	}
	if err := r.MarkProcessed(ctx, id); err != nil {
		return false, err
	}
	return true, nil
}

func (r *Receiver) storeFailure(ctx context.Context, evt *stripe.Event, err error) Outcome {
	r.log(ctx).Error("Replay store unavailable", zap.String("event_id", evt.ID), zap.Error(err))
	return Outcome{
		Status: http.StatusInternalServerError,
		Event:  evt,
		Err:    apperrors.New(http.StatusInternalServerError, "Replay store unavailable", err),
	}
}

func (r *Receiver) log(ctx context.Context) *zap.Logger {
	return logger.WithRequestID(ctx, r.logger)
}

func (r *Receiver) count(metric string, evt *stripe.Event) {
	if r.metrics == nil || !r.metrics.IsEnabled() {
		return
	}
	dims := eventDimensions(evt)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = r.metrics.RecordCount(ctx, metric, dims)
	}()
}

func (r *Receiver) latency(evt *stripe.Event, d time.Duration) {
	if r.metrics == nil || !r.metrics.IsEnabled() {
		return
	}
	dims := eventDimensions(evt)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = r.metrics.RecordLatency(ctx, awspkg.MetricWebhookLatency, d, dims)
	}()
}

func eventDimensions(evt *stripe.Event) map[string]string {
	if evt == nil {
		return map[string]string{"Service": "stripe-bridge"}
	}
	return map[string]string{"Service": "stripe-bridge", "EventType": string(evt.Type)}
}
