package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/stripe/stripe-go/v80"
	"go.uber.org/zap"

	"github.com/yashrajoria/stripe-bridge/models"
	awspkg "github.com/yashrajoria/stripe-bridge/pkg/aws"
	"github.com/yashrajoria/stripe-bridge/webhook"
)

// SNSForwarder publishes every dispatched event to an SNS topic. Register it
// with Receiver.Subscribe.
type SNSForwarder struct {
	publisher awspkg.SNSPublisher
	topicARN  string
	now       func() time.Time
}

func NewSNSForwarder(publisher awspkg.SNSPublisher, topicARN string) *SNSForwarder {
	return &SNSForwarder{publisher: publisher, topicARN: topicARN, now: time.Now}
}

func (f *SNSForwarder) Notify(ctx context.Context, evt *stripe.Event) error {
	body, err := json.Marshal(models.NewEventEnvelope(evt, f.now()))
	if err != nil {
		return fmt.Errorf("marshal event envelope: %w", err)
	}
	attrs := map[string]string{
		"event_type": string(evt.Type),
		"livemode":   strconv.FormatBool(evt.Livemode),
	}
	if err := f.publisher.Publish(ctx, f.topicARN, body, attrs); err != nil {
		return fmt.Errorf("forward %s to sns: %w", evt.ID, err)
	}
	return nil
}

// EventProcessor runs an already-authenticated event through replay
// protection and dispatch.
type EventProcessor interface {
	Process(ctx context.Context, evt *stripe.Event) webhook.Outcome
}

// MessagePoller is satisfied by awspkg.SQSConsumer.
type MessagePoller interface {
	StartPolling(ctx context.Context, handler awspkg.MessageHandler) error
}

// eventBridgeMessage is the EventBridge envelope Stripe event destinations
// deliver. detail holds the Stripe event.
type eventBridgeMessage struct {
	ID         string          `json:"id"`
	DetailType string          `json:"detail-type"`
	Source     string          `json:"source"`
	Detail     json.RawMessage `json:"detail"`
}

// ErrMalformedMessage marks a queue message that will never decode.
var ErrMalformedMessage = errors.New("malformed event destination message")

// EventDestinationConsumer drains an SQS queue that an EventBridge rule
// feeds from a Stripe event destination. Events arrive without a signature;
// the AWS partner event source authenticates them.
type EventDestinationConsumer struct {
	poller    MessagePoller
	processor EventProcessor
	logger    *zap.Logger
}

func NewEventDestinationConsumer(poller MessagePoller, processor EventProcessor, logger *zap.Logger) *EventDestinationConsumer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventDestinationConsumer{poller: poller, processor: processor, logger: logger}
}

// Run polls until ctx is cancelled.
func (c *EventDestinationConsumer) Run(ctx context.Context) error {
	return c.poller.StartPolling(ctx, c.HandleMessage)
}

// HandleMessage processes one queue body. Malformed messages are logged and
// acknowledged. A non-nil error leaves the message on the queue for
// redelivery, which happens only when processing failed with a 5xx.
func (c *EventDestinationConsumer) HandleMessage(ctx context.Context, body string) error {
	evt, err := decodeEventBridge([]byte(body))
	if err != nil {
		c.logger.Warn("Dropping malformed event destination message", zap.Error(err))
		return nil
	}

	out := c.processor.Process(ctx, evt)
	if out.Status >= 500 {
		return fmt.Errorf("process event %s: %w", evt.ID, out.Err)
	}
	if out.Status >= 400 {
		c.logger.Warn("Event destination message rejected",
			zap.String("event_id", evt.ID),
			zap.Int("status", out.Status),
			zap.Error(out.Err),
		)
	}
	return nil
}

func decodeEventBridge(body []byte) (*stripe.Event, error) {
	var msg eventBridgeMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	if len(msg.Detail) == 0 {
		return nil, fmt.Errorf("%w: missing detail", ErrMalformedMessage)
	}
	var evt stripe.Event
	if err := json.Unmarshal(msg.Detail, &evt); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	if evt.ID == "" {
		return nil, fmt.Errorf("%w: event id missing", ErrMalformedMessage)
	}
	if evt.Type == "" {
		evt.Type = stripe.EventType(msg.DetailType)
	}
	return &evt, nil
}
