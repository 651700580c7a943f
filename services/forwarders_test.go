package services_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v80"
	"go.uber.org/zap"

	"github.com/yashrajoria/stripe-bridge/models"
	awspkg "github.com/yashrajoria/stripe-bridge/pkg/aws"
	"github.com/yashrajoria/stripe-bridge/services"
	"github.com/yashrajoria/stripe-bridge/webhook"
)

type capturePublisher struct {
	topic string
	body  []byte
	attrs map[string]string
	err   error
}

func (p *capturePublisher) Publish(_ context.Context, topic string, body []byte, attrs map[string]string) error {
	p.topic, p.body, p.attrs = topic, body, attrs
	return p.err
}

func TestSNSForwarder_PublishesEnvelope(t *testing.T) {
	pub := &capturePublisher{}
	f := services.NewSNSForwarder(pub, "arn:aws:sns:us-east-1:000000000000:stripe-events")

	evt := &stripe.Event{ID: "evt_1", Type: "invoice.paid", Livemode: true, Created: 1700000000,
		Data: &stripe.EventData{Raw: json.RawMessage(`{"object":{"id":"in_1"}}`)}}
	require.NoError(t, f.Notify(context.Background(), evt))

	assert.Equal(t, "arn:aws:sns:us-east-1:000000000000:stripe-events", pub.topic)
	assert.Equal(t, map[string]string{"event_type": "invoice.paid", "livemode": "true"}, pub.attrs)

	var env models.EventEnvelope
	require.NoError(t, json.Unmarshal(pub.body, &env))
	assert.Equal(t, "evt_1", env.ID)
	assert.JSONEq(t, `{"object":{"id":"in_1"}}`, string(env.Data))
}

func TestSNSForwarder_PublishError(t *testing.T) {
	f := services.NewSNSForwarder(&capturePublisher{err: errors.New("throttled")}, "arn")
	assert.Error(t, f.Notify(context.Background(), &stripe.Event{ID: "evt_1", Type: "invoice.paid"}))
}

type stubProcessor struct {
	events []*stripe.Event
	status int
}

func (p *stubProcessor) Process(_ context.Context, evt *stripe.Event) webhook.Outcome {
	p.events = append(p.events, evt)
	out := webhook.Outcome{Status: p.status, Event: evt}
	if p.status >= 400 {
		out.Err = errors.New("failed")
	}
	return out
}

const bridgeMessage = `{
  "version": "0",
  "id": "eb-1",
  "detail-type": "customer.created",
  "source": "aws.partner/stripe.com/ed_test_1",
  "detail": {"id": "evt_9", "object": "event", "type": "customer.created", "data": {"object": {"id": "cus_1"}}}
}`

func TestEventDestinationConsumer_HandleMessage(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		status    int
		wantErr   bool
		processed int
	}{
		{"dispatched", bridgeMessage, http.StatusOK, false, 1},
		{"handler failure is redelivered", bridgeMessage, http.StatusInternalServerError, true, 1},
		{"rejected is acknowledged", bridgeMessage, http.StatusBadRequest, false, 1},
		{"not json", "{{", http.StatusOK, false, 0},
		{"no detail", `{"id":"eb-1"}`, http.StatusOK, false, 0},
		{"detail without id", `{"detail":{"type":"x"}}`, http.StatusOK, false, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			proc := &stubProcessor{status: tt.status}
			c := services.NewEventDestinationConsumer(nil, proc, zap.NewNop())

			err := c.HandleMessage(context.Background(), tt.body)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			require.Len(t, proc.events, tt.processed)
			if tt.processed > 0 {
				assert.Equal(t, "evt_9", proc.events[0].ID)
				assert.Equal(t, stripe.EventType("customer.created"), proc.events[0].Type)
			}
		})
	}
}

type onceQueue struct {
	bodies []string
}

func (q *onceQueue) StartPolling(ctx context.Context, handler awspkg.MessageHandler) error {
	for _, b := range q.bodies {
		_ = handler(ctx, b)
	}
	return ctx.Err()
}

func TestEventDestinationConsumer_Run(t *testing.T) {
	proc := &stubProcessor{status: http.StatusOK}
	c := services.NewEventDestinationConsumer(&onceQueue{bodies: []string{bridgeMessage, "junk"}}, proc, nil)

	require.NoError(t, c.Run(context.Background()))
	assert.Len(t, proc.events, 1)
}
