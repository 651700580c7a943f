package kafka_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v80"

	"github.com/yashrajoria/stripe-bridge/kafka"
	"github.com/yashrajoria/stripe-bridge/models"
)

type fakeWriter struct {
	msgs   []kafkago.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestEventProducer_Notify(t *testing.T) {
	w := &fakeWriter{}
	p := kafka.NewEventProducerWithWriter(w, "stripe.events", nil)

	err := p.Notify(context.Background(), &stripe.Event{ID: "evt_1", Type: "charge.refunded", Created: 1700000000})
	require.NoError(t, err)
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, "evt_1", string(msg.Key))
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, "event_type", msg.Headers[0].Key)
	assert.Equal(t, "charge.refunded", string(msg.Headers[0].Value))

	var env models.EventEnvelope
	require.NoError(t, json.Unmarshal(msg.Value, &env))
	assert.Equal(t, "charge.refunded", env.Type)
	assert.Equal(t, int64(1700000000), env.Created.Unix())
}

func TestEventProducer_WriteError(t *testing.T) {
	p := kafka.NewEventProducerWithWriter(&fakeWriter{err: errors.New("leader not available")}, "stripe.events", nil)
	err := p.Notify(context.Background(), &stripe.Event{ID: "evt_1", Type: "charge.refunded"})
	assert.ErrorContains(t, err, "leader not available")
}

func TestEventProducer_Close(t *testing.T) {
	w := &fakeWriter{}
	require.NoError(t, kafka.NewEventProducerWithWriter(w, "t", nil).Close())
	assert.True(t, w.closed)
}
