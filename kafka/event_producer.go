package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stripe/stripe-go/v80"
	"go.uber.org/zap"

	"github.com/yashrajoria/stripe-bridge/models"
)

// MessageWriter is the subset of *kafka.Writer used by EventProducer.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// EventProducer writes every dispatched Stripe event to a topic, keyed by
// event ID so retries of one event land on one partition.
type EventProducer struct {
	writer MessageWriter
	topic  string
	logger *zap.Logger
	now    func() time.Time
}

func NewEventProducer(brokers []string, topic string, logger *zap.Logger) *EventProducer {
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
	}
	p := NewEventProducerWithWriter(w, topic, logger)
	p.logger.Info("Kafka event producer initialized", zap.String("topic", topic), zap.Strings("brokers", brokers))
	return p
}

func NewEventProducerWithWriter(w MessageWriter, topic string, logger *zap.Logger) *EventProducer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventProducer{writer: w, topic: topic, logger: logger, now: time.Now}
}

// Notify implements webhook.Subscriber.
func (p *EventProducer) Notify(ctx context.Context, evt *stripe.Event) error {
	data, err := json.Marshal(models.NewEventEnvelope(evt, p.now()))
	if err != nil {
		return fmt.Errorf("marshal event envelope: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(evt.ID),
		Value: data,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(evt.Type)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("Failed to write event to Kafka",
			zap.String("topic", p.topic),
			zap.String("event_id", evt.ID),
			zap.Error(err),
		)
		return fmt.Errorf("write %s to kafka: %w", evt.ID, err)
	}

	p.logger.Debug("Event written to Kafka", zap.String("topic", p.topic), zap.String("event_id", evt.ID))
	return nil
}

func (p *EventProducer) Close() error {
	err := p.writer.Close()
	p.logger.Info("Kafka event producer closed", zap.String("topic", p.topic))
	return err
}
