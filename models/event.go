package models

import (
	"encoding/json"
	"time"

	"github.com/stripe/stripe-go/v80"
)

// EventEnvelope is what gets forwarded to SNS and Kafka for every received
// Stripe event.
type EventEnvelope struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	Livemode   bool            `json:"livemode"`
	Created    time.Time       `json:"created"`
	APIVersion string          `json:"api_version,omitempty"`
	Account    string          `json:"account,omitempty"`
	ReceivedAt time.Time       `json:"received_at"`
	Data       json.RawMessage `json:"data,omitempty"`
}

// NewEventEnvelope flattens a Stripe event.
func NewEventEnvelope(evt *stripe.Event, receivedAt time.Time) EventEnvelope {
	env := EventEnvelope{
		ID:         evt.ID,
		Type:       string(evt.Type),
		Livemode:   evt.Livemode,
		Created:    time.Unix(evt.Created, 0).UTC(),
		APIVersion: evt.APIVersion,
		Account:    evt.Account,
		ReceivedAt: receivedAt.UTC(),
	}
	if evt.Data != nil {
		env.Data = evt.Data.Raw
	}
	return env
}

// ProcessedEvent is a replay marker row.
type ProcessedEvent struct {
	EventID     string    `gorm:"type:varchar(255);primaryKey" json:"event_id"`
	ProcessedAt time.Time `gorm:"not null" json:"processed_at"`
	ExpiresAt   time.Time `gorm:"not null;index" json:"expires_at"`
}

func (ProcessedEvent) TableName() string {
	return "processed_webhook_events"
}

// EventStatusResponse answers the admin status endpoint.
type EventStatusResponse struct {
	EventID   string `json:"event_id"`
	Processed bool   `json:"processed"`
}

// ReprocessResponse answers the admin reprocess endpoint.
type ReprocessResponse struct {
	EventID string `json:"event_id"`
	Type    string `json:"type"`
	Status  int    `json:"status"`
	Error   string `json:"error,omitempty"`
}
