package webhook

import (
	"context"
	"sort"
	"sync"

	"github.com/stripe/stripe-go/v80"
)

// Handler processes one event type. Returning an error aborts the remaining
// handlers for that dispatch.
type Handler func(ctx context.Context, evt *stripe.Event) error

// Subscriber is notified of every successfully dispatched event, whatever
// its type.
type Subscriber interface {
	Notify(ctx context.Context, evt *stripe.Event) error
}

// SubscriberFunc adapts a function to Subscriber.
type SubscriberFunc func(ctx context.Context, evt *stripe.Event) error

func (f SubscriberFunc) Notify(ctx context.Context, evt *stripe.Event) error {
	return f(ctx, evt)
}

// Registry maps event types to ordered handler lists, plus an untyped
// subscriber list. Keys are never empty and lists are never empty.
type Registry struct {
	mu          sync.RWMutex
	handlers    map[string][]Handler
	subscribers []Subscriber
}

func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string][]Handler)}
}

// On appends h to the handlers for eventType. An empty type or nil handler
// is ignored.
func (r *Registry) On(eventType string, h Handler) {
	if eventType == "" || h == nil {
		return
	}
	r.mu.Lock()
	r.handlers[eventType] = append(r.handlers[eventType], h)
	r.mu.Unlock()
}

// Off removes every handler for eventType.
func (r *Registry) Off(eventType string) {
	r.mu.Lock()
	delete(r.handlers, eventType)
	r.mu.Unlock()
}

// Subscribe adds s to the broadcast tier.
func (r *Registry) Subscribe(s Subscriber) {
	if s == nil {
		return
	}
	r.mu.Lock()
	r.subscribers = append(r.subscribers, s)
	r.mu.Unlock()
}

// Handlers returns a copy of the handlers for eventType, in registration order.
func (r *Registry) Handlers(eventType string) []Handler {
	r.mu.RLock()
	defer r.mu.RUnlock()
	hs := r.handlers[eventType]
	if len(hs) == 0 {
		return nil
	}
	out := make([]Handler, len(hs))
	copy(out, hs)
	return out
}

func (r *Registry) Subscribers() []Subscriber {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Subscriber, len(r.subscribers))
	copy(out, r.subscribers)
	return out
}

func (r *Registry) HasHandlers(eventType string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.handlers[eventType]) > 0
}

// EventTypes lists the types with at least one handler, sorted.
func (r *Registry) EventTypes() []string {
	r.mu.RLock()
	types := make([]string, 0, len(r.handlers))
	for t := range r.handlers {
		types = append(types, t)
	}
	r.mu.RUnlock()
	sort.Strings(types)
	return types
}
