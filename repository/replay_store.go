package repository

import (
	"context"
	"errors"
	"time"
)

// KeyPrefix namespaces replay markers in shared key-value stores.
const KeyPrefix = "stripe:webhook:processed:"

// ErrInvalidTTL is returned when a marker is written without a positive TTL.
var ErrInvalidTTL = errors.New("replay marker TTL must be positive")

// ReplayStore is a key-existence cache with per-entry TTL.
type ReplayStore interface {
	Exists(ctx context.Context, key string) (bool, error)
	SetWithTTL(ctx context.Context, key string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// ClaimStore can set a marker only when it is absent, in one step. It
// reports whether this call created the marker.
type ClaimStore interface {
	ReplayStore
	SetIfAbsent(ctx context.Context, key string, ttl time.Duration) (bool, error)
}
