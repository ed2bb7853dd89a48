package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers delivered event IDs so a handler that sees
// the same event twice, for example after an outbox retry, only acts once.
type IdempotencyStore interface {
	// MarkProcessed records an event ID with a TTL. It returns true when
	// the ID was newly recorded and false when it was already present.
	MarkProcessed(ctx context.Context, eventID string, ttl time.Duration) (bool, error)

	// IsProcessed reports whether an event ID has been recorded
	IsProcessed(ctx context.Context, eventID string) (bool, error)

	// Close releases the store's resources
	Close() error
}

// IdempotencyConfig controls duplicate suppression for event handlers
type IdempotencyConfig struct {
	// TTL bounds how long a delivered event ID is remembered. A duplicate
	// arriving after the TTL is processed again.
	TTL time.Duration

	// Enabled turns duplicate suppression on or off
	Enabled bool
}

// DefaultIdempotencyConfig remembers deliveries for 24 hours
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{
		TTL:     24 * time.Hour,
		Enabled: true,
	}
}
