package dispatch

import (
	"context"

	"github.com/loadline/dispatch/internal/core/domain"
)

// Emitter publishes dispatch events for the notification layer.
type Emitter interface {
	// Emit sends a single event.
	Emit(ctx context.Context, event *domain.Event) error

	// Close closes the emitter connection.
	Close() error
}

// NoopEmitter drops every event. Used when no event transport is configured.
type NoopEmitter struct{}

func (NoopEmitter) Emit(ctx context.Context, event *domain.Event) error { return nil }
func (NoopEmitter) Close() error                                        { return nil }

// LocationCache stores the last known position of a driver on a load.
type LocationCache interface {
	// SetLocation records the latest position.
	SetLocation(ctx context.Context, orgID, loadID string, lat, lng float64) error

	// GetLocation retrieves the latest position; found is false when none
	// was recorded or it expired.
	GetLocation(ctx context.Context, orgID, loadID string) (lat, lng float64, found bool, err error)
}

// NoopLocationCache satisfies LocationCache without storing anything.
type NoopLocationCache struct{}

func (NoopLocationCache) SetLocation(ctx context.Context, orgID, loadID string, lat, lng float64) error {
	return nil
}

func (NoopLocationCache) GetLocation(ctx context.Context, orgID, loadID string) (float64, float64, bool, error) {
	return 0, 0, false, nil
}
