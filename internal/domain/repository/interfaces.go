package repository

import (
	"context"

	"SectorPulse/internal/domain/models"
)

// MarketData supplies snapshots, regime observations and momentum rankings.
// Every call carries its own timeout; a failed call degrades to "no data
// this pass" at the caller.
type MarketData interface {
	Snapshot(ctx context.Context) (*models.Snapshot, error)
	MarketState(ctx context.Context) (*models.MarketState, error)
	Momentum(ctx context.Context) (*models.Momentum, error)
}

// DigestComposer optionally produces a pre-composed natural-language digest
// for a cadence ("daily" or "weekly"). ok=false means the caller should fall
// back to its computed summary.
type DigestComposer interface {
	Compose(ctx context.Context, cadence string) (digest string, ok bool)
}

// Notifier delivers one formatted message to one recipient.
type Notifier interface {
	Send(ctx context.Context, recipient, text string) error
}

// Registry resolves subscriber preferences. Implementations must be safe for
// concurrent use; an interactive command surface may mutate the backing
// store while a pass is in flight.
type Registry interface {
	Active(ctx context.Context) ([]*models.Subscriber, error)
}

// StateStore persists the serialized run state between passes. Load returns
// (nil, nil) when no prior state exists.
type StateStore interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
}

// SignalSink records fired events for history. Fire-and-forget: errors are
// logged by implementations, never returned to block a pass.
type SignalSink interface {
	Record(ctx context.Context, sig *models.Signal)
	Close() error
}

// Metrics abstracts the Prometheus recorder.
type Metrics interface {
	RecordEvent(category string)
	RecordDelivery(outcome string)
	RecordError(kind string)
	RecordPassDuration(seconds float64)
	RecordRegime(state string)
}
