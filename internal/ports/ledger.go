package ports

import (
	"context"

	"github.com/jfortea/floorbot/internal/domain"
)

// Ledger persists volume-trade positions across restarts. One row per token,
// keyed (contract, identifier); buying the same token again updates the row.
type Ledger interface {
	// Upsert inserts or replaces the position for its token.
	Upsert(ctx context.Context, pos domain.VolumePosition) error

	// Get returns the position for a token, or nil when none is tracked.
	Get(ctx context.Context, contract, identifier string) (*domain.VolumePosition, error)

	// All returns every tracked position, newest purchase first.
	All(ctx context.Context) ([]domain.VolumePosition, error)

	// Remove deletes the position for a token. Removing an untracked token
	// is not an error.
	Remove(ctx context.Context, contract, identifier string) error

	// Close closes the underlying store.
	Close() error
}
