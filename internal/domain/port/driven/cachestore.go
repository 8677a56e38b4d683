package driven

import (
	"context"

	"github.com/ericfisherdev/pulldeck/internal/domain/model"
)

// CacheStore defines the driven port for snapshot persistence. The cache is a
// cold-start optimization, not a durability guarantee: callers treat Save
// failures as soft and log-and-continue.
type CacheStore interface {
	// Load returns the persisted snapshot, or (nil, nil) when none exists.
	Load(ctx context.Context) (*model.Snapshot, error)

	// Save overwrites the persisted snapshot atomically.
	Save(ctx context.Context, snap model.Snapshot) error
}
