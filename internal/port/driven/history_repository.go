package driven

import (
	"context"

	"github.com/alorle/iptv-checker/internal/history"
)

// HistoryRepository defines the interface for the per-source history store.
type HistoryRepository interface {
	// Load returns the stored snapshot. A store that does not exist yet
	// yields an empty snapshot.
	Load(ctx context.Context) (history.Snapshot, error)

	// Save replaces the whole stored snapshot. Sources missing from snap are
	// dropped.
	Save(ctx context.Context, snap history.Snapshot) error
}
