package driven

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/alorle/iptv-checker/internal/history"
	"github.com/alorle/iptv-checker/internal/port/driven"
)

// DefaultHistoryFile is the history document name used when none is configured.
const DefaultHistoryFile = "channels_history.json"

// HistoryJSONRepository implements the HistoryRepository port as a single
// JSON document on disk.
type HistoryJSONRepository struct {
	path string
}

func NewHistoryJSONRepository(path string) *HistoryJSONRepository {
	if path == "" {
		path = DefaultHistoryFile
	}
	return &HistoryJSONRepository{path: path}
}

// Load reads and coerces the history document. A missing file is an empty
// history.
func (r *HistoryJSONRepository) Load(ctx context.Context) (history.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		return history.Snapshot{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}

	snap, err := history.DecodeSnapshot(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", r.path, err)
	}
	return snap, nil
}

// Save overwrites the history document with snap.
func (r *HistoryJSONRepository) Save(ctx context.Context, snap history.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := history.EncodeSnapshot(snap)
	if err != nil {
		return fmt.Errorf("failed to encode history: %w", err)
	}
	return writeFileAtomic(r.path, data, 0o644)
}

var _ driven.HistoryRepository = (*HistoryJSONRepository)(nil)
