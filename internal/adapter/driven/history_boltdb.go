package driven

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/alorle/iptv-checker/internal/history"
	"github.com/alorle/iptv-checker/internal/port/driven"
)

const historyBucket = "history"

// HistoryBoltDBRepository implements the HistoryRepository port using BoltDB.
// Each source is a key in the history bucket; values use the same JSON
// encoding as the history document.
type HistoryBoltDBRepository struct {
	db *bbolt.DB
}

// NewHistoryBoltDBRepository creates a new BoltDB-backed history repository.
// It initializes the bucket if it doesn't exist.
func NewHistoryBoltDBRepository(db *bbolt.DB) (*HistoryBoltDBRepository, error) {
	if db == nil {
		return nil, errors.New("db cannot be nil")
	}

	err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(historyBucket))
		return err
	})
	if err != nil {
		return nil, err
	}

	return &HistoryBoltDBRepository{db: db}, nil
}

// Load returns every stored record, coerced with history.Decode.
func (r *HistoryBoltDBRepository) Load(ctx context.Context) (history.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	snap := history.Snapshot{}
	err := r.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(historyBucket))
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			snap[string(k)] = history.Decode(v)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	return snap, nil
}

// Save replaces the bucket contents with snap in a single transaction.
func (r *HistoryBoltDBRepository) Save(ctx context.Context, snap history.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return r.db.Update(func(tx *bbolt.Tx) error {
		if tx.Bucket([]byte(historyBucket)) != nil {
			if err := tx.DeleteBucket([]byte(historyBucket)); err != nil {
				return err
			}
		}
		b, err := tx.CreateBucket([]byte(historyBucket))
		if err != nil {
			return err
		}

		for source, record := range snap {
			data, err := json.Marshal(record)
			if err != nil {
				return fmt.Errorf("failed to encode %s: %w", source, err)
			}
			if err := b.Put([]byte(source), data); err != nil {
				return err
			}
		}
		return nil
	})
}

var _ driven.HistoryRepository = (*HistoryBoltDBRepository)(nil)
