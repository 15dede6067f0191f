package badger

import (
	"context"
	"slices"
	"strings"

	"github.com/citymuse/wayfinder/core"
	"github.com/citymuse/wayfinder/storage"
	"github.com/dgraph-io/badger/v4"
)

// EmbeddingRepository implements storage.EmbeddingRepository for BadgerDB.
// Vectors are stored per POI under the active snapshot generation; queries
// scan the full index and rank by cosine similarity.
type EmbeddingRepository struct {
	backend *Backend
}

var _ storage.EmbeddingRepository = (*EmbeddingRepository)(nil)

// NewEmbeddingRepository creates a new EmbeddingRepository.
func NewEmbeddingRepository(backend *Backend) (*EmbeddingRepository, error) {
	return &EmbeddingRepository{
		backend: backend,
	}, nil
}

// Close releases resources. EmbeddingRepository has no resources to release.
func (r *EmbeddingRepository) Close() error {
	return nil
}

// UpsertEmbeddings stores or replaces embedding records in the current
// snapshot. Idempotent on repeated identical input.
func (r *EmbeddingRepository) UpsertEmbeddings(ctx context.Context, records ...*core.EmbeddingRecord) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		gen, err := currentGeneration(tx)
		if err != nil {
			return err
		}

		for _, record := range records {
			if err := core.ValidateEmbeddingRecord(record); err != nil {
				return err
			}
			key := makeEmbeddingKey(gen, record.NodeID)
			if err := tx.Set(key, storage.MarshalEmbeddingRecord(record)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// QueryNearest returns the k nearest stored vectors by cosine similarity,
// ordered descending with ties broken by ascending node id.
func (r *EmbeddingRepository) QueryNearest(ctx context.Context, vector []float32, k int) ([]core.SemanticHit, error) {
	if k <= 0 {
		return nil, storage.ErrInvalidQuery
	}

	var hits []core.SemanticHit
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		gen, err := currentGeneration(tx)
		if err != nil {
			return err
		}

		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeEmbeddingPrefix(gen)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var record *core.EmbeddingRecord
			err := iter.Item().Value(func(val []byte) error {
				var err error
				record, err = storage.UnmarshalEmbeddingRecord(val)
				return err
			})
			if err != nil {
				return err
			}
			if record == nil || len(record.Vector) == 0 {
				continue
			}

			hits = append(hits, core.SemanticHit{
				NodeID: record.NodeID,
				Score:  core.CosineSimilarity(vector, record.Vector),
			})
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	// Sort by similarity descending; equal scores fall back to ascending
	// node id so results are reproducible.
	slices.SortFunc(hits, func(a, b core.SemanticHit) int {
		if a.Score != b.Score {
			if a.Score > b.Score {
				return -1
			}
			return 1
		}
		return strings.Compare(a.NodeID, b.NodeID)
	})

	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// Count returns the number of embedding records in the current snapshot.
func (r *EmbeddingRepository) Count(ctx context.Context) (int, error) {
	count := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		gen, err := currentGeneration(tx)
		if err != nil {
			return err
		}

		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeEmbeddingPrefix(gen)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	}, false)
	return count, err
}
