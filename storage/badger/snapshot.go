package badger

import (
	"context"
	"fmt"

	"github.com/citymuse/wayfinder/core"
	"github.com/citymuse/wayfinder/storage"
	"github.com/dgraph-io/badger/v4"
)

var _ storage.SnapshotLoader = (*Backend)(nil)

// LoadSnapshot validates the batch against domain invariants and, if the
// whole batch is valid, writes it as a fresh snapshot generation and flips
// the generation pointer. Malformed batches are rejected all-or-nothing.
//
// The new generation's keys are invisible until the pointer flip, and the
// flip is a single small transaction, so in-flight readers keep a complete
// view of the old snapshot throughout.
func (b *Backend) LoadSnapshot(ctx context.Context, nodes []*core.Node, edges []*core.Edge, embeddings []*core.EmbeddingRecord) error {
	if err := b.validateBatch(nodes, edges, embeddings); err != nil {
		return err
	}

	adjacency := buildAdjacency(edges)

	var oldGen uint64
	if err := b.WithTx(func(tx *badger.Txn) error {
		var err error
		oldGen, err = currentGeneration(tx)
		return err
	}, false); err != nil {
		return err
	}
	newGen := oldGen + 1

	// Stage the complete new generation. These keys are unreachable until
	// the pointer flip, so a failed or interrupted load leaves the current
	// snapshot untouched.
	wb := b.db.NewWriteBatch()
	defer wb.Cancel()

	for _, node := range nodes {
		if err := wb.Set(makeNodeKey(newGen, node.Kind, node.ID), storage.MarshalNode(node)); err != nil {
			return err
		}
	}
	for ref, list := range adjacency {
		buf := make([]byte, core.EdgeSliceMUS.Size(list))
		core.EdgeSliceMUS.Marshal(list, buf)
		if err := wb.Set(makeAdjacencyKey(newGen, ref), buf); err != nil {
			return err
		}
	}
	for _, record := range embeddings {
		if err := wb.Set(makeEmbeddingKey(newGen, record.NodeID), storage.MarshalEmbeddingRecord(record)); err != nil {
			return err
		}
	}
	if err := wb.Flush(); err != nil {
		return err
	}

	// Flip the pointer. New transactions see the new generation; readers
	// that started earlier keep the old one via BadgerDB MVCC.
	if err := b.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set([]byte(generationKey), encodeGeneration(newGen)); err != nil {
			return err
		}
		return tx.Commit()
	}, true); err != nil {
		return err
	}

	b.logger.Info("snapshot loaded",
		"generation", newGen,
		"nodes", len(nodes),
		"edges", len(edges),
		"embeddings", len(embeddings))

	if oldGen > 0 {
		b.cleanupGeneration(oldGen)
	}

	return nil
}

// validateBatch checks the batch against the graph invariants.
func (b *Backend) validateBatch(nodes []*core.Node, edges []*core.Edge, embeddings []*core.EmbeddingRecord) error {
	byRef := make(map[core.NodeRef]*core.Node, len(nodes))
	for _, node := range nodes {
		if err := core.ValidateNode(node); err != nil {
			return fmt.Errorf("%w: %w", storage.ErrInvalidBatch, err)
		}
		ref := node.Ref()
		if _, duplicate := byRef[ref]; duplicate {
			return fmt.Errorf("%w: duplicate %s id %q", storage.ErrInvalidBatch, ref.Kind, ref.ID)
		}
		byRef[ref] = node
	}

	for _, edge := range edges {
		if err := core.ValidateEdge(edge); err != nil {
			return fmt.Errorf("%w: %w", storage.ErrInvalidBatch, err)
		}
		source, ok := byRef[edge.Source]
		if !ok {
			return fmt.Errorf("%w: edge source %s %q not in batch", storage.ErrInvalidBatch, edge.Source.Kind, edge.Source.ID)
		}
		target, ok := byRef[edge.Target]
		if !ok {
			return fmt.Errorf("%w: edge target %s %q not in batch", storage.ErrInvalidBatch, edge.Target.Kind, edge.Target.ID)
		}
		if edge.Kind == core.RelIsNear {
			distance := core.HaversineMeters(source.Lat, source.Lon, target.Lat, target.Lon)
			if distance > b.nearLimitMeters {
				return fmt.Errorf("%w: IS_NEAR %q-%q spans %.0f m, limit %.0f m",
					storage.ErrInvalidBatch, edge.Source.ID, edge.Target.ID, distance, b.nearLimitMeters)
			}
		}
	}

	for _, record := range embeddings {
		if err := core.ValidateEmbeddingRecord(record); err != nil {
			return fmt.Errorf("%w: %w", storage.ErrInvalidBatch, err)
		}
		if _, ok := byRef[core.NodeRef{Kind: core.NodeKindPOI, ID: record.NodeID}]; !ok {
			return fmt.Errorf("%w: orphan vector for %q", storage.ErrInvalidBatch, record.NodeID)
		}
	}

	return nil
}

// buildAdjacency groups edges into per-node outgoing lists. IS_NEAR edges
// are logically symmetric and get mirrored unless the batch already carries
// the reverse direction.
func buildAdjacency(edges []*core.Edge) map[core.NodeRef][]core.Edge {
	type pair struct {
		source, target core.NodeRef
		kind           core.RelKind
	}
	present := make(map[pair]bool, len(edges))
	for _, edge := range edges {
		present[pair{edge.Source, edge.Target, edge.Kind}] = true
	}

	adjacency := make(map[core.NodeRef][]core.Edge)
	for _, edge := range edges {
		adjacency[edge.Source] = append(adjacency[edge.Source], *edge)

		if edge.Kind == core.RelIsNear && !present[pair{edge.Target, edge.Source, edge.Kind}] {
			mirrored := core.Edge{
				Source: edge.Target,
				Target: edge.Source,
				Kind:   edge.Kind,
				Weight: edge.Weight,
			}
			present[pair{mirrored.Source, mirrored.Target, mirrored.Kind}] = true
			adjacency[mirrored.Source] = append(adjacency[mirrored.Source], mirrored)
		}
	}
	return adjacency
}

// cleanupGeneration deletes the data keys of a superseded generation.
// Best effort: a failure leaves stale keys behind but never affects the
// active snapshot.
func (b *Backend) cleanupGeneration(gen uint64) {
	wb := b.db.NewWriteBatch()
	defer wb.Cancel()

	err := b.WithTx(func(tx *badger.Txn) error {
		for _, prefix := range generationPrefixes(gen) {
			opts := badger.DefaultIteratorOptions
			opts.Prefix = prefix
			opts.PrefetchValues = false
			iter := tx.NewIterator(opts)

			for iter.Rewind(); iter.Valid(); iter.Next() {
				key := iter.Item().KeyCopy(nil)
				if err := wb.Delete(key); err != nil {
					iter.Close()
					return err
				}
			}
			iter.Close()
		}
		return nil
	}, false)
	if err != nil {
		b.logger.Warn("failed to stage cleanup of old snapshot", "generation", gen, "err", err)
		return
	}

	if err := wb.Flush(); err != nil {
		b.logger.Warn("failed to clean up old snapshot", "generation", gen, "err", err)
	}
}
