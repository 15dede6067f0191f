package storage

import (
	"context"

	"github.com/citymuse/wayfinder/core"
)

// GraphRepository provides read access to the knowledge graph and accepts
// bulk snapshot loads. Implementations must be thread-safe: retrieval is
// read-only and concurrent, and a snapshot load must never be observed as a
// partially-updated view by in-flight readers.
type GraphRepository interface {
	// GetNode retrieves a single node by kind and id.
	// Returns ErrNotFound if the node doesn't exist in the current snapshot.
	GetNode(ctx context.Context, kind core.NodeKind, id string) (*core.Node, error)

	// GetPOIs retrieves all POI nodes in the current snapshot,
	// ordered by ascending id.
	GetPOIs(ctx context.Context) ([]*core.Node, error)

	// Neighbors returns the nodes reachable from the given node within
	// maxHops traversal steps restricted to the given relationship kinds.
	// Traversal is breadth-first by hop count; when multiple paths reach the
	// same node the minimum cumulative weight is retained. The start node is
	// never included and no node is visited twice.
	//
	// Unknown relationship kinds are ignored. maxHops = 0 returns an empty
	// result. Returns ErrNotFound if the start node doesn't exist.
	Neighbors(ctx context.Context, kind core.NodeKind, id string, maxHops int, relKinds []core.RelKind) ([]core.GraphNeighbor, error)

	// Close closes the storage backend and releases resources.
	Close() error
}

// EmbeddingRepository provides the semantic vector index over POI
// descriptions. Implementations must be thread-safe.
type EmbeddingRepository interface {
	// UpsertEmbeddings stores or replaces embedding records in the current
	// snapshot. Idempotent on repeated identical input.
	UpsertEmbeddings(ctx context.Context, records ...*core.EmbeddingRecord) error

	// QueryNearest returns the k stored vectors nearest to the query vector
	// by cosine similarity, ordered descending by similarity with ties broken
	// by ascending node id. An empty index yields an empty result, not an
	// error. k larger than the index size returns all entries.
	// Returns ErrInvalidQuery if k is not positive.
	QueryNearest(ctx context.Context, vector []float32, k int) ([]core.SemanticHit, error)

	// Count returns the number of embedding records in the current snapshot.
	Count(ctx context.Context) (int, error)

	// Close closes the storage backend and releases resources.
	Close() error
}

// SnapshotLoader accepts validated bulk loads of a complete graph and
// embedding snapshot. The new snapshot becomes visible atomically; readers
// that started before the swap keep the old view.
type SnapshotLoader interface {
	// LoadSnapshot validates the batch against domain invariants and, if the
	// whole batch is valid, replaces the current snapshot. Malformed batches
	// are rejected all-or-nothing with no change to the current snapshot.
	LoadSnapshot(ctx context.Context, nodes []*core.Node, edges []*core.Edge, embeddings []*core.EmbeddingRecord) error
}
