package badger

import (
	"context"
	"slices"
	"strings"

	"github.com/citymuse/wayfinder/core"
	"github.com/citymuse/wayfinder/storage"
	"github.com/dgraph-io/badger/v4"
)

// GraphRepository implements storage.GraphRepository for BadgerDB.
// All reads resolve the active snapshot generation inside their own
// transaction, so a concurrent snapshot swap is never observed mid-traversal.
type GraphRepository struct {
	backend *Backend
}

var _ storage.GraphRepository = (*GraphRepository)(nil)

// NewGraphRepository creates a new GraphRepository.
func NewGraphRepository(backend *Backend) (*GraphRepository, error) {
	return &GraphRepository{
		backend: backend,
	}, nil
}

// Close releases resources. GraphRepository has no resources to release.
func (r *GraphRepository) Close() error {
	return nil
}

// GetNode retrieves a single node by kind and id.
func (r *GraphRepository) GetNode(ctx context.Context, kind core.NodeKind, id string) (*core.Node, error) {
	var result *core.Node
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		gen, err := currentGeneration(tx)
		if err != nil {
			return err
		}
		result, err = readNode(tx, makeNodeKey(gen, kind, id))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// GetPOIs retrieves all POI nodes in the current snapshot, ordered by
// ascending id.
func (r *GraphRepository) GetPOIs(ctx context.Context) ([]*core.Node, error) {
	var results []*core.Node
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		gen, err := currentGeneration(tx)
		if err != nil {
			return err
		}

		opts := badger.DefaultIteratorOptions
		prefix := makeNodeKindPrefix(gen, core.NodeKindPOI)
		opts.Prefix = prefix
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var node *core.Node
			err := iter.Item().Value(func(val []byte) error {
				var err error
				node, err = storage.UnmarshalNode(val)
				return err
			})
			if err != nil {
				return err
			}
			if node != nil {
				results = append(results, node)
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	slices.SortFunc(results, func(a, b *core.Node) int {
		return strings.Compare(a.ID, b.ID)
	})
	return results, nil
}

// Neighbors returns the nodes reachable within maxHops traversal steps
// restricted to the given relationship kinds, annotated with hop distance and
// minimum cumulative path weight. Traversal is breadth-first and never
// revisits a node.
func (r *GraphRepository) Neighbors(ctx context.Context, kind core.NodeKind, id string, maxHops int, relKinds []core.RelKind) ([]core.GraphNeighbor, error) {
	allowed := make(map[core.RelKind]bool, len(relKinds))
	for _, rk := range relKinds {
		// Unknown kinds are silently ignored for forward compatibility.
		if rk == core.RelIsNear || rk == core.RelServes || rk == core.RelConnects {
			allowed[rk] = true
		}
	}

	start := core.NodeRef{Kind: kind, ID: id}
	var results []core.GraphNeighbor

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		gen, err := currentGeneration(tx)
		if err != nil {
			return err
		}

		if _, err := tx.Get(makeNodeKey(gen, kind, id)); err != nil {
			if err == badger.ErrKeyNotFound {
				return storage.ErrNotFound
			}
			return err
		}

		if maxHops <= 0 || len(allowed) == 0 {
			return nil
		}

		type found struct {
			hops   int
			weight float64
		}
		seen := map[core.NodeRef]*found{start: {hops: 0, weight: 0}}
		frontier := []core.NodeRef{start}

		for hop := 1; hop <= maxHops && len(frontier) > 0; hop++ {
			if err := ctx.Err(); err != nil {
				return err
			}

			var next []core.NodeRef
			for _, ref := range frontier {
				edges, err := readAdjacency(tx, makeAdjacencyKey(gen, ref))
				if err != nil {
					return err
				}

				base := seen[ref].weight
				for _, edge := range edges {
					if !allowed[edge.Kind] {
						continue
					}
					weight := base + edge.Weight
					prior, ok := seen[edge.Target]
					if !ok {
						seen[edge.Target] = &found{hops: hop, weight: weight}
						next = append(next, edge.Target)
						continue
					}
					// Already discovered: keep the cheaper path, never re-expand.
					if weight < prior.weight {
						prior.weight = weight
					}
				}
			}
			frontier = next
		}

		for ref, f := range seen {
			if ref == start {
				continue
			}
			node, err := readNode(tx, makeNodeKey(gen, ref.Kind, ref.ID))
			if err != nil {
				return err
			}
			if node == nil {
				// Dangling edge target; snapshot validation should prevent
				// this, skip rather than fail the traversal.
				continue
			}
			results = append(results, core.GraphNeighbor{
				Node:   *node,
				Hops:   f.hops,
				Weight: f.weight,
			})
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	slices.SortFunc(results, func(a, b core.GraphNeighbor) int {
		if a.Hops != b.Hops {
			return a.Hops - b.Hops
		}
		if a.Weight != b.Weight {
			if a.Weight < b.Weight {
				return -1
			}
			return 1
		}
		return strings.Compare(a.Node.ID, b.Node.ID)
	})
	return results, nil
}

// readNode reads a node from the transaction. Returns nil if absent.
func readNode(tx *badger.Txn, key []byte) (*core.Node, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var node *core.Node
	err = item.Value(func(val []byte) error {
		var err error
		node, err = storage.UnmarshalNode(val)
		return err
	})
	return node, err
}

// readAdjacency reads a node's outgoing edge list. Returns nil if absent.
func readAdjacency(tx *badger.Txn, key []byte) ([]core.Edge, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var edges []core.Edge
	err = item.Value(func(val []byte) error {
		var err error
		edges, _, err = core.EdgeSliceMUS.Unmarshal(val)
		return err
	})
	return edges, err
}
