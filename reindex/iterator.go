// Copyright 2025 Citymuse Contributors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package reindex

import (
	"context"

	"github.com/citymuse/wayfinder/core"
	"github.com/citymuse/wayfinder/storage"
)

const (
	// DefaultBatchSize is the default number of places to embed per batch
	DefaultBatchSize = 100
)

// POIIterator iterates over every point of interest in the graph in batches.
type POIIterator struct {
	graph     storage.GraphRepository
	batchSize int
}

// NewPOIIterator creates a new iterator over the graph's POI nodes.
// batchSize: number of places per batch (must be > 0)
func NewPOIIterator(graph storage.GraphRepository, batchSize int) *POIIterator {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	return &POIIterator{
		graph:     graph,
		batchSize: batchSize,
	}
}

// ForEach iterates over all POI nodes, calling fn for each batch.
// Iteration stops on first error from fn or when all places are processed.
// Context cancellation is checked between batches.
func (it *POIIterator) ForEach(ctx context.Context, fn func([]*core.Node) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	pois, err := it.graph.GetPOIs(ctx)
	if err != nil {
		return err
	}

	return it.ForEachOf(ctx, pois, fn)
}

// ForEachOf batches an already-fetched list of places, so a caller that has
// counted the list can process exactly those places even if the snapshot is
// swapped meanwhile.
func (it *POIIterator) ForEachOf(ctx context.Context, pois []*core.Node, fn func([]*core.Node) error) error {
	if len(pois) == 0 {
		return nil
	}

	for i := 0; i < len(pois); i += it.batchSize {
		end := i + it.batchSize
		if end > len(pois) {
			end = len(pois)
		}

		if err := fn(pois[i:end]); err != nil {
			return err
		}

		// Check context after each batch
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
	}

	return nil
}
