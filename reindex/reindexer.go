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
	"fmt"
	"io"
	"time"

	"github.com/citymuse/wayfinder/ai"
	"github.com/citymuse/wayfinder/core"
	"github.com/citymuse/wayfinder/storage"
)

// Config holds configuration for the reindexing operation.
type Config struct {
	// BatchSize is the number of places to embed in each batch
	BatchSize int

	// ReportInterval is how often to report progress (number of places)
	ReportInterval int

	// MaxRetries is the maximum number of retry attempts for failed operations
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff
	RetryDelay time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      100,
		ReportInterval: 100,
		MaxRetries:     3,
		RetryDelay:     1 * time.Second,
	}
}

// Reindexer rebuilds the semantic vector index from the descriptions of
// every point of interest currently in the graph. Existing vectors are
// replaced in place, so a reindex after switching embedding models brings
// the whole index onto the new model without reloading the graph.
type Reindexer struct {
	graph     storage.GraphRepository
	index     storage.EmbeddingRepository
	embedder  ai.Embedder
	config    *Config
	progress  io.Writer
	processor *BatchProcessor
	iterator  *POIIterator
}

// NewReindexer creates a new reindexer.
// progress: where to write progress output (typically os.Stderr)
func NewReindexer(graph storage.GraphRepository, index storage.EmbeddingRepository, embedder ai.Embedder, config *Config, progress io.Writer) *Reindexer {
	if config == nil {
		config = DefaultConfig()
	}

	processor := NewBatchProcessor(index, embedder, config.MaxRetries, config.RetryDelay)
	iterator := NewPOIIterator(graph, config.BatchSize)

	return &Reindexer{
		graph:     graph,
		index:     index,
		embedder:  embedder,
		config:    config,
		progress:  progress,
		processor: processor,
		iterator:  iterator,
	}
}

// Run executes the reindexing operation.
// Every POI in the graph is embedded with the configured embedder and its
// vector upserted into the index. Progress is reported to the configured
// writer.
func (r *Reindexer) Run(ctx context.Context) error {
	pois, err := r.graph.GetPOIs(ctx)
	if err != nil {
		return fmt.Errorf("failed to list places: %w", err)
	}

	totalPlaces := len(pois)
	if totalPlaces == 0 {
		fmt.Fprintf(r.progress, "No places found in graph (0 places)\n")
		return nil
	}

	fmt.Fprintf(r.progress, "Starting reindex of %d places (batch size: %d)\n",
		totalPlaces, r.config.BatchSize)

	tracker := NewProgressTracker(r.progress, totalPlaces, r.config.ReportInterval)
	tracker.Start()

	processed := 0

	// Batch the list already counted above, so the progress total always
	// matches what gets processed
	err = r.iterator.ForEachOf(ctx, pois, func(batch []*core.Node) error {
		if err := r.processor.Process(ctx, batch); err != nil {
			return fmt.Errorf("failed to process batch: %w", err)
		}

		processed += len(batch)
		tracker.Update(processed)

		return nil
	})

	if err != nil {
		return err
	}

	tracker.Finish()

	elapsed := tracker.Elapsed()
	fmt.Fprintf(r.progress, "Reindex complete. Processed %d places in %v (%.1f places/sec)\n",
		totalPlaces, elapsed.Round(time.Second), float64(totalPlaces)/elapsed.Seconds())

	return nil
}
