package reindex

import (
	"context"
	"fmt"
	"time"

	"github.com/citymuse/wayfinder/ai"
	"github.com/citymuse/wayfinder/core"
	"github.com/citymuse/wayfinder/storage"
)

// BatchProcessor generates fresh embeddings for batches of POI nodes and
// writes them into the vector index.
type BatchProcessor struct {
	index          storage.EmbeddingRepository
	embedder       ai.Embedder
	maxRetries     int
	retryBaseDelay time.Duration
}

// NewBatchProcessor creates a new batch processor.
// maxRetries: maximum number of retry attempts for embedding API calls
// retryBaseDelay: base delay for exponential backoff
func NewBatchProcessor(index storage.EmbeddingRepository, embedder ai.Embedder, maxRetries int, retryBaseDelay time.Duration) *BatchProcessor {
	return &BatchProcessor{
		index:          index,
		embedder:       embedder,
		maxRetries:     maxRetries,
		retryBaseDelay: retryBaseDelay,
	}
}

// Process generates embeddings for a batch of places and upserts them into
// the index. Vectors are normalized after embedding so that stored vectors
// stay compatible with cosine similarity.
func (bp *BatchProcessor) Process(ctx context.Context, pois []*core.Node) error {
	if len(pois) == 0 {
		return nil
	}

	texts := make([]string, len(pois))
	for i, poi := range pois {
		if poi.Description != "" {
			texts[i] = poi.Description
		} else {
			texts[i] = poi.Name
		}
	}

	// Generate embeddings with retry
	var embeddings [][]float32
	err := RetryWithBackoff(ctx, func() error {
		var err error
		embeddings, err = bp.embedder.EmbedTexts(ctx, texts)
		return err
	}, bp.maxRetries, bp.retryBaseDelay)

	if err != nil {
		return fmt.Errorf("failed to generate embeddings after %d attempts: %w", bp.maxRetries, err)
	}

	if len(embeddings) != len(pois) {
		return fmt.Errorf("embedding count mismatch: expected %d, got %d", len(pois), len(embeddings))
	}

	records := make([]*core.EmbeddingRecord, len(pois))
	for i, poi := range pois {
		records[i] = &core.EmbeddingRecord{
			NodeID: poi.ID,
			Vector: core.NormalizeVector(embeddings[i]),
		}
	}

	if err := bp.index.UpsertEmbeddings(ctx, records...); err != nil {
		return fmt.Errorf("failed to update index: %w", err)
	}

	return nil
}
