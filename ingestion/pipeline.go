package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"

	"github.com/citymuse/wayfinder/ai"
	"github.com/citymuse/wayfinder/core"
	"github.com/citymuse/wayfinder/storage"
	"github.com/panjf2000/ants/v2"
)

// embedBatchSize is the number of POI descriptions sent to the embedder in
// one batch call.
const embedBatchSize = 16

// Pipeline turns a GTFS feed and a set of POI sources into a complete
// snapshot: it embeds POI descriptions concurrently, links stops and POIs by
// distance, and hands the whole batch to the snapshot loader all-or-nothing.
type Pipeline struct {
	loader          storage.SnapshotLoader
	embedder        ai.Embedder
	pool            *ants.Pool
	nearLimitMeters float64
	logger          *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent embedding.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		// Release old pool
		if p.pool != nil {
			p.pool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

// WithNearLimit sets the maximum stop/POI distance in meters for IS_NEAR
// linking. Default is 400.
func WithNearLimit(meters float64) Option {
	return func(p *Pipeline) error {
		if meters <= 0 {
			return fmt.Errorf("near limit must be positive, got %f", meters)
		}
		p.nearLimitMeters = meters
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(
	loader storage.SnapshotLoader,
	provider ai.AIProvider,
	opts ...Option,
) (*Pipeline, error) {
	if loader == nil {
		return nil, ErrSnapshotLoaderRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	// Default pool size
	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		loader:          loader,
		embedder:        provider.Embedder(),
		pool:            pool,
		nearLimitMeters: 400,
		logger:          slog.Default(),
	}

	// Apply options (may override defaults)
	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	return p, nil
}

// Load embeds the POI descriptions, derives IS_NEAR edges, and loads the
// complete snapshot. The load is all-or-nothing: any invalid node, edge, or
// vector rejects the whole batch and the prior snapshot stays in place.
func (p *Pipeline) Load(ctx context.Context, feed *GTFSFeed, sources []POISource) error {
	if feed == nil {
		feed = &GTFSFeed{}
	}

	pois := make([]*core.Node, len(sources))
	for i := range sources {
		pois[i] = sources[i].Node()
	}

	embeddings, err := p.embedAll(ctx, pois)
	if err != nil {
		return err
	}

	nodes := make([]*core.Node, 0, len(feed.Stops)+len(feed.Routes)+len(pois))
	nodes = append(nodes, feed.Stops...)
	nodes = append(nodes, feed.Routes...)
	nodes = append(nodes, pois...)

	edges := make([]*core.Edge, 0, len(feed.Edges))
	edges = append(edges, feed.Edges...)
	edges = append(edges, LinkNearby(feed.Stops, pois, p.nearLimitMeters)...)

	p.logger.Info("loading snapshot",
		"nodes", len(nodes), "edges", len(edges), "vectors", len(embeddings))
	return p.loader.LoadSnapshot(ctx, nodes, edges, embeddings)
}

// embedAll generates normalized embedding records for the POI descriptions,
// batched across the worker pool.
func (p *Pipeline) embedAll(ctx context.Context, pois []*core.Node) ([]*core.EmbeddingRecord, error) {
	records := make([]*core.EmbeddingRecord, len(pois))

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)

	for start := 0; start < len(pois); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(pois) {
			end = len(pois)
		}
		batch := pois[start:end]
		offset := start

		wg.Add(1)
		submitErr := p.pool.Submit(func() {
			defer wg.Done()

			texts := make([]string, len(batch))
			for i, poi := range batch {
				texts[i] = poi.Description
			}

			vectors, err := p.embedder.EmbedTexts(ctx, texts)
			if err == nil && len(vectors) != len(batch) {
				err = fmt.Errorf("%w: expected %d, received %d", ErrEmbeddingMismatch, len(batch), len(vectors))
			}
			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
				return
			}

			for i, vector := range vectors {
				records[offset+i] = &core.EmbeddingRecord{
					NodeID: batch[i].ID,
					Vector: core.NormalizeVector(vector),
				}
			}
		})
		if submitErr != nil {
			wg.Done()
			return nil, submitErr
		}
	}

	wg.Wait()
	if firstErr != nil {
		p.logger.Error("error embedding POI descriptions", "err", firstErr)
		return nil, firstErr
	}
	return records, nil
}

// Release releases the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}
