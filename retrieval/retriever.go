package retrieval

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/citymuse/wayfinder/ai"
	"github.com/citymuse/wayfinder/core"
	"github.com/citymuse/wayfinder/storage"
	"github.com/google/uuid"
)

// Result is the outcome of one hybrid retrieval.
type Result struct {
	// TraceID correlates this retrieval across log lines.
	TraceID string

	// Candidates are ranked best-first, at most TopK of them.
	Candidates []core.RankedCandidate

	// Degraded is true when graph traversal failed and the ranking fell
	// back to semantic-only scoring.
	Degraded bool

	// Elapsed is the wall-clock duration of the retrieval.
	Elapsed time.Duration
}

// Retriever blends semantic vector search with graph proximity to rank
// places against a free-text query.
type Retriever struct {
	graph    storage.GraphRepository
	index    storage.EmbeddingRepository
	embedder ai.Embedder
	config   *Config
	logger   *slog.Logger
}

// Option configures a Retriever.
type Option func(*Retriever) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Retriever) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
		return nil
	}
}

// WithConfig replaces the default retrieval configuration.
// The config is validated when applied.
func WithConfig(config *Config) Option {
	return func(r *Retriever) error {
		if config == nil {
			config = DefaultConfig()
		}
		if err := config.Validate(); err != nil {
			return err
		}
		r.config = config
		return nil
	}
}

// NewRetriever creates a new retriever.
func NewRetriever(
	graph storage.GraphRepository,
	index storage.EmbeddingRepository,
	provider ai.AIProvider,
	opts ...Option,
) (*Retriever, error) {
	if graph == nil {
		return nil, ErrGraphRepositoryRequired
	}
	if index == nil {
		return nil, ErrEmbeddingRepositoryRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	r := &Retriever{
		graph:    graph,
		index:    index,
		embedder: provider.Embedder(),
		config:   DefaultConfig(),
		logger:   slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// Config returns the retriever's active configuration.
func (r *Retriever) Config() *Config {
	return r.config
}

// Retrieve ranks places against the query.
// Returns up to TopK candidates, ranked by blended score.
func (r *Retriever) Retrieve(ctx context.Context, query string) (*Result, error) {
	return r.RetrieveWithMonitor(ctx, query, nil)
}

// RetrieveWithMonitor ranks places against the query with monitoring.
// The monitor receives callbacks at each stage of the retrieval process.
// Returns up to TopK candidates, ranked by blended score.
func (r *Retriever) RetrieveWithMonitor(ctx context.Context, query string, monitor RetrievalMonitor) (*Result, error) {
	// Use noop monitor if none provided
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	if strings.TrimSpace(query) == "" {
		return nil, ErrInvalidQuery
	}

	start := time.Now()
	traceID := uuid.NewString()
	// Raw query text stays out of the log stream; the hash is enough to
	// correlate repeated queries.
	queryHash := core.HashText(query)
	logger := r.logger.With("trace", traceID, "query_hash", queryHash)
	monitor.Start(queryHash)

	// 1. Encode the query
	vector, err := callWithRetry(ctx, r.config.EncodeTimeout, r.config.RetryDelay, func(ctx context.Context) ([]float32, error) {
		return r.embedder.EmbedText(ctx, query)
	})
	if err != nil {
		logger.Error("error encoding query", "err", err)
		return nil, fmt.Errorf("encoding query: %w", err)
	}
	monitor.AfterEncode(len(vector))

	// 2. Semantic search over an oversampled pool, so graph-adjacent
	// candidates outside the strict top-K can still surface after blending
	poolSize := r.config.Oversample * r.config.TopK
	hits, err := callWithRetry(ctx, r.config.IndexTimeout, r.config.RetryDelay, func(ctx context.Context) ([]core.SemanticHit, error) {
		return r.index.QueryNearest(ctx, vector, poolSize)
	})
	if err != nil {
		logger.Error("vector index query failed", "err", err)
		return nil, fmt.Errorf("%w: %s", ErrIndexUnavailable, err)
	}
	monitor.AfterSemanticSearch(hits)

	// 3. Hydrate nodes and expand the graph around each hit
	degraded := false
	candidates := make([]core.RankedCandidate, 0, len(hits))
	for _, hit := range hits {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		semantic := core.ClampScore(hit.Score)

		node := core.Node{ID: hit.NodeID, Kind: core.NodeKindPOI}
		if !degraded {
			fetched, err := callWithRetry(ctx, r.config.GraphTimeout, r.config.RetryDelay, func(ctx context.Context) (*core.Node, error) {
				return r.graph.GetNode(ctx, core.NodeKindPOI, hit.NodeID)
			})
			switch {
			case err == nil:
				node = *fetched
			case errors.Is(err, storage.ErrNotFound):
				// Stale vector from a previous snapshot generation
				logger.Debug("semantic hit without graph node", "node", hit.NodeID)
				continue
			default:
				degraded = true
				monitor.GraphDegraded(err)
				logger.Warn("graph lookup failed, degrading to semantic-only ranking",
					"node", hit.NodeID,
					"err", fmt.Errorf("%w: %s", ErrGraphUnavailable, err))
			}
		}

		var support []core.GraphNeighbor
		graphScore := 0.0
		if !degraded && r.config.MaxHops > 0 {
			neighbors, err := callWithRetry(ctx, r.config.GraphTimeout, r.config.RetryDelay, func(ctx context.Context) ([]core.GraphNeighbor, error) {
				return r.graph.Neighbors(ctx, node.Kind, node.ID, r.config.MaxHops, r.config.RelKinds)
			})
			switch {
			case err == nil:
				support = neighbors
				if len(neighbors) > 0 {
					minWeight := neighbors[0].Weight
					for _, nb := range neighbors[1:] {
						if nb.Weight < minWeight {
							minWeight = nb.Weight
						}
					}
					graphScore = 1 / (1 + minWeight)
				}
			case errors.Is(err, storage.ErrNotFound):
				// Isolated node: no connections is a valid state
				logger.Debug("candidate has no graph entry", "node", node.ID)
			default:
				degraded = true
				monitor.GraphDegraded(err)
				logger.Warn("graph expansion failed, degrading to semantic-only ranking",
					"node", node.ID,
					"err", fmt.Errorf("%w: %s", ErrGraphUnavailable, err))
			}
			monitor.AfterGraphExpansion(node.ID, support)
		}

		candidates = append(candidates, core.RankedCandidate{
			Node:          node,
			SemanticScore: semantic,
			GraphScore:    graphScore,
			CombinedScore: r.config.Alpha*semantic + (1-r.config.Alpha)*graphScore,
			Support:       support,
		})
	}

	// Degradation applies to the whole result, including hits expanded
	// before the graph went away
	if degraded {
		for i := range candidates {
			candidates[i].GraphScore = 0
			candidates[i].Support = nil
			candidates[i].CombinedScore = r.config.Alpha * candidates[i].SemanticScore
		}
	}

	// 4. Dedupe by node id, keeping the highest combined score
	candidates = dedupeByID(candidates)

	// 5. Rank and truncate
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].CombinedScore != candidates[j].CombinedScore {
			return candidates[i].CombinedScore > candidates[j].CombinedScore
		}
		if candidates[i].SemanticScore != candidates[j].SemanticScore {
			return candidates[i].SemanticScore > candidates[j].SemanticScore
		}
		return candidates[i].Node.ID < candidates[j].Node.ID
	})
	if len(candidates) > r.config.TopK {
		candidates = candidates[:r.config.TopK]
	}

	result := &Result{
		TraceID:    traceID,
		Candidates: candidates,
		Degraded:   degraded,
		Elapsed:    time.Since(start),
	}
	logger.Info("retrieval complete",
		"candidates", len(candidates),
		"degraded", degraded,
		"elapsed", result.Elapsed)
	monitor.Finish(result)

	return result, nil
}

// dedupeByID keeps one candidate per node id, preferring the highest
// combined score.
func dedupeByID(candidates []core.RankedCandidate) []core.RankedCandidate {
	best := make(map[string]int, len(candidates))
	out := candidates[:0]
	for _, c := range candidates {
		if idx, ok := best[c.Node.ID]; ok {
			if c.CombinedScore > out[idx].CombinedScore {
				out[idx] = c
			}
			continue
		}
		best[c.Node.ID] = len(out)
		out = append(out, c)
	}
	return out
}

// callWithRetry runs fn under a per-call timeout and retries it once after
// retryDelay on transient failure. Context cancellation and domain errors
// (not-found, invalid input) are not retried.
func callWithRetry[T any](ctx context.Context, timeout, retryDelay time.Duration, fn func(context.Context) (T, error)) (T, error) {
	run := func() (T, error) {
		callCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		return fn(callCtx)
	}

	v, err := run()
	if err == nil || !retryable(ctx, err) {
		return v, err
	}

	select {
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	case <-time.After(retryDelay):
	}
	return run()
}

// retryable reports whether a failed external call is worth one more attempt.
func retryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	if errors.Is(err, storage.ErrNotFound) || errors.Is(err, storage.ErrInvalidQuery) {
		return false
	}
	return true
}
