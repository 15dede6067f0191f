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


package wayfinder

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/citymuse/wayfinder/ai"
	"github.com/citymuse/wayfinder/ai/openai"
	"github.com/citymuse/wayfinder/ingestion"
	"github.com/citymuse/wayfinder/reindex"
	"github.com/citymuse/wayfinder/retrieval"
	"github.com/citymuse/wayfinder/storage"
	"github.com/citymuse/wayfinder/storage/badger"
)

// Engine wires the persistent stores, the AI provider and the hybrid
// retriever into one handle over a city dataset.
type Engine struct {
	backend   *badger.Backend
	graphRepo storage.GraphRepository
	embedRepo storage.EmbeddingRepository
	provider  ai.AIProvider
	retriever *retrieval.Retriever
	logger    *slog.Logger
}

// Itinerary is the answer to one free-text query: the narrative the guide
// produced, the context it was grounded on, and the retrieval result the
// context was assembled from.
type Itinerary struct {
	Query     string
	Narrative string
	Context   string
	Dropped   int
	Retrieval *retrieval.Result
}

// EngineOption configures an Engine.
type EngineOption func(*engineOptions)

type engineOptions struct {
	aiConfig        *ai.Config
	retrievalConfig *retrieval.Config
	provider        ai.AIProvider
}

// WithAIConfig sets the AI provider configuration.
func WithAIConfig(config *ai.Config) EngineOption {
	return func(o *engineOptions) {
		o.aiConfig = config
	}
}

// WithRetrievalConfig sets the retrieval configuration.
func WithRetrievalConfig(config *retrieval.Config) EngineOption {
	return func(o *engineOptions) {
		o.retrievalConfig = config
	}
}

// WithProvider replaces the default OpenAI-compatible provider, e.g. with
// the mock provider in tests.
func WithProvider(provider ai.AIProvider) EngineOption {
	return func(o *engineOptions) {
		o.provider = provider
	}
}

func NewEngine(filePath string, opts ...EngineOption) (*Engine, error) {
	// Apply options
	options := &engineOptions{
		aiConfig:        ai.DefaultConfig(), // Default if not provided
		retrievalConfig: retrieval.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(options)
	}

	// Open backend
	backend, err := badger.OpenBackend(filePath, false)
	if err != nil {
		return nil, err
	}

	// Create graph repository
	graphRepo, err := badger.NewGraphRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	// Create embedding repository
	embedRepo, err := badger.NewEmbeddingRepository(backend)
	if err != nil {
		graphRepo.Close()
		backend.Close()
		return nil, err
	}

	// Create AI provider with configured settings
	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			embedRepo.Close()
			graphRepo.Close()
			backend.Close()
			return nil, err
		}
	}

	retriever, err := retrieval.NewRetriever(graphRepo, embedRepo, provider,
		retrieval.WithConfig(options.retrievalConfig))
	if err != nil {
		provider.Close()
		embedRepo.Close()
		graphRepo.Close()
		backend.Close()
		return nil, err
	}

	return &Engine{
		backend:   backend,
		graphRepo: graphRepo,
		embedRepo: embedRepo,
		provider:  provider,
		retriever: retriever,
		logger:    slog.Default(),
	}, nil
}

func (e *Engine) Close() error {
	// Close AI provider first
	if err := e.provider.Close(); err != nil {
		e.logger.Error("error closing AI provider", "err", err)
	}

	// Close repositories
	if err := e.embedRepo.Close(); err != nil {
		e.logger.Error("error closing embedding repository", "err", err)
		return err
	}
	if err := e.graphRepo.Close(); err != nil {
		e.logger.Error("error closing graph repository", "err", err)
		return err
	}

	// Close backend
	if err := e.backend.Close(); err != nil {
		e.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

func (e *Engine) GraphRepository() storage.GraphRepository {
	return e.graphRepo
}

func (e *Engine) EmbeddingRepository() storage.EmbeddingRepository {
	return e.embedRepo
}

// Retrieve ranks places against the query without generating a narrative.
func (e *Engine) Retrieve(ctx context.Context, query string) (*retrieval.Result, error) {
	return e.retriever.Retrieve(ctx, query)
}

// Itinerary runs the full pipeline: retrieve, assemble a bounded context
// block, and ask the narrator for a guide-style answer.
//
// When narrative generation fails, the returned error wraps
// retrieval.ErrGeneration and the returned itinerary still carries the
// valid retrieval result and assembled context.
func (e *Engine) Itinerary(ctx context.Context, query string) (*Itinerary, error) {
	result, err := e.retriever.Retrieve(ctx, query)
	if err != nil {
		return nil, err
	}

	config := e.retriever.Config()
	contextBlock, dropped := retrieval.AssembleContext(result.Candidates, config.MaxContextChars)

	itinerary := &Itinerary{
		Query:     query,
		Context:   contextBlock,
		Dropped:   dropped,
		Retrieval: result,
	}

	narrateCtx, cancel := context.WithTimeout(ctx, config.NarrateTimeout)
	defer cancel()

	narrative, err := e.provider.Narrator().Narrate(narrateCtx, query, contextBlock)
	if err != nil {
		e.logger.Error("narrative generation failed",
			"trace_id", result.TraceID,
			"err", err)
		return itinerary, fmt.Errorf("%w: %s", retrieval.ErrGeneration, err)
	}

	itinerary.Narrative = narrative
	return itinerary, nil
}

func (e *Engine) NewIngestionPipeline(opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	return ingestion.NewPipeline(e.backend, e.provider, opts...)
}

func (e *Engine) NewReindexer(config *reindex.Config, progress io.Writer) *reindex.Reindexer {
	return reindex.NewReindexer(e.graphRepo, e.embedRepo, e.provider.Embedder(), config, progress)
}
