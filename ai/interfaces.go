package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// The returned vector represents the semantic meaning of the text.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// Batch processing is more efficient than calling EmbedText multiple times.
	// The returned slice contains embeddings in the same order as the input texts.
	// Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Narrator turns retrieved context into a traveller-facing answer.
// Implementations must be thread-safe for concurrent use.
type Narrator interface {
	// Narrate produces a short guide-style answer to the query, grounded
	// in the supplied context block. The context is the assembled text of
	// retrieved stops, routes, and places; implementations must not invent
	// facts that are absent from it.
	// Returns an error if generation fails.
	Narrate(ctx context.Context, query string, contextBlock string) (string, error)
}

// AIProvider aggregates AI services for convenient initialization and lifecycle management.
// A provider creates and manages Embedder and Narrator instances,
// ensuring they share configuration and resources appropriately.
type AIProvider interface {
	// Embedder returns the text embedding service.
	// The returned Embedder is safe for concurrent use.
	Embedder() Embedder

	// Narrator returns the narrative generation service.
	// The returned Narrator is safe for concurrent use.
	Narrator() Narrator

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
