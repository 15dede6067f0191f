package ingestion

import "errors"

var (
	// ErrSnapshotLoaderRequired is returned when a snapshot loader is not provided.
	ErrSnapshotLoaderRequired = errors.New("snapshot loader required")

	// ErrAIProviderRequired is returned when an AI provider is not provided.
	ErrAIProviderRequired = errors.New("AI provider required")

	// ErrMalformedFeed is returned when a GTFS file cannot be parsed.
	ErrMalformedFeed = errors.New("malformed GTFS feed")

	// ErrEmbeddingMismatch is returned when the embedder returns a different
	// number of vectors than texts submitted.
	ErrEmbeddingMismatch = errors.New("embedding result count mismatch")
)
