// Package reindex rebuilds the semantic vector index from the graph's
// POI descriptions, typically after switching to a new or updated
// embedding model.
//
// The package supports batch processing of places, progress tracking,
// retry logic with exponential backoff, and vector normalization to keep
// stored vectors compatible with cosine similarity search.
package reindex
