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


package retrieval

import "errors"

var (
	// ErrGraphRepositoryRequired is returned when a graph repository is not provided.
	ErrGraphRepositoryRequired = errors.New("graph repository required")

	// ErrEmbeddingRepositoryRequired is returned when an embedding repository is not provided.
	ErrEmbeddingRepositoryRequired = errors.New("embedding repository required")

	// ErrAIProviderRequired is returned when an AI provider is not provided.
	ErrAIProviderRequired = errors.New("AI provider required")

	// ErrInvalidQuery is returned for empty or whitespace-only queries,
	// before any external dependency is consulted.
	ErrInvalidQuery = errors.New("invalid query")

	// ErrIndexUnavailable is returned when the vector index cannot be
	// queried. Retrieval fails as a whole; no partial ranking is returned.
	ErrIndexUnavailable = errors.New("vector index unavailable")

	// ErrGraphUnavailable marks graph traversal failures. Retrieval does not
	// fail on it: results degrade to semantic-only scoring and the result is
	// flagged as degraded.
	ErrGraphUnavailable = errors.New("graph unavailable")

	// ErrGeneration wraps narrative generation failures. The retrieval
	// result that fed the narrator remains valid.
	ErrGeneration = errors.New("narrative generation failed")
)
