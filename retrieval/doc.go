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


// Package retrieval provides hybrid retrieval over the city graph.
//
// The Retriever type implements a multi-stage ranking algorithm that combines:
//   - Semantic search using vector embeddings over place descriptions
//   - Graph proximity via bounded traversal of stop/route/place relationships
//
// Each candidate's combined score is a weighted blend of the two signals.
// When the graph layer is unavailable the retriever degrades to semantic-only
// ranking instead of failing, and flags the result accordingly.
//
// AssembleContext renders a ranked result into a bounded plain-text block
// suitable for prompting a narrator model.
package retrieval
