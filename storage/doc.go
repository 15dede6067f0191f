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


// Package storage defines the persistence interfaces for the knowledge graph
// and the embedding index, plus the binary serialization helpers shared by
// backend implementations.
//
// The retrieval engine is read-only over both stores at query time; writes
// happen only through bulk snapshot loads that replace the visible view
// atomically (see SnapshotLoader).
package storage
