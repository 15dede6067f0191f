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


package core

import "errors"

// Domain validation errors
var (
	// ErrInvalidNode indicates a Node failed validation.
	ErrInvalidNode = errors.New("invalid node")

	// ErrInvalidEdge indicates an Edge failed validation.
	ErrInvalidEdge = errors.New("invalid edge")

	// ErrInvalidEmbedding indicates an EmbeddingRecord failed validation.
	ErrInvalidEmbedding = errors.New("invalid embedding record")

	// ErrEmptyNodeID indicates the ID field is empty.
	ErrEmptyNodeID = errors.New("node id cannot be empty")

	// ErrInvalidNodeKind indicates an invalid NodeKind value.
	ErrInvalidNodeKind = errors.New("invalid node kind")

	// ErrUnknownRelKind indicates an unrecognized relationship kind name.
	ErrUnknownRelKind = errors.New("unknown relationship kind")

	// ErrInvalidLocation indicates a latitude/longitude outside valid ranges.
	ErrInvalidLocation = errors.New("invalid location")

	// ErrNegativeWeight indicates an edge weight below zero.
	ErrNegativeWeight = errors.New("edge weight cannot be negative")

	// ErrTruncatedRecord indicates serialized data was too short to decode.
	ErrTruncatedRecord = errors.New("truncated record data")
)
