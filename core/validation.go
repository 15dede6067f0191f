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

import "fmt"

// ValidateNode validates a Node according to domain rules.
//
// Validation rules:
//   - ID must not be empty
//   - Kind must be a known NodeKind
//   - Lat/Lon must be within valid ranges
//
// NOT validated:
//   - Description/Tags (POI enrichment may backfill them)
//   - Mode (route loaders default it)
func ValidateNode(node *Node) error {
	if node == nil {
		return fmt.Errorf("%w: node is nil", ErrInvalidNode)
	}

	if node.ID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidNode, ErrEmptyNodeID)
	}

	if err := ValidateNodeKind(node.Kind); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidNode, err)
	}

	if node.Lat < -90 || node.Lat > 90 || node.Lon < -180 || node.Lon > 180 {
		return fmt.Errorf("%w: %w: (%f, %f)", ErrInvalidNode, ErrInvalidLocation, node.Lat, node.Lon)
	}

	return nil
}

// ValidateEdge validates an Edge according to domain rules.
//
// Validation rules:
//   - Both endpoints must have a non-empty id and a known kind
//   - Kind must be a known RelKind
//   - Weight must be non-negative
//   - IS_NEAR edges may only connect Stop-POI or POI-POI
//
// The spatial distance constraint on IS_NEAR edges requires node locations
// and is enforced at batch load time, not here.
func ValidateEdge(edge *Edge) error {
	if edge == nil {
		return fmt.Errorf("%w: edge is nil", ErrInvalidEdge)
	}

	if edge.Source.ID == "" || edge.Target.ID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidEdge, ErrEmptyNodeID)
	}

	if err := ValidateNodeKind(edge.Source.Kind); err != nil {
		return fmt.Errorf("%w: source: %w", ErrInvalidEdge, err)
	}
	if err := ValidateNodeKind(edge.Target.Kind); err != nil {
		return fmt.Errorf("%w: target: %w", ErrInvalidEdge, err)
	}

	switch edge.Kind {
	case RelIsNear:
		if !isNearEndpoints(edge.Source.Kind, edge.Target.Kind) {
			return fmt.Errorf("%w: IS_NEAR must connect stop-poi or poi-poi, got %s-%s",
				ErrInvalidEdge, edge.Source.Kind, edge.Target.Kind)
		}
	case RelServes, RelConnects:
	default:
		return fmt.Errorf("%w: %w: value %d", ErrInvalidEdge, ErrUnknownRelKind, edge.Kind)
	}

	if edge.Weight < 0 {
		return fmt.Errorf("%w: %w: %f", ErrInvalidEdge, ErrNegativeWeight, edge.Weight)
	}

	return nil
}

// ValidateEmbeddingRecord validates an EmbeddingRecord according to domain rules.
//
// Validation rules:
//   - NodeID must not be empty
//   - Vector must not be empty
func ValidateEmbeddingRecord(record *EmbeddingRecord) error {
	if record == nil {
		return fmt.Errorf("%w: record is nil", ErrInvalidEmbedding)
	}

	if record.NodeID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidEmbedding, ErrEmptyNodeID)
	}

	if len(record.Vector) == 0 {
		return fmt.Errorf("%w: vector cannot be empty", ErrInvalidEmbedding)
	}

	return nil
}

// ValidateNodeKind validates that a NodeKind has a valid value.
func ValidateNodeKind(kind NodeKind) error {
	if kind != NodeKindStop && kind != NodeKindPOI && kind != NodeKindRoute {
		return fmt.Errorf("%w: value %d", ErrInvalidNodeKind, kind)
	}
	return nil
}

// isNearEndpoints reports whether an IS_NEAR edge is allowed between the
// given endpoint kinds (either direction).
func isNearEndpoints(a, b NodeKind) bool {
	if a == NodeKindPOI && b == NodeKindPOI {
		return true
	}
	return (a == NodeKindStop && b == NodeKindPOI) || (a == NodeKindPOI && b == NodeKindStop)
}
