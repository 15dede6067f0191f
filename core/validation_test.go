package core

import (
	"errors"
	"testing"
)

func TestValidateNode(t *testing.T) {
	tests := []struct {
		name    string
		node    *Node
		wantErr error
	}{
		{
			name: "valid stop",
			node: &Node{
				ID:   "HSL:1040406",
				Kind: NodeKindStop,
				Name: "Kamppi",
				Lat:  60.1688,
				Lon:  24.9316,
			},
			wantErr: nil,
		},
		{
			name: "valid poi with tags and description",
			node: &Node{
				ID:          "osm:123",
				Kind:        NodeKindPOI,
				Name:        "Arkadia Bookshop",
				Lat:         60.17,
				Lon:         24.93,
				Tags:        []string{"bookshop", "cafe"},
				Description: "Arkadia Bookshop (bookshop)",
			},
			wantErr: nil,
		},
		{
			name: "valid poi without description",
			node: &Node{
				ID:   "osm:124",
				Kind: NodeKindPOI,
				Name: "Unnamed corner",
				Lat:  60.17,
				Lon:  24.93,
			},
			wantErr: nil,
		},
		{
			name:    "nil node",
			node:    nil,
			wantErr: ErrInvalidNode,
		},
		{
			name: "empty id",
			node: &Node{
				Kind: NodeKindStop,
				Name: "Kamppi",
				Lat:  60.1688,
				Lon:  24.9316,
			},
			wantErr: ErrEmptyNodeID,
		},
		{
			name: "invalid kind",
			node: &Node{
				ID:   "x",
				Kind: NodeKind(99),
				Name: "x",
			},
			wantErr: ErrInvalidNodeKind,
		},
		{
			name: "latitude out of range",
			node: &Node{
				ID:   "x",
				Kind: NodeKindStop,
				Name: "x",
				Lat:  91,
			},
			wantErr: ErrInvalidLocation,
		},
		{
			name: "longitude out of range",
			node: &Node{
				ID:   "x",
				Kind: NodeKindStop,
				Name: "x",
				Lon:  -181,
			},
			wantErr: ErrInvalidLocation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateNode(tt.node)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateNode() unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateNode() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateEdge(t *testing.T) {
	stop := NodeRef{Kind: NodeKindStop, ID: "s1"}
	poi := NodeRef{Kind: NodeKindPOI, ID: "p1"}
	poi2 := NodeRef{Kind: NodeKindPOI, ID: "p2"}
	route := NodeRef{Kind: NodeKindRoute, ID: "r1"}

	tests := []struct {
		name    string
		edge    *Edge
		wantErr error
	}{
		{
			name:    "is near stop to poi",
			edge:    &Edge{Source: stop, Target: poi, Kind: RelIsNear, Weight: 0.2},
			wantErr: nil,
		},
		{
			name:    "is near poi to poi",
			edge:    &Edge{Source: poi, Target: poi2, Kind: RelIsNear, Weight: 0.1},
			wantErr: nil,
		},
		{
			name:    "serves route to stop",
			edge:    &Edge{Source: route, Target: stop, Kind: RelServes, Weight: 0},
			wantErr: nil,
		},
		{
			name:    "connects stop to stop",
			edge:    &Edge{Source: stop, Target: NodeRef{Kind: NodeKindStop, ID: "s2"}, Kind: RelConnects, Weight: 1.5},
			wantErr: nil,
		},
		{
			name:    "nil edge",
			edge:    nil,
			wantErr: ErrInvalidEdge,
		},
		{
			name:    "empty source id",
			edge:    &Edge{Source: NodeRef{Kind: NodeKindStop}, Target: poi, Kind: RelIsNear},
			wantErr: ErrEmptyNodeID,
		},
		{
			name:    "is near between stops rejected",
			edge:    &Edge{Source: stop, Target: NodeRef{Kind: NodeKindStop, ID: "s2"}, Kind: RelIsNear},
			wantErr: ErrInvalidEdge,
		},
		{
			name:    "is near from route rejected",
			edge:    &Edge{Source: route, Target: poi, Kind: RelIsNear},
			wantErr: ErrInvalidEdge,
		},
		{
			name:    "unknown relationship kind",
			edge:    &Edge{Source: stop, Target: poi, Kind: RelKind(42)},
			wantErr: ErrUnknownRelKind,
		},
		{
			name:    "negative weight",
			edge:    &Edge{Source: stop, Target: poi, Kind: RelIsNear, Weight: -1},
			wantErr: ErrNegativeWeight,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEdge(tt.edge)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateEdge() unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateEdge() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateEmbeddingRecord(t *testing.T) {
	tests := []struct {
		name    string
		record  *EmbeddingRecord
		wantErr error
	}{
		{
			name:    "valid record",
			record:  &EmbeddingRecord{NodeID: "osm:123", Vector: []float32{0.1, 0.2}},
			wantErr: nil,
		},
		{
			name:    "nil record",
			record:  nil,
			wantErr: ErrInvalidEmbedding,
		},
		{
			name:    "empty node id",
			record:  &EmbeddingRecord{Vector: []float32{0.1}},
			wantErr: ErrEmptyNodeID,
		},
		{
			name:    "empty vector",
			record:  &EmbeddingRecord{NodeID: "osm:123"},
			wantErr: ErrInvalidEmbedding,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmbeddingRecord(tt.record)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateEmbeddingRecord() unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateEmbeddingRecord() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
