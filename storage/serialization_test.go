package storage

import (
	"testing"

	"github.com/citymuse/wayfinder/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNodeRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		node core.Node
	}{
		{
			name: "poi with tags and description",
			node: core.Node{
				ID:          "osm:316246943",
				Kind:        core.NodeKindPOI,
				Name:        "Arkadia Bookshop",
				Lat:         60.1733,
				Lon:         24.9208,
				Tags:        []string{"bookshop", "cafe"},
				Description: "Arkadia Bookshop (bookshop)",
			},
		},
		{
			name: "stop without optional fields",
			node: core.Node{
				ID:   "1040406",
				Kind: core.NodeKindStop,
				Name: "Kamppi",
				Lat:  60.1688,
				Lon:  24.9316,
			},
		},
		{
			name: "route with mode",
			node: core.Node{
				ID:   "1004",
				Kind: core.NodeKindRoute,
				Name: "4",
				Mode: "TRAM",
			},
		},
		{
			name: "unicode name",
			node: core.Node{
				ID:   "1230109",
				Kind: core.NodeKindStop,
				Name: "Hämeentie",
				Lat:  60.18,
				Lon:  24.96,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := MarshalNode(&tt.node)
			got, err := UnmarshalNode(data)
			require.NoError(t, err)
			assert.Equal(t, &tt.node, got)
		})
	}
}

func TestEdgeRoundTrip(t *testing.T) {
	edge := core.Edge{
		Source: core.NodeRef{Kind: core.NodeKindStop, ID: "1040406"},
		Target: core.NodeRef{Kind: core.NodeKindPOI, ID: "osm:316246943"},
		Kind:   core.RelIsNear,
		Weight: 0.245,
	}

	data := MarshalEdge(&edge)
	got, err := UnmarshalEdge(data)
	require.NoError(t, err)
	assert.Equal(t, &edge, got)
}

func TestEmbeddingRecordRoundTrip(t *testing.T) {
	record := core.EmbeddingRecord{
		NodeID: "osm:316246943",
		Vector: []float32{0.1, -0.5, 0.73, 0},
	}

	data := MarshalEmbeddingRecord(&record)
	got, err := UnmarshalEmbeddingRecord(data)
	require.NoError(t, err)
	assert.Equal(t, &record, got)
}

func TestUnmarshalNode_Truncated(t *testing.T) {
	node := core.Node{ID: "x", Kind: core.NodeKindPOI, Name: "x"}
	data := MarshalNode(&node)

	_, err := UnmarshalNode(data[:len(data)/2])
	assert.Error(t, err)

	_, err = UnmarshalNode(nil)
	assert.Error(t, err)
}
