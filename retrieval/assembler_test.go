package retrieval

import (
	"strings"
	"testing"

	"github.com/citymuse/wayfinder/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func candidate(id, name string) core.RankedCandidate {
	return core.RankedCandidate{
		Node: core.Node{ID: id, Kind: core.NodeKindPOI, Name: name},
	}
}

func TestAssembleContext_Empty(t *testing.T) {
	text, dropped := AssembleContext(nil, 2000)
	assert.Empty(t, text)
	assert.Zero(t, dropped)
}

func TestAssembleContext_AllFit(t *testing.T) {
	candidates := []core.RankedCandidate{
		candidate("a", "Arkadia Bookshop"),
		candidate("b", "Cafe Regatta"),
	}

	text, dropped := AssembleContext(candidates, 2000)
	assert.Zero(t, dropped)

	lines := strings.Split(text, "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Arkadia Bookshop (poi).", lines[0])
	assert.Equal(t, "Cafe Regatta (poi).", lines[1])
}

func TestAssembleContext_WholeEntryBudget(t *testing.T) {
	candidates := []core.RankedCandidate{
		candidate("a", "Arkadia Bookshop"),
		candidate("b", "Cafe Regatta"),
		candidate("c", "Sea Life"),
	}
	first := "Arkadia Bookshop (poi)."

	// Budget fits the first entry but not the second; nothing is cut
	// mid-entry and ranking order is preserved.
	text, dropped := AssembleContext(candidates, len(first)+5)
	assert.Equal(t, first, text)
	assert.Equal(t, 2, dropped)
}

func TestAssembleContext_ZeroBudget(t *testing.T) {
	candidates := []core.RankedCandidate{candidate("a", "Arkadia Bookshop")}

	text, dropped := AssembleContext(candidates, 0)
	assert.Empty(t, text)
	assert.Equal(t, 1, dropped)
}

func TestAssembleContext_EntryContents(t *testing.T) {
	candidates := []core.RankedCandidate{
		{
			Node: core.Node{
				ID:          "sealife",
				Kind:        core.NodeKindPOI,
				Name:        "Sea Life Helsinki",
				Description: "Sea Life Helsinki (aquarium)",
				Tags:        []string{"aquarium", "family"},
			},
			Support: []core.GraphNeighbor{
				{Node: core.Node{ID: "S1", Kind: core.NodeKindStop, Name: "Linnanmäki"}, Hops: 1, Weight: 0.2},
				{Node: core.Node{ID: "R4", Kind: core.NodeKindRoute, Name: "Tram 9"}, Hops: 2, Weight: 0.2},
			},
		},
	}

	text, dropped := AssembleContext(candidates, 2000)
	assert.Zero(t, dropped)
	assert.Equal(t,
		"Sea Life Helsinki (poi): Sea Life Helsinki (aquarium). tags: aquarium, family. nearby: Linnanmäki (stop, 1 hop); Tram 9 (route, 2 hops).",
		text)
}

func TestAssembleContext_FallsBackToID(t *testing.T) {
	candidates := []core.RankedCandidate{candidate("osm:12345", "")}

	text, dropped := AssembleContext(candidates, 2000)
	assert.Zero(t, dropped)
	assert.Equal(t, "osm:12345 (poi).", text)
}
