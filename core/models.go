package core

import (
	"encoding/binary"

	"github.com/go-crypt/x/blake2b"
)

// HashText generates a deterministic 64-bit hash of text using BLAKE2b.
// It is used for content-derived identifiers and for logging query text
// without leaking the raw text into shared logs.
func HashText(text string) uint64 {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return binary.LittleEndian.Uint64(sum)
}

// NodeKind identifies the variant of a graph node.
type NodeKind uint8

const (
	// NodeKindStop represents a transit stop.
	NodeKindStop NodeKind = iota + 1
	// NodeKindPOI represents a point of interest.
	NodeKindPOI
	// NodeKindRoute represents a transit route.
	NodeKindRoute
)

// String returns the lowercase name of the node kind.
func (k NodeKind) String() string {
	switch k {
	case NodeKindStop:
		return "stop"
	case NodeKindPOI:
		return "poi"
	case NodeKindRoute:
		return "route"
	default:
		return "unknown"
	}
}

// RelKind identifies the type of a graph relationship.
type RelKind uint8

const (
	// RelIsNear links a stop or POI to a spatially close POI.
	// Logically symmetric: stored in both directions.
	RelIsNear RelKind = iota + 1
	// RelServes links a route to a stop it serves.
	RelServes
	// RelConnects links consecutive stops along a route.
	RelConnects
)

// String returns the storage name of the relationship kind.
func (k RelKind) String() string {
	switch k {
	case RelIsNear:
		return "IS_NEAR"
	case RelServes:
		return "SERVES"
	case RelConnects:
		return "CONNECTS"
	default:
		return "unknown"
	}
}

// AllRelKinds returns every known relationship kind.
func AllRelKinds() []RelKind {
	return []RelKind{RelIsNear, RelServes, RelConnects}
}

// ParseRelKind parses a relationship kind name as stored ("IS_NEAR", etc).
// Returns ErrUnknownRelKind for unrecognized names.
func ParseRelKind(s string) (RelKind, error) {
	switch s {
	case "IS_NEAR":
		return RelIsNear, nil
	case "SERVES":
		return RelServes, nil
	case "CONNECTS":
		return RelConnects, nil
	default:
		return 0, ErrUnknownRelKind
	}
}

// Node represents a stop, POI, or route in the knowledge graph.
// ID and location are immutable once created; IDs are unique within a kind.
type Node struct {
	ID          string
	Kind        NodeKind
	Name        string
	Lat         float64
	Lon         float64
	Tags        []string // POI only: free-form category strings
	Description string   // POI only: text the embedding is derived from
	Mode        string   // Route only: TRAM, METRO, BUS, FERRY, TRAIN
}

// Ref returns the node's reference (kind + id).
func (n *Node) Ref() NodeRef {
	return NodeRef{Kind: n.Kind, ID: n.ID}
}

// NodeRef identifies a node by kind and id. Kinds have independent id
// namespaces, so a bare id is ambiguous.
type NodeRef struct {
	Kind NodeKind
	ID   string
}

// Edge is a directed, typed relationship between two nodes.
// Weight is a non-negative distance/cost used for graph expansion ranking.
type Edge struct {
	Source NodeRef
	Target NodeRef
	Kind   RelKind
	Weight float64
}

// EmbeddingRecord holds the vector for a single POI.
// It is re-derived whenever the owning POI's description changes.
type EmbeddingRecord struct {
	NodeID string
	Vector []float32
}

// SemanticHit is a POI match from vector similarity search.
type SemanticHit struct {
	NodeID string
	Score  float64
}

// GraphNeighbor is a node reached during graph expansion, annotated with its
// hop distance and the minimum cumulative path weight discovered.
type GraphNeighbor struct {
	Node   Node
	Hops   int
	Weight float64
}

// RankedCandidate is a single entry in a hybrid retrieval result.
type RankedCandidate struct {
	Node          Node
	SemanticScore float64
	GraphScore    float64
	CombinedScore float64
	Support       []GraphNeighbor // supporting stops/routes from graph expansion
}
