package badger

import (
	"fmt"

	"github.com/citymuse/wayfinder/core"
)

// Key prefixes for different data types. Every data key carries the snapshot
// generation it belongs to, so a bulk load can build a complete new snapshot
// invisibly and flip the generation pointer in a single small transaction.
const (
	nodePrefix      = "node"
	adjacencyPrefix = "adj"
	embeddingPrefix = "emb"
	generationKey   = "meta:gen"
)

// makeNodeKey generates a key for a node by generation, kind, and id.
func makeNodeKey(gen uint64, kind core.NodeKind, id string) []byte {
	return []byte(fmt.Sprintf("%s:%d:%s:%s", nodePrefix, gen, kind, id))
}

// makeNodeKindPrefix generates the scan prefix for all nodes of a kind.
func makeNodeKindPrefix(gen uint64, kind core.NodeKind) []byte {
	return []byte(fmt.Sprintf("%s:%d:%s:", nodePrefix, gen, kind))
}

// makeAdjacencyKey generates a key for the outgoing edge list of a node.
// The whole adjacency list is stored under a single key so traversal needs
// one read per visited node and id strings never leak into scan prefixes.
func makeAdjacencyKey(gen uint64, ref core.NodeRef) []byte {
	return []byte(fmt.Sprintf("%s:%d:%s:%s", adjacencyPrefix, gen, ref.Kind, ref.ID))
}

// makeEmbeddingKey generates a key for a POI's embedding record.
func makeEmbeddingKey(gen uint64, nodeID string) []byte {
	return []byte(fmt.Sprintf("%s:%d:%s", embeddingPrefix, gen, nodeID))
}

// makeEmbeddingPrefix generates the scan prefix for all embedding records.
func makeEmbeddingPrefix(gen uint64) []byte {
	return []byte(fmt.Sprintf("%s:%d:", embeddingPrefix, gen))
}

// generationPrefixes returns every data prefix belonging to a generation,
// used for post-swap cleanup of superseded snapshots.
func generationPrefixes(gen uint64) [][]byte {
	prefixes := [][]byte{
		makeEmbeddingPrefix(gen),
	}
	for _, kind := range []core.NodeKind{core.NodeKindStop, core.NodeKindPOI, core.NodeKindRoute} {
		prefixes = append(prefixes, makeNodeKindPrefix(gen, kind))
		prefixes = append(prefixes, []byte(fmt.Sprintf("%s:%d:%s:", adjacencyPrefix, gen, kind)))
	}
	return prefixes
}
