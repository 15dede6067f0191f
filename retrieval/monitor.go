package retrieval

import "github.com/citymuse/wayfinder/core"

// RetrievalMonitor provides hooks to observe the retrieval process.
// Implement this interface to track intermediate steps and results during retrieval.
type RetrievalMonitor interface {
	Start(queryHash uint64)
	AfterEncode(dimensions int)
	AfterSemanticSearch(hits []core.SemanticHit)
	AfterGraphExpansion(nodeID string, neighbors []core.GraphNeighbor)
	GraphDegraded(err error)
	Finish(result *Result)
}

// noopMonitor is a no-op implementation of RetrievalMonitor
type noopMonitor struct{}

var _ RetrievalMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ uint64)                                   {}
func (n *noopMonitor) AfterEncode(_ int)                                {}
func (n *noopMonitor) AfterSemanticSearch(_ []core.SemanticHit)         {}
func (n *noopMonitor) AfterGraphExpansion(_ string, _ []core.GraphNeighbor) {}
func (n *noopMonitor) GraphDegraded(_ error)                            {}
func (n *noopMonitor) Finish(_ *Result)                                 {}
