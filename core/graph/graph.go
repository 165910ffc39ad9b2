package graph

import (
	"time"

	"github.com/siherrmann/uidn/model"
)

// edgeKey is the unordered endpoint pair, endpoints sorted lexicographically
type edgeKey struct {
	a string
	b string
}

func newEdgeKey(source, target string) edgeKey {
	if source <= target {
		return edgeKey{a: source, b: target}
	}
	return edgeKey{a: target, b: source}
}

type adjacencyEntry struct {
	neighbor string
	edge     *model.Edge
}

// Graph is an incrementally built, undirected, multi-relation weighted
// graph over entity ids. The edge set is always simple: at most one edge
// exists per unordered pair and repeated additions accumulate weight and
// frequency instead of creating parallel edges. Not safe for concurrent
// use; the owning orchestrator serializes all writes.
type Graph struct {
	nodes     map[string]struct{}
	nodeOrder []string

	edges   []*model.Edge
	edgeMap map[edgeKey]*model.Edge

	adjacency     map[string][]adjacencyEntry
	relationIndex map[model.RelationType][]*model.Edge
	temporalIndex map[string][]*model.Edge
}

// NewGraph creates an empty graph
func NewGraph() *Graph {
	return &Graph{
		nodes:         map[string]struct{}{},
		edgeMap:       map[edgeKey]*model.Edge{},
		adjacency:     map[string][]adjacencyEntry{},
		relationIndex: map[model.RelationType][]*model.Edge{},
		temporalIndex: map[string][]*model.Edge{},
	}
}

// AddNode adds a node to the graph. Adding an existing node is a no-op.
func (g *Graph) AddNode(nodeID string) {
	if _, ok := g.nodes[nodeID]; ok {
		return
	}
	g.nodes[nodeID] = struct{}{}
	g.nodeOrder = append(g.nodeOrder, nodeID)
}

// AddEdge registers a relationship between two entities, auto-adding both
// endpoints as nodes. If the unordered pair already has an edge, weight and
// frequency accumulate and the earlier timestamp is kept; the relation type
// of the first registration sticks. An empty timestamp defaults to now so
// every edge carries one.
func (g *Graph) AddEdge(source, target string, relationType model.RelationType, weight float64, timestamp string, metadata model.Metadata) *model.Edge {
	g.AddNode(source)
	g.AddNode(target)

	if timestamp == "" {
		timestamp = time.Now().UTC().Format(time.RFC3339)
	}

	key := newEdgeKey(source, target)
	if edge, ok := g.edgeMap[key]; ok {
		edge.Weight += weight
		edge.Frequency++
		if timestamp < edge.Timestamp {
			edge.Timestamp = timestamp
		}
		return edge
	}

	edge := &model.Edge{
		Source:       source,
		Target:       target,
		RelationType: relationType,
		Weight:       weight,
		Frequency:    1,
		Timestamp:    timestamp,
		Metadata:     metadata,
	}

	g.edges = append(g.edges, edge)
	g.edgeMap[key] = edge

	g.adjacency[source] = append(g.adjacency[source], adjacencyEntry{neighbor: target, edge: edge})
	if source != target {
		g.adjacency[target] = append(g.adjacency[target], adjacencyEntry{neighbor: source, edge: edge})
	}

	g.relationIndex[relationType] = append(g.relationIndex[relationType], edge)
	g.temporalIndex[timestamp] = append(g.temporalIndex[timestamp], edge)

	return edge
}

// GetNeighbors returns the adjacent entities with the connecting edge weights
func (g *Graph) GetNeighbors(nodeID string) []model.Neighbor {
	entries := g.adjacency[nodeID]
	neighbors := make([]model.Neighbor, 0, len(entries))
	for _, entry := range entries {
		neighbors = append(neighbors, model.Neighbor{
			EntityID: entry.neighbor,
			Weight:   entry.edge.Weight,
		})
	}
	return neighbors
}

// GetDegree returns the number of distinct neighbors of a node
func (g *Graph) GetDegree(nodeID string) int {
	return len(g.adjacency[nodeID])
}

// GetWeightedDegree returns the sum of edge weights incident to a node
func (g *Graph) GetWeightedDegree(nodeID string) float64 {
	total := 0.0
	for _, entry := range g.adjacency[nodeID] {
		total += entry.edge.Weight
	}
	return total
}

// GetEdges returns all edges, or only those of the given relation type
func (g *Graph) GetEdges(relationType model.RelationType) []*model.Edge {
	if relationType != "" {
		return g.relationIndex[relationType]
	}
	return g.edges
}

// GetEdge returns the edge between two entities regardless of argument
// order, nil if none exists.
func (g *Graph) GetEdge(source, target string) *model.Edge {
	return g.edgeMap[newEdgeKey(source, target)]
}

// NodeCount returns the number of nodes
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// EdgeCount returns the number of distinct edges
func (g *Graph) EdgeCount() int {
	return len(g.edges)
}

// Nodes returns all node ids in insertion order
func (g *Graph) Nodes() []string {
	nodes := make([]string, len(g.nodeOrder))
	copy(nodes, g.nodeOrder)
	return nodes
}

// GetTemporalEdges returns the edges whose timestamp falls inside the given
// range. Empty bounds are open.
func (g *Graph) GetTemporalEdges(startTime, endTime string) []*model.Edge {
	filtered := make([]*model.Edge, 0, len(g.edges))
	for _, edge := range g.edges {
		if edge.Timestamp != "" {
			if startTime != "" && edge.Timestamp < startTime {
				continue
			}
			if endTime != "" && edge.Timestamp > endTime {
				continue
			}
		}
		filtered = append(filtered, edge)
	}
	return filtered
}

// Export returns the serializable snapshot of the graph
func (g *Graph) Export() model.GraphExport {
	return model.GraphExport{
		Nodes:      g.Nodes(),
		Edges:      g.edges,
		Statistics: g.Statistics(),
	}
}
