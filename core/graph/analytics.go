package graph

import "github.com/siherrmann/uidn/model"

// Read-only analytics over the current graph. Everything is computed on
// demand; nothing is cached between calls.

// Statistics summarizes node/edge counts, degree distribution, weights,
// density and the connected component count.
func (g *Graph) Statistics() model.GraphStatistics {
	stats := model.GraphStatistics{
		RelationTypes: map[model.RelationType]int{},
	}
	if len(g.nodes) == 0 {
		return stats
	}

	stats.NodeCount = len(g.nodes)
	stats.EdgeCount = len(g.edges)

	degreeSum := 0
	stats.MinDegree = -1
	for nodeID := range g.nodes {
		degree := g.GetDegree(nodeID)
		degreeSum += degree
		if degree > stats.MaxDegree {
			stats.MaxDegree = degree
		}
		if stats.MinDegree < 0 || degree < stats.MinDegree {
			stats.MinDegree = degree
		}
	}
	stats.AvgDegree = float64(degreeSum) / float64(len(g.nodes))

	for _, edge := range g.edges {
		stats.TotalWeight += edge.Weight
		stats.RelationTypes[edge.RelationType]++
	}
	if len(g.edges) > 0 {
		stats.AvgEdgeWeight = stats.TotalWeight / float64(len(g.edges))
	}

	possibleEdges := float64(len(g.nodes)) * float64(len(g.nodes)-1) / 2
	if possibleEdges > 0 {
		stats.Density = float64(len(g.edges)) / possibleEdges
	}

	stats.ConnectedComponents = len(g.FindConnectedComponents())

	return stats
}

// FindConnectedComponents partitions the node set into connected
// components. Traversal is an iterative depth-first search with an explicit
// stack, so component size is not bounded by the call stack.
func (g *Graph) FindConnectedComponents() [][]string {
	visited := make(map[string]bool, len(g.nodes))
	var components [][]string

	for _, start := range g.nodeOrder {
		if visited[start] {
			continue
		}

		var component []string
		stack := []string{start}
		visited[start] = true

		for len(stack) > 0 {
			node := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			component = append(component, node)

			for _, entry := range g.adjacency[node] {
				if !visited[entry.neighbor] {
					visited[entry.neighbor] = true
					stack = append(stack, entry.neighbor)
				}
			}
		}

		components = append(components, component)
	}

	return components
}

// GetShortestPath returns the node sequence of an unweighted shortest path
// between two entities via breadth-first search, or nil if either endpoint
// is absent or no path exists.
func (g *Graph) GetShortestPath(source, target string) []string {
	if _, ok := g.nodes[source]; !ok {
		return nil
	}
	if _, ok := g.nodes[target]; !ok {
		return nil
	}
	if source == target {
		return []string{source}
	}

	type queueEntry struct {
		node string
		path []string
	}

	queue := []queueEntry{{node: source, path: []string{source}}}
	visited := map[string]bool{source: true}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, entry := range g.adjacency[current.node] {
			if entry.neighbor == target {
				return append(current.path, entry.neighbor)
			}
			if !visited[entry.neighbor] {
				visited[entry.neighbor] = true
				path := make([]string, len(current.path), len(current.path)+1)
				copy(path, current.path)
				queue = append(queue, queueEntry{node: entry.neighbor, path: append(path, entry.neighbor)})
			}
		}
	}

	return nil
}

// GetEgoNetwork returns the induced subgraph reachable from a node within
// the given hop radius.
func (g *Graph) GetEgoNetwork(nodeID string, depth int) model.EgoNetwork {
	ego := map[string]bool{nodeID: true}
	nodes := []string{nodeID}
	frontier := []string{nodeID}

	for hop := 0; hop < depth; hop++ {
		var next []string
		for _, node := range frontier {
			for _, entry := range g.adjacency[node] {
				if !ego[entry.neighbor] {
					ego[entry.neighbor] = true
					nodes = append(nodes, entry.neighbor)
					next = append(next, entry.neighbor)
				}
			}
		}
		frontier = next
	}

	var edges []*model.Edge
	for _, edge := range g.edges {
		if ego[edge.Source] && ego[edge.Target] {
			edges = append(edges, edge)
		}
	}

	return model.EgoNetwork{
		EgoNode:   nodeID,
		Depth:     depth,
		Nodes:     nodes,
		NodeCount: len(nodes),
		EdgeCount: len(edges),
		Edges:     edges,
	}
}
