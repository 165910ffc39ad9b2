package graph

import (
	"testing"

	"github.com/siherrmann/uidn/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddNode(t *testing.T) {
	t.Run("Nodes are added once", func(t *testing.T) {
		g := NewGraph()

		g.AddNode("ENTITY_000001")
		g.AddNode("ENTITY_000001")
		g.AddNode("ENTITY_000002")

		assert.Equal(t, 2, g.NodeCount())
		assert.Equal(t, []string{"ENTITY_000001", "ENTITY_000002"}, g.Nodes())
	})
}

func TestAddEdge(t *testing.T) {
	t.Run("Endpoints are auto-added as nodes", func(t *testing.T) {
		g := NewGraph()

		g.AddEdge("a", "b", model.RelationTypeCooccurrence, 1.0, "", nil)

		assert.Equal(t, 2, g.NodeCount())
		assert.Equal(t, 1, g.EdgeCount())
	})

	t.Run("Repeated additions accumulate weight and frequency", func(t *testing.T) {
		g := NewGraph()

		g.AddEdge("a", "b", model.RelationTypeCooccurrence, 1.0, "", nil)
		g.AddEdge("a", "b", model.RelationTypeCooccurrence, 1.0, "", nil)
		edge := g.AddEdge("a", "b", model.RelationTypeCooccurrence, 1.0, "", nil)

		assert.Equal(t, 1, g.EdgeCount(), "Expected a single edge, never parallel edges")
		assert.Equal(t, 3.0, edge.Weight)
		assert.Equal(t, 3, edge.Frequency)
	})

	t.Run("Endpoint order does not matter", func(t *testing.T) {
		g := NewGraph()

		edge1 := g.AddEdge("a", "b", model.RelationTypeCooccurrence, 1.0, "", nil)
		edge2 := g.AddEdge("b", "a", model.RelationTypeTemporal, 2.0, "", nil)

		assert.Same(t, edge1, edge2)
		assert.Equal(t, 1, g.EdgeCount())
		assert.Equal(t, 3.0, edge2.Weight)
	})

	t.Run("The first relation type sticks", func(t *testing.T) {
		g := NewGraph()

		g.AddEdge("a", "b", model.RelationTypeCooccurrence, 1.0, "", nil)
		edge := g.AddEdge("a", "b", model.RelationTypeTemporal, 1.0, "", nil)

		assert.Equal(t, model.RelationTypeCooccurrence, edge.RelationType)
	})

	t.Run("The earlier timestamp is kept", func(t *testing.T) {
		g := NewGraph()

		g.AddEdge("a", "b", model.RelationTypeTemporal, 1.0, "2024-03-02T10:00:00Z", nil)
		edge := g.AddEdge("a", "b", model.RelationTypeTemporal, 1.0, "2024-03-01T10:00:00Z", nil)

		assert.Equal(t, "2024-03-01T10:00:00Z", edge.Timestamp)

		edge = g.AddEdge("a", "b", model.RelationTypeTemporal, 1.0, "2024-03-05T10:00:00Z", nil)
		assert.Equal(t, "2024-03-01T10:00:00Z", edge.Timestamp)
	})

	t.Run("An empty timestamp defaults to now", func(t *testing.T) {
		g := NewGraph()

		edge := g.AddEdge("a", "b", model.RelationTypeCooccurrence, 1.0, "", nil)

		assert.NotEmpty(t, edge.Timestamp)
	})
}

func TestNeighborsAndDegrees(t *testing.T) {
	g := NewGraph()
	g.AddEdge("a", "b", model.RelationTypeCooccurrence, 2.0, "", nil)
	g.AddEdge("a", "c", model.RelationTypeTemporal, 0.5, "", nil)
	g.AddNode("d")

	t.Run("Neighbors carry edge weights", func(t *testing.T) {
		neighbors := g.GetNeighbors("a")

		require.Len(t, neighbors, 2)
		assert.Equal(t, model.Neighbor{EntityID: "b", Weight: 2.0}, neighbors[0])
		assert.Equal(t, model.Neighbor{EntityID: "c", Weight: 0.5}, neighbors[1])
	})

	t.Run("Adjacency is symmetric", func(t *testing.T) {
		neighborsOfB := g.GetNeighbors("b")

		require.Len(t, neighborsOfB, 1)
		assert.Equal(t, "a", neighborsOfB[0].EntityID)
	})

	t.Run("Degree and weighted degree", func(t *testing.T) {
		assert.Equal(t, 2, g.GetDegree("a"))
		assert.Equal(t, 1, g.GetDegree("b"))
		assert.Equal(t, 0, g.GetDegree("d"))
		assert.InDelta(t, 2.5, g.GetWeightedDegree("a"), 1e-9)
	})

	t.Run("Unknown node has no neighbors", func(t *testing.T) {
		assert.Empty(t, g.GetNeighbors("nope"))
		assert.Equal(t, 0, g.GetDegree("nope"))
	})
}

func TestGetEdges(t *testing.T) {
	g := NewGraph()
	g.AddEdge("a", "b", model.RelationTypeCooccurrence, 1.0, "", nil)
	g.AddEdge("a", "c", model.RelationTypeTemporal, 1.0, "", nil)
	g.AddEdge("b", "c", model.RelationTypeTemporal, 1.0, "", nil)

	t.Run("All edges", func(t *testing.T) {
		assert.Len(t, g.GetEdges(""), 3)
	})

	t.Run("Filtered by relation type", func(t *testing.T) {
		assert.Len(t, g.GetEdges(model.RelationTypeTemporal), 2)
		assert.Len(t, g.GetEdges(model.RelationTypeExternal), 0)
	})

	t.Run("Edge lookup ignores endpoint order", func(t *testing.T) {
		require.NotNil(t, g.GetEdge("c", "a"))
		assert.Same(t, g.GetEdge("a", "c"), g.GetEdge("c", "a"))
		assert.Nil(t, g.GetEdge("a", "nope"))
	})
}

func TestGetTemporalEdges(t *testing.T) {
	g := NewGraph()
	g.AddEdge("a", "b", model.RelationTypeTemporal, 1.0, "2024-03-01T10:00:00Z", nil)
	g.AddEdge("a", "c", model.RelationTypeTemporal, 1.0, "2024-03-05T10:00:00Z", nil)
	g.AddEdge("b", "c", model.RelationTypeTemporal, 1.0, "2024-03-10T10:00:00Z", nil)

	t.Run("Open range returns everything", func(t *testing.T) {
		assert.Len(t, g.GetTemporalEdges("", ""), 3)
	})

	t.Run("Start bound filters earlier edges", func(t *testing.T) {
		edges := g.GetTemporalEdges("2024-03-02T00:00:00Z", "")
		assert.Len(t, edges, 2)
	})

	t.Run("Closed range", func(t *testing.T) {
		edges := g.GetTemporalEdges("2024-03-02T00:00:00Z", "2024-03-06T00:00:00Z")
		require.Len(t, edges, 1)
		assert.Equal(t, "2024-03-05T10:00:00Z", edges[0].Timestamp)
	})
}

func TestExport(t *testing.T) {
	t.Run("Export contains nodes, edges and statistics", func(t *testing.T) {
		g := NewGraph()
		g.AddEdge("a", "b", model.RelationTypeCooccurrence, 1.0, "", nil)
		g.AddNode("c")

		export := g.Export()

		assert.Len(t, export.Nodes, 3)
		assert.Len(t, export.Edges, 1)
		assert.Equal(t, 3, export.Statistics.NodeCount)
		assert.Equal(t, 1, export.Statistics.EdgeCount)
	})
}
