package database

import (
	"testing"

	"github.com/siherrmann/uidn/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sampleExport builds a minimal two-entity export with one edge
func sampleExport() *model.Export {
	entities := []*model.Entity{
		{
			ID:          "ENTITY_000001",
			Attributes:  model.Metadata{"name": "Zhang San", "phone": "13800138000"},
			Confidence:  0.915,
			Sources:     []string{"image:ir1", "text:tr1"},
			MergedCount: 2,
		},
		{
			ID:          "ENTITY_000002",
			Attributes:  model.Metadata{"name": "Wang Wu"},
			Confidence:  0.9,
			Sources:     []string{"text:tr1"},
			MergedCount: 1,
		},
	}

	edges := []*model.Edge{
		{
			Source:       "ENTITY_000001",
			Target:       "ENTITY_000002",
			RelationType: model.RelationTypeCooccurrence,
			Weight:       1.0,
			Frequency:    1,
			Timestamp:    "2024-03-01T10:00:00Z",
			Metadata:     model.Metadata{"common_sources": []string{"text:tr1"}},
		},
	}

	return &model.Export{
		Metadata: model.ExportMetadata{
			TotalEntities: len(entities),
			TotalEdges:    len(edges),
		},
		Entities: entities,
		RelationshipGraph: model.GraphExport{
			Nodes: []string{"ENTITY_000001", "ENTITY_000002"},
			Edges: edges,
		},
	}
}

func TestNewSnapshotsDBHandler(t *testing.T) {
	t.Run("Create handler", func(t *testing.T) {
		db := initDB(t)
		defer db.Close()

		handler, err := NewSnapshotsDBHandler(db, true)

		require.NoError(t, err)
		assert.NotNil(t, handler)
	})

	t.Run("Create handler with nil database fails", func(t *testing.T) {
		handler, err := NewSnapshotsDBHandler(nil, false)

		assert.Nil(t, handler)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database connection is nil")
	})
}

func TestInsertSnapshot(t *testing.T) {
	db := initDB(t)
	defer db.Close()
	handler, err := NewSnapshotsDBHandler(db, true)
	require.NoError(t, err)

	t.Run("Insert snapshot", func(t *testing.T) {
		snapshot, err := handler.InsertSnapshot("case-001", sampleExport())

		require.NoError(t, err)
		require.NotNil(t, snapshot)
		assert.Greater(t, snapshot.ID, 0)
		assert.NotEmpty(t, snapshot.RID)
		assert.Equal(t, "case-001", snapshot.CaseID)
		assert.False(t, snapshot.CreatedAt.IsZero())
	})

	t.Run("Insert snapshot with nil export fails", func(t *testing.T) {
		snapshot, err := handler.InsertSnapshot("case-001", nil)

		assert.Nil(t, snapshot)
		assert.Error(t, err)
	})
}

func TestSelectSnapshot(t *testing.T) {
	db := initDB(t)
	defer db.Close()
	handler, err := NewSnapshotsDBHandler(db, true)
	require.NoError(t, err)

	inserted, err := handler.InsertSnapshot("case-002", sampleExport())
	require.NoError(t, err)

	t.Run("Select snapshot by id", func(t *testing.T) {
		snapshot, err := handler.SelectSnapshot(inserted.ID)

		require.NoError(t, err)
		assert.Equal(t, inserted.ID, snapshot.ID)
		assert.Equal(t, "case-002", snapshot.CaseID)

		require.NotNil(t, snapshot.Export)
		assert.Equal(t, 2, snapshot.Export.Metadata.TotalEntities)
		require.Len(t, snapshot.Export.Entities, 2)
		assert.Equal(t, "Zhang San", snapshot.Export.Entities[0].Name())
	})

	t.Run("Select nonexistent snapshot fails", func(t *testing.T) {
		snapshot, err := handler.SelectSnapshot(999999)

		assert.Nil(t, snapshot)
		assert.Error(t, err)
	})
}

func TestSelectLatestSnapshot(t *testing.T) {
	db := initDB(t)
	defer db.Close()
	handler, err := NewSnapshotsDBHandler(db, true)
	require.NoError(t, err)

	first, err := handler.InsertSnapshot("case-003", sampleExport())
	require.NoError(t, err)

	updated := sampleExport()
	updated.Metadata.TotalEntities = 3
	second, err := handler.InsertSnapshot("case-003", updated)
	require.NoError(t, err)

	t.Run("Latest snapshot wins", func(t *testing.T) {
		snapshot, err := handler.SelectLatestSnapshot("case-003")

		require.NoError(t, err)
		assert.Equal(t, second.ID, snapshot.ID)
		assert.NotEqual(t, first.ID, snapshot.ID)
		assert.Equal(t, 3, snapshot.Export.Metadata.TotalEntities)
	})

	t.Run("Unknown case id fails", func(t *testing.T) {
		snapshot, err := handler.SelectLatestSnapshot("case-unknown")

		assert.Nil(t, snapshot)
		assert.Error(t, err)
	})
}

func TestSelectSnapshotEntities(t *testing.T) {
	db := initDB(t)
	defer db.Close()
	handler, err := NewSnapshotsDBHandler(db, true)
	require.NoError(t, err)

	inserted, err := handler.InsertSnapshot("case-004", sampleExport())
	require.NoError(t, err)

	t.Run("Select entity rows", func(t *testing.T) {
		entities, err := handler.SelectSnapshotEntities(inserted.ID)

		require.NoError(t, err)
		require.Len(t, entities, 2)
		assert.Equal(t, "ENTITY_000001", entities[0].ID)
		assert.Equal(t, "Zhang San", entities[0].Name())
		assert.Equal(t, 0.915, entities[0].Confidence)
		assert.Equal(t, []string{"image:ir1", "text:tr1"}, entities[0].Sources)
		assert.Equal(t, 2, entities[0].MergedCount)
	})

	t.Run("Unknown snapshot yields no rows", func(t *testing.T) {
		entities, err := handler.SelectSnapshotEntities(999999)

		require.NoError(t, err)
		assert.Empty(t, entities)
	})
}

func TestSelectSnapshotEdges(t *testing.T) {
	db := initDB(t)
	defer db.Close()
	handler, err := NewSnapshotsDBHandler(db, true)
	require.NoError(t, err)

	inserted, err := handler.InsertSnapshot("case-005", sampleExport())
	require.NoError(t, err)

	t.Run("Select edge rows", func(t *testing.T) {
		edges, err := handler.SelectSnapshotEdges(inserted.ID)

		require.NoError(t, err)
		require.Len(t, edges, 1)
		assert.Equal(t, "ENTITY_000001", edges[0].Source)
		assert.Equal(t, "ENTITY_000002", edges[0].Target)
		assert.Equal(t, model.RelationTypeCooccurrence, edges[0].RelationType)
		assert.Equal(t, 1.0, edges[0].Weight)
		assert.Equal(t, 1, edges[0].Frequency)
		assert.Equal(t, "2024-03-01T10:00:00Z", edges[0].Timestamp)
	})

	t.Run("Unknown snapshot yields no rows", func(t *testing.T) {
		edges, err := handler.SelectSnapshotEdges(999999)

		require.NoError(t, err)
		assert.Empty(t, edges)
	})
}

func TestDeleteSnapshot(t *testing.T) {
	db := initDB(t)
	defer db.Close()
	handler, err := NewSnapshotsDBHandler(db, true)
	require.NoError(t, err)

	inserted, err := handler.InsertSnapshot("case-006", sampleExport())
	require.NoError(t, err)

	t.Run("Delete snapshot cascades to rows", func(t *testing.T) {
		err := handler.DeleteSnapshot(inserted.ID)
		require.NoError(t, err)

		_, err = handler.SelectSnapshot(inserted.ID)
		assert.Error(t, err)

		entities, err := handler.SelectSnapshotEntities(inserted.ID)
		require.NoError(t, err)
		assert.Empty(t, entities)
	})

	t.Run("Delete nonexistent snapshot is a no-op", func(t *testing.T) {
		assert.NoError(t, handler.DeleteSnapshot(999999))
	})
}
