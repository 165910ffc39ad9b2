package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/siherrmann/uidn/helper"
	"github.com/siherrmann/uidn/model"
	loadSql "github.com/siherrmann/uidn/sql"
)

// SnapshotsDBHandlerFunctions defines the interface for snapshot database operations.
type SnapshotsDBHandlerFunctions interface {
	InsertSnapshot(caseID string, export *model.Export) (*model.Snapshot, error)
	SelectSnapshot(id int) (*model.Snapshot, error)
	SelectLatestSnapshot(caseID string) (*model.Snapshot, error)
	SelectSnapshotEntities(snapshotID int) ([]*model.Entity, error)
	SelectSnapshotEdges(snapshotID int) ([]*model.Edge, error)
	DeleteSnapshot(id int) error
}

// SnapshotsDBHandler persists fusion run exports. Next to the full export
// envelope it stores per-snapshot entity and edge rows so downstream
// consumers can query a case without parsing the whole document.
type SnapshotsDBHandler struct {
	db *helper.Database
}

// NewSnapshotsDBHandler creates a new snapshots database handler.
// It initializes the database connection and loads snapshot-related SQL
// functions. If force is true, it will reload the SQL functions even if
// they already exist.
func NewSnapshotsDBHandler(db *helper.Database, force bool) (*SnapshotsDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	snapshotsDbHandler := &SnapshotsDBHandler{
		db: db,
	}

	err := loadSql.LoadSnapshotsSql(snapshotsDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load snapshots sql", err)
	}

	err = snapshotsDbHandler.CreateTable()
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized SnapshotsDBHandler")

	return snapshotsDbHandler, nil
}

// CreateTable creates the snapshot tables in the database.
// If the tables already exist, they are not created again.
// It also creates all necessary indexes.
func (h *SnapshotsDBHandler) CreateTable() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := h.db.Instance.ExecContext(ctx, `SELECT init_snapshots();`)
	if err != nil {
		log.Panicf("error initializing snapshot tables: %#v", err)
	}

	h.db.Logger.Info("Checked/created snapshot tables")

	return nil
}

// InsertSnapshot persists a full export under the given case id, including
// the queryable entity and edge rows.
func (h *SnapshotsDBHandler) InsertSnapshot(caseID string, export *model.Export) (*model.Snapshot, error) {
	if export == nil {
		return nil, helper.NewError("insert snapshot", fmt.Errorf("export is nil"))
	}

	exportJSON, err := json.Marshal(export)
	if err != nil {
		return nil, helper.NewError("marshal export", err)
	}

	snapshot := &model.Snapshot{CaseID: caseID, Export: export}
	var exportRaw []byte

	row := h.db.Instance.QueryRow(
		`SELECT * FROM insert_snapshot($1, $2)`,
		caseID,
		exportJSON,
	)
	err = row.Scan(
		&snapshot.ID,
		&snapshot.RID,
		&snapshot.CaseID,
		&exportRaw,
		&snapshot.CreatedAt,
	)
	if err != nil {
		return nil, helper.NewError("scan", err)
	}

	for _, entity := range export.Entities {
		sourcesJSON, err := json.Marshal(entity.Sources)
		if err != nil {
			return nil, helper.NewError("marshal sources", err)
		}

		_, err = h.db.Instance.Exec(
			`SELECT insert_snapshot_entity($1, $2, $3, $4, $5, $6)`,
			snapshot.ID,
			entity.ID,
			entity.Attributes,
			entity.Confidence,
			sourcesJSON,
			entity.MergedCount,
		)
		if err != nil {
			return nil, helper.NewError("insert snapshot entity", err)
		}
	}

	for _, edge := range export.RelationshipGraph.Edges {
		metadata := edge.Metadata
		if metadata == nil {
			metadata = model.Metadata{}
		}

		_, err = h.db.Instance.Exec(
			`SELECT insert_snapshot_edge($1, $2, $3, $4, $5, $6, $7, $8)`,
			snapshot.ID,
			edge.Source,
			edge.Target,
			string(edge.RelationType),
			edge.Weight,
			edge.Frequency,
			edge.Timestamp,
			metadata,
		)
		if err != nil {
			return nil, helper.NewError("insert snapshot edge", err)
		}
	}

	return snapshot, nil
}

// SelectSnapshot retrieves a snapshot by id
func (h *SnapshotsDBHandler) SelectSnapshot(id int) (*model.Snapshot, error) {
	row := h.db.Instance.QueryRow(
		`SELECT * FROM select_snapshot($1)`,
		id,
	)
	return scanSnapshot(row)
}

// SelectLatestSnapshot retrieves the most recent snapshot for a case id
func (h *SnapshotsDBHandler) SelectLatestSnapshot(caseID string) (*model.Snapshot, error) {
	row := h.db.Instance.QueryRow(
		`SELECT * FROM select_latest_snapshot($1)`,
		caseID,
	)
	return scanSnapshot(row)
}

func scanSnapshot(row *sql.Row) (*model.Snapshot, error) {
	snapshot := &model.Snapshot{}
	var exportRaw []byte

	err := row.Scan(
		&snapshot.ID,
		&snapshot.RID,
		&snapshot.CaseID,
		&exportRaw,
		&snapshot.CreatedAt,
	)
	if err != nil {
		return nil, helper.NewError("scan", err)
	}

	export := &model.Export{}
	if err := json.Unmarshal(exportRaw, export); err != nil {
		return nil, helper.NewError("unmarshal export", err)
	}
	snapshot.Export = export

	return snapshot, nil
}

// SelectSnapshotEntities retrieves the entity rows of a snapshot
func (h *SnapshotsDBHandler) SelectSnapshotEntities(snapshotID int) ([]*model.Entity, error) {
	rows, err := h.db.Instance.Query(
		`SELECT entity_id, attributes, confidence, sources, merged_count FROM select_snapshot_entities($1)`,
		snapshotID,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var entities []*model.Entity
	for rows.Next() {
		entity := &model.Entity{}
		var sourcesRaw []byte

		err := rows.Scan(
			&entity.ID,
			&entity.Attributes,
			&entity.Confidence,
			&sourcesRaw,
			&entity.MergedCount,
		)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}

		if err := json.Unmarshal(sourcesRaw, &entity.Sources); err != nil {
			return nil, helper.NewError("unmarshal sources", err)
		}

		entities = append(entities, entity)
	}

	return entities, rows.Err()
}

// SelectSnapshotEdges retrieves the edge rows of a snapshot
func (h *SnapshotsDBHandler) SelectSnapshotEdges(snapshotID int) ([]*model.Edge, error) {
	rows, err := h.db.Instance.Query(
		`SELECT source, target, relation_type, weight, frequency, edge_timestamp, metadata FROM select_snapshot_edges($1)`,
		snapshotID,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var edges []*model.Edge
	for rows.Next() {
		edge := &model.Edge{}
		var relationType string
		var timestamp sql.NullString

		err := rows.Scan(
			&edge.Source,
			&edge.Target,
			&relationType,
			&edge.Weight,
			&edge.Frequency,
			&timestamp,
			&edge.Metadata,
		)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}

		edge.RelationType = model.RelationType(relationType)
		edge.Timestamp = timestamp.String

		edges = append(edges, edge)
	}

	return edges, rows.Err()
}

// DeleteSnapshot deletes a snapshot and its entity/edge rows
func (h *SnapshotsDBHandler) DeleteSnapshot(id int) error {
	_, err := h.db.Instance.Exec(
		`SELECT delete_snapshot($1)`,
		id,
	)
	if err != nil {
		return helper.NewError("exec", err)
	}
	return nil
}
