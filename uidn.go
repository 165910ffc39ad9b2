// Package uidn fuses per-modality extraction results (text, image, voice
// and external records) into a single deduplicated identity and
// relationship graph for forensic case analysis. Attribute bundles from
// independent extraction workers are resolved against an entity registry
// through tiered matching heuristics, a weighted relationship graph is
// derived over the resolved entities, and the consolidated state is
// exported as one stable snapshot.
package uidn

import (
	"errors"
	"log/slog"
	"os"

	"github.com/siherrmann/uidn/core/graph"
	"github.com/siherrmann/uidn/core/registry"
	"github.com/siherrmann/uidn/database"
	"github.com/siherrmann/uidn/helper"
	"github.com/siherrmann/uidn/model"
	loadSql "github.com/siherrmann/uidn/sql"
)

var errNoStore = errors.New("snapshot store not attached, use NewUIDNWithStore")

// UIDN is the fusion orchestrator. It owns the entity registry and the
// relationship graph exclusively for the duration of a fusion run; all
// phases are synchronous and single-writer, so concurrent runs over the
// same instance require an external serialization point.
type UIDN struct {
	Registry *registry.Registry
	Graph    *graph.Graph

	// Optional snapshot persistence
	DB        *helper.Database
	Snapshots *database.SnapshotsDBHandler

	config   model.MatcherConfig
	timeline []model.TimelineEvent

	// Retained phase results for ExportResults
	matchCounts    model.MatchCounts
	modalityCounts map[string]int
	edgeCounts     map[model.RelationType]int
	conflicts      []model.Conflict
	coverage       *model.TemporalCoverage

	log *slog.Logger
}

// NewUIDN creates an in-memory fusion orchestrator with the default
// matcher configuration.
func NewUIDN() *UIDN {
	return NewUIDNWithConfig(model.DefaultMatcherConfig())
}

// NewUIDNWithConfig creates an in-memory fusion orchestrator with a custom
// matcher configuration.
func NewUIDNWithConfig(config model.MatcherConfig) *UIDN {
	// Logger
	opts := helper.PrettyHandlerOptions{
		SlogOpts: slog.HandlerOptions{
			Level: slog.LevelInfo,
		},
	}
	logger := slog.New(helper.NewPrettyHandler(os.Stdout, opts))

	return &UIDN{
		Registry:       registry.NewRegistry(config, logger),
		Graph:          graph.NewGraph(),
		config:         config,
		modalityCounts: map[string]int{},
		edgeCounts:     map[model.RelationType]int{},
		log:            logger,
	}
}

// NewUIDNWithStore creates a fusion orchestrator with a PostgreSQL-backed
// snapshot store attached. The fusion core itself stays in-memory; the
// store only persists exported snapshots.
func NewUIDNWithStore(dbConfig *helper.DatabaseConfiguration) (*UIDN, error) {
	u := NewUIDN()

	u.DB = helper.NewDatabase("uidn", dbConfig, u.log)

	err := loadSql.Init(u.DB.Instance)
	if err != nil {
		return nil, helper.NewError("initialize database extensions", err)
	}

	snapshots, err := database.NewSnapshotsDBHandler(u.DB, false)
	if err != nil {
		return nil, helper.NewError("create snapshots handler", err)
	}
	u.Snapshots = snapshots

	return u, nil
}

// Close closes the database connection if a snapshot store is attached
func (u *UIDN) Close() error {
	if u.DB != nil && u.DB.Instance != nil {
		return u.DB.Instance.Close()
	}
	return nil
}

// GetEntity returns the entity with the given id, nil if absent
func (u *UIDN) GetEntity(entityID string) *model.Entity {
	return u.Registry.GetEntity(entityID)
}

// GetEntityByPhone returns the entity indexed under the phone number
func (u *UIDN) GetEntityByPhone(phone string) *model.Entity {
	return u.Registry.GetEntityByPhone(phone)
}

// GetEntityByName returns the entity indexed under the exact normalized name
func (u *UIDN) GetEntityByName(name string) *model.Entity {
	return u.Registry.GetEntityByName(name)
}

// GetRelatedEntities returns the graph neighbors of an entity with the
// connecting edge weights.
func (u *UIDN) GetRelatedEntities(entityID string) []model.Neighbor {
	return u.Graph.GetNeighbors(entityID)
}

// GetEgoNetwork returns the induced subgraph around an entity up to the
// given hop depth.
func (u *UIDN) GetEgoNetwork(entityID string, depth int) model.EgoNetwork {
	return u.Graph.GetEgoNetwork(entityID, depth)
}

// SaveSnapshot exports the current state and persists it under the given
// case id. Requires a snapshot store, see NewUIDNWithStore.
func (u *UIDN) SaveSnapshot(caseID string) (*model.Snapshot, error) {
	if u.Snapshots == nil {
		return nil, helper.NewError("save snapshot", errNoStore)
	}
	return u.Snapshots.InsertSnapshot(caseID, u.ExportResults())
}

// LoadSnapshot returns the most recent persisted snapshot for a case id.
// Requires a snapshot store, see NewUIDNWithStore.
func (u *UIDN) LoadSnapshot(caseID string) (*model.Snapshot, error) {
	if u.Snapshots == nil {
		return nil, helper.NewError("load snapshot", errNoStore)
	}
	return u.Snapshots.SelectLatestSnapshot(caseID)
}
