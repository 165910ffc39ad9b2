package main

import (
	"context"
	"fmt"
	"log"

	"github.com/siherrmann/uidn"
	"github.com/siherrmann/uidn/helper"
	"github.com/siherrmann/uidn/model"
)

func main() {
	// Start a test PostgreSQL container
	teardown, dbPort, err := helper.MustStartPostgresContainer()
	if err != nil {
		log.Fatalf("Failed to start PostgreSQL container: %v", err)
	}
	defer teardown(context.Background())

	// Create database configuration using the container port
	dbConfig := &helper.DatabaseConfiguration{
		Host:     "localhost",
		Port:     dbPort,
		Database: "database",
		Username: "user",
		Password: "password",
		Schema:   "public",
		SSLMode:  "disable",
	}

	u, err := uidn.NewUIDNWithStore(dbConfig)
	if err != nil {
		log.Fatalf("Failed to create orchestrator: %v", err)
	}
	defer u.Close()

	fmt.Println("Fusing worker results...")
	u.ProcessWorkerResults(&model.WorkerResults{
		TextResults: []model.WorkerResult{
			{
				ID:        "chat_001",
				Timestamp: "2024-03-01T10:15:00Z",
				Entities: []model.Metadata{
					{"name": "Zhang San", "phone": "13800138000", "confidence": 0.95},
					{"name": "Wang Wu", "phone": "13900139000", "confidence": 0.9},
				},
			},
		},
	})
	u.BuildRelationshipGraph()
	u.DetectConflicts()
	u.GenerateTimeline(0.5)

	// Persist the consolidated state
	snapshot, err := u.SaveSnapshot("case-2024-001")
	if err != nil {
		log.Fatalf("Failed to save snapshot: %v", err)
	}
	fmt.Printf("Saved snapshot %d (rid %s) for case %s\n", snapshot.ID, snapshot.RID, snapshot.CaseID)

	// Load it back and inspect the stored rows
	loaded, err := u.LoadSnapshot("case-2024-001")
	if err != nil {
		log.Fatalf("Failed to load snapshot: %v", err)
	}
	fmt.Printf("Loaded snapshot from %s with %d entities and %d edges\n",
		loaded.CreatedAt.Format("2006-01-02 15:04:05"),
		loaded.Export.Metadata.TotalEntities,
		loaded.Export.Metadata.TotalEdges,
	)

	entities, err := u.Snapshots.SelectSnapshotEntities(loaded.ID)
	if err != nil {
		log.Fatalf("Failed to select snapshot entities: %v", err)
	}
	for _, entity := range entities {
		fmt.Printf("  %s: %s (merged %d times)\n", entity.ID, entity.Name(), entity.MergedCount)
	}

	edges, err := u.Snapshots.SelectSnapshotEdges(loaded.ID)
	if err != nil {
		log.Fatalf("Failed to select snapshot edges: %v", err)
	}
	for _, edge := range edges {
		fmt.Printf("  %s -- %s (%s, weight %.2f)\n", edge.Source, edge.Target, edge.RelationType, edge.Weight)
	}

	fmt.Println("\nSnapshot example completed successfully!")
}
