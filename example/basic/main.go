package main

import (
	"fmt"
	"log"

	"github.com/siherrmann/uidn"
	"github.com/siherrmann/uidn/model"
)

func main() {
	u := uidn.NewUIDN()

	// Simulated extraction results from three modality workers. The same
	// person shows up with slightly different names across modalities.
	results := &model.WorkerResults{
		ImageResults: []model.WorkerResult{
			{
				ID:        "img_001",
				Timestamp: "2024-03-01T09:30:00Z",
				Entities: []model.Metadata{
					{"name": "Zhangsan", "phone": "13800138000", "confidence": 0.88},
				},
			},
		},
		VoiceResults: []model.WorkerResult{
			{
				ID:        "voice_001",
				Timestamp: "2024-03-01T11:00:00Z",
				Entities: []model.Metadata{
					{"name": "Zhang San", "wechat": "wx_zhangsan", "confidence": 0.82},
				},
			},
		},
		TextResults: []model.WorkerResult{
			{
				ID:        "chat_001",
				Timestamp: "2024-03-01T10:15:00Z",
				Entities: []model.Metadata{
					{"name": "Zhang San", "phone": "138-0013-8000", "wechat": "wx_zhangsan", "confidence": 0.95},
					{"name": "Wang Wu", "phone": "13900139000", "confidence": 0.9},
				},
			},
		},
	}

	fmt.Println("Fusing worker results...")
	fusionReport := u.ProcessWorkerResults(results)
	fmt.Printf("Unique entities: %d (deterministic: %d, semantic: %d, new: %d)\n",
		fusionReport.TotalEntities,
		fusionReport.MatchCounts.Deterministic,
		fusionReport.MatchCounts.Semantic,
		fusionReport.MatchCounts.NewEntities,
	)

	graphReport := u.BuildRelationshipGraph()
	fmt.Printf("Graph: %d nodes, %d edges, density %.3f\n",
		graphReport.Statistics.NodeCount,
		graphReport.Statistics.EdgeCount,
		graphReport.Statistics.Density,
	)

	conflicts := u.DetectConflicts()
	fmt.Printf("Conflicts detected: %d\n", len(conflicts))

	timeline := u.GenerateTimeline(0.5)
	fmt.Printf("Timeline events: %d\n", len(timeline.Events))
	for _, event := range timeline.Events {
		fmt.Printf("  %s  %s (%s, confidence %.2f)\n", event.Timestamp, event.EntityName, event.Modality, event.Confidence)
	}

	// Fold in an external transaction record
	externalReport := u.IntegrateExternalData([]model.ExternalRecord{
		{
			Name:              "Zhang San",
			PhoneNumber:       "13800138000",
			Source:            "bank",
			Timestamp:         "2024-03-01T15:00:00Z",
			CounterpartyPhone: "13900139000",
			Type:              "transfer",
			Weight:            2.0,
		},
	})
	fmt.Printf("External records: %d matched, %d new\n", externalReport.MatchedToExisting, externalReport.CreatedNew)

	// Inspect the merged identity
	zhangSan := u.GetEntityByPhone("13800138000")
	if zhangSan == nil {
		log.Fatal("expected Zhang San to be registered")
	}
	fmt.Printf("\n%s (%s)\n", zhangSan.Name(), zhangSan.ID)
	fmt.Printf("  merged from %d observations, confidence %.3f\n", zhangSan.MergedCount, zhangSan.Confidence)
	fmt.Printf("  sources: %v\n", zhangSan.Sources)

	for _, related := range u.GetRelatedEntities(zhangSan.ID) {
		other := u.GetEntity(related.EntityID)
		fmt.Printf("  related: %s (weight %.2f)\n", other.Name(), related.Weight)
	}

	export := u.ExportResults()
	fmt.Printf("\nExport: %d entities, %d edges, %d timeline events, %d conflicts\n",
		export.Metadata.TotalEntities,
		export.Metadata.TotalEdges,
		export.Metadata.TimelineEvents,
		export.Metadata.ConflictsDetected,
	)

	fmt.Println("\nBasic example completed successfully!")
}
