package model

import "time"

// RegistryStatistics reports index sizes and merge activity of the registry
type RegistryStatistics struct {
	TotalEntities  int     `json:"total_entities"`
	PhoneIndexed   int     `json:"phone_indexed"`
	NameIndexed    int     `json:"name_indexed"`
	WechatIndexed  int     `json:"wechat_indexed"`
	IDCardIndexed  int     `json:"idcard_indexed"`
	AccountIndexed int     `json:"account_indexed"`
	AvgMergedCount float64 `json:"avg_merged_count"`
}

// MatchCounts tallies registration outcomes per match tier
type MatchCounts struct {
	Deterministic int `json:"level_1_deterministic"`
	Semantic      int `json:"level_2_semantic"`
	CrossModal    int `json:"level_3_cross_modal"`
	NewEntities   int `json:"new_entities"`
}

// Tally increments the counter for the given tier
func (c *MatchCounts) Tally(tier MatchTier) {
	switch tier {
	case MatchTierDeterministic:
		c.Deterministic++
	case MatchTierSemantic:
		c.Semantic++
	case MatchTierCrossModal:
		c.CrossModal++
	default:
		c.NewEntities++
	}
}

// FusionReport is the result of one ProcessWorkerResults pass
type FusionReport struct {
	MatchCounts    MatchCounts    `json:"match_counts"`
	ModalityCounts map[string]int `json:"modality_counts"`
	TotalEntities  int            `json:"total_entities"`
}

// GraphReport is the result of one BuildRelationshipGraph pass. EdgeCounts
// counts derivation decisions per relation type; because edges accumulate,
// this can exceed the number of distinct edges in Statistics.
type GraphReport struct {
	EdgeCounts map[RelationType]int `json:"edge_counts"`
	Statistics GraphStatistics      `json:"statistics"`
}

// Conflict types reported by DetectConflicts
const (
	ConflictTypeAttribute = "attribute_conflict"
	ConflictTypeIsolated  = "isolated_entity"
)

// Conflict is one finding of the conflict scan
type Conflict struct {
	EntityID  string      `json:"entity_id"`
	Type      string      `json:"type"`
	Attribute string      `json:"attribute,omitempty"`
	Details   interface{} `json:"details,omitempty"`
}

// TimelineReport is the result of one GenerateTimeline pass
type TimelineReport struct {
	Events   []TimelineEvent   `json:"events"`
	Coverage *TemporalCoverage `json:"coverage,omitempty"`
}

// ExternalReport is the result of one IntegrateExternalData pass
type ExternalReport struct {
	Processed         int `json:"processed"`
	MatchedToExisting int `json:"matched_to_existing"`
	CreatedNew        int `json:"created_new"`
}

// ProcessingStatistics aggregates all phase reports for the export envelope
type ProcessingStatistics struct {
	MatchCounts      MatchCounts          `json:"match_counts"`
	ModalityCounts   map[string]int       `json:"modality_counts"`
	EdgeCounts       map[RelationType]int `json:"edge_counts"`
	ConflictCount    int                  `json:"conflict_count"`
	TemporalCoverage *TemporalCoverage    `json:"temporal_coverage,omitempty"`
}

// ExportMetadata carries top-level counts of an export
type ExportMetadata struct {
	Timestamp         time.Time `json:"timestamp"`
	TotalEntities     int       `json:"total_entities"`
	TotalEdges        int       `json:"total_edges"`
	TimelineEvents    int       `json:"timeline_events"`
	ConflictsDetected int       `json:"conflicts_detected"`
}

// Export is the consolidated snapshot of a full fusion run. It is the sole
// externally consumed artifact of the core and a stable contract for
// downstream report generators.
type Export struct {
	Metadata             ExportMetadata       `json:"metadata"`
	Entities             []*Entity            `json:"entities"`
	EntityStatistics     RegistryStatistics   `json:"entity_statistics"`
	RelationshipGraph    GraphExport          `json:"relationship_graph"`
	Timeline             []TimelineEvent      `json:"timeline"`
	Conflicts            []Conflict           `json:"conflicts"`
	ProcessingStatistics ProcessingStatistics `json:"processing_statistics"`
}
