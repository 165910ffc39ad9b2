package model

// TimelineEvent is one entry of the case timeline, ordered ascending by
// Timestamp. Events with an empty timestamp sort first.
type TimelineEvent struct {
	Timestamp  string      `json:"timestamp"`
	EntityID   string      `json:"entity_id"`
	EntityName string      `json:"entity_name,omitempty"`
	EventType  string      `json:"event_type"`
	Modality   string      `json:"modality,omitempty"`
	Source     string      `json:"source,omitempty"`
	Confidence float64     `json:"confidence"`
	Details    interface{} `json:"details,omitempty"`
}

// TemporalCoverage describes the observed time span of the timeline
type TemporalCoverage struct {
	Start  string `json:"start"`
	End    string `json:"end"`
	Events int    `json:"events"`
}

// TemporalContextEntry is a related entity observed within a time window of
// a target entity.
type TemporalContextEntry struct {
	EntityID           string  `json:"entity_id"`
	EntityName         string  `json:"entity_name,omitempty"`
	TimeDiffHours      float64 `json:"time_diff_hours"`
	RelationshipWeight float64 `json:"relationship_weight"`
}
