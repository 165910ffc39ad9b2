package model

import "time"

// MatchTier identifies how an incoming attribute bundle was resolved
// against the registry.
type MatchTier int

const (
	MatchTierNew           MatchTier = 0
	MatchTierDeterministic MatchTier = 1
	MatchTierSemantic      MatchTier = 2
	MatchTierCrossModal    MatchTier = 3
)

// Match strategies as recorded on MatchRecord.Strategy.
const (
	StrategyNewEntity     = "new_entity"
	StrategyDeterministic = "deterministic"
	StrategySemantic      = "semantic"
	StrategyCrossModal    = "cross_modal"
)

// MatchRecord describes one registration decision. It is purely
// observational: it is appended to the matched entity's history and tallied
// for reporting, but never drives later matching.
type MatchRecord struct {
	Tier            MatchTier `json:"match_tier"`
	MatchedEntityID string    `json:"matched_entity_id,omitempty"`
	Confidence      float64   `json:"confidence"`
	MatchingField   string    `json:"matching_field,omitempty"`
	Strategy        string    `json:"strategy"`
}

// ConflictRecord retains a resolved disagreement between a stored attribute
// value and an incoming one.
type ConflictRecord struct {
	Existing   interface{} `json:"existing"`
	New        interface{} `json:"new"`
	Resolved   interface{} `json:"resolved"`
	Resolution string      `json:"resolution"`
}

// Entity is one canonical identity in the registry arena. The ID is
// assigned once and never reused; attribute values may be overwritten on
// merge but every overwrite is retained in ConflictHistory.
type Entity struct {
	ID              string                      `json:"entity_id"`
	Attributes      Metadata                    `json:"attributes"`
	Confidence      float64                     `json:"confidence"`
	Sources         []string                    `json:"sources"`
	MergedCount     int                         `json:"merged_count"`
	MatchHistory    []MatchRecord               `json:"match_history"`
	ConflictHistory map[string][]ConflictRecord `json:"conflict_history,omitempty"`
	CreatedAt       time.Time                   `json:"created_at"`
	LastUpdated     time.Time                   `json:"last_updated"`
}

// Name returns the entity's name attribute, "" if absent
func (e *Entity) Name() string {
	return e.Attributes.GetString("name")
}

// Timestamp returns the entity's timestamp attribute, "" if absent
func (e *Entity) Timestamp() string {
	return e.Attributes.GetString("timestamp")
}

// Modality returns the modality that first produced the entity, "" if absent
func (e *Entity) Modality() string {
	return e.Attributes.GetString("modality")
}

// HasSource reports whether the given provenance tag already contributed
func (e *Entity) HasSource(source string) bool {
	for _, s := range e.Sources {
		if s == source {
			return true
		}
	}
	return false
}
