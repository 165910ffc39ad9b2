package model

// MatcherConfig holds the thresholds and weights of the matching and edge
// derivation heuristics. The defaults reproduce the tuned production
// values; they are knobs, not load-bearing constants.
type MatcherConfig struct {
	// Semantic (tier 2) name matching
	SemanticThreshold float64 `json:"semantic_threshold"`
	ShortNameRelax    float64 `json:"short_name_relax"`     // subtracted from SemanticThreshold for short names
	ShortNameMaxRunes int     `json:"short_name_max_runes"` // names at or below this rune count count as short

	// Cross-modal (tier 3) matching
	CrossModalThreshold float64 `json:"cross_modal_threshold"`
	NameSimilarityFloor float64 `json:"name_similarity_floor"` // minimum name similarity to consider a candidate

	// Confidence blending on merge (exponential moving average)
	ConfidenceAlpha float64 `json:"confidence_alpha"`

	// Edge derivation
	TemporalWindowSeconds float64 `json:"temporal_window_seconds"`
	MultiModalWeight      float64 `json:"multi_modal_weight"`

	// Timeline
	MinTimelineConfidence float64 `json:"min_timeline_confidence"`
}

// DefaultMatcherConfig returns the production default configuration
func DefaultMatcherConfig() MatcherConfig {
	return MatcherConfig{
		SemanticThreshold:     0.85,
		ShortNameRelax:        0.1,
		ShortNameMaxRunes:     3,
		CrossModalThreshold:   0.75,
		NameSimilarityFloor:   0.75,
		ConfidenceAlpha:       0.3,
		TemporalWindowSeconds: 86400,
		MultiModalWeight:      0.8,
		MinTimelineConfidence: 0.5,
	}
}
