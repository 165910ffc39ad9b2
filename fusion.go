package uidn

import (
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/siherrmann/uidn/model"
)

// timestampLayouts are tried in order when parsing bundle timestamps.
// Workers emit RFC 3339; external providers tend to drop the zone or use a
// space separator.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseTimestamp(value string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable timestamp %q", value)
}

// ProcessWorkerResults registers every extracted attribute bundle of a
// fusion batch with the entity registry, modality by modality in fixed
// order (image, voice, text). Each bundle is stamped with its provenance
// tag, modality and the parent result's timestamp before registration. The
// pass is purely additive and never fails on malformed bundles.
func (u *UIDN) ProcessWorkerResults(results *model.WorkerResults) *model.FusionReport {
	u.log.Info("Starting multi-modal entity fusion")

	report := &model.FusionReport{
		ModalityCounts: map[string]int{},
	}
	if results == nil {
		return report
	}

	batches := []struct {
		modality string
		results  []model.WorkerResult
	}{
		{model.ModalityImage, results.ImageResults},
		{model.ModalityVoice, results.VoiceResults},
		{model.ModalityText, results.TextResults},
	}

	for _, batch := range batches {
		for i, result := range batch.results {
			resultID := result.ID
			if resultID == "" {
				resultID = result.UUID
			}
			if resultID == "" {
				// Positional fallback keeps provenance tags reproducible
				// across runs without collapsing distinct id-less results
				// onto a shared tag.
				resultID = fmt.Sprintf("%s_%d", batch.modality, i)
			}

			for _, bundle := range result.Entities {
				attrs := bundle.Clone()
				attrs["source"] = fmt.Sprintf("%s:%s", batch.modality, resultID)
				attrs["modality"] = batch.modality
				attrs["timestamp"] = result.Timestamp

				entityID, record := u.Registry.Register(attrs)

				report.MatchCounts.Tally(record.Tier)
				report.ModalityCounts[batch.modality]++
				u.matchCounts.Tally(record.Tier)
				u.modalityCounts[batch.modality]++

				u.log.Debug("Registered entity",
					slog.String("modality", batch.modality),
					slog.String("entity_id", entityID),
					slog.Int("match_tier", int(record.Tier)),
					slog.Float64("confidence", record.Confidence),
				)
			}
		}
	}

	report.TotalEntities = u.Registry.Len()
	u.log.Info("Entity fusion completed", slog.Int("unique_entities", report.TotalEntities))

	return report
}

// BuildRelationshipGraph materializes graph edges from co-occurrence,
// temporal and cross-modal signals over all resolved entity pairs. The
// pairwise scan is O(n²), acceptable for case-sized entity counts.
// Unparseable timestamps are logged and skipped without aborting the pass.
func (u *UIDN) BuildRelationshipGraph() *model.GraphReport {
	u.log.Info("Building relationship graph")

	report := &model.GraphReport{
		EdgeCounts: map[model.RelationType]int{},
	}

	entities := u.Registry.All()
	for i, entity1 := range entities {
		for _, entity2 := range entities[i+1:] {
			u.deriveCooccurrenceEdge(entity1, entity2, report)
			u.deriveTemporalEdge(entity1, entity2, report)
			u.deriveMultiModalEdge(entity1, entity2, report)
		}
	}

	for relationType, count := range report.EdgeCounts {
		u.edgeCounts[relationType] += count
	}

	report.Statistics = u.Graph.Statistics()
	u.log.Info("Graph built",
		slog.Int("nodes", report.Statistics.NodeCount),
		slog.Int("edges", report.Statistics.EdgeCount),
	)

	return report
}

// deriveCooccurrenceEdge links two entities that share provenance tags,
// weighted by the number of shared tags.
func (u *UIDN) deriveCooccurrenceEdge(entity1, entity2 *model.Entity, report *model.GraphReport) {
	var common []string
	for _, source := range entity1.Sources {
		if entity2.HasSource(source) {
			common = append(common, source)
		}
	}
	if len(common) == 0 {
		return
	}

	u.Graph.AddEdge(
		entity1.ID,
		entity2.ID,
		model.RelationTypeCooccurrence,
		float64(len(common)),
		"",
		model.Metadata{"common_sources": common},
	)
	report.EdgeCounts[model.RelationTypeCooccurrence]++
}

// deriveTemporalEdge links two entities observed within the temporal
// window, weighted inversely with the hour distance and timestamped at the
// earlier of the two observations.
func (u *UIDN) deriveTemporalEdge(entity1, entity2 *model.Entity, report *model.GraphReport) {
	ts1 := entity1.Timestamp()
	ts2 := entity2.Timestamp()
	if ts1 == "" || ts2 == "" {
		return
	}

	t1, err := parseTimestamp(ts1)
	if err != nil {
		u.log.Debug("Temporal edge skipped", slog.String("entity_id", entity1.ID), slog.String("error", err.Error()))
		return
	}
	t2, err := parseTimestamp(ts2)
	if err != nil {
		u.log.Debug("Temporal edge skipped", slog.String("entity_id", entity2.ID), slog.String("error", err.Error()))
		return
	}

	deltaSeconds := math.Abs(t1.Sub(t2).Seconds())
	if deltaSeconds <= 0 || deltaSeconds > u.config.TemporalWindowSeconds {
		return
	}

	// Re-formatting the earlier timestamp as RFC 3339 keeps edge
	// timestamps comparable even when the inputs used mixed layouts.
	earlier := t1
	if t2.Before(t1) {
		earlier = t2
	}

	u.Graph.AddEdge(
		entity1.ID,
		entity2.ID,
		model.RelationTypeTemporal,
		1.0/(1.0+deltaSeconds/3600),
		earlier.UTC().Format(time.RFC3339),
		nil,
	)
	report.EdgeCounts[model.RelationTypeTemporal]++
}

// deriveMultiModalEdge links two entities surfaced by different modalities
// with a fixed weight.
func (u *UIDN) deriveMultiModalEdge(entity1, entity2 *model.Entity, report *model.GraphReport) {
	mod1 := entity1.Modality()
	mod2 := entity2.Modality()
	if mod1 == "" || mod2 == "" || mod1 == mod2 {
		return
	}
	if len(entity1.MatchHistory) == 0 || len(entity2.MatchHistory) == 0 {
		return
	}

	u.Graph.AddEdge(
		entity1.ID,
		entity2.ID,
		model.RelationTypeMultiModal,
		u.config.MultiModalWeight,
		"",
		nil,
	)
	report.EdgeCounts[model.RelationTypeMultiModal]++
}

// DetectConflicts scans every entity for recorded attribute conflicts and
// for entities that were never corroborated by a second source nor linked
// to anything.
func (u *UIDN) DetectConflicts() []model.Conflict {
	var conflicts []model.Conflict

	for _, entity := range u.Registry.All() {
		attrs := make([]string, 0, len(entity.ConflictHistory))
		for attr := range entity.ConflictHistory {
			attrs = append(attrs, attr)
		}
		sort.Strings(attrs)

		for _, attr := range attrs {
			for _, record := range entity.ConflictHistory[attr] {
				conflicts = append(conflicts, model.Conflict{
					EntityID:  entity.ID,
					Type:      model.ConflictTypeAttribute,
					Attribute: attr,
					Details:   record,
				})
			}
		}

		if u.Graph.GetDegree(entity.ID) == 0 && entity.MergedCount == 1 {
			conflicts = append(conflicts, model.Conflict{
				EntityID: entity.ID,
				Type:     model.ConflictTypeIsolated,
				Details:  fmt.Sprintf("Entity %s has no relationships", entity.ID),
			})
		}
	}

	u.conflicts = conflicts
	return conflicts
}

// GenerateTimeline rebuilds the case timeline from the registry: one event
// per entity at or above the confidence threshold that carries a
// timestamp, sorted ascending. Events with an empty timestamp sort first.
func (u *UIDN) GenerateTimeline(minConfidence float64) *model.TimelineReport {
	u.log.Info("Generating timeline")

	u.timeline = nil
	for _, entity := range u.Registry.All() {
		if entity.Confidence < minConfidence {
			continue
		}
		timestamp := entity.Timestamp()
		if timestamp == "" {
			continue
		}

		name := entity.Name()
		if name == "" {
			name = "unknown"
		}

		u.timeline = append(u.timeline, model.TimelineEvent{
			Timestamp:  timestamp,
			EntityID:   entity.ID,
			EntityName: name,
			EventType:  "entity_activity",
			Modality:   entity.Modality(),
			Source:     entity.Attributes.GetString("source"),
			Confidence: entity.Confidence,
			Details:    entity,
		})
	}

	sortTimeline(u.timeline)

	u.coverage = nil
	if len(u.timeline) > 0 {
		u.coverage = &model.TemporalCoverage{
			Start:  u.timeline[0].Timestamp,
			End:    u.timeline[len(u.timeline)-1].Timestamp,
			Events: len(u.timeline),
		}
	}

	u.log.Info("Timeline generated", slog.Int("events", len(u.timeline)))

	return &model.TimelineReport{
		Events:   u.timeline,
		Coverage: u.coverage,
	}
}

func sortTimeline(timeline []model.TimelineEvent) {
	sort.SliceStable(timeline, func(i, j int) bool {
		return timeline[i].Timestamp < timeline[j].Timestamp
	})
}

// IntegrateExternalData maps external records into the shared attribute
// schema, registers each one like any worker bundle, links counterparties
// found by exact phone match through external-typed edges and appends
// timeline events for timestamped records.
func (u *UIDN) IntegrateExternalData(records []model.ExternalRecord) *model.ExternalReport {
	u.log.Info("Integrating external records", slog.Int("count", len(records)))

	report := &model.ExternalReport{}

	for i := range records {
		record := &records[i]

		confidence := 0.9
		if record.Confidence != nil {
			confidence = *record.Confidence
		}

		source := record.Source
		if source == "" {
			source = "unknown"
		}

		attrs := model.Metadata{
			"confidence": confidence,
			"source":     fmt.Sprintf("external:%s", source),
			"modality":   model.ModalityExternal,
		}
		if v := record.ResolvedName(); v != "" {
			attrs["name"] = v
		}
		if v := record.ResolvedPhone(); v != "" {
			attrs["phone"] = v
		}
		if v := record.ResolvedWechat(); v != "" {
			attrs["wechat"] = v
		}
		if v := record.ResolvedIDCard(); v != "" {
			attrs["idcard"] = v
		}
		if v := record.ResolvedAccount(); v != "" {
			attrs["account"] = v
		}
		if record.Timestamp != "" {
			attrs["timestamp"] = record.Timestamp
		}

		before := u.Registry.Len()
		entityID, _ := u.Registry.Register(attrs)

		report.Processed++
		if u.Registry.Len() == before {
			report.MatchedToExisting++
		} else {
			report.CreatedNew++
		}
		u.modalityCounts[model.ModalityExternal]++

		if record.CounterpartyPhone != "" {
			if other := u.Registry.GetEntityByPhone(record.CounterpartyPhone); other != nil && other.ID != entityID {
				recordType := record.Type
				if recordType == "" {
					recordType = "transaction"
				}
				weight := record.Weight
				if weight == 0 {
					weight = 1.0
				}

				u.Graph.AddEdge(
					entityID,
					other.ID,
					model.RelationTypeExternal,
					weight,
					record.Timestamp,
					model.Metadata{"record_type": recordType},
				)
				u.edgeCounts[model.RelationTypeExternal]++
			}
		}

		if record.Timestamp != "" {
			eventType := record.Type
			if eventType == "" {
				eventType = "external_activity"
			}
			u.timeline = append(u.timeline, model.TimelineEvent{
				Timestamp:  record.Timestamp,
				EntityID:   entityID,
				EventType:  eventType,
				Modality:   model.ModalityExternal,
				Source:     attrs.GetString("source"),
				Confidence: confidence,
				Details:    record,
			})
		}
	}

	sortTimeline(u.timeline)

	u.log.Info("External integration completed",
		slog.Int("matched", report.MatchedToExisting),
		slog.Int("created", report.CreatedNew),
	)

	return report
}

// ExportResults returns the consolidated snapshot of the full current
// state. It is the sole externally consumed artifact of a fusion run and a
// stable contract for downstream consumers.
func (u *UIDN) ExportResults() *model.Export {
	entities := u.Registry.All()

	return &model.Export{
		Metadata: model.ExportMetadata{
			Timestamp:         time.Now().UTC(),
			TotalEntities:     len(entities),
			TotalEdges:        u.Graph.EdgeCount(),
			TimelineEvents:    len(u.timeline),
			ConflictsDetected: len(u.conflicts),
		},
		Entities:          entities,
		EntityStatistics:  u.Registry.Statistics(),
		RelationshipGraph: u.Graph.Export(),
		Timeline:          u.timeline,
		Conflicts:         u.conflicts,
		ProcessingStatistics: model.ProcessingStatistics{
			MatchCounts:      u.matchCounts,
			ModalityCounts:   u.modalityCounts,
			EdgeCounts:       u.edgeCounts,
			ConflictCount:    len(u.conflicts),
			TemporalCoverage: u.coverage,
		},
	}
}

// GetTemporalContext returns the related entities observed within the
// given window (seconds) of the target entity's own timestamp, closest
// first. Entities without parseable timestamps are left out.
func (u *UIDN) GetTemporalContext(entityID string, windowSeconds float64) []model.TemporalContextEntry {
	entity := u.Registry.GetEntity(entityID)
	if entity == nil || entity.Timestamp() == "" {
		return nil
	}

	target, err := parseTimestamp(entity.Timestamp())
	if err != nil {
		u.log.Debug("Temporal context skipped", slog.String("entity_id", entityID), slog.String("error", err.Error()))
		return nil
	}

	var related []model.TemporalContextEntry
	for _, neighbor := range u.Graph.GetNeighbors(entityID) {
		other := u.Registry.GetEntity(neighbor.EntityID)
		if other == nil || other.Timestamp() == "" {
			continue
		}

		otherTime, err := parseTimestamp(other.Timestamp())
		if err != nil {
			continue
		}

		diffSeconds := math.Abs(target.Sub(otherTime).Seconds())
		if diffSeconds > windowSeconds {
			continue
		}

		related = append(related, model.TemporalContextEntry{
			EntityID:           neighbor.EntityID,
			EntityName:         other.Name(),
			TimeDiffHours:      diffSeconds / 3600,
			RelationshipWeight: neighbor.Weight,
		})
	}

	sort.SliceStable(related, func(i, j int) bool {
		return related[i].TimeDiffHours < related[j].TimeDiffHours
	})

	return related
}
