package registry

import (
	"fmt"
	"log/slog"
	"reflect"
	"sort"
	"time"

	"github.com/siherrmann/uidn/model"
)

// Deterministic match confidences per identifier field
const (
	confidencePhone   = 1.0
	confidenceWechat  = 1.0
	confidenceIDCard  = 0.95
	confidenceAccount = 0.9
)

// Registry owns the canonical entity arena and all identifier indices.
// Registration is the single write path: every incoming attribute bundle is
// either merged into an existing entity or creates a new one. The registry
// is not safe for concurrent use; callers must serialize Register calls.
type Registry struct {
	config model.MatcherConfig

	entities map[string]*model.Entity
	order    []string // entity ids in creation order

	phoneIndex   map[string]string
	nameIndex    map[string]string
	nameOrder    []string // normalized names in index order
	wechatIndex  map[string]string
	idcardIndex  map[string]string
	accountIndex map[string]string

	nextID int

	log *slog.Logger
}

// NewRegistry creates an empty registry with the given matcher configuration
func NewRegistry(config model.MatcherConfig, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}

	return &Registry{
		config:       config,
		entities:     map[string]*model.Entity{},
		phoneIndex:   map[string]string{},
		nameIndex:    map[string]string{},
		wechatIndex:  map[string]string{},
		idcardIndex:  map[string]string{},
		accountIndex: map[string]string{},
		nextID:       1,
		log:          logger,
	}
}

// Register resolves an attribute bundle against the registry and either
// merges it into a matched entity or creates a new one. Matching proceeds
// through strictly ordered tiers (deterministic, semantic, cross-modal) and
// stops at the first hit. It never fails: malformed or missing fields are
// treated as absent.
func (r *Registry) Register(attrs model.Metadata) (string, model.MatchRecord) {
	if attrs == nil {
		attrs = model.Metadata{}
	}

	phone := phoneAttr(attrs)
	name := attrs.GetString("name")
	wechat := wechatAttr(attrs)
	idcard := idcardAttr(attrs)
	account := accountAttr(attrs)

	// Tier 1: exact normalized identifier probes, priority ordered
	type probe struct {
		field      string
		normalized string
		index      map[string]string
		confidence float64
	}
	probes := []probe{
		{"phone", NormalizePhone(phone), r.phoneIndex, confidencePhone},
		{"wechat", NormalizeHandle(wechat), r.wechatIndex, confidenceWechat},
		{"idcard", NormalizeIDCard(idcard), r.idcardIndex, confidenceIDCard},
		{"account", NormalizeAccount(account), r.accountIndex, confidenceAccount},
	}
	for _, p := range probes {
		if p.normalized == "" {
			continue
		}
		if existingID, ok := p.index[p.normalized]; ok {
			record := model.MatchRecord{
				Tier:            model.MatchTierDeterministic,
				MatchedEntityID: existingID,
				Confidence:      p.confidence,
				MatchingField:   p.field,
				Strategy:        model.StrategyDeterministic,
			}
			r.merge(existingID, attrs, record)
			return existingID, record
		}
	}

	// Tier 2: fuzzy name similarity against every indexed name
	if name != "" {
		if bestID, bestScore := r.bestNameMatch(NormalizeName(name)); bestID != "" {
			record := model.MatchRecord{
				Tier:            model.MatchTierSemantic,
				MatchedEntityID: bestID,
				Confidence:      bestScore,
				MatchingField:   "name",
				Strategy:        model.StrategySemantic,
			}
			r.merge(bestID, attrs, record)
			return bestID, record
		}
	}

	// Tier 3: name similarity corroborated by secondary identifiers
	if matchedID, confidence, ok := r.crossModalMatch(attrs, name); ok {
		record := model.MatchRecord{
			Tier:            model.MatchTierCrossModal,
			MatchedEntityID: matchedID,
			Confidence:      confidence,
			MatchingField:   "cross_modal",
			Strategy:        model.StrategyCrossModal,
		}
		r.merge(matchedID, attrs, record)
		return matchedID, record
	}

	return r.create(attrs, phone, name, wechat, idcard, account)
}

// bestNameMatch scans the name index for the highest combined similarity
// score at or above the adaptive threshold. Short names get a relaxed
// threshold to tolerate romanized or transliterated variants.
func (r *Registry) bestNameMatch(normName string) (string, float64) {
	if normName == "" {
		return "", 0.0
	}

	threshold := r.config.SemanticThreshold
	if len([]rune(normName)) <= r.config.ShortNameMaxRunes {
		threshold -= r.config.ShortNameRelax
	}

	bestID := ""
	bestScore := 0.0
	for _, existingName := range r.nameOrder {
		score := NameScore(normName, existingName)
		if score > bestScore && score >= threshold {
			bestScore = score
			bestID = r.nameIndex[existingName]
		}
	}

	return bestID, bestScore
}

// crossModalMatch looks for an entity whose name is close enough to the
// incoming one and whose secondary identifiers (phone, account) partially
// agree. Candidates without any shared secondary identifier never match.
func (r *Registry) crossModalMatch(attrs model.Metadata, name string) (string, float64, bool) {
	if name == "" {
		return "", 0.0, false
	}
	normName := NormalizeName(name)

	bestID := ""
	bestConfidence := 0.0
	for _, entityID := range r.order {
		entity := r.entities[entityID]
		existingName := entity.Name()
		if existingName == "" {
			continue
		}

		nameSim := SequenceRatio(normName, NormalizeName(existingName))
		if nameSim < r.config.NameSimilarityFloor {
			continue
		}

		matching := 0
		comparisons := 0

		if p1, p2 := phoneAttr(attrs), phoneAttr(entity.Attributes); p1 != "" && p2 != "" {
			comparisons++
			if NormalizePhone(p1) == NormalizePhone(p2) {
				matching++
			}
		}
		if a1, a2 := accountAttr(attrs), accountAttr(entity.Attributes); a1 != "" && a2 != "" {
			comparisons++
			if NormalizeAccount(a1) == NormalizeAccount(a2) {
				matching++
			}
		}

		if comparisons == 0 {
			continue
		}

		agreement := float64(matching) / float64(comparisons)
		confidence := 0.6*nameSim + 0.4*agreement
		if confidence > bestConfidence {
			bestConfidence = confidence
			bestID = entityID
		}
	}

	if bestID == "" || bestConfidence < r.config.CrossModalThreshold {
		return "", 0.0, false
	}
	return bestID, bestConfidence, true
}

// create allocates a new entity id, seeds the attribute map and indexes
// every normalized identifier present. Identifiers learned later through
// merges are intentionally not indexed.
func (r *Registry) create(attrs model.Metadata, phone, name, wechat, idcard, account string) (string, model.MatchRecord) {
	entityID := fmt.Sprintf("ENTITY_%06d", r.nextID)
	r.nextID++

	now := time.Now().UTC()
	entity := &model.Entity{
		ID:          entityID,
		Attributes:  attributeMap(attrs),
		Confidence:  bundleConfidence(attrs),
		Sources:     []string{sourceTag(attrs)},
		MergedCount: 1,
		CreatedAt:   now,
		LastUpdated: now,
	}

	record := model.MatchRecord{
		Tier:       model.MatchTierNew,
		Confidence: 1.0,
		Strategy:   model.StrategyNewEntity,
	}
	entity.MatchHistory = []model.MatchRecord{record}

	r.entities[entityID] = entity
	r.order = append(r.order, entityID)

	if norm := NormalizePhone(phone); norm != "" {
		r.phoneIndex[norm] = entityID
	}
	if norm := NormalizeName(name); norm != "" {
		if _, ok := r.nameIndex[norm]; !ok {
			r.nameOrder = append(r.nameOrder, norm)
		}
		r.nameIndex[norm] = entityID
	}
	if norm := NormalizeHandle(wechat); norm != "" {
		r.wechatIndex[norm] = entityID
	}
	if norm := NormalizeIDCard(idcard); norm != "" {
		r.idcardIndex[norm] = entityID
	}
	if norm := NormalizeAccount(account); norm != "" {
		r.accountIndex[norm] = entityID
	}

	r.log.Debug("Created entity", slog.String("entity_id", entityID), slog.String("name", name))

	return entityID, record
}

// merge folds an incoming bundle into an existing entity. Conflicting
// values go through ResolveConflict and every overwrite decision is kept in
// the entity's conflict history. The entity confidence is blended as a
// recency-weighted moving average.
func (r *Registry) merge(entityID string, attrs model.Metadata, record model.MatchRecord) {
	entity := r.entities[entityID]
	incomingConfidence := bundleConfidence(attrs)

	keys := make([]string, 0, len(attrs))
	for key := range attrs {
		if key == "confidence" {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := attrs[key]
		existing, ok := entity.Attributes[key]
		if !ok {
			entity.Attributes[key] = value
			continue
		}

		if !isEmptyValue(existing) && !reflect.DeepEqual(existing, value) {
			resolved, _, resolution := ResolveConflict(existing, value, entity.Confidence, incomingConfidence)
			entity.Attributes[key] = resolved

			if entity.ConflictHistory == nil {
				entity.ConflictHistory = map[string][]model.ConflictRecord{}
			}
			entity.ConflictHistory[key] = append(entity.ConflictHistory[key], model.ConflictRecord{
				Existing:   existing,
				New:        value,
				Resolved:   resolved,
				Resolution: string(resolution),
			})
		} else if isEmptyValue(existing) && !isEmptyValue(value) {
			entity.Attributes[key] = value
		}
	}

	if source := sourceTag(attrs); !entity.HasSource(source) {
		entity.Sources = append(entity.Sources, source)
	}

	entity.MergedCount++
	entity.MatchHistory = append(entity.MatchHistory, record)
	entity.LastUpdated = time.Now().UTC()

	r.log.Debug("Merged entity",
		slog.String("entity_id", entityID),
		slog.String("matching_field", record.MatchingField),
		slog.Int("merged_count", entity.MergedCount),
	)

	alpha := r.config.ConfidenceAlpha
	entity.Confidence = clampConfidence(alpha*incomingConfidence + (1-alpha)*entity.Confidence)
}

// attributeMap clones the bundle without the confidence key, which lives as
// a typed field on the entity.
func attributeMap(attrs model.Metadata) model.Metadata {
	out := attrs.Clone()
	delete(out, "confidence")
	return out
}

func bundleConfidence(attrs model.Metadata) float64 {
	confidence, ok := attrs.GetFloat("confidence")
	if !ok {
		return 1.0
	}
	return clampConfidence(confidence)
}

func clampConfidence(confidence float64) float64 {
	if confidence < 0 {
		return 0
	}
	if confidence > 1 {
		return 1
	}
	return confidence
}

func sourceTag(attrs model.Metadata) string {
	if source := attrs.GetString("source"); source != "" {
		return source
	}
	return "unknown"
}

// GetEntity returns the entity with the given id, nil if absent
func (r *Registry) GetEntity(entityID string) *model.Entity {
	return r.entities[entityID]
}

// GetEntityByPhone returns the entity indexed under the normalized phone
// number, nil if absent.
func (r *Registry) GetEntityByPhone(phone string) *model.Entity {
	entityID, ok := r.phoneIndex[NormalizePhone(phone)]
	if !ok {
		return nil
	}
	return r.entities[entityID]
}

// GetEntityByName returns the entity indexed under the exact normalized
// name, nil if absent. Fuzzy matching happens only during registration.
func (r *Registry) GetEntityByName(name string) *model.Entity {
	entityID, ok := r.nameIndex[NormalizeName(name)]
	if !ok {
		return nil
	}
	return r.entities[entityID]
}

// All returns every entity in creation order
func (r *Registry) All() []*model.Entity {
	entities := make([]*model.Entity, 0, len(r.order))
	for _, entityID := range r.order {
		entities = append(entities, r.entities[entityID])
	}
	return entities
}

// Len returns the number of entities in the arena
func (r *Registry) Len() int {
	return len(r.entities)
}

// Statistics reports index sizes and the mean merge count
func (r *Registry) Statistics() model.RegistryStatistics {
	stats := model.RegistryStatistics{
		TotalEntities:  len(r.entities),
		PhoneIndexed:   len(r.phoneIndex),
		NameIndexed:    len(r.nameIndex),
		WechatIndexed:  len(r.wechatIndex),
		IDCardIndexed:  len(r.idcardIndex),
		AccountIndexed: len(r.accountIndex),
	}

	if len(r.entities) > 0 {
		total := 0
		for _, entity := range r.entities {
			total += entity.MergedCount
		}
		stats.AvgMergedCount = float64(total) / float64(len(r.entities))
	}

	return stats
}
