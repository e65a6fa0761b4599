package ev

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

const (
	// maxSampleCards bounds how many single-card names are considered per
	// expansion during auto-matching.
	maxSampleCards = 20

	// minMatchConfidence is the acceptance floor for auto-generated mappings.
	minMatchConfidence = 0.5
)

// productTypeTokens are the sealed-product keywords used to derive a set
// name from a product name, checked in order.
var productTypeTokens = []string{
	"Play Booster Box",
	"Draft Booster Box",
	"Set Booster Box",
	"Collector Booster Box",
	"Bundle",
	"Fat Pack",
	"Prerelease Pack",
	"Prerelease Promo",
	"Commander",
	"Theme Deck",
	"Intro Pack",
	"Tournament Pack",
}

// Mapper maintains the bidirectional mapping between marketplace expansion
// IDs and card-pool set codes. Manual entries are authoritative and are
// never replaced by auto-generated ones.
type Mapper struct {
	store  *MappingStore
	logger *slog.Logger

	mappings map[int]ExpansionMapping
	reverse  map[string]int
}

// NewMapper creates a mapper persisting through the given store.
func NewMapper(store *MappingStore, logger *slog.Logger) *Mapper {
	if logger == nil {
		logger = slog.Default()
	}
	return &Mapper{
		store:    store,
		logger:   logger,
		mappings: make(map[int]ExpansionMapping),
		reverse:  make(map[string]int),
	}
}

// Initialize loads persisted mappings, auto-matches any marketplace
// expansion that is still unmapped against the card catalog, and persists
// the combined table once.
func (m *Mapper) Initialize(ctx context.Context, catalog *Catalog, expansions []MarketExpansion) error {
	if err := m.loadPersisted(); err != nil {
		return err
	}

	before := len(m.mappings)
	m.generateAutoMappings(ctx, catalog, expansions)
	m.logger.Info("expansion mapper initialized",
		"mapped", len(m.mappings),
		"auto_matched", len(m.mappings)-before)

	if err := m.store.Save(m.allMappings()); err != nil {
		return fmt.Errorf("persist expansion mappings: %w", err)
	}
	return nil
}

// Load reads only the persisted mapping table, without running
// auto-matching. Useful for mapping maintenance outside initialization.
func (m *Mapper) Load() error {
	return m.loadPersisted()
}

// Save persists the current mapping table through the store.
func (m *Mapper) Save() error {
	if err := m.store.Save(m.allMappings()); err != nil {
		return fmt.Errorf("persist expansion mappings: %w", err)
	}
	return nil
}

// GetSetCode returns the set code mapped to a marketplace expansion ID, or
// "" when the expansion is unmapped.
func (m *Mapper) GetSetCode(expansionID int) (string, bool) {
	mapping, ok := m.mappings[expansionID]
	if !ok {
		return "", false
	}
	return mapping.SetCode, true
}

// GetExpansionID returns the marketplace expansion ID mapped to a set code.
func (m *Mapper) GetExpansionID(setCode string) (int, bool) {
	id, ok := m.reverse[strings.ToUpper(setCode)]
	return id, ok
}

// Confidence returns the mapping confidence for an expansion, 0 if unmapped.
func (m *Mapper) Confidence(expansionID int) float64 {
	return m.mappings[expansionID].Confidence
}

// AddManualMapping registers an authoritative mapping. It overwrites any
// existing entry for the expansion ID and updates both index directions.
func (m *Mapper) AddManualMapping(expansionID int, setCode, setName string) {
	m.put(ExpansionMapping{
		ExpansionID: expansionID,
		SetCode:     strings.ToUpper(setCode),
		SetName:     setName,
		Confidence:  1.0,
		Source:      SourceManual,
	})
}

// Mappings returns every known mapping.
func (m *Mapper) Mappings() []ExpansionMapping {
	return m.allMappings()
}

// put records a mapping in both directions.
func (m *Mapper) put(mapping ExpansionMapping) {
	m.mappings[mapping.ExpansionID] = mapping
	m.reverse[mapping.SetCode] = mapping.ExpansionID
}

func (m *Mapper) allMappings() []ExpansionMapping {
	out := make([]ExpansionMapping, 0, len(m.mappings))
	for _, mapping := range m.mappings {
		out = append(out, mapping)
	}
	return out
}

// loadPersisted loads the mapping store: manual overrides first, then
// auto-generated entries, which never displace an ID already present.
func (m *Mapper) loadPersisted() error {
	doc, err := m.store.Load()
	if err != nil {
		return err
	}
	if doc == nil {
		return nil
	}

	for id, entry := range doc.ManualOverrides {
		m.put(ExpansionMapping{
			ExpansionID: id,
			SetCode:     strings.ToUpper(entry.Code),
			SetName:     entry.Name,
			Confidence:  1.0,
			Source:      SourceManual,
		})
	}

	for id, entry := range doc.AutoGenerated {
		if _, exists := m.mappings[id]; exists {
			continue
		}
		confidence := entry.Confidence
		if confidence == 0 {
			confidence = 1.0
		}
		m.put(ExpansionMapping{
			ExpansionID: id,
			SetCode:     strings.ToUpper(entry.Code),
			SetName:     entry.Name,
			Confidence:  confidence,
			Source:      SourceAuto,
		})
	}

	m.logger.Info("loaded expansion mappings", "count", len(m.mappings))
	return nil
}

// generateAutoMappings runs the matching heuristic for every expansion that
// is not yet mapped. Expansions with sample singles are matched by card-name
// overlap; sealed-only expansions fall back to set-name equality.
func (m *Mapper) generateAutoMappings(ctx context.Context, catalog *Catalog, expansions []MarketExpansion) {
	setCodes := catalog.SetCodes()

	// Normalized card-name sets per candidate, built once. Auto-matching is
	// CPU-bound: sample count x candidate count, each an O(1) set probe.
	normalized := make(map[string]map[string]struct{}, len(setCodes))
	for _, code := range setCodes {
		cards := catalog.GetSetCards(code)
		names := make(map[string]struct{}, len(cards))
		for _, card := range cards {
			names[normalizeCardName(card.Name)] = struct{}{}
		}
		normalized[code] = names
	}

	for _, exp := range expansions {
		if ctx.Err() != nil {
			return
		}
		if _, exists := m.mappings[exp.ID]; exists {
			continue
		}

		if len(exp.SampleCards) > 0 {
			if mapping, ok := m.matchBySamples(catalog, setCodes, normalized, exp); ok {
				m.put(mapping)
			}
			continue
		}

		if mapping, ok := m.matchBySetName(catalog, setCodes, exp); ok {
			m.put(mapping)
		}
	}
}

// matchBySamples scores every candidate set by how many of the expansion's
// sample card names it contains. The best candidate is tracked with a strict
// greater-than comparison, so the first candidate to reach a given score
// wins ties, and is accepted only at confidence >= 0.5.
func (m *Mapper) matchBySamples(catalog *Catalog, setCodes []string, normalized map[string]map[string]struct{}, exp MarketExpansion) (ExpansionMapping, bool) {
	samples := exp.SampleCards
	if len(samples) > maxSampleCards {
		samples = samples[:maxSampleCards]
	}

	normalizedSamples := make([]string, len(samples))
	for i, name := range samples {
		normalizedSamples[i] = normalizeCardName(name)
	}

	var (
		bestCode       string
		bestConfidence float64
	)
	for _, code := range setCodes {
		names := normalized[code]
		if len(names) == 0 {
			continue
		}

		matchCount := 0
		for _, sample := range normalizedSamples {
			if _, ok := names[sample]; ok {
				matchCount++
			}
		}

		confidence := float64(matchCount) / float64(len(normalizedSamples))
		if confidence > bestConfidence {
			bestCode = code
			bestConfidence = confidence
		}
	}

	if bestCode == "" || bestConfidence < minMatchConfidence {
		return ExpansionMapping{}, false
	}

	return ExpansionMapping{
		ExpansionID: exp.ID,
		SetCode:     bestCode,
		SetName:     catalog.SetName(bestCode),
		Confidence:  bestConfidence,
		Source:      SourceAuto,
	}, true
}

// matchBySetName maps a sealed-only expansion by deriving a set name from
// one of its product names and comparing normalized set names for exact
// equality. The scan stops at the first match.
func (m *Mapper) matchBySetName(catalog *Catalog, setCodes []string, exp MarketExpansion) (ExpansionMapping, bool) {
	derived := ""
	for _, productName := range exp.ProductNames {
		if name := extractSetName(productName); name != "" {
			derived = name
			break
		}
	}
	if derived == "" {
		derived = exp.Name
	}
	if derived == "" {
		return ExpansionMapping{}, false
	}

	target := normalizeSetName(derived)
	if target == "" {
		return ExpansionMapping{}, false
	}

	for _, code := range setCodes {
		if normalizeSetName(catalog.SetName(code)) == target {
			return ExpansionMapping{
				ExpansionID: exp.ID,
				SetCode:     code,
				SetName:     catalog.SetName(code),
				Confidence:  1.0,
				Source:      SourceAuto,
			}, true
		}
	}
	return ExpansionMapping{}, false
}

// extractSetName strips the first recognized product-type token from a
// product name, returning what precedes it.
func extractSetName(productName string) string {
	for _, token := range productTypeTokens {
		if idx := strings.Index(productName, token); idx != -1 {
			return strings.TrimSpace(productName[:idx])
		}
	}
	if idx := strings.Index(productName, ":"); idx != -1 {
		return strings.TrimSpace(productName[:idx])
	}
	return strings.TrimSpace(productName)
}

// normalizeCardName lower-cases a name and strips everything that is not a
// letter or digit.
func normalizeCardName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// normalizeSetName normalizes like normalizeCardName and additionally drops
// the marketing prefixes "magic" and "thegathering".
func normalizeSetName(name string) string {
	s := normalizeCardName(name)
	s = strings.ReplaceAll(s, "magic", "")
	s = strings.ReplaceAll(s, "thegathering", "")
	return s
}
