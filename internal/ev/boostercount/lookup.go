// Package boostercount resolves how many booster packs a sealed product
// contains, from a small rule table of category patterns and set-specific
// overrides.
package boostercount

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
)

//go:embed booster_counts.json
var defaultData []byte

// pattern matches a product-name substring to a pack count. A nil count
// marks products the category lists but that have no per-booster pricing.
type pattern struct {
	Match string `json:"match"`
	Count *int   `json:"count"`
}

type categoryMapping struct {
	Patterns []pattern `json:"patterns"`
}

type document struct {
	Version              int                        `json:"version"`
	DefaultCounts        map[string]int             `json:"defaultCounts"`
	CategoryMappings     map[string]categoryMapping `json:"categoryMappings"`
	SetSpecificOverrides map[string]map[string]int  `json:"setSpecificOverrides"`
}

// productTypeTokens mark where a set name ends inside a product name,
// checked in order.
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

// Lookup answers booster-count queries for sealed products.
type Lookup struct {
	doc document
}

// New creates a lookup from the embedded rule table.
func New() (*Lookup, error) {
	return parse(defaultData)
}

// NewFromFile creates a lookup from an on-disk rule table.
func NewFromFile(path string) (*Lookup, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("booster count data %s: %w", path, err)
	}
	if err != nil {
		return nil, fmt.Errorf("read booster count data: %w", err)
	}
	return parse(data)
}

func parse(data []byte) (*Lookup, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse booster count data: %w", err)
	}
	return &Lookup{doc: doc}, nil
}

// BoosterCount resolves the pack count for a product. The second return is
// false when the category has no per-booster pricing or nothing matches the
// product name.
func (l *Lookup) BoosterCount(productName, categoryName string) (int, bool) {
	mapping, ok := l.doc.CategoryMappings[categoryName]
	if !ok {
		return 0, false
	}

	// Set-specific overrides win over category patterns. Keys are scanned in
	// sorted order so overlapping matches resolve deterministically.
	if setName := extractSetName(productName); setName != "" {
		if overrides, ok := l.doc.SetSpecificOverrides[setName]; ok {
			productTypes := make([]string, 0, len(overrides))
			for productType := range overrides {
				productTypes = append(productTypes, productType)
			}
			sort.Strings(productTypes)
			for _, productType := range productTypes {
				if strings.Contains(productName, productType) {
					return overrides[productType], true
				}
			}
		}
	}

	for _, p := range mapping.Patterns {
		if strings.Contains(productName, p.Match) {
			if p.Count == nil {
				return 0, false
			}
			return *p.Count, true
		}
	}

	return 0, false
}

// SupportsCategory reports whether a category has per-booster pricing.
func (l *Lookup) SupportsCategory(categoryName string) bool {
	_, ok := l.doc.CategoryMappings[categoryName]
	return ok
}

// SupportedCategories returns every category with per-booster pricing.
func (l *Lookup) SupportedCategories() []string {
	out := make([]string, 0, len(l.doc.CategoryMappings))
	for name := range l.doc.CategoryMappings {
		out = append(out, name)
	}
	return out
}

// extractSetName returns the part of a product name before the first
// recognized product-type token.
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
