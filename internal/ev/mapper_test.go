package ev

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

func newTestMapper(t *testing.T) *Mapper {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mappings.json")
	return NewMapper(NewMappingStore(path), nil)
}

// sampleCatalog builds a catalog holding two sets with distinct card pools.
func sampleCatalog(t *testing.T) *Catalog {
	t.Helper()
	cards := []Card{}
	for i, name := range []string{"Lightning Bolt", "Counterspell", "Dark Ritual", "Giant Growth"} {
		cards = append(cards, testCard(fmt.Sprintf("a%d", i), name, "AAA", "Alpha Edition", RarityCommon, nil))
	}
	for i, name := range []string{"Brainstorm", "Swords to Plowshares", "Llanowar Elves", "Duress"} {
		cards = append(cards, testCard(fmt.Sprintf("b%d", i), name, "BLB", "Bloomburrow", RarityCommon, nil))
	}
	return loadedCatalog(t, cards)
}

func TestMapperAutoMatchBySamples(t *testing.T) {
	catalog := sampleCatalog(t)
	mapper := newTestMapper(t)

	// Three of four samples hit AAA: confidence 0.75, accepted.
	accepted := MarketExpansion{
		ID:          10,
		Name:        "Alpha",
		SampleCards: []string{"Lightning Bolt", "Counterspell", "Dark Ritual", "Unknown Card"},
	}
	// Two of five samples hit BLB: confidence 0.4, below the floor.
	rejected := MarketExpansion{
		ID:          11,
		Name:        "Mystery",
		SampleCards: []string{"Brainstorm", "Duress", "Nope One", "Nope Two", "Nope Three"},
	}

	err := mapper.Initialize(context.Background(), catalog, []MarketExpansion{accepted, rejected})
	if err != nil {
		t.Fatalf("Initialize() failed: %v", err)
	}

	code, ok := mapper.GetSetCode(10)
	if !ok || code != "AAA" {
		t.Errorf("GetSetCode(10) = %q, %v; want AAA", code, ok)
	}
	if got := mapper.Confidence(10); got != 0.75 {
		t.Errorf("Confidence(10) = %v, want 0.75", got)
	}
	if _, ok := mapper.GetSetCode(11); ok {
		t.Error("expansion 11 should stay unmapped at confidence 0.4")
	}
}

func TestMapperAutoMatchNormalizesNames(t *testing.T) {
	catalog := loadedCatalog(t, []Card{
		testCard("1", "Jace, the Mind Sculptor", "WWK", "Worldwake", RarityMythic, nil),
		testCard("2", "Stoneforge Mystic", "WWK", "Worldwake", RarityRare, nil),
	})
	mapper := newTestMapper(t)

	exp := MarketExpansion{
		ID:          7,
		SampleCards: []string{"JACE the mind-sculptor", "stoneforge   mystic!"},
	}
	if err := mapper.Initialize(context.Background(), catalog, []MarketExpansion{exp}); err != nil {
		t.Fatalf("Initialize() failed: %v", err)
	}

	code, ok := mapper.GetSetCode(7)
	if !ok || code != "WWK" {
		t.Errorf("GetSetCode(7) = %q, %v; want WWK", code, ok)
	}
	if got := mapper.Confidence(7); got != 1.0 {
		t.Errorf("Confidence(7) = %v, want 1.0", got)
	}
}

func TestMapperAutoMatchFirstCandidateWinsTies(t *testing.T) {
	// Both sets contain the sample card; candidates are scanned in sorted
	// set-code order and a tie never displaces the earlier candidate.
	catalog := loadedCatalog(t, []Card{
		testCard("1", "Shock", "AAA", "Alpha Edition", RarityCommon, nil),
		testCard("2", "Shock", "BBB", "Beta Edition", RarityCommon, nil),
	})
	mapper := newTestMapper(t)

	exp := MarketExpansion{ID: 5, SampleCards: []string{"Shock"}}
	if err := mapper.Initialize(context.Background(), catalog, []MarketExpansion{exp}); err != nil {
		t.Fatalf("Initialize() failed: %v", err)
	}

	code, _ := mapper.GetSetCode(5)
	if code != "AAA" {
		t.Errorf("tie resolved to %q, want AAA", code)
	}
}

func TestMapperSealedOnlyFallback(t *testing.T) {
	catalog := sampleCatalog(t)
	mapper := newTestMapper(t)

	exp := MarketExpansion{
		ID:           20,
		Name:         "Bloomburrow Sealed",
		ProductNames: []string{"Magic: The Gathering Bloomburrow Play Booster Box"},
	}
	if err := mapper.Initialize(context.Background(), catalog, []MarketExpansion{exp}); err != nil {
		t.Fatalf("Initialize() failed: %v", err)
	}

	code, ok := mapper.GetSetCode(20)
	if !ok || code != "BLB" {
		t.Errorf("GetSetCode(20) = %q, %v; want BLB", code, ok)
	}
	if got := mapper.Confidence(20); got != 1.0 {
		t.Errorf("sealed-only match confidence = %v, want 1.0", got)
	}
}

func TestMapperManualMappingIsAuthoritative(t *testing.T) {
	catalog := sampleCatalog(t)
	mapper := newTestMapper(t)

	mapper.AddManualMapping(10, "blb", "Bloomburrow")

	// Samples point at AAA, but the manual entry must survive.
	exp := MarketExpansion{
		ID:          10,
		SampleCards: []string{"Lightning Bolt", "Counterspell", "Dark Ritual"},
	}
	if err := mapper.Initialize(context.Background(), catalog, []MarketExpansion{exp}); err != nil {
		t.Fatalf("Initialize() failed: %v", err)
	}

	code, _ := mapper.GetSetCode(10)
	if code != "BLB" {
		t.Errorf("manual mapping replaced by auto-match: got %q", code)
	}
	if got := mapper.Confidence(10); got != 1.0 {
		t.Errorf("manual mapping confidence = %v, want 1.0", got)
	}
}

func TestMapperBidirectionalIndex(t *testing.T) {
	mapper := newTestMapper(t)
	mapper.AddManualMapping(42, "MH3", "Modern Horizons 3")

	code, ok := mapper.GetSetCode(42)
	if !ok || code != "MH3" {
		t.Fatalf("GetSetCode(42) = %q, %v", code, ok)
	}
	id, ok := mapper.GetExpansionID("mh3")
	if !ok || id != 42 {
		t.Errorf("GetExpansionID(mh3) = %d, %v; want 42", id, ok)
	}
}

func TestMapperPersistRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mappings.json")
	catalog := sampleCatalog(t)

	mapper := NewMapper(NewMappingStore(path), nil)
	mapper.AddManualMapping(1, "AAA", "Alpha Edition")

	exp := MarketExpansion{
		ID:          2,
		SampleCards: []string{"Brainstorm", "Duress", "Llanowar Elves", "Swords to Plowshares"},
	}
	if err := mapper.Initialize(context.Background(), catalog, []MarketExpansion{exp}); err != nil {
		t.Fatalf("Initialize() failed: %v", err)
	}

	// A fresh mapper over the same store sees both entries without
	// re-running the matcher.
	reloaded := NewMapper(NewMappingStore(path), nil)
	if err := reloaded.Load(); err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if code, _ := reloaded.GetSetCode(1); code != "AAA" {
		t.Errorf("reloaded manual mapping = %q, want AAA", code)
	}
	if code, _ := reloaded.GetSetCode(2); code != "BLB" {
		t.Errorf("reloaded auto mapping = %q, want BLB", code)
	}
	if got := reloaded.Confidence(2); got != 1.0 {
		t.Errorf("reloaded auto confidence = %v, want 1.0", got)
	}

	mappings := reloaded.Mappings()
	sources := map[MappingSource]int{}
	for _, m := range mappings {
		sources[m.Source]++
	}
	if sources[SourceManual] != 1 || sources[SourceAuto] != 1 {
		t.Errorf("reloaded sources = %v", sources)
	}
}

func TestMappingStoreMissingFile(t *testing.T) {
	store := NewMappingStore(filepath.Join(t.TempDir(), "absent.json"))

	doc, err := store.Load()
	if err != nil {
		t.Fatalf("Load() on missing file failed: %v", err)
	}
	if doc != nil {
		t.Errorf("Load() on missing file = %+v, want nil", doc)
	}
}

func TestMappingStoreMalformed(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"invalid json", `{not json`},
		{"missing code", `{"version":1,"manualOverrides":{"5":{"name":"X"}},"autoGenerated":{}}`},
		{"confidence out of range", `{"version":1,"manualOverrides":{},"autoGenerated":{"5":{"code":"AAA","confidence":1.5}}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "mappings.json")
			if err := os.WriteFile(path, []byte(tt.data), 0o644); err != nil {
				t.Fatal(err)
			}

			_, err := NewMappingStore(path).Load()
			if !IsMalformedRule(err) {
				t.Errorf("Load() = %v, want MalformedRuleError", err)
			}
		})
	}
}

func TestMapperSampleCapBoundsWork(t *testing.T) {
	// 40 samples, only the first 20 are considered. All of the first 20 hit,
	// so confidence is computed over the capped slice and stays 1.0.
	cards := make([]Card, 0, 20)
	samples := make([]string, 0, 40)
	for i := 0; i < 20; i++ {
		name := fmt.Sprintf("Card Number %d", i)
		cards = append(cards, testCard(fmt.Sprintf("c%d", i), name, "CCC", "Gamma Edition", RarityCommon, nil))
		samples = append(samples, name)
	}
	for i := 0; i < 20; i++ {
		samples = append(samples, fmt.Sprintf("Missing Card %d", i))
	}

	catalog := loadedCatalog(t, cards)
	mapper := newTestMapper(t)

	exp := MarketExpansion{ID: 9, SampleCards: samples}
	if err := mapper.Initialize(context.Background(), catalog, []MarketExpansion{exp}); err != nil {
		t.Fatalf("Initialize() failed: %v", err)
	}

	if got := mapper.Confidence(9); got != 1.0 {
		t.Errorf("Confidence(9) = %v, want 1.0 over capped samples", got)
	}
}

func TestExtractSetName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Bloomburrow Play Booster Box", "Bloomburrow"},
		{"Modern Horizons 3 Draft Booster Box", "Modern Horizons 3"},
		{"Duskmourn: House of Horror Bundle", "Duskmourn: House of Horror"},
		{"Foundations: Beginner Box", "Foundations"},
		{"Just A Name", "Just A Name"},
	}
	for _, tt := range tests {
		if got := extractSetName(tt.in); got != tt.want {
			t.Errorf("extractSetName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeSetName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Magic: The Gathering Bloomburrow", "bloomburrow"},
		{"Bloomburrow", "bloomburrow"},
		{"Modern Horizons 3", "modernhorizons3"},
	}
	for _, tt := range tests {
		if got := normalizeSetName(tt.in); got != tt.want {
			t.Errorf("normalizeSetName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
