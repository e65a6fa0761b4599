package ev

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
)

//go:embed booster_collation.json
var defaultCollationRules []byte

// defaultTopCardLimit bounds the ranked card list attached to box results.
const defaultTopCardLimit = 20

// Heuristic box-value bounds. These are documented approximations of sealed
// variance, not a derived confidence interval.
const (
	varianceMinFactor = 0.7
	varianceMaxFactor = 1.5
)

// defaultRareMythicDistribution applies when a rare/mythic slot carries no
// explicit weights: 7 rares per mythic.
var defaultRareMythicDistribution = map[string]float64{"rare": 7, "mythic": 1}

// SetRule overrides collation for a single set: either a full custom slot
// list or a redirect to a different booster type's default rule.
type SetRule struct {
	Name        string          `json:"name,omitempty"`
	CustomSlots []BoosterSlot   `json:"customSlots,omitempty"`
	BoosterType BoosterType     `json:"boosterType,omitempty"`
	Wildcard    *WildcardParams `json:"wildcard,omitempty"`
}

// collationDocument is the on-disk shape of the rule store.
type collationDocument struct {
	Version          int                            `json:"version"`
	DefaultRules     map[BoosterType]*BoosterConfig `json:"defaultRules"`
	SetSpecificRules map[string]*SetRule            `json:"setSpecificRules"`
}

// Engine holds the static booster collation rules and computes pack and box
// expected value. Rules are loaded once and never mutated at runtime.
type Engine struct {
	rulesPath    string
	topCardLimit int
	logger       *slog.Logger

	loaded       bool
	defaultRules map[BoosterType]*BoosterConfig
	setRules     map[string]*SetRule
}

// EngineOptions configures the collation engine.
type EngineOptions struct {
	// RulesPath points at an on-disk rule store. When empty the embedded
	// default rules are used.
	RulesPath string

	// TopCardLimit truncates ranked card lists (default 20).
	TopCardLimit int

	Logger *slog.Logger
}

// NewEngine creates a collation engine.
func NewEngine(opts EngineOptions) *Engine {
	if opts.TopCardLimit <= 0 {
		opts.TopCardLimit = defaultTopCardLimit
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Engine{
		rulesPath:    opts.RulesPath,
		topCardLimit: opts.TopCardLimit,
		logger:       opts.Logger,
	}
}

// Load reads and validates the rule store. A second call is a no-op.
func (e *Engine) Load() error {
	if e.loaded {
		return nil
	}

	data := defaultCollationRules
	if e.rulesPath != "" {
		fileData, err := os.ReadFile(e.rulesPath)
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: collation rules %s", ErrDataUnavailable, e.rulesPath)
		}
		if err != nil {
			return fmt.Errorf("%w: read collation rules: %v", ErrDataUnavailable, err)
		}
		data = fileData
	}

	var doc collationDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return &MalformedRuleError{Store: "collation rules", Reason: err.Error()}
	}
	if err := validateCollation(&doc); err != nil {
		return err
	}

	e.defaultRules = doc.DefaultRules
	e.setRules = make(map[string]*SetRule, len(doc.SetSpecificRules))
	for code, rule := range doc.SetSpecificRules {
		e.setRules[strings.ToUpper(code)] = rule
	}

	e.loaded = true
	e.logger.Info("collation rules loaded",
		"booster_types", len(e.defaultRules),
		"set_overrides", len(e.setRules))
	return nil
}

// validateCollation rejects rule stores with unexpected shape before use.
func validateCollation(doc *collationDocument) error {
	if len(doc.DefaultRules) == 0 {
		return &MalformedRuleError{Store: "collation rules", Reason: "no default rules"}
	}
	if _, ok := doc.DefaultRules[PlayBooster]; !ok {
		return &MalformedRuleError{
			Store:  "collation rules",
			Reason: "missing playBooster default rule",
		}
	}

	for boosterType, rule := range doc.DefaultRules {
		if !boosterType.IsKnown() {
			return &MalformedRuleError{
				Store:  "collation rules",
				Key:    string(boosterType),
				Reason: "unknown booster type",
			}
		}
		if rule == nil || len(rule.Slots) == 0 {
			return &MalformedRuleError{
				Store:  "collation rules",
				Key:    string(boosterType),
				Reason: "rule has no slots",
			}
		}
		if err := validateSlots(string(boosterType), rule.Slots); err != nil {
			return err
		}
	}

	for code, rule := range doc.SetSpecificRules {
		if rule == nil {
			return &MalformedRuleError{Store: "collation rules", Key: code, Reason: "empty set rule"}
		}
		if rule.BoosterType != "" && !rule.BoosterType.IsKnown() {
			return &MalformedRuleError{
				Store:  "collation rules",
				Key:    code,
				Reason: fmt.Sprintf("unknown booster type %q", rule.BoosterType),
			}
		}
		if len(rule.CustomSlots) > 0 {
			if err := validateSlots(code, rule.CustomSlots); err != nil {
				return err
			}
		}
	}
	return nil
}

func validateSlots(key string, slots []BoosterSlot) error {
	for i, slot := range slots {
		if !slot.Kind.IsKnown() {
			return &MalformedRuleError{
				Store:  "collation rules",
				Key:    fmt.Sprintf("%s/slots[%d]", key, i),
				Reason: fmt.Sprintf("unknown slot type %q", slot.Kind),
			}
		}
		if slot.Count <= 0 {
			return &MalformedRuleError{
				Store:  "collation rules",
				Key:    fmt.Sprintf("%s/slots[%d]", key, i),
				Reason: fmt.Sprintf("slot count %v must be positive", slot.Count),
			}
		}
		for rarity, weight := range slot.Distribution {
			if weight < 0 {
				return &MalformedRuleError{
					Store:  "collation rules",
					Key:    fmt.Sprintf("%s/slots[%d]", key, i),
					Reason: fmt.Sprintf("negative weight for %q", rarity),
				}
			}
		}
	}
	return nil
}

// GetBoosterConfig resolves the collation rule for a set. Resolution order:
// set-specific custom slots, the set's recorded booster type, the requested
// type's default rule, then the playBooster default.
func (e *Engine) GetBoosterConfig(setCode string, requested BoosterType) BoosterConfig {
	code := strings.ToUpper(setCode)

	if rule, ok := e.setRules[code]; ok && len(rule.CustomSlots) > 0 {
		name := rule.Name
		if name == "" {
			name = string(requested)
		}
		return BoosterConfig{
			Type:     requested,
			Name:     name,
			Slots:    rule.CustomSlots,
			Wildcard: rule.Wildcard,
		}
	}

	typeToUse := requested
	if rule, ok := e.setRules[code]; ok && rule.BoosterType != "" {
		typeToUse = rule.BoosterType
	}

	rule, ok := e.defaultRules[typeToUse]
	if !ok {
		fallback := e.defaultRules[PlayBooster]
		return BoosterConfig{
			Type:     PlayBooster,
			Name:     fallback.Name,
			Slots:    fallback.Slots,
			Wildcard: fallback.Wildcard,
		}
	}

	return BoosterConfig{
		Type:     typeToUse,
		Name:     rule.Name,
		Slots:    rule.Slots,
		Wildcard: rule.Wildcard,
	}
}

// CalculatePackEV computes the expected value of a single pack from the
// set's card pool. Only cards priced at or above bulkThreshold contribute.
func (e *Engine) CalculatePackEV(setCode string, boosterType BoosterType, cards []Card, bulkThreshold float64) PackEV {
	config := e.GetBoosterConfig(setCode, boosterType)

	var result PackEV

	for _, slot := range config.Slots {
		switch slot.Kind {
		case SlotRareMythic:
			mythicAvg := meanPrice(cards, RarityMythic, bulkThreshold)
			rareAvg := meanPrice(cards, RarityRare, bulkThreshold)

			dist := slot.Distribution
			if len(dist) == 0 {
				dist = defaultRareMythicDistribution
			}
			totalWeight := dist["rare"] + dist["mythic"]
			var mythicWeight, rareWeight float64
			if totalWeight > 0 {
				mythicWeight = dist["mythic"] / totalWeight
				rareWeight = dist["rare"] / totalWeight
			}

			result.RareMythic.Mythic += mythicAvg * mythicWeight * slot.Count
			result.RareMythic.Rare += rareAvg * rareWeight * slot.Count
			slotEV := (mythicAvg*mythicWeight + rareAvg*rareWeight) * slot.Count
			result.RareMythicEV += slotEV
			result.TotalEV += slotEV

		case SlotUncommon:
			avg := meanPrice(cards, RarityUncommon, bulkThreshold)
			result.Uncommon.AvgPrice = avg
			result.Uncommon.EV += avg * slot.Count
			result.TotalEV += avg * slot.Count

		case SlotCommon:
			avg := meanPrice(cards, RarityCommon, bulkThreshold)
			result.Common.AvgPrice = avg
			result.Common.EV += avg * slot.Count
			result.TotalEV += avg * slot.Count
		}
	}

	// Foil wildcard adjustment: the mean positive foil premium scaled by the
	// configured foil probability, added once per pack.
	if config.Wildcard != nil && config.Wildcard.Foil > 0 {
		var premiumSum float64
		var premiumCount int
		for _, card := range cards {
			if card.Price == nil || card.FoilPrice == nil {
				continue
			}
			if *card.FoilPrice > *card.Price {
				premiumSum += *card.FoilPrice - *card.Price
				premiumCount++
			}
		}
		if premiumCount > 0 {
			result.FoilAdjustment = (premiumSum / float64(premiumCount)) * config.Wildcard.Foil
			result.TotalEV += result.FoilAdjustment
		}
	}

	if len(cards) > 0 {
		priceable := 0
		for _, card := range cards {
			if card.Priceable(bulkThreshold) {
				priceable++
			}
		}
		result.Confidence = float64(priceable) / float64(len(cards))
	}

	return result
}

// CalculateBoxEV scales pack EV to a full box and derives expected rarity
// counts, heuristic variance bounds, and the top-value-card list.
func (e *Engine) CalculateBoxEV(setCode string, boosterType BoosterType, packCount int, cards []Card, bulkThreshold float64) BoxEV {
	pack := e.CalculatePackEV(setCode, boosterType, cards, bulkThreshold)
	totalEV := pack.TotalEV * float64(packCount)

	config := e.GetBoosterConfig(setCode, boosterType)

	var mythicRate, rareRate, uncommonRate, commonRate float64
	for _, slot := range config.Slots {
		switch slot.Kind {
		case SlotRareMythic:
			dist := slot.Distribution
			if len(dist) == 0 {
				dist = defaultRareMythicDistribution
			}
			totalWeight := dist["rare"] + dist["mythic"]
			if totalWeight > 0 {
				mythicRate += dist["mythic"] / totalWeight * slot.Count
				rareRate += dist["rare"] / totalWeight * slot.Count
			}
		case SlotUncommon:
			uncommonRate += slot.Count
		case SlotCommon:
			commonRate += slot.Count
		}
	}

	return BoxEV{
		TotalEV:           totalEV,
		PackEV:            pack.TotalEV,
		PackCount:         packCount,
		ExpectedMythics:   mythicRate * float64(packCount),
		ExpectedRares:     rareRate * float64(packCount),
		ExpectedUncommons: uncommonRate * float64(packCount),
		ExpectedCommons:   commonRate * float64(packCount),
		TopCards:          TopValueCards(cards, bulkThreshold, e.topCardLimit),
		Variance: Variance{
			Min:    totalEV * varianceMinFactor,
			Median: totalEV,
			Max:    totalEV * varianceMaxFactor,
		},
	}
}

// TopValueCards ranks a card pool's priceable cards by price descending,
// truncates to limit, and annotates each with its percentage share of the
// pool's priceable value.
func TopValueCards(cards []Card, bulkThreshold float64, limit int) []TopValueCard {
	priceable := make([]Card, 0, len(cards))
	var totalValue float64
	for _, card := range cards {
		if card.Priceable(bulkThreshold) {
			priceable = append(priceable, card)
			totalValue += *card.Price
		}
	}

	sort.SliceStable(priceable, func(i, j int) bool {
		return *priceable[i].Price > *priceable[j].Price
	})

	if limit > 0 && len(priceable) > limit {
		priceable = priceable[:limit]
	}

	top := make([]TopValueCard, len(priceable))
	for i, card := range priceable {
		contribution := 0.0
		if totalValue > 0 {
			contribution = *card.Price / totalValue * 100
		}
		top[i] = TopValueCard{
			Name:            card.Name,
			Rarity:          card.Rarity,
			Price:           *card.Price,
			FoilPrice:       card.FoilPrice,
			CollectorNumber: card.CollectorNumber,
			Contribution:    contribution,
		}
	}
	return top
}

// meanPrice averages the priceable cards of one rarity, 0 when none.
func meanPrice(cards []Card, rarity Rarity, bulkThreshold float64) float64 {
	var sum float64
	var count int
	for _, card := range cards {
		if card.Rarity == rarity && card.Priceable(bulkThreshold) {
			sum += *card.Price
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}
