// Package ev estimates the expected value of sealed Magic products by
// combining marketplace product listings with Scryfall card prices and a
// model of booster pack collation.
package ev

// Rarity is a card rarity as reported by Scryfall.
type Rarity string

// Card rarities.
const (
	RarityCommon   Rarity = "common"
	RarityUncommon Rarity = "uncommon"
	RarityRare     Rarity = "rare"
	RarityMythic   Rarity = "mythic"
	RaritySpecial  Rarity = "special"
	RarityBonus    Rarity = "bonus"
)

// KnownRarities lists every rarity the calculator understands.
var KnownRarities = []Rarity{
	RarityCommon, RarityUncommon, RarityRare, RarityMythic, RaritySpecial, RarityBonus,
}

// IsKnown reports whether r is one of the Scryfall rarities.
func (r Rarity) IsKnown() bool {
	switch r {
	case RarityCommon, RarityUncommon, RarityRare, RarityMythic, RaritySpecial, RarityBonus:
		return true
	}
	return false
}

// BoosterType identifies a booster product line.
type BoosterType string

// Booster types.
const (
	PlayBooster      BoosterType = "playBooster"
	DraftBooster     BoosterType = "draftBooster"
	SetBooster       BoosterType = "setBooster"
	CollectorBooster BoosterType = "collectorBooster"
)

// IsKnown reports whether t is a recognized booster type.
func (t BoosterType) IsKnown() bool {
	switch t {
	case PlayBooster, DraftBooster, SetBooster, CollectorBooster:
		return true
	}
	return false
}

// Card is one paper printing from the card dataset snapshot, reduced to the
// fields EV calculation needs. Cards are immutable once loaded.
type Card struct {
	ID              string   // Scryfall UUID
	Name            string   // card name
	SetCode         string   // set code, upper-cased (e.g. "BLB")
	SetName         string   // full set display name
	Rarity          Rarity   // card rarity
	Price           *float64 // EUR price, nil if unavailable
	FoilPrice       *float64 // EUR foil price, nil if unavailable
	CollectorNumber string   // collector number
	ReleasedAt      string   // release date, ISO format
}

// Priceable reports whether the card has a non-foil price at or above the
// bulk threshold. Only priceable cards count toward averages.
func (c Card) Priceable(bulkThreshold float64) bool {
	return c.Price != nil && *c.Price >= bulkThreshold
}

// MappingSource records how an expansion mapping was created.
type MappingSource string

// Mapping provenance values.
const (
	SourceAuto   MappingSource = "auto"
	SourceManual MappingSource = "manual"
)

// ExpansionMapping links a marketplace expansion ID to a card-pool set code.
type ExpansionMapping struct {
	ExpansionID int           // marketplace expansion ID
	SetCode     string        // set code, upper-cased
	SetName     string        // set display name
	Confidence  float64       // 0-1 match confidence
	Source      MappingSource // auto or manual
}

// MarketExpansion is one marketplace expansion as supplied by the calling
// search layer: its ID, display name, a bounded sample of single-card names
// listed under it, and the names of its sealed products. Expansions with no
// singles are matched through the sealed-product name path.
type MarketExpansion struct {
	ID           int
	Name         string
	SampleCards  []string
	ProductNames []string
}

// SlotKind identifies what a booster slot produces.
type SlotKind string

// Booster slot kinds.
const (
	SlotRareMythic SlotKind = "rare_mythic"
	SlotUncommon   SlotKind = "uncommon"
	SlotCommon     SlotKind = "common"
	SlotWildcard   SlotKind = "wildcard"
	SlotFoil       SlotKind = "foil"
	SlotLand       SlotKind = "land"
)

// IsKnown reports whether k is a recognized slot kind.
func (k SlotKind) IsKnown() bool {
	switch k {
	case SlotRareMythic, SlotUncommon, SlotCommon, SlotWildcard, SlotFoil, SlotLand:
		return true
	}
	return false
}

// BoosterSlot is one card-producing position in a pack.
type BoosterSlot struct {
	Kind         SlotKind           `json:"type"`
	Count        float64            `json:"count"`
	Distribution map[string]float64 `json:"distribution,omitempty"` // e.g. {"rare": 7, "mythic": 1}
}

// WildcardParams carries pack-level probability adjustments.
type WildcardParams struct {
	RareUpgrade float64 `json:"rareUpgrade,omitempty"` // probability a wildcard slot upgrades to rare
	Foil        float64 `json:"foil,omitempty"`        // probability a pack contains a foil
}

// BoosterConfig is the collation rule for one booster type: an ordered slot
// list plus optional wildcard parameters. Loaded once, never mutated.
type BoosterConfig struct {
	Type     BoosterType     `json:"type"`
	Name     string          `json:"name"`
	Slots    []BoosterSlot   `json:"slots"`
	Wildcard *WildcardParams `json:"wildcard,omitempty"`
}

// RarityBreakdown splits a rare/mythic slot's EV by rarity.
type RarityBreakdown struct {
	Mythic float64
	Rare   float64
}

// SlotEV is the contribution of a single slot family to pack EV.
type SlotEV struct {
	EV       float64
	AvgPrice float64
}

// PackEV breaks a single pack's expected value down by slot.
type PackEV struct {
	TotalEV        float64
	RareMythicEV   float64
	RareMythic     RarityBreakdown
	Uncommon       SlotEV
	Common         SlotEV
	FoilAdjustment float64
	Confidence     float64 // priceable cards / total cards for the set
}

// Variance holds the heuristic box-value bounds. The 0.7x/1.5x multipliers
// are documented approximations, not a derived distribution.
type Variance struct {
	Min    float64
	Median float64
	Max    float64
}

// BoxEV is the expected value of a full booster box.
type BoxEV struct {
	TotalEV           float64
	PackEV            float64
	PackCount         int
	ExpectedMythics   float64
	ExpectedRares     float64
	ExpectedUncommons float64
	ExpectedCommons   float64
	TopCards          []TopValueCard
	Variance          Variance
}

// TopValueCard is one entry in a ranked priceable-card list.
type TopValueCard struct {
	Name            string
	Rarity          Rarity
	Price           float64
	FoilPrice       *float64
	CollectorNumber string
	Contribution    float64 // percent of the set's priceable value
}

// Breakdown splits pack EV by rarity contribution.
type Breakdown struct {
	MythicContribution   float64
	RareContribution     float64
	UncommonContribution float64
	CommonContribution   float64
	FoilContribution     float64
}

// Result is the complete EV computation for one sealed product. Results are
// recomputed on every request and never cached.
type Result struct {
	ProductID   int
	ProductName string
	SealedPrice float64

	PackEV       float64
	BoxEV        float64
	EVRatio      float64 // boxEV / sealedPrice, 0 when sealedPrice <= 0
	EVDifference float64 // boxEV - sealedPrice

	Confidence float64

	SetCode     string
	SetName     string
	ExpansionID int

	BoosterType  BoosterType
	BoosterCount int

	Breakdown Breakdown
	TopCards  []TopValueCard
	Variance  Variance
}

// RarityStats aggregates priceable cards of one rarity across a set.
type RarityStats struct {
	Count      int
	AvgPrice   float64
	TotalValue float64
}

// SetResult aggregates EV-relevant statistics across a whole set,
// independent of any single product's sealed price.
type SetResult struct {
	SetCode     string
	SetName     string
	ExpansionID int

	TotalUniqueCards int
	PriceableCards   int
	TotalSetValue    float64
	AvgCardPrice     float64

	Mythics   RarityStats
	Rares     RarityStats
	Uncommons RarityStats
	Commons   RarityStats

	TopCards []TopValueCard
}

// SetStatistics summarizes one set's card pool for a given bulk threshold.
type SetStatistics struct {
	TotalCards       int
	PriceableCards   int
	RarityBreakdown  map[Rarity]int
	AvgPriceByRarity map[Rarity]float64
	TotalValue       float64
}
