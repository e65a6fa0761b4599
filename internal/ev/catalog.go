package ev

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
)

// CardSource supplies the card dataset snapshot. Implementations fetch from
// a local cache or from the bulk-data API; the catalog does not care which.
type CardSource interface {
	Cards(ctx context.Context) ([]Card, error)
}

// Catalog indexes the flat card dataset for fast set and rarity lookups.
// Load builds the indices once; afterwards the catalog is read-only and safe
// for concurrent use.
type Catalog struct {
	source CardSource
	logger *slog.Logger

	loaded      bool
	byID        map[string]Card
	bySet       map[string][]Card
	bySetRarity map[string]map[Rarity][]Card
	setNames    map[string]string
	setCodes    []string
}

// NewCatalog creates a catalog backed by the given card source.
func NewCatalog(source CardSource, logger *slog.Logger) *Catalog {
	if logger == nil {
		logger = slog.Default()
	}
	return &Catalog{
		source:      source,
		logger:      logger,
		byID:        make(map[string]Card),
		bySet:       make(map[string][]Card),
		bySetRarity: make(map[string]map[Rarity][]Card),
		setNames:    make(map[string]string),
	}
}

// Load ingests the card dataset and builds the lookup indices. A second call
// is a no-op. Returns ErrDataUnavailable (wrapped) when the source cannot
// supply the snapshot.
func (c *Catalog) Load(ctx context.Context) error {
	if c.loaded {
		return nil
	}

	cards, err := c.source.Cards(ctx)
	if err != nil {
		return fmt.Errorf("%w: load card snapshot: %v", ErrDataUnavailable, err)
	}

	for _, card := range cards {
		card.SetCode = strings.ToUpper(card.SetCode)

		c.byID[card.ID] = card
		c.bySet[card.SetCode] = append(c.bySet[card.SetCode], card)

		rarityIdx, ok := c.bySetRarity[card.SetCode]
		if !ok {
			rarityIdx = make(map[Rarity][]Card)
			c.bySetRarity[card.SetCode] = rarityIdx
		}
		rarityIdx[card.Rarity] = append(rarityIdx[card.Rarity], card)

		if _, ok := c.setNames[card.SetCode]; !ok {
			c.setNames[card.SetCode] = card.SetName
		}
	}

	c.setCodes = make([]string, 0, len(c.bySet))
	for code := range c.bySet {
		c.setCodes = append(c.setCodes, code)
	}
	sort.Strings(c.setCodes)

	c.loaded = true
	c.logger.Info("card catalog loaded",
		"cards", len(c.byID),
		"sets", len(c.bySet))
	return nil
}

// Loaded reports whether Load has completed.
func (c *Catalog) Loaded() bool {
	return c.loaded
}

// GetCard returns a card by its dataset ID.
func (c *Catalog) GetCard(id string) (Card, bool) {
	card, ok := c.byID[id]
	return card, ok
}

// GetSetCards returns every card printed in the given set. Unknown set codes
// yield an empty slice.
func (c *Catalog) GetSetCards(setCode string) []Card {
	return c.bySet[strings.ToUpper(setCode)]
}

// GetCardsByRarity returns the cards of one rarity within a set.
func (c *Catalog) GetCardsByRarity(setCode string, rarity Rarity) []Card {
	rarityIdx, ok := c.bySetRarity[strings.ToUpper(setCode)]
	if !ok {
		return nil
	}
	return rarityIdx[rarity]
}

// SetCodes returns every set code present in the snapshot, sorted.
func (c *Catalog) SetCodes() []string {
	return c.setCodes
}

// SetName returns the display name recorded for a set code.
func (c *Catalog) SetName(setCode string) string {
	return c.setNames[strings.ToUpper(setCode)]
}

// CardCount returns the number of indexed cards.
func (c *Catalog) CardCount() int {
	return len(c.byID)
}

// SetCount returns the number of indexed sets.
func (c *Catalog) SetCount() int {
	return len(c.bySet)
}

// GetSetStats summarizes a set's card pool: totals, per-rarity counts, and
// per-rarity mean prices over cards at or above the bulk threshold.
func (c *Catalog) GetSetStats(setCode string, bulkThreshold float64) SetStatistics {
	cards := c.GetSetCards(setCode)

	stats := SetStatistics{
		RarityBreakdown:  make(map[Rarity]int),
		AvgPriceByRarity: make(map[Rarity]float64),
	}
	if len(cards) == 0 {
		return stats
	}

	raritySums := make(map[Rarity]float64)
	rarityPriceable := make(map[Rarity]int)

	for _, card := range cards {
		stats.RarityBreakdown[card.Rarity]++

		if card.Priceable(bulkThreshold) {
			stats.PriceableCards++
			stats.TotalValue += *card.Price
			raritySums[card.Rarity] += *card.Price
			rarityPriceable[card.Rarity]++
		}
	}

	stats.TotalCards = len(cards)
	for rarity := range stats.RarityBreakdown {
		if n := rarityPriceable[rarity]; n > 0 {
			stats.AvgPriceByRarity[rarity] = raritySums[rarity] / float64(n)
		} else {
			stats.AvgPriceByRarity[rarity] = 0
		}
	}

	return stats
}
