package ev

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
)

// BoosterCounter resolves how many booster packs a sealed product contains.
// The second return is false when the product is not a supported sealed
// format.
type BoosterCounter interface {
	BoosterCount(productName, categoryName string) (int, bool)
}

// ExpansionSource supplies the marketplace expansion catalog used to seed
// the expansion mapper during initialization.
type ExpansionSource interface {
	Expansions(ctx context.Context) ([]MarketExpansion, error)
}

// Product is one sealed-product request from the calling search layer.
type Product struct {
	ID          int
	Name        string
	Category    string
	ExpansionID int
	SealedPrice float64
}

// boosterTypeKeywords maps product-name substrings to booster types,
// evaluated top to bottom with first match winning. A name carrying several
// tokens resolves purely by this order.
var boosterTypeKeywords = []struct {
	keyword string
	typ     BoosterType
}{
	{"collector", CollectorBooster},
	{"set booster", SetBooster},
	{"draft booster", DraftBooster},
	{"play booster", PlayBooster},
}

// calculator lifecycle states.
const (
	stateUninitialized int32 = iota
	stateInitializing
	stateReady
)

// Calculator orchestrates the card catalog, expansion mapper, and collation
// engine into per-product EV results. Initialization happens exactly once,
// lazily on the first calculation if not triggered explicitly; after the
// ready barrier all state is read-only and calls may run concurrently.
type Calculator struct {
	catalog    *Catalog
	mapper     *Mapper
	engine     *Engine
	counts     BoosterCounter
	expansions ExpansionSource

	bulkThreshold float64
	topCardLimit  int
	logger        *slog.Logger

	initOnce sync.Once
	initErr  error
	state    atomic.Int32
}

// CalculatorOptions configures a Calculator.
type CalculatorOptions struct {
	Catalog *Catalog
	Mapper  *Mapper
	Engine  *Engine

	// BoosterCounts resolves pack counts per product; required.
	BoosterCounts BoosterCounter

	// Expansions seeds the mapper's auto-matching. Optional; when nil only
	// persisted mappings and manual overrides are available.
	Expansions ExpansionSource

	// BulkThreshold is the minimum price for a card to count toward
	// averages (default 1.0).
	BulkThreshold float64

	// TopCardLimit truncates ranked card lists (default 20).
	TopCardLimit int

	Logger *slog.Logger
}

// NewCalculator creates an EV calculator from its collaborators.
func NewCalculator(opts CalculatorOptions) *Calculator {
	if opts.BulkThreshold <= 0 {
		opts.BulkThreshold = 1.0
	}
	if opts.TopCardLimit <= 0 {
		opts.TopCardLimit = defaultTopCardLimit
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Calculator{
		catalog:       opts.Catalog,
		mapper:        opts.Mapper,
		engine:        opts.Engine,
		counts:        opts.BoosterCounts,
		expansions:    opts.Expansions,
		bulkThreshold: opts.BulkThreshold,
		topCardLimit:  opts.TopCardLimit,
		logger:        opts.Logger,
	}
}

// Initialize loads the catalog, seeds the mapper, and loads collation rules.
// It runs at most once; later calls return the first outcome.
func (c *Calculator) Initialize(ctx context.Context) error {
	c.initOnce.Do(func() {
		c.state.Store(stateInitializing)
		c.logger.Info("initializing EV calculator")

		if err := c.catalog.Load(ctx); err != nil {
			c.initErr = err
			return
		}

		var expansions []MarketExpansion
		if c.expansions != nil {
			var err error
			expansions, err = c.expansions.Expansions(ctx)
			if err != nil {
				c.initErr = err
				return
			}
		}
		if err := c.mapper.Initialize(ctx, c.catalog, expansions); err != nil {
			c.initErr = err
			return
		}

		if err := c.engine.Load(); err != nil {
			c.initErr = err
			return
		}

		c.state.Store(stateReady)
		c.logger.Info("EV calculator ready")
	})
	return c.initErr
}

// Ready reports whether initialization has completed successfully.
func (c *Calculator) Ready() bool {
	return c.state.Load() == stateReady
}

// CalculateEV computes the full EV result for one sealed product. It
// returns (nil, nil) when the product cannot be priced: unmapped expansion,
// empty card pool, or unsupported product format.
func (c *Calculator) CalculateEV(ctx context.Context, product Product) (*Result, error) {
	if err := c.Initialize(ctx); err != nil {
		return nil, err
	}

	setCode, ok := c.mapper.GetSetCode(product.ExpansionID)
	if !ok {
		return nil, nil
	}

	cards := c.catalog.GetSetCards(setCode)
	if len(cards) == 0 {
		return nil, nil
	}

	boosterCount, ok := c.counts.BoosterCount(product.Name, product.Category)
	if !ok {
		return nil, nil
	}

	boosterType := InferBoosterType(product.Name)

	box := c.engine.CalculateBoxEV(setCode, boosterType, boosterCount, cards, c.bulkThreshold)
	pack := c.engine.CalculatePackEV(setCode, boosterType, cards, c.bulkThreshold)

	evRatio := 0.0
	if product.SealedPrice > 0 {
		evRatio = box.TotalEV / product.SealedPrice
	}

	return &Result{
		ProductID:   product.ID,
		ProductName: product.Name,
		SealedPrice: product.SealedPrice,

		PackEV:       pack.TotalEV,
		BoxEV:        box.TotalEV,
		EVRatio:      evRatio,
		EVDifference: box.TotalEV - product.SealedPrice,

		Confidence: pack.Confidence,

		SetCode:     setCode,
		SetName:     cards[0].SetName,
		ExpansionID: product.ExpansionID,

		BoosterType:  boosterType,
		BoosterCount: boosterCount,

		Breakdown: Breakdown{
			MythicContribution:   pack.RareMythic.Mythic,
			RareContribution:     pack.RareMythic.Rare,
			UncommonContribution: pack.Uncommon.EV,
			CommonContribution:   pack.Common.EV,
			FoilContribution:     pack.FoilAdjustment,
		},

		TopCards: box.TopCards,
		Variance: box.Variance,
	}, nil
}

// CalculateSetEVs aggregates per-rarity statistics and the top-card list
// for the whole set behind an expansion, independent of any product's
// sealed price. Returns (nil, nil) for unmapped or empty sets.
func (c *Calculator) CalculateSetEVs(ctx context.Context, expansionID int) (*SetResult, error) {
	if err := c.Initialize(ctx); err != nil {
		return nil, err
	}

	setCode, ok := c.mapper.GetSetCode(expansionID)
	if !ok {
		return nil, nil
	}

	cards := c.catalog.GetSetCards(setCode)
	if len(cards) == 0 {
		return nil, nil
	}

	stats := c.catalog.GetSetStats(setCode, c.bulkThreshold)

	avgCardPrice := 0.0
	if stats.PriceableCards > 0 {
		avgCardPrice = stats.TotalValue / float64(stats.PriceableCards)
	}

	return &SetResult{
		SetCode:     setCode,
		SetName:     cards[0].SetName,
		ExpansionID: expansionID,

		TotalUniqueCards: stats.TotalCards,
		PriceableCards:   stats.PriceableCards,
		TotalSetValue:    stats.TotalValue,
		AvgCardPrice:     avgCardPrice,

		Mythics:   c.rarityStats(cards, RarityMythic),
		Rares:     c.rarityStats(cards, RarityRare),
		Uncommons: c.rarityStats(cards, RarityUncommon),
		Commons:   c.rarityStats(cards, RarityCommon),

		TopCards: TopValueCards(cards, c.bulkThreshold, c.topCardLimit),
	}, nil
}

// GetTopValueCards returns the ranked priceable-card list for the set
// behind an expansion. Returns (nil, nil) when the expansion is unmapped.
func (c *Calculator) GetTopValueCards(ctx context.Context, expansionID, limit int, minPrice float64) ([]TopValueCard, error) {
	if err := c.Initialize(ctx); err != nil {
		return nil, err
	}

	setCode, ok := c.mapper.GetSetCode(expansionID)
	if !ok {
		return nil, nil
	}

	return TopValueCards(c.catalog.GetSetCards(setCode), minPrice, limit), nil
}

// rarityStats aggregates the priceable cards of one rarity.
func (c *Calculator) rarityStats(cards []Card, rarity Rarity) RarityStats {
	var stats RarityStats
	for _, card := range cards {
		if card.Rarity == rarity && card.Priceable(c.bulkThreshold) {
			stats.Count++
			stats.TotalValue += *card.Price
		}
	}
	if stats.Count > 0 {
		stats.AvgPrice = stats.TotalValue / float64(stats.Count)
	}
	return stats
}

// InferBoosterType picks a booster type from free-text keyword search over
// the product name. Play boosters are the modern default when nothing
// matches.
func InferBoosterType(productName string) BoosterType {
	name := strings.ToLower(productName)
	for _, entry := range boosterTypeKeywords {
		if strings.Contains(name, entry.keyword) {
			return entry.typ
		}
	}
	return PlayBooster
}
