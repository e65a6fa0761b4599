package commands

import (
	"github.com/ramonehamilton/sealed-ev/internal/ev"
	"github.com/ramonehamilton/sealed-ev/internal/ev/boostercount"
	"github.com/ramonehamilton/sealed-ev/internal/storage"
)

// newCalculator wires an EV calculator from the configured stores. The
// returned closer releases the snapshot database.
func newCalculator(expansionsPath string) (*ev.Calculator, func(), error) {
	db, err := storage.Open(storage.DefaultConfig(cfg.Data.DatabasePath))
	if err != nil {
		return nil, nil, err
	}
	closer := func() { _ = db.Close() }

	counts, err := boostercount.New()
	if err != nil {
		closer()
		return nil, nil, err
	}

	calc := ev.NewCalculator(ev.CalculatorOptions{
		Catalog: ev.NewCatalog(db, logger),
		Mapper:  ev.NewMapper(ev.NewMappingStore(cfg.Data.MappingPath), logger),
		Engine: ev.NewEngine(ev.EngineOptions{
			RulesPath:    cfg.Data.RulesPath,
			TopCardLimit: cfg.EV.TopCardLimit,
			Logger:       logger,
		}),
		BoosterCounts: counts,
		Expansions:    &fileExpansions{path: expansionsPath},
		BulkThreshold: cfg.EV.BulkThreshold,
		TopCardLimit:  cfg.EV.TopCardLimit,
		Logger:        logger,
	})
	return calc, closer, nil
}
