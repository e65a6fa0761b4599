package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/ramonehamilton/sealed-ev/internal/ev"
)

// fileExpansions reads the marketplace expansion catalog from a JSON file
// exported by the search layer. It implements ev.ExpansionSource.
type fileExpansions struct {
	path string
}

type expansionRecord struct {
	ID           int      `json:"id"`
	Name         string   `json:"name"`
	SampleCards  []string `json:"sampleCards,omitempty"`
	ProductNames []string `json:"productNames,omitempty"`
}

// Expansions loads and converts the expansion catalog. A missing file is
// not an error; auto-matching is simply skipped.
func (f *fileExpansions) Expansions(ctx context.Context) ([]ev.MarketExpansion, error) {
	if f.path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read expansions file: %w", err)
	}

	var records []expansionRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse expansions file: %w", err)
	}

	expansions := make([]ev.MarketExpansion, len(records))
	for i, rec := range records {
		expansions[i] = ev.MarketExpansion{
			ID:           rec.ID,
			Name:         rec.Name,
			SampleCards:  rec.SampleCards,
			ProductNames: rec.ProductNames,
		}
	}
	return expansions, nil
}
