package scryfall

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/ramonehamilton/sealed-ev/internal/ev"
)

// defaultCardsType is the bulk entry holding one object per card printing.
const defaultCardsType = "default_cards"

// Downloader fetches the bulk default-cards dataset and reduces it to the
// processed card form the EV pipeline works with.
type Downloader struct {
	client *Client
	logger *slog.Logger
}

// NewDownloader creates a bulk dataset downloader.
func NewDownloader(client *Client, logger *slog.Logger) *Downloader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Downloader{client: client, logger: logger}
}

// FetchCards downloads the current default-cards bulk file and returns the
// processed card snapshot.
func (d *Downloader) FetchCards(ctx context.Context) ([]ev.Card, error) {
	list, err := d.client.GetBulkData(ctx)
	if err != nil {
		return nil, err
	}

	var entry *BulkData
	for i := range list.Data {
		if list.Data[i].Type == defaultCardsType {
			entry = &list.Data[i]
			break
		}
	}
	if entry == nil {
		return nil, fmt.Errorf("bulk data catalog has no %s entry", defaultCardsType)
	}

	d.logger.Info("downloading bulk card data",
		"type", entry.Type,
		"updated_at", entry.UpdatedAt,
		"compressed_size", entry.CompressedSize)

	body, err := d.client.DownloadBulkFile(ctx, entry.DownloadURI)
	if err != nil {
		return nil, err
	}
	defer func() { _ = body.Close() }()

	cards, err := decodeCards(body)
	if err != nil {
		return nil, err
	}

	d.logger.Info("processed bulk card data", "cards", len(cards))
	return cards, nil
}

// decodeCards streams the bulk JSON array without holding the raw dataset
// in memory, keeping only the processed cards.
func decodeCards(r io.Reader) ([]ev.Card, error) {
	dec := json.NewDecoder(r)

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("read bulk data: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '[' {
		return nil, fmt.Errorf("bulk data is not a JSON array")
	}

	var cards []ev.Card
	for dec.More() {
		var raw BulkCard
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("decode bulk card: %w", err)
		}
		if card, ok := ProcessCard(raw); ok {
			cards = append(cards, card)
		}
	}

	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("read bulk data: %w", err)
	}

	return cards, nil
}

// ProcessCard converts a raw bulk card into the EV card form. It drops
// digital-only printings and tokens, falls back to common for rarities the
// calculator does not know, and parses EUR price strings.
func ProcessCard(raw BulkCard) (ev.Card, bool) {
	paper := false
	for _, game := range raw.Games {
		if game == "paper" {
			paper = true
			break
		}
	}
	if !paper {
		return ev.Card{}, false
	}

	if raw.SetType == "token" || raw.Layout == "token" {
		return ev.Card{}, false
	}

	rarity := ev.Rarity(raw.Rarity)
	if !rarity.IsKnown() {
		rarity = ev.RarityCommon
	}

	return ev.Card{
		ID:              raw.ID,
		Name:            raw.Name,
		SetCode:         raw.SetCode,
		SetName:         raw.SetName,
		Rarity:          rarity,
		Price:           parsePrice(raw.Prices.EUR),
		FoilPrice:       parsePrice(raw.Prices.EURFoil),
		CollectorNumber: raw.CollectorNumber,
		ReleasedAt:      raw.ReleasedAt,
	}, true
}

// parsePrice converts a Scryfall decimal price string to a float, nil when
// the price is absent or unparseable.
func parsePrice(s *string) *float64 {
	if s == nil || *s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(*s, 64)
	if err != nil {
		return nil
	}
	return &v
}
