package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ramonehamilton/sealed-ev/internal/ev"
)

// createSchema applies the snapshot schema directly, for in-memory
// databases that cannot use the file-based migrator.
func (db *DB) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS cards (
			id               TEXT PRIMARY KEY,
			name             TEXT NOT NULL,
			set_code         TEXT NOT NULL,
			set_name         TEXT NOT NULL,
			rarity           TEXT NOT NULL,
			price_eur        REAL,
			price_eur_foil   REAL,
			collector_number TEXT NOT NULL DEFAULT '',
			released_at      TEXT NOT NULL DEFAULT ''
		);
		CREATE INDEX IF NOT EXISTS idx_cards_set_code ON cards (set_code);
		CREATE INDEX IF NOT EXISTS idx_cards_set_rarity ON cards (set_code, rarity);
		CREATE TABLE IF NOT EXISTS snapshot_meta (
			id          INTEGER PRIMARY KEY CHECK (id = 1),
			updated_at  TIMESTAMP NOT NULL,
			card_count  INTEGER NOT NULL
		);
	`
	if _, err := db.conn.Exec(schema); err != nil {
		return fmt.Errorf("failed to create snapshot schema: %w", err)
	}
	return nil
}

// SnapshotMeta describes the cached card dataset.
type SnapshotMeta struct {
	UpdatedAt time.Time
	CardCount int
}

// ReplaceSnapshot swaps the cached card dataset for a new one in a single
// transaction, so readers never observe a partial snapshot.
func (db *DB) ReplaceSnapshot(ctx context.Context, cards []ev.Card) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin snapshot transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM cards`); err != nil {
		return fmt.Errorf("failed to clear card snapshot: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO cards (
			id, name, set_code, set_name, rarity,
			price_eur, price_eur_foil, collector_number, released_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare card insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, card := range cards {
		_, err := stmt.ExecContext(ctx,
			card.ID, card.Name, card.SetCode, card.SetName, string(card.Rarity),
			card.Price, card.FoilPrice, card.CollectorNumber, card.ReleasedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert card %s: %w", card.ID, err)
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO snapshot_meta (id, updated_at, card_count)
		VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			updated_at = excluded.updated_at,
			card_count = excluded.card_count
	`, time.Now().UTC(), len(cards))
	if err != nil {
		return fmt.Errorf("failed to update snapshot metadata: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit snapshot: %w", err)
	}
	return nil
}

// Cards loads the full cached card snapshot. It implements ev.CardSource.
// An empty cache is reported as an error so the catalog surfaces it as
// data-unavailable rather than an empty index.
func (db *DB) Cards(ctx context.Context) ([]ev.Card, error) {
	meta, err := db.SnapshotMeta(ctx)
	if err != nil {
		return nil, err
	}
	if meta == nil {
		return nil, fmt.Errorf("no card snapshot cached; run update first")
	}

	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, name, set_code, set_name, rarity,
		       price_eur, price_eur_foil, collector_number, released_at
		FROM cards
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query card snapshot: %w", err)
	}
	defer func() { _ = rows.Close() }()

	cards := make([]ev.Card, 0, meta.CardCount)
	for rows.Next() {
		var card ev.Card
		var rarity string
		err := rows.Scan(
			&card.ID, &card.Name, &card.SetCode, &card.SetName, &rarity,
			&card.Price, &card.FoilPrice, &card.CollectorNumber, &card.ReleasedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan card row: %w", err)
		}
		card.Rarity = ev.Rarity(rarity)
		cards = append(cards, card)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read card snapshot: %w", err)
	}

	return cards, nil
}

// SnapshotMeta returns the cached snapshot's metadata, nil when no snapshot
// has been stored yet.
func (db *DB) SnapshotMeta(ctx context.Context) (*SnapshotMeta, error) {
	var meta SnapshotMeta
	err := db.conn.QueryRowContext(ctx, `
		SELECT updated_at, card_count FROM snapshot_meta WHERE id = 1
	`).Scan(&meta.UpdatedAt, &meta.CardCount)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot metadata: %w", err)
	}
	return &meta, nil
}

// Age returns how long ago the snapshot was updated, or a negative duration
// when no snapshot exists.
func (db *DB) Age(ctx context.Context) (time.Duration, error) {
	meta, err := db.SnapshotMeta(ctx)
	if err != nil {
		return 0, err
	}
	if meta == nil {
		return -1, nil
	}
	return time.Since(meta.UpdatedAt), nil
}
