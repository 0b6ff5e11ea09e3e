package storage

// ledger.go — persistent record of volume-trading purchases.
//
// One row per token, keyed by (token_address, token_id) with the address
// lowercased, so a re-buy of the same token overwrites its position instead
// of accumulating duplicates. Rows survive restarts: the reconciler prices
// volume inventory differently from regular inventory and needs to know
// which is which after a crash.

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jfortea/floorbot/internal/domain"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS positions (
    id            TEXT NOT NULL,
    token_address TEXT NOT NULL,
    token_id      TEXT NOT NULL,
    buy_price     REAL NOT NULL,
    purchased_at  TEXT NOT NULL,
    collection    TEXT NOT NULL,
    PRIMARY KEY (token_address, token_id)
);

CREATE INDEX IF NOT EXISTS idx_positions_purchased ON positions(purchased_at DESC);
`

// timeFormat is fixed-width so lexical order on the column matches
// chronological order (RFC3339Nano trims trailing zeros and does not).
const timeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// Ledger implements ports.Ledger on SQLite (pure Go, no CGo).
type Ledger struct {
	db *sql.DB
}

// NewLedger opens (or creates) the database at the given path and applies
// the schema. Use ":memory:" for an ephemeral ledger.
func NewLedger(path string) (*Ledger, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage.NewLedger: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // SQLite is single-writer
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewLedger: apply schema: %w", err)
	}

	return &Ledger{db: db}, nil
}

// Upsert inserts the position, replacing any previous row for the same token.
func (l *Ledger) Upsert(ctx context.Context, pos domain.VolumePosition) error {
	_, err := l.db.ExecContext(ctx, `
		INSERT INTO positions (id, token_address, token_id, buy_price, purchased_at, collection)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(token_address, token_id) DO UPDATE SET
			id           = excluded.id,
			buy_price    = excluded.buy_price,
			purchased_at = excluded.purchased_at,
			collection   = excluded.collection
	`,
		pos.ID,
		strings.ToLower(pos.Contract),
		pos.Identifier,
		pos.BuyPrice,
		pos.PurchasedAt.UTC().Format(timeFormat),
		pos.Collection,
	)
	if err != nil {
		return fmt.Errorf("storage.Upsert: token %s: %w", pos.Identifier, err)
	}
	return nil
}

// Get returns the position for the token, or nil when none is recorded.
func (l *Ledger) Get(ctx context.Context, contract, identifier string) (*domain.VolumePosition, error) {
	row := l.db.QueryRowContext(ctx, `
		SELECT id, token_address, token_id, buy_price, purchased_at, collection
		FROM positions
		WHERE token_address = ? AND token_id = ?
	`, strings.ToLower(contract), identifier)

	pos, err := scanPosition(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage.Get: token %s: %w", identifier, err)
	}
	return &pos, nil
}

// All returns every recorded position, newest purchase first.
func (l *Ledger) All(ctx context.Context) ([]domain.VolumePosition, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT id, token_address, token_id, buy_price, purchased_at, collection
		FROM positions
		ORDER BY purchased_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("storage.All: query: %w", err)
	}
	defer rows.Close()

	var positions []domain.VolumePosition
	for rows.Next() {
		pos, err := scanPosition(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("storage.All: scan row: %w", err)
		}
		positions = append(positions, pos)
	}
	return positions, rows.Err()
}

// Remove deletes the position for the token. Removing an absent token is
// not an error.
func (l *Ledger) Remove(ctx context.Context, contract, identifier string) error {
	_, err := l.db.ExecContext(ctx,
		`DELETE FROM positions WHERE token_address = ? AND token_id = ?`,
		strings.ToLower(contract), identifier,
	)
	if err != nil {
		return fmt.Errorf("storage.Remove: token %s: %w", identifier, err)
	}
	return nil
}

// Close closes the database connection.
func (l *Ledger) Close() error {
	return l.db.Close()
}

func scanPosition(scan func(dest ...any) error) (domain.VolumePosition, error) {
	var pos domain.VolumePosition
	var purchasedAt string
	if err := scan(
		&pos.ID,
		&pos.Contract,
		&pos.Identifier,
		&pos.BuyPrice,
		&purchasedAt,
		&pos.Collection,
	); err != nil {
		return domain.VolumePosition{}, err
	}
	pos.PurchasedAt, _ = time.Parse(timeFormat, purchasedAt)
	return pos, nil
}
