// Package sqlitetier is the primary price store: a sqlite database of
// daily prices, each row attributed to a source with a confidence score.
// Lookups prefer the highest-confidence row for a day.
package sqlitetier

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/costfolio/costfolio/date"
	"github.com/costfolio/costfolio/resolver"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS price_data (
	asset      TEXT NOT NULL,
	day        TEXT NOT NULL,
	price      TEXT NOT NULL,
	source     TEXT NOT NULL DEFAULT 'manual',
	confidence INTEGER NOT NULL DEFAULT 100,
	PRIMARY KEY (asset, day, source)
);
CREATE INDEX IF NOT EXISTS price_data_by_day ON price_data (asset, day);
`

// writeSource attributes rows written through the resolver chain. Their
// confidence sits below curated entries so a hand-checked price wins.
const (
	writeSource     = "resolver"
	writeConfidence = 50
)

// Store is the sqlite-backed primary tier. Safe for concurrent use.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing price schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) Tier() resolver.Tier { return resolver.TierPrimary }

// Lookup returns the highest-confidence price for exactly the given day.
func (s *Store) Lookup(ctx context.Context, asset string, on date.Date) (decimal.Decimal, bool, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT price FROM price_data WHERE asset = ? AND day = ?
		 ORDER BY confidence DESC LIMIT 1`,
		asset, on.String()).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return decimal.Decimal{}, false, nil
	}
	if err != nil {
		return decimal.Decimal{}, false, err
	}
	price, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, false, fmt.Errorf("bad price for %s on %s: %w", asset, on, err)
	}
	return price, true, nil
}

// LookupAsOf returns the most recent price at or before the day.
func (s *Store) LookupAsOf(ctx context.Context, asset string, on date.Date) (decimal.Decimal, date.Date, bool, error) {
	var raw, day string
	err := s.db.QueryRowContext(ctx,
		`SELECT price, day FROM price_data WHERE asset = ? AND day <= ?
		 ORDER BY day DESC, confidence DESC LIMIT 1`,
		asset, on.String()).Scan(&raw, &day)
	if errors.Is(err, sql.ErrNoRows) {
		return decimal.Decimal{}, date.Date{}, false, nil
	}
	if err != nil {
		return decimal.Decimal{}, date.Date{}, false, err
	}
	price, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, date.Date{}, false, fmt.Errorf("bad price for %s on %s: %w", asset, day, err)
	}
	asOf, err := date.Parse(day)
	if err != nil {
		return decimal.Decimal{}, date.Date{}, false, err
	}
	return price, asOf, true, nil
}

// Write upserts a resolver-attributed price for the day.
func (s *Store) Write(ctx context.Context, asset string, on date.Date, price decimal.Decimal) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO price_data (asset, day, price, source, confidence)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (asset, day, source) DO UPDATE SET price = excluded.price`,
		asset, on.String(), price.String(), writeSource, writeConfidence)
	return err
}

// Put records a curated price with full confidence, for manual corrections
// and imports.
func (s *Store) Put(ctx context.Context, asset string, on date.Date, price decimal.Decimal, source string, confidence int) error {
	if source == "" {
		source = "manual"
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO price_data (asset, day, price, source, confidence)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (asset, day, source) DO UPDATE SET
		   price = excluded.price, confidence = excluded.confidence`,
		asset, on.String(), price.String(), source, confidence)
	return err
}
