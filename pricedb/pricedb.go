// Package pricedb is the local price cache: daily prices per asset, held
// in memory and persisted as one jsonl file per asset under a folder.
// It serves the cache tier of the resolver chain and absorbs its
// write-through traffic.
package pricedb

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/costfolio/costfolio/date"
	"github.com/costfolio/costfolio/resolver"
	"github.com/shopspring/decimal"
)

const fileExt = ".jsonl"

// DB is an in-memory price database bound to a folder. Safe for
// concurrent use. Writes stay in memory until Flush.
type DB struct {
	folder string

	mu     sync.RWMutex
	assets map[string]*date.History[decimal.Decimal]
	dirty  map[string]bool
}

// Open loads every asset file found under folder. A missing folder is an
// empty database; it is created on first Flush.
func Open(folder string) (*DB, error) {
	db := &DB{
		folder: folder,
		assets: make(map[string]*date.History[decimal.Decimal]),
		dirty:  make(map[string]bool),
	}
	entries, err := os.ReadDir(folder)
	if err != nil {
		if os.IsNotExist(err) {
			return db, nil
		}
		return nil, err
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), fileExt) {
			continue
		}
		asset := strings.TrimSuffix(e.Name(), fileExt)
		h, err := readHistory(filepath.Join(folder, e.Name()))
		if err != nil {
			return nil, err
		}
		db.assets[asset] = h
	}
	return db, nil
}

func (db *DB) Tier() resolver.Tier { return resolver.TierCache }

// Lookup returns the cached price for exactly the given day.
func (db *DB) Lookup(_ context.Context, asset string, on date.Date) (decimal.Decimal, bool, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	h, ok := db.assets[asset]
	if !ok {
		return decimal.Decimal{}, false, nil
	}
	price, ok := h.Get(on)
	return price, ok, nil
}

// LookupAsOf returns the most recent cached price at or before the day,
// together with the day it was recorded.
func (db *DB) LookupAsOf(_ context.Context, asset string, on date.Date) (decimal.Decimal, date.Date, bool, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	h, ok := db.assets[asset]
	if !ok {
		return decimal.Decimal{}, date.Date{}, false, nil
	}
	asOf, price, ok := h.ValueAsOf(on)
	return price, asOf, ok, nil
}

// Write records a price, overwriting any previous value for that day.
func (db *DB) Write(_ context.Context, asset string, on date.Date, price decimal.Decimal) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	h, ok := db.assets[asset]
	if !ok {
		h = &date.History[decimal.Decimal]{}
		db.assets[asset] = h
	}
	h.Append(on, price)
	db.dirty[asset] = true
	return nil
}

// Assets returns the cached asset symbols, sorted.
func (db *DB) Assets() []string {
	db.mu.RLock()
	defer db.mu.RUnlock()
	out := make([]string, 0, len(db.assets))
	for a := range db.assets {
		out = append(out, a)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of cached prices for an asset.
func (db *DB) Len(asset string) int {
	db.mu.RLock()
	defer db.mu.RUnlock()
	if h, ok := db.assets[asset]; ok {
		return h.Len()
	}
	return 0
}

// Flush persists every asset written since the last flush.
func (db *DB) Flush() error {
	db.mu.Lock()
	defer db.mu.Unlock()
	if len(db.dirty) == 0 {
		return nil
	}
	if err := os.MkdirAll(db.folder, 0o755); err != nil {
		return err
	}
	for asset := range db.dirty {
		if err := writeHistory(filepath.Join(db.folder, fileName(asset)), db.assets[asset]); err != nil {
			return err
		}
		delete(db.dirty, asset)
	}
	return nil
}

// fileName maps an asset symbol to a safe file name.
func fileName(asset string) string {
	safe := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, asset)
	return safe + fileExt
}

type priceLine struct {
	Date  date.Date       `json:"date"`
	Price decimal.Decimal `json:"price"`
}

func readHistory(path string) (*date.History[decimal.Decimal], error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	h := &date.History[decimal.Decimal]{}
	sc := bufio.NewScanner(f)
	line := 0
	for sc.Scan() {
		line++
		if len(sc.Bytes()) == 0 {
			continue
		}
		var p priceLine
		if err := json.Unmarshal(sc.Bytes(), &p); err != nil {
			return nil, fmt.Errorf("%s:%d: %w", path, line, err)
		}
		h.Append(p.Date, p.Price)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return h, nil
}

func writeHistory(path string, h *date.History[decimal.Decimal]) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if err := encodeHistory(tmp, h); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func encodeHistory(w io.Writer, h *date.History[decimal.Decimal]) error {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	for day, price := range h.Values() {
		if err := enc.Encode(priceLine{Date: day, Price: price}); err != nil {
			return err
		}
	}
	return bw.Flush()
}
