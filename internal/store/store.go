// Package store provides the persistence interface and implementations for
// load batches.
package store

import (
	"context"
	"fmt"
	"sort"

	"trading-backoffice/internal/config"
)

// Record is one persisted row: field name to value. A nil value persists as
// SQL NULL. All records in a batch carry the same field set.
type Record map[string]interface{}

// Store writes validated record batches. Both operations are all-or-nothing:
// one transaction per call, any failure leaves the table untouched.
type Store interface {
	// Insert appends records with no conflict handling.
	Insert(ctx context.Context, table string, records []Record) error

	// Upsert inserts records, replacing existing rows that match on the
	// conflictKey columns.
	Upsert(ctx context.Context, table string, records []Record, conflictKey []string) error

	Close() error
}

// Open creates the store selected by cfg.Driver.
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		return NewPostgresStore(ctx, cfg.Postgres)
	case config.DriverSQLite:
		return NewSQLiteStore(cfg.SQLite.Path)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

// columnsOf returns the record's field names in a stable order.
func columnsOf(rec Record) []string {
	cols := make([]string, 0, len(rec))
	for c := range rec {
		cols = append(cols, c)
	}
	sort.Strings(cols)
	return cols
}

// argsOf returns the record's values in column order.
func argsOf(rec Record, cols []string) []interface{} {
	args := make([]interface{}, len(cols))
	for i, c := range cols {
		args[i] = rec[c]
	}
	return args
}
