package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore implements Store using SQLite. Unlike the Postgres store,
// which writes into an externally managed schema, the SQLite store
// bootstraps tables on first write: columns are dynamically typed and the
// upsert conflict key becomes a unique index.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(time.Hour)

	return &SQLiteStore{db: db}, nil
}

// Insert appends records inside a single transaction.
func (s *SQLiteStore) Insert(ctx context.Context, table string, records []Record) error {
	return s.write(ctx, table, records, nil)
}

// Upsert inserts records, replacing rows that match on conflictKey.
func (s *SQLiteStore) Upsert(ctx context.Context, table string, records []Record, conflictKey []string) error {
	return s.write(ctx, table, records, conflictKey)
}

func (s *SQLiteStore) write(ctx context.Context, table string, records []Record, conflictKey []string) error {
	if len(records) == 0 {
		return nil
	}

	cols := columnsOf(records[0])
	if err := s.ensureTable(ctx, table, cols, conflictKey); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, sqliteInsertSQL(table, cols, conflictKey))
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, rec := range records {
		if _, err := stmt.ExecContext(ctx, argsOf(rec, cols)...); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// ensureTable creates the target table and, when upserting, the unique index
// backing ON CONFLICT.
func (s *SQLiteStore) ensureTable(ctx context.Context, table string, cols, conflictKey []string) error {
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = quoteIdent(c)
	}

	ddl := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)",
		quoteIdent(table), strings.Join(quoted, ", "))
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create table %s: %w", table, err)
	}

	if len(conflictKey) > 0 {
		keyCols := make([]string, len(conflictKey))
		for i, k := range conflictKey {
			keyCols[i] = quoteIdent(k)
		}
		idx := fmt.Sprintf("CREATE UNIQUE INDEX IF NOT EXISTS %s ON %s (%s)",
			quoteIdent(table+"_business_key"),
			quoteIdent(table),
			strings.Join(keyCols, ", "))
		if _, err := s.db.ExecContext(ctx, idx); err != nil {
			return fmt.Errorf("create index on %s: %w", table, err)
		}
	}

	return nil
}

// sqliteInsertSQL builds the INSERT statement, with an ON CONFLICT DO UPDATE
// clause when a conflict key is given.
func sqliteInsertSQL(table string, cols, conflictKey []string) string {
	quoted := make([]string, len(cols))
	params := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = quoteIdent(c)
		params[i] = "?"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "INSERT INTO %s (%s) VALUES (%s)",
		quoteIdent(table), strings.Join(quoted, ", "), strings.Join(params, ", "))

	if len(conflictKey) > 0 {
		keySet := make(map[string]bool, len(conflictKey))
		keyCols := make([]string, len(conflictKey))
		for i, k := range conflictKey {
			keySet[k] = true
			keyCols[i] = quoteIdent(k)
		}

		var updates []string
		for _, c := range cols {
			if keySet[c] {
				continue
			}
			updates = append(updates, fmt.Sprintf("%s = excluded.%s", quoteIdent(c), quoteIdent(c)))
		}

		fmt.Fprintf(&b, " ON CONFLICT (%s) DO UPDATE SET %s",
			strings.Join(keyCols, ", "),
			strings.Join(updates, ", "))
	}

	return b.String()
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
