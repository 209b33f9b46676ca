package store

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"trading-backoffice/internal/config"
)

// PostgresStore implements Store on a pgx connection pool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects to Postgres and verifies the connection.
func NewPostgresStore(ctx context.Context, cfg config.PostgresConfig) (*PostgresStore, error) {
	poolCfg, err := pgxpool.ParseConfig(buildConnString(cfg))
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}

	poolCfg.MinConns = int32(cfg.MinConns)
	poolCfg.MaxConns = int32(cfg.MaxConns)

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

// buildConnString builds a PostgreSQL connection string from config.
func buildConnString(cfg config.PostgresConfig) string {
	// URL-encode password to handle special characters
	escapedPassword := url.QueryEscape(cfg.Password)

	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "prefer"
	}

	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.User,
		escapedPassword,
		cfg.Host,
		cfg.Port,
		cfg.Name,
		sslMode,
	)
}

// Insert appends records inside a single transaction.
func (s *PostgresStore) Insert(ctx context.Context, table string, records []Record) error {
	return s.write(ctx, table, records, nil)
}

// Upsert inserts records, replacing rows that match on conflictKey.
func (s *PostgresStore) Upsert(ctx context.Context, table string, records []Record, conflictKey []string) error {
	return s.write(ctx, table, records, conflictKey)
}

func (s *PostgresStore) write(ctx context.Context, table string, records []Record, conflictKey []string) error {
	if len(records) == 0 {
		return nil
	}

	cols := columnsOf(records[0])
	sql := pgInsertSQL(table, cols, conflictKey)

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, rec := range records {
		batch.Queue(sql, argsOf(rec, cols)...)
	}

	br := tx.SendBatch(ctx, batch)
	for range records {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return err
		}
	}
	if err := br.Close(); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// pgInsertSQL builds the INSERT statement, with an ON CONFLICT DO UPDATE
// clause when a conflict key is given.
func pgInsertSQL(table string, cols, conflictKey []string) string {
	quoted := make([]string, len(cols))
	params := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = pgx.Identifier{c}.Sanitize()
		params[i] = fmt.Sprintf("$%d", i+1)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "INSERT INTO %s (%s) VALUES (%s)",
		pgx.Identifier{table}.Sanitize(),
		strings.Join(quoted, ", "),
		strings.Join(params, ", "))

	if len(conflictKey) > 0 {
		keySet := make(map[string]bool, len(conflictKey))
		keyCols := make([]string, len(conflictKey))
		for i, k := range conflictKey {
			keySet[k] = true
			keyCols[i] = pgx.Identifier{k}.Sanitize()
		}

		var updates []string
		for _, c := range cols {
			if keySet[c] {
				continue
			}
			q := pgx.Identifier{c}.Sanitize()
			updates = append(updates, fmt.Sprintf("%s = EXCLUDED.%s", q, q))
		}

		fmt.Fprintf(&b, " ON CONFLICT (%s) DO UPDATE SET %s",
			strings.Join(keyCols, ", "),
			strings.Join(updates, ", "))
	}

	return b.String()
}

// Close releases the connection pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
