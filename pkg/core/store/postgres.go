package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore keeps snapshots in a JSONB column.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects to dbURL and creates the schema if needed.
func NewPostgresStore(ctx context.Context, dbURL string) (*PostgresStore, error) {
	if dbURL == "" {
		return nil, fmt.Errorf("database URL not set")
	}

	config, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	s := &PostgresStore{pool: pool}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *PostgresStore) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS filing_snapshots (
			id         UUID PRIMARY KEY,
			ticker     TEXT NOT NULL,
			cik        TEXT,
			kind       TEXT NOT NULL,
			payload    JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_filing_snapshots_lookup
			ON filing_snapshots (ticker, kind, created_at DESC)`,
	}
	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// Save upserts by snapshot ID.
func (s *PostgresStore) Save(ctx context.Context, snap *Snapshot) error {
	query := `
		INSERT INTO filing_snapshots (id, ticker, cik, kind, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id)
		DO UPDATE SET
			ticker = EXCLUDED.ticker,
			cik = EXCLUDED.cik,
			kind = EXCLUDED.kind,
			payload = EXCLUDED.payload,
			created_at = EXCLUDED.created_at;
	`
	_, err := s.pool.Exec(ctx, query,
		snap.ID, strings.ToUpper(snap.Ticker), snap.CIK, string(snap.Kind), []byte(snap.Payload), snap.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

func (s *PostgresStore) Latest(ctx context.Context, ticker string, kind Kind) (*Snapshot, error) {
	query := `
		SELECT id::text, ticker, cik, kind, payload, created_at
		FROM filing_snapshots
		WHERE ticker = $1 AND kind = $2
		ORDER BY created_at DESC
		LIMIT 1`

	var snap Snapshot
	err := scanSnapshot(s.pool.QueryRow(ctx, query, strings.ToUpper(ticker), string(kind)), &snap)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}
	return &snap, nil
}

func (s *PostgresStore) List(ctx context.Context, ticker string, kind Kind, limit int) ([]Snapshot, error) {
	query := `
		SELECT id::text, ticker, cik, kind, payload, created_at
		FROM filing_snapshots
		WHERE ticker = $1 AND ($2 = '' OR kind = $2)
		ORDER BY created_at DESC
		LIMIT $3`

	rows, err := s.pool.Query(ctx, query, strings.ToUpper(ticker), string(kind), listLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	defer rows.Close()

	var out []Snapshot
	for rows.Next() {
		var snap Snapshot
		if err := scanSnapshot(rows, &snap); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		out = append(out, snap)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func scanSnapshot(row pgx.Row, snap *Snapshot) error {
	var (
		kind    string
		cik     *string
		payload []byte
		created time.Time
	)
	if err := row.Scan(&snap.ID, &snap.Ticker, &cik, &kind, &payload, &created); err != nil {
		return err
	}
	if cik != nil {
		snap.CIK = *cik
	}
	snap.Kind = Kind(kind)
	snap.Payload = payload
	snap.CreatedAt = created.UTC()
	return nil
}
