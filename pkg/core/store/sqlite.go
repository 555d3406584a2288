package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// SQLiteStore keeps snapshots in a local SQLite file.
type SQLiteStore struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteStore opens (or creates) the database at path and runs migrations.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	zap.L().Named("store").Info("sqlite store opened", zap.String("path", path))
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS filing_snapshots (
			id         TEXT PRIMARY KEY,
			ticker     TEXT NOT NULL,
			cik        TEXT,
			kind       TEXT NOT NULL,
			payload    TEXT NOT NULL,
			created_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_filing_snapshots_lookup
			ON filing_snapshots (ticker, kind, created_at)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteStore) Save(ctx context.Context, snap *Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO filing_snapshots (id, ticker, cik, kind, payload, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			ticker = excluded.ticker,
			cik = excluded.cik,
			kind = excluded.kind,
			payload = excluded.payload,
			created_at = excluded.created_at`,
		snap.ID, strings.ToUpper(snap.Ticker), snap.CIK, string(snap.Kind), string(snap.Payload), snap.CreatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Latest(ctx context.Context, ticker string, kind Kind) (*Snapshot, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, ticker, cik, kind, payload, created_at
		FROM filing_snapshots
		WHERE ticker = ? AND kind = ?
		ORDER BY created_at DESC
		LIMIT 1`, strings.ToUpper(ticker), string(kind))

	snap, err := scanSQLite(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}
	return snap, nil
}

func (s *SQLiteStore) List(ctx context.Context, ticker string, kind Kind, limit int) ([]Snapshot, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, ticker, cik, kind, payload, created_at
		FROM filing_snapshots
		WHERE ticker = ? AND (? = '' OR kind = ?)
		ORDER BY created_at DESC
		LIMIT ?`, strings.ToUpper(ticker), string(kind), string(kind), listLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	defer rows.Close()

	var out []Snapshot
	for rows.Next() {
		snap, err := scanSQLite(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		out = append(out, *snap)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanSQLite(row scanner) (*Snapshot, error) {
	var (
		snap    Snapshot
		cik     sql.NullString
		kind    string
		payload string
		created int64
	)
	if err := row.Scan(&snap.ID, &snap.Ticker, &cik, &kind, &payload, &created); err != nil {
		return nil, err
	}
	snap.CIK = cik.String
	snap.Kind = Kind(kind)
	snap.Payload = []byte(payload)
	snap.CreatedAt = time.Unix(0, created).UTC()
	return &snap, nil
}
