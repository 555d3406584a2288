// Package store persists assembled stock data and analysis results.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when no snapshot matches.
var ErrNotFound = errors.New("snapshot not found")

// Kind labels what a snapshot holds.
type Kind string

const (
	KindStock    Kind = "stock"
	KindAnalysis Kind = "analysis"
)

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	return k == KindStock || k == KindAnalysis
}

// Snapshot is one stored JSON document for a ticker.
type Snapshot struct {
	ID        string          `json:"id"`
	Ticker    string          `json:"ticker"`
	CIK       string          `json:"cik"`
	Kind      Kind            `json:"kind"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"createdAt"`
}

// NewSnapshot encodes v into a new snapshot with a fresh ID.
func NewSnapshot(ticker, cik string, kind Kind, v interface{}) (*Snapshot, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("unknown snapshot kind %q", kind)
	}
	payload, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal snapshot payload: %w", err)
	}
	return &Snapshot{
		ID:        uuid.NewString(),
		Ticker:    strings.ToUpper(ticker),
		CIK:       cik,
		Kind:      kind,
		Payload:   payload,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// Decode unmarshals the payload into v.
func (s *Snapshot) Decode(v interface{}) error {
	if err := json.Unmarshal(s.Payload, v); err != nil {
		return fmt.Errorf("failed to unmarshal snapshot %s: %w", s.ID, err)
	}
	return nil
}

// SnapshotStore is implemented by the Postgres and SQLite backends.
type SnapshotStore interface {
	// Save inserts s, or replaces the snapshot with the same ID.
	Save(ctx context.Context, s *Snapshot) error
	// Latest returns the newest snapshot of kind for ticker, or ErrNotFound.
	Latest(ctx context.Context, ticker string, kind Kind) (*Snapshot, error)
	// List returns up to limit snapshots newest first. An empty kind lists all.
	List(ctx context.Context, ticker string, kind Kind, limit int) ([]Snapshot, error)
	Close() error
}

const defaultListLimit = 20

func listLimit(limit int) int {
	if limit <= 0 || limit > 500 {
		return defaultListLimit
	}
	return limit
}
