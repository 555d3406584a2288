// Package cache holds upstream responses for a fixed time to live.
package cache

import (
	"encoding/json"
	"fmt"
	"time"
)

// TTL classes for upstream data.
const (
	TTLCompanyFacts = 24 * time.Hour      // XBRL facts change with filings
	TTLSubmissions  = time.Hour           // filing index, new 8-K and Form 4 show up here
	TTLTickerTable  = 7 * 24 * time.Hour  // company_tickers.json
	TTLResolvedCIK  = 30 * 24 * time.Hour // ticker -> CIK rarely changes

	// DefaultTTL applies when Set is given ttl <= 0.
	DefaultTTL = 5 * time.Minute
	// CleanupInterval is how often expired entries should be swept.
	CleanupInterval = 10 * time.Minute
)

// Cache stores raw bytes by key with a per-entry TTL. Implementations are
// safe for concurrent use.
type Cache interface {
	// Get returns the value and true when key exists and has not expired.
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	// Cleanup removes expired entries and returns how many were removed.
	Cleanup() int
	Len() int
	Close() error
}

// GetJSON decodes a cached JSON value into v. A miss or an undecodable entry
// reports false.
func GetJSON(c Cache, key string, v interface{}) bool {
	if c == nil {
		return false
	}
	data, ok := c.Get(key)
	if !ok {
		return false
	}
	return json.Unmarshal(data, v) == nil
}

// SetJSON encodes v and stores it under key.
func SetJSON(c Cache, key string, v interface{}, ttl time.Duration) error {
	if c == nil {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode cache entry %s: %w", key, err)
	}
	return c.Set(key, data, ttl)
}
