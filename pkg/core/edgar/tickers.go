package edgar

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"filing_analyzer/pkg/core/cache"
)

// popularTickers resolves the most requested tickers without a network call.
var popularTickers = map[string]string{
	"AAPL":  "0000320193",
	"MSFT":  "0000789019",
	"GOOGL": "0001652044",
	"GOOG":  "0001652044",
	"AMZN":  "0001018724",
	"NVDA":  "0001045810",
	"META":  "0001326801",
	"TSLA":  "0001318605",
	"BRK.B": "0001067983",
	"BRK.A": "0001067983",
	"V":     "0001403161",
	"JPM":   "0000019617",
	"WMT":   "0000104169",
	"MA":    "0001141391",
	"PG":    "0000080424",
	"JNJ":   "0000200406",
	"HD":    "0000354950",
	"BAC":   "0000070858",
	"DIS":   "0001744489",
	"NFLX":  "0001065280",
	"CSCO":  "0000858877",
	"INTC":  "0000050863",
	"PEP":   "0000077476",
	"KO":    "0000021344",
	"NKE":   "0000320187",
}

// CompanyMatch is one search result.
type CompanyMatch struct {
	Ticker string `json:"ticker"`
	Name   string `json:"name"`
	CIK    string `json:"cik"`
}

type tickerEntry struct {
	CIK    int64  `json:"cik_str"`
	Ticker string `json:"ticker"`
	Title  string `json:"title"`
}

// tickerTable is company_tickers.json in file order, indexed by ticker.
type tickerTable struct {
	entries  []CompanyMatch
	byTicker map[string]string
	loadedAt time.Time
}

// NormalizeTicker upper-cases and trims a ticker symbol.
func NormalizeTicker(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}

// LookupCIK resolves a ticker to a 10 digit CIK. Popular tickers resolve
// locally; the rest go through SEC's ticker table.
func (c *Client) LookupCIK(ctx context.Context, ticker string) (string, error) {
	normalized := NormalizeTicker(ticker)
	if normalized == "" {
		return "", fmt.Errorf("empty ticker: %w", ErrTickerNotFound)
	}

	if cik, ok := popularTickers[normalized]; ok {
		return cik, nil
	}

	key := "sec_cik_" + normalized
	var cik string
	if cache.GetJSON(c.cache, key, &cik) && cik != "" {
		return cik, nil
	}

	table, err := c.tickerTable(ctx)
	if err != nil {
		return "", err
	}
	cik, ok := table.byTicker[normalized]
	if !ok {
		return "", fmt.Errorf("ticker %s: %w", normalized, ErrTickerNotFound)
	}

	if err := cache.SetJSON(c.cache, key, cik, cache.TTLResolvedCIK); err != nil {
		c.log.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
	return cik, nil
}

// SearchCompanies returns up to limit companies whose ticker or name
// contains query, case-insensitively.
func (c *Client) SearchCompanies(ctx context.Context, query string, limit int) ([]CompanyMatch, error) {
	if limit <= 0 {
		limit = 10
	}
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return []CompanyMatch{}, nil
	}

	table, err := c.tickerTable(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]CompanyMatch, 0, limit)
	for _, m := range table.entries {
		if strings.Contains(strings.ToLower(m.Name), q) || strings.Contains(strings.ToLower(m.Ticker), q) {
			results = append(results, m)
			if len(results) >= limit {
				break
			}
		}
	}
	return results, nil
}

// tickerTable lazily loads the ticker table and reloads it once it is older
// than its TTL.
func (c *Client) tickerTable(ctx context.Context) (*tickerTable, error) {
	c.tickerMu.RLock()
	table := c.tickers
	c.tickerMu.RUnlock()
	if table != nil && time.Since(table.loadedAt) < cache.TTLTickerTable {
		return table, nil
	}

	c.tickerMu.Lock()
	defer c.tickerMu.Unlock()
	if c.tickers != nil && time.Since(c.tickers.loadedAt) < cache.TTLTickerTable {
		return c.tickers, nil
	}

	c.log.Info("loading ticker table from SEC")
	url := c.wwwURL + "/files/company_tickers.json"
	body, err := c.fetchCached(ctx, url, "sec_ticker_mappings", cache.TTLTickerTable)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch company tickers: %w", err)
	}

	table, err = parseTickerTable(body)
	if err != nil {
		if c.cache != nil {
			_ = c.cache.Delete("sec_ticker_mappings")
		}
		return nil, err
	}
	c.tickers = table
	c.log.Info("ticker table loaded", zap.Int("tickers", len(table.entries)))
	return table, nil
}

// parseTickerTable decodes {"0": {"cik_str":..,"ticker":..,"title":..}, ...}
// keeping the numeric key order.
func parseTickerTable(body []byte) (*tickerTable, error) {
	var raw map[string]tickerEntry
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse ticker JSON: %w", err)
	}

	type keyed struct {
		idx   int
		entry tickerEntry
	}
	ordered := make([]keyed, 0, len(raw))
	for k, e := range raw {
		idx, err := strconv.Atoi(k)
		if err != nil {
			idx = len(raw)
		}
		ordered = append(ordered, keyed{idx: idx, entry: e})
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].idx != ordered[j].idx {
			return ordered[i].idx < ordered[j].idx
		}
		return ordered[i].entry.Ticker < ordered[j].entry.Ticker
	})

	table := &tickerTable{
		entries:  make([]CompanyMatch, 0, len(ordered)),
		byTicker: make(map[string]string, len(ordered)),
		loadedAt: time.Now(),
	}
	for _, k := range ordered {
		cik := fmt.Sprintf("%010d", k.entry.CIK)
		ticker := strings.ToUpper(k.entry.Ticker)
		table.entries = append(table.entries, CompanyMatch{Ticker: ticker, Name: k.entry.Title, CIK: cik})
		if _, exists := table.byTicker[ticker]; !exists {
			table.byTicker[ticker] = cik
		}
	}
	return table, nil
}
