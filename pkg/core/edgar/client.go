// Package edgar fetches company facts, submissions and filing documents from
// SEC EDGAR.
//
// SEC requires a descriptive User-Agent and allows at most 10 requests per
// second; the Client enforces both. Responses are kept in a cache.Cache with a
// TTL per data class.
package edgar

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"filing_analyzer/pkg/core/cache"
	"filing_analyzer/pkg/core/logger"
)

const (
	DefaultDataURL   = "https://data.sec.gov"
	DefaultWWWURL    = "https://www.sec.gov"
	DefaultUserAgent = "Filing-Analyzer admin@example.com"
	DefaultTimeout   = 30 * time.Second
	// DefaultRateLimit is SEC's fair access limit in requests per second.
	DefaultRateLimit = 10
)

var (
	ErrAccessDenied   = errors.New("SEC API access denied, check User-Agent header")
	ErrNotFound       = errors.New("company not found in SEC database")
	ErrTickerNotFound = errors.New("ticker not found in SEC database")
)

// StatusError is returned for any other non-200 upstream response.
type StatusError struct {
	Code int
	URL  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("SEC API error: HTTP %d for %s", e.Code, e.URL)
}

// Client talks to SEC EDGAR.
type Client struct {
	httpClient *http.Client
	userAgent  string
	dataURL    string
	wwwURL     string
	limiter    *rate.Limiter
	cache      cache.Cache
	log        *zap.Logger

	tickerMu sync.RWMutex
	tickers  *tickerTable
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithUserAgent sets the User-Agent sent with every request.
func WithUserAgent(userAgent string) ClientOption {
	return func(c *Client) {
		if userAgent != "" {
			c.userAgent = userAgent
		}
	}
}

// WithRateLimit sets the request rate in requests per second.
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		if requestsPerSecond > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
		}
	}
}

// WithCache sets the response cache. A nil cache disables caching.
func WithCache(ch cache.Cache) ClientOption {
	return func(c *Client) {
		c.cache = ch
	}
}

// WithBaseURLs overrides the data.sec.gov and www.sec.gov hosts.
func WithBaseURLs(dataURL, wwwURL string) ClientOption {
	return func(c *Client) {
		c.dataURL = strings.TrimRight(dataURL, "/")
		c.wwwURL = strings.TrimRight(wwwURL, "/")
	}
}

// NewClient creates a Client with an in-memory cache.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		userAgent:  DefaultUserAgent,
		dataURL:    DefaultDataURL,
		wwwURL:     DefaultWWWURL,
		limiter:    rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		cache:      cache.NewMemoryCache(),
		log:        logger.Named("edgar"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Cache returns the response cache, which may be nil.
func (c *Client) Cache() cache.Cache {
	return c.cache
}

// fetch performs a rate-limited GET and returns the body.
func (c *Client) fetch(ctx context.Context, url string) (body []byte, err error) {
	ctx, span := logger.StartSpan(ctx, "edgar.fetch", attribute.String("http.url", url))
	defer func() { logger.EndSpan(span, err) }()

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json, text/html")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	c.log.Debug("upstream response",
		append(logger.TraceFields(ctx),
			zap.String("url", url),
			zap.Int("status", resp.StatusCode),
			zap.Duration("elapsed", time.Since(start)))...)

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusForbidden:
		return nil, ErrAccessDenied
	case http.StatusNotFound:
		return nil, ErrNotFound
	default:
		return nil, &StatusError{Code: resp.StatusCode, URL: url}
	}

	body, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return body, nil
}

// fetchCached returns the body for url from the cache, fetching and storing
// it on a miss.
func (c *Client) fetchCached(ctx context.Context, url, key string, ttl time.Duration) ([]byte, error) {
	if c.cache != nil {
		if body, ok := c.cache.Get(key); ok {
			c.log.Debug("cache hit", zap.String("key", key))
			return body, nil
		}
	}

	body, err := c.fetch(ctx, url)
	if err != nil {
		return nil, err
	}

	if c.cache != nil {
		if err := c.cache.Set(key, body, ttl); err != nil {
			c.log.Warn("cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return body, nil
}

func (c *Client) getJSON(ctx context.Context, url, key string, ttl time.Duration, v interface{}) error {
	body, err := c.fetchCached(ctx, url, key, ttl)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		if c.cache != nil {
			_ = c.cache.Delete(key)
		}
		return fmt.Errorf("failed to parse %s: %w", url, err)
	}
	return nil
}

// PadCIK normalizes a CIK to 10 zero-padded digits.
func PadCIK(cik string) string {
	cik = strings.TrimLeft(strings.TrimSpace(cik), "0")
	return fmt.Sprintf("%010s", cik)
}

// unpadCIK strips leading zeros for archive paths.
func unpadCIK(cik string) string {
	trimmed := strings.TrimLeft(cik, "0")
	if trimmed == "" {
		return "0"
	}
	return trimmed
}
