// Package filings serves the SEC backed read endpoints: stock data, company
// search, material events and insider activity.
package filings

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"filing_analyzer/pkg/api/response"
	"filing_analyzer/pkg/core/activity"
	"filing_analyzer/pkg/core/edgar"
	"filing_analyzer/pkg/core/logger"
	"filing_analyzer/pkg/core/metrics"
)

const (
	searchLimit    = 10
	minQueryLength = 2
)

type StockService interface {
	Stock(ctx context.Context, ticker string) (*metrics.StockData, error)
}

type Searcher interface {
	SearchCompanies(ctx context.Context, query string, limit int) ([]edgar.CompanyMatch, error)
}

type ActivityService interface {
	Events(ctx context.Context, ticker string, excerpts bool) ([]activity.Event, error)
	Insiders(ctx context.Context, ticker string) (*activity.Insiders, error)
}

// Handler holds dependencies for the filing endpoints
type Handler struct {
	Stocks   StockService
	Search   Searcher
	Activity ActivityService
	log      *zap.Logger
}

// NewHandler creates a new filings handler
func NewHandler(stocks StockService, search Searcher, act ActivityService) *Handler {
	return &Handler{
		Stocks:   stocks,
		Search:   search,
		Activity: act,
		log:      logger.Named("api"),
	}
}

// Register mounts the endpoints on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/stock/{ticker}", h.HandleStock)
	mux.HandleFunc("/api/search", h.HandleSearch)
	mux.HandleFunc("/api/events/{ticker}", h.HandleEvents)
	mux.HandleFunc("/api/insiders/{ticker}", h.HandleInsiders)
}

func ticker(w http.ResponseWriter, r *http.Request) (string, bool) {
	t := edgar.NormalizeTicker(r.PathValue("ticker"))
	if t == "" {
		response.Error(w, http.StatusBadRequest, "Ticker symbol is required", nil)
		return "", false
	}
	return t, true
}

// HandleStock handles GET /api/stock/{ticker}
func (h *Handler) HandleStock(w http.ResponseWriter, r *http.Request) {
	if response.Preflight(w, r, http.MethodGet) || !response.Method(w, r, http.MethodGet) {
		return
	}
	t, ok := ticker(w, r)
	if !ok {
		return
	}

	sd, err := h.Stocks.Stock(r.Context(), t)
	if err != nil {
		status := response.StatusFor(err)
		h.log.Warn("stock request failed", zap.String("ticker", t), zap.Int("status", status), zap.Error(err))
		msg := "Failed to fetch stock data"
		if status == http.StatusNotFound {
			msg = "Stock data not available"
		}
		response.Error(w, status, msg, err)
		return
	}
	response.JSON(w, http.StatusOK, sd, response.CacheStock)
}

// HandleSearch handles GET /api/search?q=
func (h *Handler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	if response.Preflight(w, r, http.MethodGet) || !response.Method(w, r, http.MethodGet) {
		return
	}
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if len(q) < minQueryLength {
		response.JSON(w, http.StatusOK, []edgar.CompanyMatch{}, "")
		return
	}

	results, err := h.Search.SearchCompanies(r.Context(), q, searchLimit)
	if err != nil {
		h.log.Error("search failed", zap.String("query", q), zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "Search failed", err)
		return
	}
	response.JSON(w, http.StatusOK, results, response.CacheFiling)
}

// HandleEvents handles GET /api/events/{ticker}?excerpt=true
func (h *Handler) HandleEvents(w http.ResponseWriter, r *http.Request) {
	if response.Preflight(w, r, http.MethodGet) || !response.Method(w, r, http.MethodGet) {
		return
	}
	t, ok := ticker(w, r)
	if !ok {
		return
	}
	excerpts, _ := strconv.ParseBool(r.URL.Query().Get("excerpt"))

	events, err := h.Activity.Events(r.Context(), t, excerpts)
	if err != nil {
		h.log.Warn("events request failed", zap.String("ticker", t), zap.Error(err))
		response.Error(w, response.StatusFor(err), "Failed to fetch events", err)
		return
	}
	response.JSON(w, http.StatusOK, events, response.CacheFiling)
}

// HandleInsiders handles GET /api/insiders/{ticker}
func (h *Handler) HandleInsiders(w http.ResponseWriter, r *http.Request) {
	if response.Preflight(w, r, http.MethodGet) || !response.Method(w, r, http.MethodGet) {
		return
	}
	t, ok := ticker(w, r)
	if !ok {
		return
	}

	ins, err := h.Activity.Insiders(r.Context(), t)
	if err != nil {
		h.log.Warn("insiders request failed", zap.String("ticker", t), zap.Error(err))
		response.Error(w, response.StatusFor(err), "Failed to fetch insider activity", err)
		return
	}
	response.JSON(w, http.StatusOK, ins, response.CacheFiling)
}
