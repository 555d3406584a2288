// Package analysis serves the language model filing analysis and the stored
// snapshots.
package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"filing_analyzer/pkg/api/response"
	"filing_analyzer/pkg/core/activity"
	"filing_analyzer/pkg/core/agent"
	"filing_analyzer/pkg/core/edgar"
	"filing_analyzer/pkg/core/llm"
	"filing_analyzer/pkg/core/logger"
	"filing_analyzer/pkg/core/metrics"
	"filing_analyzer/pkg/core/prompt"
	"filing_analyzer/pkg/core/store"
	"filing_analyzer/pkg/core/utils"
)

type StockService interface {
	Stock(ctx context.Context, ticker string) (*metrics.StockData, error)
}

type ActivityService interface {
	Events(ctx context.Context, ticker string, excerpts bool) ([]activity.Event, error)
	Insiders(ctx context.Context, ticker string) (*activity.Insiders, error)
}

// Executor runs a prompt for an agent. agent.Manager satisfies it.
type Executor interface {
	ExecutePrompt(ctx context.Context, agentType, prompt, systemPrompt string, options map[string]interface{}) (string, error)
	ProviderFor(agentType string) string
}

// Request is the optional POST body.
type Request struct {
	Excerpts bool `json:"excerpts"`
}

// Result is one generated analysis.
type Result struct {
	ID        string    `json:"id"`
	Ticker    string    `json:"ticker"`
	Provider  string    `json:"provider"`
	Analysis  string    `json:"analysis"`
	HTML      string    `json:"html"`
	Sections  []string  `json:"sections"`
	Timestamp time.Time `json:"timestamp"`
}

// Handler holds dependencies for the analysis endpoints
type Handler struct {
	Stocks    StockService
	Activity  ActivityService
	Agents    Executor
	Prompts   *prompt.Registry
	Snapshots store.SnapshotStore // optional

	now func() time.Time
	log *zap.Logger
}

// NewHandler creates a new analysis handler. prompts defaults to the global
// registry; snapshots may be nil.
func NewHandler(stocks StockService, act ActivityService, agents Executor, prompts *prompt.Registry, snapshots store.SnapshotStore) *Handler {
	if prompts == nil {
		prompts = prompt.Get()
	}
	return &Handler{
		Stocks:    stocks,
		Activity:  act,
		Agents:    agents,
		Prompts:   prompts,
		Snapshots: snapshots,
		now:       time.Now,
		log:       logger.Named("api"),
	}
}

// Register mounts the endpoints on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/analyze/{ticker}", h.HandleAnalyze)
	mux.HandleFunc("/api/snapshots/{ticker}", h.HandleSnapshots)
}

// HandleAnalyze handles POST /api/analyze/{ticker}
func (h *Handler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	if response.Preflight(w, r, http.MethodPost) || !response.Method(w, r, http.MethodPost) {
		return
	}
	ticker := edgar.NormalizeTicker(r.PathValue("ticker"))
	if ticker == "" {
		response.Error(w, http.StatusBadRequest, "Ticker symbol is required", nil)
		return
	}

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		response.Error(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	ctx := r.Context()
	stock, err := h.Stocks.Stock(ctx, ticker)
	if err != nil {
		response.Error(w, response.StatusFor(err), "Failed to fetch stock data", err)
		return
	}

	// Events and insiders enrich the prompt; the analysis runs without them.
	var events []prompt.Event
	if evs, err := h.Activity.Events(ctx, ticker, req.Excerpts); err != nil {
		h.log.Warn("events unavailable for analysis", zap.String("ticker", ticker), zap.Error(err))
	} else {
		events = promptEvents(evs)
	}
	var insiders *edgar.InsiderSummary
	if ins, err := h.Activity.Insiders(ctx, ticker); err != nil {
		h.log.Warn("insiders unavailable for analysis", zap.String("ticker", ticker), zap.Error(err))
	} else {
		insiders = &ins.Summary
	}

	now := h.now().UTC()
	system, user, err := h.Prompts.BuildAnalysis(stock, events, insiders, now)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "Failed to build prompt", err)
		return
	}

	out, err := h.Agents.ExecutePrompt(ctx, agent.AgentAnalysis, user, system, map[string]interface{}{
		llm.OptionTemperature: llm.DefaultTemperature,
		llm.OptionMaxTokens:   llm.DefaultMaxTokens,
	})
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, llm.ErrMissingAPIKey) {
			status = http.StatusInternalServerError
		}
		h.log.Error("analysis failed", zap.String("ticker", ticker), zap.Error(err))
		response.Error(w, status, "Failed to generate analysis", err)
		return
	}

	markdown := utils.CleanMarkdown(out)
	if markdown == "" {
		response.Error(w, http.StatusInternalServerError, "No analysis generated", nil)
		return
	}
	if !utils.ValidateMarkdown(markdown) {
		h.log.Warn("analysis has no sections", zap.String("ticker", ticker))
	}
	html, err := utils.RenderHTML(markdown)
	if err != nil {
		response.Error(w, http.StatusInternalServerError, "Failed to render analysis", err)
		return
	}

	res := Result{
		ID:        uuid.NewString(),
		Ticker:    ticker,
		Provider:  h.Agents.ProviderFor(agent.AgentAnalysis),
		Analysis:  markdown,
		HTML:      html,
		Sections:  utils.Headings(markdown),
		Timestamp: now,
	}
	h.save(ctx, stock.CIK, res)
	response.JSON(w, http.StatusOK, res, "")
}

func (h *Handler) save(ctx context.Context, cik string, res Result) {
	if h.Snapshots == nil {
		return
	}
	snap, err := store.NewSnapshot(res.Ticker, cik, store.KindAnalysis, res)
	if err == nil {
		snap.ID = res.ID
		err = h.Snapshots.Save(ctx, snap)
	}
	if err != nil {
		h.log.Warn("analysis snapshot not saved", zap.String("ticker", res.Ticker), zap.Error(err))
	}
}

func promptEvents(evs []activity.Event) []prompt.Event {
	out := make([]prompt.Event, 0, len(evs))
	for _, e := range evs {
		out = append(out, prompt.Event{FilingDate: e.FilingDate, Items: e.ParsedItems, Excerpt: e.Excerpt})
	}
	return out
}

// HandleSnapshots handles GET /api/snapshots/{ticker}?kind=&limit=
func (h *Handler) HandleSnapshots(w http.ResponseWriter, r *http.Request) {
	if response.Preflight(w, r, http.MethodGet) || !response.Method(w, r, http.MethodGet) {
		return
	}
	if h.Snapshots == nil {
		response.Error(w, http.StatusServiceUnavailable, "Snapshot storage is not configured", nil)
		return
	}
	ticker := edgar.NormalizeTicker(r.PathValue("ticker"))
	if ticker == "" {
		response.Error(w, http.StatusBadRequest, "Ticker symbol is required", nil)
		return
	}

	q := r.URL.Query()
	kind := store.Kind(q.Get("kind"))
	if kind != "" && !kind.Valid() {
		response.Error(w, http.StatusBadRequest, "Unknown snapshot kind", nil)
		return
	}
	limit, _ := strconv.Atoi(q.Get("limit"))

	snaps, err := h.Snapshots.List(r.Context(), ticker, kind, limit)
	if err != nil {
		h.log.Error("snapshot list failed", zap.String("ticker", ticker), zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "Failed to list snapshots", err)
		return
	}
	if snaps == nil {
		snaps = []store.Snapshot{}
	}
	response.JSON(w, http.StatusOK, snaps, "")
}
