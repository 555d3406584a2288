package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"filing_analyzer/pkg/core/activity"
	"filing_analyzer/pkg/core/edgar"
	"filing_analyzer/pkg/core/llm"
	"filing_analyzer/pkg/core/metrics"
	"filing_analyzer/pkg/core/prompt"
	"filing_analyzer/pkg/core/store"
)

type fakeStocks struct{ err error }

func (f fakeStocks) Stock(_ context.Context, ticker string) (*metrics.StockData, error) {
	if f.err != nil {
		return nil, f.err
	}
	rev := 383.3e9
	return &metrics.StockData{Symbol: ticker, Name: "Apple Inc.", CIK: "0000320193", Metrics: metrics.Metrics{Revenue: &rev}}, nil
}

type fakeActivity struct{ err error }

func (f fakeActivity) Events(_ context.Context, _ string, excerpts bool) ([]activity.Event, error) {
	if f.err != nil {
		return nil, f.err
	}
	ev := activity.Event{
		Filing:      edgar.Filing{FilingDate: "2024-05-02", Items: "2.02"},
		ParsedItems: edgar.ParseItems("2.02"),
	}
	if excerpts {
		ev.Excerpt = "Quarterly results released"
	}
	return []activity.Event{ev}, nil
}

func (f fakeActivity) Insiders(context.Context, string) (*activity.Insiders, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &activity.Insiders{
		Filings: []edgar.Filing{},
		Summary: edgar.InsiderSummary{TotalTransactions: 2, SellTransactions: 2, Sentiment: edgar.Bearish},
	}, nil
}

type fakeExecutor struct {
	out     string
	err     error
	system  string
	user    string
	options map[string]interface{}
}

func (f *fakeExecutor) ExecutePrompt(_ context.Context, _, user, system string, options map[string]interface{}) (string, error) {
	f.user, f.system, f.options = user, system, options
	return f.out, f.err
}

func (f *fakeExecutor) ProviderFor(string) string { return "claude" }

const modelOutput = "```markdown\n## Executive Summary\n\nRevenue reached **$383.30B**.\n\n## Final Conclusion & Research Recommendations\n\nLook at margins.\n```"

func newHandler(t *testing.T, exec *fakeExecutor, act fakeActivity) (*Handler, store.SnapshotStore) {
	snaps, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "snap.db"))
	require.NoError(t, err)
	t.Cleanup(func() { snaps.Close() })

	h := NewHandler(fakeStocks{}, act, exec, prompt.NewRegistry(), snaps)
	h.now = func() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) }
	return h, snaps
}

func serve(h *Handler, method, target string, body io.Reader) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	h.Register(mux)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(method, target, body))
	return rec
}

func TestHandleAnalyze(t *testing.T) {
	exec := &fakeExecutor{out: modelOutput}
	h, snaps := newHandler(t, exec, fakeActivity{})

	rec := serve(h, http.MethodPost, "/api/analyze/aapl", strings.NewReader(`{"excerpts": true}`))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.NotEmpty(t, res.ID)
	assert.Equal(t, "AAPL", res.Ticker)
	assert.Equal(t, "claude", res.Provider)
	assert.True(t, strings.HasPrefix(res.Analysis, "## Executive Summary"))
	assert.Contains(t, res.HTML, "<h2>Executive Summary</h2>")
	assert.Contains(t, res.HTML, "<strong>$383.30B</strong>")
	assert.Equal(t, []string{"Executive Summary", "Final Conclusion & Research Recommendations"}, res.Sections)
	assert.Equal(t, time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC), res.Timestamp)

	assert.Contains(t, exec.system, "CURRENT DATE: 2024-06-01")
	assert.Contains(t, exec.user, "# Filing analysis of AAPL")
	assert.Contains(t, exec.user, "Results of Operations and Financial Condition")
	assert.Contains(t, exec.user, "> Quarterly results released")
	assert.Contains(t, exec.user, "- Sentiment: bearish")
	assert.Equal(t, llm.DefaultMaxTokens, exec.options[llm.OptionMaxTokens])

	snap, err := snaps.Latest(context.Background(), "AAPL", store.KindAnalysis)
	require.NoError(t, err)
	assert.Equal(t, res.ID, snap.ID)
	assert.Equal(t, "0000320193", snap.CIK)
}

func TestHandleAnalyzeWithoutActivity(t *testing.T) {
	exec := &fakeExecutor{out: "## Summary\n\nok"}
	h, _ := newHandler(t, exec, fakeActivity{err: edgar.ErrAccessDenied})

	rec := serve(h, http.MethodPost, "/api/analyze/AAPL", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, exec.user, "material events")
	assert.NotContains(t, exec.user, "Insider activity")
}

func TestHandleAnalyzeErrors(t *testing.T) {
	tests := []struct {
		name   string
		stocks fakeStocks
		exec   *fakeExecutor
		body   string
		want   int
	}{
		{"unknown ticker", fakeStocks{err: fmt.Errorf("resolve: %w", edgar.ErrTickerNotFound)}, &fakeExecutor{}, "", http.StatusNotFound},
		{"missing api key", fakeStocks{}, &fakeExecutor{err: fmt.Errorf("claude: %w", llm.ErrMissingAPIKey)}, "", http.StatusInternalServerError},
		{"provider failure", fakeStocks{}, &fakeExecutor{err: errors.New("status 529")}, "", http.StatusBadGateway},
		{"empty output", fakeStocks{}, &fakeExecutor{out: "```\n```"}, "", http.StatusInternalServerError},
		{"bad body", fakeStocks{}, &fakeExecutor{out: "## A"}, "{", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler(tt.stocks, fakeActivity{}, tt.exec, prompt.NewRegistry(), nil)
			rec := serve(h, http.MethodPost, "/api/analyze/AAPL", strings.NewReader(tt.body))
			assert.Equal(t, tt.want, rec.Code)
		})
	}

	h := NewHandler(fakeStocks{}, fakeActivity{}, &fakeExecutor{}, nil, nil)
	assert.Equal(t, http.StatusMethodNotAllowed, serve(h, http.MethodGet, "/api/analyze/AAPL", nil).Code)
	assert.Equal(t, http.StatusOK, serve(h, http.MethodOptions, "/api/analyze/AAPL", nil).Code)
}

func TestHandleSnapshots(t *testing.T) {
	h, snaps := newHandler(t, &fakeExecutor{out: modelOutput}, fakeActivity{})
	ctx := context.Background()

	stockSnap, err := store.NewSnapshot("AAPL", "0000320193", store.KindStock, map[string]string{"symbol": "AAPL"})
	require.NoError(t, err)
	require.NoError(t, snaps.Save(ctx, stockSnap))
	require.Equal(t, http.StatusOK, serve(h, http.MethodPost, "/api/analyze/AAPL", nil).Code)

	rec := serve(h, http.MethodGet, "/api/snapshots/aapl", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var all []store.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &all))
	assert.Len(t, all, 2)

	rec = serve(h, http.MethodGet, "/api/snapshots/AAPL?kind=stock", nil)
	var stocks []store.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stocks))
	require.Len(t, stocks, 1)
	assert.Equal(t, stockSnap.ID, stocks[0].ID)

	rec = serve(h, http.MethodGet, "/api/snapshots/MSFT", nil)
	assert.JSONEq(t, `[]`, rec.Body.String())

	assert.Equal(t, http.StatusBadRequest, serve(h, http.MethodGet, "/api/snapshots/AAPL?kind=quote", nil).Code)

	h.Snapshots = nil
	assert.Equal(t, http.StatusServiceUnavailable, serve(h, http.MethodGet, "/api/snapshots/AAPL", nil).Code)
}
