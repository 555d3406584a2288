package metrics

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"filing_analyzer/pkg/core/edgar"
	"filing_analyzer/pkg/core/facts"
	"filing_analyzer/pkg/core/store"
)

func entry(start, end string, val float64, fy int, fp, form, filed string) edgar.FactEntry {
	return edgar.FactEntry{
		Start: start,
		End:   end,
		Val:   val,
		Accn:  "0000320193-" + filed,
		FY:    &fy,
		FP:    &fp,
		Form:  form,
		Filed: filed,
	}
}

func usd(entries ...edgar.FactEntry) edgar.ConceptData {
	return edgar.ConceptData{Units: map[string][]edgar.FactEntry{"USD": entries}}
}

// sampleFacts is a calendar-year filer with a full 2023 and a Q1 2024 10-Q.
func sampleFacts() *edgar.CompanyFacts {
	gaap := map[string]edgar.ConceptData{
		"Revenues": usd(
			entry("2022-01-01", "2022-12-31", 80, 2022, "FY", "10-K", "2023-02-01"),
			entry("2023-01-01", "2023-03-31", 20, 2023, "Q1", "10-Q", "2023-05-01"),
			entry("2023-01-01", "2023-06-30", 45, 2023, "Q2", "10-Q", "2023-08-01"),
			entry("2023-01-01", "2023-09-30", 72, 2023, "Q3", "10-Q", "2023-11-01"),
			entry("2022-01-01", "2022-12-31", 80, 2023, "FY", "10-K", "2024-02-01"),
			entry("2023-01-01", "2023-12-31", 100, 2023, "FY", "10-K", "2024-02-01"),
			entry("2023-01-01", "2023-03-31", 20, 2024, "Q1", "10-Q", "2024-05-01"),
			entry("2024-01-01", "2024-03-31", 28, 2024, "Q1", "10-Q", "2024-05-01"),
		),
		"NetIncomeLoss": usd(
			entry("2021-01-01", "2021-12-31", 20, 2021, "FY", "10-K", "2022-02-01"),
			entry("2022-01-01", "2022-12-31", 25, 2022, "FY", "10-K", "2023-02-01"),
			entry("2023-01-01", "2023-03-31", 6, 2023, "Q1", "10-Q", "2023-05-01"),
			entry("2022-01-01", "2022-12-31", 25, 2023, "FY", "10-K", "2024-02-01"),
			entry("2023-01-01", "2023-12-31", 30, 2023, "FY", "10-K", "2024-02-01"),
			entry("2024-01-01", "2024-03-31", 8, 2024, "Q1", "10-Q", "2024-05-01"),
		),
		"Assets": usd(
			entry("", "2023-12-31", 500, 2023, "FY", "10-K", "2024-02-01"),
			entry("", "2024-03-31", 520, 2024, "Q1", "10-Q", "2024-05-01"),
		),
		"AssetsCurrent": usd(
			entry("", "2024-03-31", 300, 2024, "Q1", "10-Q", "2024-05-01"),
		),
		"LiabilitiesCurrent": usd(
			entry("", "2024-03-31", 150, 2024, "Q1", "10-Q", "2024-05-01"),
		),
		"StockholdersEquity": usd(
			entry("", "2023-12-31", 200, 2023, "FY", "10-K", "2024-02-01"),
			entry("", "2024-03-31", 260, 2024, "Q1", "10-Q", "2024-05-01"),
		),
		"LongTermDebtNoncurrent": usd(
			entry("", "2023-12-31", 150, 2023, "FY", "10-K", "2024-02-01"),
			entry("", "2024-03-31", 140, 2024, "Q1", "10-Q", "2024-05-01"),
		),
		"CashAndCashEquivalentsAtCarryingValue": usd(
			entry("", "2023-12-31", 40, 2023, "FY", "10-K", "2024-02-01"),
		),
		"Cash": usd(
			entry("", "2023-12-31", 999, 2023, "FY", "10-K", "2024-02-01"),
		),
		"NetCashProvidedByUsedInOperatingActivities": usd(
			entry("2022-01-01", "2022-12-31", 50, 2022, "FY", "10-K", "2023-02-01"),
			entry("2023-01-01", "2023-12-31", 60, 2023, "FY", "10-K", "2024-02-01"),
		),
		"PaymentsToAcquirePropertyPlantAndEquipment": usd(
			entry("2023-01-01", "2023-12-31", 10, 2023, "FY", "10-K", "2024-02-01"),
		),
		"PaymentsOfDividends": usd(
			entry("2023-01-01", "2023-12-31", -5, 2023, "FY", "10-K", "2024-02-01"),
		),
	}
	return &edgar.CompanyFacts{
		CIK:        json.Number("320193"),
		EntityName: "Apple Inc.",
		Taxonomies: map[string]map[string]edgar.ConceptData{"us-gaap": gaap},
	}
}

func sampleSubmissions() *edgar.Submissions {
	return &edgar.Submissions{CIK: "320193", Name: "Apple Inc.", Exchanges: []string{"Nasdaq"}}
}

func TestAssembleIdentity(t *testing.T) {
	sd := Assemble(" aapl ", sampleFacts(), sampleSubmissions(), nil)
	require.NotNil(t, sd)

	assert.Equal(t, "AAPL", sd.Symbol)
	assert.Equal(t, "Apple Inc.", sd.Name)
	assert.Equal(t, "0000320193", sd.CIK)
	assert.Equal(t, "Nasdaq", sd.Exchange)
	assert.Equal(t, "Technology", sd.Sector)
	assert.Equal(t, "2024-02-01", sd.FilingDate)
	assert.Equal(t, "2023-12-31", sd.PeriodEndDate)
	require.NotNil(t, sd.FiscalYear)
	assert.Equal(t, 2023, *sd.FiscalYear)
}

func TestAssembleAnnualMetrics(t *testing.T) {
	m := Assemble("AAPL", sampleFacts(), nil, nil).Metrics

	require.NotNil(t, m.Revenue)
	assert.Equal(t, 100.0, *m.Revenue)
	assert.Equal(t, 30.0, *m.NetIncome)
	assert.Equal(t, 500.0, *m.TotalAssets)
	assert.Equal(t, 40.0, *m.Cash, "cash chain stops at the first alias with data")
	assert.Equal(t, 150.0, *m.TotalDebt)
	assert.Equal(t, 110.0, *m.NetDebt)
	assert.Equal(t, 10.0, *m.Capex)
	assert.Equal(t, 50.0, *m.FreeCashFlow)
	assert.Equal(t, 5.0, *m.DividendsPaid)

	assert.Nil(t, m.GrossProfit)
	assert.Nil(t, m.ShortTermDebt)
	assert.Nil(t, m.StockRepurchases)
	assert.Nil(t, m.SharesOutstanding)
}

func TestAssembleQuarterly(t *testing.T) {
	q := Assemble("AAPL", sampleFacts(), nil, nil).Quarterly
	require.NotNil(t, q)

	assert.Equal(t, "2024 Q1", q.LatestQuarter)
	assert.Equal(t, "2024-03-31", q.LatestQuarterEndDate)
	assert.Equal(t, "2024-05-01", q.LatestQuarterFiledDate)

	want := []QuarterPoint{
		{Quarter: "2024 Q1", Value: 28, EndDate: "2024-03-31"},
		{Quarter: "2023 Q4", Value: 28, EndDate: "2023-12-31"},
		{Quarter: "2023 Q3", Value: 27, EndDate: "2023-09-30"},
		{Quarter: "2023 Q2", Value: 25, EndDate: "2023-06-30"},
		{Quarter: "2023 Q1", Value: 20, EndDate: "2023-03-31"},
	}
	assert.Equal(t, want, q.QuarterlyRevenue)
	require.NotNil(t, q.RevenueQoQ)
	assert.InDelta(t, 0.0, *q.RevenueQoQ, 1e-9)

	// 2023 net income has Q1 and FY only, so only Q1 quarters exist.
	require.Len(t, q.QuarterlyNetIncome, 2)
	assert.Equal(t, "2024 Q1", q.QuarterlyNetIncome[0].Quarter)
	require.NotNil(t, q.NetIncomeQoQ)
	assert.InDelta(t, 33.333, *q.NetIncomeQoQ, 1e-3)
}

func TestAssembleLatestMetricsAndRatios(t *testing.T) {
	sd := Assemble("AAPL", sampleFacts(), nil, nil)
	lm := sd.LatestMetrics

	require.NotNil(t, lm.TTMRevenue)
	assert.Equal(t, 108.0, *lm.TTMRevenue)
	assert.Equal(t, 32.0, *lm.TTMNetIncome)
	assert.Nil(t, lm.TTMOperatingIncome)
	assert.Equal(t, 520.0, *lm.LatestTotalAssets)
	assert.Equal(t, 260.0, *lm.LatestStockholdersEquity)
	assert.Equal(t, 140.0, *lm.LatestTotalDebt)

	rev := sd.TTM[facts.Revenue]
	assert.Equal(t, facts.Reconstructed, rev.Method)
	assert.Equal(t, "2024-03-31", rev.AsOf)
	assert.Equal(t, facts.NoAnchor, sd.TTM[facts.OperatingIncome].Method)

	r := sd.Ratios
	require.NotNil(t, r.ROE)
	assert.InDelta(t, 32.0/260*100, *r.ROE, 1e-9)
	assert.InDelta(t, 2.0, *r.CurrentRatio, 1e-9)
	assert.InDelta(t, 2.0, *r.QuickRatio, 1e-9)
	assert.InDelta(t, 140.0/260, *r.DebtToEquity, 1e-9)
	assert.InDelta(t, 32.0/108*100, *r.NetMargin, 1e-9)
	assert.Nil(t, r.GrossMargin)
	assert.Nil(t, r.InterestCoverage)
}

func TestAssembleHistoryAndGrowth(t *testing.T) {
	sd := Assemble("AAPL", sampleFacts(), nil, nil)
	h := sd.HistoricalAnnual

	assert.Equal(t, []YearPoint{
		{FiscalYear: 2023, Value: 100, EndDate: "2023-12-31"},
		{FiscalYear: 2022, Value: 80, EndDate: "2022-12-31"},
	}, h.Revenue)
	require.Len(t, h.NetIncome, 3)

	assert.Equal(t, []YearPoint{
		{FiscalYear: 2023, Value: 50, EndDate: "2023-12-31"},
		{FiscalYear: 2022, Value: 50, EndDate: "2022-12-31"},
	}, h.FreeCashFlow)

	require.NotNil(t, sd.Growth.RevenueCAGR)
	assert.InDelta(t, 25.0, *sd.Growth.RevenueCAGR, 1e-9)
	require.NotNil(t, sd.Growth.NetIncomeCAGR)
	assert.InDelta(t, 22.474, *sd.Growth.NetIncomeCAGR, 1e-3)
	assert.Equal(t, 2, sd.Growth.Years)
}

func TestAssembleSparseCompany(t *testing.T) {
	cf := &edgar.CompanyFacts{
		CIK:        json.Number("1"),
		EntityName: "Shell Co",
		Taxonomies: map[string]map[string]edgar.ConceptData{"us-gaap": {}},
	}
	sd := Assemble("SHEL", cf, nil, nil)
	require.NotNil(t, sd)

	assert.Equal(t, edgar.DefaultExchange, sd.Exchange)
	assert.Empty(t, sd.Sector)
	assert.Nil(t, sd.FiscalYear)
	assert.Nil(t, sd.Quarterly)
	assert.Nil(t, sd.Metrics.Revenue)
	assert.Nil(t, sd.Metrics.TotalDebt)
	assert.Nil(t, sd.Metrics.FreeCashFlow)
	assert.Nil(t, sd.Ratios.ROE)
	assert.Empty(t, sd.HistoricalAnnual.Revenue)
	assert.Nil(t, sd.Growth.RevenueCAGR)

	assert.Nil(t, Assemble("X", nil, nil, nil))
}

func TestAssembleCustomConcepts(t *testing.T) {
	table := facts.DefaultConcepts()
	rev := table[facts.Revenue]
	rev.Aliases = []string{"NetIncomeLoss"}
	table[facts.Revenue] = rev

	a := &Assembler{Concepts: table, QuarterCount: 1, HistoryYears: 1}
	sd := a.Assemble("AAPL", sampleFacts(), nil)

	assert.Equal(t, 30.0, *sd.Metrics.Revenue)
	assert.Len(t, sd.Quarterly.QuarterlyRevenue, 1)
	assert.Len(t, sd.HistoricalAnnual.Revenue, 1)
}

type fakeFetcher struct {
	cf      *edgar.CompanyFacts
	subs    *edgar.Submissions
	cikErr  error
	factErr error
	subsErr error
}

func (f *fakeFetcher) LookupCIK(_ context.Context, ticker string) (string, error) {
	if f.cikErr != nil {
		return "", f.cikErr
	}
	return "0000320193", nil
}

func (f *fakeFetcher) FetchCompanyFacts(context.Context, string) (*edgar.CompanyFacts, error) {
	return f.cf, f.factErr
}

func (f *fakeFetcher) FetchSubmissions(context.Context, string) (*edgar.Submissions, error) {
	return f.subs, f.subsErr
}

func TestServiceStock(t *testing.T) {
	snapshots, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "snap.db"))
	require.NoError(t, err)
	defer snapshots.Close()

	svc := NewService(&fakeFetcher{cf: sampleFacts(), subs: sampleSubmissions()}, nil, snapshots)
	sd, err := svc.Stock(context.Background(), "aapl")
	require.NoError(t, err)
	assert.Equal(t, "AAPL", sd.Symbol)

	snap, err := snapshots.Latest(context.Background(), "AAPL", store.KindStock)
	require.NoError(t, err)
	var stored StockData
	require.NoError(t, snap.Decode(&stored))
	assert.Equal(t, 100.0, *stored.Metrics.Revenue)
}

func TestServiceStockErrors(t *testing.T) {
	ctx := context.Background()

	svc := NewService(&fakeFetcher{cikErr: edgar.ErrTickerNotFound}, nil, nil)
	_, err := svc.Stock(ctx, "NOPE")
	assert.True(t, errors.Is(err, edgar.ErrTickerNotFound))

	svc = NewService(&fakeFetcher{factErr: edgar.ErrNotFound}, nil, nil)
	_, err = svc.Stock(ctx, "AAPL")
	assert.ErrorIs(t, err, ErrNoData)

	empty := &edgar.CompanyFacts{CIK: json.Number("320193")}
	svc = NewService(&fakeFetcher{cf: empty}, nil, nil)
	_, err = svc.Stock(ctx, "AAPL")
	assert.ErrorIs(t, err, ErrNoData)

	upstream := errors.New("boom")
	svc = NewService(&fakeFetcher{factErr: upstream}, nil, nil)
	_, err = svc.Stock(ctx, "AAPL")
	assert.ErrorIs(t, err, upstream)
}

func TestServiceStockWithoutSubmissions(t *testing.T) {
	svc := NewService(&fakeFetcher{cf: sampleFacts(), subsErr: edgar.ErrAccessDenied}, nil, nil)
	sd, err := svc.Stock(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, edgar.DefaultExchange, sd.Exchange)
}
