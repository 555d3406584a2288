package facts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quartersOf(values []QuarterValue, fy int) map[FiscalPeriod]float64 {
	out := make(map[FiscalPeriod]float64)
	for _, q := range values {
		if q.FiscalYear == fy {
			out[q.Quarter] = q.Value
		}
	}
	return out
}

func TestQuarterlyValuesQuarterSum(t *testing.T) {
	series := Merge(calendarYear(2023, 10.5, 25.25, 45.1, 70.3))
	quarters := QuarterlyValues(series, 0)
	require.Len(t, quarters, 4)

	got := quartersOf(quarters, 2023)
	assert.InDelta(t, 10.5, got[Q1], 1e-9)
	assert.InDelta(t, 14.75, got[Q2], 1e-9)
	assert.InDelta(t, 19.85, got[Q3], 1e-9)
	assert.InDelta(t, 25.2, got[Q4], 1e-9)
	assert.InDelta(t, 70.3, got[Q1]+got[Q2]+got[Q3]+got[Q4], 1e-9)
}

func TestQuarterlyValuesMissingQuarter(t *testing.T) {
	series := Merge([]Fact{
		ytd(2024, Q1, "2024-01-01", "2024-03-31", 10, "2024-05-01"),
		ytd(2024, Q3, "2024-01-01", "2024-09-30", 45, "2024-11-01"),
		annual(2024, "2024-01-01", "2024-12-31", 70, "2025-02-15"),
	})

	quarters := QuarterlyValues(series, 8)
	require.Len(t, quarters, 2)
	got := quartersOf(quarters, 2024)
	assert.Equal(t, 10.0, got[Q1])
	assert.Equal(t, 25.0, got[Q4])
	_, hasQ2 := got[Q2]
	_, hasQ3 := got[Q3]
	assert.False(t, hasQ2)
	assert.False(t, hasQ3)
}

func TestQuarterlyValuesOrderingAndTruncation(t *testing.T) {
	series := Merge(
		calendarYear(2022, 8, 18, 30, 42),
		calendarYear(2023, 10, 25, 45, 70),
		calendarYear(2024, 12, 30, 50, 80),
	)

	all := QuarterlyValues(series, 100)
	require.Len(t, all, 12)
	for i := 1; i < len(all); i++ {
		assert.True(t, all[i-1].PeriodEnd.After(all[i].PeriodEnd), "not strictly descending at %d", i)
	}
	assert.Equal(t, "2024 Q4", all[0].Label())
	assert.Equal(t, 30.0, all[0].Value)

	latest := QuarterlyValues(series, 5)
	assert.Len(t, latest, 5)
	assert.Equal(t, all[:5], latest)

	assert.Len(t, QuarterlyValues(series, 0), DefaultQuarterCount)
}

func TestQuarterlyValuesIgnoresComparatives(t *testing.T) {
	// The FY2024 Q2 10-Q also reports FY2023 Q2 YTD tagged fy=2024.
	series := Merge([]Fact{
		ytd(2024, Q1, "2024-01-01", "2024-03-31", 12, "2024-05-01"),
		ytd(2024, Q1, "2023-01-01", "2023-03-31", 10, "2024-05-01"),
		ytd(2024, Q2, "2024-01-01", "2024-06-30", 30, "2024-08-01"),
		ytd(2024, Q2, "2023-01-01", "2023-06-30", 25, "2024-08-01"),
		ytd(2024, Q2, "2024-04-01", "2024-06-30", 18, "2024-08-01"),
	})

	got := quartersOf(QuarterlyValues(series, 8), 2024)
	assert.Equal(t, 12.0, got[Q1])
	assert.Equal(t, 18.0, got[Q2])
}

func TestQuarterlyValuesSkipsUnusableFacts(t *testing.T) {
	amended := ytd(2024, Q1, "2024-01-01", "2024-03-31", 999, "2024-06-01")
	amended.Form = FormOther
	amended.RawForm = "10-Q/A"

	noYear := ytd(0, Q1, "2024-01-01", "2024-03-31", 5, "2024-05-01")

	series := Merge([]Fact{amended}, []Fact{noYear})
	assert.Empty(t, QuarterlyValues(series, 8))
	assert.Empty(t, QuarterlyValues(nil, 8))
}
