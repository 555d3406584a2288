package facts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeKeepsLaterFiling(t *testing.T) {
	original := annual(2023, "2023-01-01", "2023-12-31", 100, "2024-02-15")
	restated := annual(2023, "2023-01-01", "2023-12-31", 105, "2024-06-01")

	for name, order := range map[string][][]Fact{
		"restatement second": {{original}, {restated}},
		"restatement first":  {{restated}, {original}},
	} {
		t.Run(name, func(t *testing.T) {
			merged := Merge(order...)
			require.Len(t, merged, 1)
			assert.Equal(t, 105.0, merged[0].Value)
		})
	}
}

func TestMergeTieOnFiledDate(t *testing.T) {
	// Same 10-Q reports a three month and a six month value for one period end.
	threeMonths := ytd(2024, Q2, "2024-04-01", "2024-06-30", 30, "2024-08-01")
	sixMonths := ytd(2024, Q2, "2024-01-01", "2024-06-30", 55, "2024-08-01")

	merged := Merge([]Fact{threeMonths, sixMonths})
	require.Len(t, merged, 1)
	assert.Equal(t, 55.0, merged[0].Value)

	merged = Merge([]Fact{sixMonths, threeMonths})
	require.Len(t, merged, 1)
	assert.Equal(t, 55.0, merged[0].Value)

	// Without span information the first seen is kept.
	a := instant(FormAnnual, 2024, FY, "2024-12-31", 1, "2025-02-01")
	b := instant(FormAnnual, 2024, FY, "2024-12-31", 2, "2025-02-01")
	merged = Merge([]Fact{a, b})
	require.Len(t, merged, 1)
	assert.Equal(t, 1.0, merged[0].Value)
}

func TestMergeIdempotent(t *testing.T) {
	series := Merge(calendarYear(2023, 10, 25, 45, 70), calendarYear(2024, 12, 30, 50, 80))
	again := Merge(series, series)
	assert.Equal(t, series, again)

	seen := make(map[PeriodKey]bool)
	for _, f := range again {
		assert.False(t, seen[f.Key()], "duplicate key %s", f.Key())
		seen[f.Key()] = true
	}
}

func TestMergeKeepsFirstSeenOrder(t *testing.T) {
	a := annual(2022, "2022-01-01", "2022-12-31", 1, "2023-02-01")
	b := annual(2023, "2023-01-01", "2023-12-31", 2, "2024-02-01")
	c := annual(2024, "2024-01-01", "2024-12-31", 3, "2025-02-01")

	merged := Merge([]Fact{b, a}, []Fact{c, a})
	require.Len(t, merged, 3)
	assert.Equal(t, []float64{2, 1, 3}, []float64{merged[0].Value, merged[1].Value, merged[2].Value})
}

func TestMergeConceptsAcrossTagRename(t *testing.T) {
	src := fakeSource{
		"SalesRevenueNet/USD": {
			annual(2017, "2017-01-01", "2017-12-31", 90, "2018-02-01"),
		},
		"RevenueFromContractWithCustomerExcludingAssessedTax/USD": {
			annual(2018, "2018-01-01", "2018-12-31", 100, "2019-02-01"),
			// comparative for 2017 carried in the 2018 10-K under the new tag
			{Concept: "RevenueFromContractWithCustomerExcludingAssessedTax", PeriodStart: date("2017-01-01"),
				PeriodEnd: date("2017-12-31"), Value: 90, FiscalYear: 2018, FiscalPeriod: FY,
				Form: FormAnnual, Filed: date("2019-02-01")},
		},
	}

	series := MergeConcepts(src, []string{
		"RevenueFromContractWithCustomerExcludingAssessedTax", "Revenues", "SalesRevenueNet",
	}, USD)
	assert.Len(t, series, 3)

	latest, ok := LatestAnnual(series)
	require.True(t, ok)
	assert.Equal(t, 100.0, latest.Value)

	assert.Nil(t, MergeConcepts(nil, []string{"Revenues"}, USD))
	assert.Empty(t, MergeConcepts(src, []string{"Missing"}, USD))
}
