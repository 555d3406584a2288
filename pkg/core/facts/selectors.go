package facts

import "sort"

// DefaultHistoryYears is the length of a historical annual series when none
// is given.
const DefaultHistoryYears = 5

// LatestAnnual returns the full-year fact from an annual filing with the
// latest period end.
func LatestAnnual(series Series) (Fact, bool) {
	return latest(series, Fact.IsAnnual)
}

// LatestQuarterly returns the quarterly-filing fact with the latest period
// end, whatever its fiscal period.
func LatestQuarterly(series Series) (Fact, bool) {
	return latest(series, Fact.IsQuarterly)
}

// LatestPointInTime returns the most recent fact from either an annual or a
// quarterly filing. Balance-sheet concepts are snapshots, so no quarter
// reconstruction applies.
func LatestPointInTime(series Series) (Fact, bool) {
	return latest(series, func(f Fact) bool {
		return f.Form == FormAnnual || f.Form == FormQuarterly
	})
}

// HistoricalAnnual returns up to n full-year values (DefaultHistoryYears when
// n <= 0), newest first, one per fiscal year. When a fiscal year appears more
// than once the fact with the later period end is kept.
func HistoricalAnnual(series Series, n int) []AnnualValue {
	if n <= 0 {
		n = DefaultHistoryYears
	}

	byYear := make(map[int]Fact)
	for _, f := range series {
		if !f.IsAnnual() {
			continue
		}
		if existing, ok := byYear[f.FiscalYear]; !ok || newer(f, existing) {
			byYear[f.FiscalYear] = f
		}
	}

	out := make([]AnnualValue, 0, len(byYear))
	for fy, f := range byYear {
		out = append(out, AnnualValue{
			FiscalYear: fy,
			Value:      f.Value,
			PeriodEnd:  f.PeriodEnd,
			Filed:      f.Filed,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].PeriodEnd.Equal(out[j].PeriodEnd) {
			return out[i].PeriodEnd.After(out[j].PeriodEnd)
		}
		return out[i].FiscalYear > out[j].FiscalYear
	})

	if len(out) > n {
		out = out[:n]
	}
	return out
}

// AnnualFor returns the full-year fact for a fiscal year.
func AnnualFor(series Series, fiscalYear int) (Fact, bool) {
	return latest(series, func(f Fact) bool {
		return f.IsAnnual() && f.FiscalYear == fiscalYear
	})
}

// QuarterlyFor returns the quarterly fact for a fiscal year and period.
func QuarterlyFor(series Series, fiscalYear int, period FiscalPeriod) (Fact, bool) {
	return latest(series, func(f Fact) bool {
		return f.IsQuarterly() && f.FiscalYear == fiscalYear && f.FiscalPeriod == period
	})
}

func latest(series Series, keep func(Fact) bool) (Fact, bool) {
	var best Fact
	found := false
	for _, f := range series {
		if !keep(f) {
			continue
		}
		if !found || newer(f, best) {
			best = f
			found = true
		}
	}
	return best, found
}
