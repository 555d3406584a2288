package facts

import (
	"math"
	"sort"
)

// DefaultQuarterCount is the number of quarters returned when none is given.
const DefaultQuarterCount = 8

// yearSlots holds the cumulative facts reported for one fiscal year.
type yearSlots struct {
	q1, q2, q3, fy *Fact
}

func (s *yearSlots) slot(p FiscalPeriod) **Fact {
	switch p {
	case Q1:
		return &s.q1
	case Q2:
		return &s.q2
	case Q3:
		return &s.q3
	case FY:
		return &s.fy
	}
	return nil
}

// QuarterlyValues converts cumulative year-to-date facts into single-quarter
// values, newest first, truncated to n (DefaultQuarterCount when n <= 0).
//
//	Q1 = YTD(Q1)
//	Q2 = YTD(Q2) - YTD(Q1)
//	Q3 = YTD(Q3) - YTD(Q2)
//	Q4 = FY     - YTD(Q3)
//
// A quarter is emitted only when both of its inputs exist for the same fiscal
// year. Non-finite results are dropped.
func QuarterlyValues(series Series, n int) []QuarterValue {
	if n <= 0 {
		n = DefaultQuarterCount
	}

	byYear := make(map[int]*yearSlots)
	for i := range series {
		f := series[i]
		switch {
		case f.FiscalYear == 0:
			continue
		case f.IsQuarterly() && f.FiscalPeriod.IsYTDQuarter():
		case f.IsAnnual():
		default:
			continue
		}

		slots, ok := byYear[f.FiscalYear]
		if !ok {
			slots = &yearSlots{}
			byYear[f.FiscalYear] = slots
		}
		// A filing also carries prior-year comparatives under its own fiscal
		// year; the latest period end is the current one.
		current := slots.slot(f.FiscalPeriod)
		if *current == nil || newer(f, **current) {
			*current = &series[i]
		}
	}

	var out []QuarterValue
	for fy, s := range byYear {
		if s.q1 != nil {
			out = append(out, quarterFrom(fy, Q1, s.q1.Value, s.q1))
		}
		if s.q1 != nil && s.q2 != nil {
			out = append(out, quarterFrom(fy, Q2, s.q2.Value-s.q1.Value, s.q2))
		}
		if s.q2 != nil && s.q3 != nil {
			out = append(out, quarterFrom(fy, Q3, s.q3.Value-s.q2.Value, s.q3))
		}
		if s.q3 != nil && s.fy != nil {
			out = append(out, quarterFrom(fy, Q4, s.fy.Value-s.q3.Value, s.fy))
		}
	}

	finite := out[:0]
	for _, q := range out {
		if isFinite(q.Value) {
			finite = append(finite, q)
		}
	}
	out = finite

	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].PeriodEnd.Equal(out[j].PeriodEnd) {
			return out[i].PeriodEnd.After(out[j].PeriodEnd)
		}
		// map iteration order is random; keep equal period ends stable
		if out[i].FiscalYear != out[j].FiscalYear {
			return out[i].FiscalYear > out[j].FiscalYear
		}
		return out[i].Quarter > out[j].Quarter
	})

	if len(out) > n {
		out = out[:n]
	}
	return out
}

// quarterFrom builds a QuarterValue dated by the later of its two source facts.
func quarterFrom(fy int, q FiscalPeriod, value float64, later *Fact) QuarterValue {
	return QuarterValue{
		FiscalYear: fy,
		Quarter:    q,
		Value:      value,
		PeriodEnd:  later.PeriodEnd,
		Filed:      later.Filed,
	}
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
