package facts

import "math"

// QoQGrowth returns the percentage change between the two newest quarters of
// a newest-first list. It is undefined with fewer than two quarters or when
// the previous quarter is not positive.
func QoQGrowth(quarters []QuarterValue) (float64, bool) {
	if len(quarters) < 2 {
		return 0, false
	}
	current, previous := quarters[0].Value, quarters[1].Value
	if previous <= 0 {
		return 0, false
	}
	growth := (current - previous) / previous * 100
	return growth, isFinite(growth)
}

// CAGR returns the compound annual growth rate in percent over a newest-first
// list of yearly values. It is undefined for fewer than two values or a
// non-positive endpoint.
func CAGR(values []float64) (float64, bool) {
	if len(values) < 2 {
		return 0, false
	}
	newest, oldest := values[0], values[len(values)-1]
	if newest <= 0 || oldest <= 0 {
		return 0, false
	}
	years := float64(len(values) - 1)
	rate := (math.Pow(newest/oldest, 1/years) - 1) * 100
	return rate, isFinite(rate)
}

// AnnualValues extracts the values of a historical series in order.
func AnnualValues(history []AnnualValue) []float64 {
	out := make([]float64, len(history))
	for i, h := range history {
		out[i] = h.Value
	}
	return out
}
