package metrics

import (
	"math"
	"time"

	"filing_analyzer/pkg/core/facts"
)

func ptr(v float64) *float64 {
	return &v
}

func value(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func abs(v *float64) *float64 {
	if v == nil {
		return nil
	}
	return ptr(math.Abs(*v))
}

// sum adds the present values; nil when none is present.
func sum(values ...*float64) *float64 {
	var total *float64
	for _, v := range values {
		if v == nil {
			continue
		}
		if total == nil {
			total = ptr(0)
		}
		*total += *v
	}
	return total
}

func optional(v float64, ok bool) *float64 {
	if !ok {
		return nil
	}
	return &v
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(facts.DateLayout)
}
