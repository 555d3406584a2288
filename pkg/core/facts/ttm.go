package facts

import "time"

// TTMMethod records how a trailing twelve month value was obtained.
type TTMMethod string

const (
	// NoAnchor means the series has no annual fact; the value is undefined.
	NoAnchor TTMMethod = "no_anchor"
	// Annual means nothing newer than the latest annual fact exists.
	Annual TTMMethod = "annual"
	// Reconstructed means currentYTD + (priorFY - priorYTD).
	Reconstructed TTMMethod = "reconstructed"

	FallbackUnsupportedPeriod TTMMethod = "fallback_unsupported_period"
	FallbackNoPriorAnnual     TTMMethod = "fallback_no_prior_annual"
	FallbackNoPriorYTD        TTMMethod = "fallback_no_prior_ytd"
	FallbackNonFinite         TTMMethod = "fallback_non_finite"
)

// IsFallback reports whether a newer quarter existed but could not be used.
func (m TTMMethod) IsFallback() bool {
	switch m {
	case FallbackUnsupportedPeriod, FallbackNoPriorAnnual, FallbackNoPriorYTD, FallbackNonFinite:
		return true
	}
	return false
}

// TTMResult is the outcome of a trailing twelve month computation. Value is
// meaningful only when OK is true. AsOf is the period end the value covers.
type TTMResult struct {
	Value  float64   `json:"value"`
	OK     bool      `json:"ok"`
	Method TTMMethod `json:"method"`
	AsOf   time.Time `json:"asOf"`
}

// ttmInputs carries the facts gathered by the guards of one computation.
type ttmInputs struct {
	annual   Fact
	current  Fact
	priorFY  Fact
	priorYTD Fact
}

// ttmGuard fills in part of in, or returns the fallback method that ends the
// computation.
type ttmGuard func(series Series, in *ttmInputs) (TTMMethod, bool)

var ttmGuards = []ttmGuard{
	guardSupportedPeriod,
	guardPriorAnnual,
	guardPriorYTD,
}

// TTM computes the trailing twelve month value of an income-statement series.
//
// The latest annual fact anchors the result. When a quarterly fact ends after
// it, the value is rebuilt as currentYTD + (priorFY - priorYTD); any missing
// input degrades to the latest annual value rather than a guess.
func TTM(series Series) TTMResult {
	annual, ok := LatestAnnual(series)
	if !ok {
		return TTMResult{Method: NoAnchor}
	}

	current, ok := LatestQuarterly(series)
	if !ok || !current.PeriodEnd.After(annual.PeriodEnd) {
		return annualResult(annual, Annual)
	}

	in := &ttmInputs{annual: annual, current: current}
	for _, guard := range ttmGuards {
		if method, ok := guard(series, in); !ok {
			return annualResult(annual, method)
		}
	}

	value := in.current.Value + (in.priorFY.Value - in.priorYTD.Value)
	if !isFinite(value) {
		return annualResult(annual, FallbackNonFinite)
	}
	return TTMResult{
		Value:  value,
		OK:     true,
		Method: Reconstructed,
		AsOf:   in.current.PeriodEnd,
	}
}

func annualResult(annual Fact, method TTMMethod) TTMResult {
	return TTMResult{
		Value:  annual.Value,
		OK:     true,
		Method: method,
		AsOf:   annual.PeriodEnd,
	}
}

// guardSupportedPeriod accepts only Q1..Q3 anchors with a known fiscal year.
// A standalone Q4 or a missing period is treated as unsupported input.
func guardSupportedPeriod(_ Series, in *ttmInputs) (TTMMethod, bool) {
	if in.current.FiscalYear == 0 || !in.current.FiscalPeriod.IsYTDQuarter() {
		return FallbackUnsupportedPeriod, false
	}
	return "", true
}

func guardPriorAnnual(series Series, in *ttmInputs) (TTMMethod, bool) {
	prior, ok := AnnualFor(series, in.current.FiscalYear-1)
	if !ok {
		return FallbackNoPriorAnnual, false
	}
	in.priorFY = prior
	return "", true
}

func guardPriorYTD(series Series, in *ttmInputs) (TTMMethod, bool) {
	prior, ok := QuarterlyFor(series, in.current.FiscalYear-1, in.current.FiscalPeriod)
	if !ok {
		return FallbackNoPriorYTD, false
	}
	in.priorYTD = prior
	return "", true
}
