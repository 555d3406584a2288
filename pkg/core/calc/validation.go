package calc

import "math"

// ValidationTolerance is the relative difference, in percent, allowed for
// rounding between reported totals.
const ValidationTolerance = 1.0

// ValidationResult compares a reported total against the sum of its parts.
type ValidationResult struct {
	IsValid     bool    `json:"isValid"`
	Reported    float64 `json:"reported"`
	Computed    float64 `json:"computed"`
	Difference  float64 `json:"difference"`
	DiffPercent float64 `json:"diffPercent"`
	Message     string  `json:"message"`
}

func compare(reported, computed float64) ValidationResult {
	r := ValidationResult{Reported: reported, Computed: computed, Difference: reported - computed}
	if reported != 0 {
		r.DiffPercent = r.Difference / reported * 100
	}
	r.IsValid = math.Abs(r.DiffPercent) < ValidationTolerance
	return r
}

// ValidateBalanceSheet checks Assets = Liabilities + Equity. When total
// liabilities are not reported they are derived from liabilitiesAndEquity.
func ValidateBalanceSheet(assets, liabilities, equity, liabilitiesAndEquity *float64) ValidationResult {
	if assets == nil {
		return ValidationResult{Message: "Missing Total Assets"}
	}
	var computed float64
	switch {
	case liabilities != nil && equity != nil:
		computed = *liabilities + *equity
	case liabilitiesAndEquity != nil:
		computed = *liabilitiesAndEquity
	default:
		return ValidationResult{Reported: *assets, Message: "Missing L+E row and components"}
	}

	r := compare(*assets, computed)
	if r.IsValid {
		r.Message = "Balance sheet balances"
	} else {
		r.Message = "Balance sheet does NOT balance"
	}
	return r
}

// ValidateGrossProfit checks Revenue - Cost of revenue = Gross profit.
func ValidateGrossProfit(revenue, costOfRevenue, grossProfit *float64) ValidationResult {
	if revenue == nil || costOfRevenue == nil || grossProfit == nil {
		return ValidationResult{Message: "Missing revenue, cost of revenue or gross profit"}
	}
	r := compare(*grossProfit, *revenue-*costOfRevenue)
	if r.IsValid {
		r.Message = "Gross profit matches"
	} else {
		r.Message = "Gross profit does NOT match revenue less cost of revenue"
	}
	return r
}
