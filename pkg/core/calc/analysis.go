package calc

import "math"

// =============================================================================
// RATIO INPUTS
// Flow values are trailing twelve months, balance-sheet values are the latest
// reported snapshot. A nil field means the concept was never reported.
// =============================================================================

type Inputs struct {
	Revenue         *float64
	GrossProfit     *float64
	CostOfRevenue   *float64
	OperatingIncome *float64
	NetIncome       *float64
	InterestExpense *float64

	TotalAssets        *float64
	CurrentAssets      *float64
	CurrentLiabilities *float64
	Cash               *float64
	Inventory          *float64
	StockholdersEquity *float64
	TotalDebt          *float64
}

// Ratios holds the derived ratios. Margins, ROE, ROA and debt-to-assets are
// percentages; the rest are plain multiples.
type Ratios struct {
	GrossMargin      *float64 `json:"grossMargin,omitempty"`
	OperatingMargin  *float64 `json:"operatingMargin,omitempty"`
	NetMargin        *float64 `json:"netMargin,omitempty"`
	ROE              *float64 `json:"roe,omitempty"`
	ROA              *float64 `json:"roa,omitempty"`
	CurrentRatio     *float64 `json:"currentRatio,omitempty"`
	QuickRatio       *float64 `json:"quickRatio,omitempty"`
	CashRatio        *float64 `json:"cashRatio,omitempty"`
	DebtToEquity     *float64 `json:"debtToEquity,omitempty"`
	DebtToAssets     *float64 `json:"debtToAssets,omitempty"`
	EquityMultiplier *float64 `json:"equityMultiplier,omitempty"`
	AssetTurnover    *float64 `json:"assetTurnover,omitempty"`
	InterestCoverage *float64 `json:"interestCoverage,omitempty"`
}

// Compute derives every ratio whose inputs are present.
func Compute(in Inputs) Ratios {
	return Ratios{
		GrossMargin:      GrossMargin(in.Revenue, in.GrossProfit, in.CostOfRevenue),
		OperatingMargin:  Margin(in.OperatingIncome, in.Revenue),
		NetMargin:        Margin(in.NetIncome, in.Revenue),
		ROE:              percent(positiveDiv(in.NetIncome, in.StockholdersEquity)),
		ROA:              percent(positiveDiv(in.NetIncome, in.TotalAssets)),
		CurrentRatio:     CurrentRatio(in.CurrentAssets, in.CurrentLiabilities),
		QuickRatio:       QuickRatio(in.CurrentAssets, in.Inventory, in.CurrentLiabilities),
		CashRatio:        positiveDiv(in.Cash, in.CurrentLiabilities),
		DebtToEquity:     positiveDiv(in.TotalDebt, in.StockholdersEquity),
		DebtToAssets:     percent(positiveDiv(in.TotalDebt, in.TotalAssets)),
		EquityMultiplier: positiveDiv(in.TotalAssets, in.StockholdersEquity),
		AssetTurnover:    positiveDiv(in.Revenue, in.TotalAssets),
		InterestCoverage: InterestCoverage(in.OperatingIncome, in.InterestExpense),
	}
}

// =============================================================================
// PROFITABILITY
// =============================================================================

// GrossMargin uses reported gross profit, else revenue less cost of revenue.
func GrossMargin(revenue, grossProfit, costOfRevenue *float64) *float64 {
	if m := Margin(grossProfit, revenue); m != nil {
		return m
	}
	if revenue == nil || costOfRevenue == nil {
		return nil
	}
	gp := *revenue - *costOfRevenue
	return Margin(&gp, revenue)
}

// Margin is numerator / revenue in percent. Undefined for zero revenue.
func Margin(numerator, revenue *float64) *float64 {
	if numerator == nil || revenue == nil || *revenue == 0 {
		return nil
	}
	return percent(ptr(*numerator / *revenue))
}

// =============================================================================
// LIQUIDITY & SOLVENCY
// =============================================================================

func CurrentRatio(currentAssets, currentLiabilities *float64) *float64 {
	return positiveDiv(currentAssets, currentLiabilities)
}

// QuickRatio excludes inventory from current assets; missing inventory counts
// as none.
func QuickRatio(currentAssets, inventory, currentLiabilities *float64) *float64 {
	if currentAssets == nil {
		return nil
	}
	quick := *currentAssets
	if inventory != nil {
		quick -= *inventory
	}
	return positiveDiv(&quick, currentLiabilities)
}

// InterestCoverage is operating income over the absolute interest expense.
func InterestCoverage(operatingIncome, interestExpense *float64) *float64 {
	if operatingIncome == nil || interestExpense == nil || *interestExpense == 0 {
		return nil
	}
	return finite(*operatingIncome / math.Abs(*interestExpense))
}

// =============================================================================
// DUPONT
// =============================================================================

type DuPontResult struct {
	ProfitMargin      float64 `json:"profitMargin"`
	AssetTurnover     float64 `json:"assetTurnover"`
	FinancialLeverage float64 `json:"financialLeverage"`
	ROE               float64 `json:"roe"`
}

// DuPontROE splits ROE into margin, turnover and leverage. It reports false
// when revenue is zero or assets or equity are not positive.
func DuPontROE(netIncome, revenue, assets, equity float64) (DuPontResult, bool) {
	if revenue == 0 || assets <= 0 || equity <= 0 {
		return DuPontResult{}, false
	}
	pm := netIncome / revenue
	at := revenue / assets
	fl := assets / equity
	return DuPontResult{
		ProfitMargin:      pm,
		AssetTurnover:     at,
		FinancialLeverage: fl,
		ROE:               pm * at * fl,
	}, true
}

// GrowthRate is the relative change from prior to current, as a fraction.
func GrowthRate(current, prior float64) (float64, bool) {
	if prior == 0 {
		return 0, false
	}
	return (current - prior) / math.Abs(prior), true
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// positiveDiv divides when both inputs exist and the denominator is positive.
func positiveDiv(numerator, denominator *float64) *float64 {
	if numerator == nil || denominator == nil || *denominator <= 0 {
		return nil
	}
	return finite(*numerator / *denominator)
}

func percent(v *float64) *float64 {
	if v == nil {
		return nil
	}
	return ptr(*v * 100)
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func ptr(v float64) *float64 {
	return &v
}

// Float returns a pointer to v, for building Inputs.
func Float(v float64) *float64 {
	return &v
}
