// Package metrics assembles the per-ticker display record from company facts
// and the filing index.
package metrics

import (
	"filing_analyzer/pkg/core/calc"
	"filing_analyzer/pkg/core/facts"
)

// =============================================================================
// STOCK DATA
// Every optional number is a pointer; a nil value means the company never
// reported the line item, never zero.
// =============================================================================

type StockData struct {
	Symbol        string `json:"symbol"`
	Name          string `json:"name"`
	CIK           string `json:"cik"`
	Exchange      string `json:"exchange,omitempty"`
	Sector        string `json:"sector,omitempty"`
	FilingDate    string `json:"filingDate,omitempty"`
	PeriodEndDate string `json:"periodEndDate,omitempty"`
	FiscalYear    *int   `json:"fiscalYear,omitempty"`

	Metrics          Metrics              `json:"metrics"`
	Quarterly        *Quarterly           `json:"quarterly,omitempty"`
	LatestMetrics    LatestMetrics        `json:"latestMetrics"`
	Ratios           calc.Ratios          `json:"ratios"`
	HistoricalAnnual HistoricalAnnual     `json:"historicalAnnual"`
	Growth           Growth               `json:"growth"`
	TTM              map[string]TTMDetail `json:"ttm,omitempty"`
}

// Metrics are the latest full-year values from annual reports.
type Metrics struct {
	// Income statement
	Revenue                  *float64 `json:"revenue,omitempty"`
	CostOfRevenue            *float64 `json:"costOfRevenue,omitempty"`
	GrossProfit              *float64 `json:"grossProfit,omitempty"`
	OperatingExpenses        *float64 `json:"operatingExpenses,omitempty"`
	RDExpense                *float64 `json:"rdExpense,omitempty"`
	SGAExpense               *float64 `json:"sgaExpense,omitempty"`
	OperatingIncome          *float64 `json:"operatingIncome,omitempty"`
	InterestExpense          *float64 `json:"interestExpense,omitempty"`
	IncomeTaxExpense         *float64 `json:"incomeTaxExpense,omitempty"`
	DepreciationAmortization *float64 `json:"depreciationAmortization,omitempty"`
	EBITDA                   *float64 `json:"ebitda,omitempty"`
	NetIncome                *float64 `json:"netIncome,omitempty"`

	// Balance sheet
	TotalAssets            *float64 `json:"totalAssets,omitempty"`
	CurrentAssets          *float64 `json:"currentAssets,omitempty"`
	Cash                   *float64 `json:"cash,omitempty"`
	AccountsReceivable     *float64 `json:"accountsReceivable,omitempty"`
	Inventory              *float64 `json:"inventory,omitempty"`
	PropertyPlantEquipment *float64 `json:"propertyPlantEquipment,omitempty"`
	TotalLiabilities       *float64 `json:"totalLiabilities,omitempty"`
	CurrentLiabilities     *float64 `json:"currentLiabilities,omitempty"`
	ShortTermDebt          *float64 `json:"shortTermDebt,omitempty"`
	LongTermDebt           *float64 `json:"longTermDebt,omitempty"`
	AccountsPayable        *float64 `json:"accountsPayable,omitempty"`
	StockholdersEquity     *float64 `json:"stockholdersEquity,omitempty"`

	// Cash flow; outflows are absolute values
	OperatingCashFlow *float64 `json:"operatingCashFlow,omitempty"`
	InvestingCashFlow *float64 `json:"investingCashFlow,omitempty"`
	FinancingCashFlow *float64 `json:"financingCashFlow,omitempty"`
	Capex             *float64 `json:"capex,omitempty"`
	FreeCashFlow      *float64 `json:"freeCashFlow,omitempty"`
	DividendsPaid     *float64 `json:"dividendsPaid,omitempty"`
	StockRepurchases  *float64 `json:"stockRepurchases,omitempty"`

	TotalDebt         *float64 `json:"totalDebt,omitempty"`
	NetDebt           *float64 `json:"netDebt,omitempty"`
	SharesOutstanding *float64 `json:"sharesOutstanding,omitempty"`
}

// QuarterPoint is one reconstructed quarter, labelled "2024 Q3".
type QuarterPoint struct {
	Quarter string  `json:"quarter"`
	Value   float64 `json:"value"`
	EndDate string  `json:"endDate"`
}

type Quarterly struct {
	LatestQuarter          string         `json:"latestQuarter"`
	LatestQuarterEndDate   string         `json:"latestQuarterEndDate,omitempty"`
	LatestQuarterFiledDate string         `json:"latestQuarterFiledDate,omitempty"`
	QuarterlyRevenue       []QuarterPoint `json:"quarterlyRevenue"`
	QuarterlyNetIncome     []QuarterPoint `json:"quarterlyNetIncome"`
	RevenueQoQ             *float64       `json:"revenueQoQ,omitempty"`
	NetIncomeQoQ           *float64       `json:"netIncomeQoQ,omitempty"`
}

// LatestMetrics feed the ratios: trailing twelve month flows and the latest
// reported balance-sheet values from either form.
type LatestMetrics struct {
	TTMRevenue         *float64 `json:"ttmRevenue,omitempty"`
	TTMNetIncome       *float64 `json:"ttmNetIncome,omitempty"`
	TTMOperatingIncome *float64 `json:"ttmOperatingIncome,omitempty"`
	TTMGrossProfit     *float64 `json:"ttmGrossProfit,omitempty"`
	TTMCostOfRevenue   *float64 `json:"ttmCostOfRevenue,omitempty"`

	LatestTotalAssets        *float64 `json:"latestTotalAssets,omitempty"`
	LatestCurrentAssets      *float64 `json:"latestCurrentAssets,omitempty"`
	LatestCurrentLiabilities *float64 `json:"latestCurrentLiabilities,omitempty"`
	LatestCash               *float64 `json:"latestCash,omitempty"`
	LatestInventory          *float64 `json:"latestInventory,omitempty"`
	LatestStockholdersEquity *float64 `json:"latestStockholdersEquity,omitempty"`
	LatestLongTermDebt       *float64 `json:"latestLongTermDebt,omitempty"`
	LatestShortTermDebt      *float64 `json:"latestShortTermDebt,omitempty"`
	LatestTotalDebt          *float64 `json:"latestTotalDebt,omitempty"`
}

// YearPoint is one fiscal year of a historical series.
type YearPoint struct {
	FiscalYear int     `json:"fiscalYear"`
	Value      float64 `json:"value"`
	EndDate    string  `json:"endDate"`
}

type HistoricalAnnual struct {
	Revenue            []YearPoint `json:"revenue"`
	NetIncome          []YearPoint `json:"netIncome"`
	TotalAssets        []YearPoint `json:"totalAssets"`
	StockholdersEquity []YearPoint `json:"stockholdersEquity"`
	OperatingCashFlow  []YearPoint `json:"operatingCashFlow"`
	FreeCashFlow       []YearPoint `json:"freeCashFlow"`
}

// Growth holds compound annual growth over the historical window, in percent.
type Growth struct {
	RevenueCAGR   *float64 `json:"revenueCAGR,omitempty"`
	NetIncomeCAGR *float64 `json:"netIncomeCAGR,omitempty"`
	Years         int      `json:"years"`
}

// TTMDetail explains how a trailing twelve month value was derived.
type TTMDetail struct {
	Value  *float64        `json:"value,omitempty"`
	Method facts.TTMMethod `json:"method"`
	AsOf   string          `json:"asOf,omitempty"`
}
