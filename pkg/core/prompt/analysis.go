package prompt

import (
	"fmt"
	"math"
	"strings"
	"text/template"
	"time"

	"filing_analyzer/pkg/core/edgar"
	"filing_analyzer/pkg/core/metrics"
)

// AnalysisPromptID is the prompt used for the per-ticker filing analysis.
const AnalysisPromptID = "analysis.summary"

// Event is one material event (8-K) handed to the analysis prompt.
type Event struct {
	FilingDate string
	Items      []edgar.EventItem
	Excerpt    string
}

// EventsFromFilings converts 8-K filings into prompt events.
func EventsFromFilings(filings []edgar.Filing) []Event {
	out := make([]Event, 0, len(filings))
	for _, f := range filings {
		out = append(out, Event{FilingDate: f.FilingDate, Items: edgar.ParseItems(f.Items)})
	}
	return out
}

// BuildAnalysis renders the system and user prompts for stock using the
// global registry. events and insiders may be empty.
func BuildAnalysis(stock *metrics.StockData, events []Event, insiders *edgar.InsiderSummary, now time.Time) (system, user string, err error) {
	return Get().BuildAnalysis(stock, events, insiders, now)
}

func (r *Registry) BuildAnalysis(stock *metrics.StockData, events []Event, insiders *edgar.InsiderSummary, now time.Time) (system, user string, err error) {
	if stock == nil {
		return "", "", fmt.Errorf("no stock data to analyze")
	}
	pt, err := r.GetPrompt(AnalysisPromptID)
	if err != nil {
		return "", "", err
	}

	ctx := NewContext().
		Set("CurrentDate", now.Format("2006-01-02")).
		Set("Stock", stock).
		Set("Events", events).
		Set("Insiders", insiders)

	if system, err = RenderSystemPrompt(pt, ctx); err != nil {
		return "", "", err
	}
	if user, err = RenderUserPrompt(pt, ctx); err != nil {
		return "", "", err
	}
	return system, user, nil
}

var funcs = template.FuncMap{
	"usd":   formatUSD,
	"pct":   formatPercent,
	"ratio": formatRatio,
	"itemList": func(items []edgar.EventItem) string {
		parts := make([]string, len(items))
		for i, it := range items {
			parts[i] = it.Description
		}
		return strings.Join(parts, "; ")
	},
	"upper": strings.ToUpper,
}

func number(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case *float64:
		if n == nil {
			return 0, false
		}
		return *n, true
	case int:
		return float64(n), true
	}
	return 0, false
}

// formatUSD renders an amount as $1.23B, $4.56M or $789.
func formatUSD(v interface{}) string {
	n, ok := number(v)
	if !ok {
		return "N/A"
	}
	switch a := math.Abs(n); {
	case a >= 1e9:
		return fmt.Sprintf("$%.2fB", n/1e9)
	case a >= 1e6:
		return fmt.Sprintf("$%.2fM", n/1e6)
	default:
		return fmt.Sprintf("$%.0f", n)
	}
}

func formatPercent(v interface{}) string {
	n, ok := number(v)
	if !ok {
		return "N/A"
	}
	return fmt.Sprintf("%.2f%%", n)
}

func formatRatio(v interface{}) string {
	n, ok := number(v)
	if !ok {
		return "N/A"
	}
	return fmt.Sprintf("%.2f", n)
}

func builtins() []*PromptTemplate {
	return []*PromptTemplate{
		{
			ID:             AnalysisPromptID,
			Name:           "Filing analysis",
			Category:       "analysis",
			Description:    "Educational summary of a company's SEC filings.",
			SystemPrompt:   analysisSystemPrompt,
			UserPromptTmpl: analysisUserPrompt,
			Variables: []PromptVariable{
				{Name: "CurrentDate", Type: "string", Required: true},
				{Name: "Stock", Type: "object", Required: true},
				{Name: "Events", Type: "array"},
				{Name: "Insiders", Type: "object"},
			},
			Version: "1",
		},
	}
}

const analysisSystemPrompt = `You are a senior financial analyst with over 20 years of experience in fundamental stock analysis.

Respond only in English.

CURRENT DATE: {{.CurrentDate}}

You analyze financial data extracted from official SEC reports (10-K, 10-Q, 8-K, Form 4) and provide:

1. A clear and concise executive summary of the company's financial situation
2. Analysis of key metrics (profitability, liquidity, leverage, efficiency)
3. Trends observed in recent quarters and years
4. Relevant material events and insider activity
5. Strengths, weaknesses and potential risks
6. A final conclusion with recommendations for additional research

RULES:
- Only analyze the data provided. Do not invent information or use external data.
- Be aware of the current date ({{.CurrentDate}}). If the most recent data is months or years old, say so explicitly and treat any view of the present as speculative.
- Be specific with numbers and percentages from the data provided.
- Do not give buy, sell or hold recommendations or personalized financial advice. This is educational analysis only.

End with a section titled "## Final Conclusion & Research Recommendations" that summarizes the key findings and lists the data points not available in SEC filings (market sentiment, competitive position, analyst consensus, macro factors) with guidance on what to look for.

FORMAT:
- Use ## for main sections and ### for subsections
- Leave a blank line around headers, paragraphs and lists
- Use **bold** for key numbers`

const analysisUserPrompt = `# Filing analysis of {{upper .Stock.Symbol}}

## Company
- Name: {{.Stock.Name}}
- CIK: {{.Stock.CIK}}
{{- with .Stock.Exchange}}
- Exchange: {{.}}{{end}}
{{- with .Stock.Sector}}
- Sector: {{.}}{{end}}
{{- with .Stock.FiscalYear}}
- Latest fiscal year: {{.}}{{end}}
{{- with .Stock.PeriodEndDate}}
- Period end: {{.}}{{end}}
{{- with .Stock.FilingDate}}
- Filed: {{.}}{{end}}

## Latest metrics (TTM and latest balance sheet)
{{- with .Stock.LatestMetrics}}
{{- with .TTMRevenue}}
- Revenue TTM: {{usd .}}{{end}}
{{- with .TTMNetIncome}}
- Net income TTM: {{usd .}}{{end}}
{{- with .TTMOperatingIncome}}
- Operating income TTM: {{usd .}}{{end}}
{{- with .TTMGrossProfit}}
- Gross profit TTM: {{usd .}}{{end}}
{{- with .LatestTotalAssets}}
- Total assets: {{usd .}}{{end}}
{{- with .LatestStockholdersEquity}}
- Stockholders' equity: {{usd .}}{{end}}
{{- with .LatestCash}}
- Cash: {{usd .}}{{end}}
{{- with .LatestTotalDebt}}
- Total debt: {{usd .}}{{end}}
{{- end}}

## Ratios
{{- with .Stock.Ratios}}
{{- with .GrossMargin}}
- Gross margin: {{pct .}}{{end}}
{{- with .OperatingMargin}}
- Operating margin: {{pct .}}{{end}}
{{- with .NetMargin}}
- Net margin: {{pct .}}{{end}}
{{- with .ROE}}
- ROE: {{pct .}}{{end}}
{{- with .ROA}}
- ROA: {{pct .}}{{end}}
{{- with .CurrentRatio}}
- Current ratio: {{ratio .}}{{end}}
{{- with .QuickRatio}}
- Quick ratio: {{ratio .}}{{end}}
{{- with .DebtToEquity}}
- Debt to equity: {{ratio .}}{{end}}
{{- end}}

## Annual statements (10-K)
{{- with .Stock.Metrics}}
{{- with .Revenue}}
- Revenue: {{usd .}}{{end}}
{{- with .CostOfRevenue}}
- Cost of revenue: {{usd .}}{{end}}
{{- with .OperatingIncome}}
- Operating income: {{usd .}}{{end}}
{{- with .NetIncome}}
- Net income: {{usd .}}{{end}}
{{- with .TotalLiabilities}}
- Total liabilities: {{usd .}}{{end}}
{{- with .OperatingCashFlow}}
- Operating cash flow: {{usd .}}{{end}}
{{- with .FreeCashFlow}}
- Free cash flow: {{usd .}}{{end}}
{{- with .NetDebt}}
- Net debt: {{usd .}}{{end}}
{{- end}}
{{- with .Stock.Quarterly}}

## Quarterly results (10-Q)
{{- if .QuarterlyRevenue}}

### Revenue by quarter
{{- range .QuarterlyRevenue}}
- {{.Quarter}}: {{usd .Value}} (ended {{.EndDate}}){{end}}
{{- end}}
{{- with .RevenueQoQ}}
- Revenue QoQ: {{pct .}}{{end}}
{{- if .QuarterlyNetIncome}}

### Net income by quarter
{{- range .QuarterlyNetIncome}}
- {{.Quarter}}: {{usd .Value}} (ended {{.EndDate}}){{end}}
{{- end}}
{{- with .NetIncomeQoQ}}
- Net income QoQ: {{pct .}}{{end}}
{{- end}}
{{- with .Stock.HistoricalAnnual.Revenue}}

## Revenue history
{{- range .}}
- FY{{.FiscalYear}}: {{usd .Value}}{{end}}
{{- end}}
{{- with .Stock.HistoricalAnnual.FreeCashFlow}}

## Free cash flow history
{{- range .}}
- FY{{.FiscalYear}}: {{usd .Value}}{{end}}
{{- end}}
{{- with .Stock.Growth.RevenueCAGR}}
- Revenue CAGR: {{pct .}}{{end}}
{{- with .Events}}

## Recent material events (8-K)
{{len .}} material events were reported recently.
{{- range .}}
- {{.FilingDate}}: {{itemList .Items}}{{with .Excerpt}}
  > {{.}}{{end}}{{end}}
{{- end}}
{{- with .Insiders}}
{{- if .TotalTransactions}}

## Insider activity (Form 4)
- Filings: {{.TotalTransactions}}
- Purchases: {{.BuyTransactions}}
- Sales: {{.SellTransactions}}
- Sentiment: {{.Sentiment}}
{{- end}}
{{- end}}

---

Analyze all of this information and provide your professional assessment.
`
