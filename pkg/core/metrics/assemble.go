package metrics

import (
	"math"
	"strings"

	"filing_analyzer/pkg/core/calc"
	"filing_analyzer/pkg/core/edgar"
	"filing_analyzer/pkg/core/facts"
)

// ttmConcepts are the flows reported with a trailing twelve month detail.
var ttmConcepts = []string{
	facts.Revenue,
	facts.NetIncome,
	facts.OperatingIncome,
	facts.GrossProfit,
	facts.CostOfRevenue,
	facts.InterestExpense,
}

// Assembler turns company facts into StockData. The zero value uses the
// default concept table.
type Assembler struct {
	Concepts     facts.ConceptTable
	QuarterCount int
	HistoryYears int
}

// NewAssembler returns an Assembler over concepts, or the defaults when nil.
func NewAssembler(concepts facts.ConceptTable) *Assembler {
	return &Assembler{Concepts: concepts}
}

// Assemble is a shorthand for NewAssembler(concepts).Assemble.
func Assemble(ticker string, cf *edgar.CompanyFacts, subs *edgar.Submissions, concepts facts.ConceptTable) *StockData {
	return NewAssembler(concepts).Assemble(ticker, cf, subs)
}

// resolved memoizes concept series for one assembly.
type resolved struct {
	src      facts.Source
	concepts facts.ConceptTable
	series   map[string]facts.Series
}

func (r *resolved) get(key string) facts.Series {
	if s, ok := r.series[key]; ok {
		return s
	}
	var s facts.Series
	if c, ok := r.concepts.Get(key); ok {
		s = facts.Resolve(r.src, c)
	}
	r.series[key] = s
	return s
}

func (r *resolved) annual(key string) *float64 {
	if f, ok := facts.LatestAnnual(r.get(key)); ok {
		return ptr(f.Value)
	}
	return nil
}

func (r *resolved) pointInTime(key string) *float64 {
	if f, ok := facts.LatestPointInTime(r.get(key)); ok {
		return ptr(f.Value)
	}
	return nil
}

// Assemble builds the display record. subs may be nil. Missing data leaves
// fields nil; it is never an error. A nil cf yields nil.
func (a *Assembler) Assemble(ticker string, cf *edgar.CompanyFacts, subs *edgar.Submissions) *StockData {
	if cf == nil {
		return nil
	}
	concepts := a.Concepts
	if concepts == nil {
		concepts = facts.DefaultConcepts()
	}
	r := &resolved{src: cf, concepts: concepts, series: make(map[string]facts.Series)}

	cik := cf.PaddedCIK()
	sd := &StockData{
		Symbol:   strings.ToUpper(strings.TrimSpace(ticker)),
		Name:     cf.EntityName,
		CIK:      cik,
		Exchange: subs.PrimaryExchange(),
		Sector:   Sector(cik),
	}
	if sd.Name == "" && subs != nil {
		sd.Name = subs.Name
	}

	if rev, ok := facts.LatestAnnual(r.get(facts.Revenue)); ok {
		sd.FilingDate = formatDate(rev.Filed)
		sd.PeriodEndDate = formatDate(rev.PeriodEnd)
		if rev.FiscalYear != 0 {
			fy := rev.FiscalYear
			sd.FiscalYear = &fy
		}
	}

	sd.Metrics = a.annualMetrics(r)
	sd.Quarterly = a.quarterly(r)
	sd.LatestMetrics, sd.TTM = latestMetrics(r)
	sd.Ratios = calc.Compute(ratioInputs(sd.LatestMetrics, sd.TTM))
	sd.HistoricalAnnual = a.history(r)
	sd.Growth = growth(sd.HistoricalAnnual)
	return sd
}

func (a *Assembler) annualMetrics(r *resolved) Metrics {
	m := Metrics{
		Revenue:                  r.annual(facts.Revenue),
		CostOfRevenue:            r.annual(facts.CostOfRevenue),
		GrossProfit:              r.annual(facts.GrossProfit),
		OperatingExpenses:        r.annual(facts.OperatingExpenses),
		RDExpense:                r.annual(facts.RDExpense),
		SGAExpense:               r.annual(facts.SGAExpense),
		OperatingIncome:          r.annual(facts.OperatingIncome),
		InterestExpense:          r.annual(facts.InterestExpense),
		IncomeTaxExpense:         r.annual(facts.IncomeTaxExpense),
		DepreciationAmortization: r.annual(facts.DepreciationAmortization),
		EBITDA:                   r.annual(facts.EBITDA),
		NetIncome:                r.annual(facts.NetIncome),

		TotalAssets:            r.annual(facts.TotalAssets),
		CurrentAssets:          r.annual(facts.CurrentAssets),
		Cash:                   r.annual(facts.Cash),
		AccountsReceivable:     r.annual(facts.AccountsReceivable),
		Inventory:              r.annual(facts.Inventory),
		PropertyPlantEquipment: r.annual(facts.PropertyPlantEquipment),
		TotalLiabilities:       r.annual(facts.TotalLiabilities),
		CurrentLiabilities:     r.annual(facts.CurrentLiabilities),
		ShortTermDebt:          r.annual(facts.ShortTermDebt),
		LongTermDebt:           r.annual(facts.LongTermDebt),
		AccountsPayable:        r.annual(facts.AccountsPayable),
		StockholdersEquity:     r.annual(facts.StockholdersEquity),

		OperatingCashFlow: r.annual(facts.OperatingCashFlow),
		InvestingCashFlow: r.annual(facts.InvestingCashFlow),
		FinancingCashFlow: r.annual(facts.FinancingCashFlow),
		Capex:             abs(r.annual(facts.Capex)),
		DividendsPaid:     abs(r.annual(facts.DividendsPaid)),
		StockRepurchases:  abs(r.annual(facts.StockRepurchases)),

		SharesOutstanding: r.annual(facts.SharesOutstanding),
	}

	m.TotalDebt = sum(m.LongTermDebt, m.ShortTermDebt)
	if m.TotalDebt != nil {
		m.NetDebt = ptr(*m.TotalDebt - value(m.Cash))
	}
	if m.OperatingCashFlow != nil {
		m.FreeCashFlow = ptr(*m.OperatingCashFlow - value(m.Capex))
	}
	return m
}

func (a *Assembler) quarterly(r *resolved) *Quarterly {
	revenue := facts.QuarterlyValues(r.get(facts.Revenue), a.QuarterCount)
	netIncome := facts.QuarterlyValues(r.get(facts.NetIncome), a.QuarterCount)
	if len(revenue) == 0 && len(netIncome) == 0 {
		return nil
	}

	q := &Quarterly{
		QuarterlyRevenue:   quarterPoints(revenue),
		QuarterlyNetIncome: quarterPoints(netIncome),
		RevenueQoQ:         optional(facts.QoQGrowth(revenue)),
		NetIncomeQoQ:       optional(facts.QoQGrowth(netIncome)),
	}
	if len(revenue) > 0 {
		q.LatestQuarter = revenue[0].Label()
		q.LatestQuarterEndDate = formatDate(revenue[0].PeriodEnd)
		q.LatestQuarterFiledDate = formatDate(revenue[0].Filed)
	}
	return q
}

func quarterPoints(values []facts.QuarterValue) []QuarterPoint {
	out := make([]QuarterPoint, len(values))
	for i, v := range values {
		out[i] = QuarterPoint{
			Quarter: v.Label(),
			Value:   v.Value,
			EndDate: formatDate(v.PeriodEnd),
		}
	}
	return out
}

func latestMetrics(r *resolved) (LatestMetrics, map[string]TTMDetail) {
	detail := make(map[string]TTMDetail, len(ttmConcepts))
	for _, key := range ttmConcepts {
		res := facts.TTM(r.get(key))
		d := TTMDetail{Method: res.Method}
		if res.OK {
			d.Value = ptr(res.Value)
			d.AsOf = formatDate(res.AsOf)
		}
		detail[key] = d
	}

	lm := LatestMetrics{
		TTMRevenue:         detail[facts.Revenue].Value,
		TTMNetIncome:       detail[facts.NetIncome].Value,
		TTMOperatingIncome: detail[facts.OperatingIncome].Value,
		TTMGrossProfit:     detail[facts.GrossProfit].Value,
		TTMCostOfRevenue:   detail[facts.CostOfRevenue].Value,

		LatestTotalAssets:        r.pointInTime(facts.TotalAssets),
		LatestCurrentAssets:      r.pointInTime(facts.CurrentAssets),
		LatestCurrentLiabilities: r.pointInTime(facts.CurrentLiabilities),
		LatestCash:               r.pointInTime(facts.Cash),
		LatestInventory:          r.pointInTime(facts.Inventory),
		LatestStockholdersEquity: r.pointInTime(facts.StockholdersEquity),
		LatestLongTermDebt:       r.pointInTime(facts.LongTermDebt),
		LatestShortTermDebt:      r.pointInTime(facts.ShortTermDebt),
	}
	lm.LatestTotalDebt = sum(lm.LatestLongTermDebt, lm.LatestShortTermDebt)
	return lm, detail
}

func ratioInputs(lm LatestMetrics, ttm map[string]TTMDetail) calc.Inputs {
	return calc.Inputs{
		Revenue:            lm.TTMRevenue,
		GrossProfit:        lm.TTMGrossProfit,
		CostOfRevenue:      lm.TTMCostOfRevenue,
		OperatingIncome:    lm.TTMOperatingIncome,
		NetIncome:          lm.TTMNetIncome,
		InterestExpense:    ttm[facts.InterestExpense].Value,
		TotalAssets:        lm.LatestTotalAssets,
		CurrentAssets:      lm.LatestCurrentAssets,
		CurrentLiabilities: lm.LatestCurrentLiabilities,
		Cash:               lm.LatestCash,
		Inventory:          lm.LatestInventory,
		StockholdersEquity: lm.LatestStockholdersEquity,
		TotalDebt:          lm.LatestTotalDebt,
	}
}

func (a *Assembler) history(r *resolved) HistoricalAnnual {
	n := a.HistoryYears
	ocf := facts.HistoricalAnnual(r.get(facts.OperatingCashFlow), n)
	capex := r.get(facts.Capex)

	fcf := make([]YearPoint, 0, len(ocf))
	for _, year := range ocf {
		spent := 0.0
		if c, ok := facts.AnnualFor(capex, year.FiscalYear); ok {
			spent = math.Abs(c.Value)
		}
		fcf = append(fcf, YearPoint{
			FiscalYear: year.FiscalYear,
			Value:      year.Value - spent,
			EndDate:    formatDate(year.PeriodEnd),
		})
	}

	return HistoricalAnnual{
		Revenue:            yearPoints(facts.HistoricalAnnual(r.get(facts.Revenue), n)),
		NetIncome:          yearPoints(facts.HistoricalAnnual(r.get(facts.NetIncome), n)),
		TotalAssets:        yearPoints(facts.HistoricalAnnual(r.get(facts.TotalAssets), n)),
		StockholdersEquity: yearPoints(facts.HistoricalAnnual(r.get(facts.StockholdersEquity), n)),
		OperatingCashFlow:  yearPoints(ocf),
		FreeCashFlow:       fcf,
	}
}

func yearPoints(values []facts.AnnualValue) []YearPoint {
	out := make([]YearPoint, len(values))
	for i, v := range values {
		out[i] = YearPoint{
			FiscalYear: v.FiscalYear,
			Value:      v.Value,
			EndDate:    formatDate(v.PeriodEnd),
		}
	}
	return out
}

func growth(h HistoricalAnnual) Growth {
	return Growth{
		RevenueCAGR:   optional(facts.CAGR(yearValues(h.Revenue))),
		NetIncomeCAGR: optional(facts.CAGR(yearValues(h.NetIncome))),
		Years:         len(h.Revenue),
	}
}

func yearValues(points []YearPoint) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = p.Value
	}
	return out
}
