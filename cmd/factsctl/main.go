// Command factsctl prints reconstructed quarters, TTM values and annual
// history for one concept of a company's SEC companyfacts.
//
//	factsctl -ticker AAPL -concept revenue -mode quarters -n 8
//	factsctl -file CIK0000320193.json -mode ttm
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"filing_analyzer/pkg/core/calc"
	"filing_analyzer/pkg/core/config"
	"filing_analyzer/pkg/core/edgar"
	"filing_analyzer/pkg/core/facts"
	"filing_analyzer/pkg/core/logger"
	"filing_analyzer/pkg/core/metrics"
)

type options struct {
	ticker   string
	file     string
	concept  string
	mode     string
	n        int
	concepts string
}

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	var opts options
	fs := flag.NewFlagSet("factsctl", flag.ContinueOnError)
	fs.StringVar(&opts.ticker, "ticker", "", "ticker symbol to fetch from SEC")
	fs.StringVar(&opts.file, "file", "", "local companyfacts JSON file")
	fs.StringVar(&opts.concept, "concept", facts.Revenue, "concept key")
	fs.StringVar(&opts.mode, "mode", "quarters", "Mode: quarters, ttm, annual, history, check, benford or summary")
	fs.IntVar(&opts.n, "n", 0, "number of quarters or years (0 = default)")
	fs.StringVar(&opts.concepts, "concepts", "", "HJSON concept table override")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if (opts.ticker == "") == (opts.file == "") {
		return errors.New("exactly one of -ticker or -file is required")
	}

	table, err := facts.LoadConcepts(opts.concepts)
	if err != nil {
		return err
	}
	cf, ticker, err := load(ctx, opts)
	if err != nil {
		return err
	}

	result, err := evaluate(opts, table, cf, ticker)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func load(ctx context.Context, opts options) (*edgar.CompanyFacts, string, error) {
	if opts.file != "" {
		data, err := os.ReadFile(opts.file)
		if err != nil {
			return nil, "", err
		}
		cf, err := edgar.ParseCompanyFacts(data)
		return cf, opts.ticker, err
	}

	cfg, err := config.Load("")
	if err != nil {
		return nil, "", err
	}
	// Keep stdout clean for the JSON result.
	if _, err := logger.Init(logger.Config{Level: "error", Format: "console"}); err != nil {
		return nil, "", err
	}
	client := edgar.NewClient(edgar.WithUserAgent(cfg.SEC.UserAgent), edgar.WithRateLimit(cfg.SEC.RateLimit))

	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()
	cik, err := client.LookupCIK(ctx, opts.ticker)
	if err != nil {
		return nil, "", err
	}
	cf, err := client.FetchCompanyFacts(ctx, cik)
	return cf, edgar.NormalizeTicker(opts.ticker), err
}

// checks is the output of -mode check.
type checks struct {
	BalanceSheet  calc.ValidationResult `json:"balanceSheet"`
	GrossProfit   calc.ValidationResult `json:"grossProfit"`
	DuPont        *calc.DuPontResult    `json:"dupont,omitempty"`
	RevenueGrowth *float64              `json:"revenueGrowth,omitempty"`
}

func evaluate(opts options, table facts.ConceptTable, cf *edgar.CompanyFacts, ticker string) (interface{}, error) {
	if opts.mode == "summary" {
		if ticker == "" {
			ticker = cf.EntityName
		}
		return metrics.Assemble(ticker, cf, nil, table), nil
	}
	if opts.mode == "check" {
		return runChecks(table, cf), nil
	}
	if opts.mode == "benford" {
		return calc.AnalyzeBenford(annualAmounts(cf)), nil
	}

	concept, ok := table.Get(opts.concept)
	if !ok {
		return nil, fmt.Errorf("unknown concept %q", opts.concept)
	}
	series := facts.Resolve(cf, concept)

	switch opts.mode {
	case "quarters":
		return facts.QuarterlyValues(series, opts.n), nil
	case "ttm":
		return facts.TTM(series), nil
	case "annual":
		f, ok := facts.LatestAnnual(series)
		if !ok {
			return nil, fmt.Errorf("no annual value for %s", opts.concept)
		}
		return f, nil
	case "history":
		return facts.HistoricalAnnual(series, opts.n), nil
	default:
		return nil, fmt.Errorf("unknown mode: %s", opts.mode)
	}
}

func runChecks(table facts.ConceptTable, cf *edgar.CompanyFacts) *checks {
	value := func(key string, pick func(facts.Series) (facts.Fact, bool)) *float64 {
		c, ok := table.Get(key)
		if !ok {
			return nil
		}
		f, ok := pick(facts.Resolve(cf, c))
		if !ok {
			return nil
		}
		return calc.Float(f.Value)
	}
	pit := facts.LatestPointInTime
	annual := facts.LatestAnnual

	c := &checks{
		BalanceSheet: calc.ValidateBalanceSheet(
			value(facts.TotalAssets, pit),
			value(facts.TotalLiabilities, pit),
			value(facts.StockholdersEquity, pit),
			value(facts.LiabilitiesAndEquity, pit),
		),
		GrossProfit: calc.ValidateGrossProfit(
			value(facts.Revenue, annual),
			value(facts.CostOfRevenue, annual),
			value(facts.GrossProfit, annual),
		),
	}

	ni, rev := value(facts.NetIncome, annual), value(facts.Revenue, annual)
	assets, equity := value(facts.TotalAssets, pit), value(facts.StockholdersEquity, pit)
	if ni != nil && rev != nil && assets != nil && equity != nil {
		if d, ok := calc.DuPontROE(*ni, *rev, *assets, *equity); ok {
			c.DuPont = &d
		}
	}

	if rc, ok := table.Get(facts.Revenue); ok {
		if h := facts.HistoricalAnnual(facts.Resolve(cf, rc), 2); len(h) == 2 {
			if g, ok := calc.GrowthRate(h[0].Value, h[1].Value); ok {
				c.RevenueGrowth = &g
			}
		}
	}
	return c
}

// annualAmounts collects every 10-K USD amount of the us-gaap taxonomy, with
// prior-year comparatives merged away.
func annualAmounts(cf *edgar.CompanyFacts) []float64 {
	var values []float64
	for _, name := range cf.ConceptNames("us-gaap") {
		for _, f := range facts.Merge(cf.Facts(name, facts.USD)) {
			if f.IsAnnual() {
				values = append(values, f.Value)
			}
		}
	}
	return values
}
