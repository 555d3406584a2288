package calc

import (
	"math"
	"testing"
)

func approx(t *testing.T, name string, got *float64, want float64) {
	t.Helper()
	if got == nil {
		t.Errorf("%s: expected %f, got nil", name, want)
		return
	}
	if math.Abs(*got-want) > 0.0001 {
		t.Errorf("%s: expected %f, got %f", name, want, *got)
	}
}

func TestCompute(t *testing.T) {
	// Revenue 1000, GP 400, OI 200, NI 150
	// Assets 2000, Equity 800, CA 600, CL 300, Inventory 100, Cash 150, Debt 400
	in := Inputs{
		Revenue:            Float(1000),
		GrossProfit:        Float(400),
		OperatingIncome:    Float(200),
		NetIncome:          Float(150),
		InterestExpense:    Float(-20),
		TotalAssets:        Float(2000),
		CurrentAssets:      Float(600),
		CurrentLiabilities: Float(300),
		Cash:               Float(150),
		Inventory:          Float(100),
		StockholdersEquity: Float(800),
		TotalDebt:          Float(400),
	}

	r := Compute(in)
	approx(t, "gross margin", r.GrossMargin, 40)
	approx(t, "operating margin", r.OperatingMargin, 20)
	approx(t, "net margin", r.NetMargin, 15)
	approx(t, "roe", r.ROE, 18.75)
	approx(t, "roa", r.ROA, 7.5)
	approx(t, "current ratio", r.CurrentRatio, 2)
	approx(t, "quick ratio", r.QuickRatio, 500.0/300.0)
	approx(t, "cash ratio", r.CashRatio, 0.5)
	approx(t, "debt to equity", r.DebtToEquity, 0.5)
	approx(t, "debt to assets", r.DebtToAssets, 20)
	approx(t, "equity multiplier", r.EquityMultiplier, 2.5)
	approx(t, "asset turnover", r.AssetTurnover, 0.5)
	approx(t, "interest coverage", r.InterestCoverage, 10)
}

func TestGrossMarginFallback(t *testing.T) {
	// No gross profit reported: (1000 - 700) / 1000
	approx(t, "gross margin from COGS", GrossMargin(Float(1000), nil, Float(700)), 30)

	if GrossMargin(Float(0), Float(10), Float(5)) != nil {
		t.Error("zero revenue must leave gross margin undefined")
	}
	if GrossMargin(nil, Float(10), nil) != nil {
		t.Error("missing revenue must leave gross margin undefined")
	}
}

func TestUndefinedRatios(t *testing.T) {
	r := Compute(Inputs{
		NetIncome:          Float(100),
		StockholdersEquity: Float(-50),
		TotalAssets:        Float(0),
		CurrentAssets:      Float(10),
	})

	if r.ROE != nil {
		t.Errorf("negative equity: expected nil ROE, got %f", *r.ROE)
	}
	if r.ROA != nil {
		t.Errorf("zero assets: expected nil ROA, got %f", *r.ROA)
	}
	if r.CurrentRatio != nil || r.QuickRatio != nil {
		t.Error("missing current liabilities must leave liquidity ratios undefined")
	}
	if r.GrossMargin != nil || r.NetMargin != nil || r.AssetTurnover != nil {
		t.Error("missing revenue must leave margins undefined")
	}
	if r.InterestCoverage != nil {
		t.Error("missing interest expense must leave coverage undefined")
	}

	approx(t, "quick ratio without inventory", QuickRatio(Float(300), nil, Float(100)), 3)
}

func TestDuPontROE(t *testing.T) {
	res, ok := DuPontROE(60, 1000, 500, 400)
	if !ok {
		t.Fatal("expected DuPont result")
	}
	// 0.06 * 2 * 1.25 = 0.15 = 60 / 400
	if math.Abs(res.ROE-0.15) > 0.0001 {
		t.Errorf("Expected ROE 0.15, got %f", res.ROE)
	}
	if _, ok := DuPontROE(60, 1000, 500, 0); ok {
		t.Error("zero equity should be rejected")
	}
}

func TestGrowthRate(t *testing.T) {
	g, ok := GrowthRate(110, 100)
	if !ok || math.Abs(g-0.10) > 0.0001 {
		t.Errorf("Expected 0.10, got %f", g)
	}
	// recovering from a loss is still positive growth
	g, ok = GrowthRate(50, -100)
	if !ok || math.Abs(g-1.5) > 0.0001 {
		t.Errorf("Expected 1.5, got %f", g)
	}
	if _, ok := GrowthRate(1, 0); ok {
		t.Error("zero prior should be undefined")
	}
}
