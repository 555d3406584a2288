// Package facts turns reported XBRL facts into per-quarter values, trailing
// twelve month figures and latest-value selections.
//
// Upstream 10-Q filings report income-statement concepts as cumulative
// year-to-date amounts. Everything in this package is a pure function over an
// immutable slice of Fact values: no I/O, no caching, safe for concurrent use.
package facts

import (
	"fmt"
	"time"
)

// DateLayout is the date format used by the SEC companyfacts API.
const DateLayout = "2006-01-02"

// FiscalPeriod is the fiscal period code attached to a reported fact.
type FiscalPeriod string

const (
	Q1 FiscalPeriod = "Q1"
	Q2 FiscalPeriod = "Q2"
	Q3 FiscalPeriod = "Q3"
	// Q4 never appears upstream; it only labels reconstructed quarters.
	Q4 FiscalPeriod = "Q4"
	FY FiscalPeriod = "FY"
)

// IsYTDQuarter reports whether p is one of the cumulative interim periods.
func (p FiscalPeriod) IsYTDQuarter() bool {
	return p == Q1 || p == Q2 || p == Q3
}

// FormType classifies the filing a fact was reported in.
type FormType string

const (
	FormAnnual    FormType = "10-K"
	FormQuarterly FormType = "10-Q"
	// FormOther covers amendments, 8-K, 20-F and everything else. Facts with
	// this form are kept in a series but never selected.
	FormOther FormType = "other"
)

// ParseForm maps an upstream form string onto a FormType.
func ParseForm(form string) FormType {
	switch form {
	case string(FormAnnual):
		return FormAnnual
	case string(FormQuarterly):
		return FormQuarterly
	default:
		return FormOther
	}
}

// Unit is the unit bucket a fact is reported under.
type Unit string

const (
	USD          Unit = "USD"
	Shares       Unit = "shares"
	USDPerShares Unit = "USD/shares"
)

// Fact is one reported value for a concept.
//
// FiscalYear is 0 and FiscalPeriod is empty when upstream omits them.
// PeriodStart is zero for instant (balance sheet) facts.
type Fact struct {
	Concept      string
	PeriodStart  time.Time
	PeriodEnd    time.Time
	Value        float64
	Accession    string
	FiscalYear   int
	FiscalPeriod FiscalPeriod
	Form         FormType
	RawForm      string
	Filed        time.Time
}

// IsAnnual reports whether f is a full-year value from an annual filing.
func (f Fact) IsAnnual() bool {
	return f.Form == FormAnnual && f.FiscalPeriod == FY
}

// IsQuarterly reports whether f comes from a quarterly filing.
func (f Fact) IsQuarterly() bool {
	return f.Form == FormQuarterly
}

// Key returns the composite period key used for deduplication.
func (f Fact) Key() PeriodKey {
	return PeriodKey{
		FiscalYear:   f.FiscalYear,
		FiscalPeriod: f.FiscalPeriod,
		PeriodEnd:    f.PeriodEnd.Format(DateLayout),
	}
}

// newer reports whether a should be preferred over b when both describe the
// same slot: later period end, then longer reported span, then later filing.
func newer(a, b Fact) bool {
	if !a.PeriodEnd.Equal(b.PeriodEnd) {
		return a.PeriodEnd.After(b.PeriodEnd)
	}
	if longerSpan(a, b) {
		return true
	}
	if longerSpan(b, a) {
		return false
	}
	return a.Filed.After(b.Filed)
}

// longerSpan reports whether a covers a strictly longer period than b. Facts
// without a start date never win.
func longerSpan(a, b Fact) bool {
	if a.PeriodStart.IsZero() || b.PeriodStart.IsZero() {
		return false
	}
	return a.PeriodStart.Before(b.PeriodStart)
}

// PeriodKey identifies one reported period: fiscalYear|fiscalPeriod|periodEnd.
type PeriodKey struct {
	FiscalYear   int
	FiscalPeriod FiscalPeriod
	PeriodEnd    string
}

func (k PeriodKey) String() string {
	return fmt.Sprintf("%d|%s|%s", k.FiscalYear, k.FiscalPeriod, k.PeriodEnd)
}

// Series is a merged, deduplicated set of facts for one logical concept.
type Series []Fact

// Source supplies raw facts per concept name and unit. A concept that is
// absent returns nil.
type Source interface {
	Facts(concept string, unit Unit) []Fact
}

// QuarterValue is a reconstructed single-quarter amount.
type QuarterValue struct {
	FiscalYear int          `json:"fiscalYear"`
	Quarter    FiscalPeriod `json:"quarter"`
	Value      float64      `json:"value"`
	PeriodEnd  time.Time    `json:"endDate"`
	Filed      time.Time    `json:"filedDate"`
}

// Label renders the quarter as "2024 Q3".
func (q QuarterValue) Label() string {
	return fmt.Sprintf("%d %s", q.FiscalYear, q.Quarter)
}

// AnnualValue is one entry of a historical annual series.
type AnnualValue struct {
	FiscalYear int       `json:"fiscalYear"`
	Value      float64   `json:"value"`
	PeriodEnd  time.Time `json:"endDate"`
	Filed      time.Time `json:"filedDate"`
}
