package facts

import (
	"fmt"
	"time"
)

func date(s string) time.Time {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

// ytd builds a cumulative 10-Q fact starting at fiscal year start.
func ytd(fy int, fp FiscalPeriod, start, end string, value float64, filed string) Fact {
	return Fact{
		Concept:      "Revenues",
		PeriodStart:  date(start),
		PeriodEnd:    date(end),
		Value:        value,
		FiscalYear:   fy,
		FiscalPeriod: fp,
		Form:         FormQuarterly,
		RawForm:      "10-Q",
		Filed:        date(filed),
	}
}

func annual(fy int, start, end string, value float64, filed string) Fact {
	return Fact{
		Concept:      "Revenues",
		PeriodStart:  date(start),
		PeriodEnd:    date(end),
		Value:        value,
		FiscalYear:   fy,
		FiscalPeriod: FY,
		Form:         FormAnnual,
		RawForm:      "10-K",
		Filed:        date(filed),
	}
}

func instant(form FormType, fy int, fp FiscalPeriod, end string, value float64, filed string) Fact {
	return Fact{
		Concept:      "Assets",
		PeriodEnd:    date(end),
		Value:        value,
		FiscalYear:   fy,
		FiscalPeriod: fp,
		Form:         form,
		RawForm:      string(form),
		Filed:        date(filed),
	}
}

// calendarYear returns Q1..Q3 YTD and FY facts for a calendar fiscal year.
func calendarYear(fy int, q1, q2, q3, full float64) []Fact {
	y := func(md string) string { return fmt.Sprintf("%d%s", fy, md) }
	next := fmt.Sprintf("%d", fy+1)
	return []Fact{
		ytd(fy, Q1, y("-01-01"), y("-03-31"), q1, y("-05-01")),
		ytd(fy, Q2, y("-01-01"), y("-06-30"), q2, y("-08-01")),
		ytd(fy, Q3, y("-01-01"), y("-09-30"), q3, y("-11-01")),
		annual(fy, y("-01-01"), y("-12-31"), full, next+"-02-15"),
	}
}

type fakeSource map[string][]Fact

func (s fakeSource) Facts(concept string, unit Unit) []Fact {
	return s[concept+"/"+string(unit)]
}
