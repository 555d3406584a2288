package edgar

import (
	"context"
	"fmt"
	"strings"

	"filing_analyzer/pkg/core/cache"
)

const (
	Form8K = "8-K"
	Form4  = "4"

	// DefaultExchange is reported when a filer lists no exchange.
	DefaultExchange = "NASDAQ"
)

// Submissions is the filing index of one company.
type Submissions struct {
	CIK            string   `json:"cik"`
	EntityType     string   `json:"entityType"`
	SIC            string   `json:"sic"`
	SICDescription string   `json:"sicDescription"`
	Name           string   `json:"name"`
	Tickers        []string `json:"tickers"`
	Exchanges      []string `json:"exchanges"`
	Filings        struct {
		Recent RecentFilings `json:"recent"`
	} `json:"filings"`
}

// RecentFilings is SEC's column-oriented list of recent filings. Every slice
// is indexed by filing.
type RecentFilings struct {
	AccessionNumber       []string `json:"accessionNumber"`
	FilingDate            []string `json:"filingDate"`
	ReportDate            []string `json:"reportDate"`
	AcceptanceDateTime    []string `json:"acceptanceDateTime"`
	Form                  []string `json:"form"`
	FileNumber            []string `json:"fileNumber"`
	FilmNumber            []string `json:"filmNumber"`
	Items                 []string `json:"items"`
	Size                  []int64  `json:"size"`
	PrimaryDocument       []string `json:"primaryDocument"`
	PrimaryDocDescription []string `json:"primaryDocDescription"`
}

// Filing is one row of RecentFilings.
type Filing struct {
	AccessionNumber       string `json:"accessionNumber"`
	FilingDate            string `json:"filingDate"`
	ReportDate            string `json:"reportDate"`
	AcceptanceDateTime    string `json:"acceptanceDateTime"`
	Form                  string `json:"form"`
	FileNumber            string `json:"fileNumber"`
	FilmNumber            string `json:"filmNumber"`
	Items                 string `json:"items"`
	Size                  int64  `json:"size"`
	PrimaryDocument       string `json:"primaryDocument"`
	PrimaryDocDescription string `json:"primaryDocDescription"`
}

// FetchSubmissions returns the filing index of cik.
func (c *Client) FetchSubmissions(ctx context.Context, cik string) (*Submissions, error) {
	cik = PadCIK(cik)
	url := fmt.Sprintf("%s/submissions/CIK%s.json", c.dataURL, cik)

	var subs Submissions
	if err := c.getJSON(ctx, url, "sec_submissions_"+cik, cache.TTLSubmissions, &subs); err != nil {
		return nil, fmt.Errorf("failed to fetch submissions for CIK %s: %w", cik, err)
	}
	return &subs, nil
}

// PrimaryExchange returns the first listed exchange.
func (s *Submissions) PrimaryExchange() string {
	if s == nil || len(s.Exchanges) == 0 || s.Exchanges[0] == "" {
		return DefaultExchange
	}
	return s.Exchanges[0]
}

// Recent returns up to limit filings of the given form, newest first as
// listed upstream. A limit <= 0 returns all.
func (s *Submissions) Recent(form string, limit int) []Filing {
	if s == nil {
		return nil
	}
	r := s.Filings.Recent
	var out []Filing
	for i, f := range r.Form {
		if f != form {
			continue
		}
		out = append(out, r.row(i))
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}

// Recent8K returns up to limit 8-K filings. Default 10.
func (s *Submissions) Recent8K(limit int) []Filing {
	if limit <= 0 {
		limit = 10
	}
	return s.Recent(Form8K, limit)
}

// RecentForm4 returns up to limit Form 4 filings. Default 20.
func (s *Submissions) RecentForm4(limit int) []Filing {
	if limit <= 0 {
		limit = 20
	}
	return s.Recent(Form4, limit)
}

func (r RecentFilings) row(i int) Filing {
	str := func(col []string) string {
		if i < len(col) {
			return col[i]
		}
		return ""
	}
	var size int64
	if i < len(r.Size) {
		size = r.Size[i]
	}
	return Filing{
		AccessionNumber:       str(r.AccessionNumber),
		FilingDate:            str(r.FilingDate),
		ReportDate:            str(r.ReportDate),
		AcceptanceDateTime:    str(r.AcceptanceDateTime),
		Form:                  str(r.Form),
		FileNumber:            str(r.FileNumber),
		FilmNumber:            str(r.FilmNumber),
		Items:                 str(r.Items),
		Size:                  size,
		PrimaryDocument:       str(r.PrimaryDocument),
		PrimaryDocDescription: str(r.PrimaryDocDescription),
	}
}

// Importance ranks an 8-K item.
type Importance string

const (
	High   Importance = "high"
	Medium Importance = "medium"
	Low    Importance = "low"
)

// EventItem is a decoded 8-K item code.
type EventItem struct {
	Code        string     `json:"code"`
	Description string     `json:"description"`
	Importance  Importance `json:"importance"`
}

var eightKItems = map[string]EventItem{
	"1.01": {Description: "Entry into Material Agreement", Importance: High},
	"1.02": {Description: "Termination of Material Agreement", Importance: High},
	"1.03": {Description: "Bankruptcy or Receivership", Importance: High},
	"1.04": {Description: "Mine Safety Disclosure", Importance: Low},
	"2.01": {Description: "Completion of Acquisition or Disposition", Importance: High},
	"2.02": {Description: "Results of Operations and Financial Condition", Importance: High},
	"2.03": {Description: "Creation of Direct Financial Obligation", Importance: Medium},
	"2.04": {Description: "Triggering Events - Acceleration of Obligations", Importance: High},
	"2.05": {Description: "Costs Associated with Exit or Disposal", Importance: Medium},
	"2.06": {Description: "Material Impairments", Importance: High},
	"3.01": {Description: "Notice of Delisting or Failure to Satisfy Listing Rule", Importance: High},
	"3.02": {Description: "Unregistered Sales of Equity Securities", Importance: Medium},
	"3.03": {Description: "Material Modification to Rights of Security Holders", Importance: Medium},
	"4.01": {Description: "Changes in Registrant's Certifying Accountant", Importance: High},
	"4.02": {Description: "Non-Reliance on Previously Issued Financial Statements", Importance: High},
	"5.01": {Description: "Changes in Control of Registrant", Importance: High},
	"5.02": {Description: "Departure/Election of Directors or Officers", Importance: High},
	"5.03": {Description: "Amendments to Articles of Incorporation or Bylaws", Importance: Low},
	"5.04": {Description: "Temporary Suspension of Trading", Importance: High},
	"5.05": {Description: "Amendments to Registrant's Code of Ethics", Importance: Low},
	"5.06": {Description: "Change in Shell Company Status", Importance: Medium},
	"5.07": {Description: "Submission of Matters to Vote of Security Holders", Importance: Low},
	"5.08": {Description: "Shareholder Director Nominations", Importance: Low},
	"6.01": {Description: "ABS Informational and Computational Material", Importance: Low},
	"6.02": {Description: "Change of Servicer or Trustee", Importance: Medium},
	"6.03": {Description: "Change in Credit Enhancement", Importance: Medium},
	"7.01": {Description: "Regulation FD Disclosure", Importance: Medium},
	"8.01": {Description: "Other Events", Importance: Low},
	"9.01": {Description: "Financial Statements and Exhibits", Importance: Low},
}

// ParseItems decodes a comma separated 8-K item list. Unknown codes are
// dropped.
func ParseItems(items string) []EventItem {
	out := []EventItem{}
	if strings.TrimSpace(items) == "" {
		return out
	}
	for _, code := range strings.Split(items, ",") {
		code = strings.TrimSpace(code)
		item, ok := eightKItems[code]
		if !ok {
			continue
		}
		item.Code = code
		out = append(out, item)
	}
	return out
}

// FilingViewerURL links to SEC's interactive viewer for a filing.
func FilingViewerURL(cik, accession string) string {
	return fmt.Sprintf("https://www.sec.gov/cgi-bin/viewer?action=view&cik=%s&accession_number=%s&xbrl_type=v",
		cik, accession)
}

// Sentiment summarizes insider activity.
type Sentiment string

const (
	Bullish Sentiment = "bullish"
	Bearish Sentiment = "bearish"
	Neutral Sentiment = "neutral"
)

// InsiderSummary counts buy and sell Form 4 filings.
type InsiderSummary struct {
	TotalTransactions int       `json:"totalTransactions"`
	BuyTransactions   int       `json:"buyTransactions"`
	SellTransactions  int       `json:"sellTransactions"`
	Sentiment         Sentiment `json:"sentiment"`
}

// SummarizeInsiders classifies Form 4 filings by their primary document
// description.
func SummarizeInsiders(filings []Filing) InsiderSummary {
	s := InsiderSummary{TotalTransactions: len(filings)}
	for _, f := range filings {
		desc := strings.ToLower(f.PrimaryDocDescription)
		if strings.Contains(desc, "purchase") {
			s.BuyTransactions++
		}
		if strings.Contains(desc, "sale") {
			s.SellTransactions++
		}
	}
	switch {
	case s.BuyTransactions > s.SellTransactions:
		s.Sentiment = Bullish
	case s.SellTransactions > s.BuyTransactions:
		s.Sentiment = Bearish
	default:
		s.Sentiment = Neutral
	}
	return s
}
