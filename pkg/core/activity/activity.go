// Package activity reads a company's recent material events (8-K) and
// insider filings (Form 4) from its filing index.
package activity

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"filing_analyzer/pkg/core/edgar"
	"filing_analyzer/pkg/core/logger"
)

const (
	EventLimit   = 15
	InsiderLimit = 20
	// ExcerptChars caps the document text attached to each event.
	ExcerptChars = 1500
)

// Fetcher is the subset of edgar.Client the service needs.
type Fetcher interface {
	LookupCIK(ctx context.Context, ticker string) (string, error)
	FetchSubmissions(ctx context.Context, cik string) (*edgar.Submissions, error)
	FetchDocumentText(ctx context.Context, cik, accession, primaryDoc string, maxChars int) (string, error)
}

// Event is an 8-K filing with its decoded items.
type Event struct {
	edgar.Filing
	ParsedItems []edgar.EventItem `json:"parsedItems"`
	URL         string            `json:"url"`
	Excerpt     string            `json:"excerpt,omitempty"`
}

// Insiders lists Form 4 filings with their buy/sell summary.
type Insiders struct {
	Filings []edgar.Filing       `json:"filings"`
	Summary edgar.InsiderSummary `json:"summary"`
}

type Service struct {
	fetcher Fetcher
	log     *zap.Logger
}

func NewService(fetcher Fetcher) *Service {
	return &Service{fetcher: fetcher, log: logger.Named("activity")}
}

func (s *Service) submissions(ctx context.Context, ticker string) (string, *edgar.Submissions, error) {
	cik, err := s.fetcher.LookupCIK(ctx, ticker)
	if err != nil {
		return "", nil, fmt.Errorf("resolve %s: %w", ticker, err)
	}
	subs, err := s.fetcher.FetchSubmissions(ctx, cik)
	if err != nil {
		return "", nil, err
	}
	return cik, subs, nil
}

// Events returns the latest 8-K filings newest first. With excerpts set, the
// primary document text is attached where it can be fetched.
func (s *Service) Events(ctx context.Context, ticker string, excerpts bool) (events []Event, err error) {
	ticker = edgar.NormalizeTicker(ticker)
	ctx, span := logger.StartSpan(ctx, "activity.Events",
		attribute.String("ticker", ticker), attribute.Bool("excerpts", excerpts))
	defer func() { logger.EndSpan(span, err) }()

	cik, subs, err := s.submissions(ctx, ticker)
	if err != nil {
		return nil, err
	}

	filings := subs.Recent8K(EventLimit)
	events = make([]Event, 0, len(filings))
	for _, f := range filings {
		ev := Event{
			Filing:      f,
			ParsedItems: edgar.ParseItems(f.Items),
			URL:         edgar.FilingViewerURL(cik, f.AccessionNumber),
		}
		if excerpts {
			text, err := s.fetcher.FetchDocumentText(ctx, cik, f.AccessionNumber, f.PrimaryDocument, ExcerptChars)
			if err != nil {
				s.log.Warn("event excerpt unavailable",
					zap.String("ticker", ticker), zap.String("accession", f.AccessionNumber), zap.Error(err))
			}
			ev.Excerpt = text
		}
		events = append(events, ev)
	}
	return events, nil
}

// Insiders returns the latest Form 4 filings and their sentiment.
func (s *Service) Insiders(ctx context.Context, ticker string) (ins *Insiders, err error) {
	ticker = edgar.NormalizeTicker(ticker)
	ctx, span := logger.StartSpan(ctx, "activity.Insiders", attribute.String("ticker", ticker))
	defer func() { logger.EndSpan(span, err) }()

	_, subs, err := s.submissions(ctx, ticker)
	if err != nil {
		return nil, err
	}
	filings := subs.RecentForm4(InsiderLimit)
	if filings == nil {
		filings = []edgar.Filing{}
	}
	return &Insiders{Filings: filings, Summary: edgar.SummarizeInsiders(filings)}, nil
}
