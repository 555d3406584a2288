package activity

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"filing_analyzer/pkg/core/edgar"
)

type fakeFetcher struct {
	subs    *edgar.Submissions
	cikErr  error
	subsErr error
	docs    map[string]string
	docReqs []string
}

func (f *fakeFetcher) LookupCIK(_ context.Context, ticker string) (string, error) {
	if f.cikErr != nil {
		return "", f.cikErr
	}
	return "0000320193", nil
}

func (f *fakeFetcher) FetchSubmissions(context.Context, string) (*edgar.Submissions, error) {
	return f.subs, f.subsErr
}

func (f *fakeFetcher) FetchDocumentText(_ context.Context, _, accession, _ string, maxChars int) (string, error) {
	f.docReqs = append(f.docReqs, accession)
	text, ok := f.docs[accession]
	if !ok {
		return "", edgar.ErrNotFound
	}
	if len(text) > maxChars {
		text = text[:maxChars]
	}
	return text, nil
}

func sampleSubmissions() *edgar.Submissions {
	s := &edgar.Submissions{CIK: "320193", Name: "Apple Inc."}
	r := &s.Filings.Recent
	r.AccessionNumber = []string{"a-1", "a-2", "a-3", "a-4", "a-5"}
	r.FilingDate = []string{"2024-05-02", "2024-04-20", "2024-04-10", "2024-02-01", "2024-01-15"}
	r.Form = []string{"8-K", "4", "4", "8-K", "4"}
	r.Items = []string{"2.02,9.01", "", "", "5.02,99.99", ""}
	r.PrimaryDocument = []string{"ev1.htm", "f1.xml", "f2.xml", "ev2.htm", "f3.xml"}
	r.PrimaryDocDescription = []string{"", "Open market sale", "Sale of shares", "", "Purchase"}
	return s
}

func TestEvents(t *testing.T) {
	f := &fakeFetcher{subs: sampleSubmissions()}
	events, err := NewService(f).Events(context.Background(), " aapl ", false)
	require.NoError(t, err)

	require.Len(t, events, 2)
	assert.Equal(t, "a-1", events[0].AccessionNumber)
	assert.Equal(t, []edgar.EventItem{
		{Code: "2.02", Description: "Results of Operations and Financial Condition", Importance: edgar.High},
		{Code: "9.01", Description: "Financial Statements and Exhibits", Importance: edgar.Low},
	}, events[0].ParsedItems)
	assert.Equal(t, edgar.FilingViewerURL("0000320193", "a-1"), events[0].URL)

	// Unknown item codes are dropped.
	require.Len(t, events[1].ParsedItems, 1)
	assert.Equal(t, "5.02", events[1].ParsedItems[0].Code)

	assert.Empty(t, f.docReqs)
	assert.Empty(t, events[0].Excerpt)
}

func TestEventsWithExcerpts(t *testing.T) {
	f := &fakeFetcher{subs: sampleSubmissions(), docs: map[string]string{"a-1": "Apple reports second quarter results"}}
	events, err := NewService(f).Events(context.Background(), "AAPL", true)
	require.NoError(t, err)

	assert.Equal(t, []string{"a-1", "a-4"}, f.docReqs)
	assert.Equal(t, "Apple reports second quarter results", events[0].Excerpt)
	// A document that cannot be fetched leaves the event without an excerpt.
	assert.Empty(t, events[1].Excerpt)
}

func TestInsiders(t *testing.T) {
	ins, err := NewService(&fakeFetcher{subs: sampleSubmissions()}).Insiders(context.Background(), "AAPL")
	require.NoError(t, err)

	assert.Len(t, ins.Filings, 3)
	assert.Equal(t, edgar.InsiderSummary{
		TotalTransactions: 3,
		BuyTransactions:   1,
		SellTransactions:  2,
		Sentiment:         edgar.Bearish,
	}, ins.Summary)
}

func TestInsidersEmpty(t *testing.T) {
	ins, err := NewService(&fakeFetcher{subs: &edgar.Submissions{}}).Insiders(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.NotNil(t, ins.Filings)
	assert.Equal(t, edgar.Neutral, ins.Summary.Sentiment)
}

func TestErrors(t *testing.T) {
	ctx := context.Background()
	svc := NewService(&fakeFetcher{cikErr: edgar.ErrTickerNotFound})
	_, err := svc.Events(ctx, "NOPE", false)
	assert.ErrorIs(t, err, edgar.ErrTickerNotFound)
	_, err = svc.Insiders(ctx, "NOPE")
	assert.ErrorIs(t, err, edgar.ErrTickerNotFound)

	upstream := errors.New("boom")
	svc = NewService(&fakeFetcher{subsErr: upstream})
	_, err = svc.Events(ctx, "AAPL", false)
	assert.ErrorIs(t, err, upstream)
}
