package metrics

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"filing_analyzer/pkg/core/edgar"
	"filing_analyzer/pkg/core/logger"
	"filing_analyzer/pkg/core/store"
)

// ErrNoData is returned when a company has no usable facts.
var ErrNoData = errors.New("no SEC filing data")

// Fetcher is the subset of edgar.Client the service needs.
type Fetcher interface {
	LookupCIK(ctx context.Context, ticker string) (string, error)
	FetchCompanyFacts(ctx context.Context, cik string) (*edgar.CompanyFacts, error)
	FetchSubmissions(ctx context.Context, cik string) (*edgar.Submissions, error)
}

// Service resolves a ticker and assembles its StockData.
type Service struct {
	fetcher   Fetcher
	assembler *Assembler
	snapshots store.SnapshotStore
	log       *zap.Logger
}

// NewService builds a Service. snapshots may be nil.
func NewService(fetcher Fetcher, assembler *Assembler, snapshots store.SnapshotStore) *Service {
	if assembler == nil {
		assembler = NewAssembler(nil)
	}
	return &Service{
		fetcher:   fetcher,
		assembler: assembler,
		snapshots: snapshots,
		log:       logger.Named("metrics"),
	}
}

// Stock returns the assembled record for ticker. Unknown tickers return an
// error wrapping edgar.ErrTickerNotFound; companies without facts return
// ErrNoData.
func (s *Service) Stock(ctx context.Context, ticker string) (sd *StockData, err error) {
	ticker = edgar.NormalizeTicker(ticker)
	ctx, span := logger.StartSpan(ctx, "metrics.Stock", attribute.String("ticker", ticker))
	defer func() { logger.EndSpan(span, err) }()

	cik, err := s.fetcher.LookupCIK(ctx, ticker)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", ticker, err)
	}

	cf, err := s.fetcher.FetchCompanyFacts(ctx, cik)
	if err != nil {
		if errors.Is(err, edgar.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", ticker, ErrNoData)
		}
		return nil, err
	}
	if len(cf.Taxonomies) == 0 {
		return nil, fmt.Errorf("%s: %w", ticker, ErrNoData)
	}

	// The filing index only adds the exchange; carry on without it.
	subs, err := s.fetcher.FetchSubmissions(ctx, cik)
	if err != nil {
		s.log.Warn("submissions unavailable",
			zap.String("ticker", ticker), zap.String("cik", cik), zap.Error(err))
		subs = nil
	}

	sd = s.assembler.Assemble(ticker, cf, subs)
	s.log.Info("assembled stock data",
		zap.String("ticker", ticker),
		zap.String("cik", sd.CIK),
		zap.Bool("quarterly", sd.Quarterly != nil))

	s.saveSnapshot(ctx, sd)
	return sd, nil
}

func (s *Service) saveSnapshot(ctx context.Context, sd *StockData) {
	if s.snapshots == nil {
		return
	}
	snap, err := store.NewSnapshot(sd.Symbol, sd.CIK, store.KindStock, sd)
	if err == nil {
		err = s.snapshots.Save(ctx, snap)
	}
	if err != nil {
		s.log.Warn("snapshot not saved", zap.String("ticker", sd.Symbol), zap.Error(err))
	}
}
