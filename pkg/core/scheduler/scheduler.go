// Package scheduler runs the periodic cache sweep and the watchlist warm-up.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"filing_analyzer/pkg/core/cache"
	"filing_analyzer/pkg/core/config"
	"filing_analyzer/pkg/core/logger"
	"filing_analyzer/pkg/core/metrics"
)

// warmTimeout bounds one ticker's fetch during warm-up.
const warmTimeout = 2 * time.Minute

// StockLoader fetches and assembles one ticker. metrics.Service satisfies it.
type StockLoader interface {
	Stock(ctx context.Context, ticker string) (*metrics.StockData, error)
}

// Scheduler manages the cron tasks.
type Scheduler struct {
	Cron   *cron.Cron
	Cache  cache.Cache
	Loader StockLoader
	Ctx    context.Context

	cfg config.SchedulerConfig
	log *zap.Logger
}

// New creates a Scheduler. loader may be nil when no warm-up is wanted.
func New(ctx context.Context, cfg config.SchedulerConfig, c cache.Cache, loader StockLoader) *Scheduler {
	return &Scheduler{
		Cron:   cron.New(),
		Cache:  c,
		Loader: loader,
		Ctx:    ctx,
		cfg:    cfg,
		log:    logger.Named("scheduler"),
	}
}

// RegisterAll registers the cleanup task and, when a watchlist is
// configured, the warm-up task.
func (s *Scheduler) RegisterAll() error {
	if s.cfg.CleanupSchedule != "" && s.Cache != nil {
		if _, err := s.Cron.AddFunc(s.cfg.CleanupSchedule, func() { s.CleanupNow() }); err != nil {
			return fmt.Errorf("register cleanup task: %w", err)
		}
	}
	if s.cfg.WarmupSchedule != "" && s.Loader != nil && len(s.cfg.Watchlist) > 0 {
		if _, err := s.Cron.AddFunc(s.cfg.WarmupSchedule, func() { s.WarmNow(s.Ctx) }); err != nil {
			return fmt.Errorf("register warmup task: %w", err)
		}
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.log.Info("scheduler started", zap.Int("tasks", len(s.Cron.Entries())))
}

// Stop stops the scheduler and waits for running tasks.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.log.Info("scheduler stopped")
}

// CleanupNow sweeps expired cache entries and returns how many were removed.
func (s *Scheduler) CleanupNow() int {
	removed := s.Cache.Cleanup()
	s.log.Debug("cache cleanup", zap.Int("removed", removed), zap.Int("remaining", s.Cache.Len()))
	return removed
}

// WarmNow loads every watchlist ticker in turn. Failures are logged and do
// not stop the run. It returns the number of tickers loaded.
func (s *Scheduler) WarmNow(ctx context.Context) int {
	warmed := 0
	for _, ticker := range s.cfg.Watchlist {
		if ctx.Err() != nil {
			break
		}
		tctx, cancel := context.WithTimeout(ctx, warmTimeout)
		_, err := s.Loader.Stock(tctx, ticker)
		cancel()
		if err != nil {
			s.log.Warn("warmup failed", zap.String("ticker", ticker), zap.Error(err))
			continue
		}
		warmed++
	}
	s.log.Info("warmup finished", zap.Int("warmed", warmed), zap.Int("watchlist", len(s.cfg.Watchlist)))
	return warmed
}
