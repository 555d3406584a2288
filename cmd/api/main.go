package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"filing_analyzer/pkg/api/analysis"
	apiConfig "filing_analyzer/pkg/api/config"
	"filing_analyzer/pkg/api/filings"
	"filing_analyzer/pkg/core/activity"
	"filing_analyzer/pkg/core/agent"
	"filing_analyzer/pkg/core/cache"
	"filing_analyzer/pkg/core/config"
	"filing_analyzer/pkg/core/edgar"
	"filing_analyzer/pkg/core/facts"
	"filing_analyzer/pkg/core/logger"
	"filing_analyzer/pkg/core/metrics"
	"filing_analyzer/pkg/core/prompt"
	"filing_analyzer/pkg/core/scheduler"
	"filing_analyzer/pkg/core/store"
)

func main() {
	configPath := flag.String("config", config.DefaultPath, "path to the yaml config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "[FATAL] %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	flush, err := logger.Init(cfg.Log)
	if err != nil {
		return err
	}
	defer flush(context.Background())
	log := logger.Named("main")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c, err := openCache(cfg.Cache)
	if err != nil {
		return err
	}
	defer c.Close()

	client := edgar.NewClient(
		edgar.WithUserAgent(cfg.SEC.UserAgent),
		edgar.WithRateLimit(cfg.SEC.RateLimit),
		edgar.WithCache(c),
	)

	concepts, err := facts.LoadConcepts(cfg.ConceptsFile)
	if err != nil {
		return err
	}

	snapshots, err := openStore(ctx, cfg.Store)
	if err != nil {
		return err
	}
	if snapshots != nil {
		defer snapshots.Close()
	}

	// Initialize Prompt Library
	if err := prompt.LoadFromDirectory(prompt.Get(), cfg.PromptsDir); err != nil {
		log.Warn("failed to load prompt library, using built-in prompts", zap.Error(err))
	}
	agentMgr := agent.NewManager(cfg.LLM)

	stocks := metrics.NewService(client, metrics.NewAssembler(concepts), snapshots)
	act := activity.NewService(client)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	apiConfig.NewHandler(agentMgr).Register(mux)
	filings.NewHandler(stocks, client, act).Register(mux)
	analysis.NewHandler(stocks, act, agentMgr, prompt.Get(), snapshots).Register(mux)

	if cfg.Scheduler.Enabled {
		sched := scheduler.New(ctx, cfg.Scheduler, c, stocks)
		if err := sched.RegisterAll(); err != nil {
			return err
		}
		sched.Start()
		defer sched.Stop()
	}

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info("API server starting",
			zap.String("addr", cfg.ListenAddr),
			zap.String("provider", agentMgr.GetActiveProvider()),
			zap.Bool("snapshots", snapshots != nil))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func openCache(cfg config.CacheConfig) (cache.Cache, error) {
	if cfg.Backend == config.CacheBadger {
		return cache.NewBadgerCache(cfg.Dir)
	}
	return cache.NewMemoryCache(), nil
}

// openStore returns nil when neither database is configured.
func openStore(ctx context.Context, cfg config.StoreConfig) (store.SnapshotStore, error) {
	switch {
	case cfg.DatabaseURL != "":
		return store.NewPostgresStore(ctx, cfg.DatabaseURL)
	case cfg.SQLitePath != "":
		return store.NewSQLiteStore(cfg.SQLitePath)
	default:
		return nil, nil
	}
}
