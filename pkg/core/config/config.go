// Package config loads application settings from config/app.yaml, a .env
// file and the process environment, in that order of precedence (env wins).
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"

	"filing_analyzer/pkg/core/agent"
	"filing_analyzer/pkg/core/edgar"
	"filing_analyzer/pkg/core/logger"
)

// DefaultPath is where Load looks for the yaml file when none is given.
const DefaultPath = "config/app.yaml"

const (
	CacheMemory = "memory"
	CacheBadger = "badger"
)

type Config struct {
	ListenAddr string        `yaml:"listen_addr" validate:"required"`
	SEC        SECConfig     `yaml:"sec"`
	Cache      CacheConfig   `yaml:"cache"`
	Store      StoreConfig   `yaml:"store"`
	Log        logger.Config `yaml:"log"`
	LLM        agent.Config  `yaml:"llm"`

	// PromptsDir holds JSON prompt overrides; empty keeps the built-ins.
	PromptsDir   string          `yaml:"prompts_dir"`
	// ConceptsFile is an optional HJSON concept table override.
	ConceptsFile string          `yaml:"concepts_file"`
	Scheduler    SchedulerConfig `yaml:"scheduler"`
}

type SECConfig struct {
	// SEC rejects requests without a contact User-Agent.
	UserAgent string `yaml:"user_agent" validate:"required"`
	RateLimit int    `yaml:"rate_limit" validate:"gte=1,lte=10"`
}

type CacheConfig struct {
	Backend string `yaml:"backend" validate:"oneof=memory badger"`
	Dir     string `yaml:"dir" validate:"required_if=Backend badger"`
}

// StoreConfig selects the snapshot store. DatabaseURL takes precedence over
// SQLitePath; with neither set, snapshots are not persisted.
type StoreConfig struct {
	DatabaseURL string `yaml:"database_url"`
	SQLitePath  string `yaml:"sqlite_path"`
}

type SchedulerConfig struct {
	Enabled         bool     `yaml:"enabled"`
	CleanupSchedule string   `yaml:"cleanup_schedule" validate:"required_if=Enabled true"`
	WarmupSchedule  string   `yaml:"warmup_schedule"`
	Watchlist       []string `yaml:"watchlist" validate:"dive,required"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		ListenAddr: ":8080",
		SEC: SECConfig{
			UserAgent: edgar.DefaultUserAgent,
			RateLimit: edgar.DefaultRateLimit,
		},
		Cache: CacheConfig{Backend: CacheMemory},
		Log:   logger.Config{Level: "info", Format: "json"},
		LLM:   agent.Config{ActiveProvider: "openai"},
		Scheduler: SchedulerConfig{
			Enabled:         true,
			CleanupSchedule: "@every 10m",
			WarmupSchedule:  "@daily",
		},
	}
}

// Load reads path (DefaultPath when empty) on top of Default, then applies
// .env and environment overrides and validates the result. A missing file is
// not an error.
func Load(path string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	cfg := Default()
	if path == "" {
		path = DefaultPath
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the struct tags.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("SEC_USER_AGENT"); v != "" {
		cfg.SEC.UserAgent = v
	}
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Store.DatabaseURL = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Store.SQLitePath = v
	}
	if v := os.Getenv("CACHE_BACKEND"); v != "" {
		cfg.Cache.Backend = strings.ToLower(v)
	}
	if v := os.Getenv("CACHE_DIR"); v != "" {
		cfg.Cache.Dir = v
	}
	if v := os.Getenv("LLM_PROVIDER"); v != "" {
		cfg.LLM.ActiveProvider = strings.ToLower(v)
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("LOG_TRACING_ENABLED"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid LOG_TRACING_ENABLED %q: %w", v, err)
		}
		cfg.Log.TracingEnabled = enabled
	}
	if v := os.Getenv("CONCEPTS_FILE"); v != "" {
		cfg.ConceptsFile = v
	}
	if v := os.Getenv("PROMPTS_DIR"); v != "" {
		cfg.PromptsDir = v
	}
	return nil
}
