package app

import (
	"fmt"
	"time"

	"myanalyst/pkg/analysis"
	"myanalyst/pkg/marketcache"
	"myanalyst/pkg/store"
)

// Config holds runtime configuration for the core application.
type Config struct {
	DatabaseURL    string
	Store          store.Store
	AnalysisURL    string
	Analysis       *analysis.Client
	RedisAddr      string
	RedisPassword  string
	MarketCacheTTL time.Duration
	Cache          *marketcache.Cache
}

// App is the core application service wiring storage, the analysis
// service client, and the market cache together.
type App struct {
	store    store.Store
	analysis *analysis.Client
	cache    *marketcache.Cache
}

// New constructs the application with database-backed storage.
func New(cfg Config) (*App, error) {
	dataStore := cfg.Store
	if dataStore == nil {
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("database URL required")
		}
		var err error
		dataStore, err = store.NewGormStore(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("init postgres store: %w", err)
		}
	}

	client := cfg.Analysis
	if client == nil {
		if cfg.AnalysisURL == "" {
			return nil, fmt.Errorf("analysis service URL required")
		}
		client = analysis.NewClient(cfg.AnalysisURL)
	}

	cache := cfg.Cache
	if cache == nil && cfg.RedisAddr != "" {
		cache = marketcache.New(cfg.RedisAddr, cfg.RedisPassword, cfg.MarketCacheTTL)
	}

	return &App{
		store:    dataStore,
		analysis: client,
		cache:    cache,
	}, nil
}
