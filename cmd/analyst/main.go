package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"myanalyst/internal/app"
	"myanalyst/internal/config"
	"myanalyst/internal/ratelimit"
	"myanalyst/internal/server"
	"myanalyst/internal/util"
)

func main() {
	cfg, err := config.Load(config.ConfigPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := util.InitLogger(cfg.LogLevel)

	cacheTTL, err := config.ParseMarketCacheTTL(cfg.MarketCacheTTL)
	if err != nil {
		util.Fatal("failed to parse market cache ttl", "err", err)
	}

	var limiter *ratelimit.FixedWindowLimiter
	if cfg.RedisAddr != "" && cfg.RateLimitPerMinute > 0 {
		limiter, err = ratelimit.NewFixedWindowLimiter(
			cfg.RedisAddr, cfg.RedisPassword, "myanalyst:ratelimit",
			cfg.RateLimitPerMinute, time.Minute)
		if err != nil {
			util.Fatal("failed to init rate limiter", "err", err)
		}
	}

	appCore, err := app.New(app.Config{
		DatabaseURL:    cfg.DatabaseURL,
		AnalysisURL:    cfg.AnalysisURL,
		RedisAddr:      cfg.RedisAddr,
		RedisPassword:  cfg.RedisPassword,
		MarketCacheTTL: cacheTTL,
	})
	if err != nil {
		util.Fatal("failed to init app", "err", err)
	}

	httpServer := server.New(server.Config{
		App:     appCore,
		Limiter: limiter,
	})

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:         addr,
		Handler:      httpServer.Router(),
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 180 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	slog.Info("analyst server listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", "err", err)
	}
}
