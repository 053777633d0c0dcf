package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/cloudsim-labs/simulation-gateway/internal/items"
	"github.com/cloudsim-labs/simulation-gateway/pkg/config"
	"github.com/cloudsim-labs/simulation-gateway/pkg/logger"
)

func main() {
	var addr string
	var configPath string
	var dbPath string
	var logLevel string
	var logFormat string

	flag.StringVar(&addr, "addr", "", "HTTP listen address (overrides config)")
	flag.StringVar(&configPath, "config", "", "path to YAML config file")
	flag.StringVar(&dbPath, "db", "", "path to SQLite database file (overrides config)")
	flag.StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	flag.StringVar(&logFormat, "log-format", "", "log format (text, json)")
	flag.Parse()

	_ = godotenv.Load()

	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			logger.Error("failed to load config", "path", configPath, "error", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if addr != "" {
		cfg.Items.Addr = addr
	}
	if dbPath != "" {
		cfg.Items.DBPath = dbPath
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if logFormat != "" {
		cfg.LogFormat = logFormat
	}

	logger.SetDefault(logger.New(cfg.LogLevel, cfg.LogFormat, os.Stdout))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := items.Open(cfg.Items.DBPath)
	if err != nil {
		logger.Error("failed to open item store", "path", cfg.Items.DBPath, "error", err)
		os.Exit(1)
	}
	defer store.Close()
	logger.Info("item store opened", "path", cfg.Items.DBPath)

	httpSrv := &http.Server{
		Addr:              cfg.Items.Addr,
		Handler:           items.NewHTTPServer(store).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		logger.Info("HTTP server listening", "addr", cfg.Items.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown requested")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP shutdown error", "error", err)
	}
}
