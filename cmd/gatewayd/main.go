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

	"github.com/cloudsim-labs/simulation-gateway/internal/gateway"
	"github.com/cloudsim-labs/simulation-gateway/internal/provider"
	"github.com/cloudsim-labs/simulation-gateway/pkg/config"
	"github.com/cloudsim-labs/simulation-gateway/pkg/logger"
	"github.com/cloudsim-labs/simulation-gateway/pkg/utils"
)

// newProviderClient builds the provider backend selected by the config.
func newProviderClient(cfg *config.GatewayConfig) (provider.Client, error) {
	switch cfg.Provider.Mode {
	case "cloud":
		apiKey := cfg.Provider.APIKey
		if apiKey == "" {
			apiKey = os.Getenv("CLOUD_API_KEY")
		}

		timeout, err := cfg.Provider.GetTimeout()
		if err != nil {
			return nil, err
		}

		backoff := utils.BackoffFromConfig(cfg.Provider.RetryBackoff, cfg.Provider.RetryBaseMs, 0)
		return provider.NewCloudClient(apiKey,
			provider.WithBaseURL(cfg.Provider.BaseURL),
			provider.WithTimeout(timeout),
			provider.WithRetry(cfg.Provider.MaxRetries, backoff),
		), nil
	default:
		return provider.NewMockClient(), nil
	}
}

func main() {
	var addr string
	var configPath string
	var logLevel string
	var logFormat string

	flag.StringVar(&addr, "addr", "", "HTTP listen address (overrides config)")
	flag.StringVar(&configPath, "config", "", "path to YAML config file")
	flag.StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	flag.StringVar(&logFormat, "log-format", "", "log format (text, json)")
	flag.Parse()

	// Optional .env for local development; the file is not required.
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
		cfg.Gateway.Addr = addr
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

	client, err := newProviderClient(&cfg.Gateway)
	if err != nil {
		logger.Error("failed to configure provider", "mode", cfg.Gateway.Provider.Mode, "error", err)
		os.Exit(1)
	}
	logger.Info("provider configured", "mode", cfg.Gateway.Provider.Mode)

	httpSrv := &http.Server{
		Addr:              cfg.Gateway.Addr,
		Handler:           gateway.NewHTTPServer(gateway.New(client)).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		logger.Info("HTTP server listening", "addr", cfg.Gateway.Addr)
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
