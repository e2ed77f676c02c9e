package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/yndnr/relaychat-go/internal/infra/confloader"
	"github.com/yndnr/relaychat-go/internal/infra/shutdown"
	"github.com/yndnr/relaychat-go/internal/server/chatserver"
	"github.com/yndnr/relaychat-go/internal/server/config"
	"github.com/yndnr/relaychat-go/internal/telemetry/logger"
	"github.com/yndnr/relaychat-go/internal/telemetry/metric"
	"github.com/yndnr/relaychat-go/pkg/token"
)

// Build information, set via ldflags.
var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Parse command line flags
	var (
		configFile  = flag.String("config", "", "Path to configuration file")
		showVersion = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	// Show version and exit
	if *showVersion {
		fmt.Printf("relaychat-server %s (commit: %s, built: %s)\n", version, commit, buildTime)
		return nil
	}

	// Load configuration
	cfg, err := loadConfig(*configFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Initialize logger
	log, err := initLogger(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	log.Info("starting relaychat-server",
		"version", version,
		"commit", commit,
		"config", *configFile)

	// Initialize metrics
	registry := prometheus.NewRegistry()
	metrics := metric.New(registry)

	// Create the chat server
	srv, err := chatserver.New(&chatserver.Config{
		Addr:         cfg.Chat.Addr,
		AuthRequired: cfg.Chat.AuthRequired,
		TokenLength:  cfg.Chat.TokenLength,
		MessageRate:  cfg.Chat.MessageRate,
		StrikeLimit:  cfg.Chat.StrikeLimit,
		BanWindow:    cfg.Chat.BanWindow,
		ConnectRate:  cfg.Chat.ConnectRate,
	}, log, metrics)
	if err != nil {
		return fmt.Errorf("create server: %w", err)
	}

	if err := srv.Start(); err != nil {
		return fmt.Errorf("start server: %w", err)
	}

	// The token goes to the operator's terminal, never to the logs.
	if tok := srv.Token(); tok != "" {
		fmt.Printf("access token: %s\n", tok)
		log.Info("access token generated", "fingerprint", token.Fingerprint(tok))
	}

	// Setup graceful shutdown
	shutdownHandler := shutdown.NewHandler(30 * time.Second)

	shutdownHandler.OnShutdown(func(ctx context.Context) error {
		log.Info("shutting down chat server")
		return srv.Shutdown(ctx)
	})

	// Optional metrics endpoint; disabled unless an address is set.
	if cfg.Metrics.Addr != "" {
		metricsServer := &http.Server{
			Addr:    cfg.Metrics.Addr,
			Handler: metric.Handler(registry),
		}
		shutdownHandler.OnShutdown(func(ctx context.Context) error {
			log.Info("shutting down metrics server")
			return metricsServer.Shutdown(ctx)
		})
		go func() {
			log.Info("metrics server listening", "addr", cfg.Metrics.Addr)
			if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error("metrics server error", "error", err)
			}
		}()
	}

	// Watch the config file for live log level changes.
	if *configFile != "" {
		watcher, err := watchLogLevel(*configFile, log)
		if err != nil {
			log.Warn("config watcher unavailable", "error", err)
		} else {
			shutdownHandler.OnShutdown(func(ctx context.Context) error {
				return watcher.Stop()
			})
		}
	}

	// Wait for shutdown signal
	log.Info("server started, press Ctrl+C to stop")
	if err := shutdownHandler.Wait(); err != nil {
		log.Error("shutdown error", "error", err)
		return err
	}

	log.Info("server stopped gracefully")
	return nil
}

// loadConfig loads configuration from file and environment.
func loadConfig(configFile string) (*config.ServerConfig, error) {
	// Start with defaults
	cfg := config.Default()

	// Create loader with optional config file
	opts := []confloader.Option{}
	if configFile != "" {
		opts = append(opts, confloader.WithConfigFile(configFile))
	}

	loader := confloader.NewLoader(opts...)

	// Load and unmarshal
	if err := loader.Load(cfg); err != nil {
		return nil, err
	}

	// Validate configuration
	if err := config.Verify(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// initLogger initializes the structured logger.
func initLogger(cfg *config.ServerConfig) (logger.Logger, error) {
	log, err := logger.New(logger.Config{
		Level:    cfg.Log.Level,
		Format:   cfg.Log.Format,
		Output:   os.Stdout,
		SafeMode: cfg.Log.SafeMode,
	})
	if err != nil {
		return nil, err
	}

	// Set as default logger
	logger.SetDefault(log)

	return log, nil
}

// watchLogLevel re-reads the config file on change and applies its log
// level. Other settings require a restart.
func watchLogLevel(configFile string, log logger.Logger) (*confloader.Watcher, error) {
	watcher, err := confloader.NewWatcher(log)
	if err != nil {
		return nil, err
	}
	if err := watcher.Watch(configFile); err != nil {
		_ = watcher.Stop()
		return nil, err
	}

	watcher.OnChange(func(path string) {
		cfg, err := loadConfig(configFile)
		if err != nil {
			log.Warn("ignoring config change", "path", path, "error", err)
			return
		}
		if cfg.Log.Level != logger.GetLevel() {
			logger.SetLevel(cfg.Log.Level)
			log.Info("log level changed", "level", cfg.Log.Level)
		}
	})
	watcher.StartAsync()

	return watcher, nil
}
