package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chatcourse/internal/config"
	"chatcourse/internal/constants"
	"chatcourse/internal/database"
	"chatcourse/internal/retry"
	"chatcourse/internal/service"
	"chatcourse/internal/tracing"
	"chatcourse/pkg/discourse"
	"chatcourse/pkg/googlechat"

	"github.com/sirupsen/logrus"
)

var (
	// Version information (set at build time)
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"

	// CLI flags
	verbose    = flag.Bool("verbose", false, "Enable verbose logging (includes sensitive information)")
	configPath = flag.String("config", "config.json", "Path to configuration file")
	version    = flag.Bool("version", false, "Show version information")
)

func main() {
	flag.Parse()

	if *version {
		fmt.Printf("chatcourse %s\nBuild Time: %s\nGit Commit: %s\n", Version, BuildTime, GitCommit)
		os.Exit(0)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		logrus.Fatalf("Application error: %v", err)
	}
}

func run(ctx context.Context) error {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	logger.WithFields(logrus.Fields{
		"version": Version,
		"build":   BuildTime,
		"commit":  GitCommit,
	}).Info("Starting chatcourse")

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if *verbose {
		logger.SetLevel(logrus.DebugLevel)
		logger.Info("Verbose logging enabled - sensitive information will be logged")
	} else if cfg.LogLevel != "" {
		level, err := logrus.ParseLevel(cfg.LogLevel)
		if err != nil {
			logger.Warnf("Invalid log level %q, defaulting to info", cfg.LogLevel)
			logger.SetLevel(logrus.InfoLevel)
		} else {
			logger.SetLevel(level)
		}
	} else {
		logger.SetLevel(logrus.InfoLevel)
	}

	tracingManager := tracing.NewManager(cfg.Tracing, logger)
	if err := tracingManager.Initialize(ctx); err != nil {
		logger.Warnf("Failed to initialize tracing: %v", err)
	}
	defer func() {
		if err := tracingManager.Shutdown(context.Background()); err != nil {
			logger.Warnf("Failed to shutdown tracing: %v", err)
		}
	}()

	backoffConfig := retry.BackoffConfig{
		InitialDelay: time.Duration(cfg.Retry.InitialBackoffMs) * time.Millisecond,
		MaxDelay:     time.Duration(cfg.Retry.MaxBackoffMs) * time.Millisecond,
		Multiplier:   2.0,
		MaxAttempts:  cfg.Retry.MaxAttempts,
		Jitter:       true,
	}
	backoff := retry.NewBackoff(backoffConfig)

	var db *database.Database
	err = backoff.Retry(ctx, func() error {
		var initErr error
		db, initErr = database.New(cfg.Database.Path)
		if initErr != nil {
			logger.Warnf("Failed to initialize database: %v", initErr)
		}
		return initErr
	})
	if err != nil {
		return fmt.Errorf("failed to initialize database after retries: %w", err)
	}
	defer db.Close()

	chatHTTPClient := &http.Client{
		Timeout: time.Duration(cfg.GoogleChat.TimeoutSec) * time.Second,
	}
	chatClient := googlechat.NewClientWithLogger(
		cfg.GoogleChat.APIBaseURL,
		cfg.GoogleChat.AccessToken,
		cfg.GoogleChat.PageSize,
		chatHTTPClient,
		logger,
	)

	forumHTTPClient := &http.Client{
		Timeout: time.Duration(cfg.Discourse.TimeoutSec) * time.Second,
	}
	forumClient := discourse.NewClientWithLogger(
		cfg.Discourse.BaseURL,
		cfg.Discourse.APIKey,
		cfg.Discourse.APIUsername,
		forumHTTPClient,
		backoff,
		logger,
	)

	users := service.NewUserResolver(forumClient, db, cfg.Discourse.EmailDomain, logger)
	forward := service.NewForwardSyncEngine(chatClient, forumClient, db, users, logger)
	reverse := service.NewReverseSyncEngine(chatClient, forumClient, db, cfg.Discourse.APIUsername, logger)

	if len(cfg.SpaceMappings) == 0 {
		logger.Warn("No space mappings configured; forward sync will be idle")
	}

	interval := time.Duration(cfg.Sync.IntervalMinutes) * time.Minute
	scheduler := service.NewScheduler(forward, db, cfg.SpaceMappings, interval, logger)

	if cfg.Sync.RunOnStartup {
		scheduler.InitialSync(ctx)
	} else {
		logger.Info("Initial sync on startup is disabled")
	}
	go scheduler.Run(ctx)

	server := NewServer(cfg, reverse, logger)
	serverErrCh := make(chan error, constants.ServerErrorChannelSize)
	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- fmt.Errorf("server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("Received shutdown signal")
	case err := <-serverErrCh:
		logger.Error(err)
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	logger.Info("chatcourse stopped")
	return nil
}
