package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	flag "github.com/spf13/pflag"
	"go.uber.org/automaxprocs/maxprocs"

	"github.com/pep299/pdf-generator-api/internal/config"
	"github.com/pep299/pdf-generator-api/internal/di"
	"github.com/pep299/pdf-generator-api/internal/handlers"
	"github.com/pep299/pdf-generator-api/internal/logging"
)

var (
	Version   string = "dev"
	Commit    string = "unknown"
	BuildTime string = "unknown"
)

func main() {
	var (
		showHelp    = flag.BoolP("help", "h", false, "Show help message")
		showVersion = flag.Bool("version", false, "Show version information")
		port        = flag.StringP("port", "p", "", "Listen port (overrides PORT)")
	)
	flag.Parse()

	if *showHelp {
		fmt.Printf("PDF Generator API Server\n\n")
		fmt.Printf("Usage: %s [options]\n\n", os.Args[0])
		fmt.Printf("Options:\n")
		flag.PrintDefaults()
		fmt.Printf("\nEnvironment Variables:\n")
		fmt.Printf("  PERPLEXITY_API_KEY    Perplexity API key (demo content when empty)\n")
		fmt.Printf("  PORT                  Server port (default: 5000)\n")
		fmt.Printf("  HOST                  Server host (default: 0.0.0.0)\n")
		fmt.Printf("  STORAGE_BACKEND       local, gcs or minio (default: local)\n")
		fmt.Printf("  PDF_ENGINE            auto, chrome or none (default: auto)\n")
		fmt.Printf("  CLEANUP_SCHEDULE      Cron expression for automatic cleanup\n")
		fmt.Printf("  SLACK_BOT_TOKEN       Slack bot token (optional)\n")
		os.Exit(0)
	}

	if *showVersion {
		fmt.Printf("PDF Generator API Server\n")
		fmt.Printf("Version: %s\n", Version)
		fmt.Printf("Commit: %s\n", Commit)
		fmt.Printf("Build Time: %s\n", BuildTime)
		os.Exit(0)
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *port != "" {
		cfg.Port = *port
	}

	logger, err := logging.NewWithFile(cfg.LogDir)
	if err != nil {
		logger.Warnf("File logging disabled: %v", err)
	}
	defer logger.Close()

	_, _ = maxprocs.Set(maxprocs.Logger(logger.Infof))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	container, err := di.NewContainer(ctx, cfg, logger)
	if err != nil {
		logger.Errorf("Failed to create container: %v", err)
		os.Exit(1)
	}
	defer container.Close()

	server := handlers.NewServer(container)

	// Create HTTP server
	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Handler:      server.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: time.Duration(cfg.PDFTimeout+cfg.AITimeout+30) * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Scheduled cleanup
	c := cron.New()
	if cfg.CleanupSchedule != "" {
		_, err := c.AddFunc(cfg.CleanupSchedule, func() {
			if _, err := container.Files.Cleanup(ctx, cfg.CleanupMaxAge(), time.Now()); err != nil {
				logger.Errorf("Scheduled cleanup failed: %v", err)
			}
		})
		if err != nil {
			logger.Errorf("Failed to schedule cleanup: %v", err)
		} else {
			logger.Infof("Cleanup scheduled with cron: %s", cfg.CleanupSchedule)
		}
	}
	c.Start()

	// Setup graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Start server
	go func() {
		logger.Infof("=== PDF Generator API Starting ===")
		logger.Infof("Dashboard: http://localhost:%s", cfg.Port)
		logger.Infof("API Key configured: %v", cfg.APIKeyConfigured())
		logger.Infof("Storage: %s, PDF engine: %s", cfg.StorageBackend, container.Converter.Name())
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Errorf("Server failed to start: %v", err)
			sigChan <- syscall.SIGTERM
		}
	}()

	// Wait for shutdown signal
	<-sigChan
	logger.Infof("Shutting down server...")

	// Cancel background tasks
	cancel()

	// Stop cron scheduler and wait for a running cleanup
	<-c.Stop().Done()

	// Shutdown HTTP server
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Server shutdown error: %v", err)
	}

	logger.Infof("Server stopped")
}
