package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/p7g/wealthsimple-prometheus/internal/auth"
	"github.com/p7g/wealthsimple-prometheus/internal/config"
	"github.com/p7g/wealthsimple-prometheus/internal/database"
	"github.com/p7g/wealthsimple-prometheus/internal/metrics"
	"github.com/p7g/wealthsimple-prometheus/internal/poller"
	"github.com/p7g/wealthsimple-prometheus/internal/prompt"
	"github.com/p7g/wealthsimple-prometheus/internal/repository"
	"github.com/p7g/wealthsimple-prometheus/internal/wealthsimple"
)

func main() {
	// Load configuration
	cfg := config.New()

	// Poll history is opt-in; without HISTORY_DB_PATH nothing touches disk.
	var history *repository.PollHistoryRepository
	if cfg.HistoryDBPath != "" {
		db, err := database.New(cfg.HistoryDBPath)
		if err != nil {
			log.Fatalf("Failed to open history database: %v", err)
		}
		defer db.Close()

		if err := db.RunMigrations(); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
		history = repository.NewPollHistoryRepository(db)
	}

	// Credentials are read once and retained in memory for re-logins.
	username, password, err := prompt.Credentials()
	if err != nil {
		log.Fatalf("Failed to read credentials: %v", err)
	}

	// One device identifier per process, stable across re-logins.
	deviceID := strings.ReplaceAll(uuid.NewString(), "-", "")

	client := wealthsimple.NewClient(cfg.APIBaseURL)
	sessions := auth.NewManager(client, username, password, deviceID, prompt.OTPCode)

	session, err := sessions.Authenticate()
	if err != nil {
		log.Fatalf("Failed to log in: %v", err)
	}
	log.Println("Logged in to Wealthsimple")

	sink := metrics.NewSink()

	// Create server
	server := &http.Server{
		Addr:         cfg.Address(),
		Handler:      metrics.NewHandler(sink.Registry()),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Metrics server listening on http://%s%s", cfg.Address(), metrics.Path)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Metrics server error: %v", err)
		}
	}()

	// Start the poll loop
	svc := poller.New(client, sessions, sink, history, cfg.PollInterval)
	pollErr := make(chan error, 1)
	go func() {
		pollErr <- svc.Run(session)
	}()

	// Run until the poller hits a fatal error or we are told to stop
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-pollErr:
		log.Fatalf("Polling stopped: %v", err)
	case <-quit:
		log.Println("Shutting down...")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}
