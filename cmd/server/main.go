package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/tundeajayi/esusu/internal/calculator"
	"github.com/tundeajayi/esusu/internal/notify"
	"github.com/tundeajayi/esusu/internal/server"
	"github.com/tundeajayi/esusu/internal/service"
	"github.com/tundeajayi/esusu/internal/storage/sqlite"
	"github.com/tundeajayi/esusu/pkg/logging"
)

const port = 8080

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func main() {
	// Setup structured logging
	if getEnv("LOG_FORMAT", "") == "json" {
		logging.SetupJSON()
	} else {
		logging.Setup()
	}

	dbPath := getEnv("DB_PATH", "./data/esusu.db")

	// Initialize SQLite storage
	store, err := sqlite.New(dbPath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", dbPath)

	// Notification records are always persisted; email delivery is only
	// wired when a Resend key is configured.
	var sender notify.Sender
	if apiKey := os.Getenv("RESEND_API_KEY"); apiKey != "" {
		from := getEnv("EMAIL_FROM", "no-reply@esusu.app")
		sender = notify.NewEmailSender(apiKey, from, lookupEmail)
		slog.Info("Email delivery enabled", "from", from)
	}
	notifier := notify.New(store, sender)

	// Wire the engine services
	scheduler := service.NewSchedulerService(store, notifier)
	groups := service.NewGroupService(store, notifier, scheduler)
	rotation := service.NewRotationService(store, notifier)
	payments := service.NewPaymentService(store, groups, rotation, scheduler)

	mux := http.NewServeMux()
	webhook := server.NewWebhookHandler(payments)
	mux.HandleFunc("/webhooks/payment", webhook.HandlePaymentConfirmed)
	mux.HandleFunc("/healthz", server.HandleHealth)
	mux.Handle("/metrics", promhttp.Handler())

	// Optional in-process penalty ticker for deployments without an
	// external cron. Off by default; production runs cmd/penaltyscan.
	if interval := os.Getenv("PENALTY_SCAN_INTERVAL"); interval != "" {
		d, err := time.ParseDuration(interval)
		if err != nil {
			slog.Error("Invalid PENALTY_SCAN_INTERVAL", "value", interval, "error", err)
			os.Exit(1)
		}
		penalties := service.NewPenaltyService(store, notifier, calculator.DefaultPenaltyConfig)
		go runPenaltyTicker(penalties, d)
		slog.Info("In-process penalty scan enabled", "interval", d)
	}

	// Add logging and CORS middleware, then wrap with h2c for HTTP/2
	// without TLS
	h2cHandler := h2c.NewHandler(loggingMiddleware(corsMiddleware(mux)), &http2.Server{})

	addr := fmt.Sprintf(":%d", port)
	slog.Info("Server starting", "address", addr)
	if err := http.ListenAndServe(addr, h2cHandler); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

// lookupEmail resolves user IDs to addresses. Account data lives in the
// identity service; until that integration lands, user IDs are addresses.
func lookupEmail(_ context.Context, userID string) (string, error) {
	return userID, nil
}

func runPenaltyTicker(penalties *service.PenaltyService, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for range ticker.C {
		if _, err := penalties.CheckAndApplyPenalties(context.Background()); err != nil {
			slog.Error("penalty scan failed", "error", err)
		}
	}
}

// corsMiddleware adds CORS headers for browser access
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs all incoming requests
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		next.ServeHTTP(w, r)

		slog.Info("Request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}
