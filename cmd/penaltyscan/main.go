// Command penaltyscan runs one pass of the overdue-contribution penalty scan
// and exits. It is meant to be invoked by an external scheduler (cron,
// systemd timer); the engine never schedules itself.
package main

import (
	"context"
	"log/slog"
	"os"
	"strconv"

	"github.com/tundeajayi/esusu/internal/calculator"
	"github.com/tundeajayi/esusu/internal/notify"
	"github.com/tundeajayi/esusu/internal/service"
	"github.com/tundeajayi/esusu/internal/storage/sqlite"
	"github.com/tundeajayi/esusu/pkg/logging"
)

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
		slog.Warn("ignoring non-numeric env value", "key", key, "value", value)
	}
	return fallback
}

func main() {
	logging.Setup()

	dbPath := getEnv("DB_PATH", "./data/esusu.db")
	store, err := sqlite.New(dbPath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	cfg := calculator.PenaltyConfig{
		GracePeriodDays:   getEnvInt("GRACE_PERIOD_DAYS", calculator.DefaultPenaltyConfig.GracePeriodDays),
		LateFeePercentage: getEnvInt("LATE_FEE_PERCENTAGE", calculator.DefaultPenaltyConfig.LateFeePercentage),
	}

	notifier := notify.New(store, nil)
	penalties := service.NewPenaltyService(store, notifier, cfg)

	applied, err := penalties.CheckAndApplyPenalties(context.Background())
	if err != nil {
		slog.Error("Penalty scan failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Penalty scan complete", "applied", applied)
}
