package main

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/mzngu/Red-panda-x/logger"
	"github.com/mzngu/Red-panda-x/server"
	"github.com/mzngu/Red-panda-x/sessions"
	"github.com/mzngu/Red-panda-x/stores"
)

func main() {
	_ = godotenv.Load()

	log := logger.New()
	defer log.Sync()

	store, err := stores.NewStoreFromEnv()
	if err != nil {
		log.Error("failed to create store", "err", err)
		os.Exit(1)
	}
	defer store.Close()

	cfg := server.NewConfig(log).
		WithStore(store).
		WithJWTSecret(envOr("JWT_SECRET", "dev-secret"))

	if model := os.Getenv("GEMINI_MODEL"); model != "" {
		cfg.WithModelName(model)
	}
	if calendarURL := os.Getenv("CALENDAR_API_URL"); calendarURL != "" {
		cfg.WithCalendarURL(calendarURL)
	}

	// Nightly sweep removing prescriptions past their validity date.
	sweeper := cron.New()
	if _, err := sweeper.AddFunc("0 3 * * *", func() {
		n, err := store.DeleteExpiredPrescriptions(time.Now())
		if err != nil {
			log.Error("prescription sweep failed", "err", err)
			return
		}
		log.Info("prescription sweep done", "deleted", n)
	}); err != nil {
		log.Error("failed to schedule prescription sweep", "err", err)
		os.Exit(1)
	}
	sweeper.Start()
	defer sweeper.Stop()

	registry := sessions.NewRegistry()
	router := server.NewRouter(cfg, registry)

	addr := ":" + envOr("PORT", "8080")
	log.Info("starting server", "addr", addr)
	if err := router.Run(addr); err != nil {
		log.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
