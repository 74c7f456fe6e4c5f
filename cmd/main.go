// talentflow-outreach-service
//
// Candidate outreach tracking for the recruiting pipeline. Exposes a REST
// API used by the Gateway to implement:
//   - bulk contact / resend / status-change operations with per-item accounting
//   - single-candidate notes, forced status overrides, funnel stage moves
//   - the grouped tracking query behind the outreach Kanban board
//
// Publishes CMD_CONTACT_CANDIDATE commands for the delivery worker and
// EVENT_BULK_ACTION results for the Gateway SSE forward. A cron sweeper
// moves silent candidates into no_response.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"talentflow/outreach-service/internal/config"
	"talentflow/outreach-service/internal/db"
	"talentflow/outreach-service/internal/funnel"
	"talentflow/outreach-service/internal/outreach"
	"talentflow/outreach-service/internal/ratelimit"
	"talentflow/outreach-service/internal/sweeper"
	"talentflow/outreach-service/internal/telemetry"
)

const version = "1.0.0"

func main() {
	// ── Config ──────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[outreach-service] Config error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ── PostgreSQL ───────────────────────────────────────────────────────────
	log.Println("[outreach-service] Connecting to PostgreSQL…")
	pool, err := db.NewPostgresPool(ctx, cfg.DatabaseURL, int32(cfg.BulkFanOut))
	if err != nil {
		log.Fatalf("[outreach-service] PostgreSQL: %v", err)
	}
	defer pool.Close()
	log.Println("[outreach-service] PostgreSQL connected ✓")

	// ── Redis ────────────────────────────────────────────────────────────────
	log.Println("[outreach-service] Connecting to Redis…")
	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatalf("[outreach-service] Redis: %v", err)
	}
	defer rdb.Close()
	log.Println("[outreach-service] Redis connected ✓")

	// ── Wiring ───────────────────────────────────────────────────────────────
	store := outreach.NewPGStore(pool)
	dispatcher := outreach.NewRedisDispatcher(rdb)
	limiter := ratelimit.NewChannelLimiter(rdb, cfg.DispatchBurst, cfg.DispatchPerSecond, time.Minute)
	orch := outreach.NewOrchestrator(store, dispatcher, limiter, cfg.BulkFanOut)
	reporter := outreach.NewReporter(rdb)
	stages := funnel.NewStore(pool)

	// ── No-response sweeper ──────────────────────────────────────────────────
	sw := sweeper.New(pool, cfg.NoResponseAfterDays, cfg.SweepSpec)
	if err := sw.Start(ctx); err != nil {
		log.Fatalf("[outreach-service] Sweeper: %v", err)
	}
	defer sw.Stop()

	// ── HTTP server ──────────────────────────────────────────────────────────
	r := chi.NewRouter()
	r.Get("/healthz", healthHandler)
	r.Mount("/metrics", telemetry.Handler())

	h := outreach.NewHandler(store, orch, reporter, stages)
	h.RegisterRoutes(r)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second, // bulk batches block until the aggregate settles
	}

	go func() {
		log.Printf("[outreach-service] v%s listening on :%s", version, cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[outreach-service] HTTP server error: %v", err)
		}
	}()

	// ── Graceful shutdown ────────────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("[outreach-service] Shutting down…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[outreach-service] Shutdown error: %v", err)
	}
	log.Println("[outreach-service] Stopped.")
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status":  "ok",
		"service": "outreach-service",
		"version": version,
	})
}
