package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"scamscan-engine/config"
	"scamscan-engine/content"
	"scamscan-engine/ledger"
	"scamscan-engine/metrics"
	"scamscan-engine/registration"
	"scamscan-engine/render"
	"scamscan-engine/vetting"
)

func main() {
	cfg := config.Load()

	ledgers := ledger.NewRegistry(cfg)
	scanner := content.NewScanner(render.New(cfg), content.NewEvaluator(ledgers))
	engine := vetting.NewEngine(cfg, registration.New(cfg), scanner, ledgers)
	h := vetting.NewHandler(engine)

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/api/check", h.Check)
	r.Get("/api/ping", h.Ping)
	r.Handle("/metrics", metrics.Handler())

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	log.Printf("✅ scamscan engine listening on :%s", cfg.Port)
	log.Println("📍 Endpoints:")
	log.Println("   GET /api/check?type=&value=  - Risk check")
	log.Println("   GET /api/ping                - Liveness")
	log.Println("   GET /metrics                 - Prometheus")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		log.Printf("shutting down on %s", sig)
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
