package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/KomaiX512/insightdeck/internal/api"
	"github.com/KomaiX512/insightdeck/internal/config"
	"github.com/KomaiX512/insightdeck/internal/decoder"
	"github.com/KomaiX512/insightdeck/internal/delivery"
	"github.com/KomaiX512/insightdeck/internal/pipeline"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Shared decoder built from service configuration.
	dec := decoder.New(api.DecoderOptions(cfg), log)
	stats := decoder.NewDecodeStats(time.Hour)

	// Webhook delivery is optional; batch jobs decode without it.
	var hook *delivery.Client
	if cfg.WebhookURL != "" {
		hook = delivery.NewClient(cfg.WebhookURL, cfg.WebhookAPIKey)
	}

	// Initialize pipeline.
	orch := pipeline.NewOrchestrator(cfg, dec, hook, stats, log)
	orch.Start(ctx)

	// Initialize HTTP server.
	srv := api.NewServer(orch, dec, stats, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		orch.Stop()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		if hook != nil {
			hook.Close()
		}
	}()

	log.Info("starting insightdeck", "port", cfg.Port)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
