package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cuemby/corenode/pkg/events"
	"github.com/cuemby/corenode/pkg/log"
	"github.com/cuemby/corenode/pkg/metrics"
	"github.com/cuemby/corenode/pkg/modules"
	"github.com/cuemby/corenode/pkg/ops"
	"github.com/cuemby/corenode/pkg/scripts"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the module repository and script scheduler as a long-lived process",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	metrics.SetVersion(version)

	if err := os.MkdirAll(cfg.ModulesDir, 0o755); err != nil {
		return fmt.Errorf("creating modules dir: %w", err)
	}
	if err := os.MkdirAll(cfg.BlueprintsDir, 0o755); err != nil {
		return fmt.Errorf("creating blueprints dir: %w", err)
	}

	broker := events.NewBroker()
	broker.Start()
	defer broker.Stop()

	repository := modules.New(cfg.ModulesDir, cfg.BlueprintsDir, nil)
	metrics.RegisterCritical("modules")
	metrics.RegisterComponent("modules", true, "repository scanned")
	log.WithComponent("corenoded").Info().
		Int("modules", repository.ModuleCount()).
		Int("blueprints", repository.BlueprintCount()).
		Msg("module repository ready")

	scriptsConfig := scripts.Config{
		PeerID:          cfg.PeerID,
		TimerResolution: cfg.TimerResolution,
		ParticleTTL:     cfg.ParticleTTL,
		MaxFailures:     cfg.MaxFailures,
	}
	log.WithComponent("corenoded").Warn().Msg("no connection pool configured, particles will only be logged")
	scriptAPI, storage := scripts.New(loggingPool{}, newNoopFailureSource(), scriptsConfig, broker)
	storage.Start()
	defer storage.Stop()
	metrics.RegisterCritical("scripts")
	metrics.RegisterComponent("scripts", true, "scheduler started")

	_ = ops.New(repository, scriptAPI, broker)

	collector := metrics.NewCollector(repository, storage)
	collector.Start()
	defer collector.Stop()

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	mux.HandleFunc("/health", metrics.HealthHandler())
	mux.HandleFunc("/ready", metrics.ReadyHandler())
	mux.HandleFunc("/live", metrics.LivenessHandler())
	server := &http.Server{Addr: cfg.MetricsAddr, Handler: mux}

	go func() {
		log.WithComponent("corenoded").Info().Str("addr", cfg.MetricsAddr).Msg("metrics server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithComponent("corenoded").Error().Err(err).Msg("metrics server stopped unexpectedly")
		}
	}()

	fmt.Printf("corenoded serving, peer %s, metrics at %s\n", cfg.PeerID, cfg.MetricsAddr)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	fmt.Println("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.WithComponent("corenoded").Error().Err(err).Msg("metrics server shutdown error")
	}
	return nil
}
