package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"finrisk/internal/applicant/handler"
	"finrisk/internal/applicant/metrics"
	"finrisk/internal/applicant/service"
	"finrisk/internal/applicant/validator"
	"finrisk/internal/platform/config"
	"finrisk/internal/platform/httpserver"
	"finrisk/internal/platform/logger"
	httptransport "finrisk/internal/transport/http"
	"finrisk/internal/upstream"
	"finrisk/pkg/platform/circuit"
)

// main wires high-level dependencies and keeps the server lifecycle small.
// Business logic lives in the internal service packages.
func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	m := metrics.New()
	breaker := circuit.New("riskshield",
		circuit.WithFailureThreshold(cfg.BreakerFailureThreshold),
		circuit.WithCooldown(cfg.BreakerCooldown),
	)

	var scorer upstream.Scorer
	if cfg.DemoMode() {
		log.Warn("no upstream API key configured, using demo scorer")
		scorer = upstream.NewDemoScorer()
	} else {
		client := upstream.NewClient(cfg.UpstreamBaseURL, cfg.UpstreamAPIKey,
			cfg.UpstreamConnectTimeout, cfg.UpstreamReadTimeout, log)
		scorer = upstream.NewRetryPolicy(client, cfg.RetryMaxAttempts, cfg.RetryBaseDelay, log)
	}

	svc, err := service.New(validator.New(cfg.IDChecksumEnabled), breaker, scorer, m, log)
	if err != nil {
		return fmt.Errorf("build service: %w", err)
	}

	router := httptransport.New(handler.New(svc, log), log)
	srv := httpserver.New(cfg.Addr, router)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting finrisk server", "addr", cfg.Addr, "demo_mode", cfg.DemoMode())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}
