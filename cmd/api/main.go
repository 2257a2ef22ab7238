// Package main is the entry point for the course economics HTTP API.
//
// The API classifies and validates course drafts, tracks completion and
// issues certificates, splits payments between platform and mentor, and
// plans installment schedules.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/evolvix-software/course-economics/config"
	"github.com/evolvix-software/course-economics/internal/application/command"
	"github.com/evolvix-software/course-economics/internal/application/query"
	"github.com/evolvix-software/course-economics/internal/bootstrap"
	"github.com/evolvix-software/course-economics/internal/domain/shared"
	httpserver "github.com/evolvix-software/course-economics/internal/interface/http"
	"github.com/evolvix-software/course-economics/internal/interface/http/handlers"
	"github.com/evolvix-software/course-economics/pkg/logger"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. CONFIGURATION AND LOGGING
	// ─────────────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := bootstrap.NewLogger(cfg.Observability, cfg.App.Version)
	defer func() { _ = log.Sync() }()

	log.Info("starting course economics API",
		logger.String("env", string(cfg.App.Environment)),
		logger.Bool("debug", cfg.App.Debug),
		logger.Bool("memory_store", cfg.UsesMemoryStore()),
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 2. INFRASTRUCTURE
	// ─────────────────────────────────────────────────────────────────────────
	infra, err := bootstrap.Open(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to open infrastructure: %w", err)
	}
	defer func() {
		log.Info("closing infrastructure...")
		infra.Close()
	}()

	// ─────────────────────────────────────────────────────────────────────────
	// 3. DOMAIN SERVICES
	// ─────────────────────────────────────────────────────────────────────────
	clock := shared.SystemClock{}

	distributor, err := bootstrap.NewDistributor(cfg.Economics, clock, bootstrap.UUIDs)
	if err != nil {
		return fmt.Errorf("failed to build distributor: %w", err)
	}
	issuer := bootstrap.NewIssuer(cfg.Economics, clock)

	// ─────────────────────────────────────────────────────────────────────────
	// 4. APPLICATION LAYER
	// ─────────────────────────────────────────────────────────────────────────
	deps := httpserver.Dependencies{
		CreateCourse:      command.NewCreateCourseHandler(infra.Courses, infra.Bus, clock, bootstrap.UUIDs, log),
		UpdateCourse:      command.NewUpdateCourseHandler(infra.Courses, infra.Bus, clock, log),
		UpdateProgress:    command.NewUpdateProgressHandler(infra.Courses, infra.Progress, clock, log),
		IssueCertificate:  command.NewIssueCertificateHandler(infra.Courses, infra.Progress, issuer, infra.IssuanceLock, infra.Bus, log),
		RecordPayment:     command.NewRecordPaymentHandler(infra.Courses, infra.Distributions, distributor, infra.EarningsCache, infra.Bus, log),
		TransitionPayment: command.NewTransitionPaymentHandler(infra.Distributions, infra.Installments, distributor, infra.EarningsCache, infra.Bus, log),
		PlanInstallments:  command.NewPlanInstallmentsHandler(infra.Courses, infra.Installments, infra.Bus, clock, bootstrap.UUIDs, log),
		MentorEarnings:    query.NewGetMentorEarningsHandler(infra.Distributions, infra.EarningsCache, log),
		PreviewSplit:      query.NewPreviewSplitHandler(infra.Courses, distributor),
		Lookups:           query.NewLookups(infra.Courses, infra.Progress, infra.Installments, distributor),
		Clock:             clock,
		Logger:            log,
	}

	health := handlers.NewCompositeHealthChecker(cfg.App.Version)
	for _, dep := range infra.Dependencies {
		health.AddDependency(dep)
	}
	deps.HealthChecker = health

	// ─────────────────────────────────────────────────────────────────────────
	// 5. HTTP SERVER
	// ─────────────────────────────────────────────────────────────────────────
	httpConfig := httpserver.DefaultConfig()
	httpConfig.Host = cfg.HTTP.Host
	httpConfig.Port = cfg.HTTP.Port
	httpConfig.ReadTimeout = cfg.HTTP.ReadTimeout
	httpConfig.WriteTimeout = cfg.HTTP.WriteTimeout
	httpConfig.IdleTimeout = cfg.HTTP.IdleTimeout
	httpConfig.MaxBodyBytes = cfg.HTTP.MaxBodyBytes
	httpConfig.AllowedOrigins = cfg.HTTP.AllowedOrigins
	httpConfig.RateLimitPerMinute = cfg.HTTP.RateLimitPerMinute
	httpConfig.Version = cfg.App.Version

	server := httpserver.NewServer(httpConfig, deps)

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting HTTP server", logger.String("address", server.Address()))
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	// ─────────────────────────────────────────────────────────────────────────
	// 6. GRACEFUL SHUTDOWN
	// ─────────────────────────────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("received shutdown signal", logger.String("signal", sig.String()))
	case err := <-errCh:
		log.Error("service error", logger.Err(err))
		return err
	case <-ctx.Done():
	}

	log.Info("starting graceful shutdown...", logger.Duration("timeout", cfg.App.ShutdownTimeout))
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("failed to stop HTTP server gracefully", logger.Err(err))
		return err
	}

	log.Info("shutdown completed successfully")
	return nil
}
