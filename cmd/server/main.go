package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	"tpa-lab/auth"
	"tpa-lab/domain/event"
	"tpa-lab/internal"
	"tpa-lab/projection"
	"tpa-lab/repositories"
	"tpa-lab/repositories/storage"
	"tpa-lab/runtime"
	"tpa-lab/runtime/workers"
	"tpa-lab/server"
	"tpa-lab/services"
	"tpa-lab/sink"
	"tpa-lab/world"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"
)

// Exit codes to provide meaningful status to the operating system or service manager.
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Server terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run initializes all components, manages the server lifecycle, and centralizes error reporting.
// Every defer (database cleanup included) runs before the process exits.
func run() (int, error) {
	// 1. Configuration & Logger
	config, err := internal.Load()
	if err != nil {
		return exitConfig, err
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Position store
	positions, err := openPositionStore(config, log)
	if err != nil {
		return exitRuntime, fmt.Errorf("position store opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing position store...")
		_ = positions.Close()
	}()

	// 3. World, sessions & orchestration
	clock := runtime.SystemClock{}
	w := world.New(log, clock)
	sessions := runtime.NewSessions(log, clock)
	timeline := projection.NewTimeline(config.TimelineCapacity)
	telemetry := make(chan event.Event, config.EventBufferSize)
	sup := workers.NewSupervisor(log, telemetry, config.RestartInterval)

	orchestrator := runtime.NewOrchestrator(log, config.Orchestrator(), clock, sup, telemetry,
		w, w, w, storage.NewTracker(positions, clock, log), positions)
	orchestrator.Add(
		sink.NewNotificationSink(sessions, log),
		storage.NewPositionSink(positions, w, log),
		timeline,
	)
	counter := event.NewCounter()
	orchestrator.AddHandlers(
		event.NewOutcomeHandler(log, counter),
		event.NewWorkerRestartedAfterPanicHandler(log, counter),
		event.NewDroppedEventHandler(log, counter),
		event.NewProcessStatsHandler(log),
	)

	service := services.NewTeleportService(log, clock, w,
		orchestrator.Registry(), orchestrator.Scheduler(), orchestrator.Executor(),
		orchestrator.Cooldowns(), orchestrator.Publisher(),
		config.RequestTimeout(), config.TeleportDelay())

	// 4. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	orchestratorDone := make(chan struct{})
	go func() {
		defer close(orchestratorDone)
		_ = orchestrator.Start(ctx)
	}()

	// 5. HTTP Server Setup
	issuer := auth.NewTokenIssuer(config.JWTSecret, config.AuthTokenDuration)
	api := server.NewServer(log, config.Server(), service, w, sessions, timeline, positions, issuer)
	httpServer := &http.Server{
		Addr:              config.Address(),
		Handler:           api.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "address", config.Address(), "at", time.Now().UTC())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// 6. Wait for Stop or Error
	code := exitOK
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err = <-errChan:
		code = exitRuntime
	}

	// 7. Final Cleanup
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = httpServer.Shutdown(shutdownCtx)
	_ = orchestrator.Stop(shutdownCtx)
	<-orchestratorDone
	log.Info("Program stopped cleanly", "outcomes", counter.Snapshot())

	return code, err
}

func openPositionStore(config internal.Config, log *slog.Logger) (repositories.IPositionRepository, error) {
	switch config.PositionStore {
	case internal.StoreSQLite:
		return repositories.OpenSQLitePositionRepository(config.SQLiteDSN, log)
	default:
		db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).WithLoggingLevel(badger.WARNING))
		if err != nil {
			return nil, err
		}
		return repositories.NewBadgerPositionRepository(db, log), nil
	}
}
