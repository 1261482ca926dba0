package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"SectorPulse/internal/domain/repository"
	"SectorPulse/internal/handler/ws"
	"SectorPulse/internal/usecase"
	"SectorPulse/pkg/config"
	xhttp "SectorPulse/pkg/http"
	"SectorPulse/pkg/logger"
)

// App encapsulates the entire application lifecycle: the polling loop, the
// ops HTTP server and graceful teardown.
type App struct {
	cfg        *config.Config
	log        *logger.Logger
	pass       *usecase.Pass
	fanout     *usecase.Fanout
	hub        *ws.Hub
	registry   repository.Registry
	notifier   repository.Notifier
	sink       repository.SignalSink
	httpServer *xhttp.Server
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	log *logger.Logger,
	pass *usecase.Pass,
	fanout *usecase.Fanout,
	hub *ws.Hub,
	registry repository.Registry,
	notifier repository.Notifier,
	sink repository.SignalSink,
	httpServer *xhttp.Server,
) *App {
	return &App{
		cfg:        cfg,
		log:        log,
		pass:       pass,
		fanout:     fanout,
		hub:        hub,
		registry:   registry,
		notifier:   notifier,
		sink:       sink,
		httpServer: httpServer,
	}
}

// RunOnce executes a single evaluation pass and exits. Used from cron-style
// schedulers and smoke tests.
func (a *App) RunOnce(ctx context.Context) error {
	a.runPass(ctx)
	return nil
}

// Run starts the polling loop and ops server, blocking until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := a.httpServer.Start(); err != nil {
		return fmt.Errorf("http server start: %w", err)
	}

	a.greet(ctx)

	a.log.Info("polling started",
		logger.Duration("interval", a.cfg.Timing.CheckInterval),
		logger.String("api", a.cfg.API.URL))

	ticker := time.NewTicker(a.cfg.Timing.CheckInterval)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	// First pass fires immediately; the ticker covers the rest.
	a.runPass(ctx)

	for {
		select {
		case <-ticker.C:
			a.runPass(ctx)
		case <-sigCh:
			a.log.Info("shutdown signal received")
			return a.shutdown(ctx)
		}
	}
}

// runPass executes one evaluation pass and fans out the results. The pass
// persists its own state; a second persist after delivery captures the sent
// counter.
func (a *App) runPass(ctx context.Context) {
	events := a.pass.Run(ctx)
	if len(events) == 0 {
		return
	}
	sent := a.fanout.Deliver(ctx, events)
	a.hub.Broadcast(events)
	a.pass.Persist(ctx)
	a.log.Info("delivery complete",
		logger.Int("events", len(events)),
		logger.Int("sent", sent))
}

// greet announces startup to every active subscriber. Failures are logged
// and ignored; a greeting is not worth failing startup over.
func (a *App) greet(ctx context.Context) {
	subs, err := a.registry.Active(ctx)
	if err != nil {
		a.log.Warn("startup greeting skipped", logger.Error(err))
		return
	}
	minutes := int(a.cfg.Timing.CheckInterval.Minutes())
	text := fmt.Sprintf("✅ <b>SectorPulse online</b>\nWatching sectors every %d min.", minutes)
	for _, s := range subs {
		if err := a.notifier.Send(ctx, s.ID, text); err != nil {
			a.log.Warn("greeting failed",
				logger.String("subscriber", s.ID),
				logger.Error(err))
		}
	}
}

// shutdown gracefully stops all services and persists final state.
func (a *App) shutdown(ctx context.Context) error {
	a.pass.Persist(ctx)

	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.log.Error("http shutdown error", logger.Error(err))
	}

	a.hub.Close()

	if err := a.sink.Close(); err != nil {
		a.log.Warn("signal sink close error", logger.Error(err))
	}

	a.log.Info("shutdown complete")
	return nil
}
