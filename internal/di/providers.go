package di

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"SectorPulse/internal/domain/repository"
	"SectorPulse/internal/handler/api"
	"SectorPulse/internal/handler/ws"
	internalrepo "SectorPulse/internal/repository"
	"SectorPulse/internal/service/ai"
	"SectorPulse/internal/service/sectormap"
	"SectorPulse/internal/service/telegram"
	"SectorPulse/internal/state"
	"SectorPulse/internal/usecase"
	pkgch "SectorPulse/pkg/clickhouse"
	"SectorPulse/pkg/config"
	xhttp "SectorPulse/pkg/http"
	pkgkafka "SectorPulse/pkg/kafka"
	"SectorPulse/pkg/logger"
	"SectorPulse/pkg/metrics"
	"SectorPulse/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*logger.Logger, error) {
	return logger.New(&logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideStateStore selects the state persistence backend.
func ProvideStateStore(cfg *config.Config) (repository.StateStore, error) {
	switch cfg.State.Backend {
	case "redis":
		return internalrepo.NewRedisStateStore(
			cfg.State.Redis.Addr,
			cfg.State.Redis.Password,
			cfg.State.Redis.DB,
			cfg.State.Redis.Key,
		)
	default:
		return internalrepo.NewFileStateStore(cfg.State.File), nil
	}
}

// ProvideState loads persisted run state, or starts fresh when none exists
// or the stored document is unreadable.
func ProvideState(stateStore repository.StateStore, log *logger.Logger) (*state.Store, error) {
	st := state.New()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	b, err := stateStore.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load state: %w", err)
	}
	if b == nil {
		log.Info("no prior state, starting fresh")
		return st, nil
	}
	if err := json.Unmarshal(b, st); err != nil {
		log.Warn("state document unreadable, starting fresh", logger.Error(err))
		return state.New(), nil
	}
	log.Info("state restored", logger.String("regime", st.Regime()))
	return st, nil
}

// ProvideDedup creates the cross-pass duplicate suppressor.
func ProvideDedup(cfg *config.Config) *state.Dedup {
	return state.NewDedup(cfg.Dedup.Window, cfg.Dedup.Retention, cfg.Dedup.MaxEntries)
}

// ProvideRegistry creates the subscriber registry.
func ProvideRegistry(cfg *config.Config, log *logger.Logger) repository.Registry {
	return internalrepo.NewFileRegistry(cfg.Users.File, log)
}

// ProvideMarketData creates the sector-map API client.
func ProvideMarketData(cfg *config.Config) repository.MarketData {
	return sectormap.New(cfg.API.URL, cfg.API.Key, cfg.API.Timeout, cfg.API.SideTimeout)
}

// ProvideNotifier creates the Telegram delivery client.
func ProvideNotifier(cfg *config.Config, log *logger.Logger) repository.Notifier {
	return telegram.New(cfg.Telegram.BotToken, log)
}

// ProvideComposer creates the AI digest composer, or a stub when disabled.
func ProvideComposer(cfg *config.Config, log *logger.Logger) repository.DigestComposer {
	if !cfg.AI.Enabled || cfg.AI.URL == "" {
		return ai.Disabled{}
	}
	return ai.New(cfg.AI.URL, cfg.AI.Timeout, log)
}

// ProvideSignalSink selects the signal-history backend.
func ProvideSignalSink(cfg *config.Config, log *logger.Logger) (repository.SignalSink, error) {
	switch cfg.History.Backend {
	case "kafka":
		producer, err := pkgkafka.NewProducer(
			pkgkafka.WithBrokers(cfg.History.Kafka.Brokers),
			pkgkafka.WithAsync(true),
		)
		if err != nil {
			return nil, fmt.Errorf("kafka producer: %w", err)
		}
		return internalrepo.NewKafkaSink(producer, cfg.History.Kafka.Topic, log), nil

	case "clickhouse":
		client, err := pkgch.NewClient(
			pkgch.WithHost(cfg.History.ClickHouse.Host),
			pkgch.WithPort(cfg.History.ClickHouse.Port),
			pkgch.WithDatabase(cfg.History.ClickHouse.Database),
			pkgch.WithCredentials(cfg.History.ClickHouse.User, cfg.History.ClickHouse.Password),
		)
		if err != nil {
			return nil, fmt.Errorf("clickhouse client: %w", err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		stmts := append(
			[]string{"CREATE DATABASE IF NOT EXISTS " + cfg.History.ClickHouse.Database},
			internalrepo.SignalSchema(cfg.History.ClickHouse.Table)...,
		)
		if err := client.InitSchema(ctx, stmts); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("clickhouse schema: %w", err)
		}
		return internalrepo.NewClickHouseSink(client, cfg.History.ClickHouse.Table, log), nil

	case "none":
		return internalrepo.NopSink{}, nil

	default:
		return internalrepo.NewHTTPSink(cfg.History.URL, cfg.History.Key, cfg.History.Timeout, log), nil
	}
}

// ProvideEvaluators creates the rule evaluators.
func ProvideEvaluators(cfg *config.Config, st *state.Store, sink repository.SignalSink, log *logger.Logger) *usecase.Evaluators {
	return usecase.NewEvaluators(cfg, st, sink, log)
}

// ProvideRegimeTracker creates the market regime tracker.
func ProvideRegimeTracker(st *state.Store, market repository.MarketData, log *logger.Logger) *usecase.RegimeTracker {
	return usecase.NewRegimeTracker(st, market, log)
}

// ProvideDigestScheduler creates the periodic digest scheduler.
func ProvideDigestScheduler(cfg *config.Config, st *state.Store, composer repository.DigestComposer, log *logger.Logger) *usecase.DigestScheduler {
	return usecase.NewDigestScheduler(cfg, st, composer, log)
}

// ProvidePass assembles the per-tick evaluation pass.
func ProvidePass(
	market repository.MarketData,
	evaluators *usecase.Evaluators,
	regime *usecase.RegimeTracker,
	digest *usecase.DigestScheduler,
	st *state.Store,
	stateStore repository.StateStore,
	m repository.Metrics,
	log *logger.Logger,
) *usecase.Pass {
	return usecase.NewPass(market, evaluators, regime, digest, st, stateStore, m, log)
}

// ProvideFanout creates the per-subscriber delivery fan-out.
func ProvideFanout(
	cfg *config.Config,
	registry repository.Registry,
	notifier repository.Notifier,
	dedup *state.Dedup,
	st *state.Store,
	m repository.Metrics,
	log *logger.Logger,
) *usecase.Fanout {
	return usecase.NewFanout(registry, notifier, dedup, st, m, log, cfg.Timing.SendDelay)
}

// ProvideHub creates the WebSocket live-feed hub.
func ProvideHub(log *logger.Logger) *ws.Hub {
	return ws.NewHub(log)
}

// ProvideStatusHandler creates the ops API handler.
func ProvideStatusHandler(log *logger.Logger, st *state.Store, dedup *state.Dedup, registry repository.Registry) *api.StatusHandler {
	return api.NewStatusHandler(log, st, dedup, registry)
}

// ProvideHTTPServer creates the ops HTTP server with all routes registered.
func ProvideHTTPServer(cfg *config.Config, log *logger.Logger, status *api.StatusHandler, hub *ws.Hub) *xhttp.Server {
	return xhttp.NewServer(log,
		[]xhttp.Handler{status, hub},
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
	)
}

// ProvideApp creates the application.
func ProvideApp(
	cfg *config.Config,
	log *logger.Logger,
	pass *usecase.Pass,
	fanout *usecase.Fanout,
	hub *ws.Hub,
	registry repository.Registry,
	notifier repository.Notifier,
	sink repository.SignalSink,
	httpServer *xhttp.Server,
) *server.App {
	return server.New(cfg, log, pass, fanout, hub, registry, notifier, sink, httpServer)
}
