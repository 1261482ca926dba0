package usecase

import (
	"context"
	"encoding/json"
	"time"

	"SectorPulse/internal/domain/models"
	drepo "SectorPulse/internal/domain/repository"
	"SectorPulse/internal/state"
	"SectorPulse/pkg/logger"
)

// Pass runs one complete evaluation: snapshot fetch, every rule evaluator in
// fixed order, the regime tracker, the digest schedulers, then state
// persistence. Evaluators share and mutate the suppression store, so a pass
// is strictly sequential.
type Pass struct {
	market     drepo.MarketData
	evaluators *Evaluators
	regime     *RegimeTracker
	digest     *DigestScheduler
	store      *state.Store
	stateStore drepo.StateStore
	metrics    drepo.Metrics
	log        *logger.Logger
}

// NewPass assembles the evaluation pass orchestrator.
func NewPass(
	market drepo.MarketData,
	evaluators *Evaluators,
	regime *RegimeTracker,
	digest *DigestScheduler,
	store *state.Store,
	stateStore drepo.StateStore,
	metrics drepo.Metrics,
	log *logger.Logger,
) *Pass {
	return &Pass{
		market:     market,
		evaluators: evaluators,
		regime:     regime,
		digest:     digest,
		store:      store,
		stateStore: stateStore,
		metrics:    metrics,
		log:        log,
	}
}

// Run executes one pass and returns the ordered event list. A failed
// snapshot fetch aborts with zero events and zero state mutation, so stale
// data can never poison cooldowns. On success, state is persisted
// unconditionally, even when no events fired.
func (p *Pass) Run(ctx context.Context) []models.Event {
	start := time.Now()
	defer func() {
		p.metrics.RecordPassDuration(time.Since(start).Seconds())
	}()

	snap, err := p.market.Snapshot(ctx)
	if err != nil {
		p.log.Warn("snapshot fetch failed, skipping pass", logger.Error(err))
		p.metrics.RecordError("snapshot")
		return nil
	}

	marketAvg := snap.MarketAvg24h()

	var events []models.Event
	events = append(events, p.evaluators.CheckTokenMoves(ctx, snap)...)
	events = append(events, p.evaluators.CheckEarlyBreakouts(ctx, snap)...)
	events = append(events, p.evaluators.CheckAlpha(ctx, snap)...)
	events = append(events, p.evaluators.CheckRotation(ctx, snap)...)
	events = append(events, p.evaluators.CheckDivergence(ctx, snap, marketAvg)...)

	obs, err := p.market.MarketState(ctx)
	if err != nil {
		p.log.Warn("market state fetch failed", logger.Error(err))
		p.metrics.RecordError("market_state")
	} else {
		p.metrics.RecordRegime(obs.State)
		if ev := p.regime.Check(ctx, obs); ev != nil {
			events = append(events, *ev)
		}
	}

	if ev := p.digest.CheckDaily(ctx, snap); ev != nil {
		events = append(events, *ev)
	}
	if ev := p.digest.CheckWeekly(ctx, snap); ev != nil {
		events = append(events, *ev)
	}

	for _, ev := range events {
		p.metrics.RecordEvent(string(ev.Category))
	}

	p.Persist(ctx)

	p.log.Info("pass complete", logger.Int("events", len(events)))
	return events
}

// Persist writes the suppression state through the configured backend.
// Persistence failures are logged, never fatal: the next pass retries.
func (p *Pass) Persist(ctx context.Context) {
	data, err := json.Marshal(p.store)
	if err != nil {
		p.log.Error("state marshal failed", logger.Error(err))
		p.metrics.RecordError("state_marshal")
		return
	}
	if err := p.stateStore.Save(ctx, data); err != nil {
		p.log.Error("state save failed", logger.Error(err))
		p.metrics.RecordError("state_save")
	}
}
