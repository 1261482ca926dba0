package usecase

import (
	"context"
	"fmt"
	"strings"

	"SectorPulse/internal/domain/models"
	drepo "SectorPulse/internal/domain/repository"
	"SectorPulse/internal/state"
	"SectorPulse/pkg/logger"
	"SectorPulse/pkg/util"
)

// RegimeTracker detects edges in the externally supplied market regime.
// Memory is updated on every observed change before any message is
// composed, so a failed enrichment cannot re-trigger the transition.
type RegimeTracker struct {
	store  *state.Store
	market drepo.MarketData
	log    *logger.Logger
}

// NewRegimeTracker creates a regime tracker over the shared store.
func NewRegimeTracker(store *state.Store, market drepo.MarketData, log *logger.Logger) *RegimeTracker {
	return &RegimeTracker{store: store, market: market, log: log}
}

// Check compares the observation against memory and returns at most one
// event. Only bull-edge and bear-edge transitions are notable; everything
// else (e.g. bear to neutral) is absorbed silently.
func (r *RegimeTracker) Check(ctx context.Context, obs *models.MarketState) *models.Event {
	if obs == nil {
		return nil
	}
	newState := obs.State
	if newState == "" {
		newState = models.RegimeNeutral
	}
	oldState := r.store.Regime()
	if newState == oldState {
		return nil
	}
	r.store.SetRegime(newState)
	r.log.Info("regime change",
		logger.String("from", oldState),
		logger.String("to", newState))

	switch {
	case newState == models.RegimeBull:
		return &models.Event{
			Category: models.CategoryRegimeChange,
			Text:     r.bullMessage(ctx, obs),
		}
	case newState == models.RegimeBear:
		text := "🐻 <b>BEAR PHASE STARTED</b>\n" +
			"├ BTC: " + util.FormatPriceWhole(obs.BTCPrice) + "\n" +
			"└ 24h: " + util.FormatPct(obs.BTC24h)
		return &models.Event{Category: models.CategoryRegimeChange, Text: text}
	case newState == models.RegimeNeutral && oldState == models.RegimeBull:
		text := "⚖️ <b>Bull phase ended</b>\n" +
			"├ BTC: " + util.FormatPriceWhole(obs.BTCPrice) + "\n" +
			"└ 24h: " + util.FormatPct(obs.BTC24h)
		return &models.Event{Category: models.CategoryRegimeChange, Text: text}
	default:
		return nil
	}
}

// bullMessage renders the bull-entry event, enriched with the top five of
// the momentum leaderboard when the fetch succeeds.
func (r *RegimeTracker) bullMessage(ctx context.Context, obs *models.MarketState) string {
	text := "🐂 <b>BULL PHASE STARTED</b>\n" +
		"├ BTC: " + util.FormatPriceWhole(obs.BTCPrice) + "\n" +
		"└ 24h: " + util.FormatPct(obs.BTC24h)

	momentum, err := r.market.Momentum(ctx)
	if err != nil {
		r.log.Warn("momentum fetch failed", logger.Error(err))
		return text
	}
	top := momentum.Tokens
	if len(top) > 5 {
		top = top[:5]
	}
	if len(top) == 0 {
		return text
	}
	leaders := make([]string, 0, len(top))
	for _, t := range top {
		leaders = append(leaders, fmt.Sprintf("%s (%s)", t.Symbol, t.Tier))
	}
	return text + "\n\n<b>Momentum Leaders:</b>\n" + strings.Join(leaders, ", ")
}
