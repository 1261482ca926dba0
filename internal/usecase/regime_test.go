package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"SectorPulse/internal/domain/models"
	"SectorPulse/internal/state"
)

func TestRegimeTransitions(t *testing.T) {
	tests := []struct {
		name     string
		from     string
		to       string
		wantText string
		wantNil  bool
	}{
		{name: "steady bull", from: "bull", to: "bull", wantNil: true},
		{name: "neutral to bull", from: "neutral", to: "bull", wantText: "BULL PHASE STARTED"},
		{name: "bear to bull", from: "bear", to: "bull", wantText: "BULL PHASE STARTED"},
		{name: "neutral to bear", from: "neutral", to: "bear", wantText: "BEAR PHASE STARTED"},
		{name: "bull to neutral", from: "bull", to: "neutral", wantText: "Bull phase ended"},
		{name: "bear to neutral", from: "bear", to: "neutral", wantNil: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := state.New()
			store.SetRegime(tt.from)
			market := &fakeMarket{momentum: &models.Momentum{}}
			tracker := NewRegimeTracker(store, market, testLog)

			ev := tracker.Check(context.Background(), &models.MarketState{
				State:    tt.to,
				BTC24h:   3.2,
				BTCPrice: 64000,
			})

			if tt.wantNil {
				if ev != nil {
					t.Fatalf("got event %+v, want nil", ev)
				}
			} else {
				if ev == nil {
					t.Fatal("got nil event")
				}
				if ev.Category != models.CategoryRegimeChange {
					t.Errorf("category = %q, want market_state", ev.Category)
				}
				if !strings.Contains(ev.Text, tt.wantText) {
					t.Errorf("text = %q, want substring %q", ev.Text, tt.wantText)
				}
			}
			if got := store.Regime(); got != tt.to {
				t.Errorf("stored regime = %q, want %q", got, tt.to)
			}
		})
	}
}

func TestRegimeBullEnrichment(t *testing.T) {
	store := state.New()
	market := &fakeMarket{momentum: &models.Momentum{Tokens: []models.MomentumToken{
		{Symbol: "AAA", Tier: "strong"},
		{Symbol: "BBB", Tier: "strong"},
		{Symbol: "CCC", Tier: "building"},
		{Symbol: "DDD", Tier: "building"},
		{Symbol: "EEE", Tier: "watch"},
		{Symbol: "FFF", Tier: "watch"},
	}}}
	tracker := NewRegimeTracker(store, market, testLog)

	ev := tracker.Check(context.Background(), &models.MarketState{State: "bull", BTCPrice: 60000})
	if ev == nil {
		t.Fatal("got nil event")
	}
	if !strings.Contains(ev.Text, "AAA (strong)") {
		t.Errorf("text missing leader: %q", ev.Text)
	}
	if strings.Contains(ev.Text, "FFF") {
		t.Errorf("leaderboard should stop at five entries: %q", ev.Text)
	}
}

func TestRegimeBullEnrichmentFailureTolerated(t *testing.T) {
	store := state.New()
	market := &fakeMarket{momErr: errors.New("unavailable")}
	tracker := NewRegimeTracker(store, market, testLog)

	ev := tracker.Check(context.Background(), &models.MarketState{State: "bull", BTCPrice: 60000})
	if ev == nil {
		t.Fatal("got nil event")
	}
	if !strings.Contains(ev.Text, "BULL PHASE STARTED") {
		t.Errorf("text = %q", ev.Text)
	}
	// The transition is recorded even when enrichment fails, so the next
	// observation of the same state stays silent.
	if again := tracker.Check(context.Background(), &models.MarketState{State: "bull"}); again != nil {
		t.Errorf("repeated bull observation fired again: %+v", again)
	}
}

func TestRegimeEmptyStateReadsNeutral(t *testing.T) {
	store := state.New()
	store.SetRegime("bull")
	tracker := NewRegimeTracker(store, &fakeMarket{}, testLog)

	ev := tracker.Check(context.Background(), &models.MarketState{State: "", BTCPrice: 58000})
	if ev == nil {
		t.Fatal("got nil event, want bull-ended")
	}
	if !strings.Contains(ev.Text, "Bull phase ended") {
		t.Errorf("text = %q", ev.Text)
	}
	if store.Regime() != models.RegimeNeutral {
		t.Errorf("regime = %q, want neutral", store.Regime())
	}
}
