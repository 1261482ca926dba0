package usecase

import (
	"context"
	"strings"
	"testing"
	"time"

	"SectorPulse/internal/domain/models"
	"SectorPulse/internal/state"
)

func TestCheckTokenMoves(t *testing.T) {
	cfg := testConfig(t)
	store := state.New()
	sink := &fakeSink{}
	ev := NewEvaluators(cfg, store, sink, testLog)
	snap := testSnapshot()

	events := ev.CheckTokenMoves(context.Background(), snap)
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	// Token ids iterate sorted, so bar's dump precedes foo's surge.
	if events[0].Category != models.CategoryDump {
		t.Errorf("events[0].Category = %q, want dump", events[0].Category)
	}
	if events[1].Category != models.CategorySurge {
		t.Errorf("events[1].Category = %q, want pump", events[1].Category)
	}
	if !strings.Contains(events[1].Text, "FOO") || !strings.Contains(events[1].Text, "+20.0%") {
		t.Errorf("surge text missing symbol or change: %q", events[1].Text)
	}
	if events[1].Meta == nil || events[1].Meta.Symbol != "FOO" {
		t.Errorf("surge meta = %+v, want symbol FOO", events[1].Meta)
	}

	if len(sink.signals) != 2 {
		t.Fatalf("sink got %d signals, want 2", len(sink.signals))
	}
	if sink.signals[0].Type != "DUMP" || sink.signals[1].Type != "PUMP" {
		t.Errorf("signal types = %q, %q", sink.signals[0].Type, sink.signals[1].Type)
	}

	// Same snapshot inside the cooldown window fires nothing.
	if again := ev.CheckTokenMoves(context.Background(), snap); len(again) != 0 {
		t.Errorf("second pass emitted %d events, want 0", len(again))
	}
}

func TestCheckTokenMovesCooldownExpiry(t *testing.T) {
	cfg := testConfig(t)
	store := state.New()
	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	store.SetClock(func() time.Time { return base })
	ev := NewEvaluators(cfg, store, &fakeSink{}, testLog)
	snap := testSnapshot()

	if got := len(ev.CheckTokenMoves(context.Background(), snap)); got != 2 {
		t.Fatalf("first pass: %d events, want 2", got)
	}

	// 5h later: still suppressed. 7h later: windows reopen.
	store.SetClock(func() time.Time { return base.Add(5 * time.Hour) })
	if got := len(ev.CheckTokenMoves(context.Background(), snap)); got != 0 {
		t.Errorf("within cooldown: %d events, want 0", got)
	}
	store.SetClock(func() time.Time { return base.Add(7 * time.Hour) })
	if got := len(ev.CheckTokenMoves(context.Background(), snap)); got != 2 {
		t.Errorf("after cooldown: %d events, want 2", got)
	}
}

func TestCheckTokenMovesPreFilters(t *testing.T) {
	cfg := testConfig(t)
	cfg.Filters.IgnoreTokens = []string{"FOO"}
	store := state.New()
	ev := NewEvaluators(cfg, store, &fakeSink{}, testLog)

	snap := testSnapshot()
	snap.Tokens["bar"].MarketCap = 10_000_000 // below the floor

	events := ev.CheckTokenMoves(context.Background(), snap)
	if len(events) != 0 {
		t.Errorf("got %d events, want 0 (ignored + tiny mcap)", len(events))
	}
}

func TestCheckTokenMovesNilChange(t *testing.T) {
	cfg := testConfig(t)
	ev := NewEvaluators(cfg, state.New(), &fakeSink{}, testLog)

	snap := &models.Snapshot{
		Tokens: map[string]*models.Token{
			"foo": {Symbol: "FOO", MarketCap: 80_000_000},
		},
	}
	if got := len(ev.CheckTokenMoves(context.Background(), snap)); got != 0 {
		t.Errorf("nil change emitted %d events, want 0", got)
	}
}

func TestCheckEarlyBreakouts(t *testing.T) {
	cfg := testConfig(t)
	store := state.New()
	sink := &fakeSink{}
	ev := NewEvaluators(cfg, store, sink, testLog)
	snap := testSnapshot()

	// foo: 7d 22, 24h 20, so the prior week sat at +2 (flat) before a +20 day.
	events := ev.CheckEarlyBreakouts(context.Background(), snap)
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	if events[0].Category != models.CategoryBreakout {
		t.Errorf("category = %q, want early_breakout", events[0].Category)
	}
	if !strings.Contains(events[0].Text, "EARLY BREAKOUT") {
		t.Errorf("text = %q", events[0].Text)
	}
	if sink.signals[0].Type != "EARLY_BREAKOUT" {
		t.Errorf("signal type = %q", sink.signals[0].Type)
	}

	// A token that already ran all week is not a breakout.
	snap2 := testSnapshot()
	snap2.Tokens["foo"].Change7d = pct(40) // +20 before today, not flat
	store2 := state.New()
	ev2 := NewEvaluators(cfg, store2, &fakeSink{}, testLog)
	if got := len(ev2.CheckEarlyBreakouts(context.Background(), snap2)); got != 0 {
		t.Errorf("trending token emitted %d breakouts, want 0", got)
	}
}

func TestCheckAlpha(t *testing.T) {
	cfg := testConfig(t)
	store := state.New()
	sink := &fakeSink{}
	ev := NewEvaluators(cfg, store, sink, testLog)
	snap := testSnapshot()

	// foo at +20 in a +1.0 sector: alpha 19.
	events := ev.CheckAlpha(context.Background(), snap)
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	if events[0].Category != models.CategoryAlpha {
		t.Errorf("category = %q, want alpha", events[0].Category)
	}
	if sink.signals[0].Alpha != 19 {
		t.Errorf("signal alpha = %v, want 19", sink.signals[0].Alpha)
	}
}

func TestCheckAlphaRisingFloor(t *testing.T) {
	cfg := testConfig(t)
	ev := NewEvaluators(cfg, state.New(), &fakeSink{}, testLog)

	// +4 in a -10 sector has alpha 14 but the token itself is barely moving.
	snap := &models.Snapshot{
		Tokens: map[string]*models.Token{
			"foo": {Symbol: "FOO", MarketCap: 80_000_000, Change24h: pct(4)},
		},
		Sectors:      map[string]*models.Sector{"DeFi": {Avg24h: -10}},
		SectorTokens: map[string][]string{"DeFi": {"foo"}},
	}
	if got := len(ev.CheckAlpha(context.Background(), snap)); got != 0 {
		t.Errorf("sub-5%% token emitted %d alpha events, want 0", got)
	}
}

func TestCheckRotation(t *testing.T) {
	cfg := testConfig(t)
	store := state.New()
	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	store.SetClock(func() time.Time { return base })
	ev := NewEvaluators(cfg, store, &fakeSink{}, testLog)

	snap := &models.Snapshot{
		Sectors: map[string]*models.Sector{
			"DeFi":   {Avg7d: -4, Avg24h: 3, Best: &models.BestPerformer{Symbol: "FOO", Value: 9}},
			"Gaming": {Avg7d: 4, Avg24h: -3},
			"L2":     {Avg7d: 1, Avg24h: 1},
		},
	}

	events := ev.CheckRotation(context.Background(), snap)
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[0].Category != models.CategoryRotationIn {
		t.Errorf("events[0] = %q, want rotation_in", events[0].Category)
	}
	if events[1].Category != models.CategoryRotationOut {
		t.Errorf("events[1] = %q, want rotation_out", events[1].Category)
	}

	// A reversal of the reversal inside the shared cooldown stays quiet.
	snap.Sectors["DeFi"] = &models.Sector{Avg7d: 4, Avg24h: -3}
	store.SetClock(func() time.Time { return base.Add(2 * time.Hour) })
	if got := len(ev.CheckRotation(context.Background(), snap)); got != 0 {
		t.Errorf("flapping sector emitted %d events inside cooldown, want 0", got)
	}
}

func TestCheckDivergence(t *testing.T) {
	cfg := testConfig(t)
	store := state.New()
	ev := NewEvaluators(cfg, store, &fakeSink{}, testLog)

	snap := &models.Snapshot{
		Sectors: map[string]*models.Sector{
			"AI":     {Avg24h: 8, Best: &models.BestPerformer{Symbol: "BOT", Value: 14}},
			"Gaming": {Avg24h: -6},
			"L2":     {Avg24h: 2},
		},
	}

	events := ev.CheckDivergence(context.Background(), snap, 1.0)
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if !strings.Contains(events[0].Text, "leading") {
		t.Errorf("AI event should lead: %q", events[0].Text)
	}
	if !strings.Contains(events[1].Text, "lagging") {
		t.Errorf("Gaming event should lag: %q", events[1].Text)
	}
	for _, e := range events {
		if e.Category != models.CategoryDivergence {
			t.Errorf("category = %q, want sector_divergence", e.Category)
		}
	}
}
