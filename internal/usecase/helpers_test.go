package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/creasty/defaults"

	"SectorPulse/internal/domain/models"
	"SectorPulse/pkg/config"
	"SectorPulse/pkg/logger"
)

func testConfig(t interface{ Fatalf(string, ...interface{}) }) *config.Config {
	cfg := &config.Config{}
	if err := defaults.Set(cfg); err != nil {
		t.Fatalf("defaults: %v", err)
	}
	return cfg
}

func pct(v float64) *float64 { return &v }

func fixedClock(s string) func() time.Time {
	ts, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return func() time.Time { return ts }
}

type fakeMarket struct {
	snap     *models.Snapshot
	snapErr  error
	state    *models.MarketState
	stateErr error
	momentum *models.Momentum
	momErr   error
}

func (m *fakeMarket) Snapshot(context.Context) (*models.Snapshot, error) {
	return m.snap, m.snapErr
}

func (m *fakeMarket) MarketState(context.Context) (*models.MarketState, error) {
	return m.state, m.stateErr
}

func (m *fakeMarket) Momentum(context.Context) (*models.Momentum, error) {
	return m.momentum, m.momErr
}

type fakeSink struct {
	mu      sync.Mutex
	signals []*models.Signal
}

func (s *fakeSink) Record(_ context.Context, sig *models.Signal) {
	s.mu.Lock()
	s.signals = append(s.signals, sig)
	s.mu.Unlock()
}

func (s *fakeSink) Close() error { return nil }

type fakeComposer struct {
	text string
	ok   bool
}

func (c *fakeComposer) Compose(context.Context, string) (string, bool) { return c.text, c.ok }

type sentMessage struct {
	Recipient string
	Text      string
}

type fakeNotifier struct {
	sent    []sentMessage
	failFor map[string]bool
}

func (n *fakeNotifier) Send(_ context.Context, recipient, text string) error {
	if n.failFor[recipient] {
		return errors.New("send failed")
	}
	n.sent = append(n.sent, sentMessage{Recipient: recipient, Text: text})
	return nil
}

type fakeRegistry struct {
	subs []*models.Subscriber
	err  error
}

func (r *fakeRegistry) Active(context.Context) ([]*models.Subscriber, error) {
	return r.subs, r.err
}

type fakeStateStore struct {
	saved [][]byte
	data  []byte
	err   error
}

func (s *fakeStateStore) Load(context.Context) ([]byte, error) { return s.data, s.err }

func (s *fakeStateStore) Save(_ context.Context, data []byte) error {
	s.saved = append(s.saved, data)
	return nil
}

type fakeMetrics struct {
	events     map[string]int
	deliveries map[string]int
	errs       map[string]int
	regimes    []string
	passes     int
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{
		events:     map[string]int{},
		deliveries: map[string]int{},
		errs:       map[string]int{},
	}
}

func (m *fakeMetrics) RecordEvent(category string)   { m.events[category]++ }
func (m *fakeMetrics) RecordDelivery(outcome string) { m.deliveries[outcome]++ }
func (m *fakeMetrics) RecordError(kind string)       { m.errs[kind]++ }
func (m *fakeMetrics) RecordPassDuration(float64)    { m.passes++ }
func (m *fakeMetrics) RecordRegime(state string)     { m.regimes = append(m.regimes, state) }

var testLog = logger.Nop()

// testSnapshot builds a small market with one surging token, one dumping
// token and two quiet ones spread over two sectors.
func testSnapshot() *models.Snapshot {
	return &models.Snapshot{
		Tokens: map[string]*models.Token{
			"foo": {Symbol: "FOO", Name: "Foo Protocol", Price: 2.5, MarketCap: 80_000_000, VolumeUSD: 4_000_000, Change24h: pct(20), Change7d: pct(22)},
			"bar": {Symbol: "BAR", Name: "Bar Chain", Price: 0.8, MarketCap: 120_000_000, VolumeUSD: 9_000_000, Change24h: pct(-18), Change7d: pct(-10)},
			"baz": {Symbol: "BAZ", Price: 11, MarketCap: 300_000_000, Change24h: pct(1.2), Change7d: pct(2)},
			"qux": {Symbol: "QUX", Price: 0.05, MarketCap: 60_000_000, Change24h: pct(-0.5), Change7d: pct(1)},
		},
		Sectors: map[string]*models.Sector{
			"DeFi":   {Avg24h: 1.0, Avg7d: 2.0, Best: &models.BestPerformer{Symbol: "FOO", Value: 20}},
			"Gaming": {Avg24h: -2.0, Avg7d: -1.0},
		},
		SectorTokens: map[string][]string{
			"DeFi":   {"foo", "baz"},
			"Gaming": {"bar", "qux"},
		},
	}
}
