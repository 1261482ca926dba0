package state

import (
	"encoding/json"
	"sync"
	"time"
)

// snapshot is the JSON layout persisted between passes.
type snapshot struct {
	LastMarketState  string            `json:"last_market_state"`
	LastDailyReport  string            `json:"last_daily_report"`
	LastWeeklyReport string            `json:"last_weekly_report"`
	Cooldowns        map[string]string `json:"cooldowns"`
	TotalSent        int64             `json:"total_sent"`
}

// Store holds every piece of run state that must survive restarts:
// per-key cooldown timestamps, regime memory, digest markers and the
// diagnostic sent counter. One Store is shared between the evaluation
// pass and the interactive surface, so all access goes through the mutex.
type Store struct {
	mu        sync.Mutex
	cooldowns map[string]string // key -> RFC3339 UTC timestamp
	regime    string
	daily     string
	weekly    string
	totalSent int64

	now func() time.Time
}

// New creates an empty store with defaults (regime neutral, nothing fired).
func New() *Store {
	return &Store{
		cooldowns: make(map[string]string),
		regime:    "neutral",
		now:       time.Now,
	}
}

// SetClock replaces the time source. Tests use it to advance time.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	s.now = now
	s.mu.Unlock()
}

// Allowed reports whether the alert key may fire again: true when the key
// was never marked, or when at least minHours elapsed since the stored
// timestamp. A malformed stored timestamp is treated as allowed. Allowed
// never mutates state; callers commit with Mark after the alert fires.
func (s *Store) Allowed(key string, minHours float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, ok := s.cooldowns[key]
	if !ok {
		return true
	}
	last, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return true // fail-open
	}
	elapsed := s.now().Sub(last).Hours()
	return elapsed >= minHours
}

// Mark records the current instant as the last-fired time for key.
func (s *Store) Mark(key string) {
	s.mu.Lock()
	s.cooldowns[key] = s.now().UTC().Format(time.RFC3339)
	s.mu.Unlock()
}

// Regime returns the remembered market regime.
func (s *Store) Regime() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.regime
}

// SetRegime updates the regime memory.
func (s *Store) SetRegime(state string) {
	s.mu.Lock()
	s.regime = state
	s.mu.Unlock()
}

// DailyMarker returns the date key of the last emitted daily digest.
func (s *Store) DailyMarker() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.daily
}

// SetDailyMarker records the daily digest marker.
func (s *Store) SetDailyMarker(day string) {
	s.mu.Lock()
	s.daily = day
	s.mu.Unlock()
}

// WeeklyMarker returns the ISO-week key of the last emitted weekly digest.
func (s *Store) WeeklyMarker() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.weekly
}

// SetWeeklyMarker records the weekly digest marker.
func (s *Store) SetWeeklyMarker(week string) {
	s.mu.Lock()
	s.weekly = week
	s.mu.Unlock()
}

// AddSent bumps the diagnostic counter of dispatched events.
func (s *Store) AddSent(n int64) {
	s.mu.Lock()
	s.totalSent += n
	s.mu.Unlock()
}

// TotalSent returns the dispatched-event counter.
func (s *Store) TotalSent() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totalSent
}

// MarshalJSON serializes the persisted view of the store.
func (s *Store) MarshalJSON() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cd := make(map[string]string, len(s.cooldowns))
	for k, v := range s.cooldowns {
		cd[k] = v
	}
	return json.Marshal(snapshot{
		LastMarketState:  s.regime,
		LastDailyReport:  s.daily,
		LastWeeklyReport: s.weekly,
		Cooldowns:        cd,
		TotalSent:        s.totalSent,
	})
}

// UnmarshalJSON restores the store from its persisted form. Any decode
// error leaves the store at defaults; corrupt state must never be fatal.
func (s *Store) UnmarshalJSON(data []byte) error {
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if snap.Cooldowns != nil {
		s.cooldowns = snap.Cooldowns
	} else {
		s.cooldowns = make(map[string]string)
	}
	if snap.LastMarketState != "" {
		s.regime = snap.LastMarketState
	} else {
		s.regime = "neutral"
	}
	s.daily = snap.LastDailyReport
	s.weekly = snap.LastWeeklyReport
	s.totalSent = snap.TotalSent
	return nil
}
