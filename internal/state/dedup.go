package state

import (
	"crypto/sha1"
	"encoding/hex"
	"sync"
	"time"
)

// Dedup is a bounded content-hash cache that collapses identically worded
// alerts across triggers. It is deliberately content-based, not key-based,
// and applied once per event before fan-out. Dedup state is in-memory only;
// a restart losing it is acceptable because the cooldown gates remain.
type Dedup struct {
	mu        sync.Mutex
	entries   map[string]time.Time // text hash -> last sent
	window    time.Duration
	retention time.Duration
	maxSize   int

	now func() time.Time
}

// NewDedup creates a dedup cache. window is how long an identical text is
// suppressed; once the cache holds more than maxSize entries, everything
// older than retention is purged in one sweep.
func NewDedup(window, retention time.Duration, maxSize int) *Dedup {
	if window <= 0 {
		window = time.Hour
	}
	if retention <= 0 {
		retention = 2 * time.Hour
	}
	if maxSize <= 0 {
		maxSize = 500
	}
	return &Dedup{
		entries:   make(map[string]time.Time),
		window:    window,
		retention: retention,
		maxSize:   maxSize,
		now:       time.Now,
	}
}

// SetClock replaces the time source. Tests use it to advance time.
func (d *Dedup) SetClock(now func() time.Time) {
	d.mu.Lock()
	d.now = now
	d.mu.Unlock()
}

// IsDuplicate reports whether text was already sent within the window. A
// miss records the current time under the text's hash; a hit does not
// refresh the timestamp, so a steady stream of duplicates still expires.
func (d *Dedup) IsDuplicate(text string) bool {
	sum := sha1.Sum([]byte(text))
	key := hex.EncodeToString(sum[:])

	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	if last, ok := d.entries[key]; ok && now.Sub(last) < d.window {
		return true
	}
	d.entries[key] = now

	if len(d.entries) > d.maxSize {
		cutoff := now.Add(-d.retention)
		for k, t := range d.entries {
			if t.Before(cutoff) {
				delete(d.entries, k)
			}
		}
	}
	return false
}

// Len returns the current number of cached hashes.
func (d *Dedup) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.entries)
}
