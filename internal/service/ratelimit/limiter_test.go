package ratelimit

import (
	"testing"
	"time"
)

func TestAllowRefill(t *testing.T) {
	l := New()
	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	l.SetClock(func() time.Time { return base })

	if !l.Allow("chat", 1, 1) {
		t.Fatal("first call should pass")
	}
	if l.Allow("chat", 1, 1) {
		t.Fatal("second immediate call should be limited")
	}

	l.SetClock(func() time.Time { return base.Add(time.Second) })
	if !l.Allow("chat", 1, 1) {
		t.Fatal("call after refill should pass")
	}
}

func TestKeysAreIndependent(t *testing.T) {
	l := New()
	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	l.SetClock(func() time.Time { return base })

	if !l.Allow("a", 1, 1) {
		t.Fatal("key a denied")
	}
	if !l.Allow("b", 1, 1) {
		t.Fatal("key b throttled by key a")
	}
}

func TestDelay(t *testing.T) {
	l := New()
	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	l.SetClock(func() time.Time { return base })

	if d := l.Delay("chat", 1, 1); d != 0 {
		t.Fatalf("delay for unseen key = %v, want 0", d)
	}
	l.Allow("chat", 1, 1)
	if d := l.Delay("chat", 1, 1); d != time.Second {
		t.Fatalf("delay after drain = %v, want 1s", d)
	}

	l.SetClock(func() time.Time { return base.Add(400 * time.Millisecond) })
	if d := l.Delay("chat", 1, 1); d != 600*time.Millisecond {
		t.Fatalf("partial refill delay = %v, want 600ms", d)
	}
}
