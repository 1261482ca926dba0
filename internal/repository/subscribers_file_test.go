package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"SectorPulse/internal/domain/models"
	"SectorPulse/pkg/logger"
)

const usersFixture = `{
  "1001": {
    "username": "alice",
    "alerts_enabled": true,
    "alert_types": {"pump": true, "rotation_out": true},
    "filters": {"min_change_pct": 10},
    "quiet_hours": {"enabled": true, "start": "22:00", "end": "06:00"}
  },
  "1002": {
    "username": "bob",
    "alerts_enabled": false
  },
  "1003": {
    "username": "carol"
  }
}`

func writeUsers(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write users: %v", err)
	}
}

func TestFileRegistryActive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.json")
	writeUsers(t, path, usersFixture)
	reg := NewFileRegistry(path, logger.Nop())

	subs, err := reg.Active(context.Background())
	if err != nil {
		t.Fatalf("active: %v", err)
	}
	// bob opted out; carol never set alerts_enabled and defaults to on.
	if len(subs) != 2 {
		t.Fatalf("got %d subscribers, want 2", len(subs))
	}
	if subs[0].ID != "1001" || subs[1].ID != "1003" {
		t.Fatalf("ids = %s, %s; want 1001, 1003 in order", subs[0].ID, subs[1].ID)
	}

	alice := subs[0]
	if !alice.WantsCategory(models.CategoryRotationOut) {
		t.Errorf("alice enabled rotation_out explicitly")
	}
	if alice.Filters.MinChangePct != 10 {
		t.Errorf("alice min change = %v, want 10", alice.Filters.MinChangePct)
	}
	if !alice.QuietHours.Enabled || alice.QuietHours.Start != "22:00" {
		t.Errorf("alice quiet hours = %+v", alice.QuietHours)
	}

	carol := subs[1]
	if carol.WantsCategory(models.CategoryRotationOut) {
		t.Errorf("rotation_out should default off")
	}
	if !carol.WantsCategory(models.CategorySurge) {
		t.Errorf("pump should default on")
	}
}

func TestFileRegistryMissingFile(t *testing.T) {
	reg := NewFileRegistry(filepath.Join(t.TempDir(), "users.json"), logger.Nop())
	subs, err := reg.Active(context.Background())
	if err != nil {
		t.Fatalf("active: %v", err)
	}
	if len(subs) != 0 {
		t.Fatalf("got %d subscribers from a missing file", len(subs))
	}
}

func TestFileRegistryReloadOnChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.json")
	writeUsers(t, path, `{"1001": {"username": "alice"}}`)
	reg := NewFileRegistry(path, logger.Nop())

	subs, err := reg.Active(context.Background())
	if err != nil {
		t.Fatalf("active: %v", err)
	}
	if len(subs) != 1 {
		t.Fatalf("got %d subscribers, want 1", len(subs))
	}

	writeUsers(t, path, `{"1001": {"username": "alice"}, "1002": {"username": "bob"}}`)
	// Force a distinct mtime; coarse filesystem clocks can hide a fast rewrite.
	future := time.Now().Add(2 * time.Second)
	if err := os.Chtimes(path, future, future); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	subs, err = reg.Active(context.Background())
	if err != nil {
		t.Fatalf("active after change: %v", err)
	}
	if len(subs) != 2 {
		t.Fatalf("got %d subscribers after reload, want 2", len(subs))
	}
}

func TestFileRegistryServesCacheOnCorruptRewrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.json")
	writeUsers(t, path, `{"1001": {"username": "alice"}}`)
	reg := NewFileRegistry(path, logger.Nop())

	if _, err := reg.Active(context.Background()); err != nil {
		t.Fatalf("active: %v", err)
	}

	writeUsers(t, path, `{not json`)
	future := time.Now().Add(2 * time.Second)
	if err := os.Chtimes(path, future, future); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	subs, err := reg.Active(context.Background())
	if err != nil {
		t.Fatalf("active should fall back to cache, got error: %v", err)
	}
	if len(subs) != 1 || subs[0].ID != "1001" {
		t.Fatalf("cache not served: %+v", subs)
	}
}
