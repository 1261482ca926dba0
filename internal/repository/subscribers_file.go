package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"SectorPulse/internal/domain/models"
	"SectorPulse/internal/domain/repository"
	"SectorPulse/pkg/logger"
)

// userRecord is the on-disk shape of one subscriber. Pointer fields
// distinguish "absent" from "explicitly false" so old files keep their
// default-on behavior.
type userRecord struct {
	Username      string                   `json:"username"`
	AlertsEnabled *bool                    `json:"alerts_enabled"`
	AlertTypes    map[models.Category]bool `json:"alert_types"`
	Filters       models.Filters           `json:"filters"`
	QuietHours    models.QuietHours        `json:"quiet_hours"`
}

// FileRegistry reads subscribers from a JSON file keyed by chat id. The file
// is owned by the interactive bot surface; this side only reads. A modified
// timestamp check on each lookup picks up external edits without a watcher.
type FileRegistry struct {
	path string
	log  *logger.Logger

	mu      sync.Mutex
	loaded  []*models.Subscriber
	modTime time.Time
}

// NewFileRegistry creates a registry backed by a users file. A missing file
// is not an error; it reads as zero subscribers until the file appears.
func NewFileRegistry(path string, log *logger.Logger) repository.Registry {
	return &FileRegistry{path: path, log: log}
}

// Active returns every subscriber with alerts enabled, ordered by id.
func (r *FileRegistry) Active(_ context.Context) ([]*models.Subscriber, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.refresh(); err != nil {
		if r.loaded == nil {
			return nil, err
		}
		// Serve the last good read while the file is broken.
		r.log.Warn("users file reload failed, serving cached subscribers", logger.Error(err))
	}

	active := make([]*models.Subscriber, 0, len(r.loaded))
	for _, s := range r.loaded {
		if s.AlertsEnabled {
			active = append(active, s)
		}
	}
	return active, nil
}

func (r *FileRegistry) refresh() error {
	info, err := os.Stat(r.path)
	if os.IsNotExist(err) {
		r.loaded = []*models.Subscriber{}
		r.modTime = time.Time{}
		return nil
	}
	if err != nil {
		return fmt.Errorf("stat users file: %w", err)
	}
	if r.loaded != nil && info.ModTime().Equal(r.modTime) {
		return nil
	}

	b, err := os.ReadFile(r.path)
	if err != nil {
		return fmt.Errorf("read users file: %w", err)
	}

	var raw map[string]userRecord
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("parse users file: %w", err)
	}

	ids := make([]string, 0, len(raw))
	for id := range raw {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	subs := make([]*models.Subscriber, 0, len(ids))
	for _, id := range ids {
		rec := raw[id]
		enabled := true
		if rec.AlertsEnabled != nil {
			enabled = *rec.AlertsEnabled
		}
		subs = append(subs, &models.Subscriber{
			ID:            id,
			Username:      rec.Username,
			AlertsEnabled: enabled,
			AlertTypes:    rec.AlertTypes,
			Filters:       rec.Filters,
			QuietHours:    rec.QuietHours,
		})
	}

	r.loaded = subs
	r.modTime = info.ModTime()
	r.log.Debug("users file loaded",
		logger.Int("subscribers", len(subs)),
		logger.String("path", r.path))
	return nil
}
