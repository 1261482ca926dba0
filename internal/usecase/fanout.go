package usecase

import (
	"context"
	"strings"
	"time"

	"SectorPulse/internal/domain/models"
	drepo "SectorPulse/internal/domain/repository"
	"SectorPulse/internal/state"
	"SectorPulse/pkg/logger"
	"SectorPulse/pkg/util"
)

// Fanout dispatches the pass's events to every active subscriber. Dedup is
// applied once per event text, globally, before any per-subscriber checks.
// A delivery failure to one subscriber never blocks the others.
type Fanout struct {
	registry drepo.Registry
	notifier drepo.Notifier
	dedup    *state.Dedup
	store    *state.Store
	metrics  drepo.Metrics
	log      *logger.Logger
	delay    time.Duration

	now func() time.Time
}

// NewFanout creates the delivery fan-out. delay is the fixed pause between
// consecutive sends, respecting transport rate limits.
func NewFanout(
	registry drepo.Registry,
	notifier drepo.Notifier,
	dedup *state.Dedup,
	store *state.Store,
	metrics drepo.Metrics,
	log *logger.Logger,
	delay time.Duration,
) *Fanout {
	return &Fanout{
		registry: registry,
		notifier: notifier,
		dedup:    dedup,
		store:    store,
		metrics:  metrics,
		log:      log,
		delay:    delay,
		now:      time.Now,
	}
}

// SetClock replaces the time source for quiet-hours tests.
func (f *Fanout) SetClock(now func() time.Time) { f.now = now }

// Deliver sends each event to each eligible subscriber in order. Returns
// the number of successful sends.
func (f *Fanout) Deliver(ctx context.Context, events []models.Event) int {
	if len(events) == 0 {
		return 0
	}

	subs, err := f.registry.Active(ctx)
	if err != nil {
		f.log.Error("subscriber resolve failed", logger.Error(err))
		f.metrics.RecordError("registry")
		return 0
	}

	sent := 0
	for _, ev := range events {
		if f.dedup.IsDuplicate(ev.Text) {
			f.log.Debug("duplicate event suppressed", logger.String("category", string(ev.Category)))
			f.metrics.RecordDelivery("duplicate")
			continue
		}

		for _, sub := range subs {
			if !sub.WantsCategory(ev.Category) {
				f.metrics.RecordDelivery("filtered")
				continue
			}
			if !matchesFilters(sub, ev.Meta) {
				f.metrics.RecordDelivery("filtered")
				continue
			}
			if sub.QuietHours.Enabled && util.InQuietWindow(f.now(), sub.QuietHours.Start, sub.QuietHours.End) {
				f.metrics.RecordDelivery("quiet")
				continue
			}

			if err := f.notifier.Send(ctx, sub.ID, ev.Text); err != nil {
				f.log.Error("delivery failed",
					logger.String("subscriber", sub.ID),
					logger.Error(err))
				f.metrics.RecordDelivery("failed")
			} else {
				sent++
				f.metrics.RecordDelivery("sent")
			}

			if f.delay > 0 {
				select {
				case <-ctx.Done():
					f.store.AddSent(int64(sent))
					return sent
				case <-time.After(f.delay):
				}
			}
		}
	}

	f.store.AddSent(int64(sent))
	return sent
}

// matchesFilters applies the subscriber's content predicates to the event
// metadata. Events without metadata (digests, regime changes) always pass;
// symbol list filters apply only when the event names a symbol, and the
// volume floor only when the event carries a volume.
func matchesFilters(sub *models.Subscriber, meta *models.EventMeta) bool {
	if meta == nil {
		return true
	}
	fl := sub.Filters

	if fl.MinChangePct > 0 {
		change := meta.ChangePct
		if change < 0 {
			change = -change
		}
		if change < fl.MinChangePct {
			return false
		}
	}
	if fl.MinVolumeUSD > 0 && meta.VolumeUSD > 0 && meta.VolumeUSD < fl.MinVolumeUSD {
		return false
	}
	if meta.Symbol != "" {
		if len(fl.Coins) > 0 && !containsFold(fl.Coins, meta.Symbol) {
			return false
		}
		if containsFold(fl.Blacklist, meta.Symbol) {
			return false
		}
	}
	return true
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
