package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"SectorPulse/internal/domain/models"
	drepo "SectorPulse/internal/domain/repository"
	"SectorPulse/internal/state"
	"SectorPulse/pkg/config"
	"SectorPulse/pkg/logger"
	"SectorPulse/pkg/util"
)

// Digest cadences.
const (
	CadenceDaily  = "daily"
	CadenceWeekly = "weekly"
)

// DigestScheduler emits daily and weekly summary reports, each at most once
// per period. An external composer is preferred; when it declines, the
// scheduler falls back to a summary computed from the snapshot. The period
// marker is set as soon as the time gate passes, before the compose attempt,
// so one attempt per period is guaranteed even if composition fails.
type DigestScheduler struct {
	cfg      *config.Config
	store    *state.Store
	composer drepo.DigestComposer
	log      *logger.Logger

	now func() time.Time
}

// NewDigestScheduler creates the digest scheduler.
func NewDigestScheduler(cfg *config.Config, store *state.Store, composer drepo.DigestComposer, log *logger.Logger) *DigestScheduler {
	return &DigestScheduler{cfg: cfg, store: store, composer: composer, log: log, now: time.Now}
}

// SetClock replaces the time source for tests.
func (d *DigestScheduler) SetClock(now func() time.Time) { d.now = now }

// CheckDaily returns the daily report event, or nil outside the report hour
// or when today's digest already went out.
func (d *DigestScheduler) CheckDaily(ctx context.Context, snap *models.Snapshot) *models.Event {
	now := d.now().UTC()
	today := util.DayKey(now)

	if now.Hour() != d.cfg.Timing.DailyReportHour {
		return nil
	}
	if d.store.DailyMarker() == today {
		return nil
	}
	d.store.SetDailyMarker(today)

	if text, ok := d.composer.Compose(ctx, CadenceDaily); ok {
		d.log.Info("using composed daily digest")
		return &models.Event{Category: models.CategoryDailyDigest, Text: text}
	}
	d.log.Info("using computed daily digest")
	return &models.Event{Category: models.CategoryDailyDigest, Text: d.dailyFallback(snap, today)}
}

// CheckWeekly returns the weekly report event, or nil outside the configured
// weekday and hour or when this week's digest already went out.
func (d *DigestScheduler) CheckWeekly(ctx context.Context, snap *models.Snapshot) *models.Event {
	now := d.now().UTC()
	week := util.WeekKey(now)

	if int(now.Weekday()) != d.cfg.Timing.WeeklyReportDay {
		return nil
	}
	if now.Hour() != d.cfg.Timing.DailyReportHour {
		return nil
	}
	if d.store.WeeklyMarker() == week {
		return nil
	}
	d.store.SetWeeklyMarker(week)

	if text, ok := d.composer.Compose(ctx, CadenceWeekly); ok {
		d.log.Info("using composed weekly digest")
		return &models.Event{Category: models.CategoryWeeklyDigest, Text: text}
	}
	d.log.Info("using computed weekly digest")
	return &models.Event{Category: models.CategoryWeeklyDigest, Text: d.weeklyFallback(snap, week)}
}

type rankedSector struct {
	name   string
	sector *models.Sector
}

func rankSectors(snap *models.Snapshot, by func(*models.Sector) float64) []rankedSector {
	ranked := make([]rankedSector, 0, len(snap.Sectors))
	for name, s := range snap.Sectors {
		ranked = append(ranked, rankedSector{name: name, sector: s})
	}
	sort.Slice(ranked, func(i, j int) bool {
		vi, vj := by(ranked[i].sector), by(ranked[j].sector)
		if vi != vj {
			return vi > vj
		}
		return ranked[i].name < ranked[j].name
	})
	return ranked
}

// dailyFallback computes the top-5/bottom-3 sectors by 24h average plus the
// top-5 tokens by 24h change.
func (d *DigestScheduler) dailyFallback(snap *models.Snapshot, today string) string {
	ranked := rankSectors(snap, func(s *models.Sector) float64 { return s.Avg24h })

	var top []string
	for i := 0; i < len(ranked) && i < 5; i++ {
		emoji := "🔴"
		if ranked[i].sector.Avg24h > 0 {
			emoji = "🟢"
		}
		top = append(top, fmt.Sprintf("%s %s: %s", emoji, ranked[i].name, util.FormatPct(ranked[i].sector.Avg24h)))
	}

	var bottom []string
	start := len(ranked) - 3
	if start < 0 {
		start = 0
	}
	for _, r := range ranked[start:] {
		bottom = append(bottom, fmt.Sprintf("🔴 %s: %s", r.name, util.FormatPct(r.sector.Avg24h)))
	}

	type rankedToken struct {
		id     string
		change float64
		token  *models.Token
	}
	var tokens []rankedToken
	for id, t := range snap.Tokens {
		if t.Change24h == nil {
			continue
		}
		tokens = append(tokens, rankedToken{id: id, change: *t.Change24h, token: t})
	}
	sort.Slice(tokens, func(i, j int) bool {
		if tokens[i].change != tokens[j].change {
			return tokens[i].change > tokens[j].change
		}
		return tokens[i].id < tokens[j].id
	})

	var topTokens []string
	for i := 0; i < len(tokens) && i < 5; i++ {
		sym := displaySymbol(tokens[i].id, tokens[i].token)
		topTokens = append(topTokens, fmt.Sprintf("🚀 %s: %s", sym, util.FormatPct(tokens[i].change)))
	}

	return "📊 <b>Daily Crypto Report</b>\n" +
		fmt.Sprintf("<i>%s</i>\n\n", today) +
		"<b>Top 5 Sectors:</b>\n" + strings.Join(top, "\n") +
		"\n\n<b>Worst 3 Sectors:</b>\n" + strings.Join(bottom, "\n") +
		"\n\n<b>Top 5 Tokens:</b>\n" + strings.Join(topTokens, "\n")
}

// weeklyFallback ranks every sector by 7d average with a trend marker
// comparing 7d to 30d.
func (d *DigestScheduler) weeklyFallback(snap *models.Snapshot, week string) string {
	ranked := rankSectors(snap, func(s *models.Sector) float64 { return s.Avg7d })

	lines := make([]string, 0, len(ranked))
	for _, r := range ranked {
		emoji := "🔴"
		if r.sector.Avg7d > 0 {
			emoji = "🟢"
		}
		trend := "↓"
		if r.sector.Avg7d > r.sector.Avg30d {
			trend = "↑"
		}
		lines = append(lines, fmt.Sprintf("%s %s: %s %s", emoji, r.name, util.FormatPct(r.sector.Avg7d), trend))
	}

	shown := lines
	more := ""
	if len(lines) > 10 {
		shown = lines[:10]
		more = fmt.Sprintf("\n\n<i>...and %d more sectors</i>", len(lines)-10)
	}

	return "📈 <b>Weekly Sector Report</b>\n" +
		fmt.Sprintf("<i>%s</i>\n\n", week) +
		"<b>7d Performance (↑ improving, ↓ declining):</b>\n" +
		strings.Join(shown, "\n") + more
}
