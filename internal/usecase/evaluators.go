package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"SectorPulse/internal/domain/models"
	drepo "SectorPulse/internal/domain/repository"
	"SectorPulse/internal/state"
	"SectorPulse/pkg/config"
	"SectorPulse/pkg/logger"
	"SectorPulse/pkg/util"
)

// Cooldown key namespaces. Surge and dump share the token namespace so a
// whipsawing token cannot alternate between the two every pass; rotation-in
// and rotation-out share the rotation key for the same reason.
const (
	keyToken    = "token:"
	keyBreakout = "breakout:"
	keyAlpha    = "alpha:"
	keySector   = "sector:"
	keyRotation = "rotation:"
)

// Cooldown windows in hours, per rule.
const (
	cooldownTokenHours      = 6
	cooldownBreakoutHours   = 24
	cooldownAlphaHours      = 12
	cooldownDivergenceHours = 12
	cooldownRotationHours   = 24
)

// Evaluators runs the per-rule signal detection against one snapshot. All
// rules share the suppression store and the configured ignore-lists and
// market-cap floor; each produces zero or more rendered events and records
// a structured signal for history.
type Evaluators struct {
	cfg   *config.Config
	store *state.Store
	sink  drepo.SignalSink
	log   *logger.Logger
}

// NewEvaluators creates the canonical rule evaluator set.
func NewEvaluators(cfg *config.Config, store *state.Store, sink drepo.SignalSink, log *logger.Logger) *Evaluators {
	return &Evaluators{cfg: cfg, store: store, sink: sink, log: log}
}

// skipToken applies the shared pre-filter: ignore-list and market-cap floor.
func (e *Evaluators) skipToken(id string, t *models.Token) bool {
	for _, ig := range e.cfg.Filters.IgnoreTokens {
		if strings.EqualFold(ig, id) {
			return true
		}
	}
	return t.MarketCap < e.cfg.Filters.MinMcapUSD
}

func (e *Evaluators) skipSector(name string) bool {
	for _, ig := range e.cfg.Filters.IgnoreSectors {
		if strings.EqualFold(ig, name) {
			return true
		}
	}
	return false
}

// sortedTokenIDs returns snapshot token ids in stable order so a pass is
// deterministic regardless of map iteration.
func sortedTokenIDs(snap *models.Snapshot) []string {
	ids := make([]string, 0, len(snap.Tokens))
	for id := range snap.Tokens {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func sortedSectorNames(snap *models.Snapshot) []string {
	names := make([]string, 0, len(snap.Sectors))
	for name := range snap.Sectors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CheckTokenMoves emits surge and dump events for sharp 24h moves.
func (e *Evaluators) CheckTokenMoves(ctx context.Context, snap *models.Snapshot) []models.Event {
	var events []models.Event

	for _, id := range sortedTokenIDs(snap) {
		t := snap.Tokens[id]
		if e.skipToken(id, t) || t.Change24h == nil {
			continue
		}
		change := *t.Change24h
		if change < e.cfg.Alerts.TokenSurgePct && change > e.cfg.Alerts.TokenDumpPct {
			continue
		}
		if !e.store.Allowed(keyToken+id, cooldownTokenHours) {
			continue
		}

		symbol := displaySymbol(id, t)
		sector := snap.SectorOf(id)
		sectorStr := ""
		if sector != "" {
			sectorStr = fmt.Sprintf(" (%s)", sector)
		}

		var head string
		var cat models.Category
		var reason string
		if change >= e.cfg.Alerts.TokenSurgePct {
			head = fmt.Sprintf("🚀 <b>%s</b> %s%s", symbol, util.FormatPct(change), sectorStr)
			cat = models.CategorySurge
			reason = fmt.Sprintf("Up %s in 24h", util.FormatPct(change))
		} else {
			head = fmt.Sprintf("💥 <b>%s</b> %s%s", symbol, util.FormatPct(change), sectorStr)
			cat = models.CategoryDump
			reason = fmt.Sprintf("Down %s in 24h", util.FormatPct(change))
		}

		text := head + "\n" +
			"├ Price: " + util.FormatPrice(t.Price) + "\n" +
			"├ MCap: " + util.FormatMcap(t.MarketCap) + "\n" +
			"└ " + displayName(t, symbol)

		events = append(events, models.Event{
			Category: cat,
			Text:     text,
			Meta: &models.EventMeta{
				Symbol:    symbol,
				ChangePct: change,
				MarketCap: t.MarketCap,
				VolumeUSD: t.VolumeUSD,
			},
		})
		e.store.Mark(keyToken + id)

		e.sink.Record(ctx, &models.Signal{
			Type:      strings.ToUpper(string(cat)),
			Token:     symbol,
			Sector:    sector,
			Change24h: change,
			Price:     t.Price,
			MCap:      t.MarketCap,
			Reason:    reason,
		})
	}
	return events
}

// CheckEarlyBreakouts emits events for tokens that were flat over the week
// excluding today and just started moving.
func (e *Evaluators) CheckEarlyBreakouts(ctx context.Context, snap *models.Snapshot) []models.Event {
	var events []models.Event

	for _, id := range sortedTokenIDs(snap) {
		t := snap.Tokens[id]
		if e.skipToken(id, t) || t.Change24h == nil || t.Change7d == nil {
			continue
		}
		change24h := *t.Change24h
		pre := *t.Change7d - change24h

		wasFlat := pre >= -e.cfg.Alerts.BreakoutFlatMax && pre <= e.cfg.Alerts.BreakoutFlatMax
		isSurging := change24h >= e.cfg.Alerts.BreakoutSurgeMin
		if !wasFlat || !isSurging {
			continue
		}
		if !e.store.Allowed(keyBreakout+id, cooldownBreakoutHours) {
			continue
		}

		symbol := displaySymbol(id, t)
		sector := snap.SectorOf(id)
		sectorStr := ""
		if sector != "" {
			sectorStr = fmt.Sprintf(" (%s)", sector)
		}

		text := fmt.Sprintf("⚡ <b>EARLY BREAKOUT</b>: %s%s\n", symbol, sectorStr) +
			fmt.Sprintf("├ 24h: <b>%s</b>\n", util.FormatPct(change24h)) +
			fmt.Sprintf("├ 7d before: %s (was flat)\n", util.FormatPct(pre)) +
			"├ Price: " + util.FormatPrice(t.Price) + "\n" +
			"└ MCap: " + util.FormatMcap(t.MarketCap)

		events = append(events, models.Event{
			Category: models.CategoryBreakout,
			Text:     text,
			Meta: &models.EventMeta{
				Symbol:    symbol,
				ChangePct: change24h,
				MarketCap: t.MarketCap,
				VolumeUSD: t.VolumeUSD,
			},
		})
		e.store.Mark(keyBreakout + id)
		e.log.Info("early breakout", logger.String("symbol", symbol))

		e.sink.Record(ctx, &models.Signal{
			Type:      "EARLY_BREAKOUT",
			Token:     symbol,
			Sector:    sector,
			Change24h: change24h,
			Change7d:  *t.Change7d,
			Price:     t.Price,
			MCap:      t.MarketCap,
			Reason:    fmt.Sprintf("Flat %s over 7d, now up %s", util.FormatPct(pre), util.FormatPct(change24h)),
		})
	}
	return events
}

// CheckAlpha emits events for tokens far outrunning their own sector.
func (e *Evaluators) CheckAlpha(ctx context.Context, snap *models.Snapshot) []models.Event {
	var events []models.Event

	for _, id := range sortedTokenIDs(snap) {
		t := snap.Tokens[id]
		if e.skipToken(id, t) || t.Change24h == nil {
			continue
		}
		change24h := *t.Change24h
		if change24h < 5 { // rising tokens only
			continue
		}

		sectorName := snap.SectorOf(id)
		if sectorName == "" || e.skipSector(sectorName) {
			continue
		}
		sector, ok := snap.Sectors[sectorName]
		if !ok {
			continue
		}

		alpha := change24h - sector.Avg24h
		if alpha < e.cfg.Alerts.AlphaMinPct {
			continue
		}
		if !e.store.Allowed(keyAlpha+id, cooldownAlphaHours) {
			continue
		}

		symbol := displaySymbol(id, t)
		text := fmt.Sprintf("🎯 <b>ALPHA</b>: %s in %s\n", symbol, sectorName) +
			fmt.Sprintf("├ Token: <b>%s</b>\n", util.FormatPct(change24h)) +
			fmt.Sprintf("├ Sector: %s\n", util.FormatPct(sector.Avg24h)) +
			fmt.Sprintf("├ Alpha: <b>%s</b>\n", util.FormatPct(alpha)) +
			fmt.Sprintf("└ %s | %s", util.FormatPrice(t.Price), util.FormatMcap(t.MarketCap))

		events = append(events, models.Event{
			Category: models.CategoryAlpha,
			Text:     text,
			Meta: &models.EventMeta{
				Symbol:    symbol,
				ChangePct: change24h,
				MarketCap: t.MarketCap,
				VolumeUSD: t.VolumeUSD,
			},
		})
		e.store.Mark(keyAlpha + id)
		e.log.Info("alpha token",
			logger.String("symbol", symbol),
			logger.Float64("alpha", alpha),
			logger.String("sector", sectorName))

		e.sink.Record(ctx, &models.Signal{
			Type:      "ALPHA",
			Token:     symbol,
			Sector:    sectorName,
			Change24h: change24h,
			SectorAvg: sector.Avg24h,
			Alpha:     alpha,
			Price:     t.Price,
			MCap:      t.MarketCap,
			Reason: fmt.Sprintf("Token %s, sector %s %s, alpha %s",
				util.FormatPct(change24h), sectorName, util.FormatPct(sector.Avg24h), util.FormatPct(alpha)),
		})
	}
	return events
}

// CheckRotation emits rotation-in and rotation-out events for sectors whose
// 24h direction reverses their 7d trend. Both directions share one cooldown
// key per sector, so a reversal cannot flap between in and out inside the
// window.
func (e *Evaluators) CheckRotation(ctx context.Context, snap *models.Snapshot) []models.Event {
	var events []models.Event

	for _, name := range sortedSectorNames(snap) {
		sector := snap.Sectors[name]
		if e.skipSector(name) {
			continue
		}

		rotationIn := sector.Avg7d <= -e.cfg.Alerts.Rotation7dThreshold &&
			sector.Avg24h >= e.cfg.Alerts.Rotation24hThresh
		rotationOut := sector.Avg7d >= e.cfg.Alerts.Rotation7dThreshold &&
			sector.Avg24h <= -e.cfg.Alerts.Rotation24hThresh
		if !rotationIn && !rotationOut {
			continue
		}

		key := keyRotation + name + "_rotation"
		if !e.store.Allowed(key, cooldownRotationHours) {
			continue
		}

		var text, reason string
		var cat models.Category
		if rotationIn {
			best := "-"
			if sector.Best != nil {
				best = fmt.Sprintf("%s %s", sector.Best.Symbol, util.FormatPct(sector.Best.Value))
			}
			text = fmt.Sprintf("🔄 <b>ROTATION IN</b>: %s\n", name) +
				fmt.Sprintf("├ 7d: %s (was weak)\n", util.FormatPct(sector.Avg7d)) +
				fmt.Sprintf("├ 24h: <b>%s</b> (reversal!)\n", util.FormatPct(sector.Avg24h)) +
				"└ Leader: " + best
			cat = models.CategoryRotationIn
			reason = fmt.Sprintf("7d: %s, 24h: %s - turning up",
				util.FormatPct(sector.Avg7d), util.FormatPct(sector.Avg24h))
		} else {
			text = fmt.Sprintf("🔄 <b>ROTATION OUT</b>: %s\n", name) +
				fmt.Sprintf("├ 7d: %s (was strong)\n", util.FormatPct(sector.Avg7d)) +
				fmt.Sprintf("├ 24h: <b>%s</b> (reversal!)\n", util.FormatPct(sector.Avg24h)) +
				"└ Money leaving the sector"
			cat = models.CategoryRotationOut
			reason = fmt.Sprintf("7d: %s, 24h: %s - turning down",
				util.FormatPct(sector.Avg7d), util.FormatPct(sector.Avg24h))
		}

		events = append(events, models.Event{
			Category: cat,
			Text:     text,
			Meta:     &models.EventMeta{ChangePct: sector.Avg24h},
		})
		e.store.Mark(key)
		e.log.Info("sector rotation", logger.String("sector", name), logger.String("direction", string(cat)))

		e.sink.Record(ctx, &models.Signal{
			Type:      strings.ToUpper(string(cat)),
			Sector:    name,
			Change24h: sector.Avg24h,
			Change7d:  sector.Avg7d,
			Reason:    reason,
		})
	}
	return events
}

// CheckDivergence emits events for sectors far from the market-wide 24h
// average, in either direction.
func (e *Evaluators) CheckDivergence(ctx context.Context, snap *models.Snapshot, marketAvg float64) []models.Event {
	var events []models.Event

	for _, name := range sortedSectorNames(snap) {
		sector := snap.Sectors[name]
		if e.skipSector(name) {
			continue
		}
		diff := sector.Avg24h - marketAvg
		if diff < e.cfg.Alerts.SectorDiffPct && diff > -e.cfg.Alerts.SectorDiffPct {
			continue
		}
		if !e.store.Allowed(keySector+name, cooldownDivergenceHours) {
			continue
		}

		var text string
		if diff >= e.cfg.Alerts.SectorDiffPct {
			best := "-"
			if sector.Best != nil {
				best = fmt.Sprintf("%s %s", sector.Best.Symbol, util.FormatPct(sector.Best.Value))
			}
			text = fmt.Sprintf("📈 <b>%s</b> leading the market\n", name) +
				fmt.Sprintf("├ Sector: %s\n", util.FormatPct(sector.Avg24h)) +
				fmt.Sprintf("├ Market: %s\n", util.FormatPct(marketAvg)) +
				fmt.Sprintf("├ Gap: %s\n", util.FormatPct(diff)) +
				"└ Leader: " + best
		} else {
			text = fmt.Sprintf("📉 <b>%s</b> lagging the market\n", name) +
				fmt.Sprintf("├ Sector: %s\n", util.FormatPct(sector.Avg24h)) +
				fmt.Sprintf("├ Market: %s\n", util.FormatPct(marketAvg)) +
				fmt.Sprintf("└ Gap: %s", util.FormatPct(diff))
		}

		events = append(events, models.Event{
			Category: models.CategoryDivergence,
			Text:     text,
			Meta:     &models.EventMeta{ChangePct: sector.Avg24h},
		})
		e.store.Mark(keySector + name)

		e.sink.Record(ctx, &models.Signal{
			Type:      "SECTOR_DIVERGENCE",
			Sector:    name,
			Change24h: sector.Avg24h,
			Reason:    fmt.Sprintf("Sector %s vs market %s", util.FormatPct(sector.Avg24h), util.FormatPct(marketAvg)),
		})
	}
	return events
}

func displaySymbol(id string, t *models.Token) string {
	if t.Symbol != "" {
		return t.Symbol
	}
	return strings.ToUpper(id)
}

func displayName(t *models.Token, fallback string) string {
	if t.Name != "" {
		return t.Name
	}
	return fallback
}
