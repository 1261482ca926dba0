package models

// Category is the closed set of alert kinds the engine can emit. The string
// values double as subscriber preference keys and signal-history type tags,
// so they must stay stable across releases.
type Category string

const (
	CategorySurge        Category = "pump"
	CategoryDump         Category = "dump"
	CategoryBreakout     Category = "early_breakout"
	CategoryAlpha        Category = "alpha"
	CategoryRotationIn   Category = "rotation_in"
	CategoryRotationOut  Category = "rotation_out"
	CategoryDivergence   Category = "sector_divergence"
	CategoryRegimeChange Category = "market_state"
	CategoryDailyDigest  Category = "daily_report"
	CategoryWeeklyDigest Category = "weekly_report"
)

// Categories lists every category in emission order.
func Categories() []Category {
	return []Category{
		CategorySurge, CategoryDump, CategoryBreakout, CategoryAlpha,
		CategoryRotationIn, CategoryRotationOut, CategoryDivergence,
		CategoryRegimeChange, CategoryDailyDigest, CategoryWeeklyDigest,
	}
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	for _, k := range Categories() {
		if c == k {
			return true
		}
	}
	return false
}

// EventMeta carries the numeric facts behind an event. It exists only so the
// fan-out can apply per-subscriber filters; it is never persisted.
type EventMeta struct {
	Symbol    string
	ChangePct float64
	MarketCap float64
	VolumeUSD float64
}

// Event is one rendered alert, alive for the duration of a single pass.
type Event struct {
	Category Category
	Text     string
	Meta     *EventMeta
}

// Signal is the structured payload posted to the signal-history sink for
// each fired event.
type Signal struct {
	Type      string  `json:"type"`
	Token     string  `json:"token,omitempty"`
	Sector    string  `json:"sector,omitempty"`
	Change24h float64 `json:"change_24h,omitempty"`
	Change7d  float64 `json:"change_7d,omitempty"`
	SectorAvg float64 `json:"sector_avg,omitempty"`
	Alpha     float64 `json:"alpha,omitempty"`
	Price     float64 `json:"price,omitempty"`
	MCap      float64 `json:"mcap,omitempty"`
	Reason    string  `json:"reason"`
}
