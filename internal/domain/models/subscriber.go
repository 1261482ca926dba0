package models

// QuietHours is a UTC time-of-day suppression window. Start > End means the
// window wraps past midnight.
type QuietHours struct {
	Enabled bool   `json:"enabled"`
	Start   string `json:"start"`
	End     string `json:"end"`
}

// Filters are per-subscriber content predicates applied to event metadata.
type Filters struct {
	MinChangePct float64  `json:"min_change_pct"`
	MinVolumeUSD float64  `json:"min_volume_usd"`
	Coins        []string `json:"coins"`
	Blacklist    []string `json:"blacklist_coins"`
}

// Subscriber is the read-side view of one registered recipient. The engine
// never mutates subscribers; preference changes arrive through the registry.
type Subscriber struct {
	ID            string            `json:"user_id"`
	Username      string            `json:"username"`
	AlertsEnabled bool              `json:"alerts_enabled"`
	AlertTypes    map[Category]bool `json:"alert_types"`
	Filters       Filters           `json:"filters"`
	QuietHours    QuietHours        `json:"quiet_hours"`
}

// WantsCategory reports whether the subscriber has c enabled. Categories the
// subscriber never touched default to enabled, except the ones the product
// ships opt-in (rotation-out and sector divergence).
func (s *Subscriber) WantsCategory(c Category) bool {
	if v, ok := s.AlertTypes[c]; ok {
		return v
	}
	switch c {
	case CategoryRotationOut, CategoryDivergence:
		return false
	default:
		return true
	}
}
