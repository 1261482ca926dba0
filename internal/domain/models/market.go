package models

// Token is a tradable asset from the sector map snapshot. Change fields are
// pointers because the upstream API omits them for thinly traded assets; a
// nil change excludes the token from rules that need that window.
type Token struct {
	Symbol    string   `json:"symbol"`
	Name      string   `json:"name"`
	Price     float64  `json:"price"`
	MarketCap float64  `json:"market_cap"`
	VolumeUSD float64  `json:"volume_usd"`
	Change24h *float64 `json:"change_24h"`
	Change7d  *float64 `json:"change_7d"`
	Change30d *float64 `json:"change_30d"`
}

// BestPerformer references the strongest token inside a sector.
type BestPerformer struct {
	Symbol string  `json:"symbol"`
	Value  float64 `json:"value"`
}

// Sector aggregates a thematic group of tokens.
type Sector struct {
	Avg24h float64        `json:"avg24h"`
	Avg7d  float64        `json:"avg7d"`
	Avg30d float64        `json:"avg30d"`
	Best   *BestPerformer `json:"best"`
}

// Snapshot is one complete market observation, fetched fresh every pass and
// discarded afterwards.
type Snapshot struct {
	Tokens       map[string]*Token  `json:"data"`
	Sectors      map[string]*Sector `json:"sectors"`
	SectorTokens map[string][]string `json:"sectorTokens"`
}

// SectorOf returns the sector a token belongs to, or "" if unassigned.
func (s *Snapshot) SectorOf(tokenID string) string {
	for sector, ids := range s.SectorTokens {
		for _, id := range ids {
			if id == tokenID {
				return sector
			}
		}
	}
	return ""
}

// MarketAvg24h is the arithmetic mean of all tokens' non-nil 24h changes.
func (s *Snapshot) MarketAvg24h() float64 {
	var sum float64
	var n int
	for _, t := range s.Tokens {
		if t.Change24h != nil {
			sum += *t.Change24h
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// Regime state labels supplied by the market-state endpoint.
const (
	RegimeBull    = "bull"
	RegimeBear    = "bear"
	RegimeNeutral = "neutral"
)

// MarketState is the coarse regime observation around a reference asset.
type MarketState struct {
	State    string  `json:"state"`
	BTC24h   float64 `json:"btc24h"`
	BTCPrice float64 `json:"btcPrice"`
}

// MomentumToken is one entry of the ranked momentum leaderboard.
type MomentumToken struct {
	Symbol string `json:"symbol"`
	Tier   string `json:"tier"`
}

// Momentum is the ranked leaderboard, most significant first.
type Momentum struct {
	Tokens []MomentumToken `json:"tokens"`
}
