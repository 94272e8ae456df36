package types

import (
	"time"

	"github.com/rs/xid"
)

type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
	CurrencyMAD Currency = "MAD"
)

func (c Currency) String() string {
	return string(c)
}

// RateQuote is a single currency's buy/sell rate pair, as reported by
// one source. Reference-only sources carry Buy == Sell (no bid/ask spread
// exists), which is a valid quote and not an error state
type RateQuote struct {
	Currency  Currency `json:"currency"`
	Buy       float64  `json:"buy_rate"`
	Sell      float64  `json:"sell_rate"`
	ChangeAbs *float64 `json:"change,omitempty"`
	ChangePct *float64 `json:"change_percent,omitempty"`
}

// SourceRateSet is the quote collection of a single source for one
// refresh cycle. It is created fresh on every cycle and never mutated;
// Quotes holds at most one entry per currency, in extraction order
type SourceRateSet struct {
	SourceName  string       `json:"source_name"`
	Quotes      []*RateQuote `json:"quotes"`
	RetrievedAt time.Time    `json:"retrieved_at"`
}

// Quote returns the set's quote for the given currency, if present
func (s *SourceRateSet) Quote(currency Currency) *RateQuote {
	for _, q := range s.Quotes {
		if q.Currency == currency {
			return q
		}
	}

	return nil
}

// Snapshot is the complete result of one successful refresh cycle.
// Snapshots are swapped atomically, never merged incrementally
type Snapshot struct {
	ID          xid.ID           `json:"id"`
	Sets        []*SourceRateSet `json:"sets"`
	RefreshedAt time.Time        `json:"refreshed_at"`
}

// Set returns the snapshot's rate set for the given source name, if present
func (s *Snapshot) Set(sourceName string) *SourceRateSet {
	for _, set := range s.Sets {
		if set.SourceName == sourceName {
			return set
		}
	}

	return nil
}

// SourcePair is one subject's buy/sell pair inside a comparison entry
type SourcePair struct {
	Buy  float64 `json:"buy"`
	Sell float64 `json:"sell"`
}

// ComparisonEntry is the cross-source view of a single currency,
// derived on demand from two subject rate sets and never persisted
type ComparisonEntry struct {
	Currency  Currency              `json:"currency"`
	PerSource map[string]SourcePair `json:"per_source"`
}

// BestBuy returns the subject with the numerically higher buy rate,
// and whether the subjects are tied
func (e *ComparisonEntry) BestBuy() (string, bool) {
	return e.best(func(p SourcePair) float64 {
		return p.Buy
	}, true)
}

// BestSell returns the subject with the numerically lower sell rate,
// and whether the subjects are tied
func (e *ComparisonEntry) BestSell() (string, bool) {
	return e.best(func(p SourcePair) float64 {
		return p.Sell
	}, false)
}

func (e *ComparisonEntry) best(value func(SourcePair) float64, higherWins bool) (string, bool) {
	var (
		bestName string
		bestVal  float64
		tie      bool
		first    = true
	)

	for name, pair := range e.PerSource {
		v := value(pair)

		switch {
		case first:
			bestName, bestVal, first = name, v, false
		case v == bestVal:
			tie = true
		case (higherWins && v > bestVal) || (!higherWins && v < bestVal):
			bestName, bestVal, tie = name, v, false
		}
	}

	return bestName, tie
}
