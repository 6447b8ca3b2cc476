// Package indicator implements the Indicator Set: per-timeframe rolling
// technical indicators, incrementally updated from closed bars, in the
// fixed order spec.md §3 requires (price -> momentum -> trend -> volatility
// -> support/resistance -> volume).
package indicator

import "github.com/alexherrero/tradecore/internal/core/bar"

// Type classifies what an indicator measures. Indicators may combine bits,
// matching the original's TYPE_MOMENTUM_VOLUME-style composite flags.
type Type int

const (
	TypeUnknown Type = 0
	TypePrice   Type = 1 << iota
	TypeMomentum
	TypeVolatility
	TypeSupportResistance
	TypeTrend
	TypeVolume
)

// Class describes the shape of an indicator's output.
type Class int

const (
	ClassUndefined Class = iota
	ClassCumulative
	ClassIndex
	ClassOscillator
	ClassOverlay
)

// Indicator is the common surface every concrete indicator implements.
// Update consumes the tail of a timeframe's closed-bar buffer (plus the
// current in-progress bar where relevant) and advances the indicator's own
// rolling state by exactly one closed bar.
type Indicator interface {
	Type() Type
	Class() Class
	// Update advances the indicator's state given the full closed-bar
	// history (oldest first) and the in-progress bar. Implementations must
	// be safe to call at most once per closed bar, per spec.md §3.
	Update(closed []bar.Bar, current bar.Bar)
	// Last returns the indicator's most recent value.
	Last() float64
}
