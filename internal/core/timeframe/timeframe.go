// Package timeframe defines the timeframe arithmetic shared by the bar
// engine, indicator set, and signal engine: a timeframe is an integer
// number of seconds, and timeframes form a chain where each non-root entry
// is an integer multiple of its parent.
package timeframe

import "fmt"

// Timeframe is a duration in seconds used to key bars, indicators, and signals.
type Timeframe int64

// Common timeframes, named the way the original strategy config keys them.
const (
	TF1Min  Timeframe = 60
	TF5Min  Timeframe = 5 * 60
	TF15Min Timeframe = 15 * 60
	TF1Hour Timeframe = 60 * 60
	TF4Hour Timeframe = 4 * 60 * 60
	TF1Day  Timeframe = 24 * 60 * 60
)

// Chain is a strategy's ordered set of timeframes, leaf (smallest, the base
// timeframe) to root (largest), each an integer multiple of its parent.
type Chain struct {
	ordered []Timeframe // ascending
}

// NewChain builds a Chain from an unordered list of timeframes, validating
// that each one evenly divides the next larger one.
func NewChain(timeframes []Timeframe) (*Chain, error) {
	ordered := append([]Timeframe(nil), timeframes...)
	for i := 0; i < len(ordered); i++ {
		for j := i + 1; j < len(ordered); j++ {
			if ordered[j] < ordered[i] {
				ordered[i], ordered[j] = ordered[j], ordered[i]
			}
		}
	}
	if len(ordered) > 0 && ordered[0] <= 0 {
		return nil, fmt.Errorf("timeframe %d is not positive", ordered[0])
	}
	for i := 1; i < len(ordered); i++ {
		if ordered[i] <= 0 || ordered[i]%ordered[i-1] != 0 {
			return nil, fmt.Errorf("timeframe %d is not an integer multiple of %d", ordered[i], ordered[i-1])
		}
	}
	return &Chain{ordered: ordered}, nil
}

// Base returns the smallest (leaf) timeframe, or 0 if the chain is empty.
func (c *Chain) Base() Timeframe {
	if len(c.ordered) == 0 {
		return 0
	}
	return c.ordered[0]
}

// Root returns the largest timeframe, or 0 if the chain is empty.
func (c *Chain) Root() Timeframe {
	if len(c.ordered) == 0 {
		return 0
	}
	return c.ordered[len(c.ordered)-1]
}

// All returns the chain ordered from leaf to root.
func (c *Chain) All() []Timeframe {
	return append([]Timeframe(nil), c.ordered...)
}

// Parent returns the next timeframe above tf in the chain, or tf itself if
// tf is the root or not present.
func (c *Chain) Parent(tf Timeframe) Timeframe {
	for i, t := range c.ordered {
		if t == tf {
			if i+1 < len(c.ordered) {
				return c.ordered[i+1]
			}
			return tf
		}
	}
	return tf
}

// BoundaryCrossed reports whether the tick at time t (seconds) closes the
// in-progress bar of timeframe tf given the previous tick time prevT.
func BoundaryCrossed(tf Timeframe, prevT, t int64) bool {
	if tf <= 0 {
		return false
	}
	return t/int64(tf) > prevT/int64(tf)
}

// String renders a timeframe the way the original config keys render it.
func (tf Timeframe) String() string {
	switch tf {
	case TF1Min:
		return "1m"
	case TF5Min:
		return "5m"
	case TF15Min:
		return "15m"
	case TF1Hour:
		return "1h"
	case TF4Hour:
		return "4h"
	case TF1Day:
		return "1d"
	default:
		return fmt.Sprintf("%ds", int64(tf))
	}
}
