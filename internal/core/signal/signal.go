// Package signal implements the Signal Engine (spec.md §4): immutable
// entry/exit candidates produced by a per-timeframe sub-strategy, plus
// the major-trend calculation the Strategy Trader filters entries
// against. Grounded on
// original_source/strategy/cryptoalpha/castrategytrader.py's signal
// production loop (the computed entries/exits list, and the
// major_trend block derived from EMA/SMA/RSI).
package signal

import (
	"github.com/alexherrero/tradecore/internal/core/indicator"
	"github.com/alexherrero/tradecore/internal/core/timeframe"
)

// Kind distinguishes an entry candidate from an exit candidate.
type Kind int

const (
	KindEntry Kind = iota
	KindExit
)

// Mode selects which sub-strategy computes signals for a timeframe,
// mirroring the per-timeframe 'mode': 'A'|'B'|'C' configuration entries
// in original_source's castrategytrader.py constructor.
type Mode int

const (
	ModeA Mode = iota
	ModeB
	ModeC
)

// Signal is an immutable candidate entry or exit a sub-strategy emits
// for one closed bar. Once created it is never mutated; the Strategy
// Trader copies fields it wants to adjust (stop-loss, take-profit) onto
// the Trade it opens.
type Signal struct {
	Kind      Kind
	Timeframe timeframe.Timeframe
	Direction int // 1 long, -1 short
	Price     float64
	TakeProfit float64 // 0 means "not set"; filters assign one
	StopLoss   float64 // 0 means "not set"; filters assign one
	Timestamp  int64

	Conditions map[string]interface{} // named indicator readings that triggered this signal, for diagnostics/persistence
}

// SubStrategy computes entry/exit candidates for one timeframe from its
// indicator snapshot and the bars that just closed. Implementations
// (ModeA/B/C) each encode a distinct signal-production rule, grounded on
// the teacher's strategies/ package (ma_crossover.go, rsi_strategy.go,
// bb_strategy.go).
type SubStrategy interface {
	Mode() Mode
	// Compute returns at most one entry and one exit candidate for the
	// timeframe that just closed a bar.
	Compute(tf timeframe.Timeframe, timestamp int64, snap *indicator.Snapshot) (entry, exit *Signal)
}

// MajorTrend derives the dominant trend sign from a reference
// timeframe's EMA/SMA/RSI/price, exactly as
// original_source/castrategytrader.py's major_trend block: 1 if the
// fast EMA leads the slower SMA, -1 if it lags, 0 while indicators
// aren't warmed up yet or agree.
func MajorTrend(snap *indicator.Snapshot) int {
	if snap == nil || !snap.SMA.Ready() || !snap.SMA55.Ready() || !snap.RSI.Ready() {
		return 0
	}
	sma := snap.SMA.Last()
	sma55 := snap.SMA55.Last()
	rsi := snap.RSI.Last()
	lastPrice := snap.Price.Last

	if sma == 0 || sma55 == 0 || lastPrice == 0 || rsi == 0 {
		return 0
	}

	ema := snap.EMA.Last()
	switch {
	case ema < sma:
		return -1
	case ema > sma:
		return 1
	default:
		return 0
	}
}
