package signal

import (
	"github.com/alexherrero/tradecore/internal/core/bar"
	"github.com/alexherrero/tradecore/internal/core/indicator"
	"github.com/alexherrero/tradecore/internal/core/timeframe"
)

// perTimeframe bundles the configured sub-strategy and indicator
// snapshot a Strategy Trader runs for one timeframe in its chain.
type perTimeframe struct {
	sub  SubStrategy
	snap *indicator.Snapshot
}

// Engine runs one sub-strategy per configured timeframe and collects
// the entries/exits each closed bar produces, matching
// original_source/castrategytrader.py's self.timeframes map of
// per-timeframe sub-strategy instances.
type Engine struct {
	timeframes map[timeframe.Timeframe]*perTimeframe
}

// NewEngine builds an Engine with no timeframes configured; call
// Configure for each timeframe in the chain.
func NewEngine() *Engine {
	return &Engine{timeframes: make(map[timeframe.Timeframe]*perTimeframe)}
}

// Configure assigns a sub-strategy mode to tf and gives it a fresh
// indicator snapshot.
func (e *Engine) Configure(tf timeframe.Timeframe, mode Mode) {
	e.timeframes[tf] = &perTimeframe{
		sub:  NewSubStrategy(mode),
		snap: indicator.NewSnapshot(),
	}
}

// Snapshot returns the indicator snapshot for tf, or nil if tf isn't
// configured.
func (e *Engine) Snapshot(tf timeframe.Timeframe) *indicator.Snapshot {
	pt, ok := e.timeframes[tf]
	if !ok {
		return nil
	}
	return pt.snap
}

// OnTick forwards the live price to every configured timeframe's
// snapshot (the always-live Price.Last field).
func (e *Engine) OnTick(price float64) {
	for _, pt := range e.timeframes {
		pt.snap.OnTick(price)
	}
}

// OnBarClose updates tf's indicators from the bars the bar.Engine just
// closed, and asks its sub-strategy to compute candidates.
func (e *Engine) OnBarClose(tf timeframe.Timeframe, timestamp int64, closed []bar.Bar, current bar.Bar) (entry, exit *Signal) {
	pt, ok := e.timeframes[tf]
	if !ok {
		return nil, nil
	}
	pt.snap.OnBarClose(closed, current)
	return pt.sub.Compute(tf, timestamp, pt.snap)
}
