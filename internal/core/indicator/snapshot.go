package indicator

import "github.com/alexherrero/tradecore/internal/core/bar"

// Snapshot holds the full configured indicator set for one (instrument,
// timeframe) pair, and updates them in the fixed order spec.md §3 mandates:
// price -> momentum -> trend -> volatility -> support/resistance -> volume.
//
// "Price" here is realized as SMA/EMA indicators (class overlay); there is
// no separate trend-only indicator in the configured set beyond the
// SMA/EMA pair the Signal Engine reads to derive major trend, so the trend
// slot is a no-op placeholder reserved for future trend-only indicators.
type Snapshot struct {
	Price struct {
		Last float64 // latest close, updated every tick regardless of bar closure
	}

	SMA    *SMA
	SMA55  *SMA
	SMA200 *SMA
	EMA    *EMA
	RSI    *RSI
	ATR    *ATR
	Pivot  *PivotPoint
	BB     *Bollinger
}

// NewSnapshot builds a Snapshot with the standard configured indicator set.
func NewSnapshot() *Snapshot {
	return &Snapshot{
		SMA:    NewSMA(20),
		SMA55:  NewSMA(55),
		SMA200: NewSMA(200),
		EMA:    NewEMA(20),
		RSI:    NewRSI(21),
		ATR:    NewATR(14, 1.5),
		Pivot:  NewPivotPoint(),
		BB:     NewBollinger(20, 2),
	}
}

// OnTick updates the always-live price field; call on every tick regardless
// of bar closure.
func (s *Snapshot) OnTick(price float64) {
	s.Price.Last = price
}

// OnBarClose updates every indicator exactly once, in the mandated order.
func (s *Snapshot) OnBarClose(closed []bar.Bar, current bar.Bar) {
	// price
	s.SMA.Update(closed, current)
	s.SMA55.Update(closed, current)
	s.SMA200.Update(closed, current)
	s.EMA.Update(closed, current)
	// momentum
	s.RSI.Update(closed, current)
	// trend: reserved (see doc comment)
	// volatility
	s.ATR.Update(closed, current)
	s.BB.Update(closed, current)
	// support/resistance
	s.Pivot.Update(closed, current)
	// volume: no dedicated volume indicator in the configured set (the bar
	// itself carries volume; nothing further to aggregate here)
}
