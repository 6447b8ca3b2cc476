package indicator

import "github.com/alexherrero/tradecore/internal/core/bar"

// ATR is a Wilder-smoothed Average True Range over Period closed bars. It
// also derives ATR-based stop-loss levels, used by the Strategy Trader to
// supply a stop for entries that lack one and to trail active trades
// (spec.md §4.6).
type ATR struct {
	Period     int
	Multiplier float64 // stop distance in ATR units, default 1.5 if zero

	prevClose float64
	haveClose bool
	seen      int
	sum       float64
	last      float64
	lastPrice float64
	ready     bool
}

// NewATR creates an ATR indicator over the given period with the given
// stop-loss multiplier (use 1.5 if unsure).
func NewATR(period int, multiplier float64) *ATR {
	if multiplier <= 0 {
		multiplier = 1.5
	}
	return &ATR{Period: period, Multiplier: multiplier}
}

func (a *ATR) Type() Type   { return TypeVolatility }
func (a *ATR) Class() Class { return ClassCumulative }

// Update advances the ATR by exactly the newest closed bar.
func (a *ATR) Update(closed []bar.Bar, _ bar.Bar) {
	if len(closed) == 0 {
		return
	}
	latest := closed[len(closed)-1]

	trueRange := latest.High - latest.Low
	if a.haveClose {
		if hc := latest.High - a.prevClose; hc > trueRange {
			trueRange = hc
		}
		if lc := a.prevClose - latest.Low; lc > trueRange {
			trueRange = lc
		}
	}
	a.prevClose = latest.Close
	a.haveClose = true
	a.lastPrice = latest.Close

	if !a.ready {
		a.sum += trueRange
		a.seen++
		if a.seen < a.Period {
			return
		}
		a.last = a.sum / float64(a.Period)
		a.ready = true
		return
	}

	a.last = (a.last*float64(a.Period-1) + trueRange) / float64(a.Period)
}

// Last returns the current ATR value.
func (a *ATR) Last() float64 { return a.last }

// Ready reports whether the smoothing window has filled.
func (a *ATR) Ready() bool { return a.ready }

// StopLoss derives a stop-loss price dir units away from the indicator's
// own last-seen close: below for long (dir > 0), above for short (dir < 0).
func (a *ATR) StopLoss(dir int) float64 {
	distance := a.last * a.Multiplier
	if dir > 0 {
		return a.lastPrice - distance
	}
	return a.lastPrice + distance
}
