package indicator

import "github.com/alexherrero/tradecore/internal/core/bar"

// EMA is an exponential moving average over Period closed bars, seeded
// with a simple average of the first Period closes and then updated
// incrementally, one closed bar at a time.
type EMA struct {
	Period int
	last   float64
	ready  bool
	seen   int
	seed   float64
}

// NewEMA creates an EMA indicator over the given period.
func NewEMA(period int) *EMA { return &EMA{Period: period} }

func (e *EMA) Type() Type   { return TypePrice }
func (e *EMA) Class() Class { return ClassOverlay }

// Update advances the EMA by exactly the newest closed bar.
func (e *EMA) Update(closed []bar.Bar, _ bar.Bar) {
	if len(closed) == 0 {
		return
	}
	latest := closed[len(closed)-1]

	if !e.ready {
		e.seed += latest.Close
		e.seen++
		if e.seen < e.Period {
			return
		}
		e.last = e.seed / float64(e.Period)
		e.ready = true
		return
	}

	multiplier := 2.0 / (float64(e.Period) + 1.0)
	e.last = (latest.Close-e.last)*multiplier + e.last
}

// Last returns the current EMA value.
func (e *EMA) Last() float64 { return e.last }

// Ready reports whether the seed window has filled.
func (e *EMA) Ready() bool { return e.ready }
