package indicator

import "github.com/alexherrero/tradecore/internal/core/bar"

// RSI is a Wilder-smoothed Relative Strength Index over Period closed bars.
type RSI struct {
	Period    int
	avgGain   float64
	avgLoss   float64
	prevClose float64
	haveClose bool
	seen      int
	gainSum   float64
	lossSum   float64
	last      float64
	ready     bool
}

// NewRSI creates an RSI indicator over the given period.
func NewRSI(period int) *RSI { return &RSI{Period: period} }

func (r *RSI) Type() Type   { return TypeMomentum }
func (r *RSI) Class() Class { return ClassOscillator }

// Update advances the RSI by exactly the newest closed bar.
func (r *RSI) Update(closed []bar.Bar, _ bar.Bar) {
	if len(closed) == 0 {
		return
	}
	latest := closed[len(closed)-1]

	if !r.haveClose {
		r.prevClose = latest.Close
		r.haveClose = true
		return
	}

	change := latest.Close - r.prevClose
	r.prevClose = latest.Close

	gain, loss := 0.0, 0.0
	if change > 0 {
		gain = change
	} else {
		loss = -change
	}

	if !r.ready {
		r.gainSum += gain
		r.lossSum += loss
		r.seen++
		if r.seen < r.Period {
			return
		}
		r.avgGain = r.gainSum / float64(r.Period)
		r.avgLoss = r.lossSum / float64(r.Period)
		r.ready = true
	} else {
		r.avgGain = (r.avgGain*float64(r.Period-1) + gain) / float64(r.Period)
		r.avgLoss = (r.avgLoss*float64(r.Period-1) + loss) / float64(r.Period)
	}

	if r.avgLoss == 0 {
		r.last = 100
		return
	}
	rs := r.avgGain / r.avgLoss
	r.last = 100 - (100 / (1 + rs))
}

// Last returns the current RSI value in [0, 100].
func (r *RSI) Last() float64 { return r.last }

// Ready reports whether the smoothing window has filled.
func (r *RSI) Ready() bool { return r.ready }
