package indicator

import (
	"math"

	"github.com/alexherrero/tradecore/internal/core/bar"
)

// Bollinger is a Bollinger Bands indicator: a Period-bar SMA with upper and
// lower bands StdDevs standard deviations away.
type Bollinger struct {
	Period  int
	StdDevs float64

	middle float64
	upper  float64
	lower  float64
	ready  bool
}

// NewBollinger creates a Bollinger Bands indicator.
func NewBollinger(period int, stdDevs float64) *Bollinger {
	if stdDevs <= 0 {
		stdDevs = 2
	}
	return &Bollinger{Period: period, StdDevs: stdDevs}
}

func (b *Bollinger) Type() Type   { return TypeVolatility }
func (b *Bollinger) Class() Class { return ClassOverlay }

// Update recomputes the bands from the last Period closed bars.
func (b *Bollinger) Update(closed []bar.Bar, _ bar.Bar) {
	if len(closed) < b.Period {
		return
	}
	tail := closed[len(closed)-b.Period:]

	sum := 0.0
	for _, bar := range tail {
		sum += bar.Close
	}
	mean := sum / float64(b.Period)

	variance := 0.0
	for _, bar := range tail {
		d := bar.Close - mean
		variance += d * d
	}
	variance /= float64(b.Period)
	stddev := math.Sqrt(variance)

	b.middle = mean
	b.upper = mean + b.StdDevs*stddev
	b.lower = mean - b.StdDevs*stddev
	b.ready = true
}

// Last returns the middle band (SMA).
func (b *Bollinger) Last() float64 { return b.middle }

// Upper returns the upper band.
func (b *Bollinger) Upper() float64 { return b.upper }

// Lower returns the lower band.
func (b *Bollinger) Lower() float64 { return b.lower }

// Ready reports whether enough bars have closed.
func (b *Bollinger) Ready() bool { return b.ready }
