package indicator

import "github.com/alexherrero/tradecore/internal/core/bar"

// PivotPoint computes classic floor-trader pivot levels from the most
// recently closed bar: a pivot, three resistances and three supports. The
// Signal/Strategy Trader layers consult LastResistances()[2] for take-profit
// targets (spec.md §4.6).
type PivotPoint struct {
	pivot       float64
	resistances [3]float64
	supports    [3]float64
	ready       bool
}

// NewPivotPoint creates a pivot-point indicator.
func NewPivotPoint() *PivotPoint { return &PivotPoint{} }

func (p *PivotPoint) Type() Type   { return TypeSupportResistance }
func (p *PivotPoint) Class() Class { return ClassOverlay }

// Update recomputes pivot levels from the most recently closed bar.
func (p *PivotPoint) Update(closed []bar.Bar, _ bar.Bar) {
	if len(closed) == 0 {
		return
	}
	b := closed[len(closed)-1]

	pivot := (b.High + b.Low + b.Close) / 3
	r1 := 2*pivot - b.Low
	s1 := 2*pivot - b.High
	r2 := pivot + (b.High - b.Low)
	s2 := pivot - (b.High - b.Low)
	r3 := b.High + 2*(pivot-b.Low)
	s3 := b.Low - 2*(b.High-pivot)

	p.pivot = pivot
	p.resistances = [3]float64{r1, r2, r3}
	p.supports = [3]float64{s1, s2, s3}
	p.ready = true
}

// Last returns the pivot level.
func (p *PivotPoint) Last() float64 { return p.pivot }

// LastResistances returns [R1, R2, R3].
func (p *PivotPoint) LastResistances() []float64 { return p.resistances[:] }

// LastSupports returns [S1, S2, S3].
func (p *PivotPoint) LastSupports() []float64 { return p.supports[:] }

// Ready reports whether at least one bar has closed.
func (p *PivotPoint) Ready() bool { return p.ready }
