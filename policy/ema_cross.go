package policy

import (
	"fmt"

	"github.com/rustyeddy/spotsim/sim"
)

// EMA is an exponential moving average over observed closes, seeded with
// the first value.
type EMA struct {
	n     int
	alpha float64

	seen  int
	value float64
}

func NewEMA(period int) *EMA {
	if period <= 0 {
		panic("EMA period must be > 0")
	}
	return &EMA{n: period, alpha: 2.0 / float64(period+1)}
}

func (e *EMA) Ready() bool      { return e.seen >= e.n }
func (e *EMA) Float64() float64 { return e.value }

func (e *EMA) Reset() {
	e.seen = 0
	e.value = 0
}

func (e *EMA) Update(x float64) {
	e.seen++
	if e.seen == 1 {
		e.value = x
		return
	}
	e.value = e.alpha*x + (1.0-e.alpha)*e.value
}

// EMACross buys Fraction of the balance when the fast EMA of the close
// crosses above the slow one and sells Fraction of the holdings on the cross
// below. It only acts on the crossing step, never while the EMAs stay
// crossed.
type EMACross struct {
	Fraction float64

	fast *EMA
	slow *EMA
	// -1 fast below slow, 0 not established, +1 fast above slow
	prevRel int
}

func NewEMACross(fast, slow int, fraction float64) *EMACross {
	if fast <= 0 || slow <= 0 {
		panic("EMACross periods must be > 0")
	}
	if fast >= slow {
		panic("EMACross requires fast < slow")
	}
	return &EMACross{Fraction: fraction, fast: NewEMA(fast), slow: NewEMA(slow)}
}

func (x *EMACross) String() string {
	return fmt.Sprintf("EMA_CROSS(%d,%d)", x.fast.n, x.slow.n)
}

func (x *EMACross) Seed(int64) {
	x.fast.Reset()
	x.slow.Reset()
	x.prevRel = 0
}

func (x *EMACross) Act(obs sim.Observation) sim.Action {
	x.fast.Update(obs.Close())
	x.slow.Update(obs.Close())
	if !x.fast.Ready() || !x.slow.Ready() {
		return sim.NewAction(sim.Hold, 0)
	}

	rel := 0
	switch diff := x.fast.Float64() - x.slow.Float64(); {
	case diff > 0:
		rel = 1
	case diff < 0:
		rel = -1
	}

	prev := x.prevRel
	if rel != 0 {
		x.prevRel = rel
	}
	if prev == 0 || rel == 0 || rel == prev {
		return sim.NewAction(sim.Hold, 0)
	}
	if rel > 0 {
		return sim.NewAction(sim.Buy, x.Fraction)
	}
	return sim.NewAction(sim.Sell, x.Fraction)
}
