package sim

import (
	"math"

	"github.com/rustyeddy/spotsim/market"
)

// ObservationSize is the number of fields in an Observation.
const ObservationSize = 7

// Observation is the bar at the cursor followed by the portfolio position:
// open, high, low, close, volume, balance, shares.
type Observation [ObservationSize]float64

func newObservation(b market.Bar, p Portfolio) Observation {
	return Observation{
		b.Open,
		b.High,
		b.Low,
		b.Close,
		b.Volume,
		p.Balance.InexactFloat64(),
		p.Shares.InexactFloat64(),
	}
}

func (o Observation) Close() float64   { return o[3] }
func (o Observation) Balance() float64 { return o[5] }
func (o Observation) Shares() float64  { return o[6] }

// Info is auxiliary per-call data. The environment currently returns it
// empty.
type Info map[string]any

// Box is an axis-aligned bounded space.
type Box struct {
	Low  []float64
	High []float64
}

// Contains reports whether v has the box's dimension and lies within it.
func (b Box) Contains(v []float64) bool {
	if len(v) != len(b.Low) {
		return false
	}
	for i, x := range v {
		if math.IsNaN(x) || x < b.Low[i] || x > b.High[i] {
			return false
		}
	}
	return true
}

func (b Box) Shape() int { return len(b.Low) }

// ActionSpace bounds raw actions: direction in [-1, 1], magnitude in [0, 1].
func ActionSpace() Box {
	return Box{Low: []float64{-1, 0}, High: []float64{1, 1}}
}

// ObservationSpace bounds observations: every field in [0, +Inf).
func ObservationSpace() Box {
	low := make([]float64, ObservationSize)
	high := make([]float64, ObservationSize)
	for i := range high {
		high[i] = math.Inf(1)
	}
	return Box{Low: low, High: high}
}
