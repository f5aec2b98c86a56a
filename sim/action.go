package sim

import (
	"fmt"
	"math"
)

// Direction is the trade intent of an action.
type Direction int8

const (
	Sell Direction = -1
	Hold Direction = 0
	Buy  Direction = 1
)

func (d Direction) String() string {
	switch d {
	case Sell:
		return "sell"
	case Hold:
		return "hold"
	case Buy:
		return "buy"
	default:
		return fmt.Sprintf("direction(%d)", int8(d))
	}
}

// DirectionOf maps a continuous direction to the nearest of Sell, Hold and
// Buy. Values at or beyond ±0.5 trade; everything in between holds.
func DirectionOf(x float64) Direction {
	switch {
	case x >= 0.5:
		return Buy
	case x <= -0.5:
		return Sell
	default:
		return Hold
	}
}

// Action is a direction plus the fraction of balance (buy) or held shares
// (sell) to commit.
type Action struct {
	Direction Direction
	Magnitude float64
}

func NewAction(d Direction, magnitude float64) Action {
	return Action{Direction: d, Magnitude: clamp01(magnitude)}
}

// ParseAction converts a raw [direction, magnitude] vector, as produced by a
// policy network, into an Action.
func ParseAction(v []float64) (Action, error) {
	if len(v) != 2 {
		return Action{}, fmt.Errorf("%w: want 2 components, got %d", ErrInvalidAction, len(v))
	}
	if math.IsNaN(v[0]) || math.IsNaN(v[1]) {
		return Action{}, fmt.Errorf("%w: NaN component", ErrInvalidAction)
	}
	return NewAction(DirectionOf(v[0]), v[1]), nil
}

func (a Action) String() string {
	return fmt.Sprintf("%s %.4f", a.Direction, a.Magnitude)
}

func clamp01(x float64) float64 {
	switch {
	case math.IsNaN(x), x < 0:
		return 0
	case x > 1:
		return 1
	default:
		return x
	}
}
