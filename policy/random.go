package policy

import (
	"math/rand"

	"github.com/rustyeddy/spotsim/sim"
)

// Random picks sell, hold or buy uniformly with a uniform magnitude in [0, 1).
type Random struct {
	rng *rand.Rand
}

func NewRandom(seed int64) *Random {
	return &Random{rng: rand.New(rand.NewSource(seed))}
}

func (r *Random) Seed(seed int64) {
	r.rng = rand.New(rand.NewSource(seed))
}

func (r *Random) Act(sim.Observation) sim.Action {
	d := sim.Direction(r.rng.Intn(3) - 1)
	return sim.NewAction(d, r.rng.Float64())
}
