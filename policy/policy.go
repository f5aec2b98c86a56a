package policy

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rustyeddy/spotsim/sim"
)

// Policy chooses the next action from the latest observation.
type Policy interface {
	Act(obs sim.Observation) sim.Action
}

// Seeder is implemented by policies with internal state or randomness. The
// driver calls Seed on every reset so that equal seeds replay equal episodes.
type Seeder interface {
	Seed(seed int64)
}

type factory func(seed int64) Policy

var registry = map[string]factory{
	"hold":         func(int64) Policy { return Hold{} },
	"noop":         func(int64) Policy { return Hold{} },
	"random":       func(seed int64) Policy { return NewRandom(seed) },
	"buy-and-hold": func(int64) Policy { return &BuyAndHold{Fraction: 1} },
	"ema-cross":    func(int64) Policy { return NewEMACross(12, 26, 1) },
}

// ByName builds a registered policy.
func ByName(name string, seed int64) (Policy, error) {
	f, ok := registry[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("unknown policy %q (supported: %s)", name, strings.Join(Names(), ", "))
	}
	return f(seed), nil
}

// Names lists registered policy names.
func Names() []string {
	out := make([]string, 0, len(registry))
	for n := range registry {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Hold never trades.
type Hold struct{}

func (Hold) Act(sim.Observation) sim.Action {
	return sim.NewAction(sim.Hold, 0)
}

// BuyAndHold commits Fraction of the balance on the first step of an episode
// and holds afterwards.
type BuyAndHold struct {
	Fraction float64
	bought   bool
}

func (b *BuyAndHold) Seed(int64) { b.bought = false }

func (b *BuyAndHold) Act(sim.Observation) sim.Action {
	if b.bought {
		return sim.NewAction(sim.Hold, 0)
	}
	b.bought = true
	return sim.NewAction(sim.Buy, b.Fraction)
}
