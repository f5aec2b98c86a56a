package policy

import "github.com/rustyeddy/spotsim/sim"

// Scripted replays a fixed action trace and holds once it runs out. Seed
// rewinds the trace.
type Scripted struct {
	Actions []sim.Action
	next    int
}

func NewScripted(actions ...sim.Action) *Scripted {
	return &Scripted{Actions: actions}
}

func (s *Scripted) Seed(int64) { s.next = 0 }

func (s *Scripted) Act(sim.Observation) sim.Action {
	if s.next >= len(s.Actions) {
		return sim.NewAction(sim.Hold, 0)
	}
	a := s.Actions[s.next]
	s.next++
	return a
}
