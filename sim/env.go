package sim

import (
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/spotsim/journal"
	"github.com/rustyeddy/spotsim/market"
)

// Env is a single-asset spot trading environment over a fixed bar series.
//
// It follows the reset/step/render contract of reinforcement learning
// environments: Reset returns the first observation, Step applies an action
// at the close of the current bar and advances one bar, Render records and
// prints a snapshot. An Env is not safe for concurrent use; the bar slice is
// only read and may be shared between environments.
type Env struct {
	bars    []market.Bar
	initial decimal.Decimal

	portfolio Portfolio
	cursor    int
	done      bool
	episode   int
	rng       *rand.Rand

	history []journal.HistoryRecord

	out    io.Writer
	logger *slog.Logger
}

type Option func(*Env)

// WithInitialBalance overrides DefaultBalance as the starting cash.
func WithInitialBalance(balance decimal.Decimal) Option {
	return func(e *Env) { e.initial = balance }
}

// WithOutput sets where Display writes. Defaults to os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(e *Env) { e.out = w }
}

func WithLogger(l *slog.Logger) Option {
	return func(e *Env) { e.logger = l }
}

// StepResult is what Step returns besides an error.
type StepResult struct {
	Observation Observation
	Reward      decimal.Decimal
	Completed   bool
	Truncated   bool
	Info        Info
}

// New validates bars and returns an environment ready to step from the first
// bar. At least two bars are needed for one step.
func New(bars []market.Bar, opts ...Option) (*Env, error) {
	switch len(bars) {
	case 0:
		return nil, ErrEmptySeries
	case 1:
		return nil, ErrInsufficientBars
	}
	for i, b := range bars {
		if !b.Valid() {
			return nil, fmt.Errorf("%w at index %d: close=%v vol=%v", ErrInvalidBar, i, b.Close, b.Volume)
		}
	}

	e := &Env{
		bars:    bars,
		initial: decimal.NewFromInt(DefaultBalance),
		out:     os.Stdout,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	if e.initial.IsNegative() {
		return nil, fmt.Errorf("sim: negative initial balance %s", e.initial)
	}

	e.restart(0)
	return e, nil
}

func (e *Env) restart(seed int64) {
	e.rng = rand.New(rand.NewSource(seed))
	e.portfolio = NewPortfolio(e.initial)
	e.cursor = 0
	e.done = false
}

// Reset starts a new episode: portfolio and cursor return to their initial
// values and the environment's random source is reseeded. History is kept.
func (e *Env) Reset(seed int64) (Observation, Info) {
	e.restart(seed)
	e.episode++
	return e.observe(), Info{}
}

// Step trades at the close of the current bar, advances the cursor and
// returns the reward, the change in portfolio value. The episode completes
// when the cursor reaches the last bar; stepping again before Reset fails with
// ErrAlreadyTerminated.
func (e *Env) Step(a Action) (StepResult, error) {
	if e.done {
		return StepResult{}, ErrAlreadyTerminated
	}

	price := decimal.NewFromFloat(e.bars[e.cursor].Close)

	next, traded := e.portfolio.Trade(a, price)
	newValue := next.MarkToMarket(price)
	e.cursor++

	reward := newValue.Sub(e.portfolio.Value)
	next.Value = newValue
	e.portfolio = next
	e.done = e.cursor >= len(e.bars)-1

	e.logger.Debug("step",
		"episode", e.episode,
		"step", e.cursor,
		"action", a.Direction.String(),
		"magnitude", a.Magnitude,
		"shares", traded.String(),
		"reward", reward.String(),
	)

	return StepResult{
		Observation: e.observe(),
		Reward:      reward,
		Completed:   e.done,
		Truncated:   false,
		Info:        Info{},
	}, nil
}

// StepVector parses a raw [direction, magnitude] vector and steps with it.
func (e *Env) StepVector(v []float64) (StepResult, error) {
	a, err := ParseAction(v)
	if err != nil {
		return StepResult{}, err
	}
	return e.Step(a)
}

func (e *Env) observe() Observation {
	return newObservation(e.bars[e.cursor], e.portfolio)
}

// Record appends a snapshot of the current step to the run history.
func (e *Env) Record() journal.HistoryRecord {
	rec := e.snapshot()
	e.history = append(e.history, rec)
	return rec
}

// Render records the current step and prints it. Calling it more than once
// per step duplicates history rows.
func (e *Env) Render() {
	e.Record()
	e.Display()
}

func (e *Env) snapshot() journal.HistoryRecord {
	return journal.HistoryRecord{
		Episode:       e.episode,
		Step:          e.cursor + 1,
		Price:         decimal.NewFromFloat(e.bars[e.cursor].Close),
		Balance:       e.portfolio.Balance,
		Shares:        e.portfolio.Shares,
		Value:         e.portfolio.Value,
		GrossEarnings: e.portfolio.Value.Sub(e.initial),
	}
}

// History returns a copy of the recorded rows.
func (e *Env) History() []journal.HistoryRecord {
	out := make([]journal.HistoryRecord, len(e.history))
	copy(out, e.history)
	return out
}

// ExportHistory writes every recorded row to j. It does not close j.
func (e *Env) ExportHistory(j journal.Journal) error {
	for _, rec := range e.history {
		if err := j.Record(rec); err != nil {
			return err
		}
	}
	return nil
}

// SaveHistory writes the recorded rows to a CSV file at path.
func (e *Env) SaveHistory(path string) error {
	j, err := journal.NewCSV(path)
	if err != nil {
		return fmt.Errorf("save history: %w", err)
	}
	if err := e.ExportHistory(j); err != nil {
		j.Close()
		return fmt.Errorf("save history: %w", err)
	}
	return j.Close()
}

func (e *Env) Len() int { return len(e.bars) }
func (e *Env) Cursor() int { return e.cursor }
func (e *Env) Done() bool { return e.done }
func (e *Env) Episode() int { return e.episode }
func (e *Env) Portfolio() Portfolio { return e.portfolio }
func (e *Env) InitialBalance() decimal.Decimal { return e.initial }

// Rand is the environment's random source, reseeded by Reset.
func (e *Env) Rand() *rand.Rand { return e.rng }
