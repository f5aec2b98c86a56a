package rollout

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/spotsim/internal/logx"
	"github.com/rustyeddy/spotsim/journal"
	"github.com/rustyeddy/spotsim/market"
	"github.com/rustyeddy/spotsim/policy"
	"github.com/rustyeddy/spotsim/sim"
)

type memJournal struct {
	rows   []journal.HistoryRecord
	failAt int
}

func (m *memJournal) Record(r journal.HistoryRecord) error {
	if m.failAt > 0 && len(m.rows)+1 == m.failAt {
		return errors.New("disk full")
	}
	m.rows = append(m.rows, r)
	return nil
}

func (m *memJournal) Close() error { return nil }

func newEnv(t *testing.T, closes ...float64) (*sim.Env, *bytes.Buffer) {
	t.Helper()
	bars := make([]market.Bar, len(closes))
	for i, c := range closes {
		bars[i] = market.Bar{Open: c, High: c, Low: c, Close: c, Volume: 1}
	}
	var out bytes.Buffer
	env, err := sim.New(bars, sim.WithOutput(&out), sim.WithLogger(logx.Discard()))
	require.NoError(t, err)
	return env, &out
}

func buyAll() *policy.Scripted {
	return policy.NewScripted(sim.NewAction(sim.Buy, 1))
}

func TestRunRequiresParts(t *testing.T) {
	env, _ := newEnv(t, 100, 110)

	_, err := (&Runner{Policy: policy.Hold{}, Options: Options{Episodes: 1}}).Run(context.Background())
	assert.ErrorContains(t, err, "Env is required")

	_, err = (&Runner{Env: env, Options: Options{Episodes: 1}}).Run(context.Background())
	assert.ErrorContains(t, err, "Policy is required")

	_, err = (&Runner{Env: env, Policy: policy.Hold{}}).Run(context.Background())
	assert.ErrorContains(t, err, "Episodes must be positive")
}

func TestRunRendersAtEpisodeEnd(t *testing.T) {
	env, out := newEnv(t, 100, 110, 105)
	j := &memJournal{}

	r := &Runner{
		Env:     env,
		Policy:  buyAll(),
		Journal: j,
		Options: Options{Episodes: 2},
		Logger:  logx.Discard(),
	}
	results, err := r.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 2)

	for i, res := range results {
		assert.Equal(t, i+1, res.Episode)
		assert.Equal(t, 2, res.Steps)
		assert.True(t, res.Completed)
		assert.True(t, res.Reward.Equal(decimal.NewFromInt(10000)), res.Reward.String())
		assert.True(t, res.FinalValue.Equal(decimal.NewFromInt(110000)))
		assert.True(t, res.GrossEarnings.Equal(decimal.NewFromInt(10000)))
	}

	// one rendered row per episode, at the final cursor
	require.Len(t, j.rows, 2)
	assert.Equal(t, 1, j.rows[0].Episode)
	assert.Equal(t, 2, j.rows[1].Episode)
	assert.Equal(t, 3, j.rows[0].Step)
	assert.Equal(t, "105", j.rows[0].Price.String())
	assert.Equal(t, 2, strings.Count(out.String(), "Portfolio Value"))
}

func TestRunRenderEveryStep(t *testing.T) {
	env, out := newEnv(t, 100, 110, 105)
	j := &memJournal{}

	r := &Runner{Env: env, Policy: policy.Hold{}, Journal: j, Options: Options{Episodes: 1, Render: true}}
	_, err := r.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, j.rows, 2)
	assert.Equal(t, []int{2, 3}, []int{j.rows[0].Step, j.rows[1].Step})
	assert.Equal(t, 2, strings.Count(out.String(), "Portfolio Value"))
}

func TestRunMaxStepsAbandonsEpisode(t *testing.T) {
	env, _ := newEnv(t, 100, 101, 102, 103, 104)

	r := &Runner{Env: env, Policy: policy.Hold{}, Options: Options{Episodes: 3, MaxSteps: 2}, Logger: logx.Discard()}
	results, err := r.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 3)
	for _, res := range results {
		assert.Equal(t, 2, res.Steps)
		assert.False(t, res.Completed)
		assert.True(t, res.Reward.IsZero())
	}
}

func TestRunSeedsPolicyPerEpisode(t *testing.T) {
	closes := []float64{100, 90, 120, 80, 130, 95, 105, 110}

	play := func() []EpisodeResult {
		env, _ := newEnv(t, closes...)
		r := &Runner{Env: env, Policy: policy.NewRandom(0), Options: Options{Episodes: 3, Seed: 7}, Logger: logx.Discard()}
		res, err := r.Run(context.Background())
		require.NoError(t, err)
		return res
	}

	a, b := play(), play()
	require.Len(t, a, 3)
	for i := range a {
		assert.True(t, a[i].FinalValue.Equal(b[i].FinalValue), "episode %d", i+1)
	}
}

func TestRunCancelled(t *testing.T) {
	env, _ := newEnv(t, 100, 110, 105)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := &Runner{Env: env, Policy: policy.Hold{}, Options: Options{Episodes: 1}, Logger: logx.Discard()}
	results, err := r.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, results)
}

func TestRunJournalError(t *testing.T) {
	env, _ := newEnv(t, 100, 110)
	r := &Runner{
		Env:     env,
		Policy:  policy.Hold{},
		Journal: &memJournal{failAt: 1},
		Options: Options{Episodes: 1},
		Logger:  logx.Discard(),
	}
	results, err := r.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Len(t, results, 1)
}

func TestPrintSummary(t *testing.T) {
	results := []EpisodeResult{
		{Episode: 1, Steps: 10, Reward: decimal.NewFromInt(50), FinalValue: decimal.NewFromInt(100050), GrossEarnings: decimal.NewFromInt(50), Completed: true},
		{Episode: 2, Steps: 4, Reward: decimal.NewFromInt(-30), FinalValue: decimal.NewFromInt(99970), GrossEarnings: decimal.NewFromInt(-30)},
	}

	tot := Summarize(results)
	assert.Equal(t, 2, tot.Episodes)
	assert.Equal(t, 1, tot.Completed)
	assert.Equal(t, 14, tot.Steps)
	assert.Equal(t, "10", tot.Mean.String())
	assert.Equal(t, "50", tot.Best.String())
	assert.Equal(t, "-30", tot.Worst.String())

	var buf bytes.Buffer
	PrintSummary(&buf, results)
	s := buf.String()
	assert.Contains(t, s, "Simulation Result")
	assert.Contains(t, s, "100050.00")
	assert.Contains(t, s, "Episodes:      2 (1 completed)")
	assert.Contains(t, s, "Mean Earnings: 10.00")

	buf.Reset()
	PrintSummary(&buf, nil)
	assert.NotContains(t, buf.String(), "Mean Earnings")
}
