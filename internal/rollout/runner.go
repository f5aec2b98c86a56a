// Package rollout plays a policy against a simulation environment for a
// number of episodes and exports the recorded history.
package rollout

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"

	"github.com/rustyeddy/spotsim/internal/trace"
	"github.com/rustyeddy/spotsim/journal"
	"github.com/rustyeddy/spotsim/policy"
	"github.com/rustyeddy/spotsim/sim"
)

// Options controls how the runner plays episodes.
type Options struct {
	Episodes int
	// Episode i is reset with Seed+i.
	Seed int64
	// Render every step. When false the environment renders once at the end
	// of each episode.
	Render bool
	// Abandon an episode after MaxSteps steps. Zero plays to completion.
	MaxSteps int
}

// EpisodeResult summarises one played episode.
type EpisodeResult struct {
	Episode       int
	Steps         int
	Reward        decimal.Decimal
	FinalValue    decimal.Decimal
	GrossEarnings decimal.Decimal
	Completed     bool
}

// Runner drives Env with Policy. Journal is optional; when set it receives the
// whole history once all episodes are played.
type Runner struct {
	Env     *sim.Env
	Policy  policy.Policy
	Journal journal.Journal
	Options Options
	Logger  *slog.Logger
}

// Run plays Options.Episodes episodes. A cancelled ctx stops the current
// episode and returns the results so far with ctx's error.
func (r *Runner) Run(ctx context.Context) ([]EpisodeResult, error) {
	if r.Env == nil {
		return nil, fmt.Errorf("rollout: Env is required")
	}
	if r.Policy == nil {
		return nil, fmt.Errorf("rollout: Policy is required")
	}
	if r.Options.Episodes <= 0 {
		return nil, fmt.Errorf("rollout: Episodes must be positive")
	}
	log := r.Logger
	if log == nil {
		log = slog.Default()
	}

	ctx, span := trace.StartSpan(ctx, "rollout.run",
		attribute.Int("episodes", r.Options.Episodes),
		attribute.Int("bars", r.Env.Len()),
	)

	results := make([]EpisodeResult, 0, r.Options.Episodes)
	for i := 0; i < r.Options.Episodes; i++ {
		res, err := r.episode(ctx, r.Options.Seed+int64(i))
		if err != nil {
			trace.End(span, err)
			return results, err
		}
		results = append(results, res)
		log.Info("episode finished",
			append(trace.Fields(ctx),
				"episode", res.Episode,
				"steps", res.Steps,
				"reward", res.Reward.StringFixed(2),
				"value", res.FinalValue.StringFixed(2),
				"completed", res.Completed,
			)...,
		)
	}

	if r.Journal != nil {
		if err := r.Env.ExportHistory(r.Journal); err != nil {
			err = fmt.Errorf("rollout: export history: %w", err)
			trace.End(span, err)
			return results, err
		}
	}
	trace.End(span, nil)
	return results, nil
}

func (r *Runner) episode(ctx context.Context, seed int64) (EpisodeResult, error) {
	obs, _ := r.Env.Reset(seed)
	if s, ok := r.Policy.(policy.Seeder); ok {
		s.Seed(seed)
	}

	ctx, span := trace.StartSpan(ctx, "rollout.episode",
		attribute.Int("episode", r.Env.Episode()),
		attribute.Int64("seed", seed),
	)

	res := EpisodeResult{Episode: r.Env.Episode(), Reward: decimal.Zero}
	for !r.Env.Done() {
		if err := ctx.Err(); err != nil {
			trace.End(span, err)
			return res, err
		}
		if r.Options.MaxSteps > 0 && res.Steps >= r.Options.MaxSteps {
			break
		}

		step, err := r.Env.Step(r.Policy.Act(obs))
		if err != nil {
			trace.End(span, err)
			return res, err
		}
		obs = step.Observation
		res.Reward = res.Reward.Add(step.Reward)
		res.Steps++

		if r.Options.Render {
			r.Env.Render()
		}
	}
	if !r.Options.Render {
		r.Env.Render()
	}

	p := r.Env.Portfolio()
	res.FinalValue = p.Value
	res.GrossEarnings = p.Value.Sub(r.Env.InitialBalance())
	res.Completed = r.Env.Done()

	span.SetAttributes(
		attribute.Int("steps", res.Steps),
		attribute.Float64("reward", res.Reward.InexactFloat64()),
		attribute.Bool("completed", res.Completed),
	)
	trace.End(span, nil)
	return res, nil
}
