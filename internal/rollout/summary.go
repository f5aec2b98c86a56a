package rollout

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/shopspring/decimal"
)

// Totals aggregates a run's episode results.
type Totals struct {
	Episodes  int
	Completed int
	Steps     int
	Best      decimal.Decimal
	Worst     decimal.Decimal
	Mean      decimal.Decimal
}

func Summarize(results []EpisodeResult) Totals {
	t := Totals{Episodes: len(results)}
	if len(results) == 0 {
		return t
	}

	sum := decimal.Zero
	t.Best = results[0].GrossEarnings
	t.Worst = results[0].GrossEarnings
	for _, r := range results {
		if r.Completed {
			t.Completed++
		}
		t.Steps += r.Steps
		sum = sum.Add(r.GrossEarnings)
		t.Best = decimal.Max(t.Best, r.GrossEarnings)
		t.Worst = decimal.Min(t.Worst, r.GrossEarnings)
	}
	t.Mean = sum.Div(decimal.NewFromInt(int64(len(results))))
	return t
}

// PrintSummary writes a per-episode table followed by run totals.
func PrintSummary(w io.Writer, results []EpisodeResult) {
	fmt.Fprintln(w, "==================================================")
	fmt.Fprintln(w, " Simulation Result")
	fmt.Fprintln(w, "==================================================")

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Episode", "Steps", "Reward", "Final Value", "Gross Earnings", "Completed")
	for _, r := range results {
		t.Row(
			strconv.Itoa(r.Episode),
			strconv.Itoa(r.Steps),
			r.Reward.StringFixed(2),
			r.FinalValue.StringFixed(2),
			r.GrossEarnings.StringFixed(2),
			strconv.FormatBool(r.Completed),
		)
	}
	fmt.Fprintln(w, t.String())

	tot := Summarize(results)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Totals")
	fmt.Fprintln(w, "--------------------------------------------------")
	fmt.Fprintf(w, "Episodes:      %d (%d completed)\n", tot.Episodes, tot.Completed)
	fmt.Fprintf(w, "Steps:         %d\n", tot.Steps)
	if tot.Episodes > 0 {
		fmt.Fprintf(w, "Mean Earnings: %s\n", tot.Mean.StringFixed(2))
		fmt.Fprintf(w, "Best:          %s\n", tot.Best.StringFixed(2))
		fmt.Fprintf(w, "Worst:         %s\n", tot.Worst.StringFixed(2))
	}
}
