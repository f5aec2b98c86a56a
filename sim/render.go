package sim

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/rustyeddy/spotsim/journal"
)

// Display prints the current step as a two-column grid without touching the
// history.
func (e *Env) Display() {
	fmt.Fprintln(e.out, SnapshotTable(e.snapshot()))
}

// SnapshotTable formats a history row as a bordered label/value grid.
func SnapshotTable(r journal.HistoryRecord) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderRow(true).
		Rows(
			[]string{"Step", strconv.Itoa(r.Step)},
			[]string{"Price", r.Price.String()},
			[]string{"Balance", r.Balance.String()},
			[]string{"Shares Acquired", r.Shares.String()},
			[]string{"Portfolio Value", r.Value.String()},
			[]string{"Gross Earnings", r.GrossEarnings.String()},
		)
	return t.String()
}
