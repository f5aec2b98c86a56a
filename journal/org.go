package journal

import (
	"fmt"
	"strings"
	"time"
)

// FormatRunOrg renders a run summary as an Org-mode block with the structured
// facts in a PROPERTIES drawer, followed by a table of its history rows.
func FormatRunOrg(r Run, history []HistoryRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "** Run: %s %s..%s (%s)\n", r.Ticker, r.Start, r.End, shortID(r.RunID))
	b.WriteString(":PROPERTIES:\n")
	fmt.Fprintf(&b, ":RUN_ID: %s\n", r.RunID)
	fmt.Fprintf(&b, ":CREATED: %s\n", r.Created.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, ":TICKER: %s\n", r.Ticker)
	fmt.Fprintf(&b, ":POLICY: %s\n", r.Policy)
	fmt.Fprintf(&b, ":EPISODES: %d\n", r.Episodes)
	fmt.Fprintf(&b, ":BARS: %d\n", r.Bars)
	fmt.Fprintf(&b, ":START_BAL: %s\n", r.InitialBalance.StringFixed(2))
	fmt.Fprintf(&b, ":FINAL_VALUE: %s\n", r.FinalValue.StringFixed(2))
	fmt.Fprintf(&b, ":GROSS: %s\n", r.FinalValue.Sub(r.InitialBalance).StringFixed(2))
	b.WriteString(":END:\n")

	if len(history) == 0 {
		return b.String()
	}

	b.WriteString("\n| episode | " + strings.Join(Columns, " | ") + " |\n")
	b.WriteString("|---------+" + strings.Repeat("-----+", len(Columns)-1) + "-----|\n")
	for _, h := range history {
		fmt.Fprintf(&b, "| %d | %s |\n", h.Episode, strings.Join(h.strings(), " | "))
	}
	return b.String()
}

func shortID(full string) string {
	if len(full) <= 8 {
		return full
	}
	return full[:8]
}
