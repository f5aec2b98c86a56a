package cmd

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/rustyeddy/spotsim/journal"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Query runs stored in the SQLite history",
	Long: `Query runs recorded with the sqlite history type.

Subcommands:
  runs  - List stored runs
  show  - Print one run and its history rows as Org-mode

Examples:
  spotsim history runs
  spotsim history show 01HMX5Q2V6N3TFM6W0C8QJ3Z4K`,
}

var historyRunsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List stored runs",
	Args:  cobra.NoArgs,
	RunE:  runHistoryRuns,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Print a stored run as Org-mode",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historyDBPath string

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyRunsCmd)
	historyCmd.AddCommand(historyShowCmd)

	historyCmd.PersistentFlags().StringVarP(&historyDBPath, "db", "d", "", "path to SQLite history DB (default from config)")
}

func openHistory(cmd *cobra.Command) (*journal.SQLiteJournal, error) {
	path := cfg.History.DBPath
	if cmd.Flags().Changed("db") {
		path = historyDBPath
	}
	return journal.NewSQLite(path, "")
}

func runHistoryRuns(cmd *cobra.Command, args []string) error {
	j, err := openHistory(cmd)
	if err != nil {
		return err
	}
	defer j.Close()

	runs, err := j.ListRuns()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded.")
		return nil
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Run ID", "Ticker", "Period", "Policy", "Episodes", "Final Value")
	for _, r := range runs {
		t.Row(
			r.RunID,
			r.Ticker,
			r.Start+".."+r.End,
			r.Policy,
			fmt.Sprint(r.Episodes),
			r.FinalValue.StringFixed(2),
		)
	}
	fmt.Fprintln(cmd.OutOrStdout(), t.String())
	return nil
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	j, err := openHistory(cmd)
	if err != nil {
		return err
	}
	defer j.Close()

	run, err := j.GetRun(args[0])
	if err != nil {
		return err
	}
	rows, err := j.ListHistory(run.RunID)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), journal.FormatRunOrg(run, rows))
	return nil
}
