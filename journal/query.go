package journal

import (
	"database/sql"
	"errors"
	"fmt"
)

const runColumns = `run_id, created, ticker, start_day, end_day, policy, episodes, bars, initial_balance, final_value`

func scanRun(s interface{ Scan(...any) error }) (Run, error) {
	var r Run
	err := s.Scan(
		&r.RunID,
		&r.Created,
		&r.Ticker,
		&r.Start,
		&r.End,
		&r.Policy,
		&r.Episodes,
		&r.Bars,
		&r.InitialBalance,
		&r.FinalValue,
	)
	return r, err
}

// GetRun returns a single run summary by ID.
func (j *SQLiteJournal) GetRun(runID string) (Run, error) {
	row := j.db.QueryRow(`SELECT `+runColumns+` FROM runs WHERE run_id = ?`, runID)
	r, err := scanRun(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, fmt.Errorf("run %q not found", runID)
		}
		return Run{}, err
	}
	return r, nil
}

// ListRuns returns every run, oldest first. Run IDs are ULIDs so ordering by
// ID is ordering by creation time.
func (j *SQLiteJournal) ListRuns() ([]Run, error) {
	rows, err := j.db.Query(`SELECT ` + runColumns + ` FROM runs ORDER BY run_id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListHistory returns the history rows of a run in the order they were
// recorded.
func (j *SQLiteJournal) ListHistory(runID string) ([]HistoryRecord, error) {
	rows, err := j.db.Query(`
		SELECT episode, step, price, balance, shares_acquired, portfolio_value, gross_earnings
		FROM history
		WHERE run_id = ?
		ORDER BY seq ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []HistoryRecord
	for rows.Next() {
		var r HistoryRecord
		if err := rows.Scan(
			&r.Episode,
			&r.Step,
			&r.Price,
			&r.Balance,
			&r.Shares,
			&r.Value,
			&r.GrossEarnings,
		); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
