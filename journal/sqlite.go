package journal

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteJournal stores history rows of many runs in one database. Rows
// written through Record are tagged with the journal's run ID.
type SQLiteJournal struct {
	db    *sql.DB
	runID string
	seq   int
}

func NewSQLite(path, runID string) (*SQLiteJournal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, err
	}

	j := &SQLiteJournal{db: db, runID: runID}
	if runID != "" {
		// Resume numbering if rows for this run already exist.
		err := db.QueryRow(`SELECT COALESCE(MAX(seq), 0) FROM history WHERE run_id = ?`, runID).Scan(&j.seq)
		if err != nil {
			db.Close()
			return nil, err
		}
	}
	return j, nil
}

func (j *SQLiteJournal) RunID() string { return j.runID }

func (j *SQLiteJournal) Record(r HistoryRecord) error {
	if j.runID == "" {
		return fmt.Errorf("sqlite journal: no run id")
	}
	j.seq++
	_, err := j.db.Exec(`
		INSERT INTO history
		(run_id, seq, episode, step, price, balance, shares_acquired, portfolio_value, gross_earnings)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		j.runID, j.seq, r.Episode, r.Step,
		r.Price, r.Balance, r.Shares, r.Value, r.GrossEarnings,
	)
	return err
}

// RecordRun inserts or replaces the summary row of a run.
func (j *SQLiteJournal) RecordRun(r Run) error {
	_, err := j.db.Exec(`
		INSERT OR REPLACE INTO runs
		(run_id, created, ticker, start_day, end_day, policy, episodes, bars, initial_balance, final_value)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.RunID, r.Created, r.Ticker, r.Start, r.End, r.Policy,
		r.Episodes, r.Bars, r.InitialBalance, r.FinalValue,
	)
	return err
}

func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}
