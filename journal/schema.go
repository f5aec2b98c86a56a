package journal

const Schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id TEXT PRIMARY KEY,
	created DATETIME NOT NULL,
	ticker TEXT NOT NULL,
	start_day TEXT NOT NULL,
	end_day TEXT NOT NULL,
	policy TEXT NOT NULL,
	episodes INTEGER NOT NULL,
	bars INTEGER NOT NULL,
	initial_balance TEXT NOT NULL,
	final_value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS history (
	run_id TEXT NOT NULL,
	seq INTEGER NOT NULL,
	episode INTEGER NOT NULL,
	step INTEGER NOT NULL,
	price TEXT NOT NULL,
	balance TEXT NOT NULL,
	shares_acquired TEXT NOT NULL,
	portfolio_value TEXT NOT NULL,
	gross_earnings TEXT NOT NULL,
	PRIMARY KEY (run_id, seq)
);

CREATE INDEX IF NOT EXISTS idx_history_run ON history(run_id, episode);
`
