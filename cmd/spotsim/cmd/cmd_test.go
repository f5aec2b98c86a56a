package cmd

import (
	"bytes"
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(append(args, "--log-level", "error"))
	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}

func writeKlines(t *testing.T, dir, name string, rows ...string) {
	t.Helper()
	body := "open_ts,open,high,low,close,vol,close_ts,quote_asset_vol,num_trades,taker_buy_base_asset_volume,taker_buy_quote_asset_volume,reserved\n"
	for _, r := range rows {
		body += r + "\n"
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0644))
}

func klineFixture(t *testing.T) string {
	dir := t.TempDir()
	writeKlines(t, dir, "ETHUSDT_20240101.csv",
		"1704067200000,100,100,100,100,5,1704067259999,500,3,1,100,0",
		"1704067260000,110,110,110,110,5,1704067319999,550,3,1,110,0",
	)
	writeKlines(t, dir, "ETHUSDT_20240102.csv",
		"1704153600000,105,105,105,105,5,1704153659999,525,3,1,105,0",
	)
	return dir
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "spotsim version "+version)
}

func TestConfigInitAndValidate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spotsim.yaml")

	out, err := execute(t, "config", "init", "-o", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Created default configuration")

	out, err = execute(t, "config", "validate", "-f", path)
	require.NoError(t, err)
	assert.Contains(t, out, "ETHUSDT 20240101..20240531")
}

func TestRunWritesCSVHistory(t *testing.T) {
	dir := klineFixture(t)
	out := filepath.Join(t.TempDir(), "result.csv")

	stdout, err := execute(t, "run",
		"--dir", dir, "--ticker", "ETHUSDT", "--start", "20240101", "--end", "20240102",
		"--policy", "buy-and-hold", "--episodes", "2", "--seed", "0", "--max-steps", "0",
		"--history", "csv", "-o", out,
	)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Simulation Result")
	assert.Contains(t, stdout, "110000.00")

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"step", "price", "balance", "shares_acquired", "portfolio_value", "gross_earnings"}, rows[0])
	assert.Equal(t, []string{"3", "105", "0", "1000", "110000", "10000"}, rows[1])
}

func TestRunSQLiteThenHistory(t *testing.T) {
	dir := klineFixture(t)
	db := filepath.Join(t.TempDir(), "spotsim.sqlite")

	stdout, err := execute(t, "run",
		"--dir", dir, "--ticker", "ETHUSDT", "--start", "20240101", "--end", "20240102",
		"--policy", "hold", "--episodes", "1", "--seed", "0", "--max-steps", "0",
		"--history", "sqlite", "-o", db,
	)
	require.NoError(t, err)

	m := regexp.MustCompile(`Run (\w{26}) history saved`).FindStringSubmatch(stdout)
	require.Len(t, m, 2, stdout)
	runID := m[1]

	out, err := execute(t, "history", "runs", "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, runID)
	assert.Contains(t, out, "20240101..20240102")

	out, err = execute(t, "history", "show", runID, "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, ":RUN_ID: "+runID)
	assert.Contains(t, out, ":POLICY: hold")
	assert.Contains(t, out, "| 1 | 3 | 105 |")

	_, err = execute(t, "history", "show", "01HMX5Q2V6N3TFM6W0C8QJ3Z4K", "--db", db)
	assert.ErrorContains(t, err, "not found")
}

func TestRunRejectsUnknownPolicy(t *testing.T) {
	dir := klineFixture(t)
	_, err := execute(t, "run",
		"--dir", dir, "--ticker", "ETHUSDT", "--start", "20240101", "--end", "20240102",
		"--policy", "ppo", "--episodes", "1", "--history", "csv", "-o", filepath.Join(t.TempDir(), "x.csv"),
	)
	assert.ErrorContains(t, err, `unknown policy "ppo"`)
}

func TestRunNeedsTwoBars(t *testing.T) {
	_, err := execute(t, "run",
		"--dir", t.TempDir(), "--ticker", "ETHUSDT", "--start", "20240101", "--end", "20240102",
		"--policy", "hold", "--episodes", "1", "--history", "csv", "-o", filepath.Join(t.TempDir(), "x.csv"),
	)
	assert.ErrorContains(t, err, "create environment from 0 bars")
}
