package journal

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormatRunOrg(t *testing.T) {
	t.Parallel()

	run := Run{
		RunID:          "01HX3Y4Z5A6B7C8D9E0F1G2H3J",
		Created:        time.Date(2024, 3, 15, 10, 30, 45, 0, time.UTC),
		Ticker:         "ETHUSDT",
		Start:          "20240101",
		End:            "20240102",
		Policy:         "random",
		Episodes:       2,
		Bars:           2880,
		InitialBalance: decimal.NewFromInt(100000),
		FinalValue:     decimal.RequireFromString("99500.25"),
	}

	out := FormatRunOrg(run, nil)
	assert.Contains(t, out, "** Run: ETHUSDT 20240101..20240102 (01HX3Y4Z)")
	assert.Contains(t, out, ":RUN_ID: 01HX3Y4Z5A6B7C8D9E0F1G2H3J")
	assert.Contains(t, out, ":CREATED: 2024-03-15T10:30:45Z")
	assert.Contains(t, out, ":START_BAL: 100000.00")
	assert.Contains(t, out, ":GROSS: -499.75")
	assert.NotContains(t, out, "| episode |")

	withRows := FormatRunOrg(run, []HistoryRecord{sampleRecord()})
	assert.Contains(t, withRows, "| episode | step | price |")
	assert.Contains(t, withRows, "| 1 | 3 | 110 | 105000 | 0 | 105000 | 5000 |")
}
