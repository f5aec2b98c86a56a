package dataset

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/spotsim/internal/logx"
	"github.com/rustyeddy/spotsim/market"
)

const header = "open_ts,open,high,low,close,vol,close_ts,quote_asset_vol,num_trades,taker_buy_base_asset_volume,taker_buy_quote_asset_volume,reserved\n"

func day(s string) time.Time {
	t, err := ParseDay(s)
	if err != nil {
		panic(err)
	}
	return t
}

func writeDay(t *testing.T, dir, ticker, d string, closes ...string) {
	t.Helper()
	var sb strings.Builder
	sb.WriteString(header)
	ts := day(d).UnixMilli()
	for i, c := range closes {
		open := ts + int64(i)*60000
		sb.WriteString(strings.Join([]string{
			itoa(open), c, c, c, c, "1.5", itoa(open + 59999), "100", "7", "0.5", "50", "0",
		}, ","))
		sb.WriteString("\n")
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, ticker+"_"+d+".csv"), []byte(sb.String()), 0644))
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}

func closes(bars []market.Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Close
	}
	return out
}

func newLoader(dir string) *Loader {
	return &Loader{Dir: dir, Logger: logx.Discard()}
}

func TestDailyPath(t *testing.T) {
	l := NewLoader("data/klines")
	assert.Equal(t, filepath.Join("data/klines", "ETHUSDT_20240105.csv"), l.DailyPath("ETHUSDT", day("20240105")))
}

func TestLoadDay(t *testing.T) {
	dir := t.TempDir()
	writeDay(t, dir, "ETHUSDT", "20240101", "2281.5", "2282", "2283.25")

	bars, err := newLoader(dir).LoadDay("ETHUSDT", day("20240101"))
	require.NoError(t, err)
	require.Len(t, bars, 3)
	assert.Equal(t, []float64{2281.5, 2282, 2283.25}, closes(bars))
	assert.True(t, bars[1].Time.Equal(time.Date(2024, 1, 1, 0, 1, 0, 0, time.UTC)))
	assert.Equal(t, 1.5, bars[0].Volume)
}

func TestReadBarsColumnOrderAndBlankLines(t *testing.T) {
	in := "close,vol,open,high,low\n\n10,1,9,11,8\n"
	bars, err := ReadBars(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, bars, 1)
	assert.Equal(t, 10.0, bars[0].Close)
	assert.Equal(t, 9.0, bars[0].Open)
	assert.True(t, bars[0].Time.IsZero())

	bars, err = ReadBars(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, bars)
}

func TestReadBarsBadRow(t *testing.T) {
	in := "open,high,low,close,vol\n1,1,1,1,1\n1,1,1,oops,1\n"
	_, err := ReadBars(strings.NewReader(in))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 3")
	assert.Contains(t, err.Error(), `column "close"`)
}

func TestLoadRange(t *testing.T) {
	dir := t.TempDir()
	writeDay(t, dir, "ETHUSDT", "20240101", "1", "2")
	// 20240102 is missing
	writeDay(t, dir, "ETHUSDT", "20240103", "3")
	writeDay(t, dir, "BTCUSDT", "20240101", "99")

	bars, err := newLoader(dir).LoadRangeStrings("ETHUSDT", "20240101", "20240103")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3}, closes(bars))
}

func TestLoadRangeErrors(t *testing.T) {
	l := newLoader(t.TempDir())

	_, err := l.LoadRangeStrings("ETHUSDT", "20240105", "20240101")
	assert.ErrorContains(t, err, "is after")

	_, err = l.LoadRangeStrings("ETHUSDT", "2024-01-01", "20240101")
	assert.ErrorContains(t, err, "YYYYMMDD")

	bars, err := l.LoadRangeStrings("ETHUSDT", "20240101", "20240102")
	require.NoError(t, err)
	assert.Empty(t, bars)
}

func TestLoadMonthAndYear(t *testing.T) {
	dir := t.TempDir()
	writeDay(t, dir, "ETHUSDT", "20240131", "1")
	writeDay(t, dir, "ETHUSDT", "20240201", "2")
	writeDay(t, dir, "ETHUSDT", "20240229", "3")
	writeDay(t, dir, "ETHUSDT", "20250101", "4")

	l := newLoader(dir)
	feb, err := l.LoadMonth("ETHUSDT", 2024, time.February)
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 3}, closes(feb))

	year, err := l.LoadYear("ETHUSDT", 2024)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3}, closes(year))
}
