// Package dataset reads cached daily kline CSV files into bar sequences.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rustyeddy/spotsim/market"
)

// DayLayout is the YYYYMMDD layout used in file names and date arguments.
const DayLayout = "20060102"

// ParseDay parses a YYYYMMDD date as UTC midnight.
func ParseDay(s string) (time.Time, error) {
	t, err := time.Parse(DayLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("bad day %q, want YYYYMMDD: %w", s, err)
	}
	return t, nil
}

// FileName is the cache file name for one ticker and day.
func FileName(ticker string, day time.Time) string {
	return fmt.Sprintf("%s_%s.csv", ticker, day.Format(DayLayout))
}

// Loader reads files laid out as Dir/{TICKER}_{YYYYMMDD}.csv.
type Loader struct {
	Dir    string
	Logger *slog.Logger
}

func NewLoader(dir string) *Loader {
	return &Loader{Dir: dir}
}

func (l *Loader) logger() *slog.Logger {
	if l.Logger == nil {
		return slog.Default()
	}
	return l.Logger
}

func (l *Loader) DailyPath(ticker string, day time.Time) string {
	return filepath.Join(l.Dir, FileName(ticker, day))
}

// LoadDay reads one daily file. Columns are matched by header name, so extra
// columns and any column order are accepted.
func (l *Loader) LoadDay(ticker string, day time.Time) ([]market.Bar, error) {
	path := l.DailyPath(ticker, day)
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	bars, err := ReadBars(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return bars, nil
}

// ReadBars decodes a header-first kline CSV stream.
func ReadBars(r io.Reader) ([]market.Bar, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var bars []market.Bar
	line := 1
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, err
		}
		if len(row) == 0 || (len(row) == 1 && strings.TrimSpace(row[0]) == "") {
			continue
		}

		rec := make(map[string]string, len(header))
		for i, h := range header {
			if i < len(row) {
				rec[h] = row[i]
			}
		}
		b, err := market.BarFromRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		bars = append(bars, b)
	}
	return bars, nil
}

// LoadRange concatenates every day from start to end inclusive, in date
// order. Days with no file are skipped with a warning.
func (l *Loader) LoadRange(ticker string, start, end time.Time) ([]market.Bar, error) {
	start = truncateDay(start)
	end = truncateDay(end)
	if start.After(end) {
		return nil, fmt.Errorf("dataset: start %s is after end %s", start.Format(DayLayout), end.Format(DayLayout))
	}

	var bars []market.Bar
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		b, err := l.LoadDay(ticker, day)
		if errors.Is(err, fs.ErrNotExist) {
			l.logger().Warn("missing kline file", "ticker", ticker, "day", day.Format(DayLayout))
			continue
		}
		if err != nil {
			return nil, err
		}
		bars = append(bars, b...)
	}

	l.logger().Info("loaded bars",
		"ticker", ticker,
		"start", start.Format(DayLayout),
		"end", end.Format(DayLayout),
		"bars", len(bars),
	)
	return bars, nil
}

// LoadRangeStrings is LoadRange with YYYYMMDD bounds.
func (l *Loader) LoadRangeStrings(ticker, start, end string) ([]market.Bar, error) {
	s, err := ParseDay(start)
	if err != nil {
		return nil, err
	}
	e, err := ParseDay(end)
	if err != nil {
		return nil, err
	}
	return l.LoadRange(ticker, s, e)
}

func (l *Loader) LoadMonth(ticker string, year int, month time.Month) ([]market.Bar, error) {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return l.LoadRange(ticker, first, first.AddDate(0, 1, -1))
}

func (l *Loader) LoadYear(ticker string, year int) ([]market.Bar, error) {
	return l.LoadRange(ticker,
		time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC),
		time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC),
	)
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
