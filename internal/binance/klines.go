// Package binance downloads spot klines from the Binance REST API into the
// daily CSV cache read by the dataset package.
package binance

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/rustyeddy/spotsim/internal/dataset"
	"github.com/rustyeddy/spotsim/market"
)

const (
	DefaultBaseURL  = "https://api.binance.com"
	DefaultInterval = "1m"
	DefaultLimit    = 1000

	klinesPath = "/api/v3/klines"

	// Each day is fetched as two half-day windows so a 1m interval stays
	// under the 1000 row limit.
	batchMillis = 43200000
	dayMillis   = 86400000
)

type Client struct {
	BaseURL  string
	Interval string
	Limit    int
	Timeout  time.Duration
	Logger   *slog.Logger

	http *resty.Client
}

// NewClient returns a client for baseURL; an empty baseURL means the public
// Binance endpoint.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		BaseURL:  baseURL,
		Interval: DefaultInterval,
		Limit:    DefaultLimit,
		Timeout:  5 * time.Second,
	}
}

func (c *Client) client() *resty.Client {
	if c.http == nil {
		c.http = resty.New().
			SetBaseURL(strings.TrimRight(c.BaseURL, "/")).
			SetTimeout(c.Timeout)
	}
	return c.http
}

func (c *Client) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.Default()
	}
	return c.Logger
}

// FetchKlines queries one window of klines. Rows come back with every cell as
// a string in exchange column order (see market.KlineHeaders).
func (c *Client) FetchKlines(ctx context.Context, symbol string, start, end time.Time) ([][]string, error) {
	if c.BaseURL == "" {
		return nil, fmt.Errorf("binance: missing base url")
	}
	if symbol == "" {
		return nil, fmt.Errorf("binance: missing symbol")
	}
	interval := c.Interval
	if interval == "" {
		interval = DefaultInterval
	}
	limit := c.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	resp, err := c.client().R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"symbol":    strings.ToUpper(symbol),
			"interval":  interval,
			"limit":     strconv.Itoa(limit),
			"startTime": strconv.FormatInt(start.UnixMilli(), 10),
			"endTime":   strconv.FormatInt(end.UnixMilli(), 10),
		}).
		Get(klinesPath)
	if err != nil {
		return nil, fmt.Errorf("binance klines %s: %w", symbol, err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("binance klines http %d: %s", resp.StatusCode(), strings.TrimSpace(string(resp.Body())))
	}

	return decodeKlines(resp.Body())
}

func decodeKlines(body []byte) ([][]string, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var raw [][]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("binance: decode klines: %w", err)
	}

	rows := make([][]string, 0, len(raw))
	for i, r := range raw {
		if len(r) < 6 {
			return nil, fmt.Errorf("binance: kline %d has %d fields", i, len(r))
		}
		row := make([]string, len(r))
		for j, v := range r {
			switch x := v.(type) {
			case string:
				row[j] = x
			case json.Number:
				row[j] = x.String()
			case nil:
				row[j] = ""
			default:
				row[j] = fmt.Sprint(x)
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// FetchDay returns every kline of the UTC day containing day.
func (c *Client) FetchDay(ctx context.Context, symbol string, day time.Time) ([][]string, error) {
	y, m, d := day.Date()
	startMs := time.Date(y, m, d, 0, 0, 0, 0, time.UTC).UnixMilli()
	endMs := startMs + dayMillis - 1

	var rows [][]string
	for from := startMs; from <= endMs; from += batchMillis {
		batch, err := c.FetchKlines(ctx, symbol, time.UnixMilli(from), time.UnixMilli(from+batchMillis-1))
		if err != nil {
			return nil, err
		}
		rows = append(rows, batch...)
	}
	return rows, nil
}

// DownloadDay writes one day to dir/{SYMBOL}_{YYYYMMDD}.csv and returns the
// number of rows written. A day without data writes no file.
func (c *Client) DownloadDay(ctx context.Context, symbol string, day time.Time, dir string) (int, error) {
	symbol = strings.ToUpper(symbol)
	rows, err := c.FetchDay(ctx, symbol, day)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		c.logger().Warn("no klines", "symbol", symbol, "day", day.Format(dataset.DayLayout))
		return 0, nil
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, err
	}
	path := filepath.Join(dir, dataset.FileName(symbol, day))
	f, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(market.KlineHeaders); err != nil {
		return 0, err
	}
	width := len(market.KlineHeaders)
	for _, r := range rows {
		if len(r) > width {
			r = r[:width]
		}
		if err := w.Write(r); err != nil {
			return 0, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return 0, err
	}

	c.logger().Info("klines saved", "symbol", symbol, "day", day.Format(dataset.DayLayout), "rows", len(rows), "path", path)
	return len(rows), f.Close()
}

// DownloadRange downloads every day from start to end inclusive.
func (c *Client) DownloadRange(ctx context.Context, symbol string, start, end time.Time, dir string) (int, error) {
	if start.After(end) {
		return 0, fmt.Errorf("binance: start %s is after end %s", start.Format(dataset.DayLayout), end.Format(dataset.DayLayout))
	}

	total := 0
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		n, err := c.DownloadDay(ctx, symbol, day, dir)
		if err != nil {
			return total, fmt.Errorf("download %s: %w", day.Format(dataset.DayLayout), err)
		}
		total += n
	}
	return total, nil
}
