package market

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DecodeValue converts a raw CSV cell into an int64 when it is an integer,
// a float64 when it is any other number, and the trimmed string otherwise.
func DecodeValue(s string) any {
	s = strings.TrimSpace(s)
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}

// DecodeRow decodes every cell of a header-keyed row.
func DecodeRow(row map[string]string) map[string]any {
	out := make(map[string]any, len(row))
	for k, v := range row {
		out[k] = DecodeValue(v)
	}
	return out
}

// BarFromRecord builds a Bar from a header-keyed kline row. open_ts is
// optional and interpreted as epoch milliseconds.
func BarFromRecord(row map[string]string) (Bar, error) {
	var b Bar
	var err error

	fields := []struct {
		key string
		dst *float64
	}{
		{"open", &b.Open},
		{"high", &b.High},
		{"low", &b.Low},
		{"close", &b.Close},
		{"vol", &b.Volume},
	}
	for _, fd := range fields {
		raw, ok := row[fd.key]
		if !ok {
			return Bar{}, fmt.Errorf("missing column %q", fd.key)
		}
		if *fd.dst, err = toFloat(DecodeValue(raw)); err != nil {
			return Bar{}, fmt.Errorf("column %q: %w", fd.key, err)
		}
	}

	if raw, ok := row["open_ts"]; ok && strings.TrimSpace(raw) != "" {
		ms, ok := DecodeValue(raw).(int64)
		if !ok {
			return Bar{}, fmt.Errorf("column \"open_ts\": bad epoch millis %q", raw)
		}
		b.Time = time.UnixMilli(ms).UTC()
	}
	return b, nil
}

func toFloat(v any) (float64, error) {
	switch x := v.(type) {
	case int64:
		return float64(x), nil
	case float64:
		return x, nil
	default:
		return 0, fmt.Errorf("not a number: %q", x)
	}
}
