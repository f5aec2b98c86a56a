package journal

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// HistoryRecord is one rendered step of a simulation run.
type HistoryRecord struct {
	Episode       int
	Step          int
	Price         decimal.Decimal
	Balance       decimal.Decimal
	Shares        decimal.Decimal
	Value         decimal.Decimal
	GrossEarnings decimal.Decimal
}

// Run describes one invocation of the driver: a ticker, a date range and a
// number of episodes played against it.
type Run struct {
	RunID          string
	Created        time.Time
	Ticker         string
	Start          string
	End            string
	Policy         string
	Episodes       int
	Bars           int
	InitialBalance decimal.Decimal
	FinalValue     decimal.Decimal
}

// Columns is the fixed column order of an exported history table.
var Columns = []string{
	"step",
	"price",
	"balance",
	"shares_acquired",
	"portfolio_value",
	"gross_earnings",
}

type Journal interface {
	Record(HistoryRecord) error
	Close() error
}

// Open returns a journal of the given kind ("csv", "sqlite" or "parquet")
// writing to path. runID tags rows in stores that hold more than one run.
func Open(kind, path, runID string) (Journal, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "csv", "":
		return NewCSV(path)
	case "sqlite":
		return NewSQLite(path, runID)
	case "parquet":
		return NewParquet(path), nil
	default:
		return nil, fmt.Errorf("unknown journal type %q (supported: csv, sqlite, parquet)", kind)
	}
}

func (r HistoryRecord) strings() []string {
	return []string{
		fmt.Sprint(r.Step),
		r.Price.String(),
		r.Balance.String(),
		r.Shares.String(),
		r.Value.String(),
		r.GrossEarnings.String(),
	}
}
