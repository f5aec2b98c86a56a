package journal

import (
	"github.com/parquet-go/parquet-go"
)

type parquetRow struct {
	Episode       int64   `parquet:"episode"`
	Step          int64   `parquet:"step"`
	Price         float64 `parquet:"price"`
	Balance       float64 `parquet:"balance"`
	Shares        float64 `parquet:"shares_acquired"`
	Value         float64 `parquet:"portfolio_value"`
	GrossEarnings float64 `parquet:"gross_earnings"`
}

// ParquetJournal buffers rows in memory and writes the file on Close.
type ParquetJournal struct {
	path string
	rows []parquetRow
}

func NewParquet(path string) *ParquetJournal {
	return &ParquetJournal{path: path}
}

func (j *ParquetJournal) Record(r HistoryRecord) error {
	j.rows = append(j.rows, parquetRow{
		Episode:       int64(r.Episode),
		Step:          int64(r.Step),
		Price:         r.Price.InexactFloat64(),
		Balance:       r.Balance.InexactFloat64(),
		Shares:        r.Shares.InexactFloat64(),
		Value:         r.Value.InexactFloat64(),
		GrossEarnings: r.GrossEarnings.InexactFloat64(),
	})
	return nil
}

func (j *ParquetJournal) Close() error {
	return parquet.WriteFile(j.path, j.rows)
}
