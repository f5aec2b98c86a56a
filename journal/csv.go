package journal

import (
	"encoding/csv"
	"os"
)

// CSVJournal writes history rows under the Columns header. The header is
// written when the file is created, so a journal with no rows still yields a
// valid table.
type CSVJournal struct {
	w *csv.Writer
	f *os.File
}

func NewCSV(path string) (*CSVJournal, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}

	w := csv.NewWriter(f)
	if err := w.Write(Columns); err != nil {
		f.Close()
		return nil, err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return nil, err
	}

	return &CSVJournal{w: w, f: f}, nil
}

func (j *CSVJournal) Record(r HistoryRecord) error {
	if err := j.w.Write(r.strings()); err != nil {
		return err
	}
	j.w.Flush()
	return j.w.Error()
}

func (j *CSVJournal) Close() error {
	j.w.Flush()
	if err := j.w.Error(); err != nil {
		j.f.Close()
		return err
	}
	return j.f.Close()
}
