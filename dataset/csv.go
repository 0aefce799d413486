package dataset

import (
	"encoding/csv"
	"os"

	"github.com/obesitylab/obego/pkg/errors"
)

// ReadCSV loads a comma-delimited file with a header row into a Table.
func ReadCSV(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	if len(records) == 0 {
		return nil, errors.Wrapf(errors.ErrEmptyData, "reading %s", path)
	}

	t := New(records[0])
	for _, row := range records[1:] {
		if err := t.AppendRow(row); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// WriteCSV persists the table as a comma-delimited file with a header row.
func (t *Table) WriteCSV(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "creating %s", path)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(t.names); err != nil {
		return errors.Wrapf(err, "writing header to %s", path)
	}
	row := make([]string, len(t.cols))
	for r := 0; r < t.NRows(); r++ {
		for c := range t.cols {
			row[c] = t.cols[c][r]
		}
		if err := w.Write(row); err != nil {
			return errors.Wrapf(err, "writing row %d to %s", r, path)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return errors.Wrapf(err, "flushing %s", path)
	}
	return nil
}
