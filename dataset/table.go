// Package dataset provides the in-memory record table the workflow operates
// on: CSV loading and saving, cleaning, column manipulation and conversion to
// gonum matrices for the estimators.
package dataset

import (
	"sort"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/obesitylab/obego/pkg/errors"
)

// ColumnKind classifies a column as numeric or categorical.
type ColumnKind int

const (
	// Numeric columns parse as float64 in every row.
	Numeric ColumnKind = iota
	// Categorical columns are string-valued with a small set of distinct values.
	Categorical
)

// Table is a two-dimensional table of rows and named columns. Cells are kept
// as strings; numeric interpretation happens on demand.
type Table struct {
	names []string
	cols  [][]string
}

// New creates an empty table with the given column names.
func New(names []string) *Table {
	cols := make([][]string, len(names))
	return &Table{names: append([]string(nil), names...), cols: cols}
}

// NRows returns the number of rows.
func (t *Table) NRows() int {
	if len(t.cols) == 0 {
		return 0
	}
	return len(t.cols[0])
}

// NCols returns the number of columns.
func (t *Table) NCols() int { return len(t.names) }

// Names returns the column names in order.
func (t *Table) Names() []string {
	return append([]string(nil), t.names...)
}

// HasColumn reports whether a column with the given name exists.
func (t *Table) HasColumn(name string) bool {
	return t.index(name) >= 0
}

func (t *Table) index(name string) int {
	for i, n := range t.names {
		if n == name {
			return i
		}
	}
	return -1
}

// Column returns the cells of the named column.
func (t *Table) Column(name string) ([]string, error) {
	i := t.index(name)
	if i < 0 {
		return nil, errors.NewMissingColumnError("Table.Column", name)
	}
	return append([]string(nil), t.cols[i]...), nil
}

// AppendRow appends one row of cells. The row length must match the number of
// columns.
func (t *Table) AppendRow(cells []string) error {
	if len(cells) != len(t.names) {
		return errors.NewDimensionError("Table.AppendRow", len(t.names), len(cells), 1)
	}
	for i, c := range cells {
		t.cols[i] = append(t.cols[i], c)
	}
	return nil
}

// AppendColumn adds a new column. The value count must match the current row
// count, except on an empty table.
func (t *Table) AppendColumn(name string, values []string) error {
	if t.index(name) >= 0 {
		return errors.NewValueError("Table.AppendColumn", "column "+name+" already exists")
	}
	if t.NCols() > 0 && len(values) != t.NRows() {
		return errors.NewDimensionError("Table.AppendColumn", t.NRows(), len(values), 0)
	}
	t.names = append(t.names, name)
	t.cols = append(t.cols, append([]string(nil), values...))
	return nil
}

// SetColumn replaces the cells of an existing column.
func (t *Table) SetColumn(name string, values []string) error {
	i := t.index(name)
	if i < 0 {
		return errors.NewMissingColumnError("Table.SetColumn", name)
	}
	if len(values) != t.NRows() {
		return errors.NewDimensionError("Table.SetColumn", t.NRows(), len(values), 0)
	}
	t.cols[i] = append([]string(nil), values...)
	return nil
}

// DropColumns removes the named columns and returns a new table.
func (t *Table) DropColumns(names ...string) (*Table, error) {
	drop := make(map[string]bool, len(names))
	for _, n := range names {
		if t.index(n) < 0 {
			return nil, errors.NewMissingColumnError("Table.DropColumns", n)
		}
		drop[n] = true
	}

	out := &Table{}
	for i, n := range t.names {
		if drop[n] {
			continue
		}
		out.names = append(out.names, n)
		out.cols = append(out.cols, append([]string(nil), t.cols[i]...))
	}
	return out, nil
}

// missing reports whether a cell counts as a missing value.
func missing(cell string) bool {
	s := strings.TrimSpace(cell)
	return s == "" || s == "NA" || s == "NaN"
}

// Clean drops every row containing a missing cell, then drops exact duplicate
// rows, keeping the first occurrence. The receiver is not modified.
func (t *Table) Clean() *Table {
	out := New(t.names)
	seen := make(map[string]bool)

rows:
	for r := 0; r < t.NRows(); r++ {
		cells := make([]string, len(t.cols))
		for c := range t.cols {
			cell := t.cols[c][r]
			if missing(cell) {
				continue rows
			}
			cells[c] = cell
		}
		key := strings.Join(cells, "\x1f")
		if seen[key] {
			continue
		}
		seen[key] = true
		_ = out.AppendRow(cells)
	}
	return out
}

// Kind reports whether the named column is numeric or categorical. A column
// is numeric when every cell parses as a float.
func (t *Table) Kind(name string) (ColumnKind, error) {
	i := t.index(name)
	if i < 0 {
		return Categorical, errors.NewMissingColumnError("Table.Kind", name)
	}
	for _, cell := range t.cols[i] {
		if _, err := strconv.ParseFloat(cell, 64); err != nil {
			return Categorical, nil
		}
	}
	return Numeric, nil
}

// DistinctValues returns the sorted distinct values of the named column.
func (t *Table) DistinctValues(name string) ([]string, error) {
	i := t.index(name)
	if i < 0 {
		return nil, errors.NewMissingColumnError("Table.DistinctValues", name)
	}
	set := make(map[string]bool)
	for _, cell := range t.cols[i] {
		set[cell] = true
	}
	out := make([]string, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Strings(out)
	return out, nil
}

// NumericColumn parses the named column as float64 values.
func (t *Table) NumericColumn(name string) ([]float64, error) {
	i := t.index(name)
	if i < 0 {
		return nil, errors.NewMissingColumnError("Table.NumericColumn", name)
	}
	out := make([]float64, len(t.cols[i]))
	for r, cell := range t.cols[i] {
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			return nil, errors.NewValueError("Table.NumericColumn",
				"column "+name+" contains non-numeric cell "+strconv.Quote(cell))
		}
		out[r] = v
	}
	return out, nil
}

// Matrix converts the whole table to a dense matrix. Every column must be
// numeric.
func (t *Table) Matrix() (*mat.Dense, error) {
	if t.NRows() == 0 || t.NCols() == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "Table.Matrix")
	}
	m := mat.NewDense(t.NRows(), t.NCols(), nil)
	for c, name := range t.names {
		vals, err := t.NumericColumn(name)
		if err != nil {
			return nil, err
		}
		for r, v := range vals {
			m.Set(r, c, v)
		}
	}
	return m, nil
}

// FeaturesTarget splits the table into a feature matrix X and a target vector
// y taken from the named column.
func (t *Table) FeaturesTarget(target string) (*mat.Dense, *mat.VecDense, error) {
	yVals, err := t.NumericColumn(target)
	if err != nil {
		return nil, nil, err
	}
	features, err := t.DropColumns(target)
	if err != nil {
		return nil, nil, err
	}
	X, err := features.Matrix()
	if err != nil {
		return nil, nil, err
	}
	return X, mat.NewVecDense(len(yVals), yVals), nil
}

// FormatFloat renders a float the way table cells store numbers.
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
