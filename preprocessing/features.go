package preprocessing

import (
	"gonum.org/v1/gonum/mat"

	"github.com/obesitylab/obego/dataset"
	"github.com/obesitylab/obego/pkg/errors"
)

// Column names the transform depends on.
const (
	// TargetColumn is the derived binary target.
	TargetColumn = "Obesity_Binary"

	labelColumn     = "NObeyesdad"
	transportColumn = "MTRANS"
	snackingColumn  = "CAEC"
	alcoholColumn   = "CALC"
)

// obeseLabels is the fixed label set mapped to Obesity_Binary = 1.
var obeseLabels = map[string]bool{
	"Obesity_Type_I":      true,
	"Obesity_Type_II":     true,
	"Obesity_Type_III":    true,
	"Overweight_Level_I":  true,
	"Overweight_Level_II": true,
}

// frequentValues marks the consumption frequencies encoded as 1 in the CAEC
// and CALC indicators.
var frequentValues = map[string]bool{
	"Frequently": true,
	"Always":     true,
}

// TransformResult is the output of ObesityTransform: the fully numeric table
// and the explicit value mapping applied to each two-valued categorical
// column, recorded so the encoding is reproducible.
type TransformResult struct {
	Table           *dataset.Table
	BinaryEncodings map[string]map[string]int
}

// ObesityTransform turns a cleaned obesity table into the feature table used
// for training:
//
//  1. Derives Obesity_Binary from the NObeyesdad label and drops the label.
//  2. Maps every remaining two-valued categorical column to {0, 1} in
//     lexicographic value order.
//  3. Derives MTRANS_Binary, CAEC_binary and CALC_binary indicators and drops
//     their source columns.
//  4. Standardizes the original numeric columns with statistics from the full
//     table.
//
// The result contains only numeric columns. Expected columns that are absent
// or categorical columns with an unexpected number of distinct values are
// errors.
func ObesityTransform(t *dataset.Table) (*TransformResult, error) {
	labels, err := t.Column(labelColumn)
	if err != nil {
		return nil, errors.NewMissingColumnError("ObesityTransform", labelColumn)
	}
	target := make([]string, len(labels))
	for i, l := range labels {
		if obeseLabels[l] {
			target[i] = "1"
		} else {
			target[i] = "0"
		}
	}

	out, err := t.DropColumns(labelColumn)
	if err != nil {
		return nil, err
	}

	// Classify columns before any encoding so "numeric" means numeric in the
	// source data.
	var numericCols, categoricalCols []string
	for _, name := range out.Names() {
		kind, err := out.Kind(name)
		if err != nil {
			return nil, err
		}
		if kind == dataset.Numeric {
			numericCols = append(numericCols, name)
		} else {
			categoricalCols = append(categoricalCols, name)
		}
	}

	encodings := make(map[string]map[string]int)
	indicatorSources := map[string]bool{
		transportColumn: true,
		snackingColumn:  true,
		alcoholColumn:   true,
	}

	for _, name := range categoricalCols {
		if indicatorSources[name] {
			continue
		}
		distinct, err := out.DistinctValues(name)
		if err != nil {
			return nil, err
		}
		if len(distinct) != 2 {
			return nil, errors.Newf(
				"ObesityTransform: categorical column %q has %d distinct values, expected 2",
				name, len(distinct))
		}
		// Lexicographic mapping: smaller value -> 0, larger -> 1.
		mapping := map[string]int{distinct[0]: 0, distinct[1]: 1}
		col, err := out.Column(name)
		if err != nil {
			return nil, err
		}
		encoded := make([]string, len(col))
		for i, v := range col {
			encoded[i] = dataset.FormatFloat(float64(mapping[v]))
		}
		if err := out.SetColumn(name, encoded); err != nil {
			return nil, err
		}
		encodings[name] = mapping
	}

	if err := out.AppendColumn(TargetColumn, target); err != nil {
		return nil, err
	}

	indicators := []struct {
		source string
		name   string
		isOne  func(string) bool
	}{
		{transportColumn, "MTRANS_Binary", func(v string) bool { return v == "Public_Transportation" }},
		{snackingColumn, "CAEC_binary", func(v string) bool { return frequentValues[v] }},
		{alcoholColumn, "CALC_binary", func(v string) bool { return frequentValues[v] }},
	}
	for _, ind := range indicators {
		col, err := out.Column(ind.source)
		if err != nil {
			return nil, errors.NewMissingColumnError("ObesityTransform", ind.source)
		}
		vals := make([]string, len(col))
		for i, v := range col {
			if ind.isOne(v) {
				vals[i] = "1"
			} else {
				vals[i] = "0"
			}
		}
		if err := out.AppendColumn(ind.name, vals); err != nil {
			return nil, err
		}
	}
	if out, err = out.DropColumns(transportColumn, snackingColumn, alcoholColumn); err != nil {
		return nil, err
	}

	if err := scaleColumns(out, numericCols); err != nil {
		return nil, err
	}

	return &TransformResult{Table: out, BinaryEncodings: encodings}, nil
}

// scaleColumns standardizes the named columns in place using statistics
// computed from the full table.
func scaleColumns(t *dataset.Table, names []string) error {
	if len(names) == 0 {
		return nil
	}
	n := t.NRows()
	X := mat.NewDense(n, len(names), nil)
	for j, name := range names {
		vals, err := t.NumericColumn(name)
		if err != nil {
			return err
		}
		for i, v := range vals {
			X.Set(i, j, v)
		}
	}

	scaled, err := NewStandardScaler().FitTransform(X)
	if err != nil {
		return err
	}

	col := make([]string, n)
	for j, name := range names {
		for i := 0; i < n; i++ {
			col[i] = dataset.FormatFloat(scaled.At(i, j))
		}
		if err := t.SetColumn(name, col); err != nil {
			return err
		}
	}
	return nil
}
