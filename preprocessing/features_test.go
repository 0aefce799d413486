package preprocessing

import (
	"math"
	"testing"

	"github.com/obesitylab/obego/dataset"
)

func obesityTable(t *testing.T) *dataset.Table {
	t.Helper()
	tbl := dataset.New([]string{"Gender", "Age", "MTRANS", "CAEC", "CALC", "NObeyesdad"})
	rows := [][]string{
		{"Male", "21", "Public_Transportation", "Sometimes", "no", "Normal_Weight"},
		{"Female", "30", "Walking", "Frequently", "Sometimes", "Obesity_Type_I"},
		{"Female", "25", "Automobile", "Always", "Frequently", "Overweight_Level_II"},
		{"Male", "40", "Public_Transportation", "no", "Always", "Insufficient_Weight"},
	}
	for _, row := range rows {
		if err := tbl.AppendRow(row); err != nil {
			t.Fatal(err)
		}
	}
	return tbl
}

func TestObesityTransformTarget(t *testing.T) {
	res, err := ObesityTransform(obesityTable(t))
	if err != nil {
		t.Fatalf("ObesityTransform() error = %v", err)
	}

	target, err := res.Table.NumericColumn(TargetColumn)
	if err != nil {
		t.Fatalf("target column: %v", err)
	}
	want := []float64{0, 1, 1, 0}
	for i, w := range want {
		if target[i] != w {
			t.Errorf("Obesity_Binary[%d] = %v, want %v", i, target[i], w)
		}
	}

	if res.Table.HasColumn("NObeyesdad") {
		t.Error("label column survived the transform")
	}
}

func TestObesityTransformAllNumeric(t *testing.T) {
	res, err := ObesityTransform(obesityTable(t))
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range res.Table.Names() {
		kind, err := res.Table.Kind(name)
		if err != nil {
			t.Fatal(err)
		}
		if kind != dataset.Numeric {
			t.Errorf("column %q is not numeric after transform", name)
		}
	}
}

func TestObesityTransformIndicators(t *testing.T) {
	res, err := ObesityTransform(obesityTable(t))
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		column string
		want   []float64
	}{
		{"MTRANS_Binary", []float64{1, 0, 0, 1}},
		{"CAEC_binary", []float64{0, 1, 1, 0}},
		{"CALC_binary", []float64{0, 0, 1, 1}},
	}
	for _, tt := range tests {
		got, err := res.Table.NumericColumn(tt.column)
		if err != nil {
			t.Fatalf("%s: %v", tt.column, err)
		}
		for i, w := range tt.want {
			if got[i] != w {
				t.Errorf("%s[%d] = %v, want %v", tt.column, i, got[i], w)
			}
		}
	}

	for _, dropped := range []string{"MTRANS", "CAEC", "CALC"} {
		if res.Table.HasColumn(dropped) {
			t.Errorf("source column %q survived the transform", dropped)
		}
	}
}

func TestObesityTransformBinaryEncodingIsLexicographic(t *testing.T) {
	res, err := ObesityTransform(obesityTable(t))
	if err != nil {
		t.Fatal(err)
	}

	enc, ok := res.BinaryEncodings["Gender"]
	if !ok {
		t.Fatal("no encoding recorded for Gender")
	}
	if enc["Female"] != 0 || enc["Male"] != 1 {
		t.Errorf("Gender encoding = %v, want Female->0 Male->1", enc)
	}

	gender, err := res.Table.NumericColumn("Gender")
	if err != nil {
		t.Fatal(err)
	}
	want := []float64{1, 0, 0, 1}
	for i, w := range want {
		if gender[i] != w {
			t.Errorf("Gender[%d] = %v, want %v", i, gender[i], w)
		}
	}
}

func TestObesityTransformScalesNumeric(t *testing.T) {
	res, err := ObesityTransform(obesityTable(t))
	if err != nil {
		t.Fatal(err)
	}

	age, err := res.Table.NumericColumn("Age")
	if err != nil {
		t.Fatal(err)
	}
	var sum, sumSq float64
	for _, v := range age {
		sum += v
	}
	mean := sum / float64(len(age))
	for _, v := range age {
		sumSq += (v - mean) * (v - mean)
	}
	variance := sumSq / float64(len(age))

	if math.Abs(mean) > 1e-10 {
		t.Errorf("scaled Age mean = %v, want ~0", mean)
	}
	if math.Abs(variance-1) > 1e-10 {
		t.Errorf("scaled Age variance = %v, want ~1", variance)
	}
}

func TestObesityTransformMissingLabel(t *testing.T) {
	tbl := dataset.New([]string{"Age"})
	_ = tbl.AppendRow([]string{"20"})

	if _, err := ObesityTransform(tbl); err == nil {
		t.Fatal("transform without the label column did not error")
	}
}

func TestObesityTransformUnexpectedCardinality(t *testing.T) {
	tbl := dataset.New([]string{"Mood", "MTRANS", "CAEC", "CALC", "NObeyesdad"})
	rows := [][]string{
		{"low", "Walking", "no", "no", "Normal_Weight"},
		{"mid", "Walking", "no", "no", "Obesity_Type_I"},
		{"high", "Walking", "no", "no", "Obesity_Type_II"},
	}
	for _, row := range rows {
		_ = tbl.AppendRow(row)
	}

	if _, err := ObesityTransform(tbl); err == nil {
		t.Fatal("three-valued categorical column did not error")
	}
}
