// Package metrics provides classification evaluation metrics over gonum
// vectors: accuracy, weighted precision/recall/F1, the confusion matrix and a
// plain-text classification report.
package metrics

import (
	"fmt"
	"sort"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/obesitylab/obego/pkg/errors"
)

// validate checks that yTrue and yPred are non-empty and equally sized.
func validate(op string, yTrue, yPred *mat.VecDense) (int, error) {
	if yTrue == nil || yPred == nil || yTrue.Len() == 0 {
		return 0, errors.NewValueError(op, "empty vector")
	}
	n := yTrue.Len()
	if yPred.Len() != n {
		return 0, errors.NewDimensionError(op, n, yPred.Len(), 0)
	}
	return n, nil
}

// Accuracy computes the fraction of exactly matching predictions.
func Accuracy(yTrue, yPred *mat.VecDense) (float64, error) {
	n, err := validate("Accuracy", yTrue, yPred)
	if err != nil {
		return 0, err
	}

	correct := 0
	for i := 0; i < n; i++ {
		if yTrue.AtVec(i) == yPred.AtVec(i) {
			correct++
		}
	}
	return float64(correct) / float64(n), nil
}

// ConfusionMatrix computes the confusion matrix over the union of labels in
// yTrue and yPred. Labels are returned sorted; cm[i][j] counts samples with
// true label labels[i] predicted as labels[j].
func ConfusionMatrix(yTrue, yPred *mat.VecDense) (labels []int, cm [][]int, err error) {
	n, err := validate("ConfusionMatrix", yTrue, yPred)
	if err != nil {
		return nil, nil, err
	}

	set := make(map[int]bool)
	for i := 0; i < n; i++ {
		set[int(yTrue.AtVec(i))] = true
		set[int(yPred.AtVec(i))] = true
	}
	for l := range set {
		labels = append(labels, l)
	}
	sort.Ints(labels)

	index := make(map[int]int, len(labels))
	for i, l := range labels {
		index[l] = i
	}

	cm = make([][]int, len(labels))
	for i := range cm {
		cm[i] = make([]int, len(labels))
	}
	for i := 0; i < n; i++ {
		cm[index[int(yTrue.AtVec(i))]][index[int(yPred.AtVec(i))]]++
	}
	return labels, cm, nil
}

// classCounts holds per-class true positive, predicted and actual counts.
type classCounts struct {
	labels  []int
	tp      map[int]int
	pred    map[int]int
	support map[int]int
	total   int
}

func count(yTrue, yPred *mat.VecDense, n int) classCounts {
	c := classCounts{
		tp:      make(map[int]int),
		pred:    make(map[int]int),
		support: make(map[int]int),
		total:   n,
	}
	set := make(map[int]bool)
	for i := 0; i < n; i++ {
		yt, yp := int(yTrue.AtVec(i)), int(yPred.AtVec(i))
		set[yt] = true
		set[yp] = true
		c.support[yt]++
		c.pred[yp]++
		if yt == yp {
			c.tp[yt]++
		}
	}
	for l := range set {
		c.labels = append(c.labels, l)
	}
	sort.Ints(c.labels)
	return c
}

// precision for one class; ill-defined cases (no predicted samples) yield 0
// and emit an UndefinedMetricWarning.
func (c classCounts) precision(label int) float64 {
	if c.pred[label] == 0 {
		errors.Warn(errors.NewUndefinedMetricWarning("precision", "no predicted samples", 0))
		return 0
	}
	return float64(c.tp[label]) / float64(c.pred[label])
}

// recall for one class; classes without true samples yield 0.
func (c classCounts) recall(label int) float64 {
	if c.support[label] == 0 {
		errors.Warn(errors.NewUndefinedMetricWarning("recall", "no true samples", 0))
		return 0
	}
	return float64(c.tp[label]) / float64(c.support[label])
}

// f1 for one class; 0 when precision+recall is 0.
func (c classCounts) f1(label int) float64 {
	p, r := c.precision(label), c.recall(label)
	if p+r == 0 {
		return 0
	}
	return 2 * p * r / (p + r)
}

// weighted averages a per-class metric weighted by class support.
func (c classCounts) weighted(metric func(int) float64) float64 {
	var sum float64
	for _, l := range c.labels {
		sum += metric(l) * float64(c.support[l])
	}
	return sum / float64(c.total)
}

// PrecisionWeighted computes support-weighted average precision. Zero
// division is treated as 0, never as an error.
func PrecisionWeighted(yTrue, yPred *mat.VecDense) (float64, error) {
	n, err := validate("PrecisionWeighted", yTrue, yPred)
	if err != nil {
		return 0, err
	}
	c := count(yTrue, yPred, n)
	return c.weighted(c.precision), nil
}

// RecallWeighted computes support-weighted average recall.
func RecallWeighted(yTrue, yPred *mat.VecDense) (float64, error) {
	n, err := validate("RecallWeighted", yTrue, yPred)
	if err != nil {
		return 0, err
	}
	c := count(yTrue, yPred, n)
	return c.weighted(c.recall), nil
}

// F1Weighted computes support-weighted average F1.
func F1Weighted(yTrue, yPred *mat.VecDense) (float64, error) {
	n, err := validate("F1Weighted", yTrue, yPred)
	if err != nil {
		return 0, err
	}
	c := count(yTrue, yPred, n)
	return c.weighted(c.f1), nil
}

// ClassificationReport renders a scikit-learn style plain-text report with
// per-class precision, recall, F1 and support plus accuracy, macro and
// weighted averages.
func ClassificationReport(yTrue, yPred *mat.VecDense) (string, error) {
	n, err := validate("ClassificationReport", yTrue, yPred)
	if err != nil {
		return "", err
	}
	c := count(yTrue, yPred, n)

	var b strings.Builder
	fmt.Fprintf(&b, "%14s %10s %10s %10s %10s\n\n", "", "precision", "recall", "f1-score", "support")

	var macroP, macroR, macroF float64
	for _, l := range c.labels {
		p, r, f := c.precision(l), c.recall(l), c.f1(l)
		macroP += p
		macroR += r
		macroF += f
		fmt.Fprintf(&b, "%14d %10.2f %10.2f %10.2f %10d\n", l, p, r, f, c.support[l])
	}
	k := float64(len(c.labels))

	accuracy, err := Accuracy(yTrue, yPred)
	if err != nil {
		return "", err
	}

	fmt.Fprintf(&b, "\n%14s %10s %10s %10.2f %10d\n", "accuracy", "", "", accuracy, n)
	fmt.Fprintf(&b, "%14s %10.2f %10.2f %10.2f %10d\n", "macro avg", macroP/k, macroR/k, macroF/k, n)
	fmt.Fprintf(&b, "%14s %10.2f %10.2f %10.2f %10d\n", "weighted avg",
		c.weighted(c.precision), c.weighted(c.recall), c.weighted(c.f1), n)

	return b.String(), nil
}
