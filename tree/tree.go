// Package tree provides a CART decision tree classifier.
package tree

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/obesitylab/obego/core/model"
	"github.com/obesitylab/obego/pkg/errors"
)

// Node is one node of a fitted decision tree. Fields are exported for gob
// encoding.
type Node struct {
	Leaf        bool
	Feature     int     // Split feature index (internal nodes)
	Threshold   float64 // Split threshold; samples with value <= Threshold go left
	Left, Right *Node
	ClassCounts []int // Training sample count per class index (leaves)
}

// DecisionTreeClassifier implements a CART classification tree. Splits are
// chosen deterministically: features in index order, thresholds in sorted
// order, ties keep the first candidate.
type DecisionTreeClassifier struct {
	state *model.StateManager

	// Hyperparameters
	criterion       string
	maxDepth        int // 0 means unlimited
	minSamplesSplit int

	// Fitted parameters, exported for gob encoding
	Root        *Node
	ClassLabels []int
	NFeatures   int
}

// DecisionTreeOption is a functional option for DecisionTreeClassifier.
type DecisionTreeOption func(*DecisionTreeClassifier)

// NewDecisionTreeClassifier creates a new DecisionTreeClassifier.
func NewDecisionTreeClassifier(opts ...DecisionTreeOption) *DecisionTreeClassifier {
	dt := &DecisionTreeClassifier{
		state:           model.NewStateManager(),
		criterion:       "gini",
		maxDepth:        0,
		minSamplesSplit: 2,
	}
	for _, opt := range opts {
		opt(dt)
	}
	return dt
}

// WithCriterion sets the split quality criterion: "gini" or "entropy".
func WithCriterion(criterion string) DecisionTreeOption {
	return func(dt *DecisionTreeClassifier) {
		dt.criterion = criterion
	}
}

// WithMaxDepth limits the tree depth. Zero means unlimited.
func WithMaxDepth(depth int) DecisionTreeOption {
	return func(dt *DecisionTreeClassifier) {
		dt.maxDepth = depth
	}
}

// WithMinSamplesSplit sets the minimum number of samples required to split a
// node.
func WithMinSamplesSplit(n int) DecisionTreeOption {
	return func(dt *DecisionTreeClassifier) {
		dt.minSamplesSplit = n
	}
}

// Fit builds the tree from X and the class labels in y.
func (dt *DecisionTreeClassifier) Fit(X, y mat.Matrix) error {
	nSamples, nFeatures := X.Dims()
	if nSamples == 0 || nFeatures == 0 {
		return errors.Wrap(errors.ErrEmptyData, "DecisionTreeClassifier.Fit")
	}
	yRows, yCols := y.Dims()
	if yRows != nSamples {
		return errors.NewDimensionError("DecisionTreeClassifier.Fit", nSamples, yRows, 0)
	}
	if yCols != 1 {
		return errors.NewValueError("DecisionTreeClassifier.Fit", "y must be a column vector")
	}
	if dt.criterion != "gini" && dt.criterion != "entropy" {
		return errors.NewValueError("DecisionTreeClassifier.Fit", "unknown criterion "+dt.criterion)
	}

	labelSet := make(map[int]bool)
	labels := make([]int, nSamples)
	for i := 0; i < nSamples; i++ {
		labels[i] = int(y.At(i, 0))
		labelSet[labels[i]] = true
	}
	dt.ClassLabels = make([]int, 0, len(labelSet))
	for l := range labelSet {
		dt.ClassLabels = append(dt.ClassLabels, l)
	}
	sort.Ints(dt.ClassLabels)
	dt.NFeatures = nFeatures

	classIndex := make(map[int]int, len(dt.ClassLabels))
	for i, l := range dt.ClassLabels {
		classIndex[l] = i
	}
	y0 := make([]int, nSamples)
	for i, l := range labels {
		y0[i] = classIndex[l]
	}

	indices := make([]int, nSamples)
	for i := range indices {
		indices[i] = i
	}
	dt.Root = dt.build(X, y0, indices, 1)

	dt.state.SetDimensions(nFeatures, nSamples)
	dt.state.SetFitted()
	return nil
}

// build grows the tree recursively over the sample indices at this node.
func (dt *DecisionTreeClassifier) build(X mat.Matrix, y []int, indices []int, depth int) *Node {
	counts := make([]int, len(dt.ClassLabels))
	for _, i := range indices {
		counts[y[i]]++
	}

	if dt.pure(counts) ||
		len(indices) < dt.minSamplesSplit ||
		(dt.maxDepth > 0 && depth > dt.maxDepth) {
		return &Node{Leaf: true, ClassCounts: counts}
	}

	feature, threshold, ok := dt.bestSplit(X, y, indices, counts)
	if !ok {
		return &Node{Leaf: true, ClassCounts: counts}
	}

	var left, right []int
	for _, i := range indices {
		if X.At(i, feature) <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}

	return &Node{
		Feature:     feature,
		Threshold:   threshold,
		Left:        dt.build(X, y, left, depth+1),
		Right:       dt.build(X, y, right, depth+1),
		ClassCounts: counts,
	}
}

func (dt *DecisionTreeClassifier) pure(counts []int) bool {
	nonZero := 0
	for _, c := range counts {
		if c > 0 {
			nonZero++
		}
	}
	return nonZero <= 1
}

// bestSplit scans features in index order and candidate thresholds in sorted
// order, keeping the first split with the strictly best impurity decrease.
func (dt *DecisionTreeClassifier) bestSplit(X mat.Matrix, y []int, indices []int, counts []int) (feature int, threshold float64, ok bool) {
	n := len(indices)
	parentImpurity := dt.impurity(counts, n)
	bestGain := 0.0

	for f := 0; f < dt.NFeatures; f++ {
		// Sort samples by this feature's value.
		order := append([]int(nil), indices...)
		sort.Slice(order, func(a, b int) bool {
			return X.At(order[a], f) < X.At(order[b], f)
		})

		leftCounts := make([]int, len(counts))
		rightCounts := append([]int(nil), counts...)

		for pos := 0; pos < n-1; pos++ {
			idx := order[pos]
			leftCounts[y[idx]]++
			rightCounts[y[idx]]--

			v, next := X.At(idx, f), X.At(order[pos+1], f)
			if v == next {
				continue
			}

			nLeft := pos + 1
			nRight := n - nLeft
			gain := parentImpurity -
				(float64(nLeft)*dt.impurity(leftCounts, nLeft)+
					float64(nRight)*dt.impurity(rightCounts, nRight))/float64(n)

			if gain > bestGain+1e-12 {
				bestGain = gain
				feature = f
				threshold = (v + next) / 2
				ok = true
			}
		}
	}
	return feature, threshold, ok
}

// impurity computes the node impurity under the configured criterion.
func (dt *DecisionTreeClassifier) impurity(counts []int, total int) float64 {
	if total == 0 {
		return 0
	}
	if dt.criterion == "entropy" {
		e := 0.0
		for _, c := range counts {
			if c == 0 {
				continue
			}
			p := float64(c) / float64(total)
			e -= p * math.Log2(p)
		}
		return e
	}
	// gini
	g := 1.0
	for _, c := range counts {
		p := float64(c) / float64(total)
		g -= p * p
	}
	return g
}

// Predict returns the predicted class label per input row.
func (dt *DecisionTreeClassifier) Predict(X mat.Matrix) (mat.Matrix, error) {
	if err := dt.state.RequireFitted("DecisionTreeClassifier", "Predict"); err != nil {
		return nil, err
	}
	nSamples, nFeatures := X.Dims()
	if nFeatures != dt.NFeatures {
		return nil, errors.NewDimensionError("DecisionTreeClassifier.Predict", dt.NFeatures, nFeatures, 1)
	}

	predictions := mat.NewDense(nSamples, 1, nil)
	for i := 0; i < nSamples; i++ {
		leaf := dt.traverse(X, i)
		best, bestCount := 0, -1
		for ci, c := range leaf.ClassCounts {
			if c > bestCount {
				best, bestCount = ci, c
			}
		}
		predictions.Set(i, 0, float64(dt.ClassLabels[best]))
	}
	return predictions, nil
}

// PredictProba returns class probabilities from leaf class fractions, one
// column per class in label order.
func (dt *DecisionTreeClassifier) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	if err := dt.state.RequireFitted("DecisionTreeClassifier", "PredictProba"); err != nil {
		return nil, err
	}
	nSamples, nFeatures := X.Dims()
	if nFeatures != dt.NFeatures {
		return nil, errors.NewDimensionError("DecisionTreeClassifier.PredictProba", dt.NFeatures, nFeatures, 1)
	}

	probas := mat.NewDense(nSamples, len(dt.ClassLabels), nil)
	for i := 0; i < nSamples; i++ {
		leaf := dt.traverse(X, i)
		total := 0
		for _, c := range leaf.ClassCounts {
			total += c
		}
		for ci, c := range leaf.ClassCounts {
			probas.Set(i, ci, float64(c)/float64(total))
		}
	}
	return probas, nil
}

func (dt *DecisionTreeClassifier) traverse(X mat.Matrix, row int) *Node {
	node := dt.Root
	for !node.Leaf && node.Left != nil && node.Right != nil {
		if X.At(row, node.Feature) <= node.Threshold {
			node = node.Left
		} else {
			node = node.Right
		}
	}
	return node
}

// Score returns the mean accuracy on the given test data and labels.
func (dt *DecisionTreeClassifier) Score(X, y mat.Matrix) (float64, error) {
	predictions, err := dt.Predict(X)
	if err != nil {
		return 0, err
	}
	n, _ := predictions.Dims()
	correct := 0
	for i := 0; i < n; i++ {
		if predictions.At(i, 0) == y.At(i, 0) {
			correct++
		}
	}
	return float64(correct) / float64(n), nil
}

// Classes returns the class labels seen during fitting.
func (dt *DecisionTreeClassifier) Classes() []int {
	return append([]int(nil), dt.ClassLabels...)
}

// GetParams returns the model hyperparameters.
func (dt *DecisionTreeClassifier) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"criterion":         dt.criterion,
		"max_depth":         dt.maxDepth,
		"min_samples_split": dt.minSamplesSplit,
	}
}
