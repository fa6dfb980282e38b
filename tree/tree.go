// Package tree implements a CART-style decision tree classifier with a
// scikit-learn compatible API. Split quality is scored by gini impurity or
// entropy; induction is bounded by max depth and minimum sample counts.
package tree

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/yotsuba-lab/iristree/core/model"
	"github.com/yotsuba-lab/iristree/core/parallel"
	"github.com/yotsuba-lab/iristree/pkg/errors"
)

// Rows below this count are predicted sequentially.
const predictParallelThreshold = 512

// DecisionTreeClassifier is a supervised classification tree.
type DecisionTreeClassifier struct {
	model.BaseEstimator

	criterion       string
	maxDepth        int // 0 means no explicit limit
	minSamplesSplit int
	minSamplesLeaf  int

	root                *node
	classes_            []float64
	nClasses_           int
	nFeatures_          int
	featureImportances_ []float64
}

type node struct {
	isLeaf    bool
	feature   int
	threshold float64 // x <= threshold goes left
	left      *node
	right     *node

	samples int
	counts  []int // per-class sample counts at this node
	proba   []float64
	pred    int // index into classes_
}

// Option configures a DecisionTreeClassifier.
type Option func(*DecisionTreeClassifier)

// WithCriterion sets the impurity criterion, "gini" or "entropy".
func WithCriterion(c string) Option {
	return func(t *DecisionTreeClassifier) { t.criterion = c }
}

// WithMaxDepth bounds the tree depth. Zero means unbounded.
func WithMaxDepth(d int) Option {
	return func(t *DecisionTreeClassifier) { t.maxDepth = d }
}

// WithMinSamplesSplit sets the minimum samples required to attempt a split.
func WithMinSamplesSplit(n int) Option {
	return func(t *DecisionTreeClassifier) { t.minSamplesSplit = n }
}

// WithMinSamplesLeaf sets the minimum samples required in each leaf.
func WithMinSamplesLeaf(n int) Option {
	return func(t *DecisionTreeClassifier) { t.minSamplesLeaf = n }
}

// NewDecisionTreeClassifier creates a classifier with sklearn-style
// defaults: gini criterion, unbounded depth, min_samples_split=2,
// min_samples_leaf=1.
func NewDecisionTreeClassifier(opts ...Option) *DecisionTreeClassifier {
	t := &DecisionTreeClassifier{
		criterion:       "gini",
		maxDepth:        0,
		minSamplesSplit: 2,
		minSamplesLeaf:  1,
	}
	for _, o := range opts {
		o(t)
	}
	return t
}

// Fit trains the tree on X (n×p features) and y (n×1 class labels).
func (t *DecisionTreeClassifier) Fit(X, y mat.Matrix) error {
	rows, cols := X.Dims()
	yRows, yCols := y.Dims()

	if rows == 0 || cols == 0 {
		return errors.NewModelError("DecisionTreeClassifier.Fit", "empty data", errors.ErrEmptyData)
	}
	if yRows != rows {
		return errors.NewDimensionError("DecisionTreeClassifier.Fit", rows, yRows, 0)
	}
	if yCols != 1 {
		return errors.NewDimensionError("DecisionTreeClassifier.Fit", 1, yCols, 1)
	}
	if t.criterion != "gini" && t.criterion != "entropy" {
		return errors.NewValueError("DecisionTreeClassifier.Fit",
			"criterion must be \"gini\" or \"entropy\", got \""+t.criterion+"\"")
	}
	if t.minSamplesSplit < 2 {
		return errors.NewValidationError("min_samples_split", "must be >= 2", t.minSamplesSplit)
	}
	if t.minSamplesLeaf < 1 {
		return errors.NewValidationError("min_samples_leaf", "must be >= 1", t.minSamplesLeaf)
	}
	if err := errors.CheckMatrixFinite("DecisionTreeClassifier.Fit", X); err != nil {
		return err
	}

	// Collect distinct class values in ascending order so that class index
	// equals the probability column.
	classSet := make(map[float64]struct{})
	for i := 0; i < rows; i++ {
		classSet[y.At(i, 0)] = struct{}{}
	}
	classes := make([]float64, 0, len(classSet))
	for v := range classSet {
		classes = append(classes, v)
	}
	sort.Float64s(classes)

	classIndex := make(map[float64]int, len(classes))
	for i, v := range classes {
		classIndex[v] = i
	}

	labels := make([]int, rows)
	for i := 0; i < rows; i++ {
		labels[i] = classIndex[y.At(i, 0)]
	}

	indices := make([]int, rows)
	for i := range indices {
		indices[i] = i
	}

	t.classes_ = classes
	t.nClasses_ = len(classes)
	t.nFeatures_ = cols
	t.featureImportances_ = make([]float64, cols)

	t.root = t.buildNode(X, labels, indices, 0)
	t.normalizeImportances()
	t.SetFitted()
	return nil
}

// buildNode grows the tree recursively over the sample indices at depth.
func (t *DecisionTreeClassifier) buildNode(X mat.Matrix, labels []int, indices []int, depth int) *node {
	counts := make([]int, t.nClasses_)
	for _, idx := range indices {
		counts[labels[idx]]++
	}

	n := &node{
		samples: len(indices),
		counts:  counts,
		proba:   probaFromCounts(counts, len(indices)),
		pred:    argmaxInt(counts),
	}

	if t.isPure(counts) ||
		len(indices) < t.minSamplesSplit ||
		(t.maxDepth > 0 && depth >= t.maxDepth) {
		n.isLeaf = true
		return n
	}

	feature, threshold, gain, ok := t.bestSplit(X, labels, indices, counts)
	if !ok {
		n.isLeaf = true
		return n
	}

	var left, right []int
	for _, idx := range indices {
		if X.At(idx, feature) <= threshold {
			left = append(left, idx)
		} else {
			right = append(right, idx)
		}
	}

	// Weighted impurity decrease, accumulated per feature for importances.
	nTotal := float64(len(labels))
	t.featureImportances_[feature] += float64(len(indices)) / nTotal * gain

	n.feature = feature
	n.threshold = threshold
	n.left = t.buildNode(X, labels, left, depth+1)
	n.right = t.buildNode(X, labels, right, depth+1)
	return n
}

// bestSplit scans every feature for the threshold with the largest impurity
// decrease, honoring minSamplesLeaf on both children. It reports ok=false
// when no valid split improves on the parent.
func (t *DecisionTreeClassifier) bestSplit(X mat.Matrix, labels []int, indices []int, parentCounts []int) (feature int, threshold float64, gain float64, ok bool) {
	total := len(indices)
	parentImpurity := t.impurity(parentCounts, total)

	type sample struct {
		value float64
		label int
	}

	bestGain := 1e-12
	samples := make([]sample, total)

	for f := 0; f < t.nFeatures_; f++ {
		for i, idx := range indices {
			samples[i] = sample{value: X.At(idx, f), label: labels[idx]}
		}
		sort.Slice(samples, func(i, j int) bool { return samples[i].value < samples[j].value })

		leftCounts := make([]int, t.nClasses_)
		rightCounts := make([]int, t.nClasses_)
		copy(rightCounts, parentCounts)

		for i := 0; i < total-1; i++ {
			leftCounts[samples[i].label]++
			rightCounts[samples[i].label]--

			// Only split between distinct feature values.
			if samples[i].value == samples[i+1].value {
				continue
			}

			nLeft := i + 1
			nRight := total - nLeft
			if nLeft < t.minSamplesLeaf || nRight < t.minSamplesLeaf {
				continue
			}

			weighted := (float64(nLeft)*t.impurity(leftCounts, nLeft) +
				float64(nRight)*t.impurity(rightCounts, nRight)) / float64(total)
			g := parentImpurity - weighted
			if g > bestGain {
				bestGain = g
				feature = f
				threshold = (samples[i].value + samples[i+1].value) / 2
				ok = true
			}
		}
	}

	return feature, threshold, bestGain, ok
}

func (t *DecisionTreeClassifier) impurity(counts []int, total int) float64 {
	if total == 0 {
		return 0
	}
	if t.criterion == "entropy" {
		return entropyFromCounts(counts, total)
	}
	return giniFromCounts(counts, total)
}

func giniFromCounts(counts []int, total int) float64 {
	sum := 0.0
	for _, c := range counts {
		p := float64(c) / float64(total)
		sum += p * p
	}
	return 1 - sum
}

func entropyFromCounts(counts []int, total int) float64 {
	h := 0.0
	for _, c := range counts {
		if c == 0 {
			continue
		}
		p := float64(c) / float64(total)
		h -= p * math.Log2(p)
	}
	return h
}

func (t *DecisionTreeClassifier) isPure(counts []int) bool {
	nonZero := 0
	for _, c := range counts {
		if c > 0 {
			nonZero++
		}
	}
	return nonZero <= 1
}

func probaFromCounts(counts []int, total int) []float64 {
	proba := make([]float64, len(counts))
	if total == 0 {
		return proba
	}
	for i, c := range counts {
		proba[i] = float64(c) / float64(total)
	}
	return proba
}

func argmaxInt(values []int) int {
	best := 0
	for i := 1; i < len(values); i++ {
		if values[i] > values[best] {
			best = i
		}
	}
	return best
}

// Predict returns the predicted class label for each row of X as an n×1
// matrix.
func (t *DecisionTreeClassifier) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !t.IsFitted() {
		return nil, errors.NewNotFittedError("DecisionTreeClassifier", "Predict")
	}

	rows, cols := X.Dims()
	if cols != t.nFeatures_ {
		return nil, errors.NewDimensionError("DecisionTreeClassifier.Predict", t.nFeatures_, cols, 1)
	}

	out := mat.NewDense(rows, 1, nil)
	parallel.ParallelizeWithThreshold(rows, predictParallelThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			leaf := t.traverse(X, i)
			out.Set(i, 0, t.classes_[leaf.pred])
		}
	})
	return out, nil
}

// PredictProba returns per-class probability estimates as an n×C matrix.
// Column j corresponds to class classes_[j].
func (t *DecisionTreeClassifier) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	if !t.IsFitted() {
		return nil, errors.NewNotFittedError("DecisionTreeClassifier", "PredictProba")
	}

	rows, cols := X.Dims()
	if cols != t.nFeatures_ {
		return nil, errors.NewDimensionError("DecisionTreeClassifier.PredictProba", t.nFeatures_, cols, 1)
	}

	out := mat.NewDense(rows, t.nClasses_, nil)
	parallel.ParallelizeWithThreshold(rows, predictParallelThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			leaf := t.traverse(X, i)
			out.SetRow(i, leaf.proba)
		}
	})
	return out, nil
}

func (t *DecisionTreeClassifier) traverse(X mat.Matrix, row int) *node {
	n := t.root
	for !n.isLeaf {
		if X.At(row, n.feature) <= n.threshold {
			n = n.left
		} else {
			n = n.right
		}
	}
	return n
}

// Score returns the mean accuracy on the given data and labels. It returns 0
// when prediction fails, e.g. on an unfitted model.
func (t *DecisionTreeClassifier) Score(X, y mat.Matrix) float64 {
	pred, err := t.Predict(X)
	if err != nil {
		return 0
	}

	rows, _ := y.Dims()
	if rows == 0 {
		return 0
	}
	correct := 0
	for i := 0; i < rows; i++ {
		if pred.At(i, 0) == y.At(i, 0) {
			correct++
		}
	}
	return float64(correct) / float64(rows)
}

// GetParams returns the hyperparameters under their sklearn names.
func (t *DecisionTreeClassifier) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"criterion":         t.criterion,
		"max_depth":         t.maxDepth,
		"min_samples_split": t.minSamplesSplit,
		"min_samples_leaf":  t.minSamplesLeaf,
	}
}

// SetParams updates hyperparameters from their sklearn names. Unknown names
// and wrong types are ValidationErrors. Fitted state is reset.
func (t *DecisionTreeClassifier) SetParams(params map[string]interface{}) error {
	for name, value := range params {
		switch name {
		case "criterion":
			s, ok := value.(string)
			if !ok {
				return errors.NewValidationError(name, "must be a string", value)
			}
			t.criterion = s
		case "max_depth":
			v, ok := toInt(value)
			if !ok {
				return errors.NewValidationError(name, "must be an integer", value)
			}
			t.maxDepth = v
		case "min_samples_split":
			v, ok := toInt(value)
			if !ok {
				return errors.NewValidationError(name, "must be an integer", value)
			}
			t.minSamplesSplit = v
		case "min_samples_leaf":
			v, ok := toInt(value)
			if !ok {
				return errors.NewValidationError(name, "must be an integer", value)
			}
			t.minSamplesLeaf = v
		default:
			return errors.NewValidationError(name, "unknown parameter", value)
		}
	}
	t.Reset()
	return nil
}

func toInt(value interface{}) (int, bool) {
	switch v := value.(type) {
	case int:
		return v, true
	case float64:
		if v == math.Trunc(v) {
			return int(v), true
		}
	}
	return 0, false
}

// GetDepth returns the depth of the fitted tree; a lone root has depth 0.
func (t *DecisionTreeClassifier) GetDepth() int {
	return nodeDepth(t.root)
}

func nodeDepth(n *node) int {
	if n == nil || n.isLeaf {
		return 0
	}
	left := nodeDepth(n.left)
	right := nodeDepth(n.right)
	if left > right {
		return left + 1
	}
	return right + 1
}

// GetNLeaves returns the number of leaves of the fitted tree.
func (t *DecisionTreeClassifier) GetNLeaves() int {
	return countLeaves(t.root)
}

func countLeaves(n *node) int {
	if n == nil {
		return 0
	}
	if n.isLeaf {
		return 1
	}
	return countLeaves(n.left) + countLeaves(n.right)
}

// GetFeatureImportances returns the normalized impurity-decrease importance
// of each feature. The values sum to 1 when any split was made.
func (t *DecisionTreeClassifier) GetFeatureImportances() []float64 {
	return append([]float64(nil), t.featureImportances_...)
}

// Classes returns the class labels seen during fitting, ascending.
func (t *DecisionTreeClassifier) Classes() []float64 {
	return append([]float64(nil), t.classes_...)
}

func (t *DecisionTreeClassifier) normalizeImportances() {
	sum := 0.0
	for _, v := range t.featureImportances_ {
		sum += v
	}
	if sum == 0 {
		return
	}
	for i := range t.featureImportances_ {
		t.featureImportances_[i] /= sum
	}
}

var _ model.Classifier = (*DecisionTreeClassifier)(nil)
var _ model.ParameterGetter = (*DecisionTreeClassifier)(nil)
var _ model.ParameterSetter = (*DecisionTreeClassifier)(nil)
