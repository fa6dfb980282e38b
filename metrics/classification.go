// Package metrics provides classification evaluation metrics: accuracy,
// averaged precision/recall/F1 and the confusion matrix.
package metrics

import (
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/yotsuba-lab/iristree/pkg/errors"
)

// Averaging strategies for multiclass precision, recall and F1.
const (
	AverageMacro    = "macro"
	AverageWeighted = "weighted"
)

// Accuracy computes the fraction of exactly matching predictions.
func Accuracy(yTrue, yPred *mat.VecDense) (float64, error) {
	if err := validateVectors(yTrue, yPred); err != nil {
		return 0, err
	}

	n := yTrue.Len()
	correct := 0
	for i := 0; i < n; i++ {
		if yTrue.AtVec(i) == yPred.AtVec(i) {
			correct++
		}
	}
	return float64(correct) / float64(n), nil
}

// AccuracyMatrix computes accuracy over matrix inputs, using the first
// column of each.
func AccuracyMatrix(yTrue, yPred mat.Matrix) (float64, error) {
	tVec, err := firstColumn("Accuracy", yTrue)
	if err != nil {
		return 0, err
	}
	pVec, err := firstColumn("Accuracy", yPred)
	if err != nil {
		return 0, err
	}
	return Accuracy(tVec, pVec)
}

// ClassificationError computes the fraction of mismatching predictions,
// i.e. 1 - Accuracy.
func ClassificationError(yTrue, yPred *mat.VecDense) (float64, error) {
	acc, err := Accuracy(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return 1 - acc, nil
}

// PrecisionScore computes multiclass precision averaged by the given
// strategy. A class that is never predicted contributes precision 0 and
// emits an UndefinedMetricWarning.
func PrecisionScore(yTrue, yPred mat.Matrix, average string) (float64, error) {
	cm, err := NewConfusionMatrix(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return cm.average("precision", average, cm.precisionPerClass())
}

// RecallScore computes multiclass recall averaged by the given strategy.
// A class with no true samples contributes recall 0 and emits an
// UndefinedMetricWarning.
func RecallScore(yTrue, yPred mat.Matrix, average string) (float64, error) {
	cm, err := NewConfusionMatrix(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return cm.average("recall", average, cm.recallPerClass())
}

// F1Score computes the multiclass F1 score, the harmonic mean of per-class
// precision and recall, averaged by the given strategy.
func F1Score(yTrue, yPred mat.Matrix, average string) (float64, error) {
	cm, err := NewConfusionMatrix(yTrue, yPred)
	if err != nil {
		return 0, err
	}

	precisions := cm.precisionPerClass()
	recalls := cm.recallPerClass()
	f1s := make([]float64, len(precisions))
	for i := range f1s {
		denom := precisions[i] + recalls[i]
		if denom == 0 {
			errors.Warn(errors.NewUndefinedMetricWarning("f1",
				"zero precision and recall for a class", 0))
			continue
		}
		f1s[i] = 2 * precisions[i] * recalls[i] / denom
	}
	return cm.average("f1", average, f1s)
}

// ConfusionMatrix holds per-class prediction counts. Counts[i][j] is the
// number of samples with true class Classes[i] predicted as Classes[j].
type ConfusionMatrix struct {
	Classes []float64
	Counts  [][]int
}

// NewConfusionMatrix builds a confusion matrix from true and predicted
// labels, both n×1 matrices. Classes are the union of labels seen in either
// input, in ascending order.
func NewConfusionMatrix(yTrue, yPred mat.Matrix) (*ConfusionMatrix, error) {
	tVec, err := firstColumn("ConfusionMatrix", yTrue)
	if err != nil {
		return nil, err
	}
	pVec, err := firstColumn("ConfusionMatrix", yPred)
	if err != nil {
		return nil, err
	}
	if err := validateVectors(tVec, pVec); err != nil {
		return nil, err
	}

	n := tVec.Len()
	classIndex := make(map[float64]int)
	var classes []float64
	register := func(v float64) int {
		idx, ok := classIndex[v]
		if !ok {
			idx = len(classes)
			classIndex[v] = idx
			classes = append(classes, v)
		}
		return idx
	}
	for i := 0; i < n; i++ {
		register(tVec.AtVec(i))
		register(pVec.AtVec(i))
	}
	sortClasses(classes, classIndex)

	counts := make([][]int, len(classes))
	for i := range counts {
		counts[i] = make([]int, len(classes))
	}
	for i := 0; i < n; i++ {
		counts[classIndex[tVec.AtVec(i)]][classIndex[pVec.AtVec(i)]]++
	}

	return &ConfusionMatrix{Classes: classes, Counts: counts}, nil
}

// Total returns the number of samples in the matrix.
func (cm *ConfusionMatrix) Total() int {
	total := 0
	for _, row := range cm.Counts {
		for _, c := range row {
			total += c
		}
	}
	return total
}

// Support returns the number of true samples of class i.
func (cm *ConfusionMatrix) Support(i int) int {
	sum := 0
	for _, c := range cm.Counts[i] {
		sum += c
	}
	return sum
}

func (cm *ConfusionMatrix) predicted(j int) int {
	sum := 0
	for i := range cm.Counts {
		sum += cm.Counts[i][j]
	}
	return sum
}

func (cm *ConfusionMatrix) precisionPerClass() []float64 {
	out := make([]float64, len(cm.Classes))
	for j := range cm.Classes {
		predicted := cm.predicted(j)
		if predicted == 0 {
			errors.Warn(errors.NewUndefinedMetricWarning("precision",
				"no predicted samples for a class", 0))
			continue
		}
		out[j] = errors.SafeDivide(float64(cm.Counts[j][j]), float64(predicted))
	}
	return out
}

func (cm *ConfusionMatrix) recallPerClass() []float64 {
	out := make([]float64, len(cm.Classes))
	for i := range cm.Classes {
		support := cm.Support(i)
		if support == 0 {
			errors.Warn(errors.NewUndefinedMetricWarning("recall",
				"no true samples for a class", 0))
			continue
		}
		out[i] = errors.SafeDivide(float64(cm.Counts[i][i]), float64(support))
	}
	return out
}

// average combines per-class values by the requested strategy. Weighted
// averaging weighs each class by its true sample count.
func (cm *ConfusionMatrix) average(metric, strategy string, values []float64) (float64, error) {
	switch strategy {
	case AverageMacro:
		sum := 0.0
		for _, v := range values {
			sum += v
		}
		return errors.SafeDivide(sum, float64(len(values))), nil
	case AverageWeighted:
		sum := 0.0
		total := 0
		for i, v := range values {
			support := cm.Support(i)
			sum += v * float64(support)
			total += support
		}
		return errors.SafeDivide(sum, float64(total)), nil
	default:
		return 0, errors.NewValueError(metric,
			"average must be \"macro\" or \"weighted\", got \""+strategy+"\"")
	}
}

func validateVectors(yTrue, yPred *mat.VecDense) error {
	if yTrue == nil || yPred == nil || yTrue.Len() == 0 || yPred.Len() == 0 {
		return errors.NewValueError("metrics", "input vectors must not be empty")
	}
	if yTrue.Len() != yPred.Len() {
		return errors.NewDimensionError("metrics", yTrue.Len(), yPred.Len(), 0)
	}
	return nil
}

// firstColumn extracts column 0 of a matrix as a vector.
func firstColumn(operation string, m mat.Matrix) (*mat.VecDense, error) {
	if m == nil {
		return nil, errors.NewValueError(operation, "input matrix must not be nil")
	}
	rows, cols := m.Dims()
	if rows == 0 || cols == 0 {
		return nil, errors.NewValueError(operation, "input matrix must not be empty")
	}
	vec := mat.NewVecDense(rows, nil)
	for i := 0; i < rows; i++ {
		vec.SetVec(i, m.At(i, 0))
	}
	return vec, nil
}

func sortClasses(classes []float64, index map[float64]int) {
	sort.Float64s(classes)
	for i, v := range classes {
		index[v] = i
	}
}
