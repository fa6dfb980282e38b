// Package preprocessing holds the data preparation steps of the workflow:
// the categorical label indexer and the feature vector assembler.
package preprocessing

import (
	"sort"
	"strconv"

	"gonum.org/v1/gonum/mat"

	"github.com/yotsuba-lab/iristree/core/model"
	"github.com/yotsuba-lab/iristree/pkg/errors"
)

// LabelIndexer maps categorical labels to contiguous numeric indices
// 0..C-1, ordered by descending frequency in the fitted data. Ties are
// broken by first-encounter order, so the mapping is deterministic for a
// given input. The inverse mapping recovers the original strings.
type LabelIndexer struct {
	model.BaseEstimator

	classes []string
	index   map[string]int
}

// NewLabelIndexer creates an unfitted LabelIndexer.
func NewLabelIndexer() *LabelIndexer {
	return &LabelIndexer{}
}

// Fit learns the category-to-index mapping from the given labels.
func (l *LabelIndexer) Fit(labels []string) error {
	if len(labels) == 0 {
		return errors.NewModelError("LabelIndexer.Fit", "empty labels", errors.ErrEmptyData)
	}

	counts := make(map[string]int)
	firstSeen := make(map[string]int)
	var order []string
	for i, label := range labels {
		if _, ok := counts[label]; !ok {
			firstSeen[label] = i
			order = append(order, label)
		}
		counts[label]++
	}

	// order is in first-encounter order; a stable sort by descending count
	// keeps that order among ties.
	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})

	l.classes = order
	l.index = make(map[string]int, len(order))
	for i, label := range order {
		l.index[label] = i
	}

	l.SetFitted()
	return nil
}

// Transform converts labels to their numeric indices as an n×1 matrix.
// A label not seen during Fit returns an UnseenCategoryError.
func (l *LabelIndexer) Transform(labels []string) (*mat.Dense, error) {
	if !l.IsFitted() {
		return nil, errors.NewNotFittedError("LabelIndexer", "Transform")
	}

	out := mat.NewDense(len(labels), 1, nil)
	for i, label := range labels {
		idx, ok := l.index[label]
		if !ok {
			return nil, errors.NewUnseenCategoryError("LabelIndexer", label)
		}
		out.Set(i, 0, float64(idx))
	}
	return out, nil
}

// FitTransform fits the indexer and transforms the same labels.
func (l *LabelIndexer) FitTransform(labels []string) (*mat.Dense, error) {
	if err := l.Fit(labels); err != nil {
		return nil, err
	}
	return l.Transform(labels)
}

// InverseTransform maps numeric indices back to the original label strings.
// Indices must be whole numbers in [0, C).
func (l *LabelIndexer) InverseTransform(indices mat.Matrix) ([]string, error) {
	if !l.IsFitted() {
		return nil, errors.NewNotFittedError("LabelIndexer", "InverseTransform")
	}

	rows, cols := indices.Dims()
	if cols != 1 {
		return nil, errors.NewDimensionError("LabelIndexer.InverseTransform", 1, cols, 1)
	}

	out := make([]string, rows)
	for i := 0; i < rows; i++ {
		v := indices.At(i, 0)
		idx := int(v)
		if float64(idx) != v || idx < 0 || idx >= len(l.classes) {
			return nil, errors.NewValueError("LabelIndexer.InverseTransform",
				"index out of range or not a whole number: "+strconv.FormatFloat(v, 'g', -1, 64))
		}
		out[i] = l.classes[idx]
	}
	return out, nil
}

// Classes returns the learned categories ordered by index.
func (l *LabelIndexer) Classes() []string {
	return append([]string(nil), l.classes...)
}

// NumClasses returns the number of distinct categories seen during Fit.
func (l *LabelIndexer) NumClasses() int {
	return len(l.classes)
}
