package preprocessing

import (
	"gonum.org/v1/gonum/mat"

	"github.com/yotsuba-lab/iristree/core/model"
	"github.com/yotsuba-lab/iristree/pkg/errors"
)

// FeatureAssembler selects named numeric columns from a matrix whose columns
// follow a known schema and concatenates them into one feature vector per
// row, preserving the declared column order. It is deterministic and holds
// no state beyond the resolved column indices.
type FeatureAssembler struct {
	model.BaseEstimator

	schema    []string
	inputCols []string
	indices   []int
}

// NewFeatureAssembler resolves inputCols against the schema. An input column
// missing from the schema is a ValidationError.
func NewFeatureAssembler(schema, inputCols []string) (*FeatureAssembler, error) {
	if len(inputCols) == 0 {
		return nil, errors.NewValidationError("inputCols", "must not be empty", inputCols)
	}

	pos := make(map[string]int, len(schema))
	for i, name := range schema {
		pos[name] = i
	}

	indices := make([]int, len(inputCols))
	for i, name := range inputCols {
		idx, ok := pos[name]
		if !ok {
			return nil, errors.NewValidationError("inputCols", "column not in schema", name)
		}
		indices[i] = idx
	}

	return &FeatureAssembler{
		schema:    append([]string(nil), schema...),
		inputCols: append([]string(nil), inputCols...),
		indices:   indices,
	}, nil
}

// Fit validates the input width against the schema.
func (a *FeatureAssembler) Fit(X mat.Matrix) error {
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return errors.NewModelError("FeatureAssembler.Fit", "empty data", errors.ErrEmptyData)
	}
	if c != len(a.schema) {
		return errors.NewDimensionError("FeatureAssembler.Fit", len(a.schema), c, 1)
	}
	a.SetFitted()
	return nil
}

// Transform selects the input columns in declared order.
func (a *FeatureAssembler) Transform(X mat.Matrix) (mat.Matrix, error) {
	if !a.IsFitted() {
		return nil, errors.NewNotFittedError("FeatureAssembler", "Transform")
	}

	r, c := X.Dims()
	if c != len(a.schema) {
		return nil, errors.NewDimensionError("FeatureAssembler.Transform", len(a.schema), c, 1)
	}

	out := mat.NewDense(r, len(a.indices), nil)
	for i := 0; i < r; i++ {
		for j, srcCol := range a.indices {
			out.Set(i, j, X.At(i, srcCol))
		}
	}
	return out, nil
}

// FitTransform runs Fit then Transform on the same data.
func (a *FeatureAssembler) FitTransform(X mat.Matrix) (mat.Matrix, error) {
	if err := a.Fit(X); err != nil {
		return nil, err
	}
	return a.Transform(X)
}

// InputColumns returns the assembled column names in output order.
func (a *FeatureAssembler) InputColumns() []string {
	return append([]string(nil), a.inputCols...)
}

var _ model.Transformer = (*FeatureAssembler)(nil)
