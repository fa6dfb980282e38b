// Package dataset loads the Iris table from a delimited file into gonum
// matrices plus the raw species strings. Rows are immutable after loading.
package dataset

import (
	"gonum.org/v1/gonum/mat"
)

// Feature column names expected in the input header. Extra columns such as
// an Id counter are ignored by the loader.
const (
	SepalLengthCol = "SepalLengthCm"
	SepalWidthCol  = "SepalWidthCm"
	PetalLengthCol = "PetalLengthCm"
	PetalWidthCol  = "PetalWidthCm"
	SpeciesCol     = "Species"
)

// FeatureColumns returns the feature column names in file order.
func FeatureColumns() []string {
	return []string{SepalLengthCol, SepalWidthCol, PetalLengthCol, PetalWidthCol}
}

// Table is one loaded dataset: the numeric feature matrix in file column
// order and the categorical species label per row.
type Table struct {
	// Columns holds the feature column names, aligned with the matrix columns.
	Columns []string

	// Features is the n×4 numeric feature matrix.
	Features *mat.Dense

	// Species holds the raw categorical label per row.
	Species []string
}

// NumRows returns the number of samples in the table.
func (t *Table) NumRows() int {
	if t.Features == nil {
		return 0
	}
	r, _ := t.Features.Dims()
	return r
}

// NumFeatures returns the number of feature columns.
func (t *Table) NumFeatures() int {
	return len(t.Columns)
}

// Head returns up to n leading rows as feature values plus species, for
// previews.
func (t *Table) Head(n int) ([][]float64, []string) {
	rows := t.NumRows()
	if n > rows {
		n = rows
	}
	features := make([][]float64, n)
	species := make([]string, n)
	for i := 0; i < n; i++ {
		features[i] = mat.Row(nil, i, t.Features)
		species[i] = t.Species[i]
	}
	return features, species
}

// Select returns a new table holding the given rows, in order. Indices must
// be valid for the table.
func (t *Table) Select(indices []int) *Table {
	features := mat.NewDense(len(indices), len(t.Columns), nil)
	species := make([]string, len(indices))
	for i, idx := range indices {
		features.SetRow(i, mat.Row(nil, idx, t.Features))
		species[i] = t.Species[idx]
	}
	return &Table{
		Columns:  append([]string(nil), t.Columns...),
		Features: features,
		Species:  species,
	}
}
