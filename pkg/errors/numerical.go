package errors

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// CheckMatrixFinite returns a ValueError if the matrix contains NaN or Inf.
// Loaders and transformers use it to reject unusable feature data early.
func CheckMatrixFinite(operation string, m mat.Matrix) error {
	rows, cols := m.Dims()
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			v := m.At(i, j)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return NewValueError(operation, "matrix contains NaN or Inf values")
			}
		}
	}
	return nil
}

// SafeDivide divides with protection against a zero denominator. Metrics use
// it where a class has no support or no predictions.
func SafeDivide(numerator, denominator float64) float64 {
	if math.Abs(denominator) < 1e-10 {
		return 0
	}
	return numerator / denominator
}
