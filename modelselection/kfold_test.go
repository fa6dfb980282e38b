package modelselection

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func checkDisjointAndCovering(t *testing.T, folds []CVFold, nSamples int) {
	t.Helper()

	seen := make(map[int]int)
	for fi, fold := range folds {
		trainSet := make(map[int]bool)
		for _, idx := range fold.TrainIndices {
			trainSet[idx] = true
		}
		for _, idx := range fold.TestIndices {
			if trainSet[idx] {
				t.Errorf("fold %d: index %d in both train and test", fi, idx)
			}
			seen[idx]++
		}
		if len(fold.TrainIndices)+len(fold.TestIndices) != nSamples {
			t.Errorf("fold %d: train+test = %d, want %d",
				fi, len(fold.TrainIndices)+len(fold.TestIndices), nSamples)
		}
	}

	for i := 0; i < nSamples; i++ {
		if seen[i] != 1 {
			t.Errorf("index %d appears in %d test partitions, want 1", i, seen[i])
		}
	}
}

func TestKFoldSplit(t *testing.T) {
	X := mat.NewDense(13, 1, nil)
	y := mat.NewDense(13, 1, nil)

	kf := NewKFold(5, true, 42)
	if kf.GetNSplits() != 5 {
		t.Fatalf("GetNSplits = %d, want 5", kf.GetNSplits())
	}

	folds := kf.Split(X, y)
	if len(folds) != 5 {
		t.Fatalf("got %d folds, want 5", len(folds))
	}
	checkDisjointAndCovering(t, folds, 13)

	// 13 samples in 5 folds: three folds of 3, two of 2.
	sizes := make(map[int]int)
	for _, fold := range folds {
		sizes[len(fold.TestIndices)]++
	}
	if sizes[3] != 3 || sizes[2] != 2 {
		t.Errorf("test partition sizes = %v, want three of 3 and two of 2", sizes)
	}
}

func TestKFoldDeterministic(t *testing.T) {
	X := mat.NewDense(20, 1, nil)

	a := NewKFold(4, true, 7).Split(X, nil)
	b := NewKFold(4, true, 7).Split(X, nil)

	for i := range a {
		if len(a[i].TestIndices) != len(b[i].TestIndices) {
			t.Fatalf("fold %d sizes differ", i)
		}
		for j := range a[i].TestIndices {
			if a[i].TestIndices[j] != b[i].TestIndices[j] {
				t.Fatalf("fold %d differs at %d with the same seed", i, j)
			}
		}
	}
}

func TestKFoldDefaultsToFive(t *testing.T) {
	if kf := NewKFold(1, false, 0); kf.GetNSplits() != 5 {
		t.Errorf("GetNSplits = %d, want fallback 5", kf.GetNSplits())
	}
}

func TestStratifiedKFoldPreservesRatios(t *testing.T) {
	// 12 samples, three classes of 4.
	X := mat.NewDense(12, 1, nil)
	y := mat.NewDense(12, 1, []float64{0, 0, 0, 0, 1, 1, 1, 1, 2, 2, 2, 2})

	skf := NewStratifiedKFold(4, true, 42)
	folds := skf.Split(X, y)
	if len(folds) != 4 {
		t.Fatalf("got %d folds, want 4", len(folds))
	}
	checkDisjointAndCovering(t, folds, 12)

	// Each test partition should hold exactly one sample per class.
	for fi, fold := range folds {
		perClass := make(map[float64]int)
		for _, idx := range fold.TestIndices {
			perClass[y.At(idx, 0)]++
		}
		for class, count := range perClass {
			if count != 1 {
				t.Errorf("fold %d: class %v appears %d times in test, want 1", fi, class, count)
			}
		}
	}
}

func TestExtractSubset(t *testing.T) {
	X := mat.NewDense(4, 2, []float64{
		1, 2,
		3, 4,
		5, 6,
		7, 8,
	})
	y := mat.NewDense(4, 1, []float64{10, 20, 30, 40})

	// Indices arrive unsorted; rows come back in ascending index order.
	subX, subY := extractSubset(X, y, []int{3, 0})
	if r, _ := subX.Dims(); r != 2 {
		t.Fatalf("rows = %d, want 2", r)
	}
	if subX.At(0, 0) != 1 || subX.At(1, 0) != 7 {
		t.Errorf("unexpected feature rows: %v, %v", subX.At(0, 0), subX.At(1, 0))
	}
	if subY.At(0, 0) != 10 || subY.At(1, 0) != 40 {
		t.Errorf("unexpected label rows: %v, %v", subY.At(0, 0), subY.At(1, 0))
	}
}

func TestMeanStdScore(t *testing.T) {
	scores := []float64{0.8, 1.0, 0.9}
	if got := meanScore(scores); math.Abs(got-0.9) > 1e-9 {
		t.Errorf("meanScore = %v, want 0.9", got)
	}
	if got := stdScore(scores); math.Abs(got-0.1) > 1e-9 {
		t.Errorf("stdScore = %v, want 0.1", got)
	}
	if got := stdScore([]float64{0.5}); got != 0 {
		t.Errorf("stdScore of one value = %v, want 0", got)
	}
}
