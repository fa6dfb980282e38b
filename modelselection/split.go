package modelselection

import (
	"math"
	"math/rand/v2"
	"strconv"

	"gonum.org/v1/gonum/mat"

	"github.com/yotsuba-lab/iristree/pkg/errors"
)

// TrainTestSplit shuffles the sample indices 0..nSamples-1 with a seeded
// generator and partitions them into train and test sets. testSize is the
// fraction held out, rounded to the nearest sample count. The same seed
// always yields the same partition.
func TrainTestSplit(nSamples int, testSize float64, randomSeed int) (trainIndices, testIndices []int, err error) {
	if nSamples <= 0 {
		return nil, nil, errors.NewValueError("TrainTestSplit", "nSamples must be positive")
	}
	if testSize <= 0 || testSize >= 1 {
		return nil, nil, errors.NewValueError("TrainTestSplit",
			"testSize must be in (0, 1), got "+strconv.FormatFloat(testSize, 'g', -1, 64))
	}

	nTest := int(math.Round(float64(nSamples) * testSize))
	if nTest == 0 || nTest == nSamples {
		return nil, nil, errors.NewValueError("TrainTestSplit",
			"testSize leaves an empty partition for "+strconv.Itoa(nSamples)+" samples")
	}

	indices := make([]int, nSamples)
	for i := range indices {
		indices[i] = i
	}
	r := rand.New(rand.NewPCG(uint64(randomSeed), uint64(randomSeed)))
	r.Shuffle(len(indices), func(i, j int) {
		indices[i], indices[j] = indices[j], indices[i]
	})

	return indices[nTest:], indices[:nTest], nil
}

// TrainTestSplitMatrix splits X and y row-wise by TrainTestSplit.
func TrainTestSplitMatrix(X, y mat.Matrix, testSize float64, randomSeed int) (XTrain, XTest, yTrain, yTest mat.Matrix, err error) {
	rows, _ := X.Dims()
	yRows, _ := y.Dims()
	if yRows != rows {
		return nil, nil, nil, nil, errors.NewDimensionError("TrainTestSplitMatrix", rows, yRows, 0)
	}

	trainIdx, testIdx, err := TrainTestSplit(rows, testSize, randomSeed)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	XTrain, yTrain = extractSubset(X, y, trainIdx)
	XTest, yTest = extractSubset(X, y, testIdx)
	return XTrain, XTest, yTrain, yTest, nil
}
