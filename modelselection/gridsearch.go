package modelselection

import (
	"strconv"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/yotsuba-lab/iristree/core/model"
	"github.com/yotsuba-lab/iristree/core/parallel"
	"github.com/yotsuba-lab/iristree/pipeline"
	"github.com/yotsuba-lab/iristree/pkg/errors"
	"github.com/yotsuba-lab/iristree/pkg/log"
)

// PipelineFactory builds a fresh unfitted pipeline for one candidate fit.
type PipelineFactory func() *pipeline.Pipeline

// CandidateResult holds the cross-validation scores of one parameter
// combination.
type CandidateResult struct {
	Params     map[string]interface{}
	FoldScores []float64
	MeanScore  float64
	StdScore   float64
}

// GridSearchCV exhaustively evaluates every combination of a parameter grid
// with k-fold cross-validation and refits the best combination on the full
// training data. Folds of one candidate are evaluated concurrently. When
// two candidates tie on mean score, the earlier one in grid order wins.
type GridSearchCV struct {
	model.BaseEstimator
	logger log.Logger

	factory PipelineFactory
	grid    *ParamGrid
	cv      Splitter

	results      []CandidateResult
	bestIndex    int
	bestPipeline *pipeline.Pipeline
}

// NewGridSearchCV creates a grid search over the given factory, grid and
// splitter.
func NewGridSearchCV(factory PipelineFactory, grid *ParamGrid, cv Splitter, logger log.Logger) *GridSearchCV {
	return &GridSearchCV{
		logger:    logger,
		factory:   factory,
		grid:      grid,
		cv:        cv,
		bestIndex: -1,
	}
}

// Fit runs the search on the full training data (X, y). Each candidate is
// scored by mean fold accuracy; the winner is refit on all of (X, y).
func (gs *GridSearchCV) Fit(X, y mat.Matrix) error {
	candidates := gs.grid.Candidates()
	if len(candidates) == 0 {
		return errors.NewValidationError("grid search", "parameter grid must not be empty", nil)
	}

	folds := gs.cv.Split(X, y)
	if err := validateFolds(folds, y); err != nil {
		return err
	}

	start := time.Now()
	gs.results = make([]CandidateResult, len(candidates))
	gs.bestIndex = -1
	bestScore := 0.0

	for ci, params := range candidates {
		scores, err := gs.evaluateCandidate(params, folds, X, y)
		if err != nil {
			return err
		}

		result := CandidateResult{
			Params:     params,
			FoldScores: scores,
			MeanScore:  meanScore(scores),
			StdScore:   stdScore(scores),
		}
		gs.results[ci] = result

		gs.logger.Info("evaluated candidate",
			log.CandidateKey, FormatParams(params),
			log.FoldsKey, len(scores),
			log.MeanScoreKey, result.MeanScore)

		// Strict improvement only, so the first candidate keeps a tie.
		if gs.bestIndex < 0 || result.MeanScore > bestScore {
			gs.bestIndex = ci
			bestScore = result.MeanScore
		}
	}

	best := gs.factory()
	if err := best.SetParams(gs.results[gs.bestIndex].Params); err != nil {
		return errors.Wrap(err, "failed to apply best parameters")
	}
	if err := best.Fit(X, y); err != nil {
		return errors.Wrap(err, "failed to refit best pipeline")
	}
	gs.bestPipeline = best

	gs.logger.Info("grid search finished",
		log.CandidateKey, FormatParams(gs.results[gs.bestIndex].Params),
		log.MeanScoreKey, bestScore,
		log.DurationMsKey, time.Since(start).Milliseconds())

	gs.SetFitted()
	return nil
}

// evaluateCandidate fits one parameter combination on every fold
// concurrently and returns the per-fold test scores in fold order. A fold
// whose fit fails turns into a DegenerateFoldError naming the candidate.
func (gs *GridSearchCV) evaluateCandidate(params map[string]interface{}, folds []CVFold, X, y mat.Matrix) ([]float64, error) {
	scores := make([]float64, len(folds))
	errs := make([]error, len(folds))

	parallel.Parallelize(len(folds), func(start, end int) {
		for idx := start; idx < end; idx++ {
			errs[idx] = errors.SafeExecute("grid search fold "+strconv.Itoa(idx), func() error {
				fold := folds[idx]
				trainX, trainY := extractSubset(X, y, fold.TrainIndices)
				testX, testY := extractSubset(X, y, fold.TestIndices)

				p := gs.factory()
				if err := p.SetParams(params); err != nil {
					return err
				}
				if err := p.Fit(trainX, trainY); err != nil {
					return errors.NewDegenerateFoldError(FormatParams(params), idx, err.Error())
				}
				scores[idx] = p.Score(testX, testY)
				return nil
			})
		}
	})

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return scores, nil
}

// validateFolds rejects folds whose partitions cannot produce a meaningful
// score before any candidate is fit.
func validateFolds(folds []CVFold, y mat.Matrix) error {
	for i, fold := range folds {
		if len(fold.TestIndices) == 0 {
			return errors.NewDegenerateFoldError("all", i, "empty test partition")
		}
		classes := make(map[float64]struct{})
		for _, idx := range fold.TrainIndices {
			classes[y.At(idx, 0)] = struct{}{}
		}
		if len(classes) < 2 {
			return errors.NewDegenerateFoldError("all", i,
				"training partition holds fewer than two classes")
		}
	}
	return nil
}

// BestParams returns the winning parameter combination.
func (gs *GridSearchCV) BestParams() map[string]interface{} {
	if gs.bestIndex < 0 {
		return nil
	}
	return gs.results[gs.bestIndex].Params
}

// BestScore returns the winning candidate's mean fold score.
func (gs *GridSearchCV) BestScore() float64 {
	if gs.bestIndex < 0 {
		return 0
	}
	return gs.results[gs.bestIndex].MeanScore
}

// BestPipeline returns the pipeline refit on the full training data.
func (gs *GridSearchCV) BestPipeline() *pipeline.Pipeline {
	return gs.bestPipeline
}

// Results returns every candidate's scores in grid order.
func (gs *GridSearchCV) Results() []CandidateResult {
	return gs.results
}

// Predict delegates to the refit best pipeline.
func (gs *GridSearchCV) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !gs.IsFitted() {
		return nil, errors.NewNotFittedError("GridSearchCV", "Predict")
	}
	return gs.bestPipeline.Predict(X)
}

// Score delegates to the refit best pipeline.
func (gs *GridSearchCV) Score(X, y mat.Matrix) float64 {
	if !gs.IsFitted() {
		return 0
	}
	return gs.bestPipeline.Score(X, y)
}
