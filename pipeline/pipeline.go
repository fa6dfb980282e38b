// Package pipeline chains transformers with a final estimator behind a
// single Fit/Predict surface. Intermediate steps must be transformers; the
// final step is typically a classifier.
package pipeline

import (
	"strings"
	"sync"

	"gonum.org/v1/gonum/mat"

	"github.com/yotsuba-lab/iristree/core/model"
	"github.com/yotsuba-lab/iristree/pkg/errors"
	"github.com/yotsuba-lab/iristree/pkg/log"
)

// Guarded by a mutex; grid search workers construct pipelines concurrently.
var (
	providerMu     sync.Mutex
	globalProvider log.LoggerProvider
)

// Step is one named stage of a pipeline.
type Step struct {
	Name      string
	Estimator interface{}
}

// Pipeline applies its intermediate transformers in order and delegates
// Fit, Predict, PredictProba and Score to the final step.
type Pipeline struct {
	model.BaseEstimator
	logger log.Logger

	steps       []Step
	namedSteps_ map[string]interface{}
}

// New creates a pipeline from the given steps.
func New(steps ...Step) *Pipeline {
	namedSteps := make(map[string]interface{}, len(steps))
	for _, step := range steps {
		namedSteps[step.Name] = step.Estimator
	}

	return &Pipeline{
		steps:       steps,
		namedSteps_: namedSteps,
		logger:      loggerProvider().GetLoggerWithName("Pipeline"),
	}
}

// SetLoggerProvider replaces the provider used by pipelines created after
// the call. Tests use it to capture log output.
func SetLoggerProvider(provider log.LoggerProvider) {
	providerMu.Lock()
	globalProvider = provider
	providerMu.Unlock()
}

func loggerProvider() log.LoggerProvider {
	providerMu.Lock()
	defer providerMu.Unlock()
	if globalProvider == nil {
		globalProvider = log.NewZerologProvider(log.LevelInfo)
	}
	return globalProvider
}

// Fit fits and applies every intermediate transformer, then fits the final
// estimator on the transformed data.
func (p *Pipeline) Fit(X, y mat.Matrix) error {
	if len(p.steps) == 0 {
		return errors.NewValidationError("pipeline", "must have at least one step", nil)
	}

	Xt := X
	var err error
	for _, step := range p.steps[:len(p.steps)-1] {
		transformer, ok := step.Estimator.(model.Transformer)
		if !ok {
			return errors.NewValidationError("pipeline step",
				"all intermediate steps must be transformers", step.Name)
		}
		if err = transformer.Fit(Xt); err != nil {
			return errors.Wrapf(err, "failed to fit step %q", step.Name)
		}
		if Xt, err = transformer.Transform(Xt); err != nil {
			return errors.Wrapf(err, "failed to transform at step %q", step.Name)
		}
	}

	final := p.steps[len(p.steps)-1]
	fitter, ok := final.Estimator.(model.Fitter)
	if !ok {
		return errors.NewValidationError("pipeline final step",
			"final step must have a Fit method", final.Name)
	}
	if err = fitter.Fit(Xt, y); err != nil {
		return errors.Wrapf(err, "failed to fit final step %q", final.Name)
	}

	rows, cols := X.Dims()
	p.logger.Debug("pipeline fitted",
		log.SamplesKey, rows,
		log.FeaturesKey, cols,
		log.OperationKey, log.OperationFit)

	p.SetFitted()
	return nil
}

// Predict transforms X through the intermediate steps and predicts with the
// final estimator.
func (p *Pipeline) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !p.IsFitted() {
		return nil, errors.NewNotFittedError("Pipeline", "Predict")
	}

	Xt, err := p.transform(X)
	if err != nil {
		return nil, err
	}

	final := p.steps[len(p.steps)-1]
	predictor, ok := final.Estimator.(model.Predictor)
	if !ok {
		return nil, errors.NewValidationError("pipeline final step",
			"final step must have a Predict method", final.Name)
	}
	return predictor.Predict(Xt)
}

// PredictProba transforms X and returns the final estimator's probability
// estimates.
func (p *Pipeline) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	if !p.IsFitted() {
		return nil, errors.NewNotFittedError("Pipeline", "PredictProba")
	}

	Xt, err := p.transform(X)
	if err != nil {
		return nil, err
	}

	final := p.steps[len(p.steps)-1]
	classifier, ok := final.Estimator.(interface {
		PredictProba(mat.Matrix) (mat.Matrix, error)
	})
	if !ok {
		return nil, errors.NewValidationError("pipeline final step",
			"final step must have a PredictProba method", final.Name)
	}
	return classifier.PredictProba(Xt)
}

// Score transforms X and returns the final estimator's accuracy on (X, y).
// An unfitted pipeline or a final step without Score scores 0.
func (p *Pipeline) Score(X, y mat.Matrix) float64 {
	if !p.IsFitted() {
		return 0
	}

	Xt, err := p.transform(X)
	if err != nil {
		return 0
	}

	final := p.steps[len(p.steps)-1]
	scorer, ok := final.Estimator.(interface {
		Score(X, y mat.Matrix) float64
	})
	if !ok {
		return 0
	}
	return scorer.Score(Xt, y)
}

// GetParams returns the parameters of every step, keyed "name__param".
func (p *Pipeline) GetParams() map[string]interface{} {
	params := make(map[string]interface{})
	for _, step := range p.steps {
		getter, ok := step.Estimator.(model.ParameterGetter)
		if !ok {
			continue
		}
		for key, value := range getter.GetParams() {
			params[step.Name+"__"+key] = value
		}
	}
	return params
}

// SetParams routes "name__param" keys to the named step. An unknown step
// name or a step without SetParams is a ValidationError.
func (p *Pipeline) SetParams(params map[string]interface{}) error {
	perStep := make(map[string]map[string]interface{})
	for key, value := range params {
		stepName, paramName, ok := strings.Cut(key, "__")
		if !ok {
			return errors.NewValidationError("pipeline params",
				"keys must have the form \"step__param\"", key)
		}
		if _, exists := p.namedSteps_[stepName]; !exists {
			return errors.NewValidationError("pipeline params", "unknown step", stepName)
		}
		if perStep[stepName] == nil {
			perStep[stepName] = make(map[string]interface{})
		}
		perStep[stepName][paramName] = value
	}

	for stepName, stepParams := range perStep {
		setter, ok := p.namedSteps_[stepName].(model.ParameterSetter)
		if !ok {
			return errors.NewValidationError("pipeline params",
				"step does not accept parameters", stepName)
		}
		if err := setter.SetParams(stepParams); err != nil {
			return errors.Wrapf(err, "failed to set params on step %q", stepName)
		}
	}
	return nil
}

// NamedSteps returns the steps keyed by name.
func (p *Pipeline) NamedSteps() map[string]interface{} {
	return p.namedSteps_
}

// Steps returns a copy of the step list.
func (p *Pipeline) Steps() []Step {
	return append([]Step(nil), p.steps...)
}

// transform runs X through every step except the final estimator.
func (p *Pipeline) transform(X mat.Matrix) (mat.Matrix, error) {
	Xt := X
	var err error
	for _, step := range p.steps[:len(p.steps)-1] {
		transformer, ok := step.Estimator.(model.Transformer)
		if !ok {
			return nil, errors.NewValidationError("pipeline step",
				"intermediate steps must be transformers", step.Name)
		}
		if Xt, err = transformer.Transform(Xt); err != nil {
			return nil, errors.Wrapf(err, "failed to transform at step %q", step.Name)
		}
	}
	return Xt, nil
}
