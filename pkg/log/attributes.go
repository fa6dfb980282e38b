// Standard attribute keys for workflow logging. Using these keys keeps log
// output filterable across components.

package log

// Model and operation context.
const (
	// ModelNameKey identifies the estimator type.
	// Examples: "DecisionTreeClassifier", "Pipeline", "LabelIndexer"
	ModelNameKey = "model.name"

	// OperationKey specifies the operation being performed.
	// Standard values: "fit", "predict", "transform", "score"
	OperationKey = "ml.operation"

	// ComponentKey identifies which package is performing the operation.
	// Examples: "tree", "preprocessing", "modelselection"
	ComponentKey = "ml.component"

	// PhaseKey indicates the workflow phase.
	// Examples: "training", "validation", "testing"
	PhaseKey = "ml.phase"

	// RunIDKey carries the unique identifier of one workflow run.
	RunIDKey = "run.id"
)

// Data shape.
const (
	// SamplesKey is the number of samples (rows) being processed.
	SamplesKey = "data.samples"

	// FeaturesKey is the number of features (columns) being processed.
	FeaturesKey = "data.features"

	// ClassesKey is the number of distinct target classes.
	ClassesKey = "data.classes"
)

// Model selection context.
const (
	// CandidateKey identifies a hyperparameter combination under evaluation.
	CandidateKey = "cv.candidate"

	// FoldKey is the zero-based index of the cross-validation fold.
	FoldKey = "cv.fold"

	// FoldsKey is the total number of cross-validation folds.
	FoldsKey = "cv.folds"

	// MeanScoreKey is the mean held-out score across folds for a candidate.
	MeanScoreKey = "cv.mean_score"
)

// Performance and metrics.
const (
	// DurationMsKey records the execution time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"

	// AccuracyKey records classification accuracy, range [0, 1].
	AccuracyKey = "metrics.accuracy"
)

// Configuration.
const (
	// RandomSeedKey records the random seed for reproducibility.
	RandomSeedKey = "config.random_seed"
)

// Standard attribute value constants for common operations.
const (
	OperationFit       = "fit"
	OperationPredict   = "predict"
	OperationTransform = "transform"
	OperationScore     = "score"

	PhaseTraining   = "training"
	PhaseValidation = "validation"
	PhaseTesting    = "testing"
)
