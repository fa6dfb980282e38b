package main

import (
	"io"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mat"

	"github.com/yotsuba-lab/iristree/dataset"
	"github.com/yotsuba-lab/iristree/internal/config"
	"github.com/yotsuba-lab/iristree/modelselection"
	"github.com/yotsuba-lab/iristree/pipeline"
	"github.com/yotsuba-lab/iristree/pkg/log"
	"github.com/yotsuba-lab/iristree/preprocessing"
	"github.com/yotsuba-lab/iristree/report"
	"github.com/yotsuba-lab/iristree/tree"
)

func buildTrainCmd() *cobra.Command {
	var (
		configPath string
		dataPath   string
		logLevel   string
	)

	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train and evaluate the Iris decision tree workflow",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(configPath, dataPath, logLevel)
			if err != nil {
				return err
			}
			return runTrain(cfg, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file")
	cmd.Flags().StringVarP(&dataPath, "data", "d", "", "path to the Iris CSV file")
	cmd.Flags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn or error")
	return cmd
}

// loadConfig merges the optional config file with command-line overrides.
func loadConfig(configPath, dataPath, logLevel string) (*config.Config, error) {
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if dataPath != "" {
		cfg.Data.Path = dataPath
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// runTrain executes the full workflow: load, index, split, search, evaluate
// and report.
func runTrain(cfg *config.Config, out io.Writer) error {
	runID := uuid.NewString()
	provider := log.NewZerologProvider(log.ToLogLevel(cfg.Logging.Level))
	pipeline.SetLoggerProvider(provider)
	logger := provider.GetLoggerWithName("train").With(log.RunIDKey, runID)

	table, err := dataset.Load(cfg.Data.Path)
	if err != nil {
		return err
	}
	logger.Info("loaded dataset",
		log.SamplesKey, table.NumRows(),
		log.FeaturesKey, table.NumFeatures())

	// Index species labels by descending frequency over the full column so
	// the mapping does not depend on the split.
	indexer := preprocessing.NewLabelIndexer()
	y, err := indexer.FitTransform(table.Species)
	if err != nil {
		return err
	}
	logger.Info("indexed labels", log.ClassesKey, indexer.NumClasses())

	XTrain, XTest, yTrain, yTest, err := modelselection.TrainTestSplitMatrix(
		table.Features, y, cfg.Split.TestSize, cfg.Split.RandomSeed)
	if err != nil {
		return err
	}
	trainRows, _ := XTrain.Dims()
	testRows, _ := XTest.Dims()
	logger.Info("split data",
		log.PhaseKey, log.PhaseTraining,
		log.RandomSeedKey, cfg.Split.RandomSeed,
		"train_rows", trainRows,
		"test_rows", testRows)

	factory, err := pipelineFactory(table.Columns)
	if err != nil {
		return err
	}

	grid := modelselection.NewParamGrid().
		Add("tree__max_depth", toInterfaces(cfg.Grid.MaxDepths)...).
		Add("tree__criterion", toInterfacesString(cfg.Grid.Criteria)...)

	var cv modelselection.Splitter
	if cfg.CV.IsStratified() {
		cv = modelselection.NewStratifiedKFold(cfg.CV.Folds, true, cfg.Split.RandomSeed)
	} else {
		cv = modelselection.NewKFold(cfg.CV.Folds, true, cfg.Split.RandomSeed)
	}

	gs := modelselection.NewGridSearchCV(factory, grid, cv, logger)
	if err := gs.Fit(XTrain, yTrain); err != nil {
		return err
	}

	preds, err := gs.Predict(XTest)
	if err != nil {
		return err
	}
	eval, err := report.Evaluate(yTest, preds)
	if err != nil {
		return err
	}
	logger.Info("evaluated held-out split",
		log.PhaseKey, log.PhaseTesting,
		log.AccuracyKey, eval.Accuracy)

	summary, err := buildSummary(cfg, runID, table, indexer, gs, eval, XTest, yTest, preds)
	if err != nil {
		return err
	}
	return report.Render(out, summary)
}

// pipelineFactory returns a factory producing the assembler+tree pipeline.
// The assembler construction is validated once up front; later calls cannot
// fail with the same inputs.
func pipelineFactory(schema []string) (modelselection.PipelineFactory, error) {
	featureCols := dataset.FeatureColumns()
	if _, err := preprocessing.NewFeatureAssembler(schema, featureCols); err != nil {
		return nil, err
	}

	return func() *pipeline.Pipeline {
		assembler, _ := preprocessing.NewFeatureAssembler(schema, featureCols)
		return pipeline.New(
			pipeline.Step{Name: "features", Estimator: assembler},
			pipeline.Step{Name: "tree", Estimator: tree.NewDecisionTreeClassifier()},
		)
	}, nil
}

func buildSummary(cfg *config.Config, runID string, table *dataset.Table,
	indexer *preprocessing.LabelIndexer, gs *modelselection.GridSearchCV,
	eval *report.Evaluation, XTest, yTest, preds mat.Matrix) (*report.Summary, error) {

	actual, err := indexer.InverseTransform(yTest)
	if err != nil {
		return nil, err
	}
	predicted, err := indexer.InverseTransform(preds)
	if err != nil {
		return nil, err
	}

	sampleRows := cfg.Report.SamplePredictions
	testRows, _ := XTest.Dims()
	if sampleRows > testRows {
		sampleRows = testRows
	}
	samples := make([]report.SamplePrediction, sampleRows)
	_, nFeatures := XTest.Dims()
	for i := 0; i < sampleRows; i++ {
		features := make([]float64, nFeatures)
		for j := 0; j < nFeatures; j++ {
			features[j] = XTest.At(i, j)
		}
		samples[i] = report.SamplePrediction{
			Features:  features,
			Actual:    actual[i],
			Predicted: predicted[i],
		}
	}

	previewFeatures, previewLabels := table.Head(cfg.Report.PreviewRows)

	return &report.Summary{
		RunID:             runID,
		DataPath:          cfg.Data.Path,
		FeatureColumns:    dataset.FeatureColumns(),
		PreviewFeatures:   previewFeatures,
		PreviewLabels:     previewLabels,
		BestParams:        gs.BestParams(),
		BestCVScore:       gs.BestScore(),
		Evaluation:        eval,
		ClassNames:        indexer.Classes(),
		SamplePredictions: samples,
	}, nil
}

func toInterfaces(values []int) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

func toInterfacesString(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
