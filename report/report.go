// Package report renders a plain-text summary of a classification run:
// data preview, winning parameters, held-out metrics, sample predictions
// and the labeled confusion matrix.
package report

import (
	"fmt"
	"io"
	"text/tabwriter"

	"gonum.org/v1/gonum/mat"

	"github.com/yotsuba-lab/iristree/metrics"
	"github.com/yotsuba-lab/iristree/modelselection"
	"github.com/yotsuba-lab/iristree/pkg/errors"
)

// Evaluation bundles the held-out metrics of a fitted model.
type Evaluation struct {
	Accuracy  float64
	Precision float64
	Recall    float64
	F1        float64
	Confusion *metrics.ConfusionMatrix
}

// Evaluate computes accuracy, weighted precision, recall and F1, and the
// confusion matrix for true and predicted labels.
func Evaluate(yTrue, yPred mat.Matrix) (*Evaluation, error) {
	accuracy, err := metrics.AccuracyMatrix(yTrue, yPred)
	if err != nil {
		return nil, errors.Wrap(err, "failed to compute accuracy")
	}
	precision, err := metrics.PrecisionScore(yTrue, yPred, metrics.AverageWeighted)
	if err != nil {
		return nil, errors.Wrap(err, "failed to compute precision")
	}
	recall, err := metrics.RecallScore(yTrue, yPred, metrics.AverageWeighted)
	if err != nil {
		return nil, errors.Wrap(err, "failed to compute recall")
	}
	f1, err := metrics.F1Score(yTrue, yPred, metrics.AverageWeighted)
	if err != nil {
		return nil, errors.Wrap(err, "failed to compute f1")
	}
	confusion, err := metrics.NewConfusionMatrix(yTrue, yPred)
	if err != nil {
		return nil, errors.Wrap(err, "failed to compute confusion matrix")
	}

	return &Evaluation{
		Accuracy:  accuracy,
		Precision: precision,
		Recall:    recall,
		F1:        f1,
		Confusion: confusion,
	}, nil
}

// SamplePrediction is one evaluated row shown in the report.
type SamplePrediction struct {
	Features  []float64
	Actual    string
	Predicted string
}

// Summary is everything the report renders.
type Summary struct {
	RunID          string
	DataPath       string
	FeatureColumns []string

	PreviewFeatures [][]float64
	PreviewLabels   []string

	BestParams  map[string]interface{}
	BestCVScore float64

	Evaluation *Evaluation
	// ClassNames maps class index to its original label for the
	// confusion matrix axes.
	ClassNames []string

	SamplePredictions []SamplePrediction
}

// Render writes the full text report.
func Render(w io.Writer, s *Summary) error {
	if s.Evaluation == nil {
		return errors.NewValueError("report.Render", "summary has no evaluation")
	}

	fmt.Fprintf(w, "Iris decision tree report (run %s)\n", s.RunID)
	fmt.Fprintf(w, "data: %s\n\n", s.DataPath)

	if len(s.PreviewFeatures) > 0 {
		fmt.Fprintf(w, "Data preview (%d rows)\n", len(s.PreviewFeatures))
		renderPreview(w, s)
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, "Best parameters")
	fmt.Fprintf(w, "  %s\n", modelselection.FormatParams(s.BestParams))
	fmt.Fprintf(w, "  mean CV accuracy: %.4f\n\n", s.BestCVScore)

	fmt.Fprintln(w, "Held-out metrics (weighted)")
	fmt.Fprintf(w, "  accuracy:  %.4f\n", s.Evaluation.Accuracy)
	fmt.Fprintf(w, "  precision: %.4f\n", s.Evaluation.Precision)
	fmt.Fprintf(w, "  recall:    %.4f\n", s.Evaluation.Recall)
	fmt.Fprintf(w, "  f1:        %.4f\n\n", s.Evaluation.F1)

	if len(s.SamplePredictions) > 0 {
		fmt.Fprintf(w, "Sample predictions (%d rows)\n", len(s.SamplePredictions))
		renderSamples(w, s)
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, "Confusion matrix (rows: actual, columns: predicted)")
	return renderConfusion(w, s)
}

func renderPreview(w io.Writer, s *Summary) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, col := range s.FeatureColumns {
		fmt.Fprintf(tw, "%s\t", col)
	}
	fmt.Fprintln(tw, "Species")
	for i, row := range s.PreviewFeatures {
		for _, v := range row {
			fmt.Fprintf(tw, "%.1f\t", v)
		}
		fmt.Fprintln(tw, s.PreviewLabels[i])
	}
	tw.Flush()
}

func renderSamples(w io.Writer, s *Summary) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, col := range s.FeatureColumns {
		fmt.Fprintf(tw, "%s\t", col)
	}
	fmt.Fprintln(tw, "Actual\tPredicted")
	for _, sp := range s.SamplePredictions {
		for _, v := range sp.Features {
			fmt.Fprintf(tw, "%.1f\t", v)
		}
		fmt.Fprintf(tw, "%s\t%s\n", sp.Actual, sp.Predicted)
	}
	tw.Flush()
}

// renderConfusion prints the counts with class-name axes. ClassNames maps
// a numeric class index to its label; classes missing from the evaluated
// set simply do not appear.
func renderConfusion(w io.Writer, s *Summary) error {
	cm := s.Evaluation.Confusion

	names := make([]string, len(cm.Classes))
	for i, class := range cm.Classes {
		idx := int(class)
		if float64(idx) != class || idx < 0 || idx >= len(s.ClassNames) {
			return errors.NewValueError("report.Render",
				fmt.Sprintf("no class name for label %g", class))
		}
		names[i] = s.ClassNames[idx]
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprint(tw, "actual \\ predicted")
	for _, name := range names {
		fmt.Fprintf(tw, "\t%s", name)
	}
	fmt.Fprintln(tw)

	for i, name := range names {
		fmt.Fprint(tw, name)
		for j := range names {
			fmt.Fprintf(tw, "\t%d", cm.Counts[i][j])
		}
		fmt.Fprintln(tw)
	}
	return tw.Flush()
}
