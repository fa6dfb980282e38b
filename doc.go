// Package iristree implements a cross-validated decision tree workflow for
// the classic Iris dataset, with a scikit-learn-like API.
//
// The library is organized around small composable packages:
//
//   - dataset loads the Iris CSV into a feature matrix and label column
//   - preprocessing indexes species labels and assembles feature vectors
//   - tree is a CART decision tree classifier (gini or entropy)
//   - pipeline chains transformers with a final estimator
//   - modelselection provides train/test splits, k-fold cross-validation
//     and exhaustive grid search
//   - metrics and report evaluate a fitted model and render a text summary
//
// # Quick Start
//
// Train a classifier on a feature matrix:
//
//	dt := tree.NewDecisionTreeClassifier(
//	    tree.WithCriterion("gini"),
//	    tree.WithMaxDepth(4),
//	)
//	if err := dt.Fit(X, y); err != nil {
//	    log.Fatal(err)
//	}
//	predictions, err := dt.Predict(XTest)
//
// The cmd/iristree command runs the full workflow: load, index labels,
// split, grid-search tree parameters with stratified cross-validation, and
// report held-out metrics with a confusion matrix.
package iristree
