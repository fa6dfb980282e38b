// Command iristree trains a decision tree species classifier on the Iris
// dataset: it indexes labels, holds out a test split, grid-searches tree
// parameters with cross-validation and prints an evaluation report.
//
// Basic usage:
//
//	iristree train --data Iris.csv
//	iristree train --config iristree.yaml
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Build information, populated by ldflags.
var (
	version = "dev"
	commit  = "none"
)

func main() {
	if err := buildRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func buildRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "iristree",
		Short:         "Cross-validated decision tree classification for the Iris dataset",
		Version:       fmt.Sprintf("%s (%s)", version, commit),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(buildTrainCmd())
	return rootCmd
}
