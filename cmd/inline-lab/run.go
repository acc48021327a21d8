// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Implements: prd009-technology-stack R4.3-R4.8.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/petar-djukic/inline-lab/pkg/inlinelab"
	"github.com/petar-djukic/inline-lab/pkg/types"
)

// newRunCmd creates the "run" command.
func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Measure the whole corpus",
		Long:  "Run extracts structural features for every function definition, compiles a noinline and an always_inline variant of each, and writes features.csv and measurements.csv under the output directory.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(configFromViper())
		},
	}
}

// newFeaturesCmd creates the "features" command.
func newFeaturesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "features",
		Short: "Extract feature rows without compiling",
		Long:  "Features runs the analysis half of the pipeline only: no compiler is invoked and only features.csv is written.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := configFromViper()
			cfg.AnalysisOnly = true
			return runPipeline(cfg)
		},
	}
}

// runPipeline builds the pipeline and executes one measurement pass.
func runPipeline(cfg inlinelab.Config) error {
	p, err := inlinelab.New(cfg)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	summary, err := p.Run(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if summary != nil {
			printSummary(summary)
		}
		return err
	}

	printSummary(summary)
	return nil
}

// configFromViper assembles the library config from bound flags, env vars,
// and the optional config file.
func configFromViper() inlinelab.Config {
	return inlinelab.Config{
		SourceDir:    viper.GetString("source"),
		OutDir:       viper.GetString("out"),
		Workers:      viper.GetInt("workers"),
		JobTimeout:   viper.GetDuration("timeout"),
		Retries:      viper.GetInt("retries"),
		Compiler:     viper.GetString("compiler"),
		ExtraFlags:   viper.GetStringSlice("cflags"),
		DatabasePath: viper.GetString("db"),
		TargetsPath:  viper.GetString("targets"),
		KeepTemp:     viper.GetBool("keep-temp"),
	}
}

// printSummary outputs the run summary as JSON to stdout.
func printSummary(summary *types.RunSummary) {
	out, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling summary: %v\n", err)
		return
	}
	fmt.Println(string(out))
}
