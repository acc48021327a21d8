// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Implements: prd007-dataset-sink R3.3, prd009-technology-stack R4.9.
package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/petar-djukic/inline-lab/internal/dataset"
	"github.com/petar-djukic/inline-lab/internal/pipeline"
)

// newJoinCmd creates the "join" command.
func newJoinCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "join",
		Short: "Inner-join the features and measurements tables",
		Long:  "Join matches feature and measurement rows by file, function, and ordinal and writes joined.csv next to the inputs. Rows present in only one table are dropped.",
		RunE: func(cmd *cobra.Command, args []string) error {
			outDir := viper.GetString("out")

			features, err := dataset.ReadFeatures(filepath.Join(outDir, pipeline.FeaturesFile))
			if err != nil {
				return fmt.Errorf("reading features: %w", err)
			}
			measurements, err := dataset.ReadMeasurements(filepath.Join(outDir, pipeline.MeasurementsFile))
			if err != nil {
				return fmt.Errorf("reading measurements: %w", err)
			}

			rows := dataset.InnerJoin(features, measurements)
			joinedPath := filepath.Join(outDir, pipeline.JoinedFile)
			if err := dataset.WriteJoined(joinedPath, rows); err != nil {
				return fmt.Errorf("writing joined table: %w", err)
			}

			fmt.Printf("Joined %d rows into %s\n", len(rows), joinedPath)
			return nil
		},
	}
}
