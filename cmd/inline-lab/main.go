// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Command inline-lab measures how forced inlining changes compiled object
// size across a C++ corpus.
// Implements: prd009-technology-stack R4.1-R4.10;
//
//	docs/ARCHITECTURE § Project Structure.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:   "inline-lab",
		Short: "C++ inlining size-impact measurement pipeline",
		Long:  "inline-lab scans a C++ corpus, extracts structural features per function, compiles noinline and always_inline variants, and emits paired CSV tables for model training.",
	}

	// Global flags.
	rootCmd.PersistentFlags().String("source", ".", "Corpus root directory")
	rootCmd.PersistentFlags().String("out", "data", "Output directory for the CSV tables")
	rootCmd.PersistentFlags().Int("workers", 0, "Concurrent compile jobs (0 = number of CPUs)")
	rootCmd.PersistentFlags().Duration("timeout", 0, "Per-compile deadline (0 = 60s)")
	rootCmd.PersistentFlags().Int("retries", 1, "Re-attempts per failed compile job")
	rootCmd.PersistentFlags().String("compiler", "", "C++ compiler binary (default clang++)")
	rootCmd.PersistentFlags().StringSlice("cflags", nil, "Compiler flags (default -std=c++17,-O2)")
	rootCmd.PersistentFlags().String("db", "", "SQLite database mirroring both tables")
	rootCmd.PersistentFlags().String("targets", "", "YAML manifest limiting which functions are measured")
	rootCmd.PersistentFlags().Bool("keep-temp", false, "Keep per-job build directories")

	// Bind flags to viper.
	viper.BindPFlag("source", rootCmd.PersistentFlags().Lookup("source"))
	viper.BindPFlag("out", rootCmd.PersistentFlags().Lookup("out"))
	viper.BindPFlag("workers", rootCmd.PersistentFlags().Lookup("workers"))
	viper.BindPFlag("timeout", rootCmd.PersistentFlags().Lookup("timeout"))
	viper.BindPFlag("retries", rootCmd.PersistentFlags().Lookup("retries"))
	viper.BindPFlag("compiler", rootCmd.PersistentFlags().Lookup("compiler"))
	viper.BindPFlag("cflags", rootCmd.PersistentFlags().Lookup("cflags"))
	viper.BindPFlag("db", rootCmd.PersistentFlags().Lookup("db"))
	viper.BindPFlag("targets", rootCmd.PersistentFlags().Lookup("targets"))
	viper.BindPFlag("keep-temp", rootCmd.PersistentFlags().Lookup("keep-temp"))

	// Env vars: INLINE_LAB_SOURCE, INLINE_LAB_COMPILER, etc.
	viper.SetEnvPrefix("INLINE_LAB")
	viper.AutomaticEnv()

	// Config file.
	viper.SetConfigName(".inline-lab")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.ReadInConfig() // Ignore error; config file is optional.

	// Add commands.
	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newFeaturesCmd())
	rootCmd.AddCommand(newJoinCmd())
	rootCmd.AddCommand(newVersionCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newVersionCmd creates the "version" command.
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print inline-lab version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("inline-lab %s\n", version)
		},
	}
}
