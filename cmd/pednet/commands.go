// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"github.com/spf13/cobra"
)

// --- Global Command Variables ---
var (
	useOriginalIDs bool
	missingParent  int
	commaDelim     string
	nodeID         string
	generations    int
	tiePolicy      string
	normalize      bool
	runParallel    bool
	debugMode      bool

	rootCmd = &cobra.Command{
		Use:   "pednet",
		Short: "A cli for pedigree network analysis",
		Long: `pednet converts pedigree files (animal, sire, dam records) into a
				directed graph and reports structural and relational metrics:
				lineage, progeny influence, degree distributions, density,
				geodesic distance, dyad census, and centrality.`,
	}

	analyzeCmd = &cobra.Command{
		Use:   "analyze [pedigree-file]",
		Short: "Build a pedigree graph and print the full metric report",
		Args:  cobra.ExactArgs(1),
		Run:   runAnalyze, // Defined in cmd_analyze.go
	}

	statsCmd = &cobra.Command{
		Use:   "stats [pedigree-file]",
		Short: "Build a pedigree graph and print only its size statistics",
		Args:  cobra.ExactArgs(1),
		Run:   runStats, // Defined in cmd_analyze.go
	}
)

// init runs when the Go program starts
func init() {
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging")

	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().BoolVar(&useOriginalIDs, "original-ids", false,
		"Key graph nodes by external identifiers instead of dense ids")
	analyzeCmd.Flags().IntVar(&missingParent, "missing", 0, "Missing-parent sentinel value")
	analyzeCmd.Flags().StringVar(&commaDelim, "comma", "",
		"Field delimiter (single character; default: whitespace runs)")
	analyzeCmd.Flags().StringVar(&nodeID, "node", "",
		"Also report lineage and influence for this animal")
	analyzeCmd.Flags().IntVar(&generations, "generations", 0,
		"Bound the --node ancestor search to this many generations (0 = unbounded)")
	analyzeCmd.Flags().StringVar(&tiePolicy, "resolve", "all",
		"Tie policy for most influential offspring: first, last, or all")
	analyzeCmd.Flags().BoolVar(&normalize, "normalize", false, "Normalize degree centrality")
	analyzeCmd.Flags().BoolVar(&runParallel, "parallel", false,
		"Use the parallel all-pairs traversal for mean geodesic")

	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().BoolVar(&useOriginalIDs, "original-ids", false,
		"Key graph nodes by external identifiers instead of dense ids")
	statsCmd.Flags().IntVar(&missingParent, "missing", 0, "Missing-parent sentinel value")
	statsCmd.Flags().StringVar(&commaDelim, "comma", "",
		"Field delimiter (single character; default: whitespace runs)")
}
