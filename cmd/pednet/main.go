// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command pednet analyzes pedigree files from the command line.
//
// Usage:
//
//	pednet analyze herd.ped
//	pednet analyze herd.ped --original-ids --resolve first
//	pednet stats herd.ped
//
// An optional config.yaml next to the binary supplies defaults for
// logging and telemetry; flags always win.
package main

import (
	"errors"
	"io/fs"
	"log"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var config Config

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error executing command: %v", err)
	}
}

func init() {
	rootCmd.PersistentPreRun = func(_ *cobra.Command, _ []string) {
		configPath := "config.yaml"
		yamlFile, err := os.ReadFile(configPath)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				config = DefaultCLIConfig()
				return
			}
			log.Fatalf("Error reading config.yaml: %v", err)
		}

		config = DefaultCLIConfig()
		if err := yaml.Unmarshal(yamlFile, &config); err != nil {
			log.Fatalf("Error parsing config.yaml: %v", err)
		}
	}
}
