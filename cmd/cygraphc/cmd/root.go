// Copyright 2024 The Cygraph Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package cmd provides the Cobra commands for cygraphc, a thin CLI
// front-end over the compiler package. Schema-catalog construction
// (YAML file I/O) is an explicit external-collaborator concern
// (spec.md §1 "Out of scope"), so this CLI ships a small built-in
// demo catalog rather than a loader.
package cmd

import (
	"github.com/spf13/cobra"
)

var (
	maxCTEDepth          int
	defaultUnboundedHops int
	debug                bool
)

var rootCmd = &cobra.Command{
	Use:   "cygraphc",
	Short: "cygraphc compiles Cypher queries to SQL against a graph schema catalog",
	Long: `cygraphc is a command-line front end for the cygraph Cypher-to-SQL
compiler. It parses a Cypher query, resolves it against a schema
catalog, and prints the generated SQL plus its projection schema.

The catalog it compiles against is a small built-in demo graph
(User/KNOWS) - wiring a real catalog loader is left to the embedding
application (spec.md §1 "Out of scope": YAML schema file I/O).`,
	SilenceUsage: true,
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().IntVar(&maxCTEDepth, "max-cte-depth", 100,
		"recursive CTE evaluation depth cap (0 disables the SETTINGS clause)")
	rootCmd.PersistentFlags().IntVar(&defaultUnboundedHops, "default-unbounded-hops", 10,
		"hop ceiling substituted for an unbounded variable-length pattern")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable analyzer debug logging")

	rootCmd.AddCommand(compileCmd)
	rootCmd.AddCommand(schemaCmd)
}
