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

package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cygraph-io/cygraph/compiler"
)

var activeSchema string

var compileCmd = &cobra.Command{
	Use:   "compile [cypher query]",
	Short: "Compile a Cypher query against the demo catalog and print the SQL",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := demoCatalog()
		if err != nil {
			return err
		}
		c := compiler.New(cat, compiler.Config{
			MaxCTEDepth:          maxCTEDepth,
			DefaultUnboundedHops: defaultUnboundedHops,
		})
		out, err := c.Compile(context.Background(), compiler.CompileRequest{
			QueryText:        args[0],
			ActiveSchemaHint: activeSchema,
		})
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "query kind: %s\n", out.QueryKind)
		for i, stmt := range out.SQLStatements {
			fmt.Fprintf(w, "-- statement %d\n%s\n", i+1, stmt)
		}
		fmt.Fprintln(w, "projection:")
		for _, col := range out.ProjectionSchema {
			fmt.Fprintf(w, "  %s %s\n", col.OutputName, col.Type)
		}
		return nil
	},
}

func init() {
	compileCmd.Flags().StringVar(&activeSchema, "schema", "", "active schema name (overrides the catalog default)")
}
