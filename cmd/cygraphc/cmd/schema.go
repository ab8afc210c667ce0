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
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cygraph-io/cygraph/catalog"
)

// demoCatalog builds the User/KNOWS social graph used throughout
// spec.md's examples (e.g. "MATCH p = shortestPath((a:User
// {id:1})-[:KNOWS*1..5]-(b:User {id:2})) RETURN length(p)").
func demoCatalog() (*catalog.SchemaCatalog, error) {
	g := catalog.NewGraphSchema("social")
	g.AddNode(&catalog.NodeSchema{
		Label:    "User",
		Table:    "users",
		IDColumn: "id",
		Properties: map[string]catalog.PropertyMapping{
			"id":   {Column: "id"},
			"name": {Column: "name"},
		},
	})
	g.AddRelationship(catalog.StandardRelationship{
		Type:         "KNOWS",
		Tbl:          "knows",
		FromLabel:    "User",
		ToLabel:      "User",
		FromIDColumn: "follower_id",
		ToIDColumn:   "followee_id",
	})
	cat := catalog.NewSchemaCatalog("social", g)
	if err := catalog.Load(cat); err != nil {
		return nil, err
	}
	return cat, nil
}

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the demo schema catalog's labels and relationship types",
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := demoCatalog()
		if err != nil {
			return err
		}
		g := cat.Schemas[cat.DefaultSchema]
		fmt.Fprintf(cmd.OutOrStdout(), "schema: %s (load %s)\n", g.Name, cat.LoadID)
		fmt.Fprintln(cmd.OutOrStdout(), "labels:", g.NodeLabels())
		fmt.Fprintln(cmd.OutOrStdout(), "relationship types:", g.RelationshipTypes())
		return nil
	},
}
