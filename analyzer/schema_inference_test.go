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

package analyzer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cygraph-io/cygraph/catalog"
	"github.com/cygraph-io/cygraph/cypher"
	"github.com/cygraph-io/cygraph/plan"
)

func testSchema(t *testing.T) *catalog.GraphSchema {
	t.Helper()
	g := catalog.NewGraphSchema("social")
	g.AddNode(&catalog.NodeSchema{
		Label: "User", Table: "users", IDColumn: "user_id",
		Properties: map[string]catalog.PropertyMapping{"name": {Column: "name"}},
	})
	g.AddNode(&catalog.NodeSchema{
		Label: "Account", Table: "accounts", IDColumn: "account_id",
	})
	g.AddRelationship(catalog.StandardRelationship{
		Type: "FOLLOWS", Tbl: "follows", FromLabel: "User", ToLabel: "User",
		FromIDColumn: "follower_id", ToIDColumn: "followee_id",
	})
	g.AddRelationship(catalog.StandardRelationship{
		Type: "OWNS", Tbl: "owns", FromLabel: "User", ToLabel: "Account",
		FromIDColumn: "user_id", ToIDColumn: "account_id",
	})
	return g
}

func buildAndRun(t *testing.T, src string, rule Rule) (plan.Node, *Analyzer) {
	t.Helper()
	stmt, err := cypher.Parse(src)
	require.NoError(t, err)
	b := plan.NewBuilder(6)
	n, err := b.Build(stmt)
	require.NoError(t, err)
	a := New(testSchema(t), false)
	n, err = rule.Fn(a, n)
	require.NoError(t, err)
	return n, a
}

func findGraphRel(n plan.Node) *plan.GraphRel {
	var found *plan.GraphRel
	plan.Inspect(n, func(x plan.Node) bool {
		if gr, ok := x.(*plan.GraphRel); ok {
			found = gr
			return false
		}
		return true
	})
	return found
}

func findGraphNode(n plan.Node, alias string) *plan.GraphNode {
	var found *plan.GraphNode
	plan.Inspect(n, func(x plan.Node) bool {
		if gn, ok := x.(*plan.GraphNode); ok && gn.Alias == alias {
			found = gn
			return false
		}
		return true
	})
	return found
}

func TestSchemaInferenceResolvesStandardNode(t *testing.T) {
	n, _ := buildAndRun(t, "MATCH (u:User) RETURN u", Rule{"schema_inference", schemaInference})
	u := findGraphNode(n, "u")
	require.NotNil(t, u.Scan.NodeSchema)
	require.Equal(t, "users", u.Scan.Table)
	require.False(t, u.Scan.Unresolved)
}

func TestSchemaInferenceResolvesRelAndRoles(t *testing.T) {
	n, _ := buildAndRun(t, "MATCH (u:User)-[:OWNS]->(a:Account) RETURN u", Rule{"schema_inference", schemaInference})
	rel := findGraphRel(n)
	require.NotNil(t, rel.Edge.(*plan.ViewScan).RelSchema)
	require.Equal(t, "owns", rel.Edge.(*plan.ViewScan).Table)
	require.Equal(t, "from", rel.Left.Role)
	require.Equal(t, "to", rel.Right.Role)
}

func TestSchemaInferenceFlipsRolesForLeftArrow(t *testing.T) {
	n, _ := buildAndRun(t, "MATCH (a:Account)<-[:OWNS]-(u:User) RETURN u", Rule{"schema_inference", schemaInference})
	rel := findGraphRel(n)
	require.Equal(t, "to", rel.Left.Role) // a:Account is structurally Left but semantically "to"
	require.Equal(t, "from", rel.Right.Role)
}

func TestSchemaInferenceInfersAnonymousEndpoint(t *testing.T) {
	n, _ := buildAndRun(t, "MATCH (u:User)-[:OWNS]->(a) RETURN a", Rule{"schema_inference", schemaInference})
	a := findGraphNode(n, "a")
	require.Equal(t, "Account", a.Scan.Label)
	require.NotNil(t, a.Scan.NodeSchema)
}

func TestSchemaInferenceUnknownLabelErrors(t *testing.T) {
	stmt, err := cypher.Parse("MATCH (x:Nonexistent) RETURN x")
	require.NoError(t, err)
	b := plan.NewBuilder(6)
	n, err := b.Build(stmt)
	require.NoError(t, err)
	a := New(testSchema(t), false)
	_, err = schemaInference(a, n)
	require.Error(t, err)
}
