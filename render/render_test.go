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

package render

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cygraph-io/cygraph/analyzer"
	"github.com/cygraph-io/cygraph/catalog"
	"github.com/cygraph-io/cygraph/ctegen"
	"github.com/cygraph-io/cygraph/cypher"
	"github.com/cygraph-io/cygraph/plan"
)

func followsSchema() *catalog.GraphSchema {
	g := catalog.NewGraphSchema("social")
	g.AddNode(&catalog.NodeSchema{
		Label: "User", Table: "users", IDColumn: "user_id",
		Properties: map[string]catalog.PropertyMapping{"name": {Column: "name"}},
	})
	g.AddRelationship(catalog.StandardRelationship{
		Type: "FOLLOWS", Tbl: "follows", FromLabel: "User", ToLabel: "User",
		FromIDColumn: "follower_id", ToIDColumn: "followee_id",
	})
	return g
}

func renderQuery(t *testing.T, src string) *Plan {
	t.Helper()
	stmt, err := cypher.Parse(src)
	require.NoError(t, err)
	logical, err := plan.NewBuilder(6).Build(stmt)
	require.NoError(t, err)
	analyzed, err := analyzer.New(followsSchema(), false).Analyze(logical)
	require.NoError(t, err)
	pl, err := NewPlanner(ctegen.NewNameGen()).Render(analyzed)
	require.NoError(t, err)
	return pl
}

func TestRenderSingleHopJoinsBothSides(t *testing.T) {
	pl := renderQuery(t, "MATCH (u:User)-[:FOLLOWS]->(f:User) RETURN f.name AS name")
	require.Equal(t, "users", pl.From.Table)
	require.Len(t, pl.Joins, 2)
	require.Equal(t, InnerJoin, pl.Joins[0].Kind)
	require.Equal(t, "users", pl.Joins[1].Source.Table)
	require.Len(t, pl.Select, 1)
	require.Equal(t, "name", pl.Select[0].As)
}

func TestRenderOptionalMatchUsesLeftJoin(t *testing.T) {
	pl := renderQuery(t, "MATCH (u:User) OPTIONAL MATCH (u)-[:FOLLOWS]->(f:User) RETURN u.name AS name")
	var sawLeft bool
	for _, j := range pl.Joins {
		if j.Kind == LeftJoin {
			sawLeft = true
		}
	}
	require.True(t, sawLeft)
}

func TestRenderUndirectedEdgeProducesOrPredicate(t *testing.T) {
	pl := renderQuery(t, "MATCH (u:User)-[:FOLLOWS]-(f:User) RETURN f.name AS name")
	require.Len(t, pl.Joins, 2)
	require.NotNil(t, pl.Joins[0].On)
}
