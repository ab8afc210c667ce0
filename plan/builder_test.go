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

package plan

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cygraph-io/cygraph/cypher"
	"github.com/cygraph-io/cygraph/expr"
)

func buildFrom(t *testing.T, src string) Node {
	t.Helper()
	stmt, err := cypher.Parse(src)
	require.NoError(t, err)
	b := NewBuilder(6)
	n, err := b.Build(stmt)
	require.NoError(t, err)
	return n
}

func TestBuildSingleHopMatch(t *testing.T) {
	n := buildFrom(t, "MATCH (u:User)-[:FOLLOWS]->(f:User) RETURN f.name")
	proj, ok := n.(*Project)
	require.True(t, ok)
	gj, ok := proj.Child.(*GraphJoins)
	require.True(t, ok)
	require.Len(t, gj.Elements, 3)

	left := gj.Elements[0].(*GraphNode)
	require.Equal(t, "u", left.Alias)
	require.Equal(t, "User", left.Scan.Label)

	rel := gj.Elements[1].(*GraphRel)
	require.Equal(t, "FOLLOWS", rel.Type)
	require.Equal(t, DirRight, rel.Direction)
	require.True(t, rel.Length.IsSingleHop())
}

func TestBuildWhereBecomesFilter(t *testing.T) {
	n := buildFrom(t, "MATCH (u:User) WHERE u.age > 21 RETURN u")
	proj := n.(*Project)
	f, ok := proj.Child.(*Filter)
	require.True(t, ok)
	bop, ok := f.Predicate.(*expr.BinaryOp)
	require.True(t, ok)
	require.Equal(t, ">", bop.Op)
}

func TestBuildRepeatedAliasReusesScan(t *testing.T) {
	n := buildFrom(t, "MATCH (u:User)-[:OWNS]->(a:Account), (u)-[:FOLLOWS]->(f:User) RETURN u")
	proj := n.(*Project)
	gj := proj.Child.(*GraphJoins)
	// u, OWNS, a, FOLLOWS, f = 5 elements; u is the same *GraphNode
	// pointer both times it appears.
	require.Len(t, gj.Elements, 5)
	uFirst := gj.Elements[0].(*GraphNode)
	rel2 := gj.Elements[3].(*GraphRel)
	require.Same(t, uFirst, rel2.Left)
}

func TestBuildVariableLengthRange(t *testing.T) {
	n := buildFrom(t, "MATCH (a:User)-[:FOLLOWS*2..4]->(b:User) RETURN b")
	proj := n.(*Project)
	gj := proj.Child.(*GraphJoins)
	rel := gj.Elements[1].(*GraphRel)
	require.Equal(t, LengthRange, rel.Length.Kind)
	require.Equal(t, 2, rel.Length.Min)
	require.Equal(t, 4, rel.Length.Max)
}

func TestBuildUnboundedUsesDefault(t *testing.T) {
	n := buildFrom(t, "MATCH (a:User)-[:FOLLOWS*]->(b:User) RETURN b")
	proj := n.(*Project)
	gj := proj.Child.(*GraphJoins)
	rel := gj.Elements[1].(*GraphRel)
	require.Equal(t, 1, rel.Length.Min)
	require.Equal(t, 6, rel.Length.Max)
	require.False(t, rel.Length.MaxExplicit)
}

func TestBuildShortestPath(t *testing.T) {
	n := buildFrom(t, "MATCH p = shortestPath((a:User)-[:FOLLOWS*..5]->(b:User)) RETURN p")
	proj := n.(*Project)
	gj := proj.Child.(*GraphJoins)
	rel := gj.Elements[1].(*GraphRel)
	require.Equal(t, LengthShortestPath, rel.Length.Kind)
	require.Equal(t, "p", rel.PathVar)
}

func TestBuildOptionalMatchNestsGraphJoins(t *testing.T) {
	n := buildFrom(t, "MATCH (u:User) OPTIONAL MATCH (u)-[:OWNS]->(a:Account) RETURN u")
	proj := n.(*Project)
	gj := proj.Child.(*GraphJoins)
	require.Len(t, gj.Elements, 2) // u, nested-optional-GraphJoins
	nested, ok := gj.Elements[1].(*GraphJoins)
	require.True(t, ok)
	require.True(t, nested.Optional)
}

func TestBuildWithScopeBarrierWrapsInCte(t *testing.T) {
	n := buildFrom(t, `
		MATCH (u:User)-[:FOLLOWS]->(f:User)
		WITH u, count(f) AS numFollows
		WHERE numFollows > 10
		RETURN u.name, numFollows
	`)
	proj := n.(*Project)
	require.Len(t, proj.Columns, 2)
	f, ok := proj.Child.(*Filter)
	require.True(t, ok)
	cte, ok := f.Child.(*Cte)
	require.True(t, ok)
	require.Equal(t, "with_0", cte.Name)
	_, ok = cte.Child.(*Aggregate)
	require.True(t, ok)
}

func TestBuildAggregateSplitsGroupByAndAggs(t *testing.T) {
	n := buildFrom(t, "MATCH (u:User)-[:FOLLOWS]->(f:User) RETURN u.name, count(f) AS c")
	agg := n.(*Aggregate)
	require.Len(t, agg.GroupBy, 1)
	require.Len(t, agg.Aggs, 1)
	require.Equal(t, "c", agg.Aggs[0].As)
}

func TestBuildOrderBySkipLimit(t *testing.T) {
	n := buildFrom(t, "MATCH (u:User) RETURN u.name ORDER BY u.name DESC SKIP 5 LIMIT 10")
	limit := n.(*Limit)
	skip := limit.Child.(*Skip)
	sort := skip.Child.(*Sort)
	require.Len(t, sort.Fields, 1)
	require.True(t, sort.Fields[0].Descending)
}

func TestBuildDistinctReturn(t *testing.T) {
	n := buildFrom(t, "MATCH (u:User) RETURN DISTINCT u.name")
	proj := n.(*Project)
	require.True(t, proj.Distinct)
}

func TestBuildUnionAll(t *testing.T) {
	n := buildFrom(t, "MATCH (u:User) RETURN u.name UNION ALL MATCH (a:Admin) RETURN a.name")
	_, ok := n.(*UnionAll)
	require.True(t, ok)
}

func TestBuildMultiTypeAlternation(t *testing.T) {
	n := buildFrom(t, "MATCH (a:User)-[:FOLLOWS|BLOCKS]->(b:User) RETURN b")
	proj := n.(*Project)
	gj := proj.Child.(*GraphJoins)
	rel := gj.Elements[1].(*GraphRel)
	require.Empty(t, rel.Type)
	require.Equal(t, []string{"FOLLOWS", "BLOCKS"}, rel.AltTypes)
}

func TestBuildCallProcedure(t *testing.T) {
	n := buildFrom(t, "CALL db.labels()")
	proc, ok := n.(*Procedure)
	require.True(t, ok)
	require.Equal(t, "db.labels", proc.Name)
}

func TestBuildUnsupportedClausePassesThrough(t *testing.T) {
	n := buildFrom(t, "MATCH (u:User) CREATE (v:User) RETURN u")
	unsupported, ok := n.(*Unsupported)
	require.True(t, ok)
	require.Equal(t, "CREATE", unsupported.Keyword)
}

func TestBuildNodePropertyMapBecomesFilter(t *testing.T) {
	n := buildFrom(t, "MATCH (u:User {active: true}) RETURN u")
	proj := n.(*Project)
	f, ok := proj.Child.(*Filter)
	require.True(t, ok)
	bop := f.Predicate.(*expr.BinaryOp)
	require.Equal(t, "=", bop.Op)
	uprop := bop.Left.(*expr.UnresolvedPropertyAccess)
	require.Equal(t, "active", uprop.Property)
}
