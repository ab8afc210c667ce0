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

package cypher

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseSimpleMatchReturn(t *testing.T) {
	stmt, err := Parse("MATCH (u:User)-[:FOLLOWS]->(f:User) WHERE u.age > 21 RETURN f.name AS name")
	require.NoError(t, err)
	require.Len(t, stmt.Query.Clauses, 2)

	m := stmt.Query.Clauses[0].(*MatchClause)
	require.False(t, m.Optional)
	require.Len(t, m.Patterns, 1)
	require.NotNil(t, m.Where)

	pp := m.Patterns[0]
	require.Len(t, pp.Elements, 3)
	n0 := pp.Elements[0].(*NodePattern)
	require.Equal(t, "u", n0.Alias)
	require.Equal(t, []string{"User"}, n0.Labels)
	rel := pp.Elements[1].(*RelPattern)
	require.Equal(t, []string{"FOLLOWS"}, rel.Types)
	require.Equal(t, 1, rel.Direction)

	ret := stmt.Query.Clauses[1].(*ReturnClause)
	require.Len(t, ret.Items, 1)
	require.Equal(t, "name", ret.Items[0].As)
	prop := ret.Items[0].Expr.(*PropertyAccessExpr)
	require.Equal(t, "f", prop.Alias)
	require.Equal(t, "name", prop.Property)
}

func TestParseOptionalMatchWithWith(t *testing.T) {
	stmt, err := Parse(`
		MATCH (u:User)
		OPTIONAL MATCH (u)-[:OWNS]->(a:Account)
		WITH u, count(a) AS numAccounts
		WHERE numAccounts > 0
		RETURN u.name, numAccounts
		ORDER BY numAccounts DESC
		LIMIT 10
	`)
	require.NoError(t, err)
	require.Len(t, stmt.Query.Clauses, 4)

	opt := stmt.Query.Clauses[1].(*MatchClause)
	require.True(t, opt.Optional)

	with := stmt.Query.Clauses[2].(*WithClause)
	require.Len(t, with.Items, 2)
	require.NotNil(t, with.Where)

	ret := stmt.Query.Clauses[3].(*ReturnClause)
	require.Len(t, ret.OrderBy, 1)
	require.True(t, ret.OrderBy[0].Descending)
	require.NotNil(t, ret.Limit)
}

func TestParseVariableLengthRange(t *testing.T) {
	stmt, err := Parse("MATCH (a:User)-[:FOLLOWS*1..3]->(b:User) RETURN b")
	require.NoError(t, err)
	m := stmt.Query.Clauses[0].(*MatchClause)
	rel := m.Patterns[0].Elements[1].(*RelPattern)
	require.True(t, rel.VarLength)
	require.True(t, rel.HasMin)
	require.Equal(t, 1, rel.Min)
	require.True(t, rel.HasMax)
	require.Equal(t, 3, rel.Max)
}

func TestParseUnboundedVariableLength(t *testing.T) {
	stmt, err := Parse("MATCH (a:User)-[:FOLLOWS*2..]->(b:User) RETURN b")
	require.NoError(t, err)
	m := stmt.Query.Clauses[0].(*MatchClause)
	rel := m.Patterns[0].Elements[1].(*RelPattern)
	require.True(t, rel.HasMin)
	require.Equal(t, 2, rel.Min)
	require.False(t, rel.HasMax)
}

func TestParseShortestPath(t *testing.T) {
	stmt, err := Parse("MATCH p = shortestPath((a:User)-[:FOLLOWS*..5]->(b:User)) RETURN p")
	require.NoError(t, err)
	m := stmt.Query.Clauses[0].(*MatchClause)
	require.Equal(t, "p", m.Patterns[0].PathVar)
	rel := m.Patterns[0].Elements[1].(*RelPattern)
	require.True(t, rel.ShortestPath)
	require.False(t, rel.AllShortest)
	require.True(t, rel.HasMax)
	require.Equal(t, 5, rel.Max)
}

func TestParseAllShortestPaths(t *testing.T) {
	stmt, err := Parse("MATCH p = allShortestPaths((a:User)-[:FOLLOWS*]->(b:User)) RETURN p")
	require.NoError(t, err)
	m := stmt.Query.Clauses[0].(*MatchClause)
	rel := m.Patterns[0].Elements[1].(*RelPattern)
	require.True(t, rel.AllShortest)
}

func TestParseLeftDirectedRelationship(t *testing.T) {
	stmt, err := Parse("MATCH (a:User)<-[:FOLLOWS]-(b:User) RETURN a, b")
	require.NoError(t, err)
	m := stmt.Query.Clauses[0].(*MatchClause)
	rel := m.Patterns[0].Elements[1].(*RelPattern)
	require.Equal(t, -1, rel.Direction)
}

func TestParseUndirectedRelationship(t *testing.T) {
	stmt, err := Parse("MATCH (a:User)-[:FOLLOWS]-(b:User) RETURN a")
	require.NoError(t, err)
	m := stmt.Query.Clauses[0].(*MatchClause)
	rel := m.Patterns[0].Elements[1].(*RelPattern)
	require.Equal(t, 0, rel.Direction)
}

func TestParseUnionAll(t *testing.T) {
	stmt, err := Parse("MATCH (a:User) RETURN a.name UNION ALL MATCH (b:Admin) RETURN b.name")
	require.NoError(t, err)
	require.Len(t, stmt.Unions, 1)
	require.True(t, stmt.Unions[0].All)
}

func TestParseUseClause(t *testing.T) {
	stmt, err := Parse("USE social.prod MATCH (u:User) RETURN u")
	require.NoError(t, err)
	require.Equal(t, "social.prod", stmt.Use)
}

func TestParseExpressionPrecedence(t *testing.T) {
	stmt, err := Parse("MATCH (u:User) WHERE u.age > 21 AND u.active = true OR u.admin RETURN u")
	require.NoError(t, err)
	m := stmt.Query.Clauses[0].(*MatchClause)
	top := m.Where.(*BinaryExpr)
	require.Equal(t, "OR", top.Op)
	require.Equal(t, "AND", top.Left.(*BinaryExpr).Op)
}

func TestParseInAndIsNull(t *testing.T) {
	stmt, err := Parse("MATCH (u:User) WHERE u.status IN ['a','b'] AND u.deleted_at IS NULL RETURN u")
	require.NoError(t, err)
	m := stmt.Query.Clauses[0].(*MatchClause)
	and := m.Where.(*BinaryExpr)
	require.IsType(t, &InExpr{}, and.Left)
	require.Equal(t, "IS NULL", and.Right.(*UnaryExpr).Op)
}

func TestParseFunctionCallAndStar(t *testing.T) {
	stmt, err := Parse("MATCH (u:User) RETURN count(*) AS total, collect(DISTINCT u.name) AS names")
	require.NoError(t, err)
	ret := stmt.Query.Clauses[1].(*ReturnClause)
	fc := ret.Items[0].Expr.(*FunctionCallExpr)
	require.Equal(t, "count", fc.Name)
	require.IsType(t, StarExpr{}, fc.Args[0])
	fc2 := ret.Items[1].Expr.(*FunctionCallExpr)
	require.True(t, fc2.Distinct)
}

func TestParseCaseExpression(t *testing.T) {
	stmt, err := Parse(`
		MATCH (u:User)
		RETURN CASE WHEN u.age < 18 THEN 'minor' WHEN u.age < 65 THEN 'adult' ELSE 'senior' END AS bucket
	`)
	require.NoError(t, err)
	ret := stmt.Query.Clauses[1].(*ReturnClause)
	c := ret.Items[0].Expr.(*CaseExpr)
	require.Nil(t, c.Test)
	require.Len(t, c.Branches, 2)
	require.NotNil(t, c.Else)
}

func TestParsePropertyMapOnNodeAndRel(t *testing.T) {
	stmt, err := Parse("MATCH (u:User {active: true})-[r:FOLLOWS {since: 2020}]->(f:User) RETURN u")
	require.NoError(t, err)
	m := stmt.Query.Clauses[0].(*MatchClause)
	n := m.Patterns[0].Elements[0].(*NodePattern)
	require.Len(t, n.Properties, 1)
	require.Equal(t, "active", n.Properties[0].Key)
	rel := m.Patterns[0].Elements[1].(*RelPattern)
	require.Equal(t, "r", rel.Alias)
	require.Len(t, rel.Properties, 1)
}

func TestParseUnsupportedClauseDoesNotError(t *testing.T) {
	stmt, err := Parse("MATCH (u:User) CREATE (v:User {name: 'x'}) RETURN u")
	require.NoError(t, err)
	require.Len(t, stmt.Query.Clauses, 3)
	require.IsType(t, &UnsupportedClause{}, stmt.Query.Clauses[1])
}

func TestParseSyntaxErrorReportsPosition(t *testing.T) {
	_, err := Parse("MATCH (u:User RETURN u")
	require.Error(t, err)
	pe, ok := err.(*ParseError)
	require.True(t, ok)
	require.Equal(t, "RETURN", pe.Found)
	require.Equal(t, Position{Line: 1, Col: 15}, pe.Pos)
}

func TestParseMultipleLabelsAndTypes(t *testing.T) {
	stmt, err := Parse("MATCH (u:User|Admin)-[:FOLLOWS|BLOCKS]->(f) RETURN f")
	require.NoError(t, err)
	m := stmt.Query.Clauses[0].(*MatchClause)
	n := m.Patterns[0].Elements[0].(*NodePattern)
	require.Equal(t, []string{"User", "Admin"}, n.Labels)
	rel := m.Patterns[0].Elements[1].(*RelPattern)
	require.Equal(t, []string{"FOLLOWS", "BLOCKS"}, rel.Types)
}

func TestParseParameterLiteral(t *testing.T) {
	stmt, err := Parse("MATCH (u:User) WHERE u.id = $userId RETURN u")
	require.NoError(t, err)
	m := stmt.Query.Clauses[0].(*MatchClause)
	cmp := m.Where.(*BinaryExpr)
	require.Equal(t, "userId", cmp.Right.(*ParameterExpr).Name)
}
