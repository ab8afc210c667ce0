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

package compiler

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/cygraph-io/cygraph/catalog"
	"github.com/cygraph-io/cygraph/cerrors"
)

func testCatalog(t *testing.T) *catalog.SchemaCatalog {
	t.Helper()
	g := catalog.NewGraphSchema("social")
	g.AddNode(&catalog.NodeSchema{
		Label: "User", Table: "users", IDColumn: "user_id",
		Properties: map[string]catalog.PropertyMapping{"name": {Column: "name"}},
	})
	g.AddRelationship(catalog.StandardRelationship{
		Type: "FOLLOWS", Tbl: "follows", FromLabel: "User", ToLabel: "User",
		FromIDColumn: "follower_id", ToIDColumn: "followee_id",
	})
	cat := catalog.NewSchemaCatalog("social", g)
	require.NoError(t, catalog.Load(cat))
	return cat
}

func newCompiler(t *testing.T) *Compiler {
	return New(testCatalog(t), Config{MaxCTEDepth: 100, DefaultUnboundedHops: 6})
}

// denormalizedCatalog builds the flights schema (§8 scenario 2): Airport
// has no table of its own, its properties live on whichever side of
// the flights row it occupies.
func denormalizedCatalog(t *testing.T) *catalog.SchemaCatalog {
	t.Helper()
	g := catalog.NewGraphSchema("flights")
	g.AddNode(&catalog.NodeSchema{
		Label: "Airport",
		FromNodeProperties: map[string]catalog.PropertyMapping{
			"code": {Column: "Origin"}, "city": {Column: "OriginCityName"},
		},
		ToNodeProperties: map[string]catalog.PropertyMapping{
			"code": {Column: "Dest"}, "city": {Column: "DestCityName"},
		},
	})
	g.AddRelationship(catalog.StandardRelationship{
		Type: "FLIGHT", Tbl: "flights", FromLabel: "Airport", ToLabel: "Airport",
	})
	cat := catalog.NewSchemaCatalog("flights", g)
	require.NoError(t, catalog.Load(cat))
	return cat
}

// polymorphicCatalog builds a User/Post schema where LIKES is one
// type value within a shared "interactions" table (§8 scenario 5).
func polymorphicCatalog(t *testing.T) *catalog.SchemaCatalog {
	t.Helper()
	g := catalog.NewGraphSchema("social")
	g.AddNode(&catalog.NodeSchema{
		Label: "User", Table: "users", IDColumn: "user_id",
		Properties: map[string]catalog.PropertyMapping{"name": {Column: "name"}},
	})
	g.AddNode(&catalog.NodeSchema{
		Label: "Post", Table: "posts", IDColumn: "post_id",
		Properties: map[string]catalog.PropertyMapping{"title": {Column: "title"}},
	})
	g.AddRelationship(catalog.PolymorphicRelationship{
		Tbl: "interactions", TypeColumn: "interaction_type", TypeValue: "LIKES",
		From: catalog.EndpointSpec{FixedLabel: "User"}, To: catalog.EndpointSpec{FixedLabel: "Post"},
		FromIDColumn: "actor_id", ToIDColumn: "target_id",
	})
	cat := catalog.NewSchemaCatalog("social", g)
	require.NoError(t, catalog.Load(cat))
	return cat
}

func TestCompileSimpleMatchReturn(t *testing.T) {
	c := newCompiler(t)
	out, err := c.Compile(context.Background(), CompileRequest{
		QueryText: "MATCH (u:User)-[:FOLLOWS]->(f:User) WHERE u.name = 'Ada' RETURN f.name AS name",
	})
	require.NoError(t, err)
	require.Equal(t, QueryKindRead, out.QueryKind)
	require.Len(t, out.SQLStatements, 1)
	sql := out.SQLStatements[0]
	require.Contains(t, sql, "SELECT")
	require.Contains(t, sql, "FROM")
	require.Contains(t, sql, "JOIN")
	require.Contains(t, sql, "WHERE")
	require.Len(t, out.ProjectionSchema, 1)
	require.Equal(t, "name", out.ProjectionSchema[0].OutputName)
}

func TestCompileUnknownSchemaErrors(t *testing.T) {
	c := newCompiler(t)
	_, err := c.Compile(context.Background(), CompileRequest{
		QueryText:        "MATCH (u:User) RETURN u.name",
		ActiveSchemaHint: "nope",
	})
	require.Error(t, err)
	require.True(t, cerrors.SchemaViolation.Is(errors.Cause(err)))
}

func TestCompileSyntaxErrorReturnsNoPartialSQL(t *testing.T) {
	c := newCompiler(t)
	out, err := c.Compile(context.Background(), CompileRequest{QueryText: "MATCH (u:User RETURN u"})
	require.Error(t, err)
	require.Nil(t, out)
}

func TestCompileCallDbLabelsAnswersFromCatalog(t *testing.T) {
	c := newCompiler(t)
	out, err := c.Compile(context.Background(), CompileRequest{QueryText: "CALL db.labels()"})
	require.NoError(t, err)
	require.Equal(t, QueryKindCall, out.QueryKind)
	require.Len(t, out.SQLStatements, 1)
	require.Contains(t, out.SQLStatements[0], "'User'")
}

func TestCompileUnknownLabelErrors(t *testing.T) {
	c := newCompiler(t)
	_, err := c.Compile(context.Background(), CompileRequest{QueryText: "MATCH (u:Ghost) RETURN u"})
	require.Error(t, err)
	require.True(t, cerrors.UnknownLabel.Is(errors.Cause(err)))
}

// TestCompileDenormalizedSingleHopCollapsesToEdge covers §8 scenario 2:
// both endpoints of the single-hop pattern are denormalized, so the
// edge table is the only thing in FROM and neither endpoint ever gets
// its own join.
func TestCompileDenormalizedSingleHopCollapsesToEdge(t *testing.T) {
	c := New(denormalizedCatalog(t), Config{MaxCTEDepth: 100, DefaultUnboundedHops: 6})
	out, err := c.Compile(context.Background(), CompileRequest{
		QueryText: "MATCH (a:Airport)-[f:FLIGHT]->(b:Airport) WHERE a.city = 'Los Angeles' RETURN b.code",
	})
	require.NoError(t, err)
	require.Len(t, out.SQLStatements, 1)
	sql := out.SQLStatements[0]
	require.Contains(t, sql, "FROM `flights` AS `f`")
	require.Contains(t, sql, "`f`.OriginCityName = 'Los Angeles'")
	require.Contains(t, sql, "`f`.Dest AS `code`")
	require.NotContains(t, sql, "JOIN")
}

// TestCompilePolymorphicEdgeFiltersOnTypeColumn covers §8 scenario 5:
// a relationship type backed by a shared, discriminator-column table
// compiles to a `type_column IN (...)` predicate rather than a join
// against a type-specific table.
func TestCompilePolymorphicEdgeFiltersOnTypeColumn(t *testing.T) {
	c := New(polymorphicCatalog(t), Config{MaxCTEDepth: 100, DefaultUnboundedHops: 6})
	out, err := c.Compile(context.Background(), CompileRequest{
		QueryText: "MATCH (u:User)-[r:LIKES]->(p:Post) RETURN p.title",
	})
	require.NoError(t, err)
	require.Len(t, out.SQLStatements, 1)
	sql := out.SQLStatements[0]
	require.Contains(t, sql, "JOIN `interactions` AS `r`")
	require.Contains(t, sql, "`r`.interaction_type IN ('LIKES')")
	require.Contains(t, sql, "JOIN `posts` AS `p`")
	require.Contains(t, sql, "`p`.title AS `title`")
}
