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

package catalog

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cygraph-io/cygraph/cerrors"
)

func userFollowsSchema() *GraphSchema {
	g := NewGraphSchema("social")
	g.AddNode(&NodeSchema{
		Label:    "User",
		Table:    "users",
		IDColumn: "user_id",
		Properties: map[string]PropertyMapping{
			"name": {Column: "name"},
		},
	})
	g.AddRelationship(StandardRelationship{
		Type:         "FOLLOWS",
		Tbl:          "follows",
		FromLabel:    "User",
		ToLabel:      "User",
		FromIDColumn: "follower_id",
		ToIDColumn:   "followed_id",
	})
	return g
}

func TestGetNodeSchema(t *testing.T) {
	g := userFollowsSchema()

	n, err := g.GetNodeSchema("User")
	require.NoError(t, err)
	require.Equal(t, "users", n.Table)

	_, err = g.GetNodeSchema("Nope")
	require.Error(t, err)
	require.True(t, cerrors.UnknownLabel.Is(err))
}

func TestGetRelSchema(t *testing.T) {
	g := userFollowsSchema()

	r, err := g.GetRelSchema("FOLLOWS", "User", "User")
	require.NoError(t, err)
	require.Equal(t, "follows", r.Table())

	_, err = g.GetRelSchema("LIKES", "User", "User")
	require.Error(t, err)
	require.True(t, cerrors.UnknownRelationshipType.Is(err))
}

func TestGetRelSchemaAmbiguous(t *testing.T) {
	g := NewGraphSchema("multi")
	g.AddRelationship(StandardRelationship{Type: "KNOWS", Tbl: "knows_a", FromLabel: "User", ToLabel: "User"})
	g.AddRelationship(StandardRelationship{Type: "KNOWS", Tbl: "knows_b", FromLabel: "Org", ToLabel: "Org"})

	_, err := g.GetRelSchema("KNOWS", "", "")
	require.Error(t, err)
	require.True(t, cerrors.AmbiguousRelationship.Is(err))
}

func TestSchemaCatalogResolve(t *testing.T) {
	c := NewSchemaCatalog("social", userFollowsSchema())

	g, err := c.Resolve("", "")
	require.NoError(t, err)
	require.Equal(t, "social", g.Name)

	_, err = c.Resolve("", "missing")
	require.Error(t, err)
	require.True(t, cerrors.SchemaViolation.Is(err))
}

func TestSchemaCatalogResolvePrecedence(t *testing.T) {
	social := userFollowsSchema()
	other := NewGraphSchema("other")
	c := NewSchemaCatalog("social", social, other)

	// session hint overrides default
	g, err := c.Resolve("", "other")
	require.NoError(t, err)
	require.Equal(t, "other", g.Name)

	// USE clause overrides session hint
	g, err = c.Resolve("social", "other")
	require.NoError(t, err)
	require.Equal(t, "social", g.Name)
}

func TestValidatePolymorphicEndpoint(t *testing.T) {
	g := NewGraphSchema("poly")
	g.AddRelationship(PolymorphicRelationship{
		Tbl:        "interactions",
		TypeColumn: "interaction_type",
		TypeValue:  "FOLLOWS",
		From:       EndpointSpec{FixedLabel: "User"},
		To:         EndpointSpec{FixedLabel: "User"},
	})
	require.NoError(t, Validate(g))

	bad := NewGraphSchema("poly-bad")
	bad.AddRelationship(PolymorphicRelationship{
		Tbl:        "interactions",
		TypeColumn: "interaction_type",
		TypeValue:  "FOLLOWS",
		From:       EndpointSpec{LabelColumn: "from_label"}, // missing LabelValues
		To:         EndpointSpec{FixedLabel: "User"},
	})
	err := Validate(bad)
	require.Error(t, err)
	require.True(t, cerrors.SchemaViolation.Is(err))
}

func TestLoadStampsLoadID(t *testing.T) {
	c := NewSchemaCatalog("social", userFollowsSchema())
	require.NoError(t, Load(c))
	require.NotEqual(t, "00000000-0000-0000-0000-000000000000", c.LoadID.String())
}
