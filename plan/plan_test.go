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

	"github.com/cygraph-io/cygraph/catalog"
	"github.com/cygraph-io/cygraph/expr"
)

func userScan(alias string) *ViewScan {
	return &ViewScan{
		SQLAlias: alias,
		Table:    "users",
		Label:    "User",
		NodeSchema: &catalog.NodeSchema{
			Label: "User", Table: "users", IDColumn: "user_id",
		},
	}
}

func TestTransformUpReplacesLeaves(t *testing.T) {
	f := NewFilter(&expr.Literal{Value: true}, userScan("u"))

	count := 0
	got, err := TransformUp(f, func(n Node) (Node, error) {
		count++
		return n, nil
	})
	require.NoError(t, err)
	require.Equal(t, 2, count) // ViewScan then Filter
	require.True(t, got.Resolved())
}

func TestTransformExpressionsUpRewritesFilterPredicate(t *testing.T) {
	f := NewFilter(&expr.UnresolvedPropertyAccess{Alias: "u", Property: "name"}, userScan("u"))

	got, err := TransformExpressionsUp(f, func(e expr.Expression) (expr.Expression, error) {
		if u, ok := e.(*expr.UnresolvedPropertyAccess); ok {
			return &expr.ColumnRef{SQLAlias: u.Alias, SQLExpr: u.Property}, nil
		}
		return e, nil
	})
	require.NoError(t, err)
	gotFilter := got.(*Filter)
	require.IsType(t, &expr.ColumnRef{}, gotFilter.Predicate)
}

func TestWalkVisitsAllNodes(t *testing.T) {
	left := &GraphNode{Alias: "a", Scan: userScan("a")}
	right := &GraphNode{Alias: "b", Scan: userScan("b")}
	rel := &GraphRel{
		Alias: "r", Type: "FOLLOWS", Direction: DirRight, Length: LengthSpec{Kind: LengthExactOne},
		Left: left, Right: right,
		Edge: &ViewScan{SQLAlias: "r", Table: "follows", RelSchema: catalog.StandardRelationship{Type: "FOLLOWS", Tbl: "follows"}},
	}
	gj := &GraphJoins{Anchor: rel, Elements: []Node{rel}}

	nodes := Walk(gj)
	// GraphJoins, GraphRel, GraphNode(a), ViewScan(a), ViewScan(r),
	// GraphNode(b), ViewScan(b) = 7
	require.Len(t, nodes, 7)
	require.True(t, gj.Resolved())
}

func TestUnaryNodesPreserveChildOnWithChildren(t *testing.T) {
	scan := userScan("u")
	lim := NewLimit(&expr.Literal{Value: 10}, NewSkip(&expr.Literal{Value: 5}, scan))

	rebuilt, err := lim.WithChildren(lim.Child)
	require.NoError(t, err)
	require.Equal(t, lim.Child, rebuilt.(*Limit).Child)
}
