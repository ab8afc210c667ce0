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

package expr

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTransformUpRewritesLeaves(t *testing.T) {
	e := &BinaryOp{
		Op:   "AND",
		Left: &UnresolvedPropertyAccess{Alias: "u", Property: "name"},
		Right: &UnresolvedPropertyAccess{Alias: "u", Property: "age"},
	}

	got, err := TransformUp(e, func(e Expression) (Expression, error) {
		if u, ok := e.(*UnresolvedPropertyAccess); ok {
			return &ColumnRef{SQLAlias: u.Alias, SQLExpr: u.Property}, nil
		}
		return e, nil
	})
	require.NoError(t, err)
	require.True(t, got.Resolved())
	require.Equal(t, "(u.name AND u.age)", got.String())
}

func TestJoinAndSplitAndRoundTrip(t *testing.T) {
	a := &Literal{Value: 1}
	b := &Literal{Value: 2}
	c := &Literal{Value: 3}

	joined := JoinAnd(a, b, c)
	parts := SplitAnd(joined)
	require.Len(t, parts, 3)
}

func TestJoinAndEmpty(t *testing.T) {
	require.Nil(t, JoinAnd())
}

func TestInspectVisitsAllNodes(t *testing.T) {
	e := &InList{
		Target: &UnresolvedPropertyAccess{Alias: "n", Property: "id"},
		List:   []Expression{&Literal{Value: 1}, &Literal{Value: 2}},
	}

	var visited int
	Inspect(e, func(Expression) bool {
		visited++
		return true
	})
	require.Equal(t, 4, visited) // InList + target + 2 literals
}
