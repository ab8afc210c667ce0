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

package sqlgen

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cygraph-io/cygraph/expr"
	"github.com/cygraph-io/cygraph/render"
)

func TestEmitSimpleSelectJoinWhere(t *testing.T) {
	pl := &render.Plan{
		From: render.TableRef{Table: "users", SQLAlias: "u"},
		Joins: []render.Join{{
			Kind:   render.InnerJoin,
			Source: render.TableRef{Table: "follows", SQLAlias: "r", SchemaFilter: "r.deleted = 0"},
			On:     &expr.BinaryOp{Op: "=", Left: &expr.ColumnRef{SQLAlias: "u", SQLExpr: "user_id"}, Right: &expr.ColumnRef{SQLAlias: "r", SQLExpr: "follower_id"}},
		}},
		Where: &expr.BinaryOp{Op: "=", Left: &expr.ColumnRef{SQLAlias: "u", SQLExpr: "name"}, Right: &expr.Literal{Value: "Ada"}},
		Select: []render.Projection{{Expr: &expr.ColumnRef{SQLAlias: "u", SQLExpr: "name"}, As: "name"}},
	}
	e := NewEmitter(ColumnarDialect{}, 100)
	sql, err := e.Emit(pl)
	require.NoError(t, err)
	require.Contains(t, sql, "SELECT `u`.name AS `name`")
	require.Contains(t, sql, "FROM `users` AS `u`")
	require.Contains(t, sql, "INNER JOIN `follows` AS `r` ON `u`.user_id = `r`.follower_id AND (r.deleted = 0)")
	require.Contains(t, sql, "WHERE `u`.name = 'Ada'")
}

func TestEmitBetweenAndWindowCall(t *testing.T) {
	between := &expr.BinaryOp{
		Op:    "BETWEEN",
		Left:  &expr.ColumnRef{SQLAlias: "cte", SQLExpr: "hop_count"},
		Right: &expr.ListLiteral{Items: []expr.Expression{&expr.Literal{Value: 1}, &expr.Literal{Value: 5}}},
	}
	e := NewEmitter(ColumnarDialect{}, 0)
	s, err := e.emitExpr(between, precLowest)
	require.NoError(t, err)
	require.Equal(t, "`cte`.hop_count BETWEEN 1 AND 5", s)

	win := &expr.WindowCall{
		Name:        "MIN",
		Args:        []expr.Expression{&expr.ColumnRef{SQLAlias: "cte", SQLExpr: "hop_count"}},
		PartitionBy: []expr.Expression{&expr.ColumnRef{SQLAlias: "cte", SQLExpr: "start_id"}},
	}
	s, err = e.emitExpr(win, precLowest)
	require.NoError(t, err)
	require.Equal(t, "MIN(`cte`.hop_count) OVER (PARTITION BY `cte`.start_id)", s)
}

func TestEmitRecursiveCTEAppendsSettings(t *testing.T) {
	base := &render.Plan{From: render.TableRef{Table: "follows", SQLAlias: "r0"}, Select: []render.Projection{{Expr: expr.Star{}}}}
	rec := &render.Plan{From: render.TableRef{IsCTERef: true, Table: "path_cte", SQLAlias: "p"}, Select: []render.Projection{{Expr: expr.Star{}}}}
	pl := &render.Plan{
		CTEs: []render.CTE{{Name: "path_cte", Recursive: true, Plan: base, RecursivePlan: rec}},
		From: render.TableRef{IsCTERef: true, Table: "path_cte", SQLAlias: "path_cte"},
	}
	e := NewEmitter(ColumnarDialect{}, 100)
	sql, err := e.Emit(pl)
	require.NoError(t, err)
	require.Contains(t, sql, "WITH `path_cte` AS (")
	require.Contains(t, sql, "UNION ALL")
	require.Contains(t, sql, "SETTINGS max_recursive_cte_evaluation_depth = 100")
}
