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

package ctegen

import (
	"github.com/cygraph-io/cygraph/expr"
	"github.com/cygraph-io/cygraph/plan"
)

// buildRange emits a recursive CTE with a hop_count column for a
// `*min..max` pattern (§4.6 "Range [min, max]").
func (g *Generator) buildRange(gr *plan.GraphRel) (*Output, error) {
	if err := rejectUnsupportedEndpoints(gr); err != nil {
		return nil, err
	}
	out, err := g.baseRecursiveSkeleton(gr, "range")
	if err != nil {
		return nil, err
	}
	out.OuterFilter = &expr.BinaryOp{
		Op: "BETWEEN",
		Left: &expr.ColumnRef{SQLAlias: out.CTEName, SQLExpr: out.HopCountCol},
		// Right carries [min, max] as a two-item ListLiteral the emitter
		// renders as "BETWEEN min AND max" (§4.7 emits BETWEEN from this
		// pair, see sqlgen).
		Right: &expr.ListLiteral{Items: []expr.Expression{intLiteral(gr.Length.Min), intLiteral(gr.Length.Max)}},
	}
	return out, nil
}

// baseRecursiveSkeleton builds the shared (start_id, end_id, hop_count,
// path) base/recursive pair used by range, shortestPath and
// allShortestPaths (§4.6 "Recursive CTE contract"). strategy is an
// alphanumeric tag identifying the caller (e.g. "range",
// "shortestpath") - the variable-length bound itself never appears in
// the generated identifier, since min/max can contain characters
// (`*`, `.`, `..`) that make for a fragile, unportable CTE name; the
// xxhash suffix already disambiguates patterns sharing a strategy and
// alias chain.
func (g *Generator) baseRecursiveSkeleton(gr *plan.GraphRel, strategy string) (*Output, error) {
	edge, ok := gr.Edge.(*plan.ViewScan)
	if !ok {
		return nil, internalErr("variable-length edge is missing a resolved ViewScan")
	}
	fromCol, toCol := idColumns(edge.RelSchema)
	startSchema, endSchema := gr.Left.Scan.NodeSchema, gr.Right.Scan.NodeSchema

	cteName := g.Names.CTEName("varlen_"+strategy, gr.Alias, gr.Left.Alias, gr.Right.Alias)
	const startIDCol, endIDCol, hopCountCol, pathCol = "start_id", "end_id", "hop_count", "path"

	startRef := &expr.ColumnRef{SQLAlias: gr.Left.Scan.SQLAlias, SQLExpr: startSchema.IDColumn}
	endRef := &expr.ColumnRef{SQLAlias: gr.Right.Scan.SQLAlias, SQLExpr: endSchema.IDColumn}

	base := &SelectSpec{
		From: fromSpecOfNode(gr.Left),
		Joins: []JoinSpec{
			edgeJoinSpec(edge, gr.Optional, idEquals(edge.SQLAlias, fromCol, gr.Left.Scan.SQLAlias, startSchema.IDColumn)),
			{
				Kind: joinKind(gr.Optional), Database: endSchema.Database, Table: endSchema.Table,
				SQLAlias: gr.Right.Scan.SQLAlias, UseFinal: endSchema.UseFinal, SchemaFilter: endSchema.Filter,
				On: idEquals(gr.Right.Scan.SQLAlias, endSchema.IDColumn, edge.SQLAlias, toCol),
			},
		},
		Where: gr.Left.Scan.ViewFilter,
		Select: []SelectItem{
			{Expr: startRef, As: startIDCol},
			{Expr: endRef, As: endIDCol},
			{Expr: intLiteral(1), As: hopCountCol},
			{Expr: &expr.FunctionCall{Name: "array", Args: []expr.Expression{startRef, endRef}}, As: pathCol},
		},
	}

	prevAlias := cteName + "_prev"
	prevHop := &expr.ColumnRef{SQLAlias: prevAlias, SQLExpr: hopCountCol}
	prevPath := &expr.ColumnRef{SQLAlias: prevAlias, SQLExpr: pathCol}
	newEnd := &expr.ColumnRef{SQLAlias: edge.SQLAlias, SQLExpr: toCol}

	recursive := &SelectSpec{
		From: FromSpec{SQLAlias: prevAlias, SelfRef: true},
		Joins: []JoinSpec{
			edgeJoinSpec(edge, gr.Optional, idEquals(edge.SQLAlias, fromCol, prevAlias, endIDCol)),
			{
				Kind: joinKind(gr.Optional), Database: endSchema.Database, Table: endSchema.Table,
				SQLAlias: gr.Right.Scan.SQLAlias, UseFinal: endSchema.UseFinal, SchemaFilter: endSchema.Filter,
				On: idEquals(gr.Right.Scan.SQLAlias, endSchema.IDColumn, edge.SQLAlias, toCol),
			},
		},
		Where: &expr.BinaryOp{
			Op:   "AND",
			Left: &expr.BinaryOp{Op: "<", Left: prevHop, Right: intLiteral(gr.Length.Max)},
			Right: &expr.UnaryOp{Op: "NOT", Child: &expr.FunctionCall{
				Name: "has", Args: []expr.Expression{prevPath, newEnd},
			}},
		},
		Select: []SelectItem{
			{Expr: &expr.ColumnRef{SQLAlias: prevAlias, SQLExpr: startIDCol}, As: startIDCol},
			{Expr: newEnd, As: endIDCol},
			{Expr: &expr.BinaryOp{Op: "+", Left: prevHop, Right: intLiteral(1)}, As: hopCountCol},
			{Expr: &expr.FunctionCall{Name: "arrayPushBack", Args: []expr.Expression{prevPath, newEnd}}, As: pathCol},
		},
	}
	return &Output{
		Kind: "cte", CTEName: cteName, Base: base, Recursive: recursive,
		StartIDCol: startIDCol, EndIDCol: endIDCol, HopCountCol: hopCountCol, PathCol: pathCol,
	}, nil
}
