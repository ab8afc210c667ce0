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
	"github.com/cygraph-io/cygraph/catalog"
	"github.com/cygraph-io/cygraph/cerrors"
	"github.com/cygraph-io/cygraph/expr"
	"github.com/cygraph-io/cygraph/plan"
)

// idColumns returns the (from, to) id columns of a relationship
// schema, dispatching on the tagged sum (§9).
func idColumns(schema catalog.RelationshipSchema) (string, string) {
	switch rs := schema.(type) {
	case catalog.StandardRelationship:
		return rs.FromIDColumn, rs.ToIDColumn
	case catalog.PolymorphicRelationship:
		return rs.FromIDColumn, rs.ToIDColumn
	default:
		return "", ""
	}
}

func idEquals(leftAlias, leftCol, rightAlias, rightCol string) expr.Expression {
	return &expr.BinaryOp{
		Op:    "=",
		Left:  &expr.ColumnRef{SQLAlias: leftAlias, SQLExpr: leftCol},
		Right: &expr.ColumnRef{SQLAlias: rightAlias, SQLExpr: rightCol},
	}
}

func joinKind(optional bool) string {
	if optional {
		return "LEFT"
	}
	return "INNER"
}

// fromSpecOfNode builds a FromSpec for a resolved node endpoint.
func fromSpecOfNode(gn *plan.GraphNode) FromSpec {
	ns := gn.Scan.NodeSchema
	return FromSpec{
		Database:     ns.Database,
		Table:        ns.Table,
		SQLAlias:     gn.Scan.SQLAlias,
		UseFinal:     ns.UseFinal,
		SchemaFilter: ns.Filter,
	}
}

// edgeJoinSpec builds the JoinSpec for joining the edge's ViewScan,
// reusing whatever filter the analyzer already pushed down into it.
func edgeJoinSpec(edge *plan.ViewScan, optional bool, on expr.Expression) JoinSpec {
	return JoinSpec{
		Kind:         joinKind(optional),
		Database:     edge.Database,
		Table:        edge.Table,
		SQLAlias:     edge.SQLAlias,
		UseFinal:     edge.UseFinal,
		SchemaFilter: edge.SchemaFilter,
		On:           on,
	}
}

// rejectUnsupportedEndpoints enforces §4.6 "Pattern coverage
// (current): standard schemas" - denormalized or polymorphic
// node/edge schemas in recursive position are rejected rather than
// silently mis-rendered.
func rejectUnsupportedEndpoints(gr *plan.GraphRel) error {
	if gr.Left.Scan.NodeSchema.IsDenormalized() || gr.Right.Scan.NodeSchema.IsDenormalized() {
		return cerrors.UnsupportedFeature.New("denormalized node schema in a variable-length recursive path")
	}
	if edge, ok := gr.Edge.(*plan.ViewScan); ok && edge.TypeColumn != "" {
		return cerrors.UnsupportedFeature.New("polymorphic relationship schema in a variable-length recursive path")
	}
	return nil
}

func intLiteral(n int) expr.Expression { return &expr.Literal{Value: int64(n), IsSQL: false} }

func internalErr(msg string) error { return cerrors.InternalError.New(msg) }
