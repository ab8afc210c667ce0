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
	"github.com/cygraph-io/cygraph/catalog"
	"github.com/cygraph-io/cygraph/cerrors"
	"github.com/cygraph-io/cygraph/ctegen"
	"github.com/cygraph-io/cygraph/expr"
	"github.com/cygraph-io/cygraph/plan"
)

// renderGraphJoins turns one MATCH pattern (§4.4.5) into a FROM plus
// an ordered JOIN list. Shared Cypher aliases already point at one
// *plan.GraphNode (the builder's bound map, §4.3), so walking
// Elements in order and skipping any alias already emitted is enough
// to turn a comma pattern's overlap into a real join key instead of a
// fresh scan.
//
// A denormalized anchor has no table of its own (§4.5 "Denormalized
// nodes collapse: FROM(edge) only, node aliases resolved to edge
// alias"), so FROM is taken from the incident relationship's edge
// ViewScan instead of the anchor's own ViewScan.
func (p *Planner) renderGraphJoins(gj *plan.GraphJoins) (*Plan, error) {
	pl := &Plan{}
	emitted := map[string]bool{}

	anchor, err := firstNode(gj)
	if err != nil {
		return nil, err
	}
	if anchor.Denormalized {
		edge, err := incidentEdgeScan(gj)
		if err != nil {
			return nil, err
		}
		pl.From = tableRefFromScan(edge)
		pl.Where = andExpr(pl.Where, edge.ViewFilter)
		emitted[edge.SQLAlias] = true
		emitted[anchor.Scan.SQLAlias] = true
	} else {
		pl.From = tableRefFromScan(anchor.Scan)
		pl.Where = andExpr(pl.Where, anchor.Scan.ViewFilter)
		emitted[anchor.Scan.SQLAlias] = true
	}

	for _, el := range gj.Elements {
		optional := gj.Optional
		var rels []*plan.GraphRel
		switch v := el.(type) {
		case *plan.GraphRel:
			rels = []*plan.GraphRel{v}
		case *plan.GraphJoins:
			// A nested GraphJoins is an OPTIONAL MATCH segment (§4.3).
			optional = optional || v.Optional
			for _, inner := range v.Elements {
				if gr, ok := inner.(*plan.GraphRel); ok {
					rels = append(rels, gr)
				}
			}
		}
		for _, gr := range rels {
			joinKind := InnerJoin
			if optional || gr.Optional {
				joinKind = LeftJoin
			}
			if gr.Length.IsSingleHop() {
				if err := p.renderSingleHop(pl, gr, joinKind, emitted); err != nil {
					return nil, err
				}
				continue
			}
			if err := p.renderVariableLength(pl, gr, joinKind, emitted); err != nil {
				return nil, err
			}
		}
	}
	return pl, nil
}

func firstNode(gj *plan.GraphJoins) (*plan.GraphNode, error) {
	switch a := gj.Anchor.(type) {
	case *plan.GraphNode:
		return a, nil
	case *plan.GraphRel:
		return a.Left, nil
	default:
		return nil, cerrors.InternalError.New("GraphJoins anchor must be a node or relationship")
	}
}

// incidentEdgeScan returns the resolved ViewScan of the relationship
// immediately following a denormalized anchor node (always
// gj.Elements[1] - the builder lays out a linear chain as
// Node, Rel, Node, Rel, ... starting at the anchor, §4.3). This is
// what FROM resolves to when the anchor itself has no physical table.
func incidentEdgeScan(gj *plan.GraphJoins) (*plan.ViewScan, error) {
	if len(gj.Elements) < 2 {
		return nil, cerrors.InternalError.New("denormalized anchor node has no incident relationship")
	}
	gr, ok := gj.Elements[1].(*plan.GraphRel)
	if !ok {
		return nil, cerrors.InternalError.New("denormalized anchor node is not followed by a relationship")
	}
	edge, ok := gr.Edge.(*plan.ViewScan)
	if !ok {
		return nil, cerrors.UnsupportedFeature.New("multi-type relationship alternation on a denormalized endpoint")
	}
	return edge, nil
}

func tableRefFromScan(s *plan.ViewScan) TableRef {
	return TableRef{
		Database: s.Database, Table: s.Table, SQLAlias: s.SQLAlias,
		UseFinal: s.UseFinal, SchemaFilter: s.SchemaFilter, ViewParameters: s.ViewParameters,
	}
}

func edgeIDColumns(schema catalog.RelationshipSchema) (string, string) {
	switch rs := schema.(type) {
	case catalog.StandardRelationship:
		return rs.FromIDColumn, rs.ToIDColumn
	case catalog.PolymorphicRelationship:
		return rs.FromIDColumn, rs.ToIDColumn
	default:
		return "", ""
	}
}

func idEqualsRender(leftAlias, leftCol, rightAlias, rightCol string) expr.Expression {
	return &expr.BinaryOp{
		Op:    "=",
		Left:  &expr.ColumnRef{SQLAlias: leftAlias, SQLExpr: leftCol},
		Right: &expr.ColumnRef{SQLAlias: rightAlias, SQLExpr: rightCol},
	}
}

// renderSingleHop joins a single-hop edge and its far endpoint onto
// pl. A denormalized endpoint never has a table of its own (its
// properties resolve straight against the edge alias,
// alias_resolution's backfillDenormAlias, §4.4.2), so the other
// endpoint always anchors the edge join when one side is denormalized;
// otherwise whichever endpoint already has a table in pl anchors it,
// defaulting to Left (the structurally earlier alias in the builder's
// left-to-right order). When the edge's own alias is already emitted
// - because renderGraphJoins already placed it as FROM for a
// denormalized anchor (§4.5) - the edge join itself is skipped and
// only a remaining physical endpoint, if any, still gets joined.
func (p *Planner) renderSingleHop(pl *Plan, gr *plan.GraphRel, kind JoinKind, emitted map[string]bool) error {
	edge, ok := gr.Edge.(*plan.ViewScan)
	if !ok {
		return cerrors.InternalError.New("single-hop relationship is missing a resolved ViewScan")
	}
	fromCol, toCol := edgeIDColumns(edge.RelSchema)
	undirected := gr.Direction == plan.DirUndirected

	// A denormalized endpoint has no table of its own: once the edge
	// is placed, it never needs a join (§4.5). Mark both sides now so
	// the bookkeeping below is correct regardless of which one ends
	// up as anchorNode/farNode.
	for _, nd := range [2]*plan.GraphNode{gr.Left, gr.Right} {
		if nd.Denormalized {
			emitted[nd.Scan.SQLAlias] = true
		}
	}

	anchorNode, farNode := gr.Left, gr.Right
	if gr.Left.Denormalized || (!emitted[gr.Left.Scan.SQLAlias] && emitted[gr.Right.Scan.SQLAlias]) {
		anchorNode, farNode = gr.Right, gr.Left
	}

	if !emitted[edge.SQLAlias] {
		var edgeOn expr.Expression
		switch {
		case undirected:
			edgeOn = undirectedEdgeOn(edge.SQLAlias, fromCol, toCol, anchorNode.Scan.SQLAlias, anchorNode.Scan.NodeSchema.IDColumn)
		case anchorNode.Role == "from":
			edgeOn = idEqualsRender(edge.SQLAlias, fromCol, anchorNode.Scan.SQLAlias, anchorNode.Scan.NodeSchema.IDColumn)
		default:
			edgeOn = idEqualsRender(edge.SQLAlias, toCol, anchorNode.Scan.SQLAlias, anchorNode.Scan.NodeSchema.IDColumn)
		}
		pl.Joins = append(pl.Joins, Join{Kind: kind, Source: tableRefFromScan(edge), On: edgeOn})
		pl.Where = andExpr(pl.Where, edge.ViewFilter)
		emitted[edge.SQLAlias] = true
	}

	if farNode.Denormalized {
		return nil
	}
	if emitted[farNode.Scan.SQLAlias] {
		// Cycle-closing edge: both endpoints already bound, the ON
		// predicate above already connects them through the edge row.
		return nil
	}

	var nodeOn expr.Expression
	switch {
	case undirected:
		nodeOn = undirectedNodeOn(farNode.Scan.SQLAlias, farNode.Scan.NodeSchema.IDColumn,
			edge.SQLAlias, fromCol, toCol, anchorNode.Scan.SQLAlias, anchorNode.Scan.NodeSchema.IDColumn)
	case farNode.Role == "from":
		nodeOn = idEqualsRender(farNode.Scan.SQLAlias, farNode.Scan.NodeSchema.IDColumn, edge.SQLAlias, fromCol)
	default:
		nodeOn = idEqualsRender(farNode.Scan.SQLAlias, farNode.Scan.NodeSchema.IDColumn, edge.SQLAlias, toCol)
	}
	if gr.JoinFilter != nil {
		nodeOn = andExpr(nodeOn, gr.JoinFilter)
	}
	pl.Joins = append(pl.Joins, Join{Kind: kind, Source: tableRefFromScan(farNode.Scan), On: nodeOn})
	pl.Where = andExpr(pl.Where, farNode.Scan.ViewFilter)
	emitted[farNode.Scan.SQLAlias] = true
	return nil
}

func undirectedEdgeOn(edgeAlias, fromCol, toCol, nodeAlias, nodeIDCol string) expr.Expression {
	return &expr.BinaryOp{
		Op:    "OR",
		Left:  idEqualsRender(edgeAlias, fromCol, nodeAlias, nodeIDCol),
		Right: idEqualsRender(edgeAlias, toCol, nodeAlias, nodeIDCol),
	}
}

// undirectedNodeOn resolves a bidirectional edge (`-[r]-`) into an
// OR'd ON predicate covering both id-column orderings instead of a
// literal UnionAll plan node (join_inference.go).
func undirectedNodeOn(nodeAlias, nodeIDCol, edgeAlias, fromCol, toCol, otherAlias, otherIDCol string) expr.Expression {
	forward := &expr.BinaryOp{
		Op:    "AND",
		Left:  idEqualsRender(nodeAlias, nodeIDCol, edgeAlias, toCol),
		Right: idEqualsRender(edgeAlias, fromCol, otherAlias, otherIDCol),
	}
	backward := &expr.BinaryOp{
		Op:    "AND",
		Left:  idEqualsRender(nodeAlias, nodeIDCol, edgeAlias, fromCol),
		Right: idEqualsRender(edgeAlias, toCol, otherAlias, otherIDCol),
	}
	return &expr.BinaryOp{Op: "OR", Left: forward, Right: backward}
}

// renderVariableLength delegates to the CTE Generator (§4.6) and
// splices its output into pl: an exact-hop chain becomes an appended
// join list, a range/shortestPath/allShortestPaths result becomes a
// registered recursive CTE plus one join binding its (start_id,
// end_id) pair to gr's two physical endpoints. The CTE itself only
// carries id/hop/path columns (not endpoint properties) because
// property access on a path endpoint resolves against that endpoint's
// own ViewScan alias, joined here alongside the CTE, not against the
// CTE.
func (p *Planner) renderVariableLength(pl *Plan, gr *plan.GraphRel, kind JoinKind, emitted map[string]bool) error {
	out, err := p.cteGen.Build(gr)
	if err != nil {
		return err
	}
	switch out.Kind {
	case "chain":
		for _, js := range out.Chain {
			pl.Joins = append(pl.Joins, convertJoinSpec(js))
		}
		if !emitted[gr.Left.Scan.SQLAlias] {
			pl.Where = andExpr(pl.Where, gr.Left.Scan.ViewFilter)
			emitted[gr.Left.Scan.SQLAlias] = true
		}
		pl.Where = andExpr(pl.Where, gr.Right.Scan.ViewFilter)
		emitted[gr.Right.Scan.SQLAlias] = true
		return nil
	case "cte":
		basePlan := convertSelectSpec(out.Base, out.CTEName)
		recPlan := convertSelectSpec(out.Recursive, out.CTEName)
		pl.CTEs = append(pl.CTEs, CTE{
			Name: out.CTEName, Recursive: true,
			Columns: []string{out.StartIDCol, out.EndIDCol, out.HopCountCol, out.PathCol},
			Plan: basePlan, RecursivePlan: recPlan,
		})
		cteRef := TableRef{IsCTERef: true, Table: out.CTEName, SQLAlias: out.CTEName}
		pl.Joins = append(pl.Joins, Join{
			Kind: kind, Source: cteRef,
			On: idEqualsRender(out.CTEName, out.StartIDCol, gr.Left.Scan.SQLAlias, gr.Left.Scan.NodeSchema.IDColumn),
		})
		if !emitted[gr.Right.Scan.SQLAlias] {
			pl.Joins = append(pl.Joins, Join{
				Kind: kind, Source: tableRefFromScan(gr.Right.Scan),
				On: idEqualsRender(gr.Right.Scan.SQLAlias, gr.Right.Scan.NodeSchema.IDColumn, out.CTEName, out.EndIDCol),
			})
			pl.Where = andExpr(pl.Where, gr.Right.Scan.ViewFilter)
			emitted[gr.Right.Scan.SQLAlias] = true
		}
		pl.Where = andExpr(pl.Where, out.OuterFilter)
		if gr.JoinFilter != nil {
			pl.Where = andExpr(pl.Where, gr.JoinFilter)
		}
		return nil
	default:
		return cerrors.InternalError.New("ctegen returned an unrecognized output kind")
	}
}

func convertFromSpec(f ctegen.FromSpec, cteName string) TableRef {
	if f.SelfRef {
		return TableRef{IsCTERef: true, Table: cteName, SQLAlias: f.SQLAlias}
	}
	return TableRef{
		Database: f.Database, Table: f.Table, SQLAlias: f.SQLAlias,
		UseFinal: f.UseFinal, SchemaFilter: f.SchemaFilter,
	}
}

func convertJoinSpec(js ctegen.JoinSpec) Join {
	kind := InnerJoin
	if js.Kind == "LEFT" {
		kind = LeftJoin
	}
	return Join{
		Kind: kind,
		On:   js.On,
		Source: TableRef{
			Database: js.Database, Table: js.Table, SQLAlias: js.SQLAlias,
			UseFinal: js.UseFinal, SchemaFilter: js.SchemaFilter,
		},
	}
}

func convertSelectSpec(s *ctegen.SelectSpec, cteName string) *Plan {
	pl := &Plan{From: convertFromSpec(s.From, cteName), Where: s.Where}
	for _, j := range s.Joins {
		pl.Joins = append(pl.Joins, convertJoinSpec(j))
	}
	for _, si := range s.Select {
		pl.Select = append(pl.Select, Projection{Expr: si.Expr, As: si.As})
	}
	return pl
}
