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

package analyzer

import (
	"github.com/cygraph-io/cygraph/catalog"
	"github.com/cygraph-io/cygraph/cerrors"
	"github.com/cygraph-io/cygraph/expr"
	"github.com/cygraph-io/cygraph/plan"
)

// joinInference is pass 5 (§4.4.5). Two of its four responsibilities
// are handled elsewhere by construction and are only documented here:
//
//   - Linear chains and comma patterns already share one *GraphNode
//     pointer per Cypher alias (the builder's b.bound map, §4.3), so
//     the render planner (§4.5) can walk a GraphJoins's Elements in
//     order and simply skip re-emitting FROM for an alias it has
//     already rendered, turning a shared alias into a join key
//     instead of a fresh scan.
//   - Bidirectional edges (`-[r]-`) are resolved by the render
//     planner into an OR'd ON predicate covering both id-column
//     orderings, rather than a literal UnionAll plan node: the two
//     are equivalent SQL and the former avoids duplicating every
//     node/relationship scan beneath an undirected edge.
//
// What this pass actually rewrites:
//   - Polymorphic edges: turns the TypeColumn/TypeValues and
//     LabelFilters metadata schema_inference attached into a real
//     ViewFilter predicate (`type_column IN (...)`, plus any
//     closed-world label-column predicates).
//   - Multi-type alternation (`:R1|R2`): expands a GraphRel whose Edge
//     is still a single unresolved ViewScan (AltTypes non-empty) into
//     a UnionAll of one resolved ViewScan per type.
func joinInference(a *Analyzer, n plan.Node) (plan.Node, error) {
	a.Log("join_inference: expanding polymorphic filters and type alternation")
	return plan.TransformUp(n, func(node plan.Node) (plan.Node, error) {
		gr, ok := node.(*plan.GraphRel)
		if !ok {
			return node, nil
		}
		if len(gr.AltTypes) > 0 {
			return expandAlternation(a, gr)
		}
		return applyPolymorphicFilter(gr)
	})
}

func applyPolymorphicFilter(gr *plan.GraphRel) (plan.Node, error) {
	scan, ok := gr.Edge.(*plan.ViewScan)
	if !ok || scan.TypeColumn == "" {
		return gr, nil
	}
	pred := typeInPredicate(scan.SQLAlias, scan.TypeColumn, scan.TypeValues)
	for _, lf := range scan.LabelFilters {
		pred = &expr.BinaryOp{Op: "AND", Left: pred, Right: typeInPredicate(scan.SQLAlias, lf.Column, lf.Values)}
	}
	nscan := *scan
	if nscan.ViewFilter == nil {
		nscan.ViewFilter = pred
	} else {
		nscan.ViewFilter = &expr.BinaryOp{Op: "AND", Left: nscan.ViewFilter, Right: pred}
	}
	ngr := *gr
	ngr.Edge = &nscan
	return &ngr, nil
}

func typeInPredicate(sqlAlias, column string, values []string) expr.Expression {
	list := make([]expr.Expression, len(values))
	for i, v := range values {
		list[i] = &expr.Literal{Value: v}
	}
	return &expr.InList{Target: &expr.ColumnRef{SQLAlias: sqlAlias, SQLExpr: column}, List: list}
}

// expandAlternation resolves a `:R1|R2` relationship into a UnionAll
// of one ViewScan per type. It requires both endpoints to already
// carry a label, since the closed-world lookup is per (type, from,
// to) triple (§4.1): an anonymous endpoint adjacent to a multi-type
// alternation has no single schema to infer its label from, so this
// is reported as a SchemaViolation rather than guessed at.
func expandAlternation(a *Analyzer, gr *plan.GraphRel) (plan.Node, error) {
	if gr.Left.Scan.Label == "" || gr.Right.Scan.Label == "" {
		return nil, cerrors.SchemaViolation.New(
			"multi-type relationship alternation requires explicit labels on both endpoints")
	}

	leftRole, rightRole := "from", "to"
	if gr.Direction == plan.DirLeft {
		leftRole, rightRole = "to", "from"
	}
	fromLabel, toLabel := gr.Left.Scan.Label, gr.Right.Scan.Label
	if leftRole == "to" {
		fromLabel, toLabel = toLabel, fromLabel
	}

	branches := make([]plan.Node, len(gr.AltTypes))
	for i, t := range gr.AltTypes {
		schema, err := a.Catalog.GetRelSchema(t, fromLabel, toLabel)
		if err != nil {
			return nil, err
		}
		scan := &plan.ViewScan{
			SQLAlias:  gr.Alias,
			Database:  schema.Database(),
			Table:     schema.Table(),
			RelSchema: schema,
			Pos:       gr.Left.Scan.Pos,
		}
		switch rs := schema.(type) {
		case catalog.StandardRelationship:
			scan.SchemaFilter = rs.Filter
			scan.UseFinal = rs.UseFinal
		case catalog.PolymorphicRelationship:
			scan.TypeColumn = rs.TypeColumn
			scan.TypeValues = []string{rs.TypeValue}
		}
		branches[i] = scan
	}

	ngr := *gr
	ngr.Edge = plan.NewUnionAll(branches...)
	ngr.AltTypes = nil
	return &ngr, nil
}
