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
	"github.com/cygraph-io/cygraph/plan"
)

// schemaInference is pass 1 (§4.4.1): binds every ViewScan to a
// NodeSchema or RelationshipSchema, inferring the label of an
// anonymous node endpoint from its one incident relationship when the
// node pattern carried no label of its own.
func schemaInference(a *Analyzer, n plan.Node) (plan.Node, error) {
	a.Log("schema_inference: resolving scans against catalog %q", a.Catalog.Name)
	return plan.TransformUp(n, func(node plan.Node) (plan.Node, error) {
		switch v := node.(type) {
		case *plan.GraphNode:
			if v.Scan.Label == "" {
				// Anonymous node: left unresolved here, inferred by
				// resolveRelScan below from whichever incident edge
				// names a single candidate label (§4.3
				// "UnresolvedAnonymousNode").
				return v, nil
			}
			return bindNodeLabel(a, v, v.Scan.Label)
		case *plan.GraphRel:
			return resolveRelScan(a, v)
		default:
			return node, nil
		}
	})
}

func bindNodeLabel(a *Analyzer, gn *plan.GraphNode, label string) (*plan.GraphNode, error) {
	schema, err := a.Catalog.GetNodeSchema(label)
	if err != nil {
		return nil, err
	}
	scan := *gn.Scan
	scan.Label = label
	scan.NodeSchema = schema
	scan.Database = schema.Database
	scan.Table = schema.Table
	scan.Unresolved = false
	scan.SchemaFilter = schema.Filter
	scan.UseFinal = schema.UseFinal
	ngn := *gn
	ngn.Scan = &scan
	ngn.Denormalized = schema.IsDenormalized()
	return &ngn, nil
}

// resolveRelScan resolves a GraphRel's edge schema. Multi-type
// alternation (`AltTypes` non-empty) is left for join_inference
// (§4.4.5), which expands it into a UnionAll of per-type scans.
func resolveRelScan(a *Analyzer, gr *plan.GraphRel) (plan.Node, error) {
	if gr.Type == "" {
		return gr, nil
	}

	// leftRole/rightRole map the pattern's structural Left/Right slots
	// onto the schema's semantic from/to endpoints, which flip for a
	// left-pointing arrow (§4.3 "(a)<-[r]-(b) is FROM b TO a").
	leftRole, rightRole := "from", "to"
	if gr.Direction == plan.DirLeft {
		leftRole, rightRole = "to", "from"
	}

	fromLabel, toLabel := gr.Left.Scan.Label, gr.Right.Scan.Label
	if leftRole == "to" {
		fromLabel, toLabel = toLabel, fromLabel
	}

	schema, err := a.Catalog.GetRelSchema(gr.Type, fromLabel, toLabel)
	if err != nil {
		return nil, err
	}

	left := withRole(gr.Left, leftRole)
	if left.Scan.Label == "" {
		left, err = bindNodeLabel(a, left, endpointLabelFor(schema, leftRole))
		if err != nil {
			return nil, err
		}
	}
	right := withRole(gr.Right, rightRole)
	if right.Scan.Label == "" {
		right, err = bindNodeLabel(a, right, endpointLabelFor(schema, rightRole))
		if err != nil {
			return nil, err
		}
	}

	ngr := *gr
	ngr.Left, ngr.Right = left, right

	edgeScan, ok := gr.Edge.(*plan.ViewScan)
	if !ok {
		// Already expanded into a UnionAll by an earlier rerun; leave
		// it untouched.
		return &ngr, nil
	}
	scan := *edgeScan
	scan.RelSchema = schema
	scan.Database = schema.Database()
	scan.Table = schema.Table()
	scan.Unresolved = false

	switch rs := schema.(type) {
	case catalog.StandardRelationship:
		scan.SchemaFilter = rs.Filter
		scan.UseFinal = rs.UseFinal
	case catalog.PolymorphicRelationship:
		scan.TypeColumn = rs.TypeColumn
		scan.TypeValues = []string{rs.TypeValue}
		scan.LabelFilters = polymorphicLabelFilters(rs)
	}
	ngr.Edge = &scan
	return &ngr, nil
}

// endpointLabelFor picks the label to bind an anonymous endpoint to:
// the schema's fixed label for that side, or (for a closed-world
// label column with exactly one possible value) that single value.
// GetRelSchema has already ruled out ambiguity across types; residual
// ambiguity within one polymorphic endpoint's label set is a
// SchemaViolation the validation pass reports, not a panic here.
func endpointLabelFor(schema catalog.RelationshipSchema, side string) string {
	switch rs := schema.(type) {
	case catalog.StandardRelationship:
		if side == "from" {
			return rs.FromLabel
		}
		return rs.ToLabel
	case catalog.PolymorphicRelationship:
		ep := rs.From
		if side == "to" {
			ep = rs.To
		}
		if ep.IsFixed() {
			return ep.FixedLabel
		}
		if len(ep.LabelValues) == 1 {
			return ep.LabelValues[0]
		}
		return ""
	default:
		return ""
	}
}

// withRole returns a copy of gn tagged with its semantic role for
// this edge; denormalized-node property resolution (§4.4.2) reads
// this back off the node rather than off the edge.
func withRole(gn *plan.GraphNode, role string) *plan.GraphNode {
	ngn := *gn
	ngn.Role = role
	return &ngn
}

func polymorphicLabelFilters(rs catalog.PolymorphicRelationship) []plan.LabelFilter {
	var out []plan.LabelFilter
	for _, ep := range []struct {
		side string
		spec catalog.EndpointSpec
	}{{"from", rs.From}, {"to", rs.To}} {
		if !ep.spec.IsFixed() && ep.spec.LabelColumn != "" {
			out = append(out, plan.LabelFilter{Column: ep.spec.LabelColumn, Values: ep.spec.LabelValues})
		}
	}
	return out
}
