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
	"fmt"

	"github.com/cygraph-io/cygraph/expr"
)

// Direction is the arrow direction of a relationship pattern.
type Direction int

const (
	DirRight       Direction = iota // (a)-[r]->(b)
	DirLeft                         // (a)<-[r]-(b)
	DirUndirected                   // (a)-[r]-(b)
)

// GraphNode wraps a ViewScan with graph-level attributes: the
// pattern's alias, label, denormalization flag, and the columns this
// pattern actually projects (§3.2).
type GraphNode struct {
	Alias string
	Scan  *ViewScan

	// Denormalized mirrors Scan.NodeSchema.IsDenormalized(), cached
	// here because it is consulted by nearly every downstream pass and
	// is cheaper to carry than to recompute against the schema each
	// time.
	Denormalized bool

	// Role is "from" or "to" when this node occupies one side of an
	// incident GraphRel; denormalized property resolution depends on
	// it (§4.4.2).
	Role string

	ProjectedColumns []string
}

func (g *GraphNode) Children() []Node { return []Node{g.Scan} }
func (g *GraphNode) WithChildren(c ...Node) (Node, error) {
	if len(c) != 1 {
		return nil, arityErr("GraphNode", 1, len(c))
	}
	scan, ok := c[0].(*ViewScan)
	if !ok {
		return nil, fmt.Errorf("GraphNode child must be a *ViewScan, got %T", c[0])
	}
	ng := *g
	ng.Scan = scan
	return &ng, nil
}
func (g *GraphNode) Resolved() bool { return g.Scan.Resolved() }
func (g *GraphNode) String() string {
	label := g.Scan.Label
	if label == "" {
		label = "?"
	}
	return fmt.Sprintf("GraphNode(%s:%s)", g.Alias, label)
}

// GraphRel wraps a left node, an edge ViewScan (or a UnionAll of
// per-type scans for `:R1|R2` alternation), and a right node, plus
// edge-level attributes (§3.2).
type GraphRel struct {
	Alias     string
	Type      string // empty when this is a multi-type alternation
	// AltTypes holds every `:R1|R2|R3` type when more than one was
	// written; join_inference (§4.4.5) turns this into a UnionAll of
	// one ViewScan per type. Empty for a single-type or untyped edge.
	AltTypes  []string
	Direction Direction
	Length    LengthSpec
	// PathVar is the Cypher path variable name for `p = (a)-[*]->(b)`,
	// empty when the pattern has no named path (§4.2 "Named paths").
	PathVar string

	Left  *GraphNode
	Edge  Node // *ViewScan, or *UnionAll for type alternation
	Right *GraphNode

	// Optional marks this GraphRel for LEFT-JOIN rendering because it
	// sits under an OPTIONAL MATCH (§4.3).
	Optional bool

	// JoinFilter is an extra predicate ANDed into this relationship's
	// JOIN ON clause: a multi-alias WHERE predicate that filter_pushdown
	// (§4.4.4) determined references exactly this GraphRel's two
	// endpoints. A catalog edge Constraint is not added to it, and the
	// render planner does not emit one into the ON clause either.
	JoinFilter expr.Expression
}

func (r *GraphRel) Children() []Node { return []Node{r.Left, r.Edge, r.Right} }
func (r *GraphRel) WithChildren(c ...Node) (Node, error) {
	if len(c) != 3 {
		return nil, arityErr("GraphRel", 3, len(c))
	}
	left, ok := c[0].(*GraphNode)
	if !ok {
		return nil, fmt.Errorf("GraphRel.Left must be a *GraphNode, got %T", c[0])
	}
	right, ok := c[2].(*GraphNode)
	if !ok {
		return nil, fmt.Errorf("GraphRel.Right must be a *GraphNode, got %T", c[2])
	}
	nr := *r
	nr.Left, nr.Edge, nr.Right = left, c[1], right
	return &nr, nil
}
func (r *GraphRel) Resolved() bool {
	return r.Left.Resolved() && r.Edge.Resolved() && r.Right.Resolved()
}
func (r *GraphRel) Expressions() []expr.Expression {
	if r.JoinFilter == nil {
		return nil
	}
	return []expr.Expression{r.JoinFilter}
}
func (r *GraphRel) WithExpressions(e ...expr.Expression) (Node, error) {
	nr := *r
	if len(e) == 1 {
		nr.JoinFilter = e[0]
	} else if len(e) != 0 {
		return nil, arityErr("GraphRel.Expressions", 1, len(e))
	} else {
		nr.JoinFilter = nil
	}
	return &nr, nil
}
func (r *GraphRel) String() string {
	arrow := "-"
	switch r.Direction {
	case DirRight:
		arrow = "->"
	case DirLeft:
		arrow = "<-"
	}
	return fmt.Sprintf("GraphRel(%s-[%s:%s%s]%s%s)", r.Left.Alias, r.Alias, r.Type, r.Length, arrow, r.Right.Alias)
}

// GraphJoins is a pattern of chained GraphRel/GraphNode forming one
// MATCH clause, anchored at one node (§3.2). Comma-separated patterns
// within a single MATCH become siblings under a GraphJoins whose
// anchor aliases overlap; §4.4.5 turns that overlap into real JOINs.
type GraphJoins struct {
	// Anchor is the node or relationship this pattern starts at; every
	// other element in Elements is reached by following the chain.
	Anchor Node // *GraphNode or *GraphRel

	// Elements holds every GraphNode/GraphRel in left-to-right pattern
	// order, including Anchor as Elements[0].
	Elements []Node

	// Optional marks the whole MATCH as OPTIONAL MATCH (§4.3).
	Optional bool
}

func (g *GraphJoins) Children() []Node { return g.Elements }
func (g *GraphJoins) WithChildren(c ...Node) (Node, error) {
	if len(c) != len(g.Elements) {
		return nil, arityErr("GraphJoins", len(g.Elements), len(c))
	}
	ng := *g
	ng.Elements = c
	if len(c) > 0 {
		ng.Anchor = c[0]
	}
	return &ng, nil
}
func (g *GraphJoins) Resolved() bool {
	for _, e := range g.Elements {
		if !e.Resolved() {
			return false
		}
	}
	return true
}
func (g *GraphJoins) String() string {
	return fmt.Sprintf("GraphJoins(%d elements, optional=%v)", len(g.Elements), g.Optional)
}
