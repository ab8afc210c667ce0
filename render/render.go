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
	"github.com/cygraph-io/cygraph/cerrors"
	"github.com/cygraph-io/cygraph/ctegen"
	"github.com/cygraph-io/cygraph/expr"
	"github.com/cygraph-io/cygraph/plan"
)

// Planner walks an analyzed logical plan bottom-up and emits a Plan
// (§4.5). It shares one ctegen.NameGen with the rest of a single
// compilation so deterministic names stay stable for a given
// (schema, query) pair (§5, §8).
type Planner struct {
	cteGen *ctegen.Generator
}

// NewPlanner returns a Planner using names for every generated CTE
// and synthetic hop alias.
func NewPlanner(names *ctegen.NameGen) *Planner {
	return &Planner{cteGen: ctegen.NewGenerator(names)}
}

// Render converts a fully analyzed plan.Node into a flattened Plan.
func (p *Planner) Render(n plan.Node) (*Plan, error) {
	variants, err := expandTypeAlternation(n)
	if err != nil {
		return nil, err
	}
	if len(variants) == 1 {
		return p.renderNode(variants[0])
	}
	branches := make([]*Plan, len(variants))
	var ctes []CTE
	for i, v := range variants {
		pl, err := p.renderNode(v)
		if err != nil {
			return nil, err
		}
		ctes = append(ctes, pl.CTEs...)
		pl.CTEs = nil
		branches[i] = pl
	}
	return &Plan{CTEs: ctes, SetOp: &SetOp{Kind: SetOpUnionAll, Branches: branches}}, nil
}

func (p *Planner) renderNode(n plan.Node) (*Plan, error) {
	switch v := n.(type) {
	case plan.Empty:
		return &Plan{}, nil
	case *plan.Filter:
		child, err := p.renderNode(v.Child)
		if err != nil {
			return nil, err
		}
		child.Where = andExpr(child.Where, v.Predicate)
		return child, nil
	case *plan.Project:
		child, err := p.renderNode(v.Child)
		if err != nil {
			return nil, err
		}
		child.Select = convertProjections(v.Columns)
		child.Distinct = v.Distinct
		return child, nil
	case *plan.Aggregate:
		child, err := p.renderNode(v.Child)
		if err != nil {
			return nil, err
		}
		child.GroupBy = append([]expr.Expression{}, v.GroupBy...)
		child.Select = convertProjections(v.Aggs)
		return child, nil
	case *plan.Sort:
		child, err := p.renderNode(v.Child)
		if err != nil {
			return nil, err
		}
		child.Order = convertSort(v.Fields)
		return child, nil
	case *plan.Skip:
		child, err := p.renderNode(v.Child)
		if err != nil {
			return nil, err
		}
		child.Skip = v.Count
		return child, nil
	case *plan.Limit:
		child, err := p.renderNode(v.Child)
		if err != nil {
			return nil, err
		}
		child.Limit = v.Count
		return child, nil
	case *plan.Cte:
		return p.renderCte(v)
	case *plan.CteRef:
		return &Plan{From: TableRef{IsCTERef: true, Table: v.Name, SQLAlias: v.Name}}, nil
	case *plan.GraphJoins:
		return p.renderGraphJoins(v)
	case *plan.Union:
		return p.renderSetOp(SetOpUnion, v.Left, v.Right)
	case *plan.UnionAll:
		branches := make([]plan.Node, len(v.Branches))
		copy(branches, v.Branches)
		return p.renderSetOp(SetOpUnionAll, branches...)
	case *plan.Procedure:
		return nil, cerrors.InternalError.New("CALL " + v.Name + " must be answered before reaching the render planner")
	case *plan.Unsupported:
		return nil, cerrors.UnsupportedFeature.New(v.Keyword)
	default:
		return nil, cerrors.InternalError.New("render planner cannot handle this plan node")
	}
}

func (p *Planner) renderSetOp(kind SetOpKind, nodes ...plan.Node) (*Plan, error) {
	branches := make([]*Plan, len(nodes))
	var ctes []CTE
	for i, n := range nodes {
		pl, err := p.renderNode(n)
		if err != nil {
			return nil, err
		}
		ctes = append(ctes, pl.CTEs...)
		pl.CTEs = nil
		branches[i] = pl
	}
	return &Plan{CTEs: ctes, SetOp: &SetOp{Kind: kind, Branches: branches}}, nil
}

func (p *Planner) renderCte(c *plan.Cte) (*Plan, error) {
	inner, err := p.renderNode(c.Child)
	if err != nil {
		return nil, err
	}
	ctes := append(inner.CTEs, CTE{Name: c.Name, Plan: &Plan{
		From: inner.From, Joins: inner.Joins, Where: inner.Where, GroupBy: inner.GroupBy,
		Select: inner.Select, Distinct: inner.Distinct, Order: inner.Order, Limit: inner.Limit, Skip: inner.Skip,
	}})
	return &Plan{CTEs: ctes, From: TableRef{IsCTERef: true, Table: c.Name, SQLAlias: c.Name}}, nil
}

func andExpr(a, b expr.Expression) expr.Expression {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return &expr.BinaryOp{Op: "AND", Left: a, Right: b}
}

func convertProjections(cols []plan.ProjectionExpr) []Projection {
	out := make([]Projection, len(cols))
	for i, c := range cols {
		out[i] = Projection{Expr: c.Expr, As: c.As}
	}
	return out
}

func convertSort(fields []plan.SortField) []SortField {
	out := make([]SortField, len(fields))
	for i, f := range fields {
		out[i] = SortField{Expr: f.Expr, Descending: f.Descending}
	}
	return out
}

// expandTypeAlternation peels off one multi-type-alternation UnionAll
// at a time (join_inference's expandAlternation, §4.4.5), producing
// one full variant of the plan per relationship-type branch. Every
// variant shares the same SQLAlias for the exploded GraphRel, so
// WHERE/SELECT above it mean the same thing in each branch and it is
// valid to union the fully-rendered variants back together (§8).
func expandTypeAlternation(n plan.Node) ([]plan.Node, error) {
	var targetAlias string
	var branches []plan.Node
	plan.Inspect(n, func(node plan.Node) bool {
		if branches != nil {
			return false
		}
		if gr, ok := node.(*plan.GraphRel); ok {
			if ua, ok := gr.Edge.(*plan.UnionAll); ok && len(ua.Branches) > 0 {
				targetAlias = gr.Alias
				branches = ua.Branches
				return false
			}
		}
		return true
	})
	if branches == nil {
		return []plan.Node{n}, nil
	}

	var variants []plan.Node
	for _, branch := range branches {
		replaced, err := plan.TransformUp(n, func(node plan.Node) (plan.Node, error) {
			gr, ok := node.(*plan.GraphRel)
			if !ok || gr.Alias != targetAlias {
				return node, nil
			}
			if _, stillAlternation := gr.Edge.(*plan.UnionAll); !stillAlternation {
				return node, nil
			}
			ngr := *gr
			ngr.Edge = branch
			return &ngr, nil
		})
		if err != nil {
			return nil, err
		}
		sub, err := expandTypeAlternation(replaced)
		if err != nil {
			return nil, err
		}
		variants = append(variants, sub...)
	}
	return variants, nil
}
