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

// unaryNode is embedded by every relational node with exactly one
// child, matching the teacher's UnaryNode helper in sql/plan.
type unaryNode struct {
	Child Node
}

func (u unaryNode) Children() []Node { return []Node{u.Child} }

// Filter applies a predicate to its input (§3.2).
type Filter struct {
	unaryNode
	Predicate expr.Expression
}

func NewFilter(predicate expr.Expression, child Node) *Filter {
	return &Filter{unaryNode{child}, predicate}
}
func (f *Filter) WithChildren(c ...Node) (Node, error) {
	if len(c) != 1 {
		return nil, arityErr("Filter", 1, len(c))
	}
	return &Filter{unaryNode{c[0]}, f.Predicate}, nil
}
func (f *Filter) Resolved() bool { return f.Predicate.Resolved() && f.Child.Resolved() }
func (f *Filter) String() string { return fmt.Sprintf("Filter(%s)", f.Predicate) }
func (f *Filter) Expressions() []expr.Expression { return []expr.Expression{f.Predicate} }
func (f *Filter) WithExpressions(e ...expr.Expression) (Node, error) {
	if len(e) != 1 {
		return nil, arityErr("Filter.Expressions", 1, len(e))
	}
	return &Filter{f.unaryNode, e[0]}, nil
}

// ProjectionExpr pairs a scalar expression with its output name.
type ProjectionExpr struct {
	Expr expr.Expression
	As   string
}

// Project is a RETURN/WITH projection list (§3.2).
type Project struct {
	unaryNode
	Columns  []ProjectionExpr
	Distinct bool
}

func NewProject(columns []ProjectionExpr, child Node) *Project {
	return &Project{unaryNode{child}, columns, false}
}
func (p *Project) WithChildren(c ...Node) (Node, error) {
	if len(c) != 1 {
		return nil, arityErr("Project", 1, len(c))
	}
	return &Project{unaryNode{c[0]}, p.Columns, p.Distinct}, nil
}
func (p *Project) Resolved() bool {
	for _, c := range p.Columns {
		if !c.Expr.Resolved() {
			return false
		}
	}
	return p.Child.Resolved()
}
func (p *Project) String() string { return fmt.Sprintf("Project(%d cols)", len(p.Columns)) }
func (p *Project) Expressions() []expr.Expression {
	out := make([]expr.Expression, len(p.Columns))
	for i, c := range p.Columns {
		out[i] = c.Expr
	}
	return out
}
func (p *Project) WithExpressions(e ...expr.Expression) (Node, error) {
	if len(e) != len(p.Columns) {
		return nil, arityErr("Project.Expressions", len(p.Columns), len(e))
	}
	cols := make([]ProjectionExpr, len(e))
	for i, x := range e {
		cols[i] = ProjectionExpr{Expr: x, As: p.Columns[i].As}
	}
	return &Project{p.unaryNode, cols, p.Distinct}, nil
}

// Aggregate is a GROUP BY with aggregate expressions (§3.2).
type Aggregate struct {
	unaryNode
	GroupBy []expr.Expression
	Aggs    []ProjectionExpr
}

func NewAggregate(groupBy []expr.Expression, aggs []ProjectionExpr, child Node) *Aggregate {
	return &Aggregate{unaryNode{child}, groupBy, aggs}
}
func (a *Aggregate) WithChildren(c ...Node) (Node, error) {
	if len(c) != 1 {
		return nil, arityErr("Aggregate", 1, len(c))
	}
	return &Aggregate{unaryNode{c[0]}, a.GroupBy, a.Aggs}, nil
}
func (a *Aggregate) Resolved() bool { return a.Child.Resolved() }
func (a *Aggregate) String() string {
	return fmt.Sprintf("Aggregate(%d group, %d aggs)", len(a.GroupBy), len(a.Aggs))
}
func (a *Aggregate) Expressions() []expr.Expression {
	out := append([]expr.Expression{}, a.GroupBy...)
	for _, x := range a.Aggs {
		out = append(out, x.Expr)
	}
	return out
}
func (a *Aggregate) WithExpressions(e ...expr.Expression) (Node, error) {
	if len(e) != len(a.GroupBy)+len(a.Aggs) {
		return nil, arityErr("Aggregate.Expressions", len(a.GroupBy)+len(a.Aggs), len(e))
	}
	groupBy := append([]expr.Expression{}, e[:len(a.GroupBy)]...)
	aggs := make([]ProjectionExpr, len(a.Aggs))
	for i, x := range e[len(a.GroupBy):] {
		aggs[i] = ProjectionExpr{Expr: x, As: a.Aggs[i].As}
	}
	return &Aggregate{a.unaryNode, groupBy, aggs}, nil
}

// SortField is one ORDER BY term.
type SortField struct {
	Expr       expr.Expression
	Descending bool
}

// Sort is ORDER BY (§3.2).
type Sort struct {
	unaryNode
	Fields []SortField
}

func NewSort(fields []SortField, child Node) *Sort { return &Sort{unaryNode{child}, fields} }
func (s *Sort) WithChildren(c ...Node) (Node, error) {
	if len(c) != 1 {
		return nil, arityErr("Sort", 1, len(c))
	}
	return &Sort{unaryNode{c[0]}, s.Fields}, nil
}
func (s *Sort) Resolved() bool { return s.Child.Resolved() }
func (s *Sort) String() string { return fmt.Sprintf("Sort(%d fields)", len(s.Fields)) }

// Limit is LIMIT n (§3.2).
type Limit struct {
	unaryNode
	Count expr.Expression
}

func NewLimit(count expr.Expression, child Node) *Limit { return &Limit{unaryNode{child}, count} }
func (l *Limit) WithChildren(c ...Node) (Node, error) {
	if len(c) != 1 {
		return nil, arityErr("Limit", 1, len(c))
	}
	return &Limit{unaryNode{c[0]}, l.Count}, nil
}
func (l *Limit) Resolved() bool { return l.Child.Resolved() }
func (l *Limit) String() string { return fmt.Sprintf("Limit(%s)", l.Count) }

// Skip is SKIP n (§3.2).
type Skip struct {
	unaryNode
	Count expr.Expression
}

func NewSkip(count expr.Expression, child Node) *Skip { return &Skip{unaryNode{child}, count} }
func (s *Skip) WithChildren(c ...Node) (Node, error) {
	if len(c) != 1 {
		return nil, arityErr("Skip", 1, len(c))
	}
	return &Skip{unaryNode{c[0]}, s.Count}, nil
}
func (s *Skip) Resolved() bool { return s.Child.Resolved() }
func (s *Skip) String() string { return fmt.Sprintf("Skip(%s)", s.Count) }

// Cte is a named subplan for WITH reuse (§3.2). No pass sets Recursive
// or RecursiveUnion: the recursive CTEs of variable-length paths are
// built at render time as render.CTE values (§4.6).
type Cte struct {
	unaryNode
	Name       string
	Recursive  bool
	// RecursiveUnion, when Recursive is true, is the Union node whose
	// Left is the base case and whose Right references this Cte by
	// name (§4.6 "Recursive case").
	RecursiveUnion Node
}

func NewCte(name string, child Node) *Cte { return &Cte{unaryNode{child}, name, false, nil} }
func (c *Cte) WithChildren(ch ...Node) (Node, error) {
	if len(ch) != 1 {
		return nil, arityErr("Cte", 1, len(ch))
	}
	nc := *c
	nc.Child = ch[0]
	return &nc, nil
}
func (c *Cte) Resolved() bool { return c.Child.Resolved() }
func (c *Cte) String() string { return fmt.Sprintf("Cte(%s)", c.Name) }

// CteRef refers back to a Cte by name, without embedding its subplan,
// so the tree stays acyclic (§9 "Shared subplans are introduced only
// via Cte-name references").
type CteRef struct {
	Name   string
	Schema []string
}

func (r *CteRef) Children() []Node { return nil }
func (r *CteRef) WithChildren(c ...Node) (Node, error) {
	if len(c) != 0 {
		return nil, arityErr("CteRef", 0, len(c))
	}
	return r, nil
}
func (r *CteRef) Resolved() bool { return true }
func (r *CteRef) String() string { return fmt.Sprintf("CteRef(%s)", r.Name) }

type binaryNode struct {
	Left, Right Node
}

func (b binaryNode) Children() []Node { return []Node{b.Left, b.Right} }

// Union is the deduplicating set union used for Cypher UNION (§3.2).
type Union struct {
	binaryNode
}

func NewUnion(left, right Node) *Union { return &Union{binaryNode{left, right}} }
func (u *Union) WithChildren(c ...Node) (Node, error) {
	if len(c) != 2 {
		return nil, arityErr("Union", 2, len(c))
	}
	return &Union{binaryNode{c[0], c[1]}}, nil
}
func (u *Union) Resolved() bool { return u.Left.Resolved() && u.Right.Resolved() }
func (u *Union) String() string { return "Union" }

// UnionAll is the non-deduplicating union used for Cypher UNION ALL
// and for multi-type relationship alternation (`:R1|R2`) (§3.2, §4.4.5).
type UnionAll struct {
	// Branches holds every branch in order (one per type for
	// `:R1|R2|R3`); UnionAll has no separate Left/Right fields, and
	// WithChildren takes back exactly as many children as there are
	// branches.
	Branches []Node
}

func NewUnionAll(branches ...Node) *UnionAll { return &UnionAll{Branches: branches} }
func (u *UnionAll) Children() []Node         { return u.Branches }
func (u *UnionAll) WithChildren(c ...Node) (Node, error) {
	if len(c) != len(u.Branches) {
		return nil, arityErr("UnionAll", len(u.Branches), len(c))
	}
	return &UnionAll{Branches: c}, nil
}
func (u *UnionAll) Resolved() bool {
	for _, b := range u.Branches {
		if !b.Resolved() {
			return false
		}
	}
	return true
}
func (u *UnionAll) String() string { return fmt.Sprintf("UnionAll(%d branches)", len(u.Branches)) }

// Procedure is a `CALL db.proc(args)` schema-introspection call
// (§4.2, §6.3). It answers directly from the catalog and never
// reaches the SQL Emitter.
type Procedure struct {
	Name string
	Args []expr.Expression
}

func (p *Procedure) Children() []Node { return nil }
func (p *Procedure) WithChildren(c ...Node) (Node, error) {
	if len(c) != 0 {
		return nil, arityErr("Procedure", 0, len(c))
	}
	return p, nil
}
func (p *Procedure) Resolved() bool { return true }
func (p *Procedure) String() string { return fmt.Sprintf("Procedure(%s)", p.Name) }
func (p *Procedure) Expressions() []expr.Expression { return p.Args }
func (p *Procedure) WithExpressions(e ...expr.Expression) (Node, error) {
	return &Procedure{Name: p.Name, Args: e}, nil
}

// Unsupported carries a recognized-but-rejected clause through to the
// Analyzer's validation pass (§4.4.8), which is where it is turned
// into an UnsupportedFeature error. Kept as a normal leaf so every
// earlier pass can walk straight past it.
type Unsupported struct {
	Keyword string
	Pos     Pos
}

func (u *Unsupported) Children() []Node { return nil }
func (u *Unsupported) WithChildren(c ...Node) (Node, error) {
	if len(c) != 0 {
		return nil, arityErr("Unsupported", 0, len(c))
	}
	return u, nil
}
func (u *Unsupported) Resolved() bool { return true }
func (u *Unsupported) String() string { return fmt.Sprintf("Unsupported(%s)", u.Keyword) }
