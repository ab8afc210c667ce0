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

import "fmt"

// UnresolvedPropertyAccess is `alias.prop` before §4.4.3 filter
// tagging / §4.4.2 alias resolution has run.
type UnresolvedPropertyAccess struct {
	Alias    string
	Property string
}

func (u *UnresolvedPropertyAccess) Resolved() bool        { return false }
func (u *UnresolvedPropertyAccess) Children() []Expression { return nil }
func (u *UnresolvedPropertyAccess) WithChildren(c ...Expression) (Expression, error) {
	if len(c) != 0 {
		return nil, &arityError{"UnresolvedPropertyAccess", 0, len(c)}
	}
	return u, nil
}
func (u *UnresolvedPropertyAccess) String() string {
	return fmt.Sprintf("%s.%s", u.Alias, u.Property)
}

// ColumnRef is the resolved form of a property access: a concrete SQL
// alias plus a column-or-expression string, produced by the
// AliasResolutionContext (§4.4.2).
type ColumnRef struct {
	SQLAlias string
	SQLExpr  string // column name or arbitrary SQL expression
}

func (c *ColumnRef) Resolved() bool        { return true }
func (c *ColumnRef) Children() []Expression { return nil }
func (c *ColumnRef) WithChildren(ch ...Expression) (Expression, error) {
	if len(ch) != 0 {
		return nil, &arityError{"ColumnRef", 0, len(ch)}
	}
	return c, nil
}
func (c *ColumnRef) String() string {
	if c.SQLAlias == "" {
		return c.SQLExpr
	}
	return fmt.Sprintf("%s.%s", c.SQLAlias, c.SQLExpr)
}

// Literal is any constant value: number, string, bool, or null.
type Literal struct {
	Value interface{}
	IsSQL bool // when true, Value is already a rendered SQL literal string
}

func (l *Literal) Resolved() bool        { return true }
func (l *Literal) Children() []Expression { return nil }
func (l *Literal) WithChildren(c ...Expression) (Expression, error) {
	if len(c) != 0 {
		return nil, &arityError{"Literal", 0, len(c)}
	}
	return l, nil
}
func (l *Literal) String() string { return fmt.Sprintf("%v", l.Value) }

// Parameter is a `$name` reference, substituted at bind time.
type Parameter struct {
	Name string
}

func (p *Parameter) Resolved() bool        { return true }
func (p *Parameter) Children() []Expression { return nil }
func (p *Parameter) WithChildren(c ...Expression) (Expression, error) {
	if len(c) != 0 {
		return nil, &arityError{"Parameter", 0, len(c)}
	}
	return p, nil
}
func (p *Parameter) String() string { return "$" + p.Name }

// BinaryOp covers arithmetic, comparison, boolean, and string
// operators: +, -, *, /, %, =, <>, <, <=, >, >=, AND, OR,
// STARTS WITH, CONTAINS, ENDS WITH. IN is represented by InList.
type BinaryOp struct {
	Op          string
	Left, Right Expression
}

func (b *BinaryOp) Resolved() bool { return b.Left.Resolved() && b.Right.Resolved() }
func (b *BinaryOp) Children() []Expression {
	return []Expression{b.Left, b.Right}
}
func (b *BinaryOp) WithChildren(c ...Expression) (Expression, error) {
	if len(c) != 2 {
		return nil, &arityError{"BinaryOp", 2, len(c)}
	}
	return &BinaryOp{Op: b.Op, Left: c[0], Right: c[1]}, nil
}
func (b *BinaryOp) String() string {
	return fmt.Sprintf("(%s %s %s)", b.Left, b.Op, b.Right)
}

// JoinAnd folds a slice of expressions with AND, matching the
// teacher's expression.JoinAnd helper used throughout pushdown
// (retrieved sql/analyzer/rules.go).
func JoinAnd(exprs ...Expression) Expression {
	if len(exprs) == 0 {
		return nil
	}
	out := exprs[0]
	for _, e := range exprs[1:] {
		out = &BinaryOp{Op: "AND", Left: out, Right: e}
	}
	return out
}

// SplitAnd is the inverse of JoinAnd: flattens a conjunction into its
// top-level conjuncts, used by filter push-down (§4.4.4).
func SplitAnd(e Expression) []Expression {
	if b, ok := e.(*BinaryOp); ok && b.Op == "AND" {
		return append(SplitAnd(b.Left), SplitAnd(b.Right)...)
	}
	return []Expression{e}
}

// UnaryOp covers NOT, IS NULL / IS NOT NULL, and unary minus.
type UnaryOp struct {
	Op    string
	Child Expression
}

func (u *UnaryOp) Resolved() bool        { return u.Child.Resolved() }
func (u *UnaryOp) Children() []Expression { return []Expression{u.Child} }
func (u *UnaryOp) WithChildren(c ...Expression) (Expression, error) {
	if len(c) != 1 {
		return nil, &arityError{"UnaryOp", 1, len(c)}
	}
	return &UnaryOp{Op: u.Op, Child: c[0]}, nil
}
func (u *UnaryOp) String() string { return fmt.Sprintf("%s %s", u.Op, u.Child) }

// InList is `expr IN (e1, e2, ...)`.
type InList struct {
	Target Expression
	List   []Expression
}

func (i *InList) Resolved() bool {
	if !i.Target.Resolved() {
		return false
	}
	for _, e := range i.List {
		if !e.Resolved() {
			return false
		}
	}
	return true
}
func (i *InList) Children() []Expression { return append([]Expression{i.Target}, i.List...) }
func (i *InList) WithChildren(c ...Expression) (Expression, error) {
	if len(c) < 1 {
		return nil, &arityError{"InList", 1, len(c)}
	}
	return &InList{Target: c[0], List: c[1:]}, nil
}
func (i *InList) String() string { return fmt.Sprintf("%s IN (...)", i.Target) }

// CaseBranch is one WHEN/THEN pair of a Case expression.
type CaseBranch struct {
	When Expression
	Then Expression
}

// Case is a CASE WHEN ... THEN ... ELSE ... END expression.
type Case struct {
	Branches []CaseBranch
	Else     Expression
}

func (c *Case) Resolved() bool {
	for _, b := range c.Branches {
		if !b.When.Resolved() || !b.Then.Resolved() {
			return false
		}
	}
	return c.Else == nil || c.Else.Resolved()
}
func (c *Case) Children() []Expression {
	out := make([]Expression, 0, len(c.Branches)*2+1)
	for _, b := range c.Branches {
		out = append(out, b.When, b.Then)
	}
	if c.Else != nil {
		out = append(out, c.Else)
	}
	return out
}
func (c *Case) WithChildren(ch ...Expression) (Expression, error) {
	hasElse := c.Else != nil
	want := len(c.Branches) * 2
	if hasElse {
		want++
	}
	if len(ch) != want {
		return nil, &arityError{"Case", want, len(ch)}
	}
	nc := &Case{Branches: make([]CaseBranch, len(c.Branches))}
	for i := range c.Branches {
		nc.Branches[i] = CaseBranch{When: ch[i*2], Then: ch[i*2+1]}
	}
	if hasElse {
		nc.Else = ch[len(ch)-1]
	}
	return nc, nil
}
func (c *Case) String() string { return "CASE ... END" }

// ListLiteral is a Cypher list literal `[e1, e2, ...]`.
type ListLiteral struct {
	Items []Expression
}

func (l *ListLiteral) Resolved() bool {
	for _, e := range l.Items {
		if !e.Resolved() {
			return false
		}
	}
	return true
}
func (l *ListLiteral) Children() []Expression { return l.Items }
func (l *ListLiteral) WithChildren(c ...Expression) (Expression, error) {
	return &ListLiteral{Items: c}, nil
}
func (l *ListLiteral) String() string { return "[...]" }

// UnresolvedFunction is any `name(args...)` call before §4.4.6
// projection resolution maps it onto a known function/aggregate.
type UnresolvedFunction struct {
	Name     string
	Args     []Expression
	Distinct bool
}

func (u *UnresolvedFunction) Resolved() bool        { return false }
func (u *UnresolvedFunction) Children() []Expression { return u.Args }
func (u *UnresolvedFunction) WithChildren(c ...Expression) (Expression, error) {
	return &UnresolvedFunction{Name: u.Name, Args: c, Distinct: u.Distinct}, nil
}
func (u *UnresolvedFunction) String() string { return u.Name + "(...)" }

// FunctionCall is a resolved function or aggregate invocation: COUNT,
// SUM, nodes(), relationships(), length(), etc.
type FunctionCall struct {
	Name       string
	Args       []Expression
	Distinct   bool
	IsAggregate bool
}

func (f *FunctionCall) Resolved() bool {
	for _, a := range f.Args {
		if !a.Resolved() {
			return false
		}
	}
	return true
}
func (f *FunctionCall) Children() []Expression { return f.Args }
func (f *FunctionCall) WithChildren(c ...Expression) (Expression, error) {
	return &FunctionCall{Name: f.Name, Args: c, Distinct: f.Distinct, IsAggregate: f.IsAggregate}, nil
}
func (f *FunctionCall) String() string { return f.Name + "(...)" }

// WindowCall is a window-function invocation (`ROW_NUMBER() OVER
// (PARTITION BY ... ORDER BY ...)`), used only by the Variable-Length
// CTE Generator's shortest-path strategies (§4.6) - no Cypher surface
// form produces one directly.
type WindowCall struct {
	Name       string
	Args       []Expression
	PartitionBy []Expression
	OrderBy    []WindowOrder
}

// WindowOrder is one ORDER BY term inside a WindowCall's OVER clause.
type WindowOrder struct {
	Expr       Expression
	Descending bool
}

func (w *WindowCall) Resolved() bool { return true }
func (w *WindowCall) Children() []Expression {
	out := append([]Expression{}, w.Args...)
	out = append(out, w.PartitionBy...)
	for _, o := range w.OrderBy {
		out = append(out, o.Expr)
	}
	return out
}
func (w *WindowCall) WithChildren(c ...Expression) (Expression, error) {
	want := len(w.Args) + len(w.PartitionBy) + len(w.OrderBy)
	if len(c) != want {
		return nil, &arityError{"WindowCall", want, len(c)}
	}
	nw := &WindowCall{Name: w.Name}
	nw.Args = append([]Expression{}, c[:len(w.Args)]...)
	c = c[len(w.Args):]
	nw.PartitionBy = append([]Expression{}, c[:len(w.PartitionBy)]...)
	c = c[len(w.PartitionBy):]
	nw.OrderBy = make([]WindowOrder, len(w.OrderBy))
	for i, o := range w.OrderBy {
		nw.OrderBy[i] = WindowOrder{Expr: c[i], Descending: o.Descending}
	}
	return nw, nil
}
func (w *WindowCall) String() string { return w.Name + "() OVER (...)" }

// Star is the `*` of `RETURN *` and `count(*)`. No analyzer pass
// expands it; it always reports itself unresolved, so a projection
// that still holds a bare Star fails validation.
type Star struct{}

func (Star) Resolved() bool        { return false }
func (Star) Children() []Expression { return nil }
func (s Star) WithChildren(c ...Expression) (Expression, error) {
	if len(c) != 0 {
		return nil, &arityError{"Star", 0, len(c)}
	}
	return s, nil
}
func (Star) String() string { return "*" }
