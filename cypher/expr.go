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

package cypher

// Expr is any parsed scalar expression, kept deliberately separate
// from expr.Expression: the AST form still carries raw identifiers
// ("alias.prop") rather than resolved schema references, which is the
// Logical Plan Builder's job to translate (§4.3).
type Expr interface {
	exprNode()
}

// PropertyAccessExpr is `alias.prop`.
type PropertyAccessExpr struct {
	Alias    string
	Property string
}

func (*PropertyAccessExpr) exprNode() {}

// IdentExpr is a bare identifier, either a variable reference
// (`RETURN n`) or, post-parse, ambiguous with a 0-arg function until
// the builder resolves it.
type IdentExpr struct {
	Name string
}

func (*IdentExpr) exprNode() {}

// LiteralExpr is a constant: number, string, bool, or null.
type LiteralExpr struct {
	Value interface{}
}

func (*LiteralExpr) exprNode() {}

// ParameterExpr is `$name`.
type ParameterExpr struct {
	Name string
}

func (*ParameterExpr) exprNode() {}

// BinaryExpr covers arithmetic, comparison, boolean, string, and IN
// operators.
type BinaryExpr struct {
	Op          string
	Left, Right Expr
}

func (*BinaryExpr) exprNode() {}

// UnaryExpr covers NOT and IS [NOT] NULL.
type UnaryExpr struct {
	Op    string
	Child Expr
}

func (*UnaryExpr) exprNode() {}

// InExpr is `expr IN list`.
type InExpr struct {
	Target Expr
	List   Expr
}

func (*InExpr) exprNode() {}

// ListExpr is a list literal `[e1, e2, ...]`.
type ListExpr struct {
	Items []Expr
}

func (*ListExpr) exprNode() {}

// CaseExpr is CASE [test] WHEN ... THEN ... ELSE ... END.
type CaseExpr struct {
	Test     Expr // nil for the searched-CASE form
	Branches []CaseBranchExpr
	Else     Expr
}

func (*CaseExpr) exprNode() {}

// CaseBranchExpr is one WHEN/THEN pair.
type CaseBranchExpr struct {
	When Expr
	Then Expr
}

// FunctionCallExpr is `name(args...)`, covering both scalar/aggregate
// functions and the path functions `nodes(p)`, `relationships(p)`,
// `length(p)`.
type FunctionCallExpr struct {
	Name     string
	Args     []Expr
	Distinct bool
}

func (*FunctionCallExpr) exprNode() {}

// StarExpr is the `*` of `RETURN *`.
type StarExpr struct{}

func (StarExpr) exprNode() {}

// ShortestPathExpr wraps a single relationship PatternPart inside
// `shortestPath(...)` / `allShortestPaths(...)` used as an expression
// (as opposed to appearing directly as a MATCH pattern).
type ShortestPathExpr struct {
	All     bool
	Pattern PatternPart
}

func (*ShortestPathExpr) exprNode() {}
