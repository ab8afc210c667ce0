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

// Package cypher is the parser (§4.2): Cypher text in, AST out. The
// lexer and parser are hand-written recursive-descent, in the idiom
// of the teacher's sql/rdparser rather than a generated parser (see
// SPEC_FULL.md §2 "Not wired" for antlr).
package cypher

// Position is a source span (line, column), attached to every AST
// node that can meaningfully originate an analyzer error.
type Position struct {
	Line, Col int
}

// Statement is the top-level parsed unit: a single query or a
// UNION/UNION ALL chain of queries.
type Statement struct {
	Use     string // USE <schema>, empty if absent
	Query   *Query
	Unions  []UnionPart
	Pos     Position
}

// UnionPart is one `UNION [ALL] <query>` continuation.
type UnionPart struct {
	All   bool
	Query *Query
}

// Query is a single linear sequence of reading clauses terminated by
// RETURN (or, for a CALL-only statement, just the CALL).
type Query struct {
	Clauses []Clause
	Pos     Position
}

// Clause is any one of MATCH, OPTIONAL MATCH, WHERE (folded into
// Match.Where when it directly follows a MATCH), WITH, RETURN, CALL.
type Clause interface {
	clause()
	Position() Position
}

// MatchClause is MATCH or OPTIONAL MATCH (§6.3).
type MatchClause struct {
	Optional bool
	Patterns []PatternPart
	Where    Expr // nil if absent
	Pos      Position
}

func (*MatchClause) clause()             {}
func (m *MatchClause) Position() Position { return m.Pos }

// PatternPart is one comma-separated pattern within a MATCH, optionally
// named as a path variable (`p = (a)-[*]->(b)`).
type PatternPart struct {
	PathVar string // empty if not a named path
	Elements []PatternElement
	Pos      Position
}

// PatternElement alternates NodePattern, RelPattern, NodePattern, ...
// within a single PatternPart.
type PatternElement interface {
	patternElement()
}

// NodePattern is `(alias:Label1|Label2 {prop: val})`.
type NodePattern struct {
	Alias      string
	Labels     []string
	Properties []PropertyKV
	Pos        Position
}

func (*NodePattern) patternElement() {}

// RelPattern is `-[alias:TYPE1|TYPE2*min..max {prop: val}]->`.
type RelPattern struct {
	Alias      string
	Types      []string
	Properties []PropertyKV
	Direction  int // 0 undirected, 1 right (->), -1 left (<-)

	// VarLength is true when a `*` appeared at all.
	VarLength    bool
	HasMin       bool
	Min          int
	HasMax       bool
	Max          int
	ShortestPath bool
	AllShortest  bool

	Pos Position
}

func (*RelPattern) patternElement() {}

// PropertyKV is one `key: value` entry in an inline property map.
type PropertyKV struct {
	Key   string
	Value Expr
}

// WithClause is WITH: a scope barrier plus an optional WHERE on the
// re-exported scope (§4.3 "WITH introduces a named Cte").
type WithClause struct {
	Items    []ReturnItem
	Distinct bool
	Where    Expr
	OrderBy  []OrderItem
	Skip     Expr
	Limit    Expr
	Pos      Position
}

func (*WithClause) clause()              {}
func (w *WithClause) Position() Position { return w.Pos }

// ReturnClause is RETURN (§6.3).
type ReturnClause struct {
	Items    []ReturnItem
	Distinct bool
	OrderBy  []OrderItem
	Skip     Expr
	Limit    Expr
	Pos      Position
}

func (*ReturnClause) clause()             {}
func (r *ReturnClause) Position() Position { return r.Pos }

// ReturnItem is one RETURN/WITH projected expression, optionally
// aliased with AS.
type ReturnItem struct {
	Expr Expr
	As   string
}

// OrderItem is one ORDER BY term.
type OrderItem struct {
	Expr       Expr
	Descending bool
}

// CallClause is `CALL db.labels()` and friends (§6.3 "schema
// introspection").
type CallClause struct {
	Procedure string
	Args      []Expr
	Pos       Position
}

func (*CallClause) clause()             {}
func (c *CallClause) Position() Position { return c.Pos }

// UnsupportedClause parses successfully (so the parser never rejects
// recognized-but-unsupported input) but is rejected by the analyzer
// with UnsupportedFeature (§4.2, §6.3).
type UnsupportedClause struct {
	Keyword string
	Pos     Position
}

func (*UnsupportedClause) clause()              {}
func (u *UnsupportedClause) Position() Position { return u.Pos }
