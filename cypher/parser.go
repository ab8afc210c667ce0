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

import (
	"strconv"
	"strings"

	"github.com/cygraph-io/cygraph/cerrors"
)

// ParseError is the concrete Go error type behind cerrors.SyntaxError
// for this package, carrying the position/expected/found triple named
// in §4.2.
type ParseError struct {
	Pos      Position
	Expected string
	Found    string
}

func (e *ParseError) Error() string {
	return cerrors.SyntaxError.New(posString(e.Pos), e.Expected, e.Found).Error()
}

func posString(p Position) string {
	return strconv.Itoa(p.Line) + ":" + strconv.Itoa(p.Col)
}

// parser holds the mutable state of one parse; public entry points
// recover its panics into a returned error, mirroring the teacher's
// PlanBuilder.handleErr convention of panicking mid-build and
// recovering once at the public boundary.
type parser struct {
	toks []Token
	pos  int
}

// Parse is the public entry point: Cypher text -> AST (§4.2).
func Parse(src string) (stmt *Statement, err error) {
	defer func() {
		if r := recover(); r != nil {
			if pe, ok := r.(*ParseError); ok {
				err = pe
				return
			}
			panic(r)
		}
	}()

	lex := NewLexer(src)
	var toks []Token
	for {
		t := lex.Next()
		toks = append(toks, t)
		if t.Kind == TokEOF {
			break
		}
	}
	p := &parser{toks: toks}
	stmt = p.parseStatement()
	p.expectEOF()
	return stmt, nil
}

func (p *parser) cur() Token  { return p.toks[p.pos] }
func (p *parser) peekN(n int) Token {
	if p.pos+n >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.pos+n]
}
func (p *parser) advance() Token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *parser) fail(expected string) {
	t := p.cur()
	found := t.Text
	if t.Kind == TokEOF {
		found = "<eof>"
	}
	panic(&ParseError{Pos: t.Pos, Expected: expected, Found: found})
}

func (p *parser) isKeyword(kw string) bool {
	t := p.cur()
	return t.Kind == TokKeyword && t.Text == kw
}

func (p *parser) isPunct(s string) bool {
	t := p.cur()
	return t.Kind == TokPunct && t.Text == s
}

func (p *parser) expectKeyword(kw string) Token {
	if !p.isKeyword(kw) {
		p.fail(kw)
	}
	return p.advance()
}

func (p *parser) expectPunct(s string) Token {
	if !p.isPunct(s) {
		p.fail(s)
	}
	return p.advance()
}

func (p *parser) expectEOF() {
	if p.cur().Kind != TokEOF {
		p.fail("<eof>")
	}
}

func (p *parser) expectIdent() Token {
	t := p.cur()
	if t.Kind != TokIdent {
		p.fail("identifier")
	}
	return p.advance()
}

// ---- statement / query ----

func (p *parser) parseStatement() *Statement {
	pos := p.cur().Pos
	stmt := &Statement{Pos: pos}

	if p.isKeyword("USE") {
		p.advance()
		stmt.Use = p.parseSchemaName()
	}

	stmt.Query = p.parseQuery()

	for p.isKeyword("UNION") {
		p.advance()
		all := false
		if p.isKeyword("ALL") {
			p.advance()
			all = true
		}
		stmt.Unions = append(stmt.Unions, UnionPart{All: all, Query: p.parseQuery()})
	}
	return stmt
}

func (p *parser) parseSchemaName() string {
	t := p.expectIdent()
	name := t.Text
	for p.isPunct(".") {
		p.advance()
		name += "." + p.expectIdent().Text
	}
	return name
}

func (p *parser) parseQuery() *Query {
	q := &Query{Pos: p.cur().Pos}
	for {
		switch {
		case p.isKeyword("MATCH") || p.isKeyword("OPTIONAL"):
			q.Clauses = append(q.Clauses, p.parseMatch())
		case p.isKeyword("WITH"):
			q.Clauses = append(q.Clauses, p.parseWith())
		case p.isKeyword("RETURN"):
			q.Clauses = append(q.Clauses, p.parseReturn())
			return q
		case p.isKeyword("CALL"):
			q.Clauses = append(q.Clauses, p.parseCall())
		case p.isKeyword("CREATE") || p.isKeyword("SET") || p.isKeyword("DELETE") ||
			p.isKeyword("MERGE") || p.isKeyword("DETACH") || p.isKeyword("REMOVE") ||
			p.isKeyword("FOREACH") || p.isKeyword("LOAD"):
			// Recognized but unsupported (§4.2, §6.3): parse the
			// keyword and let the analyzer reject it so the parser
			// never throws for semantically-invalid-but-recognized
			// input.
			t := p.advance()
			p.skipToClauseBoundary()
			q.Clauses = append(q.Clauses, &UnsupportedClause{Keyword: t.Text, Pos: t.Pos})
		default:
			return q
		}
	}
}

// skipToClauseBoundary consumes tokens until the next clause keyword
// or UNION/EOF, so an UnsupportedClause doesn't need its own grammar.
func (p *parser) skipToClauseBoundary() {
	depth := 0
	for {
		t := p.cur()
		if t.Kind == TokEOF {
			return
		}
		if t.Kind == TokPunct && t.Text == "(" {
			depth++
		}
		if t.Kind == TokPunct && t.Text == ")" {
			depth--
		}
		if depth == 0 && t.Kind == TokKeyword {
			switch t.Text {
			case "MATCH", "OPTIONAL", "WITH", "RETURN", "CALL", "UNION",
				"CREATE", "SET", "DELETE", "MERGE", "DETACH", "REMOVE", "FOREACH", "LOAD":
				return
			}
		}
		p.advance()
	}
}

// ---- MATCH ----

func (p *parser) parseMatch() *MatchClause {
	pos := p.cur().Pos
	optional := false
	if p.isKeyword("OPTIONAL") {
		p.advance()
		optional = true
	}
	p.expectKeyword("MATCH")

	m := &MatchClause{Optional: optional, Pos: pos}
	m.Patterns = append(m.Patterns, p.parsePatternPart())
	for p.isPunct(",") {
		p.advance()
		m.Patterns = append(m.Patterns, p.parsePatternPart())
	}
	if p.isKeyword("WHERE") {
		p.advance()
		m.Where = p.parseExpr()
	}
	return m
}

func (p *parser) parsePatternPart() PatternPart {
	pos := p.cur().Pos
	pp := PatternPart{Pos: pos}

	if p.cur().Kind == TokIdent && p.peekN(1).Kind == TokPunct && p.peekN(1).Text == "=" {
		pp.PathVar = p.advance().Text
		p.advance() // '='
	}

	// MATCH p = shortestPath((a)-[r*]->(b)) / allShortestPaths(...):
	// the wrapper parens are stripped and the marker is pushed onto
	// every RelPattern found inside, since that's where the CTE
	// Generator (§4.6) looks for it.
	if p.isKeyword("SHORTESTPATH") || p.isKeyword("ALLSHORTESTPATHS") {
		all := p.isKeyword("ALLSHORTESTPATHS")
		p.advance()
		p.expectPunct("(")
		pp.Elements = p.parsePatternElements()
		p.expectPunct(")")
		for _, el := range pp.Elements {
			if rel, ok := el.(*RelPattern); ok {
				rel.ShortestPath = true
				rel.AllShortest = all
			}
		}
		return pp
	}

	pp.Elements = p.parsePatternElements()
	return pp
}

func (p *parser) parsePatternElements() []PatternElement {
	var elems []PatternElement
	elems = append(elems, p.parseNodePattern())
	for p.isPunct("-") || p.isPunct("<") {
		rel := p.parseRelPattern()
		elems = append(elems, rel)
		elems = append(elems, p.parseNodePattern())
	}
	return elems
}

func (p *parser) parseNodePattern() *NodePattern {
	pos := p.cur().Pos
	p.expectPunct("(")
	n := &NodePattern{Pos: pos}

	if p.cur().Kind == TokIdent {
		n.Alias = p.advance().Text
	}
	if p.isPunct(":") {
		p.advance()
		n.Labels = append(n.Labels, p.expectIdent().Text)
		for p.isPunct("|") {
			p.advance()
			n.Labels = append(n.Labels, p.expectIdent().Text)
		}
	}
	if p.isPunct("{") {
		n.Properties = p.parsePropertyMap()
	}
	p.expectPunct(")")
	return n
}

func (p *parser) parseRelPattern() *RelPattern {
	pos := p.cur().Pos
	r := &RelPattern{Pos: pos}

	if p.isPunct("<") {
		p.advance()
		p.expectPunct("-")
		r.Direction = -1
	} else {
		p.expectPunct("-")
	}

	if p.isPunct("[") {
		p.advance()
		if p.cur().Kind == TokIdent {
			r.Alias = p.advance().Text
		}
		if p.isPunct(":") {
			p.advance()
			r.Types = append(r.Types, p.expectIdent().Text)
			for p.isPunct("|") {
				p.advance()
				r.Types = append(r.Types, p.expectIdent().Text)
			}
		}
		if p.isPunct("*") {
			r.VarLength = true
			p.advance()
			p.parseLengthRange(r)
		}
		if p.isPunct("{") {
			r.Properties = p.parsePropertyMap()
		}
		p.expectPunct("]")
	}

	if p.isPunct("-") {
		p.advance()
		if p.isPunct(">") {
			p.advance()
			if r.Direction == -1 {
				p.fail("single direction arrow")
			}
			r.Direction = 1
		}
	} else {
		p.fail("- or ->")
	}
	return r
}

// parseLengthRange parses the optional `n`, `n..m`, `..m`, `n..` after
// a `*` (§4.2, §6.3 variable-length forms).
func (p *parser) parseLengthRange(r *RelPattern) {
	if p.cur().Kind == TokNumber {
		n, _ := strconv.Atoi(p.advance().Text)
		r.HasMin = true
		r.Min = n
		if !p.isPunct("..") {
			r.HasMax = true
			r.Max = n
			return
		}
	}
	if p.isPunct("..") {
		p.advance()
		if p.cur().Kind == TokNumber {
			n, _ := strconv.Atoi(p.advance().Text)
			r.HasMax = true
			r.Max = n
		}
	}
}

func (p *parser) parsePropertyMap() []PropertyKV {
	p.expectPunct("{")
	var kvs []PropertyKV
	if !p.isPunct("}") {
		kvs = append(kvs, p.parsePropertyKV())
		for p.isPunct(",") {
			p.advance()
			kvs = append(kvs, p.parsePropertyKV())
		}
	}
	p.expectPunct("}")
	return kvs
}

func (p *parser) parsePropertyKV() PropertyKV {
	key := p.expectIdent().Text
	p.expectPunct(":")
	return PropertyKV{Key: key, Value: p.parseExpr()}
}

// ---- WITH / RETURN ----

func (p *parser) parseWith() *WithClause {
	pos := p.cur().Pos
	p.expectKeyword("WITH")
	w := &WithClause{Pos: pos}
	w.Distinct = p.consumeDistinct()
	w.Items = p.parseReturnItems()
	if p.isKeyword("WHERE") {
		p.advance()
		w.Where = p.parseExpr()
	}
	p.parseOrderSkipLimit(&w.OrderBy, &w.Skip, &w.Limit)
	return w
}

func (p *parser) parseReturn() *ReturnClause {
	pos := p.cur().Pos
	p.expectKeyword("RETURN")
	r := &ReturnClause{Pos: pos}
	r.Distinct = p.consumeDistinct()
	r.Items = p.parseReturnItems()
	p.parseOrderSkipLimit(&r.OrderBy, &r.Skip, &r.Limit)
	return r
}

func (p *parser) consumeDistinct() bool {
	if p.isKeyword("DISTINCT") {
		p.advance()
		return true
	}
	return false
}

func (p *parser) parseReturnItems() []ReturnItem {
	var items []ReturnItem
	items = append(items, p.parseReturnItem())
	for p.isPunct(",") {
		p.advance()
		items = append(items, p.parseReturnItem())
	}
	return items
}

func (p *parser) parseReturnItem() ReturnItem {
	if p.isPunct("*") {
		p.advance()
		return ReturnItem{Expr: StarExpr{}}
	}
	e := p.parseExpr()
	item := ReturnItem{Expr: e}
	if p.isKeyword("AS") {
		p.advance()
		item.As = p.expectIdent().Text
	}
	return item
}

func (p *parser) parseOrderSkipLimit(order *[]OrderItem, skip, limit *Expr) {
	if p.isKeyword("ORDER") {
		p.advance()
		p.expectKeyword("BY")
		*order = append(*order, p.parseOrderItem())
		for p.isPunct(",") {
			p.advance()
			*order = append(*order, p.parseOrderItem())
		}
	}
	if p.isKeyword("SKIP") {
		p.advance()
		*skip = p.parseExpr()
	}
	if p.isKeyword("LIMIT") {
		p.advance()
		*limit = p.parseExpr()
	}
}

func (p *parser) parseOrderItem() OrderItem {
	e := p.parseExpr()
	desc := false
	if p.isKeyword("DESC") || p.isKeyword("DESCENDING") {
		p.advance()
		desc = true
	} else if p.isKeyword("ASC") || p.isKeyword("ASCENDING") {
		p.advance()
	}
	return OrderItem{Expr: e, Descending: desc}
}

// ---- CALL ----

func (p *parser) parseCall() *CallClause {
	pos := p.cur().Pos
	p.expectKeyword("CALL")
	name := p.expectIdent().Text
	for p.isPunct(".") {
		p.advance()
		name += "." + p.expectIdent().Text
	}
	c := &CallClause{Procedure: name, Pos: pos}
	if p.isPunct("(") {
		p.advance()
		if !p.isPunct(")") {
			c.Args = append(c.Args, p.parseExpr())
			for p.isPunct(",") {
				p.advance()
				c.Args = append(c.Args, p.parseExpr())
			}
		}
		p.expectPunct(")")
	}
	return c
}

// ---- expressions (precedence climbing) ----
//
// OR > XOR > AND > NOT > comparison > additive > multiplicative >
// unary > primary, matching the standard openCypher precedence table.

func (p *parser) parseExpr() Expr { return p.parseOr() }

func (p *parser) parseOr() Expr {
	left := p.parseXor()
	for p.isKeyword("OR") {
		p.advance()
		left = &BinaryExpr{Op: "OR", Left: left, Right: p.parseXor()}
	}
	return left
}

func (p *parser) parseXor() Expr {
	left := p.parseAnd()
	for p.isKeyword("XOR") {
		p.advance()
		left = &BinaryExpr{Op: "XOR", Left: left, Right: p.parseAnd()}
	}
	return left
}

func (p *parser) parseAnd() Expr {
	left := p.parseNot()
	for p.isKeyword("AND") {
		p.advance()
		left = &BinaryExpr{Op: "AND", Left: left, Right: p.parseNot()}
	}
	return left
}

func (p *parser) parseNot() Expr {
	if p.isKeyword("NOT") {
		p.advance()
		return &UnaryExpr{Op: "NOT", Child: p.parseNot()}
	}
	return p.parseComparison()
}

var comparisonOps = map[string]bool{"=": true, "<>": true, "<": true, "<=": true, ">": true, ">=": true, "=~": true}

func (p *parser) parseComparison() Expr {
	left := p.parseAdditive()
	for {
		t := p.cur()
		if t.Kind == TokPunct && comparisonOps[t.Text] {
			p.advance()
			left = &BinaryExpr{Op: t.Text, Left: left, Right: p.parseAdditive()}
			continue
		}
		if p.isKeyword("IN") {
			p.advance()
			left = &InExpr{Target: left, List: p.parseAdditive()}
			continue
		}
		if p.isKeyword("IS") {
			p.advance()
			op := "IS NULL"
			if p.isKeyword("NOT") {
				p.advance()
				op = "IS NOT NULL"
			}
			p.expectKeyword("NULL")
			left = &UnaryExpr{Op: op, Child: left}
			continue
		}
		if p.isKeyword("STARTS") {
			p.advance()
			p.expectKeyword("WITH")
			left = &BinaryExpr{Op: "STARTS WITH", Left: left, Right: p.parseAdditive()}
			continue
		}
		if p.isKeyword("ENDS") {
			p.advance()
			p.expectKeyword("WITH")
			left = &BinaryExpr{Op: "ENDS WITH", Left: left, Right: p.parseAdditive()}
			continue
		}
		if p.isKeyword("CONTAINS") {
			p.advance()
			left = &BinaryExpr{Op: "CONTAINS", Left: left, Right: p.parseAdditive()}
			continue
		}
		break
	}
	return left
}

func (p *parser) parseAdditive() Expr {
	left := p.parseMultiplicative()
	for p.isPunct("+") || p.isPunct("-") {
		op := p.advance().Text
		left = &BinaryExpr{Op: op, Left: left, Right: p.parseMultiplicative()}
	}
	return left
}

func (p *parser) parseMultiplicative() Expr {
	left := p.parseUnary()
	for p.isPunct("*") || p.isPunct("/") || p.isPunct("%") {
		op := p.advance().Text
		left = &BinaryExpr{Op: op, Left: left, Right: p.parseUnary()}
	}
	return left
}

func (p *parser) parseUnary() Expr {
	if p.isPunct("-") {
		p.advance()
		return &UnaryExpr{Op: "-", Child: p.parseUnary()}
	}
	return p.parsePostfix()
}

// parsePostfix handles property access after a primary expression:
// `n.prop`. For a chain such as `p.prop.nested` the base is not kept:
// the result is a PropertyAccessExpr with an empty alias and only the
// last property name.
func (p *parser) parsePostfix() Expr {
	e := p.parsePrimary()
	for p.isPunct(".") {
		p.advance()
		prop := p.expectIdent().Text
		if ident, ok := e.(*IdentExpr); ok {
			e = &PropertyAccessExpr{Alias: ident.Name, Property: prop}
		} else {
			// chained access on a non-identifier base; keep the base
			// alias empty and let the analyzer reject it if it can't
			// resolve (kept simple deliberately: nested property
			// chains beyond alias.prop are rare in this subset).
			e = &PropertyAccessExpr{Alias: "", Property: prop}
		}
	}
	return e
}

func (p *parser) parsePrimary() Expr {
	t := p.cur()

	switch {
	case t.Kind == TokNumber:
		p.advance()
		if strings.Contains(t.Text, ".") {
			f, _ := strconv.ParseFloat(t.Text, 64)
			return &LiteralExpr{Value: f}
		}
		n, _ := strconv.ParseInt(t.Text, 10, 64)
		return &LiteralExpr{Value: n}

	case t.Kind == TokString:
		p.advance()
		return &LiteralExpr{Value: t.Text}

	case t.Kind == TokParameter:
		p.advance()
		return &ParameterExpr{Name: t.Text}

	case p.isKeyword("TRUE"):
		p.advance()
		return &LiteralExpr{Value: true}
	case p.isKeyword("FALSE"):
		p.advance()
		return &LiteralExpr{Value: false}
	case p.isKeyword("NULL"):
		p.advance()
		return &LiteralExpr{Value: nil}

	case p.isKeyword("CASE"):
		return p.parseCase()

	case p.isKeyword("SHORTESTPATH") || p.isKeyword("ALLSHORTESTPATHS"):
		all := p.isKeyword("ALLSHORTESTPATHS")
		p.advance()
		p.expectPunct("(")
		pp := p.parsePatternPart()
		p.expectPunct(")")
		return &ShortestPathExpr{All: all, Pattern: pp}

	case t.Kind == TokPunct && t.Text == "(":
		p.advance()
		e := p.parseExpr()
		p.expectPunct(")")
		return e

	case t.Kind == TokPunct && t.Text == "[":
		return p.parseListLiteral()

	case t.Kind == TokIdent:
		name := p.advance().Text
		if p.isPunct("(") {
			return p.parseFunctionCallTail(name)
		}
		return &IdentExpr{Name: name}

	default:
		p.fail("expression")
		return nil
	}
}

func (p *parser) parseListLiteral() Expr {
	p.expectPunct("[")
	var items []Expr
	if !p.isPunct("]") {
		items = append(items, p.parseExpr())
		for p.isPunct(",") {
			p.advance()
			items = append(items, p.parseExpr())
		}
	}
	p.expectPunct("]")
	return &ListExpr{Items: items}
}

func (p *parser) parseFunctionCallTail(name string) Expr {
	p.expectPunct("(")
	call := &FunctionCallExpr{Name: name}
	if p.isKeyword("DISTINCT") {
		p.advance()
		call.Distinct = true
	}
	if !p.isPunct(")") {
		if p.isPunct("*") {
			p.advance()
			call.Args = append(call.Args, StarExpr{})
		} else {
			call.Args = append(call.Args, p.parseExpr())
			for p.isPunct(",") {
				p.advance()
				call.Args = append(call.Args, p.parseExpr())
			}
		}
	}
	p.expectPunct(")")
	return call
}

func (p *parser) parseCase() Expr {
	p.expectKeyword("CASE")
	c := &CaseExpr{}
	if !p.isKeyword("WHEN") {
		c.Test = p.parseExpr()
	}
	for p.isKeyword("WHEN") {
		p.advance()
		when := p.parseExpr()
		p.expectKeyword("THEN")
		then := p.parseExpr()
		c.Branches = append(c.Branches, CaseBranchExpr{When: when, Then: then})
	}
	if p.isKeyword("ELSE") {
		p.advance()
		c.Else = p.parseExpr()
	}
	p.expectKeyword("END")
	return c
}
