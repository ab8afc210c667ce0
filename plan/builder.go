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
	"strings"

	"github.com/cygraph-io/cygraph/cerrors"
	"github.com/cygraph-io/cygraph/cypher"
	"github.com/cygraph-io/cygraph/expr"
)

// aggregateFunctions is the fixed grammar-level set of Cypher
// aggregating functions. Membership here only decides whether the
// builder emits an Aggregate node instead of a Project; the Analyzer's
// projection resolution pass (§4.4.6) is what actually binds a call to
// a concrete implementation and sets FunctionCall.IsAggregate.
var aggregateFunctions = map[string]bool{
	"count": true, "sum": true, "avg": true, "min": true, "max": true,
	"collect": true, "stdev": true, "stdevp": true,
	"percentilecont": true, "percentiledisc": true,
}

// IsAggregateFunction reports whether name (case-insensitively) is one
// of the grammar-level aggregating functions; shared with the
// Analyzer's projection_resolution pass (§4.4.6) so both stages agree
// on the same fixed set.
func IsAggregateFunction(name string) bool {
	return aggregateFunctions[strings.ToLower(name)]
}

// buildError is recovered at the Build boundary, mirroring the
// teacher's PlanBuilder.handleErr: every failure mid-build panics with
// one of these instead of threading an error return through every
// recursive helper.
type buildError struct{ err error }

// Builder turns a parsed cypher.Statement into an unresolved logical
// plan tree (§4.3). It never consults the schema catalog directly —
// that is schema inference's job (§4.4.1) — so the same Builder value
// is reusable across catalogs.
type Builder struct {
	// DefaultUnboundedHops bounds a bare `*` or `*n..` variable-length
	// pattern that specifies no upper bound, standing in for
	// Config.DefaultUnboundedHops (§4.6 "Edge cases and tie-breaks").
	DefaultUnboundedHops int

	bound         map[string]Node
	pendingFilter []expr.Expression
	anon          int
	cteCounter    int
}

// NewBuilder returns a Builder with the given default unbounded-hop
// cap.
func NewBuilder(defaultUnboundedHops int) *Builder {
	return &Builder{DefaultUnboundedHops: defaultUnboundedHops}
}

// Build converts a full statement, including any UNION/UNION ALL
// continuations, into a logical plan (§4.3).
func (b *Builder) Build(stmt *cypher.Statement) (out Node, err error) {
	defer func() {
		if r := recover(); r != nil {
			if be, ok := r.(buildError); ok {
				err = be.err
				return
			}
			panic(r)
		}
	}()

	result := b.buildQuery(stmt.Query)
	for _, u := range stmt.Unions {
		right := b.buildQuery(u.Query)
		if u.All {
			result = NewUnionAll(result, right)
		} else {
			result = NewUnion(result, right)
		}
	}
	return result, nil
}

func (b *Builder) failKind(err error) {
	panic(buildError{err})
}

// buildQuery builds one linear clause sequence (one arm of a UNION).
func (b *Builder) buildQuery(q *cypher.Query) Node {
	b.bound = map[string]Node{}
	b.pendingFilter = nil

	var joinElems []Node
	var cur Node

	closeMatchSegment := func() {
		if len(joinElems) == 0 {
			return
		}
		gj := &GraphJoins{Anchor: joinElems[0], Elements: joinElems}
		if cur == nil {
			cur = gj
		} else {
			cur = combineCross(cur, gj)
		}
		joinElems = nil
	}

	applyPendingFilter := func() {
		if len(b.pendingFilter) == 0 {
			return
		}
		if cur == nil {
			cur = Empty{}
		}
		cur = NewFilter(expr.JoinAnd(b.pendingFilter...), cur)
		b.pendingFilter = nil
	}

	for _, c := range q.Clauses {
		switch cl := c.(type) {
		case *cypher.MatchClause:
			elems := b.buildPatterns(cl.Patterns)
			if cl.Where != nil {
				b.pendingFilter = append(b.pendingFilter, convertExpr(cl.Where))
			}
			if cl.Optional {
				nested := &GraphJoins{Anchor: elems[0], Elements: elems, Optional: true}
				joinElems = append(joinElems, nested)
			} else {
				joinElems = append(joinElems, elems...)
			}

		case *cypher.WithClause:
			closeMatchSegment()
			applyPendingFilter()
			if cur == nil {
				cur = Empty{}
			}
			// WHERE on a WITH filters the re-exported rows, so it is
			// applied after the projection rather than the upstream
			// scan set (§4.2 "WITH ... WHERE").
			proj := b.buildProjectOrAggregate(cl.Items, cl.Distinct, cur)
			if cl.Where != nil {
				proj = NewFilter(convertExpr(cl.Where), proj)
			}
			proj = b.applyOrderSkipLimit(proj, cl.OrderBy, cl.Skip, cl.Limit)

			name := fmt.Sprintf("with_%d", b.cteCounter)
			b.cteCounter++
			cteNode := NewCte(name, proj)

			newBound := map[string]Node{}
			for _, item := range cl.Items {
				if ident, ok := item.Expr.(*cypher.IdentExpr); ok {
					exportName := item.As
					if exportName == "" {
						exportName = ident.Name
					}
					if orig, ok := b.bound[ident.Name]; ok {
						newBound[exportName] = orig
					}
				}
			}
			b.bound = newBound
			cur = cteNode

		case *cypher.ReturnClause:
			closeMatchSegment()
			applyPendingFilter()
			if cur == nil {
				cur = Empty{}
			}
			proj := b.buildProjectOrAggregate(cl.Items, cl.Distinct, cur)
			proj = b.applyOrderSkipLimit(proj, cl.OrderBy, cl.Skip, cl.Limit)
			return proj

		case *cypher.CallClause:
			args := make([]expr.Expression, len(cl.Args))
			for i, a := range cl.Args {
				args[i] = convertExpr(a)
			}
			return &Procedure{Name: cl.Procedure, Args: args}

		case *cypher.UnsupportedClause:
			return &Unsupported{Keyword: cl.Keyword, Pos: Pos(cl.Pos)}

		default:
			b.failKind(cerrors.InternalError.New(fmt.Sprintf("unhandled clause %T", c)))
		}
	}

	closeMatchSegment()
	applyPendingFilter()
	if cur == nil {
		cur = Empty{}
	}
	return cur
}

// combineCross joins two already-built fragments (e.g. a CTE result
// and a fresh MATCH) into one GraphJoins by appending the left
// fragment as an Element alongside the right's elements; join
// inference (§4.4.5) is responsible for finding (or falling back to a
// CROSS JOIN for) any connecting predicate.
func combineCross(left, right Node) Node {
	rgj, ok := right.(*GraphJoins)
	if !ok {
		return &GraphJoins{Anchor: left, Elements: []Node{left, right}}
	}
	elems := append([]Node{left}, rgj.Elements...)
	return &GraphJoins{Anchor: elems[0], Elements: elems, Optional: rgj.Optional}
}

// buildPatterns flattens every comma-separated PatternPart of one
// MATCH into element order, reusing already-bound aliases so repeated
// references to the same variable don't fork into duplicate scans
// (§4.3, §4.4.5); a node named by several parts is listed only once.
func (b *Builder) buildPatterns(parts []cypher.PatternPart) []Node {
	var all []Node
	seen := map[Node]bool{}
	for _, part := range parts {
		for _, el := range b.buildPatternPart(part) {
			if !seen[el] {
				seen[el] = true
				all = append(all, el)
			}
		}
	}
	return all
}

func (b *Builder) buildPatternPart(part cypher.PatternPart) []Node {
	var elems []Node
	first, ok := part.Elements[0].(*cypher.NodePattern)
	if !ok {
		b.failKind(cerrors.InternalError.New("pattern must start with a node"))
	}
	leftNode := b.bindNode(first)
	elems = append(elems, leftNode)

	for i := 1; i < len(part.Elements); i += 2 {
		rp, ok := part.Elements[i].(*cypher.RelPattern)
		if !ok {
			b.failKind(cerrors.InternalError.New("expected relationship pattern"))
		}
		np, ok := part.Elements[i+1].(*cypher.NodePattern)
		if !ok {
			b.failKind(cerrors.InternalError.New("expected node pattern"))
		}
		rightNode := b.bindNode(np)
		rel := b.bindRel(leftNode, rp, rightNode, part.PathVar)
		elems = append(elems, rel, rightNode)
		leftNode = rightNode
	}
	return elems
}

func (b *Builder) bindNode(np *cypher.NodePattern) *GraphNode {
	alias := np.Alias
	if alias == "" {
		alias = b.anonAlias()
	}
	if existing, ok := b.bound[alias]; ok {
		if gn, ok2 := existing.(*GraphNode); ok2 {
			return gn
		}
	}

	label := ""
	if len(np.Labels) > 0 {
		label = np.Labels[0]
	}
	scan := &ViewScan{SQLAlias: alias, Label: label, Unresolved: true, Pos: Pos(np.Pos)}
	gn := &GraphNode{Alias: alias, Scan: scan}
	b.bound[alias] = gn

	if len(np.Properties) > 0 {
		b.pendingFilter = append(b.pendingFilter, propsFilter(alias, np.Properties))
	}
	return gn
}

func (b *Builder) bindRel(left *GraphNode, rp *cypher.RelPattern, right *GraphNode, pathVar string) *GraphRel {
	alias := rp.Alias
	if alias == "" {
		alias = b.anonAlias()
	}

	var typ string
	var altTypes []string
	switch len(rp.Types) {
	case 0:
	case 1:
		typ = rp.Types[0]
	default:
		altTypes = rp.Types
	}

	dir := DirUndirected
	switch rp.Direction {
	case 1:
		dir = DirRight
	case -1:
		dir = DirLeft
	}

	length := b.lengthSpecFromRel(rp)

	edge := &ViewScan{SQLAlias: alias, Unresolved: true, Pos: Pos(rp.Pos)}
	gr := &GraphRel{
		Alias: alias, Type: typ, AltTypes: altTypes, Direction: dir,
		Length: length, PathVar: pathVar, Left: left, Edge: edge, Right: right,
	}
	b.bound[alias] = gr

	if len(rp.Properties) > 0 {
		b.pendingFilter = append(b.pendingFilter, propsFilter(alias, rp.Properties))
	}
	return gr
}

func (b *Builder) lengthSpecFromRel(rp *cypher.RelPattern) LengthSpec {
	var spec LengthSpec
	switch {
	case !rp.VarLength:
		spec = LengthSpec{Kind: LengthExactOne}
	case rp.HasMin && rp.HasMax:
		if rp.Min == rp.Max {
			spec = LengthSpec{Kind: LengthExact, Exact: rp.Min}
		} else {
			spec = LengthSpec{Kind: LengthRange, Min: rp.Min, Max: rp.Max, MaxExplicit: true}
		}
	case rp.HasMin && !rp.HasMax:
		spec = LengthSpec{Kind: LengthRange, Min: rp.Min, Max: b.DefaultUnboundedHops}
	case !rp.HasMin && rp.HasMax:
		spec = LengthSpec{Kind: LengthRange, Min: 1, Max: rp.Max, MaxExplicit: true}
	default:
		spec = LengthSpec{Kind: LengthRange, Min: 1, Max: b.DefaultUnboundedHops}
	}
	if rp.ShortestPath {
		if rp.AllShortest {
			spec.Kind = LengthAllShortestPaths
		} else {
			spec.Kind = LengthShortestPath
		}
	}
	return spec
}

func (b *Builder) anonAlias() string {
	b.anon++
	return fmt.Sprintf("_anon%d", b.anon)
}

func propsFilter(alias string, kvs []cypher.PropertyKV) expr.Expression {
	preds := make([]expr.Expression, len(kvs))
	for i, kv := range kvs {
		preds[i] = &expr.BinaryOp{
			Op:    "=",
			Left:  &expr.UnresolvedPropertyAccess{Alias: alias, Property: kv.Key},
			Right: convertExpr(kv.Value),
		}
	}
	return expr.JoinAnd(preds...)
}

// buildProjectOrAggregate builds either a Project or an Aggregate,
// depending on whether any item calls a grammar-level aggregate
// function (§3.2, §4.3 "WITH/RETURN become Project or Aggregate").
func (b *Builder) buildProjectOrAggregate(items []cypher.ReturnItem, distinct bool, child Node) Node {
	cols := make([]ProjectionExpr, 0, len(items))
	hasAgg := false
	for _, item := range items {
		e := convertExpr(item.Expr)
		if containsAggregate(e) {
			hasAgg = true
		}
		name := item.As
		if name == "" {
			name = defaultProjectionName(item.Expr)
		}
		cols = append(cols, ProjectionExpr{Expr: e, As: name})
	}

	if !hasAgg {
		p := NewProject(cols, child)
		p.Distinct = distinct
		return p
	}

	var groupBy []expr.Expression
	var aggs []ProjectionExpr
	for _, c := range cols {
		if containsAggregate(c.Expr) {
			aggs = append(aggs, c)
		} else {
			groupBy = append(groupBy, c.Expr)
		}
	}
	return NewAggregate(groupBy, aggs, child)
}

func containsAggregate(e expr.Expression) bool {
	found := false
	expr.Inspect(e, func(x expr.Expression) bool {
		if uf, ok := x.(*expr.UnresolvedFunction); ok && aggregateFunctions[strings.ToLower(uf.Name)] {
			found = true
			return false
		}
		return true
	})
	return found
}

func defaultProjectionName(e cypher.Expr) string {
	switch v := e.(type) {
	case *cypher.IdentExpr:
		return v.Name
	case *cypher.PropertyAccessExpr:
		return v.Property
	default:
		return ""
	}
}

func (b *Builder) applyOrderSkipLimit(n Node, order []cypher.OrderItem, skip, limit cypher.Expr) Node {
	if len(order) > 0 {
		fields := make([]SortField, len(order))
		for i, o := range order {
			fields[i] = SortField{Expr: convertExpr(o.Expr), Descending: o.Descending}
		}
		n = NewSort(fields, n)
	}
	if skip != nil {
		n = NewSkip(convertExpr(skip), n)
	}
	if limit != nil {
		n = NewLimit(convertExpr(limit), n)
	}
	return n
}

// convertExpr lowers a cypher.Expr into an expr.Expression. It never
// consults the schema, so every property access and function call
// comes out unresolved (§4.4.2, §4.4.6 do the resolving).
func convertExpr(e cypher.Expr) expr.Expression {
	switch v := e.(type) {
	case *cypher.PropertyAccessExpr:
		return &expr.UnresolvedPropertyAccess{Alias: v.Alias, Property: v.Property}
	case *cypher.IdentExpr:
		return &expr.UnresolvedPropertyAccess{Alias: v.Name, Property: "*"}
	case *cypher.LiteralExpr:
		return &expr.Literal{Value: v.Value}
	case *cypher.ParameterExpr:
		return &expr.Parameter{Name: v.Name}
	case *cypher.BinaryExpr:
		return &expr.BinaryOp{Op: v.Op, Left: convertExpr(v.Left), Right: convertExpr(v.Right)}
	case *cypher.UnaryExpr:
		return &expr.UnaryOp{Op: v.Op, Child: convertExpr(v.Child)}
	case *cypher.InExpr:
		list := convertExpr(v.List)
		if ll, ok := list.(*expr.ListLiteral); ok {
			return &expr.InList{Target: convertExpr(v.Target), List: ll.Items}
		}
		return &expr.InList{Target: convertExpr(v.Target), List: []expr.Expression{list}}
	case *cypher.ListExpr:
		items := make([]expr.Expression, len(v.Items))
		for i, it := range v.Items {
			items[i] = convertExpr(it)
		}
		return &expr.ListLiteral{Items: items}
	case *cypher.CaseExpr:
		branches := make([]expr.CaseBranch, len(v.Branches))
		var test expr.Expression
		if v.Test != nil {
			test = convertExpr(v.Test)
		}
		for i, br := range v.Branches {
			when := convertExpr(br.When)
			if test != nil {
				when = &expr.BinaryOp{Op: "=", Left: test, Right: when}
			}
			branches[i] = expr.CaseBranch{When: when, Then: convertExpr(br.Then)}
		}
		var els expr.Expression
		if v.Else != nil {
			els = convertExpr(v.Else)
		}
		return &expr.Case{Branches: branches, Else: els}
	case *cypher.FunctionCallExpr:
		args := make([]expr.Expression, len(v.Args))
		for i, a := range v.Args {
			args[i] = convertExpr(a)
		}
		return &expr.UnresolvedFunction{Name: v.Name, Args: args, Distinct: v.Distinct}
	case cypher.StarExpr:
		return expr.Star{}
	case *cypher.ShortestPathExpr:
		// shortestPath()/allShortestPaths() as a plain expression
		// (rather than a MATCH pattern) carries no resolvable value in
		// this subset, so the build stops with UnsupportedFeature.
		panic(buildError{cerrors.UnsupportedFeature.New("shortestPath()/allShortestPaths() used as an expression")})
	default:
		panic(buildError{cerrors.InternalError.New(fmt.Sprintf("unhandled expression %T", e))})
	}
}
