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
	"sort"

	"github.com/cygraph-io/cygraph/cerrors"
	"github.com/cygraph-io/cygraph/expr"
	"github.com/cygraph-io/cygraph/plan"
)

// pathFunctions are resolved directly to a FunctionCall rather than
// expanded against a node's property mapping, since they operate on a
// path variable backed by the Variable-Length CTE Generator's
// aggregated arrays (§4.6 "Path variables") rather than on a single
// alias's columns.
var pathFunctions = map[string]bool{"nodes": true, "relationships": true, "length": true}

// projectionResolution is pass 6 (§4.4.6): resolves every RETURN/WITH
// expression using the AliasResolutionContext, expands a bare node
// variable (`RETURN n`) into its mapped property list, resolves
// UnresolvedFunction calls into FunctionCall (tagging aggregates), and
// assigns stable output names. It also records, per alias, the
// columns that alias's scan must expose (Ctx.ProjectedColumns),
// consulted by the Render Planner's SELECT list construction.
func projectionResolution(a *Analyzer, n plan.Node) (plan.Node, error) {
	a.Log("projection_resolution: resolving RETURN/WITH expressions")
	return plan.TransformUp(n, func(node plan.Node) (plan.Node, error) {
		switch v := node.(type) {
		case *plan.Project:
			return expandProjectColumns(a, v)
		case *plan.Aggregate:
			return expandAggregateColumns(a, v)
		default:
			return node, nil
		}
	})
}

func expandProjectColumns(a *Analyzer, p *plan.Project) (plan.Node, error) {
	cols, err := expandColumns(a, p.Columns)
	if err != nil {
		return nil, err
	}
	np := *p
	np.Columns = cols
	return &np, nil
}

func expandAggregateColumns(a *Analyzer, ag *plan.Aggregate) (plan.Node, error) {
	groupBy := make([]expr.Expression, len(ag.GroupBy))
	for i, e := range ag.GroupBy {
		re, err := resolveProjectionExpr(a, e)
		if err != nil {
			return nil, err
		}
		groupBy[i] = re
	}
	aggs, err := expandColumns(a, ag.Aggs)
	if err != nil {
		return nil, err
	}
	nag := *ag
	nag.GroupBy = groupBy
	nag.Aggs = aggs
	return &nag, nil
}

func expandColumns(a *Analyzer, cols []plan.ProjectionExpr) ([]plan.ProjectionExpr, error) {
	var out []plan.ProjectionExpr
	for _, c := range cols {
		if wholeAlias, ok := c.Expr.(*expr.UnresolvedPropertyAccess); ok && wholeAlias.Property == "*" {
			expanded, err := expandAliasProjection(a, wholeAlias.Alias)
			if err != nil {
				return nil, err
			}
			out = append(out, expanded...)
			continue
		}
		resolved, err := resolveProjectionExpr(a, c.Expr)
		if err != nil {
			return nil, err
		}
		out = append(out, plan.ProjectionExpr{Expr: resolved, As: c.As})
	}
	return out, nil
}

// expandAliasProjection expands `RETURN n` into one projection per
// mapped property of n, sorted for determinism (§8 "two invocations
// produce byte-identical SQL").
func expandAliasProjection(a *Analyzer, alias string) ([]plan.ProjectionExpr, error) {
	if !a.AliasCtx.IsDeclared(alias) {
		return nil, cerrors.UnknownAlias.New(alias)
	}
	props := a.AliasCtx.AllProperties(alias)
	sort.Strings(props)
	out := make([]plan.ProjectionExpr, 0, len(props))
	for _, prop := range props {
		binding, _ := a.AliasCtx.ResolveProperty(alias, prop)
		sqlAlias := binding.SQLAlias
		if sqlAlias == "" {
			sqlAlias = a.AliasCtx.SQLAlias(alias)
		}
		out = append(out, plan.ProjectionExpr{
			Expr: &expr.ColumnRef{SQLAlias: sqlAlias, SQLExpr: binding.SQLExpr},
			As:   prop,
		})
	}
	a.Ctx.ProjectedColumns[alias] = props
	return out, nil
}

// resolveProjectionExpr resolves any UnresolvedPropertyAccess (other
// than a whole-alias `*` reference, already handled by the caller) and
// UnresolvedFunction nodes reachable from e.
func resolveProjectionExpr(a *Analyzer, e expr.Expression) (expr.Expression, error) {
	return expr.TransformUp(e, func(x expr.Expression) (expr.Expression, error) {
		switch v := x.(type) {
		case *expr.UnresolvedPropertyAccess:
			if v.Property == "*" {
				// A bare alias nested inside a larger expression (e.g.
				// an argument to nodes(p)) is left as-is; path
				// functions consume it by name, not by property
				// expansion.
				return x, nil
			}
			return resolvePropertyAccess(a, v)
		case *expr.UnresolvedFunction:
			return &expr.FunctionCall{
				Name:        v.Name,
				Args:        v.Args,
				Distinct:    v.Distinct,
				IsAggregate: plan.IsAggregateFunction(v.Name) && !pathFunctions[v.Name],
			}, nil
		default:
			return x, nil
		}
	})
}
