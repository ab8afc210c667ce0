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
	"github.com/cygraph-io/cygraph/expr"
	"github.com/cygraph-io/cygraph/plan"
)

// filterPushdown is pass 4 (§4.4.4): moves predicates from top-level
// Filter nodes down into the nearest ViewScan's view_filter whenever
// every alias the predicate references sits below that scan.
// Predicates referencing exactly two aliases become a GraphRel's
// JoinFilter (rendered as an extra ON predicate, §4.5) when those two
// aliases are exactly that relationship's endpoints; anything else is
// left in a residual Filter so its WHERE semantics are preserved.
func filterPushdown(a *Analyzer, n plan.Node) (plan.Node, error) {
	a.Log("filter_pushdown: pushing predicates toward scans and joins")
	return plan.TransformUp(n, func(node plan.Node) (plan.Node, error) {
		f, ok := node.(*plan.Filter)
		if !ok {
			return node, nil
		}
		return pushdownFilter(f)
	})
}

func pushdownFilter(f *plan.Filter) (plan.Node, error) {
	conjuncts := expr.SplitAnd(f.Predicate)
	child := f.Child
	var residual []expr.Expression

	for _, c := range conjuncts {
		aliases := referencedAliases(c)
		switch len(aliases) {
		case 0:
			residual = append(residual, c)
		case 1:
			pushed, err := pushIntoScan(child, aliases[0], c)
			if err != nil {
				return nil, err
			}
			if pushed == nil {
				residual = append(residual, c)
				continue
			}
			child = pushed
		case 2:
			pushed, err := pushIntoJoin(child, aliases[0], aliases[1], c)
			if err != nil {
				return nil, err
			}
			if pushed == nil {
				residual = append(residual, c)
				continue
			}
			child = pushed
		default:
			residual = append(residual, c)
		}
	}

	if len(residual) == 0 {
		return child, nil
	}
	return plan.NewFilter(expr.JoinAnd(residual...), child), nil
}

// referencedAliases returns the distinct SQL aliases a resolved
// predicate touches, via its ColumnRef leaves.
func referencedAliases(e expr.Expression) []string {
	seen := map[string]bool{}
	var out []string
	expr.Inspect(e, func(x expr.Expression) bool {
		if cr, ok := x.(*expr.ColumnRef); ok && cr.SQLAlias != "" && !seen[cr.SQLAlias] {
			seen[cr.SQLAlias] = true
			out = append(out, cr.SQLAlias)
		}
		return true
	})
	return out
}

func pushIntoScan(n plan.Node, alias string, pred expr.Expression) (plan.Node, error) {
	found := false
	out, err := plan.TransformUp(n, func(node plan.Node) (plan.Node, error) {
		vs, ok := node.(*plan.ViewScan)
		if !ok || vs.SQLAlias != alias {
			return node, nil
		}
		found = true
		nv := *vs
		if nv.ViewFilter == nil {
			nv.ViewFilter = pred
		} else {
			nv.ViewFilter = &expr.BinaryOp{Op: "AND", Left: nv.ViewFilter, Right: pred}
		}
		return &nv, nil
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return out, nil
}

func pushIntoJoin(n plan.Node, a1, a2 string, pred expr.Expression) (plan.Node, error) {
	found := false
	out, err := plan.TransformUp(n, func(node plan.Node) (plan.Node, error) {
		gr, ok := node.(*plan.GraphRel)
		if !ok {
			return node, nil
		}
		left, right := gr.Left.Scan.SQLAlias, gr.Right.Scan.SQLAlias
		matches := (left == a1 && right == a2) || (left == a2 && right == a1)
		if !matches {
			return node, nil
		}
		found = true
		ngr := *gr
		if ngr.JoinFilter == nil {
			ngr.JoinFilter = pred
		} else {
			ngr.JoinFilter = &expr.BinaryOp{Op: "AND", Left: ngr.JoinFilter, Right: pred}
		}
		return &ngr, nil
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return out, nil
}
