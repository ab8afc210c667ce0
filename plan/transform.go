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

import "github.com/cygraph-io/cygraph/expr"

// TransformUp rewrites every node in the tree rooted at n, children
// first, exactly like the teacher's sql.Node.TransformUp used
// pervasively in the retrieved sql/analyzer rule implementations.
// Passes return a brand-new tree; n itself is never mutated (§3.2
// "Ownership").
func TransformUp(n Node, fn func(Node) (Node, error)) (Node, error) {
	children := n.Children()
	if len(children) == 0 {
		return fn(n)
	}
	newChildren := make([]Node, len(children))
	for i, c := range children {
		nc, err := TransformUp(c, fn)
		if err != nil {
			return nil, err
		}
		newChildren[i] = nc
	}
	rebuilt, err := n.WithChildren(newChildren...)
	if err != nil {
		return nil, err
	}
	return fn(rebuilt)
}

// TransformExpressionsUp rewrites every expr.Expression reachable from
// n - including expressions nested inside ViewScan.ViewFilter and
// GraphRel constraints - by walking the plan tree and, at every
// ExpressionHolder, applying expr.TransformUp to each of its
// expressions (§4.4.3 "rewrites PropertyAccess(...) using the alias
// resolution context").
func TransformExpressionsUp(n Node, fn func(expr.Expression) (expr.Expression, error)) (Node, error) {
	return TransformUp(n, func(n Node) (Node, error) {
		holder, ok := n.(ExpressionHolder)
		if !ok {
			return n, nil
		}
		exprs := holder.Expressions()
		if len(exprs) == 0 {
			return n, nil
		}
		newExprs := make([]expr.Expression, len(exprs))
		for i, e := range exprs {
			ne, err := expr.TransformUp(e, fn)
			if err != nil {
				return nil, err
			}
			newExprs[i] = ne
		}
		return holder.WithExpressions(newExprs...)
	})
}

// Inspect walks n and every descendant, invoking fn on each node; it
// stops descending into children the first time fn returns false for
// that node (but always finishes walking siblings already queued).
func Inspect(n Node, fn func(Node) bool) {
	if n == nil {
		return
	}
	if !fn(n) {
		return
	}
	for _, c := range n.Children() {
		Inspect(c, fn)
	}
}

// Walk collects every node in the tree, pre-order, for tests and for
// passes that need the full set rather than a streaming visitor.
func Walk(n Node) []Node {
	var out []Node
	Inspect(n, func(n Node) bool {
		out = append(out, n)
		return true
	})
	return out
}
