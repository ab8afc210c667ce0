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
	"github.com/cygraph-io/cygraph/cerrors"
	"github.com/cygraph-io/cygraph/expr"
	"github.com/cygraph-io/cygraph/plan"
)

// filterTagging is pass 3 (§4.4.3): rewrites every
// UnresolvedPropertyAccess(alias, prop) reachable from WHERE and
// inline property filters into its resolved ColumnRef form, using the
// AliasResolutionContext built by alias_resolution. A bare identifier
// reference (Property == "*", produced by the builder for `RETURN n`)
// is left alone here - expanding it into a property list is
// projection_resolution's job (§4.4.6), not filter tagging's.
func filterTagging(a *Analyzer, n plan.Node) (plan.Node, error) {
	a.Log("filter_tagging: resolving property accesses in predicates")
	return plan.TransformExpressionsUp(n, func(e expr.Expression) (expr.Expression, error) {
		up, ok := e.(*expr.UnresolvedPropertyAccess)
		if !ok || up.Property == "*" {
			return e, nil
		}
		return resolvePropertyAccess(a, up)
	})
}

func resolvePropertyAccess(a *Analyzer, up *expr.UnresolvedPropertyAccess) (expr.Expression, error) {
	if !a.AliasCtx.IsDeclared(up.Alias) {
		return nil, cerrors.UnknownAlias.New(up.Alias)
	}
	binding, ok := a.AliasCtx.ResolveProperty(up.Alias, up.Property)
	if !ok {
		return nil, cerrors.UnknownProperty.New(up.Property, up.Alias)
	}
	sqlAlias := binding.SQLAlias
	if sqlAlias == "" {
		sqlAlias = a.AliasCtx.SQLAlias(up.Alias)
	}
	return &expr.ColumnRef{SQLAlias: sqlAlias, SQLExpr: binding.SQLExpr}, nil
}
