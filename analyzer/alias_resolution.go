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
	"github.com/cygraph-io/cygraph/plan"
)

// aliasResolution is pass 2 (§4.4.2): builds the AliasResolutionContext
// from the ViewScan metadata schema_inference already attached. It
// does not rewrite the plan - the index is consulted by every later
// pass rather than baked into the tree (§9 "a lookup index, not a
// plan rewrite").
func aliasResolution(a *Analyzer, n plan.Node) (plan.Node, error) {
	a.Log("alias_resolution: building AliasResolutionContext")
	ctx := a.Ctx.Alias

	plan.Inspect(n, func(node plan.Node) bool {
		switch v := node.(type) {
		case *plan.GraphNode:
			bindNodeAlias(ctx, v)
		case *plan.GraphRel:
			bindRelAlias(ctx, v)
		}
		return true
	})

	a.AliasCtx = ctx
	return n, nil
}

func bindNodeAlias(ctx *AliasResolutionContext, gn *plan.GraphNode) {
	if gn.Scan.NodeSchema == nil {
		// Still unresolved (e.g. a scan placeholder schema_inference
		// could not bind); leave for validation to reject.
		ctx.declared[gn.Alias] = true
		return
	}
	ns := gn.Scan.NodeSchema

	if !ns.IsDenormalized() {
		ctx.BindAlias(gn.Alias, gn.Scan.SQLAlias)
		for prop, mapping := range ns.Properties {
			ctx.BindProperty(gn.Alias, "", prop, ColumnBinding{SQLAlias: gn.Scan.SQLAlias, SQLExpr: mapping.SQL()})
		}
		return
	}

	// Denormalized node: properties live on the incident edge table,
	// and which mapping applies depends on from/to role (§4.4.2).
	// The node alias itself is rewritten to the edge alias so filters
	// and projections target the single physical table.
	role := gn.Role
	props := ns.FromNodeProperties
	if role == "to" {
		props = ns.ToNodeProperties
	}
	ctx.declared[gn.Alias] = true
	ctx.SetRole(gn.Alias, role)
	for prop, mapping := range props {
		ctx.BindProperty(gn.Alias, role, prop, ColumnBinding{SQLExpr: mapping.SQL()})
	}
}

func bindRelAlias(ctx *AliasResolutionContext, gr *plan.GraphRel) {
	ctx.declared[gr.Alias] = true

	scan, ok := gr.Edge.(*plan.ViewScan)
	if !ok || scan.RelSchema == nil {
		return
	}
	ctx.BindAlias(gr.Alias, scan.SQLAlias)

	// A denormalized node's properties are re-keyed onto the edge's
	// own alias once its Scan alias has been rewritten; backfillDenormAlias
	// backfills ColumnBinding.SQLAlias for those entries once the edge
	// alias is known (the node pass above ran before this one in
	// Inspect's arbitrary node order is not guaranteed, so this backfill
	// step is idempotent and safe to run from either side).
	backfillDenormAlias(ctx, gr.Left, scan.SQLAlias)
	backfillDenormAlias(ctx, gr.Right, scan.SQLAlias)
}

func backfillDenormAlias(ctx *AliasResolutionContext, gn *plan.GraphNode, edgeAlias string) {
	if gn == nil || gn.Scan.NodeSchema == nil || !gn.Scan.NodeSchema.IsDenormalized() {
		return
	}
	ctx.BindAlias(gn.Alias, edgeAlias)
	ctx.SetRole(gn.Alias, gn.Role)
	props := gn.Scan.NodeSchema.FromNodeProperties
	if gn.Role == "to" {
		props = gn.Scan.NodeSchema.ToNodeProperties
	}
	for prop, mapping := range props {
		ctx.BindProperty(gn.Alias, gn.Role, prop, ColumnBinding{SQLAlias: edgeAlias, SQLExpr: mapping.SQL()})
	}
}
