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

// dedupScan is pass 7 (§4.4.7). The builder already reuses one
// *GraphNode pointer per Cypher alias within a MATCH and across a WITH
// scope barrier (§4.3's b.bound map), so by the time this pass runs
// most queries have nothing to merge. It exists as the safety net for
// the case the spec calls out explicitly: two distinct GraphNode
// values surviving comma-pattern joining under the same alias, which
// this pass merges into one ViewScan, ANDing their filters together.
func dedupScan(a *Analyzer, n plan.Node) (plan.Node, error) {
	a.Log("dedup_scan: merging duplicate scans sharing an alias")
	canonical := map[string]*plan.GraphNode{}
	plan.Inspect(n, func(node plan.Node) bool {
		gn, ok := node.(*plan.GraphNode)
		if !ok {
			return true
		}
		existing, ok := canonical[gn.Alias]
		if !ok {
			canonical[gn.Alias] = gn
			return true
		}
		if existing == gn {
			return true
		}
		canonical[gn.Alias] = mergeGraphNodes(existing, gn)
		return true
	})

	return plan.TransformUp(n, func(node plan.Node) (plan.Node, error) {
		gn, ok := node.(*plan.GraphNode)
		if !ok {
			return node, nil
		}
		if merged, ok := canonical[gn.Alias]; ok {
			return merged, nil
		}
		return node, nil
	})
}

func mergeGraphNodes(a, b *plan.GraphNode) *plan.GraphNode {
	merged := *a
	scan := *a.Scan
	if b.Scan.ViewFilter != nil {
		if scan.ViewFilter == nil {
			scan.ViewFilter = b.Scan.ViewFilter
		} else {
			scan.ViewFilter = &expr.BinaryOp{Op: "AND", Left: scan.ViewFilter, Right: b.Scan.ViewFilter}
		}
	}
	merged.Scan = &scan
	return &merged
}
