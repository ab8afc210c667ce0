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

package ctegen

import (
	"github.com/cygraph-io/cygraph/expr"
	"github.com/cygraph-io/cygraph/plan"
)

// buildAllShortestPaths emits the same BFS CTE as buildShortestPath
// but filters on hop_count equal to the minimum hop_count per
// (start, end) pair instead of ranking to a single row (§4.6 "All
// shortest paths").
func (g *Generator) buildAllShortestPaths(gr *plan.GraphRel) (*Output, error) {
	if err := rejectUnsupportedEndpoints(gr); err != nil {
		return nil, err
	}
	out, err := g.baseRecursiveSkeleton(gr, "allshortestpaths")
	if err != nil {
		return nil, err
	}

	startRef := &expr.ColumnRef{SQLAlias: out.CTEName, SQLExpr: out.StartIDCol}
	endRef := &expr.ColumnRef{SQLAlias: out.CTEName, SQLExpr: out.EndIDCol}
	hopRef := &expr.ColumnRef{SQLAlias: out.CTEName, SQLExpr: out.HopCountCol}
	minHop := &expr.WindowCall{
		Name:        "MIN",
		Args:        []expr.Expression{hopRef},
		PartitionBy: []expr.Expression{startRef, endRef},
	}
	out.OuterFilter = &expr.BinaryOp{Op: "=", Left: hopRef, Right: minHop}
	return out, nil
}
