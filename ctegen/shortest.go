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

// buildShortestPath emits a breadth-first recursive CTE plus a
// ROW_NUMBER() filter selecting the lowest-hop_count path per
// (start, end) pair (§4.6 "Shortest path").
func (g *Generator) buildShortestPath(gr *plan.GraphRel) (*Output, error) {
	if err := rejectUnsupportedEndpoints(gr); err != nil {
		return nil, err
	}
	out, err := g.baseRecursiveSkeleton(gr, "shortestpath")
	if err != nil {
		return nil, err
	}
	out.OuterFilter = rankOneFilter(out)
	return out, nil
}

// rankOneFilter builds `ROW_NUMBER() OVER (PARTITION BY start_id,
// end_id ORDER BY hop_count) = 1`, applied as an outer predicate after
// the CTE (§4.6 "ROW_NUMBER() partitioning by (start, end)").
func rankOneFilter(out *Output) expr.Expression {
	startRef := &expr.ColumnRef{SQLAlias: out.CTEName, SQLExpr: out.StartIDCol}
	endRef := &expr.ColumnRef{SQLAlias: out.CTEName, SQLExpr: out.EndIDCol}
	hopRef := &expr.ColumnRef{SQLAlias: out.CTEName, SQLExpr: out.HopCountCol}
	rank := &expr.WindowCall{
		Name:        "ROW_NUMBER",
		PartitionBy: []expr.Expression{startRef, endRef},
		OrderBy:     []expr.WindowOrder{{Expr: hopRef}},
	}
	return &expr.BinaryOp{Op: "=", Left: rank, Right: intLiteral(1)}
}
