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
	"strconv"

	"github.com/cygraph-io/cygraph/cerrors"
	"github.com/cygraph-io/cygraph/plan"
)

// buildExactChain emits n chained JOINs for a fixed hop count, 2-5x
// faster than a recursive CTE for the same traversal depth (§4.6
// "Exact hop count n").
func (g *Generator) buildExactChain(gr *plan.GraphRel) (*Output, error) {
	n := gr.Length.HopCount()
	if n < 1 {
		return nil, cerrors.SchemaViolation.New("exact-length relationship pattern must specify at least one hop")
	}

	edge, ok := gr.Edge.(*plan.ViewScan)
	if !ok {
		return nil, cerrors.InternalError.New("variable-length edge is missing a resolved ViewScan")
	}
	startSchema, endSchema := gr.Left.Scan.NodeSchema, gr.Right.Scan.NodeSchema
	if startSchema == nil || endSchema == nil {
		return nil, cerrors.InternalError.New("variable-length edge endpoints are missing a resolved schema")
	}
	if err := rejectUnsupportedEndpoints(gr); err != nil {
		return nil, err
	}
	fromCol, toCol := idColumns(edge.RelSchema)

	var chain []JoinSpec
	prevAlias, prevIDCol := gr.Left.Scan.SQLAlias, startSchema.IDColumn

	for hop := 1; hop <= n; hop++ {
		edgeAlias := edge.SQLAlias
		nodeAlias := gr.Right.Scan.SQLAlias
		nodeDatabase, nodeTable, nodeUseFinal, nodeFilter := endSchema.Database, endSchema.Table, endSchema.UseFinal, endSchema.Filter
		if hop < n {
			suffix := strconv.Itoa(hop)
			edgeAlias = g.Names.CTEName("hop_edge_"+gr.Alias, suffix)
			nodeAlias = g.Names.CTEName("hop_node_"+gr.Alias, suffix)
		}

		chain = append(chain, JoinSpec{
			Kind: joinKind(gr.Optional), Database: edge.Database, Table: edge.Table, SQLAlias: edgeAlias,
			UseFinal: edge.UseFinal, SchemaFilter: edge.SchemaFilter,
			On: idEquals(edgeAlias, fromCol, prevAlias, prevIDCol),
		})
		chain = append(chain, JoinSpec{
			Kind: joinKind(gr.Optional), Database: nodeDatabase, Table: nodeTable, SQLAlias: nodeAlias,
			UseFinal: nodeUseFinal, SchemaFilter: nodeFilter,
			On: idEquals(nodeAlias, endSchema.IDColumn, edgeAlias, toCol),
		})

		prevAlias, prevIDCol = nodeAlias, endSchema.IDColumn
	}

	return &Output{Kind: "chain", Chain: chain}, nil
}
