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
	"github.com/cygraph-io/cygraph/cerrors"
	"github.com/cygraph-io/cygraph/plan"
	"github.com/pkg/errors"
)

// Generator dispatches a variable-length GraphRel to the matching
// strategy of §4.6: exact-hop chain, range, shortestPath, or
// allShortestPaths.
type Generator struct {
	Names *NameGen
}

// NewGenerator returns a Generator sharing names with the rest of a
// single compilation, so CTE and chain-hop aliases are deterministic
// for a given (schema, query) pair (§5, §8).
func NewGenerator(names *NameGen) *Generator {
	if names == nil {
		names = NewNameGen()
	}
	return &Generator{Names: names}
}

// Build produces the join chain or recursive CTE for gr. Callers must
// only invoke this for a GraphRel whose Length is not a single hop
// (plan.LengthSpec.IsSingleHop()); the render planner handles the
// single-hop case directly with a plain JOIN.
func (g *Generator) Build(gr *plan.GraphRel) (*Output, error) {
	switch {
	case gr.Length.IsExactN():
		return g.buildExactChain(gr)
	case gr.Length.Kind == plan.LengthShortestPath:
		return g.buildShortestPath(gr)
	case gr.Length.Kind == plan.LengthAllShortestPaths:
		return g.buildAllShortestPaths(gr)
	case gr.Length.Kind == plan.LengthRange:
		return g.buildRange(gr)
	default:
		return nil, errors.Wrapf(
			cerrors.InternalError.New("unrecognized variable-length kind"), "GraphRel %s", gr.Alias)
	}
}
