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
	"github.com/cygraph-io/cygraph/plan"
)

// validation is pass 8, the final structural check (§4.4.8). It
// halts the pipeline with a tagged error on the first violation found
// rather than collecting every problem, matching §4.4 "pipeline
// halts on first error".
func validation(a *Analyzer, n plan.Node) (plan.Node, error) {
	a.Log("validation: final structural checks")

	var firstErr error
	plan.Inspect(n, func(node plan.Node) bool {
		if firstErr != nil {
			return false
		}
		switch v := node.(type) {
		case *plan.Unsupported:
			firstErr = cerrors.UnsupportedFeature.New(v.Keyword)
		case *plan.ViewScan:
			if v.Unresolved {
				firstErr = cerrors.SchemaViolation.New(
					"node alias " + v.SQLAlias + " could not be assigned a label by schema inference")
			}
		case *plan.GraphRel:
			if err := validateLength(v); err != nil {
				firstErr = err
			}
		}
		return firstErr == nil
	})
	if firstErr != nil {
		return nil, firstErr
	}

	if !n.Resolved() {
		return nil, cerrors.InternalError.New("plan left unresolved after the analyzer pipeline")
	}

	return n, nil
}

func validateLength(gr *plan.GraphRel) error {
	l := gr.Length
	switch l.Kind {
	case plan.LengthExact:
		if l.Exact < 0 {
			return cerrors.SchemaViolation.New("variable-length pattern has a negative hop count")
		}
	case plan.LengthRange, plan.LengthShortestPath, plan.LengthAllShortestPaths:
		if l.Min < 0 || l.Max < 0 {
			return cerrors.SchemaViolation.New("variable-length pattern has a negative bound")
		}
		if l.Min > l.Max {
			return cerrors.SchemaViolation.New("variable-length pattern has min > max")
		}
	}
	return nil
}
