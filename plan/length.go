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

import "fmt"

// LengthKind tags which variant of LengthSpec is in play (§9
// "length specifications are a sum").
type LengthKind int

const (
	// LengthExactOne is the default for a plain `-[r]->` edge with no
	// `*` at all. The Render Planner turns it, like an exact `*1` or a
	// `*1..1` range (see IsSingleHop), into a single JOIN instead of
	// handing off to the CTE generator.
	LengthExactOne LengthKind = iota
	LengthExact
	LengthRange
	LengthShortestPath
	LengthAllShortestPaths
)

// LengthSpec describes how many hops a relationship pattern may span.
// It is a tagged sum (Exact n | Range {min, max} | ShortestPath {bound}
// | AllShortestPaths {bound}), matching §9's variant list exactly.
type LengthSpec struct {
	Kind LengthKind

	// Exact is populated when Kind == LengthExact.
	Exact int

	// Min/Max are populated when Kind == LengthRange, or as the
	// effective bounds for ShortestPath/AllShortestPaths.
	Min int
	Max int
	// MaxExplicit distinguishes `*1..3` from `*1..` / `*`, where Max
	// was filled in from default_unbounded_hops rather than written by
	// the user (§4.6 "Edge cases and tie-breaks").
	MaxExplicit bool
}

// IsSingleHop reports whether this spec compiles to a plain JOIN
// rather than a CTE (§8 "Variable-length `*1..1` compiles identically
// to a single-hop JOIN").
func (l LengthSpec) IsSingleHop() bool {
	return l.Kind == LengthExactOne || (l.Kind == LengthExact && l.Exact == 1) ||
		(l.Kind == LengthRange && l.Min == 1 && l.Max == 1)
}

// IsExactN reports whether this spec is a fixed, known-at-compile-time
// hop count (§4.6 "Exact hop count n").
func (l LengthSpec) IsExactN() bool {
	if l.Kind == LengthExactOne {
		return true
	}
	if l.Kind == LengthExact {
		return true
	}
	return l.Kind == LengthRange && l.Min == l.Max
}

// HopCount returns the fixed hop count for an exact-N spec. Callers
// must check IsExactN first.
func (l LengthSpec) HopCount() int {
	switch l.Kind {
	case LengthExactOne:
		return 1
	case LengthExact:
		return l.Exact
	case LengthRange:
		return l.Min
	}
	return 0
}

func (l LengthSpec) String() string {
	switch l.Kind {
	case LengthExactOne:
		return "*1"
	case LengthExact:
		return fmt.Sprintf("*%d", l.Exact)
	case LengthRange:
		return fmt.Sprintf("*%d..%d", l.Min, l.Max)
	case LengthShortestPath:
		return fmt.Sprintf("shortestPath(*%d..%d)", l.Min, l.Max)
	case LengthAllShortestPaths:
		return fmt.Sprintf("allShortestPaths(*%d..%d)", l.Min, l.Max)
	default:
		return "*?"
	}
}
