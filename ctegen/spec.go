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

// Package ctegen is the Variable-Length CTE Generator (§4.6): given a
// GraphRel whose length spec is not a single hop, it produces either a
// chain of plain joins (exact hop count) or the base/recursive select
// pair of a recursive CTE (range, shortestPath, allShortestPaths).
//
// ctegen has no knowledge of render.Plan - it returns its own neutral
// SelectSpec/JoinSpec shape built directly from plan.ViewScan and
// expr.Expression, and package render is the one that adapts an
// Output into its own vocabulary. This keeps the dependency one-way
// (render depends on ctegen, never the reverse).
package ctegen

import "github.com/cygraph-io/cygraph/expr"

// SelectItem is one SELECT list entry of a generated SelectSpec.
type SelectItem struct {
	Expr expr.Expression
	As   string
}

// FromSpec is the single table a SelectSpec starts from.
type FromSpec struct {
	Database     string
	Table        string
	SQLAlias     string
	UseFinal     bool
	SchemaFilter string

	// SelfRef marks this as a reference back to the CTE currently being
	// defined (the recursive term's FROM), rather than a catalog table;
	// Database/Table are unused when set.
	SelfRef bool
}

// JoinSpec is one join a SelectSpec (or an exact-hop chain) adds.
type JoinSpec struct {
	// Kind is "INNER" or "LEFT".
	Kind         string
	Database     string
	Table        string
	SQLAlias     string
	UseFinal     bool
	SchemaFilter string
	On           expr.Expression
}

// SelectSpec is one SELECT generated for a recursive CTE's base or
// recursive term.
type SelectSpec struct {
	From   FromSpec
	Joins  []JoinSpec
	Where  expr.Expression
	Select []SelectItem
}

// Output is the result of generating the SQL shape for one
// variable-length GraphRel.
type Output struct {
	// Kind is "chain" for an exact hop count (§4.6 "2-5x faster than
	// recursion"), or "cte" for a recursive CTE.
	Kind string

	// Chain holds the ordered edge+node joins to splice in place of
	// the single GraphRel join, populated only when Kind == "chain".
	Chain []JoinSpec

	// The following are populated only when Kind == "cte".
	CTEName      string
	Base         *SelectSpec
	Recursive    *SelectSpec
	StartIDCol   string // column name of the start_id projection
	EndIDCol     string // column name of the end_id projection
	HopCountCol  string
	PathCol      string // always "path" for the recursive strategies
	// OuterFilter is ANDed into whatever consumes the CTE (§4.6 "Outer
	// SELECT"): `hop_count BETWEEN min AND max` for range, a
	// ROW_NUMBER() = 1 filter for shortestPath, and hop_count equal to
	// the per-pair minimum for allShortestPaths.
	OuterFilter expr.Expression
}
