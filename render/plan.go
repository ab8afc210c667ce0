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

// Package render flattens an analyzed logical plan (package plan) into
// the relational form described in §3.4: one FROM, an ordered JOIN
// list, WHERE, GROUP BY, SELECT, ORDER/LIMIT/SKIP, and a named CTE
// list. render.Plan carries no graph vocabulary in its field types -
// this package is the sole translation boundary between the graph
// plan and the flat relational shape the SQL Emitter formats.
package render

import "github.com/cygraph-io/cygraph/expr"

// TableRef is a single physical table reference: a base table, a
// parameterized view, or a reference to a named CTE.
type TableRef struct {
	Database string
	Table    string
	SQLAlias string

	// IsCTERef marks Table as the name of an entry in the enclosing
	// Plan's CTEs list rather than a catalog table.
	IsCTERef bool

	ViewParameters map[string]interface{}
	UseFinal       bool

	// SchemaFilter is the raw catalog-declared filter predicate text
	// (YAML `filter`, §4.5); it is appended verbatim by the emitter.
	SchemaFilter string
}

// JoinKind is the join operator a Join renders with.
type JoinKind int

const (
	InnerJoin JoinKind = iota
	LeftJoin
)

func (k JoinKind) String() string {
	if k == LeftJoin {
		return "LEFT JOIN"
	}
	return "INNER JOIN"
}

// Join is one JOIN clause against Source, using On as the ON
// predicate.
type Join struct {
	Kind   JoinKind
	On     expr.Expression
	Source TableRef
}

// Projection is one SELECT list entry.
type Projection struct {
	Expr expr.Expression
	As   string
}

// SortField is one ORDER BY term.
type SortField struct {
	Expr       expr.Expression
	Descending bool
}

// CTE is one WITH entry. Recursive is true for the output of the
// Variable-Length CTE Generator (§4.6); Plan is the base-case SELECT
// and RecursivePlan, when non-nil, is UNION ALL'd onto it to form the
// recursive term.
type CTE struct {
	Name          string
	Recursive     bool
	Columns       []string
	Plan          *Plan
	RecursivePlan *Plan
}

// SetOpKind distinguishes a deduplicating UNION from UNION ALL.
type SetOpKind int

const (
	SetOpUnion SetOpKind = iota
	SetOpUnionAll
)

// SetOp combines sibling Plans with a set operator, used for Cypher
// UNION/UNION ALL and for multi-type relationship alternation
// (`:R1|R2`) once expanded into per-type branches (§4.4.5, §8).
type SetOp struct {
	Kind     SetOpKind
	Branches []*Plan
}

// Plan is the flattened relational form of §3.4. When SetOp is
// non-nil the rest of the struct (besides CTEs) is unused and the
// emitter renders the branches combined by the set operator instead.
type Plan struct {
	CTEs []CTE

	SetOp *SetOp

	From    TableRef
	Joins   []Join
	Where   expr.Expression
	GroupBy []expr.Expression
	Select  []Projection

	Distinct bool
	Order    []SortField
	// Limit/Skip are expressions rather than bare ints so a
	// parameterized `LIMIT $n` renders as-is; the emitter is
	// responsible for formatting whatever expression ends up here.
	Limit expr.Expression
	Skip  expr.Expression
}
