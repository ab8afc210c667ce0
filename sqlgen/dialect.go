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

// Package sqlgen is the SQL Emitter (§4.7): a pure formatter from
// render.Plan to SQL text. It makes no schema or graph decisions -
// everything it prints was already decided upstream by the analyzer
// and the render/ctegen planners.
package sqlgen

import (
	"fmt"
	"strings"
)

// Dialect isolates the handful of things that differ across target
// columnar engines: identifier quoting, the recursive-CTE
// introducer, and how a depth/setting is appended to a query.
type Dialect interface {
	QuoteIdent(name string) string
	RecursiveCTEKeyword() string
	SettingsClause(maxCTEDepth int) string
	FinalKeyword() string
}

// ColumnarDialect targets a ClickHouse-like columnar OLAP engine
// (§1 "columnar OLAP engine"): backtick-quoted identifiers, a bare
// `WITH` (ClickHouse does not require the `RECURSIVE` keyword),
// `FINAL` for scans marked UseFinal, and a `SETTINGS` suffix carrying
// the recursion-depth guard (§4.6 "Engine settings").
type ColumnarDialect struct{}

func (ColumnarDialect) QuoteIdent(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

func (ColumnarDialect) RecursiveCTEKeyword() string { return "WITH" }

func (ColumnarDialect) SettingsClause(maxCTEDepth int) string {
	if maxCTEDepth <= 0 {
		return ""
	}
	return fmt.Sprintf(" SETTINGS max_recursive_cte_evaluation_depth = %d", maxCTEDepth)
}

func (ColumnarDialect) FinalKeyword() string { return " FINAL" }
