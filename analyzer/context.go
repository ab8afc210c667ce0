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

import "github.com/cygraph-io/cygraph/ctegen"

// QueryKind tags the statement kind returned in CompiledQuery (§6.2).
// The core only ever produces Read or Call: write/DDL statements parse
// into plan.Unsupported and are rejected by validation (§4.4.8).
type QueryKind int

const (
	QueryRead QueryKind = iota
	QueryCall
	QueryWrite
	QueryDDL
)

func (k QueryKind) String() string {
	switch k {
	case QueryRead:
		return "read"
	case QueryCall:
		return "call"
	case QueryWrite:
		return "write"
	case QueryDDL:
		return "ddl"
	default:
		return "unknown"
	}
}

// ColumnBinding is one resolved (SQL alias, expression) pair that a
// Cypher (alias, property) pair maps onto (§4.4.2).
type ColumnBinding struct {
	SQLAlias string
	SQLExpr  string
}

// AliasResolutionContext answers the two questions §4.4.2 names: what
// SQL alias does a Cypher alias render as, and what (SQL alias,
// expression) does a (Cypher alias, property) pair resolve to. It is
// built once by alias_resolution from the ViewScan metadata schema
// inference already attached, and consulted read-only by every later
// pass - "a lookup index, not a plan rewrite" (§9).
type AliasResolutionContext struct {
	// sqlAlias maps a Cypher alias to the SQL alias it renders as.
	// Identity for every alias except a denormalized node, which maps
	// onto its incident edge's alias.
	sqlAlias map[string]string

	// properties maps (alias, property) -> resolved column binding.
	// Denormalized nodes are keyed additionally by role, since the
	// same label resolves to different columns in from- vs
	// to-position (§4.4.2).
	properties map[aliasProp]ColumnBinding

	// declared records every alias introduced by some GraphNode/GraphRel;
	// IsDeclared consults it when filter_tagging and
	// projection_resolution resolve an alias, to catch references to
	// never-declared aliases.
	declared map[string]bool

	// role records, for a denormalized node alias, which side ("from"
	// or "to") of its incident edge it occupies, so property
	// resolution can be role-aware without threading the role through
	// every call site (§4.4.2).
	role map[string]string
}

type aliasProp struct {
	alias, role, prop string
}

func newAliasResolutionContext() *AliasResolutionContext {
	return &AliasResolutionContext{
		sqlAlias:   map[string]string{},
		properties: map[aliasProp]ColumnBinding{},
		declared:   map[string]bool{},
		role:       map[string]string{},
	}
}

// BindAlias records that cypherAlias renders as sqlAlias.
func (c *AliasResolutionContext) BindAlias(cypherAlias, sqlAlias string) {
	c.sqlAlias[cypherAlias] = sqlAlias
	c.declared[cypherAlias] = true
}

// SQLAlias resolves a Cypher alias to its SQL alias; identity if never
// rebound.
func (c *AliasResolutionContext) SQLAlias(cypherAlias string) string {
	if sa, ok := c.sqlAlias[cypherAlias]; ok {
		return sa
	}
	return cypherAlias
}

// IsDeclared reports whether alias was introduced by some MATCH
// element (§4.4.8 "every alias referenced ... is declared by some
// MATCH").
func (c *AliasResolutionContext) IsDeclared(alias string) bool {
	return c.declared[alias]
}

// BindProperty records the resolved column for (alias, role, prop).
// role is "" for standard nodes and relationship aliases; "from"/"to"
// for a denormalized node, since resolution is role-dependent there.
func (c *AliasResolutionContext) BindProperty(alias, role, prop string, binding ColumnBinding) {
	c.properties[aliasProp{alias, role, prop}] = binding
}

// SetRole records which side of its incident edge a denormalized node
// alias occupies.
func (c *AliasResolutionContext) SetRole(alias, role string) {
	c.role[alias] = role
}

// RoleOf returns the role recorded for alias, or "" for a non-denormalized
// alias.
func (c *AliasResolutionContext) RoleOf(alias string) string {
	return c.role[alias]
}

// ResolveProperty looks up (alias, prop) using alias's recorded role
// (if any), falling back to the role-independent entry when no
// role-specific one was recorded.
func (c *AliasResolutionContext) ResolveProperty(alias, prop string) (ColumnBinding, bool) {
	if role, ok := c.role[alias]; ok {
		if b, ok := c.properties[aliasProp{alias, role, prop}]; ok {
			return b, true
		}
	}
	b, ok := c.properties[aliasProp{alias, "", prop}]
	return b, ok
}

// AllProperties returns every property name registered for alias,
// used by projection_resolution (§4.4.6) to expand `RETURN n` into
// its mapped property list.
func (c *AliasResolutionContext) AllProperties(alias string) []string {
	role := c.role[alias]
	var out []string
	for k := range c.properties {
		if k.alias == alias && (k.role == role || k.role == "") {
			out = append(out, k.prop)
		}
	}
	return out
}

// AnalysisContext is the mutable side-table threaded through the
// pipeline (§3.3): the alias-resolution index, per-alias projected
// columns, the CTE name generator, parameter bindings, and the
// query-kind flag. A fresh AnalysisContext is created per Analyzer,
// per query (§5 "Per-query analysis contexts are thread-local").
type AnalysisContext struct {
	Alias *AliasResolutionContext

	// ProjectedColumns records, per alias, the columns that alias's
	// scan must expose once projection_resolution (§4.4.6) has run.
	ProjectedColumns map[string][]string

	NameGen *ctegen.NameGen

	Parameters map[string]interface{}
	QueryKind  QueryKind
}

func newAnalysisContext() *AnalysisContext {
	return &AnalysisContext{
		Alias:            newAliasResolutionContext(),
		ProjectedColumns: map[string][]string{},
		NameGen:          ctegen.NewNameGen(),
		Parameters:       map[string]interface{}{},
		QueryKind:        QueryRead,
	}
}
