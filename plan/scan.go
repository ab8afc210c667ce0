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

import (
	"fmt"

	"github.com/cygraph-io/cygraph/catalog"
	"github.com/cygraph-io/cygraph/expr"
)

// ViewScan is a single table access annotated with every piece of
// schema metadata later passes need (§3.2, GLOSSARY "ViewScan"):
// mapping, denormalization flags, type filter, view parameters, and
// any schema-level filter predicate.
type ViewScan struct {
	// SQLAlias is the alias this scan will render under; assigned by
	// the builder from the Cypher alias and never changed afterward
	// (alias hygiene, §8).
	SQLAlias string

	Database string
	Table    string

	// NodeSchema is set when this scan backs a GraphNode; RelSchema is
	// set when it backs a GraphRel edge. Exactly one is non-nil once
	// schema inference (§4.4.1) has run.
	NodeSchema *catalog.NodeSchema
	RelSchema  catalog.RelationshipSchema

	// Unresolved is true for a placeholder scan awaiting label
	// inference from an incident relationship (§4.3 "Edge cases",
	// §9 "UnresolvedAnonymousNode").
	Unresolved bool
	// Label is the Cypher label this scan was declared with, which
	// may be empty for an anonymous node pending inference.
	Label string

	// TypeColumn and TypeValues are set for a polymorphic edge: the
	// discriminator column and the set of values this scan is
	// restricted to (§4.4.5 "Polymorphic edges").
	TypeColumn string
	TypeValues []string

	// LabelFilters holds, for a polymorphic edge with a closed-world
	// label column on one or both endpoints, the column+values
	// predicate to add (§4.4.5).
	LabelFilters []LabelFilter

	ViewParameters map[string]interface{}
	UseFinal       bool

	// SchemaFilter is the raw predicate from the catalog entry (YAML
	// `filter`, §4.5); ViewFilter is the filter pushed down into this
	// scan by the analyzer (§4.4.4), kept distinct so render can
	// combine them deterministically regardless of analysis order.
	SchemaFilter string
	ViewFilter   expr.Expression

	Pos Pos
}

// LabelFilter restricts a polymorphic endpoint to a closed-world label
// set (§3.1 "closed-world label set").
type LabelFilter struct {
	Column string
	Values []string
}

func (v *ViewScan) Children() []Node { return nil }
func (v *ViewScan) WithChildren(c ...Node) (Node, error) {
	if len(c) != 0 {
		return nil, arityErr("ViewScan", 0, len(c))
	}
	return v, nil
}
func (v *ViewScan) Resolved() bool {
	return !v.Unresolved && (v.NodeSchema != nil || v.RelSchema != nil)
}
func (v *ViewScan) String() string {
	return fmt.Sprintf("ViewScan(%s AS %s)", v.Table, v.SQLAlias)
}

func (v *ViewScan) Expressions() []expr.Expression {
	if v.ViewFilter == nil {
		return nil
	}
	return []expr.Expression{v.ViewFilter}
}
func (v *ViewScan) WithExpressions(e ...expr.Expression) (Node, error) {
	nv := *v
	if len(e) == 1 {
		nv.ViewFilter = e[0]
	} else if len(e) != 0 {
		return nil, arityErr("ViewScan.Expressions", 1, len(e))
	} else {
		nv.ViewFilter = nil
	}
	return &nv, nil
}
