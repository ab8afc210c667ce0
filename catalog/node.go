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

package catalog

// PropertyMapping maps a Cypher property name either onto a bare
// column name or onto an arbitrary SQL expression (e.g. a computed
// column or a cast).
type PropertyMapping struct {
	Column     string
	Expression string // non-empty overrides Column
}

// SQL returns the column reference or expression to use for this
// mapping, unqualified.
func (m PropertyMapping) SQL() string {
	if m.Expression != "" {
		return m.Expression
	}
	return m.Column
}

// ViewParameter describes one parameter a parameterized view/table
// function expects, e.g. ClickHouse `table({param:Type})` syntax.
type ViewParameter struct {
	Name string
	Type string
}

// NodeSchema is the catalog entry for one node label (§3.1).
type NodeSchema struct {
	Label    string
	Database string
	Table    string
	IDColumn string

	// Properties maps Cypher property name -> column/expression.
	Properties map[string]PropertyMapping

	// LabelDiscriminatorColumn/Value are set for nodes sharing a
	// physical table with other labels (a "shared-table node").
	LabelDiscriminatorColumn string
	LabelDiscriminatorValue  string

	// FromNodeProperties/ToNodeProperties are set only for
	// denormalized nodes: the node has no table of its own, and its
	// properties live on the adjacent edge table, with a distinct
	// mapping depending on whether the node occupies the "from" or
	// "to" position of that edge.
	FromNodeProperties map[string]PropertyMapping
	ToNodeProperties   map[string]PropertyMapping

	ViewParameters []ViewParameter
	UseFinal       bool
	Filter         string // raw SQL predicate, ANDed into every scan

	AutoDiscoverProperties bool
	ExcludedProperties     []string
}

// IsDenormalized reports whether this node has no table of its own
// and must be resolved through an incident edge (§4.4.2).
func (n *NodeSchema) IsDenormalized() bool {
	return n.Table == "" && (len(n.FromNodeProperties) > 0 || len(n.ToNodeProperties) > 0)
}

// PropertyFor resolves a property name for a node occupying the given
// role ("from" or "to") when the node is denormalized; for standard
// nodes the role is ignored.
func (n *NodeSchema) PropertyFor(role string, prop string) (PropertyMapping, bool) {
	if n.IsDenormalized() {
		var m map[string]PropertyMapping
		if role == "to" {
			m = n.ToNodeProperties
		} else {
			m = n.FromNodeProperties
		}
		pm, ok := m[prop]
		return pm, ok
	}
	pm, ok := n.Properties[prop]
	return pm, ok
}
