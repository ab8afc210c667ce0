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

// Package plan defines the logical plan (§3.2): a tree of node
// variants with owned children, built by the Logical Plan Builder
// (§4.3) and rewritten in place by each analyzer pass (§4.4). Shared
// subplans are introduced only through Cte name references — there is
// no mutable parent pointer, and no node outlives the query it was
// built for (§9).
package plan

import (
	"fmt"

	"github.com/cygraph-io/cygraph/expr"
)

// Pos is a source span, threaded through from the parser so analyzer
// errors can report a position (§4.4 "Failure semantics").
type Pos struct {
	Line, Col int
}

// Node is any logical-plan variant. Passes rewrite a plan by walking
// it with TransformUp and returning new nodes; Node values themselves
// are treated as immutable once built (§3.2 "Ownership").
type Node interface {
	Children() []Node
	WithChildren(children ...Node) (Node, error)
	// Resolved reports whether this node and its whole subtree is free
	// of placeholders (unresolved labels, anonymous scans, unresolved
	// expressions).
	Resolved() bool
	String() string
}

// ExpressionHolder is implemented by nodes that embed scalar
// expressions (Filter, Project, Aggregate, GraphRel's constraint),
// so passes can rewrite expressions without a type switch over every
// node variant - mirrors sql.Expressioner in the teacher.
type ExpressionHolder interface {
	Node
	Expressions() []expr.Expression
	WithExpressions(e ...expr.Expression) (Node, error)
}

// Empty is the zero-input leaf node.
type Empty struct{}

func (Empty) Children() []Node { return nil }
func (Empty) WithChildren(c ...Node) (Node, error) {
	if len(c) != 0 {
		return nil, arityErr("Empty", 0, len(c))
	}
	return Empty{}, nil
}
func (Empty) Resolved() bool { return true }
func (Empty) String() string { return "Empty" }

func arityErr(kind string, want, got int) error {
	return &nodeArityError{kind, want, got}
}

type nodeArityError struct {
	kind      string
	want, got int
}

func (e *nodeArityError) Error() string {
	return fmt.Sprintf("%s: expected %d children, got %d", e.kind, e.want, e.got)
}
