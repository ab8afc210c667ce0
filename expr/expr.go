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

// Package expr defines the scalar expression tree shared by the
// logical plan and the render plan (§4.2, §4.4.3, §4.4.6). Its shape
// mirrors sql/expression in the teacher: a small Expression interface
// with TransformUp for rewriting, and a family of concrete node types
// rather than a class hierarchy.
package expr

import "fmt"

// Expression is any scalar value-producing node: a column reference,
// a literal, an operator, a function call.
type Expression interface {
	// Resolved reports whether this expression (and all its children)
	// has been fully resolved against a schema - i.e. no
	// UnresolvedPropertyAccess or UnresolvedFunction remains.
	Resolved() bool
	Children() []Expression
	// WithChildren returns a copy of this expression with its children
	// replaced; len(children) must equal len(Children()).
	WithChildren(children ...Expression) (Expression, error)
	String() string
}

// TransformUp applies fn to every node of e, children first, exactly
// like the teacher's sql.Expression.TransformUp.
func TransformUp(e Expression, fn func(Expression) (Expression, error)) (Expression, error) {
	children := e.Children()
	if len(children) == 0 {
		return fn(e)
	}
	newChildren := make([]Expression, len(children))
	for i, c := range children {
		nc, err := TransformUp(c, fn)
		if err != nil {
			return nil, err
		}
		newChildren[i] = nc
	}
	newExpr, err := e.WithChildren(newChildren...)
	if err != nil {
		return nil, err
	}
	return fn(newExpr)
}

// Inspect walks e and every descendant, calling fn on each one; it
// stops early (without error) the first time fn returns false.
func Inspect(e Expression, fn func(Expression) bool) {
	if e == nil {
		return
	}
	if !fn(e) {
		return
	}
	for _, c := range e.Children() {
		Inspect(c, fn)
	}
}

type arityError struct {
	kind      string
	want, got int
}

func (e *arityError) Error() string {
	return fmt.Sprintf("%s: expected %d children, got %d", e.kind, e.want, e.got)
}
