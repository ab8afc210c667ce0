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

// Package cerrors defines the tagged error taxonomy used across the
// whole compile pipeline. Every fallible pass returns one of these
// kinds rather than an ad-hoc error, so callers can branch on
// `.Is(err)` the same way the rest of the ecosystem does with
// gopkg.in/src-d/go-errors.v1.
package cerrors

import (
	goerrors "gopkg.in/src-d/go-errors.v1"
)

// Parser failures. Always fatal; never raised after the AST stage.
var (
	// SyntaxError is returned when the token stream does not match the
	// Cypher grammar. Position, if known, is attached by the caller.
	SyntaxError = goerrors.NewKind("syntax error at %s: expected %s, found %q")
)

// Schema errors: the catalog or the query references something the
// catalog does not contain, or the catalog itself is malformed.
var (
	UnknownLabel            = goerrors.NewKind("unknown node label %q in schema %q")
	UnknownRelationshipType = goerrors.NewKind("unknown relationship type %q from %q to %q in schema %q")
	UnknownProperty         = goerrors.NewKind("unknown property %q on alias %q")
	SchemaViolation         = goerrors.NewKind("schema violation: %s")
	AmbiguousRelationship   = goerrors.NewKind("ambiguous relationship type %q between %q and %q: %d candidate schemas")
)

// Semantic errors: the query is syntactically valid Cypher but
// violates a binding, scoping, or typing rule.
var (
	UnknownAlias          = goerrors.NewKind("unknown alias %q")
	UnboundVariable       = goerrors.NewKind("variable %q is not bound by any MATCH")
	ScopeBarrierViolation = goerrors.NewKind("alias %q is not visible past the preceding WITH")
	TypeMismatch          = goerrors.NewKind("type mismatch: %s")
)

// UnsupportedFeature is returned for input that parses but is
// recognized-and-rejected: write clauses, APOC/GDS beyond what §6.3
// lists, variable-length over denormalized/polymorphic schemas, and
// so on. Never silently produces incorrect SQL in its place.
var UnsupportedFeature = goerrors.NewKind("unsupported feature: %s")

// InternalError marks an invariant violation inside a pass. Seeing
// one of these means a bug in the compiler, not a bad query.
var InternalError = goerrors.NewKind("internal error: %s")
