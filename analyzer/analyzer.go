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

// Package analyzer runs the ordered rule pipeline that turns an
// unresolved logical plan into a fully resolved one (§4.4): schema
// inference, alias resolution, filter tagging and pushdown, join
// inference, projection resolution, scan dedup, and final validation.
// Rules run strictly in order and the pipeline halts at the first
// error, mirroring the teacher's sql/analyzer.
package analyzer

import (
	"github.com/sirupsen/logrus"

	"github.com/cygraph-io/cygraph/catalog"
	"github.com/cygraph-io/cygraph/plan"
)

// Rule is one named analysis pass. Name is used only for logging.
type Rule struct {
	Name string
	Fn   func(*Analyzer, plan.Node) (plan.Node, error)
}

// DefaultRules is the fixed, ordered pipeline every query runs
// through (§4.4's eight passes, in the order that section lists).
var DefaultRules = []Rule{
	{"schema_inference", schemaInference},
	{"alias_resolution", aliasResolution},
	{"filter_tagging", filterTagging},
	{"filter_pushdown", filterPushdown},
	{"join_inference", joinInference},
	{"projection_resolution", projectionResolution},
	{"dedup_scan", dedupScan},
	{"validation", validation},
}

// Analyzer runs DefaultRules against one logical plan for one schema
// catalog resolution. A fresh Analyzer is created per query; it holds
// no state that would make two queries interfere with each other.
type Analyzer struct {
	Catalog *catalog.GraphSchema
	Log     func(format string, args ...interface{})

	// AliasCtx is populated by alias_resolution (§4.4.2) and consulted
	// by every later pass; it is nil until that rule has run.
	AliasCtx *AliasResolutionContext

	// Ctx is the full mutable side-table (§3.3), including AliasCtx
	// (kept as a direct field too, for the common case of reading just
	// the alias index without going through Ctx.Alias).
	Ctx *AnalysisContext

	// DefaultUnboundedHops is the configured cap for an unbounded
	// variable-length pattern, copied from the compiler's Config; no
	// analyzer pass reads it. The builder is what actually applies the
	// default (§4.6).
	DefaultUnboundedHops int

	Debug bool
	logger *logrus.Logger
}

// New returns an Analyzer bound to one resolved GraphSchema.
func New(schema *catalog.GraphSchema, debug bool) *Analyzer {
	logger := logrus.New()
	if !debug {
		logger.SetLevel(logrus.WarnLevel)
	}
	ctx := newAnalysisContext()
	a := &Analyzer{Catalog: schema, Debug: debug, logger: logger, Ctx: ctx}
	a.Log = func(format string, args ...interface{}) {
		a.logger.Debugf(format, args...)
	}
	return a
}

// Analyze runs every rule in DefaultRules over n, in order, stopping
// at the first error (§4.4 "Failure semantics").
func (a *Analyzer) Analyze(n plan.Node) (plan.Node, error) {
	var err error
	for _, rule := range DefaultRules {
		a.Log("running rule %s", rule.Name)
		n, err = rule.Fn(a, n)
		if err != nil {
			return nil, err
		}
	}
	return n, nil
}
