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

// Package compiler is the top-level contract (§11): it wires catalog
// resolution, the parser, the logical plan builder, the analyzer, the
// render planner and the SQL emitter into one Compile call, mirroring
// the teacher's *Engine.AnalyzeQuery/QueryWithBindings pipeline
// (engine.go) but stopping at SQL text rather than executing it.
package compiler

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/cygraph-io/cygraph/analyzer"
	"github.com/cygraph-io/cygraph/catalog"
	"github.com/cygraph-io/cygraph/cerrors"
	"github.com/cygraph-io/cygraph/ctegen"
	"github.com/cygraph-io/cygraph/cypher"
	"github.com/cygraph-io/cygraph/expr"
	"github.com/cygraph-io/cygraph/plan"
	"github.com/cygraph-io/cygraph/render"
	"github.com/cygraph-io/cygraph/sqlgen"
)

// QueryKind classifies a compiled statement for the caller (§6.2). Only
// "read" and "call" are ever produced today: data mutation is an
// explicit Non-goal (spec.md §1), so "write" and "ddl" exist solely to
// round out the contract for a future CREATE/SET/DELETE pass.
type QueryKind string

const (
	QueryKindRead  QueryKind = "read"
	QueryKindWrite QueryKind = "write"
	QueryKindCall  QueryKind = "call"
	QueryKindDDL   QueryKind = "ddl"
)

// ProjectionColumn names one output column and a best-effort SQL type,
// in RETURN/WITH order.
type ProjectionColumn struct {
	OutputName string
	Type       string
}

// CompileRequest is one query to compile (§6.1).
type CompileRequest struct {
	QueryText        string
	ActiveSchemaHint string
	Parameters       map[string]any
	ViewParameters   map[string]any
	SQLOnly          bool
}

// CompiledQuery is the result of a successful Compile (§6.2). Every
// query, a CALL included, compiles to exactly one statement; a CALL
// answered with several values is a single SELECT ... UNION ALL
// statement (see literalStringColumn).
type CompiledQuery struct {
	SQLStatements     []string
	ProjectionSchema  []ProjectionColumn
	ParameterBindings map[string]any
	QueryKind         QueryKind
}

// Config configures one Compiler (§1.3).
type Config struct {
	// MaxCTEDepth bounds recursive CTE evaluation (§4.6 "Engine
	// settings"); 0 disables the SETTINGS clause entirely.
	MaxCTEDepth int
	// DefaultUnboundedHops is the hop ceiling substituted for an
	// unbounded variable-length pattern (`*`, `*n..`) by the plan
	// builder; the analyzer's validation pass does not check against it.
	DefaultUnboundedHops int
	// Dialect selects the target columnar engine's SQL surface.
	// Defaults to sqlgen.ColumnarDialect{} when nil.
	Dialect sqlgen.Dialect
}

// Compiler is bound to one schema catalog. It holds no per-query
// state between calls, so one *Compiler is safe to share across
// goroutines (§12), mirroring the teacher's *Engine.
type Compiler struct {
	Catalog *catalog.SchemaCatalog
	Config  Config

	logger *logrus.Logger
}

// defaultUnboundedHops is the hop ceiling substituted for an unbounded
// variable-length pattern when a caller leaves Config.DefaultUnboundedHops
// at its zero value, matching cygraphc's own --default-unbounded-hops
// default.
const defaultUnboundedHops = 10

// New returns a Compiler bound to catalog, applying cfg defaults.
func New(cat *catalog.SchemaCatalog, cfg Config) *Compiler {
	if cfg.Dialect == nil {
		cfg.Dialect = sqlgen.ColumnarDialect{}
	}
	if cfg.DefaultUnboundedHops == 0 {
		cfg.DefaultUnboundedHops = defaultUnboundedHops
	}
	return &Compiler{Catalog: cat, Config: cfg, logger: logrus.New()}
}

// Compile runs the full pipeline for req: catalog resolution, parse,
// logical plan build, analysis, render, and SQL emission (§11). On
// any failure it returns the §7 tagged error union and no partial SQL.
//
// ctx is honored only as an early-exit check just before and just
// after the analyzer runs (§5 "the compiler never blocks") - Compile
// never polls ctx inside an analyzer pass, matching the teacher's
// non-blocking planning path.
func (c *Compiler) Compile(ctx context.Context, req CompileRequest) (*CompiledQuery, error) {
	log := c.logger.WithField("schema_hint", req.ActiveSchemaHint)

	stmt, err := cypher.Parse(req.QueryText)
	if err != nil {
		log.WithError(err).Warn("compile failed: parse error")
		return nil, errors.Wrap(err, "cypher.Parse")
	}

	schema, err := c.Catalog.Resolve(stmt.Use, req.ActiveSchemaHint)
	if err != nil {
		log.WithError(err).Warn("compile failed: schema resolution")
		return nil, errors.Wrap(err, "catalog.Resolve")
	}
	log = log.WithField("schema", schema.Name)

	builder := plan.NewBuilder(c.Config.DefaultUnboundedHops)
	logical, err := builder.Build(stmt)
	if err != nil {
		log.WithError(err).Warn("compile failed: plan build error")
		return nil, errors.Wrap(err, "plan.Builder.Build")
	}

	if proc, ok := logical.(*plan.Procedure); ok {
		out, err := c.compileProcedure(schema, proc)
		if err != nil {
			log.WithError(err).Warn("compile failed: procedure lookup")
			return nil, err
		}
		log.Info("compile succeeded")
		return out, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, "compiler")
	}

	az := analyzer.New(schema, false)
	az.DefaultUnboundedHops = c.Config.DefaultUnboundedHops
	analyzed, err := az.Analyze(logical)
	if err != nil {
		log.WithError(err).Warn("compile failed: analysis error")
		return nil, errors.Wrap(err, "analyzer.Analyze")
	}

	if err := ctx.Err(); err != nil {
		return nil, errors.Wrap(err, "compiler")
	}

	names := ctegen.NewNameGen()
	planner := render.NewPlanner(names)
	rendered, err := planner.Render(analyzed)
	if err != nil {
		log.WithError(err).Warn("compile failed: render error")
		return nil, errors.Wrap(err, "render.Planner.Render")
	}

	emitter := sqlgen.NewEmitter(c.Config.Dialect, c.Config.MaxCTEDepth)
	sql, err := emitter.Emit(rendered)
	if err != nil {
		log.WithError(err).Warn("compile failed: emit error")
		return nil, errors.Wrap(err, "sqlgen.Emitter.Emit")
	}

	out := &CompiledQuery{
		SQLStatements:     []string{sql},
		ProjectionSchema:  projectionSchema(rendered),
		ParameterBindings: req.Parameters,
		QueryKind:         QueryKindRead,
	}
	log.Info("compile succeeded")
	return out, nil
}

// projectionSchema derives one ProjectionColumn per top-level SELECT
// item, in order (§6.2 "ordered list of (output_name, inferred_type)").
// Type inference is best-effort: the render plan carries no type
// system, so only count/length (int), collect/nodes/relationships
// (list) and literals (by their Go value) get a type; everything else,
// plain column references included, is "any".
func projectionSchema(pl *render.Plan) []ProjectionColumn {
	if pl.SetOp != nil && len(pl.SetOp.Branches) > 0 {
		return projectionSchema(pl.SetOp.Branches[0])
	}
	out := make([]ProjectionColumn, 0, len(pl.Select))
	for i, p := range pl.Select {
		name := p.As
		if name == "" {
			name = fmt.Sprintf("col%d", i+1)
		}
		out = append(out, ProjectionColumn{OutputName: name, Type: inferType(p.Expr)})
	}
	return out
}

func inferType(e expr.Expression) string {
	switch v := e.(type) {
	case *expr.FunctionCall:
		switch strings.ToLower(v.Name) {
		case "count":
			return "int"
		case "collect", "nodes", "relationships":
			return "list"
		case "length":
			return "int"
		}
		return "any"
	case *expr.Literal:
		switch v.Value.(type) {
		case int, int64:
			return "int"
		case float64:
			return "float"
		case bool:
			return "bool"
		case string:
			return "string"
		}
		return "any"
	default:
		return "any"
	}
}

// compileProcedure answers a schema-introspection CALL directly from
// the catalog (§6.3 "CALL db.labels / db.relationshipTypes /
// db.propertyKeys / dbms.components") as a literal SELECT, never
// invoking render or sqlgen - there is no graph pattern to plan.
func (c *Compiler) compileProcedure(schema *catalog.GraphSchema, proc *plan.Procedure) (*CompiledQuery, error) {
	dialect := c.Config.Dialect
	switch proc.Name {
	case "db.labels":
		return literalStringColumn(dialect, "label", schema.NodeLabels()), nil
	case "db.relationshipTypes":
		return literalStringColumn(dialect, "relationshipType", schema.RelationshipTypes()), nil
	case "db.propertyKeys":
		return literalStringColumn(dialect, "propertyKey", propertyKeys(schema)), nil
	case "dbms.components":
		return &CompiledQuery{
			SQLStatements:    []string{fmt.Sprintf("SELECT 'cygraph' AS %s", dialect.QuoteIdent("name"))},
			ProjectionSchema: []ProjectionColumn{{OutputName: "name", Type: "string"}},
			QueryKind:        QueryKindCall,
		}, nil
	default:
		return nil, cerrors.UnsupportedFeature.New("CALL " + proc.Name)
	}
}

func propertyKeys(schema *catalog.GraphSchema) []string {
	seen := map[string]bool{}
	for _, label := range schema.NodeLabels() {
		ns, err := schema.GetNodeSchema(label)
		if err != nil {
			continue
		}
		for prop := range ns.Properties {
			seen[prop] = true
		}
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func literalStringColumn(dialect sqlgen.Dialect, column string, values []string) *CompiledQuery {
	sort.Strings(values)
	var sql string
	if len(values) == 0 {
		sql = fmt.Sprintf("SELECT %s AS %s WHERE false", dialect.QuoteIdent("value"), dialect.QuoteIdent(column))
	} else {
		parts := make([]string, len(values))
		for i, v := range values {
			parts[i] = fmt.Sprintf("SELECT '%s' AS %s", strings.ReplaceAll(v, "'", "''"), dialect.QuoteIdent(column))
		}
		sql = strings.Join(parts, " UNION ALL ")
	}
	return &CompiledQuery{
		SQLStatements:    []string{sql},
		ProjectionSchema: []ProjectionColumn{{OutputName: column, Type: "string"}},
		QueryKind:        QueryKindCall,
	}
}
