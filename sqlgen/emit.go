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

package sqlgen

import (
	"fmt"
	"strings"

	"github.com/cygraph-io/cygraph/cerrors"
	"github.com/cygraph-io/cygraph/expr"
	"github.com/cygraph-io/cygraph/render"
)

// Emitter formats render.Plan trees into SQL text for one Dialect.
type Emitter struct {
	Dialect     Dialect
	MaxCTEDepth int
}

// NewEmitter returns an Emitter for dialect, appending a
// max_recursive_cte_evaluation_depth setting when maxCTEDepth > 0
// (§4.6 "Engine settings", default 100 is the caller's concern -
// compiler.Config supplies it).
func NewEmitter(dialect Dialect, maxCTEDepth int) *Emitter {
	return &Emitter{Dialect: dialect, MaxCTEDepth: maxCTEDepth}
}

// Emit formats pl as one complete SQL statement. This is pure text
// formatting - no schema or graph lookups happen here (§4.7).
func (e *Emitter) Emit(pl *render.Plan) (string, error) {
	var b strings.Builder
	if len(pl.CTEs) > 0 {
		b.WriteString(e.Dialect.RecursiveCTEKeyword())
		b.WriteString(" ")
		for i, c := range pl.CTEs {
			if i > 0 {
				b.WriteString(", ")
			}
			if err := e.emitCTE(&b, c); err != nil {
				return "", err
			}
		}
		b.WriteString(" ")
	}
	if err := e.emitQuery(&b, pl); err != nil {
		return "", err
	}
	b.WriteString(e.Dialect.SettingsClause(e.MaxCTEDepth))
	return b.String(), nil
}

func (e *Emitter) emitCTE(b *strings.Builder, c render.CTE) error {
	b.WriteString(e.Dialect.QuoteIdent(c.Name))
	b.WriteString(" AS (")
	if err := e.emitQuery(b, c.Plan); err != nil {
		return err
	}
	if c.Recursive && c.RecursivePlan != nil {
		b.WriteString(" UNION ALL ")
		if err := e.emitQuery(b, c.RecursivePlan); err != nil {
			return err
		}
	}
	b.WriteString(")")
	return nil
}

func (e *Emitter) emitQuery(b *strings.Builder, pl *render.Plan) error {
	if pl.SetOp != nil {
		return e.emitSetOp(b, pl.SetOp)
	}

	b.WriteString("SELECT ")
	if pl.Distinct {
		b.WriteString("DISTINCT ")
	}
	if len(pl.Select) == 0 {
		b.WriteString("*")
	}
	for i, p := range pl.Select {
		if i > 0 {
			b.WriteString(", ")
		}
		s, err := e.emitExpr(p.Expr, precLowest)
		if err != nil {
			return err
		}
		b.WriteString(s)
		if p.As != "" {
			b.WriteString(" AS ")
			b.WriteString(e.Dialect.QuoteIdent(p.As))
		}
	}

	b.WriteString(" FROM ")
	if err := e.emitTableRef(b, pl.From); err != nil {
		return err
	}
	whereParts := schemaFilterParts(nil, pl.From.SchemaFilter)

	for _, j := range pl.Joins {
		b.WriteString(" ")
		b.WriteString(j.Kind.String())
		b.WriteString(" ")
		if err := e.emitTableRef(b, j.Source); err != nil {
			return err
		}
		onSQL := ""
		if j.On != nil {
			s, err := e.emitExpr(j.On, precLowest)
			if err != nil {
				return err
			}
			onSQL = s
		}
		if j.Source.SchemaFilter != "" {
			if onSQL == "" {
				onSQL = "(" + j.Source.SchemaFilter + ")"
			} else {
				onSQL = onSQL + " AND (" + j.Source.SchemaFilter + ")"
			}
		}
		if onSQL != "" {
			b.WriteString(" ON ")
			b.WriteString(onSQL)
		}
	}

	if pl.Where != nil {
		s, err := e.emitExpr(pl.Where, precLowest)
		if err != nil {
			return err
		}
		whereParts = append(whereParts, s)
	}
	if len(whereParts) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(whereParts, " AND "))
	}

	if len(pl.GroupBy) > 0 {
		b.WriteString(" GROUP BY ")
		for i, g := range pl.GroupBy {
			if i > 0 {
				b.WriteString(", ")
			}
			s, err := e.emitExpr(g, precLowest)
			if err != nil {
				return err
			}
			b.WriteString(s)
		}
	}

	if len(pl.Order) > 0 {
		b.WriteString(" ORDER BY ")
		for i, o := range pl.Order {
			if i > 0 {
				b.WriteString(", ")
			}
			s, err := e.emitExpr(o.Expr, precLowest)
			if err != nil {
				return err
			}
			b.WriteString(s)
			if o.Descending {
				b.WriteString(" DESC")
			}
		}
	}

	if pl.Limit != nil {
		s, err := e.emitExpr(pl.Limit, precLowest)
		if err != nil {
			return err
		}
		b.WriteString(" LIMIT ")
		b.WriteString(s)
	}
	if pl.Skip != nil {
		s, err := e.emitExpr(pl.Skip, precLowest)
		if err != nil {
			return err
		}
		b.WriteString(" OFFSET ")
		b.WriteString(s)
	}
	return nil
}

func (e *Emitter) emitSetOp(b *strings.Builder, op *render.SetOp) error {
	kw := " UNION "
	if op.Kind == render.SetOpUnionAll {
		kw = " UNION ALL "
	}
	for i, branch := range op.Branches {
		if i > 0 {
			b.WriteString(kw)
		}
		b.WriteString("(")
		if err := e.emitQuery(b, branch); err != nil {
			return err
		}
		b.WriteString(")")
	}
	return nil
}

func (e *Emitter) emitTableRef(b *strings.Builder, t render.TableRef) error {
	if t.IsCTERef {
		b.WriteString(e.Dialect.QuoteIdent(t.Table))
	} else {
		if t.Database != "" {
			b.WriteString(e.Dialect.QuoteIdent(t.Database))
			b.WriteString(".")
		}
		b.WriteString(e.Dialect.QuoteIdent(t.Table))
		if len(t.ViewParameters) > 0 {
			b.WriteString("(")
			first := true
			for k, v := range t.ViewParameters {
				if !first {
					b.WriteString(", ")
				}
				first = false
				fmt.Fprintf(b, "%s=%v", k, v)
			}
			b.WriteString(")")
		}
	}
	if t.UseFinal {
		b.WriteString(e.Dialect.FinalKeyword())
	}
	if t.SQLAlias != "" && t.SQLAlias != t.Table {
		b.WriteString(" AS ")
		b.WriteString(e.Dialect.QuoteIdent(t.SQLAlias))
	}
	return nil
}

// schemaFilterParts folds a TableRef's raw catalog-declared filter
// (§4.5 YAML `filter`) into the running WHERE clause fragment list;
// it is appended verbatim, not re-parsed, matching
// render.TableRef.SchemaFilter's contract.
func schemaFilterParts(parts []string, filter string) []string {
	if filter == "" {
		return parts
	}
	return append(parts, "("+filter+")")
}

// errUnresolvedExpr reports an expression node that should never
// reach the emitter: either an unresolved placeholder left over from
// a skipped analyzer pass, or an internal-only node used outside its
// expected position.
func errUnresolvedExpr(e expr.Expression) error {
	return cerrors.InternalError.New(fmt.Sprintf("unresolved expression reached the SQL emitter: %T", e))
}
