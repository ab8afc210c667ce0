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
	"strconv"
	"strings"

	"github.com/cygraph-io/cygraph/expr"
)

// Precedence levels, lowest to highest, used to decide when a child
// expression needs parenthesizing (§4.7 "expression precedence-aware
// parenthesization").
const (
	precLowest = iota
	precOr
	precAnd
	precNot
	precComparison
	precAdditive
	precMultiplicative
	precUnary
	precAtom
)

var binOpPrec = map[string]int{
	"OR": precOr, "AND": precAnd,
	"=": precComparison, "<>": precComparison, "<": precComparison, "<=": precComparison,
	">": precComparison, ">=": precComparison, "IN": precComparison,
	"STARTS WITH": precComparison, "CONTAINS": precComparison, "ENDS WITH": precComparison,
	"BETWEEN": precComparison,
	"+":       precAdditive, "-": precAdditive,
	"*": precMultiplicative, "/": precMultiplicative, "%": precMultiplicative,
}

func (e *Emitter) emitExpr(ex expr.Expression, parentPrec int) (string, error) {
	switch v := ex.(type) {
	case *expr.ColumnRef:
		if v.SQLAlias == "" {
			return v.SQLExpr, nil
		}
		return e.Dialect.QuoteIdent(v.SQLAlias) + "." + v.SQLExpr, nil

	case *expr.Literal:
		return formatLiteral(v), nil

	case *expr.Parameter:
		return "{" + v.Name + "}", nil

	case *expr.BinaryOp:
		return e.emitBinaryOp(v, parentPrec)

	case *expr.UnaryOp:
		s, err := e.emitExpr(v.Child, precUnary)
		if err != nil {
			return "", err
		}
		out := fmt.Sprintf("%s %s", v.Op, s)
		return parenIf(out, precUnary < parentPrec), nil

	case *expr.InList:
		target, err := e.emitExpr(v.Target, precComparison)
		if err != nil {
			return "", err
		}
		items, err := e.emitExprList(v.List)
		if err != nil {
			return "", err
		}
		out := fmt.Sprintf("%s IN (%s)", target, strings.Join(items, ", "))
		return parenIf(out, precComparison < parentPrec), nil

	case *expr.Case:
		return e.emitCase(v)

	case *expr.ListLiteral:
		items, err := e.emitExprList(v.Items)
		if err != nil {
			return "", err
		}
		return "[" + strings.Join(items, ", ") + "]", nil

	case *expr.FunctionCall:
		args, err := e.emitExprList(v.Args)
		if err != nil {
			return "", err
		}
		distinct := ""
		if v.Distinct {
			distinct = "DISTINCT "
		}
		return fmt.Sprintf("%s(%s%s)", v.Name, distinct, strings.Join(args, ", ")), nil

	case *expr.WindowCall:
		return e.emitWindowCall(v)

	case expr.Star:
		return "*", nil

	default:
		return "", errUnresolvedExpr(ex)
	}
}

// emitBinaryOp special-cases the BETWEEN convention ctegen encodes as
// BinaryOp{Op:"BETWEEN", Right: &ListLiteral{Items:[min,max]}} (§4.6,
// range.go) and otherwise prints an infix operator.
func (e *Emitter) emitBinaryOp(b *expr.BinaryOp, parentPrec int) (string, error) {
	prec, ok := binOpPrec[b.Op]
	if !ok {
		prec = precComparison
	}

	if b.Op == "BETWEEN" {
		list, ok := b.Right.(*expr.ListLiteral)
		if !ok || len(list.Items) != 2 {
			return "", errUnresolvedExpr(b)
		}
		left, err := e.emitExpr(b.Left, precComparison)
		if err != nil {
			return "", err
		}
		lo, err := e.emitExpr(list.Items[0], precComparison)
		if err != nil {
			return "", err
		}
		hi, err := e.emitExpr(list.Items[1], precComparison)
		if err != nil {
			return "", err
		}
		out := fmt.Sprintf("%s BETWEEN %s AND %s", left, lo, hi)
		return parenIf(out, prec < parentPrec), nil
	}

	left, err := e.emitExpr(b.Left, prec)
	if err != nil {
		return "", err
	}
	right, err := e.emitExpr(b.Right, prec+1)
	if err != nil {
		return "", err
	}
	out := fmt.Sprintf("%s %s %s", left, b.Op, right)
	return parenIf(out, prec < parentPrec), nil
}

func (e *Emitter) emitExprList(exprs []expr.Expression) ([]string, error) {
	out := make([]string, len(exprs))
	for i, x := range exprs {
		s, err := e.emitExpr(x, precLowest)
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}

func (e *Emitter) emitCase(c *expr.Case) (string, error) {
	var b strings.Builder
	b.WriteString("CASE")
	for _, br := range c.Branches {
		when, err := e.emitExpr(br.When, precLowest)
		if err != nil {
			return "", err
		}
		then, err := e.emitExpr(br.Then, precLowest)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&b, " WHEN %s THEN %s", when, then)
	}
	if c.Else != nil {
		s, err := e.emitExpr(c.Else, precLowest)
		if err != nil {
			return "", err
		}
		b.WriteString(" ELSE ")
		b.WriteString(s)
	}
	b.WriteString(" END")
	return b.String(), nil
}

// emitWindowCall formats a ctegen-internal window function (§4.6
// shortestPath/allShortestPaths) - no Cypher surface syntax produces
// one, so this is only ever reached rendering a recursive CTE's outer
// filter.
func (e *Emitter) emitWindowCall(w *expr.WindowCall) (string, error) {
	args, err := e.emitExprList(w.Args)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s(%s) OVER (", w.Name, strings.Join(args, ", "))
	if len(w.PartitionBy) > 0 {
		parts, err := e.emitExprList(w.PartitionBy)
		if err != nil {
			return "", err
		}
		b.WriteString("PARTITION BY ")
		b.WriteString(strings.Join(parts, ", "))
	}
	if len(w.OrderBy) > 0 {
		if len(w.PartitionBy) > 0 {
			b.WriteString(" ")
		}
		b.WriteString("ORDER BY ")
		for i, o := range w.OrderBy {
			if i > 0 {
				b.WriteString(", ")
			}
			s, err := e.emitExpr(o.Expr, precLowest)
			if err != nil {
				return "", err
			}
			b.WriteString(s)
			if o.Descending {
				b.WriteString(" DESC")
			}
		}
	}
	b.WriteString(")")
	return b.String(), nil
}

func formatLiteral(l *expr.Literal) string {
	if l.IsSQL {
		return fmt.Sprintf("%v", l.Value)
	}
	switch v := l.Value.(type) {
	case nil:
		return "NULL"
	case string:
		return "'" + strings.ReplaceAll(v, "'", "''") + "'"
	case bool:
		if v {
			return "true"
		}
		return "false"
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func parenIf(s string, wrap bool) string {
	if wrap {
		return "(" + s + ")"
	}
	return s
}
