package filter

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/roach88/widgetql/internal/catalog"
	"github.com/roach88/widgetql/internal/dates"
	"github.com/roach88/widgetql/internal/scalar"
	"github.com/roach88/widgetql/internal/schema"
)

// instantLayout is the literal format for resolved instants. Millisecond
// precision matches the day-end arithmetic (day end is 23:59:59.999).
const instantLayout = "2006-01-02T15:04:05.000Z07:00"

// Predicate is one compiled WHERE fragment.
type Predicate struct {
	// Column is the source condition's column name (unquoted).
	Column string

	// SQL is the ready-to-embed fragment, identifiers and literals quoted.
	SQL string

	// Joiner is how this predicate joins with the next one (AND or OR).
	Joiner string

	// TrendFilter carries the metric-widget trend tag through compilation.
	TrendFilter bool
}

// Result is the outcome of compiling a condition list. Skipped counts the
// malformed conditions that were silently dropped; it is informational only
// and never an error.
type Result struct {
	Predicates []Predicate
	Skipped    int
}

// SQLFragments returns just the fragment strings, in order.
func (r Result) SQLFragments() []string {
	out := make([]string, len(r.Predicates))
	for i, p := range r.Predicates {
		out[i] = p.SQL
	}
	return out
}

// CombineSQL joins the predicates into a single WHERE-clause body, scanning
// left to right and using each predicate's Joiner against its successor.
func (r Result) CombineSQL() string {
	if len(r.Predicates) == 0 {
		return ""
	}
	var b strings.Builder
	for i, p := range r.Predicates {
		if i > 0 {
			b.WriteString(" ")
			b.WriteString(r.Predicates[i-1].Joiner)
			b.WriteString(" ")
		}
		b.WriteString(p.SQL)
	}
	return b.String()
}

// Compiler turns conditions into predicates. Zero value is not usable; use
// NewCompiler, or set Quoter explicitly for a non-default target.
type Compiler struct {
	Quoter Quoter
}

// NewCompiler returns a compiler with the default ANSI quoting.
func NewCompiler() *Compiler {
	return &Compiler{Quoter: AnsiQuoter{}}
}

// Compile converts conditions into predicate fragments against the given
// column metadata. Malformed conditions are skipped, never fatal. The one
// hard failure is an unknown relative-date range name, surfaced as
// *dates.UnknownRangeError.
func (c *Compiler) Compile(conds []Condition, cols []schema.Column, now time.Time) (Result, error) {
	var res Result
	for _, cond := range conds {
		sql, ok, err := c.compileOne(cond, cols, now)
		if err != nil {
			return Result{}, err
		}
		if !ok {
			res.Skipped++
			continue
		}
		res.Predicates = append(res.Predicates, Predicate{
			Column:      cond.Column,
			SQL:         sql,
			Joiner:      cond.Joiner(),
			TrendFilter: cond.IsTrendFilter(),
		})
	}
	return res, nil
}

// compileOne compiles a single condition. ok=false means "skip silently".
func (c *Compiler) compileOne(cond Condition, cols []schema.Column, now time.Time) (string, bool, error) {
	if cond.Column == "" || cond.Operator == "" {
		return "", false, nil
	}
	col, found := schema.FindColumn(cols, cond.Column)
	if !found {
		return "", false, nil
	}
	if !catalog.Allows(col.DataType, cond.Operator) {
		return "", false, nil
	}

	ident := c.Quoter.Ident(col.Name)

	if catalog.NeedsNoOperand(cond.Operator) {
		if cond.Operator == catalog.OpIsNull {
			return ident + " IS NULL", true, nil
		}
		return ident + " IS NOT NULL", true, nil
	}

	// Everything past the null checks needs an operand.
	if scalar.IsNull(cond.Value) {
		return "", false, nil
	}

	if catalog.IsDateLike(col.DataType) {
		return c.compileDate(ident, cond, now)
	}

	if col.DataType == catalog.TypeUUID && !validUUIDOperand(cond.Value) {
		return "", false, nil
	}

	switch cond.Operator {
	case catalog.OpIn, catalog.OpNotIn:
		list, ok := cond.Value.(scalar.List)
		if !ok || len(list) == 0 {
			return "", false, nil
		}
		kw := "IN"
		if cond.Operator == catalog.OpNotIn {
			kw = "NOT IN"
		}
		return fmt.Sprintf("%s %s %s", ident, kw, c.Quoter.Literal(list)), true, nil

	case catalog.OpBetween, catalog.OpNotBetween:
		list, ok := cond.Value.(scalar.List)
		if !ok || len(list) != 2 {
			return "", false, nil
		}
		kw := "BETWEEN"
		if cond.Operator == catalog.OpNotBetween {
			kw = "NOT BETWEEN"
		}
		return fmt.Sprintf("%s %s %s AND %s",
			ident, kw, c.Quoter.Literal(list[0]), c.Quoter.Literal(list[1])), true, nil

	case catalog.OpContains, catalog.OpNotContains, catalog.OpStartsWith, catalog.OpEndsWith:
		s, ok := cond.Value.(scalar.String)
		if !ok {
			return "", false, nil
		}
		return c.compileLike(ident, cond.Operator, string(s)), true, nil

	case catalog.OpJSONContains:
		doc, ok := jsonOperand(cond.Value)
		if !ok {
			return "", false, nil
		}
		return fmt.Sprintf("%s @> %s", ident, quoteString(doc)), true, nil

	case catalog.OpHasKey:
		key, ok := cond.Value.(scalar.String)
		if !ok {
			return "", false, nil
		}
		return fmt.Sprintf("%s ? %s", ident, quoteString(string(key))), true, nil

	default:
		sym, ok := comparisonSymbol(cond.Operator)
		if !ok {
			return "", false, nil
		}
		if _, isList := cond.Value.(scalar.List); isList {
			return "", false, nil
		}
		return fmt.Sprintf("%s %s %s", ident, sym, c.Quoter.Literal(cond.Value)), true, nil
	}
}

// compileDate handles conditions against date/timestamp columns: the
// operator maps onto the comparison domain, the operand resolves through the
// date resolver, and equality widens to a full-day BETWEEN.
func (c *Compiler) compileDate(ident string, cond Condition, now time.Time) (string, bool, error) {
	op := catalog.MapDateOperator(cond.Operator)

	if op == catalog.OpBetween || op == catalog.OpNotBetween {
		list, ok := cond.Value.(scalar.List)
		if !ok || len(list) != 2 {
			return "", false, nil
		}
		lo, okLo, err := c.resolveDateOperand(list[0], catalog.OpGte, now)
		if err != nil || !okLo {
			return "", false, err
		}
		hi, okHi, err := c.resolveDateOperand(list[1], catalog.OpLte, now)
		if err != nil || !okHi {
			return "", false, err
		}
		kw := "BETWEEN"
		if op == catalog.OpNotBetween {
			kw = "NOT BETWEEN"
		}
		return fmt.Sprintf("%s %s %s AND %s",
			ident, kw, c.instant(lo.Start), c.instant(hi.End)), true, nil
	}

	resolved, ok, err := c.resolveDateOperand(cond.Value, op, now)
	if err != nil || !ok {
		return "", false, err
	}

	switch op {
	case catalog.OpEq:
		if resolved.IsRange() {
			return fmt.Sprintf("%s BETWEEN %s AND %s",
				ident, c.instant(resolved.Start), c.instant(resolved.End)), true, nil
		}
		return fmt.Sprintf("%s = %s", ident, c.instant(resolved.Start)), true, nil
	case catalog.OpNeq:
		if resolved.IsRange() {
			return fmt.Sprintf("%s NOT BETWEEN %s AND %s",
				ident, c.instant(resolved.Start), c.instant(resolved.End)), true, nil
		}
		return fmt.Sprintf("%s <> %s", ident, c.instant(resolved.Start)), true, nil
	case catalog.OpGt:
		return fmt.Sprintf("%s > %s", ident, c.instant(resolved.End)), true, nil
	case catalog.OpGte:
		return fmt.Sprintf("%s >= %s", ident, c.instant(resolved.Start)), true, nil
	case catalog.OpLt:
		return fmt.Sprintf("%s < %s", ident, c.instant(resolved.Start)), true, nil
	case catalog.OpLte:
		return fmt.Sprintf("%s <= %s", ident, c.instant(resolved.End)), true, nil
	default:
		return "", false, nil
	}
}

// resolveDateOperand resolves a string operand through the date resolver.
// Parse failures skip the condition; unknown range names propagate.
func (c *Compiler) resolveDateOperand(v scalar.Value, op catalog.Operator, now time.Time) (dates.Resolved, bool, error) {
	s, isStr := v.(scalar.String)
	if !isStr {
		return dates.Resolved{}, false, nil
	}
	resolved, err := dates.Resolve(string(s), op, now)
	if err != nil {
		if dates.IsDateParseError(err) {
			return dates.Resolved{}, false, nil
		}
		return dates.Resolved{}, false, err
	}
	return resolved, true, nil
}

func (c *Compiler) instant(t time.Time) string {
	return c.Quoter.Literal(scalar.String(t.Format(instantLayout)))
}

func (c *Compiler) compileLike(ident string, op catalog.Operator, operand string) string {
	var pattern string
	switch op {
	case catalog.OpStartsWith:
		pattern = operand + "%"
	case catalog.OpEndsWith:
		pattern = "%" + operand
	default:
		pattern = "%" + operand + "%"
	}
	kw := "LIKE"
	if op == catalog.OpNotContains {
		kw = "NOT LIKE"
	}
	return fmt.Sprintf("%s %s %s", ident, kw, c.Quoter.Literal(scalar.String(pattern)))
}

func comparisonSymbol(op catalog.Operator) (string, bool) {
	switch op {
	case catalog.OpEq:
		return "=", true
	case catalog.OpNeq:
		return "<>", true
	case catalog.OpGt:
		return ">", true
	case catalog.OpGte:
		return ">=", true
	case catalog.OpLt:
		return "<", true
	case catalog.OpLte:
		return "<=", true
	}
	return "", false
}

// validUUIDOperand checks uuid-typed operands parse as UUIDs, including each
// element of a membership list.
func validUUIDOperand(v scalar.Value) bool {
	switch val := v.(type) {
	case scalar.String:
		_, err := uuid.Parse(string(val))
		return err == nil
	case scalar.List:
		for _, elem := range val {
			if !validUUIDOperand(elem) {
				return false
			}
		}
		return len(val) > 0
	default:
		return false
	}
}

// jsonOperand renders a containment operand as a JSON document string.
func jsonOperand(v scalar.Value) (string, bool) {
	if s, ok := v.(scalar.String); ok {
		if json.Valid([]byte(s)) {
			return string(s), true
		}
		return "", false
	}
	data, err := json.Marshal(scalar.ToAny(v))
	if err != nil {
		return "", false
	}
	return string(data), true
}
