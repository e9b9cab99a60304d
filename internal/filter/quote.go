package filter

import (
	"strconv"
	"strings"

	"github.com/roach88/widgetql/internal/scalar"
)

// Quoter renders identifiers and literals for one SQL target. The compiled
// predicate structure is the same for every target; only quoting differs, so
// a Postgres-style backend, a bracket-quoting backend, and the in-memory
// preview executor all consume the same compiler.
type Quoter interface {
	// Ident quotes a column identifier.
	Ident(name string) string
	// Literal renders a scalar operand as a SQL literal.
	Literal(v scalar.Value) string
}

// AnsiQuoter double-quotes identifiers and single-quotes string literals,
// the convention existing consumers expect. This is the default.
type AnsiQuoter struct{}

// Ident wraps name in double quotes, doubling any embedded quote.
func (AnsiQuoter) Ident(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// Literal renders v per ANSI conventions.
func (AnsiQuoter) Literal(v scalar.Value) string {
	return ansiLiteral(v)
}

// BracketQuoter quotes identifiers with square brackets (SQL Server style).
// Literals render the same as AnsiQuoter.
type BracketQuoter struct{}

// Ident wraps name in brackets, doubling any embedded closing bracket.
func (BracketQuoter) Ident(name string) string {
	return "[" + strings.ReplaceAll(name, "]", "]]") + "]"
}

// Literal renders v per ANSI conventions.
func (BracketQuoter) Literal(v scalar.Value) string {
	return ansiLiteral(v)
}

func ansiLiteral(v scalar.Value) string {
	switch val := v.(type) {
	case nil, scalar.Null:
		return "NULL"
	case scalar.String:
		return quoteString(string(val))
	case scalar.Int:
		return strconv.FormatInt(int64(val), 10)
	case scalar.Float:
		return strconv.FormatFloat(float64(val), 'g', -1, 64)
	case scalar.Bool:
		if val {
			return "TRUE"
		}
		return "FALSE"
	case scalar.List:
		parts := make([]string, len(val))
		for i, elem := range val {
			parts[i] = ansiLiteral(elem)
		}
		return "(" + strings.Join(parts, ", ") + ")"
	default:
		return "NULL"
	}
}

func quoteString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
