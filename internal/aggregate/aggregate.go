// Package aggregate validates aggregation/column combinations and repairs
// invalid ones.
//
// Validation is the strict path: it returns field-scoped diagnostics (message
// key plus path) that a form layer can pin to the offending input, and it
// never mutates the configuration. Auto-correction is a separate, explicitly
// invoked operation that always produces a valid configuration and never
// fails.
package aggregate

import (
	"fmt"
	"strings"

	"github.com/roach88/widgetql/internal/catalog"
	"github.com/roach88/widgetql/internal/schema"
)

// Aggregation is a reduction function applied over a metric column.
type Aggregation string

const (
	Count Aggregation = "count"
	Sum   Aggregation = "sum"
	Avg   Aggregation = "avg"
	Min   Aggregation = "min"
	Max   Aggregation = "max"
)

// Wildcard is the "all columns" metric, legal only with Count.
const Wildcard = "*"

// Known reports whether a belongs to the closed aggregation set.
// Matching is case-insensitive.
func Known(a Aggregation) bool {
	switch normalize(a) {
	case Count, Sum, Avg, Min, Max:
		return true
	}
	return false
}

func normalize(a Aggregation) Aggregation {
	return Aggregation(strings.ToLower(strings.TrimSpace(string(a))))
}

// Normalize returns the backend spelling of the aggregation: upper-case,
// e.g. "sum" becomes "SUM".
func (a Aggregation) Normalize() string {
	return strings.ToUpper(string(normalize(a)))
}

// Message keys consumed by the form layer for field highlighting.
const (
	KeyColumnRequired     = "dashboard:validation.columnRequired"
	KeyColumnNotFound     = "dashboard:validation.columnNotFound"
	KeyColumnNotNumeric   = "dashboard:validation.columnNotNumeric"
	KeyUnknownAggregation = "dashboard:validation.unknownAggregation"
)

// Result is the outcome of validating one aggregation/metric pair.
type Result struct {
	// Valid is true when the combination is acceptable as-is.
	Valid bool

	// Path locates the offending field, e.g. ["metric"].
	Path []string

	// MessageKey is the machine-checkable diagnostic key.
	MessageKey string

	// Message is the human-readable description.
	Message string

	// Suggestion proposes a fix.
	Suggestion string
}

func ok() Result {
	return Result{Valid: true}
}

// Validate checks an aggregation/metric pair against the table's columns.
//
// Count always passes, with or without a metric. Every other aggregation
// needs a specific, existing, numeric column - a wildcard or empty metric is
// a columnRequired failure scoped to the metric field.
func Validate(agg Aggregation, metric string, cols []schema.Column) Result {
	a := normalize(agg)

	if !Known(a) {
		return Result{
			Path:       []string{"aggregation"},
			MessageKey: KeyUnknownAggregation,
			Message:    fmt.Sprintf("unknown aggregation %q", string(agg)),
			Suggestion: "use one of count, sum, avg, min, max",
		}
	}

	if a == Count {
		return ok()
	}

	trimmed := strings.TrimSpace(metric)
	if trimmed == "" || trimmed == Wildcard {
		return Result{
			Path:       []string{"metric"},
			MessageKey: KeyColumnRequired,
			Message:    fmt.Sprintf("%s cannot be applied to all columns", a.Normalize()),
			Suggestion: "select a specific numeric column for this aggregation",
		}
	}

	col, found := schema.FindColumn(cols, trimmed)
	if !found {
		return Result{
			Path:       []string{"metric"},
			MessageKey: KeyColumnNotFound,
			Message:    fmt.Sprintf("column %q not found", trimmed),
			Suggestion: "choose a column that exists on the selected table",
		}
	}

	if !catalog.IsNumeric(col.DataType) {
		return Result{
			Path:       []string{"metric"},
			MessageKey: KeyColumnNotNumeric,
			Message:    fmt.Sprintf("%s requires a numeric column, but %q is %s", a.Normalize(), col.Name, col.DataType),
			Suggestion: "pick a numeric column or switch the aggregation to count",
		}
	}

	return ok()
}

// AutoCorrect deterministically repairs an invalid aggregation/metric pair.
//
// A non-count aggregation with a missing or wildcard metric is assigned the
// first numeric column, or downgraded to count when the table has none. A
// metric that does not resolve to a numeric column is repaired the same way.
// Valid input passes through unchanged. AutoCorrect never fails.
func AutoCorrect(agg Aggregation, metric string, cols []schema.Column) (Aggregation, string) {
	a := normalize(agg)

	if !Known(a) {
		a = Count
	}
	if a == Count {
		return Count, metric
	}
	if Validate(a, metric, cols).Valid {
		return a, strings.TrimSpace(metric)
	}
	if col, found := schema.FirstNumericColumn(cols); found {
		return a, col.Name
	}
	return Count, Wildcard
}
