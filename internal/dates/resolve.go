// Package dates resolves widget date expressions into concrete instants.
//
// Widget filters carry dates in two forms: relative tokens such as
// "__rel_date:last7Days", resolved against an injected "now", and absolute
// strings ("2024-05-01" or a full ISO timestamp). Both resolve to a Resolved
// value holding a start and end instant. Equality against a date must mean
// "falls within that calendar day", so eq (and during, which maps onto eq)
// widens an absolute date to the full wall-clock day of the input - in the
// input's own location, never a UTC-shifted day.
package dates

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/roach88/widgetql/internal/catalog"
)

// TokenPrefix introduces a relative-date token.
const TokenPrefix = "__rel_date:"

// Resolved is a concrete date resolution. An exact instant has Start == End;
// a range satisfies Start <= End with End being the last included
// millisecond (day end is start-of-next-day minus 1ms, which stays correct
// across DST transitions).
type Resolved struct {
	Start time.Time
	End   time.Time
}

// IsRange reports whether the resolution spans more than a single instant.
func (r Resolved) IsRange() bool {
	return !r.Start.Equal(r.End)
}

// Contains reports whether t falls inside the resolved span (inclusive).
func (r Resolved) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// DateParseError reports an unparseable absolute date value.
type DateParseError struct {
	Value string
	Err   error
}

func (e *DateParseError) Error() string {
	return fmt.Sprintf("unparseable date value %q", e.Value)
}

func (e *DateParseError) Unwrap() error {
	return e.Err
}

// IsDateParseError reports whether err is a DateParseError.
func IsDateParseError(err error) bool {
	var de *DateParseError
	return errors.As(err, &de)
}

// UnknownRangeError reports a relative-date token whose name is not in the
// named-range table. This is a configuration error, not a parse error: the
// token prefix proves the author meant a relative date, so dropping the
// condition would hide a real misconfiguration.
type UnknownRangeError struct {
	Name string
}

func (e *UnknownRangeError) Error() string {
	return fmt.Sprintf("unknown relative date range %q", e.Name)
}

// IsUnknownRangeError reports whether err is an UnknownRangeError.
func IsUnknownRangeError(err error) bool {
	var ue *UnknownRangeError
	return errors.As(err, &ue)
}

// ParseToken splits a relative-date token into its range name. Returns false
// when value is not token-shaped.
func ParseToken(value string) (string, bool) {
	if !strings.HasPrefix(value, TokenPrefix) {
		return "", false
	}
	return strings.TrimPrefix(value, TokenPrefix), true
}

// namedRanges is the closed set of relative ranges, each an offset-and-span
// from "now" truncated to local calendar-day boundaries.
var namedRanges = map[string]func(now time.Time) Resolved{
	"today":     func(now time.Time) Resolved { return DayRange(now) },
	"yesterday": func(now time.Time) Resolved { return DayRange(now.AddDate(0, 0, -1)) },
	"last7Days": func(now time.Time) Resolved { return lastNDays(now, 7) },
	"last14Days": func(now time.Time) Resolved {
		return lastNDays(now, 14)
	},
	"last30Days": func(now time.Time) Resolved {
		return lastNDays(now, 30)
	},
	"last90Days": func(now time.Time) Resolved {
		return lastNDays(now, 90)
	},
	"thisWeek":    thisWeek,
	"thisMonth":   thisMonth,
	"lastMonth":   lastMonth,
	"thisQuarter": thisQuarter,
	"thisYear":    thisYear,
}

// RangeNames returns the sorted names of the known relative ranges.
func RangeNames() []string {
	names := make([]string, 0, len(namedRanges))
	for name := range namedRanges {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve turns a date-valued operand into concrete instants.
//
// Relative tokens dispatch to the named-range table regardless of operator.
// Absolute values parse as a plain date (YYYY-MM-DD) or an ISO timestamp;
// when op is eq or neq (after date-operator mapping) the result widens to the
// full calendar day of the parsed value, so equality and its negation stay
// exact complements. Other comparison operators anchor to a day boundary: gt
// and lte bind to the end of the day (after/beforeOrOn include the named day
// itself), lt and gte to its start. Exact timestamps with sub-day precision
// are never widened except for eq and neq.
func Resolve(value string, op catalog.Operator, now time.Time) (Resolved, error) {
	if name, ok := ParseToken(value); ok {
		fn, known := namedRanges[name]
		if !known {
			return Resolved{}, &UnknownRangeError{Name: name}
		}
		return fn(now), nil
	}

	t, dateOnly, err := parseAbsolute(value, now.Location())
	if err != nil {
		return Resolved{}, &DateParseError{Value: value, Err: err}
	}

	if op == catalog.OpEq || op == catalog.OpNeq {
		return DayRange(t), nil
	}
	if dateOnly {
		day := DayRange(t)
		switch op {
		case catalog.OpGt, catalog.OpLte:
			return instant(day.End), nil
		default:
			return instant(day.Start), nil
		}
	}
	return instant(t), nil
}

// parseAbsolute parses a plain date or ISO timestamp. Plain dates parse in
// loc so the resolved day matches the author's wall-clock day.
func parseAbsolute(value string, loc *time.Location) (t time.Time, dateOnly bool, err error) {
	if t, err = time.ParseInLocation("2006-01-02", value, loc); err == nil {
		return t, true, nil
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05"} {
		if t, err = time.ParseInLocation(layout, value, loc); err == nil {
			return t, false, nil
		}
	}
	return time.Time{}, false, fmt.Errorf("no recognized date layout")
}

func instant(t time.Time) Resolved {
	return Resolved{Start: t, End: t}
}

// DayRange returns the full calendar day containing t, in t's location.
// The end instant is the day's final millisecond.
func DayRange(t time.Time) Resolved {
	y, m, d := t.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	next := time.Date(y, m, d+1, 0, 0, 0, 0, t.Location())
	return Resolved{Start: start, End: next.Add(-time.Millisecond)}
}

func lastNDays(now time.Time, n int) Resolved {
	day := DayRange(now)
	first := DayRange(now.AddDate(0, 0, -(n - 1)))
	return Resolved{Start: first.Start, End: day.End}
}

func thisWeek(now time.Time) Resolved {
	// Weeks start Monday.
	offset := (int(now.Weekday()) + 6) % 7
	monday := DayRange(now.AddDate(0, 0, -offset))
	sunday := DayRange(monday.Start.AddDate(0, 0, 6))
	return Resolved{Start: monday.Start, End: sunday.End}
}

func thisMonth(now time.Time) Resolved {
	y, m, _ := now.Date()
	start := time.Date(y, m, 1, 0, 0, 0, 0, now.Location())
	end := start.AddDate(0, 1, 0).Add(-time.Millisecond)
	return Resolved{Start: start, End: end}
}

func lastMonth(now time.Time) Resolved {
	y, m, _ := now.Date()
	start := time.Date(y, m, 1, 0, 0, 0, 0, now.Location()).AddDate(0, -1, 0)
	end := start.AddDate(0, 1, 0).Add(-time.Millisecond)
	return Resolved{Start: start, End: end}
}

func thisQuarter(now time.Time) Resolved {
	y, m, _ := now.Date()
	qm := time.Month((int(m)-1)/3*3 + 1)
	start := time.Date(y, qm, 1, 0, 0, 0, 0, now.Location())
	end := start.AddDate(0, 3, 0).Add(-time.Millisecond)
	return Resolved{Start: start, End: end}
}

func thisYear(now time.Time) Resolved {
	start := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
	end := start.AddDate(1, 0, 0).Add(-time.Millisecond)
	return Resolved{Start: start, End: end}
}
