package chart

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/roach88/widgetql/internal/aggregate"
	"github.com/roach88/widgetql/internal/params"
	"github.com/roach88/widgetql/internal/schema"
)

var titleCaser = cases.Title(language.English)

// Label derives the human label for a resolved result field. The synthetic
// aggregation field composes "<Aggregation> of <column>" ("Total Count" for
// a wildcard count); any other field uses the column's declared display
// name, falling back to a Title-Case rendering of its snake_case name.
func Label(field string, cfg params.ChartConfig, cols []schema.Column) string {
	if field == AggregationField {
		return aggregationLabel(cfg, cols)
	}
	return ColumnLabel(field, cols)
}

func aggregationLabel(cfg params.ChartConfig, cols []schema.Column) string {
	agg := cfg.Aggregation
	if agg == "" {
		agg = aggregate.Count
	}
	metric := cfg.YAxis
	if string(agg) == string(aggregate.Count) && (metric == "" || metric == aggregate.Wildcard) {
		return "Total Count"
	}
	return fmt.Sprintf("%s of %s", titleCaser.String(strings.ToLower(string(agg))), ColumnLabel(metric, cols))
}

// ColumnLabel returns a column's display name, or a Title-Case conversion of
// its snake_case name when no display name is declared.
func ColumnLabel(name string, cols []schema.Column) string {
	if col, ok := schema.FindColumn(cols, name); ok && col.DisplayName != "" {
		return col.DisplayName
	}
	return TitleCase(name)
}

// TitleCase converts a snake_case identifier to a spaced Title-Case label,
// e.g. "order_total" becomes "Order Total".
func TitleCase(name string) string {
	return titleCaser.String(strings.ReplaceAll(name, "_", " "))
}
