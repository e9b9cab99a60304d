// Package params assembles backend-ready query parameters for a widget.
//
// Widget configuration is a tagged union per widget type, so the builder can
// pattern-match exhaustively instead of poking at stringly-typed keys. The
// output is a flat parameter map whose key set depends on the widget type:
// consumers test key *absence* to decide applicability, so a field irrelevant
// to the widget type is never emitted, not even with an empty value.
package params

import (
	"errors"
	"fmt"

	"github.com/roach88/widgetql/internal/aggregate"
	"github.com/roach88/widgetql/internal/filter"
)

// WidgetType discriminates the three widget families.
type WidgetType string

const (
	WidgetChart  WidgetType = "chart"
	WidgetMetric WidgetType = "metric"
	WidgetTable  WidgetType = "table"
)

// Widget identifies the queried table and the widget family.
type Widget struct {
	SchemaName string     `json:"schemaName"`
	TableName  string     `json:"tableName"`
	Type       WidgetType `json:"widgetType"`
}

// Config is the sealed union of per-widget-type configurations.
type Config interface {
	widgetConfig()
}

// TimeBucket is a chart time-aggregation granularity.
type TimeBucket string

const (
	BucketHour    TimeBucket = "hour"
	BucketDay     TimeBucket = "day"
	BucketWeek    TimeBucket = "week"
	BucketMonth   TimeBucket = "month"
	BucketQuarter TimeBucket = "quarter"
	BucketYear    TimeBucket = "year"
)

// KnownBucket reports whether b is a recognized time bucket.
func KnownBucket(b TimeBucket) bool {
	switch b {
	case BucketHour, BucketDay, BucketWeek, BucketMonth, BucketQuarter, BucketYear:
		return true
	}
	return false
}

// ChartConfig configures a chart widget. TimeAggregation empty means "no
// time bucketing"; the output then carries no timeAggregation key at all.
// A nil Filters slice means "no filter list supplied" and suppresses the
// filters key; an empty non-nil slice emits an empty array.
type ChartConfig struct {
	XAxis           string
	YAxis           string
	Aggregation     aggregate.Aggregation
	TimeAggregation TimeBucket
	GroupBy         string
	MaxSeries       int
	Filters         []filter.Condition
}

func (ChartConfig) widgetConfig() {}

// MetricConfig configures a single-value metric widget.
type MetricConfig struct {
	Metric      string
	Aggregation aggregate.Aggregation
	Filters     []filter.Condition
}

func (MetricConfig) widgetConfig() {}

// TableConfig configures a table widget. Columns selects the visible
// columns; empty means all.
type TableConfig struct {
	Columns   []string
	SortBy    string
	SortOrder string
	Filters   []filter.Condition
}

func (TableConfig) widgetConfig() {}

// Pagination overrides the page/pageSize defaults.
type Pagination struct {
	Page     int
	PageSize int
}

// ConfigError reports a structurally invalid widget configuration: a missing
// required field, an unknown widget type, or a config variant that does not
// match the widget type.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid widget config: %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("invalid widget config: %s", e.Message)
}

// IsConfigError reports whether err is a ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}
