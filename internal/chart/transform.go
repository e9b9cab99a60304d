// Package chart shapes raw query rows into presentation-ready series data.
//
// Aggregated queries come back with the aggregation under a synthetic field
// name rather than the configured column, because the backend computes it
// under an alias. The transformer resolves the effective y-axis field,
// derives series keys (one per group value for multi-series charts), and
// normalizes ISO-string timestamps into epoch milliseconds so downstream
// charting consumes one numeric time representation.
package chart

import (
	"fmt"
	"time"

	"github.com/roach88/widgetql/internal/aggregate"
	"github.com/roach88/widgetql/internal/params"
)

// Row is one raw result row.
type Row map[string]any

// AggregationField is the synthetic field aggregated values return under.
const AggregationField = "value"

// DefaultMaxSeries caps multi-series expansion when the config does not.
const DefaultMaxSeries = 10

// Result is the transformed, chart-ready shape.
type Result struct {
	// ChartData is the normalized row set (input rows are not mutated).
	ChartData []Row

	// SeriesKeys names each plotted series.
	SeriesKeys []string

	// YField is the resolved y-axis field name present in ChartData.
	YField string

	// IsAggregation is true when YField fell back to the synthetic
	// aggregation field.
	IsAggregation bool

	// Config echoes the configuration the transform ran with.
	Config params.ChartConfig
}

// DetermineYAxisField resolves which field of the result rows carries the
// y-axis value. The configured name wins when it exists verbatim in the
// first row (non-aggregated pass-through); otherwise, when an aggregation is
// configured or the axis is the wildcard, the synthetic field is used.
func DetermineYAxisField(cfg params.ChartConfig, rows []Row) (field string, isAggregation bool) {
	if len(rows) > 0 {
		if _, ok := rows[0][cfg.YAxis]; ok {
			return cfg.YAxis, false
		}
	}
	if cfg.Aggregation != "" || cfg.YAxis == aggregate.Wildcard {
		return AggregationField, true
	}
	return cfg.YAxis, false
}

// Transform produces the chart-ready result for one widget's rows.
func Transform(rows []Row, cfg params.ChartConfig) Result {
	yField, isAgg := DetermineYAxisField(cfg, rows)

	data := make([]Row, len(rows))
	for i, row := range rows {
		data[i] = normalizeRow(row, cfg.XAxis)
	}

	return Result{
		ChartData:     data,
		SeriesKeys:    seriesKeys(rows, cfg, yField),
		YField:        yField,
		IsAggregation: isAgg,
		Config:        cfg,
	}
}

// seriesKeys derives the series identifiers: the resolved y field for a
// single-series chart, or the distinct group-by values (first-seen order,
// capped) when grouping is enabled.
func seriesKeys(rows []Row, cfg params.ChartConfig, yField string) []string {
	if cfg.GroupBy == "" {
		return []string{yField}
	}

	maxSeries := cfg.MaxSeries
	if maxSeries <= 0 {
		maxSeries = DefaultMaxSeries
	}

	seen := make(map[string]bool)
	var keys []string
	for _, row := range rows {
		v, ok := row[cfg.GroupBy]
		if !ok || v == nil {
			continue
		}
		key := fmt.Sprintf("%v", v)
		if seen[key] {
			continue
		}
		seen[key] = true
		keys = append(keys, key)
		if len(keys) >= maxSeries {
			break
		}
	}
	if keys == nil {
		keys = []string{}
	}
	return keys
}

// normalizeRow copies a row, converting an ISO-string x-axis value to epoch
// milliseconds. Non-time and already-numeric values pass through.
func normalizeRow(row Row, xField string) Row {
	out := make(Row, len(row))
	for k, v := range row {
		out[k] = v
	}
	if xField == "" {
		return out
	}
	if s, ok := out[xField].(string); ok {
		if ms, ok := parseTimestampMillis(s); ok {
			out[xField] = ms
		}
	}
	return out
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseTimestampMillis(s string) (int64, bool) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UnixMilli(), true
		}
	}
	return 0, false
}
