package params

import (
	"fmt"

	"github.com/roach88/widgetql/internal/dates"
	"github.com/roach88/widgetql/internal/filter"
	"github.com/roach88/widgetql/internal/scalar"
	"github.com/roach88/widgetql/internal/schema"
)

// Defaults for pagination.
const (
	DefaultPage     = 1
	DefaultPageSize = 100
)

// QueryParams is the compiled, backend-agnostic parameter map. Treat it as
// immutable once built: rebuilding from the same inputs at the same logical
// instant yields a structurally identical map, and MarshalCanonical yields
// byte-identical JSON.
type QueryParams map[string]any

// MarshalCanonical serializes the parameters as canonical JSON, suitable for
// cache keys and golden comparisons.
func (p QueryParams) MarshalCanonical() ([]byte, error) {
	return scalar.MarshalCanonical(map[string]any(p))
}

// Builder compiles widget configurations into query parameters. The clock is
// injected so relative-date filters resolve reproducibly.
type Builder struct {
	Compiler *filter.Compiler
	Clock    dates.Clock
}

// NewBuilder returns a builder with ANSI filter quoting and the given clock.
func NewBuilder(clock dates.Clock) *Builder {
	return &Builder{
		Compiler: filter.NewCompiler(),
		Clock:    clock,
	}
}

// Build assembles the query parameters for one widget.
//
// The widget's schema and table names are hard-required; everything else is
// optional and, when absent, absent from the output too. The config variant
// must match the widget type. Build is pure apart from the injected clock
// read.
func (b *Builder) Build(w Widget, cols []schema.Column, cfg Config, pag *Pagination) (QueryParams, error) {
	if w.SchemaName == "" {
		return nil, &ConfigError{Field: "schemaName", Message: "is required"}
	}
	if w.TableName == "" {
		return nil, &ConfigError{Field: "tableName", Message: "is required"}
	}

	out := QueryParams{
		"schemaName": w.SchemaName,
		"tableName":  w.TableName,
		"page":       DefaultPage,
		"pageSize":   DefaultPageSize,
	}
	if pag != nil {
		if pag.Page > 0 {
			out["page"] = pag.Page
		}
		if pag.PageSize > 0 {
			out["pageSize"] = pag.PageSize
		}
	}

	var err error
	switch w.Type {
	case WidgetChart:
		chart, ok := cfg.(ChartConfig)
		if !ok {
			return nil, mismatch(w.Type, cfg)
		}
		err = b.buildChart(out, chart, cols)
	case WidgetMetric:
		metric, ok := cfg.(MetricConfig)
		if !ok {
			return nil, mismatch(w.Type, cfg)
		}
		err = b.buildMetric(out, metric, cols)
	case WidgetTable:
		table, ok := cfg.(TableConfig)
		if !ok {
			return nil, mismatch(w.Type, cfg)
		}
		err = b.buildTable(out, table, cols)
	default:
		return nil, &ConfigError{Field: "widgetType", Message: fmt.Sprintf("unknown widget type %q", w.Type)}
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

func mismatch(wt WidgetType, cfg Config) error {
	return &ConfigError{
		Field:   "config",
		Message: fmt.Sprintf("config %T does not match widget type %q", cfg, wt),
	}
}

func (b *Builder) buildChart(out QueryParams, cfg ChartConfig, cols []schema.Column) error {
	out["xAxis"] = cfg.XAxis
	out["yAxis"] = cfg.YAxis

	if cfg.Aggregation != "" {
		out["aggregation"] = cfg.Aggregation.Normalize()
	}
	if cfg.TimeAggregation != "" {
		if !KnownBucket(cfg.TimeAggregation) {
			return &ConfigError{
				Field:   "timeAggregation",
				Message: fmt.Sprintf("unknown time bucket %q", cfg.TimeAggregation),
			}
		}
		out["timeAggregation"] = string(cfg.TimeAggregation)
	}
	if cfg.GroupBy != "" {
		out["groupBy"] = cfg.GroupBy
		if cfg.MaxSeries > 0 {
			out["maxSeries"] = cfg.MaxSeries
		}
	}
	return b.attachFilters(out, cfg.Filters, cols)
}

func (b *Builder) buildMetric(out QueryParams, cfg MetricConfig, cols []schema.Column) error {
	// Metric output carries no axis or time-bucket keys.
	out["aggregationColumn"] = cfg.Metric
	if cfg.Aggregation != "" {
		out["aggregation"] = cfg.Aggregation.Normalize()
	}
	return b.attachFilters(out, cfg.Filters, cols)
}

func (b *Builder) buildTable(out QueryParams, cfg TableConfig, cols []schema.Column) error {
	// Table output carries no aggregation or axis keys.
	if len(cfg.Columns) > 0 {
		out["properties"] = map[string]any{
			"columns": append([]string(nil), cfg.Columns...),
		}
	}
	if cfg.SortBy != "" {
		out["sortBy"] = cfg.SortBy
		order := cfg.SortOrder
		if order != "desc" {
			order = "asc"
		}
		out["sortOrder"] = order
	}
	return b.attachFilters(out, cfg.Filters, cols)
}

// attachFilters compiles and attaches the filter list. A nil list means no
// filters key at all; a non-nil (possibly empty) list always emits the key.
func (b *Builder) attachFilters(out QueryParams, conds []filter.Condition, cols []schema.Column) error {
	if conds == nil {
		return nil
	}
	res, err := b.Compiler.Compile(conds, cols, b.Clock.Now())
	if err != nil {
		return err
	}
	fragments := res.SQLFragments()
	if fragments == nil {
		fragments = []string{}
	}
	out["filters"] = fragments
	return nil
}
