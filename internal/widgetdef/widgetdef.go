// Package widgetdef compiles declarative CUE widget definitions into typed
// widget configurations.
//
// A definition file declares a single widget struct:
//
//	widget: {
//		schemaName: "public"
//		tableName:  "orders"
//		type:       "chart"
//		config: {
//			xAxis:           "created_at"
//			yAxis:           "total"
//			aggregation:     "sum"
//			timeAggregation: "day"
//			filters: [{column: "status", operator: "eq", value: "shipped"}]
//		}
//	}
//
// Uses the CUE SDK's Go API directly (not a CLI subprocess). Errors carry
// CUE source positions where available.
package widgetdef

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/token"

	"github.com/roach88/widgetql/internal/aggregate"
	"github.com/roach88/widgetql/internal/catalog"
	"github.com/roach88/widgetql/internal/filter"
	"github.com/roach88/widgetql/internal/params"
	"github.com/roach88/widgetql/internal/scalar"
)

// Definition is a fully compiled widget definition.
type Definition struct {
	Widget     params.Widget
	Config     params.Config
	Pagination *params.Pagination
}

// CompileError reports a malformed widget definition.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: widget.%s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Field, e.Message)
	}
	return fmt.Sprintf("widget.%s: %s", e.Field, e.Message)
}

// LoadFile reads and compiles a single .cue widget definition file.
func LoadFile(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read widget definition %s: %w", path, err)
	}

	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename(path))
	if err := v.Err(); err != nil {
		return nil, fmt.Errorf("parse widget definition %s: %w", path, err)
	}

	widget := v.LookupPath(cue.ParsePath("widget"))
	if !widget.Exists() {
		return nil, &CompileError{Field: "widget", Message: "top-level widget struct is required", Pos: v.Pos()}
	}
	return Compile(widget)
}

// Compile parses a CUE widget struct into a Definition.
func Compile(v cue.Value) (*Definition, error) {
	if err := v.Err(); err != nil {
		return nil, err
	}

	def := &Definition{}

	schemaName, err := requiredString(v, "schemaName")
	if err != nil {
		return nil, err
	}
	tableName, err := requiredString(v, "tableName")
	if err != nil {
		return nil, err
	}
	widgetType, err := requiredString(v, "type")
	if err != nil {
		return nil, err
	}
	def.Widget = params.Widget{
		SchemaName: schemaName,
		TableName:  tableName,
		Type:       params.WidgetType(widgetType),
	}

	cfgVal := v.LookupPath(cue.ParsePath("config"))
	if !cfgVal.Exists() {
		return nil, &CompileError{Field: "config", Message: "config is required", Pos: v.Pos()}
	}

	var wire configWire
	if err := cfgVal.Decode(&wire); err != nil {
		return nil, &CompileError{Field: "config", Message: err.Error(), Pos: cfgVal.Pos()}
	}
	cfg, err := wire.toConfig(def.Widget.Type, cfgVal.Pos())
	if err != nil {
		return nil, err
	}
	def.Config = cfg

	pagVal := v.LookupPath(cue.ParsePath("pagination"))
	if pagVal.Exists() {
		var pag params.Pagination
		if err := pagVal.Decode(&pag); err != nil {
			return nil, &CompileError{Field: "pagination", Message: err.Error(), Pos: pagVal.Pos()}
		}
		def.Pagination = &pag
	}

	return def, nil
}

func requiredString(v cue.Value, field string) (string, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return "", &CompileError{Field: field, Message: field + " is required", Pos: v.Pos()}
	}
	s, err := fv.String()
	if err != nil {
		return "", &CompileError{Field: field, Message: "must be a string", Pos: fv.Pos()}
	}
	if s == "" {
		return "", &CompileError{Field: field, Message: "must not be empty", Pos: fv.Pos()}
	}
	return s, nil
}

// configWire is the loose decode target covering all three config variants.
// cue.Value.Decode honors json tags.
type configWire struct {
	XAxis           string          `json:"xAxis"`
	YAxis           string          `json:"yAxis"`
	Aggregation     string          `json:"aggregation"`
	TimeAggregation string          `json:"timeAggregation"`
	GroupBy         string          `json:"groupBy"`
	MaxSeries       int             `json:"maxSeries"`
	Metric          string          `json:"metric"`
	Columns         []string        `json:"columns"`
	SortBy          string          `json:"sortBy"`
	SortOrder       string          `json:"sortOrder"`
	Filters         []conditionWire `json:"filters"`
}

type conditionWire struct {
	Column          string         `json:"column"`
	Operator        string         `json:"operator"`
	Value           any            `json:"value"`
	LogicalOperator string         `json:"logicalOperator"`
	Config          map[string]any `json:"config"`
}

func (w configWire) toConfig(wt params.WidgetType, pos token.Pos) (params.Config, error) {
	filters := w.conditions()

	switch wt {
	case params.WidgetChart:
		return params.ChartConfig{
			XAxis:           w.XAxis,
			YAxis:           w.YAxis,
			Aggregation:     aggregate.Aggregation(w.Aggregation),
			TimeAggregation: params.TimeBucket(w.TimeAggregation),
			GroupBy:         w.GroupBy,
			MaxSeries:       w.MaxSeries,
			Filters:         filters,
		}, nil
	case params.WidgetMetric:
		return params.MetricConfig{
			Metric:      w.Metric,
			Aggregation: aggregate.Aggregation(w.Aggregation),
			Filters:     filters,
		}, nil
	case params.WidgetTable:
		return params.TableConfig{
			Columns:   w.Columns,
			SortBy:    w.SortBy,
			SortOrder: w.SortOrder,
			Filters:   filters,
		}, nil
	default:
		return nil, &CompileError{
			Field:   "type",
			Message: fmt.Sprintf("unknown widget type %q (want chart, metric, or table)", wt),
			Pos:     pos,
		}
	}
}

// conditions converts wire filters to engine conditions. Operand conversion
// failures leave the value nil so the filter compiler applies its usual
// malformed-condition skip; the definition still compiles.
func (w configWire) conditions() []filter.Condition {
	if w.Filters == nil {
		return nil
	}
	out := make([]filter.Condition, len(w.Filters))
	for i, fw := range w.Filters {
		cond := filter.Condition{
			Column:          fw.Column,
			Operator:        catalog.Operator(fw.Operator),
			LogicalOperator: fw.LogicalOperator,
			Config:          fw.Config,
		}
		if fw.Value == nil {
			cond.Value = scalar.Null{}
		} else if v, err := scalar.FromAny(fw.Value); err == nil {
			cond.Value = v
		}
		out[i] = cond
	}
	return out
}
