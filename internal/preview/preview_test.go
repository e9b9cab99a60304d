package preview

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/widgetql/internal/aggregate"
	"github.com/roach88/widgetql/internal/catalog"
	"github.com/roach88/widgetql/internal/chart"
	"github.com/roach88/widgetql/internal/dates"
	"github.com/roach88/widgetql/internal/filter"
	"github.com/roach88/widgetql/internal/params"
	"github.com/roach88/widgetql/internal/scalar"
	"github.com/roach88/widgetql/internal/schema"
)

var testNow = time.Date(2024, time.May, 15, 10, 30, 0, 0, time.UTC)

func ordersTable() *schema.Table {
	return &schema.Table{
		SchemaName: "public",
		TableName:  "orders",
		Columns: []schema.Column{
			{Name: "status", DataType: catalog.TypeText},
			{Name: "total", DataType: catalog.TypeNumeric},
			{Name: "created_at", DataType: catalog.TypeTimestampTZ},
		},
	}
}

func ordersRows() []map[string]any {
	return []map[string]any{
		{"status": "shipped", "total": 10.5, "created_at": "2024-05-14 09:00:00"},
		{"status": "shipped", "total": 4.5, "created_at": "2024-05-14 15:00:00"},
		{"status": "pending", "total": 99.0, "created_at": "2024-05-14 10:00:00"},
		{"status": "shipped", "total": 7.0, "created_at": "2024-05-15 08:00:00"},
	}
}

func openLoaded(t *testing.T) *Executor {
	t.Helper()
	ex, err := Open()
	require.NoError(t, err)
	t.Cleanup(func() { ex.Close() })
	require.NoError(t, ex.LoadDataset(ordersTable(), ordersRows()))
	return ex
}

func buildParams(t *testing.T, wt params.WidgetType, cfg params.Config, pag *params.Pagination) params.QueryParams {
	t.Helper()
	b := params.NewBuilder(dates.FixedClock(testNow))
	w := params.Widget{SchemaName: "public", TableName: "orders", Type: wt}
	p, err := b.Build(w, ordersTable().Columns, cfg, pag)
	require.NoError(t, err)
	return p
}

func TestRun_ChartDailySum(t *testing.T) {
	ex := openLoaded(t)
	p := buildParams(t, params.WidgetChart, params.ChartConfig{
		XAxis:           "created_at",
		YAxis:           "total",
		Aggregation:     aggregate.Sum,
		TimeAggregation: params.BucketDay,
		Filters: []filter.Condition{
			{Column: "status", Operator: catalog.OpEq, Value: scalar.String("shipped")},
		},
	}, nil)

	rows, err := ex.Run(p)
	require.NoError(t, err)

	require.Len(t, rows, 2)
	assert.Equal(t, "2024-05-14", rows[0]["created_at"])
	assert.InDelta(t, 15.0, rows[0]["value"], 1e-9)
	assert.Equal(t, "2024-05-15", rows[1]["created_at"])
	assert.InDelta(t, 7.0, rows[1]["value"], 1e-9)
}

func TestRun_ChartGroupBy(t *testing.T) {
	ex := openLoaded(t)
	p := buildParams(t, params.WidgetChart, params.ChartConfig{
		XAxis:           "created_at",
		YAxis:           "*",
		Aggregation:     aggregate.Count,
		TimeAggregation: params.BucketDay,
		GroupBy:         "status",
	}, nil)

	rows, err := ex.Run(p)
	require.NoError(t, err)

	// 2024-05-14 splits into pending/shipped; 2024-05-15 is shipped only.
	require.Len(t, rows, 3)
	for _, row := range rows {
		assert.Contains(t, row, "status")
		assert.Contains(t, row, "value")
	}
}

func TestRun_ChartRowsFeedTransformer(t *testing.T) {
	ex := openLoaded(t)
	cfg := params.ChartConfig{
		XAxis:           "created_at",
		YAxis:           "total",
		Aggregation:     aggregate.Sum,
		TimeAggregation: params.BucketDay,
		GroupBy:         "status",
	}
	p := buildParams(t, params.WidgetChart, cfg, nil)

	rows, err := ex.Run(p)
	require.NoError(t, err)

	res := chart.Transform(rows, cfg)

	assert.Equal(t, chart.AggregationField, res.YField)
	assert.True(t, res.IsAggregation)
	assert.ElementsMatch(t, []string{"shipped", "pending"}, res.SeriesKeys)
	// Day buckets normalize to epoch millis for the x axis.
	assert.Equal(t, time.Date(2024, time.May, 14, 0, 0, 0, 0, time.UTC).UnixMilli(),
		res.ChartData[0]["created_at"])
}

func TestRun_MetricCount(t *testing.T) {
	ex := openLoaded(t)
	p := buildParams(t, params.WidgetMetric, params.MetricConfig{
		Aggregation: aggregate.Count,
	}, nil)

	rows, err := ex.Run(p)
	require.NoError(t, err)

	require.Len(t, rows, 1)
	assert.EqualValues(t, 4, rows[0]["value"])
}

func TestRun_MetricSumWithFilter(t *testing.T) {
	ex := openLoaded(t)
	p := buildParams(t, params.WidgetMetric, params.MetricConfig{
		Metric:      "total",
		Aggregation: aggregate.Sum,
		Filters: []filter.Condition{
			{Column: "status", Operator: catalog.OpEq, Value: scalar.String("pending")},
		},
	}, nil)

	rows, err := ex.Run(p)
	require.NoError(t, err)

	require.Len(t, rows, 1)
	assert.InDelta(t, 99.0, rows[0]["value"], 1e-9)
}

func TestRun_TableSortAndPaginate(t *testing.T) {
	ex := openLoaded(t)
	p := buildParams(t, params.WidgetTable, params.TableConfig{
		Columns:   []string{"status", "total"},
		SortBy:    "total",
		SortOrder: "desc",
	}, &params.Pagination{Page: 1, PageSize: 2})

	rows, err := ex.Run(p)
	require.NoError(t, err)

	require.Len(t, rows, 2)
	assert.InDelta(t, 99.0, rows[0]["total"], 1e-9)
	assert.InDelta(t, 10.5, rows[1]["total"], 1e-9)
	assert.NotContains(t, rows[0], "created_at")
}

func TestRun_TableSecondPage(t *testing.T) {
	ex := openLoaded(t)
	p := buildParams(t, params.WidgetTable, params.TableConfig{
		SortBy: "total",
	}, &params.Pagination{Page: 2, PageSize: 3})

	rows, err := ex.Run(p)
	require.NoError(t, err)

	require.Len(t, rows, 1)
	assert.InDelta(t, 99.0, rows[0]["total"], 1e-9)
}

func TestRun_MissingTableName(t *testing.T) {
	ex := openLoaded(t)

	_, err := ex.Run(params.QueryParams{"xAxis": "created_at"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tableName")
}

func TestLoadDataset_EmptyColumns(t *testing.T) {
	ex, err := Open()
	require.NoError(t, err)
	defer ex.Close()

	err = ex.LoadDataset(&schema.Table{TableName: "empty"}, nil)
	require.Error(t, err)
}

func TestLoadRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rows.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
rows:
  - status: shipped
    total: 12.5
  - status: pending
    total: 3
`), 0o644))

	rows, err := LoadRows(path)
	require.NoError(t, err)

	require.Len(t, rows, 2)
	assert.Equal(t, "shipped", rows[0]["status"])
	assert.Equal(t, 12.5, rows[0]["total"])
}

func TestLoadRows_Missing(t *testing.T) {
	_, err := LoadRows(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}
