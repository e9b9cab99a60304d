package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const chartWidgetCUE = `
widget: {
	schemaName: "public"
	tableName:  "orders"
	type:       "chart"
	config: {
		xAxis:           "created_at"
		yAxis:           "total"
		aggregation:     "sum"
		timeAggregation: "day"
		filters: [{column: "status", operator: "eq", value: "shipped"}]
	}
}
`

const metricWidgetCUE = `
widget: {
	schemaName: "public"
	tableName:  "orders"
	type:       "metric"
	config: {
		metric:      "status"
		aggregation: "sum"
	}
}
`

const ordersSchemaYAML = `
schemaName: public
tableName: orders
columns:
  - name: status
    dataType: text
  - name: total
    dataType: numeric
  - name: created_at
    dataType: timestamptz
`

const ordersDataYAML = `
rows:
  - status: shipped
    total: 10.5
    created_at: "2024-05-14 09:00:00"
  - status: shipped
    total: 4.5
    created_at: "2024-05-14 15:00:00"
  - status: pending
    total: 99.0
    created_at: "2024-05-14 10:00:00"
`

// writeFixtures lays out a widget definition and schema in a temp dir and
// returns their paths.
func writeFixtures(t *testing.T, widgetSrc string) (widgetPath, schemaPath string) {
	t.Helper()
	dir := t.TempDir()
	widgetPath = filepath.Join(dir, "widget.cue")
	schemaPath = filepath.Join(dir, "schema.yaml")
	require.NoError(t, os.WriteFile(widgetPath, []byte(widgetSrc), 0o644))
	require.NoError(t, os.WriteFile(schemaPath, []byte(ordersSchemaYAML), 0o644))
	return widgetPath, schemaPath
}

func writeDataset(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}
