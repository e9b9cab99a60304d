package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runValidateCmd(t *testing.T, format string, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd := NewValidateCommand(&RootOptions{Format: format})
	cmd.SetOut(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestValidateValidWidget(t *testing.T) {
	widgetSrc := `
widget: {
	schemaName: "public"
	tableName:  "orders"
	type:       "metric"
	config: {metric: "total", aggregation: "sum"}
}
`
	widgetPath, schemaPath := writeFixtures(t, widgetSrc)

	out, err := runValidateCmd(t, "json", widgetPath, schemaPath)
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)

	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, true, data["valid"])
}

func TestValidateNonNumericMetric(t *testing.T) {
	widgetPath, schemaPath := writeFixtures(t, metricWidgetCUE)

	out, err := runValidateCmd(t, "json", widgetPath, schemaPath)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, false, data["valid"])
	assert.Equal(t, "dashboard:validation.columnNotNumeric", data["messageKey"])
	assert.Equal(t, []any{"metric"}, data["path"])
}

func TestValidateTextReport(t *testing.T) {
	widgetPath, schemaPath := writeFixtures(t, metricWidgetCUE)

	out, err := runValidateCmd(t, "text", widgetPath, schemaPath)
	require.Error(t, err)

	assert.Contains(t, out, "invalid:")
	assert.Contains(t, out, "dashboard:validation.columnNotNumeric")
	assert.Contains(t, out, "at: metric")
}

func TestValidateFix(t *testing.T) {
	widgetPath, schemaPath := writeFixtures(t, metricWidgetCUE)

	out, err := runValidateCmd(t, "json", widgetPath, schemaPath, "--fix")
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)

	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, true, data["valid"])
	assert.Equal(t, "sum", data["correctedAggregation"])
	assert.Equal(t, "total", data["correctedMetric"])
}

func TestValidateTableWidgetHasNothingToValidate(t *testing.T) {
	widgetSrc := `
widget: {
	schemaName: "public"
	tableName:  "orders"
	type:       "table"
	config: {columns: ["status", "total"]}
}
`
	widgetPath, schemaPath := writeFixtures(t, widgetSrc)

	out, err := runValidateCmd(t, "json", widgetPath, schemaPath)
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestValidateChartUsesYAxisAsMetric(t *testing.T) {
	widgetSrc := `
widget: {
	schemaName: "public"
	tableName:  "orders"
	type:       "chart"
	config: {xAxis: "created_at", yAxis: "status", aggregation: "avg"}
}
`
	widgetPath, schemaPath := writeFixtures(t, widgetSrc)

	out, err := runValidateCmd(t, "json", widgetPath, schemaPath)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	data := resp.Data.(map[string]any)
	assert.Equal(t, "dashboard:validation.columnNotNumeric", data["messageKey"])
}

func TestValidateMissingSchemaFile(t *testing.T) {
	widgetPath, _ := writeFixtures(t, metricWidgetCUE)

	_, err := runValidateCmd(t, "text", widgetPath, "/nonexistent/schema.yaml")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
