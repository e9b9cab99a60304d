package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreviewChartWidget(t *testing.T) {
	widgetPath, schemaPath := writeFixtures(t, chartWidgetCUE)
	dataPath := writeDataset(t, ordersDataYAML)

	buf := &bytes.Buffer{}
	cmd := NewPreviewCommand(&RootOptions{Format: "json"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{widgetPath, schemaPath, dataPath})

	err := cmd.Execute()
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)

	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "value", data["yField"])
	assert.Equal(t, "Sum of Total", data["yLabel"])

	rows, ok := data["rows"].([]any)
	require.True(t, ok)
	// Two shipped rows on 2024-05-14 collapse into one day bucket.
	require.Len(t, rows, 1)
	row := rows[0].(map[string]any)
	assert.InDelta(t, 15.0, row["value"], 1e-9)
}

func TestPreviewTableWidget(t *testing.T) {
	widgetSrc := `
widget: {
	schemaName: "public"
	tableName:  "orders"
	type:       "table"
	config: {columns: ["status", "total"], sortBy: "total", sortOrder: "desc"}
}
`
	widgetPath, schemaPath := writeFixtures(t, widgetSrc)
	dataPath := writeDataset(t, ordersDataYAML)

	buf := &bytes.Buffer{}
	cmd := NewPreviewCommand(&RootOptions{Format: "json"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{widgetPath, schemaPath, dataPath})

	err := cmd.Execute()
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	data := resp.Data.(map[string]any)

	rows, ok := data["rows"].([]any)
	require.True(t, ok)
	require.Len(t, rows, 3)
	first := rows[0].(map[string]any)
	assert.InDelta(t, 99.0, first["total"], 1e-9)
	// No chart transform for table widgets.
	assert.NotContains(t, data, "yField")
}

func TestPreviewMetricWidget(t *testing.T) {
	widgetSrc := `
widget: {
	schemaName: "public"
	tableName:  "orders"
	type:       "metric"
	config: {aggregation: "count"}
}
`
	widgetPath, schemaPath := writeFixtures(t, widgetSrc)
	dataPath := writeDataset(t, ordersDataYAML)

	buf := &bytes.Buffer{}
	cmd := NewPreviewCommand(&RootOptions{Format: "json"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{widgetPath, schemaPath, dataPath})

	err := cmd.Execute()
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	data := resp.Data.(map[string]any)
	rows := data["rows"].([]any)
	require.Len(t, rows, 1)
	assert.EqualValues(t, 3, rows[0].(map[string]any)["value"])
}

func TestPreviewMissingDataset(t *testing.T) {
	widgetPath, schemaPath := writeFixtures(t, chartWidgetCUE)

	buf := &bytes.Buffer{}
	cmd := NewPreviewCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{widgetPath, schemaPath, "/nonexistent/data.yaml"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestPreviewTextOutput(t *testing.T) {
	widgetPath, schemaPath := writeFixtures(t, chartWidgetCUE)
	dataPath := writeDataset(t, ordersDataYAML)

	buf := &bytes.Buffer{}
	cmd := NewPreviewCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{widgetPath, schemaPath, dataPath})

	err := cmd.Execute()
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "series:")
	assert.Contains(t, buf.String(), "Sum of Total")
}
