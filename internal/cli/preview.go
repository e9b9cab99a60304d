package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/widgetql/internal/chart"
	"github.com/roach88/widgetql/internal/params"
	"github.com/roach88/widgetql/internal/preview"
)

// PreviewOptions holds flags for the preview command.
type PreviewOptions struct {
	*RootOptions
	Now string
}

// previewPayload is the data payload of a preview run.
type previewPayload struct {
	Rows       []chart.Row `json:"rows"`
	SeriesKeys []string    `json:"seriesKeys,omitempty"`
	YField     string      `json:"yField,omitempty"`
	YLabel     string      `json:"yLabel,omitempty"`
}

// NewPreviewCommand creates the preview command.
func NewPreviewCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PreviewOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "preview <widget.cue> <schema.yaml> <data.yaml>",
		Short: "Execute a compiled widget query against a local dataset",
		Long: `Compile a widget definition, run the resulting query against a YAML
dataset loaded into in-memory SQLite, and print the transformed,
chart-ready rows. This is the reference consumer of the compiled
query parameters.`,
		Args:          cobra.ExactArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPreview(opts, args[0], args[1], args[2], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Now, "now", "", "pin the compilation instant (RFC3339 or YYYY-MM-DD)")

	return cmd
}

func runPreview(opts *PreviewOptions, widgetPath, schemaPath, dataPath string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	def, table, err := loadInputs(widgetPath, schemaPath)
	if err != nil {
		formatter.Error(ErrCodePreview, err.Error(), nil)
		return err
	}
	clock, err := resolveClock(opts.Now)
	if err != nil {
		formatter.Error(ErrCodePreview, err.Error(), nil)
		return err
	}
	dataRows, err := preview.LoadRows(dataPath)
	if err != nil {
		formatter.Error(ErrCodePreview, err.Error(), nil)
		return WrapExitError(ExitCommandError, "load dataset", err)
	}

	builder := params.NewBuilder(clock)
	qp, err := builder.Build(def.Widget, table.Columns, def.Config, def.Pagination)
	if err != nil {
		formatter.Error(ErrCodePreview, err.Error(), nil)
		return WrapExitError(ExitFailure, "build query params", err)
	}

	exec, err := preview.Open()
	if err != nil {
		formatter.Error(ErrCodePreview, err.Error(), nil)
		return WrapExitError(ExitCommandError, "open preview database", err)
	}
	defer exec.Close()

	if err := exec.LoadDataset(table, dataRows); err != nil {
		formatter.Error(ErrCodePreview, err.Error(), nil)
		return WrapExitError(ExitCommandError, "load dataset", err)
	}

	formatter.VerboseLog("Previewing %s widget against %d row(s)", def.Widget.Type, len(dataRows))

	rows, err := exec.Run(qp)
	if err != nil {
		formatter.Error(ErrCodePreview, err.Error(), nil)
		return WrapExitError(ExitCommandError, "execute preview", err)
	}

	payload := previewPayload{Rows: rows}
	if chartCfg, ok := def.Config.(params.ChartConfig); ok {
		result := chart.Transform(rows, chartCfg)
		payload.Rows = result.ChartData
		payload.SeriesKeys = result.SeriesKeys
		payload.YField = result.YField
		payload.YLabel = chart.Label(result.YField, chartCfg, table.Columns)
	}

	if opts.Format == "json" {
		return formatter.Success(payload)
	}
	for _, row := range payload.Rows {
		fmt.Fprintf(cmd.OutOrStdout(), "%v\n", row)
	}
	if payload.YLabel != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "series: %v (%s)\n", payload.SeriesKeys, payload.YLabel)
	}
	return nil
}
