package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/widgetql/internal/aggregate"
	"github.com/roach88/widgetql/internal/params"
	"github.com/roach88/widgetql/internal/widgetdef"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	Fix bool // print the auto-corrected configuration instead of failing
}

// validationReport is the data payload of a validate run.
type validationReport struct {
	Valid      bool     `json:"valid"`
	Path       []string `json:"path,omitempty"`
	MessageKey string   `json:"messageKey,omitempty"`
	Message    string   `json:"message,omitempty"`
	Suggestion string   `json:"suggestion,omitempty"`

	// Corrected fields are set only with --fix on an invalid input.
	CorrectedAggregation string `json:"correctedAggregation,omitempty"`
	CorrectedMetric      string `json:"correctedMetric,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <widget.cue> <schema.yaml>",
		Short: "Validate a widget's aggregation configuration",
		Long: `Validate the aggregation/column combination of a widget definition.

Failures are field-scoped: the report names the offending field path (for
example ["metric"]) and a machine-checkable message key, matching what the
dashboard form layer consumes. With --fix, an invalid combination is
deterministically repaired and the corrected values are reported instead of
failing.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Fix, "fix", false, "report the auto-corrected configuration for invalid input")

	return cmd
}

func runValidate(opts *ValidateOptions, widgetPath, schemaPath string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	def, table, err := loadInputs(widgetPath, schemaPath)
	if err != nil {
		formatter.Error(ErrCodeCompile, err.Error(), nil)
		return err
	}

	agg, metric, ok := aggregationOf(def)
	if !ok {
		// Table widgets carry no aggregation; nothing to validate.
		return formatter.Success(validationReport{Valid: true})
	}

	res := aggregate.Validate(agg, metric, table.Columns)
	if res.Valid {
		return formatter.Success(validationReport{Valid: true})
	}

	if opts.Fix {
		fixedAgg, fixedMetric := aggregate.AutoCorrect(agg, metric, table.Columns)
		formatter.VerboseLog("Corrected %s(%s) to %s(%s)", agg, metric, fixedAgg, fixedMetric)
		return formatter.Success(validationReport{
			Valid:                true,
			CorrectedAggregation: string(fixedAgg),
			CorrectedMetric:      fixedMetric,
		})
	}

	report := validationReport{
		Valid:      false,
		Path:       res.Path,
		MessageKey: res.MessageKey,
		Message:    res.Message,
		Suggestion: res.Suggestion,
	}
	if opts.Format == "json" {
		formatter.Success(report)
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "invalid: %s (%s)\n  at: %s\n  fix: %s\n",
			report.Message, report.MessageKey, strings.Join(report.Path, "."), report.Suggestion)
	}
	return NewExitError(ExitFailure, report.Message)
}

// aggregationOf extracts the aggregation/metric pair from the config union.
// Chart widgets validate their y-axis as the metric; table widgets have no
// aggregation at all.
func aggregationOf(def *widgetdef.Definition) (aggregate.Aggregation, string, bool) {
	switch cfg := def.Config.(type) {
	case params.ChartConfig:
		if cfg.Aggregation == "" {
			return "", "", false
		}
		return cfg.Aggregation, cfg.YAxis, true
	case params.MetricConfig:
		if cfg.Aggregation == "" {
			return "", "", false
		}
		return cfg.Aggregation, cfg.Metric, true
	default:
		return "", "", false
	}
}
