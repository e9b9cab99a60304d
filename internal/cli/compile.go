package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/widgetql/internal/params"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Now    string // pinned "now" for relative dates
	Output string // output file path
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <widget.cue> <schema.yaml>",
		Short: "Compile a widget definition to query parameters",
		Long: `Compile a CUE widget definition against a table schema and emit the
backend-ready query parameters as canonical JSON.

Relative date filters resolve against the wall clock unless --now pins a
specific instant, in which case output is fully reproducible.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Now, "now", "", "pin the compilation instant (RFC3339 or YYYY-MM-DD)")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")

	return cmd
}

func runCompile(opts *CompileOptions, widgetPath, schemaPath string, cmd *cobra.Command) error {
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
	clock, err := resolveClock(opts.Now)
	if err != nil {
		formatter.Error(ErrCodeCompile, err.Error(), nil)
		return err
	}

	formatter.VerboseLog("Compiling %s widget for %s.%s",
		def.Widget.Type, def.Widget.SchemaName, def.Widget.TableName)

	builder := params.NewBuilder(clock)
	qp, err := builder.Build(def.Widget, table.Columns, def.Config, def.Pagination)
	if err != nil {
		formatter.Error(ErrCodeCompile, err.Error(), nil)
		return WrapExitError(ExitFailure, "build query params", err)
	}

	out, err := qp.MarshalCanonical()
	if err != nil {
		formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitCommandError, "serialize query params", err)
	}

	if opts.Output != "" {
		if err := os.WriteFile(opts.Output, append(out, '\n'), 0o644); err != nil {
			return WrapExitError(ExitCommandError, "write output", err)
		}
		formatter.VerboseLog("Wrote %s", opts.Output)
		return nil
	}
	return formatter.Raw(out)
}
