package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/roach88/widgetql/internal/dates"
	"github.com/roach88/widgetql/internal/schema"
	"github.com/roach88/widgetql/internal/widgetdef"
)

// loadInputs reads the widget definition and table schema that every command
// takes as its first two arguments.
func loadInputs(widgetPath, schemaPath string) (*widgetdef.Definition, *schema.Table, error) {
	if _, err := os.Stat(widgetPath); os.IsNotExist(err) {
		return nil, nil, NewExitError(ExitCommandError, fmt.Sprintf("widget definition not found: %s", widgetPath))
	}
	if _, err := os.Stat(schemaPath); os.IsNotExist(err) {
		return nil, nil, NewExitError(ExitCommandError, fmt.Sprintf("schema file not found: %s", schemaPath))
	}

	def, err := widgetdef.LoadFile(widgetPath)
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "compile widget definition", err)
	}
	table, err := schema.LoadTable(schemaPath)
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "load schema", err)
	}
	if def.Widget.TableName != table.TableName {
		return nil, nil, NewExitError(ExitCommandError,
			fmt.Sprintf("widget targets table %q but schema describes %q", def.Widget.TableName, table.TableName))
	}
	return def, table, nil
}

// resolveClock builds the compilation clock from the --now flag. Empty means
// the system clock; otherwise the flag pins "now" for reproducible output.
func resolveClock(nowFlag string) (dates.Clock, error) {
	if nowFlag == "" {
		return dates.SystemClock{}, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, nowFlag, time.Local); err == nil {
			return dates.FixedClock(t), nil
		}
	}
	return nil, NewExitError(ExitCommandError, fmt.Sprintf("unparseable --now value %q (want RFC3339 or YYYY-MM-DD)", nowFlag))
}
