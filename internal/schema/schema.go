// Package schema holds table and column metadata for widget compilation.
//
// Schemas are declared in YAML files alongside the widget definitions; the
// engine itself only ever sees the decoded Column slice.
package schema

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/widgetql/internal/catalog"
)

// Column describes one column of the table a widget queries.
type Column struct {
	// Name is the physical column name (snake_case by convention).
	Name string `yaml:"name" json:"name"`

	// DataType is the declared type; normalized via NormalizeType on load.
	DataType catalog.DataType `yaml:"dataType" json:"dataType"`

	// DisplayName is an optional human label for chart legends.
	DisplayName string `yaml:"displayName,omitempty" json:"displayName,omitempty"`
}

// Table is a queryable table plus its column metadata.
type Table struct {
	SchemaName string   `yaml:"schemaName" json:"schemaName"`
	TableName  string   `yaml:"tableName" json:"tableName"`
	Columns    []Column `yaml:"columns" json:"columns"`
}

// FindColumn returns the column with the given name, or false when absent.
func FindColumn(cols []Column, name string) (Column, bool) {
	for _, c := range cols {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// FirstNumericColumn returns the first column with a numeric declared type.
// Used by aggregation auto-correction.
func FirstNumericColumn(cols []Column) (Column, bool) {
	for _, c := range cols {
		if catalog.IsNumeric(c.DataType) {
			return c, true
		}
	}
	return Column{}, false
}

// typeAliases maps common declared-type spellings onto the catalog vocabulary.
var typeAliases = map[string]catalog.DataType{
	"int":                         catalog.TypeInteger,
	"int4":                        catalog.TypeInteger,
	"int8":                        catalog.TypeBigint,
	"serial":                      catalog.TypeInteger,
	"bigserial":                   catalog.TypeBigint,
	"float4":                      catalog.TypeReal,
	"float8":                      catalog.TypeDouble,
	"double precision":            catalog.TypeDouble,
	"bool":                        catalog.TypeBoolean,
	"character varying":           catalog.TypeVarchar,
	"string":                      catalog.TypeText,
	"datetime":                    catalog.TypeTimestamp,
	"timestamp without time zone": catalog.TypeTimestamp,
	"timestamp with time zone":    catalog.TypeTimestampTZ,
}

// NormalizeType lower-cases a declared type and resolves common aliases.
// Unknown spellings pass through unchanged; the catalog treats them with the
// minimal fallback operator set.
func NormalizeType(raw string) catalog.DataType {
	lowered := strings.ToLower(strings.TrimSpace(raw))
	if dt, ok := typeAliases[lowered]; ok {
		return dt
	}
	return catalog.DataType(lowered)
}

// LoadTable reads a table schema from a YAML file.
func LoadTable(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema %s: %w", path, err)
	}
	var t Table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parse schema %s: %w", path, err)
	}
	if t.TableName == "" {
		return nil, fmt.Errorf("schema %s: tableName is required", path)
	}
	for i := range t.Columns {
		if t.Columns[i].Name == "" {
			return nil, fmt.Errorf("schema %s: columns[%d] missing name", path, i)
		}
		t.Columns[i].DataType = NormalizeType(string(t.Columns[i].DataType))
	}
	return &t, nil
}
