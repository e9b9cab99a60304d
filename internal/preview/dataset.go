package preview

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// datasetFile is the YAML shape of a preview dataset.
type datasetFile struct {
	Rows []map[string]any `yaml:"rows"`
}

// LoadRows reads preview rows from a YAML file of the form:
//
//	rows:
//	  - status: shipped
//	    total: 12.5
//	  - status: pending
//	    total: 3
func LoadRows(path string) ([]map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dataset %s: %w", path, err)
	}
	var f datasetFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse dataset %s: %w", path, err)
	}
	return f.Rows, nil
}
