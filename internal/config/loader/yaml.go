package loader

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/dshills/featurebus/internal/value"
)

// ParseYAML decodes a YAML settings document:
//
//	settings:
//	  - type: toggle
//	    name: speed
//	    children:
//	      - {type: bool, name: enabled, value: true}
func ParseYAML(source string, data []byte) ([]value.Record, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &ParseError{
			Path:    source,
			Message: err.Error(),
			Err:     err,
		}
	}
	return recordsFromTree(source, doc)
}

// MarshalYAML encodes records as a YAML settings document.
func MarshalYAML(records []value.Record) ([]byte, error) {
	data, err := yaml.Marshal(treeFromRecords(records))
	if err != nil {
		return nil, fmt.Errorf("encoding settings as yaml: %w", err)
	}
	return data, nil
}
