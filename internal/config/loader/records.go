package loader

import (
	"fmt"

	"github.com/dshills/featurebus/internal/value"
)

// settingsKey is the top-level key of a settings document.
const settingsKey = "settings"

// recordsFromTree converts the generic decoding of a settings document,
// as produced by the TOML and YAML decoders, into records.
func recordsFromTree(source string, doc map[string]any) ([]value.Record, error) {
	raw, ok := doc[settingsKey]
	if !ok || raw == nil {
		return nil, nil
	}
	return recordList(source, settingsKey, raw)
}

func recordList(source, path string, raw any) ([]value.Record, error) {
	var items []any
	switch v := raw.(type) {
	case []any:
		items = v
	case []map[string]any:
		for _, m := range v {
			items = append(items, m)
		}
	default:
		return nil, &ParseError{Path: source, Message: fmt.Sprintf("%s must be a list, got %T", path, raw)}
	}

	records := make([]value.Record, 0, len(items))
	for i, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			return nil, &ParseError{Path: source, Message: fmt.Sprintf("%s[%d] must be a table, got %T", path, i, item)}
		}
		r, err := recordFromMap(source, fmt.Sprintf("%s[%d]", path, i), m)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, nil
}

func recordFromMap(source, path string, m map[string]any) (value.Record, error) {
	var r value.Record
	r.Type, _ = m["type"].(string)
	r.Name, _ = m["name"].(string)
	r.Value = m["value"]

	var err error
	if r.Min, err = optionalFloat(source, path+".min", m["min"]); err != nil {
		return r, err
	}
	if r.Max, err = optionalFloat(source, path+".max", m["max"]); err != nil {
		return r, err
	}

	switch n := m["maxLength"].(type) {
	case nil:
	case int:
		r.MaxLength = n
	case int64:
		r.MaxLength = int(n)
	case float64:
		r.MaxLength = int(n)
	default:
		return r, &ParseError{Path: source, Message: fmt.Sprintf("%s.maxLength must be a number, got %T", path, n)}
	}

	if opts, ok := m["options"]; ok && opts != nil {
		list, ok := opts.([]any)
		if !ok {
			return r, &ParseError{Path: source, Message: fmt.Sprintf("%s.options must be a list, got %T", path, opts)}
		}
		for _, o := range list {
			s, ok := o.(string)
			if !ok {
				return r, &ParseError{Path: source, Message: fmt.Sprintf("%s.options must hold strings, got %T", path, o)}
			}
			r.Options = append(r.Options, s)
		}
	}

	if children, ok := m["children"]; ok && children != nil {
		r.Children, err = recordList(source, path+".children", children)
		if err != nil {
			return r, err
		}
	}
	return r, nil
}

func optionalFloat(source, path string, v any) (*float64, error) {
	var f float64
	switch n := v.(type) {
	case nil:
		return nil, nil
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case float64:
		f = n
	default:
		return nil, &ParseError{Path: source, Message: fmt.Sprintf("%s must be a number, got %T", path, v)}
	}
	return &f, nil
}

// treeFromRecords builds the generic form of a settings document for the
// TOML and YAML encoders.
func treeFromRecords(records []value.Record) map[string]any {
	return map[string]any{settingsKey: recordMaps(records)}
}

func recordMaps(records []value.Record) []map[string]any {
	out := make([]map[string]any, 0, len(records))
	for _, r := range records {
		m := map[string]any{
			"type": r.Type,
			"name": r.Name,
		}
		if r.Value != nil {
			m["value"] = r.Value
		}
		if r.Min != nil {
			m["min"] = *r.Min
		}
		if r.Max != nil {
			m["max"] = *r.Max
		}
		if len(r.Options) > 0 {
			m["options"] = r.Options
		}
		if r.MaxLength > 0 {
			m["maxLength"] = r.MaxLength
		}
		if len(r.Children) > 0 {
			m["children"] = recordMaps(r.Children)
		}
		out = append(out, m)
	}
	return out
}
