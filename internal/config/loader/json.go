package loader

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"

	"github.com/dshills/featurebus/internal/value"
)

// ParseJSON decodes a JSON settings document:
//
//	{"settings": [{"type": "toggle", "name": "speed", "children": [...]}]}
func ParseJSON(source string, data []byte) ([]value.Record, error) {
	if !gjson.ValidBytes(data) {
		return nil, &ParseError{
			Path:    source,
			Message: "invalid json",
			Err:     errors.New("invalid json"),
		}
	}

	list := gjson.GetBytes(data, settingsKey)
	if !list.Exists() || list.Type == gjson.Null {
		return nil, nil
	}
	return jsonRecordList(source, settingsKey, list)
}

func jsonRecordList(source, path string, list gjson.Result) ([]value.Record, error) {
	if !list.IsArray() {
		return nil, &ParseError{Path: source, Message: fmt.Sprintf("%s must be a list", path)}
	}

	var records []value.Record
	var err error
	i := 0
	list.ForEach(func(_, item gjson.Result) bool {
		itemPath := fmt.Sprintf("%s[%d]", path, i)
		i++
		if !item.IsObject() {
			err = &ParseError{Path: source, Message: fmt.Sprintf("%s must be an object", itemPath)}
			return false
		}
		var r value.Record
		r, err = jsonRecord(source, itemPath, item)
		if err != nil {
			return false
		}
		records = append(records, r)
		return true
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

func jsonRecord(source, path string, item gjson.Result) (value.Record, error) {
	r := value.Record{
		Type: item.Get("type").String(),
		Name: item.Get("name").String(),
	}

	if v := item.Get("value"); v.Exists() && v.Type != gjson.Null {
		r.Value = v.Value()
	}
	if v := item.Get("min"); v.Exists() {
		f := v.Float()
		r.Min = &f
	}
	if v := item.Get("max"); v.Exists() {
		f := v.Float()
		r.Max = &f
	}
	r.MaxLength = int(item.Get("maxLength").Int())

	if opts := item.Get("options"); opts.Exists() {
		if !opts.IsArray() {
			return r, &ParseError{Path: source, Message: fmt.Sprintf("%s.options must be a list", path)}
		}
		for _, o := range opts.Array() {
			r.Options = append(r.Options, o.String())
		}
	}

	if children := item.Get("children"); children.Exists() {
		var err error
		r.Children, err = jsonRecordList(source, path+".children", children)
		if err != nil {
			return r, err
		}
	}
	return r, nil
}

// MarshalJSON encodes records as an indented JSON settings document.
func MarshalJSON(records []value.Record) ([]byte, error) {
	doc := []byte(`{"settings":[]}`)
	var err error
	for i, r := range records {
		doc, err = setJSONRecord(doc, settingsKey+"."+strconv.Itoa(i), r)
		if err != nil {
			return nil, fmt.Errorf("encoding settings as json: %w", err)
		}
	}
	return pretty.Pretty(doc), nil
}

func setJSONRecord(doc []byte, path string, r value.Record) ([]byte, error) {
	fields := []struct {
		key  string
		val  any
		keep bool
	}{
		{"type", r.Type, true},
		{"name", r.Name, true},
		{"value", r.Value, r.Value != nil},
		{"min", r.Min, r.Min != nil},
		{"max", r.Max, r.Max != nil},
		{"options", r.Options, len(r.Options) > 0},
		{"maxLength", r.MaxLength, r.MaxLength > 0},
	}

	var err error
	for _, f := range fields {
		if !f.keep {
			continue
		}
		if doc, err = sjson.SetBytes(doc, path+"."+f.key, f.val); err != nil {
			return nil, err
		}
	}

	if len(r.Children) > 0 {
		if doc, err = sjson.SetRawBytes(doc, path+".children", []byte("[]")); err != nil {
			return nil, err
		}
	}
	for i, child := range r.Children {
		if doc, err = setJSONRecord(doc, path+".children."+strconv.Itoa(i), child); err != nil {
			return nil, err
		}
	}
	return doc, nil
}
