package cmdutil

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"time"
)

// Row flattens a struct into a datastore row keyed by its json tag names.
// Untagged and unexported fields are skipped. Nested values (slices, maps,
// structs) are stored as JSON text so they fit a single TEXT column.
func Row(value any) (map[string]any, error) {
	v := reflect.ValueOf(value)
	for v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return map[string]any{}, nil
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil, fmt.Errorf("row: expected a struct, got %s", v.Kind())
	}

	row := make(map[string]any, v.NumField())
	t := v.Type()
	for i := range t.NumField() {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		name, ok := columnName(field)
		if !ok {
			continue
		}

		cell, err := columnValue(v.Field(i))
		if err != nil {
			return nil, fmt.Errorf("row: column %s: %w", name, err)
		}
		row[name] = cell
	}
	return row, nil
}

func columnName(field reflect.StructField) (string, bool) {
	tag, ok := field.Tag.Lookup("json")
	if !ok {
		return "", false
	}
	name, _, _ := strings.Cut(tag, ",")
	if name == "" || name == "-" {
		return "", false
	}
	return name, true
}

var timeType = reflect.TypeFor[time.Time]()

func columnValue(v reflect.Value) (any, error) {
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return nil, nil
		}
		v = v.Elem()
	}
	if v.Type() == timeType {
		return v.Interface().(time.Time).UTC().Format(time.RFC3339), nil
	}

	switch v.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map, reflect.Struct:
		if (v.Kind() == reflect.Slice || v.Kind() == reflect.Map) && v.IsNil() {
			if v.Kind() == reflect.Map {
				return "{}", nil
			}
			return "[]", nil
		}
		encoded, err := json.Marshal(v.Interface())
		if err != nil {
			return nil, err
		}
		return string(encoded), nil
	default:
		return v.Interface(), nil
	}
}
