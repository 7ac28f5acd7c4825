package cli

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
)

var timeType = reflect.TypeOf(time.Time{})

// parseTime accepts a full RFC 3339 timestamp or a plain date.
func parseTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%q is not a date (YYYY-MM-DD) or an RFC 3339 time", s)
	}
	return t, nil
}

// applyChanges writes field=value pairs onto the JSON-tagged fields of item,
// which must be a pointer to a struct. An empty value clears an optional field.
func applyChanges(item any, changes map[string]string) error {
	fields := make(map[string]any, len(changes))
	for k, v := range changes {
		fields[k] = v
	}
	clearOptional(reflect.ValueOf(item).Elem(), fields)

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           item,
		DecodeHook:       stringToTimeHook,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(fields); err != nil {
		return fmt.Errorf("invalid --set value: %w", err)
	}
	return nil
}

// clearOptional nils the pointer fields given an empty value and removes them
// from fields; the decoder never writes a nil.
func clearOptional(v reflect.Value, fields map[string]any) {
	t := v.Type()
	for i := range t.NumField() {
		f := t.Field(i)
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if value, ok := fields[name].(string); ok && value == "" && f.Type.Kind() == reflect.Ptr {
			v.Field(i).SetZero()
			delete(fields, name)
		}
	}
}

func stringToTimeHook(from, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to != timeType {
		return data, nil
	}
	return parseTime(data.(string))
}
