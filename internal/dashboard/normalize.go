package dashboard

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNotObject is returned when a payload is not a JSON object.
var ErrNotObject = errors.New("settings payload must be a JSON object")

var jsonNull = []byte("null")

// Normalize decodes raw and lays every well-typed top-level field over base.
//
// A field that is absent, null or of the wrong type keeps the value from base.
// widgets only counts as well-typed when it is an array of objects. Unknown
// top-level keys are dropped; unknown config keys are kept.
func Normalize(raw []byte, base Document) (Document, error) {
	var fields map[string]json.RawMessage

	if err := json.Unmarshal(raw, &fields); err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrNotObject, err) //nolint:errorlint
	}

	if fields == nil {
		return Document{}, ErrNotObject
	}

	out := base.Clone()

	if widgets, ok := decodeWidgets(fields[fieldWidgets]); ok {
		out.Widgets = widgets
	}

	if s, ok := decodeString(fields[fieldAppTitle]); ok {
		out.AppTitle = s
	}

	if b, ok := decodeBool(fields[fieldShowTitle]); ok {
		out.ShowTitle = b
	}

	if b, ok := decodeBool(fields[fieldEnableSearchPreview]); ok {
		out.EnableSearchPreview = b
	}

	if b, ok := decodeBool(fields[fieldLockWidgets]); ok {
		out.LockWidgets = b
	}

	if out.Widgets == nil {
		out.Widgets = []Widget{}
	}

	return out, nil
}

// Decode normalizes a stored document against the built-in defaults.
func Decode(raw []byte) (Document, error) {
	return Normalize(raw, Default())
}

func isAbsent(v json.RawMessage) bool {
	v = bytes.TrimSpace(v)

	return len(v) == 0 || bytes.Equal(v, jsonNull)
}

func decodeString(v json.RawMessage) (string, bool) {
	if isAbsent(v) {
		return "", false
	}

	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return "", false
	}

	return s, true
}

func decodeBool(v json.RawMessage) (bool, bool) {
	if isAbsent(v) {
		return false, false
	}

	var b bool
	if err := json.Unmarshal(v, &b); err != nil {
		return false, false
	}

	return b, true
}

// decodeWidgets accepts an array of objects. Inside a widget, string fields of
// another type are blanked and a config that is not an object becomes empty.
func decodeWidgets(v json.RawMessage) ([]Widget, bool) {
	if isAbsent(v) {
		return nil, false
	}

	var items []json.RawMessage
	if err := json.Unmarshal(v, &items); err != nil {
		return nil, false
	}

	widgets := make([]Widget, 0, len(items))

	for _, item := range items {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(item, &fields); err != nil || fields == nil {
			return nil, false
		}

		id, _ := decodeString(fields["id"])
		typ, _ := decodeString(fields["type"])
		title, _ := decodeString(fields["title"])

		cfg := Config{}
		if !isAbsent(fields["config"]) {
			if err := json.Unmarshal(fields["config"], &cfg); err != nil || cfg == nil {
				cfg = Config{}
			}
		}

		widgets = append(widgets, Widget{
			ID:     id,
			Type:   WidgetType(typ),
			Title:  title,
			Config: cfg,
		})
	}

	return widgets, true
}
