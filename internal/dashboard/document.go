// Package dashboard defines the persisted dashboard document, its built-in
// defaults and the normalization applied before a payload is stored.
package dashboard

// WidgetType is the kind of tile a widget renders.
type WidgetType string

const (
	// WidgetClock renders the local time and date.
	WidgetClock WidgetType = "clock"
	// WidgetWeather renders the current weather for a location.
	WidgetWeather WidgetType = "weather"
	// WidgetStocks renders an intraday chart for a ticker symbol.
	WidgetStocks WidgetType = "stocks"
	// WidgetShortcuts renders a grid of quick links.
	WidgetShortcuts WidgetType = "shortcuts"
	// WidgetNotes renders a short list of notes.
	WidgetNotes WidgetType = "notes"
	// WidgetQuote renders a single quote.
	WidgetQuote WidgetType = "quote"
)

const (
	// DefaultAppTitle is the title shown when none was stored.
	DefaultAppTitle = "Nexus"

	fieldWidgets             = "widgets"
	fieldAppTitle            = "appTitle"
	fieldShowTitle           = "showTitle"
	fieldEnableSearchPreview = "enableSearchPreview"
	fieldLockWidgets         = "lockWidgets"
)

// Types returns the closed set of widget types in display order of the add menu.
func Types() []WidgetType {
	return []WidgetType{
		WidgetClock,
		WidgetWeather,
		WidgetStocks,
		WidgetShortcuts,
		WidgetNotes,
		WidgetQuote,
	}
}

// Valid reports whether t is one of the known widget types.
func (t WidgetType) Valid() bool {
	for _, known := range Types() {
		if t == known {
			return true
		}
	}

	return false
}

// Config is the open per-type attribute bag of a widget.
// Keys the server does not know about are stored unchanged.
type Config map[string]any

// Widget is one dashboard tile.
type Widget struct {
	ID     string     `json:"id"`
	Type   WidgetType `json:"type"`
	Title  string     `json:"title"`
	Config Config     `json:"config"`
}

// Document is the single persisted settings object.
// The order of Widgets is the display order.
type Document struct {
	Widgets             []Widget `json:"widgets"`
	AppTitle            string   `json:"appTitle"`
	ShowTitle           bool     `json:"showTitle"`
	EnableSearchPreview bool     `json:"enableSearchPreview"`
	LockWidgets         bool     `json:"lockWidgets"`
}

// Default returns a fresh copy of the hard-coded first-run document.
func Default() Document {
	return Document{
		Widgets: []Widget{
			{
				ID:    "1",
				Type:  WidgetClock,
				Title: "Clock",
				Config: Config{
					"showDate":    true,
					"showSeconds": false,
					"use24Hour":   false,
					"colSpan":     float64(2),
				},
			},
			{ID: "2", Type: WidgetWeather, Title: "Weather", Config: Config{"tint": "blue"}},
			{ID: "3", Type: WidgetStocks, Title: "SPY", Config: Config{"symbol": "SPY", "tint": "green"}},
			{ID: "4", Type: WidgetShortcuts, Title: "Shortcuts", Config: Config{"tint": "orange"}},
		},
		AppTitle:            DefaultAppTitle,
		ShowTitle:           true,
		EnableSearchPreview: true,
		LockWidgets:         false,
	}
}

// Clone returns a deep copy of d, including nested config values.
func (d Document) Clone() Document {
	out := d
	out.Widgets = make([]Widget, len(d.Widgets))

	for i, w := range d.Widgets {
		out.Widgets[i] = w.Clone()
	}

	return out
}

// Clone returns a deep copy of w.
func (w Widget) Clone() Widget {
	out := w
	if w.Config != nil {
		out.Config = cloneValue(map[string]any(w.Config)).(map[string]any) //nolint:forcetypeassert
	}

	return out
}

// cloneValue copies the container types produced by encoding/json.
func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, val := range t {
			m[k] = cloneValue(val)
		}

		return m
	case Config:
		return Config(cloneValue(map[string]any(t)).(map[string]any)) //nolint:forcetypeassert
	case []any:
		s := make([]any, len(t))
		for i, val := range t {
			s[i] = cloneValue(val)
		}

		return s
	default:
		return v
	}
}
