package dashboard

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	nanoid "github.com/matoous/go-nanoid/v2"
)

var (
	// ErrUnknownWidgetType is returned when creating a widget of a type outside the closed set.
	ErrUnknownWidgetType = errors.New("unknown widget type")
	// ErrWidgetNotFound is returned when no widget carries the requested id.
	ErrWidgetNotFound = errors.New("widget not found")
	// ErrReorderMismatch is returned when a reorder does not name exactly the current widget ids.
	ErrReorderMismatch = errors.New("reorder ids do not match the current widgets")
	// ErrLinkIncomplete is returned when a shortcut link misses its title or url.
	ErrLinkIncomplete = errors.New("shortcut link needs a title and a url")
)

const (
	linkIDAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	linkIDLength   = 12
)

// NewWidget creates a widget of type t with a random id and the per-type
// defaults the add menu uses.
func NewWidget(t WidgetType) (Widget, error) {
	if !t.Valid() {
		return Widget{}, fmt.Errorf("%w: %q", ErrUnknownWidgetType, t)
	}

	cfg := Config{}

	switch t {
	case WidgetStocks:
		cfg["symbol"] = "AAPL"
	case WidgetClock:
		cfg["showDate"] = true
		cfg["colSpan"] = float64(2)
	case WidgetWeather, WidgetShortcuts, WidgetNotes, WidgetQuote:
	}

	name := string(t)

	return Widget{
		ID:     uuid.NewString(),
		Type:   t,
		Title:  strings.ToUpper(name[:1]) + name[1:],
		Config: cfg,
	}, nil
}

// NewLink returns a shortcut link entry suitable for a shortcuts widget's
// "links" config key.
func NewLink(title, url string) (map[string]any, error) {
	title = strings.TrimSpace(title)
	url = strings.TrimSpace(url)

	if title == "" || url == "" {
		return nil, ErrLinkIncomplete
	}

	id, err := nanoid.Generate(linkIDAlphabet, linkIDLength)
	if err != nil {
		return nil, fmt.Errorf("link id: %w", err)
	}

	return map[string]any{"id": id, "title": title, "url": url}, nil
}

// AddLink appends a shortcut link to w's config.
func (w *Widget) AddLink(title, url string) error {
	link, err := NewLink(title, url)
	if err != nil {
		return err
	}

	if w.Config == nil {
		w.Config = Config{}
	}

	links, _ := w.Config["links"].([]any)
	w.Config["links"] = append(links, link)

	return nil
}

// Find returns the index of the widget with the given id, or -1.
func (d *Document) Find(id string) int {
	for i, w := range d.Widgets {
		if w.ID == id {
			return i
		}
	}

	return -1
}

// Add appends w to the end of the grid.
func (d *Document) Add(w Widget) {
	d.Widgets = append(d.Widgets, w)
}

// Remove drops the widget with the given id.
func (d *Document) Remove(id string) error {
	i := d.Find(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrWidgetNotFound, id)
	}

	d.Widgets = append(d.Widgets[:i], d.Widgets[i+1:]...)

	return nil
}

// Move places the widget with the given id at index, clamped to the grid bounds.
func (d *Document) Move(id string, index int) error {
	i := d.Find(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrWidgetNotFound, id)
	}

	index = max(0, min(index, len(d.Widgets)-1))

	w := d.Widgets[i]
	rest := append(d.Widgets[:i:i], d.Widgets[i+1:]...)

	out := make([]Widget, 0, len(d.Widgets))
	out = append(out, rest[:index]...)
	out = append(out, w)
	out = append(out, rest[index:]...)
	d.Widgets = out

	return nil
}

// Reorder permutes the widgets into the order of ids.
// ids must name every current widget exactly once.
func (d *Document) Reorder(ids []string) error {
	if len(ids) != len(d.Widgets) {
		return ErrReorderMismatch
	}

	byID := make(map[string]Widget, len(d.Widgets))
	for _, w := range d.Widgets {
		byID[w.ID] = w
	}

	if len(byID) != len(d.Widgets) {
		return fmt.Errorf("%w: duplicate widget ids", ErrReorderMismatch)
	}

	out := make([]Widget, 0, len(ids))

	for _, id := range ids {
		w, ok := byID[id]
		if !ok {
			return fmt.Errorf("%w: %s", ErrReorderMismatch, id)
		}

		delete(byID, id)
		out = append(out, w)
	}

	d.Widgets = out

	return nil
}

// IDs returns the widget ids in display order.
func (d *Document) IDs() []string {
	ids := make([]string, len(d.Widgets))
	for i, w := range d.Widgets {
		ids[i] = w.ID
	}

	return ids
}
