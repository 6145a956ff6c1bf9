// Package dashboard renders the read-only dashboard page.
package dashboard

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/nexus-dash/nexus/internal/config"
	doc "github.com/nexus-dash/nexus/internal/dashboard"
	"github.com/nexus-dash/nexus/internal/web/handler"
)

const (
	// Path is the path to the dashboard page.
	Path = handler.RootPath

	// TemplateName is the name of the dashboard template.
	TemplateName = "dashboard/dashboard"

	// ErrorTemplateName is rendered when the document can't be loaded.
	ErrorTemplateName = "dashboard/error"
)

// Tile is one widget prepared for the template.
type Tile struct {
	ID      string
	Type    string
	Title   string
	Summary string
	Tint    string
	Wide    bool
	Links   []Link
}

// Link is one shortcut of a shortcuts tile.
type Link struct {
	Title string
	URL   string
}

// Data is passed to the dashboard template.
type Data struct {
	AppTitle            string
	ShowTitle           bool
	EnableSearchPreview bool
	LockWidgets         bool
	Tiles               []Tile
}

// Service is the dashboard page handler service.
type Service struct {
	cfg      *config.Config
	settings handler.Settings
}

// Handler is the dashboard page handler.
var Handler = Service{}

// Init registers the dashboard page.
func (s *Service) Init(app *fiber.App, cfg *config.Config, deps handler.Deps) {
	if app == nil || cfg == nil || deps.Settings == nil {
		log.Fatal().Msg(handler.ErrNilDepsFatalLogMsg)
		return
	}

	s.cfg = cfg
	s.settings = deps.Settings

	app.Get(Path, s.Get)
}

// Get renders the current document.
func (s *Service) Get(c *fiber.Ctx) error {
	d, err := s.settings.Load(c.UserContext())
	if err != nil {
		log.Error().Err(err).Msg("can't load settings for the dashboard page")

		return c.Status(fiber.StatusInternalServerError).Render(ErrorTemplateName, fiber.Map{
			"Title": s.cfg.Title,
			"error": "Failed to read settings",
		}, handler.BaseLayout)
	}

	return c.Render(TemplateName, fiber.Map{
		"Title": s.cfg.Title,
		"Data":  NewData(d),
	}, handler.BaseLayout)
}

// NewData builds the template data of a document.
func NewData(d doc.Document) Data {
	data := Data{
		AppTitle:            d.AppTitle,
		ShowTitle:           d.ShowTitle,
		EnableSearchPreview: d.EnableSearchPreview,
		LockWidgets:         d.LockWidgets,
		Tiles:               make([]Tile, 0, len(d.Widgets)),
	}

	for _, w := range d.Widgets {
		data.Tiles = append(data.Tiles, newTile(w))
	}

	return data
}

func newTile(w doc.Widget) Tile {
	t := Tile{
		ID:    w.ID,
		Type:  string(w.Type),
		Title: w.Title,
		Tint:  str(w.Config, "tint"),
	}

	if custom := str(w.Config, "customTitle"); custom != "" {
		t.Title = custom
	}

	if span, ok := w.Config["colSpan"].(float64); ok && span >= 2 {
		t.Wide = true
	}

	switch w.Type {
	case doc.WidgetClock:
		if b, _ := w.Config["use24Hour"].(bool); b {
			t.Summary = "24-hour clock"
		} else {
			t.Summary = "12-hour clock"
		}
	case doc.WidgetWeather:
		if city := str(w.Config, "city"); city != "" {
			t.Summary = city
		} else {
			t.Summary = "Local weather"
		}
	case doc.WidgetStocks:
		t.Summary = strings.ToUpper(str(w.Config, "symbol"))
	case doc.WidgetShortcuts:
		t.Links = links(w.Config)
		t.Summary = fmt.Sprintf("%d shortcuts", len(t.Links))
	case doc.WidgetNotes:
		if notes, ok := w.Config["notes"].([]any); ok {
			t.Summary = fmt.Sprintf("%d notes", len(notes))
		}
	case doc.WidgetQuote:
		t.Summary = str(w.Config, "quoteText")
		if author := str(w.Config, "quoteAuthor"); author != "" {
			t.Summary += " - " + author
		}
	}

	return t
}

func links(cfg doc.Config) []Link {
	raw, _ := cfg["links"].([]any)
	out := make([]Link, 0, len(raw))

	for _, l := range raw {
		m, ok := l.(map[string]any)
		if !ok {
			continue
		}

		link := Link{Title: str(m, "title"), URL: str(m, "url")}
		if link.URL != "" {
			out = append(out, link)
		}
	}

	return out
}

func str(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}
