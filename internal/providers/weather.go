package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// WeatherLocation is the label of every forecast, the upstream has no place names.
const WeatherLocation = "Local Weather"

// Weather is the current condition at a coordinate.
type Weather struct {
	Temperature float64 `json:"temperature"`
	Condition   string  `json:"condition"`
	Location    string  `json:"location"`
	IsDay       bool    `json:"isDay"`
}

// Place is a geocoding match.
type Place struct {
	Name      string  `json:"name"`
	Country   string  `json:"country,omitempty"`
	Admin1    string  `json:"admin1,omitempty"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Condition maps a WMO weather code to a short label.
func Condition(code int) string {
	switch {
	case code == 0:
		return "Clear"
	case code >= 1 && code <= 3:
		return "Cloudy"
	case code >= 45 && code <= 48:
		return "Fog"
	case code >= 51 && code <= 67:
		return "Rain"
	case code >= 71 && code <= 77:
		return "Snow"
	case code >= 95:
		return "Storm"
	default:
		return "Unknown"
	}
}

// Weather returns the current weather at lat/lon.
func (c *Client) Weather(ctx context.Context, lat, lon float64) (Weather, error) {
	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("longitude", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("current", "temperature_2m,is_day,weather_code")
	q.Set("timezone", "auto")

	body, err := c.get(ctx, "weather", c.cfg.WeatherURL+"?"+q.Encode())
	if err != nil {
		return Weather{}, err
	}

	var resp struct {
		Current *struct {
			Temperature float64 `json:"temperature_2m"`
			IsDay       int     `json:"is_day"`
			WeatherCode int     `json:"weather_code"`
		} `json:"current"`
	}

	if err = json.Unmarshal(body, &resp); err != nil {
		return Weather{}, fmt.Errorf("%w: decoding weather: %w", ErrUpstream, err)
	}

	if resp.Current == nil {
		return Weather{}, fmt.Errorf("%w: weather without current block", ErrNoData)
	}

	return Weather{
		Temperature: resp.Current.Temperature,
		Condition:   Condition(resp.Current.WeatherCode),
		Location:    WeatherLocation,
		IsDay:       resp.Current.IsDay == 1,
	}, nil
}

// Geocode searches places by name. No match is an empty list.
func (c *Client) Geocode(ctx context.Context, name string) ([]Place, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: empty place name", ErrInvalidInput)
	}

	q := url.Values{}
	q.Set("name", name)
	q.Set("count", "5")
	q.Set("language", "en")
	q.Set("format", "json")

	body, err := c.get(ctx, "geocode", c.cfg.GeocodeURL+"?"+q.Encode())
	if err != nil {
		return nil, err
	}

	var resp struct {
		Results []Place `json:"results"`
	}

	if err = json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: decoding places: %w", ErrUpstream, err)
	}

	if resp.Results == nil {
		return []Place{}, nil
	}

	return resp.Results, nil
}
