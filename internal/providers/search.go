package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"
)

// MinSuggestLength is the shortest query sent upstream.
const MinSuggestLength = 2

// Suggest returns search phrase completions for q.
// Short or blank queries return an empty list without an upstream call.
func (c *Client) Suggest(ctx context.Context, q string) ([]string, error) {
	if strings.TrimSpace(q) == "" || utf8.RuneCountInString(q) < MinSuggestLength {
		return []string{}, nil
	}

	v := url.Values{}
	v.Set("q", q)
	v.Set("type", "list")

	body, err := c.get(ctx, "suggest", c.cfg.SuggestURL+"?"+v.Encode())
	if err != nil {
		return nil, err
	}

	// the list form is ["<query>", ["phrase", ...]]
	var resp []json.RawMessage
	if err = json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: decoding suggestions: %w", ErrUpstream, err)
	}

	out := []string{}

	if len(resp) > 1 {
		if err = json.Unmarshal(resp[1], &out); err != nil {
			return nil, fmt.Errorf("%w: decoding suggestions: %w", ErrUpstream, err)
		}
	}

	return out, nil
}

// FaviconURL returns the 64px favicon address for a domain or a full URL.
func (c *Client) FaviconURL(domainOrURL string) (string, error) {
	host, err := Hostname(domainOrURL)
	if err != nil {
		return "", err
	}

	v := url.Values{}
	v.Set("domain", host)
	v.Set("sz", "64")

	return c.cfg.FaviconURL + "?" + v.Encode(), nil
}

// Hostname extracts the host of a URL. Input without scheme is read as https.
func Hostname(domainOrURL string) (string, error) {
	s := strings.TrimSpace(domainOrURL)
	if s == "" {
		return "", fmt.Errorf("%w: empty domain", ErrInvalidInput)
	}

	if !strings.Contains(s, "://") {
		s = "https://" + s
	}

	u, err := url.Parse(s)
	if err != nil || u.Hostname() == "" {
		return "", fmt.Errorf("%w: %q is not a domain or url", ErrInvalidInput, domainOrURL)
	}

	return u.Hostname(), nil
}
