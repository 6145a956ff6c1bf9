// Package providers fetches the live data shown by dashboard widgets:
// weather, geocoding, stock quotes, search suggestions and favicons.
//
// Identical requests that are in flight at the same time share one upstream call.
// Nothing is cached and nothing is retried.
package providers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/sync/singleflight"

	"github.com/nexus-dash/nexus/internal/config"
)

const (
	userAgent       = "Mozilla/5.0 (compatible; nexus-dashboard)"
	maxResponseSize = 4 << 20
)

var (
	// ErrUpstream is returned when a provider answers with a non 2xx status or an unreadable body.
	ErrUpstream = errors.New("upstream provider failed")
	// ErrNoData is returned when a provider has no data for the request.
	ErrNoData = errors.New("no data")
	// ErrInvalidInput is returned for input that can't be sent upstream.
	ErrInvalidInput = errors.New("invalid input")
)

var requests = promauto.NewCounterVec( //nolint:gochecknoglobals
	prometheus.CounterOpts{
		Name: "nexus_provider_requests_total",
		Help: "Number of upstream provider requests, differentiated by provider and result.",
	},
	[]string{"provider", "result"},
)

// Client talks to the configured upstream providers.
type Client struct {
	cfg     config.Providers
	timeout time.Duration
	http    *http.Client
	group   singleflight.Group
	now     func() time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithClock replaces time.Now, used for synthesized quote points.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// New returns a Client for cfg.
func New(cfg config.Providers, opts ...Option) *Client {
	c := &Client{
		cfg:     cfg,
		timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		http:    &http.Client{},
		now:     time.Now,
	}

	if c.timeout <= 0 {
		c.timeout = 10 * time.Second //nolint:mnd
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// get fetches target and returns the body. Concurrent calls for the same target share the result.
// The shared call is detached from ctx so one cancelled caller doesn't fail the others.
func (c *Client) get(ctx context.Context, provider, target string) ([]byte, error) {
	ch := c.group.DoChan(target, func() (any, error) {
		body, err := c.fetch(context.WithoutCancel(ctx), target)

		result := "ok"
		if err != nil {
			result = "error"
		}

		requests.WithLabelValues(provider, result).Inc()

		return body, err
	})

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %w", ErrUpstream, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err //nolint:wrapcheck
		}

		return res.Val.([]byte), nil //nolint:forcetypeassert
	}
}

func (c *Client) fetch(ctx context.Context, target string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %w", ErrUpstream, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}

	return body, nil
}
