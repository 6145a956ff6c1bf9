package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Point is one sample of the intraday chart.
// Delta is the change against the first point of the day in percent.
type Point struct {
	Time  time.Time `json:"time"`
	Value float64   `json:"value"`
	Delta float64   `json:"delta"`
}

// Quote is the intraday view of a symbol.
type Quote struct {
	Symbol        string  `json:"symbol"`
	Price         float64 `json:"price"`
	PreviousClose float64 `json:"previousClose"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"changePercent"`
	Points        []Point `json:"points"`
}

type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol             string  `json:"symbol"`
				RegularMarketPrice float64 `json:"regularMarketPrice"`
				PreviousClose      float64 `json:"previousClose"`
				ChartPreviousClose float64 `json:"chartPreviousClose"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
	} `json:"chart"`
}

// Quote returns the 15 minute chart of the current trading day for symbol.
func (c *Client) Quote(ctx context.Context, symbol string) (Quote, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return Quote{}, fmt.Errorf("%w: empty symbol", ErrInvalidInput)
	}

	q := url.Values{}
	q.Set("interval", "15m")
	q.Set("range", "1d")

	target := strings.TrimRight(c.cfg.StocksURL, "/") + "/" + url.PathEscape(symbol) + "?" + q.Encode()

	body, err := c.get(ctx, "stocks", target)
	if err != nil {
		return Quote{}, err
	}

	var resp chartResponse
	if err = json.Unmarshal(body, &resp); err != nil {
		return Quote{}, fmt.Errorf("%w: decoding chart: %w", ErrUpstream, err)
	}

	if len(resp.Chart.Result) == 0 {
		return Quote{}, fmt.Errorf("%w: symbol %s", ErrNoData, symbol)
	}

	r := resp.Chart.Result[0]

	var closes []*float64
	if len(r.Indicators.Quote) > 0 {
		closes = r.Indicators.Quote[0].Close
	}

	points := make([]Point, 0, len(r.Timestamp))

	for i, ts := range r.Timestamp {
		if i >= len(closes) || closes[i] == nil {
			continue
		}

		points = append(points, Point{Time: time.Unix(ts, 0).UTC(), Value: *closes[i]})
	}

	if len(points) == 0 && r.Meta.RegularMarketPrice != 0 {
		points = append(points, Point{Time: c.now().UTC(), Value: r.Meta.RegularMarketPrice})
	}

	if len(points) > 0 && points[0].Value != 0 {
		base := points[0].Value
		for i := range points {
			points[i].Delta = (points[i].Value - base) / base * 100 //nolint:mnd
		}
	}

	out := Quote{
		Symbol:        symbol,
		Price:         r.Meta.RegularMarketPrice,
		PreviousClose: r.Meta.PreviousClose,
		Points:        points,
	}

	if out.PreviousClose == 0 {
		out.PreviousClose = r.Meta.ChartPreviousClose
	}

	if out.PreviousClose != 0 {
		out.Change = out.Price - out.PreviousClose
		out.ChangePercent = out.Change / out.PreviousClose * 100 //nolint:mnd
	}

	return out, nil
}
