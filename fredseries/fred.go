// Package fredseries fetches monthly observation series from the FRED
// API (Federal Reserve Bank of St. Louis). FRED requires a free API key;
// without one the sources report themselves as not configured and the
// fallback chain moves on.
package fredseries

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/etnz/histret"
)

// BaseURL is the FRED observations endpoint.
const BaseURL = "https://api.stlouisfed.org/fred/series/observations"

// bondDuration approximates a 10-year treasury's price sensitivity to
// yield moves.
const bondDuration = 8.0

// Client is an authenticated FRED API client.
type Client struct {
	g   *histret.Getter
	key string
}

// NewClient returns a FRED client; key may be empty, in which case every
// fetch fails with NotConfigured.
func NewClient(g *histret.Getter, key string) *Client {
	return &Client{g: g, key: key}
}

// observation is one monthly data point of a FRED series.
type observation struct {
	year  int
	month int
	value float64
}

// observations fetches a series' monthly values since startYear. FRED
// marks missing observations with a "." value; those are dropped.
func (c *Client) observations(ctx context.Context, source, seriesID string, startYear int) ([]observation, error) {
	if c.key == "" {
		return nil, histret.Errf(histret.NotConfigured, source, "FRED_API_KEY not set")
	}

	addr := fmt.Sprintf("%s?series_id=%s&api_key=%s&file_type=json&observation_start=%d-01-01",
		BaseURL, url.QueryEscape(seriesID), url.QueryEscape(c.key), startYear)

	var jobj any
	if err := c.g.GetJSON(ctx, source, addr, &jobj); err != nil {
		return nil, err
	}

	jval, err := jsonpath.Get("$.observations[*]", jobj)
	if err != nil {
		return nil, histret.Errf(histret.Malformed, source, "no observations in %s response: %w", seriesID, err)
	}
	jlist, ok := jval.([]any)
	if !ok {
		return nil, histret.Errf(histret.Malformed, source, "unexpected observations payload for %s", seriesID)
	}

	var obs []observation
	for _, item := range jlist {
		jmap, ok := item.(map[string]any)
		if !ok {
			continue
		}
		date, _ := jmap["date"].(string)
		raw, _ := jmap["value"].(string)
		if raw == "" || raw == "." {
			continue
		}
		parts := strings.Split(date, "-")
		if len(parts) != 3 {
			continue
		}
		year, err1 := strconv.Atoi(parts[0])
		mm, err2 := strconv.Atoi(parts[1])
		value, err3 := strconv.ParseFloat(raw, 64)
		if err1 != nil || err2 != nil || err3 != nil {
			continue
		}
		obs = append(obs, observation{year: year, month: mm, value: value})
	}
	if len(obs) == 0 {
		return nil, histret.Errf(histret.NoData, source, "series %s has no observations since %d", seriesID, startYear)
	}
	return obs, nil
}

// annualMean averages the monthly observations of each year.
func annualMean(obs []observation) map[int]float64 {
	sums := make(map[int]float64)
	counts := make(map[int]int)
	for _, o := range obs {
		sums[o.year] += o.value
		counts[o.year]++
	}
	out := make(map[int]float64, len(sums))
	for y, s := range sums {
		out[y] = s / float64(counts[y])
	}
	return out
}

// yearEnd keeps the latest observation of each year.
func yearEnd(obs []observation) map[int]float64 {
	months := make(map[int]int)
	out := make(map[int]float64)
	for _, o := range obs {
		if o.month >= months[o.year] {
			months[o.year] = o.month
			out[o.year] = o.value
		}
	}
	return out
}

// TBills is the 3-month treasury bill source (TB3MS): the annual average
// rate, as a fraction.
type TBills struct {
	C *Client
}

func (t *TBills) Name() string                   { return "fred-tbills" }
func (t *TBills) Requires() []histret.Capability { return []histret.Capability{histret.CapFREDKey} }

func (t *TBills) Fetch(ctx context.Context, req histret.Request) (histret.Series, error) {
	obs, err := t.C.observations(ctx, t.Name(), "TB3MS", req.StartYear)
	if err != nil {
		return histret.Series{}, err
	}
	values := make(map[int]float64)
	for y, mean := range annualMean(obs) {
		values[y] = mean / 100
	}
	return finish(t.Name(), values, req)
}

// Inflation is the CPI inflation source (CPIAUCSL): December-over-
// December change of the index.
type Inflation struct {
	C *Client
}

func (i *Inflation) Name() string                   { return "fred-inflation" }
func (i *Inflation) Requires() []histret.Capability { return []histret.Capability{histret.CapFREDKey} }

func (i *Inflation) Fetch(ctx context.Context, req histret.Request) (histret.Series, error) {
	// One year earlier so the first requested year has a base value.
	obs, err := i.C.observations(ctx, i.Name(), "CPIAUCSL", req.StartYear-1)
	if err != nil {
		return histret.Series{}, err
	}
	ends := yearEnd(obs)
	values := make(map[int]float64)
	for y, cur := range ends {
		if prev, ok := ends[y-1]; ok && prev > 0 {
			values[y] = cur/prev - 1
		}
	}
	return finish(i.Name(), values, req)
}

// Treasury10Y estimates 10-year treasury total returns from the GS10
// constant-maturity yield with a duration-based approximation.
type Treasury10Y struct {
	C *Client
}

func (t *Treasury10Y) Name() string                   { return "fred-gs10" }
func (t *Treasury10Y) Requires() []histret.Capability { return []histret.Capability{histret.CapFREDKey} }

func (t *Treasury10Y) Fetch(ctx context.Context, req histret.Request) (histret.Series, error) {
	obs, err := t.C.observations(ctx, t.Name(), "GS10", req.StartYear-1)
	if err != nil {
		return histret.Series{}, err
	}
	yields := make(map[int]float64)
	for y, mean := range annualMean(obs) {
		yields[y] = mean / 100
	}
	values := make(map[int]float64)
	for y, cur := range yields {
		if prev, ok := yields[y-1]; ok {
			// Price falls when yields rise.
			values[y] = prev - bondDuration*(cur-prev)
		}
	}
	return finish(t.Name(), values, req)
}

func finish(source string, values map[int]float64, req histret.Request) (histret.Series, error) {
	series := histret.NewSeries(source, values).
		Since(req.StartYear).
		Before(time.Now().Year())
	if series.Len() == 0 {
		return histret.Series{}, histret.Errf(histret.NoData, source, "no complete years since %d", req.StartYear)
	}
	return series, nil
}
