// Package yahoo fetches adjusted close prices from the Yahoo Finance
// chart API and turns them into annual returns. It is the proxy source
// of last resort: ETF histories are short, but they cover asset classes
// the academic datasets do not.
package yahoo

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/etnz/histret"
)

// BaseURL is the Yahoo Finance chart endpoint.
const BaseURL = "https://query1.finance.yahoo.com/v8/finance/chart/"

// Annual is one ticker's annual return source: year-end adjusted closes,
// chained into year-over-year returns. It implements histret.Source.
type Annual struct {
	G *histret.Getter
	// Ticker is the Yahoo symbol (^SP500TR, TLT, GC=F, ...).
	Ticker string
	// FirstYear floors the request start year to the instrument's
	// earliest usable history.
	FirstYear int
}

func (a *Annual) Name() string                   { return "yahoo-" + a.Ticker }
func (a *Annual) Requires() []histret.Capability { return nil }

func (a *Annual) Fetch(ctx context.Context, req histret.Request) (histret.Series, error) {
	startYear := req.StartYear
	if a.FirstYear > startYear {
		startYear = a.FirstYear
	}
	// One year earlier so the first requested year has a base price.
	period1 := time.Date(startYear-1, time.January, 1, 0, 0, 0, 0, time.UTC).Unix()
	period2 := time.Now().Unix()

	addr := fmt.Sprintf("%s%s?period1=%d&period2=%d&interval=1mo&events=div%%2Csplit",
		BaseURL, url.PathEscape(a.Ticker), period1, period2)

	var jobj any
	if err := a.G.GetJSON(ctx, a.Name(), addr, &jobj); err != nil {
		return histret.Series{}, err
	}

	timestamps, err := floatList(jobj, "$.chart.result[0].timestamp")
	if err != nil {
		return histret.Series{}, histret.Errf(histret.Malformed, a.Name(), "no timestamps for %s: %w", a.Ticker, err)
	}
	closes, err := floatList(jobj, "$.chart.result[0].indicators.adjclose[0].adjclose")
	if err != nil {
		return histret.Series{}, histret.Errf(histret.Malformed, a.Name(), "no adjusted closes for %s: %w", a.Ticker, err)
	}
	if len(timestamps) != len(closes) {
		return histret.Series{}, histret.Errf(histret.Malformed, a.Name(), "%s: %d timestamps but %d closes", a.Ticker, len(timestamps), len(closes))
	}

	// Keep the last quote of each year.
	lastQuote := make(map[int]float64)
	for i, ts := range timestamps {
		if closes[i] <= 0 {
			continue
		}
		year := time.Unix(int64(ts), 0).UTC().Year()
		lastQuote[year] = closes[i]
	}

	values := make(map[int]float64)
	for y, cur := range lastQuote {
		if prev, ok := lastQuote[y-1]; ok {
			values[y] = cur/prev - 1
		}
	}

	series := histret.NewSeries(a.Name(), values).
		Since(startYear).
		Before(time.Now().Year())
	if series.Len() == 0 {
		return histret.Series{}, histret.Errf(histret.NoData, a.Name(), "no annual returns for %s since %d", a.Ticker, startYear)
	}
	return series, nil
}

// floatList extracts a JSON array of numbers at path. Null entries
// (missing quotes) come back as zero and are filtered by the caller.
func floatList(jobj any, path string) ([]float64, error) {
	jval, err := jsonpath.Get(path, jobj)
	if err != nil {
		return nil, err
	}
	jlist, ok := jval.([]any)
	if !ok {
		return nil, fmt.Errorf("%s is not a list", path)
	}
	out := make([]float64, len(jlist))
	for i, item := range jlist {
		v, _ := item.(float64)
		out[i] = v
	}
	return out, nil
}
