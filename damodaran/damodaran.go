// Package damodaran fetches Aswath Damodaran's historical returns
// dataset (NYU Stern): annual returns for stocks, bonds, bills, real
// estate and gold since 1928. The sheet layout varies between yearly
// editions, so the year and data columns are sniffed from headers with a
// positional fallback, and percent-vs-fraction scaling is detected from
// the magnitude of the values.
package damodaran

import (
	"bytes"
	"context"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/etnz/histret"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// DataURL is Damodaran's historical returns workbook.
const DataURL = "https://pages.stern.nyu.edu/~adamodar/pc/datasets/histretSP.xlsx"

// positions is the classic column layout, used when header matching
// fails: Year, S&P 500, T-Bill, T-Bond, Baa Corporate, Real Estate,
// Gold, CPI.
var positions = map[string]int{
	"sp500":         1,
	"s&p":           1,
	"stock":         1,
	"t-bill":        2,
	"tbill":         2,
	"t.bond":        3,
	"t-bond":        3,
	"tbond":         3,
	"baa":           4,
	"baa corporate": 4,
	"corporate":     4,
	"real estate":   5,
	"realestate":    5,
	"gold":          6,
	"cpi":           7,
	"inflation":     7,
}

// Column is one asset column of the Damodaran workbook, implementing
// histret.Source.
type Column struct {
	G *histret.Getter
	// Match is the column to extract, e.g. "T.Bond", "Gold",
	// "Real Estate".
	Match string
}

func (c *Column) Name() string {
	return "damodaran-" + strings.ReplaceAll(strings.ToLower(c.Match), " ", "-")
}

func (c *Column) Requires() []histret.Capability { return nil }

func (c *Column) Fetch(ctx context.Context, req histret.Request) (histret.Series, error) {
	payload, err := c.G.Get(ctx, c.Name(), DataURL)
	if err != nil {
		return histret.Series{}, err
	}

	f, err := excelize.OpenReader(bytes.NewReader(payload))
	if err != nil {
		return histret.Series{}, histret.Errf(histret.Malformed, c.Name(), "opening Damodaran workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return histret.Series{}, histret.Errf(histret.Malformed, c.Name(), "empty Damodaran workbook")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return histret.Series{}, histret.Errf(histret.Malformed, c.Name(), "reading sheet %s: %w", sheets[0], err)
	}

	yearCol, dataCol := sniffColumns(rows, c.Match)
	if yearCol < 0 || dataCol < 0 {
		return histret.Series{}, histret.Errf(histret.Malformed, c.Name(), "could not find column %q in Damodaran data", c.Match)
	}

	values := make(map[int]float64)
	for _, row := range rows {
		if yearCol >= len(row) || dataCol >= len(row) {
			continue
		}
		year, err := strconv.Atoi(strings.TrimSpace(row[yearCol]))
		if err != nil || year < 1900 || year > 2100 {
			continue
		}
		raw := strings.TrimSpace(strings.TrimSuffix(row[dataCol], "%"))
		d, err := decimal.NewFromString(raw)
		if err != nil {
			continue
		}
		values[year] = d.InexactFloat64()
	}
	if len(values) == 0 {
		return histret.Series{}, histret.Errf(histret.NoData, c.Name(), "no annual rows for column %q", c.Match)
	}

	normalizePercent(values)

	series := histret.NewSeries(c.Name(), values).
		Since(req.StartYear).
		Before(time.Now().Year())
	if series.Len() == 0 {
		return histret.Series{}, histret.Errf(histret.NoData, c.Name(), "no complete years since %d", req.StartYear)
	}
	return series, nil
}

// sniffColumns finds the year column and the requested data column. It
// first scans for a header row matching both by name; when that fails it
// falls back to the classic positional layout.
func sniffColumns(rows [][]string, match string) (yearCol, dataCol int) {
	yearCol, dataCol = -1, -1
	want := strings.ToLower(match)

	for _, row := range rows {
		y, d := -1, -1
		for i, h := range row {
			header := strings.ToLower(strings.TrimSpace(h))
			if header == "" {
				continue
			}
			if strings.Contains(header, "year") && y < 0 {
				y = i
			}
			if strings.Contains(header, want) && d < 0 && i != y {
				d = i
			}
		}
		if y >= 0 && d >= 0 {
			return y, d
		}
	}

	// Positional fallback.
	if pos, ok := positions[want]; ok {
		return 0, pos
	}
	return -1, -1
}

// normalizePercent rescales the series in place when the values look
// percent-scaled: annual fractional returns average well below 1 in
// magnitude, percentages well above.
func normalizePercent(values map[int]float64) {
	var sum float64
	for _, v := range values {
		sum += math.Abs(v)
	}
	if sum/float64(len(values)) > 1 {
		for y := range values {
			values[y] = values[y] / 100
		}
	}
}
