// Package shiller fetches Robert Shiller's long-run market dataset
// (Yale): monthly S&P composite prices, dividends, CPI and the long
// interest rate back to 1871. The workbook layout has shifted over the
// years, so columns are resolved through an ordered list of header
// rules with a positional fallback.
package shiller

import (
	"bytes"
	"context"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/etnz/histret"
	"github.com/xuri/excelize/v2"
)

// DataURL is Shiller's "irrational exuberance" workbook.
const DataURL = "http://www.econ.yale.edu/~shiller/data/ie_data.xlsx"

// bondDuration is the assumed duration of a long-term government bond,
// used to approximate total returns from yield moves:
// return ~= starting yield - duration * yield change.
const bondDuration = 8.0

// month is one row of the Data sheet.
type month struct {
	Year     int
	Month    int
	Price    float64
	Dividend float64
	CPI      float64
	LongRate float64
}

// columnRule maps a workbook header to one of the month fields. Rules
// are evaluated in order against the lowercased header row; the first
// match wins. fallback is the classic column position used when no
// header matches (the oldest workbook versions have terse headers).
type columnRule struct {
	field    string
	match    func(header string) bool
	fallback int
}

var columnRules = []columnRule{
	{"date", func(h string) bool { return strings.HasPrefix(h, "date") }, 0},
	{"price", func(h string) bool { return h == "p" || strings.Contains(h, "price") }, 1},
	{"dividend", func(h string) bool { return h == "d" || strings.Contains(h, "dividend") }, 2},
	{"cpi", func(h string) bool { return strings.Contains(h, "cpi") }, 4},
	{"longrate", func(h string) bool { return strings.Contains(h, "gs10") || strings.Contains(h, "rate") }, 6},
}

// resolveColumns maps each field to its column index for this workbook
// version.
func resolveColumns(headers []string) map[string]int {
	cols := make(map[string]int)
	for _, rule := range columnRules {
		cols[rule.field] = rule.fallback
		for i, h := range headers {
			if rule.match(strings.ToLower(strings.TrimSpace(h))) {
				cols[rule.field] = i
				break
			}
		}
	}
	return cols
}

// dataset downloads and parses the monthly rows of the Data sheet.
func dataset(ctx context.Context, g *histret.Getter, source string) ([]month, error) {
	payload, err := g.Get(ctx, source, DataURL)
	if err != nil {
		return nil, err
	}

	f, err := excelize.OpenReader(bytes.NewReader(payload))
	if err != nil {
		return nil, histret.Errf(histret.Malformed, source, "opening Shiller workbook: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Data")
	if err != nil {
		return nil, histret.Errf(histret.Malformed, source, "no Data sheet in Shiller workbook: %w", err)
	}

	// The sheet opens with several explanation rows; the header row is
	// the one whose first cell starts with "Date".
	headerIdx := -1
	for i, row := range rows {
		if len(row) > 0 && strings.HasPrefix(strings.ToLower(strings.TrimSpace(row[0])), "date") {
			headerIdx = i
			break
		}
	}
	if headerIdx < 0 {
		return nil, histret.Errf(histret.Malformed, source, "no header row in Shiller Data sheet")
	}
	cols := resolveColumns(rows[headerIdx])

	var months []month
	for _, row := range rows[headerIdx+1:] {
		m, ok := parseRow(row, cols)
		if !ok {
			continue
		}
		months = append(months, m)
	}
	if len(months) == 0 {
		return nil, histret.Errf(histret.Malformed, source, "no monthly rows in Shiller Data sheet")
	}
	return months, nil
}

// parseRow converts one sheet row. The date cell encodes year and month
// as a decimal fraction: 1871.01 is January 1871, 1871.1 is October.
func parseRow(row []string, cols map[string]int) (month, bool) {
	dateCell := cell(row, cols["date"])
	if dateCell == "" {
		return month{}, false
	}
	date, err := strconv.ParseFloat(dateCell, 64)
	if err != nil {
		return month{}, false
	}
	year := int(date)
	mm := int(math.Round((date - float64(year)) * 100))
	if mm == 1 && strings.HasSuffix(dateCell, ".1") {
		// "1871.1" is October, not January: the trailing zero of .10 is
		// lost in the cell text.
		mm = 10
	}
	if year < 1800 || mm < 1 || mm > 12 {
		return month{}, false
	}

	m := month{Year: year, Month: mm}
	m.Price, _ = number(cell(row, cols["price"]))
	m.Dividend, _ = number(cell(row, cols["dividend"]))
	m.CPI, _ = number(cell(row, cols["cpi"]))
	m.LongRate, _ = number(cell(row, cols["longrate"]))
	if m.Price == 0 && m.CPI == 0 && m.LongRate == 0 {
		return month{}, false
	}
	return m, true
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func number(s string) (float64, error) {
	return strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
}

// years groups months by year, in ascending year order.
func years(months []month) (keys []int, byYear map[int][]month) {
	byYear = make(map[int][]month)
	for _, m := range months {
		byYear[m.Year] = append(byYear[m.Year], m)
	}
	for y := range byYear {
		keys = append(keys, y)
	}
	sort.Ints(keys)
	return keys, byYear
}

// SP500 is the S&P 500 total return source. The total return for a year
// combines the January-to-January price change with the average dividend
// yield over the year.
type SP500 struct {
	G *histret.Getter
}

func (s *SP500) Name() string                   { return "shiller-sp500" }
func (s *SP500) Requires() []histret.Capability { return nil }

func (s *SP500) Fetch(ctx context.Context, req histret.Request) (histret.Series, error) {
	months, err := dataset(ctx, s.G, s.Name())
	if err != nil {
		return histret.Series{}, err
	}

	keys, byYear := years(months)
	janPrice := make(map[int]float64)
	divYield := make(map[int]float64)
	for _, y := range keys {
		var sumP, sumD float64
		var n int
		for _, m := range byYear[y] {
			if m.Month == 1 && m.Price > 0 {
				janPrice[y] = m.Price
			}
			if m.Price > 0 && m.Dividend > 0 {
				sumP += m.Price
				sumD += m.Dividend
				n++
			}
		}
		if n > 0 {
			divYield[y] = (sumD / float64(n)) / (sumP / float64(n))
		}
	}

	values := make(map[int]float64)
	for _, y := range keys {
		p0, ok0 := janPrice[y-1]
		p1, ok1 := janPrice[y]
		dy, okd := divYield[y]
		if !ok0 || !ok1 || !okd {
			continue
		}
		values[y] = p1/p0 - 1 + dy
	}

	return finish(s.Name(), values, req)
}

// Inflation is the CPI inflation source: December-over-December change
// of the CPI column.
type Inflation struct {
	G *histret.Getter
}

func (i *Inflation) Name() string                   { return "shiller-inflation" }
func (i *Inflation) Requires() []histret.Capability { return nil }

func (i *Inflation) Fetch(ctx context.Context, req histret.Request) (histret.Series, error) {
	months, err := dataset(ctx, i.G, i.Name())
	if err != nil {
		return histret.Series{}, err
	}

	keys, byYear := years(months)
	yearEnd := make(map[int]float64)
	for _, y := range keys {
		for _, m := range byYear[y] {
			if m.CPI > 0 {
				yearEnd[y] = m.CPI // last month with a CPI value wins
			}
		}
	}

	values := make(map[int]float64)
	for _, y := range keys {
		prev, ok0 := yearEnd[y-1]
		cur, ok1 := yearEnd[y]
		if !ok0 || !ok1 {
			continue
		}
		values[y] = cur/prev - 1
	}

	return finish(i.Name(), values, req)
}

// Bonds estimates long-term government bond total returns from the long
// interest rate with a duration-based approximation. The fixed duration
// constant is a modeling choice of this adapter, not a property of the
// source data.
type Bonds struct {
	G *histret.Getter
}

func (b *Bonds) Name() string                   { return "shiller-bonds" }
func (b *Bonds) Requires() []histret.Capability { return nil }

func (b *Bonds) Fetch(ctx context.Context, req histret.Request) (histret.Series, error) {
	months, err := dataset(ctx, b.G, b.Name())
	if err != nil {
		return histret.Series{}, err
	}

	keys, byYear := years(months)
	avgYield := make(map[int]float64)
	for _, y := range keys {
		var sum float64
		var n int
		for _, m := range byYear[y] {
			if m.LongRate > 0 {
				sum += m.LongRate
				n++
			}
		}
		if n > 0 {
			avgYield[y] = sum / float64(n) / 100 // percent to fraction
		}
	}

	values := make(map[int]float64)
	for _, y := range keys {
		prev, ok0 := avgYield[y-1]
		cur, ok1 := avgYield[y]
		if !ok0 || !ok1 {
			continue
		}
		// Price falls when yields rise.
		values[y] = prev - bondDuration*(cur-prev)
	}

	return finish(b.Name(), values, req)
}

// finish applies the common request filtering to a computed value map.
func finish(source string, values map[int]float64, req histret.Request) (histret.Series, error) {
	series := histret.NewSeries(source, values).
		Since(req.StartYear).
		Before(time.Now().Year())
	if series.Len() == 0 {
		return histret.Series{}, histret.Errf(histret.NoData, source, "no complete years since %d", req.StartYear)
	}
	return series, nil
}
