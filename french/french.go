// Package french fetches annual factor returns from the Kenneth French
// Data Library (Dartmouth). Files are served as zip archives containing
// a single loosely formatted CSV: prose headers, a monthly section, then
// an annual section whose rows start with a 4-digit year. Values are
// percentages.
package french

import (
	"archive/zip"
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/etnz/histret"
	"github.com/shopspring/decimal"
)

// BaseURL is the French data library FTP mirror.
const BaseURL = "https://mba.tuck.dartmouth.edu/pages/faculty/ken.french/ftp/"

const (
	factorsFile   = "F-F_Research_Data_Factors_CSV.zip"
	developedFile = "Developed_ex_US_3_Factors_CSV.zip"
	emergingFile  = "Emerging_5_Factors_CSV.zip"
)

// Client downloads and unpacks French data archives through the shared
// cache-aware getter.
type Client struct {
	g *histret.Getter
}

// NewClient returns a French data library client.
func NewClient(g *histret.Getter) *Client { return &Client{g: g} }

// archiveCSV downloads a zip archive and returns the content of the CSV
// file inside (the archives hold exactly one).
func (c *Client) archiveCSV(ctx context.Context, source, filename string) (string, error) {
	payload, err := c.g.Get(ctx, source, BaseURL+filename)
	if err != nil {
		return "", err
	}
	zr, err := zip.NewReader(bytes.NewReader(payload), int64(len(payload)))
	if err != nil {
		return "", histret.Errf(histret.Malformed, source, "opening zip archive %s: %w", filename, err)
	}
	for _, f := range zr.File {
		if !strings.HasSuffix(strings.ToLower(f.Name), ".csv") {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", histret.Errf(histret.Malformed, source, "opening %s in %s: %w", f.Name, filename, err)
		}
		defer rc.Close()
		content, err := io.ReadAll(rc)
		if err != nil {
			return "", histret.Errf(histret.Malformed, source, "reading %s in %s: %w", f.Name, filename, err)
		}
		return string(content), nil
	}
	return "", histret.Errf(histret.Malformed, source, "no CSV file found in %s", filename)
}

// annualRows extracts the annual-data rows: lines whose first field is a
// 4-digit year between 1900 and 2100, with at least minFields fields.
// Rows are keyed by year; fields keep their position (field 0 is the
// year itself, matching the file layout).
func annualRows(content string, minFields int) map[int][]string {
	rows := make(map[int][]string)
	scanner := bufio.NewScanner(strings.NewReader(content))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Split(line, ",")
		for i := range fields {
			fields[i] = strings.TrimSpace(fields[i])
		}
		if len(fields) < minFields {
			continue
		}
		if len(fields[0]) != 4 {
			// Monthly rows carry YYYYMM stamps; only annual rows have a
			// bare 4-digit year.
			continue
		}
		year, err := strconv.Atoi(fields[0])
		if err != nil || year < 1900 || year > 2100 {
			continue
		}
		rows[year] = fields
	}
	return rows
}

// pct converts a percentage field ("11.65") to a fractional decimal.
// Going through decimal avoids picking up float artifacts on the way.
func pct(field string) (float64, error) {
	d, err := decimal.NewFromString(field)
	if err != nil {
		return 0, err
	}
	return d.Div(decimal.NewFromInt(100)).InexactFloat64(), nil
}

// factorSource is one French series: an archive, a minimum field count,
// and a row-to-return extractor. It implements histret.Source.
type factorSource struct {
	c         *Client
	name      string
	file      string
	minFields int
	value     func(fields []string) (float64, error)
	// keep drops obviously bad rows before aggregation (nil keeps all).
	keep func(total float64) bool
	// checkCumulative rejects the whole series when the cumulative
	// growth product is not positive (bad upstream data).
	checkCumulative bool
}

func (s *factorSource) Name() string                   { return s.name }
func (s *factorSource) Requires() []histret.Capability { return nil }

func (s *factorSource) Fetch(ctx context.Context, req histret.Request) (histret.Series, error) {
	content, err := s.c.archiveCSV(ctx, s.name, s.file)
	if err != nil {
		return histret.Series{}, err
	}

	values := make(map[int]float64)
	for year, fields := range annualRows(content, s.minFields) {
		v, err := s.value(fields)
		if err != nil {
			// Annual sections end with summary rows (averages) that do
			// not parse; skip them.
			continue
		}
		if s.keep != nil && !s.keep(v) {
			continue
		}
		values[year] = v
	}

	series := histret.NewSeries(s.name, values).
		Since(req.StartYear).
		Before(time.Now().Year())
	if series.Len() == 0 {
		return histret.Series{}, histret.Errf(histret.NoData, s.name, "no annual data in %s since %d", s.file, req.StartYear)
	}

	if s.checkCumulative && histret.GeometricMean(series.Values()) == -1 {
		return histret.Series{}, histret.Errf(histret.Malformed, s.name, "%s produces a non-positive cumulative growth product", s.file)
	}
	return series, nil
}

// Market returns the US total market source: Mkt-RF plus RF from the
// Fama-French research factors.
func Market(c *Client) histret.Source {
	return &factorSource{
		c: c, name: "french-market", file: factorsFile, minFields: 5,
		value: func(f []string) (float64, error) { return sum(f, 1, 4) },
	}
}

// SMB returns the Small-Minus-Big factor source: the return premium of
// small stocks over large stocks.
func SMB(c *Client) histret.Source {
	return &factorSource{
		c: c, name: "french-smb", file: factorsFile, minFields: 3,
		value: func(f []string) (float64, error) { return sum(f, 2) },
	}
}

// SmallCap returns the US small cap source, approximated as market
// return plus the SMB factor.
func SmallCap(c *Client) histret.Source {
	return &factorSource{
		c: c, name: "french-smallcap", file: factorsFile, minFields: 5,
		value: func(f []string) (float64, error) { return sum(f, 1, 2, 4) },
	}
}

// RiskFree returns the T-bill (risk-free rate) source.
func RiskFree(c *Client) histret.Source {
	return &factorSource{
		c: c, name: "french-riskfree", file: factorsFile, minFields: 5,
		value: func(f []string) (float64, error) { return sum(f, 4) },
	}
}

// Developed returns the developed-markets-ex-US source.
func Developed(c *Client) histret.Source {
	return &factorSource{
		c: c, name: "french-developed", file: developedFile, minFields: 5,
		value: func(f []string) (float64, error) { return sum(f, 1, 4) },
	}
}

// Emerging returns the emerging-markets source. The upstream file has
// known bad rows: total returns below -90% are dropped, and a series
// whose cumulative growth product is not positive is rejected outright.
func Emerging(c *Client) histret.Source {
	return &factorSource{
		c: c, name: "french-emerging", file: emergingFile, minFields: 6,
		value:           func(f []string) (float64, error) { return sum(f, 1, 5) },
		keep:            func(total float64) bool { return total > -0.90 },
		checkCumulative: true,
	}
}

// sum adds the percentage fields at the given indexes, as fractions.
func sum(fields []string, indexes ...int) (float64, error) {
	var total float64
	for _, i := range indexes {
		if i >= len(fields) {
			return 0, fmt.Errorf("row has no field %d", i)
		}
		v, err := pct(fields[i])
		if err != nil {
			return 0, err
		}
		total += v
	}
	return total, nil
}
