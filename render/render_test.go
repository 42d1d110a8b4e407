package render

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"testing"

	"github.com/etnz/histret"
)

func testProfile(t *testing.T) Profile {
	t.Helper()
	values := map[int]float64{
		2000: 0.10, 2001: -0.05, 2002: 0.20, 2003: 0.08, 2004: -0.02,
		2005: 0.12, 2006: 0.07, 2007: -0.37, 2008: 0.26, 2009: 0.15,
	}
	st, err := histret.Compute("S&P 500", "US large cap stocks", histret.NewSeries("shiller-sp500", values))
	if err != nil {
		t.Fatal(err)
	}
	models, diag, err := histret.Fit(st)
	if err != nil {
		t.Fatal(err)
	}
	return Profile{Key: "SP_500", Stats: st, Models: models, Diagnostics: diag}
}

func TestFloat(t *testing.T) {
	testCases := []struct {
		value float64
		want  string
	}{
		{0.062, "0.062000"},
		{-1, "-1.000000"},
		{0.0582529, "0.058253"},
		{math.NaN(), "NaN"},
	}
	for _, tc := range testCases {
		if got := Float(tc.value); got != tc.want {
			t.Errorf("Float(%v) = %q, want %q", tc.value, got, tc.want)
		}
	}
}

// Six decimals round-trip every statistic within 1e-6.
func TestFloatRoundTrip(t *testing.T) {
	for _, v := range []float64{0.062, -0.370001, 0.1549193338482967, 1.234567891} {
		parsed, err := strconv.ParseFloat(Float(v), 64)
		if err != nil {
			t.Fatalf("Float(%v) = %q does not parse: %v", v, Float(v), err)
		}
		if math.Abs(parsed-v) > 1e-6 {
			t.Errorf("round trip of %v drifted to %v", v, parsed)
		}
	}
}

func TestReturnRows(t *testing.T) {
	returns := make([]float64, 19)
	for i := range returns {
		returns[i] = float64(i) / 100
	}
	rows := returnRows(returns)

	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3 for 19 values", len(rows))
	}
	if n := len(strings.Split(rows[0], ", ")); n != 8 {
		t.Errorf("first row holds %d values, want 8", n)
	}
	if n := len(strings.Split(rows[2], ", ")); n != 3 {
		t.Errorf("last row holds %d values, want the 3 remaining", n)
	}
}

func TestGoName(t *testing.T) {
	testCases := []struct {
		key  string
		want string
	}{
		{"SP_500", "SP500"},
		{"US_SMALL_CAP", "USSmallCap"},
		{"REITS", "REITs"},
		{"TIPS", "TIPS"},
		{"EMERGING_MARKETS", "EmergingMarkets"},
		{"US_TBILLS", "USTBills"},
	}
	for _, tc := range testCases {
		if got := goName(tc.key); got != tc.want {
			t.Errorf("goName(%q) = %q, want %q", tc.key, got, tc.want)
		}
	}
}

func TestNewDocumentSources(t *testing.T) {
	p := testProfile(t)
	doc := NewDocument([]Profile{p}, nil)

	if doc.RunID == "" {
		t.Error("RunID empty")
	}
	if len(doc.Sources) != 1 || doc.Sources[0] != "shiller-sp500" {
		t.Errorf("Sources = %v, want [shiller-sp500]", doc.Sources)
	}
}

// The same statistics come out byte-identical in every format.
func TestFormatsAgree(t *testing.T) {
	p := testProfile(t)
	doc := NewDocument([]Profile{p}, nil)
	mean := Float(p.Stats.ArithmeticMean)
	std := Float(p.Stats.StdDev)
	skew := Float(p.Stats.Skewness)

	for _, format := range []Format{JSON, CSV, Go} {
		var buf bytes.Buffer
		if err := Write(&buf, format, doc, Options{IncludeReturns: true}); err != nil {
			t.Fatalf("Write(%s) returned error: %v", format, err)
		}
		out := buf.String()
		if !strings.Contains(out, mean) {
			t.Errorf("%s output misses the arithmetic mean %s", format, mean)
		}
		if !strings.Contains(out, std) {
			t.Errorf("%s output misses the standard deviation %s", format, std)
		}
	}

	// The markdown report shows percentages for the means but keeps the
	// shared fixed-precision digits for the higher moments.
	var buf bytes.Buffer
	if err := Write(&buf, Markdown, doc, Options{}); err != nil {
		t.Fatalf("Write(markdown) returned error: %v", err)
	}
	if !strings.Contains(buf.String(), skew) {
		t.Errorf("markdown output misses the skewness %s", skew)
	}
}

func TestWriteJSONShape(t *testing.T) {
	p := testProfile(t)
	doc := NewDocument([]Profile{p}, nil)

	var buf bytes.Buffer
	if err := Write(&buf, JSON, doc, Options{IncludeReturns: true}); err != nil {
		t.Fatalf("Write(JSON) returned error: %v", err)
	}

	var parsed struct {
		RunID          string `json:"run_id"`
		Sources        []string
		ReturnProfiles map[string]struct {
			NumYears      int       `json:"num_years"`
			AnnualReturns []float64 `json:"annual_returns"`
			Models        []struct {
				Kind string `json:"kind"`
			} `json:"models"`
		} `json:"return_profiles"`
	}
	if err := json.Unmarshal(buf.Bytes(), &parsed); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}

	sp, ok := parsed.ReturnProfiles["SP_500"]
	if !ok {
		t.Fatalf("profiles = %v, want SP_500", parsed.ReturnProfiles)
	}
	if sp.NumYears != 10 || len(sp.AnnualReturns) != 10 {
		t.Errorf("num_years = %d with %d returns, want 10 and 10", sp.NumYears, len(sp.AnnualReturns))
	}
	if len(sp.Models) < 3 {
		t.Errorf("models = %v, want at least fixed, normal and lognormal", sp.Models)
	}
}

func TestWriteCSVShape(t *testing.T) {
	p := testProfile(t)
	doc := NewDocument([]Profile{p}, nil)

	var buf bytes.Buffer
	if err := Write(&buf, CSV, doc, Options{}); err != nil {
		t.Fatalf("Write(CSV) returned error: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("lines = %d, want header plus one row", len(lines))
	}
	if !strings.HasPrefix(lines[0], "key,name,source") {
		t.Errorf("header = %q, want key,name,source,...", lines[0])
	}
	if !strings.HasPrefix(lines[1], "SP_500,") {
		t.Errorf("row = %q, want SP_500 first", lines[1])
	}
}

func TestWriteGoShape(t *testing.T) {
	p := testProfile(t)
	doc := NewDocument([]Profile{p}, nil)

	var buf bytes.Buffer
	if err := Write(&buf, Go, doc, Options{IncludeReturns: true}); err != nil {
		t.Fatalf("Write(Go) returned error: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"package returns",
		"SP500Rate",
		"SP500Mean",
		"SP500StdDev",
		"SP500AnnualReturns = []float64{",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Go output misses %q", want)
		}
	}
}

func TestUnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, Format("xml"), Document{}, Options{}); err == nil {
		t.Error("Write(xml) succeeded, want error")
	}
}
