// Package render serializes a run's profiles (statistics, fitted
// distribution models, raw annual series) into one of several textual
// output formats. The statistics are byte-for-byte identical across
// formats: every float goes through the same fixed-precision formatter,
// only the surrounding syntax differs.
package render

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/etnz/histret"
	"github.com/google/uuid"
)

// Format selects the output syntax.
type Format string

const (
	// JSON is a structured document: provenance list plus one profile
	// record per asset class and an optional inflation record.
	JSON Format = "json"
	// CSV is a tabular form: one header row, one data row per asset,
	// plus an inflation row.
	CSV Format = "csv"
	// Go emits declarative constant blocks grouped by distribution kind,
	// ready to paste into the downstream simulation engine.
	Go Format = "go"
	// Markdown is a human-readable report.
	Markdown Format = "markdown"
)

// Options tunes the output.
type Options struct {
	// IncludeReturns adds the raw annual series (for bootstrap
	// resampling) to formats that support it.
	IncludeReturns bool
}

// Profile is one asset class ready for export.
type Profile struct {
	// Key is the stable asset identifier (e.g. SP_500).
	Key         string
	Stats       histret.Stats
	Models      []histret.Model
	Diagnostics histret.Diagnostics
}

// Document is a whole run: every profiled asset class, the optional
// inflation profile, and run metadata.
type Document struct {
	GeneratedAt time.Time
	RunID       string
	// Sources lists the distinct provenance labels that contributed.
	Sources   []string
	Profiles  []Profile
	Inflation *Profile
}

// NewDocument assembles a document, stamping generation time, a fresh
// run id, and the sorted distinct provenance list.
func NewDocument(profiles []Profile, inflation *Profile) Document {
	seen := make(map[string]bool)
	for _, p := range profiles {
		seen[p.Stats.Source] = true
	}
	if inflation != nil {
		seen[inflation.Stats.Source] = true
	}
	sources := make([]string, 0, len(seen))
	for s := range seen {
		sources = append(sources, s)
	}
	sort.Strings(sources)

	return Document{
		GeneratedAt: time.Now(),
		RunID:       uuid.NewString(),
		Sources:     sources,
		Profiles:    profiles,
		Inflation:   inflation,
	}
}

// Write renders the document in the requested format.
func Write(w io.Writer, format Format, doc Document, opts Options) error {
	switch format {
	case JSON:
		return writeJSON(w, doc, opts)
	case CSV:
		return writeCSV(w, doc)
	case Go:
		return writeGo(w, doc, opts)
	case Markdown:
		return writeMarkdown(w, doc)
	}
	return fmt.Errorf("unknown output format %q", format)
}

// Float is the shared fixed-precision formatter: 6 decimals, enough to
// round-trip every statistic within 1e-6.
func Float(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	return strconv.FormatFloat(v, 'f', 6, 64)
}

// returnRows chunks the raw annual series into fixed-width rows of 8
// values for array emission.
func returnRows(returns []float64) []string {
	const width = 8
	var rows []string
	for i := 0; i < len(returns); i += width {
		end := i + width
		if end > len(returns) {
			end = len(returns)
		}
		cells := make([]string, 0, width)
		for _, r := range returns[i:end] {
			cells = append(cells, strconv.FormatFloat(r, 'f', 4, 64))
		}
		rows = append(rows, strings.Join(cells, ", "))
	}
	return rows
}

// initialisms kept verbatim when deriving Go identifiers from asset
// keys.
var initialisms = map[string]string{
	"US":     "US",
	"SP":     "SP",
	"TIPS":   "TIPS",
	"REITS":  "REITs",
	"TBILLS": "TBills",
	"SMB":    "SMB",
}

// goName converts an asset key (SP_500) into a Go identifier prefix
// (SP500).
func goName(key string) string {
	var b strings.Builder
	for _, token := range strings.Split(key, "_") {
		if token == "" {
			continue
		}
		if fixed, ok := initialisms[token]; ok {
			b.WriteString(fixed)
			continue
		}
		if token[0] >= '0' && token[0] <= '9' {
			b.WriteString(token)
			continue
		}
		b.WriteString(strings.ToUpper(token[:1]))
		b.WriteString(strings.ToLower(token[1:]))
	}
	return b.String()
}
