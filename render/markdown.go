package render

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/etnz/histret"
)

// View models for the markdown report. All values are preformatted
// strings so the template stays purely structural.

type mdModel struct {
	Kind   string
	Params string
}

type mdProfile struct {
	Name             string
	Description      string
	Source           string
	Period           string
	ArithmeticMean   string
	GeometricMean    string
	StdDev           string
	MinMax           string
	Skewness         string
	Kurtosis         string
	Models           []mdModel
	NonPositiveYears int
}

type mdView struct {
	GeneratedAt string
	RunID       string
	Sources     string
	Profiles    []mdProfile
	Inflation   *mdProfile
}

func toMDProfile(p Profile) mdProfile {
	st := p.Stats
	mp := mdProfile{
		Name:             st.Name,
		Description:      st.Description,
		Source:           st.Source,
		Period:           fmt.Sprintf("%d to %d (%d years)", st.StartYear, st.EndYear, st.Years),
		ArithmeticMean:   pct(st.ArithmeticMean),
		GeometricMean:    pct(st.GeometricMean),
		StdDev:           pct(st.StdDev),
		MinMax:           fmt.Sprintf("%s / %s", pct(st.Min), pct(st.Max)),
		Skewness:         Float(st.Skewness),
		Kurtosis:         Float(st.Kurtosis),
		NonPositiveYears: p.Diagnostics.NonPositiveYears,
	}
	for _, m := range p.Models {
		mp.Models = append(mp.Models, mdModel{Kind: string(m.Kind), Params: modelParams(m)})
	}
	return mp
}

// pct renders a fractional return as a percentage for human reading.
func pct(v float64) string {
	return fmt.Sprintf("%.2f%%", v*100)
}

func modelParams(m histret.Model) string {
	switch m.Kind {
	case histret.Fixed:
		return fmt.Sprintf("rate=%s", Float(m.Rate))
	case histret.Normal, histret.LogNormal:
		return fmt.Sprintf("mean=%s, std=%s", Float(m.Mean), Float(m.StdDev))
	case histret.StudentT:
		return fmt.Sprintf("mean=%s, scale=%s, df=%s", Float(m.Mean), Float(m.Scale), Float(m.DF))
	}
	return ""
}

func writeMarkdown(w io.Writer, doc Document) error {
	v := mdView{
		GeneratedAt: doc.GeneratedAt.UTC().Format(time.RFC3339),
		RunID:       doc.RunID,
		Sources:     strings.Join(doc.Sources, ", "),
	}
	for _, p := range doc.Profiles {
		v.Profiles = append(v.Profiles, toMDProfile(p))
	}
	if doc.Inflation != nil {
		mp := toMDProfile(*doc.Inflation)
		v.Inflation = &mp
	}
	return renderTemplate(w, "templates/report.md.tmpl", v)
}
