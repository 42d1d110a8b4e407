package render

import (
	"embed"
	"fmt"
	"io"
	"io/fs"
	"strings"
	"text/template"
	"time"

	"github.com/etnz/histret"
)

//go:embed templates/*.tmpl
var templates embed.FS

// renderTemplate parses one embedded template file and executes it with
// the given view model.
func renderTemplate(w io.Writer, file string, data any) error {
	content, err := fs.ReadFile(templates, file)
	if err != nil {
		return fmt.Errorf("reading template %q: %w", file, err)
	}
	tmpl, err := template.New(file).Parse(string(content))
	if err != nil {
		return fmt.Errorf("parsing template %q: %w", file, err)
	}
	if err := tmpl.Execute(w, data); err != nil {
		return fmt.Errorf("executing template %q: %w", file, err)
	}
	return nil
}

// View models for the Go source output. Every float is preformatted so
// the template stays purely structural.

type goFixed struct {
	Name    string
	Rate    string
	Comment string
}

type goPair struct {
	Name   string
	Mean   string
	StdDev string
}

type goStudent struct {
	Name  string
	Mean  string
	Scale string
	DF    string
}

type goSeries struct {
	Name    string
	Comment string
	Rows    []string
}

type goView struct {
	GeneratedAt string
	RunID       string
	Sources     string
	Fixed       []goFixed
	Normal      []goPair
	LogNormal   []goPair
	StudentT    []goStudent
	Series      []goSeries
}

func toGoView(doc Document, opts Options) goView {
	v := goView{
		GeneratedAt: doc.GeneratedAt.UTC().Format(time.RFC3339),
		RunID:       doc.RunID,
		Sources:     strings.Join(doc.Sources, ", "),
	}
	profiles := doc.Profiles
	if doc.Inflation != nil {
		profiles = append(append([]Profile{}, profiles...), *doc.Inflation)
	}
	for _, p := range profiles {
		name := goName(p.Key)
		span := fmt.Sprintf("%s, %d-%d", p.Stats.Name, p.Stats.StartYear, p.Stats.EndYear)
		if m, ok := histret.ModelByKind(p.Models, histret.Fixed); ok {
			v.Fixed = append(v.Fixed, goFixed{Name: name, Rate: Float(m.Rate), Comment: span})
		}
		if m, ok := histret.ModelByKind(p.Models, histret.Normal); ok {
			v.Normal = append(v.Normal, goPair{Name: name, Mean: Float(m.Mean), StdDev: Float(m.StdDev)})
		}
		if m, ok := histret.ModelByKind(p.Models, histret.LogNormal); ok {
			v.LogNormal = append(v.LogNormal, goPair{Name: name, Mean: Float(m.Mean), StdDev: Float(m.StdDev)})
		}
		if m, ok := histret.ModelByKind(p.Models, histret.StudentT); ok {
			v.StudentT = append(v.StudentT, goStudent{Name: name, Mean: Float(m.Mean), Scale: Float(m.Scale), DF: Float(m.DF)})
		}
		if opts.IncludeReturns {
			v.Series = append(v.Series, goSeries{Name: name, Comment: span, Rows: returnRows(p.Stats.Returns)})
		}
	}
	return v
}

func writeGo(w io.Writer, doc Document, opts Options) error {
	return renderTemplate(w, "templates/gosource.tmpl", toGoView(doc, opts))
}
