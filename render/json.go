package render

import (
	"encoding/json"
	"io"
	"math"
	"time"

	"github.com/etnz/histret"
)

// jsonFloat marshals through the shared fixed-precision formatter so the
// JSON document carries exactly the same digits as every other format.
// Non-finite values (possible for higher moments on tiny samples) become
// null.
type jsonFloat float64

func (f jsonFloat) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return []byte("null"), nil
	}
	return []byte(Float(v)), nil
}

type jsonModel struct {
	Kind   string    `json:"kind"`
	Rate   jsonFloat `json:"rate,omitempty"`
	Mean   jsonFloat `json:"mean,omitempty"`
	StdDev jsonFloat `json:"std_dev,omitempty"`
	Scale  jsonFloat `json:"scale,omitempty"`
	DF     jsonFloat `json:"df,omitempty"`
}

type jsonProfile struct {
	Name             string      `json:"name"`
	Description      string      `json:"description"`
	Source           string      `json:"source"`
	StartYear        int         `json:"start_year"`
	EndYear          int         `json:"end_year"`
	NumYears         int         `json:"num_years"`
	ArithmeticMean   jsonFloat   `json:"arithmetic_mean"`
	GeometricMean    jsonFloat   `json:"geometric_mean"`
	StdDev           jsonFloat   `json:"std_dev"`
	MinReturn        jsonFloat   `json:"min_return"`
	MaxReturn        jsonFloat   `json:"max_return"`
	Skewness         jsonFloat   `json:"skewness"`
	Kurtosis         jsonFloat   `json:"kurtosis"`
	Models           []jsonModel `json:"models"`
	NonPositiveYears int         `json:"non_positive_years,omitempty"`
	AnnualReturns    []jsonFloat `json:"annual_returns,omitempty"`
}

type jsonDocument struct {
	GeneratedAt    time.Time              `json:"generated_at"`
	RunID          string                 `json:"run_id"`
	Sources        []string               `json:"sources"`
	ReturnProfiles map[string]jsonProfile `json:"return_profiles"`
	Inflation      *jsonProfile           `json:"inflation,omitempty"`
}

func toJSONProfile(p Profile, opts Options) jsonProfile {
	jp := jsonProfile{
		Name:             p.Stats.Name,
		Description:      p.Stats.Description,
		Source:           p.Stats.Source,
		StartYear:        p.Stats.StartYear,
		EndYear:          p.Stats.EndYear,
		NumYears:         p.Stats.Years,
		ArithmeticMean:   jsonFloat(p.Stats.ArithmeticMean),
		GeometricMean:    jsonFloat(p.Stats.GeometricMean),
		StdDev:           jsonFloat(p.Stats.StdDev),
		MinReturn:        jsonFloat(p.Stats.Min),
		MaxReturn:        jsonFloat(p.Stats.Max),
		Skewness:         jsonFloat(p.Stats.Skewness),
		Kurtosis:         jsonFloat(p.Stats.Kurtosis),
		NonPositiveYears: p.Diagnostics.NonPositiveYears,
	}
	for _, m := range p.Models {
		jm := jsonModel{Kind: string(m.Kind)}
		switch m.Kind {
		case histret.Fixed:
			jm.Rate = jsonFloat(m.Rate)
		case histret.Normal, histret.LogNormal:
			jm.Mean = jsonFloat(m.Mean)
			jm.StdDev = jsonFloat(m.StdDev)
		case histret.StudentT:
			jm.Mean = jsonFloat(m.Mean)
			jm.Scale = jsonFloat(m.Scale)
			jm.DF = jsonFloat(m.DF)
		}
		jp.Models = append(jp.Models, jm)
	}
	if opts.IncludeReturns {
		jp.AnnualReturns = make([]jsonFloat, len(p.Stats.Returns))
		for i, r := range p.Stats.Returns {
			jp.AnnualReturns[i] = jsonFloat(r)
		}
	}
	return jp
}

func writeJSON(w io.Writer, doc Document, opts Options) error {
	jd := jsonDocument{
		GeneratedAt:    doc.GeneratedAt,
		RunID:          doc.RunID,
		Sources:        doc.Sources,
		ReturnProfiles: make(map[string]jsonProfile, len(doc.Profiles)),
	}
	for _, p := range doc.Profiles {
		jd.ReturnProfiles[p.Key] = toJSONProfile(p, opts)
	}
	if doc.Inflation != nil {
		jp := toJSONProfile(*doc.Inflation, opts)
		jd.Inflation = &jp
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(jd)
}
