package render

import (
	"encoding/csv"
	"io"
	"strconv"
)

var csvHeader = []string{
	"key",
	"name",
	"source",
	"start_year",
	"end_year",
	"num_years",
	"arithmetic_mean",
	"geometric_mean",
	"std_dev",
	"min_return",
	"max_return",
	"skewness",
	"kurtosis",
	"models",
}

func csvRow(p Profile) []string {
	st := p.Stats
	models := ""
	for i, m := range p.Models {
		if i > 0 {
			models += ";"
		}
		models += string(m.Kind)
	}
	return []string{
		p.Key,
		st.Name,
		st.Source,
		strconv.Itoa(st.StartYear),
		strconv.Itoa(st.EndYear),
		strconv.Itoa(st.Years),
		Float(st.ArithmeticMean),
		Float(st.GeometricMean),
		Float(st.StdDev),
		Float(st.Min),
		Float(st.Max),
		Float(st.Skewness),
		Float(st.Kurtosis),
		models,
	}
}

func writeCSV(w io.Writer, doc Document) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, p := range doc.Profiles {
		if err := cw.Write(csvRow(p)); err != nil {
			return err
		}
	}
	if doc.Inflation != nil {
		if err := cw.Write(csvRow(*doc.Inflation)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
