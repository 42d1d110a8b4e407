// Command csvstats computes the descriptive statistics and distribution
// models of a column of annual returns read from a CSV file. It is a
// small companion to hrf for data that comes from a spreadsheet instead
// of a live source.
//
//	csvstats -column return data.csv
//	csvstats < returns.csv
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/etnz/histret"
	"github.com/etnz/histret/render"
)

var (
	column    = flag.String("column", "", "column name or zero-based index holding the returns (default: first column)")
	firstYear = flag.Int("first-year", 1, "year assigned to the first row")
)

func main() {
	flag.Parse()

	in := io.Reader(os.Stdin)
	name := "stdin"
	if flag.NArg() == 1 {
		f, err := os.Open(flag.Arg(0))
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		defer f.Close()
		in, name = f, flag.Arg(0)
	} else if flag.NArg() > 1 {
		fmt.Fprintln(os.Stderr, "at most one input file expected")
		os.Exit(2)
	}

	returns, err := read(in, *column)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	values := make(map[int]float64, len(returns))
	for i, r := range returns {
		values[*firstYear+i] = r
	}
	series := histret.NewSeries(name, values)

	st, err := histret.Compute(name, "", series)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	models, diag, err := histret.Fit(st)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	fmt.Printf("observations      %d\n", st.Years)
	fmt.Printf("arithmetic mean   %s\n", render.Float(st.ArithmeticMean))
	fmt.Printf("geometric mean    %s\n", render.Float(st.GeometricMean))
	fmt.Printf("std dev           %s\n", render.Float(st.StdDev))
	fmt.Printf("min / max         %s / %s\n", render.Float(st.Min), render.Float(st.Max))
	fmt.Printf("skewness          %s\n", render.Float(st.Skewness))
	fmt.Printf("excess kurtosis   %s\n", render.Float(st.Kurtosis))
	for _, m := range models {
		switch m.Kind {
		case histret.Fixed:
			fmt.Printf("fixed             rate=%s\n", render.Float(m.Rate))
		case histret.Normal:
			fmt.Printf("normal            mean=%s std=%s\n", render.Float(m.Mean), render.Float(m.StdDev))
		case histret.LogNormal:
			fmt.Printf("lognormal         mean=%s std=%s\n", render.Float(m.Mean), render.Float(m.StdDev))
		case histret.StudentT:
			fmt.Printf("student-t         mean=%s scale=%s df=%s\n", render.Float(m.Mean), render.Float(m.Scale), render.Float(m.DF))
		}
	}
	if diag.NonPositiveYears > 0 {
		fmt.Printf("note: %d year(s) excluded from the lognormal fit\n", diag.NonPositiveYears)
	}

	fmt.Println()
	histogram(os.Stdout, returns)
}

// histogram prints a coarse 10-bin distribution of the returns.
func histogram(w io.Writer, returns []float64) {
	const bins = 10
	min, max := returns[0], returns[0]
	for _, r := range returns {
		if r < min {
			min = r
		}
		if r > max {
			max = r
		}
	}
	if min == max {
		fmt.Fprintf(w, "all observations equal %s\n", render.Float(min))
		return
	}

	width := (max - min) / bins
	counts := make([]int, bins)
	for _, r := range returns {
		i := int((r - min) / width)
		if i >= bins {
			i = bins - 1
		}
		counts[i]++
	}
	for i, n := range counts {
		lo := min + float64(i)*width
		fmt.Fprintf(w, "%9.4f .. %9.4f  %s (%d)\n", lo, lo+width, strings.Repeat("#", n), n)
	}
}

// read extracts the requested column as floats. A non-numeric first row
// is treated as a header; selecting a column by name requires one.
func read(in io.Reader, column string) ([]float64, error) {
	r := csv.NewReader(in)
	r.TrimLeadingSpace = true
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading csv: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("empty input")
	}

	col := 0
	start := 0
	if i, err := strconv.Atoi(column); err == nil && column != "" {
		col = i
	} else if column != "" {
		for j, h := range rows[0] {
			if strings.EqualFold(strings.TrimSpace(h), column) {
				col, start = j, 1
				break
			}
		}
		if start == 0 {
			return nil, fmt.Errorf("column %q not found in header", column)
		}
	}
	if start == 0 && len(rows) > 0 && col < len(rows[0]) {
		if _, err := strconv.ParseFloat(strings.TrimSpace(rows[0][col]), 64); err != nil {
			start = 1
		}
	}

	var returns []float64
	for _, row := range rows[start:] {
		if col >= len(row) {
			return nil, fmt.Errorf("row has no column %d", col)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(row[col]), 64)
		if err != nil {
			return nil, fmt.Errorf("parsing %q: %w", row[col], err)
		}
		returns = append(returns, v)
	}
	if len(returns) == 0 {
		return nil, fmt.Errorf("no data rows")
	}
	return returns, nil
}
