package histret

import (
	"fmt"
	"sort"
)

// Point is a single annual observation: a calendar year and the fractional
// return (or rate) observed over that year.
type Point struct {
	Year  int
	Value float64
}

// Series is an ordered annual series produced by exactly one data source.
// Years are strictly increasing, values are fractional decimals (0.07 for
// 7%), and the Source label records which provider produced it.
//
// A Series never mixes observations from more than one provider: blending
// sources would corrupt the moments computed downstream.
type Series struct {
	Source string
	Points []Point
}

// NewSeries builds a Series from a year-to-value map, sorted by year.
func NewSeries(source string, values map[int]float64) Series {
	years := make([]int, 0, len(values))
	for y := range values {
		years = append(years, y)
	}
	sort.Ints(years)
	s := Series{Source: source, Points: make([]Point, 0, len(years))}
	for _, y := range years {
		s.Points = append(s.Points, Point{Year: y, Value: values[y]})
	}
	return s
}

// Len returns the number of observations.
func (s Series) Len() int { return len(s.Points) }

// StartYear returns the first observed year, or 0 on an empty series.
func (s Series) StartYear() int {
	if len(s.Points) == 0 {
		return 0
	}
	return s.Points[0].Year
}

// EndYear returns the last observed year, or 0 on an empty series.
func (s Series) EndYear() int {
	if len(s.Points) == 0 {
		return 0
	}
	return s.Points[len(s.Points)-1].Year
}

// Values returns the observation values in year order.
func (s Series) Values() []float64 {
	vals := make([]float64, len(s.Points))
	for i, p := range s.Points {
		vals[i] = p.Value
	}
	return vals
}

// Since returns the sub-series of observations in year or later.
func (s Series) Since(year int) Series {
	out := Series{Source: s.Source}
	for _, p := range s.Points {
		if p.Year >= year {
			out.Points = append(out.Points, p)
		}
	}
	return out
}

// Before returns the sub-series of observations strictly before year.
// Adapters use it to drop the current, not-yet-complete calendar year.
func (s Series) Before(year int) Series {
	out := Series{Source: s.Source}
	for _, p := range s.Points {
		if p.Year < year {
			out.Points = append(out.Points, p)
		}
	}
	return out
}

// Validate checks the Series invariants: non-empty, provenance label set,
// and strictly increasing years.
func (s Series) Validate() error {
	if s.Source == "" {
		return fmt.Errorf("series has no provenance label")
	}
	if len(s.Points) == 0 {
		return fmt.Errorf("series %q is empty", s.Source)
	}
	for i := 1; i < len(s.Points); i++ {
		if s.Points[i].Year <= s.Points[i-1].Year {
			return fmt.Errorf("series %q: years not strictly increasing at %d", s.Source, s.Points[i].Year)
		}
	}
	return nil
}

// Request is the canonical descriptor of a fetch: an asset-class key and
// the first year of interest. Identical descriptors hash to identical
// cache keys across runs.
type Request struct {
	Asset     string
	StartYear int
}

func (r Request) String() string {
	return fmt.Sprintf("%s since %d", r.Asset, r.StartYear)
}
