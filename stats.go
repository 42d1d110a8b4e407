package histret

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Stats holds the descriptive statistics of one asset class, computed from
// an annual return series.
type Stats struct {
	Name        string
	Description string
	Source      string
	StartYear   int
	EndYear     int
	Years       int
	Returns     []float64
	// ArithmeticMean is the plain average of annual returns.
	ArithmeticMean float64
	// GeometricMean is the compounded annual growth rate,
	// (prod(1+r))^(1/n) - 1, or the sentinel -1 when the cumulative
	// product is not positive (total wipeout).
	GeometricMean float64
	// StdDev is the sample standard deviation (n-1 divisor).
	StdDev float64
	Min    float64
	Max    float64
	// Skewness is the bias-corrected sample skewness.
	Skewness float64
	// Kurtosis is excess kurtosis (normal distribution = 0).
	Kurtosis float64
}

// GeometricMean computes (prod(1+r))^(1/n) - 1 over the returns, or -1
// when the cumulative growth product is not positive.
func GeometricMean(returns []float64) float64 {
	cumulative := 1.0
	for _, r := range returns {
		cumulative *= 1 + r
	}
	if cumulative <= 0 {
		return -1
	}
	return math.Pow(cumulative, 1/float64(len(returns))) - 1
}

// Compute derives the statistics of a fetched series. It fails with
// ErrEmptySeries on a zero-length series and ErrInsufficientObservations
// when fewer than two observations are present.
//
// Compute operates on raw fractional returns; the growth-multiplier
// transformation belongs to the distribution fitter.
func Compute(name, description string, s Series) (Stats, error) {
	if s.Len() == 0 {
		return Stats{}, ErrEmptySeries
	}
	if s.Len() < 2 {
		return Stats{}, ErrInsufficientObservations
	}

	returns := s.Values()
	// gonum's Skew and ExKurtosis are the standard bias-corrected sample
	// estimators of the third and fourth standardized moments.
	return Stats{
		Name:           name,
		Description:    description,
		Source:         s.Source,
		StartYear:      s.StartYear(),
		EndYear:        s.EndYear(),
		Years:          s.Len(),
		Returns:        returns,
		ArithmeticMean: stat.Mean(returns, nil),
		GeometricMean:  GeometricMean(returns),
		StdDev:         stat.StdDev(returns, nil),
		Min:            floats.Min(returns),
		Max:            floats.Max(returns),
		Skewness:       stat.Skew(returns, nil),
		Kurtosis:       stat.ExKurtosis(returns, nil),
	}, nil
}
