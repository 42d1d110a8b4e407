package histret

import (
	"errors"
	"math"
	"testing"
)

func almost(got, want, tol float64) bool {
	return math.Abs(got-want) <= tol
}

func seriesOf(returns ...float64) Series {
	values := make(map[int]float64, len(returns))
	for i, r := range returns {
		values[2000+i] = r
	}
	return NewSeries("test", values)
}

func TestGeometricMean(t *testing.T) {
	testCases := []struct {
		name    string
		returns []float64
		want    float64
	}{
		{"Single Year", []float64{0.10}, 0.10},
		{"Constant Returns", []float64{0.10, 0.10, 0.10}, 0.10},
		{"Mixed Returns", []float64{0.10, -0.05, 0.20, 0.08, -0.02}, 0.058253},
		{"Total Loss", []float64{0.50, -1.0, 0.30}, -1},
		{"Below Total Loss", []float64{-1.5, 0.30}, -1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := GeometricMean(tc.returns)
			if !almost(got, tc.want, 1e-5) {
				t.Errorf("GeometricMean(%v) = %v, want %v", tc.returns, got, tc.want)
			}
		})
	}
}

// Compounding at the geometric mean for n years reproduces the product
// of the growth multipliers.
func TestGeometricMeanCompounds(t *testing.T) {
	returns := []float64{0.10, -0.05, 0.20, 0.08, -0.02}

	g := GeometricMean(returns)
	compounded := math.Pow(1+g, float64(len(returns)))
	product := 1.0
	for _, r := range returns {
		product *= 1 + r
	}

	if !almost(compounded, product, 1e-9) {
		t.Errorf("(1+g)^n = %v, want product %v", compounded, product)
	}
}

func TestCompute(t *testing.T) {
	st, err := Compute("Test Asset", "a test series", seriesOf(0.10, -0.05, 0.20, 0.08, -0.02))
	if err != nil {
		t.Fatalf("Compute() returned error: %v", err)
	}

	if st.Name != "Test Asset" || st.Source != "test" {
		t.Errorf("identity = %q from %q, want Test Asset from test", st.Name, st.Source)
	}
	if st.StartYear != 2000 || st.EndYear != 2004 || st.Years != 5 {
		t.Errorf("period = %d-%d (%d years), want 2000-2004 (5 years)", st.StartYear, st.EndYear, st.Years)
	}
	if !almost(st.ArithmeticMean, 0.062, 1e-9) {
		t.Errorf("ArithmeticMean = %v, want 0.062", st.ArithmeticMean)
	}
	if !almost(st.GeometricMean, 0.058253, 1e-5) {
		t.Errorf("GeometricMean = %v, want ~0.058253", st.GeometricMean)
	}
	if !almost(st.StdDev, 0.100100, 1e-5) {
		t.Errorf("StdDev = %v, want ~0.100100", st.StdDev)
	}
	if !almost(st.Min, -0.05, 1e-12) || !almost(st.Max, 0.20, 1e-12) {
		t.Errorf("Min/Max = %v/%v, want -0.05/0.20", st.Min, st.Max)
	}
}

func TestComputeZeroVariance(t *testing.T) {
	st, err := Compute("Flat", "", seriesOf(0.10, 0.10, 0.10))
	if err != nil {
		t.Fatalf("Compute() returned error: %v", err)
	}
	if st.StdDev != 0 {
		t.Errorf("StdDev = %v, want 0", st.StdDev)
	}
	if !almost(st.ArithmeticMean, 0.10, 1e-12) || !almost(st.GeometricMean, 0.10, 1e-12) {
		t.Errorf("means = %v/%v, want 0.10/0.10", st.ArithmeticMean, st.GeometricMean)
	}
}

func TestComputeErrors(t *testing.T) {
	if _, err := Compute("Empty", "", Series{Source: "test"}); !errors.Is(err, ErrEmptySeries) {
		t.Errorf("empty series error = %v, want ErrEmptySeries", err)
	}
	if _, err := Compute("One", "", seriesOf(0.10)); !errors.Is(err, ErrInsufficientObservations) {
		t.Errorf("single observation error = %v, want ErrInsufficientObservations", err)
	}
}

func TestComputeReturnsInYearOrder(t *testing.T) {
	values := map[int]float64{2003: 0.3, 2001: 0.1, 2002: 0.2}
	st, err := Compute("Ordered", "", NewSeries("test", values))
	if err != nil {
		t.Fatalf("Compute() returned error: %v", err)
	}
	want := []float64{0.1, 0.2, 0.3}
	for i, r := range st.Returns {
		if r != want[i] {
			t.Fatalf("Returns = %v, want %v", st.Returns, want)
		}
	}
}
