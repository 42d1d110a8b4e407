package histret

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// ModelKind tags a distribution model variant.
type ModelKind string

const (
	Fixed     ModelKind = "fixed"
	Normal    ModelKind = "normal"
	LogNormal ModelKind = "lognormal"
	StudentT  ModelKind = "student-t"
)

// Model is one fitted distribution parameter set. The populated fields
// depend on Kind:
//
//	Fixed:     Rate
//	Normal:    Mean, StdDev
//	LogNormal: Mean, StdDev (of log growth multipliers)
//	StudentT:  Mean, Scale, DF
type Model struct {
	Kind   ModelKind
	Rate   float64
	Mean   float64
	StdDev float64
	Scale  float64
	DF     float64
}

// Fitting constants. Student's t with 5 degrees of freedom keeps the
// variance finite (df > 2) while still giving materially heavier tails
// than a Normal; the 5% threshold marks equity-like volatility where fat
// tails matter.
const (
	FatTailThreshold = 0.05
	StudentTDF       = 5.0
)

// StudentTScale converts a target standard deviation into the scale
// parameter of a Student's t distribution with df degrees of freedom,
// inverting Var = scale^2 * df/(df-2). It fails with
// ErrInvalidDegreesOfFreedom when df <= 2.
func StudentTScale(stdDev, df float64) (float64, error) {
	if df <= 2 {
		return 0, ErrInvalidDegreesOfFreedom
	}
	return stdDev * math.Sqrt((df-2)/df), nil
}

// Diagnostics reports non-fatal observations made while fitting.
type Diagnostics struct {
	// NonPositiveYears counts observations whose growth multiplier (1+r)
	// was not strictly positive and were therefore excluded from the
	// LogNormal fit.
	NonPositiveYears int
}

// Fit derives every eligible distribution model from the statistics. The
// four rules are evaluated independently, so a profile usually carries
// several simultaneous models; the downstream consumer picks the tail
// behavior it wants without re-deriving parameters.
//
//   - Fixed: always; rate is the geometric mean.
//   - Normal: always; arithmetic mean and sample standard deviation.
//   - LogNormal: only when at least one growth multiplier is strictly
//     positive; parameters are the mean and standard deviation of
//     log(1+r) over the positive subset. Never fabricated otherwise.
//   - StudentT: only when the standard deviation exceeds
//     FatTailThreshold; df is fixed at StudentTDF.
func Fit(st Stats) ([]Model, Diagnostics, error) {
	var diag Diagnostics

	models := []Model{
		{Kind: Fixed, Rate: st.GeometricMean},
		{Kind: Normal, Mean: st.ArithmeticMean, StdDev: st.StdDev},
	}

	var logs []float64
	for _, r := range st.Returns {
		if 1+r > 0 {
			logs = append(logs, math.Log(1+r))
		} else {
			diag.NonPositiveYears++
		}
	}
	if len(logs) > 0 {
		models = append(models, Model{
			Kind:   LogNormal,
			Mean:   stat.Mean(logs, nil),
			StdDev: stat.StdDev(logs, nil),
		})
	}

	if st.StdDev > FatTailThreshold {
		scale, err := StudentTScale(st.StdDev, StudentTDF)
		if err != nil {
			return nil, diag, err
		}
		models = append(models, Model{
			Kind:  StudentT,
			Mean:  st.ArithmeticMean,
			Scale: scale,
			DF:    StudentTDF,
		})
	}

	return models, diag, nil
}

// ModelByKind returns the model of the given kind, or false when the
// profile does not carry it.
func ModelByKind(models []Model, kind ModelKind) (Model, bool) {
	for _, m := range models {
		if m.Kind == kind {
			return m, true
		}
	}
	return Model{}, false
}
