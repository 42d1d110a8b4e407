package histret

import (
	"context"

	"github.com/sirupsen/logrus"
)

// Capability names an optional runtime dependency a source may require.
// Capabilities are resolved once at startup into a Registry; the
// orchestrator filters candidates against it instead of letting each
// adapter discover a missing credential mid-run.
type Capability string

// CapFREDKey is granted when a FRED API key is configured.
const CapFREDKey Capability = "fred-api-key"

// Registry is the set of capabilities available to this run.
type Registry struct {
	available map[Capability]bool
}

// NewRegistry returns an empty capability registry.
func NewRegistry() *Registry {
	return &Registry{available: make(map[Capability]bool)}
}

// Grant marks a capability as available.
func (r *Registry) Grant(c Capability) { r.available[c] = true }

// Has reports whether a capability is available.
func (r *Registry) Has(c Capability) bool { return r.available[c] }

// Missing returns the first required capability that is not available,
// or "" when all are.
func (r *Registry) Missing(required []Capability) Capability {
	for _, c := range required {
		if !r.available[c] {
			return c
		}
	}
	return ""
}

// Source is the adapter contract every data provider implements.
//
// Fetch must consult the cache store before any network access, normalize
// percentage-scaled values to fractional decimals, exclude the current
// (not yet complete) calendar year, and fail with a *FetchError.
type Source interface {
	// Name is the provenance label recorded on fetched series and traces.
	Name() string
	// Requires lists the capabilities this source needs.
	Requires() []Capability
	// Fetch returns the annual series for the request.
	Fetch(ctx context.Context, req Request) (Series, error)
}

// Result is a successful fallback resolution: the winning series, its
// provenance, and the ordered failures that preceded the success.
type Result struct {
	Series     Series
	Provenance string
	// Trace lists the candidates tried before the winner, in order.
	Trace []Attempt
}

// chainState is the explicit state of one fallback iteration:
// pending -> trying(i) -> succeeded | trying(i+1) -> ... -> failed.
type chainState int

const (
	statePending chainState = iota
	stateTrying
	stateSucceeded
	stateFailed
)

func (s chainState) String() string {
	switch s {
	case statePending:
		return "pending"
	case stateTrying:
		return "trying"
	case stateSucceeded:
		return "succeeded"
	case stateFailed:
		return "failed"
	}
	return "unknown"
}

// chain tracks the progress of one fallback resolution.
type chain struct {
	asset string
	state chainState
	trace []Attempt
}

func (c *chain) trying(source string) {
	c.state = stateTrying
	logrus.Debugf("chain %s: %s %s", c.asset, c.state, source)
}

func (c *chain) failed(source string, err error) {
	c.trace = append(c.trace, Attempt{Source: source, Err: err})
}

func (c *chain) succeed() {
	c.state = stateSucceeded
}

func (c *chain) exhausted() *ChainError {
	c.state = stateFailed
	return &ChainError{Asset: c.asset, Attempts: c.trace}
}

// Orchestrator drives the per-asset fallback chain: candidates are tried
// strictly in order, the first success short-circuits, and every failure
// is recorded. Sources are never merged or interpolated across each
// other, so for identical inputs and cache state the selected source is
// deterministic.
type Orchestrator struct {
	caps *Registry
}

// NewOrchestrator returns an orchestrator filtering candidates against
// the given capability registry.
func NewOrchestrator(caps *Registry) *Orchestrator {
	return &Orchestrator{caps: caps}
}

// Fetch resolves a request against an ordered candidate list. On success
// the result carries the winning series and the trace of prior failures;
// when every candidate fails it returns a *ChainError with the full
// ordered trace.
func (o *Orchestrator) Fetch(ctx context.Context, req Request, candidates []Source) (Result, error) {
	c := &chain{asset: req.Asset, state: statePending}

	for _, src := range candidates {
		c.trying(src.Name())

		if missing := o.caps.Missing(src.Requires()); missing != "" {
			c.failed(src.Name(), Errf(NotConfigured, src.Name(), "capability %s unavailable", missing))
			continue
		}

		logrus.Infof("fetching %s from %s", req.Asset, src.Name())
		series, err := src.Fetch(ctx, req)
		if err != nil {
			logrus.Debugf("%s failed for %s: %v", src.Name(), req.Asset, err)
			c.failed(src.Name(), err)
			continue
		}
		if err := series.Validate(); err != nil {
			// A source returning an invalid series on success is a bug in
			// the adapter, surfaced as a malformed failure.
			c.failed(src.Name(), Errf(Malformed, src.Name(), "invalid series: %v", err))
			continue
		}

		c.succeed()
		return Result{Series: series, Provenance: src.Name(), Trace: c.trace}, nil
	}

	return Result{}, c.exhausted()
}
