package histret

import (
	"context"
	"errors"
	"testing"
)

// fakeSource scripts one candidate of a fallback chain.
type fakeSource struct {
	name     string
	requires []Capability
	series   Series
	err      error
	calls    int
}

func (s *fakeSource) Name() string           { return s.name }
func (s *fakeSource) Requires() []Capability { return s.requires }
func (s *fakeSource) Fetch(ctx context.Context, req Request) (Series, error) {
	s.calls++
	if s.err != nil {
		return Series{}, s.err
	}
	return s.series, nil
}

func TestFetchFallback(t *testing.T) {
	a := &fakeSource{name: "A", err: Errf(NotAvailable, "A", "service down")}
	b := &fakeSource{name: "B", series: seriesOf(0.1, 0.2)}
	c := &fakeSource{name: "C", series: seriesOf(0.3, 0.4)}

	orch := NewOrchestrator(NewRegistry())
	res, err := orch.Fetch(context.Background(), Request{Asset: "X", StartYear: 2000}, []Source{a, b, c})
	if err != nil {
		t.Fatalf("Fetch() returned error: %v", err)
	}

	if res.Provenance != "B" {
		t.Errorf("Provenance = %q, want B", res.Provenance)
	}
	if c.calls != 0 {
		t.Error("chain did not short-circuit on first success")
	}
	// The trace keeps A's failure even though the fetch succeeded.
	if len(res.Trace) != 1 || res.Trace[0].Source != "A" {
		t.Fatalf("Trace = %+v, want single attempt from A", res.Trace)
	}
	if KindOf(res.Trace[0].Err) != NotAvailable {
		t.Errorf("trace kind = %v, want NotAvailable", KindOf(res.Trace[0].Err))
	}
}

func TestFetchCapabilityFiltering(t *testing.T) {
	gated := &fakeSource{name: "gated", requires: []Capability{CapFREDKey}, series: seriesOf(0.1, 0.2)}
	open := &fakeSource{name: "open", series: seriesOf(0.3, 0.4)}

	orch := NewOrchestrator(NewRegistry())
	res, err := orch.Fetch(context.Background(), Request{Asset: "X"}, []Source{gated, open})
	if err != nil {
		t.Fatalf("Fetch() returned error: %v", err)
	}

	if gated.calls != 0 {
		t.Error("source with missing capability was invoked")
	}
	if res.Provenance != "open" {
		t.Errorf("Provenance = %q, want open", res.Provenance)
	}
	if len(res.Trace) != 1 || KindOf(res.Trace[0].Err) != NotConfigured {
		t.Fatalf("Trace = %+v, want one NotConfigured attempt", res.Trace)
	}

	// Granting the capability makes the gated source eligible again.
	caps := NewRegistry()
	caps.Grant(CapFREDKey)
	res, err = NewOrchestrator(caps).Fetch(context.Background(), Request{Asset: "X"}, []Source{gated, open})
	if err != nil {
		t.Fatalf("Fetch() returned error: %v", err)
	}
	if res.Provenance != "gated" {
		t.Errorf("Provenance = %q, want gated", res.Provenance)
	}
}

func TestFetchExhaustedChain(t *testing.T) {
	a := &fakeSource{name: "A", err: Errf(Network, "A", "timeout")}
	b := &fakeSource{name: "B", err: Errf(NoData, "B", "empty range")}

	orch := NewOrchestrator(NewRegistry())
	_, err := orch.Fetch(context.Background(), Request{Asset: "X"}, []Source{a, b})

	var chainErr *ChainError
	if !errors.As(err, &chainErr) {
		t.Fatalf("error = %v, want *ChainError", err)
	}
	if chainErr.Asset != "X" {
		t.Errorf("Asset = %q, want X", chainErr.Asset)
	}
	if len(chainErr.Attempts) != 2 {
		t.Fatalf("Attempts = %+v, want 2 entries", chainErr.Attempts)
	}
	// Attempts keep chain order.
	if chainErr.Attempts[0].Source != "A" || chainErr.Attempts[1].Source != "B" {
		t.Errorf("attempt order = %s, %s, want A, B", chainErr.Attempts[0].Source, chainErr.Attempts[1].Source)
	}
	if KindOf(chainErr.Attempts[0].Err) != Network || KindOf(chainErr.Attempts[1].Err) != NoData {
		t.Error("attempt kinds not preserved")
	}
}

func TestFetchRejectsInvalidSeries(t *testing.T) {
	// A series without provenance fails validation.
	bad := &fakeSource{name: "bad", series: Series{Points: []Point{{Year: 2000, Value: 0.1}}}}
	good := &fakeSource{name: "good", series: seriesOf(0.1, 0.2)}

	orch := NewOrchestrator(NewRegistry())
	res, err := orch.Fetch(context.Background(), Request{Asset: "X"}, []Source{bad, good})
	if err != nil {
		t.Fatalf("Fetch() returned error: %v", err)
	}
	if res.Provenance != "good" {
		t.Errorf("Provenance = %q, want good", res.Provenance)
	}
	if len(res.Trace) != 1 || KindOf(res.Trace[0].Err) != Malformed {
		t.Fatalf("Trace = %+v, want one Malformed attempt", res.Trace)
	}
}
