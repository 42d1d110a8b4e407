package histret

import (
	"errors"
	"fmt"
	"strings"
)

// FetchKind classifies why a single source failed to deliver a series.
type FetchKind string

const (
	// NotConfigured means a required credential is missing (e.g. no FRED
	// API key).
	NotConfigured FetchKind = "not-configured"
	// NotAvailable means an optional capability is absent for this run.
	NotAvailable FetchKind = "not-available"
	// Malformed means the remote payload could not be parsed.
	Malformed FetchKind = "malformed"
	// Network means the transport failed (timeout, DNS, non-200 status).
	Network FetchKind = "network"
	// NoData means the source answered but the series was empty after
	// filtering.
	NoData FetchKind = "no-data"
)

// FetchError is the typed failure returned by source adapters.
type FetchError struct {
	Kind   FetchKind
	Source string
	Err    error
}

func (e *FetchError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Source, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Source, e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Errf builds a FetchError with a formatted cause.
func Errf(kind FetchKind, source, format string, args ...any) *FetchError {
	return &FetchError{Kind: kind, Source: source, Err: fmt.Errorf(format, args...)}
}

// KindOf returns the FetchKind of err, or "" if err carries no FetchError.
func KindOf(err error) FetchKind {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return ""
}

// Attempt records one entry of a fallback trace: which source was tried
// and how it failed (Err is nil for the succeeding source).
type Attempt struct {
	Source string
	Err    error
}

// ChainError reports that every candidate source for an asset class
// failed. Attempts preserves the candidate order.
type ChainError struct {
	Asset    string
	Attempts []Attempt
}

func (e *ChainError) Error() string {
	parts := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		parts = append(parts, fmt.Sprintf("%s: %v", a.Source, a.Err))
	}
	return fmt.Sprintf("could not fetch %s: %s", e.Asset, strings.Join(parts, "; "))
}

// Statistics and fitting errors. A statistics or fit failure on a
// successfully fetched, non-empty series is a programming error, not a
// runtime condition: callers escalate instead of degrading silently.
var (
	// ErrEmptySeries is returned by Compute on a zero-length input.
	ErrEmptySeries = errors.New("empty series")
	// ErrInsufficientObservations is returned by Compute when fewer than
	// two observations are present (sample standard deviation undefined).
	ErrInsufficientObservations = errors.New("need at least 2 observations")
	// ErrInvalidDegreesOfFreedom is returned by StudentTScale when df <= 2
	// (the variance of Student's t is infinite there).
	ErrInvalidDegreesOfFreedom = errors.New("degrees of freedom must exceed 2")
)
