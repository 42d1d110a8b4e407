// Package histret derives historical return and inflation profiles from
// reputable academic and financial data sources, for use as seed parameters
// in a downstream simulation engine.
//
// The core functionalities include:
//   - Source Fallback: For each asset class, an ordered chain of data
//     sources is tried (longest and most authoritative history first, ETF
//     proxies last); the first source that succeeds wins, and its provenance
//     is recorded alongside the resulting series.
//   - Caching: Every remote payload is stored in a content-addressed disk
//     cache with a configurable time-to-live, so repeated runs avoid
//     re-downloading slow academic datasets.
//   - Statistics: Arithmetic and geometric means, sample standard deviation,
//     skewness and excess kurtosis computed from annual return series.
//   - Distribution Fitting: Eligible distribution models (Fixed, Normal,
//     LogNormal, Student's t) derived from the computed statistics.
//
// This package serves as the foundational logic for the `hrf` command-line
// tool. Source-specific wire parsing lives in the per-provider subpackages
// (shiller, french, fredseries, yahoo, damodaran); output formatting lives
// in the render subpackage.
package histret
