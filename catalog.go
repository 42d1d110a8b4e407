package histret

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// SourceRef names one candidate in an asset's fallback chain. Kind
// selects the adapter; the remaining fields parameterize it.
type SourceRef struct {
	// Kind is one of the adapter kinds registered by the command layer:
	// shiller-sp500, shiller-inflation, shiller-bonds, french-market,
	// french-smb, french-smallcap, french-riskfree, french-developed,
	// french-emerging, fred-tbills, fred-inflation, fred-gs10, yahoo,
	// damodaran.
	Kind string `yaml:"kind"`
	// Ticker parameterizes the yahoo adapter.
	Ticker string `yaml:"ticker,omitempty"`
	// Column parameterizes the damodaran adapter.
	Column string `yaml:"column,omitempty"`
	// FirstYear floors the request start year for sources whose history
	// begins late (e.g. an ETF inception year).
	FirstYear int `yaml:"first_year,omitempty"`
}

// Asset describes one asset class to profile: identity, default start
// year, and the ordered source chain, longest and most authoritative
// history first, proxy instruments last.
type Asset struct {
	// Key is the stable identifier used in exports (e.g. SP_500).
	Key         string      `yaml:"key"`
	Name        string      `yaml:"name"`
	Description string      `yaml:"description"`
	StartYear   int         `yaml:"start_year,omitempty"`
	Chain       []SourceRef `yaml:"chain"`
}

// Catalog is the run's universe: the asset classes to profile and the
// optional inflation series.
type Catalog struct {
	Assets    []Asset `yaml:"assets"`
	Inflation *Asset  `yaml:"inflation,omitempty"`
}

// LoadCatalog parses a YAML catalog.
func LoadCatalog(r io.Reader) (Catalog, error) {
	var c Catalog
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil {
		return Catalog{}, fmt.Errorf("cannot parse catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Catalog{}, err
	}
	return c, nil
}

// Validate checks catalog consistency: unique keys and non-empty chains.
func (c Catalog) Validate() error {
	seen := make(map[string]bool)
	check := func(a Asset) error {
		if a.Key == "" {
			return fmt.Errorf("asset %q has no key", a.Name)
		}
		if seen[a.Key] {
			return fmt.Errorf("duplicate asset key %q", a.Key)
		}
		seen[a.Key] = true
		if len(a.Chain) == 0 {
			return fmt.Errorf("asset %q has an empty source chain", a.Key)
		}
		return nil
	}
	for _, a := range c.Assets {
		if err := check(a); err != nil {
			return err
		}
	}
	if c.Inflation != nil {
		if err := check(*c.Inflation); err != nil {
			return err
		}
	}
	return nil
}

// DefaultCatalog returns the built-in asset universe. Core asset classes
// lean on the long academic histories (Shiller since 1871, French since
// 1926) and fall back to ETF proxies via Yahoo Finance for recent data.
func DefaultCatalog() Catalog {
	return Catalog{
		Assets: []Asset{
			{
				Key: "SP_500", Name: "S&P 500",
				Description: "US Large Cap Stocks (S&P 500 Total Return)",
				Chain: []SourceRef{
					{Kind: "shiller-sp500"},
					{Kind: "french-market", FirstYear: 1926},
					{Kind: "yahoo", Ticker: "^SP500TR", FirstYear: 1988},
				},
			},
			{
				Key: "US_SMALL_CAP", Name: "US Small Cap",
				Description: "US Small Cap Stocks (Market + SMB Factor)",
				Chain: []SourceRef{
					{Kind: "french-smallcap", FirstYear: 1926},
					{Kind: "yahoo", Ticker: "^RUT", FirstYear: 1988},
				},
			},
			{
				Key: "US_TBILLS", Name: "T-Bills",
				Description: "US Treasury Bills (Risk-Free Rate)",
				Chain: []SourceRef{
					{Kind: "fred-tbills", FirstYear: 1934},
					{Kind: "french-riskfree", FirstYear: 1926},
				},
			},
			{
				Key: "US_LONG_BOND", Name: "Long-Term Bonds",
				Description: "US Long-Term Government Bonds (estimated from yields)",
				Chain: []SourceRef{
					{Kind: "shiller-bonds"},
					{Kind: "damodaran", Column: "T.Bond"},
					{Kind: "yahoo", Ticker: "TLT", FirstYear: 2002},
				},
			},
			{
				Key: "INTL_DEVELOPED", Name: "Intl Developed",
				Description: "Developed Markets ex-US (Fama-French)",
				StartYear:   1990,
				Chain: []SourceRef{
					{Kind: "french-developed", FirstYear: 1990},
					{Kind: "yahoo", Ticker: "EFA", FirstYear: 2001},
				},
			},
			{
				Key: "EMERGING_MARKETS", Name: "Emerging Markets",
				Description: "Emerging Markets (Fama-French)",
				StartYear:   1990,
				Chain: []SourceRef{
					{Kind: "french-emerging", FirstYear: 1990},
					{Kind: "yahoo", Ticker: "EEM", FirstYear: 2003},
				},
			},
			{
				Key: "REITS", Name: "REITs",
				Description: "US Real Estate Investment Trusts",
				Chain: []SourceRef{
					{Kind: "damodaran", Column: "Real Estate"},
					{Kind: "yahoo", Ticker: "VNQ", FirstYear: 2004},
				},
			},
			{
				Key: "GOLD", Name: "Gold",
				Description: "Gold (spot and futures)",
				Chain: []SourceRef{
					{Kind: "damodaran", Column: "Gold"},
					{Kind: "yahoo", Ticker: "GC=F", FirstYear: 1975},
				},
			},
			{
				Key: "US_AGG_BOND", Name: "Aggregate Bonds",
				Description: "US Investment Grade Bonds (Bloomberg Aggregate via AGG)",
				Chain: []SourceRef{
					{Kind: "yahoo", Ticker: "AGG", FirstYear: 2003},
				},
			},
			{
				Key: "US_CORPORATE_BOND", Name: "Corporate Bonds",
				Description: "US Investment Grade Corporate Bonds (via LQD)",
				Chain: []SourceRef{
					{Kind: "damodaran", Column: "Baa Corporate"},
					{Kind: "yahoo", Ticker: "LQD", FirstYear: 2002},
				},
			},
			{
				Key: "TIPS", Name: "TIPS",
				Description: "US Treasury Inflation-Protected Securities (via TIP)",
				Chain: []SourceRef{
					{Kind: "yahoo", Ticker: "TIP", FirstYear: 2003},
				},
			},
		},
		Inflation: &Asset{
			Key: "INFLATION", Name: "US Inflation",
			Description: "US CPI Inflation (All Items)",
			Chain: []SourceRef{
				{Kind: "fred-inflation", FirstYear: 1947},
				{Kind: "shiller-inflation"},
			},
		},
	}
}
