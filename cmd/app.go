// Package cmd implements the CLI application to fetch historical
// returns and export return profiles.
package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/etnz/histret"
	"github.com/etnz/histret/cache"
	"github.com/etnz/histret/damodaran"
	"github.com/etnz/histret/fredseries"
	"github.com/etnz/histret/french"
	"github.com/etnz/histret/shiller"
	"github.com/etnz/histret/yahoo"
	"github.com/google/subcommands"
	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&fetchCmd{}, "profiles")
	c.Register(&reportCmd{}, "profiles")

	c.Register(&sourcesCmd{}, "catalog")
	c.Register(&cacheCmd{}, "cache")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var verbose = flag.Bool("v", false, "enable debug logging")

// Config is the environment-provided part of the configuration.
type Config struct {
	FredAPIKey string `envconfig:"FRED_API_KEY"`
	CacheDir   string `envconfig:"HRF_CACHE_DIR"`
	CacheDays  int    `envconfig:"HRF_CACHE_DAYS" default:"7"`
}

// LoadConfig reads the environment and fills in defaults.
func LoadConfig() (Config, error) {
	if *verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("reading environment: %w", err)
	}
	if cfg.CacheDir == "" {
		dir, err := os.UserCacheDir()
		if err != nil {
			return Config{}, fmt.Errorf("resolving cache directory: %w", err)
		}
		cfg.CacheDir = filepath.Join(dir, "hrf")
	}
	return cfg, nil
}

// OpenStore opens the disk cache. days overrides the configured
// retention when positive.
func OpenStore(cfg Config, days int) *cache.Store {
	if days <= 0 {
		days = cfg.CacheDays
	}
	return cache.New(cfg.CacheDir, time.Duration(days)*24*time.Hour)
}

// Capabilities builds the capability registry from the configuration.
// Sources whose requirements are not granted are skipped by the
// fallback chain instead of failing the run.
func Capabilities(cfg Config) *histret.Registry {
	caps := histret.NewRegistry()
	if cfg.FredAPIKey != "" {
		caps.Grant(histret.CapFREDKey)
	}
	return caps
}

// LoadCatalog reads the asset catalog from path, or returns the
// built-in one when path is empty.
func LoadCatalog(path string) (histret.Catalog, error) {
	if path == "" {
		return histret.DefaultCatalog(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return histret.Catalog{}, fmt.Errorf("opening catalog: %w", err)
	}
	defer f.Close()
	return histret.LoadCatalog(f)
}

// Sources resolves catalog references onto their adapters, sharing one
// HTTP getter and the per-provider clients.
type Sources struct {
	g      *histret.Getter
	french *french.Client
	fred   *fredseries.Client
}

// NewSources builds the resolver on top of the given cache store.
func NewSources(store *cache.Store, cfg Config) *Sources {
	g := histret.NewGetter(store)
	return &Sources{
		g:      g,
		french: french.NewClient(g),
		fred:   fredseries.NewClient(g, cfg.FredAPIKey),
	}
}

// flooredSource defers to the wrapped source but never asks it for
// years before first.
type flooredSource struct {
	histret.Source
	first int
}

func (s flooredSource) Fetch(ctx context.Context, req histret.Request) (histret.Series, error) {
	if req.StartYear < s.first {
		req.StartYear = s.first
	}
	return s.Source.Fetch(ctx, req)
}

// Resolve maps one catalog reference onto its adapter.
func (s *Sources) Resolve(ref histret.SourceRef) (histret.Source, error) {
	var src histret.Source
	switch ref.Kind {
	case "shiller-sp500":
		src = &shiller.SP500{G: s.g}
	case "shiller-inflation":
		src = &shiller.Inflation{G: s.g}
	case "shiller-bonds":
		src = &shiller.Bonds{G: s.g}
	case "french-market":
		src = french.Market(s.french)
	case "french-smb":
		src = french.SMB(s.french)
	case "french-smallcap":
		src = french.SmallCap(s.french)
	case "french-riskfree":
		src = french.RiskFree(s.french)
	case "french-developed":
		src = french.Developed(s.french)
	case "french-emerging":
		src = french.Emerging(s.french)
	case "fred-tbills":
		src = &fredseries.TBills{C: s.fred}
	case "fred-inflation":
		src = &fredseries.Inflation{C: s.fred}
	case "fred-gs10":
		src = &fredseries.Treasury10Y{C: s.fred}
	case "yahoo":
		if ref.Ticker == "" {
			return nil, fmt.Errorf("yahoo source needs a ticker")
		}
		return &yahoo.Annual{G: s.g, Ticker: ref.Ticker, FirstYear: ref.FirstYear}, nil
	case "damodaran":
		if ref.Column == "" {
			return nil, fmt.Errorf("damodaran source needs a column")
		}
		src = &damodaran.Column{G: s.g, Match: ref.Column}
	default:
		return nil, fmt.Errorf("unknown source kind %q", ref.Kind)
	}
	if ref.FirstYear > 0 {
		src = flooredSource{Source: src, first: ref.FirstYear}
	}
	return src, nil
}

// Chain resolves a whole asset chain, in catalog order.
func (s *Sources) Chain(a histret.Asset) ([]histret.Source, error) {
	chain := make([]histret.Source, 0, len(a.Chain))
	for _, ref := range a.Chain {
		src, err := s.Resolve(ref)
		if err != nil {
			return nil, fmt.Errorf("asset %s: %w", a.Key, err)
		}
		chain = append(chain, src)
	}
	return chain, nil
}
