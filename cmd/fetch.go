package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/etnz/histret"
	"github.com/etnz/histret/render"
	"github.com/google/subcommands"
	"github.com/sirupsen/logrus"
)

type fetchCmd struct {
	output         string
	out            string
	catalog        string
	startYear      int
	cacheDays      int
	clearCache     bool
	includeReturns bool
}

func (*fetchCmd) Name() string { return "fetch" }
func (*fetchCmd) Synopsis() string {
	return "fetch historical returns and export the return profiles"
}
func (*fetchCmd) Usage() string { return "hrf fetch [-output json|csv|go] [-o file]\n" }
func (c *fetchCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.output, "output", "json", "output format: json, csv or go")
	f.StringVar(&c.out, "o", "", "write to file instead of stdout")
	f.StringVar(&c.catalog, "catalog", "", "asset catalog file (YAML), built-in catalog if empty")
	f.IntVar(&c.startYear, "start-year", 1926, "first year of history to request")
	f.IntVar(&c.cacheDays, "cache-days", 0, "cache retention in days, overrides HRF_CACHE_DAYS")
	f.BoolVar(&c.clearCache, "clear-cache", false, "clear the download cache before fetching")
	f.BoolVar(&c.includeReturns, "include-returns", false, "include the raw annual series for bootstrap resampling")
}

func (c *fetchCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 0 {
		fmt.Println("no arguments expected")
		return subcommands.ExitUsageError
	}
	format := render.Format(c.output)
	switch format {
	case render.JSON, render.CSV, render.Go:
	default:
		fmt.Printf("unknown output format %q\n", c.output)
		return subcommands.ExitUsageError
	}

	doc, err := c.buildDocument(ctx)
	if err != nil {
		fmt.Println(err)
		return subcommands.ExitFailure
	}

	w := io.Writer(os.Stdout)
	if c.out != "" {
		file, err := os.Create(c.out)
		if err != nil {
			fmt.Println(err)
			return subcommands.ExitFailure
		}
		defer file.Close()
		w = file
	}
	opts := render.Options{IncludeReturns: c.includeReturns}
	if err := render.Write(w, format, doc, opts); err != nil {
		fmt.Println("failed to render profiles:", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

// buildDocument runs the whole pipeline: resolve the catalog, fetch
// every asset through its fallback chain, compute statistics and fit
// the distribution models.
func (c *fetchCmd) buildDocument(ctx context.Context) (render.Document, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return render.Document{}, err
	}
	store := OpenStore(cfg, c.cacheDays)
	if c.clearCache {
		if err := store.Clear(); err != nil {
			return render.Document{}, fmt.Errorf("clearing cache: %w", err)
		}
	}
	catalog, err := LoadCatalog(c.catalog)
	if err != nil {
		return render.Document{}, err
	}

	sources := NewSources(store, cfg)
	orch := histret.NewOrchestrator(Capabilities(cfg))

	var profiles []render.Profile
	for _, asset := range catalog.Assets {
		p, ok := profile(ctx, orch, sources, asset, c.startYear)
		if !ok {
			continue
		}
		profiles = append(profiles, p)
	}
	if len(profiles) == 0 {
		return render.Document{}, errors.New("no asset could be fetched")
	}

	var inflation *render.Profile
	if catalog.Inflation != nil {
		if p, ok := profile(ctx, orch, sources, *catalog.Inflation, c.startYear); ok {
			inflation = &p
		}
	}
	return render.NewDocument(profiles, inflation), nil
}

// profile fetches one asset and derives its statistics and models. A
// failed fallback chain demotes the asset to a warning so the other
// assets still export.
func profile(ctx context.Context, orch *histret.Orchestrator, sources *Sources, asset histret.Asset, startYear int) (render.Profile, bool) {
	chain, err := sources.Chain(asset)
	if err != nil {
		logrus.Warnf("skipping %s: %v", asset.Key, err)
		return render.Profile{}, false
	}
	if asset.StartYear > startYear {
		startYear = asset.StartYear
	}
	req := histret.Request{Asset: asset.Key, StartYear: startYear}

	res, err := orch.Fetch(ctx, req, chain)
	if err != nil {
		logrus.Warnf("skipping %s: %v", asset.Key, err)
		return render.Profile{}, false
	}

	// A statistics or fit failure on a fetched series is a programming
	// error, not a data condition.
	st, err := histret.Compute(asset.Name, asset.Description, res.Series)
	if err != nil {
		logrus.Panicf("statistics failed for fetched asset %s: %v", asset.Key, err)
	}
	models, diag, err := histret.Fit(st)
	if err != nil {
		logrus.Panicf("fit failed for fetched asset %s: %v", asset.Key, err)
	}
	logrus.Infof("%s: %d years from %s", asset.Key, st.Years, res.Provenance)
	return render.Profile{Key: asset.Key, Stats: st, Models: models, Diagnostics: diag}, true
}
