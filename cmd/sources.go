package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/google/subcommands"
)

type sourcesCmd struct {
	catalog string
}

func (*sourcesCmd) Name() string { return "sources" }
func (*sourcesCmd) Synopsis() string {
	return "list the asset classes and their source fallback chains"
}
func (*sourcesCmd) Usage() string { return "hrf sources [-catalog file]\n" }
func (c *sourcesCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.catalog, "catalog", "", "asset catalog file (YAML), built-in catalog if empty")
}

func (c *sourcesCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 0 {
		fmt.Println("no arguments expected")
		return subcommands.ExitUsageError
	}
	cfg, err := LoadConfig()
	if err != nil {
		fmt.Println(err)
		return subcommands.ExitFailure
	}
	catalog, err := LoadCatalog(c.catalog)
	if err != nil {
		fmt.Println(err)
		return subcommands.ExitFailure
	}
	caps := Capabilities(cfg)
	sources := NewSources(OpenStore(cfg, 0), cfg)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "KEY\tNAME\tCHAIN")
	assets := catalog.Assets
	if catalog.Inflation != nil {
		assets = append(assets, *catalog.Inflation)
	}
	for _, a := range assets {
		kinds := make([]string, 0, len(a.Chain))
		for _, ref := range a.Chain {
			kind := ref.Kind
			if ref.Ticker != "" {
				kind += "(" + ref.Ticker + ")"
			}
			if ref.Column != "" {
				kind += "(" + ref.Column + ")"
			}
			src, err := sources.Resolve(ref)
			switch {
			case err != nil:
				kind += " [invalid]"
			case caps.Missing(src.Requires()) != "":
				kind += " [needs " + string(caps.Missing(src.Requires())) + "]"
			}
			kinds = append(kinds, kind)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", a.Key, a.Name, strings.Join(kinds, " > "))
	}
	w.Flush()
	return subcommands.ExitSuccess
}
