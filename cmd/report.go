package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/etnz/histret/render"
	"github.com/google/subcommands"
)

type reportCmd struct {
	fetchCmd
	raw bool
}

func (*reportCmd) Name() string { return "report" }
func (*reportCmd) Synopsis() string {
	return "print a human-readable report of the return profiles"
}
func (*reportCmd) Usage() string { return "hrf report [-raw]\n" }
func (c *reportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.catalog, "catalog", "", "asset catalog file (YAML), built-in catalog if empty")
	f.IntVar(&c.startYear, "start-year", 1926, "first year of history to request")
	f.IntVar(&c.cacheDays, "cache-days", 0, "cache retention in days, overrides HRF_CACHE_DAYS")
	f.BoolVar(&c.raw, "raw", false, "print plain markdown instead of rendering for the terminal")
}

func (c *reportCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 0 {
		fmt.Println("no arguments expected")
		return subcommands.ExitUsageError
	}

	doc, err := c.buildDocument(ctx)
	if err != nil {
		fmt.Println(err)
		return subcommands.ExitFailure
	}

	var md strings.Builder
	if err := render.Write(&md, render.Markdown, doc, render.Options{}); err != nil {
		fmt.Println("failed to render report:", err)
		return subcommands.ExitFailure
	}
	if c.raw {
		fmt.Print(md.String())
		return subcommands.ExitSuccess
	}

	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100))
	if err != nil {
		fmt.Println("failed to build terminal renderer:", err)
		return subcommands.ExitFailure
	}
	out, err := r.Render(md.String())
	if err != nil {
		fmt.Println("failed to render report:", err)
		return subcommands.ExitFailure
	}
	fmt.Fprint(os.Stdout, out)
	return subcommands.ExitSuccess
}
