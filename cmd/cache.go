package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"
)

type cacheCmd struct {
	clear bool
}

func (*cacheCmd) Name() string { return "cache" }
func (*cacheCmd) Synopsis() string {
	return "show the download cache status, or clear it"
}
func (*cacheCmd) Usage() string { return "hrf cache [-clear]\n" }
func (c *cacheCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.clear, "clear", false, "remove every cached download")
}

func (c *cacheCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 0 {
		fmt.Println("no arguments expected")
		return subcommands.ExitUsageError
	}
	cfg, err := LoadConfig()
	if err != nil {
		fmt.Println(err)
		return subcommands.ExitFailure
	}
	store := OpenStore(cfg, 0)

	if c.clear {
		if err := store.Clear(); err != nil {
			fmt.Println("failed to clear cache:", err)
			return subcommands.ExitFailure
		}
		fmt.Println("cache cleared")
		return subcommands.ExitSuccess
	}

	entries, bytes, err := store.Stat()
	if err != nil {
		fmt.Println("failed to inspect cache:", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("%s: %d entries, %d bytes\n", store.Dir(), entries, bytes)
	return subcommands.ExitSuccess
}
