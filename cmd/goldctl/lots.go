package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
)

type lotsCmd struct{}

func (*lotsCmd) Name() string     { return "lots" }
func (*lotsCmd) Synopsis() string { return "list purchase lots with remaining quantity" }
func (*lotsCmd) Usage() string {
	return `goldctl lots

  Lists every purchase lot that still has quantity available to sell, oldest first.
`
}

func (*lotsCmd) SetFlags(*flag.FlagSet) {}

func (c *lotsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := openApp(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	lots, err := a.Ledger.AvailableLots(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading lots: %v\n", err)
		return subcommands.ExitFailure
	}

	printMarkdown(lotsMarkdown(lots))
	return subcommands.ExitSuccess
}
