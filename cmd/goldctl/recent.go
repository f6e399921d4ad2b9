package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
)

type recentCmd struct {
	limit int
}

func (*recentCmd) Name() string     { return "recent" }
func (*recentCmd) Synopsis() string { return "show the latest purchases and sales" }
func (*recentCmd) Usage() string {
	return `goldctl recent [-n <count>]

  Shows purchases and sales merged by date, newest first.
`
}

func (c *recentCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.limit, "n", 0, "number of transactions to show, 0 uses RECENT_TRANSACTIONS_LIMIT")
}

func (c *recentCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.limit < 0 {
		fmt.Fprintln(os.Stderr, "Error: -n must not be negative")
		return subcommands.ExitUsageError
	}

	a, err := openApp(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	txs, err := a.Ledger.RecentTransactions(ctx, c.limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading transactions: %v\n", err)
		return subcommands.ExitFailure
	}

	printMarkdown(transactionsMarkdown(txs))
	return subcommands.ExitSuccess
}
