package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
)

type backupCmd struct {
	output string
}

func (*backupCmd) Name() string     { return "backup" }
func (*backupCmd) Synopsis() string { return "dump every stored collection to a JSON file" }
func (*backupCmd) Usage() string {
	return `goldctl backup [-o <file.json>]

  Writes purchases, sales and fee settings as stored. Without -o the backup goes to stdout.
`
}

func (c *backupCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.output, "o", "", "output file")
}

func (c *backupCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := openApp(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	payload, err := a.Ledger.Backup(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading ledger: %v\n", err)
		return subcommands.ExitFailure
	}

	if c.output == "" {
		fmt.Println(string(payload))
		return subcommands.ExitSuccess
	}
	if err := os.WriteFile(c.output, payload, 0o600); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", c.output, err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Backup written to %s\n", c.output)
	return subcommands.ExitSuccess
}

type restoreCmd struct {
	input string
}

func (*restoreCmd) Name() string     { return "restore" }
func (*restoreCmd) Synopsis() string { return "replace the ledger with a backup" }
func (*restoreCmd) Usage() string {
	return `goldctl restore -i <file.json>

  Replaces every stored collection with the contents of a backup. Collections
  missing from the backup are removed. Nothing is written if the backup is invalid.
`
}

func (c *restoreCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.input, "i", "", "backup file produced by goldctl backup")
}

func (c *restoreCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.input == "" {
		fmt.Fprintln(os.Stderr, "Error: -i is required")
		return subcommands.ExitUsageError
	}

	payload, err := os.ReadFile(c.input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading %s: %v\n", c.input, err)
		return subcommands.ExitFailure
	}

	a, err := openApp(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	if err := a.Ledger.Restore(ctx, payload); err != nil {
		fmt.Fprintf(os.Stderr, "Error restoring ledger: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Printf("Ledger restored from %s\n", c.input)
	return subcommands.ExitSuccess
}
