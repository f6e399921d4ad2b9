package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
)

type exportCmd struct {
	output string
	upload bool
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "export the ledger to an xlsx spreadsheet" }
func (*exportCmd) Usage() string {
	return `goldctl export [-o <file.xlsx>] [-upload]

  Writes purchases, sales, allocations and the summary to a spreadsheet.
  Without -o the dated default name is used. With -upload the report is
  published to Google Drive instead and the link is printed.
`
}

func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.output, "o", "", "output file")
	f.BoolVar(&c.upload, "upload", false, "upload to Google Drive and print the public link")
}

func (c *exportCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.upload && c.output != "" {
		fmt.Fprintln(os.Stderr, "Error: -o and -upload are mutually exclusive")
		return subcommands.ExitUsageError
	}

	a, err := openApp(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	if c.upload {
		link, err := a.Ledger.UploadReport(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error uploading report: %v\n", err)
			return subcommands.ExitFailure
		}
		fmt.Println(link)
		return subcommands.ExitSuccess
	}

	fileBytes, filename, err := a.Ledger.ExportReport(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error exporting report: %v\n", err)
		return subcommands.ExitFailure
	}

	if c.output != "" {
		filename = c.output
	}
	if err := os.WriteFile(filename, fileBytes, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", filename, err)
		return subcommands.ExitFailure
	}

	fmt.Printf("Report written to %s\n", filename)
	return subcommands.ExitSuccess
}
