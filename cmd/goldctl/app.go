package main

import (
	"context"
	"fmt"
	"os"

	"github.com/KotFed0t/gold_tracker/config"
	"github.com/KotFed0t/gold_tracker/internal/app"
	"github.com/charmbracelet/glamour"
)

// openApp wires the services against the configured store. Logs go to
// stderr so that stdout only carries command output.
func openApp(ctx context.Context) (*app.App, error) {
	cfg := config.MustLoad()
	app.SetupLogger(cfg, os.Stderr)
	return app.New(ctx, cfg)
}

// printMarkdown renders md for the terminal, falling back to the raw text.
func printMarkdown(md string) {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(120))
	if err != nil {
		fmt.Print(md)
		return
	}
	out, err := r.Render(md)
	if err != nil {
		fmt.Print(md)
		return
	}
	fmt.Print(out)
}
