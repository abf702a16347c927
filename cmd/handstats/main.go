package main

import (
	"context"

	"github.com/alecthomas/kong"
	"github.com/lox/handstats/cmd/handstats/shared"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Version kong.VersionFlag `short:"v" help:"Show version"`
	Analyze AnalyzeCmd       `cmd:"" help:"Parse a hand history file and print positional statistics"`
	Hands   HandsCmd         `cmd:"" help:"Print parsed hands as JSON lines"`
	View    ViewCmd          `cmd:"" help:"Browse statistics interactively"`
	Runs    RunsCmd          `cmd:"" help:"List stored analysis runs"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("handstats"),
		kong.Description("Positional statistics from tournament hand histories"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
		kong.BindTo(shared.SetupSignalHandler(), (*context.Context)(nil)),
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
