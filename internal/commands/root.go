package commands

import (
	"github.com/urfave/cli/v2"
)

func RootApp(version string) *cli.App {
	return &cli.App{
		Name:    "newsdigest",
		Usage:   "Build a digest of the latest cloud provider announcements",
		Version: version,
		Description: `Fetches a fixed list of RSS, Atom and JSON feeds concurrently, merges
		their items, removes duplicate links, keeps the 30 newest items and
		writes them as a JSON snapshot.

		Meant to be started by cron or CI; every run starts from scratch.

		Flags can generally be set via environment variables, e.g.:

		--output => NEWSDIGEST_OUTPUT=public/news.json
		--feeds => NEWSDIGEST_FEEDS=feeds.toml
		`,
		Commands: []*cli.Command{
			updateCmd(version),
			sourcesCmd(),
			showCmd(),
		},
		Action: func(ctx *cli.Context) error {
			// Show help if no command is specified
			return ctx.App.Run([]string{"", "help"})
		},
	}
}
