package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/urfave/cli/v2"

	"newsdigest/internal/config"
)

func sourcesCmd() *cli.Command {
	return &cli.Command{
		Name:        "sources",
		Usage:       "List the configured feeds",
		Description: `Prints the feeds an update would fetch, in the order that decides which duplicate is kept.`,
		Flags:       []cli.Flag{feedsFlag()},
		Action: func(ctx *cli.Context) error {
			sources := config.DefaultSources()
			if path := ctx.String("feeds"); path != "" {
				loaded, err := config.LoadSources(path)
				if err != nil {
					return err
				}
				sources = loaded
			}

			cfg := config.Default()
			cfg.Sources = sources
			if err := cfg.Validate(); err != nil {
				return err
			}

			w := tabwriter.NewWriter(ctx.App.Writer, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "#\tLABEL\tURL")
			for i, src := range sources {
				fmt.Fprintf(w, "%d\t%s\t%s\n", i+1, src.Label, src.Endpoint)
			}
			return w.Flush()
		},
	}
}
