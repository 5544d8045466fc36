package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/urfave/cli/v2"

	"newsdigest/internal/snapshot"
)

func showCmd() *cli.Command {
	return &cli.Command{
		Name:        "show",
		Usage:       "Print a summary of the current snapshot",
		Description: `Reads the JSON snapshot at --output and prints when it was generated and its newest items.`,
		Flags:       []cli.Flag{outputFlag()},
		Action: func(ctx *cli.Context) error {
			return runShow(ctx.Context, ctx.String("output"), ctx.App.Writer)
		},
	}
}

func runShow(ctx context.Context, target string, out io.Writer) error {
	t, err := snapshot.ParseTarget(target, "news.json")
	if err != nil {
		return err
	}
	store, err := snapshot.Open(ctx, t)
	if err != nil {
		return fmt.Errorf("error opening %s: %w", t.Kind, err)
	}
	defer store.Close()

	data, err := store.ReadBlob(ctx, t.Name)
	if err != nil {
		return err
	}
	digest, err := snapshot.DecodeJSON(data)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "%s: %d items\n", t.Name, len(digest.Items))
	printSummary(out, digest)
	return nil
}
