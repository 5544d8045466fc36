package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"newsdigest/internal/config"
	"newsdigest/internal/feed"
	"newsdigest/internal/logging"
	"newsdigest/internal/metrics"
	"newsdigest/internal/rss"
	"newsdigest/internal/snapshot"
)

func updateCmd(version string) *cli.Command {
	return &cli.Command{
		Name:  "update",
		Usage: "Fetch all feeds and write a fresh digest snapshot",
		Description: `Fetches every configured feed concurrently, keeps the newest items
and replaces the snapshot at --output.

A feed that cannot be fetched or parsed is logged and skipped; it never
fails the run. Configuration and write errors exit with a non-zero status.`,
		Flags: updateFlags(),
		Action: func(ctx *cli.Context) error {
			cfg, err := configFromFlags(ctx)
			if err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
			if err != nil {
				return err
			}
			return runUpdate(ctx.Context, cfg, logger, version, ctx.App.Writer)
		},
	}
}

// output is one destination of the digest.
type output struct {
	store  snapshot.Store
	writer *snapshot.Writer
}

func openOutput(ctx context.Context, target, defaultName string, encode snapshot.Encoder, logger logrus.FieldLogger) (*output, error) {
	t, err := snapshot.ParseTarget(target, defaultName)
	if err != nil {
		return nil, err
	}
	store, err := snapshot.Open(ctx, t)
	if err != nil {
		return nil, fmt.Errorf("error opening %s: %w", t.Kind, err)
	}
	return &output{store: store, writer: snapshot.NewWriter(store, t.Name, encode, logger)}, nil
}

func runUpdate(ctx context.Context, cfg config.Config, logger logrus.FieldLogger, version string, out io.Writer) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// Targets are opened before any fetch so a bad destination fails fast.
	outputs := make([]*output, 0, 2)
	defer func() {
		for _, o := range outputs {
			o.store.Close()
		}
	}()

	jsonOut, err := openOutput(ctx, cfg.Output, "news.json", snapshot.EncodeJSON, logger)
	if err != nil {
		return err
	}
	outputs = append(outputs, jsonOut)

	if cfg.RSSOutput != "" {
		rssOut, err := openOutput(ctx, cfg.RSSOutput, "news.xml", snapshot.RSSEncoder(rss.ChannelInfo{
			Title:       "Cloud news digest",
			Link:        cfg.SiteURL,
			Description: "Latest announcements from the configured feeds",
			Generator:   "newsdigest " + version,
		}), logger)
		if err != nil {
			return err
		}
		outputs = append(outputs, rssOut)
	}

	recorder := metrics.NewRecorder()
	fetcher := feed.NewFetcher(logger, feed.NewGofeedParser(), feed.Options{
		Timeout:      cfg.Timeout,
		Attempts:     cfg.Attempts,
		AllowPrivate: cfg.AllowPrivate,
		UserAgent:    "newsdigest/" + version,
		Observer:     recorder,
	})
	aggregator := feed.NewAggregator(fetcher, logger, recorder, cfg.MaxItems, cfg.Concurrency)

	digest := aggregator.Aggregate(ctx, cfg.Sources)

	for _, o := range outputs {
		if err := o.writer.Write(ctx, digest); err != nil {
			return err
		}
	}

	if cfg.MetricsTextfile != "" {
		if err := recorder.WriteTextfile(cfg.MetricsTextfile); err != nil {
			logger.WithError(err).Error("Failed to write metrics")
		}
	}

	fmt.Fprintf(out, "\nSuccessfully updated %s with %d items\n", cfg.Output, len(digest.Items))
	printSummary(out, digest)
	return nil
}
