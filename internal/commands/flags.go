package commands

import (
	"github.com/urfave/cli/v2"

	"newsdigest/internal/config"
	"newsdigest/internal/feed"
)

func feedsFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "feeds",
		Aliases: []string{"f"},
		Usage:   "TOML file listing the feeds to aggregate (built-in cloud provider feeds if empty)",
		EnvVars: []string{"NEWSDIGEST_FEEDS"},
	}
}

func outputFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "output",
		Aliases: []string{"o"},
		Value:   "news.json",
		Usage:   "Snapshot target: a file path, file://, sqlite://path.db#name or postgres://dsn#name",
		EnvVars: []string{"NEWSDIGEST_OUTPUT"},
	}
}

func logFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "log-level",
			Value:   "info",
			Usage:   "Log level (debug, info, warn, error)",
			EnvVars: []string{"NEWSDIGEST_LOG_LEVEL"},
		},
		&cli.StringFlag{
			Name:    "log-format",
			Value:   "text",
			Usage:   "Log format (text or json)",
			EnvVars: []string{"NEWSDIGEST_LOG_FORMAT"},
		},
	}
}

func updateFlags() []cli.Flag {
	flags := []cli.Flag{
		feedsFlag(),
		outputFlag(),
		&cli.StringFlag{
			Name:    "rss-output",
			Usage:   "Optional target for an RSS 2.0 rendition of the digest",
			EnvVars: []string{"NEWSDIGEST_RSS_OUTPUT"},
		},
		&cli.StringFlag{
			Name:    "site-url",
			Usage:   "Channel link of the RSS rendition",
			EnvVars: []string{"NEWSDIGEST_SITE_URL"},
		},
		&cli.IntFlag{
			Name:    "max-items",
			Value:   feed.DefaultMaxItems,
			Usage:   "Maximum number of items kept in the digest",
			EnvVars: []string{"NEWSDIGEST_MAX_ITEMS"},
		},
		&cli.DurationFlag{
			Name:    "timeout",
			Value:   feed.DefaultTimeout,
			Usage:   "Time limit for fetching one feed, retries included",
			EnvVars: []string{"NEWSDIGEST_TIMEOUT"},
		},
		&cli.IntFlag{
			Name:    "attempts",
			Value:   feed.DefaultAttempts,
			Usage:   "Tries per feed for transient failures",
			EnvVars: []string{"NEWSDIGEST_ATTEMPTS"},
		},
		&cli.IntFlag{
			Name:    "concurrency",
			Value:   0,
			Usage:   "Maximum feeds fetched at once (0 fetches all at once)",
			EnvVars: []string{"NEWSDIGEST_CONCURRENCY"},
		},
		&cli.StringFlag{
			Name:    "metrics-textfile",
			Usage:   "Write run metrics in Prometheus text format to this file",
			EnvVars: []string{"NEWSDIGEST_METRICS_TEXTFILE"},
		},
		&cli.BoolFlag{
			Name:    "allow-private",
			Usage:   "Allow feeds hosted on private networks",
			EnvVars: []string{"NEWSDIGEST_ALLOW_PRIVATE"},
		},
	}
	return append(flags, logFlags()...)
}

// configFromFlags builds the run configuration; sources come from --feeds
// or the built-in defaults.
func configFromFlags(ctx *cli.Context) (config.Config, error) {
	cfg := config.Default()

	if path := ctx.String("feeds"); path != "" {
		sources, err := config.LoadSources(path)
		if err != nil {
			return cfg, err
		}
		cfg.Sources = sources
	}

	cfg.Output = ctx.String("output")
	cfg.RSSOutput = ctx.String("rss-output")
	cfg.SiteURL = ctx.String("site-url")
	cfg.MaxItems = ctx.Int("max-items")
	cfg.Timeout = ctx.Duration("timeout")
	cfg.Attempts = ctx.Int("attempts")
	cfg.Concurrency = ctx.Int("concurrency")
	cfg.MetricsTextfile = ctx.String("metrics-textfile")
	cfg.AllowPrivate = ctx.Bool("allow-private")
	cfg.LogLevel = ctx.String("log-level")
	cfg.LogFormat = ctx.String("log-format")

	return cfg, cfg.Validate()
}
