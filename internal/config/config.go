// Save as: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"newsdigest/internal/feed"
)

var (
	ErrNoSources     = errors.New("no feed sources configured")
	ErrInvalidSource = errors.New("invalid feed source")
)

// Config holds everything a single update run needs.
type Config struct {
	Sources []feed.Source

	// Output is where the JSON snapshot goes: a file path, a file:// URL,
	// or a sqlite:// or postgres:// target with the blob name as fragment.
	Output string
	// RSSOutput is an optional second target for an RSS rendition.
	RSSOutput string
	SiteURL   string

	MaxItems    int
	Timeout     time.Duration
	Attempts    int
	Concurrency int

	MetricsTextfile string
	AllowPrivate    bool

	LogLevel  string
	LogFormat string
}

func Default() Config {
	return Config{
		Sources:   DefaultSources(),
		Output:    "news.json",
		MaxItems:  feed.DefaultMaxItems,
		Timeout:   feed.DefaultTimeout,
		Attempts:  feed.DefaultAttempts,
		LogLevel:  "info",
		LogFormat: "text",
	}
}

// Validate rejects a configuration before any fetch starts.
func (c Config) Validate() error {
	if len(c.Sources) == 0 {
		return ErrNoSources
	}
	for i, src := range c.Sources {
		if err := validateSource(src); err != nil {
			return fmt.Errorf("source %d: %w", i+1, err)
		}
	}

	if strings.TrimSpace(c.Output) == "" {
		return fmt.Errorf("output target is required")
	}
	if c.MaxItems < 1 {
		return fmt.Errorf("max items must be at least 1, got %d", c.MaxItems)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	if c.Attempts < 1 {
		return fmt.Errorf("attempts must be at least 1, got %d", c.Attempts)
	}
	if c.Concurrency < 0 {
		return fmt.Errorf("concurrency must not be negative, got %d", c.Concurrency)
	}
	return nil
}

func validateSource(src feed.Source) error {
	if strings.TrimSpace(src.Label) == "" {
		return fmt.Errorf("%w: label is empty", ErrInvalidSource)
	}
	u, err := url.Parse(src.Endpoint)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidSource, src.Label, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: %s: endpoint must be http or https", ErrInvalidSource, src.Label)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: %s: endpoint has no host", ErrInvalidSource, src.Label)
	}
	return nil
}
