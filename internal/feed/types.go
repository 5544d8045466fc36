// Save as: internal/feed/types.go
package feed

import (
	"time"
)

// Source is one configured feed: where to fetch it and the label its items carry.
type Source struct {
	Endpoint string `toml:"url"`
	Label    string `toml:"label"`
}

// RawItem is a parsed feed entry before normalization. Nil fields were absent in the feed.
type RawItem struct {
	Title     *string
	Link      *string
	ID        *string
	PubDate   *string
	Published *string
	Updated   *string
	ISODate   *string
}

// DigestItem is the canonical shape of one announcement in the digest.
type DigestItem struct {
	Title       string
	URL         string
	Source      string
	PublishedAt time.Time
}

// Digest is the result of one run: items newest first (ties keep source
// order), unique by URL and capped at the configured maximum.
type Digest struct {
	GeneratedAt time.Time
	Items       []DigestItem
}

// FetchResult is what a single source contributed to a run.
type FetchResult struct {
	Source   Source
	Items    []DigestItem
	Error    error
	Duration time.Duration
}
