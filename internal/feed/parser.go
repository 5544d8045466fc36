package feed

import (
	"fmt"
	"io"
	"time"

	"github.com/mmcdole/gofeed"
)

// Parser turns a raw feed document into items, in document order.
type Parser interface {
	Parse(r io.Reader) ([]RawItem, error)
}

// GofeedParser handles RSS, Atom and JSON Feed documents.
type GofeedParser struct {
	parser *gofeed.Parser
}

func NewGofeedParser() *GofeedParser {
	return &GofeedParser{parser: gofeed.NewParser()}
}

func (p *GofeedParser) Parse(r io.Reader) ([]RawItem, error) {
	parsed, err := p.parser.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("error parsing feed: %w", err)
	}
	if parsed == nil {
		return nil, fmt.Errorf("error parsing feed: empty document")
	}

	items := make([]RawItem, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		if item == nil {
			continue
		}
		items = append(items, rawItem(parsed.FeedType, item))
	}
	return items, nil
}

// rawItem keeps the per-format date fields apart: RSS calls its publication
// date pubDate while Atom and JSON Feed call it published.
func rawItem(feedType string, item *gofeed.Item) RawItem {
	raw := RawItem{
		Title:   optional(item.Title),
		Link:    optional(item.Link),
		ID:      optional(item.GUID),
		Updated: optional(item.Updated),
	}
	if raw.Link == nil && len(item.Links) > 0 {
		raw.Link = optional(item.Links[0])
	}

	if feedType == "rss" {
		raw.PubDate = optional(item.Published)
	} else {
		raw.Published = optional(item.Published)
	}

	switch {
	case item.PublishedParsed != nil:
		raw.ISODate = optional(item.PublishedParsed.UTC().Format(time.RFC3339))
	case item.UpdatedParsed != nil:
		raw.ISODate = optional(item.UpdatedParsed.UTC().Format(time.RFC3339))
	case item.DublinCoreExt != nil && len(item.DublinCoreExt.Date) > 0:
		raw.ISODate = optional(item.DublinCoreExt.Date[0])
	}
	return raw
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
