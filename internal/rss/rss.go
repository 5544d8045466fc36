package rss

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"time"

	"newsdigest/internal/feed"
)

// RSS is the root element of an RSS feed.
type RSS struct {
	XMLName xml.Name `xml:"rss"`
	Version string   `xml:"version,attr"`
	Channel Channel  `xml:"channel"`
}

// Channel represents the channel element in an RSS feed.
type Channel struct {
	XMLName       xml.Name `xml:"channel"`
	Title         string   `xml:"title"`
	Link          string   `xml:"link"`
	Description   string   `xml:"description"`
	Language      string   `xml:"language,omitempty"`
	LastBuildDate string   `xml:"lastBuildDate,omitempty"` // RFC1123Z
	Generator     string   `xml:"generator,omitempty"`
	Items         []Item   `xml:"item"`
}

// Item represents an item element in an RSS feed.
type Item struct {
	XMLName xml.Name `xml:"item"`
	Title   string   `xml:"title"`
	Link    string   `xml:"link"`
	PubDate string   `xml:"pubDate,omitempty"` // RFC1123Z
	GUID    *GUID    `xml:"guid,omitempty"`
	Source  *Source  `xml:"source,omitempty"`
}

type GUID struct {
	Value       string `xml:",chardata"`
	IsPermaLink bool   `xml:"isPermaLink,attr"`
}

// Source names the feed an item was taken from.
type Source struct {
	Label string `xml:",chardata"`
	URL   string `xml:"url,attr,omitempty"`
}

// ChannelInfo describes the channel a digest is published as.
type ChannelInfo struct {
	Title       string
	Link        string
	Description string
	Generator   string
}

// FromDigest renders a digest as an RSS 2.0 document, keeping item order.
func FromDigest(d feed.Digest, info ChannelInfo) RSS {
	items := make([]Item, 0, len(d.Items))
	for _, it := range d.Items {
		item := Item{
			Title:   it.Title,
			Link:    it.URL,
			PubDate: it.PublishedAt.UTC().Format(time.RFC1123Z),
			Source:  &Source{Label: it.Source},
		}
		if it.URL != feed.PlaceholderURL {
			item.GUID = &GUID{Value: it.URL, IsPermaLink: true}
		}
		items = append(items, item)
	}

	return RSS{
		Version: "2.0",
		Channel: Channel{
			Title:         info.Title,
			Link:          info.Link,
			Description:   info.Description,
			Language:      "en",
			LastBuildDate: d.GeneratedAt.UTC().Format(time.RFC1123Z),
			Generator:     info.Generator,
			Items:         items,
		},
	}
}

// Encode marshals doc with an XML declaration.
func Encode(doc RSS) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)

	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("error encoding rss: %w", err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}
