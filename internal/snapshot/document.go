package snapshot

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"newsdigest/internal/feed"
)

// TimeFormat is the millisecond precision UTC form used for every timestamp
// in the snapshot, e.g. 2024-01-03T00:00:00.000Z.
const TimeFormat = "2006-01-02T15:04:05.000Z"

type document struct {
	LastUpdated string         `json:"lastUpdated"`
	Items       []documentItem `json:"items"`
}

type documentItem struct {
	Title  string `json:"title"`
	URL    string `json:"url"`
	Source string `json:"source"`
	Date   string `json:"date"`
}

// Encoder turns a digest into the bytes of one blob.
type Encoder func(feed.Digest) ([]byte, error)

// EncodeJSON renders the digest as indented JSON with exactly the keys
// lastUpdated and items.
func EncodeJSON(d feed.Digest) ([]byte, error) {
	doc := document{
		LastUpdated: formatTime(d.GeneratedAt),
		Items:       make([]documentItem, 0, len(d.Items)),
	}
	for _, it := range d.Items {
		doc.Items = append(doc.Items, documentItem{
			Title:  it.Title,
			URL:    it.URL,
			Source: it.Source,
			Date:   formatTime(it.PublishedAt),
		})
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("error encoding snapshot: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeJSON reads a snapshot written by EncodeJSON.
func DecodeJSON(data []byte) (feed.Digest, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return feed.Digest{}, fmt.Errorf("error decoding snapshot: %w", err)
	}

	generated, err := time.Parse(time.RFC3339Nano, doc.LastUpdated)
	if err != nil {
		return feed.Digest{}, fmt.Errorf("error decoding snapshot: lastUpdated: %w", err)
	}

	d := feed.Digest{GeneratedAt: generated, Items: make([]feed.DigestItem, 0, len(doc.Items))}
	for i, it := range doc.Items {
		published, err := time.Parse(time.RFC3339Nano, it.Date)
		if err != nil {
			return feed.Digest{}, fmt.Errorf("error decoding snapshot: item %d date: %w", i, err)
		}
		d.Items = append(d.Items, feed.DigestItem{
			Title:       it.Title,
			URL:         it.URL,
			Source:      it.Source,
			PublishedAt: published,
		})
	}
	return d, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(TimeFormat)
}
