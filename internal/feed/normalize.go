package feed

import (
	"strings"
	"time"
)

const (
	PlaceholderTitle = "No title"
	PlaceholderURL   = "#"
)

// dateLayouts are tried in order against every date candidate.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	time.RFC1123Z,
	time.RFC1123,
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"Mon, 2 Jan 2006 15:04:05 MST",
	"Mon, 2 Jan 2006 15:04 -0700",
	"2 Jan 2006 15:04:05 -0700",
	time.RFC822Z,
	time.RFC822,
	time.RFC850,
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02",
	time.ANSIC,
	time.UnixDate,
}

// Normalize maps a raw parsed item onto a DigestItem. It never fails: every
// missing or unusable field is replaced by its fallback. now is used when no
// date candidate can be parsed.
func Normalize(raw RawItem, src Source, now time.Time) DigestItem {
	return DigestItem{
		Title:       resolveTitle(raw),
		URL:         resolveURL(raw),
		Source:      src.Label,
		PublishedAt: resolvePublished(raw, now),
	}
}

func resolveTitle(raw RawItem) string {
	title, ok := present(raw.Title)
	if !ok {
		return PlaceholderTitle
	}
	return title
}

func resolveURL(raw RawItem) string {
	for _, candidate := range []*string{raw.Link, raw.ID} {
		if v, ok := present(candidate); ok {
			return v
		}
	}
	return PlaceholderURL
}

func resolvePublished(raw RawItem, now time.Time) time.Time {
	for _, candidate := range []*string{raw.PubDate, raw.Published, raw.Updated, raw.ISODate} {
		v, ok := present(candidate)
		if !ok {
			continue
		}
		if t, err := ParseDate(v); err == nil {
			return t
		}
	}
	return now
}

// present reports the trimmed value of an optional field, treating blank as absent.
func present(v *string) (string, bool) {
	if v == nil {
		return "", false
	}
	s := strings.TrimSpace(*v)
	return s, s != ""
}

// ParseDate parses a feed timestamp in any of the formats seen in RSS, Atom
// and JSON feeds. Values without a zone are taken as UTC.
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	var firstErr error
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			return withZoneOffset(t), nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, firstErr
}

// zoneOffsets covers the abbreviations common in RSS pubDate values.
var zoneOffsets = map[string]int{
	"UT":  0,
	"GMT": 0,
	"EST": -5 * 3600,
	"EDT": -4 * 3600,
	"CST": -6 * 3600,
	"CDT": -5 * 3600,
	"MST": -7 * 3600,
	"MDT": -6 * 3600,
	"PST": -8 * 3600,
	"PDT": -7 * 3600,
}

// withZoneOffset fixes times parsed from a zone abbreviation the local
// zone does not know: time.Parse gives those a zero offset.
func withZoneOffset(t time.Time) time.Time {
	name, offset := t.Zone()
	if offset != 0 {
		return t
	}
	known, ok := zoneOffsets[name]
	if !ok || known == 0 {
		return t
	}
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(),
		time.FixedZone(name, known))
}
