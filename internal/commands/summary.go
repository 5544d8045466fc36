package commands

import (
	"fmt"
	"io"

	"newsdigest/internal/feed"
	"newsdigest/internal/snapshot"
)

const (
	summaryItems    = 5
	summaryTitleLen = 60
)

// printSummary writes the generation time and the newest few items.
func printSummary(w io.Writer, d feed.Digest) {
	fmt.Fprintf(w, "Last updated: %s\n", d.GeneratedAt.UTC().Format(snapshot.TimeFormat))

	if len(d.Items) == 0 {
		fmt.Fprintln(w, "\nNo items.")
		return
	}

	fmt.Fprintf(w, "\nLatest %d items:\n", min(summaryItems, len(d.Items)))
	for i, item := range feed.Truncate(d.Items, summaryItems) {
		fmt.Fprintf(w, "%d. [%s] %s... (%s)\n",
			i+1, item.Source, cut(item.Title, summaryTitleLen), item.PublishedAt.UTC().Format("2006-01-02"))
	}
}

// cut shortens s to at most n runes.
func cut(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
