package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newsdigest/internal/config"
	"newsdigest/internal/feed"
)

const alphaFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel><title>Alpha</title>
<item><title>Alpha launches a very long product name that keeps going and going past sixty</title><link>https://example.com/u1</link><pubDate>Wed, 03 Jan 2024 00:00:00 GMT</pubDate></item>
</channel></rss>`

const betaFeed = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom"><title>Beta</title>
<entry><title>Beta duplicate</title><link href="https://example.com/u1"/><id>b1</id><published>2024-01-05T00:00:00Z</published><updated>2024-01-05T00:00:00Z</updated></entry>
<entry><title>Beta two</title><link href="https://example.com/u2"/><id>b2</id><published>2024-01-01T00:00:00Z</published><updated>2024-01-01T00:00:00Z</updated></entry>
</feed>`

func newFeedServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/alpha", func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(30 * time.Millisecond)
		w.Write([]byte(alphaFeed))
	})
	mux.HandleFunc("/beta", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(betaFeed))
	})
	mux.HandleFunc("/gamma", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func testConfig(server *httptest.Server, dir string) config.Config {
	cfg := config.Default()
	cfg.Sources = []feed.Source{
		{Endpoint: server.URL + "/alpha", Label: "Alpha"},
		{Endpoint: server.URL + "/beta", Label: "Beta"},
		{Endpoint: server.URL + "/gamma", Label: "Gamma"},
	}
	cfg.Output = filepath.Join(dir, "news.json")
	cfg.Timeout = 5 * time.Second
	cfg.Attempts = 1
	return cfg
}

type snapshotFile struct {
	LastUpdated string `json:"lastUpdated"`
	Items       []struct {
		Title  string `json:"title"`
		URL    string `json:"url"`
		Source string `json:"source"`
		Date   string `json:"date"`
	} `json:"items"`
}

func TestRunUpdate(t *testing.T) {
	server := newFeedServer(t)
	dir := t.TempDir()
	cfg := testConfig(server, dir)
	cfg.RSSOutput = filepath.Join(dir, "news.xml")
	cfg.MetricsTextfile = filepath.Join(dir, "newsdigest.prom")

	logger, hook := logtest.NewNullLogger()
	var out bytes.Buffer
	require.NoError(t, runUpdate(context.Background(), cfg, logger, "test", &out))

	data, err := os.ReadFile(cfg.Output)
	require.NoError(t, err)
	var snap snapshotFile
	require.NoError(t, json.Unmarshal(data, &snap))

	require.Len(t, snap.Items, 2)
	assert.Equal(t, "Alpha", snap.Items[0].Source)
	assert.Equal(t, "https://example.com/u1", snap.Items[0].URL)
	assert.Equal(t, "2024-01-03T00:00:00.000Z", snap.Items[0].Date)
	assert.Equal(t, "Beta two", snap.Items[1].Title)
	assert.Equal(t, "2024-01-01T00:00:00.000Z", snap.Items[1].Date)
	assert.True(t, strings.HasSuffix(snap.LastUpdated, "Z"))

	rssData, err := os.ReadFile(cfg.RSSOutput)
	require.NoError(t, err)
	assert.Contains(t, string(rssData), "<title>Beta two</title>")

	metricsData, err := os.ReadFile(cfg.MetricsTextfile)
	require.NoError(t, err)
	assert.Contains(t, string(metricsData), `newsdigest_fetch_success{source="Gamma"} 0`)

	// the failed source produced one diagnostic
	var failures int
	for _, e := range hook.AllEntries() {
		if e.Message == "Error fetching Gamma" {
			failures++
		}
	}
	assert.Equal(t, 1, failures)

	summary := out.String()
	assert.Contains(t, summary, "with 2 items")
	assert.Contains(t, summary, "Latest 2 items:")
	assert.Contains(t, summary, "1. [Alpha] Alpha launches a very long product name that keeps going and... (2024-01-03)")
	assert.Contains(t, summary, "2. [Beta] Beta two... (2024-01-01)")
}

func TestRunUpdateAllSourcesFail(t *testing.T) {
	server := newFeedServer(t)
	dir := t.TempDir()
	cfg := testConfig(server, dir)
	cfg.Sources = cfg.Sources[2:]

	logger, _ := logtest.NewNullLogger()
	require.NoError(t, runUpdate(context.Background(), cfg, logger, "test", &bytes.Buffer{}))

	data, err := os.ReadFile(cfg.Output)
	require.NoError(t, err)
	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "[]", string(raw["items"]))
}

func TestRunUpdateWriteFailureIsFatal(t *testing.T) {
	server := newFeedServer(t)
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	cfg := testConfig(server, dir)
	cfg.Output = filepath.Join(blocker, "news.json")

	logger, _ := logtest.NewNullLogger()
	err := runUpdate(context.Background(), cfg, logger, "test", &bytes.Buffer{})
	assert.ErrorContains(t, err, "error writing snapshot news.json")
}

func TestRunUpdateRejectsBadConfig(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	cfg := config.Default()
	cfg.Sources = nil

	err := runUpdate(context.Background(), cfg, logger, "test", &bytes.Buffer{})
	assert.ErrorIs(t, err, config.ErrNoSources)
	assert.Empty(t, hook.AllEntries())

	cfg = config.Default()
	cfg.Output = "s3://bucket/news.json"
	assert.Error(t, runUpdate(context.Background(), cfg, logger, "test", &bytes.Buffer{}))
}

func TestUpdateCommandWithSQLiteTarget(t *testing.T) {
	server := newFeedServer(t)
	dir := t.TempDir()

	feedsFile := filepath.Join(dir, "feeds.toml")
	require.NoError(t, os.WriteFile(feedsFile, []byte(`
[[feeds]]
label = "Beta"
url = "`+server.URL+`/beta"
`), 0644))
	target := "sqlite://" + filepath.Join(dir, "digest.db") + "#latest.json"

	var out bytes.Buffer
	app := RootApp("test")
	app.Writer = &out
	require.NoError(t, app.Run([]string{"newsdigest", "update", "--feeds", feedsFile, "--output", target, "--attempts", "1", "--log-level", "error"}))

	out.Reset()
	app = RootApp("test")
	app.Writer = &out
	require.NoError(t, app.Run([]string{"newsdigest", "show", "--output", target}))
	assert.Contains(t, out.String(), "latest.json: 2 items")
	assert.Contains(t, out.String(), "1. [Beta] Beta duplicate... (2024-01-05)")
}

func TestSourcesCommand(t *testing.T) {
	var out bytes.Buffer
	app := RootApp("test")
	app.Writer = &out

	require.NoError(t, app.Run([]string{"newsdigest", "sources"}))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 5)
	assert.Contains(t, lines[1], "AWS")
	assert.Contains(t, lines[4], "https://developers.cloudflare.com/api/changelogs/rss.xml")
}

func TestShowMissingSnapshot(t *testing.T) {
	app := RootApp("test")
	app.Writer = &bytes.Buffer{}
	err := app.Run([]string{"newsdigest", "show", "--output", filepath.Join(t.TempDir(), "news.json")})
	assert.Error(t, err)
}

func TestPrintSummary(t *testing.T) {
	var out bytes.Buffer
	printSummary(&out, feed.Digest{GeneratedAt: time.Date(2024, 1, 6, 0, 0, 0, 0, time.UTC)})
	assert.Equal(t, "Last updated: 2024-01-06T00:00:00.000Z\n\nNo items.\n", out.String())

	var items []feed.DigestItem
	for i := 0; i < 8; i++ {
		items = append(items, feed.DigestItem{Title: "t", Source: "S", PublishedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)})
	}
	out.Reset()
	printSummary(&out, feed.Digest{Items: items})
	assert.Contains(t, out.String(), "Latest 5 items:")
	assert.Contains(t, out.String(), "5. [S] t... (2024-01-01)")
	assert.NotContains(t, out.String(), "6. ")
}

func TestCut(t *testing.T) {
	assert.Equal(t, "short", cut("short", 60))
	assert.Equal(t, "ééé", cut("éééé", 3))
}
