package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newsdigest/internal/feed"
	"newsdigest/internal/rss"
)

func sampleDigest() feed.Digest {
	return feed.Digest{
		GeneratedAt: time.Date(2024, 1, 6, 8, 30, 0, 123456789, time.UTC),
		Items: []feed.DigestItem{
			{Title: "Alpha one", URL: "u1", Source: "Alpha", PublishedAt: time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)},
			{Title: "Beta <two> & more", URL: "u2", Source: "Beta", PublishedAt: time.Date(2024, 1, 1, 5, 0, 0, 0, time.FixedZone("CET", 3600))},
		},
	}
}

func TestEncodeJSON(t *testing.T) {
	data, err := EncodeJSON(sampleDigest())
	require.NoError(t, err)

	expected := `{
  "lastUpdated": "2024-01-06T08:30:00.123Z",
  "items": [
    {
      "title": "Alpha one",
      "url": "u1",
      "source": "Alpha",
      "date": "2024-01-03T00:00:00.000Z"
    },
    {
      "title": "Beta <two> & more",
      "url": "u2",
      "source": "Beta",
      "date": "2024-01-01T04:00:00.000Z"
    }
  ]
}
`
	assert.Equal(t, expected, string(data))
}

func TestEncodeJSONEmptyDigest(t *testing.T) {
	data, err := EncodeJSON(feed.Digest{GeneratedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)})
	require.NoError(t, err)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Len(t, raw, 2)
	assert.Equal(t, "[]", string(raw["items"]))
}

func TestDecodeJSON(t *testing.T) {
	data, err := EncodeJSON(sampleDigest())
	require.NoError(t, err)

	d, err := DecodeJSON(data)
	require.NoError(t, err)
	require.Len(t, d.Items, 2)
	assert.Equal(t, "Beta", d.Items[1].Source)
	assert.True(t, time.Date(2024, 1, 1, 4, 0, 0, 0, time.UTC).Equal(d.Items[1].PublishedAt))
	assert.True(t, time.Date(2024, 1, 6, 8, 30, 0, 123000000, time.UTC).Equal(d.GeneratedAt))

	_, err = DecodeJSON([]byte("{"))
	assert.Error(t, err)
	_, err = DecodeJSON([]byte(`{"lastUpdated":"yesterday","items":[]}`))
	assert.Error(t, err)
}

func TestParseTarget(t *testing.T) {
	tests := []struct {
		target   string
		expected Target
	}{
		{"news.json", Target{Kind: "file", Location: ".", Name: "news.json"}},
		{"public/data/news.json", Target{Kind: "file", Location: "public/data", Name: "news.json"}},
		{"file:///srv/www/news.json", Target{Kind: "file", Location: "/srv/www", Name: "news.json"}},
		{"sqlite://data/digest.db", Target{Kind: "sqlite", Location: "data/digest.db", Name: "news.json"}},
		{"sqlite:///var/lib/digest.db#latest.json", Target{Kind: "sqlite", Location: "/var/lib/digest.db", Name: "latest.json"}},
		{"postgres://u:p@db:5432/news?sslmode=disable#news.json", Target{Kind: "postgres", Location: "postgres://u:p@db:5432/news?sslmode=disable", Name: "news.json"}},
		{"postgresql://db/news", Target{Kind: "postgres", Location: "postgresql://db/news", Name: "news.json"}},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			got, err := ParseTarget(tt.target, "news.json")
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestParseTargetErrors(t *testing.T) {
	for _, target := range []string{"", "  ", "s3://bucket/news.json", "sqlite://#news.json", "out/", "file:///srv/"} {
		_, err := ParseTarget(target, "news.json")
		assert.Error(t, err, target)
	}
}

func TestFileStoreWriteReplaces(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "public")
	store := NewFileStore(dir)
	ctx := context.Background()

	require.NoError(t, store.WriteBlob(ctx, "news.json", []byte("old")))
	require.NoError(t, store.WriteBlob(ctx, "news.json", []byte("new")))

	data, err := store.ReadBlob(ctx, "news.json")
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))

	// no temporary files left behind
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "news.json", entries[0].Name())
}

func TestFileStoreRejectsBadNames(t *testing.T) {
	store := NewFileStore(t.TempDir())
	ctx := context.Background()

	assert.Error(t, store.WriteBlob(ctx, "", []byte("x")))
	assert.Error(t, store.WriteBlob(ctx, "../escape.json", []byte("x")))
}

func TestFileStoreUnwritableDirectory(t *testing.T) {
	parent := t.TempDir()
	blocker := filepath.Join(parent, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("file, not dir"), 0644))

	err := NewFileStore(filepath.Join(blocker, "out")).WriteBlob(context.Background(), "news.json", []byte("x"))
	assert.Error(t, err)
}

func TestOpenSQLiteTarget(t *testing.T) {
	ctx := context.Background()
	target, err := ParseTarget("sqlite://"+filepath.Join(t.TempDir(), "digest.db")+"#news.json", "news.json")
	require.NoError(t, err)

	store, err := Open(ctx, target)
	require.NoError(t, err)
	defer store.Close()

	logger, _ := logtest.NewNullLogger()
	require.NoError(t, NewWriter(store, target.Name, EncodeJSON, logger).Write(ctx, sampleDigest()))

	data, err := store.ReadBlob(ctx, "news.json")
	require.NoError(t, err)
	d, err := DecodeJSON(data)
	require.NoError(t, err)
	assert.Len(t, d.Items, 2)
}

type failingStore struct{ err error }

func (s failingStore) WriteBlob(context.Context, string, []byte) error { return s.err }
func (s failingStore) ReadBlob(context.Context, string) ([]byte, error) {
	return nil, s.err
}
func (s failingStore) Close() error { return nil }

func TestWriterPropagatesFailures(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	storeErr := errors.New("disk full")

	err := NewWriter(failingStore{err: storeErr}, "news.json", EncodeJSON, logger).Write(context.Background(), sampleDigest())
	assert.ErrorIs(t, err, storeErr)
	assert.Contains(t, err.Error(), "news.json")
	assert.Empty(t, hook.AllEntries())

	encodeErr := errors.New("boom")
	badEncoder := func(feed.Digest) ([]byte, error) { return nil, encodeErr }
	err = NewWriter(NewFileStore(t.TempDir()), "news.json", badEncoder, logger).Write(context.Background(), sampleDigest())
	assert.ErrorIs(t, err, encodeErr)
}

func TestWriterLogsSuccess(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	dir := t.TempDir()

	require.NoError(t, NewWriter(NewFileStore(dir), "news.json", EncodeJSON, logger).Write(context.Background(), sampleDigest()))

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, "Successfully wrote news.json", entry.Message)
	assert.Equal(t, 2, entry.Data["items"])
}

func TestRSSEncoder(t *testing.T) {
	encode := RSSEncoder(rss.ChannelInfo{Title: "Cloud news", Link: "https://news.example"})
	data, err := encode(sampleDigest())
	require.NoError(t, err)

	out := string(data)
	assert.True(t, strings.HasPrefix(out, "<?xml"))
	assert.Contains(t, out, "<title>Beta &lt;two&gt; &amp; more</title>")
	assert.Contains(t, out, "<source>Alpha</source>")
}
