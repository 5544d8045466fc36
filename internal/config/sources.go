package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"newsdigest/internal/feed"
)

// TomlSources is the layout of a sources file:
//
//	[[feeds]]
//	label = "AWS"
//	url = "https://aws.amazon.com/blogs/aws/feed/"
type TomlSources struct {
	Feeds []feed.Source `toml:"feeds"`
}

// LoadSources reads an ordered source list from a TOML file. Declaration
// order is kept: it decides which duplicate survives in the digest.
func LoadSources(path string) ([]feed.Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading sources file: %w", err)
	}

	var file TomlSources
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("error parsing sources file: %w", err)
	}
	if len(file.Feeds) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrNoSources)
	}
	return file.Feeds, nil
}

// DefaultSources are the cloud provider feeds used when no file is given.
func DefaultSources() []feed.Source {
	return []feed.Source{
		{Endpoint: "https://aws.amazon.com/blogs/aws/feed/", Label: "AWS"},
		{Endpoint: "https://azure.microsoft.com/en-us/blog/feed/", Label: "Azure"},
		{Endpoint: "https://cloud.google.com/feeds/gcp-release-notes.xml", Label: "Google Cloud"},
		{Endpoint: "https://developers.cloudflare.com/api/changelogs/rss.xml", Label: "Cloudflare"},
	}
}
