package snapshot

import (
	"newsdigest/internal/feed"
	"newsdigest/internal/rss"
)

// RSSEncoder renders the digest as an RSS 2.0 channel described by info.
func RSSEncoder(info rss.ChannelInfo) Encoder {
	return func(d feed.Digest) ([]byte, error) {
		return rss.Encode(rss.FromDigest(d, info))
	}
}
