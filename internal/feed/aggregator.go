package feed

import (
	"context"
	"slices"
	"time"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// DefaultMaxItems is the size cap of a digest.
const DefaultMaxItems = 30

// SourceFetcher fetches one source. Implementations absorb their own failures.
type SourceFetcher interface {
	Fetch(ctx context.Context, src Source) []DigestItem
}

type Aggregator struct {
	fetcher     SourceFetcher
	logger      logrus.FieldLogger
	observer    Observer
	maxItems    int
	concurrency int
	now         func() time.Time
}

// NewAggregator builds an Aggregator. maxItems <= 0 selects DefaultMaxItems;
// concurrency <= 0 starts every fetch at once.
func NewAggregator(fetcher SourceFetcher, logger logrus.FieldLogger, observer Observer, maxItems, concurrency int) *Aggregator {
	if maxItems <= 0 {
		maxItems = DefaultMaxItems
	}
	if observer == nil {
		observer = nopObserver{}
	}
	return &Aggregator{
		fetcher:     fetcher,
		logger:      logger,
		observer:    observer,
		maxItems:    maxItems,
		concurrency: concurrency,
		now:         time.Now,
	}
}

// Aggregate fetches every source concurrently, waits for all of them and
// builds the digest. Item precedence follows the order of sources, never the
// order in which fetches complete.
func (a *Aggregator) Aggregate(ctx context.Context, sources []Source) Digest {
	a.logger.WithField("sources", len(sources)).Info("Starting news update")

	combined := Combine(a.fetchAll(ctx, sources))
	a.logger.WithField("items", len(combined)).Info("Total items fetched")

	unique := Dedupe(combined)
	a.logger.WithField("items", len(unique)).Info("Unique items after deduplication")

	SortNewestFirst(unique)
	items := Truncate(unique, a.maxItems)
	a.logger.WithField("items", len(items)).Infof("Keeping latest %d items", a.maxItems)

	digest := Digest{GeneratedAt: a.now(), Items: items}
	a.observer.ObserveDigest(digest, len(combined), len(unique))
	return digest
}

// fetchAll returns one slot per source, in declaration order.
func (a *Aggregator) fetchAll(ctx context.Context, sources []Source) [][]DigestItem {
	results := make([][]DigestItem, len(sources))

	var g errgroup.Group
	if a.concurrency > 0 {
		g.SetLimit(a.concurrency)
	}
	for i, src := range sources {
		i, src := i, src
		g.Go(func() error {
			results[i] = a.fetcher.Fetch(ctx, src)
			return nil
		})
	}
	// Fetch never fails, so Wait is only a join point.
	_ = g.Wait()
	return results
}

// Combine flattens per-source results keeping source order.
func Combine(results [][]DigestItem) []DigestItem {
	return lo.Flatten(results)
}

// Dedupe keeps the first item seen for every URL.
func Dedupe(items []DigestItem) []DigestItem {
	return lo.UniqBy(items, func(item DigestItem) string {
		return item.URL
	})
}

// SortNewestFirst orders items by publication time, newest first. Items with
// equal timestamps keep their relative order.
func SortNewestFirst(items []DigestItem) {
	slices.SortStableFunc(items, func(x, y DigestItem) int {
		return y.PublishedAt.Compare(x.PublishedAt)
	})
}

func Truncate(items []DigestItem, limit int) []DigestItem {
	if len(items) <= limit {
		return items
	}
	return items[:limit]
}
