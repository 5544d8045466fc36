// Save as: internal/feed/fetcher.go
package feed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	securitynet "newsdigest/internal/security/netutil"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"
)

const (
	// Feeds larger than this are cut off before parsing.
	maxFeedBytes = 5 << 20

	DefaultTimeout  = 30 * time.Second
	DefaultAttempts = 3
)

// Observer is notified about every fetch and every finished digest.
type Observer interface {
	ObserveFetch(result FetchResult)
	ObserveDigest(digest Digest, fetched, unique int)
}

type nopObserver struct{}

func (nopObserver) ObserveFetch(FetchResult) {}
func (nopObserver) ObserveDigest(Digest, int, int) {}

type Options struct {
	// Timeout bounds one source's fetch, retries included.
	Timeout time.Duration
	// Attempts is the number of tries for transient failures (transport errors, 429, 5xx).
	Attempts int
	// AllowPrivate permits endpoints on private networks. Loopback is always permitted.
	AllowPrivate bool
	UserAgent    string
	Observer     Observer
}

// Fetcher retrieves one source at a time and never reports failure to its
// caller: a broken source is logged and contributes no items.
type Fetcher struct {
	client *http.Client
	parser Parser
	logger logrus.FieldLogger
	opts   Options
	now    func() time.Time
}

func NewFetcher(logger logrus.FieldLogger, parser Parser, opts Options) *Fetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Attempts < 1 {
		opts.Attempts = 1
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "newsdigest/dev"
	}
	if opts.Observer == nil {
		opts.Observer = nopObserver{}
	}

	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: 10 * time.Second, KeepAlive: 30 * time.Second}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
		ResponseHeaderTimeout: 10 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	client := &http.Client{Transport: transport, CheckRedirect: func(req *http.Request, via []*http.Request) error {
		if len(via) >= 5 {
			return fmt.Errorf("stopped after 5 redirects")
		}
		if !opts.AllowPrivate {
			return securitynet.CheckEndpoint(req.Context(), req.URL.String())
		}
		return nil
	}}

	return &Fetcher{
		client: client,
		parser: parser,
		logger: logger,
		opts:   opts,
		now:    time.Now,
	}
}

// Fetch returns the normalized items of src in feed order, or an empty slice
// if the source could not be fetched or parsed.
func (f *Fetcher) Fetch(ctx context.Context, src Source) []DigestItem {
	result := f.fetchSource(ctx, src)
	f.opts.Observer.ObserveFetch(result)

	log := f.logger.WithFields(logrus.Fields{
		"source":   src.Label,
		"endpoint": src.Endpoint,
		"duration": result.Duration.Round(time.Millisecond).String(),
	})
	if result.Error != nil {
		log.WithError(result.Error).Errorf("Error fetching %s", src.Label)
		return []DigestItem{}
	}
	log.WithField("items", len(result.Items)).Info("Fetched feed")
	return result.Items
}

func (f *Fetcher) fetchSource(ctx context.Context, src Source) FetchResult {
	start := time.Now()
	result := FetchResult{Source: src, Items: []DigestItem{}}
	f.logger.WithField("source", src.Label).Infof("Fetching %s...", src.Label)

	ctx, cancel := context.WithTimeout(ctx, f.opts.Timeout)
	defer cancel()

	raw, err := f.retrieve(ctx, src)
	if err != nil {
		result.Error = err
		result.Duration = time.Since(start)
		return result
	}

	now := f.now()
	items := make([]DigestItem, 0, len(raw))
	for _, r := range raw {
		items = append(items, Normalize(r, src, now))
	}
	result.Items = items
	result.Duration = time.Since(start)
	return result
}

// retrieve downloads and parses src, retrying transient failures with
// exponential backoff until Attempts or the fetch timeout runs out.
func (f *Fetcher) retrieve(ctx context.Context, src Source) ([]RawItem, error) {
	if !f.opts.AllowPrivate {
		if err := securitynet.CheckEndpoint(ctx, src.Endpoint); err != nil {
			return nil, err
		}
	}

	var items []RawItem
	operation := func() error {
		var err error
		items, err = f.download(ctx, src)
		return err
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 250 * time.Millisecond
	b.MaxInterval = 5 * time.Second
	b.MaxElapsedTime = 0
	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(f.opts.Attempts-1)), ctx)

	err := backoff.RetryNotify(operation, policy, func(err error, wait time.Duration) {
		f.logger.WithFields(logrus.Fields{
			"source": src.Label,
			"retry":  wait.Round(time.Millisecond).String(),
		}).WithError(err).Warn("Transient fetch failure, retrying")
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (f *Fetcher) download(ctx context.Context, src Source) ([]RawItem, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.Endpoint, nil)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("error creating request: %w", err))
	}
	req.Header.Set("User-Agent", f.opts.UserAgent)
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/feed+json, application/xml;q=0.9, */*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		if errors.Is(err, securitynet.ErrPrivateDestination) {
			return nil, backoff.Permanent(err)
		}
		return nil, fmt.Errorf("error fetching feed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, fmt.Errorf("unexpected response status %d", resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, backoff.Permanent(fmt.Errorf("unexpected response status %d", resp.StatusCode))
	}

	items, err := f.parser.Parse(io.LimitReader(resp.Body, maxFeedBytes))
	if err != nil {
		return nil, backoff.Permanent(err)
	}
	return items, nil
}
