package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"newsdigest/internal/feed"
)

// Recorder collects the outcome of one run. It satisfies feed.Observer and is
// safe for concurrent fetches.
type Recorder struct {
	registry *prometheus.Registry

	fetchSuccess  *prometheus.GaugeVec
	fetchDuration *prometheus.GaugeVec
	fetchItems    *prometheus.GaugeVec
	itemsFetched  prometheus.Gauge
	itemsUnique   prometheus.Gauge
	digestItems   prometheus.Gauge
	lastGenerated prometheus.Gauge
}

var _ feed.Observer = (*Recorder)(nil)

func NewRecorder() *Recorder {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Recorder{
		registry: registry,
		fetchSuccess: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "newsdigest_fetch_success",
			Help: "Whether the last fetch of a source succeeded (1) or failed (0)",
		}, []string{"source"}),
		fetchDuration: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "newsdigest_fetch_duration_seconds",
			Help: "Time spent fetching a source, retries included",
		}, []string{"source"}),
		fetchItems: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "newsdigest_fetch_items",
			Help: "Items a source contributed before deduplication",
		}, []string{"source"}),
		itemsFetched: factory.NewGauge(prometheus.GaugeOpts{
			Name: "newsdigest_items_fetched",
			Help: "Items fetched across all sources",
		}),
		itemsUnique: factory.NewGauge(prometheus.GaugeOpts{
			Name: "newsdigest_items_unique",
			Help: "Items left after deduplication by url",
		}),
		digestItems: factory.NewGauge(prometheus.GaugeOpts{
			Name: "newsdigest_digest_items",
			Help: "Items written to the digest",
		}),
		lastGenerated: factory.NewGauge(prometheus.GaugeOpts{
			Name: "newsdigest_last_generated_timestamp_seconds",
			Help: "Unix time the digest was generated",
		}),
	}
}

func (r *Recorder) ObserveFetch(result feed.FetchResult) {
	label := result.Source.Label
	if result.Error != nil {
		r.fetchSuccess.WithLabelValues(label).Set(0)
	} else {
		r.fetchSuccess.WithLabelValues(label).Set(1)
	}
	r.fetchDuration.WithLabelValues(label).Set(result.Duration.Seconds())
	r.fetchItems.WithLabelValues(label).Set(float64(len(result.Items)))
}

func (r *Recorder) ObserveDigest(digest feed.Digest, fetched, unique int) {
	r.itemsFetched.Set(float64(fetched))
	r.itemsUnique.Set(float64(unique))
	r.digestItems.Set(float64(len(digest.Items)))
	r.lastGenerated.Set(float64(digest.GeneratedAt.UnixMilli()) / 1000)
}

// Registry exposes the collectors, mainly for tests.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// WriteTextfile writes the collected metrics in the text exposition format,
// atomically, for the node_exporter textfile collector.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("error writing metrics textfile: %w", err)
	}
	return nil
}
