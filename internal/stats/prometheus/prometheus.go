// Package prometheus provides a Prometheus-based stats collector.
package prometheus

import (
	"errors"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/discochess/codecstream/internal/stats"
)

// help describes the metrics the library emits. Unknown names use the
// name as help text.
var help = map[string]string{
	stats.MetricSourceBytes:    "Raw bytes read from underlying sources.",
	stats.MetricDecodedBytes:   "Decoded bytes appended to stream buffers.",
	stats.MetricSinkBytes:      "Compressed bytes accepted by underlying sinks.",
	stats.MetricLines:          "Lines delivered by line reads.",
	stats.MetricChunkSize:      "Size of raw chunks read from sources.",
	stats.MetricStreamsOpen:    "Path-based streams opened.",
	stats.MetricCacheHits:      "Object cache hits.",
	stats.MetricCacheMisses:    "Object cache misses.",
	stats.MetricCacheSize:      "Objects held in the cache.",
	stats.MetricCacheBytes:     "Bytes held in the cache.",
	stats.MetricCacheEvictions: "Objects evicted from the cache.",
}

// byteBuckets covers chunk sizes from 64 B to 16 MiB.
var byteBuckets = prometheus.ExponentialBuckets(64, 4, 10)

// Collector implements stats.Collector using Prometheus metrics.
type Collector struct {
	registry    prometheus.Registerer
	constLabels prometheus.Labels

	mu         sync.RWMutex
	counters   map[string]prometheus.Counter
	gauges     map[string]prometheus.Gauge
	histograms map[string]prometheus.Histogram
}

// Compile-time check that Collector implements stats.Collector.
var _ stats.Collector = (*Collector)(nil)

// Option configures a Collector.
type Option func(*Collector)

// WithConstLabels attaches labels to every metric, e.g. the codec name.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Collector) {
		c.constLabels = labels
	}
}

// New creates a new Prometheus collector.
// If registry is nil, prometheus.DefaultRegisterer is used.
func New(registry prometheus.Registerer, opts ...Option) *Collector {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}
	c := &Collector{
		registry:   registry,
		counters:   make(map[string]prometheus.Counter),
		gauges:     make(map[string]prometheus.Gauge),
		histograms: make(map[string]prometheus.Histogram),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// IncCounter increments a counter metric.
func (c *Collector) IncCounter(name string, delta int64) {
	counter := getOrCreate(c, c.counters, name, func() prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{
			Name:        name,
			Help:        helpFor(name),
			ConstLabels: c.constLabels,
		})
	})
	counter.Add(float64(delta))
}

// SetGauge sets a gauge metric.
func (c *Collector) SetGauge(name string, value int64) {
	gauge := getOrCreate(c, c.gauges, name, func() prometheus.Gauge {
		return prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        name,
			Help:        helpFor(name),
			ConstLabels: c.constLabels,
		})
	})
	gauge.Set(float64(value))
}

// ObserveHistogram records a value in a histogram. Byte-sized metrics use
// exponential buckets; others use the Prometheus defaults.
func (c *Collector) ObserveHistogram(name string, value float64) {
	histogram := getOrCreate(c, c.histograms, name, func() prometheus.Histogram {
		buckets := prometheus.DefBuckets
		if name == stats.MetricChunkSize {
			buckets = byteBuckets
		}
		return prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:        name,
			Help:        helpFor(name),
			ConstLabels: c.constLabels,
			Buckets:     buckets,
		})
	})
	histogram.Observe(value)
}

// getOrCreate returns the metric cached under name, creating and
// registering it on first use. A metric registered elsewhere under the
// same name is reused.
func getOrCreate[M prometheus.Collector](c *Collector, cache map[string]M, name string, create func() M) M {
	c.mu.RLock()
	m, ok := cache[name]
	c.mu.RUnlock()
	if ok {
		return m
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if m, ok = cache[name]; ok {
		return m
	}

	m = create()
	if err := c.registry.Register(m); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(M); ok {
				m = existing
			}
		}
		// Other registration failures leave an unregistered but usable metric.
	}
	cache[name] = m
	return m
}

func helpFor(name string) string {
	if h, ok := help[name]; ok {
		return h
	}
	return name
}
