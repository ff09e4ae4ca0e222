// Package stats provides a unified interface for collecting metrics.
package stats

// Metric names used throughout the library.
const (
	// Stream metrics.
	MetricSourceBytes  = "codecstream_source_bytes_total"
	MetricDecodedBytes = "codecstream_decoded_bytes_total"
	MetricSinkBytes    = "codecstream_sink_bytes_total"
	MetricLines        = "codecstream_lines_total"
	MetricChunkSize    = "codecstream_chunk_bytes"
	MetricStreamsOpen  = "codecstream_streams_opened_total"

	// Cache metrics.
	MetricCacheHits      = "codecstream_cache_hits_total"
	MetricCacheMisses    = "codecstream_cache_misses_total"
	MetricCacheEvictions = "codecstream_cache_evictions_total"
	MetricCacheSize      = "codecstream_cache_size"
	MetricCacheBytes     = "codecstream_cache_bytes"
)

// Collector defines the interface for collecting metrics.
type Collector interface {
	// IncCounter increments a counter metric by delta.
	IncCounter(name string, delta int64)

	// SetGauge sets a gauge metric to value.
	SetGauge(name string, value int64)

	// ObserveHistogram records a value in a histogram metric.
	ObserveHistogram(name string, value float64)
}

// Discard drops every metric.
var Discard Collector = discard{}

type discard struct{}

func (discard) IncCounter(string, int64)         {}
func (discard) SetGauge(string, int64)           {}
func (discard) ObserveHistogram(string, float64) {}

// Multi fans each metric out to every non-nil collector. It returns
// Discard when none are given.
func Multi(collectors ...Collector) Collector {
	var m multi
	for _, c := range collectors {
		if c != nil {
			m = append(m, c)
		}
	}
	switch len(m) {
	case 0:
		return Discard
	case 1:
		return m[0]
	}
	return m
}

type multi []Collector

func (m multi) IncCounter(name string, delta int64) {
	for _, c := range m {
		c.IncCounter(name, delta)
	}
}

func (m multi) SetGauge(name string, value int64) {
	for _, c := range m {
		c.SetGauge(name, value)
	}
}

func (m multi) ObserveHistogram(name string, value float64) {
	for _, c := range m {
		c.ObserveHistogram(name, value)
	}
}
