// Package logger provides a zap-based stats collector that keeps running
// totals and logs them.
package logger

import (
	"maps"
	"slices"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/discochess/codecstream/internal/stats"
)

// Collector implements stats.Collector by accumulating metrics in memory.
// Each update is logged at the configured level; Flush logs the totals.
type Collector struct {
	logger *zap.Logger
	level  zapcore.Level

	mu       sync.Mutex
	counters map[string]int64
	gauges   map[string]int64
	hists    map[string]*Histogram
}

// Histogram summarizes the observations of one histogram metric.
type Histogram struct {
	Count    int64
	Sum      float64
	Min, Max float64
}

// Snapshot is a point-in-time copy of the collected metrics.
type Snapshot struct {
	Counters   map[string]int64
	Gauges     map[string]int64
	Histograms map[string]Histogram
}

// Compile-time check that Collector implements stats.Collector.
var _ stats.Collector = (*Collector)(nil)

// Option configures a Collector.
type Option func(*Collector)

// WithLevel sets the level per-update entries are logged at.
// Default is zapcore.DebugLevel.
func WithLevel(level zapcore.Level) Option {
	return func(c *Collector) {
		c.level = level
	}
}

// New creates a new logger-based collector.
// If logger is nil, a no-op logger is used.
func New(logger *zap.Logger, opts ...Option) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Collector{
		logger:   logger,
		level:    zapcore.DebugLevel,
		counters: make(map[string]int64),
		gauges:   make(map[string]int64),
		hists:    make(map[string]*Histogram),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// IncCounter adds delta to a counter and logs the new total.
func (c *Collector) IncCounter(name string, delta int64) {
	c.mu.Lock()
	c.counters[name] += delta
	total := c.counters[name]
	c.mu.Unlock()

	c.logger.Log(c.level, "counter",
		zap.String("metric", name),
		zap.Int64("delta", delta),
		zap.Int64("total", total),
	)
}

// SetGauge records and logs a gauge value.
func (c *Collector) SetGauge(name string, value int64) {
	c.mu.Lock()
	c.gauges[name] = value
	c.mu.Unlock()

	c.logger.Log(c.level, "gauge",
		zap.String("metric", name),
		zap.Int64("value", value),
	)
}

// ObserveHistogram folds a value into a histogram summary.
func (c *Collector) ObserveHistogram(name string, value float64) {
	c.mu.Lock()
	h, ok := c.hists[name]
	if !ok {
		h = &Histogram{Min: value, Max: value}
		c.hists[name] = h
	}
	h.Count++
	h.Sum += value
	h.Min = min(h.Min, value)
	h.Max = max(h.Max, value)
	c.mu.Unlock()

	c.logger.Log(c.level, "histogram",
		zap.String("metric", name),
		zap.Float64("value", value),
	)
}

// Snapshot returns a copy of the current metrics.
func (c *Collector) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Snapshot{
		Counters:   maps.Clone(c.counters),
		Gauges:     maps.Clone(c.gauges),
		Histograms: make(map[string]Histogram, len(c.hists)),
	}
	for name, h := range c.hists {
		s.Histograms[name] = *h
	}
	return s
}

// Flush logs one info entry per metric, sorted by name.
func (c *Collector) Flush() {
	s := c.Snapshot()
	for _, name := range slices.Sorted(maps.Keys(s.Counters)) {
		c.logger.Info("counter total",
			zap.String("metric", name),
			zap.Int64("total", s.Counters[name]),
		)
	}
	for _, name := range slices.Sorted(maps.Keys(s.Gauges)) {
		c.logger.Info("gauge value",
			zap.String("metric", name),
			zap.Int64("value", s.Gauges[name]),
		)
	}
	for _, name := range slices.Sorted(maps.Keys(s.Histograms)) {
		h := s.Histograms[name]
		c.logger.Info("histogram summary",
			zap.String("metric", name),
			zap.Int64("count", h.Count),
			zap.Float64("sum", h.Sum),
			zap.Float64("min", h.Min),
			zap.Float64("max", h.Max),
		)
	}
}
