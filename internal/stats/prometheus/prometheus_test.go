package prometheus

import (
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/discochess/codecstream/internal/stats"
)

func gather(t *testing.T, reg *prometheus.Registry) map[string]*dto.MetricFamily {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	out := make(map[string]*dto.MetricFamily, len(families))
	for _, f := range families {
		out[f.GetName()] = f
	}
	return out
}

func TestNew_DefaultRegistry(t *testing.T) {
	c := New(nil)
	if c.registry != prometheus.DefaultRegisterer {
		t.Error("New(nil) should use the default registerer")
	}
}

func TestCollector_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(reg)

	c.IncCounter(stats.MetricSourceBytes, 5)
	c.IncCounter(stats.MetricSourceBytes, 3)
	c.SetGauge(stats.MetricCacheSize, 42)
	c.ObserveHistogram(stats.MetricChunkSize, 100)
	c.ObserveHistogram(stats.MetricChunkSize, 5000)
	c.ObserveHistogram("custom_histogram", 0.5)

	families := gather(t, reg)

	src := families[stats.MetricSourceBytes]
	if src == nil {
		t.Fatal("source bytes counter not registered")
	}
	if v := src.GetMetric()[0].GetCounter().GetValue(); v != 8 {
		t.Errorf("counter value = %v, want 8", v)
	}
	if src.GetHelp() != help[stats.MetricSourceBytes] {
		t.Errorf("help = %q", src.GetHelp())
	}

	if v := families[stats.MetricCacheSize].GetMetric()[0].GetGauge().GetValue(); v != 42 {
		t.Errorf("gauge value = %v, want 42", v)
	}

	chunks := families[stats.MetricChunkSize].GetMetric()[0].GetHistogram()
	if chunks.GetSampleCount() != 2 {
		t.Errorf("histogram count = %v, want 2", chunks.GetSampleCount())
	}
	if len(chunks.GetBucket()) != len(byteBuckets) {
		t.Errorf("chunk histogram has %d buckets, want %d", len(chunks.GetBucket()), len(byteBuckets))
	}

	custom := families["custom_histogram"]
	if custom.GetHelp() != "custom_histogram" {
		t.Errorf("unknown metric help = %q, want its name", custom.GetHelp())
	}
	if n := len(custom.GetMetric()[0].GetHistogram().GetBucket()); n != len(prometheus.DefBuckets) {
		t.Errorf("custom histogram has %d buckets, want %d", n, len(prometheus.DefBuckets))
	}
}

func TestCollector_ConstLabels(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(reg, WithConstLabels(prometheus.Labels{"codec": "zstd"}))

	c.IncCounter(stats.MetricLines, 1)

	m := gather(t, reg)[stats.MetricLines].GetMetric()[0]
	if len(m.GetLabel()) != 1 || m.GetLabel()[0].GetName() != "codec" || m.GetLabel()[0].GetValue() != "zstd" {
		t.Errorf("labels = %v, want codec=zstd", m.GetLabel())
	}
}

func TestCollector_ConcurrentAccess(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(reg)

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range 100 {
				c.IncCounter(stats.MetricLines, 1)
				c.SetGauge(stats.MetricCacheSize, int64(j))
				c.ObserveHistogram(stats.MetricChunkSize, float64(j))
			}
		}()
	}
	wg.Wait()

	families := gather(t, reg)
	if v := families[stats.MetricLines].GetMetric()[0].GetCounter().GetValue(); v != 1000 {
		t.Errorf("counter value = %v, want 1000", v)
	}
	if n := families[stats.MetricChunkSize].GetMetric()[0].GetHistogram().GetSampleCount(); n != 1000 {
		t.Errorf("histogram count = %v, want 1000", n)
	}
}

func TestCollector_AlreadyRegistered(t *testing.T) {
	reg := prometheus.NewRegistry()

	existing := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "preexisting_counter",
		Help: "preexisting_counter",
	})
	reg.MustRegister(existing)
	existing.Add(100)

	c := New(reg)
	c.IncCounter("preexisting_counter", 5)

	if v := gather(t, reg)["preexisting_counter"].GetMetric()[0].GetCounter().GetValue(); v != 105 {
		t.Errorf("counter value = %v, want 105", v)
	}
}
