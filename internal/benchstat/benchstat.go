// Package benchstat summarizes repeated codec throughput measurements.
package benchstat

import (
	"fmt"
	"math"
	"slices"
	"time"

	"gonum.org/v1/gonum/stat"
)

// Summary contains descriptive statistics for a sample.
type Summary struct {
	N      int
	Mean   float64
	StdDev float64
	Min    float64
	Median float64
	P90    float64
	Max    float64
}

// Describe computes descriptive statistics for a sample.
func Describe(sample []float64) Summary {
	if len(sample) == 0 {
		return Summary{}
	}

	sorted := slices.Clone(sample)
	slices.Sort(sorted)

	s := Summary{
		N:      len(sorted),
		Mean:   stat.Mean(sorted, nil),
		Min:    sorted[0],
		Median: stat.Quantile(0.5, stat.Empirical, sorted, nil),
		P90:    stat.Quantile(0.9, stat.Empirical, sorted, nil),
		Max:    sorted[len(sorted)-1],
	}
	if len(sorted) > 1 {
		s.StdDev = stat.StdDev(sorted, nil)
	}
	return s
}

// Throughput converts (bytes, duration) runs into MiB/s samples. Runs
// with a non-positive duration are skipped.
func Throughput(bytes int64, durations []time.Duration) []float64 {
	out := make([]float64, 0, len(durations))
	for _, d := range durations {
		if d <= 0 {
			continue
		}
		out = append(out, float64(bytes)/(1<<20)/d.Seconds())
	}
	return out
}

// Comparison describes how sample a differs from sample b.
type Comparison struct {
	MeanDiffPct float64 // (mean(a) - mean(b)) / mean(b) * 100.
	CohensD     float64
	Effect      string // "negligible", "small", "medium", "large", "undefined".
}

// Compare computes the relative mean difference and Cohen's d of a
// against b.
func Compare(a, b []float64) Comparison {
	if len(a) < 2 || len(b) < 2 {
		return Comparison{Effect: "undefined"}
	}

	meanA, varA := stat.MeanVariance(a, nil)
	meanB, varB := stat.MeanVariance(b, nil)

	na, nb := float64(len(a)), float64(len(b))
	pooled := math.Sqrt(((na-1)*varA + (nb-1)*varB) / (na + nb - 2))

	var c Comparison
	if meanB != 0 {
		c.MeanDiffPct = (meanA - meanB) / meanB * 100
	}
	if pooled > 0 {
		c.CohensD = (meanA - meanB) / pooled
	}
	c.Effect = effect(math.Abs(c.CohensD))
	return c
}

func effect(d float64) string {
	switch {
	case d < 0.2:
		return "negligible"
	case d < 0.5:
		return "small"
	case d < 0.8:
		return "medium"
	default:
		return "large"
	}
}

// FormatBytes renders a byte count with a binary unit suffix.
func FormatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
