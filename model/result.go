package model

import "math"

// HistogramBinSize is the metric width of one histogram bucket.
const HistogramBinSize = 50.0

// Summary represents statistics produced by one execution unit for its shard.
type Summary struct {
	MinMetric  float64 `json:"minMetric" yaml:"minMetric"`
	MaxMetric  float64 `json:"maxMetric" yaml:"maxMetric"`
	AvgMetric  float64 `json:"avgMetric" yaml:"avgMetric"`
	Iterations int     `json:"iterations" yaml:"iterations"`
	// Histogram maps a bucket lower bound (see Bucket) to the number of trials in it.
	Histogram map[int]int `json:"histogram,omitempty" yaml:"histogram,omitempty"`
}

// Observe folds a single trial metric into the summary using a running mean.
func (s *Summary) Observe(metric float64) {
	s.Iterations++
	if s.Iterations == 1 || metric < s.MinMetric {
		s.MinMetric = metric
	}
	if s.Iterations == 1 || metric > s.MaxMetric {
		s.MaxMetric = metric
	}
	s.AvgMetric += (metric - s.AvgMetric) / float64(s.Iterations)
	if s.Histogram == nil {
		s.Histogram = map[int]int{}
	}
	s.Histogram[Bucket(metric)]++
}

// Bucket returns the histogram bucket lower bound for the metric.
func Bucket(metric float64) int {
	return int(math.Floor(metric/HistogramBinSize) * HistogramBinSize)
}

// Aggregate represents the merged statistics of a whole run.
type Aggregate struct {
	MinMetric      float64     `json:"minMetric" yaml:"minMetric"`
	MaxMetric      float64     `json:"maxMetric" yaml:"maxMetric"`
	AvgMetric      float64     `json:"avgMetric" yaml:"avgMetric"`
	Iterations     int         `json:"iterations" yaml:"iterations"`
	ElapsedSeconds float64     `json:"elapsedSeconds" yaml:"elapsedSeconds"`
	Histogram      map[int]int `json:"histogram,omitempty" yaml:"histogram,omitempty"`
}
