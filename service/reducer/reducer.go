// Package reducer merges per-unit statistics into a run aggregate.
package reducer

import (
	"math"
	"time"

	"github.com/viant/simrun/model"
)

// Merge folds summary into acc and returns the updated aggregate. A nil acc
// starts a new aggregate from the summary. Merging is commutative and
// associative up to floating-point rounding of the weighted mean.
func Merge(acc *model.Aggregate, summary *model.Summary) *model.Aggregate {
	if summary == nil {
		return acc
	}
	if acc == nil {
		return &model.Aggregate{
			MinMetric:  summary.MinMetric,
			MaxMetric:  summary.MaxMetric,
			AvgMetric:  summary.AvgMetric,
			Iterations: summary.Iterations,
			Histogram:  mergeHistogram(nil, summary.Histogram),
		}
	}
	acc.MinMetric = math.Min(acc.MinMetric, summary.MinMetric)
	acc.MaxMetric = math.Max(acc.MaxMetric, summary.MaxMetric)
	if total := acc.Iterations + summary.Iterations; total > 0 {
		acc.AvgMetric = (acc.AvgMetric*float64(acc.Iterations) + summary.AvgMetric*float64(summary.Iterations)) / float64(total)
	}
	acc.Iterations += summary.Iterations
	acc.Histogram = mergeHistogram(acc.Histogram, summary.Histogram)
	return acc
}

// Finalize stamps the elapsed wall-clock time on the aggregate.
func Finalize(acc *model.Aggregate, elapsed time.Duration) *model.Aggregate {
	if acc != nil {
		acc.ElapsedSeconds = elapsed.Seconds()
	}
	return acc
}

func mergeHistogram(dest, src map[int]int) map[int]int {
	if len(src) == 0 {
		return dest
	}
	if dest == nil {
		dest = make(map[int]int, len(src))
	}
	for bucket, count := range src {
		dest[bucket] += count
	}
	return dest
}
