package measure

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Stats are descriptive statistics over one ROI window of 16-bit samples.
type Stats struct {
	Mean   float64
	Stdev  float64 // population standard deviation
	Median int     // integer truncation of the midpoint median
	Mode   int
	Min    int
	Max    int
}

// Describe computes descriptive statistics over a non-empty sample window.
func Describe(samples []uint16) Stats {
	vals := make([]float64, len(samples))
	min, max := int(samples[0]), int(samples[0])
	for i, v := range samples {
		vals[i] = float64(v)
		if int(v) < min {
			min = int(v)
		}
		if int(v) > max {
			max = int(v)
		}
	}

	mean := stat.Mean(vals, nil)
	stdev := 0.0
	if len(vals) > 1 {
		stdev = stat.PopStdDev(vals, nil)
	}

	sorted := make([]float64, len(vals))
	copy(sorted, vals)
	sort.Float64s(sorted)

	return Stats{
		Mean:   mean,
		Stdev:  stdev,
		Median: int(median(sorted)),
		Mode:   Mode(samples),
		Min:    min,
		Max:    max,
	}
}

// median returns the midpoint median of a sorted, non-empty window: the middle
// element for odd counts, the average of the two middle elements for even
// counts.
func median(sorted []float64) float64 {
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// Mode returns the most frequent sample value. Ties break toward the smallest
// value: the count table is scanned in ascending value order and the first
// maximum wins, matching an argmax over an ascending frequency table.
func Mode(samples []uint16) int {
	var counts [65536]int
	for _, v := range samples {
		counts[v]++
	}
	mode, best := 0, 0
	for v, c := range counts {
		if c > best {
			best = c
			mode = v
		}
	}
	return mode
}
