package bench

import (
	"math"
	"sort"
	"time"

	"github.com/samber/lo"
	"gonum.org/v1/gonum/stat"
)

// borrowed from hyperfine
// https://github.com/sharkdp/hyperfine/blob/master/src/outlier_detection.rs
const outlierThreshold = 14.826

func seconds(ds []time.Duration) []float64 {
	return lo.Map(ds, func(d time.Duration, _ int) float64 { return d.Seconds() })
}

func fromSeconds(s float64) time.Duration {
	return time.Duration(math.Round(s * float64(time.Second)))
}

// sortedCopy leaves the caller's trial order untouched.
func sortedCopy(data []float64) []float64 {
	out := append([]float64(nil), data...)
	sort.Float64s(out)
	return out
}

// calculates the median of data
func calculateMedian(data []float64) float64 {
	n := len(data)
	if n == 0 {
		return 0
	}
	data = sortedCopy(data)
	if n%2 == 0 {
		return (data[n/2-1] + data[n/2]) / 2
	}
	return data[n/2]
}

// quartile returns the i-th of the three cut points splitting sorted into
// quarters, using the exclusive method: positions are i*(n+1)/4, clamped to
// the interior so small samples extrapolate linearly from the end pairs.
func quartile(sorted []float64, i int) float64 {
	n := len(sorted)
	m := n + 1
	j := min(max(i*m/4, 1), n-1)
	delta := float64(i*m - j*4)
	return (sorted[j-1]*(4-delta) + sorted[j]*delta) / 4
}

// interquartileRange is zero for fewer than two samples.
func interquartileRange(data []float64) float64 {
	if len(data) < 2 {
		return 0
	}
	data = sortedCopy(data)
	return math.Max(0, quartile(data, 3)-quartile(data, 1))
}

// meanStdDev uses the sample standard deviation.
func meanStdDev(data []float64) (float64, float64) {
	switch len(data) {
	case 0:
		return 0, 0
	case 1:
		return data[0], 0
	}
	return stat.MeanStdDev(data, nil)
}

// calculates the median absolute deviation of data
func calculateMAD(data []float64, median float64) float64 {
	return calculateMedian(lo.Map(data, func(v float64, _ int) float64 { return math.Abs(v - median) }))
}

// returns a slice of absolute modified z-scores of each data point
func calculateModifiedZScore(data []float64) []float64 {
	median := calculateMedian(data)
	mad := calculateMAD(data, median)

	return lo.Map(data, func(v float64, _ int) float64 {
		if v == median || mad == 0 {
			return 0
		}
		return math.Abs(0.6745 * (v - median) / mad)
	})
}

// hasOutliers reports whether any sample is a statistical outlier.
func hasOutliers(data []float64) bool {
	return lo.SomeBy(calculateModifiedZScore(data), func(z float64) bool { return z > outlierThreshold })
}
