package bench

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func Test_calculateMedian(t *testing.T) {
	tests := []struct {
		data []float64
		want float64
	}{
		{nil, 0},
		{[]float64{4}, 4},
		{[]float64{3, 1, 2}, 2},
		{[]float64{4, 1, 3, 2}, 2.5},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, calculateMedian(tt.data), "%v", tt.data)
	}

	data := []float64{3, 1, 2}
	calculateMedian(data)
	assert.Equal(t, []float64{3, 1, 2}, data, "input must not be reordered")
}

func Test_interquartileRange(t *testing.T) {
	assert.Zero(t, interquartileRange(nil))
	assert.Zero(t, interquartileRange([]float64{1.5}))
	assert.Zero(t, interquartileRange([]float64{2, 2, 2}))

	tests := []struct {
		data []float64
		want float64
	}{
		{[]float64{1, 2}, 1.5},
		{[]float64{2, 1}, 1.5},
		{[]float64{1, 2, 3}, 2.0},
		{[]float64{1, 2, 3, 4}, 2.5},
		{[]float64{1, 2, 3, 4, 100}, 50.5},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, interquartileRange(tt.data), 1e-12, "%v", tt.data)
	}
}

func Test_hasOutliers(t *testing.T) {
	tests := []struct {
		name string
		data []float64
		want bool
	}{
		{"identical", []float64{1, 1, 1, 1}, false},
		{"two samples", []float64{1, 50}, false},
		{"zero deviation", []float64{1, 1, 5}, false},
		{"steady", []float64{10, 11, 10.5, 9.8, 10.2}, false},
		{"one spike", []float64{10, 10.1, 9.9, 10, 10.05, 500}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, hasOutliers(tt.data))
		})
	}
}

func Test_meanStdDev(t *testing.T) {
	mean, sd := meanStdDev([]float64{7})
	assert.Equal(t, 7.0, mean)
	assert.Zero(t, sd)

	mean, sd = meanStdDev([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	assert.InDelta(t, 5.0, mean, 1e-12)
	assert.InDelta(t, 2.138, sd, 1e-3)
}

func Test_seconds(t *testing.T) {
	secs := seconds([]time.Duration{time.Second, 1500 * time.Millisecond})
	assert.Equal(t, []float64{1, 1.5}, secs)
	assert.Equal(t, 250*time.Millisecond, fromSeconds(0.25))
}
