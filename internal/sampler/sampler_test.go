package sampler

import (
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSystemSample(t *testing.T) {
	s := New(WithCPUInterval(0), WithGPU(false))
	snap := s.Sample()

	assert.Equal(t, runtime.GOOS, snap.Platform)
	assert.Equal(t, runtime.NumCPU(), snap.CPUCores)
	assert.GreaterOrEqual(t, snap.MemoryMB, 0.0)
	assert.GreaterOrEqual(t, snap.ReadCount, int64(0))
	assert.GreaterOrEqual(t, snap.DiskPercent, 0.0)
	assert.Zero(t, snap.GPUCount)
}

func TestSystemSampleMissingDisk(t *testing.T) {
	s := New(WithCPUInterval(0), WithGPU(false), WithDiskPath("/definitely/not/a/mount/point"))

	require.NotPanics(t, func() {
		snap := s.Sample()
		assert.Zero(t, snap.DiskPercent)
	})
}

func TestStaticAndFunc(t *testing.T) {
	want := ResourceSnapshot{MemoryMB: 12.5, ReadCount: 3, Platform: "test"}
	assert.Equal(t, want, Static{Snapshot: want}.Sample())

	calls := 0
	f := Func(func() ResourceSnapshot {
		calls++
		return want
	})
	f.Sample()
	f.Sample()
	assert.Equal(t, 2, calls)
}

func TestProcessCPUTimeMonotonic(t *testing.T) {
	before := ProcessCPUTime()
	deadline := time.Now().Add(20 * time.Millisecond)
	x := 0
	for time.Now().Before(deadline) {
		x++
	}
	after := ProcessCPUTime()
	assert.GreaterOrEqual(t, after, before)
	assert.Positive(t, x)
}

func Test_parseSMIOutput(t *testing.T) {
	tests := []struct {
		name    string
		out     string
		want    gpuReading
		wantErr bool
	}{
		{
			name: "single gpu",
			out:  "37, 1024, 55\n",
			want: gpuReading{count: 1, utilization: 37, memoryMB: 1024, temperature: 55},
		},
		{
			name: "two gpus keeps first",
			out:  "10, 200, 40\n90, 8000, 80\n",
			want: gpuReading{count: 2, utilization: 10, memoryMB: 200, temperature: 40},
		},
		{
			name: "not available column",
			out:  "[N/A], 512, 47",
			want: gpuReading{count: 1, utilization: 0, memoryMB: 512, temperature: 47},
		},
		{name: "empty", out: "", wantErr: true},
		{name: "short row", out: "1, 2", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseSMIOutput(tt.out)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
