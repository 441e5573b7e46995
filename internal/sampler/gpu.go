package sampler

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"sync"

	"go.uber.org/zap"
)

var errNoGPU = errors.New("nvidia-smi reported no gpus")

var smiQuery = []string{
	"--query-gpu=utilization.gpu,memory.used,temperature.gpu",
	"--format=csv,noheader,nounits",
}

type gpuReading struct {
	count       int
	utilization float64
	memoryMB    float64
	temperature float64
}

// gpuProbe looks for nvidia-smi once and queries it on every sample when present.
type gpuProbe struct {
	disabled bool
	once     sync.Once
	path     string
}

func (g *gpuProbe) sample(snap *ResourceSnapshot, logger *zap.Logger) {
	if g.disabled {
		return
	}
	g.once.Do(func() {
		path, err := exec.LookPath("nvidia-smi")
		if err != nil {
			logger.Debug("nvidia-smi not found, gpu metrics disabled")
			return
		}
		g.path = path
	})
	if g.path == "" {
		return
	}

	out, err := exec.Command(g.path, smiQuery...).Output()
	if err != nil {
		logger.Warn("gpu query failed, reporting zero", zap.Error(err))
		return
	}
	reading, err := parseSMIOutput(string(out))
	if err != nil {
		logger.Warn("gpu output unreadable, reporting zero", zap.Error(err))
		return
	}

	snap.GPUCount = reading.count
	snap.GPUUtilization = reading.utilization
	snap.GPUMemoryMB = reading.memoryMB
	snap.GPUTemperature = reading.temperature
}

// parseSMIOutput reads one csv row per gpu and keeps the first gpu's figures.
func parseSMIOutput(out string) (gpuReading, error) {
	r := csv.NewReader(strings.NewReader(strings.TrimSpace(out)))
	r.TrimLeadingSpace = true
	records, err := r.ReadAll()
	if err != nil {
		return gpuReading{}, err
	}
	if len(records) == 0 {
		return gpuReading{}, errNoGPU
	}

	first := records[0]
	if len(first) < 3 {
		return gpuReading{}, fmt.Errorf("expected 3 columns, got %d", len(first))
	}
	values := make([]float64, 3)
	for i := range values {
		v, err := strconv.ParseFloat(strings.TrimSpace(first[i]), 64)
		if err != nil {
			// "[N/A]" on some boards
			continue
		}
		values[i] = v
	}

	return gpuReading{
		count:       len(records),
		utilization: values[0],
		memoryMB:    values[1],
		temperature: values[2],
	}, nil
}
