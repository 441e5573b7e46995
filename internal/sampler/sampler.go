package sampler

import (
	"os"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/net"
	"github.com/shirou/gopsutil/v3/process"
	"go.uber.org/zap"
)

const (
	mb = 1024 * 1024
	gb = 1024 * 1024 * 1024
	kb = 1024
)

// DefaultCPUInterval is how long a sample blocks to measure system CPU usage.
const DefaultCPUInterval = 100 * time.Millisecond

// ResourceSnapshot is a point-in-time view of process and system resource usage.
// A field whose subsystem could not be queried is left at zero.
type ResourceSnapshot struct {
	MemoryMB        float64 `json:"memory_mb"`
	VirtualMemoryMB float64 `json:"virtual_memory_mb"`
	MemoryPercent   float64 `json:"memory_percent"`

	ReadCount  int64 `json:"read_count"`
	WriteCount int64 `json:"write_count"`
	ReadBytes  int64 `json:"read_bytes"`
	WriteBytes int64 `json:"write_bytes"`

	CPUPercent          float64 `json:"cpu_percent"`
	SystemMemoryPercent float64 `json:"system_memory_percent"`
	AvailableGB         float64 `json:"available_gb"`
	DiskPercent         float64 `json:"disk_percent"`
	NetSentKB           float64 `json:"net_sent_kb"`
	NetRecvKB           float64 `json:"net_recv_kb"`

	GPUCount       int     `json:"gpu_count"`
	GPUUtilization float64 `json:"gpu_utilization"`
	GPUMemoryMB    float64 `json:"gpu_memory_mb"`
	GPUTemperature float64 `json:"gpu_temperature"`

	CPUCores int    `json:"cpu_cores"`
	Threads  int    `json:"threads"`
	Platform string `json:"platform"`
}

// Sampler takes resource snapshots. Implementations never fail.
type Sampler interface {
	Sample() ResourceSnapshot
}

// Option configures a System sampler.
type Option func(*System)

// WithCPUInterval sets the window used for the system CPU percentage.
// Zero makes the reading non-blocking (compared against the previous call).
func WithCPUInterval(d time.Duration) Option {
	return func(s *System) {
		if d >= 0 {
			s.cpuInterval = d
		}
	}
}

// WithGPU enables or disables the nvidia-smi probe.
func WithGPU(enabled bool) Option {
	return func(s *System) {
		s.gpu.disabled = !enabled
	}
}

// WithLogger sets the logger used for subsystem warnings.
func WithLogger(logger *zap.Logger) Option {
	return func(s *System) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithDiskPath sets the mount point whose usage is reported.
func WithDiskPath(path string) Option {
	return func(s *System) {
		s.diskPath = path
	}
}

// System samples the current process and host through gopsutil.
type System struct {
	cpuInterval time.Duration
	diskPath    string
	logger      *zap.Logger
	proc        *process.Process
	procErr     error
	gpu         gpuProbe
}

// New creates a System sampler bound to the current process.
func New(opts ...Option) *System {
	s := &System{
		cpuInterval: DefaultCPUInterval,
		diskPath:    "/",
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.proc, s.procErr = process.NewProcess(int32(os.Getpid()))
	if s.procErr != nil {
		s.logger.Warn("process handle unavailable, process metrics will be zero", zap.Error(s.procErr))
	}
	return s
}

// Sample returns a fresh snapshot.
func (s *System) Sample() ResourceSnapshot {
	snap := ResourceSnapshot{
		CPUCores: runtime.NumCPU(),
		Platform: runtime.GOOS,
	}

	s.sampleProcess(&snap)
	s.sampleSystem(&snap)
	s.gpu.sample(&snap, s.logger)

	return snap
}

func (s *System) sampleProcess(snap *ResourceSnapshot) {
	if s.proc == nil {
		return
	}

	// * io counters first, so the remaining queries of this sample land after them
	if io, err := s.proc.IOCounters(); err != nil {
		s.warn("process io counters", err)
	} else {
		snap.ReadCount = int64(io.ReadCount)
		snap.WriteCount = int64(io.WriteCount)
		snap.ReadBytes = int64(io.ReadBytes)
		snap.WriteBytes = int64(io.WriteBytes)
	}

	if info, err := s.proc.MemoryInfo(); err != nil {
		s.warn("process memory", err)
	} else {
		snap.MemoryMB = float64(info.RSS) / mb
		snap.VirtualMemoryMB = float64(info.VMS) / mb
	}

	if pct, err := s.proc.MemoryPercent(); err != nil {
		s.warn("process memory percent", err)
	} else {
		snap.MemoryPercent = float64(pct)
	}

	if n, err := s.proc.NumThreads(); err != nil {
		s.warn("process threads", err)
	} else {
		snap.Threads = int(n)
	}
}

func (s *System) sampleSystem(snap *ResourceSnapshot) {
	if pcts, err := cpu.Percent(s.cpuInterval, false); err != nil {
		s.warn("cpu percent", err)
	} else if len(pcts) > 0 {
		snap.CPUPercent = pcts[0]
	}

	if vm, err := mem.VirtualMemory(); err != nil {
		s.warn("virtual memory", err)
	} else {
		snap.SystemMemoryPercent = vm.UsedPercent
		snap.AvailableGB = float64(vm.Available) / gb
	}

	if usage, err := disk.Usage(s.diskPath); err != nil {
		s.warn("disk usage", err)
	} else {
		snap.DiskPercent = usage.UsedPercent
	}

	if counters, err := net.IOCounters(false); err != nil {
		s.warn("network counters", err)
	} else if len(counters) > 0 {
		snap.NetSentKB = float64(counters[0].BytesSent) / kb
		snap.NetRecvKB = float64(counters[0].BytesRecv) / kb
	}
}

func (s *System) warn(what string, err error) {
	s.logger.Warn("resource query failed, reporting zero", zap.String("query", what), zap.Error(err))
}

// Static always returns the same snapshot.
type Static struct {
	Snapshot ResourceSnapshot
}

// Sample returns the fixed snapshot.
func (s Static) Sample() ResourceSnapshot {
	return s.Snapshot
}

// Func adapts a function to the Sampler interface.
type Func func() ResourceSnapshot

// Sample calls f.
func (f Func) Sample() ResourceSnapshot {
	return f()
}
