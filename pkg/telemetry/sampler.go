// Package telemetry periodically samples host disk and memory usage and
// publishes the results as labeled gauges (spec §4.10).
package telemetry

import (
	"context"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
	"go.uber.org/zap"

	"github.com/3leaps/logcove/internal/metrics"
)

// SampleInterval is the fixed once-per-minute cadence from spec §4.10.
const SampleInterval = time.Minute

// Sampler is a cooperative scheduler that samples the disk backing
// StagingDir and host memory/swap, publishing into a metrics.Registry.
//
// Grounded on gonimbus's internal/cmd managed-heartbeat ticker/goroutine
// idiom (time.NewTicker + select over ctx.Done()/ticker.C), adapted from a
// single heartbeat write to a repeating multi-metric sample.
type Sampler struct {
	StagingDir string
	Metrics    *metrics.Registry
	Logger     *zap.Logger

	partitions func() ([]disk.PartitionStat, error)
	usage      func(path string) (*disk.UsageStat, error)
	virtualMem func() (*mem.VirtualMemoryStat, error)
	swapMem    func() (*mem.SwapMemoryStat, error)
}

// New builds a Sampler wired to the real gopsutil collectors.
func New(stagingDir string, reg *metrics.Registry, logger *zap.Logger) *Sampler {
	return &Sampler{
		StagingDir: stagingDir,
		Metrics:    reg,
		Logger:     logger,
		partitions: func() ([]disk.PartitionStat, error) { return disk.Partitions(true) },
		usage:      disk.Usage,
		virtualMem: mem.VirtualMemory,
		swapMem:    mem.SwapMemory,
	}
}

// Run fires Sample once per minute until ctx is canceled. Sampling errors
// are logged and never propagate, per spec §4.10.
func (s *Sampler) Run(ctx context.Context) {
	ticker := time.NewTicker(SampleInterval)
	defer ticker.Stop()

	s.Sample(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sample(ctx)
		}
	}
}

// Sample takes one disk + memory/swap reading and publishes it.
func (s *Sampler) Sample(ctx context.Context) {
	s.sampleDisk()
	s.sampleMemory()
}

func (s *Sampler) sampleDisk() {
	mount, err := s.longestPrefixMount()
	if err != nil {
		s.logError("sample disk partitions", err)
		return
	}
	if mount == "" {
		return
	}

	usage, err := s.usage(mount)
	if err != nil {
		s.logError("sample disk usage for "+mount, err)
		return
	}

	s.Metrics.TotalDisk.WithLabelValues(mount).Set(float64(usage.Total))
	s.Metrics.UsedDisk.WithLabelValues(mount).Set(float64(usage.Used))
	s.Metrics.AvailableDisk.WithLabelValues(mount).Set(float64(usage.Free))
}

// longestPrefixMount finds the mount point that is the longest path prefix
// of StagingDir, matching spec §4.10's "longest-prefix match of mount
// points" rule.
func (s *Sampler) longestPrefixMount() (string, error) {
	parts, err := s.partitions()
	if err != nil {
		return "", err
	}

	best := ""
	for _, p := range parts {
		if !strings.HasPrefix(s.StagingDir, p.Mountpoint) {
			continue
		}
		if len(p.Mountpoint) > len(best) {
			best = p.Mountpoint
		}
	}
	return best, nil
}

func (s *Sampler) sampleMemory() {
	vm, err := s.virtualMem()
	if err != nil {
		s.logError("sample virtual memory", err)
		return
	}
	s.Metrics.Memory.WithLabelValues("used").Set(float64(vm.Used))
	s.Metrics.Memory.WithLabelValues("available").Set(float64(vm.Available))

	swap, err := s.swapMem()
	if err != nil {
		s.logError("sample swap memory", err)
		return
	}
	s.Metrics.Memory.WithLabelValues("swap_used").Set(float64(swap.Used))
	s.Metrics.Memory.WithLabelValues("swap_total").Set(float64(swap.Total))
}

func (s *Sampler) logError(action string, err error) {
	if s.Logger == nil {
		return
	}
	s.Logger.Warn("telemetry sample failed", zap.String("action", action), zap.Error(err))
}
