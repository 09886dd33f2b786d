package telemetry

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/3leaps/logcove/internal/metrics"
)

func newTestSampler(t *testing.T) *Sampler {
	t.Helper()
	reg := metrics.New(prometheus.NewRegistry())
	return &Sampler{
		StagingDir: "/var/lib/logcove/staging",
		Metrics:    reg,
		partitions: func() ([]disk.PartitionStat, error) {
			return []disk.PartitionStat{
				{Mountpoint: "/"},
				{Mountpoint: "/var/lib/logcove"},
				{Mountpoint: "/var"},
			}, nil
		},
		usage: func(path string) (*disk.UsageStat, error) {
			if path != "/var/lib/logcove" {
				t.Fatalf("expected longest-prefix mount /var/lib/logcove, got %s", path)
			}
			return &disk.UsageStat{Total: 1000, Used: 400, Free: 600}, nil
		},
		virtualMem: func() (*mem.VirtualMemoryStat, error) {
			return &mem.VirtualMemoryStat{Used: 111, Available: 222}, nil
		},
		swapMem: func() (*mem.SwapMemoryStat, error) {
			return &mem.SwapMemoryStat{Used: 33, Total: 44}, nil
		},
	}
}

func TestSamplePicksLongestPrefixMount(t *testing.T) {
	s := newTestSampler(t)
	s.Sample(context.Background())

	if got := testutil.ToFloat64(s.Metrics.TotalDisk.WithLabelValues("/var/lib/logcove")); got != 1000 {
		t.Fatalf("expected total disk 1000, got %v", got)
	}
	if got := testutil.ToFloat64(s.Metrics.UsedDisk.WithLabelValues("/var/lib/logcove")); got != 400 {
		t.Fatalf("expected used disk 400, got %v", got)
	}
	if got := testutil.ToFloat64(s.Metrics.AvailableDisk.WithLabelValues("/var/lib/logcove")); got != 600 {
		t.Fatalf("expected available disk 600, got %v", got)
	}
}

func TestSamplePublishesMemoryAndSwap(t *testing.T) {
	s := newTestSampler(t)
	s.Sample(context.Background())

	if got := testutil.ToFloat64(s.Metrics.Memory.WithLabelValues("used")); got != 111 {
		t.Fatalf("expected used memory 111, got %v", got)
	}
	if got := testutil.ToFloat64(s.Metrics.Memory.WithLabelValues("swap_total")); got != 44 {
		t.Fatalf("expected swap total 44, got %v", got)
	}
}

func TestSampleToleratesDiskErrorAndStillSamplesMemory(t *testing.T) {
	s := newTestSampler(t)
	s.usage = func(path string) (*disk.UsageStat, error) {
		return nil, assertErr{"disk unavailable"}
	}

	s.Sample(context.Background())

	if got := testutil.ToFloat64(s.Metrics.Memory.WithLabelValues("used")); got != 111 {
		t.Fatalf("expected memory sample to still succeed, got %v", got)
	}
}

type assertErr struct{ msg string }

func (e assertErr) Error() string { return e.msg }
