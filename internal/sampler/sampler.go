// Package sampler reads individual host metric categories. Each method
// absorbs its own failure: the reason is logged and the value is reported
// as absent so the other categories are unaffected.
package sampler

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"time"

	"github.com/HerbHall/sysmon/internal/snapshot"
	"github.com/shirou/gopsutil/v4/disk"
	"go.uber.org/zap"
)

const (
	// DefaultProbeAddr is dialled (without sending data) to find the local
	// address of the active interface.
	DefaultProbeAddr = "8.8.8.8:80"
	// DefaultWindow is the measurement window for CPU usage and network rate.
	DefaultWindow = time.Second

	bytesPerGB = 1 << 30
)

// Sampler implements snapshot.Sampler on top of a HostSource.
type Sampler struct {
	source    HostSource
	logger    *zap.Logger
	probeAddr string
	cpuWindow time.Duration
	netWindow time.Duration
	sleep     func(ctx context.Context, d time.Duration) error
}

// Compile-time guard.
var _ snapshot.Sampler = (*Sampler)(nil)

// Option configures a Sampler.
type Option func(*Sampler)

// WithProbeAddr sets the host:port used by LocalIP.
func WithProbeAddr(addr string) Option {
	return func(s *Sampler) {
		if addr != "" {
			s.probeAddr = addr
		}
	}
}

// WithCPUWindow sets the CPU usage measurement window.
func WithCPUWindow(d time.Duration) Option {
	return func(s *Sampler) {
		if d > 0 {
			s.cpuWindow = d
		}
	}
}

// WithRateWindow sets the gap between the two network counter reads.
func WithRateWindow(d time.Duration) Option {
	return func(s *Sampler) {
		if d > 0 {
			s.netWindow = d
		}
	}
}

// WithSleep replaces the wait used between network counter reads.
func WithSleep(fn func(ctx context.Context, d time.Duration) error) Option {
	return func(s *Sampler) {
		if fn != nil {
			s.sleep = fn
		}
	}
}

// New creates a Sampler reading from source.
func New(source HostSource, logger *zap.Logger, opts ...Option) *Sampler {
	s := &Sampler{
		source:    source,
		logger:    logger,
		probeAddr: DefaultProbeAddr,
		cpuWindow: DefaultWindow,
		netWindow: DefaultWindow,
		sleep:     sleepContext,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LocalIP returns the address of the interface the OS would use for
// outbound traffic.
func (s *Sampler) LocalIP(ctx context.Context) (string, bool) {
	ip, err := s.source.OutboundAddr(ctx, s.probeAddr)
	if err != nil {
		s.fail(ctx, "local ip", err)
		return "", false
	}
	return ip, true
}

// CPUUsage blocks for the CPU window and returns overall utilisation.
func (s *Sampler) CPUUsage(ctx context.Context) (float64, bool) {
	pct, err := s.source.CPUPercent(ctx, s.cpuWindow)
	if err != nil {
		s.fail(ctx, "cpu usage", err)
		return 0, false
	}
	return pct, true
}

// CPUClock returns the current clock speed in MHz.
func (s *Sampler) CPUClock(ctx context.Context) (float64, bool) {
	mhz, err := s.source.CPUFrequency(ctx)
	if errors.Is(err, ErrClockUnsupported) {
		s.logger.Debug("cpu clock speed not supported", zap.Error(err))
		return 0, false
	}
	if err != nil {
		s.fail(ctx, "cpu clock speed", err)
		return 0, false
	}
	return mhz, true
}

// CPUName returns the model string of the first reported processor.
func (s *Sampler) CPUName(ctx context.Context) (string, bool) {
	infos, err := s.source.CPUInfo(ctx)
	if err != nil {
		s.fail(ctx, "cpu name", err)
		return "", false
	}
	if len(infos) == 0 || strings.TrimSpace(infos[0].ModelName) == "" {
		s.fail(ctx, "cpu name", errors.New("no processor model reported"))
		return "", false
	}
	return strings.TrimSpace(infos[0].ModelName), true
}

// RAM returns total, used and percent from a single memory query.
func (s *Sampler) RAM(ctx context.Context) (snapshot.RAM, bool) {
	vm, err := s.source.VirtualMemory(ctx)
	if err != nil {
		s.fail(ctx, "ram usage", err)
		return snapshot.RAM{}, false
	}
	return snapshot.RAM{
		TotalGB:     float64(vm.Total) / bytesPerGB,
		UsedGB:      float64(vm.Used) / bytesPerGB,
		AvailableGB: float64(vm.Available) / bytesPerGB,
		Percent:     vm.UsedPercent,
	}, true
}

// Disk returns usage of the filesystem holding path along with its device.
func (s *Sampler) Disk(ctx context.Context, path string) (snapshot.Disk, bool) {
	du, err := s.source.DiskUsage(ctx, path)
	if err != nil {
		s.fail(ctx, "disk usage", err, zap.String("path", path))
		return snapshot.Disk{}, false
	}

	device := path
	parts, err := s.source.Partitions(ctx)
	if err != nil {
		s.logger.Debug("partition lookup failed, using path as device",
			zap.String("path", path), zap.Error(err))
	} else if dev, ok := deviceFor(parts, path); ok {
		device = dev
	}

	return snapshot.Disk{
		Device:  device,
		Path:    path,
		TotalGB: float64(du.Total) / bytesPerGB,
		UsedGB:  float64(du.Used) / bytesPerGB,
		FreeGB:  float64(du.Free) / bytesPerGB,
		Percent: du.UsedPercent,
	}, true
}

// NetworkRate reads the byte counters twice, one window apart, and returns
// the per-second difference.
func (s *Sampler) NetworkRate(ctx context.Context) (snapshot.Network, bool) {
	before, err := s.source.NetCounters(ctx)
	if err != nil {
		s.fail(ctx, "network activity", err)
		return snapshot.Network{}, false
	}
	if err := s.sleep(ctx, s.netWindow); err != nil {
		s.fail(ctx, "network activity", err)
		return snapshot.Network{}, false
	}
	after, err := s.source.NetCounters(ctx)
	if err != nil {
		s.fail(ctx, "network activity", err)
		return snapshot.Network{}, false
	}

	secs := s.netWindow.Seconds()
	return snapshot.Network{
		SentPerSec: perSecond(before.BytesSent, after.BytesSent, secs),
		RecvPerSec: perSecond(before.BytesRecv, after.BytesRecv, secs),
	}, true
}

// fail records a sampling failure. Failures caused by cancellation are
// expected during shutdown and only logged at debug level.
func (s *Sampler) fail(ctx context.Context, what string, err error, fields ...zap.Field) {
	fields = append(fields, zap.String("metric", what), zap.Error(err))
	if ctx.Err() != nil {
		s.logger.Debug("sampling interrupted", fields...)
		return
	}
	s.logger.Warn("failed to retrieve "+what, fields...)
}

// perSecond returns the counter delta scaled to one second. A counter that
// went backwards (interface reset) yields zero.
func perSecond(before, after uint64, secs float64) uint64 {
	if after < before || secs <= 0 {
		return 0
	}
	return uint64(float64(after-before) / secs)
}

// deviceFor picks the partition whose mount point is the longest prefix of
// path. Among entries stacked on the same mount point, a /dev/ block device
// wins over rootfs, overlay and similar pseudo devices, whatever the mount
// table order.
func deviceFor(parts []disk.PartitionStat, path string) (string, bool) {
	target := filepath.Clean(path)
	best, bestLen := "", -1
	for _, p := range parts {
		mp := filepath.Clean(p.Mountpoint)
		if !mountContains(mp, target) {
			continue
		}
		switch {
		case len(mp) > bestLen:
			best, bestLen = p.Device, len(mp)
		case len(mp) == bestLen && isBlockDevice(p.Device) && !isBlockDevice(best):
			best = p.Device
		}
	}
	return best, bestLen >= 0 && best != ""
}

func isBlockDevice(dev string) bool {
	return strings.HasPrefix(dev, "/dev/")
}

func mountContains(mount, path string) bool {
	if mount == path {
		return true
	}
	if !strings.HasSuffix(mount, string(filepath.Separator)) {
		mount += string(filepath.Separator)
	}
	return strings.HasPrefix(path, mount)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
