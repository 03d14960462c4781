package sampler

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/mem"
	psnet "github.com/shirou/gopsutil/v4/net"
)

// ErrClockUnsupported is returned when the platform does not expose the
// current processor frequency.
var ErrClockUnsupported = errors.New("cpu clock speed not exposed on this platform")

// HostSource is the raw operating system interface used by Sampler.
type HostSource interface {
	// OutboundAddr returns the local address the OS picks to reach probe.
	OutboundAddr(ctx context.Context, probe string) (string, error)
	CPUPercent(ctx context.Context, window time.Duration) (float64, error)
	CPUInfo(ctx context.Context) ([]cpu.InfoStat, error)
	// CPUFrequency returns the current clock speed in MHz.
	CPUFrequency(ctx context.Context) (float64, error)
	VirtualMemory(ctx context.Context) (*mem.VirtualMemoryStat, error)
	DiskUsage(ctx context.Context, path string) (*disk.UsageStat, error)
	Partitions(ctx context.Context) ([]disk.PartitionStat, error)
	// NetCounters returns cumulative byte counters summed over all interfaces.
	NetCounters(ctx context.Context) (psnet.IOCountersStat, error)
}

// hostSource reads the local machine through gopsutil.
type hostSource struct{}

// Compile-time guard.
var _ HostSource = hostSource{}

// NewHostSource returns a HostSource backed by the running host.
func NewHostSource() HostSource {
	return hostSource{}
}

func (hostSource) OutboundAddr(ctx context.Context, probe string) (string, error) {
	var d net.Dialer
	// UDP connect sends nothing; it only binds a route.
	conn, err := d.DialContext(ctx, "udp", probe)
	if err != nil {
		return "", fmt.Errorf("dial %s: %w", probe, err)
	}
	defer conn.Close()

	addr, ok := conn.LocalAddr().(*net.UDPAddr)
	if !ok || addr.IP == nil {
		return "", fmt.Errorf("unexpected local address %v", conn.LocalAddr())
	}
	return addr.IP.String(), nil
}

func (hostSource) CPUPercent(ctx context.Context, window time.Duration) (float64, error) {
	pcts, err := cpu.PercentWithContext(ctx, window, false)
	if err != nil {
		return 0, fmt.Errorf("cpu percent: %w", err)
	}
	if len(pcts) == 0 {
		return 0, errors.New("cpu percent: no samples returned")
	}
	return pcts[0], nil
}

func (hostSource) CPUInfo(ctx context.Context) ([]cpu.InfoStat, error) {
	infos, err := cpu.InfoWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("cpu info: %w", err)
	}
	return infos, nil
}

func (hostSource) CPUFrequency(ctx context.Context) (float64, error) {
	return currentFrequency(ctx)
}

func (hostSource) VirtualMemory(ctx context.Context) (*mem.VirtualMemoryStat, error) {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("virtual memory: %w", err)
	}
	return vm, nil
}

func (hostSource) DiskUsage(ctx context.Context, path string) (*disk.UsageStat, error) {
	du, err := disk.UsageWithContext(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("disk usage %s: %w", path, err)
	}
	return du, nil
}

func (hostSource) Partitions(ctx context.Context) ([]disk.PartitionStat, error) {
	parts, err := disk.PartitionsWithContext(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("disk partitions: %w", err)
	}
	return parts, nil
}

func (hostSource) NetCounters(ctx context.Context) (psnet.IOCountersStat, error) {
	counters, err := psnet.IOCountersWithContext(ctx, false)
	if err != nil {
		return psnet.IOCountersStat{}, fmt.Errorf("net io counters: %w", err)
	}
	if len(counters) == 0 {
		return psnet.IOCountersStat{}, errors.New("net io counters: no interfaces reported")
	}
	return counters[0], nil
}

// infoFrequency falls back to the frequency gopsutil reports for the first
// processor.
func infoFrequency(ctx context.Context) (float64, error) {
	infos, err := cpu.InfoWithContext(ctx)
	if err != nil {
		return 0, fmt.Errorf("cpu info: %w", err)
	}
	if len(infos) == 0 || infos[0].Mhz <= 0 {
		return 0, ErrClockUnsupported
	}
	return infos[0].Mhz, nil
}
