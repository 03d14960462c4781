package snapshot

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Sampler queries the host for each metric category. Every method reports
// absence with ok=false instead of returning an error.
type Sampler interface {
	LocalIP(ctx context.Context) (string, bool)
	CPUName(ctx context.Context) (string, bool)
	CPUUsage(ctx context.Context) (float64, bool)
	CPUClock(ctx context.Context) (float64, bool)
	RAM(ctx context.Context) (RAM, bool)
	Disk(ctx context.Context, path string) (Disk, bool)
	NetworkRate(ctx context.Context) (Network, bool)
}

// Builder assembles a Snapshot by calling every sampler once.
type Builder struct {
	sampler  Sampler
	diskPath string
	now      func() time.Time
	logger   *zap.Logger
}

// NewBuilder creates a Builder reporting disk usage for diskPath.
func NewBuilder(sampler Sampler, diskPath string, logger *zap.Logger) *Builder {
	if diskPath == "" {
		diskPath = "/"
	}
	return &Builder{
		sampler:  sampler,
		diskPath: diskPath,
		now:      time.Now,
		logger:   logger,
	}
}

// WithClock overrides the time source used to stamp snapshots.
func (b *Builder) WithClock(now func() time.Time) *Builder {
	b.now = now
	return b
}

// Build samples every category and returns the resulting Snapshot.
// The timestamp is taken before sampling starts.
func (b *Builder) Build(ctx context.Context) Snapshot {
	start := b.now()

	ip, ipOK := b.sampler.LocalIP(ctx)
	usage, usageOK := b.sampler.CPUUsage(ctx)
	clock, clockOK := b.sampler.CPUClock(ctx)
	name, nameOK := b.sampler.CPUName(ctx)
	ram, ramOK := b.sampler.RAM(ctx)
	disk, diskOK := b.sampler.Disk(ctx, b.diskPath)
	net, netOK := b.sampler.NetworkRate(ctx)

	s := New(start,
		WithLocalIP(From(ip, ipOK)),
		WithCPUUsage(From(usage, usageOK)),
		WithCPUClock(From(clock, clockOK)),
		WithCPUName(From(name, nameOK)),
		WithRAM(From(ram, ramOK)),
		WithDisk(From(disk, diskOK)),
		WithNetwork(From(net, netOK)),
	)

	b.logger.Debug("snapshot built",
		zap.Time("taken_at", start),
		zap.Duration("elapsed", b.now().Sub(start)),
	)
	return s
}
