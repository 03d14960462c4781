// Package snapshot defines the immutable record of one round of host metric
// readings and the Builder that assembles it.
package snapshot

import "time"

// Optional holds a value that may be absent.
type Optional[T any] struct {
	value T
	ok    bool
}

// Some returns a present Optional wrapping v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{value: v, ok: true}
}

// None returns an absent Optional.
func None[T any]() Optional[T] {
	return Optional[T]{}
}

// From returns Some(v) when ok is true and None otherwise.
func From[T any](v T, ok bool) Optional[T] {
	if !ok {
		return None[T]()
	}
	return Some(v)
}

// Get returns the wrapped value and whether it is present.
func (o Optional[T]) Get() (T, bool) {
	return o.value, o.ok
}

// Present reports whether a value is held.
func (o Optional[T]) Present() bool {
	return o.ok
}

// RAM is the memory reading. Sizes use 1024-based units.
type RAM struct {
	TotalGB     float64
	UsedGB      float64
	AvailableGB float64
	Percent     float64
}

// Disk is the usage of the filesystem holding a configured path.
type Disk struct {
	Device  string
	Path    string
	TotalGB float64
	UsedGB  float64
	FreeGB  float64
	Percent float64
}

// Network is the aggregate interface throughput in bytes per second.
type Network struct {
	SentPerSec uint64
	RecvPerSec uint64
}

// Snapshot is one fully resolved set of readings taken at a point in time.
// Fields are only set by New; copies are safe to share.
type Snapshot struct {
	takenAt  time.Time
	localIP  Optional[string]
	cpuName  Optional[string]
	cpuUsage Optional[float64]
	cpuClock Optional[float64]
	ram      Optional[RAM]
	disk     Optional[Disk]
	network  Optional[Network]
}

// Option sets one field group of a Snapshot under construction.
type Option func(*Snapshot)

// New creates a Snapshot taken at t. Groups not supplied are absent.
func New(t time.Time, opts ...Option) Snapshot {
	s := Snapshot{takenAt: t}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// WithLocalIP sets the local IP address.
func WithLocalIP(v Optional[string]) Option {
	return func(s *Snapshot) { s.localIP = v }
}

// WithCPUName sets the processor model string.
func WithCPUName(v Optional[string]) Option {
	return func(s *Snapshot) { s.cpuName = v }
}

// WithCPUUsage sets the utilisation percentage.
func WithCPUUsage(v Optional[float64]) Option {
	return func(s *Snapshot) { s.cpuUsage = v }
}

// WithCPUClock sets the current clock speed in MHz.
func WithCPUClock(v Optional[float64]) Option {
	return func(s *Snapshot) { s.cpuClock = v }
}

// WithRAM sets the memory group.
func WithRAM(v Optional[RAM]) Option {
	return func(s *Snapshot) { s.ram = v }
}

// WithDisk sets the disk group.
func WithDisk(v Optional[Disk]) Option {
	return func(s *Snapshot) { s.disk = v }
}

// WithNetwork sets the network rate pair.
func WithNetwork(v Optional[Network]) Option {
	return func(s *Snapshot) { s.network = v }
}

// TakenAt returns the time sampling started.
func (s Snapshot) TakenAt() time.Time { return s.takenAt }

// LocalIP returns the address of the active outbound interface.
func (s Snapshot) LocalIP() (string, bool) { return s.localIP.Get() }

// CPUName returns the processor model string.
func (s Snapshot) CPUName() (string, bool) { return s.cpuName.Get() }

// CPUUsage returns the utilisation percentage.
func (s Snapshot) CPUUsage() (float64, bool) { return s.cpuUsage.Get() }

// CPUClock returns the clock speed in MHz.
func (s Snapshot) CPUClock() (float64, bool) { return s.cpuClock.Get() }

// RAM returns the memory group.
func (s Snapshot) RAM() (RAM, bool) { return s.ram.Get() }

// Disk returns the disk group.
func (s Snapshot) Disk() (Disk, bool) { return s.disk.Get() }

// Network returns the throughput pair.
func (s Snapshot) Network() (Network, bool) { return s.network.Get() }
