package testutil

import (
	"time"

	"github.com/HerbHall/sysmon/internal/snapshot"
)

// SnapshotTime is the timestamp of snapshots built by NewSnapshot.
var SnapshotTime = time.Date(2025, 1, 1, 12, 0, 0, 0, time.Local)

// NewSnapshot returns a Snapshot with every category present. Options are
// applied after the defaults, so they can blank or replace any group.
func NewSnapshot(opts ...snapshot.Option) snapshot.Snapshot {
	defaults := []snapshot.Option{
		snapshot.WithLocalIP(snapshot.Some("192.168.1.100")),
		snapshot.WithCPUName(snapshot.Some("Test CPU @ 3.00GHz")),
		snapshot.WithCPUUsage(snapshot.Some(25.0)),
		snapshot.WithCPUClock(snapshot.Some(3000.0)),
		snapshot.WithRAM(snapshot.Some(snapshot.RAM{TotalGB: 16, UsedGB: 8, AvailableGB: 7, Percent: 50})),
		snapshot.WithDisk(snapshot.Some(snapshot.Disk{
			Device: "/dev/sda1", Path: "/", TotalGB: 200, UsedGB: 50, FreeGB: 150, Percent: 25,
		})),
		snapshot.WithNetwork(snapshot.Some(snapshot.Network{SentPerSec: 500, RecvPerSec: 600})),
	}
	return snapshot.New(SnapshotTime, append(defaults, opts...)...)
}

// WithoutRAM blanks the RAM group.
func WithoutRAM() snapshot.Option {
	return snapshot.WithRAM(snapshot.None[snapshot.RAM]())
}

// WithoutDisk blanks the disk group.
func WithoutDisk() snapshot.Option {
	return snapshot.WithDisk(snapshot.None[snapshot.Disk]())
}

// WithoutNetwork blanks the network pair.
func WithoutNetwork() snapshot.Option {
	return snapshot.WithNetwork(snapshot.None[snapshot.Network]())
}
