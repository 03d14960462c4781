package snapshot_test

import (
	"context"
	"testing"
	"time"

	"github.com/HerbHall/sysmon/internal/snapshot"
	"github.com/HerbHall/sysmon/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// countingSampler returns fixed readings and counts calls per category.
type countingSampler struct {
	calls    map[string]int
	diskPath string
	absent   map[string]bool
}

func newCountingSampler(absent ...string) *countingSampler {
	c := &countingSampler{calls: map[string]int{}, absent: map[string]bool{}}
	for _, a := range absent {
		c.absent[a] = true
	}
	return c
}

func (c *countingSampler) LocalIP(context.Context) (string, bool) {
	c.calls["ip"]++
	return "10.0.0.5", !c.absent["ip"]
}

func (c *countingSampler) CPUName(context.Context) (string, bool) {
	c.calls["name"]++
	return "Test CPU", !c.absent["name"]
}

func (c *countingSampler) CPUUsage(context.Context) (float64, bool) {
	c.calls["usage"]++
	return 33.3, !c.absent["usage"]
}

func (c *countingSampler) CPUClock(context.Context) (float64, bool) {
	c.calls["clock"]++
	return 2400, !c.absent["clock"]
}

func (c *countingSampler) RAM(context.Context) (snapshot.RAM, bool) {
	c.calls["ram"]++
	return snapshot.RAM{TotalGB: 16, UsedGB: 8, Percent: 50}, !c.absent["ram"]
}

func (c *countingSampler) Disk(_ context.Context, path string) (snapshot.Disk, bool) {
	c.calls["disk"]++
	c.diskPath = path
	return snapshot.Disk{Device: "/dev/sda1", Path: path, TotalGB: 100, UsedGB: 25, FreeGB: 75, Percent: 25}, !c.absent["disk"]
}

func (c *countingSampler) NetworkRate(context.Context) (snapshot.Network, bool) {
	c.calls["net"]++
	return snapshot.Network{SentPerSec: 500, RecvPerSec: 600}, !c.absent["net"]
}

func fixedClock() time.Time {
	return time.Date(2025, 1, 1, 12, 30, 0, 0, time.UTC)
}

func TestBuild_CallsEverySamplerOnce(t *testing.T) {
	s := newCountingSampler()
	b := snapshot.NewBuilder(s, "/srv", zap.NewNop()).WithClock(fixedClock)

	snap := b.Build(context.Background())

	for _, cat := range []string{"ip", "name", "usage", "clock", "ram", "disk", "net"} {
		assert.Equal(t, 1, s.calls[cat], "calls for %s", cat)
	}
	assert.Equal(t, "/srv", s.diskPath)
	assert.Equal(t, fixedClock(), snap.TakenAt())

	ip, ok := snap.LocalIP()
	require.True(t, ok)
	assert.Equal(t, "10.0.0.5", ip)

	ram, ok := snap.RAM()
	require.True(t, ok)
	assert.Equal(t, snapshot.RAM{TotalGB: 16, UsedGB: 8, Percent: 50}, ram)

	net, ok := snap.Network()
	require.True(t, ok)
	assert.Equal(t, snapshot.Network{SentPerSec: 500, RecvPerSec: 600}, net)
}

func TestBuild_DefaultDiskPath(t *testing.T) {
	s := newCountingSampler()
	snapshot.NewBuilder(s, "", zap.NewNop()).Build(context.Background())
	assert.Equal(t, "/", s.diskPath)
}

func TestBuild_AbsentCategoryOnly(t *testing.T) {
	s := newCountingSampler("disk")
	snap := snapshot.NewBuilder(s, "/", zap.NewNop()).WithClock(fixedClock).Build(context.Background())

	_, ok := snap.Disk()
	assert.False(t, ok, "disk should be absent")

	_, ok = snap.CPUUsage()
	assert.True(t, ok, "cpu usage should be present")
	_, ok = snap.RAM()
	assert.True(t, ok, "ram should be present")
	_, ok = snap.Network()
	assert.True(t, ok, "network should be present")
}

func TestOptional(t *testing.T) {
	v, ok := snapshot.Some(42).Get()
	assert.True(t, ok)
	assert.Equal(t, 42, v)

	_, ok = snapshot.None[string]().Get()
	assert.False(t, ok)

	assert.False(t, snapshot.From(1.5, false).Present())
	assert.True(t, snapshot.From(1.5, true).Present())
}

func TestNew_UnsetGroupsAreAbsent(t *testing.T) {
	snap := snapshot.New(fixedClock(), snapshot.WithCPUUsage(snapshot.Some(10.0)))

	_, ok := snap.CPUUsage()
	assert.True(t, ok)
	_, ok = snap.LocalIP()
	assert.False(t, ok)
	_, ok = snap.Disk()
	assert.False(t, ok)
}

func TestBuild_StampsStartTimeAndLogsElapsed(t *testing.T) {
	clock := testutil.NewClock().Step(2 * time.Second)
	logger, logs := testutil.Logger()

	snap := snapshot.NewBuilder(newCountingSampler(), "/", logger).
		WithClock(clock.Now).
		Build(context.Background())

	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), snap.TakenAt())

	entries := logs.FilterMessage("snapshot built").All()
	require.Len(t, entries, 1)
	assert.Equal(t, 2*time.Second, entries[0].ContextMap()["elapsed"])
}
