// Package monitor drives the sample, report, sleep cycle in one-shot or
// continuous mode.
package monitor

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/HerbHall/sysmon/internal/report"
	"github.com/HerbHall/sysmon/internal/snapshot"
	"go.uber.org/zap"
)

// StoppedMessage is printed when the loop ends because of an interrupt.
const StoppedMessage = "monitoring stopped by user."

// State is the driver's position in its cycle.
type State int

const (
	Idle State = iota
	Sampling
	Reporting
	Terminated
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Sampling:
		return "sampling"
	case Reporting:
		return "reporting"
	case Terminated:
		return "terminated"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// SnapshotBuilder produces one snapshot per call.
type SnapshotBuilder interface {
	Build(ctx context.Context) snapshot.Snapshot
}

// Config controls what the driver does each cycle.
type Config struct {
	// Interval is the pause between cycles in continuous mode.
	Interval time.Duration
	// LogPath, when set, receives one entry per snapshot.
	LogPath   string
	LogFormat report.Format
	// Once runs a single cycle.
	Once bool
	// Console prints each snapshot to the output writer.
	Console bool
}

// Driver runs the monitoring loop.
type Driver struct {
	config  Config
	builder SnapshotBuilder
	out     io.Writer
	logger  *zap.Logger

	sleep     func(ctx context.Context, d time.Duration) error
	appendLog func(path, entry string) error
	onState   func(State)

	state  State
	cycles int
}

// NewDriver creates a Driver writing console output to out.
func NewDriver(config Config, builder SnapshotBuilder, out io.Writer, logger *zap.Logger) *Driver {
	return &Driver{
		config:    config,
		builder:   builder,
		out:       out,
		logger:    logger,
		sleep:     sleepContext,
		appendLog: report.AppendFile,
		state:     Idle,
	}
}

// State returns the current state.
func (d *Driver) State() State { return d.state }

// Cycles returns the number of completed sample and report cycles.
func (d *Driver) Cycles() int { return d.cycles }

// Run executes cycles until the configuration or ctx says to stop.
// Cancelling ctx is a normal stop and returns nil. A non-nil error means an
// unexpected failure inside a cycle.
func (d *Driver) Run(ctx context.Context) error {
	d.logger.Debug("monitor starting",
		zap.Bool("once", d.config.Once),
		zap.Duration("interval", d.config.Interval),
		zap.String("log_path", d.config.LogPath),
	)

	for {
		interrupted, err := d.cycle(ctx)
		if err != nil {
			d.setState(Terminated)
			return err
		}
		if interrupted {
			return d.stop()
		}
		if d.config.Once {
			d.setState(Terminated)
			return nil
		}
		if err := d.sleep(ctx, d.config.Interval); err != nil {
			return d.stop()
		}
	}
}

// cycle samples and reports once. It returns interrupted=true when ctx was
// cancelled during sampling, in which case nothing is reported.
func (d *Driver) cycle(ctx context.Context) (interrupted bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("monitor cycle %d panicked: %v", d.cycles+1, r)
		}
	}()

	d.setState(Sampling)
	snap := d.builder.Build(ctx)
	if ctx.Err() != nil {
		return true, nil
	}

	d.setState(Reporting)
	if err := d.report(snap); err != nil {
		return false, err
	}
	d.cycles++
	return false, nil
}

func (d *Driver) report(snap snapshot.Snapshot) error {
	if d.config.Console {
		if _, err := io.WriteString(d.out, report.Console(snap)); err != nil {
			return fmt.Errorf("write console output: %w", err)
		}
	}

	if d.config.LogPath == "" {
		return nil
	}

	entry := report.Render(d.config.LogFormat, snap)
	if err := d.appendLog(d.config.LogPath, entry); err != nil {
		d.logger.Error("error writing to log file",
			zap.String("path", d.config.LogPath),
			zap.Error(err),
		)
		return nil
	}

	var err error
	if d.config.Console {
		_, err = fmt.Fprintf(d.out, "logged to %s\n", d.config.LogPath)
	} else {
		_, err = fmt.Fprintf(d.out, "system resource logged at:\n%s", entry)
	}
	if err != nil {
		return fmt.Errorf("write console output: %w", err)
	}
	return nil
}

func (d *Driver) stop() error {
	d.setState(Terminated)
	// stdout may already be closed.
	_, _ = fmt.Fprintln(d.out, "\n"+StoppedMessage)
	d.logger.Debug("monitor stopped", zap.Int("cycles", d.cycles))
	return nil
}

func (d *Driver) setState(s State) {
	d.state = s
	if d.onState != nil {
		d.onState(s)
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
