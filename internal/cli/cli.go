// Package cli wires configuration, sampling and the monitor loop for the
// sysmon command-line tools.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/HerbHall/sysmon/internal/config"
	"github.com/HerbHall/sysmon/internal/logging"
	"github.com/HerbHall/sysmon/internal/monitor"
	"github.com/HerbHall/sysmon/internal/sampler"
	"github.com/HerbHall/sysmon/internal/snapshot"
	"github.com/HerbHall/sysmon/internal/version"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

// Exit codes.
const (
	ExitOK    = 0
	ExitError = 1
)

// Program describes one command-line tool.
type Program struct {
	Name        string
	Description string
	// Defaults returns the configuration used when no flag or file overrides it.
	Defaults func() *config.Config
	// Banner prints a startup summary before the first cycle.
	Banner bool
	// Source reads the host. Nil means the live machine.
	Source sampler.HostSource
}

// Run parses args, runs the monitor until it finishes or ctx is cancelled,
// and returns the process exit code.
func Run(ctx context.Context, p Program, args []string, stdout, stderr io.Writer) int {
	defaults := p.Defaults()

	fs := pflag.NewFlagSet(p.Name, pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "%s: %s\n\nUsage:\n  %s [flags]\n\nFlags:\n%s",
			p.Name, p.Description, p.Name, fs.FlagUsages())
	}
	showVersion := fs.Bool("version", false, "show program's version number and exit")
	config.RegisterFlags(fs, defaults)

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return ExitOK
		}
		fmt.Fprintf(stderr, "%s: %v\n", p.Name, err)
		fs.Usage()
		return ExitError
	}

	if *showVersion {
		fmt.Fprintln(stdout, version.Info(p.Name))
		return ExitOK
	}

	cfg, err := config.Load(fs, defaults)
	if err != nil {
		fmt.Fprintf(stderr, "%s: %v\n", p.Name, err)
		return ExitError
	}

	logger := logging.New(stderr, cfg.Verbose).Named(p.Name)
	defer func() { _ = logger.Sync() }()

	logger.Debug("starting",
		zap.Any("build", version.Fields()),
		zap.Int("interval_seconds", cfg.Interval),
		zap.String("log", cfg.LogPath),
	)

	source := p.Source
	if source == nil {
		source = sampler.NewHostSource()
	}
	s := sampler.New(source, logger.Named("sampler"), sampler.WithProbeAddr(cfg.ProbeAddr))
	builder := snapshot.NewBuilder(s, cfg.DiskPath, logger.Named("snapshot"))

	driver := monitor.NewDriver(monitor.Config{
		Interval:  cfg.IntervalDuration(),
		LogPath:   cfg.LogPath,
		LogFormat: cfg.Format(),
		Once:      cfg.NoLoop,
		Console:   cfg.Console,
	}, builder, stdout, logger.Named("monitor"))

	if p.Banner {
		printBanner(stdout, p.Name, cfg)
	}

	if err := driver.Run(ctx); err != nil {
		logger.Error("monitoring aborted", zap.Error(err))
		fmt.Fprintf(stderr, "an unexpected error occurred: %v\n", err)
		return ExitError
	}
	return ExitOK
}

func printBanner(w io.Writer, name string, cfg *config.Config) {
	fmt.Fprintf(w, "%s %s\n", name, version.Version)
	fmt.Fprintf(w, "monitoring system performance every %d seconds.", cfg.Interval)
	if cfg.LogPath != "" {
		fmt.Fprintf(w, " Logging to %s...", cfg.LogPath)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "each update takes approx. an additional 1-2 seconds of sampling.")
}
