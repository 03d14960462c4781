// Package config loads monitor settings from command-line flags and an
// optional configuration file.
package config

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/HerbHall/sysmon/internal/report"
	"github.com/HerbHall/sysmon/internal/sampler"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// ErrInvalidInterval is returned when the loop interval is negative or does
// not fit in a time.Duration.
var ErrInvalidInterval = errors.New("interval must be zero or more seconds")

// MaxInterval is the largest interval, in seconds, a time.Duration can hold.
const MaxInterval int64 = math.MaxInt64 / int64(time.Second)

// Config holds the monitor configuration.
type Config struct {
	Interval  int    `mapstructure:"interval"`
	LogPath   string `mapstructure:"log"`
	LogFormat string `mapstructure:"log_format"`
	NoLoop    bool   `mapstructure:"no_loop"`
	Console   bool   `mapstructure:"console"`
	DiskPath  string `mapstructure:"disk_path"`
	ProbeAddr string `mapstructure:"probe_addr"`
	Verbose   bool   `mapstructure:"verbose"`
}

// DefaultConfig returns the interactive monitor configuration: console
// output every second, no log file.
func DefaultConfig() *Config {
	return &Config{
		Interval:  1,
		LogFormat: string(report.FormatLine),
		Console:   true,
		DiskPath:  "/",
		ProbeAddr: sampler.DefaultProbeAddr,
	}
}

// DaemonConfig returns the long-running logger configuration: a block
// entry appended to system_usage.log every minute.
func DaemonConfig() *Config {
	return &Config{
		Interval:  60,
		LogPath:   "system_usage.log",
		LogFormat: string(report.FormatBlock),
		DiskPath:  "/",
		ProbeAddr: sampler.DefaultProbeAddr,
	}
}

// flag name -> config key
var flagKeys = map[string]string{
	"interval":   "interval",
	"log":        "log",
	"log-format": "log_format",
	"no-loop":    "no_loop",
	"console":    "console",
	"disk-path":  "disk_path",
	"probe-addr": "probe_addr",
	"verbose":    "verbose",
}

// RegisterFlags defines the monitor flags on fs using def for defaults.
func RegisterFlags(fs *pflag.FlagSet, def *Config) {
	fs.IntP("interval", "i", def.Interval, "time interval in seconds between updates")
	fs.StringP("log", "l", def.LogPath, "append system information to the specified file")
	fs.String("log-format", def.LogFormat, `log entry layout: "line" or "block"`)
	fs.BoolP("no-loop", "n", def.NoLoop, "do not loop, display once and exit")
	fs.Bool("console", def.Console, "print each snapshot to standard output")
	fs.String("disk-path", def.DiskPath, "path whose filesystem usage is reported")
	fs.String("probe-addr", def.ProbeAddr, "host:port used to discover the local IP address")
	fs.BoolP("verbose", "v", def.Verbose, "enable debug logging")
	fs.String("config", "", "path to configuration file")
}

// Load resolves the configuration. Precedence, highest first: flags set on
// the command line, the file named by --config, then def.
func Load(fs *pflag.FlagSet, def *Config) (*Config, error) {
	v := viper.New()
	setDefaults(v, def)

	for name, key := range flagKeys {
		if f := fs.Lookup(name); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("bind flag %s: %w", name, err)
			}
		}
	}

	if f := fs.Lookup("config"); f != nil && f.Value.String() != "" {
		v.SetConfigFile(f.Value.String())
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, def *Config) {
	v.SetDefault("interval", def.Interval)
	v.SetDefault("log", def.LogPath)
	v.SetDefault("log_format", def.LogFormat)
	v.SetDefault("no_loop", def.NoLoop)
	v.SetDefault("console", def.Console)
	v.SetDefault("disk_path", def.DiskPath)
	v.SetDefault("probe_addr", def.ProbeAddr)
	v.SetDefault("verbose", def.Verbose)
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Interval < 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidInterval, c.Interval)
	}
	if int64(c.Interval) > MaxInterval {
		return fmt.Errorf("%w: %d is too large, max %d", ErrInvalidInterval, c.Interval, MaxInterval)
	}
	if _, err := report.ParseFormat(c.LogFormat); err != nil {
		return err
	}
	return nil
}

// IntervalDuration returns the loop interval.
func (c *Config) IntervalDuration() time.Duration {
	return time.Duration(c.Interval) * time.Second
}

// Format returns the parsed log format, defaulting to line entries.
func (c *Config) Format() report.Format {
	f, err := report.ParseFormat(c.LogFormat)
	if err != nil {
		return report.FormatLine
	}
	return f
}
