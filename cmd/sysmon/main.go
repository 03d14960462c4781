// Command sysmon displays host system information and optionally appends it
// to a log file, once or on a fixed interval.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/HerbHall/sysmon/internal/cli"
	"github.com/HerbHall/sysmon/internal/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli.Run(ctx, cli.Program{
		Name:        "sysmon",
		Description: "display system information and monitor resources.",
		Defaults:    config.DefaultConfig,
	}, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
