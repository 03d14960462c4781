// Command sysmond appends a host resource entry to a log file every minute
// until interrupted.
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
		Name:        "sysmond",
		Description: "log system resource usage on a fixed interval.",
		Defaults:    config.DaemonConfig,
		Banner:      true,
	}, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
