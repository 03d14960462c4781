// Package report renders snapshots as console text or log file entries and
// appends entries to a log file.
package report

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/HerbHall/sysmon/internal/snapshot"
	"github.com/dustin/go-humanize"
)

// TimestampLayout prefixes every log entry.
const TimestampLayout = "2006-01-02 15:04:05"

// Format selects the log entry layout.
type Format string

const (
	// FormatLine writes one comma separated line per snapshot.
	FormatLine Format = "line"
	// FormatBlock writes a multi-line indented block per snapshot.
	FormatBlock Format = "block"
)

// ErrUnknownFormat is returned by ParseFormat for unrecognised names.
var ErrUnknownFormat = errors.New("unknown log format")

// ParseFormat converts a format name to a Format.
func ParseFormat(name string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(name))) {
	case FormatLine, "":
		return FormatLine, nil
	case FormatBlock:
		return FormatBlock, nil
	}
	return "", fmt.Errorf("%w: %q (want %q or %q)", ErrUnknownFormat, name, FormatLine, FormatBlock)
}

const notAvailable = "n/a"

// Console renders one line per metric category in a fixed order. Absent
// categories render their failure line instead.
func Console(s snapshot.Snapshot) string {
	var b strings.Builder

	if ip, ok := s.LocalIP(); ok {
		fmt.Fprintf(&b, "Local IP address: %s\n", ip)
	} else {
		b.WriteString("failed to retrieve local IP address.\n")
	}

	if name, ok := s.CPUName(); ok {
		fmt.Fprintf(&b, "CPU name: %s\n", name)
	} else {
		b.WriteString("failed to retrieve CPU name.\n")
	}

	if pct, ok := s.CPUUsage(); ok {
		fmt.Fprintf(&b, "CPU usage: %.1f%%\n", pct)
	} else {
		b.WriteString("failed to retrieve CPU usage.\n")
	}

	if mhz, ok := s.CPUClock(); ok {
		fmt.Fprintf(&b, "CPU clock speed: %.2f MHz\n", mhz)
	} else {
		b.WriteString("CPU clock speed: not supported or failed to retrieve.\n")
	}

	if ram, ok := s.RAM(); ok {
		fmt.Fprintf(&b, "RAM: %.2f GB / %.2f GB (%.2f%%)\n", ram.UsedGB, ram.TotalGB, ram.Percent)
	} else {
		b.WriteString("failed to retrieve RAM usage.\n")
	}

	if d, ok := s.Disk(); ok {
		fmt.Fprintf(&b, "Disk drive (%s): %.2f GB / %.2f GB (%.2f%%)\n", d.Device, d.UsedGB, d.TotalGB, d.Percent)
	} else {
		b.WriteString("failed to retrieve disk usage.\n")
	}

	if n, ok := s.Network(); ok {
		fmt.Fprintf(&b, "Network activity: sent: %d bytes/s, received: %d bytes/s\n", n.SentPerSec, n.RecvPerSec)
	} else {
		b.WriteString("failed to retrieve network activity.\n")
	}

	return b.String()
}

// LogLine renders a single newline terminated entry of "key: value" pairs
// separated by ", " and prefixed with the snapshot timestamp.
func LogLine(s snapshot.Snapshot) string {
	fields := []string{s.TakenAt().Format(TimestampLayout)}
	add := func(key, val string) {
		fields = append(fields, key+": "+val)
	}

	ip, ok := s.LocalIP()
	add("ip", text(ip, ok))
	name, ok := s.CPUName()
	add("cpu_name", text(name, ok))
	usage, ok := s.CPUUsage()
	add("cpu_usage", suffixed(usage, ok, 1, "%"))
	clock, ok := s.CPUClock()
	add("cpu_clock", suffixed(clock, ok, 2, ""))

	ram, ok := s.RAM()
	add("ram_total", suffixed(ram.TotalGB, ok, 2, "GB"))
	add("ram_used", suffixed(ram.UsedGB, ok, 2, "GB"))
	add("ram_percent", suffixed(ram.Percent, ok, 2, "%"))

	d, ok := s.Disk()
	add("disk_device", text(d.Device, ok))
	add("disk_total", suffixed(d.TotalGB, ok, 2, "GB"))
	add("disk_used", suffixed(d.UsedGB, ok, 2, "GB"))
	add("disk_percent", suffixed(d.Percent, ok, 2, "%"))

	n, ok := s.Network()
	add("bytes_sent", count(n.SentPerSec, ok))
	add("bytes_recv", count(n.RecvPerSec, ok))

	return strings.Join(fields, ", ") + "\n"
}

// LogBlock renders a multi-line entry grouped into hardware, network and
// disk sections. Entries are separated by a dashed rule and a blank line.
func LogBlock(s snapshot.Snapshot) string {
	var b strings.Builder
	b.WriteString(strings.Repeat("-", 70) + "\n")
	b.WriteString(s.TakenAt().Format(TimestampLayout) + "\n")

	b.WriteString("hardware monitoring:\n")
	usage, ok := s.CPUUsage()
	item(&b, "CPU usage: "+suffixed(usage, ok, 1, "%"))
	clock, ok := s.CPUClock()
	item(&b, "CPU clock: "+suffixed(clock, ok, 2, " MHz"))
	ram, ok := s.RAM()
	item(&b, "mem usage: "+suffixed(ram.Percent, ok, 2, "%"))
	item(&b, "total RAM: "+suffixed(ram.TotalGB, ok, 2, " GB"))
	item(&b, "available RAM: "+suffixed(ram.AvailableGB, ok, 2, " GB"))

	b.WriteString("network activity\n")
	if n, ok := s.Network(); ok {
		item(&b, fmt.Sprintf("bytes sent/received: %d/%d (%s/s up, %s/s down)",
			n.SentPerSec, n.RecvPerSec,
			humanize.IBytes(n.SentPerSec), humanize.IBytes(n.RecvPerSec)))
	} else {
		item(&b, "bytes sent/received: "+notAvailable)
	}

	b.WriteString("disc space\n")
	if d, ok := s.Disk(); ok {
		item(&b, fmt.Sprintf("device: %s", d.Device))
		item(&b, fmt.Sprintf("total space: %.2f GB", d.TotalGB))
		item(&b, fmt.Sprintf("used/free space: %.2f/%.2f GB (%.2f%%)", d.UsedGB, d.FreeGB, d.Percent))
	} else {
		item(&b, "total space: "+notAvailable)
	}

	b.WriteString("\n")
	return b.String()
}

// Render produces the log entry for s in the given format.
func Render(format Format, s snapshot.Snapshot) string {
	if format == FormatBlock {
		return LogBlock(s)
	}
	return LogLine(s)
}

// AppendFile appends entry to the file at path, creating it if needed. The
// file is closed before returning so external rotation between writes is
// safe.
func AppendFile(path, entry string) (err error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close log file: %w", cerr)
		}
	}()

	if _, err := f.WriteString(entry); err != nil {
		return fmt.Errorf("write log file: %w", err)
	}
	return nil
}

func item(b *strings.Builder, s string) {
	b.WriteString("\t--  " + s + "\n")
}

func text(v string, ok bool) string {
	if !ok {
		return notAvailable
	}
	// Keep the ", " delimiter unambiguous.
	return strings.ReplaceAll(v, ", ", " ")
}

func suffixed(v float64, ok bool, prec int, unit string) string {
	if !ok {
		return notAvailable
	}
	return strconv.FormatFloat(v, 'f', prec, 64) + unit
}

func count(v uint64, ok bool) string {
	if !ok {
		return notAvailable
	}
	return strconv.FormatUint(v, 10)
}
