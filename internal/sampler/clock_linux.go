//go:build linux

package sampler

import (
	"context"
	"os"
	"strconv"
	"strings"
)

// curFreqPath holds the live frequency of cpu0 in kHz. gopsutil only
// reports the nominal/maximum value on Linux.
var curFreqPath = "/sys/devices/system/cpu/cpu0/cpufreq/scaling_cur_freq"

func currentFrequency(ctx context.Context) (float64, error) {
	if mhz, ok := readScalingFreq(curFreqPath); ok {
		return mhz, nil
	}
	return infoFrequency(ctx)
}

func readScalingFreq(path string) (float64, bool) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, false
	}
	khz, err := strconv.ParseFloat(strings.TrimSpace(string(raw)), 64)
	if err != nil || khz <= 0 {
		return 0, false
	}
	return khz / 1000, true
}
