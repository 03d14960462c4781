//go:build !linux

package sampler

import "context"

func currentFrequency(ctx context.Context) (float64, error) {
	return infoFrequency(ctx)
}
