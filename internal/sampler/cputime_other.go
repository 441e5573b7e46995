//go:build !unix

package sampler

import "time"

// ProcessCPUTime is not available on this platform and always returns zero.
func ProcessCPUTime() time.Duration {
	return 0
}
