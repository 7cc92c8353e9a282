package workers

import (
	"os"
	"runtime"
	"strconv"
)

// envOverride is the environment variable that forces an explicit worker
// count, bypassing the GOMAXPROCS-based calculation.
const envOverride = "DECODE_WORKERS"

// Count returns the optimal number of workers for a given task type.
// It respects container CPU limits via GOMAXPROCS (Go 1.19+).
//
// The multiplier adjusts for task characteristics:
//   - 1.0 for CPU-bound tasks (bitmap decoding)
//   - 2.0 for I/O-bound tasks (blob reads, network fetches)
//   - 1.5 for mixed tasks
//
// The limit parameter caps the worker count to prevent resource exhaustion.
// Use 0 for no limit.
//
// Can be overridden with the DECODE_WORKERS environment variable.
func Count(multiplier float64, limit int) int {
	if override := os.Getenv(envOverride); override != "" {
		if count, err := strconv.Atoi(override); err == nil && count > 0 {
			return capped(count, limit)
		}
	}

	// GOMAXPROCS tracks the container CPU limit in Go 1.19+, unlike
	// runtime.NumCPU() which reports the host machine.
	available := runtime.GOMAXPROCS(0)

	count := int(float64(available) * multiplier)
	if count < 1 {
		count = 1
	}
	return capped(count, limit)
}

func capped(count, limit int) int {
	if limit > 0 && count > limit {
		return limit
	}
	return count
}

// ForCPU returns worker count for CPU-bound tasks (1 per CPU).
func ForCPU(limit int) int {
	return Count(1.0, limit)
}

// ForIO returns worker count for I/O-bound tasks (2 per CPU).
func ForIO(limit int) int {
	return Count(2.0, limit)
}

// ForMixed returns worker count for mixed tasks (1.5 per CPU).
func ForMixed(limit int) int {
	return Count(1.5, limit)
}
