/*
Package workers provides utilities for determining the decode worker pool
size in containerized environments.

When running in a container, the number of available CPUs may be limited by
cgroup constraints. Go 1.19+ sets GOMAXPROCS from the container CPU limit,
while runtime.NumCPU() still reports the host machine's CPU count. Sizing a
worker pool from NumCPU on a limited container leads to context-switching
overhead and CPU throttling, so this package derives counts from
GOMAXPROCS instead.

Usage:

	// CPU-bound work (bitmap decoding): 1 worker per available CPU
	n := workers.ForCPU(8)

	// I/O-bound work (blob reads, network fetches): 2 per CPU
	n := workers.ForIO(16)

	// Mixed work (fetch + decode + store): 1.5 per CPU
	n := workers.ForMixed(12)

All functions honor the DECODE_WORKERS environment variable as an explicit
operator override, and all are safe for concurrent use.
*/
package workers
